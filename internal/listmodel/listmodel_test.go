package listmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifierFansOut(t *testing.T) {
	var n Notifier
	a, b := &Recorder{}, &Recorder{}
	n.Subscribe(a)
	n.Subscribe(b)

	n.Inserted(Row(0))
	n.Changed(Range{First: 0, Last: 2}, "x", "y")
	n.Moved(1, 3)
	n.Removed(Row(2))
	n.Reset()

	want := []Kind{KindInserted, KindChanged, KindMoved, KindRemoved, KindReset}
	assert.Equal(t, want, a.Kinds())
	assert.Equal(t, want, b.Kinds())
	assert.Equal(t, []string{"x", "y"}, a.Events[1].Fields)
	assert.Equal(t, 1, a.Events[2].From)
	assert.Equal(t, 3, a.Events[2].To)
}

func TestNotifierUnsubscribeFuncObserver(t *testing.T) {
	var n Notifier
	var got []Event
	unsubscribe := n.Subscribe(Func(func(e Event) { got = append(got, e) }))
	rec := &Recorder{}
	n.Subscribe(rec)

	n.Reset()
	unsubscribe()
	n.Reset()

	assert.Len(t, got, 1)
	assert.Len(t, rec.Events, 2)
	assert.Equal(t, 1, n.Len())
}

func TestNotifierUnsubscribeDuringCallback(t *testing.T) {
	var n Notifier
	var unsubscribe func()
	calls := 0
	unsubscribe = n.Subscribe(Func(func(Event) {
		calls++
		unsubscribe()
	}))

	n.Reset()
	n.Reset()
	assert.Equal(t, 1, calls)
}

func TestRangeLen(t *testing.T) {
	assert.Equal(t, 1, Row(4).Len())
	assert.Equal(t, 3, Range{First: 0, Last: 2}.Len())
	assert.Equal(t, 0, Range{First: 3, Last: 2}.Len())
	assert.Equal(t, "[0..2]", Range{First: 0, Last: 2}.String())
}

func TestRemapIndex(t *testing.T) {
	testCases := []struct {
		name  string
		index int
		event Event
		want  int
	}{
		{"insert before", 2, Event{Kind: KindInserted, Range: Row(0)}, 3},
		{"insert after", 2, Event{Kind: KindInserted, Range: Row(5)}, 2},
		{"insert at", 2, Event{Kind: KindInserted, Range: Row(2)}, 3},
		{"remove before", 3, Event{Kind: KindRemoved, Range: Row(1)}, 2},
		{"remove selected", 3, Event{Kind: KindRemoved, Range: Row(3)}, -1},
		{"remove after", 1, Event{Kind: KindRemoved, Range: Row(3)}, 1},
		{"move selected", 0, Event{Kind: KindMoved, From: 0, To: 3}, 3},
		{"move down across", 2, Event{Kind: KindMoved, From: 0, To: 3}, 1},
		{"move up across", 1, Event{Kind: KindMoved, From: 3, To: 0}, 2},
		{"move unaffected", 4, Event{Kind: KindMoved, From: 0, To: 3}, 4},
		{"changed", 1, Event{Kind: KindChanged, Range: Range{First: 0, Last: 3}}, 1},
		{"reset", 1, Event{Kind: KindReset}, -1},
		{"no selection", -1, Event{Kind: KindInserted, Range: Row(0)}, -1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RemapIndex(tc.index, tc.event))
		})
	}
}

func TestRecorderLast(t *testing.T) {
	rec := &Recorder{}
	_, ok := rec.Last()
	assert.False(t, ok)

	rec.OnRemoved(Row(1))
	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, KindRemoved, last.Kind)
	assert.True(t, last.Structural())

	rec.Clear()
	assert.Empty(t, rec.Events)
}

func TestCursorFollowsNotifier(t *testing.T) {
	var n Notifier
	c := NewCursor()
	n.Subscribe(c)
	assert.Equal(t, -1, c.Index())

	c.Set(2)
	n.Inserted(Row(0))
	assert.Equal(t, 3, c.Index())
	n.Moved(3, 0)
	assert.Equal(t, 0, c.Index())
	n.Changed(Row(0), "name")
	assert.Equal(t, 0, c.Index())
	n.Removed(Row(0))
	assert.Equal(t, -1, c.Index())

	c.Set(1)
	n.Reset()
	assert.Equal(t, -1, c.Index())
}
