package loop

import (
	"sort"
	"time"
)

// Manual is a Scheduler driven by Advance instead of wall-clock time. It
// runs callbacks on the caller's goroutine.
type Manual struct {
	now   time.Duration
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	due     time.Duration
	every   time.Duration
	seq     int
	fn      func()
	stopped bool
}

func (t *manualTask) Stop() { t.stopped = true }

func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) After(d time.Duration, fn func()) Timer {
	return m.add(d, 0, fn)
}

func (m *Manual) Every(d time.Duration, fn func()) Timer {
	return m.add(d, d, fn)
}

func (m *Manual) add(d, every time.Duration, fn func()) *manualTask {
	m.seq++
	t := &manualTask{due: m.now + d, every: every, seq: m.seq, fn: fn}
	m.tasks = append(m.tasks, t)
	return t
}

// Pending returns the number of scheduled, unstopped tasks.
func (m *Manual) Pending() int {
	n := 0
	for _, t := range m.tasks {
		if !t.stopped {
			n++
		}
	}
	return n
}

// Advance moves time forward by d, running every task that falls due in
// time order.
func (m *Manual) Advance(d time.Duration) {
	target := m.now + d
	for {
		next := m.nextDue(target)
		if next == nil {
			break
		}
		m.now = next.due
		if next.every > 0 {
			next.due += next.every
		} else {
			next.stopped = true
		}
		next.fn()
	}
	m.now = target
	m.compact()
}

func (m *Manual) nextDue(limit time.Duration) *manualTask {
	var due []*manualTask
	for _, t := range m.tasks {
		if !t.stopped && t.due <= limit {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].seq < due[j].seq
	})
	return due[0]
}

func (m *Manual) compact() {
	live := m.tasks[:0]
	for _, t := range m.tasks {
		if !t.stopped {
			live = append(live, t)
		}
	}
	m.tasks = live
}
