// Package listmodel defines the change-notification contract shared by every
// ordered collection in the panel. Observers address rows by position only,
// so structural changes (insert, remove, move, reset) are reported apart from
// in-place data changes.
package listmodel

import "fmt"

// Range is an inclusive span of row indices.
type Range struct {
	First int `json:"first"`
	Last  int `json:"last"`
}

// Row returns a single-row range.
func Row(i int) Range {
	return Range{First: i, Last: i}
}

// Len returns the number of rows covered by r.
func (r Range) Len() int {
	if r.Last < r.First {
		return 0
	}
	return r.Last - r.First + 1
}

func (r Range) String() string {
	return fmt.Sprintf("[%d..%d]", r.First, r.Last)
}

// Observer receives change notifications from a collection. Callbacks run
// after the collection state has been updated.
type Observer interface {
	OnInserted(r Range)
	OnRemoved(r Range)
	// OnMoved reports that the row at from now lives at to.
	OnMoved(from, to int)
	// OnChanged reports in-place data changes. fields is nil when every
	// field of the range may have changed.
	OnChanged(r Range, fields []string)
	OnReset()
}

// Notifier fans notifications out to subscribed observers. The zero value is
// ready to use. Notifier is not safe for concurrent use; collections call it
// from the event loop.
type Notifier struct {
	observers []subscription
	nextID    int
}

type subscription struct {
	id int
	o  Observer
}

// Subscribe registers o and returns a function removing it.
func (n *Notifier) Subscribe(o Observer) (unsubscribe func()) {
	n.nextID++
	id := n.nextID
	n.observers = append(n.observers, subscription{id: id, o: o})
	return func() {
		for i, sub := range n.observers {
			if sub.id == id {
				n.observers = append(n.observers[:i:i], n.observers[i+1:]...)
				return
			}
		}
	}
}

// Len returns the number of subscribed observers.
func (n *Notifier) Len() int {
	return len(n.observers)
}

func (n *Notifier) Inserted(r Range) {
	for _, o := range n.snapshot() {
		o.OnInserted(r)
	}
}

func (n *Notifier) Removed(r Range) {
	for _, o := range n.snapshot() {
		o.OnRemoved(r)
	}
}

func (n *Notifier) Moved(from, to int) {
	for _, o := range n.snapshot() {
		o.OnMoved(from, to)
	}
}

func (n *Notifier) Changed(r Range, fields ...string) {
	for _, o := range n.snapshot() {
		o.OnChanged(r, fields)
	}
}

func (n *Notifier) Reset() {
	for _, o := range n.snapshot() {
		o.OnReset()
	}
}

// snapshot lets an observer unsubscribe from inside a callback.
func (n *Notifier) snapshot() []Observer {
	if len(n.observers) == 0 {
		return nil
	}
	out := make([]Observer, len(n.observers))
	for i, sub := range n.observers {
		out[i] = sub.o
	}
	return out
}
