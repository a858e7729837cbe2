package listmodel

// Kind names a notification type.
type Kind string

const (
	KindInserted Kind = "inserted"
	KindRemoved  Kind = "removed"
	KindMoved    Kind = "moved"
	KindChanged  Kind = "changed"
	KindReset    Kind = "reset"
)

// Event is a value form of one notification, used for recording and for
// streaming notifications to out-of-process views.
type Event struct {
	Model  string   `json:"model,omitempty"`
	Kind   Kind     `json:"kind"`
	Range  Range    `json:"range"`
	From   int      `json:"from,omitempty"`
	To     int      `json:"to,omitempty"`
	Fields []string `json:"fields,omitempty"`
}

// Structural reports whether e changes the shape of the collection.
func (e Event) Structural() bool {
	return e.Kind != KindChanged
}

// Func adapts a callback receiving Events to the Observer interface.
type Func func(Event)

func (f Func) OnInserted(r Range)             { f(Event{Kind: KindInserted, Range: r}) }
func (f Func) OnRemoved(r Range)              { f(Event{Kind: KindRemoved, Range: r}) }
func (f Func) OnMoved(from, to int)           { f(Event{Kind: KindMoved, From: from, To: to, Range: Row(to)}) }
func (f Func) OnChanged(r Range, fs []string) { f(Event{Kind: KindChanged, Range: r, Fields: fs}) }
func (f Func) OnReset()                       { f(Event{Kind: KindReset}) }

// Recorder stores every notification it receives.
type Recorder struct {
	Events []Event
}

func (r *Recorder) OnInserted(rg Range) {
	r.Events = append(r.Events, Event{Kind: KindInserted, Range: rg})
}
func (r *Recorder) OnRemoved(rg Range) {
	r.Events = append(r.Events, Event{Kind: KindRemoved, Range: rg})
}
func (r *Recorder) OnMoved(from, to int) {
	r.Events = append(r.Events, Event{Kind: KindMoved, From: from, To: to, Range: Row(to)})
}
func (r *Recorder) OnChanged(rg Range, fields []string) {
	r.Events = append(r.Events, Event{Kind: KindChanged, Range: rg, Fields: fields})
}
func (r *Recorder) OnReset() { r.Events = append(r.Events, Event{Kind: KindReset}) }

// Kinds returns the kind of every recorded event in order.
func (r *Recorder) Kinds() []Kind {
	kinds := make([]Kind, len(r.Events))
	for i, e := range r.Events {
		kinds[i] = e.Kind
	}
	return kinds
}

// Last returns the most recent event, or false when nothing was recorded.
func (r *Recorder) Last() (Event, bool) {
	if len(r.Events) == 0 {
		return Event{}, false
	}
	return r.Events[len(r.Events)-1], true
}

// Clear forgets recorded events.
func (r *Recorder) Clear() {
	r.Events = nil
}
