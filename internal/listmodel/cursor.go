package listmodel

// Cursor is a row index that follows the rows of the model it observes.
// It is -1 when nothing is selected.
type Cursor struct {
	index int
}

func NewCursor() *Cursor {
	return &Cursor{index: -1}
}

func (c *Cursor) Index() int { return c.index }

// Set selects index. Any negative value clears the selection.
func (c *Cursor) Set(index int) {
	if index < 0 {
		index = -1
	}
	c.index = index
}

func (c *Cursor) remap(e Event) { c.index = RemapIndex(c.index, e) }

func (c *Cursor) OnInserted(r Range)        { c.remap(Event{Kind: KindInserted, Range: r}) }
func (c *Cursor) OnRemoved(r Range)         { c.remap(Event{Kind: KindRemoved, Range: r}) }
func (c *Cursor) OnMoved(from, to int)      { c.remap(Event{Kind: KindMoved, From: from, To: to}) }
func (c *Cursor) OnChanged(Range, []string) {}
func (c *Cursor) OnReset()                  { c.index = -1 }
