package listmodel

// RemapIndex maps a row index held by a view (a selection, a focused row)
// across one event. It returns -1 when the row no longer exists.
func RemapIndex(index int, e Event) int {
	if index < 0 {
		return index
	}

	switch e.Kind {
	case KindInserted:
		if index >= e.Range.First {
			return index + e.Range.Len()
		}
	case KindRemoved:
		if index > e.Range.Last {
			return index - e.Range.Len()
		}
		if index >= e.Range.First {
			return -1
		}
	case KindMoved:
		switch {
		case index == e.From:
			return e.To
		case e.From < e.To && index > e.From && index <= e.To:
			return index - 1
		case e.To < e.From && index >= e.To && index < e.From:
			return index + 1
		}
	case KindReset:
		return -1
	}
	return index
}
