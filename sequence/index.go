package sequence

import "fmt"

// Index is a position relative to the start or the end of a Sequence.
type Index struct {
	FromEnd bool   `json:"from_end,omitempty"`
	Offset  uint64 `json:"offset"`
}

func FromStart(n uint64) Index { return Index{Offset: n} }

func FromEnd(n uint64) Index { return Index{FromEnd: true, Offset: n} }

// Resolve returns the absolute position of i in a Sequence of the given
// length. ok is false when the position falls outside [0, length].
func (i Index) Resolve(length uint64) (pos uint64, ok bool) {
	if i.Offset > length {
		return 0, false
	}
	if i.FromEnd {
		return length - i.Offset, true
	}
	return i.Offset, true
}

func (i Index) String() string {
	if i.FromEnd {
		return fmt.Sprintf("FromEnd(%d)", i.Offset)
	}
	return fmt.Sprintf("FromStart(%d)", i.Offset)
}

// Range is a half-open span [Start, End).
//
//	FullRange()                     every entry
//	Range{FromEnd(10), FromEnd(0)}  the last 10 entries
//	Range{FromStart(0), FromStart(5)} the first 5 entries
type Range struct {
	Start Index `json:"start"`
	End   Index `json:"end"`
}

func FullRange() Range {
	return Range{Start: FromStart(0), End: FromEnd(0)}
}

// Resolve returns absolute bounds for the range. ok is false for bounds
// outside the Sequence or an inverted range.
func (r Range) Resolve(length uint64) (start, end uint64, ok bool) {
	start, ok = r.Start.Resolve(length)
	if !ok {
		return 0, 0, false
	}
	end, ok = r.End.Resolve(length)
	if !ok || start > end {
		return 0, 0, false
	}
	return start, end, true
}

// Entry is one opaque element of a Sequence.
type Entry []byte

// IndexedEntry is an entry together with its absolute position.
type IndexedEntry struct {
	Index uint64 `json:"index"`
	Entry Entry  `json:"entry"`
}
