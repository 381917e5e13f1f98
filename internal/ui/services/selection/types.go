package selection

import "errors"

// Selection is the closed set of selection representations. A nil Selection
// means nothing is selected. Exactly two shapes implement it: Range, a
// contiguous span stored as its two endpoints, and Separate, an explicit
// list of positions.
type Selection interface {
	isSelection()
}

// Range denotes the inclusive contiguous span between RootIndex and
// ExtendToIndex. Either order is allowed; RootIndex is the anchor where the
// selection started, ExtendToIndex the end it was last extended to.
// RootIndex == ExtendToIndex denotes a single selected position.
type Range struct {
	RootIndex     int
	ExtendToIndex int
}

func (*Range) isSelection() {}

// MinMax returns the endpoints reordered so that small <= large.
func (r *Range) MinMax() (small, large int) {
	if r.RootIndex <= r.ExtendToIndex {
		return r.RootIndex, r.ExtendToIndex
	}
	return r.ExtendToIndex, r.RootIndex
}

// Positions expands the span into individual positions in ascending order.
// Only used when a Range has to become a Separate; large ranges pay for the
// full allocation here.
func (r *Range) Positions() []int {
	small, large := r.MinMax()
	positions := make([]int, 0, large-small+1)
	for i := small; i <= large; i++ {
		positions = append(positions, i)
	}
	return positions
}

// Separate is an arbitrary, possibly discontiguous set of positions. Order
// within Indexes carries no meaning beyond insertion history. LastToggledIndex
// is the position most recently added or removed and becomes the anchor if
// the selection is later extended back into a Range.
type Separate struct {
	Indexes          []int
	LastToggledIndex int
}

func (*Separate) isSelection() {}

func (s *Separate) contains(pos int) bool {
	for _, idx := range s.Indexes {
		if idx == pos {
			return true
		}
	}
	return false
}

// ContainsPosition reports whether pos is covered by sel.
// A nil selection contains nothing.
func ContainsPosition(sel Selection, pos int) bool {
	switch v := sel.(type) {
	case *Range:
		small, large := v.MinMax()
		return pos >= small && pos <= large
	case *Separate:
		return v.contains(pos)
	default:
		return false
	}
}

// Errors returned by Service operations. All of them indicate a caller
// contract violation; none of them leaves the selection partially mutated.
var (
	ErrNotFound          = errors.New("item id not found in current list")
	ErrAlreadySelected   = errors.New("position is already selected")
	ErrNoActiveSelection = errors.New("no active selection")
	ErrNotInSelection    = errors.New("position is not in the selection")
)

// Event types published on the UI bus

type SelectionChangedEvent struct {
	Positions []int // currently selected positions
	Total     int
}

type SelectionClearedEvent struct{}
