package selection

import (
	"cratedig/internal/ui/services/events"
)

// Service owns the selection state for the item list. It addresses items by
// their position in the externally owned ordered id list, so callers must
// resolve ids through ItemIDToIndex before mutating, and must Clear (or
// otherwise reconcile) whenever the list itself is replaced.
type Service struct {
	sel     Selection // nil when nothing is selected
	bus     events.EventBus
	itemsFn func() []int64 // live view of the ordered item ids
}

// NewService creates a new selection service
func NewService(bus events.EventBus) *Service {
	return &Service{
		bus: bus,
	}
}

// SetItemsFunction sets the function that yields the current ordered item ids
func (s *Service) SetItemsFunction(fn func() []int64) {
	s.itemsFn = fn
}

// Selected returns the currently selected positions, derived fresh from the
// stored selection on every call. A Range expands in ascending order; a
// Separate reports its positions in the order they were accumulated.
func (s *Service) Selected() []int {
	switch v := s.sel.(type) {
	case *Range:
		return v.Positions()
	case *Separate:
		positions := make([]int, len(v.Indexes))
		copy(positions, v.Indexes)
		return positions
	default:
		return []int{}
	}
}

// Contains reports whether the position is currently selected
func (s *Service) Contains(pos int) bool {
	return ContainsPosition(s.sel, pos)
}

// HasSelection returns true if anything is selected
func (s *Service) HasSelection() bool {
	return s.sel != nil
}

// ItemIDToIndex resolves a stable item id to its position in the current
// list. Returns ErrNotFound when the id is absent.
func (s *Service) ItemIDToIndex(id int64) (int, error) {
	if s.itemsFn != nil {
		for i, itemID := range s.itemsFn() {
			if itemID == id {
				return i, nil
			}
		}
	}
	return 0, ErrNotFound
}

// Isolate discards any prior selection and selects exactly pos
func (s *Service) Isolate(pos int) {
	s.sel = &Separate{
		Indexes:          []int{pos},
		LastToggledIndex: pos,
	}
	s.publishChanged()
}

// Clear resets the selection to nothing
func (s *Service) Clear() {
	s.sel = nil
	s.bus.Publish(SelectionClearedEvent{})
}

// Add appends pos to the selection, flattening whatever shape it had into a
// Separate anchored at pos. With no active selection it behaves as Isolate.
// Returns ErrAlreadySelected when pos is already covered.
func (s *Service) Add(pos int) error {
	if s.sel == nil {
		s.Isolate(pos)
		return nil
	}
	if ContainsPosition(s.sel, pos) {
		return ErrAlreadySelected
	}

	s.sel = &Separate{
		Indexes:          append(s.Selected(), pos),
		LastToggledIndex: pos,
	}
	s.publishChanged()
	return nil
}

// Remove deletes pos from the selection. A Range source is materialized into
// its individual positions minus pos, so the result is always a Separate.
// Returns ErrNoActiveSelection when nothing is selected and ErrNotInSelection
// when pos is not covered; neither error mutates state.
func (s *Service) Remove(pos int) error {
	if s.sel == nil {
		return ErrNoActiveSelection
	}
	if !ContainsPosition(s.sel, pos) {
		return ErrNotInSelection
	}

	switch v := s.sel.(type) {
	case *Range:
		positions := v.Positions()
		indexes := make([]int, 0, len(positions)-1)
		for _, p := range positions {
			if p != pos {
				indexes = append(indexes, p)
			}
		}
		s.sel = &Separate{Indexes: indexes, LastToggledIndex: pos}
	case *Separate:
		for i, p := range v.Indexes {
			if p == pos {
				v.Indexes = append(v.Indexes[:i], v.Indexes[i+1:]...)
				break
			}
		}
		v.LastToggledIndex = pos
	}
	s.publishChanged()
	return nil
}

// ExtendTo collapses the selection into a single contiguous Range ending at
// pos, the way shift-click works in a list box. The anchor is the existing
// Range root, a Separate's last toggled position, or the start of the list
// when nothing was selected.
func (s *Service) ExtendTo(pos int) {
	switch v := s.sel.(type) {
	case *Range:
		v.ExtendToIndex = pos
	case *Separate:
		s.sel = &Range{RootIndex: v.LastToggledIndex, ExtendToIndex: pos}
	default:
		s.sel = &Range{RootIndex: 0, ExtendToIndex: pos}
	}
	s.publishChanged()
}

// AddTo grows the selection toward pos without ever dropping a previously
// selected position. A Range grows its covered span toward pos and becomes a
// Separate (the union of old range and new span is not always contiguous
// once further positions are toggled); a Separate gains every position in
// the span between its last toggled position and pos. With no active
// selection it starts a Range from the list start, like ExtendTo.
func (s *Service) AddTo(pos int) {
	switch v := s.sel.(type) {
	case *Range:
		small, large := v.MinMax()
		indexes := v.Positions()
		if pos > large {
			for i := large + 1; i <= pos; i++ {
				indexes = append(indexes, i)
			}
		} else if pos < small {
			for i := small - 1; i >= pos; i-- {
				indexes = append(indexes, i)
			}
		}
		s.sel = &Separate{Indexes: indexes, LastToggledIndex: pos}
	case *Separate:
		step := 1
		if pos < v.LastToggledIndex {
			step = -1
		}
		for i := v.LastToggledIndex; ; i += step {
			if !v.contains(i) {
				v.Indexes = append(v.Indexes, i)
			}
			if i == pos {
				break
			}
		}
		v.LastToggledIndex = pos
	default:
		s.sel = &Range{RootIndex: 0, ExtendToIndex: pos}
	}
	s.publishChanged()
}

func (s *Service) publishChanged() {
	positions := s.Selected()
	s.bus.Publish(SelectionChangedEvent{
		Positions: positions,
		Total:     len(positions),
	})
}
