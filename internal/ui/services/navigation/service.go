package navigation

import (
	"cratedig/internal/ui/services/events"
)

// Service moves the cursor over the flat item list and keeps it inside the
// visible viewport.
type Service struct {
	state   *State
	bus     events.EventBus
	countFn func() int // number of items currently listed
}

// NewService creates a new navigation service
func NewService(bus events.EventBus) *Service {
	return &Service{
		state: &State{
			ViewportHeight: 20, // default until the terminal reports its size
		},
		bus: bus,
	}
}

// SetCountFunction sets the function that reports the current item count
func (s *Service) SetCountFunction(fn func() int) {
	s.countFn = fn
}

// Cursor returns the current cursor position
func (s *Service) Cursor() int {
	return s.state.Cursor
}

// ViewportOffset returns the current viewport offset
func (s *Service) ViewportOffset() int {
	return s.state.ViewportOffset
}

// ViewportHeight returns the current viewport height
func (s *Service) ViewportHeight() int {
	return s.state.ViewportHeight
}

// SetViewportHeight updates the viewport height from the terminal size
func (s *Service) SetViewportHeight(height int) {
	// Reserve space for title, query line and status bar
	effectiveHeight := height - 6
	if effectiveHeight < 1 {
		effectiveHeight = 1
	}
	s.state.ViewportHeight = effectiveHeight
	s.ensureVisible()
}

// Navigate handles navigation in a direction
func (s *Service) Navigate(direction Direction) {
	oldCursor := s.state.Cursor

	switch direction {
	case DirectionUp:
		s.moveTo(s.state.Cursor - 1)
	case DirectionDown:
		s.moveTo(s.state.Cursor + 1)
	case DirectionPageUp:
		s.moveTo(s.state.Cursor - (s.state.ViewportHeight - 1))
	case DirectionPageDown:
		s.moveTo(s.state.Cursor + (s.state.ViewportHeight - 1))
	case DirectionHome:
		s.moveTo(0)
	case DirectionEnd:
		s.moveTo(s.maxIndex())
	}

	if oldCursor != s.state.Cursor {
		s.bus.Publish(CursorMovedEvent{
			OldIndex: oldCursor,
			NewIndex: s.state.Cursor,
		})
	}
}

// MoveToIndex moves cursor to a specific index
func (s *Service) MoveToIndex(index int) {
	oldCursor := s.state.Cursor
	s.moveTo(index)

	if oldCursor != s.state.Cursor {
		s.bus.Publish(CursorMovedEvent{
			OldIndex: oldCursor,
			NewIndex: s.state.Cursor,
		})
	}
}

func (s *Service) moveTo(index int) {
	s.state.Cursor = s.clampIndex(index)
	s.ensureVisible()
}

func (s *Service) maxIndex() int {
	if s.countFn == nil {
		return 0
	}
	count := s.countFn()
	if count <= 0 {
		return 0
	}
	return count - 1
}

func (s *Service) clampIndex(index int) int {
	if index < 0 {
		return 0
	}
	if max := s.maxIndex(); index > max {
		return max
	}
	return index
}

func (s *Service) ensureVisible() {
	if s.state.Cursor < s.state.ViewportOffset {
		s.state.ViewportOffset = s.state.Cursor
		s.bus.Publish(ViewportChangedEvent{
			Offset: s.state.ViewportOffset,
			Height: s.state.ViewportHeight,
		})
	} else if s.state.Cursor >= s.state.ViewportOffset+s.state.ViewportHeight {
		s.state.ViewportOffset = s.state.Cursor - s.state.ViewportHeight + 1
		s.bus.Publish(ViewportChangedEvent{
			Offset: s.state.ViewportOffset,
			Height: s.state.ViewportHeight,
		})
	}
}
