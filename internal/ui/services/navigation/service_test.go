package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cratedig/internal/ui/services/events"
)

func newTestService(count int) *Service {
	svc := NewService(&events.NullBus{})
	svc.SetCountFunction(func() int { return count })
	return svc
}

func TestNavigateClampsAtBounds(t *testing.T) {
	svc := newTestService(5)

	svc.Navigate(DirectionUp)
	assert.Equal(t, 0, svc.Cursor(), "cannot move above the first item")

	svc.Navigate(DirectionEnd)
	assert.Equal(t, 4, svc.Cursor())

	svc.Navigate(DirectionDown)
	assert.Equal(t, 4, svc.Cursor(), "cannot move past the last item")

	svc.Navigate(DirectionHome)
	assert.Equal(t, 0, svc.Cursor())
}

func TestNavigateEmptyList(t *testing.T) {
	svc := newTestService(0)

	svc.Navigate(DirectionDown)
	assert.Equal(t, 0, svc.Cursor())
	svc.Navigate(DirectionEnd)
	assert.Equal(t, 0, svc.Cursor())
}

func TestPagingScrollsViewport(t *testing.T) {
	svc := newTestService(100)
	svc.SetViewportHeight(16) // effective height 10

	svc.Navigate(DirectionPageDown)
	assert.Equal(t, 9, svc.Cursor())

	svc.Navigate(DirectionPageDown)
	assert.Equal(t, 18, svc.Cursor())
	assert.GreaterOrEqual(t, svc.Cursor(), svc.ViewportOffset())
	assert.Less(t, svc.Cursor(), svc.ViewportOffset()+svc.ViewportHeight())
}

func TestMoveToIndexKeepsCursorVisible(t *testing.T) {
	svc := newTestService(50)
	svc.SetViewportHeight(16)

	svc.MoveToIndex(40)
	assert.Equal(t, 40, svc.Cursor())
	assert.GreaterOrEqual(t, svc.Cursor(), svc.ViewportOffset())

	svc.MoveToIndex(2)
	assert.Equal(t, 2, svc.Cursor())
	assert.Equal(t, 2, svc.ViewportOffset())
}
