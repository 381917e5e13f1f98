package eventbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitEvent(t *testing.T, ch chan DomainEvent) DomainEvent {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event arrived")
		return nil
	}
}

func TestPublishReachesSubscribers(t *testing.T) {
	bus := New()

	first := make(chan DomainEvent, 1)
	second := make(chan DomainEvent, 1)
	bus.Subscribe(EventIndexUpdated, func(e DomainEvent) { first <- e })
	bus.Subscribe(EventIndexUpdated, func(e DomainEvent) { second <- e })

	bus.Publish(IndexUpdatedEvent{ItemCount: 7})

	ev, ok := waitEvent(t, first).(IndexUpdatedEvent)
	require.True(t, ok)
	assert.Equal(t, 7, ev.ItemCount)
	waitEvent(t, second)
}

func TestSubscribersAreTypeScoped(t *testing.T) {
	bus := New()

	got := make(chan DomainEvent, 1)
	bus.Subscribe(EventLibraryClosed, func(e DomainEvent) { got <- e })

	bus.Publish(IndexUpdatedEvent{ItemCount: 1})

	select {
	case ev := <-got:
		t.Fatalf("unexpected delivery for foreign event type: %+v", ev)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := New()

	removed := make(chan DomainEvent, 4)
	kept := make(chan DomainEvent, 4)
	unsubscribe := bus.Subscribe(EventIndexUpdated, func(e DomainEvent) { removed <- e })
	bus.Subscribe(EventIndexUpdated, func(e DomainEvent) { kept <- e })

	bus.Publish(IndexUpdatedEvent{ItemCount: 1})
	waitEvent(t, removed)
	waitEvent(t, kept)

	unsubscribe()

	bus.Publish(IndexUpdatedEvent{ItemCount: 2})
	waitEvent(t, kept)

	select {
	case ev := <-removed:
		t.Fatalf("handler still delivered after unsubscribe: %+v", ev)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	bus := New()

	kept := make(chan DomainEvent, 4)
	unsubscribe := bus.Subscribe(EventIndexUpdated, func(e DomainEvent) {})
	bus.Subscribe(EventIndexUpdated, func(e DomainEvent) { kept <- e })

	unsubscribe()
	unsubscribe() // removing twice must not drop the surviving handler

	bus.Publish(IndexUpdatedEvent{ItemCount: 3})
	waitEvent(t, kept)
}

func TestPanickingHandlerDoesNotKillDispatch(t *testing.T) {
	bus := New()

	got := make(chan DomainEvent, 2)
	bus.Subscribe(EventIndexUpdated, func(e DomainEvent) { panic("boom") })
	bus.Subscribe(EventIndexUpdated, func(e DomainEvent) { got <- e })

	bus.Publish(IndexUpdatedEvent{ItemCount: 1})
	waitEvent(t, got)

	bus.Publish(IndexUpdatedEvent{ItemCount: 2})
	waitEvent(t, got)
}
