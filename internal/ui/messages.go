package ui

import (
	"cratedig/internal/domain"
	"cratedig/internal/eventbus"
)

// EventMsg carries a backend bus event into the Bubble Tea update loop
type EventMsg struct {
	Event eventbus.DomainEvent
}

// itemsLoadedMsg contains the result of an async item query
type itemsLoadedMsg struct {
	items []domain.Item
	err   error
}

// helpPagerMsg contains the result of a help pager command
type helpPagerMsg struct {
	err error
}

// tickMsg drives the scan spinner while a scan is running
type tickMsg struct{}
