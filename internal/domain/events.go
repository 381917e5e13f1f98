package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventItemsDiscoveredBatch EventType = "ItemsDiscoveredBatch"
	EventScanStarted          EventType = "ScanStarted"
	EventScanCompleted        EventType = "ScanCompleted"
	EventScanRequested        EventType = "ScanRequested"
	EventLibraryOpened        EventType = "LibraryOpened"
	EventLibraryClosed        EventType = "LibraryClosed"
	EventIndexUpdated         EventType = "IndexUpdated"
	EventFilesChanged         EventType = "FilesChanged"
	EventStatusUpdated        EventType = "StatusUpdated"
	EventError                EventType = "Error"
	EventConfigLoaded         EventType = "ConfigLoaded"
	EventConfigSaved          EventType = "ConfigSaved"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// ItemsDiscoveredBatchEvent is emitted when the scanner finds a batch of files
type ItemsDiscoveredBatchEvent struct {
	Root  string
	Paths []string // relative to Root
}

func (e ItemsDiscoveredBatchEvent) Type() EventType { return EventItemsDiscoveredBatch }

// ScanStartedEvent is emitted when library scanning begins
type ScanStartedEvent struct {
	Roots []string
}

func (e ScanStartedEvent) Type() EventType { return EventScanStarted }

// ScanCompletedEvent is emitted when library scanning completes
type ScanCompletedEvent struct {
	FilesFound int
	Err        error
}

func (e ScanCompletedEvent) Type() EventType { return EventScanCompleted }

// ScanRequestedEvent is emitted to request a new scan
type ScanRequestedEvent struct {
	Roots []string
}

func (e ScanRequestedEvent) Type() EventType { return EventScanRequested }

// LibraryOpenedEvent is emitted when a library has been opened
type LibraryOpenedEvent struct {
	Library Library
}

func (e LibraryOpenedEvent) Type() EventType { return EventLibraryOpened }

// LibraryClosedEvent is emitted when the current library has been closed
type LibraryClosedEvent struct {
	Root string
}

func (e LibraryClosedEvent) Type() EventType { return EventLibraryClosed }

// IndexUpdatedEvent is emitted after the index has absorbed new or changed files
type IndexUpdatedEvent struct {
	ItemCount int
}

func (e IndexUpdatedEvent) Type() EventType { return EventIndexUpdated }

// FilesChangedEvent is emitted by the watcher when filesystem changes settle
type FilesChangedEvent struct {
	Changed []string // relative paths of created/modified files
	Removed []string // relative paths of removed files
}

func (e FilesChangedEvent) Type() EventType { return EventFilesChanged }

// StatusUpdatedEvent is emitted when the library status changes
type StatusUpdatedEvent struct {
	Status LibraryStatus
}

func (e StatusUpdatedEvent) Type() EventType { return EventStatusUpdated }

// ErrorEvent is emitted when an error occurs
type ErrorEvent struct {
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	LibraryDir string
	Extensions []string
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct{}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }
