package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"cratedig/internal/domain"
	"cratedig/internal/eventbus"
	"cratedig/internal/index"
	"cratedig/internal/query"
	"cratedig/internal/scan"
	"cratedig/internal/watch"
)

// ErrNoLibraryOpen is returned by operations that need an open library
var ErrNoLibraryOpen = errors.New("no library is open")

const indexFileName = "index.db"

// Service owns the library backend: the SQLite index, the scanner that fills
// it and the watcher that keeps it fresh. The UI talks to it through Open,
// Close, Search and Status; progress arrives as bus events.
type Service struct {
	bus        eventbus.EventBus
	extensions []string
	ignoreDirs []string
	watchFiles bool

	mu          sync.Mutex
	db          *sql.DB
	store       *index.Store
	lib         *domain.Library
	status      domain.LibraryStatus
	scanner     scan.ScanService
	cancelWatch context.CancelFunc
}

// NewService creates the library service and wires it to the bus
func NewService(bus eventbus.EventBus, extensions, ignoreDirs []string, watchFiles bool) *Service {
	// The index directory itself must never be scanned or watched
	ignoreDirs = append(append([]string{}, ignoreDirs...), ".cratedig")

	s := &Service{
		bus:        bus,
		extensions: extensions,
		ignoreDirs: ignoreDirs,
		watchFiles: watchFiles,
	}
	s.scanner = scan.NewScanService(bus, extensions, ignoreDirs)

	bus.Subscribe(eventbus.EventItemsDiscoveredBatch, func(e eventbus.DomainEvent) {
		if ev, ok := e.(eventbus.ItemsDiscoveredBatchEvent); ok {
			s.absorbPaths(ev.Paths)
		}
	})
	bus.Subscribe(eventbus.EventFilesChanged, func(e eventbus.DomainEvent) {
		if ev, ok := e.(eventbus.FilesChangedEvent); ok {
			s.applyChanges(ev.Changed, ev.Removed)
		}
	})
	bus.Subscribe(eventbus.EventScanStarted, func(e eventbus.DomainEvent) {
		s.setScanning(true)
	})
	bus.Subscribe(eventbus.EventScanCompleted, func(e eventbus.DomainEvent) {
		if ev, ok := e.(eventbus.ScanCompletedEvent); ok {
			s.finishScan(ev)
		}
	})

	return s
}

// Open opens the library rooted at dir, creating its index on first use,
// then kicks off a background scan and, when enabled, the watcher. Any
// previously open library is closed first.
func (s *Service) Open(ctx context.Context, dir string) error {
	root, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve library root: %w", err)
	}

	if err := s.Close(); err != nil {
		return err
	}

	dbPath := filepath.Join(root, ".cratedig", indexFileName)
	db, err := index.OpenDatabase(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("open library index: %w", err)
	}

	store := index.NewStore(db)
	count, err := store.Count(ctx)
	if err != nil {
		db.Close()
		return err
	}

	lib := &domain.Library{
		Root:   root,
		DBPath: dbPath,
		Name:   filepath.Base(root),
	}

	s.mu.Lock()
	s.db = db
	s.store = store
	s.lib = lib
	s.status = domain.LibraryStatus{Open: true, ItemCount: count}
	s.mu.Unlock()

	s.bus.Publish(eventbus.LibraryOpenedEvent{Library: *lib})
	s.publishStatus()

	// Refresh the index in the background; the UI polls status until the
	// scan settles.
	s.bus.Publish(eventbus.ScanRequestedEvent{Roots: []string{root}})

	if s.watchFiles {
		watchCtx, cancel := context.WithCancel(context.Background())
		s.mu.Lock()
		s.cancelWatch = cancel
		s.status.Watching = true
		s.mu.Unlock()

		w := watch.NewWatcher(s.bus, root, s.extensions, s.ignoreDirs)
		go func() {
			if err := w.Run(watchCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("Watcher stopped: %v", err)
				s.bus.Publish(eventbus.ErrorEvent{Message: "library watcher stopped", Err: err})
			}
		}()
	}

	return nil
}

// Close closes the current library, if any
func (s *Service) Close() error {
	s.mu.Lock()
	db := s.db
	lib := s.lib
	cancelWatch := s.cancelWatch
	s.db = nil
	s.store = nil
	s.lib = nil
	s.cancelWatch = nil
	s.status = domain.LibraryStatus{}
	s.mu.Unlock()

	if cancelWatch != nil {
		cancelWatch()
	}
	if db == nil {
		return nil
	}

	s.scanner.StopScan()
	if err := db.Close(); err != nil {
		return fmt.Errorf("close library index: %w", err)
	}
	if lib != nil {
		s.bus.Publish(eventbus.LibraryClosedEvent{Root: lib.Root})
	}
	return nil
}

// Status returns a snapshot of the backend state; the UI polls this while
// async work is in flight.
func (s *Service) Status() domain.LibraryStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// StatusLine renders the status as a single line for the status bar
func (s *Service) StatusLine() string {
	s.mu.Lock()
	status := s.status
	lib := s.lib
	s.mu.Unlock()

	if !status.Open || lib == nil {
		return "no library open"
	}
	line := fmt.Sprintf("%s — %d items", lib.Name, status.ItemCount)
	if status.Scanning {
		line += " (scanning)"
	}
	if status.Error != "" {
		line += " — error: " + status.Error
	}
	return line
}

// Library returns the currently open library, or nil
func (s *Service) Library() *domain.Library {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lib == nil {
		return nil
	}
	lib := *s.lib
	return &lib
}

// Search runs a query against the index and returns matching items in
// stable path order
func (s *Service) Search(ctx context.Context, expr query.Expr) ([]domain.Item, error) {
	s.mu.Lock()
	store := s.store
	s.mu.Unlock()

	if store == nil {
		return nil, ErrNoLibraryOpen
	}
	return store.Search(ctx, expr)
}

// SetTags replaces the tag list of one item
func (s *Service) SetTags(ctx context.Context, id int64, tags []string) error {
	s.mu.Lock()
	store := s.store
	s.mu.Unlock()

	if store == nil {
		return ErrNoLibraryOpen
	}
	return store.SetTags(ctx, id, tags)
}

func (s *Service) absorbPaths(paths []string) {
	s.mu.Lock()
	store := s.store
	s.mu.Unlock()
	if store == nil {
		return
	}

	items := make([]domain.Item, 0, len(paths))
	for _, rel := range paths {
		items = append(items, domain.Item{
			Path: rel,
			Name: filepath.Base(rel),
			Tags: TagsForPath(rel),
		})
	}

	if err := store.UpsertItems(context.Background(), items); err != nil {
		log.Printf("Failed to index %d items: %v", len(items), err)
		s.bus.Publish(eventbus.ErrorEvent{Message: "indexing failed", Err: err})
		return
	}
	s.refreshCount(store)
}

func (s *Service) applyChanges(changed, removed []string) {
	s.mu.Lock()
	store := s.store
	s.mu.Unlock()
	if store == nil {
		return
	}

	if len(removed) > 0 {
		if err := store.DeleteByPath(context.Background(), removed); err != nil {
			log.Printf("Failed to remove %d items: %v", len(removed), err)
		}
	}
	if len(changed) > 0 {
		s.absorbPaths(changed)
		return
	}
	s.refreshCount(store)
}

func (s *Service) refreshCount(store *index.Store) {
	count, err := store.Count(context.Background())
	if err != nil {
		log.Printf("Failed to count items: %v", err)
		return
	}

	s.mu.Lock()
	s.status.ItemCount = count
	s.mu.Unlock()

	s.bus.Publish(eventbus.IndexUpdatedEvent{ItemCount: count})
	s.publishStatus()
}

func (s *Service) setScanning(scanning bool) {
	s.mu.Lock()
	if !s.status.Open {
		s.mu.Unlock()
		return
	}
	s.status.Scanning = scanning
	s.mu.Unlock()
	s.publishStatus()
}

func (s *Service) finishScan(ev eventbus.ScanCompletedEvent) {
	s.mu.Lock()
	if !s.status.Open {
		s.mu.Unlock()
		return
	}
	s.status.Scanning = false
	if ev.Err != nil {
		s.status.Error = ev.Err.Error()
	} else {
		s.status.Error = ""
	}
	s.mu.Unlock()
	s.publishStatus()
}

func (s *Service) publishStatus() {
	s.bus.Publish(eventbus.StatusUpdatedEvent{Status: s.Status()})
}

// TagsForPath derives the initial tag set of an item from its relative
// path: each directory segment and each token of the file name stem becomes
// a lowercase tag. Users refine tags later; this just makes a fresh library
// queryable at all.
func TagsForPath(rel string) []string {
	rel = filepath.ToSlash(rel)
	stem := strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))

	seen := make(map[string]struct{})
	var tags []string
	add := func(tag string) {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			return
		}
		if _, dup := seen[tag]; dup {
			return
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}

	dir := filepath.ToSlash(filepath.Dir(rel))
	if dir != "." {
		for _, segment := range strings.Split(dir, "/") {
			add(segment)
		}
	}
	for _, token := range strings.FieldsFunc(stem, func(r rune) bool {
		return r == '-' || r == '_' || r == ' ' || r == '.'
	}) {
		add(token)
	}
	return tags
}
