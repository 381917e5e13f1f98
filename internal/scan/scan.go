package scan

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"cratedig/internal/eventbus"
)

// ErrNotADirectory is returned when a scan root is not a directory
var ErrNotADirectory = errors.New("scan root is not a directory")

const batchSize = 200

// ScanService finds sample files under the library roots
type ScanService interface {
	StartScan(ctx context.Context, roots []string) error
	StopScan()
}

// scanService is the concrete implementation
type scanService struct {
	bus        eventbus.EventBus
	extensions map[string]struct{}
	ignoreDirs map[string]struct{}
	mu         sync.Mutex
	isScanning bool
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// NewScanService creates a new scan service
func NewScanService(bus eventbus.EventBus, extensions, ignoreDirs []string) ScanService {
	ss := &scanService{
		bus:        bus,
		extensions: makeExtensionSet(extensions),
		ignoreDirs: makeNameSet(ignoreDirs),
	}

	// Subscribe to scan requests
	bus.Subscribe(eventbus.EventScanRequested, func(e eventbus.DomainEvent) {
		if event, ok := e.(eventbus.ScanRequestedEvent); ok {
			go ss.StartScan(context.Background(), event.Roots)
		}
	})

	return ss
}

// StartScan starts scanning for sample files
func (ss *scanService) StartScan(ctx context.Context, roots []string) error {
	ss.mu.Lock()
	if ss.isScanning {
		ss.mu.Unlock()
		return fmt.Errorf("scan already in progress")
	}
	ss.isScanning = true

	scanCtx, cancel := context.WithCancel(ctx)
	ss.cancelFunc = cancel
	ss.mu.Unlock()

	ss.bus.Publish(eventbus.ScanStartedEvent{Roots: roots})

	filesFound := 0
	var scanErr error

	ss.wg.Add(1)
	go func() {
		defer ss.wg.Done()
		defer func() {
			ss.mu.Lock()
			ss.isScanning = false
			ss.cancelFunc = nil
			ss.mu.Unlock()

			ss.bus.Publish(eventbus.ScanCompletedEvent{FilesFound: filesFound, Err: scanErr})
		}()

		for _, root := range roots {
			select {
			case <-scanCtx.Done():
				return
			default:
				count, err := ss.scanRoot(scanCtx, root)
				filesFound += count
				if err != nil {
					scanErr = err
					ss.bus.Publish(eventbus.ErrorEvent{
						Message: fmt.Sprintf("scan of %s failed", root),
						Err:     err,
					})
				}
			}
		}
	}()

	return nil
}

// StopScan stops any ongoing scan
func (ss *scanService) StopScan() {
	ss.mu.Lock()
	if ss.cancelFunc != nil {
		ss.cancelFunc()
	}
	ss.mu.Unlock()

	ss.wg.Wait()
}

// scanRoot walks one root with an explicit worklist instead of recursion, so
// unreadable subdirectories are skipped without aborting the whole scan.
func (ss *scanService) scanRoot(ctx context.Context, root string) (int, error) {
	info, err := os.Stat(root)
	if err != nil {
		return 0, fmt.Errorf("stat scan root: %w", err)
	}
	if !info.IsDir() {
		return 0, ErrNotADirectory
	}

	filesFound := 0
	batch := make([]string, 0, batchSize)
	unscanned := []string{root}

	flush := func() {
		if len(batch) == 0 {
			return
		}
		paths := make([]string, len(batch))
		copy(paths, batch)
		ss.bus.Publish(eventbus.ItemsDiscoveredBatchEvent{Root: root, Paths: paths})
		batch = batch[:0]
	}

	for len(unscanned) > 0 {
		select {
		case <-ctx.Done():
			flush()
			return filesFound, ctx.Err()
		default:
		}

		dir := unscanned[len(unscanned)-1]
		unscanned = unscanned[:len(unscanned)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			log.Printf("Skipping unreadable directory %s: %v", dir, err)
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() {
				if _, ignored := ss.ignoreDirs[entry.Name()]; !ignored {
					unscanned = append(unscanned, filepath.Join(dir, entry.Name()))
				}
				continue
			}
			if !ss.wantsFile(entry.Name()) {
				continue
			}
			rel, err := filepath.Rel(root, filepath.Join(dir, entry.Name()))
			if err != nil {
				continue
			}
			batch = append(batch, filepath.ToSlash(rel))
			filesFound++
			if len(batch) >= batchSize {
				flush()
			}
		}
	}

	flush()
	return filesFound, nil
}

func (ss *scanService) wantsFile(name string) bool {
	if len(ss.extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	_, ok := ss.extensions[ext]
	return ok
}

func makeExtensionSet(extensions []string) map[string]struct{} {
	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = struct{}{}
	}
	return set
}

func makeNameSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		set[name] = struct{}{}
	}
	return set
}
