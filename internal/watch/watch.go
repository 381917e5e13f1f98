package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"cratedig/internal/eventbus"
)

const debounceInterval = 150 * time.Millisecond

// Watcher monitors a library root and publishes FilesChangedEvent batches
// once filesystem events settle.
type Watcher struct {
	bus        eventbus.EventBus
	root       string
	extensions map[string]struct{}
	ignoreDirs map[string]struct{}
}

// NewWatcher creates a watcher for the given library root
func NewWatcher(bus eventbus.EventBus, root string, extensions, ignoreDirs []string) *Watcher {
	extSet := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extSet[ext] = struct{}{}
	}
	ignoreSet := make(map[string]struct{}, len(ignoreDirs))
	for _, dir := range ignoreDirs {
		if dir = strings.TrimSpace(dir); dir != "" {
			ignoreSet[dir] = struct{}{}
		}
	}
	return &Watcher{
		bus:        bus,
		root:       filepath.Clean(root),
		extensions: extSet,
		ignoreDirs: ignoreSet,
	}
}

// Run watches until the context is cancelled. Changes are debounced and
// published as one FilesChangedEvent per settled burst.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	watched := make(map[string]struct{})
	if err := w.addRecursiveWatch(watcher, w.root, watched); err != nil {
		return err
	}

	log.Printf("Watching %s (%d directories)", w.root, len(watched))

	var debounceTimer *time.Timer
	changed := make(map[string]struct{})
	removed := make(map[string]struct{})

	for {
		var debounceC <-chan time.Time
		if debounceTimer != nil {
			debounceC = debounceTimer.C
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event, watcher, watched, &debounceTimer, changed, removed)
		case err, ok := <-watcher.Errors:
			if !ok || err == nil {
				continue
			}
			log.Printf("Watcher error: %v", err)
		case <-debounceC:
			stopTimer(&debounceTimer)
			if len(changed) == 0 && len(removed) == 0 {
				continue
			}
			w.bus.Publish(eventbus.FilesChangedEvent{
				Changed: sortedKeys(changed),
				Removed: sortedKeys(removed),
			})
			changed = make(map[string]struct{})
			removed = make(map[string]struct{})
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event, watcher *fsnotify.Watcher, watched map[string]struct{}, debounceTimer **time.Timer, changed, removed map[string]struct{}) {
	path := filepath.Clean(event.Name)
	rel := w.relativePath(path)

	if event.Op&fsnotify.Create != 0 {
		// A created directory needs its own watch; files under it arrive as
		// separate events.
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if _, ignored := w.ignoreDirs[filepath.Base(path)]; !ignored {
				if err := w.addRecursiveWatch(watcher, path, watched); err != nil {
					log.Printf("Failed to watch new directory %s: %v", rel, err)
				}
			}
			return
		}
	}

	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		if _, ok := watched[path]; ok {
			delete(watched, path)
			schedule(debounceTimer)
			return
		}
		if w.isRelevant(path) {
			removed[rel] = struct{}{}
			delete(changed, rel)
			schedule(debounceTimer)
		}
		return
	}

	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}
	if !w.isRelevant(path) {
		return
	}

	changed[rel] = struct{}{}
	schedule(debounceTimer)
}

func (w *Watcher) addRecursiveWatch(watcher *fsnotify.Watcher, start string, watched map[string]struct{}) error {
	return filepath.WalkDir(start, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if _, ignored := w.ignoreDirs[entry.Name()]; ignored {
			return fs.SkipDir
		}
		clean := filepath.Clean(path)
		if _, ok := watched[clean]; ok {
			return nil
		}
		if err := watcher.Add(clean); err != nil {
			return fmt.Errorf("watch directory %s: %w", clean, err)
		}
		watched[clean] = struct{}{}
		return nil
	})
}

func (w *Watcher) relativePath(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func (w *Watcher) isRelevant(path string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	_, ok := w.extensions[ext]
	return ok
}

func schedule(timer **time.Timer) {
	if *timer == nil {
		*timer = time.NewTimer(debounceInterval)
		return
	}
	if !(*timer).Stop() {
		select {
		case <-(*timer).C:
		default:
		}
	}
	(*timer).Reset(debounceInterval)
}

func stopTimer(timer **time.Timer) {
	if *timer == nil {
		return
	}
	if !(*timer).Stop() {
		select {
		case <-(*timer).C:
		default:
		}
	}
	*timer = nil
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
