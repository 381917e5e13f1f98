package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cratedig/internal/eventbus"
)

func collectChanges(bus eventbus.EventBus) chan eventbus.FilesChangedEvent {
	ch := make(chan eventbus.FilesChangedEvent, 16)
	bus.Subscribe(eventbus.EventFilesChanged, func(e eventbus.DomainEvent) {
		if ev, ok := e.(eventbus.FilesChangedEvent); ok {
			ch <- ev
		}
	})
	return ch
}

func waitChange(t *testing.T, ch chan eventbus.FilesChangedEvent) eventbus.FilesChangedEvent {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("no files-changed event arrived")
		return eventbus.FilesChangedEvent{}
	}
}

func TestWatcherReportsCreatedFile(t *testing.T) {
	root := t.TempDir()
	bus := eventbus.New()
	ch := collectChanges(bus)

	w := NewWatcher(bus, root, []string{".wav"}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// Give the watcher a moment to install its watches
	time.Sleep(200 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(root, "kick.wav"), []byte("x"), 0644))

	ev := waitChange(t, ch)
	assert.Contains(t, ev.Changed, "kick.wav")
	assert.Empty(t, ev.Removed)
}

func TestWatcherIgnoresIrrelevantExtensions(t *testing.T) {
	root := t.TempDir()
	bus := eventbus.New()
	ch := collectChanges(bus)

	w := NewWatcher(bus, root, []string{".wav"}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	time.Sleep(200 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0644))

	select {
	case ev := <-ch:
		t.Fatalf("unexpected event for irrelevant file: %+v", ev)
	case <-time.After(500 * time.Millisecond):
		// Nothing arrived, as expected
	}
}

func TestWatcherReportsRemovedFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "snare.wav")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	bus := eventbus.New()
	ch := collectChanges(bus)

	w := NewWatcher(bus, root, []string{".wav"}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	time.Sleep(200 * time.Millisecond)

	require.NoError(t, os.Remove(path))

	ev := waitChange(t, ch)
	assert.Contains(t, ev.Removed, "snare.wav")
}

func TestWatcherStopsOnContextCancel(t *testing.T) {
	root := t.TempDir()
	bus := eventbus.New()

	w := NewWatcher(bus, root, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
