package library

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cratedig/internal/eventbus"
	"cratedig/internal/query"
)

func TestTagsForPath(t *testing.T) {
	assert.Equal(t, []string{"drums", "kick", "808"}, TagsForPath("drums/kick/808.wav"))
	assert.Equal(t, []string{"loops", "amen", "break", "170bpm"}, TagsForPath("loops/amen_break-170bpm.wav"))
	assert.Equal(t, []string{"kick"}, TagsForPath("kick.wav"))
	// Duplicate segments collapse
	assert.Equal(t, []string{"kick"}, TagsForPath("kick/kick.wav"))
}

func writeSample(t *testing.T, root, rel string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

// scanWaiter must be created before Open so the completion event is not missed
func scanWaiter(bus eventbus.EventBus) chan struct{} {
	done := make(chan struct{}, 4)
	bus.Subscribe(eventbus.EventScanCompleted, func(e eventbus.DomainEvent) {
		done <- struct{}{}
	})
	return done
}

func waitForScanSettled(t *testing.T, svc *Service, done chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("scan did not complete in time")
	}
	// The index absorbs discovery batches asynchronously; wait for the
	// status to stop moving.
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if !svc.Status().Scanning {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("scan flag never cleared")
}

// waitForItemCount polls until the index reports the expected size; batches
// are absorbed on bus goroutines and can land slightly after scan completion
func waitForItemCount(t *testing.T, svc *Service, want int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if svc.Status().ItemCount == want {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("index never reached %d items (have %d)", want, svc.Status().ItemCount)
}

func TestOpenScansAndIndexesLibrary(t *testing.T) {
	root := t.TempDir()
	writeSample(t, root, "drums/kick/808.wav")
	writeSample(t, root, "drums/snare/rim.wav")
	writeSample(t, root, "notes.txt") // filtered out

	bus := eventbus.New()
	svc := NewService(bus, []string{".wav"}, nil, false)
	t.Cleanup(func() { svc.Close() })

	done := scanWaiter(bus)
	require.NoError(t, svc.Open(context.Background(), root))
	waitForScanSettled(t, svc, done)
	waitForItemCount(t, svc, 2)

	status := svc.Status()
	assert.True(t, status.Open)
	assert.Empty(t, status.Error)

	items, err := svc.Search(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "drums/kick/808.wav", items[0].Path)
	assert.Contains(t, items[0].Tags, "kick")

	items, err = svc.Search(context.Background(), &query.Tag{Name: "snare"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "rim.wav", items[0].Name)
}

func TestCloseReleasesLibrary(t *testing.T) {
	root := t.TempDir()
	writeSample(t, root, "kick.wav")

	bus := eventbus.New()
	closed := make(chan eventbus.LibraryClosedEvent, 1)
	bus.Subscribe(eventbus.EventLibraryClosed, func(e eventbus.DomainEvent) {
		if ev, ok := e.(eventbus.LibraryClosedEvent); ok {
			closed <- ev
		}
	})

	svc := NewService(bus, []string{".wav"}, nil, false)
	done := scanWaiter(bus)
	require.NoError(t, svc.Open(context.Background(), root))
	waitForScanSettled(t, svc, done)
	waitForItemCount(t, svc, 1)

	require.NoError(t, svc.Close())
	assert.False(t, svc.Status().Open)

	_, err := svc.Search(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoLibraryOpen)

	select {
	case ev := <-closed:
		assert.Equal(t, svcRoot(t, root), ev.Root)
	case <-time.After(2 * time.Second):
		t.Fatal("no library-closed event")
	}
}

func svcRoot(t *testing.T, dir string) string {
	t.Helper()
	abs, err := filepath.Abs(dir)
	require.NoError(t, err)
	return abs
}

func TestSearchWithoutOpenLibrary(t *testing.T) {
	bus := eventbus.New()
	svc := NewService(bus, nil, nil, false)

	_, err := svc.Search(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoLibraryOpen)

	err = svc.SetTags(context.Background(), 1, []string{"x"})
	assert.ErrorIs(t, err, ErrNoLibraryOpen)
}

func TestReopenKeepsIndexOnDisk(t *testing.T) {
	root := t.TempDir()
	writeSample(t, root, "kick.wav")

	bus := eventbus.New()
	svc := NewService(bus, []string{".wav"}, nil, false)
	t.Cleanup(func() { svc.Close() })

	done := scanWaiter(bus)
	require.NoError(t, svc.Open(context.Background(), root))
	waitForScanSettled(t, svc, done)
	waitForItemCount(t, svc, 1)

	var firstID int64
	items, err := svc.Search(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	firstID = items[0].ID

	require.NoError(t, svc.Close())
	require.NoError(t, svc.Open(context.Background(), root))
	waitForScanSettled(t, svc, done)
	waitForItemCount(t, svc, 1)

	items, err = svc.Search(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, items, 1, "rescan must not duplicate items")
	assert.Equal(t, firstID, items[0].ID, "ids are stable across reopen")
}

func TestStatusLine(t *testing.T) {
	bus := eventbus.New()
	svc := NewService(bus, nil, nil, false)
	assert.Equal(t, "no library open", svc.StatusLine())

	root := t.TempDir()
	writeSample(t, root, "kick.wav")
	bus2 := eventbus.New()
	svc2 := NewService(bus2, []string{".wav"}, nil, false)
	t.Cleanup(func() { svc2.Close() })
	done := scanWaiter(bus2)
	require.NoError(t, svc2.Open(context.Background(), root))
	waitForScanSettled(t, svc2, done)
	waitForItemCount(t, svc2, 1)
	assert.Contains(t, svc2.StatusLine(), "1 items")
}
