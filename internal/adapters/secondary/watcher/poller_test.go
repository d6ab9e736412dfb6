package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/promptdeck/internal/domain/ports"
)

func createTalkFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "talk.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func updateFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestPollingWatcher(t *testing.T) {
	t.Run("create new watcher", func(t *testing.T) {
		w := NewPollingWatcher(100*time.Millisecond, 500*time.Millisecond, nil)
		assert.NotNil(t, w)
		assert.Equal(t, 100*time.Millisecond, w.interval)
		assert.Equal(t, 500*time.Millisecond, w.debounce)
	})

	t.Run("watch file changes", func(t *testing.T) {
		w := NewPollingWatcher(50*time.Millisecond, 100*time.Millisecond, nil)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		defer func() { _ = w.Stop() }()

		path := createTalkFile(t, "# Intro")

		events, err := w.Watch(ctx, path)
		require.NoError(t, err)

		time.Sleep(100 * time.Millisecond)
		updateFile(t, path, "# Intro edited")

		select {
		case event := <-events:
			assert.Equal(t, path, event.Path)
			assert.Equal(t, ports.Modified, event.Type)
			assert.WithinDuration(t, time.Now(), event.Timestamp, 2*time.Second)
		case <-time.After(2 * time.Second):
			t.Fatal("no event received")
		}
	})

	t.Run("debouncing collapses rapid edits", func(t *testing.T) {
		w := NewPollingWatcher(50*time.Millisecond, 200*time.Millisecond, nil)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		defer func() { _ = w.Stop() }()

		path := createTalkFile(t, "initial")

		events, err := w.Watch(ctx, path)
		require.NoError(t, err)

		time.Sleep(100 * time.Millisecond)

		for i := 0; i < 3; i++ {
			updateFile(t, path, fmt.Sprintf("change %d", i))
			time.Sleep(30 * time.Millisecond)
		}

		select {
		case event := <-events:
			assert.Equal(t, ports.Modified, event.Type)
		case <-time.After(1 * time.Second):
			t.Fatal("no event received")
		}

		select {
		case <-events:
			t.Fatal("got unexpected second event")
		case <-time.After(300 * time.Millisecond):
			// No extra events
		}
	})

	t.Run("file deletion reported once as Deleted", func(t *testing.T) {
		w := NewPollingWatcher(50*time.Millisecond, 100*time.Millisecond, nil)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		defer func() { _ = w.Stop() }()

		path := createTalkFile(t, "content")

		events, err := w.Watch(ctx, path)
		require.NoError(t, err)

		time.Sleep(100 * time.Millisecond)
		require.NoError(t, os.Remove(path))

		select {
		case event := <-events:
			assert.Equal(t, path, event.Path)
			assert.Equal(t, ports.Deleted, event.Type)
		case <-time.After(2 * time.Second):
			t.Fatal("no event received for deletion")
		}

		// File stays missing; no repeated deletion events
		select {
		case event := <-events:
			t.Fatalf("got unexpected repeated event: %v", event.Type)
		case <-time.After(300 * time.Millisecond):
		}
	})

	t.Run("file recreation reported as Created", func(t *testing.T) {
		w := NewPollingWatcher(50*time.Millisecond, 100*time.Millisecond, nil)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		defer func() { _ = w.Stop() }()

		path := createTalkFile(t, "content")

		events, err := w.Watch(ctx, path)
		require.NoError(t, err)

		time.Sleep(100 * time.Millisecond)
		require.NoError(t, os.Remove(path))

		select {
		case event := <-events:
			require.Equal(t, ports.Deleted, event.Type)
		case <-time.After(2 * time.Second):
			t.Fatal("no deletion event")
		}

		// Let the debounce window pass before the file returns
		time.Sleep(150 * time.Millisecond)
		updateFile(t, path, "content again")

		select {
		case event := <-events:
			assert.Equal(t, ports.Created, event.Type)
		case <-time.After(2 * time.Second):
			t.Fatal("no creation event")
		}
	})

	t.Run("touch without content change is ignored", func(t *testing.T) {
		w := NewPollingWatcher(50*time.Millisecond, 100*time.Millisecond, nil)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		defer func() { _ = w.Stop() }()

		path := createTalkFile(t, "stable content")

		events, err := w.Watch(ctx, path)
		require.NoError(t, err)

		time.Sleep(100 * time.Millisecond)

		// Bump mtime only
		future := time.Now().Add(time.Second)
		require.NoError(t, os.Chtimes(path, future, future))

		select {
		case event := <-events:
			t.Fatalf("got unexpected event for identical content: %v", event.Type)
		case <-time.After(400 * time.Millisecond):
		}
	})

	t.Run("stop watcher", func(t *testing.T) {
		w := NewPollingWatcher(50*time.Millisecond, 100*time.Millisecond, nil)
		ctx := context.Background()

		path := createTalkFile(t, "content")

		events, err := w.Watch(ctx, path)
		require.NoError(t, err)

		err = w.Stop()
		assert.NoError(t, err)

		// Channel should be closed
		_, ok := <-events
		assert.False(t, ok)

		// Stop again should not error
		err = w.Stop()
		assert.NoError(t, err)
	})

	t.Run("context cancellation", func(t *testing.T) {
		w := NewPollingWatcher(50*time.Millisecond, 100*time.Millisecond, nil)
		ctx, cancel := context.WithCancel(context.Background())
		defer func() { _ = w.Stop() }()

		path := createTalkFile(t, "content")

		events, err := w.Watch(ctx, path)
		require.NoError(t, err)

		cancel()

		time.Sleep(200 * time.Millisecond)
		updateFile(t, path, "updated")

		select {
		case <-events:
			// May receive one event if it was already in flight
		case <-time.After(200 * time.Millisecond):
			// No event
		}
	})

	t.Run("invalid file path", func(t *testing.T) {
		w := NewPollingWatcher(50*time.Millisecond, 100*time.Millisecond, nil)

		_, err := w.Watch(context.Background(), "/nonexistent/path/talk.md")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "initial scan")
	})
}

func TestChecksum(t *testing.T) {
	w := NewPollingWatcher(50*time.Millisecond, 100*time.Millisecond, nil)

	t.Run("stable for identical content", func(t *testing.T) {
		path := createTalkFile(t, "test content")

		checksum1, err := w.checksum(path)
		require.NoError(t, err)
		assert.NotEmpty(t, checksum1)

		checksum2, err := w.checksum(path)
		require.NoError(t, err)
		assert.Equal(t, checksum1, checksum2)

		updateFile(t, path, "different content")
		checksum3, err := w.checksum(path)
		require.NoError(t, err)
		assert.NotEqual(t, checksum1, checksum3)
	})

	t.Run("non-existent file", func(t *testing.T) {
		_, err := w.checksum("/nonexistent/file")
		assert.Error(t, err)
	})
}
