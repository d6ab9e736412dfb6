package watcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fredcamaral/promptdeck/internal/domain/ports"
)

// PollingWatcher watches the talk file by polling. Editors save in many
// different ways (rename, truncate, atomic write) so polling with a
// checksum is the most portable signal.
type PollingWatcher struct {
	interval time.Duration
	debounce time.Duration
	states   map[string]fileState
	events   chan ports.FileChangeEvent
	logger   *slog.Logger
	mu       sync.RWMutex
	wg       sync.WaitGroup
	stopped  bool
	stopCh   chan struct{}
}

type fileState struct {
	size     int64
	modTime  time.Time
	checksum string
	missing  bool
}

// NewPollingWatcher creates a polling file watcher.
func NewPollingWatcher(interval, debounce time.Duration, logger *slog.Logger) *PollingWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &PollingWatcher{
		interval: interval,
		debounce: debounce,
		states:   make(map[string]fileState),
		events:   make(chan ports.FileChangeEvent, 10),
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Watch starts watching a file for changes
func (w *PollingWatcher) Watch(ctx context.Context, path string) (<-chan ports.FileChangeEvent, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	if err := w.snapshot(absPath); err != nil {
		return nil, fmt.Errorf("initial scan: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.pollLoop(ctx, absPath)
	}()

	return w.events, nil
}

// Stop stops the file watcher
func (w *PollingWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}

	w.stopped = true
	close(w.stopCh)

	w.wg.Wait()
	close(w.events)

	return nil
}

// snapshot records the current state of the file
func (w *PollingWatcher) snapshot(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}

	checksum, err := w.checksum(path)
	if err != nil {
		return fmt.Errorf("checksum: %w", err)
	}

	w.mu.Lock()
	w.states[path] = fileState{
		size:     info.Size(),
		modTime:  info.ModTime(),
		checksum: checksum,
	}
	w.mu.Unlock()

	return nil
}

// pollLoop continuously polls for file changes
func (w *PollingWatcher) pollLoop(ctx context.Context, path string) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	lastEventTime := time.Time{}

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			changeType, changed, err := w.check(path)
			if err != nil {
				w.logger.Warn("watch error", "path", path, "error", err)
				continue
			}
			if !changed {
				continue
			}

			// Collapse editor save bursts into one event
			if time.Since(lastEventTime) < w.debounce {
				continue
			}

			event := ports.FileChangeEvent{
				Path:      path,
				Type:      changeType,
				Timestamp: time.Now(),
			}

			select {
			case w.events <- event:
				lastEventTime = time.Now()
			case <-ctx.Done():
				return
			case <-w.stopCh:
				return
			}
		}
	}
}

// check compares the file against its last snapshot and reports how it
// changed, if at all.
func (w *PollingWatcher) check(path string) (ports.ChangeType, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			w.mu.Lock()
			state, existed := w.states[path]
			alreadyMissing := existed && state.missing
			w.states[path] = fileState{missing: true}
			w.mu.Unlock()

			// Report the deletion once, not every tick
			if alreadyMissing {
				return ports.Deleted, false, nil
			}
			return ports.Deleted, true, nil
		}
		return ports.Modified, false, fmt.Errorf("stat file: %w", err)
	}

	w.mu.RLock()
	old, exists := w.states[path]
	w.mu.RUnlock()

	// Size and mtime unchanged means the content is unchanged; skip
	// the checksum in the common case.
	if exists && !old.missing && old.size == info.Size() && old.modTime.Equal(info.ModTime()) {
		return ports.Modified, false, nil
	}

	checksum, err := w.checksum(path)
	if err != nil {
		return ports.Modified, false, fmt.Errorf("checksum: %w", err)
	}

	next := fileState{
		size:     info.Size(),
		modTime:  info.ModTime(),
		checksum: checksum,
	}

	if !exists || old.missing {
		w.mu.Lock()
		w.states[path] = next
		w.mu.Unlock()
		return ports.Created, true, nil
	}

	if old.checksum == checksum {
		// Touched but identical content (e.g. save without edits)
		w.mu.Lock()
		w.states[path] = next
		w.mu.Unlock()
		return ports.Modified, false, nil
	}

	w.mu.Lock()
	w.states[path] = next
	w.mu.Unlock()
	return ports.Modified, true, nil
}

// checksum calculates the SHA256 checksum of a file
func (w *PollingWatcher) checksum(path string) (string, error) {
	file, err := os.Open(path) // #nosec G304 - path is validated by caller
	if err != nil {
		return "", err
	}
	defer func() { _ = file.Close() }()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

// Ensure PollingWatcher implements ports.FileWatcher
var _ ports.FileWatcher = (*PollingWatcher)(nil)
