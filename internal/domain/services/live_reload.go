package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fredcamaral/promptdeck/internal/domain/ports"
)

// LiveReloadService coordinates file watching with WebSocket notifications
type LiveReloadService struct {
	watcher     ports.FileWatcher
	server      ports.HTTPServer
	decks       ports.DeckService
	sync        ports.ViewerSync
	logger      *slog.Logger
	mu          sync.Mutex
	watching    bool
	watchCancel context.CancelFunc
	deckPath    string
}

// NewLiveReloadService creates a new live reload service
func NewLiveReloadService(
	watcher ports.FileWatcher,
	server ports.HTTPServer,
	decks ports.DeckService,
	viewerSync ports.ViewerSync,
	logger *slog.Logger,
) *LiveReloadService {
	if logger == nil {
		logger = slog.Default()
	}

	return &LiveReloadService{
		watcher: watcher,
		server:  server,
		decks:   decks,
		sync:    viewerSync,
		logger:  logger.With("service", "live_reload"),
	}
}

// Start starts watching the deck file
func (s *LiveReloadService) Start(ctx context.Context, filePath string) error {
	s.mu.Lock()
	if s.watching {
		s.mu.Unlock()
		return errors.New("already watching")
	}
	s.watching = true
	s.deckPath = filePath
	s.mu.Unlock()

	watchCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.watchCancel = cancel
	s.mu.Unlock()

	events, err := s.watcher.Watch(watchCtx, filePath)
	if err != nil {
		s.mu.Lock()
		s.watching = false
		s.watchCancel = nil
		s.mu.Unlock()
		return fmt.Errorf("starting watcher: %w", err)
	}

	go s.handleEvents(watchCtx, events)

	return nil
}

// Stop stops the live reload service
func (s *LiveReloadService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.watching {
		return nil
	}

	if s.watchCancel != nil {
		s.watchCancel()
		s.watchCancel = nil
	}

	s.watching = false
	return nil
}

// IsWatching returns whether the service is currently watching
func (s *LiveReloadService) IsWatching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watching
}

// handleEvents handles file change events
func (s *LiveReloadService) handleEvents(ctx context.Context, events <-chan ports.FileChangeEvent) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}

			s.logger.Info("File change detected",
				slog.String("path", event.Path),
				slog.String("type", event.Type.String()),
			)

			if event.Type == ports.Deleted {
				s.logger.Warn("Deck file deleted, keeping last loaded version",
					slog.String("path", event.Path),
				)
				continue
			}

			if err := s.reloadDeck(ctx); err != nil {
				s.logger.Error("Failed to reload deck",
					slog.String("error", err.Error()),
					slog.String("path", event.Path),
				)
				continue
			}

			updateEvent := ports.UpdateEvent{
				Type:      ports.EventTypeReload,
				Timestamp: event.Timestamp,
				Data: map[string]interface{}{
					"file": event.Path,
					"type": event.Type.String(),
				},
			}

			if err := s.server.NotifyClients(updateEvent); err != nil {
				s.logger.Warn("Failed to notify WebSocket clients",
					slog.String("error", err.Error()),
					slog.String("file", event.Path),
				)
			}
		}
	}
}

// reloadDeck reloads the deck from disk and swaps it into the server
func (s *LiveReloadService) reloadDeck(ctx context.Context) error {
	s.mu.Lock()
	path := s.deckPath
	s.mu.Unlock()

	if path == "" {
		return errors.New("no deck path set")
	}

	deck, err := s.decks.LoadDeck(ctx, path)
	if err != nil {
		return fmt.Errorf("loading deck: %w", err)
	}

	// The navigator total is fixed once the talk starts. A deck with a
	// different slide count never reaches the server or the viewers.
	if s.sync != nil {
		if err := s.sync.ReplaceDeck(deck); err != nil {
			s.logger.Error("Slide count changed, restart required",
				slog.Int("slides", deck.SlideCount()),
				slog.String("path", path),
			)
			return fmt.Errorf("replacing deck: %w", err)
		}
	}

	s.server.SetDeck(deck)

	s.logger.Info("Deck reloaded",
		slog.Int("slides", deck.SlideCount()),
		slog.String("path", path),
	)

	return nil
}
