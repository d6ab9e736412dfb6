package services

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fredcamaral/promptdeck/internal/domain/entities"
)

// ViewerSyncService owns the deck navigator and keeps every connected
// viewer on the same slide. All navigator access is serialized here; the
// navigator itself is never shared.
type ViewerSyncService struct {
	navigator *entities.Navigator
	deck      *entities.Deck
	clients   map[string]chan entities.SyncEvent
	startTime time.Time
	elapsed   time.Duration
	paused    bool
	logger    *slog.Logger
	mu        sync.RWMutex
}

// NewViewerSyncService creates a sync service positioned at the first slide.
func NewViewerSyncService(deck *entities.Deck, logger *slog.Logger) (*ViewerSyncService, error) {
	navigator, err := entities.NewNavigator(deck.SlideCount())
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &ViewerSyncService{
		navigator: navigator,
		deck:      deck,
		clients:   make(map[string]chan entities.SyncEvent),
		startTime: time.Now(),
		logger:    logger.With("service", "viewer_sync"),
	}, nil
}

// Subscribe adds a client to receive sync events
func (s *ViewerSyncService) Subscribe(clientID string) <-chan entities.SyncEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan entities.SyncEvent, 10)
	s.clients[clientID] = ch

	return ch
}

// Unsubscribe removes a client from sync events
func (s *ViewerSyncService) Unsubscribe(clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ch, exists := s.clients[clientID]; exists {
		close(ch)
		delete(s.clients, clientID)
	}
}

// Broadcast applies an event to the shared state and fans it out to all
// connected clients. A failed transition leaves state unchanged and is
// returned to the caller without being broadcast.
func (s *ViewerSyncService) Broadcast(event entities.SyncEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.applyEvent(event); err != nil {
		return fmt.Errorf("applying %s event: %w", event.Type, err)
	}

	for clientID, ch := range s.clients {
		select {
		case ch <- event:
		default:
			s.logger.Warn("client too slow, skipping event", "client", clientID)
		}
	}

	return nil
}

// GetState returns a snapshot of the current viewer state.
func (s *ViewerSyncService) GetState() *entities.ViewerState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := &entities.ViewerState{
		CurrentSlide:   s.navigator.Current(),
		TotalSlides:    s.navigator.Total(),
		Progress:       s.navigator.ProgressFraction(),
		Counter:        s.navigator.CounterText(),
		NextSlideTitle: s.nextSlideTitle(),
		StartTime:      s.startTime,
		ElapsedTime:    s.elapsed,
		IsPaused:       s.paused,
	}

	if !s.paused {
		state.ElapsedTime = time.Since(s.startTime)
	}

	return state
}

// Display returns the derived display state for the current slide.
func (s *ViewerSyncService) Display() entities.DisplayState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.navigator.Display()
}

// applyEvent updates the shared state based on a sync event. Callers hold
// the write lock.
func (s *ViewerSyncService) applyEvent(event entities.SyncEvent) error {
	switch event.Type {
	case "navigation":
		return s.handleNavigation(event.Data)
	case "timer":
		return s.handleTimer(event.Data)
	default:
		return fmt.Errorf("unknown event type: %s", event.Type)
	}
}

// handleNavigation maps a navigation action onto a navigator operation.
func (s *ViewerSyncService) handleNavigation(data map[string]interface{}) error {
	action, ok := data["action"].(string)
	if !ok {
		return errors.New("invalid action in navigation event")
	}

	switch action {
	case "next":
		s.navigator.Next()
	case "prev":
		s.navigator.Previous()
	case "first":
		s.navigator.First()
	case "last":
		s.navigator.Last()
	case "goto":
		slide, ok := data["slide"].(float64)
		if !ok {
			return errors.New("goto requires a slide index")
		}
		if err := s.navigator.GoTo(int(slide)); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown navigation action: %s", action)
	}

	return nil
}

// handleTimer processes talk timer events
func (s *ViewerSyncService) handleTimer(data map[string]interface{}) error {
	action, ok := data["action"].(string)
	if !ok {
		return errors.New("invalid action in timer event")
	}

	switch action {
	case "pause":
		if !s.paused {
			s.paused = true
			s.elapsed = time.Since(s.startTime)
		}
	case "resume":
		if s.paused {
			s.startTime = time.Now().Add(-s.elapsed)
			s.paused = false
		}
	case "reset":
		s.startTime = time.Now()
		s.elapsed = 0
		s.paused = false
	default:
		return fmt.Errorf("unknown timer action: %s", action)
	}

	return nil
}

// ApplyInput dispatches a raw viewer input event through the navigator's
// binding table and returns the resulting display state.
func (s *ViewerSyncService) ApplyInput(event entities.InputEvent) (entities.DisplayState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.navigator.Apply(event); err != nil {
		return s.navigator.Display(), err
	}

	return s.navigator.Display(), nil
}

// ReplaceDeck swaps in a freshly parsed deck. The navigator total is fixed
// for the session, so a deck with a different slide count is refused and
// the previous deck stays in place.
func (s *ViewerSyncService) ReplaceDeck(deck *entities.Deck) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if deck.SlideCount() != s.navigator.Total() {
		return fmt.Errorf("slide count changed from %d to %d", s.navigator.Total(), deck.SlideCount())
	}

	s.deck = deck
	return nil
}

// nextSlideTitle returns the title of the upcoming slide. Callers hold at
// least the read lock.
func (s *ViewerSyncService) nextSlideTitle() string {
	nextIndex := s.navigator.Current() + 1
	if nextIndex >= s.deck.SlideCount() {
		return "End of talk"
	}
	return s.deck.Slides[nextIndex].Title
}

// Stop closes all client channels.
func (s *ViewerSyncService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for clientID, ch := range s.clients {
		close(ch)
		delete(s.clients, clientID)
	}
}
