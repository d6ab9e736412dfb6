package ports

import (
	"context"

	"github.com/fredcamaral/promptdeck/internal/domain/entities"
)

// DeckService defines the main service interface for slide decks
type DeckService interface {
	// LoadDeck loads a deck from a markdown file path
	LoadDeck(ctx context.Context, path string) (*entities.Deck, error)

	// ParseDeck parses markdown content into a deck
	ParseDeck(ctx context.Context, content []byte) (*entities.Deck, error)

	// WatchDeck watches a deck file for changes
	WatchDeck(ctx context.Context, path string) (<-chan FileChangeEvent, error)
}

// ViewerSync defines the interface for shared navigation state
type ViewerSync interface {
	// Subscribe adds a client to receive sync events
	Subscribe(clientID string) <-chan entities.SyncEvent

	// Unsubscribe removes a client from sync events
	Unsubscribe(clientID string)

	// Broadcast applies an event to the navigator and fans it out
	Broadcast(event entities.SyncEvent) error

	// ReplaceDeck swaps in a reparsed deck with the same slide count
	ReplaceDeck(deck *entities.Deck) error

	// GetState returns the current viewer state
	GetState() *entities.ViewerState

	// Display returns the derived display state
	Display() entities.DisplayState

	// Stop stops the sync service
	Stop()
}

// LabService defines the injection lab interface
type LabService interface {
	// Submit evaluates a player submission against a challenge level
	Submit(ctx context.Context, level int, text string) (*entities.LabResult, error)

	// CheckFlag validates an exact prompt reconstruction
	CheckFlag(level int, prompt string) (*entities.LabResult, error)

	// Levels returns the configured challenges in level order
	Levels() []entities.Challenge
}
