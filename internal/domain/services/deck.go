package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fredcamaral/promptdeck/internal/domain/entities"
	"github.com/fredcamaral/promptdeck/internal/domain/ports"
)

// DeckService implements the business logic for slide decks
type DeckService struct {
	parser  ports.DeckParser
	watcher ports.FileWatcher
}

// NewDeckService creates a new deck service instance
func NewDeckService(parser ports.DeckParser, watcher ports.FileWatcher) *DeckService {
	return &DeckService{
		parser:  parser,
		watcher: watcher,
	}
}

// LoadDeck loads a deck from a markdown file path
func (s *DeckService) LoadDeck(ctx context.Context, path string) (*entities.Deck, error) {
	if path == "" {
		return nil, errors.New("deck path cannot be empty")
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("deck file not found: %s", path)
		}
		return nil, fmt.Errorf("checking deck file: %w", err)
	}

	content, err := os.ReadFile(path) // #nosec G304 - path comes from the CLI argument
	if err != nil {
		return nil, fmt.Errorf("reading deck file: %w", err)
	}

	return s.ParseDeck(ctx, content)
}

// ParseDeck parses markdown content into a deck
func (s *DeckService) ParseDeck(ctx context.Context, content []byte) (*entities.Deck, error) {
	if len(content) == 0 {
		return nil, errors.New("deck content cannot be empty")
	}

	deck, err := s.parser.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parsing deck: %w", err)
	}

	if err := deck.Validate(); err != nil {
		return nil, fmt.Errorf("invalid deck: %w", err)
	}

	// Set slide titles and indices
	for i := range deck.Slides {
		deck.Slides[i].Index = i
		deck.Slides[i].Title = deck.Slides[i].ExtractTitle()
	}

	return deck, nil
}

// WatchDeck watches a deck file for changes
func (s *DeckService) WatchDeck(ctx context.Context, path string) (<-chan ports.FileChangeEvent, error) {
	if path == "" {
		return nil, errors.New("deck path cannot be empty")
	}

	return s.watcher.Watch(ctx, path)
}

// LoadDeckFromReader loads a deck from an io.Reader
func (s *DeckService) LoadDeckFromReader(ctx context.Context, reader io.Reader) (*entities.Deck, error) {
	if reader == nil {
		return nil, errors.New("reader cannot be nil")
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading content: %w", err)
	}

	return s.ParseDeck(ctx, content)
}
