package ports

import (
	"context"

	"github.com/fredcamaral/promptdeck/internal/domain/entities"
)

// MarkdownParser defines the interface for parsing markdown content
type MarkdownParser interface {
	Parse(ctx context.Context, content []byte) (*ParsedContent, error)
}

// DeckParser converts raw markdown into a complete deck entity
type DeckParser interface {
	Parse(content []byte) (*entities.Deck, error)
}

// ParsedContent represents the result of parsing a markdown file
type ParsedContent struct {
	Frontmatter map[string]interface{}
	Slides      []RawSlide
}

// RawSlide represents a single slide before rendering
type RawSlide struct {
	Content string
	Notes   string
	Index   int
}
