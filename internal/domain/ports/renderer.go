package ports

import (
	"context"

	"github.com/fredcamaral/promptdeck/internal/domain/entities"
)

// Renderer defines the interface for rendering the viewer page
type Renderer interface {
	RenderDeck(ctx context.Context, deck *entities.Deck) ([]byte, error)
	RenderSlide(ctx context.Context, slide *entities.Slide) ([]byte, error)
}
