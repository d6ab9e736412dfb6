package renderer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/promptdeck/internal/domain/entities"
)

func testDeck() *entities.Deck {
	return &entities.Deck{
		Title:        "Prompt Injection in the Wild",
		Author:       "Ana",
		Date:         time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC),
		Theme:        "conference",
		SpeakerImage: "/assets/ana.png",
		Logo:         "/assets/logo.svg",
		Slides: []entities.Slide{
			{Index: 0, Title: "Intro", HTML: "<h1>Intro</h1>"},
			{Index: 1, Title: "Demo", HTML: "<h1>Demo</h1>", Notes: "switch to terminal"},
			{Index: 2, Title: "Close", HTML: "<h1>Close</h1>"},
		},
	}
}

func TestTemplateRenderer_RenderDeck(t *testing.T) {
	r, err := NewTemplateRenderer()
	require.NoError(t, err)

	html, err := r.RenderDeck(context.Background(), testDeck())
	require.NoError(t, err)

	page := string(html)

	t.Run("metadata", func(t *testing.T) {
		assert.Contains(t, page, "<title>Prompt Injection in the Wild</title>")
		assert.Contains(t, page, `data-theme="conference"`)
		assert.Contains(t, page, "Ana")
		assert.Contains(t, page, "2026-08-23")
		assert.Contains(t, page, `src="/assets/ana.png"`)
		assert.Contains(t, page, `src="/assets/logo.svg"`)
	})

	t.Run("exactly one slide starts active", func(t *testing.T) {
		assert.Equal(t, 1, strings.Count(page, `class="slide active"`))
		assert.Equal(t, 2, strings.Count(page, `class="slide"`))
	})

	t.Run("one indicator dot per slide", func(t *testing.T) {
		assert.Equal(t, 1, strings.Count(page, `class="dot active"`))
		assert.Equal(t, 2, strings.Count(page, `class="dot"`))
	})

	t.Run("counter and controls", func(t *testing.T) {
		assert.Contains(t, page, "1 / 3")
		assert.Contains(t, page, `id="prev"`)
		assert.Contains(t, page, `id="next"`)
		assert.Contains(t, page, `id="progress"`)
	})

	t.Run("notes hidden but present", func(t *testing.T) {
		assert.Contains(t, page, "switch to terminal")
		assert.Contains(t, page, `class="speaker-notes" hidden`)
	})

	t.Run("assets linked", func(t *testing.T) {
		assert.Contains(t, page, `/assets/style.css`)
		assert.Contains(t, page, `/assets/script.js`)
	})
}

func TestTemplateRenderer_RenderSlide(t *testing.T) {
	r, err := NewTemplateRenderer()
	require.NoError(t, err)

	slide := &entities.Slide{Index: 0, HTML: "<h1>Solo</h1>", Notes: "breathe"}
	html, err := r.RenderSlide(context.Background(), slide)
	require.NoError(t, err)

	assert.Contains(t, string(html), "<h1>Solo</h1>")
	assert.Contains(t, string(html), "breathe")
}

func TestAssets(t *testing.T) {
	fs := Assets()

	for _, name := range []string{"style.css", "script.js"} {
		f, err := fs.Open(name)
		require.NoError(t, err, "asset %s must be embedded", name)
		require.NoError(t, f.Close())
	}
}
