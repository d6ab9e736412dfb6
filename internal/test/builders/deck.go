package builders

import (
	"strconv"
	"time"

	"github.com/fredcamaral/promptdeck/internal/domain/entities"
)

// DeckBuilder helps build Deck entities for testing
type DeckBuilder struct {
	deck *entities.Deck
}

// NewDeckBuilder creates a new deck builder with sensible defaults
func NewDeckBuilder() *DeckBuilder {
	return &DeckBuilder{
		deck: &entities.Deck{
			Title:  "Test Talk",
			Author: "Test Speaker",
			Date:   time.Now(),
			Theme:  "default",
			Slides: []entities.Slide{},
		},
	}
}

// WithTitle sets the deck title
func (b *DeckBuilder) WithTitle(title string) *DeckBuilder {
	b.deck.Title = title
	return b
}

// WithAuthor sets the speaker name
func (b *DeckBuilder) WithAuthor(author string) *DeckBuilder {
	b.deck.Author = author
	return b
}

// WithDate sets the talk date
func (b *DeckBuilder) WithDate(date time.Time) *DeckBuilder {
	b.deck.Date = date
	return b
}

// WithTheme sets the deck theme
func (b *DeckBuilder) WithTheme(theme string) *DeckBuilder {
	b.deck.Theme = theme
	return b
}

// WithSlide appends a single slide, reindexing it to the end of the deck
func (b *DeckBuilder) WithSlide(slide entities.Slide) *DeckBuilder {
	slide.Index = len(b.deck.Slides)
	b.deck.Slides = append(b.deck.Slides, slide)
	return b
}

// WithSlideCount appends the specified number of default slides
func (b *DeckBuilder) WithSlideCount(count int) *DeckBuilder {
	for i := 0; i < count; i++ {
		b.WithSlide(NewSlideBuilder().
			WithTitle("Slide " + strconv.Itoa(len(b.deck.Slides)+1)).
			Build())
	}
	return b
}

// Build creates the final Deck entity
func (b *DeckBuilder) Build() *entities.Deck {
	// Copy to prevent mutation through the builder
	return &entities.Deck{
		ID:           b.deck.ID,
		Title:        b.deck.Title,
		Author:       b.deck.Author,
		Date:         b.deck.Date,
		Theme:        b.deck.Theme,
		SpeakerImage: b.deck.SpeakerImage,
		Logo:         b.deck.Logo,
		Slides:       append([]entities.Slide{}, b.deck.Slides...),
	}
}

// SlideBuilder helps build Slide entities for testing
type SlideBuilder struct {
	slide *entities.Slide
}

// NewSlideBuilder creates a new slide builder with sensible defaults
func NewSlideBuilder() *SlideBuilder {
	return &SlideBuilder{
		slide: &entities.Slide{
			Index:   0,
			Title:   "Test Slide",
			Content: "# Test Slide\n\nTest content",
			HTML:    "<h1>Test Slide</h1>",
		},
	}
}

// WithIndex sets the 0-based slide position
func (b *SlideBuilder) WithIndex(index int) *SlideBuilder {
	b.slide.Index = index
	return b
}

// WithTitle sets the slide title and derives content from it
func (b *SlideBuilder) WithTitle(title string) *SlideBuilder {
	b.slide.Title = title
	b.slide.Content = "# " + title + "\n\nTest content"
	b.slide.HTML = "<h1>" + title + "</h1>"
	return b
}

// WithContent sets the raw markdown content
func (b *SlideBuilder) WithContent(content string) *SlideBuilder {
	b.slide.Content = content
	return b
}

// WithHTML sets the rendered HTML content
func (b *SlideBuilder) WithHTML(html string) *SlideBuilder {
	b.slide.HTML = html
	return b
}

// WithNotes sets the slide speaker notes
func (b *SlideBuilder) WithNotes(notes string) *SlideBuilder {
	b.slide.Notes = notes
	return b
}

// Build creates the final Slide entity
func (b *SlideBuilder) Build() entities.Slide {
	return *b.slide
}
