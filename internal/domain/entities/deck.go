package entities

import (
	"errors"
	"fmt"
	"time"
)

// Deck is the talk's complete slide deck: metadata plus the fixed ordered
// slide sequence. Slides are defined once at load time and never mutated
// during a viewing session.
type Deck struct {
	// ID is a unique identifier for this loaded deck
	ID string `yaml:"-" json:"id,omitempty"`

	// Title is the talk title
	Title string `yaml:"title" json:"title"`

	// Theme names the visual theme
	Theme string `yaml:"theme" json:"theme"`

	// Author is the speaker
	Author string `yaml:"author" json:"author"`

	// Date is the talk date
	Date time.Time `yaml:"date" json:"date"`

	// SpeakerImage is an optional path or URL to a speaker photo.
	// Opaque data: nothing inspects it, the viewer just renders it.
	SpeakerImage string `yaml:"speaker_image" json:"speakerImage,omitempty"`

	// Logo is an optional path or URL to a conference or company logo
	Logo string `yaml:"logo" json:"logo,omitempty"`

	// Metadata holds any additional frontmatter fields
	Metadata map[string]interface{} `yaml:",inline" json:"metadata,omitempty"`

	// Slides holds all slides in presentation order
	Slides []Slide `yaml:"-" json:"slides"`
}

// Validate ensures the deck has the required fields.
func (d *Deck) Validate() error {
	if d.Title == "" {
		return errors.New("deck title is required")
	}

	if len(d.Slides) == 0 {
		return errors.New("deck must have at least one slide")
	}

	for i, slide := range d.Slides {
		if err := slide.Validate(); err != nil {
			return fmt.Errorf("slide %d validation failed: %w", i+1, err)
		}
	}

	if d.Theme == "" {
		d.Theme = "default"
	}

	return nil
}

// SlideAt returns the slide at a 0-based index.
func (d *Deck) SlideAt(index int) (*Slide, error) {
	if index < 0 || index >= len(d.Slides) {
		return nil, &OutOfRangeError{Index: index, Total: len(d.Slides)}
	}
	return &d.Slides[index], nil
}

// SlideCount returns the total number of slides.
func (d *Deck) SlideCount() int {
	return len(d.Slides)
}
