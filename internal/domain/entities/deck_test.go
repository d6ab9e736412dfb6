package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeck_Validate(t *testing.T) {
	tests := []struct {
		name    string
		setup   func() *Deck
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid deck",
			setup: func() *Deck {
				return &Deck{
					Title: "Prompt Injection 101",
					Theme: "default",
					Slides: []Slide{
						{Content: "# Intro", Index: 0},
					},
				}
			},
			wantErr: false,
		},
		{
			name: "missing title",
			setup: func() *Deck {
				return &Deck{
					Theme: "default",
					Slides: []Slide{
						{Content: "# Intro", Index: 0},
					},
				}
			},
			wantErr: true,
			errMsg:  "deck title is required",
		},
		{
			name: "no slides",
			setup: func() *Deck {
				return &Deck{
					Title:  "Prompt Injection 101",
					Slides: []Slide{},
				}
			},
			wantErr: true,
			errMsg:  "deck must have at least one slide",
		},
		{
			name: "invalid slide",
			setup: func() *Deck {
				return &Deck{
					Title: "Prompt Injection 101",
					Slides: []Slide{
						{Content: "", Index: 0},
					},
				}
			},
			wantErr: true,
			errMsg:  "slide 1 validation failed",
		},
		{
			name: "default theme applied when empty",
			setup: func() *Deck {
				return &Deck{
					Title: "Prompt Injection 101",
					Slides: []Slide{
						{Content: "# Intro", Index: 0},
					},
				}
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.setup()
			err := d.Validate()

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "default", d.Theme)
			}
		})
	}
}

func TestDeck_SlideAt(t *testing.T) {
	d := &Deck{
		Title: "Test",
		Slides: []Slide{
			{Content: "Slide 1", Index: 0},
			{Content: "Slide 2", Index: 1},
			{Content: "Slide 3", Index: 2},
		},
	}

	tests := []struct {
		name    string
		index   int
		wantErr bool
		want    string
	}{
		{name: "first", index: 0, want: "Slide 1"},
		{name: "middle", index: 1, want: "Slide 2"},
		{name: "last", index: 2, want: "Slide 3"},
		{name: "negative", index: -1, wantErr: true},
		{name: "too large", index: 3, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slide, err := d.SlideAt(tt.index)

			if tt.wantErr {
				require.Error(t, err)
				var rangeErr *OutOfRangeError
				assert.ErrorAs(t, err, &rangeErr)
				assert.Nil(t, slide)
			} else {
				require.NoError(t, err)
				require.NotNil(t, slide)
				assert.Equal(t, tt.want, slide.Content)
			}
		})
	}
}

func TestSlide_ExtractTitle(t *testing.T) {
	tests := []struct {
		name    string
		content string
		index   int
		want    string
	}{
		{name: "h1 heading", content: "# What Is Prompt Injection?\n\ntext", want: "What Is Prompt Injection?"},
		{name: "h1 after blank lines", content: "\n\n# Defenses", want: "Defenses"},
		{name: "h2 does not count", content: "## Agenda", index: 2, want: "Slide 3"},
		{name: "no heading", content: "just text", index: 0, want: "Slide 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Slide{Content: tt.content, Index: tt.index}
			assert.Equal(t, tt.want, s.ExtractTitle())
		})
	}
}

func TestSlide_HasNotes(t *testing.T) {
	assert.True(t, (&Slide{Notes: "mention the live demo"}).HasNotes())
	assert.False(t, (&Slide{Notes: "   "}).HasNotes())
	assert.False(t, (&Slide{}).HasNotes())
}
