package entities

import "fmt"

// OutOfRangeError is returned by GoTo when the requested index falls outside
// the deck bounds. The navigator state is left unchanged.
type OutOfRangeError struct {
	Index int
	Total int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("slide index %d out of range (0-%d)", e.Index, e.Total-1)
}

// ConfigurationError indicates the navigator could not be constructed.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "navigator configuration: " + e.Reason
}

// Navigator owns the current position within a fixed-size slide deck.
// The current index is always within [0, total-1]; the total is immutable
// after construction. It is not safe for concurrent use on its own - the
// sync service serializes access.
type Navigator struct {
	total   int
	current int
}

// NewNavigator creates a navigator positioned at the first slide.
func NewNavigator(totalSlides int) (*Navigator, error) {
	if totalSlides <= 0 {
		return nil, &ConfigurationError{Reason: "deck has no slides"}
	}
	return &Navigator{total: totalSlides}, nil
}

// Next advances to the following slide and returns the new index.
// At the last slide it is a no-op.
func (n *Navigator) Next() int {
	if n.current < n.total-1 {
		n.current++
	}
	return n.current
}

// Previous moves back one slide and returns the new index.
// At the first slide it is a no-op.
func (n *Navigator) Previous() int {
	if n.current > 0 {
		n.current--
	}
	return n.current
}

// GoTo jumps to an arbitrary slide. An index outside [0, total-1] returns
// an OutOfRangeError and leaves the position unchanged.
func (n *Navigator) GoTo(index int) error {
	if index < 0 || index >= n.total {
		return &OutOfRangeError{Index: index, Total: n.total}
	}
	n.current = index
	return nil
}

// First jumps to the first slide and returns the new index.
func (n *Navigator) First() int {
	n.current = 0
	return n.current
}

// Last jumps to the final slide and returns the new index.
func (n *Navigator) Last() int {
	n.current = n.total - 1
	return n.current
}

// Current returns the current slide index without side effects.
func (n *Navigator) Current() int {
	return n.current
}

// Total returns the fixed slide count.
func (n *Navigator) Total() int {
	return n.total
}

// ProgressFraction returns the normalized position in [0.0, 1.0]:
// 0.0 at the first slide, 1.0 at the last. A single-slide deck is
// always complete.
func (n *Navigator) ProgressFraction() float64 {
	if n.total <= 1 {
		return 1.0
	}
	return float64(n.current) / float64(n.total-1)
}

// CounterText returns the 1-based position rendering, e.g. "3 / 16".
func (n *Navigator) CounterText() string {
	return fmt.Sprintf("%d / %d", n.current+1, n.total)
}

// DisplayState is the derived visual state after a transition: exactly one
// slide visible, exactly one indicator active.
type DisplayState struct {
	Current    int     `json:"current"`
	Visible    []bool  `json:"visible"`
	Indicators []bool  `json:"indicators"`
	Progress   float64 `json:"progress"`
	Counter    string  `json:"counter"`
}

// Display recomputes the full display state for the current position.
func (n *Navigator) Display() DisplayState {
	visible := make([]bool, n.total)
	indicators := make([]bool, n.total)
	visible[n.current] = true
	indicators[n.current] = true

	return DisplayState{
		Current:    n.current,
		Visible:    visible,
		Indicators: indicators,
		Progress:   n.ProgressFraction(),
		Counter:    n.CounterText(),
	}
}

// InputEvent identifies a discrete viewer input (key press or control
// activation). Indicator clicks carry an index and go through GoTo directly.
type InputEvent string

const (
	InputArrowLeft  InputEvent = "ArrowLeft"
	InputArrowRight InputEvent = "ArrowRight"
	InputSpace      InputEvent = "Space"
	InputHome       InputEvent = "Home"
	InputEnd        InputEvent = "End"
	InputPrev       InputEvent = "prev"
	InputNext       InputEvent = "next"
)

// inputBindings maps each input event to its navigation operation.
var inputBindings = map[InputEvent]func(*Navigator) int{
	InputArrowLeft:  (*Navigator).Previous,
	InputPrev:       (*Navigator).Previous,
	InputArrowRight: (*Navigator).Next,
	InputSpace:      (*Navigator).Next,
	InputNext:       (*Navigator).Next,
	InputHome:       (*Navigator).First,
	InputEnd:        (*Navigator).Last,
}

// Apply dispatches a bound input event to its operation and returns the new
// index. Unknown events are an error; callers log and ignore them.
func (n *Navigator) Apply(event InputEvent) (int, error) {
	op, ok := inputBindings[event]
	if !ok {
		return n.current, fmt.Errorf("unbound input event: %s", event)
	}
	return op(n), nil
}
