package pointer

import (
	"fmt"
	"time"
)

// DefaultClickThreshold is the thumb-to-index distance below which the
// primary button is held.
const DefaultClickThreshold = 0.05

// ClickState is the button state tracked by a ClickMachine.
type ClickState int

const (
	Released ClickState = iota
	Held
)

func (s ClickState) String() string {
	if s == Held {
		return "held"
	}
	return "released"
}

// ClickEvent is the edge emitted by ClickMachine.Update.
type ClickEvent int

const (
	ClickNone ClickEvent = iota
	ClickPress
	ClickRelease
)

func (e ClickEvent) String() string {
	switch e {
	case ClickPress:
		return "press"
	case ClickRelease:
		return "release"
	default:
		return "none"
	}
}

// MarshalText encodes the event by name.
func (e ClickEvent) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText decodes an event name.
func (e *ClickEvent) UnmarshalText(text []byte) error {
	switch string(text) {
	case "none", "":
		*e = ClickNone
	case "press":
		*e = ClickPress
	case "release":
		*e = ClickRelease
	default:
		return fmt.Errorf("unknown click event %q", text)
	}
	return nil
}

// ClickMachine turns a stream of distances into press and release edges.
// An event is emitted only when the state changes.
type ClickMachine struct {
	threshold float64
	state     ClickState
	changedAt time.Time
}

// NewClickMachine creates a released machine.
func NewClickMachine(threshold float64) *ClickMachine {
	return &ClickMachine{threshold: threshold}
}

// Update evaluates one distance sample.
func (c *ClickMachine) Update(d float64, now time.Time) ClickEvent {
	switch {
	case d < c.threshold && c.state == Released:
		c.state = Held
		c.changedAt = now
		return ClickPress
	case d >= c.threshold && c.state == Held:
		c.state = Released
		c.changedAt = now
		return ClickRelease
	}
	return ClickNone
}

// ForceRelease releases a held button without a distance sample.
func (c *ClickMachine) ForceRelease(now time.Time) ClickEvent {
	if c.state != Held {
		return ClickNone
	}
	c.state = Released
	c.changedAt = now
	return ClickRelease
}

// State returns the current state.
func (c *ClickMachine) State() ClickState {
	return c.state
}

// Held reports whether the button is down.
func (c *ClickMachine) Held() bool {
	return c.state == Held
}

// ChangedAt returns the time of the last transition, zero if none.
func (c *ClickMachine) ChangedAt() time.Time {
	return c.changedAt
}
