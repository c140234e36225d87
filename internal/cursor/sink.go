// Package cursor drives the host pointer and reports the foreground window.
package cursor

import "time"

// Sink accepts absolute cursor positions and primary button changes.
// Failures are not reported to the caller; implementations log them.
type Sink interface {
	// MoveTo starts moving the cursor to (x, y) over d and returns without
	// waiting for the move to finish.
	MoveTo(x, y int, d time.Duration)
	MouseDown()
	MouseUp()
}

// Rect is a screen-space rectangle in pixels.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// WindowQuery reports the bounds of the foreground window.
type WindowQuery interface {
	// ActiveWindow returns false when there is no foreground window.
	ActiveWindow() (Rect, bool, error)
}
