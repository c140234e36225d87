package pointer

import (
	"time"

	"github.com/ayusman/mudra/internal/cursor"
)

// Hot-zone and dwell defaults.
const (
	DefaultHotZoneLow     = 0.3
	DefaultHotZoneHigh    = 0.7
	DefaultStickyInterval = 100 * time.Millisecond
)

// InHotZone reports whether (x, y) lies strictly inside the part of rect
// between the fractions lo and hi of its width and height.
func InHotZone(rect cursor.Rect, x, y int, lo, hi float64) bool {
	if rect.Empty() {
		return false
	}
	left := float64(rect.X) + float64(rect.Width)*lo
	right := float64(rect.X) + float64(rect.Width)*hi
	top := float64(rect.Y) + float64(rect.Height)*lo
	bottom := float64(rect.Y) + float64(rect.Height)*hi

	fx, fy := float64(x), float64(y)
	return fx > left && fx < right && fy > top && fy < bottom
}

// StickyGate rate-limits cursor moves while the pointer dwells in a hot zone.
type StickyGate struct {
	interval time.Duration
	last     time.Time
}

// NewStickyGate creates a gate that opens once per interval.
func NewStickyGate(interval time.Duration) *StickyGate {
	return &StickyGate{interval: interval}
}

// Allow reports whether at least the interval has passed since the last
// allowed move, and records now if so.
func (g *StickyGate) Allow(now time.Time) bool {
	if !g.last.IsZero() && now.Sub(g.last) < g.interval {
		return false
	}
	g.last = now
	return true
}

// Last returns the time of the last allowed move.
func (g *StickyGate) Last() time.Time {
	return g.last
}
