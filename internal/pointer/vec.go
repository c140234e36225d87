// Package pointer converts landmark geometry into cursor motion and click events.
//
// All state lives in session objects (Smoother, ClickMachine, StickyGate,
// GazeMapper, HandSession) owned by the frame loop. Nothing in this package
// is safe for concurrent use; the loop is single-threaded.
package pointer

import (
	"math"

	"github.com/ayusman/mudra/internal/detector"
)

// Vec2 is a 2D point or vector in normalized frame coordinates.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale returns v * k.
func (v Vec2) Scale(k float64) Vec2 {
	return Vec2{X: v.X * k, Y: v.Y * k}
}

// Size is a screen size in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// fromPoint drops the depth component of a landmark.
func fromPoint(p detector.Point3D) Vec2 {
	return Vec2{X: p.X, Y: p.Y}
}

// distance returns the planar Euclidean distance between two landmarks.
func distance(a, b detector.Point3D) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// centroid returns the mean position of the landmarks at the given indices.
func centroid(lm *detector.Landmarks, indices []int) (Vec2, error) {
	var sum Vec2
	for _, i := range indices {
		p, err := lm.Point(i)
		if err != nil {
			return Vec2{}, err
		}
		sum = sum.Add(fromPoint(p))
	}
	return sum.Scale(1 / float64(len(indices))), nil
}

// clampInt limits v to [lo, hi].
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ToScreenClamped maps a normalized point to pixel coordinates, truncating
// toward zero, and clamps each axis to [0, dimension-1].
func ToScreenClamped(p Vec2, size Size) (int, int) {
	x := int(p.X * float64(size.Width))
	y := int(p.Y * float64(size.Height))
	return clampInt(x, 0, size.Width-1), clampInt(y, 0, size.Height-1)
}

// GazeToScreen maps a gaze vector centred on zero to pixel coordinates.
// The result is not clamped and may fall outside the screen.
func GazeToScreen(g Vec2, size Size) (int, int) {
	x := int((g.X + 0.5) * float64(size.Width))
	y := int((g.Y + 0.5) * float64(size.Height))
	return x, y
}
