package pointer

import "math"

// Default smoothing parameters for the hand pointer.
const (
	DefaultDeadzone         = 0.04
	DefaultSensitivity      = 0.5
	DefaultVectorMultiplier = 4.0
)

// ApplyDeadzone returns prev when target moved less than eps on both axes,
// otherwise target.
func ApplyDeadzone(target, prev Vec2, eps float64) Vec2 {
	if math.Abs(target.X-prev.X) < eps && math.Abs(target.Y-prev.Y) < eps {
		return prev
	}
	return target
}

// Smooth moves prev toward target by the fraction alpha on each axis.
func Smooth(target, prev Vec2, alpha float64) Vec2 {
	return prev.Add(target.Sub(prev).Scale(alpha))
}

// ExtendVector projects a point k times the base->tip distance from base,
// along the base->tip direction.
func ExtendVector(base, tip Vec2, k float64) Vec2 {
	return base.Add(tip.Sub(base).Scale(k))
}

// Smoother applies a dead zone followed by exponential smoothing and keeps
// the previous output between frames.
type Smoother struct {
	Deadzone float64
	Alpha    float64
	prev     Vec2
}

// NewSmoother creates a Smoother whose memory starts at initial.
func NewSmoother(deadzone, alpha float64, initial Vec2) *Smoother {
	return &Smoother{
		Deadzone: deadzone,
		Alpha:    alpha,
		prev:     initial,
	}
}

// Step filters one raw target and returns the smoothed point.
func (s *Smoother) Step(target Vec2) Vec2 {
	target = ApplyDeadzone(target, s.prev, s.Deadzone)
	smoothed := Smooth(target, s.prev, s.Alpha)
	s.prev = smoothed
	return smoothed
}

// Prev returns the last smoothed point.
func (s *Smoother) Prev() Vec2 {
	return s.prev
}
