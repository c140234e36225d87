package pointer

import (
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/mudra/internal/cursor"
	"github.com/ayusman/mudra/internal/detector"
)

// ErrTooFewPoints is returned when a face detection lacks the iris points.
var ErrTooFewPoints = errors.New("face mesh has too few points")

// Gaze defaults.
const (
	DefaultAmplification = 5.0
	DefaultGazeMove      = 10 * time.Millisecond
)

// GazeConfig configures a GazeMapper.
type GazeConfig struct {
	// Amplification scales the iris offset within the eye.
	Amplification float64

	// MoveDuration is the transition passed to the sink for every move.
	MoveDuration time.Duration

	// Clamp keeps the cursor on screen. Off by default.
	Clamp bool

	// Smoothing runs the gaze vector through a dead zone and exponential
	// smoother. Off by default.
	Smoothing   bool
	Deadzone    float64
	Sensitivity float64
}

// DefaultGazeConfig returns the unclamped, unsmoothed gaze mapping.
func DefaultGazeConfig() GazeConfig {
	return GazeConfig{
		Amplification: DefaultAmplification,
		MoveDuration:  DefaultGazeMove,
		Deadzone:      DefaultDeadzone,
		Sensitivity:   DefaultSensitivity,
	}
}

// EyeOffset returns the amplified offset of the iris centroid from the eye
// centroid.
func EyeOffset(face *detector.Landmarks, iris, eye []int, amp float64) (Vec2, error) {
	irisCenter, err := centroid(face, iris)
	if err != nil {
		return Vec2{}, fmt.Errorf("iris: %w", err)
	}
	eyeCenter, err := centroid(face, eye)
	if err != nil {
		return Vec2{}, fmt.Errorf("eye: %w", err)
	}
	return irisCenter.Sub(eyeCenter).Scale(amp), nil
}

// GazeMapper moves the cursor where the eyes point.
type GazeMapper struct {
	config   GazeConfig
	screen   Size
	sink     cursor.Sink
	smoother *Smoother
}

// NewGazeMapper creates a gaze session writing to sink.
func NewGazeMapper(config GazeConfig, screen Size, sink cursor.Sink) *GazeMapper {
	g := &GazeMapper{
		config: config,
		screen: screen,
		sink:   sink,
	}
	if config.Smoothing {
		g.smoother = NewSmoother(config.Deadzone, config.Sensitivity, Vec2{})
	}
	return g
}

// Gaze returns the averaged gaze vector of both eyes, centred on zero.
func (g *GazeMapper) Gaze(face *detector.Landmarks) (Vec2, error) {
	if face.Len() < detector.FaceMeshPoints {
		return Vec2{}, fmt.Errorf("%w: got %d, need %d", ErrTooFewPoints, face.Len(), detector.FaceMeshPoints)
	}
	left, err := EyeOffset(face, detector.LeftIris, detector.LeftEye, g.config.Amplification)
	if err != nil {
		return Vec2{}, fmt.Errorf("left %w", err)
	}
	right, err := EyeOffset(face, detector.RightIris, detector.RightEye, g.config.Amplification)
	if err != nil {
		return Vec2{}, fmt.Errorf("right %w", err)
	}
	return left.Add(right).Scale(0.5), nil
}

// Map issues one cursor move for a detected face.
func (g *GazeMapper) Map(face *detector.Landmarks, now time.Time) (Frame, error) {
	frame := Frame{Mode: ModeGaze, Time: now, Detected: true}

	gaze, err := g.Gaze(face)
	if err != nil {
		frame.Error = err.Error()
		return frame, err
	}
	if g.smoother != nil {
		gaze = g.smoother.Step(gaze)
	}

	x, y := GazeToScreen(gaze, g.screen)
	if g.config.Clamp {
		x = clampInt(x, 0, g.screen.Width-1)
		y = clampInt(y, 0, g.screen.Height-1)
	}

	g.sink.MoveTo(x, y, g.config.MoveDuration)

	frame.Engaged = true
	frame.Target = gaze
	frame.X, frame.Y = x, y
	frame.Moved = true
	return frame, nil
}

// Lost reports a frame with no face. The cursor is left where it is.
func (g *GazeMapper) Lost(now time.Time) Frame {
	return Frame{Mode: ModeGaze, Time: now}
}
