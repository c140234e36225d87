package detector

import "gocv.io/x/gocv"

// Detector defines the interface for landmark detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the landmarks of the first
	// detected hand or face. The boolean is false when nothing was found;
	// that is not an error.
	Detect(frame *gocv.Mat) (Landmarks, bool, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Mode selects what the detector looks for.
type Mode string

const (
	// ModeHand detects the 21 hand landmarks.
	ModeHand Mode = "hand"
	// ModeFace detects the refined 478-point face mesh.
	ModeFace Mode = "face"
)

// Config holds configuration options for landmark detection.
type Config struct {
	// Mode is hand or face detection.
	Mode Mode

	// MaxHands is the maximum number of hands to detect (default: 1).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// ScriptPath overrides the MediaPipe service script location.
	ScriptPath string

	// PythonPath overrides the Python interpreter.
	PythonPath string
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig(mode Mode) Config {
	return Config{
		Mode:            mode,
		MaxHands:        1,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}
