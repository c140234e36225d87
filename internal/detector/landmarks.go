// Package detector provides landmark detection interfaces and types for cursor control.
package detector

import (
	"errors"
	"fmt"
)

// ErrLandmarkIndex is returned when a landmark index is not present in a detection.
var ErrLandmarkIndex = errors.New("landmark index out of range")

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// FaceMeshPoints is the number of points in a refined MediaPipe face mesh
// (468 mesh points plus 10 iris points).
const FaceMeshPoints = 478

// Face mesh indices used for gaze estimation.
var (
	LeftIris  = []int{474, 475, 476, 477}
	RightIris = []int{469, 470, 471, 472}
	LeftEye   = []int{362, 385, 387, 263}
	RightEye  = []int{33, 160, 158, 133}
)

// Point3D represents a 3D point in space with x, y, z coordinates.
// X and Y are normalized to [0, 1] relative to the frame.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Landmarks is one detected hand or face. The slice position of a point is
// its anatomical index.
type Landmarks struct {
	Points     []Point3D `json:"points"`
	Handedness string    `json:"handedness,omitempty"` // "Left" or "Right", hands only
	Score      float64   `json:"score"`
}

// Len returns the number of points.
func (l *Landmarks) Len() int {
	return len(l.Points)
}

// Point returns the landmark at index i.
func (l *Landmarks) Point(i int) (Point3D, error) {
	if i < 0 || i >= len(l.Points) {
		return Point3D{}, fmt.Errorf("%w: %d of %d", ErrLandmarkIndex, i, len(l.Points))
	}
	return l.Points[i], nil
}
