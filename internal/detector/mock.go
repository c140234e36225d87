package detector

import (
	"gocv.io/x/gocv"
)

// MockResult is one scripted Detect outcome.
type MockResult struct {
	Landmarks Landmarks
	Found     bool
	Err       error
}

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	landmarks Landmarks
	found     bool
	err       error
	queue     []MockResult
	calls     int
}

// NewMockDetector creates a new MockDetector instance that detects nothing.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetLandmarks sets the landmarks that will be returned by Detect.
func (m *MockDetector) SetLandmarks(lm Landmarks) {
	m.landmarks = lm
	m.found = true
}

// SetNone makes Detect report that nothing was found.
func (m *MockDetector) SetNone() {
	m.landmarks = Landmarks{}
	m.found = false
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Queue appends scripted results consumed one per Detect call before the
// fixed result applies again.
func (m *MockDetector) Queue(results ...MockResult) {
	m.queue = append(m.queue, results...)
}

// Calls returns how many times Detect was called.
func (m *MockDetector) Calls() int {
	return m.calls
}

// Detect returns the next queued result or the pre-configured one.
func (m *MockDetector) Detect(frame *gocv.Mat) (Landmarks, bool, error) {
	m.calls++
	if len(m.queue) > 0 {
		r := m.queue[0]
		m.queue = m.queue[1:]
		return r.Landmarks, r.Found, r.Err
	}
	if m.err != nil {
		return Landmarks{}, false, m.err
	}
	return m.landmarks, m.found, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// Found wraps landmarks as a successful queued result.
func Found(lm Landmarks) MockResult {
	return MockResult{Landmarks: lm, Found: true}
}

// NotFound is a queued result with no detection.
func NotFound() MockResult {
	return MockResult{}
}

// PointingLandmarks returns a right hand with index and middle fingers held
// together and pointing up, thumb away from the index finger.
func PointingLandmarks() Landmarks {
	lm := Landmarks{
		Points:     make([]Point3D, NumLandmarks),
		Handedness: "Right",
		Score:      0.95,
	}
	p := lm.Points

	p[Wrist] = Point3D{X: 0.50, Y: 0.80}

	// Thumb tucked out to the side
	p[ThumbCMC] = Point3D{X: 0.56, Y: 0.76}
	p[ThumbMCP] = Point3D{X: 0.62, Y: 0.72}
	p[ThumbIP] = Point3D{X: 0.66, Y: 0.68}
	p[ThumbTip] = Point3D{X: 0.70, Y: 0.65}

	// Index and middle extended side by side
	p[IndexMCP] = Point3D{X: 0.52, Y: 0.66}
	p[IndexPIP] = Point3D{X: 0.52, Y: 0.58}
	p[IndexDIP] = Point3D{X: 0.52, Y: 0.53}
	p[IndexTip] = Point3D{X: 0.52, Y: 0.48}

	p[MiddleMCP] = Point3D{X: 0.50, Y: 0.66}
	p[MiddlePIP] = Point3D{X: 0.50, Y: 0.58}
	p[MiddleDIP] = Point3D{X: 0.50, Y: 0.52}
	p[MiddleTip] = Point3D{X: 0.50, Y: 0.47}

	// Ring and pinky curled
	p[RingMCP] = Point3D{X: 0.46, Y: 0.68}
	p[RingPIP] = Point3D{X: 0.46, Y: 0.66}
	p[RingDIP] = Point3D{X: 0.45, Y: 0.68}
	p[RingTip] = Point3D{X: 0.45, Y: 0.70}

	p[PinkyMCP] = Point3D{X: 0.42, Y: 0.70}
	p[PinkyPIP] = Point3D{X: 0.42, Y: 0.69}
	p[PinkyDIP] = Point3D{X: 0.41, Y: 0.71}
	p[PinkyTip] = Point3D{X: 0.41, Y: 0.73}

	return lm
}

// PinchLandmarks returns the pointing pose with the thumb tip touching the
// index finger's second joint.
func PinchLandmarks() Landmarks {
	lm := PointingLandmarks()
	pip := lm.Points[IndexPIP]
	lm.Points[ThumbIP] = Point3D{X: pip.X + 0.04, Y: pip.Y + 0.04}
	lm.Points[ThumbTip] = Point3D{X: pip.X + 0.01, Y: pip.Y + 0.01}
	return lm
}

// OpenPalmLandmarks returns a hand with all fingers spread apart.
func OpenPalmLandmarks() Landmarks {
	lm := PointingLandmarks()
	lm.Points[IndexTip] = Point3D{X: 0.58, Y: 0.35}
	lm.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.28}
	lm.Points[RingTip] = Point3D{X: 0.42, Y: 0.35}
	lm.Points[PinkyTip] = Point3D{X: 0.34, Y: 0.42}
	return lm
}

// WithThumbIndexGap returns the pointing pose with the thumb tip placed gap
// to the right of the index finger's second joint.
func WithThumbIndexGap(gap float64) Landmarks {
	lm := PointingLandmarks()
	pip := lm.Points[IndexPIP]
	lm.Points[ThumbTip] = Point3D{X: pip.X + gap, Y: pip.Y}
	return lm
}

// FaceLandmarks returns a face mesh whose irises sit offset from the centre
// of each eye by (dx, dy) in normalized frame units.
func FaceLandmarks(dx, dy float64) Landmarks {
	lm := Landmarks{
		Points: make([]Point3D, FaceMeshPoints),
		Score:  0.9,
	}

	placeEye := func(eye, iris []int, cx, cy float64) {
		// Corners and lids around the eye centre
		offsets := [4][2]float64{{-0.03, 0}, {-0.01, -0.01}, {0.01, -0.01}, {0.03, 0}}
		for i, idx := range eye {
			lm.Points[idx] = Point3D{X: cx + offsets[i][0], Y: cy + offsets[i][1] + 0.005}
		}
		// Eye centroid is (cx, cy); the iris ring is centred on it plus the offset
		ring := [4][2]float64{{0.005, 0}, {0, -0.005}, {-0.005, 0}, {0, 0.005}}
		for i, idx := range iris {
			lm.Points[idx] = Point3D{X: cx + dx + ring[i][0], Y: cy + dy + ring[i][1]}
		}
	}

	placeEye(LeftEye, LeftIris, 0.58, 0.42)
	placeEye(RightEye, RightIris, 0.42, 0.42)

	return lm
}
