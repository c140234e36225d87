package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// MotionDetector compares consecutive frames: grey, blurred, differenced
// and thresholded. A frame moved when more than threshold percent of its
// pixels changed.
type MotionDetector struct {
	threshold float64
	prev      gocv.Mat
	primed    bool
	mu        sync.Mutex
}

const (
	blurKernel    = 21
	diffThreshold = 25
)

// NewMotionDetector creates a detector. threshold is a percentage: 1.0
// means one pixel in a hundred must change.
func NewMotionDetector(threshold float64) *MotionDetector {
	return &MotionDetector{
		threshold: threshold,
		prev:      gocv.NewMat(),
	}
}

// Detect reports whether frame moved against the previous one and the
// changed share in percent. The first frame only primes the baseline.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}
	gocv.GaussianBlur(gray, &gray, image.Point{X: blurKernel, Y: blurKernel}, 0, 0, gocv.BorderDefault)

	if !m.primed {
		gray.CopyTo(&m.prev)
		m.primed = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(gray, m.prev, &diff)
	gocv.Threshold(diff, &diff, diffThreshold, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(diff)) / float64(diff.Rows()*diff.Cols()) * 100
	gray.CopyTo(&m.prev)

	return changed > m.threshold, changed
}

// Reset drops the baseline; the next frame primes it again.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release()
}

// Close releases the baseline frame. The detector may be reused afterwards.
func (m *MotionDetector) Close() {
	m.Reset()
}

func (m *MotionDetector) release() {
	if !m.prev.Empty() {
		m.prev.Close()
		m.prev = gocv.NewMat()
	}
	m.primed = false
}

// MotionGate decides which frames are worth running landmark detection on.
// Still frames are skipped, but never more than maxSkip in a row so a
// motionless hand or face keeps being tracked.
type MotionGate struct {
	detector *MotionDetector
	maxSkip  int
	skipped  int
	primed   bool
}

// NewMotionGate creates a gate with the given change threshold in percent.
// maxSkip <= 0 skips still frames indefinitely.
func NewMotionGate(threshold float64, maxSkip int) *MotionGate {
	return &MotionGate{
		detector: NewMotionDetector(threshold),
		maxSkip:  maxSkip,
	}
}

// Pass reports whether frame should go on to landmark detection.
func (g *MotionGate) Pass(frame *gocv.Mat) bool {
	moved, _ := g.detector.Detect(frame)
	if !g.primed {
		g.primed = true
		return true
	}
	if moved {
		g.skipped = 0
		return true
	}
	g.skipped++
	if g.maxSkip > 0 && g.skipped >= g.maxSkip {
		g.skipped = 0
		return true
	}
	return false
}

// Close releases the underlying detector.
func (g *MotionGate) Close() {
	g.detector.Close()
	g.primed = false
	g.skipped = 0
}
