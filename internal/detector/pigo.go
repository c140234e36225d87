package detector

import (
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"
	pigo "github.com/esimov/pigo/core"
	"gocv.io/x/gocv"
)

// Pigo cascade file names expected in PigoConfig.CascadeDir.
const (
	faceCascadeFile    = "facefinder"
	pupilCascadeFile   = "puploc"
	landmarkCascadeDir = "lps"
)

// eyeContourCascades are the pigo landmark cascades around one eye; the
// flipped run yields the same points around the other eye.
var eyeContourCascades = []string{"lp46", "lp44", "lp42", "lp38"}

// PigoConfig configures the pure-Go face and pupil detector.
type PigoConfig struct {
	// CascadeDir holds facefinder, puploc and the lps/ directory.
	CascadeDir string

	// MinFaceSize is the smallest face searched for, in scaled pixels.
	MinFaceSize int

	// MinQuality discards face detections scoring below this value.
	MinQuality float32

	// ProcessWidth downsizes frames to this width before detection (0 keeps the frame size).
	ProcessWidth int
}

// DefaultPigoConfig returns a PigoConfig with sensible default values.
func DefaultPigoConfig() PigoConfig {
	return PigoConfig{
		CascadeDir:   "cascades",
		MinFaceSize:  60,
		MinQuality:   5.0,
		ProcessWidth: 320,
	}
}

// PigoDetector implements Detector for gaze tracking without MediaPipe.
// It fills only the face mesh indices the gaze mapper reads: the four iris
// points of each eye collapse onto the localized pupil and the four eye
// points come from the pigo eye-contour cascades.
type PigoDetector struct {
	config   PigoConfig
	face     *pigo.Pigo
	pupils   *pigo.PuplocCascade
	contours map[string][]*pigo.FlpCascade
	mu       sync.Mutex
}

// NewPigoDetector loads the cascades from config.CascadeDir.
func NewPigoDetector(config PigoConfig) (*PigoDetector, error) {
	faceData, err := os.ReadFile(filepath.Join(config.CascadeDir, faceCascadeFile))
	if err != nil {
		return nil, fmt.Errorf("read face cascade: %w", err)
	}
	face, err := pigo.NewPigo().Unpack(faceData)
	if err != nil {
		return nil, fmt.Errorf("unpack face cascade: %w", err)
	}

	pupilData, err := os.ReadFile(filepath.Join(config.CascadeDir, pupilCascadeFile))
	if err != nil {
		return nil, fmt.Errorf("read pupil cascade: %w", err)
	}
	plc := pigo.NewPuplocCascade()
	pupils, err := plc.UnpackCascade(pupilData)
	if err != nil {
		return nil, fmt.Errorf("unpack pupil cascade: %w", err)
	}

	contours, err := pupils.ReadCascadeDir(filepath.Join(config.CascadeDir, landmarkCascadeDir))
	if err != nil {
		return nil, fmt.Errorf("read landmark cascades: %w", err)
	}

	return &PigoDetector{
		config:   config,
		face:     face,
		pupils:   pupils,
		contours: contours,
	}, nil
}

// Detect finds the best face and localizes both pupils and eye contours.
func (d *PigoDetector) Detect(frame *gocv.Mat) (Landmarks, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if frame == nil || frame.Empty() {
		return Landmarks{}, false, errors.New("empty frame")
	}

	img, err := frame.ToImage()
	if err != nil {
		return Landmarks{}, false, fmt.Errorf("convert frame: %w", err)
	}
	if d.config.ProcessWidth > 0 && img.Bounds().Dx() > d.config.ProcessWidth {
		img = imaging.Resize(img, d.config.ProcessWidth, 0, imaging.Linear)
	}

	return d.detectImage(img)
}

func (d *PigoDetector) detectImage(img image.Image) (Landmarks, bool, error) {
	cols, rows := img.Bounds().Dx(), img.Bounds().Dy()
	params := pigo.ImageParams{
		Pixels: pigo.RgbToGrayscale(img),
		Rows:   rows,
		Cols:   cols,
		Dim:    cols,
	}

	cParams := pigo.CascadeParams{
		MinSize:     d.config.MinFaceSize,
		MaxSize:     max(rows, cols),
		ShiftFactor: 0.1,
		ScaleFactor: 1.1,
		ImageParams: params,
	}

	faces := d.face.RunCascade(cParams, 0.0)
	faces = d.face.ClusterDetections(faces, 0.2)

	best := -1
	for i, f := range faces {
		if f.Q < d.config.MinQuality {
			continue
		}
		if best < 0 || f.Q > faces[best].Q {
			best = i
		}
	}
	if best < 0 {
		return Landmarks{}, false, nil
	}
	face := faces[best]

	scale := float32(face.Scale)
	imageLeft := d.pupils.RunDetector(pigo.Puploc{
		Row:      face.Row - int(0.075*scale),
		Col:      face.Col - int(0.175*scale),
		Scale:    scale * 0.25,
		Perturbs: 50,
	}, params, 0.0, false)
	imageRight := d.pupils.RunDetector(pigo.Puploc{
		Row:      face.Row - int(0.075*scale),
		Col:      face.Col + int(0.185*scale),
		Scale:    scale * 0.25,
		Perturbs: 50,
	}, params, 0.0, false)
	if !validPupil(imageLeft) || !validPupil(imageRight) {
		return Landmarks{}, false, nil
	}
	// Copy out of the detector's pooled results before running more cascades.
	left, right := *imageLeft, *imageRight

	contourA, okA := d.eyeContour(&left, &right, params, false)
	contourB, okB := d.eyeContour(&left, &right, params, true)
	if !okA || !okB {
		return Landmarks{}, false, nil
	}

	// Pair each contour with the nearer pupil.
	leftContour, rightContour := contourA, contourB
	if pupilDistance(left, contourB) < pupilDistance(left, contourA) {
		leftContour, rightContour = contourB, contourA
	}

	lm := Landmarks{
		Points: make([]Point3D, FaceMeshPoints),
		Score:  float64(face.Q),
	}
	// The frame is mirrored before detection, so the subject's left eye
	// appears on the image left.
	fillEye(&lm, LeftIris, LeftEye, left, leftContour, cols, rows)
	fillEye(&lm, RightIris, RightEye, right, rightContour, cols, rows)

	return lm, true, nil
}

// eyeContour runs the eye-contour cascades on one side of the face.
func (d *PigoDetector) eyeContour(left, right *pigo.Puploc, params pigo.ImageParams, flip bool) ([]pigo.Puploc, bool) {
	points := make([]pigo.Puploc, 0, len(eyeContourCascades))
	for _, name := range eyeContourCascades {
		cascades, ok := d.contours[name]
		if !ok || len(cascades) == 0 || cascades[0].PuplocCascade == nil {
			return nil, false
		}
		p := cascades[0].GetLandmarkPoint(left, right, params, 63, flip)
		if !validPupil(p) {
			return nil, false
		}
		points = append(points, *p)
	}
	return points, true
}

// Close releases the detector resources.
func (d *PigoDetector) Close() error {
	return nil
}

func validPupil(p *pigo.Puploc) bool {
	return p != nil && p.Row > 0 && p.Col > 0
}

func pupilDistance(pupil pigo.Puploc, contour []pigo.Puploc) float64 {
	var r, c float64
	for _, p := range contour {
		r += float64(p.Row)
		c += float64(p.Col)
	}
	n := float64(len(contour))
	return math.Hypot(r/n-float64(pupil.Row), c/n-float64(pupil.Col))
}

func fillEye(lm *Landmarks, iris, eye []int, pupil pigo.Puploc, contour []pigo.Puploc, cols, rows int) {
	pupilPoint := Point3D{X: float64(pupil.Col) / float64(cols), Y: float64(pupil.Row) / float64(rows)}
	for _, idx := range iris {
		lm.Points[idx] = pupilPoint
	}
	for i, idx := range eye {
		lm.Points[idx] = Point3D{
			X: float64(contour[i].Col) / float64(cols),
			Y: float64(contour[i].Row) / float64(rows),
		}
	}
}
