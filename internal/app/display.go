package app

import (
	"gocv.io/x/gocv"
)

// Display shows camera frames and reports key presses.
type Display interface {
	Show(frame *gocv.Mat)

	// Key waits up to delayMS for a key press and returns its code, or -1.
	Key(delayMS int) int

	Close() error
}

// WindowDisplay is an OpenCV preview window.
type WindowDisplay struct {
	window *gocv.Window
}

// NewWindowDisplay opens a preview window with the given title.
func NewWindowDisplay(title string) *WindowDisplay {
	return &WindowDisplay{window: gocv.NewWindow(title)}
}

func (d *WindowDisplay) Show(frame *gocv.Mat) {
	if frame == nil || frame.Empty() {
		return
	}
	d.window.IMShow(*frame)
}

func (d *WindowDisplay) Key(delayMS int) int {
	return d.window.WaitKey(delayMS)
}

func (d *WindowDisplay) Close() error {
	return d.window.Close()
}

// HeadlessDisplay discards frames and never reports a key.
type HeadlessDisplay struct{}

func (HeadlessDisplay) Show(*gocv.Mat) {}
func (HeadlessDisplay) Key(int) int    { return -1 }
func (HeadlessDisplay) Close() error   { return nil }
