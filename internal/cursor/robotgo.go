package cursor

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/go-vgo/robotgo"
	"github.com/rs/zerolog"
)

// tweenStep is the interval between intermediate cursor positions.
const tweenStep = 10 * time.Millisecond

// ErrSinkClosed is returned for platform calls made after Close.
var ErrSinkClosed = errors.New("cursor sink closed")

// mover is the subset of robotgo used by RobotSink. Its methods are only
// ever called from the sink's worker goroutine.
type mover interface {
	Move(x, y int)
	Location() (int, int)
	Toggle(down bool) error
	ActiveBounds() (x, y, w, h int)
	ScreenSize() (int, int)
}

type robotMover struct{}

func (robotMover) Move(x, y int) {
	robotgo.Move(x, y)
}

func (robotMover) Location() (int, int) {
	return robotgo.Location()
}

func (robotMover) Toggle(down bool) error {
	if down {
		return robotgo.Toggle("left")
	}
	return robotgo.Toggle("left", "up")
}

func (robotMover) ActiveBounds() (int, int, int, int) {
	return robotgo.GetBounds(robotgo.GetPid())
}

func (robotMover) ScreenSize() (int, int) {
	return robotgo.GetScreenSize()
}

type moveCmd struct {
	x, y int
	d    time.Duration
}

// RobotSink is a Sink backed by robotgo.
//
// One worker goroutine, locked to its OS thread, makes every robotgo call:
// robotgo shares a single X display connection that is not safe for
// concurrent use. Moves are tweened in tweenStep increments and a newer
// target replaces the one in flight. Button changes, window and screen
// queries are run on the worker between steps and wait for completion.
type RobotSink struct {
	mover  mover
	step   time.Duration
	logger zerolog.Logger

	targets chan moveCmd
	calls   chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once

	mu         sync.Mutex
	held       bool
	releaseErr error
}

// NewRobotSink starts a sink driving the real cursor.
func NewRobotSink(logger zerolog.Logger) *RobotSink {
	return newRobotSink(robotMover{}, tweenStep, logger)
}

func newRobotSink(m mover, step time.Duration, logger zerolog.Logger) *RobotSink {
	s := &RobotSink{
		mover:   m,
		step:    step,
		logger:  logger,
		targets: make(chan moveCmd, 1),
		calls:   make(chan func()),
		done:    make(chan struct{}),
	}
	s.wg.Add(1)
	go s.run()
	return s
}

// MoveTo queues a move, dropping any queued move not yet started.
func (s *RobotSink) MoveTo(x, y int, d time.Duration) {
	cmd := moveCmd{x: x, y: y, d: d}
	for {
		select {
		case <-s.done:
			return
		case s.targets <- cmd:
			return
		default:
		}
		// Drop the stale target and retry.
		select {
		case <-s.targets:
		default:
		}
	}
}

// MouseDown presses the primary button.
func (s *RobotSink) MouseDown() {
	s.toggle(true)
}

// MouseUp releases the primary button.
func (s *RobotSink) MouseUp() {
	s.toggle(false)
}

func (s *RobotSink) toggle(down bool) {
	var err error
	callErr := s.do(func() {
		if err = s.mover.Toggle(down); err == nil {
			s.mu.Lock()
			s.held = down
			s.mu.Unlock()
		}
	})
	if errors.Is(callErr, ErrSinkClosed) {
		return
	}
	if err = errors.Join(callErr, err); err != nil {
		s.logger.Warn().Err(err).Bool("down", down).Msg("mouse toggle failed")
	}
}

// Held reports whether the sink last pressed the button.
func (s *RobotSink) Held() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.held
}

// ScreenSize returns the primary screen size in pixels, or zeros once closed.
func (s *RobotSink) ScreenSize() (int, int) {
	var w, h int
	if err := s.do(func() { w, h = s.mover.ScreenSize() }); err != nil {
		s.logger.Warn().Err(err).Msg("screen size query failed")
	}
	return w, h
}

// Windows returns a WindowQuery that runs on the sink's worker.
func (s *RobotSink) Windows() *RobotWindows {
	return &RobotWindows{sink: s}
}

// Close stops the worker, releasing a held button on the way out.
func (s *RobotSink) Close() error {
	closed := false
	s.once.Do(func() {
		close(s.done)
		closed = true
	})
	s.wg.Wait()
	if !closed {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.releaseErr
}

// do runs fn on the worker and waits for it. A panic in fn is returned as
// an error.
func (s *RobotSink) do(fn func()) error {
	reply := make(chan error, 1)
	call := func() {
		defer func() {
			if r := recover(); r != nil {
				reply <- fmt.Errorf("platform call panicked: %v", r)
			}
		}()
		fn()
		reply <- nil
	}

	select {
	case <-s.done:
		return ErrSinkClosed
	case s.calls <- call:
	}
	return <-reply
}

func (s *RobotSink) run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer s.wg.Done()
	defer s.release()

	for {
		select {
		case <-s.done:
			return
		case call := <-s.calls:
			call()
		case cmd := <-s.targets:
			s.tween(cmd)
		}
	}
}

// release lets go of a held button as the worker exits.
func (s *RobotSink) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.held {
		return
	}
	if err := s.mover.Toggle(false); err != nil {
		s.releaseErr = fmt.Errorf("release button: %w", err)
	}
	s.held = false
}

// tween moves toward cmd in evenly spaced steps. It jumps to a newer
// target as soon as one arrives.
func (s *RobotSink) tween(cmd moveCmd) {
	for {
		steps := int(cmd.d / s.step)
		if steps < 1 {
			s.mover.Move(cmd.x, cmd.y)
			return
		}

		fromX, fromY := s.mover.Location()
		ticker := time.NewTicker(s.step)
		next, superseded := s.walk(ticker, cmd, fromX, fromY, steps)
		ticker.Stop()
		if !superseded {
			return
		}
		cmd = next
	}
}

func (s *RobotSink) walk(ticker *time.Ticker, cmd moveCmd, fromX, fromY, steps int) (moveCmd, bool) {
	for i := 1; i <= steps; {
		select {
		case <-s.done:
			return moveCmd{}, false
		case next := <-s.targets:
			return next, true
		case call := <-s.calls:
			call()
			continue
		case <-ticker.C:
		}
		t := float64(i) / float64(steps)
		x := fromX + int(float64(cmd.x-fromX)*t)
		y := fromY + int(float64(cmd.y-fromY)*t)
		s.mover.Move(x, y)
		i++
	}
	return moveCmd{}, false
}

// RobotWindows queries the foreground window through a RobotSink's worker.
type RobotWindows struct {
	sink *RobotSink
}

// ActiveWindow returns the bounds of the foreground window. A failed or
// panicking platform query is returned as an error.
func (w *RobotWindows) ActiveWindow() (Rect, bool, error) {
	var rect Rect
	err := w.sink.do(func() {
		x, y, width, height := w.sink.mover.ActiveBounds()
		rect = Rect{X: x, Y: y, Width: width, Height: height}
	})
	if err != nil {
		return Rect{}, false, fmt.Errorf("active window query: %w", err)
	}
	if rect.Empty() {
		return Rect{}, false, nil
	}
	return rect, true, nil
}
