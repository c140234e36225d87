// Package app drives the frame loop shared by the gaze and hand commands.
package app

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/cursor"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/pointer"
	"github.com/ayusman/mudra/internal/store"
)

// KeyQuit stops the loop when pressed in the preview window.
const KeyQuit = 'q'

// keyDelayMS is how long each iteration polls the preview window.
const keyDelayMS = 1

// Publisher receives every mapped frame, e.g. the status server hub.
type Publisher interface {
	Publish(frame pointer.Frame)
}

// Config wires an App. Camera, Detector and Sink are required.
type Config struct {
	Mode     pointer.Mode
	Camera   capture.Camera
	Detector detector.Detector
	Sink     cursor.Sink

	// Windows enables sticky hot zones in hand mode. Nil disables them.
	Windows cursor.WindowQuery

	// Display defaults to HeadlessDisplay.
	Display Display

	Screen pointer.Size
	Hand   pointer.HandConfig
	Gaze   pointer.GazeConfig
	Mirror bool

	// Motion gates landmark detection when non-nil.
	Motion *capture.MotionGate

	// Store records the run in the sessions table when non-nil.
	Store *store.Store

	Publisher Publisher
	Logger    zerolog.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// session is the per-mode mapping behind the loop.
type session interface {
	found(lm *detector.Landmarks, now time.Time) (pointer.Frame, error)
	lost(now time.Time) pointer.Frame
	pause(now time.Time) pointer.Frame
}

type gazeSession struct{ *pointer.GazeMapper }

func (s gazeSession) found(lm *detector.Landmarks, now time.Time) (pointer.Frame, error) {
	return s.Map(lm, now)
}
func (s gazeSession) lost(now time.Time) pointer.Frame  { return s.Lost(now) }
func (s gazeSession) pause(now time.Time) pointer.Frame { return s.Lost(now) }

type handSession struct{ *pointer.HandSession }

func (s handSession) found(lm *detector.Landmarks, now time.Time) (pointer.Frame, error) {
	return s.Process(lm, now)
}
func (s handSession) lost(now time.Time) pointer.Frame  { return s.Lost(now) }
func (s handSession) pause(now time.Time) pointer.Frame { return s.Suspend(now) }

// App runs one cursor control session over a camera.
type App struct {
	config  Config
	logger  zerolog.Logger
	display Display
	session session
	metrics *loopMetrics
	enabled atomic.Bool
	seq     uint64
	stats   store.Stats
}

// New validates the wiring and builds the mode session.
func New(config Config) (*App, error) {
	if config.Camera == nil || config.Detector == nil || config.Sink == nil {
		return nil, errors.New("app: camera, detector and sink are required")
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	a := &App{
		config:  config,
		logger:  logging.Component(config.Logger, "app").With().Str("mode", string(config.Mode)).Logger(),
		display: config.Display,
	}
	if a.display == nil {
		a.display = HeadlessDisplay{}
	}

	switch config.Mode {
	case pointer.ModeGaze:
		a.session = gazeSession{pointer.NewGazeMapper(config.Gaze, config.Screen, config.Sink)}
	case pointer.ModeHand:
		a.session = handSession{pointer.NewHandSession(config.Hand, config.Screen, config.Sink, config.Windows, a.logger)}
	default:
		return nil, fmt.Errorf("app: unknown mode %q", config.Mode)
	}

	m, err := newLoopMetrics(config.Mode)
	if err != nil {
		return nil, err
	}
	a.metrics = m

	a.enabled.Store(true)
	return a, nil
}

// SetEnabled pauses or resumes cursor control. Safe from any goroutine.
func (a *App) SetEnabled(enabled bool) {
	if a.enabled.Swap(enabled) != enabled {
		a.logger.Info().Bool("enabled", enabled).Msg("cursor control toggled")
	}
}

// IsEnabled returns whether cursor control is active.
func (a *App) IsEnabled() bool {
	return a.enabled.Load()
}

// Mode returns the entry point this app serves.
func (a *App) Mode() pointer.Mode {
	return a.config.Mode
}

// closeSink releases the sink when it holds resources, such as a pressed button.
func (a *App) closeSink() {
	c, ok := a.config.Sink.(io.Closer)
	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("close cursor sink")
	}
}
