package app

import (
	"context"
	"fmt"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/pointer"
	"github.com/ayusman/mudra/internal/store"
)

// StopReason tells why Run returned.
type StopReason string

const (
	StopQuit     StopReason = "quit"
	StopCamera   StopReason = "camera"
	StopCanceled StopReason = "canceled"
)

// Summary describes a finished run.
type Summary struct {
	SessionID string      `json:"session_id,omitempty"`
	Reason    StopReason  `json:"reason"`
	Stats     store.Stats `json:"stats"`
}

// Run reads frames until the context is done, the camera fails or the quit
// key is pressed. The camera is always closed and a held button released.
//
// Per frame:
//  1. read (failure stops the run)
//  2. mirror
//  3. motion gate, when configured
//  4. detect (errors skip the frame)
//  5. map through the mode session, or report loss of tracking
//  6. publish, show, poll the quit key
func (a *App) Run(ctx context.Context) (Summary, error) {
	if err := a.config.Camera.Open(); err != nil {
		return Summary{}, fmt.Errorf("open camera: %w", err)
	}
	defer func() {
		if err := a.config.Camera.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("close camera")
		}
	}()
	defer a.closeSink()
	if a.config.Motion != nil {
		defer a.config.Motion.Close()
	}

	summary := Summary{}
	if st := a.config.Store; st != nil {
		sess, err := st.Sessions().Start(string(a.config.Mode))
		if err != nil {
			a.logger.Warn().Err(err).Msg("record session start")
		} else {
			summary.SessionID = sess.ID
		}
	}

	a.logger.Info().Bool("mirror", a.config.Mirror).Msg("frame loop started")
	summary.Reason = a.loop(ctx)
	summary.Stats = a.stats

	if summary.SessionID != "" {
		if err := a.config.Store.Sessions().Finish(summary.SessionID, a.stats, string(summary.Reason)); err != nil {
			a.logger.Warn().Err(err).Msg("record session finish")
		}
	}

	a.logger.Info().
		Str("reason", string(summary.Reason)).
		Int64("frames", a.stats.Frames).
		Int64("detected", a.stats.Detected).
		Int64("presses", a.stats.Presses).
		Int64("errors", a.stats.Errors).
		Msg("frame loop stopped")
	return summary, nil
}

func (a *App) loop(ctx context.Context) StopReason {
	for {
		select {
		case <-ctx.Done():
			return StopCanceled
		default:
		}

		frame, err := a.config.Camera.ReadFrame()
		if err != nil {
			a.logger.Error().Err(err).Msg("read frame")
			return StopCamera
		}

		quit := a.step(frame)
		frame.Close()
		if quit {
			return StopQuit
		}
	}
}

// step handles one frame and reports whether the quit key was pressed.
func (a *App) step(frame *gocv.Mat) bool {
	now := a.config.Now()
	a.stats.Frames++
	a.metrics.add(a.metrics.frames)

	if a.config.Mirror {
		capture.Mirror(frame)
	}

	if out, ok := a.process(frame, now); ok {
		a.record(out)
	}

	a.display.Show(frame)
	return a.display.Key(keyDelayMS) == KeyQuit
}

// process maps one frame. ok is false when nothing was mapped: the frame
// was gated out or skipped after an error.
func (a *App) process(frame *gocv.Mat, now time.Time) (out pointer.Frame, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error().Interface("panic", r).Msg("frame mapping panicked, frame skipped")
			a.countError()
			out, ok = pointer.Frame{}, false
		}
	}()

	if !a.IsEnabled() {
		return a.session.pause(now), true
	}

	if a.config.Motion != nil && !a.config.Motion.Pass(frame) {
		return pointer.Frame{}, false
	}

	lm, found, err := a.config.Detector.Detect(frame)
	if err != nil {
		a.logger.Warn().Err(err).Msg("landmark detection failed, frame skipped")
		a.countError()
		return pointer.Frame{}, false
	}
	if !found {
		return a.session.lost(now), true
	}

	a.stats.Detected++
	a.metrics.add(a.metrics.detected)

	out, err = a.session.found(&lm, now)
	if err != nil {
		a.logger.Warn().Err(err).Msg("frame mapping failed")
		a.countError()
	}
	return out, true
}

func (a *App) countError() {
	a.stats.Errors++
	a.metrics.add(a.metrics.errors)
}

// record counts click transitions and publishes the frame.
func (a *App) record(out pointer.Frame) {
	switch out.Click {
	case pointer.ClickPress:
		a.stats.Presses++
		a.metrics.add(a.metrics.presses)
	case pointer.ClickRelease:
		a.stats.Releases++
		a.metrics.add(a.metrics.releases)
	}

	a.seq++
	out.Seq = a.seq
	if a.config.Publisher != nil {
		a.config.Publisher.Publish(out)
	}
	if out.Click != pointer.ClickNone {
		a.logger.Debug().Str("click", out.Click.String()).Int("x", out.X).Int("y", out.Y).Msg("click")
	}
}
