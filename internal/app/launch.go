package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/cursor"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/pointer"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

// Options are the command line overrides shared by both commands.
type Options struct {
	ConfigPath string
	LogLevel   string
	Headless   bool
	Tray       bool

	// Addr enables the status server on this address.
	Addr string
}

// Title returns the command and window name for a mode.
func Title(mode pointer.Mode) string {
	if mode == pointer.ModeGaze {
		return "gazecursor"
	}
	return "handcursor"
}

// Launch loads the configuration, wires every component for mode and runs
// the frame loop until it stops.
func Launch(mode pointer.Mode, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyOptions(cfg, opts)

	var logFile io.Writer
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logFile = f
	}
	logger := logging.New(logging.Options{
		Level:   cfg.Logging.Level,
		NoColor: cfg.Logging.NoColor,
		File:    logFile,
	}).With().Str("cmd", Title(mode)).Logger()

	base := cfg
	var st *store.Store
	if cfg.Store.Path != "" {
		st, err = store.New(cfg.Store.Path)
		if err != nil {
			logger.Warn().Err(err).Str("path", cfg.Store.Path).Msg("store unavailable, running without persisted settings")
			st = nil
		} else {
			defer st.Close()
			base = overlaySettings(cfg, st, logger)
		}
	}

	det, err := newDetector(mode, cfg, logger)
	if err != nil {
		return err
	}
	defer det.Close()

	sink := cursor.NewRobotSink(logging.Component(logger, "cursor"))
	var windows cursor.WindowQuery
	if mode == pointer.ModeHand && cfg.Hand.Sticky {
		windows = sink.Windows()
	}
	width, height := sink.ScreenSize()

	var motion *capture.MotionGate
	if cfg.Motion.Enabled {
		motion = capture.NewMotionGate(cfg.Motion.Threshold, cfg.Motion.MaxSkip)
	}

	var display Display = HeadlessDisplay{}
	if cfg.UI.Preview {
		display = NewWindowDisplay(Title(mode))
	}
	defer display.Close()

	var tr *tray.Tray
	publishers := fanout{}
	if cfg.UI.Tray {
		tr = tray.New(Title(mode))
		publishers = append(publishers, tr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var hub *server.Hub
	if cfg.Server.Enabled {
		hub = server.NewHub(logging.Component(logger, "hub"))
		go hub.Run(ctx)
		publishers = append(publishers, hub)
	}

	a, err := New(Config{
		Mode:      mode,
		Camera:    capture.NewCamera(cfg.CameraSettings()),
		Detector:  det,
		Sink:      sink,
		Windows:   windows,
		Display:   display,
		Screen:    pointer.Size{Width: width, Height: height},
		Hand:      cfg.HandSettings(),
		Gaze:      cfg.GazeSettings(),
		Mirror:    cfg.Camera.Mirror,
		Motion:    motion,
		Store:     st,
		Publisher: publishers,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	if hub != nil {
		srv := server.New(server.Config{
			Store:  st,
			Base:   base,
			Hub:    hub,
			Logger: logging.Component(logger, "server"),
			Status: func() map[string]any {
				return map[string]any{
					"mode":    string(mode),
					"enabled": a.IsEnabled(),
					"backend": cfg.Detector.Backend,
				}
			},
		})
		go func() {
			if err := srv.Serve(ctx, cfg.Server.Addr); err != nil {
				logger.Error().Err(err).Msg("status server stopped")
			}
		}()
	}

	logger.Info().
		Int("screen_width", width).
		Int("screen_height", height).
		Str("backend", cfg.Detector.Backend).
		Bool("preview", cfg.UI.Preview).
		Msg("starting")

	var (
		summary Summary
		runErr  error
	)
	if tr != nil {
		tr.OnToggle(a.SetEnabled)
		tr.OnQuit(stop)
		done := make(chan struct{})
		tr.Run(func() {
			defer close(done)
			summary, runErr = a.Run(ctx)
			tr.Quit()
		})
		// Quit from the menu returns before the loop has closed the camera.
		stop()
		<-done
	} else {
		summary, runErr = a.Run(ctx)
	}
	if runErr != nil {
		return runErr
	}
	if summary.Reason == StopCamera {
		return errors.New("camera stopped delivering frames")
	}
	return nil
}

// applyOptions lays the command line over the loaded configuration.
func applyOptions(cfg *config.Config, opts Options) {
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	if opts.Headless {
		cfg.UI.Preview = false
	}
	if opts.Tray {
		cfg.UI.Tray = true
	}
	// The tray owns the main thread, so the preview window cannot run beside it.
	if cfg.UI.Tray {
		cfg.UI.Preview = false
	}
	if opts.Addr != "" {
		cfg.Server.Enabled = true
		cfg.Server.Addr = opts.Addr
	}
}

// overlaySettings applies the persisted tuning overrides and returns the
// configuration as it was before them. A bad override set is logged and the
// file configuration is kept.
func overlaySettings(cfg *config.Config, st *store.Store, logger zerolog.Logger) *config.Config {
	base := cfg.Clone()
	values, err := st.Settings().All()
	if err != nil {
		logger.Warn().Err(err).Msg("read persisted settings")
		return base
	}
	if len(values) == 0 {
		return base
	}
	if err := cfg.ApplySettings(values); err != nil {
		logger.Warn().Err(err).Msg("persisted settings rejected")
		return base
	}
	logger.Info().Int("count", len(values)).Msg("applied persisted settings")
	return base
}

// newDetector selects the landmark backend for mode.
func newDetector(mode pointer.Mode, cfg *config.Config, logger zerolog.Logger) (detector.Detector, error) {
	if mode == pointer.ModeGaze && cfg.Detector.Backend == config.BackendPigo {
		d, err := detector.NewPigoDetector(cfg.PigoSettings())
		if err != nil {
			return nil, fmt.Errorf("pigo detector: %w", err)
		}
		logger.Info().Str("cascades", cfg.Detector.CascadeDir).Msg("using pigo gaze detection")
		return d, nil
	}
	if mode == pointer.ModeHand && cfg.Detector.Backend == config.BackendPigo {
		logger.Warn().Msg("pigo backend has no hand model, using mediapipe")
	}

	detMode := detector.ModeHand
	if mode == pointer.ModeGaze {
		detMode = detector.ModeFace
	}
	d, err := detector.NewMediaPipeDetector(cfg.DetectorSettings(detMode))
	if err != nil {
		return nil, fmt.Errorf("mediapipe detector: %w", err)
	}
	logger.Info().Str("mode", string(detMode)).Msg("using mediapipe detection")
	return d, nil
}

// fanout publishes each frame to every receiver.
type fanout []Publisher

func (f fanout) Publish(frame pointer.Frame) {
	for _, p := range f {
		p.Publish(frame)
	}
}
