package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if c.Camera.Device < 0 {
		add("camera.device", "must be >= 0, got %d", c.Camera.Device)
	}
	if c.Camera.FPS <= 0 {
		add("camera.fps", "must be > 0, got %d", c.Camera.FPS)
	}
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		add("camera.width", "resolution must be positive, got %dx%d", c.Camera.Width, c.Camera.Height)
	}

	switch c.Detector.Backend {
	case BackendMediaPipe, BackendPigo:
	default:
		add("detector.backend", "must be %q or %q, got %q", BackendMediaPipe, BackendPigo, c.Detector.Backend)
	}
	if !unit(c.Detector.MinDetectionConfidence) {
		add("detector.min_detection_confidence", "must be in [0, 1], got %v", c.Detector.MinDetectionConfidence)
	}
	if !unit(c.Detector.MinTrackingConfidence) {
		add("detector.min_tracking_confidence", "must be in [0, 1], got %v", c.Detector.MinTrackingConfidence)
	}

	h := c.Hand
	if h.Deadzone < 0 {
		add("hand.deadzone", "must be >= 0, got %v", h.Deadzone)
	}
	if h.Sensitivity <= 0 || h.Sensitivity > 1 {
		add("hand.sensitivity", "must be in (0, 1], got %v", h.Sensitivity)
	}
	if h.VectorMultiplier <= 0 {
		add("hand.vector_multiplier", "must be > 0, got %v", h.VectorMultiplier)
	}
	if h.FingersTogether <= 0 {
		add("hand.fingers_together", "must be > 0, got %v", h.FingersTogether)
	}
	if h.ClickThreshold <= 0 {
		add("hand.click_threshold", "must be > 0, got %v", h.ClickThreshold)
	}
	if !unit(h.HotZoneLow) || !unit(h.HotZoneHigh) || h.HotZoneLow >= h.HotZoneHigh {
		add("hand.hot_zone_low", "hot zone must satisfy 0 <= low < high <= 1, got %v..%v", h.HotZoneLow, h.HotZoneHigh)
	}
	for field, v := range map[string]int{
		"hand.sticky_interval_ms":    h.StickyIntervalMS,
		"hand.sticky_move_ms":        h.StickyMoveMS,
		"hand.normal_move_ms":        h.NormalMoveMS,
		"hand.release_after_lost_ms": h.ReleaseAfterLostMS,
		"gaze.move_ms":               c.Gaze.MoveMS,
	} {
		if v < 0 {
			add(field, "must be >= 0, got %d", v)
		}
	}

	if c.Gaze.Amplification <= 0 {
		add("gaze.amplification", "must be > 0, got %v", c.Gaze.Amplification)
	}
	if c.Gaze.Smoothing && (c.Gaze.Sensitivity <= 0 || c.Gaze.Sensitivity > 1) {
		add("gaze.sensitivity", "must be in (0, 1], got %v", c.Gaze.Sensitivity)
	}

	if c.Motion.Threshold <= 0 {
		add("motion.threshold", "must be > 0, got %v", c.Motion.Threshold)
	}
	if c.Server.Enabled && c.Server.Addr == "" {
		add("server.addr", "required when the server is enabled")
	}
	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil || c.Logging.Level == "" {
		add("logging.level", "unknown level %q", c.Logging.Level)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func unit(v float64) bool {
	return v >= 0 && v <= 1
}
