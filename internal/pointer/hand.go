package pointer

import (
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/mudra/internal/cursor"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/rs/zerolog"
)

// Hand pointer defaults.
const (
	DefaultFingersTogether  = 0.05
	DefaultStickyMove       = 150 * time.Millisecond
	DefaultNormalMove       = 50 * time.Millisecond
	DefaultReleaseAfterLost = 500 * time.Millisecond
)

// HandConfig configures a HandSession.
type HandConfig struct {
	Deadzone         float64
	Sensitivity      float64
	VectorMultiplier float64

	// FingersTogether is the index-to-middle tip distance that engages
	// pointing.
	FingersTogether float64

	// ClickThreshold is the thumb-tip to index-PIP distance that holds the
	// button.
	ClickThreshold float64

	HotZoneLow     float64
	HotZoneHigh    float64
	StickyInterval time.Duration
	StickyMove     time.Duration
	NormalMove     time.Duration

	// ReleaseAfterLost releases a held button once the hand has been
	// missing this long. Zero keeps the button held.
	ReleaseAfterLost time.Duration

	// Initial seeds the smoother memory.
	Initial Vec2
}

// DefaultHandConfig returns the standard hand pointer tuning.
func DefaultHandConfig() HandConfig {
	return HandConfig{
		Deadzone:         DefaultDeadzone,
		Sensitivity:      DefaultSensitivity,
		VectorMultiplier: DefaultVectorMultiplier,
		FingersTogether:  DefaultFingersTogether,
		ClickThreshold:   DefaultClickThreshold,
		HotZoneLow:       DefaultHotZoneLow,
		HotZoneHigh:      DefaultHotZoneHigh,
		StickyInterval:   DefaultStickyInterval,
		StickyMove:       DefaultStickyMove,
		NormalMove:       DefaultNormalMove,
		ReleaseAfterLost: DefaultReleaseAfterLost,
	}
}

// FingersTogether reports whether the index and middle fingertips are
// closer than thr.
func FingersTogether(hand *detector.Landmarks, thr float64) (bool, error) {
	index, err := hand.Point(detector.IndexTip)
	if err != nil {
		return false, err
	}
	middle, err := hand.Point(detector.MiddleTip)
	if err != nil {
		return false, err
	}
	return distance(index, middle) < thr, nil
}

// PointC projects the pointing target from the index knuckle through the
// middle fingertip.
func PointC(hand *detector.Landmarks, k float64) (Vec2, error) {
	base, err := hand.Point(detector.IndexMCP)
	if err != nil {
		return Vec2{}, err
	}
	tip, err := hand.Point(detector.MiddleTip)
	if err != nil {
		return Vec2{}, err
	}
	return ExtendVector(fromPoint(base), fromPoint(tip), k), nil
}

// HandSession moves the cursor along the pointing direction of one hand and
// presses the button on a thumb pinch.
type HandSession struct {
	config   HandConfig
	screen   Size
	sink     cursor.Sink
	windows  cursor.WindowQuery
	logger   zerolog.Logger
	smoother *Smoother
	click    *ClickMachine
	sticky   *StickyGate
	lastSeen time.Time
}

// NewHandSession creates a hand session. windows may be nil, in which case
// no hot zone is ever reported.
func NewHandSession(config HandConfig, screen Size, sink cursor.Sink, windows cursor.WindowQuery, logger zerolog.Logger) *HandSession {
	return &HandSession{
		config:   config,
		screen:   screen,
		sink:     sink,
		windows:  windows,
		logger:   logger,
		smoother: NewSmoother(config.Deadzone, config.Sensitivity, config.Initial),
		click:    NewClickMachine(config.ClickThreshold),
		sticky:   NewStickyGate(config.StickyInterval),
	}
}

// Process maps one detected hand. Cursor projection and click detection
// fail independently; their errors are joined.
func (h *HandSession) Process(hand *detector.Landmarks, now time.Time) (Frame, error) {
	frame := Frame{Mode: ModeHand, Time: now, Detected: true}
	h.lastSeen = now

	engaged, err := FingersTogether(hand, h.config.FingersTogether)
	if err != nil {
		frame.Held = h.click.Held()
		frame.Error = err.Error()
		return frame, fmt.Errorf("fingers together: %w", err)
	}
	if !engaged {
		frame.Held = h.click.Held()
		return frame, nil
	}
	frame.Engaged = true

	moveErr := h.move(hand, now, &frame)
	clickErr := h.updateClick(hand, now, &frame)
	frame.Held = h.click.Held()

	err = errors.Join(moveErr, clickErr)
	if err != nil {
		frame.Error = err.Error()
	}
	return frame, err
}

func (h *HandSession) move(hand *detector.Landmarks, now time.Time, frame *Frame) error {
	target, err := PointC(hand, h.config.VectorMultiplier)
	if err != nil {
		return fmt.Errorf("point c: %w", err)
	}
	smoothed := h.smoother.Step(target)
	x, y := ToScreenClamped(smoothed, h.screen)
	frame.Target = smoothed
	frame.X, frame.Y = x, y

	if h.inHotZone(x, y) {
		frame.Sticky = true
		if !h.sticky.Allow(now) {
			return nil
		}
		h.sink.MoveTo(x, y, h.config.StickyMove)
	} else {
		h.sink.MoveTo(x, y, h.config.NormalMove)
	}
	frame.Moved = true
	return nil
}

func (h *HandSession) inHotZone(x, y int) bool {
	if h.windows == nil {
		return false
	}
	rect, ok, err := h.windows.ActiveWindow()
	if err != nil {
		h.logger.Warn().Err(err).Msg("active window query failed")
		return false
	}
	if !ok {
		return false
	}
	return InHotZone(rect, x, y, h.config.HotZoneLow, h.config.HotZoneHigh)
}

func (h *HandSession) updateClick(hand *detector.Landmarks, now time.Time, frame *Frame) error {
	thumb, err := hand.Point(detector.ThumbTip)
	if err != nil {
		return fmt.Errorf("click: %w", err)
	}
	joint, err := hand.Point(detector.IndexPIP)
	if err != nil {
		return fmt.Errorf("click: %w", err)
	}

	frame.Click = h.click.Update(distance(thumb, joint), now)
	h.emit(frame.Click)
	return nil
}

func (h *HandSession) emit(e ClickEvent) {
	switch e {
	case ClickPress:
		h.sink.MouseDown()
	case ClickRelease:
		h.sink.MouseUp()
	}
}

// Lost handles a frame with no hand. A held button is released once the
// hand has been missing for ReleaseAfterLost.
func (h *HandSession) Lost(now time.Time) Frame {
	frame := Frame{Mode: ModeHand, Time: now}
	if h.click.Held() && h.config.ReleaseAfterLost > 0 && now.Sub(h.lastSeen) >= h.config.ReleaseAfterLost {
		frame.Click = h.click.ForceRelease(now)
		h.emit(frame.Click)
		h.logger.Info().Dur("missing", now.Sub(h.lastSeen)).Msg("hand lost, released button")
	}
	frame.Held = h.click.Held()
	return frame
}

// Suspend releases a held button while cursor control is paused.
func (h *HandSession) Suspend(now time.Time) Frame {
	frame := Frame{Mode: ModeHand, Time: now}
	frame.Click = h.click.ForceRelease(now)
	h.emit(frame.Click)
	return frame
}

// Held reports whether the session holds the button.
func (h *HandSession) Held() bool {
	return h.click.Held()
}

// Smoothed returns the smoother memory.
func (h *HandSession) Smoothed() Vec2 {
	return h.smoother.Prev()
}
