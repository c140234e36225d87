package pointer

import (
	"errors"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/cursor"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testScreen = Size{Width: 1000, Height: 1000}

// handPose builds an engaged hand whose Point C lands on target, with the
// thumb tip thumbGap away from the index PIP joint.
func handPose(target Vec2, thumbGap float64) detector.Landmarks {
	lm := detector.PointingLandmarks()
	r := detector.Point3D{X: 0.5, Y: 0.6}
	m := detector.Point3D{
		X: r.X + (target.X-r.X)/DefaultVectorMultiplier,
		Y: r.Y + (target.Y-r.Y)/DefaultVectorMultiplier,
	}
	lm.Points[detector.IndexMCP] = r
	lm.Points[detector.MiddleTip] = m
	lm.Points[detector.IndexTip] = detector.Point3D{X: m.X + 0.01, Y: m.Y}

	pip := detector.Point3D{X: 0.7, Y: 0.7}
	lm.Points[detector.IndexPIP] = pip
	lm.Points[detector.ThumbTip] = detector.Point3D{X: pip.X + thumbGap, Y: pip.Y}
	return lm
}

// apart spreads the index and middle fingertips so pointing disengages.
func apart(lm detector.Landmarks) detector.Landmarks {
	m := lm.Points[detector.MiddleTip]
	lm.Points[detector.IndexTip] = detector.Point3D{X: m.X + 0.2, Y: m.Y}
	return lm
}

func newTestSession(config HandConfig, windows cursor.WindowQuery) (*HandSession, *cursor.MockSink) {
	sink := cursor.NewMockSink()
	return NewHandSession(config, testScreen, sink, windows, zerolog.Nop()), sink
}

func TestFingersTogether(t *testing.T) {
	pointing := detector.PointingLandmarks()
	ok, err := FingersTogether(&pointing, DefaultFingersTogether)
	require.NoError(t, err)
	assert.True(t, ok)

	palm := detector.OpenPalmLandmarks()
	ok, err = FingersTogether(&palm, DefaultFingersTogether)
	require.NoError(t, err)
	assert.False(t, ok)

	short := detector.Landmarks{Points: make([]detector.Point3D, 10)}
	_, err = FingersTogether(&short, DefaultFingersTogether)
	assert.ErrorIs(t, err, detector.ErrLandmarkIndex)
}

func TestPointC(t *testing.T) {
	lm := detector.PointingLandmarks()
	c, err := PointC(&lm, DefaultVectorMultiplier)
	require.NoError(t, err)
	// IndexMCP (0.52, 0.66) through MiddleTip (0.50, 0.47), four times out.
	assert.InDelta(t, 0.44, c.X, 1e-9)
	assert.InDelta(t, -0.10, c.Y, 1e-9)
}

func TestHandSession_MovesTowardPointC(t *testing.T) {
	h, sink := newTestSession(DefaultHandConfig(), nil)
	now := time.Unix(100, 0)

	hand := handPose(Vec2{X: 0.6, Y: 0.4}, 0.2)
	frame, err := h.Process(&hand, now)
	require.NoError(t, err)

	assert.True(t, frame.Engaged)
	assert.True(t, frame.Moved)
	assert.False(t, frame.Sticky)
	assert.Equal(t, ClickNone, frame.Click)

	cmds := sink.Commands()
	require.Len(t, cmds, 1)
	assert.Equal(t, cursor.OpMove, cmds[0].Op)
	assert.InDelta(t, 300, cmds[0].X, 1)
	assert.InDelta(t, 200, cmds[0].Y, 1)
	assert.Equal(t, DefaultNormalMove, cmds[0].Duration)
}

func TestHandSession_StationaryTarget(t *testing.T) {
	config := DefaultHandConfig()
	config.Initial = Vec2{X: 0.5, Y: 0.5}
	h, sink := newTestSession(config, nil)
	now := time.Unix(100, 0)

	hand := handPose(Vec2{X: 0.5, Y: 0.5}, 0.2)
	for i := 0; i < 5; i++ {
		_, err := h.Process(&hand, now.Add(time.Duration(i)*33*time.Millisecond))
		require.NoError(t, err)
	}

	assert.Equal(t, Vec2{X: 0.5, Y: 0.5}, h.Smoothed())
	for _, c := range sink.Commands() {
		assert.Equal(t, 500, c.X)
		assert.Equal(t, 500, c.Y)
	}
}

func TestHandSession_CursorStaysOnScreen(t *testing.T) {
	config := DefaultHandConfig()
	config.Deadzone = 0
	config.Sensitivity = 1
	h, sink := newTestSession(config, nil)
	now := time.Unix(100, 0)

	for i, target := range []Vec2{{X: -2, Y: 3}, {X: 1.5, Y: -0.7}, {X: 0.999, Y: 1.0001}} {
		hand := handPose(target, 0.2)
		_, err := h.Process(&hand, now.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
	}

	for _, c := range sink.Commands() {
		assert.GreaterOrEqual(t, c.X, 0)
		assert.LessOrEqual(t, c.X, testScreen.Width-1)
		assert.GreaterOrEqual(t, c.Y, 0)
		assert.LessOrEqual(t, c.Y, testScreen.Height-1)
	}
}

func TestHandSession_StickyHotZone(t *testing.T) {
	config := DefaultHandConfig()
	config.Initial = Vec2{X: 0.5, Y: 0.5}
	windows := &cursor.StaticWindows{Rect: cursor.Rect{Width: 1000, Height: 1000}, Found: true}
	h, sink := newTestSession(config, windows)
	start := time.Unix(100, 0)

	hand := handPose(Vec2{X: 0.5, Y: 0.5}, 0.2)

	frame, err := h.Process(&hand, start)
	require.NoError(t, err)
	assert.True(t, frame.Sticky)
	assert.True(t, frame.Moved)

	frame, err = h.Process(&hand, start.Add(50*time.Millisecond))
	require.NoError(t, err)
	assert.True(t, frame.Sticky)
	assert.False(t, frame.Moved, "dwell move suppressed inside the interval")

	frame, err = h.Process(&hand, start.Add(150*time.Millisecond))
	require.NoError(t, err)
	assert.True(t, frame.Moved)

	cmds := sink.Commands()
	require.Len(t, cmds, 2)
	for _, c := range cmds {
		assert.Equal(t, DefaultStickyMove, c.Duration)
	}
	assert.Equal(t, 3, windows.Calls())
}

func TestHandSession_WindowQueryFailure(t *testing.T) {
	config := DefaultHandConfig()
	config.Initial = Vec2{X: 0.5, Y: 0.5}
	windows := &cursor.StaticWindows{Err: errors.New("no display")}
	h, sink := newTestSession(config, windows)

	hand := handPose(Vec2{X: 0.5, Y: 0.5}, 0.2)
	frame, err := h.Process(&hand, time.Unix(100, 0))
	require.NoError(t, err)
	assert.False(t, frame.Sticky)

	cmds := sink.Commands()
	require.Len(t, cmds, 1)
	assert.Equal(t, DefaultNormalMove, cmds[0].Duration)
}

func TestHandSession_NotEngaged(t *testing.T) {
	h, sink := newTestSession(DefaultHandConfig(), nil)

	// A pinch with the pointing fingers apart is ignored.
	hand := apart(handPose(Vec2{X: 0.6, Y: 0.4}, 0.01))
	frame, err := h.Process(&hand, time.Unix(100, 0))
	require.NoError(t, err)

	assert.True(t, frame.Detected)
	assert.False(t, frame.Engaged)
	assert.False(t, frame.Moved)
	assert.Equal(t, ClickNone, frame.Click)
	assert.Empty(t, sink.Commands())
	assert.False(t, h.Held())
}

func TestHandSession_ClickSequence(t *testing.T) {
	h, sink := newTestSession(DefaultHandConfig(), nil)
	start := time.Unix(100, 0)

	var events []ClickEvent
	for i, gap := range []float64{0.10, 0.03, 0.03, 0.08} {
		hand := handPose(Vec2{X: 0.6, Y: 0.4}, gap)
		frame, err := h.Process(&hand, start.Add(time.Duration(i)*33*time.Millisecond))
		require.NoError(t, err)
		events = append(events, frame.Click)
	}

	assert.Equal(t, []ClickEvent{ClickNone, ClickPress, ClickNone, ClickRelease}, events)

	var ops []cursor.Op
	for _, c := range sink.Commands() {
		ops = append(ops, c.Op)
	}
	assert.Equal(t, []cursor.Op{
		cursor.OpMove,
		cursor.OpMove, cursor.OpDown,
		cursor.OpMove,
		cursor.OpMove, cursor.OpUp,
	}, ops)
}

func TestHandSession_HeldWhileDisengaged(t *testing.T) {
	h, sink := newTestSession(DefaultHandConfig(), nil)
	start := time.Unix(100, 0)

	pinch := handPose(Vec2{X: 0.6, Y: 0.4}, 0.01)
	_, err := h.Process(&pinch, start)
	require.NoError(t, err)
	require.True(t, h.Held())

	// Separating the pointing fingers does not evaluate the click.
	open := apart(handPose(Vec2{X: 0.6, Y: 0.4}, 0.2))
	frame, err := h.Process(&open, start.Add(33*time.Millisecond))
	require.NoError(t, err)
	assert.True(t, frame.Held)
	assert.Equal(t, 0, sink.Count(cursor.OpUp))
}

func TestHandSession_LostReleasesButton(t *testing.T) {
	h, sink := newTestSession(DefaultHandConfig(), nil)
	start := time.Unix(100, 0)

	pinch := handPose(Vec2{X: 0.6, Y: 0.4}, 0.01)
	_, err := h.Process(&pinch, start)
	require.NoError(t, err)
	require.True(t, h.Held())

	frame := h.Lost(start.Add(100 * time.Millisecond))
	assert.Equal(t, ClickNone, frame.Click)
	assert.True(t, frame.Held)

	frame = h.Lost(start.Add(DefaultReleaseAfterLost))
	assert.Equal(t, ClickRelease, frame.Click)
	assert.False(t, frame.Held)
	assert.Equal(t, 1, sink.Count(cursor.OpUp))

	frame = h.Lost(start.Add(time.Second))
	assert.Equal(t, ClickNone, frame.Click)
	assert.Equal(t, 1, sink.Count(cursor.OpUp))
}

func TestHandSession_LostWithoutTimeout(t *testing.T) {
	config := DefaultHandConfig()
	config.ReleaseAfterLost = 0
	h, sink := newTestSession(config, nil)
	start := time.Unix(100, 0)

	pinch := handPose(Vec2{X: 0.6, Y: 0.4}, 0.01)
	_, err := h.Process(&pinch, start)
	require.NoError(t, err)

	h.Lost(start.Add(time.Hour))
	assert.True(t, h.Held())
	assert.Equal(t, 0, sink.Count(cursor.OpUp))
}

func TestHandSession_Suspend(t *testing.T) {
	h, sink := newTestSession(DefaultHandConfig(), nil)
	start := time.Unix(100, 0)

	assert.Equal(t, ClickNone, h.Suspend(start).Click)

	pinch := handPose(Vec2{X: 0.6, Y: 0.4}, 0.01)
	_, err := h.Process(&pinch, start)
	require.NoError(t, err)

	assert.Equal(t, ClickRelease, h.Suspend(start.Add(time.Millisecond)).Click)
	assert.False(t, h.Held())
	assert.Equal(t, 1, sink.Count(cursor.OpUp))
}

func TestHandSession_MissingLandmarks(t *testing.T) {
	h, sink := newTestSession(DefaultHandConfig(), nil)

	short := detector.Landmarks{Points: make([]detector.Point3D, 9)}
	frame, err := h.Process(&short, time.Unix(100, 0))
	assert.ErrorIs(t, err, detector.ErrLandmarkIndex)
	assert.NotEmpty(t, frame.Error)
	assert.Empty(t, sink.Commands())
}
