package cursor

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMover struct {
	mu      sync.Mutex
	x, y    int
	moves   [][2]int
	toggles []bool
	failing bool
	bounds  func() (int, int, int, int)

	// inFlight and overlaps detect platform calls made concurrently.
	inFlight atomic.Int32
	overlaps atomic.Int32
}

// enter marks a platform call as running and holds it open briefly so
// concurrent callers are caught.
func (f *fakeMover) enter() func() {
	if f.inFlight.Add(1) > 1 {
		f.overlaps.Add(1)
	}
	time.Sleep(20 * time.Microsecond)
	return func() { f.inFlight.Add(-1) }
}

func (f *fakeMover) Move(x, y int) {
	defer f.enter()()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.x, f.y = x, y
	f.moves = append(f.moves, [2]int{x, y})
}

func (f *fakeMover) Location() (int, int) {
	defer f.enter()()
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.x, f.y
}

func (f *fakeMover) Toggle(down bool) error {
	defer f.enter()()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("no display")
	}
	f.toggles = append(f.toggles, down)
	return nil
}

func (f *fakeMover) ActiveBounds() (int, int, int, int) {
	defer f.enter()()
	if f.bounds == nil {
		return 0, 0, 0, 0
	}
	return f.bounds()
}

func (f *fakeMover) ScreenSize() (int, int) {
	defer f.enter()()
	return 1920, 1080
}

func (f *fakeMover) position() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.x, f.y
}

func (f *fakeMover) moveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.moves)
}

func (f *fakeMover) toggleLog() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.toggles...)
}

func TestRobotSink_InstantMove(t *testing.T) {
	m := &fakeMover{}
	s := newRobotSink(m, time.Millisecond, zerolog.Nop())
	defer s.Close()

	s.MoveTo(300, 200, 0)

	assert.Eventually(t, func() bool {
		x, y := m.position()
		return x == 300 && y == 200
	}, time.Second, time.Millisecond)
	assert.Equal(t, 1, m.moveCount())
}

func TestRobotSink_TweenReachesTarget(t *testing.T) {
	m := &fakeMover{x: 0, y: 0}
	s := newRobotSink(m, time.Millisecond, zerolog.Nop())
	defer s.Close()

	s.MoveTo(100, 50, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		x, y := m.position()
		return x == 100 && y == 50
	}, time.Second, time.Millisecond)
	assert.Equal(t, 10, m.moveCount(), "one move per step")
}

func TestRobotSink_MoveToDoesNotBlock(t *testing.T) {
	m := &fakeMover{}
	s := newRobotSink(m, 50*time.Millisecond, zerolog.Nop())
	defer s.Close()

	start := time.Now()
	for i := 0; i < 20; i++ {
		s.MoveTo(i*10, i*10, time.Second)
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	// The last target wins.
	s.MoveTo(7, 9, 0)
	assert.Eventually(t, func() bool {
		x, y := m.position()
		return x == 7 && y == 9
	}, 2*time.Second, time.Millisecond)
}

func TestRobotSink_Buttons(t *testing.T) {
	m := &fakeMover{}
	s := newRobotSink(m, time.Millisecond, zerolog.Nop())

	s.MouseDown()
	assert.True(t, s.Held())
	s.MouseUp()
	assert.False(t, s.Held())

	require.NoError(t, s.Close())
	assert.Equal(t, []bool{true, false}, m.toggleLog())
}

func TestRobotSink_CloseReleasesHeldButton(t *testing.T) {
	m := &fakeMover{}
	s := newRobotSink(m, time.Millisecond, zerolog.Nop())

	s.MouseDown()
	require.NoError(t, s.Close())

	assert.Equal(t, []bool{true, false}, m.toggleLog())
	assert.False(t, s.Held())

	// Commands after close are ignored.
	s.MouseDown()
	s.MoveTo(1, 1, 0)
	assert.Equal(t, []bool{true, false}, m.toggleLog())
	require.NoError(t, s.Close())
}

func TestRobotSink_ToggleFailureKeepsState(t *testing.T) {
	m := &fakeMover{failing: true}
	s := newRobotSink(m, time.Millisecond, zerolog.Nop())
	defer s.Close()

	s.MouseDown()
	assert.False(t, s.Held())
}

func TestRobotSink_PlatformCallsNeverOverlap(t *testing.T) {
	m := &fakeMover{bounds: func() (int, int, int, int) { return 0, 0, 800, 600 }}
	s := newRobotSink(m, time.Millisecond, zerolog.Nop())
	w := s.Windows()

	// A pinch drag: every frame queues a tweened move, then toggles the
	// button and asks for the foreground window while the tween runs.
	for i := 0; i < 200; i++ {
		s.MoveTo(i, i, 50*time.Millisecond)
		if i%2 == 0 {
			s.MouseDown()
		} else {
			s.MouseUp()
		}
		_, _, err := w.ActiveWindow()
		require.NoError(t, err)
	}
	assert.Eventually(t, func() bool {
		x, y := m.position()
		return x == 199 && y == 199
	}, 2*time.Second, time.Millisecond)
	s.MouseDown()
	require.NoError(t, s.Close())

	assert.Zero(t, m.overlaps.Load(), "platform calls ran concurrently")
	assert.Len(t, m.toggleLog(), 202, "200 toggles, a press and the release on close")
}

func TestRobotSink_ScreenSize(t *testing.T) {
	s := newRobotSink(&fakeMover{}, time.Millisecond, zerolog.Nop())

	w, h := s.ScreenSize()
	assert.Equal(t, 1920, w)
	assert.Equal(t, 1080, h)

	require.NoError(t, s.Close())
	w, h = s.ScreenSize()
	assert.Zero(t, w)
	assert.Zero(t, h)
}

func TestRobotWindows_ActiveWindow(t *testing.T) {
	tests := []struct {
		name    string
		bounds  func() (int, int, int, int)
		want    Rect
		wantOK  bool
		wantErr bool
	}{
		{
			name:   "foreground window",
			bounds: func() (int, int, int, int) { return 10, 20, 800, 600 },
			want:   Rect{X: 10, Y: 20, Width: 800, Height: 600},
			wantOK: true,
		},
		{
			name:   "no window",
			bounds: func() (int, int, int, int) { return 0, 0, 0, 0 },
		},
		{
			name:    "query panics",
			bounds:  func() (int, int, int, int) { panic("x11 unavailable") },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newRobotSink(&fakeMover{bounds: tt.bounds}, time.Millisecond, zerolog.Nop())
			defer s.Close()

			rect, ok, err := s.Windows().ActiveWindow()
			if tt.wantErr {
				assert.Error(t, err)
				assert.False(t, ok)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, rect)
		})
	}

	t.Run("after close", func(t *testing.T) {
		s := newRobotSink(&fakeMover{}, time.Millisecond, zerolog.Nop())
		require.NoError(t, s.Close())

		_, ok, err := s.Windows().ActiveWindow()
		assert.ErrorIs(t, err, ErrSinkClosed)
		assert.False(t, ok)
	})
}

func TestMockSink_Records(t *testing.T) {
	m := NewMockSink()
	m.MoveTo(1, 2, 50*time.Millisecond)
	m.MouseDown()
	m.MouseUp()

	assert.Equal(t, []Command{
		{Op: OpMove, X: 1, Y: 2, Duration: 50 * time.Millisecond},
		{Op: OpDown},
		{Op: OpUp},
	}, m.Commands())
	assert.Equal(t, 1, m.Count(OpMove))

	m.Reset()
	assert.Empty(t, m.Commands())
}
