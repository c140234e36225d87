package cursor

import (
	"sync"
	"time"
)

// Op names a recorded sink command.
type Op string

const (
	OpMove Op = "move"
	OpDown Op = "down"
	OpUp   Op = "up"
)

// Command is one call recorded by MockSink.
type Command struct {
	Op       Op
	X, Y     int
	Duration time.Duration
}

// MockSink records every command it receives.
type MockSink struct {
	mu       sync.Mutex
	commands []Command
}

// NewMockSink creates an empty recording sink.
func NewMockSink() *MockSink {
	return &MockSink{}
}

func (m *MockSink) record(c Command) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands = append(m.commands, c)
}

// MoveTo records a move.
func (m *MockSink) MoveTo(x, y int, d time.Duration) {
	m.record(Command{Op: OpMove, X: x, Y: y, Duration: d})
}

// MouseDown records a press.
func (m *MockSink) MouseDown() {
	m.record(Command{Op: OpDown})
}

// MouseUp records a release.
func (m *MockSink) MouseUp() {
	m.record(Command{Op: OpUp})
}

// Commands returns a copy of the recorded commands.
func (m *MockSink) Commands() []Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Command, len(m.commands))
	copy(out, m.commands)
	return out
}

// Count returns how many commands of the given kind were recorded.
func (m *MockSink) Count(op Op) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.commands {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Reset clears the recorded commands.
func (m *MockSink) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands = nil
}

// StaticWindows is a WindowQuery returning fixed results.
type StaticWindows struct {
	Rect  Rect
	Found bool
	Err   error
	calls int
}

// ActiveWindow returns the configured result.
func (s *StaticWindows) ActiveWindow() (Rect, bool, error) {
	s.calls++
	if s.Err != nil {
		return Rect{}, false, s.Err
	}
	return s.Rect, s.Found, nil
}

// Calls returns how many times ActiveWindow was called.
func (s *StaticWindows) Calls() int {
	return s.calls
}
