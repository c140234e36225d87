// Package tray provides the system tray menu for headless mudra runs.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/mudra/internal/pointer"
)

// Tray represents the system tray application.
type Tray struct {
	title     string
	onToggle  func(enabled bool)
	onQuit    func()
	enabled   bool
	lastClick string
	mu        sync.RWMutex

	// Menu items stored for later updates
	menuToggle    *systray.MenuItem
	menuLastClick *systray.MenuItem
}

// New creates a new Tray with control enabled.
func New(title string) *Tray {
	return &Tray{
		title:   title,
		enabled: true,
	}
}

// OnToggle sets the callback function to be called when the enabled state is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the tray on the calling goroutine, which must be the main one
// on macOS. start runs once the menu is ready. Run blocks until Quit.
func (t *Tray) Run(start func()) {
	systray.Run(func() {
		t.onReady()
		if start != nil {
			go start()
		}
	}, func() {})
}

// Quit removes the tray icon and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle(t.title)
	systray.SetTooltip(t.title + " cursor control")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Pause or resume cursor control")
	systray.AddSeparator()
	t.menuLastClick = systray.AddMenuItem(lastClickTitle(t.lastClick), "Last mouse button event")
	t.menuLastClick.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit "+t.title)

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// handleToggle flips the enabled state and notifies the callback.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// Publish shows the latest press or release in the menu.
func (t *Tray) Publish(frame pointer.Frame) {
	if frame.Click == pointer.ClickNone {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastClick = frame.Click.String()
	if t.menuLastClick != nil {
		t.menuLastClick.SetTitle(lastClickTitle(t.lastClick))
	}
}

// LastClick returns the last published click event name, or "".
func (t *Tray) LastClick() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastClick
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Disabled"
}

func lastClickTitle(name string) string {
	if name == "" {
		return "Last: none"
	}
	return "Last: " + name
}
