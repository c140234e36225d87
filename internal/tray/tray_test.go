package tray

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ayusman/mudra/internal/pointer"
)

func TestTray_Toggle(t *testing.T) {
	tr := New("handcursor")
	assert.True(t, tr.IsEnabled())

	var got []bool
	tr.OnToggle(func(enabled bool) { got = append(got, enabled) })

	tr.handleToggle()
	tr.handleToggle()

	assert.Equal(t, []bool{false, true}, got)
	assert.True(t, tr.IsEnabled())
}

func TestTray_PublishKeepsLastClick(t *testing.T) {
	tr := New("handcursor")
	assert.Empty(t, tr.LastClick())

	tr.Publish(pointer.Frame{Click: pointer.ClickPress})
	tr.Publish(pointer.Frame{Click: pointer.ClickNone})
	assert.Equal(t, pointer.ClickPress.String(), tr.LastClick())

	tr.Publish(pointer.Frame{Click: pointer.ClickRelease})
	assert.Equal(t, pointer.ClickRelease.String(), tr.LastClick())
}

func TestTitles(t *testing.T) {
	assert.Equal(t, "● Enabled", toggleTitle(true))
	assert.Equal(t, "○ Disabled", toggleTitle(false))
	assert.Equal(t, "Last: none", lastClickTitle(""))
	assert.Equal(t, "Last: press", lastClickTitle("press"))
}
