package app

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/pointer"
	"github.com/ayusman/mudra/internal/store"
)

func TestTitle(t *testing.T) {
	assert.Equal(t, "gazecursor", Title(pointer.ModeGaze))
	assert.Equal(t, "handcursor", Title(pointer.ModeHand))
}

func TestApplyOptions(t *testing.T) {
	tests := []struct {
		name  string
		opts  Options
		check func(t *testing.T, c *config.Config)
	}{
		{
			name: "no overrides",
			check: func(t *testing.T, c *config.Config) {
				assert.Equal(t, config.Default(), c)
			},
		},
		{
			name: "log level",
			opts: Options{LogLevel: "debug"},
			check: func(t *testing.T, c *config.Config) {
				assert.Equal(t, "debug", c.Logging.Level)
			},
		},
		{
			name: "headless",
			opts: Options{Headless: true},
			check: func(t *testing.T, c *config.Config) {
				assert.False(t, c.UI.Preview)
			},
		},
		{
			name: "tray disables preview",
			opts: Options{Tray: true},
			check: func(t *testing.T, c *config.Config) {
				assert.True(t, c.UI.Tray)
				assert.False(t, c.UI.Preview)
			},
		},
		{
			name: "addr enables server",
			opts: Options{Addr: "127.0.0.1:9000"},
			check: func(t *testing.T, c *config.Config) {
				assert.True(t, c.Server.Enabled)
				assert.Equal(t, "127.0.0.1:9000", c.Server.Addr)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := config.Default()
			applyOptions(c, tt.opts)
			tt.check(t, c)
		})
	}
}

func TestOverlaySettings(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "overlay.db"))
	require.NoError(t, err)
	defer st.Close()

	c := config.Default()
	overlaySettings(c, st, zerolog.Nop())
	assert.Equal(t, config.Default(), c)

	require.NoError(t, st.Settings().Set("hand.deadzone", "0.02"))
	overlaySettings(c, st, zerolog.Nop())
	assert.Equal(t, 0.02, c.Hand.Deadzone)

	// A rejected set leaves the configuration alone.
	require.NoError(t, st.Settings().Set("hand.sensitivity", "7"))
	overlaySettings(c, st, zerolog.Nop())
	assert.Equal(t, 0.02, c.Hand.Deadzone)
	assert.Equal(t, config.Default().Hand.Sensitivity, c.Hand.Sensitivity)
}

func TestOverlaySettings_ReturnsFileConfig(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "base.db"))
	require.NoError(t, err)
	defer st.Close()
	require.NoError(t, st.Settings().Set("hand.deadzone", "0.02"))

	c := config.Default()
	c.Hand.Sensitivity = 2.5
	base := overlaySettings(c, st, zerolog.Nop())

	assert.Equal(t, 0.02, c.Hand.Deadzone)
	assert.Equal(t, config.Default().Hand.Deadzone, base.Hand.Deadzone)
	assert.Equal(t, 2.5, base.Hand.Sensitivity)
	assert.NotSame(t, c, base)
}

func TestNewDetector_Errors(t *testing.T) {
	c := config.Default()
	c.Detector.Backend = config.BackendPigo
	c.Detector.CascadeDir = t.TempDir()

	_, err := newDetector(pointer.ModeGaze, c, zerolog.Nop())
	assert.ErrorContains(t, err, "pigo detector")

	c.Detector.ScriptPath = filepath.Join(t.TempDir(), "missing.py")
	_, err = newDetector(pointer.ModeHand, c, zerolog.Nop())
	assert.ErrorIs(t, err, detector.ErrServiceNotFound)
}

func TestFanout(t *testing.T) {
	a, b := &recordingPublisher{}, &recordingPublisher{}
	f := fanout{a, b}

	f.Publish(pointer.Frame{Seq: 1})
	f.Publish(pointer.Frame{Seq: 2})

	assert.Len(t, a.frames, 2)
	assert.Equal(t, a.frames, b.frames)
}
