package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/pointer"
)

func TestDefault(t *testing.T) {
	t.Setenv("MUDRA_HOME", "/tmp/mudra-test")
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, BackendMediaPipe, cfg.Detector.Backend)
	assert.True(t, cfg.Camera.Mirror)
	assert.Equal(t, "/tmp/mudra-test/mudra.db", cfg.Store.Path)
	assert.Equal(t, filepath.Join("/tmp/mudra-test", "config.toml"), Path())

	hand := cfg.HandSettings()
	assert.Equal(t, pointer.DefaultHandConfig(), hand)

	gaze := cfg.GazeSettings()
	assert.Equal(t, pointer.DefaultGazeConfig(), gaze)
	assert.False(t, gaze.Clamp)
	assert.False(t, gaze.Smoothing)
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Hand, cfg.Hand)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[camera]
device = 2
fps = 24

[hand]
deadzone = 0.02
release_after_lost_ms = 0

[gaze]
clamp = true

[logging]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Camera.Device)
	assert.Equal(t, 24, cfg.Camera.FPS)
	assert.Equal(t, 0.02, cfg.Hand.Deadzone)
	assert.Equal(t, pointer.DefaultSensitivity, cfg.Hand.Sensitivity, "unset keys keep defaults")
	assert.Equal(t, time.Duration(0), cfg.HandSettings().ReleaseAfterLost)
	assert.True(t, cfg.GazeSettings().Clamp)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 24, cfg.CameraSettings().FPS)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"bad syntax", "[camera\n", "decode TOML"},
		{"unknown key", "[hand]\nwobble = 1\n", "unknown key"},
		{"invalid value", "[hand]\nsensitivity = 1.5\n", "hand.sensitivity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.data), 0o644))

			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"negative device", func(c *Config) { c.Camera.Device = -1 }, "camera.device"},
		{"zero fps", func(c *Config) { c.Camera.FPS = 0 }, "camera.fps"},
		{"unknown backend", func(c *Config) { c.Detector.Backend = "dlib" }, "detector.backend"},
		{"zero sensitivity", func(c *Config) { c.Hand.Sensitivity = 0 }, "hand.sensitivity"},
		{"inverted hot zone", func(c *Config) { c.Hand.HotZoneLow = 0.8 }, "hand.hot_zone_low"},
		{"negative timeout", func(c *Config) { c.Hand.ReleaseAfterLostMS = -1 }, "hand.release_after_lost_ms"},
		{"server without addr", func(c *Config) { c.Server = ServerConfig{Enabled: true} }, "server.addr"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var errs ValidationErrors
			require.True(t, errors.As(err, &errs))
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}
}

func TestSettingKeys(t *testing.T) {
	keys := SettingKeys()
	assert.Contains(t, keys, "hand.deadzone")
	assert.Contains(t, keys, "gaze.clamp")
	assert.True(t, IsSettingKey("hand.release_after_lost_ms"))
	assert.False(t, IsSettingKey("store.path"))

	for i := 1; i < len(keys); i++ {
		assert.Less(t, keys[i-1], keys[i])
	}
}

func TestApplySettings(t *testing.T) {
	cfg := Default()
	err := cfg.ApplySettings(map[string]string{
		"hand.deadzone":           "0.03",
		"hand.sticky":             "false",
		"gaze.smoothing":          "true",
		"camera.fps":              "60",
		"hand.sticky_interval_ms": "200",
		"detector.backend":        "pigo",
	})
	require.NoError(t, err)

	assert.Equal(t, 0.03, cfg.Hand.Deadzone)
	assert.False(t, cfg.Hand.Sticky)
	assert.True(t, cfg.Gaze.Smoothing)
	assert.Equal(t, 60, cfg.Camera.FPS)
	assert.Equal(t, 200*time.Millisecond, cfg.HandSettings().StickyInterval)
	assert.Equal(t, BackendPigo, cfg.Detector.Backend)
}

func TestApplySettings_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]string
		want   string
	}{
		{"unknown key", map[string]string{"hand.colour": "blue"}, "unknown setting"},
		{"not a number", map[string]string{"hand.deadzone": "wide"}, "not a number"},
		{"not a bool", map[string]string{"gaze.clamp": "maybe"}, "not a boolean"},
		{"fails validation", map[string]string{"hand.sensitivity": "2"}, "hand.sensitivity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			before := *cfg

			err := cfg.ApplySettings(tt.values)
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.want), err.Error())
			assert.Equal(t, before, *cfg, "config is unchanged on error")
		})
	}
}

func TestValidateSettings(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ValidateSettings(map[string]string{"hand.deadzone": "0.1"}))
	assert.Equal(t, pointer.DefaultDeadzone, cfg.Hand.Deadzone)

	assert.Error(t, cfg.ValidateSettings(map[string]string{"camera.fps": "-3"}))
}
