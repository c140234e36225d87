// Package config loads the mudra TOML configuration and overlays persisted
// tuning settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/pointer"
)

// Detector backends.
const (
	BackendMediaPipe = "mediapipe"
	BackendPigo      = "pigo"
)

// Config holds the complete configuration of one run.
type Config struct {
	Camera   CameraConfig   `toml:"camera" json:"camera"`
	Detector DetectorConfig `toml:"detector" json:"detector"`
	Hand     HandConfig     `toml:"hand" json:"hand"`
	Gaze     GazeConfig     `toml:"gaze" json:"gaze"`
	Motion   MotionConfig   `toml:"motion" json:"motion"`
	Server   ServerConfig   `toml:"server" json:"server"`
	Store    StoreConfig    `toml:"store" json:"store"`
	Logging  LoggingConfig  `toml:"logging" json:"logging"`
	UI       UIConfig       `toml:"ui" json:"ui"`
}

// CameraConfig selects the capture device.
type CameraConfig struct {
	Device int  `toml:"device" json:"device"`
	Width  int  `toml:"width" json:"width"`
	Height int  `toml:"height" json:"height"`
	FPS    int  `toml:"fps" json:"fps"`
	Mirror bool `toml:"mirror" json:"mirror"`
}

// DetectorConfig selects and tunes the landmark backend.
type DetectorConfig struct {
	// Backend is "mediapipe" or "pigo". Pigo only serves gaze tracking.
	Backend                string  `toml:"backend" json:"backend"`
	ScriptPath             string  `toml:"script_path" json:"script_path"`
	PythonPath             string  `toml:"python_path" json:"python_path"`
	MinDetectionConfidence float64 `toml:"min_detection_confidence" json:"min_detection_confidence"`
	MinTrackingConfidence  float64 `toml:"min_tracking_confidence" json:"min_tracking_confidence"`

	CascadeDir  string  `toml:"cascade_dir" json:"cascade_dir"`
	MinFaceSize int     `toml:"min_face_size" json:"min_face_size"`
	MinQuality  float64 `toml:"min_quality" json:"min_quality"`
}

// HandConfig tunes the hand pointer. Durations are in milliseconds.
type HandConfig struct {
	Deadzone           float64 `toml:"deadzone" json:"deadzone"`
	Sensitivity        float64 `toml:"sensitivity" json:"sensitivity"`
	VectorMultiplier   float64 `toml:"vector_multiplier" json:"vector_multiplier"`
	FingersTogether    float64 `toml:"fingers_together" json:"fingers_together"`
	ClickThreshold     float64 `toml:"click_threshold" json:"click_threshold"`
	HotZoneLow         float64 `toml:"hot_zone_low" json:"hot_zone_low"`
	HotZoneHigh        float64 `toml:"hot_zone_high" json:"hot_zone_high"`
	Sticky             bool    `toml:"sticky" json:"sticky"`
	StickyIntervalMS   int     `toml:"sticky_interval_ms" json:"sticky_interval_ms"`
	StickyMoveMS       int     `toml:"sticky_move_ms" json:"sticky_move_ms"`
	NormalMoveMS       int     `toml:"normal_move_ms" json:"normal_move_ms"`
	ReleaseAfterLostMS int     `toml:"release_after_lost_ms" json:"release_after_lost_ms"`
	InitialX           float64 `toml:"initial_x" json:"initial_x"`
	InitialY           float64 `toml:"initial_y" json:"initial_y"`
}

// GazeConfig tunes the gaze pointer.
type GazeConfig struct {
	Amplification float64 `toml:"amplification" json:"amplification"`
	MoveMS        int     `toml:"move_ms" json:"move_ms"`
	Clamp         bool    `toml:"clamp" json:"clamp"`
	Smoothing     bool    `toml:"smoothing" json:"smoothing"`
	Deadzone      float64 `toml:"deadzone" json:"deadzone"`
	Sensitivity   float64 `toml:"sensitivity" json:"sensitivity"`
}

// MotionConfig controls the optional motion gate.
type MotionConfig struct {
	Enabled   bool    `toml:"enabled" json:"enabled"`
	Threshold float64 `toml:"threshold" json:"threshold"`
	MaxSkip   int     `toml:"max_skip" json:"max_skip"`
}

// ServerConfig controls the local status server.
type ServerConfig struct {
	Enabled bool   `toml:"enabled" json:"enabled"`
	Addr    string `toml:"addr" json:"addr"`
}

// StoreConfig locates the SQLite database. An empty path disables it.
type StoreConfig struct {
	Path string `toml:"path" json:"path"`
}

// LoggingConfig sets the log level and outputs. File, when set, receives
// an uncoloured copy of the console log.
type LoggingConfig struct {
	Level   string `toml:"level" json:"level"`
	NoColor bool   `toml:"no_color" json:"no_color"`
	File    string `toml:"file" json:"file"`
}

// UIConfig controls the preview window and tray.
type UIConfig struct {
	Preview bool `toml:"preview" json:"preview"`
	Tray    bool `toml:"tray" json:"tray"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	hand := pointer.DefaultHandConfig()
	gaze := pointer.DefaultGazeConfig()
	pigo := detector.DefaultPigoConfig()
	det := detector.DefaultConfig(detector.ModeHand)

	return &Config{
		Camera: CameraConfig{
			Device: 0,
			Width:  capture.DefaultWidth,
			Height: capture.DefaultHeight,
			FPS:    capture.DefaultFPS,
			Mirror: true,
		},
		Detector: DetectorConfig{
			Backend:                BackendMediaPipe,
			MinDetectionConfidence: det.MinConfidence,
			MinTrackingConfidence:  det.MinTrackingConf,
			CascadeDir:             filepath.Join(DataDir(), pigo.CascadeDir),
			MinFaceSize:            pigo.MinFaceSize,
			MinQuality:             float64(pigo.MinQuality),
		},
		Hand: HandConfig{
			Deadzone:           hand.Deadzone,
			Sensitivity:        hand.Sensitivity,
			VectorMultiplier:   hand.VectorMultiplier,
			FingersTogether:    hand.FingersTogether,
			ClickThreshold:     hand.ClickThreshold,
			HotZoneLow:         hand.HotZoneLow,
			HotZoneHigh:        hand.HotZoneHigh,
			Sticky:             true,
			StickyIntervalMS:   int(hand.StickyInterval / time.Millisecond),
			StickyMoveMS:       int(hand.StickyMove / time.Millisecond),
			NormalMoveMS:       int(hand.NormalMove / time.Millisecond),
			ReleaseAfterLostMS: int(hand.ReleaseAfterLost / time.Millisecond),
		},
		Gaze: GazeConfig{
			Amplification: gaze.Amplification,
			MoveMS:        int(gaze.MoveDuration / time.Millisecond),
			Deadzone:      gaze.Deadzone,
			Sensitivity:   gaze.Sensitivity,
		},
		Motion: MotionConfig{
			Enabled:   false,
			Threshold: 1.0,
			MaxSkip:   15,
		},
		Server: ServerConfig{
			Enabled: false,
			Addr:    "127.0.0.1:8740",
		},
		Store: StoreConfig{
			Path: filepath.Join(DataDir(), "mudra.db"),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		UI: UIConfig{
			Preview: true,
		},
	}
}

// DataDir returns the per-user mudra directory.
func DataDir() string {
	if dir := os.Getenv("MUDRA_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mudra"
	}
	return filepath.Join(home, ".mudra")
}

// Path returns the default configuration file path.
func Path() string {
	return filepath.Join(DataDir(), "config.toml")
}

// Load reads the configuration at path over the defaults.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = Path()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("decode TOML: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("decode TOML: unknown key %q", undecoded[0].String())
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return cfg, nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// CameraSettings converts the camera section.
func (c *Config) CameraSettings() capture.CameraConfig {
	return capture.CameraConfig{
		Device: c.Camera.Device,
		Width:  c.Camera.Width,
		Height: c.Camera.Height,
		FPS:    c.Camera.FPS,
	}
}

// DetectorSettings converts the detector section for a MediaPipe backend.
func (c *Config) DetectorSettings(mode detector.Mode) detector.Config {
	config := detector.DefaultConfig(mode)
	config.MinConfidence = c.Detector.MinDetectionConfidence
	config.MinTrackingConf = c.Detector.MinTrackingConfidence
	config.ScriptPath = c.Detector.ScriptPath
	config.PythonPath = c.Detector.PythonPath
	return config
}

// PigoSettings converts the detector section for the pigo backend.
func (c *Config) PigoSettings() detector.PigoConfig {
	config := detector.DefaultPigoConfig()
	config.CascadeDir = c.Detector.CascadeDir
	config.MinFaceSize = c.Detector.MinFaceSize
	config.MinQuality = float32(c.Detector.MinQuality)
	return config
}

// HandSettings converts the hand section.
func (c *Config) HandSettings() pointer.HandConfig {
	h := c.Hand
	config := pointer.HandConfig{
		Deadzone:         h.Deadzone,
		Sensitivity:      h.Sensitivity,
		VectorMultiplier: h.VectorMultiplier,
		FingersTogether:  h.FingersTogether,
		ClickThreshold:   h.ClickThreshold,
		HotZoneLow:       h.HotZoneLow,
		HotZoneHigh:      h.HotZoneHigh,
		StickyInterval:   ms(h.StickyIntervalMS),
		StickyMove:       ms(h.StickyMoveMS),
		NormalMove:       ms(h.NormalMoveMS),
		ReleaseAfterLost: ms(h.ReleaseAfterLostMS),
		Initial:          pointer.Vec2{X: h.InitialX, Y: h.InitialY},
	}
	return config
}

// GazeSettings converts the gaze section.
func (c *Config) GazeSettings() pointer.GazeConfig {
	g := c.Gaze
	return pointer.GazeConfig{
		Amplification: g.Amplification,
		MoveDuration:  ms(g.MoveMS),
		Clamp:         g.Clamp,
		Smoothing:     g.Smoothing,
		Deadzone:      g.Deadzone,
		Sensitivity:   g.Sensitivity,
	}
}

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}
