package config

import (
	"fmt"
	"sort"
	"strconv"
)

// setting parses one persisted value into a Config field.
type setting func(c *Config, value string) error

func floatSetting(field func(c *Config) *float64) setting {
	return func(c *Config, value string) error {
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("not a number: %q", value)
		}
		*field(c) = v
		return nil
	}
}

func intSetting(field func(c *Config) *int) setting {
	return func(c *Config, value string) error {
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("not an integer: %q", value)
		}
		*field(c) = v
		return nil
	}
}

func boolSetting(field func(c *Config) *bool) setting {
	return func(c *Config, value string) error {
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("not a boolean: %q", value)
		}
		*field(c) = v
		return nil
	}
}

func stringSetting(field func(c *Config) *string) setting {
	return func(c *Config, value string) error {
		*field(c) = value
		return nil
	}
}

// settings lists the tuning keys that may be persisted in the store and
// changed through the status server.
var settings = map[string]setting{
	"camera.device": intSetting(func(c *Config) *int { return &c.Camera.Device }),
	"camera.fps":    intSetting(func(c *Config) *int { return &c.Camera.FPS }),
	"camera.mirror": boolSetting(func(c *Config) *bool { return &c.Camera.Mirror }),

	"detector.backend": stringSetting(func(c *Config) *string { return &c.Detector.Backend }),

	"hand.deadzone":              floatSetting(func(c *Config) *float64 { return &c.Hand.Deadzone }),
	"hand.sensitivity":           floatSetting(func(c *Config) *float64 { return &c.Hand.Sensitivity }),
	"hand.vector_multiplier":     floatSetting(func(c *Config) *float64 { return &c.Hand.VectorMultiplier }),
	"hand.fingers_together":      floatSetting(func(c *Config) *float64 { return &c.Hand.FingersTogether }),
	"hand.click_threshold":       floatSetting(func(c *Config) *float64 { return &c.Hand.ClickThreshold }),
	"hand.sticky":                boolSetting(func(c *Config) *bool { return &c.Hand.Sticky }),
	"hand.sticky_interval_ms":    intSetting(func(c *Config) *int { return &c.Hand.StickyIntervalMS }),
	"hand.release_after_lost_ms": intSetting(func(c *Config) *int { return &c.Hand.ReleaseAfterLostMS }),

	"gaze.amplification": floatSetting(func(c *Config) *float64 { return &c.Gaze.Amplification }),
	"gaze.clamp":         boolSetting(func(c *Config) *bool { return &c.Gaze.Clamp }),
	"gaze.smoothing":     boolSetting(func(c *Config) *bool { return &c.Gaze.Smoothing }),

	"motion.enabled":   boolSetting(func(c *Config) *bool { return &c.Motion.Enabled }),
	"motion.threshold": floatSetting(func(c *Config) *float64 { return &c.Motion.Threshold }),
}

// SettingKeys returns the persisted tuning keys in sorted order.
func SettingKeys() []string {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsSettingKey reports whether key may be persisted.
func IsSettingKey(key string) bool {
	_, ok := settings[key]
	return ok
}

// ApplySettings overlays persisted values. Unknown keys, unparsable values
// and values that fail validation are all reported; c is only modified
// when every value is accepted.
func (c *Config) ApplySettings(values map[string]string) error {
	next := c.Clone()
	var errs ValidationErrors
	for _, key := range sortedKeys(values) {
		set, ok := settings[key]
		if !ok {
			errs = append(errs, ValidationError{Field: key, Message: "unknown setting"})
			continue
		}
		if err := set(next, values[key]); err != nil {
			errs = append(errs, ValidationError{Field: key, Message: err.Error()})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = *next
	return nil
}

// ValidateSettings checks values against c without modifying it.
func (c *Config) ValidateSettings(values map[string]string) error {
	return c.Clone().ApplySettings(values)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
