package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"colortrack/tracking"
)

// TuningConfig holds the tracker parameter set. Every field is optional; the
// Get* accessors fall back to the reference defaults for missing values.
type TuningConfig struct {
	// ColorDiff sensitivity (gray-level difference, 0-255)
	DiffThreshold *int `json:"diff_threshold,omitempty"`

	// HSVRange tolerance band half-widths
	HueRange        *int `json:"h_range,omitempty"`
	SaturationRange *int `json:"s_range,omitempty"`
	ValueRange      *int `json:"v_range,omitempty"`

	// Run the three trackers of a frame concurrently
	Parallel *bool `json:"parallel,omitempty"`

	// Seek to the middle of a video file before selecting the target
	StartAtMiddle *bool `json:"start_at_middle,omitempty"`

	// Directory for snapshot JPEGs
	SnapshotDir *string `json:"snapshot_dir,omitempty"`
}

const maxConfigSize = 1 * 1024 * 1024

func ptrInt(v int) *int          { return &v }
func ptrBool(v bool) *bool       { return &v }
func ptrString(v string) *string { return &v }

// DefaultTuningConfig returns a config with every field populated with its default
func DefaultTuningConfig() *TuningConfig {
	return &TuningConfig{
		DiffThreshold:   ptrInt(tracking.DefaultDiffThreshold),
		HueRange:        ptrInt(tracking.DefaultHueRange),
		SaturationRange: ptrInt(tracking.DefaultSaturationRange),
		ValueRange:      ptrInt(tracking.DefaultValueRange),
		Parallel:        ptrBool(false),
		StartAtMiddle:   ptrBool(true),
		SnapshotDir:     ptrString("."),
	}
}

// LoadTuningConfig reads a JSON tuning file. Fields omitted from the file keep
// their defaults, so partial configs are fine.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, errors.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to stat config file")
	}
	if info.Size() > maxConfigSize {
		return nil, errors.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	cfg := &TuningConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config JSON")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

// Validate checks that every set field is within range
func (c *TuningConfig) Validate() error {
	if err := checkRange("diff_threshold", c.DiffThreshold, 0, 255); err != nil {
		return err
	}
	if err := checkRange("h_range", c.HueRange, 0, 90); err != nil {
		return err
	}
	if err := checkRange("s_range", c.SaturationRange, 0, 255); err != nil {
		return err
	}
	if err := checkRange("v_range", c.ValueRange, 0, 255); err != nil {
		return err
	}
	if c.SnapshotDir != nil && *c.SnapshotDir == "" {
		return errors.New("snapshot_dir must not be empty")
	}
	return nil
}

func checkRange(name string, v *int, lo, hi int) error {
	if v == nil {
		return nil
	}
	if *v < lo || *v > hi {
		return errors.Errorf("%s must be within [%d, %d], got %d", name, lo, hi, *v)
	}
	return nil
}

func (c *TuningConfig) GetDiffThreshold() int {
	if c.DiffThreshold == nil {
		return tracking.DefaultDiffThreshold
	}
	return *c.DiffThreshold
}

func (c *TuningConfig) GetHueRange() int {
	if c.HueRange == nil {
		return tracking.DefaultHueRange
	}
	return *c.HueRange
}

func (c *TuningConfig) GetSaturationRange() int {
	if c.SaturationRange == nil {
		return tracking.DefaultSaturationRange
	}
	return *c.SaturationRange
}

func (c *TuningConfig) GetValueRange() int {
	if c.ValueRange == nil {
		return tracking.DefaultValueRange
	}
	return *c.ValueRange
}

func (c *TuningConfig) GetParallel() bool {
	if c.Parallel == nil {
		return false
	}
	return *c.Parallel
}

func (c *TuningConfig) GetStartAtMiddle() bool {
	if c.StartAtMiddle == nil {
		return true
	}
	return *c.StartAtMiddle
}

func (c *TuningConfig) GetSnapshotDir() string {
	if c.SnapshotDir == nil {
		return "."
	}
	return *c.SnapshotDir
}

// TrackerParams converts the config into tracker parameters
func (c *TuningConfig) TrackerParams() tracking.Params {
	return tracking.Params{
		DiffThreshold:   c.GetDiffThreshold(),
		HueRange:        c.GetHueRange(),
		SaturationRange: c.GetSaturationRange(),
		ValueRange:      c.GetValueRange(),
	}
}
