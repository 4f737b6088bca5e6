package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colortrack/tracking"
)

func TestDefaultTuningConfig(t *testing.T) {
	cfg := DefaultTuningConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 30, cfg.GetDiffThreshold())
	assert.Equal(t, 10, cfg.GetHueRange())
	assert.Equal(t, 50, cfg.GetSaturationRange())
	assert.Equal(t, 50, cfg.GetValueRange())
	assert.False(t, cfg.GetParallel())
	assert.True(t, cfg.GetStartAtMiddle())
	assert.Equal(t, ".", cfg.GetSnapshotDir())
	assert.Equal(t, tracking.DefaultParams(), cfg.TrackerParams())
}

func TestEmptyConfigFallsBackToDefaults(t *testing.T) {
	cfg := &TuningConfig{}
	assert.Equal(t, tracking.DefaultParams(), cfg.TrackerParams())
	assert.True(t, cfg.GetStartAtMiddle())
	assert.Equal(t, ".", cfg.GetSnapshotDir())
}

func TestLoadTuningConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "diff_threshold": 45,
  "h_range": 15,
  "parallel": true,
  "start_at_middle": false
}`), 0o644))

	cfg, err := LoadTuningConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 45, cfg.GetDiffThreshold())
	assert.Equal(t, 15, cfg.GetHueRange())
	// Omitted fields keep their defaults
	assert.Equal(t, 50, cfg.GetSaturationRange())
	assert.Equal(t, 50, cfg.GetValueRange())
	assert.True(t, cfg.GetParallel())
	assert.False(t, cfg.GetStartAtMiddle())
	assert.Equal(t, tracking.Params{DiffThreshold: 45, HueRange: 15, SaturationRange: 50, ValueRange: 50}, cfg.TrackerParams())
}

func TestLoadTuningConfigErrors(t *testing.T) {
	dir := t.TempDir()

	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
		return p
	}

	cases := []struct {
		name string
		path string
		want string
	}{
		{"wrong extension", write("tuning.yaml", "{}"), ".json extension"},
		{"missing", filepath.Join(dir, "missing.json"), "stat"},
		{"bad json", write("bad.json", "{"), "parse"},
		{"hue out of range", write("hue.json", `{"h_range": 91}`), "h_range"},
		{"negative diff", write("diff.json", `{"diff_threshold": -1}`), "diff_threshold"},
		{"saturation too high", write("sat.json", `{"s_range": 256}`), "s_range"},
		{"empty snapshot dir", write("snap.json", `{"snapshot_dir": ""}`), "snapshot_dir"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := LoadTuningConfig(tc.path)
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.True(t, strings.Contains(err.Error(), tc.want), "error %q should mention %q", err, tc.want)
		})
	}
}

func TestLoadTuningConfigTooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.json")
	require.NoError(t, os.WriteFile(path, make([]byte, maxConfigSize+1), 0o644))

	_, err := LoadTuningConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}
