package snapshot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"colortrack/tracking"
)

func frame() gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(43, 53, 200, 0), 32, 48, gocv.MatTypeCV8UC3)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "rgb_tracking.jpg", FileName(tracking.TrackerColorDiff))
	assert.Equal(t, "hsv_tracking.jpg", FileName(tracking.TrackerHSVRange))
	assert.Equal(t, "hist_tracking.jpg", FileName(tracking.TrackerBackProjection))
}

func TestHourDir(t *testing.T) {
	cases := []struct {
		hour int
		want string
	}{
		{0, "2025-03-07_12AM"},
		{3, "2025-03-07_03AM"},
		{12, "2025-03-07_12PM"},
		{15, "2025-03-07_03PM"},
		{23, "2025-03-07_11PM"},
	}
	for _, tc := range cases {
		ts := time.Date(2025, 3, 7, tc.hour, 30, 0, 0, time.Local)
		assert.Equal(t, tc.want, hourDir(ts))
	}
}

func TestSaveAllFixedNames(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "snaps")
	s, err := NewSaver(dir, false, "session")
	require.NoError(t, err)

	a, b := frame(), frame()
	defer a.Close()
	defer b.Close()
	empty := gocv.NewMat()
	defer empty.Close()

	paths, err := s.SaveAll(map[tracking.TrackerKind]gocv.Mat{
		tracking.TrackerColorDiff:      a,
		tracking.TrackerHSVRange:       empty,
		tracking.TrackerBackProjection: b,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "rgb_tracking.jpg"),
		filepath.Join(dir, "hist_tracking.jpg"),
	}, paths)

	for _, p := range paths {
		img := gocv.IMRead(p, gocv.IMReadColor)
		assert.False(t, img.Empty(), p)
		assert.Equal(t, 32, img.Rows())
		assert.Equal(t, 48, img.Cols())
		img.Close()
	}
	_, err = os.Stat(filepath.Join(dir, "hsv_tracking.jpg"))
	assert.True(t, os.IsNotExist(err))

	// A second save overwrites the same files
	again, err := s.SaveAll(map[tracking.TrackerKind]gocv.Mat{tracking.TrackerColorDiff: a})
	require.NoError(t, err)
	assert.Equal(t, paths[:1], again)
}

func TestSaveTimestamped(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSaver(dir, true, "abc123")
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2025, 3, 7, 15, 4, 5, 0, time.Local) }

	f := frame()
	defer f.Close()

	p, err := s.Save(tracking.TrackerHSVRange, f)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2025-03-07_03PM", "20250307_150405.000_abc123_hsv_tracking.jpg"), p)

	info, err := os.Stat(p)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestSaveErrors(t *testing.T) {
	s, err := NewSaver(t.TempDir(), false, "")
	require.NoError(t, err)

	empty := gocv.NewMat()
	defer empty.Close()
	_, err = s.Save(tracking.TrackerColorDiff, empty)
	assert.Error(t, err)

	f := frame()
	defer f.Close()
	_, err = s.Save(tracking.TrackerKind(99), f)
	assert.Error(t, err)

	_, err = NewSaver("", false, "")
	assert.Error(t, err)
}
