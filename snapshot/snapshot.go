package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"colortrack/tracking"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Global debug function for snapshot package
var debugMsgFunc func(component, message string)

// SetDebugFunction allows main package to provide debug function
func SetDebugFunction(fn func(component, message string)) {
	debugMsgFunc = fn
}

func debugMsg(component, message string) {
	if debugMsgFunc != nil {
		debugMsgFunc(component, message)
	}
}

// fileNames are the fixed snapshot names per tracker
var fileNames = map[tracking.TrackerKind]string{
	tracking.TrackerColorDiff:      "rgb_tracking",
	tracking.TrackerHSVRange:       "hsv_tracking",
	tracking.TrackerBackProjection: "hist_tracking",
}

// FileName returns the fixed snapshot file name for a tracker
func FileName(kind tracking.TrackerKind) string {
	return fileNames[kind] + ".jpg"
}

// Saver writes tracker frames as JPEGs
type Saver struct {
	dir         string
	timestamped bool
	sessionID   string
	now         func() time.Time
}

// NewSaver creates dir if needed. With timestamped set, frames go into hourly
// subdirectories and carry a timestamp and sessionID in their names; otherwise
// each save overwrites the fixed file names in dir.
func NewSaver(dir string, timestamped bool, sessionID string) (*Saver, error) {
	if dir == "" {
		return nil, errors.New("snapshot directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "failed to create snapshot directory '%s'", dir)
	}
	return &Saver{
		dir:         dir,
		timestamped: timestamped,
		sessionID:   sessionID,
		now:         time.Now,
	}, nil
}

// Dir returns the base snapshot directory
func (s *Saver) Dir() string {
	return s.dir
}

// hourDir returns the subdirectory name for t in 2025-01-01_03PM format
func hourDir(t time.Time) string {
	hour := t.Hour()
	hour12 := hour % 12
	if hour12 == 0 {
		hour12 = 12
	}
	ampm := "AM"
	if hour >= 12 {
		ampm = "PM"
	}
	return fmt.Sprintf("%s_%02d%s", t.Format("2006-01-02"), hour12, ampm)
}

// path returns where a snapshot of kind taken at t is written
func (s *Saver) path(kind tracking.TrackerKind, t time.Time) string {
	if !s.timestamped {
		return filepath.Join(s.dir, FileName(kind))
	}
	name := fmt.Sprintf("%s_%s_%s.jpg", t.Format("20060102_150405.000"), s.sessionID, fileNames[kind])
	return filepath.Join(s.dir, hourDir(t), name)
}

// Save writes one tracker frame and returns its path
func (s *Saver) Save(kind tracking.TrackerKind, frame gocv.Mat) (string, error) {
	return s.save(kind, frame, s.now())
}

func (s *Saver) save(kind tracking.TrackerKind, frame gocv.Mat, t time.Time) (string, error) {
	if _, ok := fileNames[kind]; !ok {
		return "", errors.Errorf("unknown tracker kind %d", int(kind))
	}
	if frame.Empty() {
		return "", errors.Errorf("no %s frame to save", kind)
	}

	p := s.path(kind, t)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return "", errors.Wrapf(err, "failed to create subdirectory %s", filepath.Dir(p))
	}
	if !gocv.IMWrite(p, frame) {
		return "", errors.Errorf("failed to write %s", p)
	}
	debugMsg("SNAPSHOT", fmt.Sprintf("saved %s", p))
	return p, nil
}

// SaveAll writes every tracker frame in frames with a shared timestamp. Empty
// frames are skipped. It returns the paths written and the first error seen.
func (s *Saver) SaveAll(frames map[tracking.TrackerKind]gocv.Mat) ([]string, error) {
	t := s.now()
	var paths []string
	var firstErr error
	for _, kind := range tracking.AllTrackerKinds {
		frame, ok := frames[kind]
		if !ok || frame.Empty() {
			continue
		}
		p, err := s.save(kind, frame, t)
		if err != nil {
			debugMsg("SNAPSHOT_ERROR", err.Error())
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		paths = append(paths, p)
	}
	return paths, firstErr
}
