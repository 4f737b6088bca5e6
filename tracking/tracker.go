package tracking

import (
	"gocv.io/x/gocv"
)

// Default tuning, carried over from the reference behavior
const (
	DefaultDiffThreshold   = 30
	DefaultHueRange        = 10
	DefaultSaturationRange = 50
	DefaultValueRange      = 50

	// BackProjectionThreshold is the fixed binarization level of the smoothed likelihood image
	BackProjectionThreshold = 50
)

// Tracker is implemented by the three tracking algorithms of this package.
//
// Track is a pure function of frame and profile: a nil profile yields a
// ResultNotReady result, a frame that is not 8-bit BGR yields ErrInvalidFrame.
// The set of implementations is closed.
type Tracker interface {
	Kind() TrackerKind
	Track(frame gocv.Mat, profile *TargetProfile) (*TrackResult, error)
	sealed()
}

// Params holds the tunable tracker parameters
type Params struct {
	DiffThreshold   int
	HueRange        int
	SaturationRange int
	ValueRange      int
}

// DefaultParams returns the reference tuning
func DefaultParams() Params {
	return Params{
		DiffThreshold:   DefaultDiffThreshold,
		HueRange:        DefaultHueRange,
		SaturationRange: DefaultSaturationRange,
		ValueRange:      DefaultValueRange,
	}
}

// NewTrackers creates one tracker of each kind, in AllTrackerKinds order
func NewTrackers(p Params) []Tracker {
	return []Tracker{
		NewColorDiffTracker(p.DiffThreshold),
		NewHSVRangeTracker(p.HueRange, p.SaturationRange, p.ValueRange),
		NewBackProjectionTracker(),
	}
}
