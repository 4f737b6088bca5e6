package tracking

import (
	"image"

	"github.com/rs/zerolog"
	"gocv.io/x/gocv"
)

// TrackerKind identifies one of the three tracking algorithms
type TrackerKind int

const (
	TrackerColorDiff TrackerKind = iota
	TrackerHSVRange
	TrackerBackProjection
)

// AllTrackerKinds lists the trackers in the order a session runs them
var AllTrackerKinds = []TrackerKind{TrackerColorDiff, TrackerHSVRange, TrackerBackProjection}

func (k TrackerKind) String() string {
	switch k {
	case TrackerColorDiff:
		return "color-diff"
	case TrackerHSVRange:
		return "hsv-range"
	case TrackerBackProjection:
		return "backprojection"
	default:
		return "unknown"
	}
}

// Title is the human readable window/panel title for the tracker
func (k TrackerKind) Title() string {
	switch k {
	case TrackerColorDiff:
		return "RGB Tracking"
	case TrackerHSVRange:
		return "HSV Tracking"
	case TrackerBackProjection:
		return "Histogram Backprojection"
	default:
		return "Unknown"
	}
}

// ResultKind tags the variant held by a TrackResult
type ResultKind int

const (
	// ResultNotReady means no TargetProfile exists yet
	ResultNotReady ResultKind = iota
	// ResultEmpty means processing ran but no foreground contour was found
	ResultEmpty
	// ResultDetected carries the final mask and the composited frame
	ResultDetected
)

func (k ResultKind) String() string {
	switch k {
	case ResultNotReady:
		return "not-ready"
	case ResultEmpty:
		return "empty"
	case ResultDetected:
		return "detected"
	default:
		return "unknown"
	}
}

// Blob describes the single connected region kept by the post-processor
type Blob struct {
	Area     float64         // Contour area as reported by OpenCV
	Pixels   int             // Foreground pixel count of the filled mask
	Bounds   image.Rectangle // Bounding rectangle of the contour
	Centroid image.Point     // Center of mass of the filled mask
}

// TrackResult is the outcome of one tracker on one frame.
//
// Mask is valid for ResultEmpty and ResultDetected. Frame and Blob are only
// valid for ResultDetected. The caller owns the Mats and must call Close.
type TrackResult struct {
	Tracker TrackerKind
	Kind    ResultKind
	Mask    gocv.Mat
	Frame   gocv.Mat
	Blob    Blob
}

func notReadyResult(tracker TrackerKind) *TrackResult {
	return &TrackResult{Tracker: tracker, Kind: ResultNotReady}
}

// Detected reports whether the result carries a blob
func (r *TrackResult) Detected() bool {
	return r != nil && r.Kind == ResultDetected
}

func (b Blob) MarshalZerologObject(e *zerolog.Event) {
	e.Float64("area", b.Area).
		Int("pixels", b.Pixels).
		Int("x", b.Bounds.Min.X).
		Int("y", b.Bounds.Min.Y).
		Int("w", b.Bounds.Dx()).
		Int("h", b.Bounds.Dy()).
		Int("cx", b.Centroid.X).
		Int("cy", b.Centroid.Y)
}

func (r *TrackResult) MarshalZerologObject(e *zerolog.Event) {
	e.Stringer("tracker", r.Tracker).
		Stringer("result", r.Kind)
	if r.Kind == ResultDetected {
		e.Object("blob", r.Blob)
	}
}

// Close releases the Mats held by the result
func (r *TrackResult) Close() error {
	if r == nil {
		return nil
	}
	switch r.Kind {
	case ResultEmpty:
		r.Mask.Close()
	case ResultDetected:
		r.Mask.Close()
		r.Frame.Close()
	}
	r.Kind = ResultNotReady
	return nil
}
