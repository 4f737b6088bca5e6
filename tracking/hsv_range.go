package tracking

import (
	"fmt"
	"math"

	"gocv.io/x/gocv"
)

// hueMax is the size of OpenCV's 8-bit hue circle
const hueMax = 180

// HSVRangeTracker marks pixels inside a tolerance band around the target's mean HSV color.
// Hue is treated as circular over [0,180).
type HSVRangeTracker struct {
	hRange int
	sRange int
	vRange int
}

// NewHSVRangeTrackerDefault creates an HSVRangeTracker with the 10/50/50 band
func NewHSVRangeTrackerDefault() *HSVRangeTracker {
	return NewHSVRangeTracker(DefaultHueRange, DefaultSaturationRange, DefaultValueRange)
}

// NewHSVRangeTracker creates an HSVRangeTracker with the given half-widths
func NewHSVRangeTracker(hRange, sRange, vRange int) *HSVRangeTracker {
	return &HSVRangeTracker{hRange: hRange, sRange: sRange, vRange: vRange}
}

func (t *HSVRangeTracker) Kind() TrackerKind { return TrackerHSVRange }

func (t *HSVRangeTracker) sealed() {}

// hueBand is an inclusive hue interval
type hueBand struct {
	lo, hi float64
}

// hueBands splits [mean-hRange, mean+hRange] into at most two intervals on the
// hue circle. The first band is the clamped primary range, the second (if any)
// is the part that wrapped around. Above 180 the wrapped part is [0, upper-180),
// so its inclusive bound is the largest integer hue below upper-180.
func hueBands(mean, hRange float64) []hueBand {
	lower := mean - hRange
	upper := mean + hRange
	switch {
	case lower < 0:
		return []hueBand{{0, upper}, {hueMax + lower, hueMax}}
	case upper > hueMax:
		return []hueBand{{lower, hueMax}, {0, math.Ceil(upper-hueMax) - 1}}
	default:
		return []hueBand{{lower, upper}}
	}
}

func (t *HSVRangeTracker) Track(frame gocv.Mat, profile *TargetProfile) (*TrackResult, error) {
	if profile == nil {
		return notReadyResult(TrackerHSVRange), nil
	}
	if err := validateFrame(frame); err != nil {
		return nil, err
	}

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(frame, &hsv, gocv.ColorBGRToHSV)

	mean := profile.MeanColorHSV()
	sLo := math.Max(0, mean[1]-float64(t.sRange))
	sHi := math.Min(255, mean[1]+float64(t.sRange))
	vLo := math.Max(0, mean[2]-float64(t.vRange))
	vHi := math.Min(255, mean[2]+float64(t.vRange))

	bands := hueBands(mean[0], float64(t.hRange))

	raw := gocv.NewMat()
	gocv.InRangeWithScalar(hsv,
		gocv.NewScalar(bands[0].lo, sLo, vLo, 0),
		gocv.NewScalar(bands[0].hi, sHi, vHi, 0),
		&raw)

	if len(bands) > 1 {
		wrapped := gocv.NewMat()
		gocv.InRangeWithScalar(hsv,
			gocv.NewScalar(bands[1].lo, sLo, vLo, 0),
			gocv.NewScalar(bands[1].hi, sHi, vHi, 0),
			&wrapped)
		gocv.BitwiseOr(raw, wrapped, &raw)
		wrapped.Close()
	}

	res := postProcess(TrackerHSVRange, raw, frame)
	debugMsgVerbose("HSV_RANGE", fmt.Sprintf("hue bands=%v S=[%.0f,%.0f] V=[%.0f,%.0f] result=%s",
		bands, sLo, sHi, vLo, vHi, res.Kind))
	return res, nil
}
