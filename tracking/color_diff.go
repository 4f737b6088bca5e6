package tracking

import (
	"fmt"
	"math"

	"gocv.io/x/gocv"
)

// ColorDiffTracker marks pixels whose color is close to the target's mean BGR color
type ColorDiffTracker struct {
	// Luma difference at or below which a pixel counts as target. Default 30
	threshold int
}

// NewColorDiffTrackerDefault creates a ColorDiffTracker with the default threshold
func NewColorDiffTrackerDefault() *ColorDiffTracker {
	return NewColorDiffTracker(DefaultDiffThreshold)
}

// NewColorDiffTracker creates a ColorDiffTracker with the given threshold
func NewColorDiffTracker(threshold int) *ColorDiffTracker {
	return &ColorDiffTracker{threshold: threshold}
}

func (t *ColorDiffTracker) Kind() TrackerKind { return TrackerColorDiff }

func (t *ColorDiffTracker) sealed() {}

// Threshold returns the configured difference threshold
func (t *ColorDiffTracker) Threshold() int { return t.threshold }

func (t *ColorDiffTracker) Track(frame gocv.Mat, profile *TargetProfile) (*TrackResult, error) {
	if profile == nil {
		return notReadyResult(TrackerColorDiff), nil
	}
	if err := validateFrame(frame); err != nil {
		return nil, err
	}

	// The reference color is stored as 8-bit, so the mean is truncated
	mean := profile.MeanColorBGR()
	target := gocv.NewMatWithSizeFromScalar(
		gocv.NewScalar(math.Floor(mean[0]), math.Floor(mean[1]), math.Floor(mean[2]), 0),
		frame.Rows(), frame.Cols(), gocv.MatTypeCV8UC3)
	defer target.Close()

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(frame, target, &diff)

	grayDiff := gocv.NewMat()
	defer grayDiff.Close()
	gocv.CvtColor(diff, &grayDiff, gocv.ColorBGRToGray)

	// Inverse: a small difference from the reference means target
	raw := gocv.NewMat()
	gocv.Threshold(grayDiff, &raw, float32(t.threshold), 255, gocv.ThresholdBinaryInv)

	res := postProcess(TrackerColorDiff, raw, frame)
	debugMsgVerbose("COLOR_DIFF", fmt.Sprintf("threshold=%d result=%s area=%.0f", t.threshold, res.Kind, res.Blob.Area))
	return res, nil
}
