package tracking

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// discSize is the diameter of the elliptical kernel used to smooth the likelihood image
const discSize = 5

// BackProjectionTracker marks pixels whose hue/saturation is likely under the
// target's histogram, after summing likelihood over a small disc.
type BackProjectionTracker struct{}

// NewBackProjectionTracker creates a BackProjectionTracker. It has no tunables.
func NewBackProjectionTracker() *BackProjectionTracker {
	return &BackProjectionTracker{}
}

func (t *BackProjectionTracker) Kind() TrackerKind { return TrackerBackProjection }

func (t *BackProjectionTracker) sealed() {}

func (t *BackProjectionTracker) Track(frame gocv.Mat, profile *TargetProfile) (*TrackResult, error) {
	if profile == nil {
		return notReadyResult(TrackerBackProjection), nil
	}
	if err := validateFrame(frame); err != nil {
		return nil, err
	}

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(frame, &hsv, gocv.ColorBGRToHSV)

	likelihood := gocv.NewMat()
	defer likelihood.Close()
	gocv.CalcBackProject([]gocv.Mat{hsv}, histChannels, profile.hist, &likelihood, histRanges, true)

	// Unnormalized sum over the disc: isolated hits fade, clusters add up
	disc := gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(discSize, discSize))
	defer disc.Close()
	smoothed := gocv.NewMat()
	defer smoothed.Close()
	gocv.Filter2D(likelihood, &smoothed, -1, disc, image.Pt(-1, -1), 0, gocv.BorderDefault)

	raw := gocv.NewMat()
	gocv.Threshold(smoothed, &raw, BackProjectionThreshold, 255, gocv.ThresholdBinary)

	res := postProcess(TrackerBackProjection, raw, frame)
	debugMsgVerbose("BACKPROJECTION", fmt.Sprintf("result=%s area=%.0f", res.Kind, res.Blob.Area))
	return res, nil
}
