package tracking

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Histogram layout shared by the profile and the back-projection tracker
const (
	HueBins        = 180
	SaturationBins = 256
)

var (
	histChannels = []int{0, 1}
	histSize     = []int{HueBins, SaturationBins}
	histRanges   = []float64{0, 180, 0, 256}
)

var (
	// ErrInvalidROI is returned when the selected region is empty or leaves the frame
	ErrInvalidROI = errors.New("invalid region of interest")
	// ErrInvalidFrame is returned for empty frames or frames that are not 8-bit BGR
	ErrInvalidFrame = errors.New("invalid frame")
)

// TargetProfile is the appearance of the selected target, captured once from the ROI.
// It is read-only after construction and may be shared between goroutines.
type TargetProfile struct {
	roi       image.Rectangle
	frameSize image.Point
	meanBGR   [3]float64
	meanHSV   [3]float64
	hist      gocv.Mat // CV_32F, HueBins x SaturationBins, min-max normalized to [0,255]
}

// ROIFromXYWH builds a rectangle from an (x, y, w, h) selection without
// canonicalizing it, so negative sizes stay invalid.
func ROIFromXYWH(x, y, w, h int) image.Rectangle {
	return image.Rectangle{Min: image.Point{X: x, Y: y}, Max: image.Point{X: x + w, Y: y + h}}
}

// ParseROI parses "x,y,w,h" into a rectangle
func ParseROI(s string) (image.Rectangle, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 4 {
		return image.Rectangle{}, errors.Wrapf(ErrInvalidROI, "expected x,y,w,h, got %q", s)
	}
	var vals [4]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, errors.Wrapf(ErrInvalidROI, "bad component %q: %v", p, err)
		}
		vals[i] = v
	}
	return ROIFromXYWH(vals[0], vals[1], vals[2], vals[3]), nil
}

func validateFrame(frame gocv.Mat) error {
	if frame.Empty() {
		return errors.Wrap(ErrInvalidFrame, "frame is empty")
	}
	if frame.Type() != gocv.MatTypeCV8UC3 {
		return errors.Wrapf(ErrInvalidFrame, "expected 8-bit 3-channel BGR, got type %v", frame.Type())
	}
	return nil
}

// NewTargetProfile crops roi out of frame and records its mean BGR color, its mean
// HSV color and its normalized hue/saturation histogram. Nothing is returned unless
// all three were computed.
func NewTargetProfile(frame gocv.Mat, roi image.Rectangle) (*TargetProfile, error) {
	if err := validateFrame(frame); err != nil {
		return nil, err
	}
	if roi.Dx() <= 0 || roi.Dy() <= 0 {
		return nil, errors.Wrapf(ErrInvalidROI, "zero-size selection %dx%d", roi.Dx(), roi.Dy())
	}
	bounds := image.Rect(0, 0, frame.Cols(), frame.Rows())
	if !roi.In(bounds) {
		return nil, errors.Wrapf(ErrInvalidROI, "selection %v outside frame %v", roi, bounds)
	}

	crop := frame.Region(roi)
	defer crop.Close()

	bgrMean := crop.Mean()

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(crop, &hsv, gocv.ColorBGRToHSV)
	hsvMean := hsv.Mean()

	mask := gocv.NewMat()
	defer mask.Close()
	hist := gocv.NewMat()
	gocv.CalcHist([]gocv.Mat{hsv}, histChannels, mask, &hist, histSize, histRanges, false)
	if hist.Empty() {
		hist.Close()
		return nil, errors.New("histogram calculation produced no data")
	}
	gocv.Normalize(hist, &hist, 0, 255, gocv.NormMinMax)

	p := &TargetProfile{
		roi:       roi,
		frameSize: image.Pt(frame.Cols(), frame.Rows()),
		meanBGR:   [3]float64{bgrMean.Val1, bgrMean.Val2, bgrMean.Val3},
		meanHSV:   [3]float64{hsvMean.Val1, hsvMean.Val2, hsvMean.Val3},
		hist:      hist,
	}
	debugMsg("PROFILE", fmt.Sprintf("target captured from %v: BGR=%.1f/%.1f/%.1f HSV=%.1f/%.1f/%.1f",
		roi, p.meanBGR[0], p.meanBGR[1], p.meanBGR[2], p.meanHSV[0], p.meanHSV[1], p.meanHSV[2]))
	return p, nil
}

// ROI returns the region the profile was captured from
func (p *TargetProfile) ROI() image.Rectangle { return p.roi }

// FrameSize returns the width and height of the initialization frame
func (p *TargetProfile) FrameSize() image.Point { return p.frameSize }

// MeanColorBGR returns the mean B, G, R of the ROI
func (p *TargetProfile) MeanColorBGR() [3]float64 { return p.meanBGR }

// MeanColorHSV returns the mean H, S, V of the ROI (H in [0,180))
func (p *TargetProfile) MeanColorHSV() [3]float64 { return p.meanHSV }

// HistogramBin returns the normalized weight of a hue/saturation bin, 0 outside the grid
func (p *TargetProfile) HistogramBin(hue, sat int) float32 {
	if hue < 0 || hue >= HueBins || sat < 0 || sat >= SaturationBins {
		return 0
	}
	return p.hist.GetFloatAt(hue, sat)
}

// Close releases the histogram. The profile must not be used afterwards.
func (p *TargetProfile) Close() error {
	if p == nil {
		return nil
	}
	return p.hist.Close()
}
