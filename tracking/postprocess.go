package tracking

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Morphology kernel size used by the mask cleanup stage
const morphKernelSize = 5

var maskWhite = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// CleanedMask is the output of CleanMask. Frame is the source frame with every
// pixel outside Mask set to zero. Found is false when no contour survived, in
// which case Mask is the (blank) cleaned mask and Blob is zero.
type CleanedMask struct {
	Mask  gocv.Mat
	Frame gocv.Mat
	Blob  Blob
	Found bool
}

// Close releases both Mats
func (c *CleanedMask) Close() error {
	c.Mask.Close()
	return c.Frame.Close()
}

// CleanMask closes then opens raw with a 5x5 square, keeps only the external
// contour with the largest area (first one wins on ties) filled solid, and
// composites source through it. raw is not modified.
func CleanMask(raw, source gocv.Mat) CleanedMask {
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(morphKernelSize, morphKernelSize))
	defer kernel.Close()

	closed := gocv.NewMat()
	defer closed.Close()
	gocv.MorphologyEx(raw, &closed, gocv.MorphClose, kernel)

	cleaned := gocv.NewMat()
	gocv.MorphologyEx(closed, &cleaned, gocv.MorphOpen, kernel)

	contours := gocv.FindContours(cleaned, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	if contours.Size() == 0 {
		return CleanedMask{Mask: cleaned, Frame: composite(source, cleaned)}
	}

	bestIdx := 0
	bestArea := gocv.ContourArea(contours.At(0))
	for i := 1; i < contours.Size(); i++ {
		if area := gocv.ContourArea(contours.At(i)); area > bestArea {
			bestArea = area
			bestIdx = i
		}
	}
	cleaned.Close()

	mask := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), raw.Rows(), raw.Cols(), gocv.MatTypeCV8UC1)
	gocv.DrawContours(&mask, contours, bestIdx, maskWhite, -1)

	return CleanedMask{
		Mask:  mask,
		Frame: composite(source, mask),
		Blob:  describeBlob(mask, contours.At(bestIdx), bestArea),
		Found: true,
	}
}

// composite returns a copy of source with pixels outside mask zeroed
func composite(source, mask gocv.Mat) gocv.Mat {
	out := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), source.Rows(), source.Cols(), source.Type())
	source.CopyToWithMask(&out, mask)
	return out
}

func describeBlob(mask gocv.Mat, contour gocv.PointVector, area float64) Blob {
	b := Blob{
		Area:   area,
		Pixels: gocv.CountNonZero(mask),
		Bounds: gocv.BoundingRect(contour),
	}
	m := gocv.Moments(mask, true)
	if m["m00"] > 0 {
		b.Centroid = image.Pt(int(m["m10"]/m["m00"]+0.5), int(m["m01"]/m["m00"]+0.5))
	} else {
		b.Centroid = image.Pt(b.Bounds.Min.X+b.Bounds.Dx()/2, b.Bounds.Min.Y+b.Bounds.Dy()/2)
	}
	return b
}

// postProcess runs CleanMask on raw, closes raw and wraps the outcome as a TrackResult
func postProcess(kind TrackerKind, raw, source gocv.Mat) *TrackResult {
	defer raw.Close()
	c := CleanMask(raw, source)
	if !c.Found {
		c.Frame.Close()
		return &TrackResult{Tracker: kind, Kind: ResultEmpty, Mask: c.Mask}
	}
	return &TrackResult{
		Tracker: kind,
		Kind:    ResultDetected,
		Mask:    c.Mask,
		Frame:   c.Frame,
		Blob:    c.Blob,
	}
}
