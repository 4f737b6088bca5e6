package tracking

import (
	"image"
	"testing"

	"gocv.io/x/gocv"
)

// Colors with known 8-bit OpenCV HSV values (H, S, V)
var (
	background = gocv.NewScalar(128, 128, 128, 0) // (0, 0, 128)
	targetBGR  = gocv.NewScalar(43, 53, 200, 0)   // (2, 200, 200)
	wrappedBGR = gocv.NewScalar(64, 43, 200, 0)   // (176, 200, 200)
	yellowBGR  = gocv.NewScalar(43, 200, 200, 0)  // (30, 200, 200)
)

func newFrame(t *testing.T, w, h int, fill gocv.Scalar) gocv.Mat {
	t.Helper()
	m := gocv.NewMatWithSizeFromScalar(fill, h, w, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { m.Close() })
	return m
}

func newMask(t *testing.T, w, h int) gocv.Mat {
	t.Helper()
	m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), h, w, gocv.MatTypeCV8UC1)
	t.Cleanup(func() { m.Close() })
	return m
}

func fillRect(m gocv.Mat, r image.Rectangle, s gocv.Scalar) {
	region := m.Region(r)
	region.SetTo(s)
	region.Close()
}

func countIn(m gocv.Mat, r image.Rectangle) int {
	region := m.Region(r)
	defer region.Close()
	return gocv.CountNonZero(region)
}

// profileFor builds a profile from a uniform block of c
func profileFor(t *testing.T, c gocv.Scalar) *TargetProfile {
	t.Helper()
	frame := newFrame(t, 64, 48, background)
	roi := image.Rect(10, 10, 30, 30)
	fillRect(frame, roi, c)
	p, err := NewTargetProfile(frame, roi)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func closeResult(t *testing.T, r *TrackResult) {
	t.Helper()
	t.Cleanup(func() { r.Close() })
}
