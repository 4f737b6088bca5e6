package tracking

import (
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

var white = gocv.NewScalar(255, 0, 0, 0)

func TestCleanMaskKeepsLargestBlob(t *testing.T) {
	raw := newMask(t, 200, 200)
	small := image.Rect(10, 10, 30, 35)     // 500 px
	large := image.Rect(100, 100, 130, 150) // 1500 px
	fillRect(raw, small, white)
	fillRect(raw, large, white)
	before := raw.ToBytes()

	source := newFrame(t, 200, 200, targetBGR)
	c := CleanMask(raw, source)
	defer c.Close()

	require.True(t, c.Found)
	assert.Equal(t, 1500, gocv.CountNonZero(c.Mask))
	assert.Equal(t, 0, countIn(c.Mask, small))
	assert.Equal(t, 1500, countIn(c.Mask, large))
	assert.Equal(t, large, c.Blob.Bounds)
	assert.Equal(t, 1500, c.Blob.Pixels)
	assert.True(t, c.Blob.Centroid.In(large))
	assert.Empty(t, cmp.Diff(before, raw.ToBytes()), "raw mask must not be modified")

	// Composited frame keeps the blob and zeroes the rest
	inside := c.Frame.Region(large)
	defer inside.Close()
	mean := inside.Mean()
	assert.InDelta(t, 43, mean.Val1, 1e-9)
	assert.InDelta(t, 200, mean.Val3, 1e-9)
	outside := c.Frame.Region(small)
	defer outside.Close()
	assert.Equal(t, gocv.NewScalar(0, 0, 0, 0), outside.Mean())
}

func TestCleanMaskTieKeepsFirstContour(t *testing.T) {
	raw := newMask(t, 120, 60)
	fillRect(raw, image.Rect(10, 10, 30, 30), white)
	fillRect(raw, image.Rect(70, 10, 90, 30), white)

	c := CleanMask(raw, newFrame(t, 120, 60, background))
	defer c.Close()

	require.True(t, c.Found)
	assert.Equal(t, 400, gocv.CountNonZero(c.Mask))

	// Equal areas: the winner is the first contour in detection order
	contours := gocv.FindContours(raw, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()
	require.Equal(t, 2, contours.Size())
	assert.Equal(t, gocv.ContourArea(contours.At(0)), gocv.ContourArea(contours.At(1)))
	assert.Equal(t, gocv.BoundingRect(contours.At(0)), c.Blob.Bounds)
	assert.NotEqual(t, gocv.BoundingRect(contours.At(1)), c.Blob.Bounds)

	// Same input, same winner
	again := CleanMask(raw, newFrame(t, 120, 60, background))
	defer again.Close()
	assert.Equal(t, c.Blob.Bounds, again.Blob.Bounds)
}

func TestCleanMaskIdempotent(t *testing.T) {
	raw := newMask(t, 80, 80)
	fillRect(raw, image.Rect(20, 20, 60, 50), white)
	source := newFrame(t, 80, 80, background)

	first := CleanMask(raw, source)
	defer first.Close()
	second := CleanMask(first.Mask, source)
	defer second.Close()

	require.True(t, second.Found)
	assert.Empty(t, cmp.Diff(first.Mask.ToBytes(), second.Mask.ToBytes()))
}

func TestCleanMaskFillsHolesAndDropsSpeckles(t *testing.T) {
	raw := newMask(t, 100, 100)
	blob := image.Rect(20, 20, 60, 60)
	fillRect(raw, blob, white)
	raw.SetUCharAt(40, 40, 0)   // hole
	raw.SetUCharAt(90, 90, 255) // speckle

	c := CleanMask(raw, newFrame(t, 100, 100, background))
	defer c.Close()

	require.True(t, c.Found)
	assert.Equal(t, uint8(255), c.Mask.GetUCharAt(40, 40))
	assert.Equal(t, uint8(0), c.Mask.GetUCharAt(90, 90))
	assert.Equal(t, 1600, gocv.CountNonZero(c.Mask))
}

func TestCleanMaskEmpty(t *testing.T) {
	raw := newMask(t, 50, 40)
	raw.SetUCharAt(10, 10, 255) // removed by the open

	source := newFrame(t, 50, 40, targetBGR)
	c := CleanMask(raw, source)
	defer c.Close()

	assert.False(t, c.Found)
	assert.Equal(t, 0, gocv.CountNonZero(c.Mask))
	assert.Equal(t, 40, c.Mask.Rows())
	assert.Equal(t, 50, c.Mask.Cols())
	assert.Equal(t, gocv.NewScalar(0, 0, 0, 0), c.Frame.Mean())
	assert.Equal(t, Blob{}, c.Blob)
}
