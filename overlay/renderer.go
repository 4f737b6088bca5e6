package overlay

import (
	"fmt"
	"image"
	"image/color"

	"colortrack/tracking"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// debugMsgFunc is a function that will be set by main package to use unified logging
var debugMsgFunc func(component, message string)

// SetDebugFunction allows main package to provide the debug logger
func SetDebugFunction(fn func(component, message string)) {
	debugMsgFunc = fn
}

func debugMsg(component, message string) {
	if debugMsgFunc != nil {
		debugMsgFunc(component, message)
	}
}

// Renderer turns tracker results into display frames
type Renderer struct {
	targetGreen   color.RGBA
	labelColor    color.RGBA
	terminalBG    color.RGBA
	terminalText  color.RGBA
	bracketLength int
	maxLines      int
	// Annotate draws brackets, crosshair and label on detected frames
	Annotate bool
}

// NewRenderer creates a new overlay renderer
func NewRenderer() *Renderer {
	return &Renderer{
		targetGreen:   color.RGBA{0, 255, 0, 255},
		labelColor:    color.RGBA{255, 255, 255, 255},
		terminalBG:    color.RGBA{0, 0, 0, 180},
		terminalText:  color.RGBA{255, 255, 255, 255},
		bracketLength: 15,
		maxLines:      12,
		Annotate:      true,
	}
}

// ResultFrame returns the plain image for one tracker result. NotReady is a
// black frame the size of original, Empty is the original frame and Detected is
// the target composite. The caller owns the returned Mat.
func (r *Renderer) ResultFrame(res *tracking.TrackResult, original gocv.Mat) gocv.Mat {
	if res == nil || res.Kind == tracking.ResultNotReady {
		return blackFrame(original)
	}
	if res.Kind == tracking.ResultEmpty || res.Frame.Empty() {
		return original.Clone()
	}
	return res.Frame.Clone()
}

// DisplayFrame is ResultFrame with the target marked when Annotate is set
func (r *Renderer) DisplayFrame(res *tracking.TrackResult, original gocv.Mat) gocv.Mat {
	out := r.ResultFrame(res, original)
	if r.Annotate && res.Detected() && !res.Frame.Empty() {
		r.drawTarget(&out, res)
	}
	return out
}

func blackFrame(like gocv.Mat) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), like.Rows(), like.Cols(), like.Type())
}

// drawTarget marks the detected blob with corner brackets, a centroid crosshair and a label
func (r *Renderer) drawTarget(img *gocv.Mat, res *tracking.TrackResult) {
	blob := res.Blob
	if blob.Bounds.Empty() {
		return
	}
	r.drawCornerBrackets(img, blob.Bounds, r.targetGreen, 2, r.bracketLength)
	r.drawCrosshair(img, blob.Centroid, r.targetGreen)

	label := fmt.Sprintf("%s area %.0f", res.Tracker, blob.Area)
	labelPos := image.Pt(blob.Bounds.Min.X, blob.Bounds.Min.Y-5)
	if labelPos.Y < 12 {
		labelPos.Y = blob.Bounds.Max.Y + 14
	}
	gocv.PutText(img, label, labelPos, gocv.FontHersheySimplex, 0.4, r.labelColor, 1)
}

// drawCrosshair draws a crosshair with a center dot
func (r *Renderer) drawCrosshair(img *gocv.Mat, center image.Point, c color.RGBA) {
	size := 8
	thickness := 2

	gocv.Line(img, image.Pt(center.X-size, center.Y), image.Pt(center.X+size, center.Y), c, thickness)
	gocv.Line(img, image.Pt(center.X, center.Y-size), image.Pt(center.X, center.Y+size), c, thickness)
	gocv.Circle(img, center, 2, c, -1)
}

// drawCornerBrackets draws brackets at the four corners of rect
func (r *Renderer) drawCornerBrackets(img *gocv.Mat, rect image.Rectangle, c color.RGBA, thickness, length int) {
	if length > rect.Dx()/2 {
		length = rect.Dx() / 2
	}
	if length > rect.Dy()/2 {
		length = rect.Dy() / 2
	}
	maxPt := image.Pt(rect.Max.X-1, rect.Max.Y-1)

	// Top-left corner
	gocv.Line(img, rect.Min, image.Pt(rect.Min.X+length, rect.Min.Y), c, thickness)
	gocv.Line(img, rect.Min, image.Pt(rect.Min.X, rect.Min.Y+length), c, thickness)

	// Top-right corner
	gocv.Line(img, image.Pt(maxPt.X, rect.Min.Y), image.Pt(maxPt.X-length, rect.Min.Y), c, thickness)
	gocv.Line(img, image.Pt(maxPt.X, rect.Min.Y), image.Pt(maxPt.X, rect.Min.Y+length), c, thickness)

	// Bottom-left corner
	gocv.Line(img, image.Pt(rect.Min.X, maxPt.Y), image.Pt(rect.Min.X+length, maxPt.Y), c, thickness)
	gocv.Line(img, image.Pt(rect.Min.X, maxPt.Y), image.Pt(rect.Min.X, maxPt.Y-length), c, thickness)

	// Bottom-right corner
	gocv.Line(img, maxPt, image.Pt(maxPt.X-length, maxPt.Y), c, thickness)
	gocv.Line(img, maxPt, image.Pt(maxPt.X, maxPt.Y-length), c, thickness)
}

// DrawTitle writes a window title in the top-left corner of img
func (r *Renderer) DrawTitle(img *gocv.Mat, title string) {
	gocv.Rectangle(img, image.Rect(0, 0, 8+9*len(title), 22), r.terminalBG, -1)
	gocv.PutText(img, title, image.Pt(4, 16), gocv.FontHersheySimplex, 0.5, r.labelColor, 1)
}

// Panel tiles the original frame and up to three tracker frames into a 2x2 grid.
// Missing tiles are black. Every tile must have the size and type of original.
func (r *Renderer) Panel(original gocv.Mat, titles []string, frames []gocv.Mat) (gocv.Mat, error) {
	tiles := make([]gocv.Mat, 4)
	tiles[0] = original.Clone()
	r.DrawTitle(&tiles[0], "Original")
	for i := 1; i < 4; i++ {
		if i-1 < len(frames) && !frames[i-1].Empty() {
			f := frames[i-1]
			if f.Rows() != original.Rows() || f.Cols() != original.Cols() || f.Type() != original.Type() {
				for _, t := range tiles[:i] {
					t.Close()
				}
				err := errors.Errorf("panel tile %d is %dx%d, want %dx%d",
					i, f.Cols(), f.Rows(), original.Cols(), original.Rows())
				debugMsg("OVERLAY", err.Error())
				return gocv.NewMat(), err
			}
			tiles[i] = f.Clone()
		} else {
			tiles[i] = blackFrame(original)
		}
		if i-1 < len(titles) {
			r.DrawTitle(&tiles[i], titles[i-1])
		}
	}
	defer func() {
		for _, t := range tiles {
			t.Close()
		}
	}()

	top := gocv.NewMat()
	defer top.Close()
	bottom := gocv.NewMat()
	defer bottom.Close()
	gocv.Hconcat(tiles[0], tiles[1], &top)
	gocv.Hconcat(tiles[2], tiles[3], &bottom)

	out := gocv.NewMat()
	gocv.Vconcat(top, bottom, &out)
	return out, nil
}

// DrawTerminal draws the most recent log lines in a translucent box at the bottom of img
func (r *Renderer) DrawTerminal(img *gocv.Mat, lines []string) {
	if len(lines) == 0 {
		return
	}
	if len(lines) > r.maxLines {
		lines = lines[len(lines)-r.maxLines:]
	}

	lineHeight := 14
	height := len(lines)*lineHeight + 10
	top := img.Rows() - height
	if top < 0 {
		top = 0
	}
	gocv.Rectangle(img, image.Rect(0, top, img.Cols(), img.Rows()), r.terminalBG, -1)

	maxLineLen := img.Cols() / 7
	y := top + lineHeight
	for _, line := range lines {
		if maxLineLen > 3 && len(line) > maxLineLen {
			line = line[:maxLineLen-3] + "..."
		}
		gocv.PutText(img, line, image.Pt(6, y), gocv.FontHersheySimplex, 0.35, r.terminalText, 1)
		y += lineHeight
	}
}
