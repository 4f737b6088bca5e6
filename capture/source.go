package capture

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Global debug function for capture package
var debugMsgFunc func(component, message string)

// SetDebugFunction allows main package to provide debug function
func SetDebugFunction(fn func(component, message string)) {
	debugMsgFunc = fn
}

func debugMsg(component, message string) {
	if debugMsgFunc != nil {
		debugMsgFunc(component, message)
	}
}

// Source is a sequence of BGR frames
type Source interface {
	// Read decodes the next frame into dst, false at end of stream or on failure
	Read(dst *gocv.Mat) bool
	// FrameCount returns the number of frames, 0 when unknown (live devices)
	FrameCount() int
	// Seek positions the source so the next Read returns frame n
	Seek(n int) error
	Close() error
	Info() SourceInfo
}

// SourceInfo describes an open source
type SourceInfo struct {
	Kind   string // "file" or "device"
	Name   string
	Width  int
	Height int
	FPS    float64
	Live   bool
}

func (i SourceInfo) String() string {
	return fmt.Sprintf("%s %s %dx%d @ %.1f fps", i.Kind, i.Name, i.Width, i.Height, i.FPS)
}

// ErrNotSeekable is returned by Seek on live sources
var ErrNotSeekable = errors.New("source is not seekable")

// videoSource wraps a gocv.VideoCapture for both files and devices
type videoSource struct {
	vc   *gocv.VideoCapture
	info SourceInfo
}

// Open opens input as a camera device when it is an integer, otherwise as a video file
func Open(input string) (Source, error) {
	if id, err := strconv.Atoi(input); err == nil {
		return OpenDevice(id)
	}
	return OpenFile(input)
}

// OpenFile opens a video file
func OpenFile(path string) (Source, error) {
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open video file %s", path)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, errors.Errorf("video file %s could not be opened", path)
	}
	s := newVideoSource(vc, "file", path, false)
	debugMsg("CAPTURE", fmt.Sprintf("opened %s (%d frames)", s.info, s.FrameCount()))
	return s, nil
}

// OpenDevice opens a camera by index
func OpenDevice(id int) (Source, error) {
	vc, err := gocv.VideoCaptureDevice(id)
	if err != nil {
		return nil, errors.Wrapf(err, "open capture device %d", id)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, errors.Errorf("capture device %d could not be opened", id)
	}
	s := newVideoSource(vc, "device", strconv.Itoa(id), true)
	debugMsg("CAPTURE", fmt.Sprintf("opened %s", s.info))
	return s, nil
}

func newVideoSource(vc *gocv.VideoCapture, kind, name string, live bool) *videoSource {
	return &videoSource{
		vc: vc,
		info: SourceInfo{
			Kind:   kind,
			Name:   name,
			Width:  int(vc.Get(gocv.VideoCaptureFrameWidth)),
			Height: int(vc.Get(gocv.VideoCaptureFrameHeight)),
			FPS:    vc.Get(gocv.VideoCaptureFPS),
			Live:   live,
		},
	}
}

func (s *videoSource) Read(dst *gocv.Mat) bool {
	return s.vc.Read(dst)
}

func (s *videoSource) FrameCount() int {
	if s.info.Live {
		return 0
	}
	n := int(s.vc.Get(gocv.VideoCaptureFrameCount))
	if n < 0 {
		return 0
	}
	return n
}

func (s *videoSource) Seek(n int) error {
	if s.info.Live {
		return ErrNotSeekable
	}
	if n < 0 {
		return errors.Errorf("cannot seek to negative frame %d", n)
	}
	s.vc.Set(gocv.VideoCapturePosFrames, float64(n))
	return nil
}

func (s *videoSource) Close() error {
	return s.vc.Close()
}

func (s *videoSource) Info() SourceInfo {
	return s.info
}

// MiddleFrame returns the index of the first frame of the second half of src
func MiddleFrame(src Source) int {
	return src.FrameCount() / 2
}
