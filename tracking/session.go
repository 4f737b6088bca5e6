package tracking

import (
	"context"
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
	"golang.org/x/sync/errgroup"
)

// ErrAlreadyInitialized is returned by a second Initialize on the same session
var ErrAlreadyInitialized = errors.New("session already initialized")

// Session owns the write-once TargetProfile and runs every tracker against it.
// A failed Initialize is final: the session stays not-ready for its lifetime.
type Session struct {
	mu        sync.RWMutex
	profile   *TargetProfile
	attempted bool

	trackers []Tracker
	parallel bool

	sizeWarned atomic.Bool
}

// NewSessionDefault creates a sequential session with default tracker parameters
func NewSessionDefault() *Session {
	return NewSession(DefaultParams(), false)
}

// NewSession creates a session with one tracker of each kind.
// With parallel set the trackers of a frame run on separate goroutines.
func NewSession(p Params, parallel bool) *Session {
	return &Session{
		trackers: NewTrackers(p),
		parallel: parallel,
	}
}

// Initialize captures the target profile from roi in frame
func (s *Session) Initialize(frame gocv.Mat, roi image.Rectangle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attempted {
		return ErrAlreadyInitialized
	}
	s.attempted = true

	profile, err := NewTargetProfile(frame, roi)
	if err != nil {
		debugMsg("SESSION", fmt.Sprintf("initialization failed: %v", err))
		return errors.Wrap(err, "initialize target profile")
	}
	s.profile = profile
	return nil
}

// Ready reports whether a profile exists
func (s *Session) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile != nil
}

// Profile returns the target profile, or nil before a successful Initialize
func (s *Session) Profile() *TargetProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// Trackers returns the session's trackers in run order
func (s *Session) Trackers() []Tracker {
	return s.trackers
}

// Process runs every tracker on frame. Results are in Trackers() order and are
// owned by the caller. On error no results are returned.
func (s *Session) Process(ctx context.Context, frame gocv.Mat) ([]*TrackResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	s.checkFrameSize(frame)

	results := make([]*TrackResult, len(s.trackers))
	var err error
	if s.parallel {
		err = s.processParallel(ctx, frame, results)
	} else {
		err = s.processSequential(ctx, frame, results)
	}
	if err != nil {
		CloseResults(results)
		return nil, err
	}
	return results, nil
}

// checkFrameSize reports, once per session, a frame whose size differs from the
// frame the profile was captured from
func (s *Session) checkFrameSize(frame gocv.Mat) {
	if s.profile == nil || frame.Empty() {
		return
	}
	got := image.Pt(frame.Cols(), frame.Rows())
	want := s.profile.FrameSize()
	if got == want || !s.sizeWarned.CompareAndSwap(false, true) {
		return
	}
	debugMsg("SESSION", fmt.Sprintf("frame size %dx%d differs from target frame %dx%d", got.X, got.Y, want.X, want.Y))
}

func (s *Session) processSequential(ctx context.Context, frame gocv.Mat, results []*TrackResult) error {
	for i, t := range s.trackers {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := t.Track(frame, s.profile)
		if err != nil {
			return errors.Wrapf(err, "%s tracker", t.Kind())
		}
		results[i] = res
	}
	return nil
}

func (s *Session) processParallel(ctx context.Context, frame gocv.Mat, results []*TrackResult) error {
	g, gctx := errgroup.WithContext(ctx)
	for i, t := range s.trackers {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := t.Track(frame, s.profile)
			if err != nil {
				return errors.Wrapf(err, "%s tracker", t.Kind())
			}
			results[i] = res
			return nil
		})
	}
	return g.Wait()
}

// Close releases the profile
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.profile.Close()
	s.profile = nil
	return err
}

// CloseResults closes every non-nil result
func CloseResults(results []*TrackResult) {
	for _, r := range results {
		if r != nil {
			r.Close()
		}
	}
}
