package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"os"
	"os/signal"
	"syscall"

	"colortrack/capture"
	"colortrack/config"
	"colortrack/overlay"
	"colortrack/snapshot"
	"colortrack/tracking"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

const (
	selectWindowName = "Select Target"
	originalWindow   = "Original"
	panelWindow      = "Color Tracking"
	keyDelayMs       = 30
	frameBuffer      = 4
)

var (
	// Command-line flags
	inputSource = flag.String("input", "", "Video file path or camera index (required)\n\t\tExample: -input=clip.mp4 or -input=0")
	roiFlag     = flag.String("roi", "", "Target region as x,y,w,h in first-frame pixels (skips interactive selection)\n\t\tExample: -roi=120,80,40,30")
	configPath  = flag.String("config", "", "JSON tuning file (diff_threshold, h_range, s_range, v_range, parallel, start_at_middle, snapshot_dir)")

	debugMode    = flag.Bool("debug", false, "Write a per-session JSON log file under -debug-dir")
	debugVerbose = flag.Bool("debug-verbose", false, "Enable verbose output (per-frame tracker diagnostics)")
	debugDir     = flag.String("debug-dir", "/tmp/colortrack", "Directory for per-session debug logs")

	snapshotDir         = flag.String("snapshot-dir", "", "Directory for snapshots saved with 's' (overrides snapshot_dir from -config)")
	snapshotTimestamped = flag.Bool("snapshot-timestamped", false, "Save snapshots into date/hour subdirectories with timestamped names instead of overwriting")

	headless        = flag.Bool("headless", false, "Run without windows (requires -roi) and log per-frame results")
	maxFrames       = flag.Int("max-frames", 0, "Stop after this many tracked frames (0 = until the input ends)")
	panelMode       = flag.Bool("panel", false, "Show one 2x2 panel instead of four windows")
	parallel        = flag.Bool("parallel", false, "Run the three trackers of a frame concurrently")
	terminalOverlay = flag.Bool("terminal-overlay", false, "Show recent log messages at the bottom of the Original view")

	// Global debug logger instance
	globalDebugLogger *DebugLogger
)

// debugMsg is the global convenience function for unified debug logging
func debugMsg(component, message string) {
	if globalDebugLogger != nil {
		globalDebugLogger.debugMsg(component, message)
	} else {
		fmt.Printf("[%s] %s\n", component, message)
	}
}

// debugMsgVerbose only outputs if debug-verbose flag is enabled
func debugMsgVerbose(component, message string) {
	if globalDebugLogger != nil {
		globalDebugLogger.debugMsgVerbose(component, message)
	}
}

// wireDebugFunctions connects every package to the unified logger
func wireDebugFunctions() {
	tracking.SetDebugFunction(debugMsg)
	tracking.SetDebugVerboseFunction(debugMsgVerbose)
	capture.SetDebugFunction(debugMsg)
	overlay.SetDebugFunction(debugMsg)
	snapshot.SetDebugFunction(debugMsg)
}

// loadTuning returns the JSON tuning config with flag overrides applied
func loadTuning() (*config.TuningConfig, error) {
	cfg := config.DefaultTuningConfig()
	if *configPath != "" {
		loaded, err := config.LoadTuningConfig(*configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if *parallel {
		cfg.Parallel = parallel
	}
	if *snapshotDir != "" {
		cfg.SnapshotDir = snapshotDir
	}
	return cfg, nil
}

func main() {
	flag.Parse()

	if *inputSource == "" {
		fmt.Fprintf(os.Stderr, "Error: -input flag is required\n\n")
		fmt.Println("Usage examples:")
		fmt.Println("  Interactive:   ./colortrack -input=clip.mp4")
		fmt.Println("  Camera:        ./colortrack -input=0 -panel")
		fmt.Println("  Fixed target:  ./colortrack -input=clip.mp4 -roi=120,80,40,30")
		fmt.Println("  Batch:         ./colortrack -input=clip.mp4 -roi=120,80,40,30 -headless -max-frames=300")
		fmt.Println("")
		flag.Usage()
		os.Exit(1)
	}
	if *headless && *roiFlag == "" {
		fmt.Fprintf(os.Stderr, "Error: -headless requires -roi\n")
		os.Exit(1)
	}

	if err := run(); err != nil {
		debugMsg("ERROR", fmt.Sprintf("%+v", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadTuning()
	if err != nil {
		return errors.Wrap(err, "configuration error")
	}

	sessionID := uuid.NewString()
	globalDebugLogger, err = NewDebugLogger(os.Stdout, *debugMode, *debugDir, sessionID, *debugVerbose)
	if err != nil {
		return err
	}
	defer globalDebugLogger.Close()
	wireDebugFunctions()

	params := cfg.TrackerParams()
	debugMsg("CONFIG", fmt.Sprintf("diff=%d h=%d s=%d v=%d parallel=%v start_at_middle=%v",
		params.DiffThreshold, params.HueRange, params.SaturationRange, params.ValueRange,
		cfg.GetParallel(), cfg.GetStartAtMiddle()))

	src, err := capture.Open(*inputSource)
	if err != nil {
		return err
	}
	defer src.Close()

	start := 0
	seekable := !src.Info().Live
	if seekable && cfg.GetStartAtMiddle() {
		start = capture.MiddleFrame(src)
		if err := src.Seek(start); err != nil {
			return err
		}
		debugMsg("CAPTURE", fmt.Sprintf("starting at frame %d of %d", start, src.FrameCount()))
	}

	first := gocv.NewMat()
	defer first.Close()
	if ok := src.Read(&first); !ok || first.Empty() {
		return errors.New("failed to read the first frame")
	}

	roi, err := selectROI(first)
	if err != nil {
		return err
	}
	if roi.Dx() <= 0 || roi.Dy() <= 0 {
		debugMsg("ROI", "no valid region selected")
		return nil
	}

	session := tracking.NewSession(params, cfg.GetParallel())
	defer session.Close()
	if err := session.Initialize(first, roi); err != nil {
		return err
	}
	profile := session.Profile()
	debugMsg("ROI", fmt.Sprintf("target %v mean BGR %.1f HSV %.1f", profile.ROI(), profile.MeanColorBGR(), profile.MeanColorHSV()))

	if seekable {
		if err := src.Seek(start); err != nil {
			return err
		}
	}

	saver, err := snapshot.NewSaver(cfg.GetSnapshotDir(), *snapshotTimestamped, sessionID)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	frames := make(chan capture.Frame, frameBuffer)
	streamDone := make(chan capture.StreamStats, 1)
	go func() {
		streamDone <- capture.Stream(ctx, src, frames)
	}()

	var d *display
	if !*headless {
		d = newDisplay(*panelMode, *terminalOverlay)
		defer d.Close()
	}

	err = trackLoop(ctx, session, frames, d, saver)
	cancel()
	for f := range frames {
		f.Mat.Close()
	}
	stats := <-streamDone
	debugMsg("CAPTURE", fmt.Sprintf("read %d frames, skipped %d, dropped %d", stats.Read, stats.Skipped, stats.Dropped))
	return err
}

// selectROI returns the -roi flag or lets the user drag a rectangle on first
func selectROI(first gocv.Mat) (image.Rectangle, error) {
	if *roiFlag != "" {
		roi, err := tracking.ParseROI(*roiFlag)
		if err != nil {
			return image.Rectangle{}, errors.Wrap(err, "invalid -roi")
		}
		return roi, nil
	}

	debugMsg("ROI", "select the target and press ENTER or SPACE")
	window := gocv.NewWindow(selectWindowName)
	defer window.Close()
	return gocv.SelectROI(selectWindowName, first), nil
}

// trackLoop runs the session over every streamed frame until the stream ends,
// ctx is done, the user quits or max-frames is reached
func trackLoop(ctx context.Context, session *tracking.Session, frames <-chan capture.Frame, d *display, saver *snapshot.Saver) error {
	var processed int
	for f := range frames {
		results, err := session.Process(ctx, f.Mat)
		if err != nil {
			f.Mat.Close()
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		processed++
		globalDebugLogger.logResults(f.Sequence, results, !*headless)

		quit := false
		if d != nil {
			quit = d.show(f.Mat, results, saver)
		}
		tracking.CloseResults(results)
		f.Mat.Close()

		if quit {
			debugMsg("SYSTEM", "quit requested")
			return nil
		}
		if *maxFrames > 0 && processed >= *maxFrames {
			debugMsg("SYSTEM", fmt.Sprintf("reached -max-frames=%d", *maxFrames))
			return nil
		}
	}
	debugMsg("SYSTEM", fmt.Sprintf("input finished after %d frames", processed))
	return nil
}

// display owns the output windows
type display struct {
	renderer *overlay.Renderer
	terminal bool
	windows  map[string]*gocv.Window
	order    []string
}

func newDisplay(panel, terminal bool) *display {
	d := &display{
		renderer: overlay.NewRenderer(),
		terminal: terminal,
		windows:  make(map[string]*gocv.Window),
	}
	if panel {
		d.order = []string{panelWindow}
	} else {
		d.order = []string{originalWindow}
		for _, kind := range tracking.AllTrackerKinds {
			d.order = append(d.order, kind.Title())
		}
	}
	for _, name := range d.order {
		d.windows[name] = gocv.NewWindow(name)
	}
	return d
}

// show renders one frame and handles keys; it returns true when the user quits
func (d *display) show(original gocv.Mat, results []*tracking.TrackResult, saver *snapshot.Saver) bool {
	views := make(map[tracking.TrackerKind]gocv.Mat, len(results))
	defer func() {
		for _, v := range views {
			v.Close()
		}
	}()
	titles := make([]string, 0, len(results))
	ordered := make([]gocv.Mat, 0, len(results))
	for _, r := range results {
		v := d.renderer.DisplayFrame(r, original)
		views[r.Tracker] = v
		titles = append(titles, r.Tracker.Title())
		ordered = append(ordered, v)
	}

	orig := original.Clone()
	defer orig.Close()
	if d.terminal {
		d.renderer.DrawTerminal(&orig, globalDebugLogger.History())
	}

	if w, ok := d.windows[panelWindow]; ok {
		panel, err := d.renderer.Panel(orig, titles, ordered)
		if err != nil {
			debugMsg("DISPLAY", err.Error())
		} else {
			w.IMShow(panel)
			panel.Close()
		}
	} else {
		d.windows[originalWindow].IMShow(orig)
		for kind, v := range views {
			d.windows[kind.Title()].IMShow(v)
		}
	}

	key := d.windows[d.order[0]].WaitKey(keyDelayMs)
	switch key & 0xFF {
	case 'q':
		return true
	case 's':
		saveSnapshots(d.renderer, saver, original, results)
	}
	return false
}

// snapshotFrames returns the unannotated frame of every result keyed by tracker.
// The caller owns the Mats.
func snapshotFrames(r *overlay.Renderer, original gocv.Mat, results []*tracking.TrackResult) map[tracking.TrackerKind]gocv.Mat {
	frames := make(map[tracking.TrackerKind]gocv.Mat, len(results))
	for _, res := range results {
		frames[res.Tracker] = r.ResultFrame(res, original)
	}
	return frames
}

// saveSnapshots writes the composited frames of results, without overlay graphics
func saveSnapshots(r *overlay.Renderer, saver *snapshot.Saver, original gocv.Mat, results []*tracking.TrackResult) []string {
	frames := snapshotFrames(r, original, results)
	defer func() {
		for _, f := range frames {
			f.Close()
		}
	}()

	paths, err := saver.SaveAll(frames)
	if err != nil {
		debugMsg("SNAPSHOT_ERROR", err.Error())
	}
	debugMsg("SNAPSHOT", fmt.Sprintf("saved %d snapshots to %s", len(paths), saver.Dir()))
	return paths
}

func (d *display) Close() {
	for _, w := range d.windows {
		w.Close()
	}
}
