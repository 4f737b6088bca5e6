package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"colortrack/tracking"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// DebugLogger is the unified logger every package reports through
type DebugLogger struct {
	mu      sync.RWMutex
	log     zerolog.Logger
	file    *os.File
	verbose bool

	// Recent messages for the terminal overlay
	history    []DebugMessage
	maxHistory int
}

type DebugMessage struct {
	Timestamp time.Time
	Component string
	Message   string
}

// NewDebugLogger writes human readable lines to console. When enabled it also
// writes JSON lines to <baseDir>/colortrack_<sessionID>.log. Verbose messages
// are only emitted when verbose is set.
func NewDebugLogger(console io.Writer, enabled bool, baseDir, sessionID string, verbose bool) (*DebugLogger, error) {
	dl := &DebugLogger{
		verbose:    verbose,
		history:    make([]DebugMessage, 0),
		maxHistory: 50,
	}

	writers := []io.Writer{zerolog.ConsoleWriter{Out: console, TimeFormat: "15:04:05.000"}}
	if enabled {
		if err := os.MkdirAll(baseDir, 0755); err != nil {
			return nil, errors.Wrapf(err, "failed to create debug directory %s", baseDir)
		}
		path := filepath.Join(baseDir, fmt.Sprintf("colortrack_%s.log", sessionID))
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open debug log %s", path)
		}
		dl.file = file
		writers = append(writers, file)
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	dl.log = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Str("session", sessionID).
		Logger()

	return dl, nil
}

// debugMsg logs a component-tagged message and keeps it for the overlay terminal
func (dl *DebugLogger) debugMsg(component, message string) {
	dl.log.Info().Str("component", component).Msg(message)
	dl.remember(component, message)
}

// debugMsgVerbose logs only when verbose output is enabled
func (dl *DebugLogger) debugMsgVerbose(component, message string) {
	if !dl.verbose {
		return
	}
	dl.log.Debug().Str("component", component).Msg(message)
	dl.remember(component, message)
}

func (dl *DebugLogger) remember(component, message string) {
	dl.mu.Lock()
	defer dl.mu.Unlock()

	dl.history = append(dl.history, DebugMessage{
		Timestamp: time.Now(),
		Component: component,
		Message:   message,
	})
	if len(dl.history) > dl.maxHistory {
		dl.history = dl.history[len(dl.history)-dl.maxHistory:]
	}
}

// logResults writes one structured line describing every tracker result of a frame
func (dl *DebugLogger) logResults(frame int64, results []*tracking.TrackResult, verboseOnly bool) {
	ev := dl.log.Info()
	if verboseOnly {
		ev = dl.log.Debug()
	}
	ev = ev.Str("component", "FRAME").Int64("frame", frame)
	for _, r := range results {
		ev = ev.Object(r.Tracker.String(), r)
	}
	ev.Msg("frame processed")
}

// History returns recent messages as "[COMPONENT] message" lines, oldest first
func (dl *DebugLogger) History() []string {
	dl.mu.RLock()
	defer dl.mu.RUnlock()

	lines := make([]string, len(dl.history))
	for i, msg := range dl.history {
		lines[i] = fmt.Sprintf("[%s] %s", msg.Component, msg.Message)
	}
	return lines
}

func (dl *DebugLogger) Close() error {
	dl.mu.Lock()
	defer dl.mu.Unlock()
	if dl.file == nil {
		return nil
	}
	err := dl.file.Close()
	dl.file = nil
	return err
}
