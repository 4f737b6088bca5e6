package capture

import (
	"context"
	"fmt"
	"time"

	"gocv.io/x/gocv"
)

// Frame is one decoded frame. The receiver owns Mat and must close it.
type Frame struct {
	Mat       gocv.Mat
	Sequence  int64
	Timestamp time.Time
}

// StreamStats summarizes a finished Stream call
type StreamStats struct {
	Read    int64 // Frames delivered to the channel
	Skipped int64 // Empty or non-BGR frames
	Dropped int64 // Frames discarded because the consumer was behind
}

// Stream reads frames from src into out until the source is exhausted or ctx is
// done, then closes out. Empty and non-BGR frames are skipped. Live sources drop
// frames when out is full so the consumer always sees recent frames; files block
// so no frame is lost.
func Stream(ctx context.Context, src Source, out chan<- Frame) StreamStats {
	defer close(out)

	var stats StreamStats
	live := src.Info().Live
	for {
		if ctx.Err() != nil {
			return stats
		}

		img := gocv.NewMat()
		if ok := src.Read(&img); !ok {
			img.Close()
			debugMsg("CAPTURE", fmt.Sprintf("stream ended after %d frames (%d skipped, %d dropped)",
				stats.Read, stats.Skipped, stats.Dropped))
			return stats
		}

		if img.Empty() || img.Type() != gocv.MatTypeCV8UC3 {
			img.Close()
			stats.Skipped++
			continue
		}

		frame := Frame{Mat: img, Sequence: stats.Read, Timestamp: time.Now()}
		if live {
			select {
			case out <- frame:
				stats.Read++
			case <-ctx.Done():
				img.Close()
				return stats
			default:
				img.Close()
				stats.Dropped++
			}
			continue
		}

		select {
		case out <- frame:
			stats.Read++
		case <-ctx.Done():
			img.Close()
			return stats
		}
	}
}
