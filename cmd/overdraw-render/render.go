package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/go-audio/audio"
	overdraw "github.com/tphakala/go-overdraw"
	"github.com/tphakala/go-overdraw/internal/mathutil"
)

const (
	progressInterval = 10 // percent
	percentScale     = 100
)

// renderStats summarizes a finished render.
type renderStats struct {
	frames  int64
	latency int
	inPeak  float64
	outPeak float64
	meter   [2]float64
	elapsed time.Duration
}

// pcmSource yields interleaved PCM chunks; n == 0 marks the end.
type pcmSource interface {
	PCMBuffer(buf *audio.IntBuffer) (n int, err error)
}

// pcmSink consumes interleaved PCM chunks.
type pcmSink interface {
	Write(buf *audio.IntBuffer) error
}

// progressTracker handles progress reporting.
type progressTracker struct {
	totalFrames  int64
	lastProgress int
	verbose      bool
}

func newProgressTracker(totalFrames int64, verbose bool) *progressTracker {
	return &progressTracker{totalFrames: totalFrames, verbose: verbose}
}

// reportIfNeeded logs progress whenever another interval is crossed.
func (p *progressTracker) reportIfNeeded(frames int64) {
	if !p.verbose || p.totalFrames == 0 {
		return
	}

	progress := int(float64(frames) / float64(p.totalFrames) * percentScale)
	if progress >= p.lastProgress+progressInterval {
		log.Printf("Progress: %d%%", progress)
		p.lastProgress = progress
	}
}

// renderer streams PCM through a processor. The first Latency frames of
// output are dropped and the same number of silent frames is fed at the
// end, so the output lines up with the input.
type renderer struct {
	proc     *overdraw.Processor
	channels int
	bufs     *renderBuffers
	sink     pcmSink
	skip     int
	stats    renderStats
}

func newRenderer(p *overdraw.Processor, channels, bitDepth int, format *audio.Format, sink pcmSink) *renderer {
	return &renderer{
		proc:     p,
		channels: channels,
		bufs:     newRenderBuffers(channels, bitDepth, format),
		sink:     sink,
		skip:     p.Latency(),
		stats:    renderStats{latency: p.Latency()},
	}
}

// emit processes frames already in the float buffers and writes what
// survives the latency trim.
func (r *renderer) emit(frames int) error {
	left, right := r.bufs.left[:frames], r.bufs.right[:frames]
	r.proc.ProcessFloat64(left, right)

	start := min(r.skip, frames)
	r.skip -= start
	if start == frames {
		return nil
	}

	r.stats.outPeak = peak(left[start:], r.stats.outPeak)
	if r.channels == stereoChannels {
		r.stats.outPeak = peak(right[start:], r.stats.outPeak)
	}

	n := interleaveInto(left[start:], right[start:], r.bufs.outData, r.channels, r.bufs.maxVal)
	r.bufs.out.Data = r.bufs.outData[:n]
	return r.sink.Write(r.bufs.out)
}

// run drains src through the processor into the sink.
func (r *renderer) run(ctx context.Context, src pcmSource, progress *progressTracker) (*renderStats, error) {
	start := time.Now()

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, err := src.PCMBuffer(r.bufs.in)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read PCM data: %w", err)
		}
		if n == 0 {
			break
		}

		frames := deinterleaveInto(r.bufs.in.Data[:n], r.bufs.left, r.bufs.right, r.channels, r.bufs.invMaxVal)
		r.stats.inPeak = peak(r.bufs.left[:frames], r.stats.inPeak)
		r.stats.inPeak = peak(r.bufs.right[:frames], r.stats.inPeak)
		r.stats.frames += int64(frames)

		if err := r.emit(frames); err != nil {
			return nil, err
		}
		progress.reportIfNeeded(r.stats.frames)
	}

	for remaining := r.stats.latency; remaining > 0; {
		frames := min(remaining, bufferSize)
		clear(r.bufs.left[:frames])
		clear(r.bufs.right[:frames])
		if err := r.emit(frames); err != nil {
			return nil, err
		}
		remaining -= frames
	}

	r.stats.meter = r.proc.Meter()
	r.stats.elapsed = time.Since(start)
	return &r.stats, nil
}

// formatDB renders a linear peak as dBFS.
func formatDB(linear float64) string {
	if linear <= 0 {
		return "-inf dBFS"
	}
	return fmt.Sprintf("%.1f dBFS", mathutil.PowerToDB(linear*linear))
}
