// Package render schedules per-frame work across a worker pool and delivers
// the results, strictly ordered, to an encoding sink.
//
// Every frame is a pure function of (composition tree, props, frame index),
// so any worker may compute any frame with no shared mutable state. The only
// structure shared across workers is the reordering buffer that re-sequences
// completed frames before they reach the encoder, which requires gap-free
// ascending input.
package render

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/framecast/framecast/internal/system"
)

// FrameRenderer computes the pixels of a single frame.
type FrameRenderer interface {
	RenderFrame(ctx context.Context, frame int) (*image.RGBA, error)
}

// FrameSink consumes ordered frames. WriteFrame is called with strictly
// increasing frame indices and no gaps; the sink owns the buffer after the
// call returns.
type FrameSink interface {
	WriteFrame(frame int, img *image.RGBA) error
}

// Job is one render invocation over a half-open frame range.
type Job struct {
	ID            string
	CompositionID string
	StartFrame    int
	EndFrame      int // exclusive
	Renderer      FrameRenderer
	Sink          FrameSink
}

// NewJob assigns a fresh job id.
func NewJob(compositionID string, start, end int, r FrameRenderer, s FrameSink) *Job {
	return &Job{
		ID:            uuid.NewString(),
		CompositionID: compositionID,
		StartFrame:    start,
		EndFrame:      end,
		Renderer:      r,
		Sink:          s,
	}
}

// Options tunes the scheduler.
type Options struct {
	// Workers is the parallel render worker count. Defaults to the
	// physical core count.
	Workers int
	// MaxRetries bounds re-renders of a failing frame before the job
	// aborts. Applies to render faults and not-ready assets alike.
	MaxRetries int
	// RetryDelay is the initial backoff; it doubles per attempt.
	RetryDelay time.Duration
	// MaxBuffered caps how many frames may be in flight or parked
	// out-of-order, which bounds the reorder buffer's memory.
	MaxBuffered int
	// OnProgress, when set, is called after each flushed frame.
	OnProgress func(done, total int)
	Logger     *log.Logger
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = system.DefaultWorkers()
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = 250 * time.Millisecond
	}
	if o.MaxBuffered < o.Workers {
		o.MaxBuffered = o.Workers * 2
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o
}

type result struct {
	frame int
	img   *image.RGBA
}

// Render runs the job to completion. An empty frame range completes
// immediately with no frames written and no error. On cancellation in-flight
// frame work is abandoned and no further frames are dispatched.
func Render(ctx context.Context, job *Job, opts Options) error {
	total := job.EndFrame - job.StartFrame
	if total <= 0 {
		return nil
	}
	opts = opts.withDefaults()

	g, gctx := errgroup.WithContext(ctx)
	indices := make(chan int)
	results := make(chan result, opts.Workers)
	// Dispatch acquires a slot per frame, the collector releases it once the
	// frame is flushed. Slots are acquired in ascending frame order, so the
	// next frame the collector needs always holds one and the pipeline
	// cannot deadlock under backpressure.
	slots := make(chan struct{}, opts.MaxBuffered)

	g.Go(func() error {
		defer close(indices)
		for f := job.StartFrame; f < job.EndFrame; f++ {
			select {
			case slots <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			select {
			case indices <- f:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < opts.Workers; w++ {
		g.Go(func() error {
			for f := range indices {
				img, err := renderWithRetry(gctx, job, f, opts)
				if err != nil {
					return err
				}
				select {
				case results <- result{frame: f, img: img}:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}

	g.Go(func() error {
		pending := make(map[int]*image.RGBA, opts.MaxBuffered)
		next := job.StartFrame
		done := 0
		for done < total {
			select {
			case res := <-results:
				pending[res.frame] = res.img
			case <-gctx.Done():
				return gctx.Err()
			}
			for img, ok := pending[next]; ok; img, ok = pending[next] {
				delete(pending, next)
				if err := job.Sink.WriteFrame(next, img); err != nil {
					return err
				}
				<-slots
				next++
				done++
				if opts.OnProgress != nil {
					opts.OnProgress(done, total)
				}
			}
		}
		return nil
	})

	return g.Wait()
}

func renderWithRetry(ctx context.Context, job *Job, frame int, opts Options) (*image.RGBA, error) {
	delay := opts.RetryDelay
	var lastErr error

	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		if attempt > 0 {
			opts.Logger.Debug("retrying frame",
				"job", job.ID, "frame", frame, "attempt", attempt, "cause", lastErr)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			delay *= 2
		}

		img, err := job.Renderer.RenderFrame(ctx, frame)
		if err == nil {
			return img, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err

		var notReady *NotReadyError
		if errors.As(err, &notReady) {
			// Eager-loading leaf: expected during premount pre-roll, keep
			// the retry quiet.
			continue
		}
		opts.Logger.Warn("frame render failed",
			"job", job.ID, "frame", frame, "error", err)
	}

	return nil, &FatalError{
		JobID:         job.ID,
		CompositionID: job.CompositionID,
		Frame:         frame,
		Attempts:      opts.MaxRetries + 1,
		Err:           lastErr,
	}
}
