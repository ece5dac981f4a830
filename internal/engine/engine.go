// Package engine wires the pieces together: it selects a composition,
// builds a compositor over it, opens an encoder session, and drives the
// parallel frame scheduler between the two.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/framecast/framecast/internal/asset"
	"github.com/framecast/framecast/internal/compositor"
	"github.com/framecast/framecast/internal/config"
	"github.com/framecast/framecast/internal/encoder"
	"github.com/framecast/framecast/internal/registry"
	"github.com/framecast/framecast/internal/render"
)

// Engine renders compositions from a registry into media files.
type Engine struct {
	registry *registry.Registry
	assets   *asset.Manager
	cfg      *config.Config
	logger   *log.Logger
}

func New(reg *registry.Registry, assets *asset.Manager, cfg *config.Config, logger *log.Logger) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{registry: reg, assets: assets, cfg: cfg, logger: logger}
}

// Request describes one media render.
type Request struct {
	CompositionID string
	// Props merge over the composition's defaults and are schema-checked
	// before any frame renders.
	Props map[string]any
	// FrameRange selects a half-open [start, end) subrange; nil renders the
	// whole composition.
	FrameRange *[2]int
	OutputPath string
	Codec      string
	Quality    int
	Audio      []encoder.AudioTrack
}

// Report summarizes a completed render.
type Report struct {
	JobID        string
	Composition  string
	Frames       int
	OutputPath   string
	RenderTime   time.Duration
	TotalTime    time.Duration
	EffectiveFPS float64
}

// RenderMedia renders a composition to a media file. Validation errors
// (unknown id, bad props, bad frame range) surface before ffmpeg starts;
// a zero-length range completes immediately without touching the encoder.
func (e *Engine) RenderMedia(ctx context.Context, req Request) (*Report, error) {
	started := time.Now()

	meta, err := e.registry.Select(req.CompositionID, req.Props)
	if err != nil {
		return nil, err
	}
	comp, err := e.registry.Get(req.CompositionID)
	if err != nil {
		return nil, err
	}

	start, end := 0, meta.DurationInFrames
	if req.FrameRange != nil {
		start, end = req.FrameRange[0], req.FrameRange[1]
		if start < 0 || end > meta.DurationInFrames || start > end {
			return nil, fmt.Errorf("frame range [%d,%d) outside composition range [0,%d)",
				start, end, meta.DurationInFrames)
		}
	}

	cmp := compositor.New(comp, meta.Props, e.assets)
	job := render.NewJob(meta.ID, start, end, cmp, nil)
	total := end - start

	report := &Report{
		JobID:       job.ID,
		Composition: meta.ID,
		Frames:      total,
		OutputPath:  req.OutputPath,
	}
	if total == 0 {
		report.TotalTime = time.Since(started)
		return report, nil
	}

	codec := req.Codec
	if codec == "" {
		codec = e.cfg.Encode.Codec
	}
	quality := req.Quality
	if quality == 0 {
		quality = e.cfg.Encode.Quality
	}

	audio, err := probeAudio(req.Audio)
	if err != nil {
		return nil, err
	}

	enc, err := encoder.Start(ctx, encoder.StreamSpec{
		Width:       meta.Width,
		Height:      meta.Height,
		FPS:         meta.FPS,
		TotalFrames: total,
		OutputPath:  req.OutputPath,
		Codec:       codec,
		Quality:     quality,
		Audio:       audio,
	})
	if err != nil {
		return nil, err
	}
	job.Sink = enc

	e.logger.Info("render started",
		"job", job.ID,
		"composition", meta.ID,
		"frames", total,
		"size", fmt.Sprintf("%dx%d", meta.Width, meta.Height),
		"fps", meta.FPS)

	opts := e.cfg.SchedulerOptions(meta.Width * meta.Height * 4)
	opts.Logger = e.logger
	opts.OnProgress = e.progressFunc(meta.FPS, total)

	renderStart := time.Now()
	if err := render.Render(ctx, job, opts); err != nil {
		enc.Abort()
		return nil, err
	}
	report.RenderTime = time.Since(renderStart)

	if err := enc.Close(); err != nil {
		return nil, err
	}

	report.TotalTime = time.Since(started)
	if report.RenderTime > 0 {
		report.EffectiveFPS = float64(total) / report.RenderTime.Seconds()
	}
	e.logger.Info("render finished",
		"job", job.ID,
		"output", req.OutputPath,
		"frames", enc.FramesWritten(),
		"took", report.TotalTime.Round(time.Millisecond),
		"effective_fps", fmt.Sprintf("%.1f", report.EffectiveFPS))
	return report, nil
}

// probeAudio fills each track's duration via ffprobe, so an unreadable
// track fails the request before any frame renders and fade-outs can anchor
// to the track's real end. The request's slice is not mutated.
func probeAudio(tracks []encoder.AudioTrack) ([]encoder.AudioTrack, error) {
	if len(tracks) == 0 {
		return nil, nil
	}
	out := make([]encoder.AudioTrack, len(tracks))
	copy(out, tracks)
	for i := range out {
		if out[i].DurationSec > 0 {
			continue
		}
		d, err := encoder.AudioDuration(out[i].Path)
		if err != nil {
			return nil, err
		}
		out[i].DurationSec = d
	}
	return out, nil
}

// progressFunc logs once per second of output video.
func (e *Engine) progressFunc(fps, total int) func(done, total int) {
	step := fps
	if step <= 0 {
		step = 30
	}
	return func(done, _ int) {
		if done%step == 0 || done == total {
			e.logger.Info("rendering", "frames", fmt.Sprintf("%d/%d", done, total))
		}
	}
}
