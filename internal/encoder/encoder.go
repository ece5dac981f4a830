// Package encoder hands ordered frame streams and audio tracks to ffmpeg.
// The engine never speaks a container or codec format itself: frames leave
// the process as raw RGBA over stdin and everything downstream is the
// encoding collaborator's problem.
package encoder

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/framecast/framecast/internal/system"
)

// AudioTrack is a resolved audio segment: a file, its start offset on the
// frame timeline, and a gain envelope.
type AudioTrack struct {
	Path       string
	StartFrame int
	// DurationSec is the track's probed length in seconds, normally filled
	// from AudioDuration. Zero means unknown; fade-outs then anchor to the
	// video's end instead of the track's.
	DurationSec float64
	// Gain scales the track, 1.0 when zero.
	Gain float64
	// FadeInSec and FadeOutSec shape the envelope edges.
	FadeInSec  float64
	FadeOutSec float64
}

// StreamSpec describes one encode session.
type StreamSpec struct {
	Width       int
	Height      int
	FPS         int
	TotalFrames int
	OutputPath  string
	// Codec is an ffmpeg encoder name; empty selects the best available
	// hardware encoder, falling back to libx264.
	Codec string
	// Quality is encoder-specific (CRF for x264, CQ for NVENC, bitrate
	// units for VideoToolbox); zero selects a per-codec default.
	Quality int
	Audio   []AudioTrack
}

// EncodingError wraps an ffmpeg failure together with its captured output.
// It is passed through unmodified and terminates the job.
type EncodingError struct {
	Output string
	Err    error
}

func (e *EncodingError) Error() string {
	msg := fmt.Sprintf("encoding failed: %v", e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += "\nffmpeg output: " + out
	}
	return msg
}

func (e *EncodingError) Unwrap() error { return e.Err }

// FFmpeg is a running encode session. It implements render.FrameSink:
// WriteFrame must be called with strictly increasing, gap-free frame
// indices, which the scheduler's reordering buffer guarantees.
type FFmpeg struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	output captureBuffer
	frames int
}

// captureBuffer collects ffmpeg's combined output. os/exec's copier
// goroutine writes it while WriteFrame's error path may read it, so both
// sides lock.
type captureBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (c *captureBuffer) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

func (c *captureBuffer) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

// Start spawns ffmpeg for the spec. Close must be called to finish the file.
func Start(ctx context.Context, spec StreamSpec) (*FFmpeg, error) {
	codec := spec.Codec
	if codec == "" {
		codec = BestH264Encoder()
	}
	args := buildArgs(spec, codec)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	f := &FFmpeg{cmd: cmd}
	cmd.Stdout = &f.output
	cmd.Stderr = &f.output

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &EncodingError{Err: fmt.Errorf("stdin pipe: %w", err)}
	}
	f.stdin = stdin

	if err := cmd.Start(); err != nil {
		return nil, &EncodingError{Err: fmt.Errorf("ffmpeg start: %w", err)}
	}
	return f, nil
}

// WriteFrame streams one frame's raw RGBA bytes and returns the buffer to
// the frame pool.
func (f *FFmpeg) WriteFrame(frame int, img *image.RGBA) error {
	defer system.PutFrame(img)
	if _, err := f.stdin.Write(img.Pix); err != nil {
		return &EncodingError{Output: f.output.String(), Err: fmt.Errorf("write frame %d: %w", frame, err)}
	}
	f.frames++
	return nil
}

// Close ends the stream and waits for ffmpeg to finish the container.
func (f *FFmpeg) Close() error {
	f.stdin.Close()
	if err := f.cmd.Wait(); err != nil {
		return &EncodingError{Output: f.output.String(), Err: fmt.Errorf("ffmpeg wait: %w", err)}
	}
	return nil
}

// Abort kills the encoder without finishing the file, for cancelled jobs.
func (f *FFmpeg) Abort() {
	f.stdin.Close()
	if f.cmd.Process != nil {
		f.cmd.Process.Kill()
	}
	f.cmd.Wait()
}

// FramesWritten reports how many frames reached the encoder.
func (f *FFmpeg) FramesWritten() int { return f.frames }

func buildArgs(spec StreamSpec, codec string) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", spec.Width, spec.Height),
		"-framerate", fmt.Sprintf("%d", spec.FPS),
		"-i", "-",
	}
	for _, track := range spec.Audio {
		args = append(args, "-i", track.Path)
	}

	if len(spec.Audio) > 0 {
		args = append(args, "-filter_complex", audioFilter(spec))
		args = append(args, "-map", "0:v", "-map", "[aout]", "-shortest")
	}

	args = append(args, "-pix_fmt", "yuv420p", "-c:v", codec)
	args = append(args, qualityArgs(codec, spec.Quality)...)
	args = append(args, spec.OutputPath)
	return args
}

// audioFilter delays each track to its start frame, applies its gain
// envelope, and mixes everything into [aout].
func audioFilter(spec StreamSpec) string {
	var sb strings.Builder
	labels := make([]string, 0, len(spec.Audio))

	for i, track := range spec.Audio {
		delayMs := track.StartFrame * 1000 / spec.FPS
		gain := track.Gain
		if gain == 0 {
			gain = 1
		}

		filters := []string{fmt.Sprintf("adelay=%d|%d", delayMs, delayMs)}
		if track.FadeInSec > 0 {
			filters = append(filters, fmt.Sprintf("afade=t=in:d=%g", track.FadeInSec))
		}
		if track.FadeOutSec > 0 {
			// Fade toward whichever ends first, the video or the track
			// itself; fading past the track's end would be a no-op.
			end := float64(spec.TotalFrames) / float64(spec.FPS)
			if track.DurationSec > 0 {
				if trackEnd := float64(track.StartFrame)/float64(spec.FPS) + track.DurationSec; trackEnd < end {
					end = trackEnd
				}
			}
			filters = append(filters, fmt.Sprintf("afade=t=out:st=%g:d=%g", end-track.FadeOutSec, track.FadeOutSec))
		}
		filters = append(filters, fmt.Sprintf("volume=%g", gain))

		label := fmt.Sprintf("[a%d]", i)
		fmt.Fprintf(&sb, "[%d:a]%s%s;", i+1, strings.Join(filters, ","), label)
		labels = append(labels, label)
	}

	if len(labels) == 1 {
		fmt.Fprintf(&sb, "%sanull[aout]", labels[0])
	} else {
		fmt.Fprintf(&sb, "%samix=inputs=%d:duration=longest:dropout_transition=3[aout]",
			strings.Join(labels, ""), len(labels))
	}
	return sb.String()
}

func qualityArgs(codec string, quality int) []string {
	if quality == 0 {
		switch codec {
		case "h264_videotoolbox":
			quality = 75
		case "h264_nvenc":
			quality = 28
		default:
			quality = 23
		}
	}
	switch codec {
	case "h264_videotoolbox":
		// VideoToolbox does not reliably support -q:v; use bitrate.
		return []string{"-b:v", fmt.Sprintf("%dk", quality*100)}
	case "h264_nvenc":
		return []string{"-cq", fmt.Sprintf("%d", quality)}
	default: // libx264
		return []string{"-crf", fmt.Sprintf("%d", quality), "-preset", "medium"}
	}
}
