package encoder

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildArgsVideoOnly(t *testing.T) {
	spec := StreamSpec{
		Width:      1280,
		Height:     720,
		FPS:        30,
		OutputPath: "out.mp4",
	}
	args := buildArgs(spec, "libx264")
	joined := strings.Join(args, " ")

	assert.Contains(t, joined, "-f rawvideo")
	assert.Contains(t, joined, "-pixel_format rgba")
	assert.Contains(t, joined, "-video_size 1280x720")
	assert.Contains(t, joined, "-framerate 30")
	assert.Contains(t, joined, "-pix_fmt yuv420p")
	assert.Contains(t, joined, "-c:v libx264")
	assert.NotContains(t, joined, "-filter_complex")
	assert.Equal(t, "out.mp4", args[len(args)-1])
}

func TestBuildArgsWithAudio(t *testing.T) {
	spec := StreamSpec{
		Width:       640,
		Height:      360,
		FPS:         25,
		TotalFrames: 250,
		OutputPath:  "out.mp4",
		Audio: []AudioTrack{
			{Path: "music.mp3"},
			{Path: "voice.wav", StartFrame: 50},
		},
	}
	args := buildArgs(spec, "libx264")
	joined := strings.Join(args, " ")

	assert.Contains(t, joined, "-i music.mp3")
	assert.Contains(t, joined, "-i voice.wav")
	assert.Contains(t, joined, "-filter_complex")
	assert.Contains(t, joined, "-map 0:v")
	assert.Contains(t, joined, "-map [aout]")
	assert.Contains(t, joined, "-shortest")
}

func TestAudioFilterSingleTrack(t *testing.T) {
	spec := StreamSpec{
		FPS:         25,
		TotalFrames: 250,
		Audio:       []AudioTrack{{Path: "voice.wav", StartFrame: 50, Gain: 0.5, FadeInSec: 1}},
	}
	filter := audioFilter(spec)

	// 50 frames at 25 fps is a 2000 ms delay.
	assert.Contains(t, filter, "adelay=2000|2000")
	assert.Contains(t, filter, "afade=t=in:d=1")
	assert.Contains(t, filter, "volume=0.5")
	assert.Contains(t, filter, "anull[aout]")
	assert.NotContains(t, filter, "amix")
}

func TestAudioFilterMixesMultipleTracks(t *testing.T) {
	spec := StreamSpec{
		FPS:         30,
		TotalFrames: 300,
		Audio: []AudioTrack{
			{Path: "a.mp3"},
			{Path: "b.mp3", FadeOutSec: 2},
		},
	}
	filter := audioFilter(spec)

	assert.Contains(t, filter, "[1:a]")
	assert.Contains(t, filter, "[2:a]")
	assert.Contains(t, filter, "amix=inputs=2")
	// Zero gain means unity, not silence.
	assert.Contains(t, filter, "volume=1")
	// 300 frames at 30 fps ends at 10s; a 2s fade-out starts at 8s.
	assert.Contains(t, filter, "afade=t=out:st=8:d=2")
}

func TestAudioFilterFadeOutUsesTrackEnd(t *testing.T) {
	// A 10s video with a 5s track starting at 2s: the track ends at 7s, so
	// a 2s fade-out starts at 5s rather than at the video's end.
	spec := StreamSpec{
		FPS:         30,
		TotalFrames: 300,
		Audio: []AudioTrack{
			{Path: "a.mp3", StartFrame: 60, DurationSec: 5, FadeOutSec: 2},
		},
	}
	filter := audioFilter(spec)
	assert.Contains(t, filter, "afade=t=out:st=5:d=2")

	// A track outlasting the video falls back to the video's end.
	spec.Audio[0].DurationSec = 20
	filter = audioFilter(spec)
	assert.Contains(t, filter, "afade=t=out:st=8:d=2")
}

func TestCaptureBufferConcurrentAccess(t *testing.T) {
	// Mirrors the real shape: exec's copier goroutine writes while the
	// error path reads. Run with -race to catch regressions.
	var buf captureBuffer
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			buf.Write([]byte("x"))
		}
	}()
	for i := 0; i < 100; i++ {
		_ = buf.String()
	}
	<-done
	assert.Len(t, buf.String(), 1000)
}

func TestQualityArgs(t *testing.T) {
	assert.Equal(t, []string{"-crf", "18", "-preset", "medium"}, qualityArgs("libx264", 18))
	assert.Equal(t, []string{"-cq", "28"}, qualityArgs("h264_nvenc", 0))
	assert.Equal(t, []string{"-b:v", "7500k"}, qualityArgs("h264_videotoolbox", 0))
	// Default CRF for software encoding.
	assert.Equal(t, []string{"-crf", "23", "-preset", "medium"}, qualityArgs("libx264", 0))
}

func TestEncodingErrorIncludesOutput(t *testing.T) {
	err := &EncodingError{Output: "ffmpeg said no", Err: assert.AnError}
	assert.Contains(t, err.Error(), "ffmpeg said no")
	require.ErrorIs(t, err, assert.AnError)
}
