package encoder

import (
	"fmt"
	"os/exec"
	"strings"
)

// hardware encoder preference order: VideoToolbox (macOS), NVENC (NVIDIA),
// then software libx264.
var hwEncoders = []string{"h264_videotoolbox", "h264_nvenc"}

// BestH264Encoder probes ffmpeg once for the fastest available H.264
// encoder and falls back to libx264.
func BestH264Encoder() string {
	cmd := exec.Command("ffmpeg", "-encoders")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "libx264"
	}
	for _, enc := range hwEncoders {
		if strings.Contains(string(out), enc) {
			return enc
		}
	}
	return "libx264"
}

// AudioDuration returns a media file's duration in seconds via ffprobe.
func AudioDuration(path string) (float64, error) {
	cmd := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	var duration float64
	if _, err := fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &duration); err != nil {
		return 0, fmt.Errorf("ffprobe %s: parse duration: %w", path, err)
	}
	return duration, nil
}
