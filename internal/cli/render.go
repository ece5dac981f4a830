package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/framecast/framecast/internal/asset"
	"github.com/framecast/framecast/internal/config"
	"github.com/framecast/framecast/internal/encoder"
	"github.com/framecast/framecast/internal/engine"
	"github.com/framecast/framecast/internal/project"
	"github.com/framecast/framecast/internal/registry"
	"github.com/framecast/framecast/internal/system"
)

type renderOpts struct {
	output    string
	props     string // JSON object merged over defaultProps
	frames    string // "start:end", half-open
	codec     string
	quality   int
	workers   int
	audio     []string
	audioGain float64
}

func newRenderCmd(root *rootOpts) *cobra.Command {
	opts := renderOpts{audioGain: 1}

	cmd := &cobra.Command{
		Use:   "render <composition-id>",
		Short: "Render a composition to a video file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, root, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "out", "o", "out.mp4", "output video path")
	cmd.Flags().StringVar(&opts.props, "props", "", "input props as a JSON object")
	cmd.Flags().StringVar(&opts.frames, "frames", "", "frame subrange start:end (end exclusive)")
	cmd.Flags().StringVar(&opts.codec, "codec", "", "ffmpeg encoder (default: best available h264)")
	cmd.Flags().IntVar(&opts.quality, "quality", 0, "encoder quality (x264 CRF, NVENC CQ)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "render workers (default: physical cores)")
	cmd.Flags().StringArrayVar(&opts.audio, "audio", nil, "audio track, path[@start-frame], repeatable")
	cmd.Flags().Float64Var(&opts.audioGain, "audio-gain", 1, "gain applied to every audio track")

	return cmd
}

func runRender(cmd *cobra.Command, root *rootOpts, id string, opts *renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	if err := system.InitResourceLimits(); err != nil {
		logger.Debug("raising file limits failed", "err", err)
	}

	cfg, manifest, reg, err := loadProject(root)
	if err != nil {
		return err
	}
	if opts.workers > 0 {
		cfg.Render.Workers = opts.workers
	}

	req := engine.Request{
		CompositionID: id,
		OutputPath:    opts.output,
		Codec:         opts.codec,
		Quality:       opts.quality,
	}
	if req.Props, err = parseProps(opts.props); err != nil {
		return err
	}
	if req.FrameRange, err = parseFrameRange(opts.frames); err != nil {
		return err
	}
	if req.Audio, err = parseAudio(opts.audio, opts.audioGain); err != nil {
		return err
	}

	assets := asset.NewManager(manifest.ResolveAssetRoot())
	eng := engine.New(reg, assets, cfg, logger)
	report, err := eng.RenderMedia(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d frames -> %s (%s, %.1f fps effective)\n",
		report.Composition, report.Frames, report.OutputPath,
		report.TotalTime.Round(10*time.Millisecond), report.EffectiveFPS)
	return nil
}

// loadProject loads the tool config and the manifest, and registers every
// composition the manifest declares.
func loadProject(root *rootOpts) (*config.Config, *project.Manifest, *registry.Registry, error) {
	cfg, err := config.Load(root.config)
	if err != nil {
		return nil, nil, nil, err
	}
	manifest, err := project.Load(root.manifest)
	if err != nil {
		return nil, nil, nil, err
	}
	reg := registry.New()
	if err := manifest.Build(reg); err != nil {
		return nil, nil, nil, err
	}
	return cfg, manifest, reg, nil
}

func parseProps(raw string) (map[string]any, error) {
	if raw == "" {
		return nil, nil
	}
	var props map[string]any
	if err := json.Unmarshal([]byte(raw), &props); err != nil {
		return nil, fmt.Errorf("--props: %w", err)
	}
	return props, nil
}

func parseFrameRange(raw string) (*[2]int, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.SplitN(raw, ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("--frames: want start:end, got %q", raw)
	}
	start, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("--frames: %w", err)
	}
	end, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("--frames: %w", err)
	}
	return &[2]int{start, end}, nil
}

// parseAudio parses "path" or "path@startframe" track flags.
func parseAudio(raw []string, gain float64) ([]encoder.AudioTrack, error) {
	tracks := make([]encoder.AudioTrack, 0, len(raw))
	for _, spec := range raw {
		track := encoder.AudioTrack{Gain: gain}
		if at := strings.LastIndex(spec, "@"); at > 0 {
			start, err := strconv.Atoi(spec[at+1:])
			if err != nil {
				return nil, fmt.Errorf("--audio %q: %w", spec, err)
			}
			track.Path, track.StartFrame = spec[:at], start
		} else {
			track.Path = spec
		}
		tracks = append(tracks, track)
	}
	return tracks, nil
}
