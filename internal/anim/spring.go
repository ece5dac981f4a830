package anim

import "math"

// SpringConfig describes a damped harmonic oscillator. Zero values fall back
// to the Default preset's parameters.
type SpringConfig struct {
	Mass      float64
	Stiffness float64
	Damping   float64
}

// Presets. Smooth is critically-overdamped and never overshoots, which makes
// it the right choice for opacity and layout animations.
var (
	SpringDefault = SpringConfig{Mass: 1, Stiffness: 100, Damping: 10}
	SpringGentle  = SpringConfig{Mass: 1, Stiffness: 120, Damping: 14}
	SpringWobbly  = SpringConfig{Mass: 1, Stiffness: 180, Damping: 12}
	SpringStiff   = SpringConfig{Mass: 1, Stiffness: 210, Damping: 20}
	SpringSmooth  = SpringConfig{Mass: 1, Stiffness: 100, Damping: 200}
)

// settleTolerance is the deviation from the asymptote below which the spring
// is considered settled (0.1%).
const settleTolerance = 0.001

// maxMeasureFrames caps MeasureSpring's simulation so that a pathological
// configuration cannot loop forever.
const maxMeasureFrames = 100000

// SpringInput parameterizes a single spring sample.
type SpringInput struct {
	Frame float64
	FPS   int
	Config SpringConfig

	// Delay shifts the animation start; frames before Delay return From.
	Delay float64

	// DurationInFrames, when > 0, time-rescales the natural curve so the
	// spring reaches its settled value exactly at that frame count. The
	// curve is not re-simulated with different physics.
	DurationInFrames float64

	// From and To define the animated range. When both are zero the range
	// defaults to 0 -> 1.
	From, To float64
}

// Spring samples the oscillator at frame/fps seconds. The output starts at
// From, converges to To, and is never clamped internally: an underdamped
// configuration overshoots To and oscillates around it. Callers that need a
// bounded value compose with Interpolate and ExtrapolateClamp.
func Spring(in SpringInput) float64 {
	from, to := in.From, in.To
	if from == 0 && to == 0 {
		to = 1
	}
	if in.FPS <= 0 {
		return from
	}

	frame := in.Frame - in.Delay
	if frame <= 0 {
		return from
	}

	cfg := normalizeConfig(in.Config)
	if in.DurationInFrames > 0 {
		natural := float64(MeasureSpring(cfg, in.FPS))
		frame = frame * natural / in.DurationInFrames
	}

	t := frame / float64(in.FPS)
	return from + (to-from)*(1-displacement(cfg, t))
}

// MeasureSpring returns the frame count at which the spring stays within the
// settle tolerance of its asymptote, by simulating frame by frame until the
// decay envelope guarantees convergence or the safety cap is reached.
func MeasureSpring(cfg SpringConfig, fps int) int {
	if fps <= 0 {
		return 0
	}
	cfg = normalizeConfig(cfg)

	omega0 := math.Sqrt(cfg.Stiffness / cfg.Mass)
	zeta := cfg.Damping / (2 * math.Sqrt(cfg.Stiffness*cfg.Mass))
	decay := zeta * omega0
	if zeta > 1 {
		// Overdamped: the slow exponential dominates.
		decay = omega0 * (zeta - math.Sqrt(zeta*zeta-1))
	}

	lastOutside := 0
	for f := 1; f <= maxMeasureFrames; f++ {
		t := float64(f) / float64(fps)
		if math.Abs(displacement(cfg, t)) > settleTolerance {
			lastOutside = f
			continue
		}
		// Inside tolerance now; once the envelope alone is below the
		// tolerance no later excursion can leave it again.
		if decay > 0 && 2*math.Exp(-decay*t) < settleTolerance {
			break
		}
	}
	return lastOutside + 1
}

func normalizeConfig(cfg SpringConfig) SpringConfig {
	if cfg.Mass <= 0 {
		cfg.Mass = SpringDefault.Mass
	}
	if cfg.Stiffness <= 0 {
		cfg.Stiffness = SpringDefault.Stiffness
	}
	if cfg.Damping <= 0 {
		cfg.Damping = SpringDefault.Damping
	}
	return cfg
}

// displacement solves x'' + (c/m)x' + (k/m)x = 0 with x(0)=1, x'(0)=0 in
// closed form. The spring value is 1 - x(t).
func displacement(cfg SpringConfig, t float64) float64 {
	omega0 := math.Sqrt(cfg.Stiffness / cfg.Mass)
	zeta := cfg.Damping / (2 * math.Sqrt(cfg.Stiffness*cfg.Mass))

	switch {
	case zeta < 1:
		// Underdamped: decaying oscillation.
		omegaD := omega0 * math.Sqrt(1-zeta*zeta)
		return math.Exp(-zeta*omega0*t) *
			(math.Cos(omegaD*t) + zeta*omega0/omegaD*math.Sin(omegaD*t))
	case zeta == 1:
		// Critically damped.
		return math.Exp(-omega0*t) * (1 + omega0*t)
	default:
		// Overdamped: sum of two decaying exponentials.
		root := omega0 * math.Sqrt(zeta*zeta-1)
		r1 := -zeta*omega0 + root
		r2 := -zeta*omega0 - root
		return (r2*math.Exp(r1*t) - r1*math.Exp(r2*t)) / (r2 - r1)
	}
}
