package move

import "fmt"

// Default clamp window for tuned amplitudes.
const (
	DefaultTuneMin = 1e-4
	DefaultTuneMax = 10.0
)

// Tunable is implemented by moves whose amplitudes can be adjusted
// toward a target acceptance between sweeps.
type Tunable interface {
	Tune(t *Tuner)
}

// Tuner nudges a displacement amplitude toward a target acceptance
// ratio. Scaling is clamped per step and the amplitude confined to
// [Min,Max] so a run of unlucky attempts cannot collapse or explode
// the step size.
type Tuner struct {
	Target   float64
	Min, Max float64
}

func NewTuner(target, min, max float64) (*Tuner, error) {
	if target <= 0 || target >= 1 {
		return nil, fmt.Errorf("move: tuner target %g outside (0,1)", target)
	}
	if min <= 0 || max <= min {
		return nil, fmt.Errorf("move: tuner bounds [%g,%g]", min, max)
	}
	return &Tuner{Target: target, Min: min, Max: max}, nil
}

// Adjust returns the new amplitude given the currently observed
// acceptance ratio.
func (t *Tuner) Adjust(dp, acceptance float64) float64 {
	factor := acceptance / t.Target
	if factor < 0.5 {
		factor = 0.5
	} else if factor > 2 {
		factor = 2
	}
	dp *= factor
	if dp < t.Min {
		return t.Min
	}
	if dp > t.Max {
		return t.Max
	}
	return dp
}
