// Package sim drives Metropolis sampling: sweeps of configured moves
// over one space, energy-trace recording and a final drift checkup.
package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/mcmol/internal/energy"
	"github.com/san-kum/mcmol/internal/move"
	"github.com/san-kum/mcmol/internal/space"
)

// Progress is handed to observers between sweeps. No move runs while
// observers execute, so they may read the space freely.
type Progress struct {
	Sweep  int
	Sweeps int
	Energy float64 // bookkept total, kT
}

// Observer is invoked between sweeps at the configured interval.
type Observer func(p Progress)

// RunConfig controls one sampling run.
type RunConfig struct {
	Sweeps           int
	AttemptsPerSweep int // defaults to the number of active particles
	SampleEvery      int
	TuneEvery        int         // 0 disables amplitude tuning
	Tuner            *move.Tuner // required when TuneEvery > 0
}

// Result summarizes a finished run.
type Result struct {
	Sweeps        int
	InitialEnergy float64
	FinalEnergy   float64
	Drift         float64
	Trace         []float64
	Elapsed       time.Duration
}

// Sampler owns one space, one Hamiltonian and the move set. Moves run
// strictly sequentially; the sampler is not safe for concurrent use.
type Sampler struct {
	Spc       *space.Space
	H         *energy.Hamiltonian
	moves     []move.Mover
	observers []Observer
}

func New(spc *space.Space, h *energy.Hamiltonian, moves []move.Mover) (*Sampler, error) {
	if spc == nil || h == nil {
		return nil, fmt.Errorf("sim: sampler needs a space and a hamiltonian")
	}
	if len(moves) == 0 {
		return nil, fmt.Errorf("sim: sampler needs at least one move")
	}
	return &Sampler{Spc: spc, H: h, moves: moves}, nil
}

func (s *Sampler) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Sampler) Moves() []move.Mover { return s.moves }

// Run performs cfg.Sweeps sweeps. Each sweep gives every move
// AttemptsPerSweep attempts. Cancellation is honored between sweeps
// only; an attempt always runs to completion. The returned result is
// valid even when the context cancels the run early.
func (s *Sampler) Run(ctx context.Context, cfg RunConfig) (*Result, error) {
	if cfg.Sweeps <= 0 {
		return nil, fmt.Errorf("sim: %d sweeps", cfg.Sweeps)
	}
	attempts := cfg.AttemptsPerSweep
	if attempts <= 0 {
		attempts = s.Spc.NumActive()
		if attempts == 0 {
			attempts = 1
		}
	}
	every := cfg.SampleEvery
	if every <= 0 {
		every = 1
	}
	if cfg.TuneEvery > 0 && cfg.Tuner == nil {
		return nil, fmt.Errorf("sim: tune interval %d without a tuner", cfg.TuneEvery)
	}

	start := time.Now()
	u0 := energy.SystemEnergy(s.Spc.P, s.Spc.Groups, s.H)
	res := &Result{InitialEnergy: u0, Trace: []float64{u0}}
	u := u0

	for sweep := 1; sweep <= cfg.Sweeps; sweep++ {
		if err := ctx.Err(); err != nil {
			s.finish(res, u, start)
			return res, err
		}
		for _, m := range s.moves {
			u += m.Move(attempts)
		}
		if cfg.TuneEvery > 0 && sweep%cfg.TuneEvery == 0 {
			for _, m := range s.moves {
				if t, ok := m.(move.Tunable); ok {
					t.Tune(cfg.Tuner)
				}
			}
		}
		res.Sweeps = sweep
		if sweep%every == 0 {
			res.Trace = append(res.Trace, u)
			p := Progress{Sweep: sweep, Sweeps: cfg.Sweeps, Energy: u}
			for _, o := range s.observers {
				o(p)
			}
		}
	}
	s.finish(res, u, start)
	return res, nil
}

// finish recomputes the total independently of the Metropolis
// bookkeeping and records the difference as drift.
func (s *Sampler) finish(res *Result, u float64, start time.Time) {
	res.FinalEnergy = energy.SystemEnergy(s.Spc.P, s.Spc.Groups, s.H)
	res.Drift = res.FinalEnergy - u
	res.Elapsed = time.Since(start)
}

// Info summarizes every move's counters.
func (s *Sampler) Info() string {
	out := ""
	for _, m := range s.moves {
		if out != "" {
			out += "\n"
		}
		out += m.Info()
	}
	return out
}
