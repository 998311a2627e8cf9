// Package move implements Metropolis Monte Carlo moves over a shared
// simulation state. Moves run strictly sequentially; each attempt
// mutates the trial buffer, evaluates the restricted energy change and
// either commits or restores.
package move

import (
	"fmt"
	"math"

	"github.com/san-kum/mcmol/internal/energy"
	"github.com/san-kum/mcmol/internal/rng"
	"github.com/san-kum/mcmol/internal/space"
)

// stepper is the per-move half of an attempt. Implementations mutate
// only the trial state in trialMove and must restore it bit for bit in
// rejectMove. trialMove reports false when the move has no valid
// target this attempt; such attempts are skipped without touching the
// acceptance statistic.
type stepper interface {
	trialMove() bool
	energyChange() float64
	acceptMove(du float64)
	rejectMove()
}

// Mover is the public face of a move.
type Mover interface {
	Name() string
	Move(n int) float64
	Attempts() uint64
	Accepted() uint64
	Acceptance() float64
	Info() string
}

// Base carries the attempt loop, Metropolis test, run-fraction gate
// and counters shared by all moves. Concrete moves embed it and bind
// themselves as the stepper.
type Base struct {
	name        string
	Spc         *space.Space
	H           *energy.Hamiltonian
	Rnd         *rng.Source
	runFraction float64

	impl     stepper
	attempts uint64
	accepted uint64
	duSum    float64
}

func newBase(name string, spc *space.Space, h *energy.Hamiltonian, rnd *rng.Source, runFraction float64) (Base, error) {
	if spc == nil || h == nil || rnd == nil {
		return Base{}, fmt.Errorf("move: %s needs space, hamiltonian and rng", name)
	}
	if runFraction < 0 || runFraction > 1 {
		return Base{}, fmt.Errorf("move: %s run fraction %g outside [0,1]", name, runFraction)
	}
	return Base{name: name, Spc: spc, H: h, Rnd: rnd, runFraction: runFraction}, nil
}

func (b *Base) bind(s stepper) { b.impl = s }

func (b *Base) Name() string { return b.name }

// Move performs n independent attempts and returns the cumulative
// energy change over the accepted ones. Attempts skipped by the run
// fraction gate or left without a valid target by trialMove count
// toward the attempt counter only.
func (b *Base) Move(n int) float64 {
	var total float64
	for k := 0; k < n; k++ {
		b.attempts++
		if b.runFraction < 1 && b.Rnd.Float64() >= b.runFraction {
			continue
		}
		if !b.impl.trialMove() {
			continue
		}
		du := b.impl.energyChange()
		if b.metropolis(du) {
			b.accepted++
			b.duSum += du
			total += du
			b.impl.acceptMove(du)
		} else {
			b.impl.rejectMove()
		}
	}
	return total
}

// metropolis accepts with probability min(1, exp(-du)). The uniform
// draw is consumed only for finite positive du.
func (b *Base) metropolis(du float64) bool {
	if math.IsInf(du, 1) {
		return false
	}
	if du <= 0 {
		return true
	}
	return b.Rnd.Float64() < math.Exp(-du)
}

func (b *Base) Attempts() uint64 { return b.attempts }
func (b *Base) Accepted() uint64 { return b.accepted }

// DriftSum is the accumulated energy change of all accepted attempts,
// compared against recomputed totals by the drift checkup.
func (b *Base) DriftSum() float64 { return b.duSum }

func (b *Base) Acceptance() float64 {
	if b.attempts == 0 {
		return 0
	}
	return float64(b.accepted) / float64(b.attempts)
}

func (b *Base) Info() string {
	return fmt.Sprintf("%s: attempts=%d accepted=%d acceptance=%.3f",
		b.name, b.attempts, b.accepted, b.Acceptance())
}
