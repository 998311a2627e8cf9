// Package potential defines pairwise interaction energies between
// particles. All energies are in thermal units (kT) and distances in
// the same unit as particle positions.
package potential

import (
	"fmt"
	"math"

	"github.com/san-kum/mcmol/internal/particle"
)

// Pair evaluates the interaction energy of two particles given their
// squared separation. Implementations must be pure functions of their
// arguments so that terms can evaluate them from worker goroutines.
type Pair interface {
	Energy(a, b *particle.Particle, sqdist float64) float64
	Name() string
}

// LennardJones is the 12-6 potential with a single epsilon/sigma for
// all species pairs.
type LennardJones struct {
	Eps   float64
	Sigma float64
	s6    float64
}

func NewLennardJones(eps, sigma float64) (*LennardJones, error) {
	if eps < 0 || sigma <= 0 {
		return nil, fmt.Errorf("potential: lennard-jones eps=%g sigma=%g", eps, sigma)
	}
	s2 := sigma * sigma
	return &LennardJones{Eps: eps, Sigma: sigma, s6: s2 * s2 * s2}, nil
}

func (lj *LennardJones) Energy(_, _ *particle.Particle, sqdist float64) float64 {
	x := lj.s6 / (sqdist * sqdist * sqdist)
	return 4 * lj.Eps * (x*x - x)
}

func (lj *LennardJones) Name() string { return "lennard-jones" }

// Coulomb is the unscreened electrostatic potential, u = lB*qa*qb/r,
// with the Bjerrum length lB setting the strength in kT.
type Coulomb struct {
	Bjerrum float64
}

func NewCoulomb(bjerrum float64) (*Coulomb, error) {
	if bjerrum <= 0 {
		return nil, fmt.Errorf("potential: bjerrum length %g", bjerrum)
	}
	return &Coulomb{Bjerrum: bjerrum}, nil
}

func (c *Coulomb) Energy(a, b *particle.Particle, sqdist float64) float64 {
	if a.Charge == 0 || b.Charge == 0 {
		return 0
	}
	return c.Bjerrum * a.Charge * b.Charge / math.Sqrt(sqdist)
}

func (c *Coulomb) Name() string { return "coulomb" }

// HardSphere returns +inf when two particles overlap, zero otherwise.
// Contact distance is the sum of the particle radii.
type HardSphere struct{}

func (HardSphere) Energy(a, b *particle.Particle, sqdist float64) float64 {
	contact := a.Radius + b.Radius
	if sqdist < contact*contact {
		return math.Inf(1)
	}
	return 0
}

func (HardSphere) Name() string { return "hardsphere" }

// Harmonic is a spring potential about an equilibrium distance,
// u = k/2 (r - req)^2.
type Harmonic struct {
	K   float64
	Req float64
}

func NewHarmonic(k, req float64) (*Harmonic, error) {
	if k < 0 || req < 0 {
		return nil, fmt.Errorf("potential: harmonic k=%g req=%g", k, req)
	}
	return &Harmonic{K: k, Req: req}, nil
}

func (h *Harmonic) Energy(_, _ *particle.Particle, sqdist float64) float64 {
	d := math.Sqrt(sqdist) - h.Req
	return 0.5 * h.K * d * d
}

func (h *Harmonic) Name() string { return "harmonic" }

// Combined sums a list of pair potentials.
type Combined struct {
	Parts []Pair
}

func (c *Combined) Energy(a, b *particle.Particle, sqdist float64) float64 {
	var u float64
	for _, p := range c.Parts {
		u += p.Energy(a, b, sqdist)
	}
	return u
}

func (c *Combined) Name() string {
	s := "combined("
	for i, p := range c.Parts {
		if i > 0 {
			s += "+"
		}
		s += p.Name()
	}
	return s + ")"
}
