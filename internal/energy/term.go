// Package energy defines capability-typed energy terms and the
// Hamiltonian that sums them. Every value is in thermal units (kT).
// Forbidden configurations yield math.Inf(1), which flows through sums
// like any other number and is never an error.
package energy

import (
	"github.com/san-kum/mcmol/internal/particle"
)

// Term is the minimal contract every energy term satisfies. The actual
// energies come from the optional per-granularity interfaces below; a
// term contributes zero at any granularity it does not implement.
type Term interface {
	Name() string
}

// Index-granularity capabilities treat the passed buffer as fully
// active. Callers with ghost particles in the buffer must use the
// group-granularity capabilities instead, which respect each group's
// active region.

// PairComputer evaluates the interaction of particles i and j.
type PairComputer interface {
	I2I(ps []particle.Particle, i, j int) float64
}

// ParticleAllComputer evaluates particle i against every other
// particle in the buffer.
type ParticleAllComputer interface {
	I2All(ps []particle.Particle, i int) float64
}

// AllPairsComputer evaluates all unordered pairs in the buffer.
type AllPairsComputer interface {
	All2All(ps []particle.Particle) float64
}

// ParticleGroupComputer evaluates particle i against the active
// members of g, excluding the self-pair when i lies inside g.
type ParticleGroupComputer interface {
	I2G(ps []particle.Particle, i int, g *particle.Group) float64
}

// ParticleInternalComputer evaluates energy internal to particle i
// itself, e.g. intramolecular bonds anchored at i.
type ParticleInternalComputer interface {
	IInternal(ps []particle.Particle, i int) float64
}

// ParticleExternalComputer evaluates particle i against an external
// field or constraint.
type ParticleExternalComputer interface {
	IExternal(ps []particle.Particle, i int) float64
}

// GroupGroupComputer evaluates the cross pairs between the active
// members of two disjoint groups. Overlapping groups are a caller
// contract violation; the Hamiltonian checks before dispatching.
type GroupGroupComputer interface {
	G2G(ps []particle.Particle, g1, g2 *particle.Group) float64
}

// GroupAllComputer evaluates the active members of groups[gi] against
// the active members of every other group. Internal pairs of the group
// are excluded.
type GroupAllComputer interface {
	G2All(ps []particle.Particle, groups []particle.Group, gi int) float64
}

// GroupInternalComputer evaluates all unordered active pairs strictly
// inside g.
type GroupInternalComputer interface {
	GInternal(ps []particle.Particle, g *particle.Group) float64
}

// GroupExternalComputer evaluates a group against an external field or
// constraint.
type GroupExternalComputer interface {
	GExternal(ps []particle.Particle, g *particle.Group) float64
}

// ExternalComputer evaluates a whole-system external contribution that
// depends on no particular particle, e.g. the PV term.
type ExternalComputer interface {
	External() float64
}

// SystemComputer overrides how a term enters the full system total.
// Terms whose group-external energy would be double-counted by a sum
// over groups implement this to state their contribution exactly once.
type SystemComputer interface {
	System(ps []particle.Particle, groups []particle.Group) float64
}

// VolumeAware terms are notified whenever the simulation volume
// changes.
type VolumeAware interface {
	SetVolume(v float64)
}
