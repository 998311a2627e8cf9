package energy

import (
	"fmt"
	"strings"

	"github.com/san-kum/mcmol/internal/particle"
)

// Hamiltonian sums energy terms at every granularity. It owns the
// terms registered through Register and additionally consults, without
// owning, terms attached through Reference. A term contributes zero at
// any granularity it does not implement.
type Hamiltonian struct {
	owned []Term
	refs  []Term
}

func NewHamiltonian(terms ...Term) *Hamiltonian {
	h := &Hamiltonian{}
	for _, t := range terms {
		h.Register(t)
	}
	return h
}

// Register transfers ownership of a term to the Hamiltonian.
func (h *Hamiltonian) Register(t Term) { h.owned = append(h.owned, t) }

// Reference attaches an externally owned term. It is consulted in all
// sums but its lifetime belongs to the caller.
func (h *Hamiltonian) Reference(t Term) { h.refs = append(h.refs, t) }

// each invokes fn on every registered and referenced term.
func (h *Hamiltonian) each(fn func(Term)) {
	for _, t := range h.owned {
		fn(t)
	}
	for _, t := range h.refs {
		fn(t)
	}
}

func (h *Hamiltonian) I2I(ps []particle.Particle, i, j int) float64 {
	var u float64
	h.each(func(t Term) {
		if c, ok := t.(PairComputer); ok {
			u += c.I2I(ps, i, j)
		}
	})
	return u
}

func (h *Hamiltonian) I2All(ps []particle.Particle, i int) float64 {
	var u float64
	h.each(func(t Term) {
		if c, ok := t.(ParticleAllComputer); ok {
			u += c.I2All(ps, i)
		}
	})
	return u
}

func (h *Hamiltonian) All2All(ps []particle.Particle) float64 {
	var u float64
	h.each(func(t Term) {
		if c, ok := t.(AllPairsComputer); ok {
			u += c.All2All(ps)
		}
	})
	return u
}

func (h *Hamiltonian) I2G(ps []particle.Particle, i int, g *particle.Group) float64 {
	var u float64
	h.each(func(t Term) {
		if c, ok := t.(ParticleGroupComputer); ok {
			u += c.I2G(ps, i, g)
		}
	})
	return u
}

func (h *Hamiltonian) IInternal(ps []particle.Particle, i int) float64 {
	var u float64
	h.each(func(t Term) {
		if c, ok := t.(ParticleInternalComputer); ok {
			u += c.IInternal(ps, i)
		}
	})
	return u
}

func (h *Hamiltonian) IExternal(ps []particle.Particle, i int) float64 {
	var u float64
	h.each(func(t Term) {
		if c, ok := t.(ParticleExternalComputer); ok {
			u += c.IExternal(ps, i)
		}
	})
	return u
}

// ITotal is the complete energy of particle i: its interactions with
// the rest of the system, external fields, and internal contributions.
// When groups is non-nil the pair part is composed group by group so
// that ghost particles are excluded; a nil group list falls back to
// I2All over the full buffer.
func (h *Hamiltonian) ITotal(ps []particle.Particle, groups []particle.Group, i int) float64 {
	var u float64
	if groups == nil {
		u = h.I2All(ps, i)
	} else {
		for gi := range groups {
			u += h.I2G(ps, i, &groups[gi])
		}
	}
	return u + h.IExternal(ps, i) + h.IInternal(ps, i)
}

// G2G sums the cross interaction of two groups. Overlapping groups
// would double-count pairs, so they fail fast.
func (h *Hamiltonian) G2G(ps []particle.Particle, g1, g2 *particle.Group) float64 {
	if groupsOverlap(g1, g2) {
		f1, l1 := g1.Range()
		f2, l2 := g2.Range()
		panic(fmt.Sprintf("energy: overlapping groups [%d,%d) and [%d,%d) in group-group energy", f1, l1, f2, l2))
	}
	var u float64
	h.each(func(t Term) {
		if c, ok := t.(GroupGroupComputer); ok {
			u += c.G2G(ps, g1, g2)
		}
	})
	return u
}

func (h *Hamiltonian) G2All(ps []particle.Particle, groups []particle.Group, gi int) float64 {
	var u float64
	h.each(func(t Term) {
		if c, ok := t.(GroupAllComputer); ok {
			u += c.G2All(ps, groups, gi)
		}
	})
	return u
}

func (h *Hamiltonian) GInternal(ps []particle.Particle, g *particle.Group) float64 {
	var u float64
	h.each(func(t Term) {
		if c, ok := t.(GroupInternalComputer); ok {
			u += c.GInternal(ps, g)
		}
	})
	return u
}

func (h *Hamiltonian) GExternal(ps []particle.Particle, g *particle.Group) float64 {
	var u float64
	h.each(func(t Term) {
		if c, ok := t.(GroupExternalComputer); ok {
			u += c.GExternal(ps, g)
		}
	})
	return u
}

// GTotal is the complete energy of a group: its cross interaction with
// the rest of the system, its internal pairs, and its external fields.
func (h *Hamiltonian) GTotal(ps []particle.Particle, groups []particle.Group, gi int) float64 {
	g := &groups[gi]
	return h.G2All(ps, groups, gi) + h.GInternal(ps, g) + h.GExternal(ps, g)
}

func (h *Hamiltonian) External() float64 {
	var u float64
	h.each(func(t Term) {
		if c, ok := t.(ExternalComputer); ok {
			u += c.External()
		}
	})
	return u
}

// SetVolume notifies every volume-aware term.
func (h *Hamiltonian) SetVolume(v float64) {
	h.each(func(t Term) {
		if c, ok := t.(VolumeAware); ok {
			c.SetVolume(v)
		}
	})
}

func (h *Hamiltonian) Info() string {
	var names []string
	h.each(func(t Term) { names = append(names, t.Name()) })
	return "hamiltonian[" + strings.Join(names, " + ") + "]"
}

func groupsOverlap(g1, g2 *particle.Group) bool {
	f1, l1 := g1.Range()
	f2, l2 := g2.Range()
	return f1 < l2 && f2 < l1
}
