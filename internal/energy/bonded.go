package energy

import (
	"fmt"

	"github.com/san-kum/mcmol/internal/geom"
	"github.com/san-kum/mcmol/internal/particle"
	"github.com/san-kum/mcmol/internal/potential"
)

type bondKey struct{ i, j int }

func newBondKey(i, j int) bondKey {
	if i > j {
		i, j = j, i
	}
	return bondKey{i, j}
}

// Bonded evaluates harmonic bonds keyed by unordered absolute particle
// index pairs. Only the listed pairs interact; everything else is
// zero.
type Bonded struct {
	Geo   geom.Geometry
	bonds map[bondKey]*potential.Harmonic
	byIdx map[int][]bondKey
}

func NewBonded(geo geom.Geometry) *Bonded {
	return &Bonded{
		Geo:   geo,
		bonds: make(map[bondKey]*potential.Harmonic),
		byIdx: make(map[int][]bondKey),
	}
}

func (b *Bonded) Name() string { return "bonded" }

// AddBond registers a harmonic bond between absolute indices i and j.
func (b *Bonded) AddBond(i, j int, h *potential.Harmonic) error {
	if i == j || i < 0 || j < 0 {
		return fmt.Errorf("energy: bond between indices %d and %d", i, j)
	}
	k := newBondKey(i, j)
	if _, dup := b.bonds[k]; dup {
		return fmt.Errorf("energy: duplicate bond %d-%d", i, j)
	}
	b.bonds[k] = h
	b.byIdx[i] = append(b.byIdx[i], k)
	b.byIdx[j] = append(b.byIdx[j], k)
	return nil
}

func (b *Bonded) NumBonds() int { return len(b.bonds) }

func (b *Bonded) eval(ps []particle.Particle, k bondKey) float64 {
	h := b.bonds[k]
	return h.Energy(&ps[k.i], &ps[k.j], b.Geo.SqDist(ps[k.i].Pos, ps[k.j].Pos))
}

func (b *Bonded) I2I(ps []particle.Particle, i, j int) float64 {
	k := newBondKey(i, j)
	if _, ok := b.bonds[k]; !ok {
		return 0
	}
	return b.eval(ps, k)
}

// IInternal sums every bond anchored at particle i, so that a single
// particle move accounts for all springs it stretches.
func (b *Bonded) IInternal(ps []particle.Particle, i int) float64 {
	var u float64
	for _, k := range b.byIdx[i] {
		u += b.eval(ps, k)
	}
	return u
}

func (b *Bonded) All2All(ps []particle.Particle) float64 {
	var u float64
	for k := range b.bonds {
		u += b.eval(ps, k)
	}
	return u
}

func (b *Bonded) GInternal(ps []particle.Particle, g *particle.Group) float64 {
	first, boundary := g.ActiveRange()
	var u float64
	for k := range b.bonds {
		if k.i >= first && k.i < boundary && k.j >= first && k.j < boundary {
			u += b.eval(ps, k)
		}
	}
	return u
}

func (b *Bonded) G2G(ps []particle.Particle, g1, g2 *particle.Group) float64 {
	var u float64
	for k := range b.bonds {
		if (g1.Contains(k.i, false) && g2.Contains(k.j, false)) ||
			(g2.Contains(k.i, false) && g1.Contains(k.j, false)) {
			u += b.eval(ps, k)
		}
	}
	return u
}
