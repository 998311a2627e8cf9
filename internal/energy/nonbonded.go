package energy

import (
	"github.com/san-kum/mcmol/internal/geom"
	"github.com/san-kum/mcmol/internal/particle"
	"github.com/san-kum/mcmol/internal/potential"
)

// Nonbonded sums a pair potential over particle pairs under the
// geometry's distance convention. It implements every pairwise
// granularity; group-vs-all is parallelized.
type Nonbonded struct {
	Pot potential.Pair
	Geo geom.Geometry
}

func NewNonbonded(pot potential.Pair, geo geom.Geometry) *Nonbonded {
	return &Nonbonded{Pot: pot, Geo: geo}
}

func (nb *Nonbonded) Name() string { return "nonbonded/" + nb.Pot.Name() }

func (nb *Nonbonded) pair(ps []particle.Particle, i, j int) float64 {
	return nb.Pot.Energy(&ps[i], &ps[j], nb.Geo.SqDist(ps[i].Pos, ps[j].Pos))
}

func (nb *Nonbonded) I2I(ps []particle.Particle, i, j int) float64 {
	return nb.pair(ps, i, j)
}

func (nb *Nonbonded) I2All(ps []particle.Particle, i int) float64 {
	var u float64
	for j := range ps {
		if j != i {
			u += nb.pair(ps, i, j)
		}
	}
	return u
}

func (nb *Nonbonded) All2All(ps []particle.Particle) float64 {
	var u float64
	for i := 0; i < len(ps)-1; i++ {
		for j := i + 1; j < len(ps); j++ {
			u += nb.pair(ps, i, j)
		}
	}
	return u
}

func (nb *Nonbonded) I2G(ps []particle.Particle, i int, g *particle.Group) float64 {
	first, boundary := g.ActiveRange()
	var u float64
	for j := first; j < boundary; j++ {
		if j != i {
			u += nb.pair(ps, i, j)
		}
	}
	return u
}

func (nb *Nonbonded) GInternal(ps []particle.Particle, g *particle.Group) float64 {
	first, boundary := g.ActiveRange()
	var u float64
	for i := first; i < boundary-1; i++ {
		for j := i + 1; j < boundary; j++ {
			u += nb.pair(ps, i, j)
		}
	}
	return u
}

func (nb *Nonbonded) G2G(ps []particle.Particle, g1, g2 *particle.Group) float64 {
	f1, b1 := g1.ActiveRange()
	f2, b2 := g2.ActiveRange()
	var u float64
	for i := f1; i < b1; i++ {
		for j := f2; j < b2; j++ {
			u += nb.pair(ps, i, j)
		}
	}
	return u
}

// G2All evaluates the active members of groups[gi] against the active
// members of every other group, in parallel over the member index.
func (nb *Nonbonded) G2All(ps []particle.Particle, groups []particle.Group, gi int) float64 {
	g := &groups[gi]
	first, boundary := g.ActiveRange()
	n := boundary - first
	return parallelSum(n, func(start, end int) float64 {
		var u float64
		for k := start; k < end; k++ {
			i := first + k
			for gj := range groups {
				if gj == gi {
					continue
				}
				u += nb.I2G(ps, i, &groups[gj])
			}
		}
		return u
	})
}
