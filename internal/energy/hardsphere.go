package energy

import (
	"math"

	"github.com/san-kum/mcmol/internal/geom"
	"github.com/san-kum/mcmol/internal/particle"
)

// HardSphereOverlap returns +inf as soon as any evaluated pair
// overlaps and zero otherwise. Within one granularity call it
// short-circuits on the first overlap; group-vs-all still visits every
// group member so that a clean member after an overlapping one cannot
// mask the violation.
type HardSphereOverlap struct {
	Geo geom.Geometry
}

func NewHardSphereOverlap(geo geom.Geometry) *HardSphereOverlap {
	return &HardSphereOverlap{Geo: geo}
}

func (h *HardSphereOverlap) Name() string { return "hardsphere-overlap" }

func (h *HardSphereOverlap) overlap(ps []particle.Particle, i, j int) bool {
	contact := ps[i].Radius + ps[j].Radius
	return h.Geo.SqDist(ps[i].Pos, ps[j].Pos) < contact*contact
}

func (h *HardSphereOverlap) I2I(ps []particle.Particle, i, j int) float64 {
	if h.overlap(ps, i, j) {
		return math.Inf(1)
	}
	return 0
}

func (h *HardSphereOverlap) I2All(ps []particle.Particle, i int) float64 {
	for j := range ps {
		if j != i && h.overlap(ps, i, j) {
			return math.Inf(1)
		}
	}
	return 0
}

func (h *HardSphereOverlap) All2All(ps []particle.Particle) float64 {
	for i := 0; i < len(ps)-1; i++ {
		for j := i + 1; j < len(ps); j++ {
			if h.overlap(ps, i, j) {
				return math.Inf(1)
			}
		}
	}
	return 0
}

func (h *HardSphereOverlap) I2G(ps []particle.Particle, i int, g *particle.Group) float64 {
	first, boundary := g.ActiveRange()
	for j := first; j < boundary; j++ {
		if j != i && h.overlap(ps, i, j) {
			return math.Inf(1)
		}
	}
	return 0
}

func (h *HardSphereOverlap) GInternal(ps []particle.Particle, g *particle.Group) float64 {
	first, boundary := g.ActiveRange()
	for i := first; i < boundary-1; i++ {
		for j := i + 1; j < boundary; j++ {
			if h.overlap(ps, i, j) {
				return math.Inf(1)
			}
		}
	}
	return 0
}

func (h *HardSphereOverlap) G2G(ps []particle.Particle, g1, g2 *particle.Group) float64 {
	f1, b1 := g1.ActiveRange()
	f2, b2 := g2.ActiveRange()
	for i := f1; i < b1; i++ {
		for j := f2; j < b2; j++ {
			if h.overlap(ps, i, j) {
				return math.Inf(1)
			}
		}
	}
	return 0
}

func (h *HardSphereOverlap) G2All(ps []particle.Particle, groups []particle.Group, gi int) float64 {
	g := &groups[gi]
	first, boundary := g.ActiveRange()
	var u float64
	for i := first; i < boundary; i++ {
		for gj := range groups {
			if gj != gi && math.IsInf(h.I2G(ps, i, &groups[gj]), 1) {
				u = math.Inf(1)
			}
		}
	}
	return u
}
