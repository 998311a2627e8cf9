package energy

import (
	"fmt"
	"math"

	"github.com/san-kum/mcmol/internal/geom"
	"github.com/san-kum/mcmol/internal/particle"
)

// ExternalPressure is the isobaric-ensemble volume term. The system
// part is P*V - ln V and every group contributes -N*ln V, with N equal
// to the active size for atomic groups and 1 for molecular ones. The
// exponential of the resulting energy difference reproduces the
// acceptance factor (V'/V)^(N+1) * exp(-P dV).
type ExternalPressure struct {
	P float64
	v float64
}

func NewExternalPressure(pressure float64, geo geom.Geometry) (*ExternalPressure, error) {
	if pressure < 0 {
		return nil, fmt.Errorf("energy: pressure %g", pressure)
	}
	return &ExternalPressure{P: pressure, v: geo.Volume()}, nil
}

func (ep *ExternalPressure) Name() string        { return "isobaric" }
func (ep *ExternalPressure) SetVolume(v float64) { ep.v = v }

func (ep *ExternalPressure) External() float64 {
	return ep.P*ep.v - math.Log(ep.v)
}

func (ep *ExternalPressure) GExternal(_ []particle.Particle, g *particle.Group) float64 {
	n := 1
	if g.Atomic {
		n = g.Size()
	} else if g.Empty() {
		n = 0
	}
	return -float64(n) * math.Log(ep.v)
}

// MassCenterConstrain keeps the mass-center separation of two groups
// inside [Min,Max], returning +inf outside the window. Mass centers
// are recomputed from the buffer passed to each call, so trial and
// canonical configurations are judged independently.
type MassCenterConstrain struct {
	G1, G2   *particle.Group
	Min, Max float64
	Geo      geom.Geometry
}

func NewMassCenterConstrain(g1, g2 *particle.Group, min, max float64, geo geom.Geometry) (*MassCenterConstrain, error) {
	if g1 == nil || g2 == nil || g1 == g2 {
		return nil, fmt.Errorf("energy: mass-center constraint needs two distinct groups")
	}
	if min < 0 || max <= min {
		return nil, fmt.Errorf("energy: mass-center window [%g,%g]", min, max)
	}
	return &MassCenterConstrain{G1: g1, G2: g2, Min: min, Max: max, Geo: geo}, nil
}

func (mc *MassCenterConstrain) Name() string { return "cm-constrain" }

func (mc *MassCenterConstrain) energy(ps []particle.Particle) float64 {
	cm1, err1 := activeMassCenter(ps, mc.G1, mc.Geo.Boundary)
	cm2, err2 := activeMassCenter(ps, mc.G2, mc.Geo.Boundary)
	if err1 != nil || err2 != nil {
		return 0
	}
	d := math.Sqrt(mc.Geo.SqDist(cm1, cm2))
	if d < mc.Min || d > mc.Max {
		return math.Inf(1)
	}
	return 0
}

// GExternal reports the full window energy whenever either constrained
// group is evaluated, so that moving one group sees the constraint.
func (mc *MassCenterConstrain) GExternal(ps []particle.Particle, g *particle.Group) float64 {
	if g != mc.G1 && g != mc.G2 {
		return 0
	}
	return mc.energy(ps)
}

// System counts the constraint once for the whole-system total even
// though both groups report it at group granularity.
func (mc *MassCenterConstrain) System(ps []particle.Particle, _ []particle.Group) float64 {
	return mc.energy(ps)
}

func activeMassCenter(ps []particle.Particle, g *particle.Group, boundary geom.BoundaryFunc) (geom.Point, error) {
	first, bnd := g.ActiveRange()
	return particle.MassCenter(ps[first:bnd], boundary)
}

// RestrictedVolume confines selected groups to an axis-aligned box
// region, returning +inf when a constrained particle leaves it. With
// CMOnly set, only the group mass center is confined.
type RestrictedVolume struct {
	Low, High geom.Point
	Groups    []*particle.Group
	CMOnly    bool
	Geo       geom.Geometry
}

func NewRestrictedVolume(low, high geom.Point, groups []*particle.Group, cmOnly bool, geo geom.Geometry) (*RestrictedVolume, error) {
	if low.X >= high.X || low.Y >= high.Y || low.Z >= high.Z {
		return nil, fmt.Errorf("energy: restricted volume low %v not below high %v", low, high)
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("energy: restricted volume without groups")
	}
	return &RestrictedVolume{Low: low, High: high, Groups: groups, CMOnly: cmOnly, Geo: geo}, nil
}

func (rv *RestrictedVolume) Name() string { return "restricted-volume" }

func (rv *RestrictedVolume) inside(p geom.Point) bool {
	return p.X >= rv.Low.X && p.X <= rv.High.X &&
		p.Y >= rv.Low.Y && p.Y <= rv.High.Y &&
		p.Z >= rv.Low.Z && p.Z <= rv.High.Z
}

func (rv *RestrictedVolume) constrained(g *particle.Group) bool {
	for _, cg := range rv.Groups {
		if cg == g {
			return true
		}
	}
	return false
}

func (rv *RestrictedVolume) GExternal(ps []particle.Particle, g *particle.Group) float64 {
	if !rv.constrained(g) {
		return 0
	}
	if rv.CMOnly {
		cm, err := activeMassCenter(ps, g, rv.Geo.Boundary)
		if err != nil || rv.inside(cm) {
			return 0
		}
		return math.Inf(1)
	}
	first, bnd := g.ActiveRange()
	for i := first; i < bnd; i++ {
		if !rv.inside(ps[i].Pos) {
			return math.Inf(1)
		}
	}
	return 0
}

// IExternal confines single particles of constrained groups; with
// CMOnly the particle level cannot judge the constraint and reports
// zero, leaving it to the group granularity.
func (rv *RestrictedVolume) IExternal(ps []particle.Particle, i int) float64 {
	if rv.CMOnly {
		return 0
	}
	for _, g := range rv.Groups {
		if g.Contains(i, false) {
			if rv.inside(ps[i].Pos) {
				return 0
			}
			return math.Inf(1)
		}
	}
	return 0
}

// EnergyRest absorbs energy differences that the Metropolis
// bookkeeping would otherwise lose, e.g. the ideal-gas factors of
// grand-canonical moves, and reports them as an external contribution.
type EnergyRest struct {
	sum float64
}

func NewEnergyRest() *EnergyRest { return &EnergyRest{} }

func (er *EnergyRest) Name() string      { return "rest" }
func (er *EnergyRest) Add(du float64)    { er.sum += du }
func (er *EnergyRest) External() float64 { return er.sum }
