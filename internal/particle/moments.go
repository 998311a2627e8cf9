package particle

import (
	"errors"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/mcmol/internal/geom"
)

var ErrNoMass = errors.New("particle: mass center of empty or massless set")

// MassCenter returns the mass-weighted center of the given particles.
// Distances are accumulated relative to the first particle and wrapped
// through the boundary function, so the result is meaningful under
// periodic boundaries as long as the set spans less than half the box.
func MassCenter(ps []Particle, boundary geom.BoundaryFunc) (geom.Point, error) {
	if len(ps) == 0 {
		return geom.Point{}, ErrNoMass
	}
	origin := ps[0].Pos
	var sum geom.Point
	mass := 0.0
	for i := range ps {
		m := ps[i].Mass
		d := r3.Sub(ps[i].Pos, origin)
		boundary(&d)
		sum = r3.Add(sum, r3.Scale(m, d))
		mass += m
	}
	if mass <= 0 {
		return geom.Point{}, ErrNoMass
	}
	cm := r3.Add(origin, r3.Scale(1/mass, sum))
	boundary(&cm)
	return cm, nil
}

// MonopoleMoment is the net charge of the set.
func MonopoleMoment(ps []Particle) float64 {
	q := 0.0
	for i := range ps {
		q += ps[i].Charge
	}
	return q
}

// DipoleMoment sums charge-weighted distances from the origin point plus
// any intrinsic particle dipoles.
func DipoleMoment(ps []Particle, boundary geom.BoundaryFunc, origin geom.Point) geom.Point {
	var mu geom.Point
	for i := range ps {
		d := r3.Sub(ps[i].Pos, origin)
		boundary(&d)
		mu = r3.Add(mu, r3.Scale(ps[i].Charge, d))
		mu = r3.Add(mu, ps[i].Dipole)
	}
	return mu
}

// Gyration builds the mass-weighted gyration tensor about the given mass
// center.
func Gyration(ps []Particle, boundary geom.BoundaryFunc, cm geom.Point) *mat.SymDense {
	s := mat.NewSymDense(3, nil)
	mass := 0.0
	for i := range ps {
		m := ps[i].Mass
		d := r3.Sub(ps[i].Pos, cm)
		boundary(&d)
		v := [3]float64{d.X, d.Y, d.Z}
		for a := 0; a < 3; a++ {
			for b := a; b < 3; b++ {
				s.SetSym(a, b, s.At(a, b)+m*v[a]*v[b])
			}
		}
		mass += m
	}
	if mass > 0 {
		s.ScaleSym(1/mass, s)
	}
	return s
}
