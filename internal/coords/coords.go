// Package coords defines reaction coordinates: scalar functions of the
// simulation state with a sampling window and resolution, used by
// observers and biasing schemes.
package coords

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/mcmol/internal/geom"
	"github.com/san-kum/mcmol/internal/particle"
	"github.com/san-kum/mcmol/internal/space"
)

// Coordinate evaluates one scalar property of the system and knows its
// sampling window.
type Coordinate struct {
	Name     string
	Min, Max float64
	BinWidth float64
	f        func() float64
}

func newCoordinate(name string, min, max, binWidth float64, f func() float64) (*Coordinate, error) {
	if max <= min {
		return nil, fmt.Errorf("coords: %s window [%g,%g]", name, min, max)
	}
	if binWidth <= 0 || binWidth > max-min {
		return nil, fmt.Errorf("coords: %s bin width %g for window [%g,%g]", name, binWidth, min, max)
	}
	return &Coordinate{Name: name, Min: min, Max: max, BinWidth: binWidth, f: f}, nil
}

// Value evaluates the coordinate on the current canonical state.
func (c *Coordinate) Value() float64 { return c.f() }

// InRange reports whether v lies inside the sampling window.
func (c *Coordinate) InRange(v float64) bool { return v >= c.Min && v <= c.Max }

// Bin maps a value to its bin index within the window.
func (c *Coordinate) Bin(v float64) int {
	return int(math.Round((v - c.Min) / c.BinWidth))
}

// Bins is the number of bins spanning the window.
func (c *Coordinate) Bins() int { return c.Bin(c.Max) + 1 }

// NewSystemProperty builds a coordinate over a whole-system scalar:
// V, Lx, Ly, Lz (or height), radius, Q, N.
func NewSystemProperty(spc *space.Space, property string, min, max, binWidth float64) (*Coordinate, error) {
	var f func() float64
	switch property {
	case "V":
		f = func() float64 { return spc.Geo.Volume() }
	case "Lx":
		f = func() float64 { return spc.Geo.Length().X }
	case "Ly":
		f = func() float64 { return spc.Geo.Length().Y }
	case "Lz", "height":
		f = func() float64 { return spc.Geo.Length().Z }
	case "radius":
		f = func() float64 { return spc.Geo.Length().X / 2 }
	case "Q":
		f = func() float64 { return spc.Charge() }
	case "N":
		f = func() float64 { return float64(spc.NumActive()) }
	default:
		return nil, fmt.Errorf("coords: unknown system property %q", property)
	}
	return newCoordinate("system/"+property, min, max, binWidth, f)
}

// NewAtomProperty builds a coordinate over one particle: x, y, z, q, R.
func NewAtomProperty(spc *space.Space, index int, property string, min, max, binWidth float64) (*Coordinate, error) {
	if index < 0 || index >= len(spc.P) {
		return nil, fmt.Errorf("coords: atom index %d out of range", index)
	}
	var f func() float64
	switch property {
	case "x":
		f = func() float64 { return spc.P[index].Pos.X }
	case "y":
		f = func() float64 { return spc.P[index].Pos.Y }
	case "z":
		f = func() float64 { return spc.P[index].Pos.Z }
	case "q":
		f = func() float64 { return spc.P[index].Charge }
	case "R":
		f = func() float64 { return spc.P[index].Radius }
	default:
		return nil, fmt.Errorf("coords: unknown atom property %q", property)
	}
	return newCoordinate(fmt.Sprintf("atom%d/%s", index, property), min, max, binWidth, f)
}

// NewMoleculeProperty builds a coordinate over one group: confid,
// com_x, com_y, com_z, N, Q, mu_x, mu_y, mu_z, mu, angle. The angle is
// measured between the group's principal axis of gyration and dir.
func NewMoleculeProperty(spc *space.Space, gi int, property string, dir geom.Point, min, max, binWidth float64) (*Coordinate, error) {
	if gi < 0 || gi >= len(spc.Groups) {
		return nil, fmt.Errorf("coords: group index %d out of range", gi)
	}
	g := &spc.Groups[gi]
	var f func() float64
	switch property {
	case "confid":
		f = func() float64 { return float64(g.ConfID) }
	case "com_x":
		f = func() float64 { return g.CM.X }
	case "com_y":
		f = func() float64 { return g.CM.Y }
	case "com_z":
		f = func() float64 { return g.CM.Z }
	case "N":
		f = func() float64 { return float64(g.Size()) }
	case "Q":
		f = func() float64 { return g.NetCharge() }
	case "mu_x":
		f = func() float64 { return groupDipole(spc, g).X }
	case "mu_y":
		f = func() float64 { return groupDipole(spc, g).Y }
	case "mu_z":
		f = func() float64 { return groupDipole(spc, g).Z }
	case "mu":
		f = func() float64 { return r3.Norm(groupDipole(spc, g)) }
	case "angle":
		if dir == (geom.Point{}) {
			return nil, fmt.Errorf("coords: angle property needs a reference direction")
		}
		axis := r3.Unit(dir)
		f = func() float64 { return principalAngle(spc, g, axis) }
	default:
		return nil, fmt.Errorf("coords: unknown molecule property %q", property)
	}
	return newCoordinate(fmt.Sprintf("molecule%d/%s", gi, property), min, max, binWidth, f)
}

// NewMassCenterSeparation builds a coordinate measuring the distance
// between two group mass centers, with dir masking the components that
// contribute.
func NewMassCenterSeparation(spc *space.Space, gi, gj int, dir geom.Point, min, max, binWidth float64) (*Coordinate, error) {
	if gi < 0 || gi >= len(spc.Groups) || gj < 0 || gj >= len(spc.Groups) || gi == gj {
		return nil, fmt.Errorf("coords: separation between groups %d and %d", gi, gj)
	}
	if dir == (geom.Point{}) {
		dir = geom.Point{X: 1, Y: 1, Z: 1}
	}
	g1, g2 := &spc.Groups[gi], &spc.Groups[gj]
	f := func() float64 {
		d := geom.Point{
			X: (g1.CM.X - g2.CM.X) * dir.X,
			Y: (g1.CM.Y - g2.CM.Y) * dir.Y,
			Z: (g1.CM.Z - g2.CM.Z) * dir.Z,
		}
		spc.Geo.Boundary(&d)
		return r3.Norm(d)
	}
	return newCoordinate(fmt.Sprintf("separation%d-%d", gi, gj), min, max, binWidth, f)
}

func groupDipole(spc *space.Space, g *particle.Group) geom.Point {
	first, boundary := g.ActiveRange()
	return particle.DipoleMoment(spc.P[first:boundary], spc.Geo.Boundary, g.CM)
}

// principalAngle is the angle between the eigenvector of the largest
// gyration eigenvalue and the reference axis, folded into [0, pi/2].
func principalAngle(spc *space.Space, g *particle.Group, axis geom.Point) float64 {
	first, boundary := g.ActiveRange()
	s := particle.Gyration(spc.P[first:boundary], spc.Geo.Boundary, g.CM)

	var eig mat.EigenSym
	if !eig.Factorize(s, true) {
		return 0
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	vals := eig.Values(nil)
	major := 0
	for i, v := range vals {
		if v > vals[major] {
			major = i
		}
	}
	p := geom.Point{X: vecs.At(0, major), Y: vecs.At(1, major), Z: vecs.At(2, major)}
	cos := math.Abs(r3.Dot(r3.Unit(p), axis))
	if cos > 1 {
		cos = 1
	}
	return math.Acos(cos)
}
