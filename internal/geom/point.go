package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/mcmol/internal/rng"
)

// Point is a position or direction in 3-space. All vector arithmetic goes
// through gonum's r3 package.
type Point = r3.Vec

// BoundaryFunc wraps a point back into the simulation container in place.
type BoundaryFunc func(*Point)

// Rotation is a rotation about an axis through the origin.
type Rotation = r3.Rotation

// NewRotation returns a rotation of alpha radians about the given axis.
func NewRotation(alpha float64, axis Point) Rotation {
	return r3.NewRotation(alpha, axis)
}

// RandomUnitVector draws an isotropic direction by rejection sampling
// inside the unit sphere.
func RandomUnitVector(rnd *rng.Source) Point {
	for {
		p := Point{X: 2 * rnd.Half(), Y: 2 * rnd.Half(), Z: 2 * rnd.Half()}
		n2 := r3.Norm2(p)
		if n2 > 1e-6 && n2 <= 1 {
			return r3.Scale(1/math.Sqrt(n2), p)
		}
	}
}
