// Package geom defines the simulation container contract and the concrete
// container shapes. The sampling kernel only ever talks to the Geometry
// interface: boundary wrapping, squared distances under the boundary
// convention, wall collision tests, random positions and the volume.
package geom

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/mcmol/internal/rng"
)

var ErrVolume = errors.New("geom: volume must be positive")

// Geometry is the container contract used by energy terms and moves.
type Geometry interface {
	// Boundary wraps p back into the container in place.
	Boundary(p *Point)
	// SqDist returns the squared distance consistent with Boundary.
	SqDist(a, b Point) float64
	// Collision reports whether p lies outside the container walls.
	Collision(p Point) bool
	// RandomPosition draws a uniform point inside the container.
	RandomPosition(rnd *rng.Source) Point
	Volume() float64
	SetVolume(v float64) error
	// Length returns the container extent along each axis.
	Length() Point
	Info() string
}

// Cuboid is a cubic box with periodic boundaries and minimum-image
// distances.
type Cuboid struct {
	side, half, inv float64
}

func NewCuboid(side float64) (*Cuboid, error) {
	if side <= 0 {
		return nil, fmt.Errorf("geom: cuboid side must be positive, got %g", side)
	}
	c := &Cuboid{}
	c.setSide(side)
	return c, nil
}

func (c *Cuboid) setSide(side float64) {
	c.side = side
	c.half = 0.5 * side
	c.inv = 1.0 / side
}

func (c *Cuboid) Boundary(p *Point) {
	p.X -= c.side * math.Floor(p.X*c.inv+0.5)
	p.Y -= c.side * math.Floor(p.Y*c.inv+0.5)
	p.Z -= c.side * math.Floor(p.Z*c.inv+0.5)
}

func (c *Cuboid) SqDist(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	dx -= c.side * math.Floor(dx*c.inv+0.5)
	dy -= c.side * math.Floor(dy*c.inv+0.5)
	dz -= c.side * math.Floor(dz*c.inv+0.5)
	return dx*dx + dy*dy + dz*dz
}

func (c *Cuboid) Collision(Point) bool { return false }

func (c *Cuboid) RandomPosition(rnd *rng.Source) Point {
	return Point{X: c.side * rnd.Half(), Y: c.side * rnd.Half(), Z: c.side * rnd.Half()}
}

func (c *Cuboid) Volume() float64 { return c.side * c.side * c.side }

func (c *Cuboid) SetVolume(v float64) error {
	if v <= 0 {
		return ErrVolume
	}
	c.setSide(math.Cbrt(v))
	return nil
}

func (c *Cuboid) Length() Point { return Point{X: c.side, Y: c.side, Z: c.side} }

func (c *Cuboid) Info() string {
	return fmt.Sprintf("cuboid: side=%.4g volume=%.4g (periodic)", c.side, c.Volume())
}

// Sphere is a hard-walled spherical cell. No boundary wrapping is applied;
// positions outside the radius are collisions.
type Sphere struct {
	r, r2 float64
}

func NewSphere(radius float64) (*Sphere, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("geom: sphere radius must be positive, got %g", radius)
	}
	return &Sphere{r: radius, r2: radius * radius}, nil
}

func (s *Sphere) Boundary(*Point) {}

func (s *Sphere) SqDist(a, b Point) float64 {
	d := r3.Sub(a, b)
	return r3.Norm2(d)
}

func (s *Sphere) Collision(p Point) bool { return r3.Norm2(p) > s.r2 }

func (s *Sphere) RandomPosition(rnd *rng.Source) Point {
	d := 2 * s.r
	for {
		p := Point{X: d * rnd.Half(), Y: d * rnd.Half(), Z: d * rnd.Half()}
		if !s.Collision(p) {
			return p
		}
	}
}

func (s *Sphere) Volume() float64 { return 4.0 / 3.0 * math.Pi * s.r * s.r2 }

func (s *Sphere) SetVolume(v float64) error {
	if v <= 0 {
		return ErrVolume
	}
	s.r = math.Cbrt(v * 3.0 / (4.0 * math.Pi))
	s.r2 = s.r * s.r
	return nil
}

func (s *Sphere) Length() Point { return Point{X: 2 * s.r, Y: 2 * s.r, Z: 2 * s.r} }

func (s *Sphere) Info() string {
	return fmt.Sprintf("sphere: radius=%.4g volume=%.4g (hard wall)", s.r, s.Volume())
}

// Cylinder is a hard-walled cylinder along z spanning [0,length].
type Cylinder struct {
	length, r, r2 float64
}

func NewCylinder(radius, length float64) (*Cylinder, error) {
	if radius <= 0 || length <= 0 {
		return nil, fmt.Errorf("geom: cylinder radius and length must be positive, got r=%g l=%g", radius, length)
	}
	return &Cylinder{length: length, r: radius, r2: radius * radius}, nil
}

func (c *Cylinder) Boundary(*Point) {}

func (c *Cylinder) SqDist(a, b Point) float64 {
	d := r3.Sub(a, b)
	return r3.Norm2(d)
}

func (c *Cylinder) Collision(p Point) bool {
	return p.X*p.X+p.Y*p.Y > c.r2 || p.Z < 0 || p.Z > c.length
}

func (c *Cylinder) RandomPosition(rnd *rng.Source) Point {
	for {
		p := Point{X: 2 * c.r * rnd.Half(), Y: 2 * c.r * rnd.Half(), Z: (rnd.Half() + 0.5) * c.length}
		if !c.Collision(p) {
			return p
		}
	}
}

func (c *Cylinder) Volume() float64 { return math.Pi * c.r2 * c.length }

// SetVolume rescales the cylinder length, keeping the radius fixed.
func (c *Cylinder) SetVolume(v float64) error {
	if v <= 0 {
		return ErrVolume
	}
	c.length = v / (math.Pi * c.r2)
	return nil
}

func (c *Cylinder) Length() Point { return Point{X: 2 * c.r, Y: 2 * c.r, Z: c.length} }

func (c *Cylinder) Info() string {
	return fmt.Sprintf("cylinder: radius=%.4g length=%.4g volume=%.4g (hard wall)", c.r, c.length, c.Volume())
}
