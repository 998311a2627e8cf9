package geom

import (
	"math"
	"testing"

	"github.com/san-kum/mcmol/internal/rng"
)

func TestCuboidBoundaryWrap(t *testing.T) {
	c, err := NewCuboid(10)
	if err != nil {
		t.Fatal(err)
	}
	p := Point{X: 6, Y: -7, Z: 0}
	c.Boundary(&p)
	if p.X != -4 {
		t.Errorf("expected x=-4, got %f", p.X)
	}
	if p.Y != 3 {
		t.Errorf("expected y=3, got %f", p.Y)
	}
	if p.Z != 0 {
		t.Errorf("expected z=0, got %f", p.Z)
	}
}

func TestCuboidMinimumImage(t *testing.T) {
	c, _ := NewCuboid(10)
	a := Point{X: 4.5}
	b := Point{X: -4.5}
	// across the boundary the particles are one unit apart
	if d := c.SqDist(a, b); math.Abs(d-1.0) > 1e-12 {
		t.Errorf("expected sqdist 1, got %f", d)
	}
}

func TestCuboidVolumeRoundTrip(t *testing.T) {
	c, _ := NewCuboid(10)
	if v := c.Volume(); v != 1000 {
		t.Errorf("expected volume 1000, got %f", v)
	}
	if err := c.SetVolume(8); err != nil {
		t.Fatal(err)
	}
	if l := c.Length().X; math.Abs(l-2) > 1e-12 {
		t.Errorf("expected side 2, got %f", l)
	}
	if err := c.SetVolume(-1); err == nil {
		t.Error("expected error for negative volume")
	}
}

func TestSphereCollision(t *testing.T) {
	s, _ := NewSphere(5)
	if s.Collision(Point{X: 3}) {
		t.Error("inside point should not collide")
	}
	if !s.Collision(Point{X: 3, Y: 3, Z: 3}) {
		t.Error("outside point should collide")
	}
}

func TestCylinderCollision(t *testing.T) {
	c, _ := NewCylinder(2, 10)
	tests := []struct {
		p    Point
		want bool
	}{
		{Point{X: 1, Z: 5}, false},
		{Point{X: 3, Z: 5}, true},
		{Point{Z: -1}, true},
		{Point{Z: 11}, true},
	}
	for _, tt := range tests {
		if got := c.Collision(tt.p); got != tt.want {
			t.Errorf("collision(%v): expected %v, got %v", tt.p, tt.want, got)
		}
	}
}

func TestRandomPositionInside(t *testing.T) {
	rnd := rng.New(1)
	geos := []Geometry{
		mustCuboid(t, 10),
		mustSphere(t, 4),
	}
	for _, g := range geos {
		for i := 0; i < 200; i++ {
			p := g.RandomPosition(rnd)
			if g.Collision(p) {
				t.Fatalf("%s: random position %v outside container", g.Info(), p)
			}
		}
	}
}

func TestRandomUnitVector(t *testing.T) {
	rnd := rng.New(7)
	for i := 0; i < 100; i++ {
		u := RandomUnitVector(rnd)
		n := math.Sqrt(u.X*u.X + u.Y*u.Y + u.Z*u.Z)
		if math.Abs(n-1) > 1e-12 {
			t.Fatalf("expected unit length, got %f", n)
		}
	}
}

func mustCuboid(t *testing.T, side float64) *Cuboid {
	t.Helper()
	c, err := NewCuboid(side)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func mustSphere(t *testing.T, r float64) *Sphere {
	t.Helper()
	s, err := NewSphere(r)
	if err != nil {
		t.Fatal(err)
	}
	return s
}
