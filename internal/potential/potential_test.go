package potential

import (
	"math"
	"testing"

	"github.com/san-kum/mcmol/internal/particle"
)

func TestLennardJonesMinimum(t *testing.T) {
	lj, err := NewLennardJones(1, 1)
	if err != nil {
		t.Fatal(err)
	}
	// zero crossing at r = sigma
	if u := lj.Energy(nil, nil, 1); math.Abs(u) > 1e-12 {
		t.Errorf("expected zero at sigma, got %g", u)
	}
	// minimum -eps at r = 2^(1/6) sigma
	rmin2 := math.Pow(2, 1.0/3.0)
	if u := lj.Energy(nil, nil, rmin2); math.Abs(u+1) > 1e-12 {
		t.Errorf("expected -eps at the minimum, got %g", u)
	}
	if _, err := NewLennardJones(1, 0); err == nil {
		t.Error("expected error for zero sigma")
	}
}

func TestCoulomb(t *testing.T) {
	c, err := NewCoulomb(7)
	if err != nil {
		t.Fatal(err)
	}
	a := &particle.Particle{Charge: 1}
	b := &particle.Particle{Charge: -1}
	if u := c.Energy(a, b, 49); math.Abs(u+1) > 1e-12 {
		t.Errorf("expected -1 kT at the bjerrum length, got %g", u)
	}
	neutral := &particle.Particle{}
	if u := c.Energy(a, neutral, 1); u != 0 {
		t.Errorf("expected zero for a neutral partner, got %g", u)
	}
}

func TestHardSphere(t *testing.T) {
	a := &particle.Particle{Radius: 1}
	b := &particle.Particle{Radius: 1.5}
	var hs HardSphere
	if u := hs.Energy(a, b, 6.0); !math.IsInf(u, 1) {
		t.Errorf("expected overlap at r<2.5, got %g", u)
	}
	if u := hs.Energy(a, b, 6.3); u != 0 {
		t.Errorf("expected zero at contact or beyond, got %g", u)
	}
}

func TestHarmonic(t *testing.T) {
	h, err := NewHarmonic(10, 2)
	if err != nil {
		t.Fatal(err)
	}
	if u := h.Energy(nil, nil, 4); math.Abs(u) > 1e-12 {
		t.Errorf("expected zero at equilibrium, got %g", u)
	}
	if u := h.Energy(nil, nil, 9); math.Abs(u-5) > 1e-12 {
		t.Errorf("expected k/2*(3-2)^2=5, got %g", u)
	}
}

func TestCombined(t *testing.T) {
	lj, _ := NewLennardJones(1, 1)
	c := &Combined{Parts: []Pair{lj, HardSphere{}}}
	a := &particle.Particle{Radius: 0.1}
	b := &particle.Particle{Radius: 0.1}
	u := c.Energy(a, b, 1)
	if math.Abs(u-lj.Energy(a, b, 1)) > 1e-12 {
		t.Errorf("expected sum of parts, got %g", u)
	}
	if c.Name() != "combined(lennard-jones+hardsphere)" {
		t.Errorf("unexpected name %q", c.Name())
	}
}
