package energy

import (
	"math"
	"testing"

	"github.com/san-kum/mcmol/internal/geom"
	"github.com/san-kum/mcmol/internal/particle"
	"github.com/san-kum/mcmol/internal/potential"
	"github.com/san-kum/mcmol/internal/rng"
)

func testBox(t *testing.T, side float64) *geom.Cuboid {
	t.Helper()
	box, err := geom.NewCuboid(side)
	if err != nil {
		t.Fatal(err)
	}
	return box
}

// randomArena builds n particles in two groups: an atomic one over
// [0,split) and a molecular one over [split,n).
func randomArena(t *testing.T, n, split int, box *geom.Cuboid) ([]particle.Particle, []particle.Group) {
	t.Helper()
	rnd := rng.New(42)
	ps := make([]particle.Particle, n)
	for i := range ps {
		ps[i].Pos = box.RandomPosition(rnd)
		ps[i].Mass = 1
		ps[i].Charge = float64(i%3 - 1)
		ps[i].Radius = 0.1
	}
	atoms := particle.NewGroup(&ps, 0, split)
	atoms.Atomic = true
	mol := particle.NewGroup(&ps, split, n)
	return ps, []particle.Group{atoms, mol}
}

func TestNonbondedConsistency(t *testing.T) {
	box := testBox(t, 10)
	ps, groups := randomArena(t, 20, 12, box)
	lj, _ := potential.NewLennardJones(0.5, 1)
	nb := NewNonbonded(lj, box)

	// all-pairs equals the sum of unordered pair energies
	var pairSum float64
	for i := 0; i < len(ps)-1; i++ {
		for j := i + 1; j < len(ps); j++ {
			pairSum += nb.I2I(ps, i, j)
		}
	}
	if got := nb.All2All(ps); math.Abs(got-pairSum) > 1e-9 {
		t.Errorf("all2all %g != pair sum %g", got, pairSum)
	}

	// i2all excludes the self pair
	var u float64
	for j := 1; j < len(ps); j++ {
		u += nb.I2I(ps, 0, j)
	}
	if got := nb.I2All(ps, 0); math.Abs(got-u) > 1e-9 {
		t.Errorf("i2all %g != explicit sum %g", got, u)
	}

	// internal + internal + cross recomposes all pairs
	cross := nb.G2G(ps, &groups[0], &groups[1])
	total := nb.GInternal(ps, &groups[0]) + nb.GInternal(ps, &groups[1]) + cross
	if math.Abs(total-pairSum) > 1e-9 {
		t.Errorf("group decomposition %g != pair sum %g", total, pairSum)
	}

	// i2g excludes the probe when it lies inside the group
	inside := nb.I2G(ps, 3, &groups[0])
	var explicit float64
	for j := 0; j < 12; j++ {
		if j != 3 {
			explicit += nb.I2I(ps, 3, j)
		}
	}
	if math.Abs(inside-explicit) > 1e-9 {
		t.Errorf("i2g %g != explicit %g", inside, explicit)
	}
}

func TestNonbondedGhostExclusion(t *testing.T) {
	box := testBox(t, 10)
	ps, groups := randomArena(t, 10, 6, box)
	lj, _ := potential.NewLennardJones(0.5, 1)
	nb := NewNonbonded(lj, box)

	groups[0].Deactivate(5, 6)
	var expect float64
	first, bnd := groups[0].ActiveRange()
	for i := first; i < bnd-1; i++ {
		for j := i + 1; j < bnd; j++ {
			expect += nb.I2I(ps, i, j)
		}
	}
	if got := nb.GInternal(ps, &groups[0]); math.Abs(got-expect) > 1e-9 {
		t.Errorf("ghost pairs still counted: %g != %g", got, expect)
	}
}

func TestGroupAllParallelMatchesSequential(t *testing.T) {
	box := testBox(t, 30)
	// enough members to cross the parallel threshold
	ps, groups := randomArena(t, 400, 300, box)
	lj, _ := potential.NewLennardJones(0.5, 1)
	nb := NewNonbonded(lj, box)

	var seq float64
	first, bnd := groups[0].ActiveRange()
	for i := first; i < bnd; i++ {
		seq += nb.I2G(ps, i, &groups[1])
	}
	got := nb.G2All(ps, groups, 0)
	if math.Abs(got-seq) > 1e-6*math.Max(1, math.Abs(seq)) {
		t.Errorf("parallel g2all %g != sequential %g", got, seq)
	}
}

func TestHamiltonianAdditivity(t *testing.T) {
	box := testBox(t, 10)
	ps, groups := randomArena(t, 16, 8, box)
	lj, _ := potential.NewLennardJones(0.5, 1)
	coul, _ := potential.NewCoulomb(7)
	t1 := NewNonbonded(lj, box)
	t2 := NewNonbonded(coul, box)

	h := NewHamiltonian(t1)
	h.Reference(t2)

	if got, want := h.All2All(ps), t1.All2All(ps)+t2.All2All(ps); math.Abs(got-want) > 1e-9 {
		t.Errorf("all2all: %g != %g", got, want)
	}
	if got, want := h.I2All(ps, 3), t1.I2All(ps, 3)+t2.I2All(ps, 3); math.Abs(got-want) > 1e-9 {
		t.Errorf("i2all: %g != %g", got, want)
	}
	g1, g2 := &groups[0], &groups[1]
	if got, want := h.G2G(ps, g1, g2), t1.G2G(ps, g1, g2)+t2.G2G(ps, g1, g2); math.Abs(got-want) > 1e-9 {
		t.Errorf("g2g: %g != %g", got, want)
	}
}

func TestUnimplementedGranularityIsZero(t *testing.T) {
	// the rest term implements only the external granularity
	h := NewHamiltonian(NewEnergyRest())
	ps := make([]particle.Particle, 2)
	if u := h.I2I(ps, 0, 1); u != 0 {
		t.Errorf("expected zero, got %g", u)
	}
	if u := h.All2All(ps); u != 0 {
		t.Errorf("expected zero, got %g", u)
	}
}

func TestOverlappingGroupsPanic(t *testing.T) {
	box := testBox(t, 10)
	ps, _ := randomArena(t, 10, 5, box)
	g1 := particle.NewGroup(&ps, 0, 6)
	g2 := particle.NewGroup(&ps, 4, 10)
	lj, _ := potential.NewLennardJones(0.5, 1)
	h := NewHamiltonian(NewNonbonded(lj, box))

	defer func() {
		if recover() == nil {
			t.Error("expected panic for overlapping groups")
		}
	}()
	h.G2G(ps, &g1, &g2)
}

func TestInfinityFlowsThroughSums(t *testing.T) {
	box := testBox(t, 10)
	ps := make([]particle.Particle, 2)
	ps[0].Radius = 1
	ps[1].Radius = 1
	ps[1].Pos = geom.Point{X: 0.5} // overlapping
	lj, _ := potential.NewLennardJones(0.5, 1)
	h := NewHamiltonian(NewNonbonded(lj, box), NewHardSphereOverlap(box))

	if u := h.I2I(ps, 0, 1); !math.IsInf(u, 1) {
		t.Errorf("expected +inf, got %g", u)
	}
	if u := h.All2All(ps); !math.IsInf(u, 1) {
		t.Errorf("expected +inf through the sum, got %g", u)
	}
}

func TestHardSphereGroupAllChecksEveryMember(t *testing.T) {
	box := testBox(t, 20)
	ps := make([]particle.Particle, 4)
	for i := range ps {
		ps[i].Radius = 0.5
		ps[i].Mass = 1
	}
	// group members at x=0 (clean) and x=5 (overlapping the probe at 5.2)
	ps[0].Pos = geom.Point{}
	ps[1].Pos = geom.Point{X: 5}
	ps[2].Pos = geom.Point{X: 5.2}
	ps[3].Pos = geom.Point{X: -8}
	g := particle.NewGroup(&ps, 0, 2)
	rest := particle.NewGroup(&ps, 2, 4)
	hs := NewHardSphereOverlap(box)

	if u := hs.G2All(ps, []particle.Group{g, rest}, 0); !math.IsInf(u, 1) {
		t.Errorf("expected overlap of the second member to be found, got %g", u)
	}
}

func TestExternalPressureAcceptanceFactor(t *testing.T) {
	// two molecular groups and three free atoms: N = 5
	box := testBox(t, 10)
	ps := make([]particle.Particle, 9)
	for i := range ps {
		ps[i].Mass = 1
	}
	atoms := particle.NewGroup(&ps, 0, 3)
	atoms.Atomic = true
	mol1 := particle.NewGroup(&ps, 3, 6)
	mol2 := particle.NewGroup(&ps, 6, 9)
	groups := []particle.Group{atoms, mol1, mol2}

	const pressure = 0.003
	ep, err := NewExternalPressure(pressure, box)
	if err != nil {
		t.Fatal(err)
	}
	h := NewHamiltonian(ep)

	uOf := func(v float64) float64 {
		h.SetVolume(v)
		var u float64
		for gi := range groups {
			u += h.GExternal(ps, &groups[gi])
		}
		return u + h.External()
	}

	du := uOf(1050) - uOf(1000)
	want := math.Pow(1050.0/1000.0, 6) * math.Exp(-pressure*50)
	if got := math.Exp(-du); math.Abs(got-want) > 1e-12*want {
		t.Errorf("acceptance factor %g, want %g", got, want)
	}
}

func TestMassCenterConstrain(t *testing.T) {
	box := testBox(t, 40)
	ps := make([]particle.Particle, 4)
	for i := range ps {
		ps[i].Mass = 1
	}
	ps[2].Pos = geom.Point{X: 5}
	ps[3].Pos = geom.Point{X: 5}
	g1 := particle.NewGroup(&ps, 0, 2)
	g2 := particle.NewGroup(&ps, 2, 4)
	other := particle.NewGroup(&ps, 0, 0)

	mc, err := NewMassCenterConstrain(&g1, &g2, 2, 8, box)
	if err != nil {
		t.Fatal(err)
	}
	if u := mc.GExternal(ps, &g1); u != 0 {
		t.Errorf("expected zero inside the window, got %g", u)
	}
	if u := mc.GExternal(ps, &other); u != 0 {
		t.Errorf("expected zero for an unconstrained group, got %g", u)
	}

	ps[2].Pos.X = 20
	ps[3].Pos.X = 20
	if u := mc.GExternal(ps, &g2); !math.IsInf(u, 1) {
		t.Errorf("expected +inf outside the window, got %g", u)
	}

	// counted once in the system total
	groups := []particle.Group{g1, g2}
	h := NewHamiltonian(mc)
	if u := SystemEnergy(ps, groups, h); !math.IsInf(u, 1) {
		t.Errorf("expected +inf system energy, got %g", u)
	}
	ps[2].Pos.X = 5
	ps[3].Pos.X = 5
	if u := SystemEnergy(ps, groups, h); u != 0 {
		t.Errorf("expected zero system energy inside the window, got %g", u)
	}
}

func TestRestrictedVolume(t *testing.T) {
	box := testBox(t, 40)
	ps := make([]particle.Particle, 2)
	ps[0].Mass = 1
	ps[1].Mass = 1
	ps[1].Pos = geom.Point{X: 3}
	g := particle.NewGroup(&ps, 0, 2)

	low := geom.Point{X: -5, Y: -5, Z: -5}
	high := geom.Point{X: 5, Y: 5, Z: 5}
	rv, err := NewRestrictedVolume(low, high, []*particle.Group{&g}, false, box)
	if err != nil {
		t.Fatal(err)
	}
	if u := rv.GExternal(ps, &g); u != 0 {
		t.Errorf("expected zero inside, got %g", u)
	}
	ps[1].Pos.X = 7
	if u := rv.GExternal(ps, &g); !math.IsInf(u, 1) {
		t.Errorf("expected +inf with a member outside, got %g", u)
	}
	if u := rv.IExternal(ps, 1); !math.IsInf(u, 1) {
		t.Errorf("expected +inf at particle granularity, got %g", u)
	}

	// cm-only variant tolerates members outside while the center is in
	cmOnly, err := NewRestrictedVolume(low, high, []*particle.Group{&g}, true, box)
	if err != nil {
		t.Fatal(err)
	}
	if u := cmOnly.GExternal(ps, &g); u != 0 {
		t.Errorf("expected zero for cm inside, got %g", u)
	}
}

func TestEnergyRest(t *testing.T) {
	er := NewEnergyRest()
	er.Add(1.5)
	er.Add(-0.5)
	if u := er.External(); math.Abs(u-1) > 1e-12 {
		t.Errorf("expected accumulated 1.0, got %g", u)
	}
}

func TestBonded(t *testing.T) {
	box := testBox(t, 20)
	ps := make([]particle.Particle, 4)
	ps[1].Pos = geom.Point{X: 3}
	ps[2].Pos = geom.Point{X: 6}
	b := NewBonded(box)
	h01, _ := potential.NewHarmonic(2, 1)
	h12, _ := potential.NewHarmonic(2, 1)
	if err := b.AddBond(0, 1, h01); err != nil {
		t.Fatal(err)
	}
	if err := b.AddBond(1, 2, h12); err != nil {
		t.Fatal(err)
	}
	if err := b.AddBond(1, 0, h01); err == nil {
		t.Error("expected duplicate bond error")
	}

	// u = k/2 (3-1)^2 = 4 per stretched bond
	if u := b.I2I(ps, 0, 1); math.Abs(u-4) > 1e-12 {
		t.Errorf("expected 4, got %g", u)
	}
	if u := b.I2I(ps, 0, 3); u != 0 {
		t.Errorf("expected zero for an unbonded pair, got %g", u)
	}
	if u := b.IInternal(ps, 1); math.Abs(u-8) > 1e-12 {
		t.Errorf("expected both bonds at particle 1, got %g", u)
	}
	if u := b.All2All(ps); math.Abs(u-8) > 1e-12 {
		t.Errorf("expected total 8, got %g", u)
	}

	g := particle.NewGroup(&ps, 0, 2)
	if u := b.GInternal(ps, &g); math.Abs(u-4) > 1e-12 {
		t.Errorf("expected only the internal bond, got %g", u)
	}
	rest := particle.NewGroup(&ps, 2, 4)
	if u := b.G2G(ps, &g, &rest); math.Abs(u-4) > 1e-12 {
		t.Errorf("expected the crossing bond, got %g", u)
	}
}

func TestSystemEnergyDecomposition(t *testing.T) {
	box := testBox(t, 10)
	ps, groups := randomArena(t, 18, 10, box)
	lj, _ := potential.NewLennardJones(0.5, 1)
	nb := NewNonbonded(lj, box)
	h := NewHamiltonian(nb)

	want := nb.GInternal(ps, &groups[0]) + nb.GInternal(ps, &groups[1]) +
		nb.G2G(ps, &groups[0], &groups[1])
	if got := SystemEnergy(ps, groups, h); math.Abs(got-want) > 1e-9 {
		t.Errorf("system energy %g != decomposition %g", got, want)
	}
}
