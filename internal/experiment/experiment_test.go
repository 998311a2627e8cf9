package experiment

import (
	"testing"

	"github.com/san-kum/mcmol/internal/config"
)

func saltConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Geometry = config.GeometryConfig{Type: "cuboid", Side: 20}
	cfg.Species = []config.SpeciesConfig{
		{Name: "na", ID: 1, Charge: 1, Mass: 1, Radius: 0.2, Dp: 0.5},
		{Name: "cl", ID: 2, Charge: -1, Mass: 1, Radius: 0.3, Dp: 0.5},
	}
	cfg.Groups = []config.GroupConfig{
		{Name: "salt", Atomic: true, Members: []config.MemberConfig{
			{Species: "na", N: 8},
			{Species: "cl", N: 8},
		}},
	}
	cfg.Energy = config.EnergyConfig{
		Coulomb:    &config.CoulombConfig{Bjerrum: 7},
		HardSphere: true,
	}
	cfg.Moves = config.MovesConfig{
		Translate: &config.TranslateConfig{Group: "salt", RunFraction: 1},
		GrandCanonical: &config.GrandCanonicalConfig{
			Group: "salt", Cation: "na", Anion: "cl", Mu: -5, RunFraction: 0.5,
		},
	}
	return cfg
}

func TestBuildSaltSystem(t *testing.T) {
	e, err := Build(saltConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(e.Spc.P) != 16 || e.Spc.NumActive() != 16 {
		t.Errorf("expected 16 particles, got %d active of %d", e.Spc.NumActive(), len(e.Spc.P))
	}
	if len(e.Spc.Groups) != 1 || !e.Spc.Groups[0].Atomic {
		t.Errorf("unexpected group layout %+v", e.Spc.Groups)
	}
	if got := e.Spc.Charge(); got != 0 {
		t.Errorf("expected neutral system, charge %g", got)
	}
	if len(e.Moves) != 2 {
		t.Fatalf("expected 2 moves, got %d", len(e.Moves))
	}
	if e.Rest == nil || e.H == nil {
		t.Error("expected hamiltonian and rest term")
	}
	for i := range e.Spc.P {
		if e.Spc.Geo.Collision(e.Spc.P[i].Pos) {
			t.Fatal("enrolled particle outside the geometry")
		}
	}
}

func TestBuildMolecularSystem(t *testing.T) {
	cfg := saltConfig()
	cfg.Groups = append([]config.GroupConfig{
		{Name: "trimer", Members: []config.MemberConfig{{Species: "na", N: 3}}},
	}, cfg.Groups...)
	cfg.Moves.TransRot = &config.TransRotConfig{Group: "trimer", Dp: 0.5, DpRot: 0.5, RunFraction: 1}

	e, err := Build(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if e.Spc.Groups[0].Atomic {
		t.Error("expected a molecular first group")
	}
	if len(e.Moves) != 3 {
		t.Errorf("expected 3 moves, got %d", len(e.Moves))
	}
}

func TestBuildCoordinates(t *testing.T) {
	cfg := saltConfig()
	cfg.Coordinates = []config.CoordinateConfig{
		{Kind: "system", Property: "N", Min: 0, Max: 32, Bin: 1},
		{Kind: "atom", Property: "z", Index: 0, Min: -10, Max: 10, Bin: 0.5},
	}
	e, err := Build(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(e.Coords) != 2 {
		t.Fatalf("expected 2 coordinates, got %d", len(e.Coords))
	}
	if got := e.Coords[0].Value(); got != 16 {
		t.Errorf("particle count coordinate = %g", got)
	}
	if name := e.Coords[1].Name; name != "atom0/z" {
		t.Errorf("coordinate name %q", name)
	}

	cfg.Coordinates = []config.CoordinateConfig{
		{Kind: "system", Property: "enthalpy", Min: 0, Max: 1, Bin: 0.1},
	}
	if _, err := Build(cfg); err == nil {
		t.Error("expected error for an unknown property")
	}
}

func TestBuildErrors(t *testing.T) {
	cfg := saltConfig()
	cfg.Geometry.Type = "tube"
	if _, err := Build(cfg); err == nil {
		t.Error("expected geometry error")
	}

	// grand canonical group must own the arena tail
	cfg = saltConfig()
	cfg.Groups = append(cfg.Groups, config.GroupConfig{
		Name: "after", Atomic: true,
		Members: []config.MemberConfig{{Species: "na", N: 2}},
	})
	if _, err := Build(cfg); err == nil {
		t.Error("expected tail ownership error")
	}

	cfg = saltConfig()
	cfg.Moves = config.MovesConfig{}
	if _, err := Build(cfg); err == nil {
		t.Error("expected no-moves error")
	}

	cfg = saltConfig()
	cfg.Species[0].Dp = 0
	cfg.Species[1].Dp = 0
	if _, err := Build(cfg); err == nil {
		t.Error("expected missing displacement error")
	}

	cfg = saltConfig()
	cfg.Energy.Bonds = []config.BondConfig{{I: 0, J: 99, K: 1, Req: 1}}
	if _, err := Build(cfg); err == nil {
		t.Error("expected out-of-arena bond error")
	}
}
