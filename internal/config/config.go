// Package config loads and validates the YAML system description:
// geometry, species table, groups, energy terms, moves and sampling
// parameters. Decoding is strict, unknown keys fail immediately.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultSide        = 50.0
	DefaultSweeps      = 1000
	DefaultSampleEvery = 10
	DefaultRunFraction = 1.0
	DefaultSeed        = 1
	DefaultTuneTarget  = 0.3
)

type Config struct {
	Seed        int64              `yaml:"seed"`
	Geometry    GeometryConfig     `yaml:"geometry"`
	Species     []SpeciesConfig    `yaml:"species"`
	Groups      []GroupConfig      `yaml:"groups"`
	Energy      EnergyConfig       `yaml:"energy"`
	Moves       MovesConfig        `yaml:"moves"`
	Sampling    SamplingConfig     `yaml:"sampling"`
	Coordinates []CoordinateConfig `yaml:"coordinates"`
}

type GeometryConfig struct {
	Type   string  `yaml:"type"` // cuboid, sphere, cylinder
	Side   float64 `yaml:"side"`
	Radius float64 `yaml:"radius"`
	Length float64 `yaml:"length"`
}

type SpeciesConfig struct {
	Name   string  `yaml:"name"`
	ID     int     `yaml:"id"`
	Charge float64 `yaml:"charge"`
	Mass   float64 `yaml:"mass"`
	Radius float64 `yaml:"radius"`
	Dp     float64 `yaml:"dp"` // translation amplitude
}

type MemberConfig struct {
	Species string `yaml:"species"`
	N       int    `yaml:"n"`
}

type GroupConfig struct {
	Name    string         `yaml:"name"`
	Atomic  bool           `yaml:"atomic"`
	Members []MemberConfig `yaml:"members"`
}

type BondConfig struct {
	I   int     `yaml:"i"`
	J   int     `yaml:"j"`
	K   float64 `yaml:"k"`
	Req float64 `yaml:"req"`
}

type EnergyConfig struct {
	LennardJones *LJConfig      `yaml:"lennardjones"`
	Coulomb      *CoulombConfig `yaml:"coulomb"`
	HardSphere   bool           `yaml:"hardsphere"`
	Bonds        []BondConfig   `yaml:"bonds"`
}

type LJConfig struct {
	Eps   float64 `yaml:"eps"`
	Sigma float64 `yaml:"sigma"`
}

type CoulombConfig struct {
	Bjerrum float64 `yaml:"bjerrum"`
}

type MovesConfig struct {
	Translate      *TranslateConfig      `yaml:"translate"`
	TransRot       *TransRotConfig       `yaml:"transrot"`
	Isobaric       *IsobaricConfig       `yaml:"isobaric"`
	GrandCanonical *GrandCanonicalConfig `yaml:"grandcanonical"`
}

type TranslateConfig struct {
	Group       string     `yaml:"group"`
	Dir         [3]float64 `yaml:"dir"`
	RunFraction float64    `yaml:"runfraction"`
}

type TransRotConfig struct {
	Group       string  `yaml:"group"` // empty selects per attempt
	Dp          float64 `yaml:"dp"`
	DpRot       float64 `yaml:"dprot"`
	RunFraction float64 `yaml:"runfraction"`
}

type IsobaricConfig struct {
	Pressure    float64 `yaml:"pressure"`
	DV          float64 `yaml:"dv"`
	RunFraction float64 `yaml:"runfraction"`
}

type GrandCanonicalConfig struct {
	Group       string  `yaml:"group"`
	Cation      string  `yaml:"cation"`
	Anion       string  `yaml:"anion"`
	Mu          float64 `yaml:"mu"`
	RunFraction float64 `yaml:"runfraction"`
}

type SamplingConfig struct {
	Sweeps      int     `yaml:"sweeps"`
	SampleEvery int     `yaml:"sample_every"`
	TuneEvery   int     `yaml:"tune_every"` // 0 disables amplitude tuning
	TuneTarget  float64 `yaml:"tune_target"`
}

// CoordinateConfig describes one reaction coordinate sampled alongside
// the energy trace.
type CoordinateConfig struct {
	Kind     string     `yaml:"kind"`     // system, atom, molecule, separation
	Property string     `yaml:"property"` // e.g. V, N, Q for system; x, y, z for atom; com_z, mu, angle for molecule
	Index    int        `yaml:"index"`    // atom kind: absolute particle index
	Group    string     `yaml:"group"`    // molecule and separation kinds
	Group2   string     `yaml:"group2"`   // separation kind
	Dir      [3]float64 `yaml:"dir"`      // reference axis (angle) or component mask (separation)
	Min      float64    `yaml:"min"`
	Max      float64    `yaml:"max"`
	Bin      float64    `yaml:"bin"`
}

func DefaultConfig() *Config {
	return &Config{
		Seed: DefaultSeed,
		Geometry: GeometryConfig{
			Type: "cuboid",
			Side: DefaultSide,
		},
		Species: []SpeciesConfig{
			{Name: "lj", ID: 1, Mass: 1, Radius: 0.5, Dp: 0.5},
		},
		Groups: []GroupConfig{
			{Name: "fluid", Atomic: true, Members: []MemberConfig{{Species: "lj", N: 100}}},
		},
		Energy: EnergyConfig{
			LennardJones: &LJConfig{Eps: 1, Sigma: 1},
		},
		Moves: MovesConfig{
			Translate: &TranslateConfig{Group: "fluid", RunFraction: DefaultRunFraction},
		},
		Sampling: SamplingConfig{
			Sweeps:      DefaultSweeps,
			SampleEvery: DefaultSampleEvery,
		},
	}
}

// Load reads and strictly decodes a config file, then validates it.
// Scalar keys keep their defaults when omitted; the species, group,
// energy and move sections fall back to the LJ-fluid defaults only
// when the whole section is absent.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes config bytes. Unknown keys are decoding errors.
func Parse(data []byte) (*Config, error) {
	// Only scalar defaults are pre-set. Section defaults are applied
	// after decoding: a pre-populated pointer or slice would survive a
	// document that never mentions the key, and its group and species
	// names would then collide with the user's own.
	cfg := &Config{
		Seed: DefaultSeed,
		Geometry: GeometryConfig{
			Type: "cuboid",
			Side: DefaultSide,
		},
		Sampling: SamplingConfig{
			Sweeps:      DefaultSweeps,
			SampleEvery: DefaultSampleEvery,
		},
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills whole sections the document left out.
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if len(c.Species) == 0 && len(c.Groups) == 0 {
		c.Species = def.Species
		c.Groups = def.Groups
	}
	if c.Energy.LennardJones == nil && c.Energy.Coulomb == nil &&
		!c.Energy.HardSphere && len(c.Energy.Bonds) == 0 {
		c.Energy = def.Energy
	}
	if c.Moves == (MovesConfig{}) && len(c.Groups) > 0 {
		c.Moves.Translate = &TranslateConfig{
			Group:       c.Groups[0].Name,
			RunFraction: DefaultRunFraction,
		}
	}
	if t := c.Moves.Translate; t != nil && t.RunFraction == 0 {
		t.RunFraction = DefaultRunFraction
	}
	if tr := c.Moves.TransRot; tr != nil && tr.RunFraction == 0 {
		tr.RunFraction = DefaultRunFraction
	}
	if ib := c.Moves.Isobaric; ib != nil && ib.RunFraction == 0 {
		ib.RunFraction = DefaultRunFraction
	}
	if gc := c.Moves.GrandCanonical; gc != nil && gc.RunFraction == 0 {
		gc.RunFraction = DefaultRunFraction
	}
	if c.Sampling.TuneEvery > 0 && c.Sampling.TuneTarget == 0 {
		c.Sampling.TuneTarget = DefaultTuneTarget
	}
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SpeciesByName resolves a species entry.
func (c *Config) SpeciesByName(name string) (*SpeciesConfig, error) {
	for i := range c.Species {
		if c.Species[i].Name == name {
			return &c.Species[i], nil
		}
	}
	return nil, fmt.Errorf("config: unknown species %q", name)
}

// GroupIndex resolves a group name to its position in the group list.
func (c *Config) GroupIndex(name string) (int, error) {
	for i := range c.Groups {
		if c.Groups[i].Name == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("config: unknown group %q", name)
}

func (c *Config) Validate() error {
	switch c.Geometry.Type {
	case "cuboid":
		if c.Geometry.Side <= 0 {
			return fmt.Errorf("config: cuboid side %g", c.Geometry.Side)
		}
	case "sphere":
		if c.Geometry.Radius <= 0 {
			return fmt.Errorf("config: sphere radius %g", c.Geometry.Radius)
		}
	case "cylinder":
		if c.Geometry.Radius <= 0 || c.Geometry.Length <= 0 {
			return fmt.Errorf("config: cylinder radius %g length %g", c.Geometry.Radius, c.Geometry.Length)
		}
	case "":
		return fmt.Errorf("config: missing geometry type")
	default:
		return fmt.Errorf("config: unknown geometry type %q", c.Geometry.Type)
	}

	if len(c.Species) == 0 {
		return fmt.Errorf("config: no species defined")
	}
	names := make(map[string]bool)
	ids := make(map[int]bool)
	for _, sp := range c.Species {
		if sp.Name == "" {
			return fmt.Errorf("config: species without a name")
		}
		if names[sp.Name] {
			return fmt.Errorf("config: duplicate species %q", sp.Name)
		}
		if ids[sp.ID] {
			return fmt.Errorf("config: duplicate species id %d", sp.ID)
		}
		if sp.Mass <= 0 {
			return fmt.Errorf("config: species %q mass %g", sp.Name, sp.Mass)
		}
		names[sp.Name] = true
		ids[sp.ID] = true
	}

	if len(c.Groups) == 0 {
		return fmt.Errorf("config: no groups defined")
	}
	groupNames := make(map[string]bool)
	for _, g := range c.Groups {
		if g.Name == "" {
			return fmt.Errorf("config: group without a name")
		}
		if groupNames[g.Name] {
			return fmt.Errorf("config: duplicate group %q", g.Name)
		}
		groupNames[g.Name] = true
		if len(g.Members) == 0 {
			return fmt.Errorf("config: group %q has no members", g.Name)
		}
		for _, m := range g.Members {
			if !names[m.Species] {
				return fmt.Errorf("config: group %q uses unknown species %q", g.Name, m.Species)
			}
			if m.N <= 0 {
				return fmt.Errorf("config: group %q member count %d", g.Name, m.N)
			}
		}
	}

	if c.Energy.LennardJones != nil && c.Energy.LennardJones.Sigma <= 0 {
		return fmt.Errorf("config: lennard-jones sigma %g", c.Energy.LennardJones.Sigma)
	}
	if c.Energy.Coulomb != nil && c.Energy.Coulomb.Bjerrum <= 0 {
		return fmt.Errorf("config: bjerrum length %g", c.Energy.Coulomb.Bjerrum)
	}
	for _, b := range c.Energy.Bonds {
		if b.I == b.J || b.I < 0 || b.J < 0 {
			return fmt.Errorf("config: bond %d-%d", b.I, b.J)
		}
	}

	if t := c.Moves.Translate; t != nil {
		if _, err := c.GroupIndex(t.Group); err != nil {
			return err
		}
	}
	if tr := c.Moves.TransRot; tr != nil && tr.Group != "" {
		if _, err := c.GroupIndex(tr.Group); err != nil {
			return err
		}
	}
	if gc := c.Moves.GrandCanonical; gc != nil {
		if _, err := c.GroupIndex(gc.Group); err != nil {
			return err
		}
		if _, err := c.SpeciesByName(gc.Cation); err != nil {
			return err
		}
		if _, err := c.SpeciesByName(gc.Anion); err != nil {
			return err
		}
	}

	if c.Sampling.Sweeps <= 0 {
		return fmt.Errorf("config: sweeps %d", c.Sampling.Sweeps)
	}
	if c.Sampling.SampleEvery <= 0 {
		return fmt.Errorf("config: sample interval %d", c.Sampling.SampleEvery)
	}
	if c.Sampling.TuneEvery < 0 {
		return fmt.Errorf("config: tune interval %d", c.Sampling.TuneEvery)
	}
	if c.Sampling.TuneEvery > 0 && (c.Sampling.TuneTarget <= 0 || c.Sampling.TuneTarget >= 1) {
		return fmt.Errorf("config: tune target %g", c.Sampling.TuneTarget)
	}

	for i, cc := range c.Coordinates {
		switch cc.Kind {
		case "system", "atom":
		case "molecule":
			if _, err := c.GroupIndex(cc.Group); err != nil {
				return err
			}
		case "separation":
			if _, err := c.GroupIndex(cc.Group); err != nil {
				return err
			}
			if _, err := c.GroupIndex(cc.Group2); err != nil {
				return err
			}
		default:
			return fmt.Errorf("config: coordinate %d kind %q", i, cc.Kind)
		}
		if cc.Max <= cc.Min {
			return fmt.Errorf("config: coordinate %d window [%g,%g]", i, cc.Min, cc.Max)
		}
		if cc.Bin <= 0 {
			return fmt.Errorf("config: coordinate %d bin width %g", i, cc.Bin)
		}
	}
	return nil
}
