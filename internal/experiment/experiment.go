// Package experiment wires a validated configuration into a runnable
// system: geometry, space, Hamiltonian and moves.
package experiment

import (
	"fmt"

	"github.com/san-kum/mcmol/internal/config"
	"github.com/san-kum/mcmol/internal/coords"
	"github.com/san-kum/mcmol/internal/energy"
	"github.com/san-kum/mcmol/internal/geom"
	"github.com/san-kum/mcmol/internal/move"
	"github.com/san-kum/mcmol/internal/particle"
	"github.com/san-kum/mcmol/internal/potential"
	"github.com/san-kum/mcmol/internal/rng"
	"github.com/san-kum/mcmol/internal/space"
)

// Experiment is a fully wired simulation system.
type Experiment struct {
	Cfg    *config.Config
	Spc    *space.Space
	H      *energy.Hamiltonian
	Rest   *energy.EnergyRest
	Moves  []move.Mover
	Coords []*coords.Coordinate
	Rnd    *rng.Source
}

// Build constructs the system described by cfg. Every wiring problem
// is a construction error; nothing fails later at sampling time.
func Build(cfg *config.Config) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rnd := rng.New(cfg.Seed)

	geo, err := buildGeometry(&cfg.Geometry)
	if err != nil {
		return nil, err
	}
	spc := space.New(geo)
	if err := enrollGroups(cfg, spc, rnd); err != nil {
		return nil, err
	}

	h, rest, err := buildHamiltonian(cfg, spc)
	if err != nil {
		return nil, err
	}

	movers, err := buildMoves(cfg, spc, h, rest, rnd)
	if err != nil {
		return nil, err
	}

	crds, err := buildCoordinates(cfg, spc)
	if err != nil {
		return nil, err
	}

	return &Experiment{Cfg: cfg, Spc: spc, H: h, Rest: rest, Moves: movers, Coords: crds, Rnd: rnd}, nil
}

func buildGeometry(gc *config.GeometryConfig) (geom.Geometry, error) {
	switch gc.Type {
	case "cuboid":
		return geom.NewCuboid(gc.Side)
	case "sphere":
		return geom.NewSphere(gc.Radius)
	case "cylinder":
		return geom.NewCylinder(gc.Radius, gc.Length)
	default:
		return nil, fmt.Errorf("experiment: geometry type %q", gc.Type)
	}
}

func template(sp *config.SpeciesConfig) particle.Particle {
	return particle.Particle{
		ID:     sp.ID,
		Charge: sp.Charge,
		Mass:   sp.Mass,
		Radius: sp.Radius,
	}
}

func enrollGroups(cfg *config.Config, spc *space.Space, rnd *rng.Source) error {
	for gi, gc := range cfg.Groups {
		var ps []particle.Particle
		for _, m := range gc.Members {
			sp, err := cfg.SpeciesByName(m.Species)
			if err != nil {
				return err
			}
			for k := 0; k < m.N; k++ {
				p := template(sp)
				p.Pos = spc.Geo.RandomPosition(rnd)
				ps = append(ps, p)
			}
		}
		if _, err := spc.Enroll(gc.Name, gi, gc.Atomic, ps); err != nil {
			return err
		}
	}
	return nil
}

func buildHamiltonian(cfg *config.Config, spc *space.Space) (*energy.Hamiltonian, *energy.EnergyRest, error) {
	h := energy.NewHamiltonian()

	if lj := cfg.Energy.LennardJones; lj != nil {
		pot, err := potential.NewLennardJones(lj.Eps, lj.Sigma)
		if err != nil {
			return nil, nil, err
		}
		h.Register(energy.NewNonbonded(pot, spc.Geo))
	}
	if cl := cfg.Energy.Coulomb; cl != nil {
		pot, err := potential.NewCoulomb(cl.Bjerrum)
		if err != nil {
			return nil, nil, err
		}
		h.Register(energy.NewNonbonded(pot, spc.Geo))
	}
	if cfg.Energy.HardSphere {
		h.Register(energy.NewHardSphereOverlap(spc.Geo))
	}
	if len(cfg.Energy.Bonds) > 0 {
		bonded := energy.NewBonded(spc.Geo)
		for _, b := range cfg.Energy.Bonds {
			if b.I >= len(spc.P) || b.J >= len(spc.P) {
				return nil, nil, fmt.Errorf("experiment: bond %d-%d outside the arena", b.I, b.J)
			}
			spring, err := potential.NewHarmonic(b.K, b.Req)
			if err != nil {
				return nil, nil, err
			}
			if err := bonded.AddBond(b.I, b.J, spring); err != nil {
				return nil, nil, err
			}
		}
		h.Register(bonded)
	}

	rest := energy.NewEnergyRest()
	h.Register(rest)
	return h, rest, nil
}

func buildMoves(cfg *config.Config, spc *space.Space, h *energy.Hamiltonian,
	rest *energy.EnergyRest, rnd *rng.Source) ([]move.Mover, error) {

	var movers []move.Mover

	if tc := cfg.Moves.Translate; tc != nil {
		gi, err := cfg.GroupIndex(tc.Group)
		if err != nil {
			return nil, err
		}
		dp := make(map[int]float64)
		for _, m := range cfg.Groups[gi].Members {
			sp, err := cfg.SpeciesByName(m.Species)
			if err != nil {
				return nil, err
			}
			if sp.Dp > 0 {
				dp[sp.ID] = sp.Dp
			}
		}
		if len(dp) == 0 {
			return nil, fmt.Errorf("experiment: translate group %q has no species with dp set", tc.Group)
		}
		dir := geom.Point{X: tc.Dir[0], Y: tc.Dir[1], Z: tc.Dir[2]}
		m, err := move.NewAtomicTranslation(spc, h, rnd, gi, dp, dir, tc.RunFraction)
		if err != nil {
			return nil, err
		}
		movers = append(movers, m)
	}

	if tc := cfg.Moves.TransRot; tc != nil {
		var m *move.TransRot
		var err error
		if tc.Group == "" {
			m, err = move.NewGroupWiseTransRot(spc, h, rnd, tc.Dp, tc.DpRot, tc.RunFraction)
		} else {
			var gi int
			if gi, err = cfg.GroupIndex(tc.Group); err == nil {
				m, err = move.NewTransRot(spc, h, rnd, gi, tc.Dp, tc.DpRot, tc.RunFraction)
			}
		}
		if err != nil {
			return nil, err
		}
		movers = append(movers, m)
	}

	if ic := cfg.Moves.Isobaric; ic != nil {
		m, err := move.NewIsobaric(spc, h, rnd, ic.Pressure, ic.DV, ic.RunFraction)
		if err != nil {
			return nil, err
		}
		movers = append(movers, m)
	}

	if gc := cfg.Moves.GrandCanonical; gc != nil {
		gi, err := cfg.GroupIndex(gc.Group)
		if err != nil {
			return nil, err
		}
		cat, err := cfg.SpeciesByName(gc.Cation)
		if err != nil {
			return nil, err
		}
		an, err := cfg.SpeciesByName(gc.Anion)
		if err != nil {
			return nil, err
		}
		m, err := move.NewGrandCanonical(spc, h, rnd, gi, template(cat), template(an), gc.Mu, rest, gc.RunFraction)
		if err != nil {
			return nil, err
		}
		movers = append(movers, m)
	}

	if len(movers) == 0 {
		return nil, fmt.Errorf("experiment: no moves configured")
	}
	return movers, nil
}

func buildCoordinates(cfg *config.Config, spc *space.Space) ([]*coords.Coordinate, error) {
	var crds []*coords.Coordinate
	for _, cc := range cfg.Coordinates {
		dir := geom.Point{X: cc.Dir[0], Y: cc.Dir[1], Z: cc.Dir[2]}
		var (
			c   *coords.Coordinate
			err error
		)
		switch cc.Kind {
		case "system":
			c, err = coords.NewSystemProperty(spc, cc.Property, cc.Min, cc.Max, cc.Bin)
		case "atom":
			c, err = coords.NewAtomProperty(spc, cc.Index, cc.Property, cc.Min, cc.Max, cc.Bin)
		case "molecule":
			var gi int
			if gi, err = cfg.GroupIndex(cc.Group); err == nil {
				c, err = coords.NewMoleculeProperty(spc, gi, cc.Property, dir, cc.Min, cc.Max, cc.Bin)
			}
		case "separation":
			var gi, gj int
			if gi, err = cfg.GroupIndex(cc.Group); err == nil {
				if gj, err = cfg.GroupIndex(cc.Group2); err == nil {
					c, err = coords.NewMassCenterSeparation(spc, gi, gj, dir, cc.Min, cc.Max, cc.Bin)
				}
			}
		default:
			err = fmt.Errorf("experiment: coordinate kind %q", cc.Kind)
		}
		if err != nil {
			return nil, err
		}
		crds = append(crds, c)
	}
	return crds, nil
}
