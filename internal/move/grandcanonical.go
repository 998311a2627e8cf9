package move

import (
	"fmt"
	"math"

	"github.com/san-kum/mcmol/internal/energy"
	"github.com/san-kum/mcmol/internal/particle"
	"github.com/san-kum/mcmol/internal/rng"
	"github.com/san-kum/mcmol/internal/space"
)

// GrandCanonical inserts and deletes neutral cation/anion pairs in one
// atomic group at fixed chemical potential. Insertion reuses inactive
// slots of the matching species when available and extends the group
// capacity otherwise; the group must therefore own the arena tail.
// Deletion swaps the victims to the end of the active region before
// deactivating, so rejection restores the buffer exactly. The
// ideal-gas and chemical-potential part of each accepted step is fed
// to an EnergyRest term to keep recomputed totals in line with the
// Metropolis bookkeeping.
type GrandCanonical struct {
	Base
	gi      int
	cation  particle.Particle
	anion   particle.Particle
	mu      float64 // total chemical potential of one pair, in kT
	tracker *AtomTracker
	rest    *energy.EnergyRest

	// per-attempt state
	inserting bool
	possible  bool
	slots     [2]int // absolute indices of the pair
	swaps     [2][2]int
	nswaps    int
	extended  int
	idealDu   float64
}

func NewGrandCanonical(spc *space.Space, h *energy.Hamiltonian, rnd *rng.Source,
	gi int, cation, anion particle.Particle, mu float64, rest *energy.EnergyRest,
	runFraction float64) (*GrandCanonical, error) {

	base, err := newBase("grandcanonical", spc, h, rnd, runFraction)
	if err != nil {
		return nil, err
	}
	if gi < 0 || gi >= len(spc.Groups) {
		return nil, fmt.Errorf("move: grand canonical group index %d out of range", gi)
	}
	g := &spc.Groups[gi]
	if !g.Atomic {
		return nil, fmt.Errorf("move: grand canonical targets molecular group %q", g.Name)
	}
	if _, last := g.Range(); last != len(spc.P) {
		return nil, fmt.Errorf("move: grand canonical group %q does not own the arena tail", g.Name)
	}
	if cation.ID == anion.ID {
		return nil, fmt.Errorf("move: grand canonical ion pair shares species id %d", cation.ID)
	}
	if cation.Charge+anion.Charge != 0 {
		return nil, fmt.Errorf("move: grand canonical pair charge %g not neutral", cation.Charge+anion.Charge)
	}
	if rest == nil {
		return nil, fmt.Errorf("move: grand canonical needs an energy rest term")
	}
	tracker, err := NewAtomTracker(spc, gi)
	if err != nil {
		return nil, err
	}
	m := &GrandCanonical{
		Base:    base,
		gi:      gi,
		cation:  cation,
		anion:   anion,
		mu:      mu,
		tracker: tracker,
		rest:    rest,
	}
	m.bind(m)
	return m, nil
}

// trialMove always reports a full attempt: an impossible deletion is
// judged as a rejection with infinite energy, not skipped, so the
// acceptance statistic reflects the open-ensemble attempt rate.
func (m *GrandCanonical) trialMove() bool {
	m.nswaps = 0
	m.extended = 0
	m.possible = true
	m.inserting = m.Rnd.Bool()
	if m.inserting {
		m.insertPair()
	} else {
		m.deletePair()
	}
	return true
}

// pairEnergy is the interaction of the two pair members with the rest
// of the system plus their mutual term, composed group by group so
// ghosts stay excluded.
func (m *GrandCanonical) pairEnergy(ps []particle.Particle) float64 {
	i, j := m.slots[0], m.slots[1]
	u := m.H.ITotal(ps, m.Spc.Groups, i) + m.H.ITotal(ps, m.Spc.Groups, j)
	return u - m.H.I2I(ps, i, j)
}

func (m *GrandCanonical) insertPair() {
	v := m.Spc.Geo.Volume()
	nc := float64(m.tracker.Count(m.cation.ID) + 1)
	na := float64(m.tracker.Count(m.anion.ID) + 1)
	m.idealDu = -m.mu + math.Log(nc*na/(v*v))

	for k, tmpl := range []particle.Particle{m.cation, m.anion} {
		p := tmpl
		p.Pos = m.Spc.Geo.RandomPosition(m.Rnd)
		abs, ok := m.findGhost(tmpl.ID)
		if !ok {
			if err := m.Spc.ExtendGroup(m.gi, []particle.Particle{p}); err != nil {
				panic(fmt.Sprintf("move: grand canonical extend: %v", err))
			}
			m.extended++
			abs = len(m.Spc.P) - 1
		}
		m.Spc.P[abs] = p
		m.Spc.Trial[abs] = p
		m.activateSlot(abs)
		_, boundary := m.Spc.Groups[m.gi].ActiveRange()
		m.slots[k] = boundary - 1
	}
}

// findGhost scans the inactive region for a slot of the species.
func (m *GrandCanonical) findGhost(id int) (abs int, ok bool) {
	g := &m.Spc.Groups[m.gi]
	_, boundary := g.ActiveRange()
	_, last := g.Range()
	for i := boundary; i < last; i++ {
		if m.Spc.P[i].ID == id {
			return i, true
		}
	}
	return 0, false
}

// activateSlot brings one inactive slot into the active region.
func (m *GrandCanonical) activateSlot(abs int) {
	g := &m.Spc.Groups[m.gi]
	_, boundary := g.ActiveRange()
	rel := abs - boundary
	g.Activate(rel, rel+1)
	first, _ := g.Range()
	m.Spc.RejectRange(first, len(m.Spc.P))
}

func (m *GrandCanonical) deletePair() {
	nc := m.tracker.Count(m.cation.ID)
	na := m.tracker.Count(m.anion.ID)
	if nc == 0 || na == 0 {
		m.possible = false
		return
	}
	v := m.Spc.Geo.Volume()
	m.idealDu = m.mu + math.Log(v*v/(float64(nc)*float64(na)))

	ci, _ := m.tracker.Random(m.Rnd, m.cation.ID)
	ai, _ := m.tracker.Random(m.Rnd, m.anion.ID)
	m.slots[0], m.slots[1] = ci, ai
}

func (m *GrandCanonical) energyChange() float64 {
	if !m.possible {
		return math.Inf(1)
	}
	if m.inserting {
		return m.pairEnergy(m.Spc.Trial) + m.idealDu
	}
	return -m.pairEnergy(m.Spc.P) + m.idealDu
}

func (m *GrandCanonical) acceptMove(float64) {
	if m.inserting {
		// pair already active; only the bookkeeping remains
		m.rest.Add(m.idealDu)
		m.tracker.Rebuild()
		return
	}
	// deactivate the victims by swapping each to the active tail
	g := &m.Spc.Groups[m.gi]
	first, _ := g.Range()
	for _, abs := range m.sortedVictims() {
		tail := first + g.Size() - 1
		m.swapParticles(abs, tail)
		g.Deactivate(g.Size()-1, g.Size())
		m.swaps[m.nswaps] = [2]int{abs, tail}
		m.nswaps++
	}
	m.rest.Add(m.idealDu)
	m.tracker.Rebuild()
}

func (m *GrandCanonical) rejectMove() {
	if !m.possible {
		return
	}
	if !m.inserting {
		// nothing was mutated for a deletion trial
		return
	}
	// deactivate the inserted pair (it sits at the active tail) and
	// drop any capacity the trial added
	g := &m.Spc.Groups[m.gi]
	g.Deactivate(g.Size()-2, g.Size())
	if m.extended > 0 {
		if err := m.Spc.ShrinkGroup(m.gi, m.extended); err != nil {
			panic(fmt.Sprintf("move: grand canonical shrink: %v", err))
		}
	}
	m.tracker.Rebuild()
}

// sortedVictims orders the two deletion targets descending so that
// swapping the first to the tail cannot move the second.
func (m *GrandCanonical) sortedVictims() [2]int {
	a, b := m.slots[0], m.slots[1]
	if a < b {
		a, b = b, a
	}
	return [2]int{a, b}
}

func (m *GrandCanonical) swapParticles(i, j int) {
	if i == j {
		return
	}
	m.Spc.P[i], m.Spc.P[j] = m.Spc.P[j], m.Spc.P[i]
	m.Spc.Trial[i], m.Spc.Trial[j] = m.Spc.Trial[j], m.Spc.Trial[i]
}

// Tracker exposes the species tracker, e.g. for observers sampling
// concentrations.
func (m *GrandCanonical) Tracker() *AtomTracker { return m.tracker }
