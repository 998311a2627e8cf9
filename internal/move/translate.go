package move

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/mcmol/internal/analysis"
	"github.com/san-kum/mcmol/internal/energy"
	"github.com/san-kum/mcmol/internal/geom"
	"github.com/san-kum/mcmol/internal/rng"
	"github.com/san-kum/mcmol/internal/space"
)

// AtomicTranslation displaces one random active particle of an atomic
// group by a species-dependent amplitude along the masked directions.
// Only species with a configured amplitude are drawn from; an attempt
// with no such particle active is skipped.
type AtomicTranslation struct {
	Base
	gi      int
	dp      map[int]float64
	ids     []int // configured species, sorted
	dir     geom.Point
	tracker *AtomTracker

	acc map[int]*analysis.Average
	msd map[int]*analysis.Average

	// per-attempt state
	idx   int
	id    int
	dist2 float64
}

func NewAtomicTranslation(spc *space.Space, h *energy.Hamiltonian, rnd *rng.Source,
	gi int, dp map[int]float64, dir geom.Point, runFraction float64) (*AtomicTranslation, error) {

	base, err := newBase("translate", spc, h, rnd, runFraction)
	if err != nil {
		return nil, err
	}
	if gi < 0 || gi >= len(spc.Groups) {
		return nil, fmt.Errorf("move: translate group index %d out of range", gi)
	}
	if !spc.Groups[gi].Atomic {
		return nil, fmt.Errorf("move: translate targets molecular group %q", spc.Groups[gi].Name)
	}
	if len(dp) == 0 {
		return nil, fmt.Errorf("move: translate without displacement amplitudes")
	}
	for id, d := range dp {
		if d <= 0 {
			return nil, fmt.Errorf("move: translate displacement %g for species %d", d, id)
		}
	}
	if dir == (geom.Point{}) {
		dir = geom.Point{X: 1, Y: 1, Z: 1}
	}
	tracker, err := NewAtomTracker(spc, gi)
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(dp))
	for id := range dp {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	m := &AtomicTranslation{
		Base:    base,
		gi:      gi,
		dp:      dp,
		ids:     ids,
		dir:     dir,
		tracker: tracker,
		acc:     make(map[int]*analysis.Average),
		msd:     make(map[int]*analysis.Average),
	}
	m.bind(m)
	return m, nil
}

// trialMove draws uniformly among the active particles whose species
// has an amplitude. The tracker is rebuilt per attempt so insertions
// and deletions by other moves on the same group are picked up.
func (m *AtomicTranslation) trialMove() bool {
	m.tracker.Rebuild()
	total := 0
	for _, id := range m.ids {
		total += m.tracker.Count(id)
	}
	if total == 0 {
		return false
	}
	k := m.Rnd.Intn(total)
	for _, id := range m.ids {
		n := m.tracker.Count(id)
		if k < n {
			m.idx = m.tracker.Indices(id)[k]
			m.id = id
			break
		}
		k -= n
	}
	d := m.dp[m.id]
	p := &m.Spc.Trial[m.idx]
	dx := d * m.Rnd.Half() * m.dir.X
	dy := d * m.Rnd.Half() * m.dir.Y
	dz := d * m.Rnd.Half() * m.dir.Z
	p.Pos.X += dx
	p.Pos.Y += dy
	p.Pos.Z += dz
	m.Spc.Geo.Boundary(&p.Pos)
	m.dist2 = dx*dx + dy*dy + dz*dz
	return true
}

func (m *AtomicTranslation) energyChange() float64 {
	if m.Spc.Geo.Collision(m.Spc.Trial[m.idx].Pos) {
		return math.Inf(1)
	}
	uNew := m.H.ITotal(m.Spc.Trial, m.Spc.Groups, m.idx)
	uOld := m.H.ITotal(m.Spc.P, m.Spc.Groups, m.idx)
	return uNew - uOld
}

func (m *AtomicTranslation) acceptMove(float64) {
	m.Spc.AcceptRange(m.idx, m.idx+1)
	m.stat(m.id).Add(1)
	m.msdStat(m.id).Add(m.dist2)
}

func (m *AtomicTranslation) rejectMove() {
	m.Spc.RejectRange(m.idx, m.idx+1)
	m.stat(m.id).Add(0)
	m.msdStat(m.id).Add(0)
}

func (m *AtomicTranslation) stat(id int) *analysis.Average {
	a := m.acc[id]
	if a == nil {
		a = &analysis.Average{}
		m.acc[id] = a
	}
	return a
}

func (m *AtomicTranslation) msdStat(id int) *analysis.Average {
	a := m.msd[id]
	if a == nil {
		a = &analysis.Average{}
		m.msd[id] = a
	}
	return a
}

// SpeciesAcceptance reports the acceptance ratio recorded for one
// species id.
func (m *AtomicTranslation) SpeciesAcceptance(id int) float64 { return m.stat(id).Mean() }

// MeanSquareDisplacement reports the per-attempt mean square
// displacement for one species id, rejected attempts counting as zero.
func (m *AtomicTranslation) MeanSquareDisplacement(id int) float64 { return m.msdStat(id).Mean() }

// Displacement returns the current amplitude for a species.
func (m *AtomicTranslation) Displacement(id int) float64 { return m.dp[id] }

// SetDisplacement adjusts the amplitude for a species, typically from
// a Tuner.
func (m *AtomicTranslation) SetDisplacement(id int, d float64) {
	if d > 0 {
		m.dp[id] = d
	}
}

// Tune adjusts every species amplitude toward the tuner's target
// acceptance. Species without recorded attempts are left alone.
func (m *AtomicTranslation) Tune(t *Tuner) {
	for _, id := range m.ids {
		if m.stat(id).Count() == 0 {
			continue
		}
		m.dp[id] = t.Adjust(m.dp[id], m.SpeciesAcceptance(id))
	}
}
