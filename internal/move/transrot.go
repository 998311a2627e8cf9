package move

import (
	"fmt"
	"math"

	"github.com/san-kum/mcmol/internal/energy"
	"github.com/san-kum/mcmol/internal/geom"
	"github.com/san-kum/mcmol/internal/particle"
	"github.com/san-kum/mcmol/internal/rng"
	"github.com/san-kum/mcmol/internal/space"
)

// TransRot rigidly translates and rotates one molecular group. With a
// fixed target it always moves that group; constructed group-wise it
// draws a random fully active molecular group each attempt.
type TransRot struct {
	Base
	gi    int // -1 selects per attempt
	dp    float64
	dpRot float64

	cur int // group moved this attempt
}

func NewTransRot(spc *space.Space, h *energy.Hamiltonian, rnd *rng.Source,
	gi int, dp, dpRot float64, runFraction float64) (*TransRot, error) {

	base, err := newBase("transrot", spc, h, rnd, runFraction)
	if err != nil {
		return nil, err
	}
	if dp < 0 || dpRot < 0 || (dp == 0 && dpRot == 0) {
		return nil, fmt.Errorf("move: transrot amplitudes dp=%g dprot=%g", dp, dpRot)
	}
	if gi >= 0 {
		if gi >= len(spc.Groups) {
			return nil, fmt.Errorf("move: transrot group index %d out of range", gi)
		}
		if spc.Groups[gi].Atomic {
			return nil, fmt.Errorf("move: transrot targets atomic group %q", spc.Groups[gi].Name)
		}
	}
	m := &TransRot{Base: base, gi: gi, dp: dp, dpRot: dpRot, cur: -1}
	m.bind(m)
	return m, nil
}

// NewGroupWiseTransRot moves a random molecular group each attempt.
func NewGroupWiseTransRot(spc *space.Space, h *energy.Hamiltonian, rnd *rng.Source,
	dp, dpRot float64, runFraction float64) (*TransRot, error) {
	if spc != nil {
		found := false
		for i := range spc.Groups {
			if !spc.Groups[i].Atomic {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("move: transrot without molecular groups")
		}
	}
	return NewTransRot(spc, h, rnd, -1, dp, dpRot, runFraction)
}

// trialMove reports false when no fully active molecular group is
// available this attempt; the attempt is then skipped rather than
// recorded as an accepted no-op.
func (m *TransRot) trialMove() bool {
	m.cur = m.gi
	if m.cur < 0 {
		m.cur = m.Spc.RandomGroup(m.Rnd, particle.Filter(particle.Active|particle.Molecular))
		if m.cur < 0 {
			return false
		}
	}
	g := &m.Spc.Groups[m.cur]
	if g.Empty() {
		panic(fmt.Sprintf("move: transrot on empty group %q", g.Name))
	}
	first, boundary := g.ActiveRange()

	if m.dp > 0 {
		shift := geom.Point{
			X: m.dp * m.Rnd.Half(),
			Y: m.dp * m.Rnd.Half(),
			Z: m.dp * m.Rnd.Half(),
		}
		for i := first; i < boundary; i++ {
			p := &m.Spc.Trial[i]
			p.Pos.X += shift.X
			p.Pos.Y += shift.Y
			p.Pos.Z += shift.Z
		}
		g.CMTrial = geom.Point{X: g.CM.X + shift.X, Y: g.CM.Y + shift.Y, Z: g.CM.Z + shift.Z}
		m.Spc.Geo.Boundary(&g.CMTrial)
	}
	if m.dpRot > 0 {
		axis := geom.RandomUnitVector(m.Rnd)
		angle := 2 * m.dpRot * m.Rnd.Half()
		rot := geom.NewRotation(angle, axis)
		particle.RotateRange(m.Spc.Trial, first, boundary, g.CMTrial, rot, m.Spc.Geo.Boundary)
	}
	for i := first; i < boundary; i++ {
		m.Spc.Geo.Boundary(&m.Spc.Trial[i].Pos)
	}
	return true
}

func (m *TransRot) energyChange() float64 {
	g := &m.Spc.Groups[m.cur]
	first, boundary := g.ActiveRange()
	for i := first; i < boundary; i++ {
		if m.Spc.Geo.Collision(m.Spc.Trial[i].Pos) {
			return math.Inf(1)
		}
	}
	uNew := m.H.GTotal(m.Spc.Trial, m.Spc.Groups, m.cur)
	uOld := m.H.GTotal(m.Spc.P, m.Spc.Groups, m.cur)
	return uNew - uOld
}

func (m *TransRot) acceptMove(float64) {
	m.Spc.AcceptGroup(m.cur)
}

func (m *TransRot) rejectMove() {
	m.Spc.RejectGroup(m.cur)
}

// Tune adjusts both amplitudes toward the tuner's target acceptance.
func (m *TransRot) Tune(t *Tuner) {
	if m.Attempts() == 0 {
		return
	}
	acc := m.Acceptance()
	if m.dp > 0 {
		m.dp = t.Adjust(m.dp, acc)
	}
	if m.dpRot > 0 {
		m.dpRot = t.Adjust(m.dpRot, acc)
	}
}
