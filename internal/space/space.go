// Package space aggregates the particle arena, its trial mirror, the
// group list and the simulation geometry into one mutable system state.
package space

import (
	"fmt"
	"math"

	"github.com/san-kum/mcmol/internal/geom"
	"github.com/san-kum/mcmol/internal/particle"
	"github.com/san-kum/mcmol/internal/rng"
)

// Space owns the canonical particle buffer P and a same-length Trial
// buffer. Moves write proposals into Trial; an accepted range is copied
// into P, a rejected one overwritten from P. Groups index into P but the
// same absolute indices are valid for Trial.
type Space struct {
	Geo    geom.Geometry
	P      []particle.Particle
	Trial  []particle.Particle
	Groups []particle.Group
}

func New(geo geom.Geometry) *Space {
	return &Space{Geo: geo}
}

// Enroll appends particles to the arena tail and registers a new group
// over them. Capacity of the group equals len(ps); callers deactivate
// afterwards if only part of it should start active.
func (s *Space) Enroll(name string, id int, atomic bool, ps []particle.Particle) (*particle.Group, error) {
	first := len(s.P)
	s.P = append(s.P, ps...)
	s.Trial = append(s.Trial, ps...)

	g := particle.NewGroup(&s.P, first, len(s.P))
	g.Name = name
	g.ID = id
	g.Atomic = atomic
	if !atomic && len(ps) > 0 {
		if err := g.UpdateMassCenter(s.Geo.Boundary); err != nil {
			return nil, fmt.Errorf("space: enroll %q: %w", name, err)
		}
		g.CMTrial = g.CM
	}
	s.Groups = append(s.Groups, g)
	return &s.Groups[len(s.Groups)-1], nil
}

// GroupOf returns the index of the group whose capacity range contains
// the absolute arena index, or -1.
func (s *Space) GroupOf(abs int) int {
	for i := range s.Groups {
		if s.Groups[i].Contains(abs, true) {
			return i
		}
	}
	return -1
}

// AcceptRange copies [first,last) of the trial buffer into the
// canonical one.
func (s *Space) AcceptRange(first, last int) {
	copy(s.P[first:last], s.Trial[first:last])
}

// RejectRange restores [first,last) of the trial buffer from the
// canonical one.
func (s *Space) RejectRange(first, last int) {
	copy(s.Trial[first:last], s.P[first:last])
}

func (s *Space) AcceptAll() { copy(s.P, s.Trial) }
func (s *Space) RejectAll() { copy(s.Trial, s.P) }

// AcceptGroup commits a group's trial range and mass center.
func (s *Space) AcceptGroup(gi int) {
	g := &s.Groups[gi]
	first, last := g.Range()
	s.AcceptRange(first, last)
	g.CM = g.CMTrial
}

// RejectGroup restores a group's trial range and mass center.
func (s *Space) RejectGroup(gi int) {
	g := &s.Groups[gi]
	first, last := g.Range()
	s.RejectRange(first, last)
	g.CMTrial = g.CM
}

// Charge sums the charges of all active particles.
func (s *Space) Charge() float64 {
	var q float64
	for i := range s.Groups {
		q += s.Groups[i].NetCharge()
	}
	return q
}

// NumActive counts active particles across all groups.
func (s *Space) NumActive() int {
	var n int
	for i := range s.Groups {
		n += s.Groups[i].Size()
	}
	return n
}

// RandomGroup draws a uniformly random group passing the filter.
// Returns -1 when none qualifies.
func (s *Space) RandomGroup(rnd *rng.Source, keep particle.FilterFunc) int {
	var candidates []int
	for i := range s.Groups {
		if keep(&s.Groups[i]) {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return -1
	}
	return candidates[rnd.Intn(len(candidates))]
}

// RandomIndex draws the absolute arena index of a random active
// particle in group gi. The group must not be empty.
func (s *Space) RandomIndex(rnd *rng.Source, gi int) int {
	g := &s.Groups[gi]
	if g.Empty() {
		panic(fmt.Sprintf("space: random index from empty group %d", gi))
	}
	first, _ := g.ActiveRange()
	return first + rnd.Intn(g.Size())
}

// ExtendGroup grows group gi by appending particles at the arena tail.
// Only the last group may grow, since anything behind it would have to
// be relocated.
func (s *Space) ExtendGroup(gi int, ps []particle.Particle) error {
	g := &s.Groups[gi]
	_, last := g.Range()
	if last != len(s.P) {
		return fmt.Errorf("space: group %d does not own the arena tail", gi)
	}
	s.P = append(s.P, ps...)
	s.Trial = append(s.Trial, ps...)
	g.Extend(len(ps))
	return nil
}

// ShrinkGroup removes n inactive slots from the tail of group gi, which
// must own the arena tail.
func (s *Space) ShrinkGroup(gi, n int) error {
	g := &s.Groups[gi]
	_, last := g.Range()
	if last != len(s.P) {
		return fmt.Errorf("space: group %d does not own the arena tail", gi)
	}
	g.Shrink(n)
	s.P = s.P[:len(s.P)-n]
	s.Trial = s.Trial[:len(s.Trial)-n]
	return nil
}

// ScaleVolume rescales the geometry to newVolume and moves the trial
// positions accordingly. Atomic group members scale individually while
// molecular groups translate rigidly with their mass center. Canonical
// state is untouched until the caller accepts.
func (s *Space) ScaleVolume(newVolume float64) (scale float64, err error) {
	oldVolume := s.Geo.Volume()
	if err := s.Geo.SetVolume(newVolume); err != nil {
		return 0, err
	}
	scale = math.Cbrt(newVolume / oldVolume)
	for i := range s.Groups {
		g := &s.Groups[i]
		first, boundary := g.ActiveRange()
		if g.Atomic || g.Compressible {
			for j := first; j < boundary; j++ {
				p := &s.Trial[j]
				p.Pos.X *= scale
				p.Pos.Y *= scale
				p.Pos.Z *= scale
				s.Geo.Boundary(&p.Pos)
			}
			continue
		}
		cm := g.CM
		shift := geom.Point{
			X: cm.X*scale - cm.X,
			Y: cm.Y*scale - cm.Y,
			Z: cm.Z*scale - cm.Z,
		}
		for j := first; j < boundary; j++ {
			p := &s.Trial[j]
			p.Pos.X += shift.X
			p.Pos.Y += shift.Y
			p.Pos.Z += shift.Z
			s.Geo.Boundary(&p.Pos)
		}
		g.CMTrial = geom.Point{X: cm.X * scale, Y: cm.Y * scale, Z: cm.Z * scale}
	}
	return scale, nil
}
