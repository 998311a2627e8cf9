package particle

import (
	"fmt"
	"iter"

	"github.com/san-kum/mcmol/internal/geom"
)

// Group is a named view over an ElasticRange of the particle arena plus
// sampling metadata. Copying a Group by value aliases the same arena;
// Assign performs the deep copy of metadata and particle values.
type Group struct {
	ElasticRange[Particle]

	Name         string
	ID           int
	ConfID       int
	Atomic       bool
	Compressible bool
	CM           geom.Point
	CMTrial      geom.Point
}

// NewGroup creates a group over arena segment [first,last), fully active.
func NewGroup(buf *[]Particle, first, last int) Group {
	return Group{ElasticRange: NewElasticRange(buf, first, last)}
}

// Contains reports whether absolute arena index i belongs to the group's
// active region, or to the full capacity range when includeInactive is
// set. O(1).
func (g *Group) Contains(i int, includeInactive bool) bool {
	if includeInactive {
		return i >= g.first && i < g.last
	}
	return i >= g.first && i < g.boundary
}

// FindID lazily yields the absolute arena indices of active particles
// with the given species id. The sequence is restartable.
func (g *Group) FindID(id int) iter.Seq[int] {
	return func(yield func(int) bool) {
		buf := *g.buf
		for i := g.first; i < g.boundary; i++ {
			if buf[i].ID == id {
				if !yield(i) {
					return
				}
			}
		}
	}
}

// Positions yields mutable pointers to the positions of active particles.
func (g *Group) Positions() iter.Seq[*geom.Point] {
	return func(yield func(*geom.Point) bool) {
		buf := *g.buf
		for i := g.first; i < g.boundary; i++ {
			if !yield(&buf[i].Pos) {
				return
			}
		}
	}
}

// Select returns a non-owning view over the active particles at the given
// ordinal positions.
func (g *Group) Select(indices []int) []*Particle {
	out := make([]*Particle, 0, len(indices))
	buf := *g.buf
	for _, i := range indices {
		if i < 0 || i >= g.Size() {
			panic(fmt.Sprintf("particle: select ordinal %d outside active region of size %d", i, g.Size()))
		}
		out = append(out, &buf[g.first+i])
	}
	return out
}

// Rotate applies a rotation about the group's mass center to every active
// particle, including dipole and director attributes, and re-wraps the
// result through the boundary function.
func (g *Group) Rotate(rot geom.Rotation, boundary geom.BoundaryFunc) {
	RotateRange(*g.buf, g.first, g.boundary, g.CM, rot, boundary)
}

// RotateRange rotates buf[first:last] about origin. Exposed so that moves
// can rotate the trial buffer with the same indices as the canonical one.
func RotateRange(buf []Particle, first, last int, origin geom.Point, rot geom.Rotation, boundary geom.BoundaryFunc) {
	for i := first; i < last; i++ {
		p := &buf[i]
		rel := geom.Point{X: p.Pos.X - origin.X, Y: p.Pos.Y - origin.Y, Z: p.Pos.Z - origin.Z}
		rel = rot.Rotate(rel)
		p.Pos = geom.Point{X: origin.X + rel.X, Y: origin.Y + rel.Y, Z: origin.Z + rel.Z}
		boundary(&p.Pos)
		p.Dipole = rot.Rotate(p.Dipole)
		p.Director = rot.Rotate(p.Director)
	}
}

// Assign deep-copies metadata and particle values from src into the
// storage g already owns. It never rebinds g to src's arena. The two
// groups must have equal capacity.
func (g *Group) Assign(src *Group) error {
	if g.Capacity() != src.Capacity() {
		return fmt.Errorf("particle: assign between capacities %d and %d", g.Capacity(), src.Capacity())
	}
	copy(g.All(), src.All())
	g.boundary = g.first + src.Size()
	g.Name = src.Name
	g.ID = src.ID
	g.ConfID = src.ConfID
	g.Atomic = src.Atomic
	g.Compressible = src.Compressible
	g.CM = src.CM
	g.CMTrial = src.CMTrial
	return nil
}

// NetCharge sums the charges of active particles.
func (g *Group) NetCharge() float64 {
	q := 0.0
	for _, p := range g.Active() {
		q += p.Charge
	}
	return q
}

// UpdateMassCenter recomputes CM from the active particles under the
// given boundary convention and mirrors it into CMTrial.
func (g *Group) UpdateMassCenter(boundary geom.BoundaryFunc) error {
	cm, err := MassCenter(g.Active(), boundary)
	if err != nil {
		return fmt.Errorf("group %q: %w", g.Name, err)
	}
	g.CM = cm
	g.CMTrial = cm
	return nil
}

func (g *Group) Info() string {
	kind := "molecular"
	if g.Atomic {
		kind = "atomic"
	}
	return fmt.Sprintf("group %q id=%d %s size=%d/%d cm=(%.3g,%.3g,%.3g)",
		g.Name, g.ID, kind, g.Size(), g.Capacity(), g.CM.X, g.CM.Y, g.CM.Z)
}
