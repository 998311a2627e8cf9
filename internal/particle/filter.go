package particle

import "math"

// Selector bits compose group predicates with logical AND.
type Selector uint8

const (
	// Active selects groups with at least one active particle. Combined
	// with Molecular it requires the group to be fully active, since a
	// partially active molecule is not a valid sampling target.
	Active Selector = 1 << iota
	// Inactive selects fully deactivated groups.
	Inactive
	// Full selects groups whose size equals their capacity.
	Full
	// Atomic selects atomic groups.
	Atomic
	// Molecular selects molecular (non-atomic) groups.
	Molecular
	// Neutral selects groups with zero net active charge.
	Neutral
)

const chargeTolerance = 1e-9

// FilterFunc is a composed group predicate.
type FilterFunc func(*Group) bool

// Filter builds a predicate that is true only when every selected
// condition holds simultaneously.
func Filter(sel Selector) FilterFunc {
	return func(g *Group) bool {
		if sel&Active != 0 {
			if sel&Molecular != 0 {
				if g.Size() != g.Capacity() {
					return false
				}
			} else if g.Empty() {
				return false
			}
		}
		if sel&Inactive != 0 && !g.Empty() {
			return false
		}
		if sel&Full != 0 && g.Size() != g.Capacity() {
			return false
		}
		if sel&Atomic != 0 && !g.Atomic {
			return false
		}
		if sel&Molecular != 0 && g.Atomic {
			return false
		}
		if sel&Neutral != 0 && math.Abs(g.NetCharge()) > chargeTolerance {
			return false
		}
		return true
	}
}
