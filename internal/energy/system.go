package energy

import (
	"github.com/san-kum/mcmol/internal/particle"
)

// SystemEnergy computes the full system total over the group layout:
// internal pairs of each group, cross pairs of each unordered group
// pair, group externals, and whole-system externals. Composing over
// groups rather than raw indices keeps ghost particles out of the sum.
// Terms implementing SystemComputer state their contribution directly
// and are skipped by the generic decomposition.
func SystemEnergy(ps []particle.Particle, groups []particle.Group, h *Hamiltonian) float64 {
	var u float64
	h.each(func(t Term) {
		if sc, ok := t.(SystemComputer); ok {
			u += sc.System(ps, groups)
			return
		}
		if c, ok := t.(GroupInternalComputer); ok {
			for gi := range groups {
				u += c.GInternal(ps, &groups[gi])
			}
		}
		if c, ok := t.(GroupGroupComputer); ok {
			for gi := 0; gi < len(groups)-1; gi++ {
				for gj := gi + 1; gj < len(groups); gj++ {
					u += c.G2G(ps, &groups[gi], &groups[gj])
				}
			}
		}
		if c, ok := t.(GroupExternalComputer); ok {
			for gi := range groups {
				u += c.GExternal(ps, &groups[gi])
			}
		}
		if c, ok := t.(ExternalComputer); ok {
			u += c.External()
		}
	})
	return u
}
