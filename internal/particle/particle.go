// Package particle holds the elastic particle container primitives: the
// Particle value type, the ElasticRange active/inactive partition and the
// Group view with its metadata and filters.
//
// One contiguous arena (owned by space.Space) stores every particle.
// Groups and trackers only ever hold indices into it; deactivated
// particles stay physically present at the tail of their range so that
// grand-canonical deletions can be reverted by reactivation.
package particle

import "github.com/san-kum/mcmol/internal/geom"

// Particle is one simulation point mass. Dipole and Director are the
// optional extended vector attributes; they stay zero for plain charges.
type Particle struct {
	Pos      geom.Point `json:"pos"`
	Dipole   geom.Point `json:"dipole,omitempty"`
	Director geom.Point `json:"director,omitempty"`
	Charge   float64    `json:"charge"`
	Mass     float64    `json:"mass"`
	Radius   float64    `json:"radius"`
	ID       int        `json:"id"` // species/type id
}
