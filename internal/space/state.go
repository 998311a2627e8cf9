package space

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/san-kum/mcmol/internal/geom"
	"github.com/san-kum/mcmol/internal/particle"
)

// GroupState is the serialized form of a group, including the inactive
// tail so that reloading reproduces ghost particles exactly.
type GroupState struct {
	Name         string              `json:"name"`
	ID           int                 `json:"id"`
	ConfID       int                 `json:"confid"`
	Atomic       bool                `json:"atomic"`
	Compressible bool                `json:"compressible"`
	CM           geom.Point          `json:"cm"`
	Size         int                 `json:"size"`
	Capacity     int                 `json:"capacity"`
	Particles    []particle.Particle `json:"particles"`
}

// State is a full snapshot of a space.
type State struct {
	Volume float64      `json:"volume"`
	Groups []GroupState `json:"groups"`
}

// Snapshot captures the canonical state. Trial data is deliberately
// excluded: a restored space starts with Trial == P.
func (s *Space) Snapshot() State {
	st := State{Volume: s.Geo.Volume()}
	for i := range s.Groups {
		g := &s.Groups[i]
		gs := GroupState{
			Name:         g.Name,
			ID:           g.ID,
			ConfID:       g.ConfID,
			Atomic:       g.Atomic,
			Compressible: g.Compressible,
			CM:           g.CM,
			Size:         g.Size(),
			Capacity:     g.Capacity(),
			Particles:    make([]particle.Particle, g.Capacity()),
		}
		copy(gs.Particles, g.All())
		st.Groups = append(st.Groups, gs)
	}
	return st
}

// Restore overwrites the space from a snapshot. The group layout must
// match the one the space was built with.
func (s *Space) Restore(st State) error {
	if len(st.Groups) != len(s.Groups) {
		return fmt.Errorf("space: snapshot has %d groups, space has %d", len(st.Groups), len(s.Groups))
	}
	if err := s.Geo.SetVolume(st.Volume); err != nil {
		return fmt.Errorf("space: restore volume: %w", err)
	}
	for i := range st.Groups {
		gs := &st.Groups[i]
		g := &s.Groups[i]
		if gs.Capacity != g.Capacity() {
			return fmt.Errorf("space: group %d capacity %d does not match snapshot capacity %d",
				i, g.Capacity(), gs.Capacity)
		}
		if len(gs.Particles) != gs.Capacity {
			return fmt.Errorf("space: group %d snapshot stores %d of %d particles",
				i, len(gs.Particles), gs.Capacity)
		}
		if gs.Size < 0 || gs.Size > gs.Capacity {
			return fmt.Errorf("space: group %d snapshot size %d out of range", i, gs.Size)
		}
		copy(g.All(), gs.Particles)
		g.Resize(gs.Size)
		g.Name = gs.Name
		g.ID = gs.ID
		g.ConfID = gs.ConfID
		g.Atomic = gs.Atomic
		g.Compressible = gs.Compressible
		g.CM = gs.CM
		g.CMTrial = gs.CM
	}
	s.RejectAll()
	return nil
}

// WriteJSON serializes a snapshot to w.
func (s *Space) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s.Snapshot())
}

// ReadJSON restores the space from serialized snapshot data.
func (s *Space) ReadJSON(r io.Reader) error {
	var st State
	if err := json.NewDecoder(r).Decode(&st); err != nil {
		return fmt.Errorf("space: decode state: %w", err)
	}
	return s.Restore(st)
}

// SaveFile writes a snapshot to path.
func (s *Space) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := s.WriteJSON(f); err != nil {
		return err
	}
	return f.Close()
}

// LoadFile restores the space from a snapshot at path.
func (s *Space) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return s.ReadJSON(f)
}
