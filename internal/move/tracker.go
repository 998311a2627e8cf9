package move

import (
	"fmt"

	"github.com/san-kum/mcmol/internal/rng"
	"github.com/san-kum/mcmol/internal/space"
)

// AtomTracker maintains per-species lists of absolute arena indices of
// active particles inside one group. Rebuild after any activation,
// deactivation or capacity change of the group.
type AtomTracker struct {
	spc *space.Space
	gi  int
	ids map[int][]int
}

func NewAtomTracker(spc *space.Space, gi int) (*AtomTracker, error) {
	if gi < 0 || gi >= len(spc.Groups) {
		return nil, fmt.Errorf("move: tracker group index %d out of range", gi)
	}
	t := &AtomTracker{spc: spc, gi: gi, ids: make(map[int][]int)}
	t.Rebuild()
	return t, nil
}

// Rebuild rescans the group's active region.
func (t *AtomTracker) Rebuild() {
	for id := range t.ids {
		t.ids[id] = t.ids[id][:0]
	}
	g := &t.spc.Groups[t.gi]
	first, boundary := g.ActiveRange()
	for i := first; i < boundary; i++ {
		id := t.spc.P[i].ID
		t.ids[id] = append(t.ids[id], i)
	}
}

// Count returns the number of active particles of a species.
func (t *AtomTracker) Count(id int) int { return len(t.ids[id]) }

// Random draws the absolute index of a random active particle of the
// species. ok is false when none exists.
func (t *AtomTracker) Random(rnd *rng.Source, id int) (abs int, ok bool) {
	idx := t.ids[id]
	if len(idx) == 0 {
		return 0, false
	}
	return idx[rnd.Intn(len(idx))], true
}

// Indices returns the tracked index list for a species. The slice is
// owned by the tracker and valid until the next Rebuild.
func (t *AtomTracker) Indices(id int) []int { return t.ids[id] }
