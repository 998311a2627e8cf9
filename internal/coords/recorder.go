package coords

import "fmt"

// Recorder evaluates a set of coordinates on demand, typically from a
// sampler observer between sweeps, and keeps one trace per coordinate.
// Traces share the Sweeps axis.
type Recorder struct {
	Coords []*Coordinate
	Sweeps []int
	Values [][]float64 // Values[i][k] is Coords[i] at Sweeps[k]
}

func NewRecorder(cs []*Coordinate) (*Recorder, error) {
	if len(cs) == 0 {
		return nil, fmt.Errorf("coords: recorder without coordinates")
	}
	return &Recorder{Coords: cs, Values: make([][]float64, len(cs))}, nil
}

// Record samples every coordinate once. Callers invoke it with no move
// in flight, so coordinate functions may read the space directly.
func (r *Recorder) Record(sweep int) {
	r.Sweeps = append(r.Sweeps, sweep)
	for i, c := range r.Coords {
		r.Values[i] = append(r.Values[i], c.Value())
	}
}

// Names lists the coordinate names in trace order.
func (r *Recorder) Names() []string {
	names := make([]string, len(r.Coords))
	for i, c := range r.Coords {
		names[i] = c.Name
	}
	return names
}

// Histogram bins the recorded trace of coordinate i over its window.
// Samples outside the window are dropped.
func (r *Recorder) Histogram(i int) []int {
	c := r.Coords[i]
	h := make([]int, c.Bins())
	for _, v := range r.Values[i] {
		if !c.InRange(v) {
			continue
		}
		h[c.Bin(v)]++
	}
	return h
}
