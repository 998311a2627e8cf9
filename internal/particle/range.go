package particle

import "fmt"

// ElasticRange partitions the arena segment [first,last) into an active
// prefix [first,boundary) and an inactive suffix [boundary,last). The
// backing buffer is shared through a slice pointer so that arena growth
// stays visible; the range itself never reallocates anything.
//
// Activate and Deactivate rotate elements so that relative order outside
// the moved subrange is preserved and the moved elements land next to the
// boundary in their original order. Subrange preconditions are checked;
// violating them panics, since that is a caller bug rather than a
// recoverable condition.
type ElasticRange[T any] struct {
	buf                   *[]T
	first, boundary, last int
}

// NewElasticRange covers [first,last) of the buffer, fully active.
func NewElasticRange[T any](buf *[]T, first, last int) ElasticRange[T] {
	if first < 0 || last < first || last > len(*buf) {
		panic(fmt.Sprintf("particle: range [%d,%d) outside arena of length %d", first, last, len(*buf)))
	}
	return ElasticRange[T]{buf: buf, first: first, boundary: last, last: last}
}

func (r *ElasticRange[T]) Size() int     { return r.boundary - r.first }
func (r *ElasticRange[T]) Capacity() int { return r.last - r.first }
func (r *ElasticRange[T]) Empty() bool   { return r.boundary == r.first }

// Active returns the view of currently active elements.
func (r *ElasticRange[T]) Active() []T { return (*r.buf)[r.first:r.boundary] }

// Inactive returns the view of deactivated elements.
func (r *ElasticRange[T]) Inactive() []T { return (*r.buf)[r.boundary:r.last] }

// All returns the full capacity view, active prefix first.
func (r *ElasticRange[T]) All() []T { return (*r.buf)[r.first:r.last] }

// Range returns the absolute arena index span [first,last).
func (r *ElasticRange[T]) Range() (first, last int) { return r.first, r.last }

// ActiveRange returns the absolute arena index span [first,boundary).
func (r *ElasticRange[T]) ActiveRange() (first, boundary int) { return r.first, r.boundary }

// Deactivate moves the active-relative subrange [i,j) to just before the
// boundary, then shifts the boundary left. The moved elements become the
// head of the inactive region in their original order.
func (r *ElasticRange[T]) Deactivate(i, j int) {
	n := j - i
	if i < 0 || j < i || j > r.Size() {
		panic(fmt.Sprintf("particle: deactivate subrange [%d,%d) outside active region of size %d", i, j, r.Size()))
	}
	rotateOut((*r.buf)[r.first+i:r.boundary], n)
	r.boundary -= n
}

// Activate is the inverse of Deactivate for the inactive-relative
// subrange [i,j): the elements move to just after the boundary, which
// then shifts right.
func (r *ElasticRange[T]) Activate(i, j int) {
	n := j - i
	if i < 0 || j < i || j > r.last-r.boundary {
		panic(fmt.Sprintf("particle: activate subrange [%d,%d) outside inactive region of size %d", i, j, r.last-r.boundary))
	}
	rotateIn((*r.buf)[r.boundary:r.boundary+j], n)
	r.boundary += n
}

// ToIndex maps an absolute arena index inside the range to its
// (range-relative, absolute) index pair.
func (r *ElasticRange[T]) ToIndex(abs int) (rel, absolute int) {
	if abs < r.first || abs >= r.last {
		panic(fmt.Sprintf("particle: index %d outside range [%d,%d)", abs, r.first, r.last))
	}
	return abs - r.first, abs
}

// Relocate rebases the range after its segment moved within the arena,
// e.g. when an insertion into a preceding group shifted everything by a
// fixed offset. O(1).
func (r *ElasticRange[T]) Relocate(oldOrigin, newOrigin int) {
	d := newOrigin - oldOrigin
	r.first += d
	r.boundary += d
	r.last += d
}

// Resize sets the active size to n within the existing capacity.
// Shrinking deactivates the tail; growing reactivates from the head of
// the inactive region.
func (r *ElasticRange[T]) Resize(n int) {
	if n < 0 || n > r.Capacity() {
		panic(fmt.Sprintf("particle: resize to %d outside capacity %d", n, r.Capacity()))
	}
	if d := r.Size() - n; d > 0 {
		r.Deactivate(n, r.Size())
	} else if d < 0 {
		r.Activate(0, -d)
	}
}

// Extend grows the capacity by n slots that must already exist in the
// arena directly after the range. The new slots join the inactive tail.
func (r *ElasticRange[T]) Extend(n int) {
	if n < 0 || r.last+n > len(*r.buf) {
		panic(fmt.Sprintf("particle: extend by %d past arena of length %d", n, len(*r.buf)))
	}
	r.last += n
}

// Shrink drops n slots from the inactive tail.
func (r *ElasticRange[T]) Shrink(n int) {
	if n < 0 || r.last-n < r.boundary {
		panic(fmt.Sprintf("particle: shrink by %d would cut the active region", n))
	}
	r.last -= n
}

// rotateOut moves the first n elements of s to its tail, keeping the
// relative order of everything else.
func rotateOut[T any](s []T, n int) {
	if n == 0 || n == len(s) {
		return
	}
	tmp := make([]T, n)
	copy(tmp, s[:n])
	copy(s, s[n:])
	copy(s[len(s)-n:], tmp)
}

// rotateIn moves the last n elements of s to its head, keeping the
// relative order of everything else.
func rotateIn[T any](s []T, n int) {
	if n == 0 || n == len(s) {
		return
	}
	tmp := make([]T, n)
	copy(tmp, s[len(s)-n:])
	copy(s[n:], s[:len(s)-n])
	copy(s, tmp)
}
