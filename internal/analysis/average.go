// Package analysis provides running statistics collected during
// sampling.
package analysis

import "math"

// Average accumulates samples for mean and root-mean-square queries.
// The zero value is ready to use.
type Average struct {
	n     uint64
	sum   float64
	sqsum float64
}

func (a *Average) Add(x float64) {
	a.n++
	a.sum += x
	a.sqsum += x * x
}

func (a *Average) Count() uint64 { return a.n }

// Mean returns the arithmetic mean, or zero before any sample.
func (a *Average) Mean() float64 {
	if a.n == 0 {
		return 0
	}
	return a.sum / float64(a.n)
}

// RMS returns the root mean square of the samples.
func (a *Average) RMS() float64 {
	if a.n == 0 {
		return 0
	}
	return math.Sqrt(a.sqsum / float64(a.n))
}

// Variance returns the population variance of the samples.
func (a *Average) Variance() float64 {
	if a.n == 0 {
		return 0
	}
	m := a.Mean()
	return a.sqsum/float64(a.n) - m*m
}

// Reset discards all samples.
func (a *Average) Reset() { *a = Average{} }
