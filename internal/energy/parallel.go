package energy

import (
	"runtime"
	"sync"
)

// minChunk is the smallest per-worker slice of an index range worth
// spawning a goroutine for.
const minChunk = 64

// parallelSum reduces fn over [0,n) with one partial sum per chunk.
// Partials are combined in chunk order, so the result is deterministic
// for a given n regardless of goroutine scheduling. fn must be
// read-only over shared state.
func parallelSum(n int, fn func(start, end int) float64) float64 {
	workers := runtime.GOMAXPROCS(0)
	if n <= minChunk || workers <= 1 {
		return fn(0, n)
	}
	if n/minChunk < workers {
		workers = n / minChunk
	}
	chunkSize := (n + workers - 1) / workers

	partials := make([]float64, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		go func(w, s, e int) {
			defer wg.Done()
			partials[w] = fn(s, e)
		}(w, start, end)
	}
	wg.Wait()

	var sum float64
	for _, p := range partials {
		sum += p
	}
	return sum
}
