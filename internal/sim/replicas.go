package sim

import (
	"context"
	"fmt"
	"sync"
)

// Replicas runs independent samplers in parallel. Each replica owns
// its own space and Hamiltonian; the only coupling is the explicit
// exchange of whole configuration snapshots between runs.
type Replicas struct {
	samplers []*Sampler
}

func NewReplicas(samplers ...*Sampler) (*Replicas, error) {
	if len(samplers) == 0 {
		return nil, fmt.Errorf("sim: no replicas")
	}
	for i, s := range samplers {
		for j := i + 1; j < len(samplers); j++ {
			if s.Spc == samplers[j].Spc {
				return nil, fmt.Errorf("sim: replicas %d and %d share a space", i, j)
			}
		}
	}
	return &Replicas{samplers: samplers}, nil
}

func (r *Replicas) Sampler(i int) *Sampler { return r.samplers[i] }

// Run executes every replica concurrently and returns their results
// in order. The first error, if any, is returned alongside.
func (r *Replicas) Run(ctx context.Context, cfg RunConfig) ([]*Result, error) {
	results := make([]*Result, len(r.samplers))
	errs := make([]error, len(r.samplers))

	var wg sync.WaitGroup
	for i, s := range r.samplers {
		wg.Add(1)
		go func(idx int, s *Sampler) {
			defer wg.Done()
			results[idx], errs[idx] = s.Run(ctx, cfg)
		}(i, s)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// Exchange swaps the full configurations of two replicas. Must not be
// called while Run is in flight.
func (r *Replicas) Exchange(i, j int) error {
	if i < 0 || i >= len(r.samplers) || j < 0 || j >= len(r.samplers) || i == j {
		return fmt.Errorf("sim: exchange between replicas %d and %d", i, j)
	}
	si, sj := r.samplers[i].Spc, r.samplers[j].Spc
	sti, stj := si.Snapshot(), sj.Snapshot()
	if err := si.Restore(stj); err != nil {
		return fmt.Errorf("sim: exchange into replica %d: %w", i, err)
	}
	if err := sj.Restore(sti); err != nil {
		return fmt.Errorf("sim: exchange into replica %d: %w", j, err)
	}
	return nil
}
