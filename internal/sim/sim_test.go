package sim

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/mcmol/internal/config"
	"github.com/san-kum/mcmol/internal/experiment"
	"github.com/san-kum/mcmol/internal/move"
)

func buildSampler(t *testing.T, seed int64) *Sampler {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Seed = seed
	cfg.Geometry.Side = 30
	cfg.Groups[0].Members[0].N = 40
	e, err := experiment.Build(cfg)
	if err != nil {
		t.Fatal(err)
	}
	s, err := New(e.Spc, e.H, e.Moves)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSamplerRun(t *testing.T) {
	s := buildSampler(t, 3)
	var sampled int
	s.AddObserver(func(p Progress) {
		sampled++
		if p.Sweep <= 0 || p.Sweep > p.Sweeps {
			t.Errorf("progress sweep %d of %d", p.Sweep, p.Sweeps)
		}
	})

	res, err := s.Run(context.Background(), RunConfig{Sweeps: 20, SampleEvery: 5})
	if err != nil {
		t.Fatal(err)
	}
	if res.Sweeps != 20 {
		t.Errorf("expected 20 sweeps, got %d", res.Sweeps)
	}
	if sampled != 4 {
		t.Errorf("expected 4 observer calls, got %d", sampled)
	}
	if len(res.Trace) != 5 { // initial point plus one per sample
		t.Errorf("expected 5 trace points, got %d", len(res.Trace))
	}
	if math.Abs(res.Drift) > 1e-6*math.Max(1, math.Abs(res.InitialEnergy)) {
		t.Errorf("energy drift %g", res.Drift)
	}
	if res.Elapsed <= 0 {
		t.Error("expected a positive elapsed time")
	}
	if s.Info() == "" {
		t.Error("expected move diagnostics")
	}
}

func TestSamplerCancellation(t *testing.T) {
	s := buildSampler(t, 4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := s.Run(ctx, RunConfig{Sweeps: 100})
	if err == nil {
		t.Fatal("expected a cancellation error")
	}
	if res == nil || res.Sweeps != 0 {
		t.Errorf("expected a valid partial result, got %+v", res)
	}
}

func TestSamplerTuning(t *testing.T) {
	s := buildSampler(t, 7)
	tr, ok := s.moves[0].(*move.AtomicTranslation)
	if !ok {
		t.Fatalf("expected a translation move, got %T", s.moves[0])
	}
	dp0 := tr.Displacement(1)

	tu, err := move.NewTuner(0.2, move.DefaultTuneMin, move.DefaultTuneMax)
	if err != nil {
		t.Fatal(err)
	}
	// the dilute LJ fluid accepts nearly everything, so amplitudes
	// grow toward the low target
	if _, err := s.Run(context.Background(), RunConfig{Sweeps: 20, TuneEvery: 5, Tuner: tu}); err != nil {
		t.Fatal(err)
	}
	if dp := tr.Displacement(1); dp <= dp0 {
		t.Errorf("amplitude %g did not grow from %g", dp, dp0)
	}

	if _, err := s.Run(context.Background(), RunConfig{Sweeps: 5, TuneEvery: 5}); err == nil {
		t.Error("expected missing tuner error")
	}
}

func TestSamplerConfigErrors(t *testing.T) {
	s := buildSampler(t, 5)
	if _, err := s.Run(context.Background(), RunConfig{Sweeps: 0}); err == nil {
		t.Error("expected sweep count error")
	}
	if _, err := New(nil, s.H, s.moves); err == nil {
		t.Error("expected missing space error")
	}
	if _, err := New(s.Spc, s.H, nil); err == nil {
		t.Error("expected missing moves error")
	}
}

func TestReplicasIndependence(t *testing.T) {
	s1 := buildSampler(t, 11)
	s2 := buildSampler(t, 22)
	r, err := NewReplicas(s1, s2)
	if err != nil {
		t.Fatal(err)
	}

	results, err := r.Run(context.Background(), RunConfig{Sweeps: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for i, res := range results {
		if res.Sweeps != 10 {
			t.Errorf("replica %d ran %d sweeps", i, res.Sweeps)
		}
		if math.Abs(res.Drift) > 1e-6 {
			t.Errorf("replica %d drift %g", i, res.Drift)
		}
	}

	if _, err := NewReplicas(s1, s1); err == nil {
		t.Error("expected shared-space error")
	}
}

func TestReplicasExchange(t *testing.T) {
	s1 := buildSampler(t, 31)
	s2 := buildSampler(t, 32)
	r, err := NewReplicas(s1, s2)
	if err != nil {
		t.Fatal(err)
	}

	p1 := s1.Spc.P[0].Pos
	p2 := s2.Spc.P[0].Pos
	if err := r.Exchange(0, 1); err != nil {
		t.Fatal(err)
	}
	if s1.Spc.P[0].Pos != p2 || s2.Spc.P[0].Pos != p1 {
		t.Error("expected configurations swapped")
	}
	if err := r.Exchange(0, 0); err == nil {
		t.Error("expected self-exchange error")
	}
}
