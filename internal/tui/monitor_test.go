package tui

import (
	"strings"
	"testing"

	"github.com/san-kum/mcmol/internal/config"
	"github.com/san-kum/mcmol/internal/experiment"
	"github.com/san-kum/mcmol/internal/sim"
)

func testMonitor(t *testing.T) *Monitor {
	t.Helper()
	exp, err := experiment.Build(config.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	sampler, err := sim.New(exp.Spc, exp.H, exp.Moves)
	if err != nil {
		t.Fatal(err)
	}
	return NewMonitor(sampler, sim.RunConfig{Sweeps: 100, SampleEvery: 10})
}

func TestMonitorProgressUpdates(t *testing.T) {
	m := testMonitor(t)

	for i := 1; i <= 3; i++ {
		model, _ := m.Update(progressMsg(sim.Progress{Sweep: i * 10, Sweeps: 100, Energy: float64(-i)}))
		m = model.(*Monitor)
	}
	if m.cur.Sweep != 30 {
		t.Errorf("current sweep %d, want 30", m.cur.Sweep)
	}
	if len(m.history) != 3 {
		t.Errorf("history has %d points, want 3", len(m.history))
	}

	view := m.View()
	if !strings.Contains(view, "30/100 sweeps") {
		t.Errorf("view missing progress counter:\n%s", view)
	}
	if !strings.Contains(view, "-3.0000 kT") {
		t.Errorf("view missing energy:\n%s", view)
	}
}

func TestMonitorHistoryBounded(t *testing.T) {
	m := testMonitor(t)
	for i := 0; i < historyCap+50; i++ {
		model, _ := m.Update(progressMsg(sim.Progress{Sweep: i, Sweeps: 1000}))
		m = model.(*Monitor)
	}
	if len(m.history) != historyCap {
		t.Errorf("history grew to %d, cap is %d", len(m.history), historyCap)
	}
}

func TestMonitorDone(t *testing.T) {
	m := testMonitor(t)
	res := &sim.Result{Sweeps: 100, Drift: 2.5e-13}
	model, _ := m.Update(doneMsg{res: res})
	m = model.(*Monitor)

	if !m.done {
		t.Fatal("monitor not marked done")
	}
	view := m.View()
	if !strings.Contains(view, "done") {
		t.Errorf("view missing completion status:\n%s", view)
	}
	if !strings.Contains(view, "drift") {
		t.Errorf("view missing drift line:\n%s", view)
	}
}
