package export

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnergyTraceWritesSVG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.svg")
	sweeps := []int{0, 10, 20, 30}
	energies := []float64{-10, -12.5, -11.8, -13.1}

	if err := EnergyTrace(path, sweeps, energies); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Fatal("empty plot file")
	}
}

func TestEnergyTraceValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.svg")
	if err := EnergyTrace(path, []int{0, 1}, []float64{1}); err == nil {
		t.Error("mismatched lengths accepted")
	}
	if err := EnergyTrace(path, nil, nil); err == nil {
		t.Error("empty trace accepted")
	}
}

func TestEnergyHistogram(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hist.png")
	energies := []float64{-1, -1.1, -0.9, -1.3, -0.8, -1.05, -1.2}

	if err := EnergyHistogram(path, energies, 5); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Fatal("empty plot file")
	}

	if err := EnergyHistogram(path, nil, 5); err == nil {
		t.Error("empty trace accepted")
	}
	if err := EnergyHistogram(path, energies, 0); err == nil {
		t.Error("zero bins accepted")
	}
}
