package export

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// EnergyTrace renders the sampled energy trace of a run to an image
// file. The output format follows the file extension (svg, png, pdf).
func EnergyTrace(path string, sweeps []int, energies []float64) error {
	if len(sweeps) != len(energies) {
		return fmt.Errorf("export: %d sweeps but %d energies", len(sweeps), len(energies))
	}
	if len(energies) == 0 {
		return fmt.Errorf("export: empty trace")
	}

	p := plot.New()
	p.Title.Text = "energy trace"
	p.X.Label.Text = "sweep"
	p.Y.Label.Text = "energy / kT"
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(energies))
	for i := range energies {
		pts[i].X = float64(sweeps[i])
		pts[i].Y = energies[i]
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	p.Add(line)

	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}

// EnergyHistogram renders the distribution of sampled energies.
func EnergyHistogram(path string, energies []float64, bins int) error {
	if len(energies) == 0 {
		return fmt.Errorf("export: empty trace")
	}
	if bins < 1 {
		return fmt.Errorf("export: %d bins", bins)
	}

	p := plot.New()
	p.Title.Text = "energy distribution"
	p.X.Label.Text = "energy / kT"
	p.Y.Label.Text = "count"

	vals := make(plotter.Values, len(energies))
	copy(vals, energies)
	hist, err := plotter.NewHist(vals, bins)
	if err != nil {
		return err
	}
	p.Add(hist)

	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}
