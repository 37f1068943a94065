//Package dataplot produces quick diagnostic plots for conformation
//datasets: the distribution of relative conformation energies, and the
//per-molecule residual-vs-baseline picture behind the validity filter.
package dataplot

import (
	"fmt"
	"math"

	ffdata "github.com/rmera/goffdata"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

//EnergyHistogram plots the histogram of relative conformation energies
//(each molecule's energies minus its own minimum, as the conformation
//window filter sees them) over the whole dataset, and saves it as
//plotname.png.
func EnergyHistogram(D *ffdata.Dataset, nbins int, title, plotname string) error {
	vals := make(plotter.Values, 0, D.Len()*10)
	for i := 0; i < D.Len(); i++ {
		e := D.Mol(i).Energies()
		if len(e) == 0 {
			continue
		}
		min := floats.Min(e)
		for _, v := range e {
			vals = append(vals, v-min)
		}
	}
	if len(vals) == 0 {
		return fmt.Errorf("dataplot: nothing to plot, the dataset has no conformations")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "E - Emin (kcal/mol)"
	p.Y.Label.Text = "Conformations"
	h, err := plotter.NewHist(vals, nbins)
	if err != nil {
		return err
	}
	p.Add(h)
	return p.Save(5*vg.Inch, 5*vg.Inch, fmt.Sprintf("%s.png", plotname))
}

//ResidualScatter plots, for the named forcefield label, each molecule's
//energy RMS residual against its baseline RMS (the residual of guessing
//the mean). The identity line is the sigma=1 acceptance boundary of the
//validity filter: molecules above it would be dropped at that setting.
//Saves the plot as plotname.png.
func ResidualScatter(D *ffdata.Dataset, label, title, plotname string) error {
	pts := make(plotter.XYs, 0, D.Len())
	var maxv float64
	for i := 0; i < D.Len(); i++ {
		res, base, err := D.Mol(i).EnergyRMS(label)
		if err != nil {
			return err
		}
		pts = append(pts, plotter.XY{X: base, Y: res})
		maxv = math.Max(maxv, math.Max(base, res))
	}
	if len(pts) == 0 {
		return fmt.Errorf("dataplot: nothing to plot, the dataset is empty")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Baseline RMS (kcal/mol)"
	p.Y.Label.Text = "Residual RMS (kcal/mol)"
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	p.Add(s)
	boundary := plotter.XYs{{X: 0, Y: 0}, {X: maxv, Y: maxv}}
	l, err := plotter.NewLine(boundary)
	if err != nil {
		return err
	}
	p.Add(l)
	p.Legend.Add("sigma = 1", l)
	return p.Save(5*vg.Inch, 5*vg.Inch, fmt.Sprintf("%s.png", plotname))
}
