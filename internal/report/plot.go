// Package report renders radial profiles as PNG and HTML charts.
package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	planepkg "github.com/windfield-data/planebox/internal/plane"
)

// palette cycles line colors for multi-variable profiles.
var palette = []color.RGBA{
	{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
}

// SaveProfilePNG plots every variable of the profile against radius and
// writes a PNG.
func SaveProfilePNG(path, title string, prof *planepkg.RadialProfile) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "r"
	p.Y.Label.Text = "mean value"

	for i, v := range prof.Variables() {
		pts := make(plotter.XYs, len(prof.R))
		means := prof.Mean[v]
		for j, r := range prof.R {
			pts[j] = plotter.XY{X: r, Y: means[j]}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("report: line for %s: %w", v, err)
		}
		line.Color = palette[i%len(palette)]
		p.Add(line)
		p.Legend.Add(v, line)
	}
	p.Legend.Top = true

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("report: save %s: %w", path, err)
	}
	return nil
}
