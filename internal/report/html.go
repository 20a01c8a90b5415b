package report

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	planepkg "github.com/windfield-data/planebox/internal/plane"
)

// SaveProfileHTML renders the profile as an interactive line chart in a
// standalone HTML file.
func SaveProfileHTML(path, title string, prof *planepkg.RadialProfile) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "r"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "mean value"}),
	)

	xs := make([]string, len(prof.R))
	for i, r := range prof.R {
		xs[i] = strconv.FormatFloat(r, 'g', -1, 64)
	}
	line.SetXAxis(xs)
	for _, v := range prof.Variables() {
		means := prof.Mean[v]
		data := make([]opts.LineData, len(means))
		for i, m := range means {
			data[i] = opts.LineData{Value: m}
		}
		line.AddSeries(v, data)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: create %s: %w", path, err)
	}
	if err := line.Render(f); err != nil {
		f.Close()
		return fmt.Errorf("report: render %s: %w", path, err)
	}
	return f.Close()
}
