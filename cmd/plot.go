package cmd

import (
	"fmt"
	"math"
	"time"

	"github.com/notargets/avs/chart2d"
	utils2 "github.com/notargets/avs/utils"
	"github.com/notargets/golocalvol/surface"
	"github.com/notargets/golocalvol/utils"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

type series struct {
	name string
	y    []float64
}

func seriesRange(x []float64, ss []series) (xmin, xmax, ymin, ymax float64) {
	xmin, xmax, ymin, ymax = math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)
	for _, v := range x {
		xmin, xmax = math.Min(xmin, v), math.Max(xmax, v)
	}
	for _, s := range ss {
		for _, v := range s.y {
			if utils.IsFinite(v) {
				ymin, ymax = math.Min(ymin, v), math.Max(ymax, v)
			}
		}
	}
	pad := 0.05 * (ymax - ymin)
	return xmin, xmax, ymin - pad, ymax + pad
}

// showChart draws the series on a live avs chart and holds it on screen
func showChart(x []float64, ss []series, hold time.Duration) {
	xmin, xmax, ymin, ymax := seriesRange(x, ss)
	chart := chart2d.NewChart2D(1280, 1024, float32(xmin), float32(xmax), float32(ymin), float32(ymax))
	colorMap := utils2.NewColorMap(-1, 1, 1)
	go chart.Plot()
	for i, s := range ss {
		color := float32(-0.7)
		if len(ss) > 1 {
			color += 1.4 * float32(i) / float32(len(ss)-1)
		}
		if err := chart.AddSeries(s.name, x, s.y, chart2d.NoGlyph, chart2d.Solid, colorMap.GetRGB(color)); err != nil {
			panic("unable to add graph series")
		}
	}
	time.Sleep(hold)
}

func saveLinePlot(file, title, xLabel string, x []float64, ss []series) (err error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Legend.Top = true
	for i, s := range ss {
		xys := make(plotter.XYs, 0, len(x))
		for j := range x {
			if utils.IsFinite(s.y[j]) {
				xys = append(xys, plotter.XY{X: x[j], Y: s.y[j]})
			}
		}
		var line *plotter.Line
		if line, err = plotter.NewLine(xys); err != nil {
			return
		}
		line.Color = plotutil.Color(i)
		line.Dashes = plotutil.Dashes(i)
		p.Add(line)
		p.Legend.Add(s.name, line)
	}
	return p.Save(8*vg.Inch, 6*vg.Inch, file)
}

func saveHeatMap(file, title, xLabel, yLabel string, g plotter.GridXYZ) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewHeatMap(g, moreland.Kindlmann().Palette(255)))
	return p.Save(8*vg.Inch, 6*vg.Inch, file)
}

// surfaceGrid shows a tabulated surface as a heat map, x across and t up
type surfaceGrid struct {
	s *surface.Interpolated
}

func (g surfaceGrid) Dims() (c, r int)   { return len(g.s.X), len(g.s.T) }
func (g surfaceGrid) X(c int) float64    { return g.s.X[c] }
func (g surfaceGrid) Y(r int) float64    { return g.s.T[r] }
func (g surfaceGrid) Z(c, r int) float64 { return g.s.Z[r][c] }

func reportSaved(file string) {
	if verbose() {
		fmt.Printf("wrote %s\n", file)
	}
}
