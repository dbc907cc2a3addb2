package pde

import (
	"fmt"

	"github.com/notargets/golocalvol/grid"
	"github.com/notargets/golocalvol/types"
	"github.com/notargets/golocalvol/utils"
	"gonum.org/v1/gonum/interp"
)

// PDEResults is what a solve hands back, the solution at the last grid time
// with derivatives read off the grid stencils
type PDEResults interface {
	Grid() *grid.PDEGrid1D
	Direction() types.Direction
	NumSpaceNodes() int
	SpaceValue(j int) float64
	FunctionValue(j int) float64
	FirstSpatialDerivative(j int) float64
	SecondSpatialDerivative(j int) float64
	TerminalResults() []float64
	Interpolate(x float64) float64
	InterpolateDerivative(x float64) float64
}

// PDEResults1D is a single time slice
type PDEResults1D struct {
	grid      *grid.PDEGrid1D
	direction types.Direction
	values    []float64
	spline    interp.NaturalCubic
}

func NewPDEResults1D(g *grid.PDEGrid1D, dir types.Direction, values []float64) (r *PDEResults1D, err error) {
	if g == nil {
		err = fmt.Errorf("%w: results need a grid", ErrNilInput)
		return
	}
	if len(values) != g.NumSpaceNodes() {
		err = fmt.Errorf("have %d values for %d space nodes", len(values), g.NumSpaceNodes())
		return
	}
	r = &PDEResults1D{grid: g, direction: dir, values: values}
	if err = r.spline.Fit(g.SpaceNodes(), values); err != nil {
		return nil, err
	}
	return
}

func (r *PDEResults1D) Grid() *grid.PDEGrid1D       { return r.grid }
func (r *PDEResults1D) Direction() types.Direction  { return r.direction }
func (r *PDEResults1D) NumSpaceNodes() int          { return len(r.values) }
func (r *PDEResults1D) SpaceValue(j int) float64    { return r.grid.SpaceNode(j) }
func (r *PDEResults1D) FunctionValue(j int) float64 { return r.values[j] }

func (r *PDEResults1D) FirstSpatialDerivative(j int) float64 {
	return r.grid.FirstDerivative(j).Apply(r.values)
}

func (r *PDEResults1D) SecondSpatialDerivative(j int) float64 {
	return r.grid.SecondDerivative(j).Apply(r.values)
}

// TerminalResults is a copy of the slice
func (r *PDEResults1D) TerminalResults() []float64 {
	return append([]float64(nil), r.values...)
}

func (r *PDEResults1D) clamp(x float64) float64 {
	return utils.Clamp(x, r.grid.SpaceNode(0), r.grid.SpaceNode(len(r.values)-1))
}

// Interpolate uses a natural cubic spline through the nodes; x outside the
// grid is clamped to the nearest end
func (r *PDEResults1D) Interpolate(x float64) float64 {
	return r.spline.Predict(r.clamp(x))
}

func (r *PDEResults1D) InterpolateDerivative(x float64) float64 {
	return r.spline.PredictDerivative(r.clamp(x))
}

/*
PDEFullResults1D keeps every time slice, data[i][j] at time node i and space
node j. Its PDEResults methods read the last slice. It satisfies gonum/plot's
plotter.GridXYZ with space along the columns and time along the rows.
*/
type PDEFullResults1D struct {
	grid      *grid.PDEGrid1D
	direction types.Direction
	data      [][]float64
	terminal  *PDEResults1D
}

func NewPDEFullResults1D(g *grid.PDEGrid1D, dir types.Direction, data [][]float64) (r *PDEFullResults1D, err error) {
	if g == nil {
		err = fmt.Errorf("%w: results need a grid", ErrNilInput)
		return
	}
	if len(data) != g.NumTimeNodes() {
		err = fmt.Errorf("have %d slices for %d time nodes", len(data), g.NumTimeNodes())
		return
	}
	for i, row := range data {
		if len(row) != g.NumSpaceNodes() {
			err = fmt.Errorf("slice %d has %d values for %d space nodes", i, len(row), g.NumSpaceNodes())
			return
		}
	}
	r = &PDEFullResults1D{grid: g, direction: dir, data: data}
	if r.terminal, err = NewPDEResults1D(g, dir, data[len(data)-1]); err != nil {
		return nil, err
	}
	return
}

func (r *PDEFullResults1D) Grid() *grid.PDEGrid1D                   { return r.grid }
func (r *PDEFullResults1D) Direction() types.Direction              { return r.direction }
func (r *PDEFullResults1D) NumSpaceNodes() int                      { return r.grid.NumSpaceNodes() }
func (r *PDEFullResults1D) NumTimeNodes() int                       { return r.grid.NumTimeNodes() }
func (r *PDEFullResults1D) SpaceValue(j int) float64                { return r.grid.SpaceNode(j) }
func (r *PDEFullResults1D) TimeValue(i int) float64                 { return r.grid.TimeNode(i) }
func (r *PDEFullResults1D) FunctionValue(j int) float64             { return r.terminal.FunctionValue(j) }
func (r *PDEFullResults1D) FirstSpatialDerivative(j int) float64    { return r.terminal.FirstSpatialDerivative(j) }
func (r *PDEFullResults1D) SecondSpatialDerivative(j int) float64   { return r.terminal.SecondSpatialDerivative(j) }
func (r *PDEFullResults1D) TerminalResults() []float64              { return r.terminal.TerminalResults() }
func (r *PDEFullResults1D) Interpolate(x float64) float64           { return r.terminal.Interpolate(x) }
func (r *PDEFullResults1D) InterpolateDerivative(x float64) float64 { return r.terminal.InterpolateDerivative(x) }

func (r *PDEFullResults1D) FunctionValueAt(j, i int) float64 { return r.data[i][j] }

func (r *PDEFullResults1D) FirstSpatialDerivativeAt(j, i int) float64 {
	return r.grid.FirstDerivative(j).Apply(r.data[i])
}

func (r *PDEFullResults1D) SecondSpatialDerivativeAt(j, i int) float64 {
	return r.grid.SecondDerivative(j).Apply(r.data[i])
}

// TimeSlice builds single slice results at time node i
func (r *PDEFullResults1D) TimeSlice(i int) (*PDEResults1D, error) {
	if i < 0 || i >= len(r.data) {
		return nil, fmt.Errorf("time index %d outside [0, %d)", i, len(r.data))
	}
	return NewPDEResults1D(r.grid, r.direction, r.data[i])
}

// Dims, X, Y and Z implement plotter.GridXYZ
func (r *PDEFullResults1D) Dims() (c, rows int)  { return r.grid.NumSpaceNodes(), r.grid.NumTimeNodes() }
func (r *PDEFullResults1D) X(c int) float64      { return r.grid.SpaceNode(c) }
func (r *PDEFullResults1D) Y(row int) float64    { return r.grid.TimeNode(row) }
func (r *PDEFullResults1D) Z(c, row int) float64 { return r.data[row][c] }
