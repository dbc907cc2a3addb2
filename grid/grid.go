package grid

import (
	"errors"
	"fmt"

	"github.com/notargets/golocalvol/mesh"
	"github.com/notargets/golocalvol/utils"
)

var (
	ErrTooFewNodes   = errors.New("grid needs at least 3 nodes on each axis")
	ErrNotIncreasing = errors.New("grid nodes must be strictly increasing")
)

// PDEGrid1D is a structured (time, space) grid for one space dimension
type PDEGrid1D struct {
	t, x []float64
}

func NewPDEGrid1D(timeMesh, spaceMesh mesh.MeshingFunction) (g *PDEGrid1D, err error) {
	if timeMesh == nil || spaceMesh == nil {
		err = fmt.Errorf("%w: nil mesh", ErrTooFewNodes)
		return
	}
	return NewPDEGrid1DFromNodes(timeMesh.Points(), spaceMesh.Points())
}

func NewPDEGrid1DFromNodes(tNodes, xNodes []float64) (g *PDEGrid1D, err error) {
	if err = checkNodes("time", tNodes); err != nil {
		return
	}
	if err = checkNodes("space", xNodes); err != nil {
		return
	}
	g = &PDEGrid1D{
		t: append([]float64(nil), tNodes...),
		x: append([]float64(nil), xNodes...),
	}
	return
}

func checkNodes(axis string, nodes []float64) (err error) {
	if len(nodes) < 3 {
		err = fmt.Errorf("%w: %s axis has %d", ErrTooFewNodes, axis, len(nodes))
		return
	}
	for i := 1; i < len(nodes); i++ {
		if !(nodes[i] > nodes[i-1]) {
			err = fmt.Errorf("%w: %s node %d = %g follows %g", ErrNotIncreasing, axis, i, nodes[i], nodes[i-1])
			return
		}
	}
	return
}

func (g *PDEGrid1D) NumTimeNodes() int       { return len(g.t) }
func (g *PDEGrid1D) NumSpaceNodes() int      { return len(g.x) }
func (g *PDEGrid1D) TimeNode(i int) float64  { return g.t[i] }
func (g *PDEGrid1D) SpaceNode(j int) float64 { return g.x[j] }

// TimeNodes and SpaceNodes return copies
func (g *PDEGrid1D) TimeNodes() []float64  { return append([]float64(nil), g.t...) }
func (g *PDEGrid1D) SpaceNodes() []float64 { return append([]float64(nil), g.x...) }

// TimeStep is t[i+1] - t[i]
func (g *PDEGrid1D) TimeStep(i int) float64 { return g.t[i+1] - g.t[i] }

// SpaceStep is x[j+1] - x[j]
func (g *PDEGrid1D) SpaceStep(j int) float64 { return g.x[j+1] - g.x[j] }

// LowerBoundIndexForSpace is the largest j with x[j] <= x, clamped to the grid
func (g *PDEGrid1D) LowerBoundIndexForSpace(x float64) int {
	return utils.SearchSorted(g.x, x)
}

func (g *PDEGrid1D) LowerBoundIndexForTime(t float64) int {
	return utils.SearchSorted(g.t, t)
}
