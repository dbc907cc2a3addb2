package grid

// Stencil holds three weights applied to the nodes Start, Start+1, Start+2
type Stencil struct {
	Start   int
	Weights [3]float64
}

func (s Stencil) Apply(u []float64) (d float64) {
	for k, w := range s.Weights {
		d += w * u[s.Start+k]
	}
	return
}

// Offset is the position of the stencil's first node relative to j
func (s Stencil) Offset(j int) int { return s.Start - j }

// FirstDerivative is central in the interior and one-sided at the two edges
func (g *PDEGrid1D) FirstDerivative(j int) Stencil {
	switch j {
	case 0:
		return g.FirstDerivativeForward(0)
	case len(g.x) - 1:
		return g.FirstDerivativeBackward(j)
	}
	var (
		dx1 = g.x[j] - g.x[j-1]
		dx2 = g.x[j+1] - g.x[j]
	)
	return Stencil{
		Start: j - 1,
		Weights: [3]float64{
			-dx2 / (dx1 * (dx1 + dx2)),
			(dx2 - dx1) / (dx1 * dx2),
			dx1 / (dx2 * (dx1 + dx2)),
		},
	}
}

// FirstDerivativeForward uses nodes j, j+1, j+2. Near the upper edge it falls
// back to the backward form.
func (g *PDEGrid1D) FirstDerivativeForward(j int) Stencil {
	if j > len(g.x)-3 {
		return g.FirstDerivativeBackward(j)
	}
	var (
		dx1 = g.x[j+1] - g.x[j]
		dx2 = g.x[j+2] - g.x[j+1]
	)
	return Stencil{
		Start: j,
		Weights: [3]float64{
			-(2*dx1 + dx2) / (dx1 * (dx1 + dx2)),
			(dx1 + dx2) / (dx1 * dx2),
			-dx1 / (dx2 * (dx1 + dx2)),
		},
	}
}

// FirstDerivativeBackward uses nodes j-2, j-1, j
func (g *PDEGrid1D) FirstDerivativeBackward(j int) Stencil {
	if j < 2 {
		return g.FirstDerivativeForward(j)
	}
	var (
		dx1 = g.x[j-1] - g.x[j-2]
		dx2 = g.x[j] - g.x[j-1]
	)
	return Stencil{
		Start: j - 2,
		Weights: [3]float64{
			dx2 / (dx1 * (dx1 + dx2)),
			-(dx1 + dx2) / (dx1 * dx2),
			(dx1 + 2*dx2) / (dx2 * (dx1 + dx2)),
		},
	}
}

// SecondDerivative is exact for quadratics. Edge nodes use the three nearest
// nodes.
func (g *PDEGrid1D) SecondDerivative(j int) Stencil {
	var (
		s = j - 1
	)
	if s < 0 {
		s = 0
	}
	if s > len(g.x)-3 {
		s = len(g.x) - 3
	}
	var (
		dx1 = g.x[s+1] - g.x[s]
		dx2 = g.x[s+2] - g.x[s+1]
	)
	return Stencil{
		Start: s,
		Weights: [3]float64{
			2 / (dx1 * (dx1 + dx2)),
			-2 / (dx1 * dx2),
			2 / (dx2 * (dx1 + dx2)),
		},
	}
}
