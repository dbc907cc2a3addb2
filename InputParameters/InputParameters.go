package InputParameters

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/notargets/golocalvol/curve"
	"github.com/notargets/golocalvol/greeks"
	"github.com/notargets/golocalvol/pde"
	"github.com/notargets/golocalvol/sabr"
	"github.com/notargets/golocalvol/surface"
	"github.com/notargets/golocalvol/types"
	"github.com/notargets/golocalvol/volatility"
)

var ErrInvalidParameters = errors.New("invalid run parameters")

// Smile describes the implied volatility input. Type is "flat", "sabr" or
// "table"; a table gives Vols[i][j] at Times[i] and Strikes[j].
type Smile struct {
	Type    string      `json:"Type"`
	ATMVol  float64     `json:"ATMVol"`
	Beta    float64     `json:"Beta"`
	Rho     float64     `json:"Rho"`
	Nu      float64     `json:"Nu"`
	Times   []float64   `json:"Times"`
	Strikes []float64   `json:"Strikes"`
	Vols    [][]float64 `json:"Vols"`
}

type GridParameters struct {
	TimeSteps     int     `json:"TimeSteps"`
	SpaceSteps    int     `json:"SpaceSteps"`
	TimeBunching  float64 `json:"TimeBunching"`
	SpaceMesh     string  `json:"SpaceMesh"`
	SpaceBunching float64 `json:"SpaceBunching"`
	MaxProxyDelta float64 `json:"MaxProxyDelta"` // moneyness half-width in ATM standard deviations
}

type SolverParameters struct {
	Theta         float64 `json:"Theta"`
	Mode          string  `json:"Mode"`
	LowerBoundary string  `json:"LowerBoundary"` // dirichlet or neumann
}

type GreekParameters struct {
	ForwardShift   float64 `json:"ForwardShift"`
	VolShift       float64 `json:"VolShift"`
	ParallelDegree int     `json:"ParallelDegree"`
}

// LocalVolParameters is a run file. ghodss/yaml converts to JSON first, so the
// keys are the json tags.
type LocalVolParameters struct {
	Title      string           `json:"Title"`
	Spot       float64          `json:"Spot"`
	Drift      float64          `json:"Drift"`
	Rate       float64          `json:"Rate"`
	Expiry     float64          `json:"Expiry"`
	OptionType string           `json:"OptionType"`
	Strikes    []float64        `json:"Strikes"`
	Smile      Smile            `json:"Smile"`
	Grid       GridParameters   `json:"Grid"`
	Solver     SolverParameters `json:"Solver"`
	Greeks     GreekParameters  `json:"Greeks"`
}

func (ip *LocalVolParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

// SetDefaults fills anything left at zero
func (ip *LocalVolParameters) SetDefaults() {
	if len(ip.OptionType) == 0 {
		ip.OptionType = "call"
	}
	if len(ip.Smile.Type) == 0 {
		ip.Smile.Type = "flat"
	}
	g := &ip.Grid
	if g.TimeSteps == 0 {
		g.TimeSteps = greeks.DefaultTimeSteps
	}
	if g.SpaceSteps == 0 {
		g.SpaceSteps = greeks.DefaultSpaceSteps
	}
	if g.TimeBunching == 0 {
		g.TimeBunching = greeks.DefaultTimeBunching
	}
	if len(g.SpaceMesh) == 0 {
		g.SpaceMesh = "hyperbolic"
	}
	if g.SpaceBunching == 0 {
		g.SpaceBunching = greeks.DefaultSpaceBunching
	}
	if g.MaxProxyDelta == 0 {
		g.MaxProxyDelta = greeks.DefaultMaxProxyDelta
	}
	if ip.Solver.Theta == 0 {
		ip.Solver.Theta = greeks.DefaultTheta
	}
	if len(ip.Solver.Mode) == 0 {
		ip.Solver.Mode = "tridiagonal"
	}
	if len(ip.Solver.LowerBoundary) == 0 {
		ip.Solver.LowerBoundary = "dirichlet"
	}
	if ip.Greeks.ForwardShift == 0 {
		ip.Greeks.ForwardShift = greeks.DefaultForwardShift
	}
	if ip.Greeks.VolShift == 0 {
		ip.Greeks.VolShift = greeks.DefaultVolShift
	}
}

func (ip *LocalVolParameters) Validate() (err error) {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}
	check(ip.Spot > 0, "Spot must be positive, have %g", ip.Spot)
	check(ip.Expiry > 0, "Expiry must be positive, have %g", ip.Expiry)
	check(len(ip.Strikes) > 0, "need at least one strike")
	for _, k := range ip.Strikes {
		check(k > 0, "strikes must be positive, have %g", k)
	}
	if _, err = types.ParseOptionType(ip.OptionType); err != nil {
		errs = append(errs, err)
	}
	if _, err = types.ParseMeshType(ip.Grid.SpaceMesh); err != nil {
		errs = append(errs, err)
	}
	var mode types.SolverMode
	if mode, err = types.ParseSolverMode(ip.Solver.Mode); err != nil {
		errs = append(errs, err)
	}
	check(mode != types.PSOR, "PSOR needs early exercise, runs are European")
	switch strings.ToLower(ip.Solver.LowerBoundary) {
	case "dirichlet", "neumann":
	default:
		errs = append(errs, fmt.Errorf("unknown lower boundary %q", ip.Solver.LowerBoundary))
	}
	check(ip.Solver.Theta >= 0 && ip.Solver.Theta <= 1, "Theta must be in [0, 1], have %g", ip.Solver.Theta)
	check(ip.Grid.TimeSteps > 0 && ip.Grid.SpaceSteps > 1, "need positive grid steps, have %d by %d",
		ip.Grid.TimeSteps, ip.Grid.SpaceSteps)
	check(ip.Grid.MaxProxyDelta > 0, "MaxProxyDelta must be positive, have %g", ip.Grid.MaxProxyDelta)
	switch strings.ToLower(ip.Smile.Type) {
	case "flat":
		check(ip.Smile.ATMVol > 0, "flat smile needs a positive ATMVol")
	case "sabr":
		check(ip.Smile.ATMVol > 0, "SABR smile needs a positive ATMVol")
		check(ip.Smile.Beta >= 0 && ip.Smile.Beta <= 1, "SABR Beta must be in [0, 1], have %g", ip.Smile.Beta)
		check(math.Abs(ip.Smile.Rho) < 1, "SABR Rho must be in (-1, 1), have %g", ip.Smile.Rho)
		check(ip.Smile.Nu >= 0, "SABR Nu must be non-negative, have %g", ip.Smile.Nu)
	case "table":
		check(len(ip.Smile.Times) > 0 && len(ip.Smile.Strikes) > 1, "table smile needs times and strikes")
	default:
		errs = append(errs, fmt.Errorf("unknown smile type %q", ip.Smile.Type))
	}
	if len(errs) != 0 {
		return fmt.Errorf("%w: %w", ErrInvalidParameters, errors.Join(errs...))
	}
	return nil
}

func (ip *LocalVolParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("%8.5f\t\t= Spot\n", ip.Spot)
	fmt.Printf("%8.5f\t\t= Drift\n", ip.Drift)
	fmt.Printf("%8.5f\t\t= Rate\n", ip.Rate)
	fmt.Printf("%8.5f\t\t= Expiry\n", ip.Expiry)
	fmt.Printf("[%s]\t\t\t= Option Type\n", ip.OptionType)
	fmt.Printf("%v\t= Strikes\n", ip.Strikes)
	fmt.Printf("[%s]\t\t\t= Smile\n", ip.Smile.Type)
	switch strings.ToLower(ip.Smile.Type) {
	case "sabr":
		fmt.Printf("ATMVol = %g, Beta = %g, Rho = %g, Nu = %g\n", ip.Smile.ATMVol, ip.Smile.Beta, ip.Smile.Rho, ip.Smile.Nu)
	case "flat":
		fmt.Printf("%8.5f\t\t= ATMVol\n", ip.Smile.ATMVol)
	}
	fmt.Printf("[%d x %d]\t\t= Time x Space Steps\n", ip.Grid.TimeSteps, ip.Grid.SpaceSteps)
	fmt.Printf("[%s]\t\t= Space Mesh\n", ip.Grid.SpaceMesh)
	fmt.Printf("%8.5f\t\t= Theta\n", ip.Solver.Theta)
	fmt.Printf("[%s]\t\t= Solver Mode\n", ip.Solver.Mode)
	fmt.Printf("[%s]\t\t= Lower Boundary\n", ip.Solver.LowerBoundary)
}

func (ip *LocalVolParameters) IsCall() bool {
	ot, _ := types.ParseOptionType(ip.OptionType)
	return ot.IsCall()
}

func (ip *LocalVolParameters) ForwardCurve() (*curve.ForwardCurve, error) {
	return curve.NewForwardCurve(ip.Spot, ip.Drift)
}

func (ip *LocalVolParameters) YieldCurve() *curve.YieldCurve {
	return curve.NewConstantYieldCurve(ip.Rate)
}

// SmileSurface builds the strike smile on the run's forward curve
func (ip *LocalVolParameters) SmileSurface(fwd *curve.ForwardCurve) (vol *volatility.BlackVolatilitySurfaceStrike, err error) {
	var s surface.Surface2D
	switch strings.ToLower(ip.Smile.Type) {
	case "flat":
		s = surface.Constant(ip.Smile.ATMVol)
	case "sabr":
		p := sabr.Parameters{Beta: ip.Smile.Beta, Rho: ip.Smile.Rho, Nu: ip.Smile.Nu}
		f := fwd.Forward(ip.Expiry)
		if p.Alpha = sabr.ATMAlpha(ip.Smile.ATMVol, f, ip.Expiry, p); math.IsNaN(p.Alpha) {
			err = fmt.Errorf("%w: no SABR alpha matches ATM vol %g", ErrInvalidParameters, ip.Smile.ATMVol)
			return
		}
		s = sabr.NewSmileSurface(fwd, sabr.Flat(p))
	case "table":
		nodes, _ := ip.VolNodes()
		return nodes.Surface(0, 0, 0)
	default:
		err = fmt.Errorf("%w: unknown smile type %q", ErrInvalidParameters, ip.Smile.Type)
		return
	}
	vol = volatility.NewBlackVolatilitySurfaceStrike(s)
	return
}

// VolNodes is the quote grid of a table smile, ok is false for other smiles
func (ip *LocalVolParameters) VolNodes() (nodes greeks.VolNodes, ok bool) {
	if strings.ToLower(ip.Smile.Type) != "table" {
		return
	}
	return greeks.VolNodes{Times: ip.Smile.Times, Strikes: ip.Smile.Strikes, Vols: ip.Smile.Vols}, true
}

// MoneynessGrid is the forward moneyness grid sized from the ATM vol
func (ip *LocalVolParameters) MoneynessGrid(atmVol float64) (gs pde.GridSpec, err error) {
	var mt types.MeshType
	if mt, err = types.ParseMeshType(ip.Grid.SpaceMesh); err != nil {
		return
	}
	maxM := math.Exp(ip.Grid.MaxProxyDelta * atmVol * math.Sqrt(ip.Expiry))
	gs = pde.GridSpec{
		TimeNodes:     ip.Grid.TimeSteps + 1,
		SpaceNodes:    ip.Grid.SpaceSteps + 1,
		TimeBunching:  ip.Grid.TimeBunching,
		SpaceMesh:     mt,
		SpaceBunching: ip.Grid.SpaceBunching,
		MinX:          1 / maxM,
		MaxX:          maxM,
		CenterX:       1,
	}
	return
}

func (ip *LocalVolParameters) ThetaSolver(fullResults bool) (*pde.ThetaSolver, error) {
	mode, err := types.ParseSolverMode(ip.Solver.Mode)
	if err != nil {
		return nil, err
	}
	return pde.NewThetaSolver(ip.Solver.Theta, fullResults, pde.WithMode(mode))
}

func (ip *LocalVolParameters) NeumannLowerBoundary() bool {
	return strings.ToLower(ip.Solver.LowerBoundary) == "neumann"
}

func (ip *LocalVolParameters) GreekCalculator() *greeks.Calculator {
	c := greeks.NewCalculator()
	c.Theta = ip.Solver.Theta
	c.TimeSteps, c.SpaceSteps = ip.Grid.TimeSteps, ip.Grid.SpaceSteps
	c.TimeBunching, c.SpaceBunching = ip.Grid.TimeBunching, ip.Grid.SpaceBunching
	c.MaxProxyDelta = ip.Grid.MaxProxyDelta
	c.ForwardShift, c.VolShift = ip.Greeks.ForwardShift, ip.Greeks.VolShift
	c.ParallelDegree = ip.Greeks.ParallelDegree
	c.NeumannLowerBoundary = ip.NeumannLowerBoundary()
	return c
}
