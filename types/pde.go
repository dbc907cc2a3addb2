package types

import (
	"fmt"
	"strings"
)

// Direction is the time orientation of a PDE problem. Forward problems march
// calendar time from zero; backward problems march time-to-expiry from the
// payoff back to today.
type Direction uint8

const (
	Forward Direction = iota
	Backward
)

var DirectionNameMap = map[string]Direction{
	"forward":   Forward,
	"fwd":       Forward,
	"backward":  Backward,
	"backwards": Backward,
	"bwd":       Backward,
}

func (d Direction) String() string {
	switch d {
	case Forward:
		return "Forward"
	case Backward:
		return "Backward"
	}
	return "Unknown"
}

func ParseDirection(name string) (d Direction, err error) {
	var ok bool
	if d, ok = DirectionNameMap[strings.ToLower(strings.TrimSpace(name))]; !ok {
		err = fmt.Errorf("unknown PDE direction: %q", name)
	}
	return
}

// SolverMode selects the linear solve used at each theta step
type SolverMode uint8

const (
	Tridiagonal SolverMode = iota
	LUDecomp
	PSOR
)

var SolverModeNameMap = map[string]SolverMode{
	"tridiagonal": Tridiagonal,
	"thomas":      Tridiagonal,
	"lu":          LUDecomp,
	"ludecomp":    LUDecomp,
	"psor":        PSOR,
}

func (sm SolverMode) String() string {
	switch sm {
	case Tridiagonal:
		return "Tridiagonal"
	case LUDecomp:
		return "LUDecomp"
	case PSOR:
		return "PSOR"
	}
	return "Unknown"
}

func ParseSolverMode(name string) (sm SolverMode, err error) {
	var ok bool
	if sm, ok = SolverModeNameMap[strings.ToLower(strings.TrimSpace(name))]; !ok {
		err = fmt.Errorf("unknown solver mode: %q", name)
	}
	return
}

type MeshType uint8

const (
	Uniform MeshType = iota
	Exponential
	Hyperbolic
	DoubleExponential
)

var MeshNameMap = map[string]MeshType{
	"uniform":            Uniform,
	"linear":             Uniform,
	"exponential":        Exponential,
	"exp":                Exponential,
	"hyperbolic":         Hyperbolic,
	"sinh":               Hyperbolic,
	"doubleexponential":  DoubleExponential,
	"double_exponential": DoubleExponential,
}

func (mt MeshType) String() string {
	switch mt {
	case Uniform:
		return "Uniform"
	case Exponential:
		return "Exponential"
	case Hyperbolic:
		return "Hyperbolic"
	case DoubleExponential:
		return "DoubleExponential"
	}
	return "Unknown"
}

func ParseMeshType(name string) (mt MeshType, err error) {
	var ok bool
	if mt, ok = MeshNameMap[strings.ToLower(strings.TrimSpace(name))]; !ok {
		err = fmt.Errorf("unknown mesh type: %q", name)
	}
	return
}

type OptionType uint8

const (
	Call OptionType = iota
	Put
)

var OptionNameMap = map[string]OptionType{
	"call": Call,
	"c":    Call,
	"put":  Put,
	"p":    Put,
}

func (ot OptionType) String() string {
	switch ot {
	case Call:
		return "Call"
	case Put:
		return "Put"
	}
	return "Unknown"
}

func (ot OptionType) IsCall() bool { return ot == Call }

func ParseOptionType(name string) (ot OptionType, err error) {
	var ok bool
	if ot, ok = OptionNameMap[strings.ToLower(strings.TrimSpace(name))]; !ok {
		err = fmt.Errorf("unknown option type: %q", name)
	}
	return
}
