package pde

import "math"

// InitialCondition is the solution at grid time zero, a payoff for backward
// problems and today's prices for forward ones
type InitialCondition interface {
	Value(x float64) float64
}

type InitialFunc func(x float64) float64

func (f InitialFunc) Value(x float64) float64 { return f(x) }

type CallPayoff struct{ Strike float64 }

func (p CallPayoff) Value(x float64) float64 { return math.Max(x-p.Strike, 0) }

type PutPayoff struct{ Strike float64 }

func (p PutPayoff) Value(x float64) float64 { return math.Max(p.Strike-x, 0) }

// Payoff picks the call or put payoff
func Payoff(strike float64, isCall bool) InitialCondition {
	if isCall {
		return CallPayoff{Strike: strike}
	}
	return PutPayoff{Strike: strike}
}

// LogCallPayoff is the call payoff with the space variable y = ln(spot)
type LogCallPayoff struct{ Strike float64 }

func (p LogCallPayoff) Value(y float64) float64 { return math.Max(math.Exp(y)-p.Strike, 0) }

type LogPutPayoff struct{ Strike float64 }

func (p LogPutPayoff) Value(y float64) float64 { return math.Max(p.Strike-math.Exp(y), 0) }

// ForwardCallInitial is today's undiscounted call price across strikes, max(S0-k, 0)
type ForwardCallInitial struct{ Spot float64 }

func (p ForwardCallInitial) Value(k float64) float64 { return math.Max(p.Spot-k, 0) }

// MoneynessCallInitial is today's call price in units of the forward
type MoneynessCallInitial struct{}

func (MoneynessCallInitial) Value(m float64) float64 { return math.Max(1-m, 0) }

type MoneynessPutInitial struct{}

func (MoneynessPutInitial) Value(m float64) float64 { return math.Max(m-1, 0) }

func MoneynessInitial(isCall bool) InitialCondition {
	if isCall {
		return MoneynessCallInitial{}
	}
	return MoneynessPutInitial{}
}
