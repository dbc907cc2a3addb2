package utils

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Linspace returns N equally spaced values, end points included
func Linspace(a, b float64, N int) (v []float64) {
	v = make([]float64, N)
	if N == 1 {
		v[0] = a
		return
	}
	h := (b - a) / float64(N-1)
	for i := range v {
		v[i] = a + float64(i)*h
	}
	v[N-1] = b
	return
}

// Clamp limits x to [lo, hi]
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// SearchSorted returns the largest j with xs[j] <= x, clamped to [0, len(xs)-1]
func SearchSorted(xs []float64, x float64) (j int) {
	hi := len(xs) - 1
	if x <= xs[0] {
		return 0
	}
	if x >= xs[hi] {
		return hi
	}
	if j = sort.SearchFloat64s(xs, x); j > hi || xs[j] > x {
		j--
	}
	return
}

// L2 and Linf norms of the difference of two equal length slices
func ErrorNorms(a, b []float64) (l2, linf float64) {
	l2 = floats.Distance(a, b, 2) / math.Sqrt(float64(len(a)))
	linf = floats.Distance(a, b, math.Inf(1))
	return
}
