// Package indicator provides technical indicator calculations over candle data.
//
// All functions are pure: they take one or more numeric series plus a window
// and return series aligned index-for-index with the input. Positions inside a
// warm-up window, and positions where the computation degenerates (division by
// zero, empty window), carry the Undefined sentinel instead of a value. No
// function returns an error or panics on malformed input — a bad period or a
// length mismatch yields an all-undefined series of the input length.
package indicator

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Undefined is the sentinel for warm-up positions and degenerate computations.
// It lets callers distinguish "no data" from a legitimate zero value.
func Undefined() float64 { return math.NaN() }

// IsDefined reports whether v carries a real value.
func IsDefined(v float64) bool { return !math.IsNaN(v) }

// undefinedSeries returns an all-undefined series of length n.
func undefinedSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func windowDefined(w []float64) bool {
	for _, v := range w {
		if !IsDefined(v) {
			return false
		}
	}
	return true
}

// rollingMean computes the rolling arithmetic mean over a period window.
// A window containing any undefined value yields an undefined position.
func rollingMean(values []float64, period int) []float64 {
	out := undefinedSeries(len(values))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		w := values[i-period+1 : i+1]
		if !windowDefined(w) {
			continue
		}
		out[i] = stat.Mean(w, nil)
	}
	return out
}

// rollingStdDev computes the rolling sample standard deviation (n-1 divisor,
// matching the reference rolling-std semantics).
func rollingStdDev(values []float64, period int) []float64 {
	out := undefinedSeries(len(values))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		w := values[i-period+1 : i+1]
		if !windowDefined(w) {
			continue
		}
		out[i] = stat.StdDev(w, nil)
	}
	return out
}

// rollingMax computes the rolling maximum over a period window.
func rollingMax(values []float64, period int) []float64 {
	out := undefinedSeries(len(values))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		w := values[i-period+1 : i+1]
		if !windowDefined(w) {
			continue
		}
		max := w[0]
		for _, v := range w[1:] {
			if v > max {
				max = v
			}
		}
		out[i] = max
	}
	return out
}

// rollingMin computes the rolling minimum over a period window.
func rollingMin(values []float64, period int) []float64 {
	out := undefinedSeries(len(values))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		w := values[i-period+1 : i+1]
		if !windowDefined(w) {
			continue
		}
		min := w[0]
		for _, v := range w[1:] {
			if v < min {
				min = v
			}
		}
		out[i] = min
	}
	return out
}

// sub returns a-b elementwise. Undefined operands propagate.
func sub(a, b []float64) []float64 {
	if len(a) != len(b) {
		return undefinedSeries(len(a))
	}
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}

func sameLen(series ...[]float64) bool {
	for _, s := range series[1:] {
		if len(s) != len(series[0]) {
			return false
		}
	}
	return true
}
