package indicator

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// CCI computes the Commodity Channel Index over period:
// (typical - SMA(typical, period)) / (0.015 * meanAbsDev(typical, period))
// where typical = (high+low+close)/3. A zero mean absolute deviation
// (perfectly flat window) yields an undefined position.
func CCI(high, low, close []float64, period int) []float64 {
	n := len(close)
	out := undefinedSeries(n)
	if !sameLen(high, low, close) || period <= 0 {
		return out
	}

	tp := undefinedSeries(n)
	for i := 0; i < n; i++ {
		if IsDefined(high[i]) && IsDefined(low[i]) && IsDefined(close[i]) {
			tp[i] = (high[i] + low[i] + close[i]) / 3
		}
	}

	smaTP := rollingMean(tp, period)
	for i := period - 1; i < n; i++ {
		if !IsDefined(smaTP[i]) {
			continue
		}
		w := tp[i-period+1 : i+1]
		mean := stat.Mean(w, nil)
		mad := 0.0
		for _, v := range w {
			mad += math.Abs(v - mean)
		}
		mad /= float64(period)
		if mad == 0 {
			continue
		}
		out[i] = (tp[i] - smaTP[i]) / (0.015 * mad)
	}
	return out
}
