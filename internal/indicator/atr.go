package indicator

import "math"

// ATR computes the Average True Range: the rolling mean over period of
// true range = max(high-low, |high-prevClose|, |low-prevClose|).
// The first bar has no previous close, so its true range is high-low.
func ATR(high, low, close []float64, period int) []float64 {
	n := len(close)
	if !sameLen(high, low, close) {
		return undefinedSeries(n)
	}

	tr := undefinedSeries(n)
	for i := 0; i < n; i++ {
		if !IsDefined(high[i]) || !IsDefined(low[i]) {
			continue
		}
		r := high[i] - low[i]
		if i > 0 && IsDefined(close[i-1]) {
			if v := math.Abs(high[i] - close[i-1]); v > r {
				r = v
			}
			if v := math.Abs(low[i] - close[i-1]); v > r {
				r = v
			}
		}
		tr[i] = r
	}
	return rollingMean(tr, period)
}
