package indicator

// StochasticResult holds the %K and %D oscillator series.
type StochasticResult struct {
	K []float64
	D []float64
}

// Stochastic computes the stochastic oscillator:
// %K = 100 * (close - lowest_low) / (highest_high - lowest_low) over kPeriod,
// %D = SMA(%K, dPeriod). A flat kPeriod range yields an undefined %K.
func Stochastic(high, low, close []float64, kPeriod, dPeriod int) StochasticResult {
	n := len(close)
	if !sameLen(high, low, close) {
		return StochasticResult{K: undefinedSeries(n), D: undefinedSeries(n)}
	}

	hh := rollingMax(high, kPeriod)
	ll := rollingMin(low, kPeriod)

	k := undefinedSeries(n)
	for i := 0; i < n; i++ {
		span := hh[i] - ll[i]
		if !IsDefined(span) || span == 0 || !IsDefined(close[i]) {
			continue
		}
		k[i] = 100 * (close[i] - ll[i]) / span
	}
	return StochasticResult{K: k, D: SMA(k, dPeriod)}
}
