package indicator

// WilliamsR computes Williams %R over period:
// -100 * (highest_high - close) / (highest_high - lowest_low).
// The scale runs 0 (at the high) to -100 (at the low).
func WilliamsR(high, low, close []float64, period int) []float64 {
	n := len(close)
	if !sameLen(high, low, close) {
		return undefinedSeries(n)
	}

	hh := rollingMax(high, period)
	ll := rollingMin(low, period)

	out := undefinedSeries(n)
	for i := 0; i < n; i++ {
		span := hh[i] - ll[i]
		if !IsDefined(span) || span == 0 || !IsDefined(close[i]) {
			continue
		}
		out[i] = -100 * (hh[i] - close[i]) / span
	}
	return out
}
