package indicator

// BollingerResult holds the three Bollinger Band series.
type BollingerResult struct {
	Upper  []float64
	Middle []float64
	Lower  []float64
}

// Bollinger computes Bollinger Bands: middle = SMA(period),
// upper/lower = middle +/- k * rolling sample stddev(period).
func Bollinger(values []float64, period int, k float64) BollingerResult {
	middle := SMA(values, period)
	sd := rollingStdDev(values, period)

	n := len(values)
	upper := make([]float64, n)
	lower := make([]float64, n)
	for i := 0; i < n; i++ {
		upper[i] = middle[i] + k*sd[i]
		lower[i] = middle[i] - k*sd[i]
	}
	return BollingerResult{Upper: upper, Middle: middle, Lower: lower}
}

// BandPosition returns (close - lower)/(upper - lower) per bar: 0 at the
// lower band, 1 at the upper. Undefined where the bands collapse.
func BandPosition(closes []float64, bands BollingerResult) []float64 {
	out := undefinedSeries(len(closes))
	if !sameLen(closes, bands.Upper, bands.Lower) {
		return out
	}
	for i := range closes {
		width := bands.Upper[i] - bands.Lower[i]
		if !IsDefined(width) || width == 0 {
			continue
		}
		out[i] = (closes[i] - bands.Lower[i]) / width
	}
	return out
}
