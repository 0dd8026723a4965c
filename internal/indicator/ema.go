package indicator

// EMA computes the exponentially weighted mean of values with smoothing
// factor alpha = 2/(span+1). Weights are adjusted over the available history,
// so the series is defined from the first defined input onward. An undefined
// input position carries the previous mean forward.
func EMA(values []float64, span int) []float64 {
	out := undefinedSeries(len(values))
	if span <= 0 {
		return out
	}
	alpha := 2.0 / (float64(span) + 1.0)
	decay := 1.0 - alpha

	num, den := 0.0, 0.0
	started := false
	for i, v := range values {
		if !IsDefined(v) {
			if started {
				num *= decay
				den *= decay
				out[i] = num / den
			}
			continue
		}
		num = v + decay*num
		den = 1 + decay*den
		started = true
		out[i] = num / den
	}
	return out
}
