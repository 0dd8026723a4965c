package indicator

// RSI computes the Relative Strength Index over period.
//
// Gains and losses are simple rolling means of the positive and negative
// parts of the close-to-close delta stream, RSI = 100 - 100/(1+RS).
// A window with zero average loss but positive average gain saturates at 100;
// a window with no movement at all (0/0) is undefined.
func RSI(values []float64, period int) []float64 {
	n := len(values)
	out := undefinedSeries(n)
	if period <= 0 || n == 0 {
		return out
	}

	gains := undefinedSeries(n)
	losses := undefinedSeries(n)
	for i := 1; i < n; i++ {
		if !IsDefined(values[i]) || !IsDefined(values[i-1]) {
			continue
		}
		d := values[i] - values[i-1]
		if d > 0 {
			gains[i], losses[i] = d, 0
		} else {
			gains[i], losses[i] = 0, -d
		}
	}

	avgGain := rollingMean(gains, period)
	avgLoss := rollingMean(losses, period)
	for i := range out {
		g, l := avgGain[i], avgLoss[i]
		if !IsDefined(g) || !IsDefined(l) {
			continue
		}
		if l == 0 {
			if g > 0 {
				out[i] = 100
			}
			continue
		}
		rs := g / l
		out[i] = 100 - 100/(1+rs)
	}
	return out
}
