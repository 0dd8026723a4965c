package indicator

// Momentum computes the percentage change of values against the value
// period bars prior: (v/prev - 1) * 100.
func Momentum(values []float64, period int) []float64 {
	return pctChangeOver(values, period)
}

// ROC computes the Rate of Change over period: ((v - prev)/prev) * 100.
// Algebraically identical to Momentum; both are kept because callers
// refer to them by their conventional names.
func ROC(values []float64, period int) []float64 {
	return pctChangeOver(values, period)
}

func pctChangeOver(values []float64, period int) []float64 {
	n := len(values)
	out := undefinedSeries(n)
	if period <= 0 {
		return out
	}
	for i := period; i < n; i++ {
		prev := values[i-period]
		if !IsDefined(values[i]) || !IsDefined(prev) || prev == 0 {
			continue
		}
		out[i] = (values[i] - prev) / prev * 100
	}
	return out
}

// PctChange computes the bar-to-bar percentage change series
// (period 1, as a fraction rather than percent).
func PctChange(values []float64) []float64 {
	n := len(values)
	out := undefinedSeries(n)
	for i := 1; i < n; i++ {
		prev := values[i-1]
		if !IsDefined(values[i]) || !IsDefined(prev) || prev == 0 {
			continue
		}
		out[i] = (values[i] - prev) / prev
	}
	return out
}
