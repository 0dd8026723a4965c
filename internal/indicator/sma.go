package indicator

// SMA computes the Simple Moving Average of values over period.
// The first period-1 positions are undefined.
func SMA(values []float64, period int) []float64 {
	return rollingMean(values, period)
}
