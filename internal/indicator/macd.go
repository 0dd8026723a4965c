package indicator

// MACDResult holds the MACD line, its signal line and the histogram.
type MACDResult struct {
	MACD   []float64
	Signal []float64
	Hist   []float64
}

// MACD computes Moving Average Convergence Divergence:
// MACD = EMA(fast) - EMA(slow), Signal = EMA(signal) of MACD,
// Hist = MACD - Signal. Classic spans are 12, 26, 9.
func MACD(values []float64, fast, slow, signal int) MACDResult {
	macd := sub(EMA(values, fast), EMA(values, slow))
	sig := EMA(macd, signal)
	return MACDResult{
		MACD:   macd,
		Signal: sig,
		Hist:   sub(macd, sig),
	}
}
