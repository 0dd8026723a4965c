package model

// PerformanceStats summarizes the stored signal history.
//
// SuccessRate is a labeling proxy: the fraction of signals with
// confidence >= 80. It is NOT a realized-outcome accuracy metric;
// no trade outcomes are tracked anywhere in this system.
type PerformanceStats struct {
	TotalSignals  int     `json:"total_signals"`
	SignalsToday  int     `json:"signals_today"`
	SuccessRate   float64 `json:"success_rate"` // high-confidence fraction, percent
	AvgConfidence float64 `json:"avg_confidence"`
	BuySignals    int     `json:"buy_signals"`
	SellSignals   int     `json:"sell_signals"`
}

// PairStats aggregates signals for one currency pair.
type PairStats struct {
	Count         int     `json:"count"`
	BuyCount      int     `json:"buy_count"`
	SellCount     int     `json:"sell_count"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// SignalStatistics is the detailed distribution view over the history.
type SignalStatistics struct {
	PairStatistics     map[string]PairStats `json:"pair_statistics"`
	HourlyDistribution map[int]int          `json:"hourly_distribution"`
	TotalSignals       int                  `json:"total_signals"`
}
