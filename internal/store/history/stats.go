package history

import "fxsignals/internal/model"

// highConfidenceThreshold marks the confidence level counted toward the
// success-rate proxy. The store has no trade outcomes to settle against,
// so "success" here means a high-conviction signal, not a realized win.
const highConfidenceThreshold = 80.0

// PerformanceStats aggregates the whole history into headline numbers.
// An empty history yields the zero value.
func (s *Store) PerformanceStats() model.PerformanceStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats model.PerformanceStats
	stats.TotalSignals = len(s.signals)
	if stats.TotalSignals == 0 {
		return stats
	}

	stats.SignalsToday = len(s.todayLocked())

	var confSum float64
	var highConf int
	for _, sig := range s.signals {
		confSum += sig.Confidence
		if sig.Confidence >= highConfidenceThreshold {
			highConf++
		}
		if sig.Direction == model.DirectionBuy {
			stats.BuySignals++
		} else {
			stats.SellSignals++
		}
	}
	stats.AvgConfidence = confSum / float64(stats.TotalSignals)
	stats.SuccessRate = float64(highConf) / float64(stats.TotalSignals) * 100
	return stats
}

// Statistics breaks the history down per pair and per hour of day.
func (s *Store) Statistics() model.SignalStatistics {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := model.SignalStatistics{
		PairStatistics:     make(map[string]model.PairStats),
		HourlyDistribution: make(map[int]int),
		TotalSignals:       len(s.signals),
	}

	confSums := make(map[string]float64)
	for _, sig := range s.signals {
		ps := stats.PairStatistics[sig.Pair]
		ps.Count++
		if sig.Direction == model.DirectionBuy {
			ps.BuyCount++
		} else {
			ps.SellCount++
		}
		confSums[sig.Pair] += sig.Confidence
		stats.PairStatistics[sig.Pair] = ps

		stats.HourlyDistribution[sig.CreatedAt.Hour()]++
	}
	for pair, ps := range stats.PairStatistics {
		ps.AvgConfidence = confSums[pair] / float64(ps.Count)
		stats.PairStatistics[pair] = ps
	}
	return stats
}
