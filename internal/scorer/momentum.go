package scorer

import (
	"gonum.org/v1/gonum/stat"

	"fxsignals/internal/model"
)

type momentumLevel int

const (
	momentumNeutral momentumLevel = iota
	momentumBullish
	momentumBearish
	momentumStrongBullish
	momentumStrongBearish
)

// classifyMomentum grades the short-term price momentum over the last
// 5 bars, requiring a volume push (recent 3-bar vs 10-bar mean) for the
// strong grades. Percent thresholds are deliberately tight: this feeds
// 1-minute signals.
func classifyMomentum(candles []model.Candle) momentumLevel {
	n := len(candles)
	if n < 10 {
		return momentumNeutral
	}

	recent := candles[n-5:]
	first := recent[0].Close
	if first == 0 {
		return momentumNeutral
	}
	change := (recent[len(recent)-1].Close - first) / first * 100

	volumeRatio := 1.0
	avg := stat.Mean(model.Volumes(candles[n-10:]), nil)
	if avg > 0 {
		volumeRatio = stat.Mean(model.Volumes(candles[n-3:]), nil) / avg
	}

	switch {
	case change > 0.02 && volumeRatio > 1.2:
		return momentumStrongBullish
	case change < -0.02 && volumeRatio > 1.2:
		return momentumStrongBearish
	case change > 0.01:
		return momentumBullish
	case change < -0.01:
		return momentumBearish
	default:
		return momentumNeutral
	}
}
