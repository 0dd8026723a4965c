package marketdata

import (
	"hash/fnv"
	"math"
	"math/rand"
	"strings"
	"time"

	"fxsignals/internal/model"
)

// basePrices anchors the sample walk near realistic spot levels so the
// indicator math sees plausible magnitudes per pair.
var basePrices = map[string]float64{
	"EURUSD": 1.0850,
	"GBPUSD": 1.2650,
	"USDJPY": 149.50,
	"AUDUSD": 0.6550,
	"USDCAD": 1.3650,
	"AUDCAD": 0.8950,
}

const defaultBasePrice = 1.0

// intervalDuration maps a bar interval string to its bar length.
func intervalDuration(interval string) time.Duration {
	switch interval {
	case "1m":
		return time.Minute
	case "2m":
		return 2 * time.Minute
	case "5m":
		return 5 * time.Minute
	case "15m":
		return 15 * time.Minute
	case "30m":
		return 30 * time.Minute
	case "1h", "60m":
		return time.Hour
	case "1d":
		return 24 * time.Hour
	default:
		return time.Minute
	}
}

// SampleCandles generates n synthetic candles ending at end, a gentle
// random walk around the pair's base price. The walk is seeded from the
// symbol and interval so repeated calls for the same pair produce the
// same series; it exists to keep the scan loop alive through feed
// outages, not to look like real market data.
func SampleCandles(symbol, interval string, n int, end time.Time) []model.Candle {
	base := defaultBasePrice
	key := strings.ToUpper(strings.TrimSuffix(symbol, "=X"))
	if p, ok := basePrices[key]; ok {
		base = p
	}

	h := fnv.New64a()
	h.Write([]byte(key + "|" + interval))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	step := intervalDuration(interval)
	start := end.Truncate(step).Add(-time.Duration(n-1) * step)

	candles := make([]model.Candle, n)
	price := base
	for i := range candles {
		open := price
		price *= 1 + rng.NormFloat64()*0.0005
		close := price
		wick := math.Abs(rng.NormFloat64()) * 0.0002 * base
		candles[i] = model.Candle{
			TS:     start.Add(time.Duration(i) * step),
			Open:   open,
			High:   math.Max(open, close) + wick,
			Low:    math.Min(open, close) - wick,
			Close:  close,
			Volume: 1000 + rng.Float64()*4000,
		}
	}
	return candles
}
