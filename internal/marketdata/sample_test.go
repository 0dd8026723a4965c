package marketdata

import (
	"math"
	"testing"
	"time"
)

func TestSampleCandles_DeterministicPerSymbol(t *testing.T) {
	end := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	a := SampleCandles("EURUSD=X", "1m", 50, end)
	b := SampleCandles("EURUSD=X", "1m", 50, end)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("candle %d differs between identical calls", i)
		}
	}

	other := SampleCandles("GBPUSD=X", "1m", 50, end)
	if a[0].Close == other[0].Close {
		t.Error("different symbols produced identical walks")
	}

	// the interval is part of the seed, not just the bar spacing
	hourly := SampleCandles("EURUSD=X", "1h", 50, end)
	if a[0].Close == hourly[0].Close {
		t.Error("different intervals produced identical walks")
	}
}

func TestSampleCandles_Shape(t *testing.T) {
	end := time.Date(2025, 3, 10, 12, 0, 30, 0, time.UTC)
	candles := SampleCandles("USDJPY=X", "1m", 100, end)
	if len(candles) != 100 {
		t.Fatalf("len = %d, want 100", len(candles))
	}
	for i, c := range candles {
		if c.High < math.Max(c.Open, c.Close) || c.Low > math.Min(c.Open, c.Close) {
			t.Fatalf("candle %d violates OHLC ordering: %+v", i, c)
		}
		if c.Volume <= 0 {
			t.Fatalf("candle %d has nonpositive volume", i)
		}
		if i > 0 && candles[i].TS.Sub(candles[i-1].TS) != time.Minute {
			t.Fatalf("bar spacing at %d is %v, want 1m", i, candles[i].TS.Sub(candles[i-1].TS))
		}
	}
	// walk stays anchored near the base price
	if candles[99].Close < 100 || candles[99].Close > 200 {
		t.Errorf("USDJPY walk drifted to %v", candles[99].Close)
	}
}
