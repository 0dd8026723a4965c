package scorer

import (
	"math"
	"math/rand"
	"strings"
	"testing"
	"time"

	"fxsignals/internal/indicator"
	"fxsignals/internal/model"
	"fxsignals/internal/session"
)

// ────────────────────────────────────────────────────────────
// Helpers
// ────────────────────────────────────────────────────────────

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// seriesWith returns an all-undefined series of length n with the last
// two positions set.
func seriesWith(n int, prevV, lastV float64) []float64 {
	out := nanSeries(n)
	out[n-2] = prevV
	out[n-1] = lastV
	return out
}

// emptySnapshot yields all-undefined series so every scorer read falls
// back to its neutral default.
func emptySnapshot(n int) *indicator.Snapshot {
	return &indicator.Snapshot{
		RSI:     nanSeries(n),
		MAShort: nanSeries(n),
		MALong:  nanSeries(n),
		MACD: indicator.MACDResult{
			MACD:   nanSeries(n),
			Signal: nanSeries(n),
			Hist:   nanSeries(n),
		},
		Bollinger: indicator.BollingerResult{
			Upper:  nanSeries(n),
			Middle: nanSeries(n),
			Lower:  nanSeries(n),
		},
		BBPosition:  nanSeries(n),
		VolumeSMA:   nanSeries(n),
		PriceChange: nanSeries(n),
	}
}

func flatCandles(n int, price, volume float64) []model.Candle {
	base := time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)
	out := make([]model.Candle, n)
	for i := range out {
		out[i] = model.Candle{
			TS:     base.Add(time.Duration(i) * time.Minute),
			Open:   price,
			High:   price,
			Low:    price,
			Close:  price,
			Volume: volume,
		}
	}
	return out
}

func newTestScorer(threshold float64, timeframe string) *Scorer {
	return New(Config{ConfidenceThreshold: threshold, Timeframe: timeframe},
		rand.New(rand.NewSource(1)))
}

var mediumSession = session.Info{Sessions: []string{session.London}, Volatility: session.VolatilityMedium}

// ────────────────────────────────────────────────────────────
// Gate conditions
// ────────────────────────────────────────────────────────────

func TestScore_ShortHistory_NoSignal(t *testing.T) {
	s := newTestScorer(0, "1m")
	candles := flatCandles(MinBars-1, 1.10, 1000)
	if sig := s.Score("EURUSD=X", candles, emptySnapshot(len(candles)), mediumSession, 0); sig != nil {
		t.Fatalf("expected nil for %d bars, got %+v", MinBars-1, sig)
	}
}

func TestScore_NeutralMarket_NoSignal(t *testing.T) {
	// RSI=50, no breakout, no crosses, flat momentum, flat volume,
	// zero sentiment: nothing triggers.
	s := newTestScorer(0, "5m")
	candles := flatCandles(60, 1.10, 1000)
	snap := emptySnapshot(60)
	snap.RSI = seriesWith(60, 50, 50)

	if sig := s.Score("EURUSD=X", candles, snap, mediumSession, 0); sig != nil {
		t.Fatalf("expected nil in neutral market, got %+v", sig)
	}
}

// ────────────────────────────────────────────────────────────
// Deterministic confluence scenario
// ────────────────────────────────────────────────────────────

func TestScore_ExtremeOversoldConfluence(t *testing.T) {
	// RSI=15 (+40 BUY), fresh Bollinger breakout above (+35 BUY),
	// fresh MA bullish cross (+25 BUY): strength 100 → confidence 100.
	n := MinBars
	candles := flatCandles(n, 1.10, 1000)
	candles[n-1].Close = 1.20

	snap := emptySnapshot(n)
	snap.RSI = seriesWith(n, 15, 15)
	snap.Bollinger.Upper = seriesWith(n, 1.15, 1.15)
	snap.Bollinger.Lower = seriesWith(n, 1.05, 1.05)
	snap.MAShort = seriesWith(n, 0.8, 1.0)
	snap.MALong = seriesWith(n, 0.9, 0.9)

	s := newTestScorer(75, "1m")
	sig := s.Score("EURUSD=X", candles, snap, mediumSession, 0)
	if sig == nil {
		t.Fatal("expected a signal")
	}

	if sig.Direction != model.DirectionBuy {
		t.Errorf("direction = %s, want BUY", sig.Direction)
	}
	if sig.Confidence != 100 {
		t.Errorf("confidence = %.1f, want 100 (clamped)", sig.Confidence)
	}
	if sig.Pair != "EUR/USD" {
		t.Errorf("pair = %q, want EUR/USD", sig.Pair)
	}
	for _, want := range []string{
		"RSI extreme oversold reversal",
		"Bollinger Band breakout",
		"Fresh MA bullish cross",
	} {
		if !strings.Contains(sig.Reason, want) {
			t.Errorf("reason %q missing %q", sig.Reason, want)
		}
	}
	// Medium volatility on the 1m timeframe → 2 minute expiry.
	if sig.ExpiryMinutes != 2 || sig.Timeframe != "M2" {
		t.Errorf("expiry = %d/%s, want 2/M2", sig.ExpiryMinutes, sig.Timeframe)
	}
	if sig.RSI != 15 || sig.Price != 1.20 {
		t.Errorf("audit echoes rsi=%.1f price=%.2f, want 15/1.20", sig.RSI, sig.Price)
	}
}

// ────────────────────────────────────────────────────────────
// Direction commit discipline
// ────────────────────────────────────────────────────────────

func TestScore_ConflictingRuleSkipped(t *testing.T) {
	// RSI=25 commits BUY (+25). A fresh MA bearish cross then attempts
	// SELL: its weight must not be added and the direction must stay BUY.
	n := MinBars
	candles := flatCandles(n, 1.0, 1000)

	snap := emptySnapshot(n)
	snap.RSI = seriesWith(n, 25, 25)
	snap.MAShort = seriesWith(n, 1.1, 0.9)
	snap.MALong = seriesWith(n, 1.0, 1.0)

	s := newTestScorer(20, "5m")
	sig := s.Score("GBPUSD=X", candles, snap, mediumSession, 0)
	if sig == nil {
		t.Fatal("expected a signal")
	}
	if sig.Direction != model.DirectionBuy {
		t.Errorf("direction = %s, want BUY", sig.Direction)
	}
	if sig.Confidence != 25 {
		t.Errorf("confidence = %.1f, want 25 (bearish cross not counted)", sig.Confidence)
	}
	for _, r := range sig.Reasons {
		if r == "Fresh MA bearish cross" {
			t.Error("conflicting rule description must not appear in reasons")
		}
	}
}

func TestScore_MinConfirmations_OneMinute(t *testing.T) {
	// A single triggered rule is not enough on the 1m timeframe.
	n := MinBars
	candles := flatCandles(n, 1.0, 1000)
	snap := emptySnapshot(n)
	snap.RSI = seriesWith(n, 25, 25)

	if sig := newTestScorer(20, "1m").Score("GBPUSD=X", candles, snap, mediumSession, 0); sig != nil {
		t.Fatalf("1m needs 2 confirmations, got %+v", sig)
	}
	if sig := newTestScorer(20, "5m").Score("GBPUSD=X", candles, snap, mediumSession, 0); sig == nil {
		t.Fatal("5m needs only 1 confirmation")
	}
}

// ────────────────────────────────────────────────────────────
// Volume and sentiment rules
// ────────────────────────────────────────────────────────────

func TestScore_VolumeSurge(t *testing.T) {
	n := MinBars
	candles := flatCandles(n, 1.0, 1000)
	for i := n - 3; i < n; i++ {
		candles[i].Volume = 3000
	}
	snap := emptySnapshot(n)
	snap.RSI = seriesWith(n, 25, 25)

	sig := newTestScorer(20, "5m").Score("USDJPY=X", candles, snap, mediumSession, 0)
	if sig == nil {
		t.Fatal("expected a signal")
	}
	// 25 (RSI) + 20 (exceptional surge).
	if sig.Confidence != 45 {
		t.Errorf("confidence = %.1f, want 45", sig.Confidence)
	}
	if !strings.Contains(strings.Join(sig.Reasons, ","), "Exceptional volume surge") {
		t.Errorf("reasons %v missing volume surge", sig.Reasons)
	}
}

func TestScore_SentimentAlignsWithDirection(t *testing.T) {
	n := MinBars
	candles := flatCandles(n, 1.0, 1000)
	snap := emptySnapshot(n)
	snap.RSI = seriesWith(n, 25, 25)

	sig := newTestScorer(20, "5m").Score("AUDUSD=X", candles, snap, mediumSession, 0.5)
	if sig == nil {
		t.Fatal("expected a signal")
	}
	// 25 (RSI BUY) + 15 (aligned sentiment).
	if sig.Confidence != 40 {
		t.Errorf("confidence = %.1f, want 40", sig.Confidence)
	}
}

func TestScore_SentimentAloneSetsDirection(t *testing.T) {
	n := MinBars
	candles := flatCandles(n, 1.0, 1000)
	snap := emptySnapshot(n)

	sig := newTestScorer(10, "5m").Score("AUDUSD=X", candles, snap, mediumSession, -0.4)
	if sig == nil {
		t.Fatal("expected a sentiment-driven signal")
	}
	if sig.Direction != model.DirectionSell {
		t.Errorf("direction = %s, want SELL", sig.Direction)
	}
	if sig.Confidence != 10 {
		t.Errorf("confidence = %.1f, want 10", sig.Confidence)
	}
}

// ────────────────────────────────────────────────────────────
// Entry delay sampling
// ────────────────────────────────────────────────────────────

func TestEntryDelay_SeededAndRanged(t *testing.T) {
	n := MinBars
	fast := flatCandles(n, 1.10, 1000)
	fast[n-1].Close = 1.20 // two-bar velocity well above 0.001

	slow := flatCandles(n, 1.10, 1000)

	s1 := New(Config{}, rand.New(rand.NewSource(7)))
	s2 := New(Config{}, rand.New(rand.NewSource(7)))

	d1 := s1.entryDelay(fast)
	if d1 < 5 || d1 >= 15 {
		t.Errorf("high-momentum delay = %d, want [5,15)", d1)
	}
	if d2 := s2.entryDelay(fast); d2 != d1 {
		t.Errorf("same seed produced %d and %d", d1, d2)
	}

	if d := s1.entryDelay(slow); d < 25 || d >= 40 {
		t.Errorf("low-momentum delay = %d, want [25,40)", d)
	}
}

// ────────────────────────────────────────────────────────────
// Momentum classifier
// ────────────────────────────────────────────────────────────

func TestClassifyMomentum(t *testing.T) {
	candles := flatCandles(20, 100, 1000)
	for i := 0; i < 5; i++ {
		candles[15+i].Close = 100 + float64(i)*0.01 // +0.04% over 5 bars
	}
	for i := 17; i < 20; i++ {
		candles[i].Volume = 1500 // ratio 1500/1150 ≈ 1.3
	}

	if got := classifyMomentum(candles); got != momentumStrongBullish {
		t.Errorf("classifyMomentum = %d, want StrongBullish", got)
	}

	if got := classifyMomentum(flatCandles(20, 100, 1000)); got != momentumNeutral {
		t.Errorf("flat series = %d, want Neutral", got)
	}

	if got := classifyMomentum(flatCandles(5, 100, 1000)); got != momentumNeutral {
		t.Errorf("short series = %d, want Neutral", got)
	}
}

func TestFormatPair(t *testing.T) {
	cases := map[string]string{
		"EURUSD=X": "EUR/USD",
		"GBPJPY=X": "GBP/JPY",
		"AUDCAD":   "AUD/CAD",
		"BTC":      "BTC",
	}
	for in, want := range cases {
		if got := FormatPair(in); got != want {
			t.Errorf("FormatPair(%q) = %q, want %q", in, got, want)
		}
	}
}
