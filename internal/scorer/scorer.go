// Package scorer implements the weighted-rule signal engine.
//
// A Scorer evaluates an ordered battery of independent technical rules
// against the latest bars of a candle sequence and its indicator snapshot.
// Each triggered rule adds a fixed weight to the accumulated strength and
// may commit a direction; a rule that conflicts with an already-committed
// direction is skipped, never overwrites. The clamped total becomes the
// signal confidence.
package scorer

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"fxsignals/internal/indicator"
	"fxsignals/internal/model"
	"fxsignals/internal/session"
)

// MinBars is the minimum candle history required to score at all.
const MinBars = 50

// Config holds the scoring thresholds.
type Config struct {
	// ConfidenceThreshold is the minimum clamped score (0-100) to emit.
	ConfidenceThreshold float64

	// Timeframe is the bar interval being scored ("1m", "5m", ...).
	// The 1m timeframe requires two confirmations, longer ones need one.
	Timeframe string
}

// Scorer evaluates candle sequences into signals. The random source is
// injected so entry-delay sampling is seedable in tests.
type Scorer struct {
	cfg Config
	rng *rand.Rand
	now func() time.Time
}

// New creates a Scorer. A nil rng falls back to a time-seeded source.
func New(cfg Config, rng *rand.Rand) *Scorer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Scorer{cfg: cfg, rng: rng, now: time.Now}
}

// tally accumulates rule votes.
type tally struct {
	strength  float64
	direction model.Direction // "" until a rule commits one
	reasons   []string
	entries   []string
}

// apply records a triggered rule. dir=="" is direction-agnostic: it boosts
// the score without committing a side. A dir that conflicts with an
// already-committed direction is rejected outright.
func (t *tally) apply(dir model.Direction, weight float64, reason, entry string) bool {
	if dir != "" {
		if t.direction != "" && t.direction != dir {
			return false
		}
		t.direction = dir
	}
	t.strength += weight
	t.reasons = append(t.reasons, reason)
	if entry != "" {
		t.entries = append(t.entries, entry)
	}
	return true
}

// Score runs the rule battery and returns a Signal, or nil when no
// qualifying signal exists. It never returns an error and never panics:
// short history, undefined indicator values and degenerate inputs all
// collapse to "no signal".
func (s *Scorer) Score(symbol string, candles []model.Candle, snap *indicator.Snapshot, sess session.Info, sentiment float64) *model.Signal {
	if len(candles) < MinBars || snap == nil {
		return nil
	}
	n := len(candles)
	latestClose := candles[n-1].Close
	prevClose := candles[n-2].Close

	rsi := lastOr(snap.RSI, 50)
	macdV := lastOr(snap.MACD.MACD, 0)
	macdSig := lastOr(snap.MACD.Signal, 0)
	maShort := lastOr(snap.MAShort, latestClose)
	maLong := lastOr(snap.MALong, latestClose)
	bbUpper := lastOr(snap.Bollinger.Upper, latestClose)
	bbLower := lastOr(snap.Bollinger.Lower, latestClose)
	bbPos := lastOr(snap.BBPosition, 0.5)

	var t tally

	// 1. RSI reversal levels.
	switch {
	case rsi < 20:
		t.apply(model.DirectionBuy, 40, "RSI extreme oversold reversal", "Strong reversal setup")
	case rsi < 30:
		t.apply(model.DirectionBuy, 25, "RSI oversold reversal", "Reversal setup")
	case rsi > 80:
		t.apply(model.DirectionSell, 40, "RSI extreme overbought reversal", "Strong reversal setup")
	case rsi > 70:
		t.apply(model.DirectionSell, 25, "RSI overbought reversal", "Reversal setup")
	}

	// 2. Bollinger breakout and band bounce. A fresh breakout beats a bounce.
	switch {
	case latestClose > bbUpper && prevClose <= bbUpper:
		t.apply(model.DirectionBuy, 35, "Bollinger Band breakout", "Fresh breakout confirmed")
	case latestClose < bbLower && prevClose >= bbLower:
		t.apply(model.DirectionSell, 35, "Bollinger Band breakdown", "Fresh breakdown confirmed")
	case bbPos < 0.05 && latestClose > prevClose:
		t.apply(model.DirectionBuy, 30, "Bollinger Band bounce up", "Support bounce confirmed")
	case bbPos > 0.95 && latestClose < prevClose:
		t.apply(model.DirectionSell, 30, "Bollinger Band bounce down", "Resistance bounce confirmed")
	}

	// 3. Moving average cross and trend continuation.
	prevMAShort := prevOr(snap.MAShort, maShort)
	prevMALong := prevOr(snap.MALong, maLong)
	switch {
	case maShort > maLong && prevMAShort <= prevMALong:
		t.apply(model.DirectionBuy, 25, "Fresh MA bullish cross", "Trend change confirmed")
	case maShort < maLong && prevMAShort >= prevMALong:
		t.apply(model.DirectionSell, 25, "Fresh MA bearish cross", "Trend change confirmed")
	case maShort > maLong && latestClose > maShort && prevClose <= maShort:
		t.apply(model.DirectionBuy, 15, "MA bullish breakout", "Trend continuation")
	case maShort < maLong && latestClose < maShort && prevClose >= maShort:
		t.apply(model.DirectionSell, 15, "MA bearish breakdown", "Trend continuation")
	}

	// 4. MACD signal-line cross.
	prevMACD := prevOr(snap.MACD.MACD, macdV)
	prevMACDSig := prevOr(snap.MACD.Signal, macdSig)
	switch {
	case macdV > macdSig && prevMACD <= prevMACDSig:
		t.apply(model.DirectionBuy, 20, "MACD bullish signal cross", "Momentum shift up")
	case macdV < macdSig && prevMACD >= prevMACDSig:
		t.apply(model.DirectionSell, 20, "MACD bearish signal cross", "Momentum shift down")
	}

	// 5. Short-term momentum confirmation.
	switch classifyMomentum(candles) {
	case momentumStrongBullish:
		t.apply(model.DirectionBuy, 15, "Strong bullish momentum", "Price acceleration up")
	case momentumStrongBearish:
		t.apply(model.DirectionSell, 15, "Strong bearish momentum", "Price acceleration down")
	}

	// 6. Volume surge, direction-agnostic.
	if n > 20 {
		recent := stat.Mean(model.Volumes(candles[n-3:]), nil)
		avg := stat.Mean(model.Volumes(candles[n-20:]), nil)
		if recent > avg*1.8 {
			t.apply("", 20, "Exceptional volume surge", "High volume confirmation")
		} else if recent > avg*1.3 {
			t.apply("", 10, "Above average volume", "")
		}
	}

	// 7. External news sentiment.
	if math.Abs(sentiment) > 0.3 {
		switch {
		case (sentiment > 0 && t.direction == model.DirectionBuy) ||
			(sentiment < 0 && t.direction == model.DirectionSell):
			t.apply(t.direction, 15, "Strong news alignment", "News sentiment supports trade")
		case t.direction == "":
			dir := model.DirectionBuy
			if sentiment < 0 {
				dir = model.DirectionSell
			}
			t.apply(dir, 10, "News-driven signal", "")
		}
	}

	confidence := math.Min(t.strength, 100)
	minConfirmations := 1
	if s.cfg.Timeframe == "1m" {
		minConfirmations = 2
	}
	if confidence < s.cfg.ConfidenceThreshold || t.direction == "" || len(t.reasons) < minConfirmations {
		return nil
	}

	expiry := expiryMinutes(s.cfg.Timeframe, sess.Volatility)
	return &model.Signal{
		Pair:              FormatPair(symbol),
		Direction:         t.direction,
		Confidence:        confidence,
		Reasons:           t.reasons,
		Reason:            strings.Join(firstN(t.reasons, 3), " + "),
		EntryTiming:       strings.Join(firstN(t.entries, 2), " + "),
		Timeframe:         fmt.Sprintf("M%d", expiry),
		ExpiryMinutes:     expiry,
		EntryDelaySeconds: s.entryDelay(candles),
		CreatedAt:         s.now().UTC(),
		RSI:               rsi,
		MACD:              macdV,
		Price:             latestClose,
		SessionVolatility: string(sess.Volatility),
	}
}

// entryDelay samples the entry delay in seconds. High two-bar price
// velocity means enter fast; otherwise wait for the next bar to form.
func (s *Scorer) entryDelay(candles []model.Candle) int {
	n := len(candles)
	if n < 3 {
		return 15
	}
	ref := candles[n-3].Close
	if ref == 0 {
		return 15
	}
	velocity := (candles[n-1].Close - ref) / ref
	if math.Abs(velocity) > 0.001 {
		return 5 + s.rng.Intn(10) // [5,15)
	}
	return 25 + s.rng.Intn(15) // [25,40)
}

// expiryMinutes derives the option expiry from the timeframe and session
// volatility. High volatility shortens the expiry.
func expiryMinutes(timeframe string, vol session.Volatility) int {
	switch timeframe {
	case "1m":
		if vol == session.VolatilityHigh {
			return 1
		}
		return 2
	case "5m":
		if vol == session.VolatilityHigh {
			return 5
		}
		return 10
	default:
		return 15
	}
}

// FormatPair converts a provider symbol like "EURUSD=X" to "EUR/USD".
func FormatPair(symbol string) string {
	symbol = strings.TrimSuffix(symbol, "=X")
	if len(symbol) >= 6 {
		return symbol[:3] + "/" + symbol[3:6]
	}
	return symbol
}

// lastOr returns the last defined value of the series, or fallback.
func lastOr(s []float64, fallback float64) float64 {
	if len(s) == 0 || !indicator.IsDefined(s[len(s)-1]) {
		return fallback
	}
	return s[len(s)-1]
}

// prevOr returns the second-latest value of the series, or fallback.
func prevOr(s []float64, fallback float64) float64 {
	if len(s) < 2 || !indicator.IsDefined(s[len(s)-2]) {
		return fallback
	}
	return s[len(s)-2]
}

func firstN(s []string, n int) []string {
	if len(s) < n {
		return s
	}
	return s[:n]
}
