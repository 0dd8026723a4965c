package model

import (
	"fmt"
	"time"
)

// Direction is the side of a trading signal.
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

// Signal is a rate-limitable trading signal produced by the scorer.
// It is immutable after creation; the history store owns it thereafter.
type Signal struct {
	Pair       string    `json:"pair"`       // display form, e.g. "EUR/USD"
	Direction  Direction `json:"direction"`  // BUY or SELL
	Confidence float64   `json:"confidence"` // clamped weighted-rule score, 0-100

	// Reasons is the ordered list of triggered rule descriptions,
	// most significant first. Reason is the joined display form.
	Reasons     []string `json:"reasons"`
	Reason      string   `json:"reason"`
	EntryTiming string   `json:"entry_timing"`

	Timeframe         string `json:"timeframe"` // e.g. "M1"
	ExpiryMinutes     int    `json:"expiry_minutes"`
	EntryDelaySeconds int    `json:"entry_delay_seconds"`

	CreatedAt time.Time `json:"timestamp"`

	// Audit echoes of the triggering indicator values.
	RSI   float64 `json:"rsi"`
	MACD  float64 `json:"macd"`
	Price float64 `json:"price"`

	SessionVolatility string `json:"session_volatility"`
}

// Formatted returns the one-line display form of the signal.
func (s *Signal) Formatted() string {
	arrow := "⬆️"
	if s.Direction == DirectionSell {
		arrow = "⬇️"
	}
	return fmt.Sprintf("%s OTC %s %s %s TRADE", s.Pair, s.Timeframe, arrow, s.Direction)
}
