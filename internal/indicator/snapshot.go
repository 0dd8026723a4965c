package indicator

import "fxsignals/internal/model"

// Params configures the snapshot computation.
type Params struct {
	RSIPeriod  int
	MAShort    int
	MALong     int
	MACDFast   int
	MACDSlow   int
	MACDSignal int
	BBPeriod   int
	BBStdDev   float64
	VolPeriod  int
}

// DefaultParams returns the conventional periods.
func DefaultParams() Params {
	return Params{
		RSIPeriod:  14,
		MAShort:    10,
		MALong:     20,
		MACDFast:   12,
		MACDSlow:   26,
		MACDSignal: 9,
		BBPeriod:   20,
		BBStdDev:   2.0,
		VolPeriod:  20,
	}
}

// Snapshot holds the indicator series the scorer consumes, each aligned
// index-for-index with the source candle sequence. Warm-up positions
// are undefined.
type Snapshot struct {
	RSI         []float64
	MAShort     []float64
	MALong      []float64
	MACD        MACDResult
	Bollinger   BollingerResult
	BBPosition  []float64
	VolumeSMA   []float64
	PriceChange []float64
}

// Compute builds a Snapshot from a candle sequence. An empty sequence
// yields a snapshot of empty series, never an error.
func Compute(candles []model.Candle, p Params) *Snapshot {
	closes := model.Closes(candles)
	volumes := model.Volumes(candles)

	bands := Bollinger(closes, p.BBPeriod, p.BBStdDev)
	return &Snapshot{
		RSI:         RSI(closes, p.RSIPeriod),
		MAShort:     SMA(closes, p.MAShort),
		MALong:      SMA(closes, p.MALong),
		MACD:        MACD(closes, p.MACDFast, p.MACDSlow, p.MACDSignal),
		Bollinger:   bands,
		BBPosition:  BandPosition(closes, bands),
		VolumeSMA:   SMA(volumes, p.VolPeriod),
		PriceChange: PctChange(closes),
	}
}
