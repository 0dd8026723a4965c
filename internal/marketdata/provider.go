// Package marketdata fetches OHLCV candle history for currency pairs.
//
// The provider layers its sources: a short-TTL cache first, then the
// remote chart API behind a circuit breaker, then the local SQLite
// fallback store, and finally a deterministic sample generator. A scan
// always gets candles back; the only hard failure is a cancelled
// context.
package marketdata

import (
	"context"
	"log"
	"net/http"
	"time"

	"fxsignals/internal/model"
)

const (
	// MinUsableBars is the smallest fallback history worth serving.
	// Below this the scorer would refuse to evaluate anyway.
	MinUsableBars = 50

	defaultBars = 100
)

// Cache is the candle request cache. Implemented by the in-process
// MemoryCache and by the Redis-backed store/redis.Cache.
type Cache interface {
	Get(ctx context.Context, symbol, interval, period string) ([]model.Candle, bool)
	Set(ctx context.Context, symbol, interval, period string, candles []model.Candle)
}

// CandleStore is the durable fallback store for fetched history.
// Implemented by store/sqlite.Store.
type CandleStore interface {
	SaveCandles(symbol, interval string, candles []model.Candle) error
	LoadCandles(symbol, interval string, limit int) ([]model.Candle, error)
}

// Config configures the provider.
type Config struct {
	BaseURL string        // chart API base, e.g. "https://query1.finance.yahoo.com"
	Timeout time.Duration // per-request HTTP timeout (default 10s)
	Cache   Cache         // nil disables caching
	Store   CandleStore   // nil disables the durable fallback
}

// Provider fetches candle history with layered fallbacks.
type Provider struct {
	httpClient *http.Client
	baseURL    string
	cache      Cache
	store      CandleStore
	breaker    *Breaker

	// OnFetch, when set, is called after every Fetch with the layer
	// that served it ("cache", "remote", "store", "sample") and the
	// elapsed time.
	OnFetch func(source string, elapsed time.Duration)
}

// New creates a provider. The remote feed sits behind a circuit breaker
// so repeated outages skip straight to the fallback layers.
func New(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://query1.finance.yahoo.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Provider{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		cache:      cfg.Cache,
		store:      cfg.Store,
		breaker:    NewBreaker(5, 30*time.Second),
	}
}

// Breaker exposes the feed circuit breaker so callers can observe
// state transitions.
func (p *Provider) Breaker() *Breaker { return p.breaker }

func (p *Provider) served(source string, start time.Time) {
	if p.OnFetch != nil {
		p.OnFetch(source, time.Since(start))
	}
}

// periodFor maps a bar interval to the chart API lookback period.
// Intraday intervals fetch a day, hourly a week, anything larger a month.
func periodFor(interval string) string {
	switch interval {
	case "1m", "2m", "5m", "15m", "30m":
		return "1d"
	case "1h", "60m", "90m":
		return "5d"
	default:
		return "1mo"
	}
}

// Fetch returns candle history for symbol at the given interval.
// Candles are ordered by strictly increasing timestamp. The error is
// non-nil only when ctx is cancelled; every other failure degrades to
// stored or sample data.
func (p *Provider) Fetch(ctx context.Context, symbol, interval string) ([]model.Candle, error) {
	period := periodFor(interval)
	start := time.Now()

	if p.cache != nil {
		if candles, ok := p.cache.Get(ctx, symbol, interval, period); ok {
			p.served("cache", start)
			return candles, nil
		}
	}

	var candles []model.Candle
	err := p.breaker.Execute(func() error {
		var ferr error
		candles, ferr = p.fetchChart(ctx, symbol, interval, period)
		return ferr
	})
	if err == nil {
		if p.cache != nil {
			p.cache.Set(ctx, symbol, interval, period, candles)
		}
		if p.store != nil {
			if serr := p.store.SaveCandles(symbol, interval, candles); serr != nil {
				log.Printf("[marketdata] fallback store save %s: %v", symbol, serr)
			}
		}
		p.served("remote", start)
		return candles, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	log.Printf("[marketdata] remote fetch %s %s failed: %v", symbol, interval, err)

	if p.store != nil {
		stored, serr := p.store.LoadCandles(symbol, interval, defaultBars)
		if serr != nil {
			log.Printf("[marketdata] fallback store load %s: %v", symbol, serr)
		} else if len(stored) >= MinUsableBars {
			log.Printf("[marketdata] serving %d stored candles for %s %s", len(stored), symbol, interval)
			p.served("store", start)
			return stored, nil
		}
	}

	log.Printf("[marketdata] serving sample candles for %s %s", symbol, interval)
	p.served("sample", start)
	return SampleCandles(symbol, interval, defaultBars, time.Now()), nil
}
