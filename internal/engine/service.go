// Package engine orchestrates the scan loop: fetch candles, compute
// indicators, score, rate-limit, then fan accepted signals out to the
// gateway and notification channels.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"fxsignals/internal/indicator"
	"fxsignals/internal/logger"
	"fxsignals/internal/metrics"
	"fxsignals/internal/model"
	"fxsignals/internal/notification"
	"fxsignals/internal/session"
)

// sentimentTTL caps how often the news feed is polled. Sentiment moves
// far slower than the scan cadence.
const sentimentTTL = 10 * time.Minute

// MarketData supplies candle history. Implemented by marketdata.Provider.
type MarketData interface {
	Fetch(ctx context.Context, symbol, interval string) ([]model.Candle, error)
}

// Sentiment supplies the aggregate news score. Implemented by news.Analyzer.
type Sentiment interface {
	MarketSentiment(ctx context.Context) float64
}

// Scorer turns candles and context into a signal or nil.
// Implemented by scorer.Scorer.
type Scorer interface {
	Score(symbol string, candles []model.Candle, snap *indicator.Snapshot, sess session.Info, sentiment float64) *model.Signal
}

// History is the rate-limited signal store. Implemented by history.Store.
type History interface {
	Add(sig model.Signal) bool
	Len() int
}

// Config configures the scan loop.
type Config struct {
	Pairs        []string         // provider symbols, e.g. "EURUSD=X"
	Interval     string           // bar interval, e.g. "1m"
	ScanInterval time.Duration    // cadence between passes (default 30s)
	Params       indicator.Params // indicator parameterization
}

// Service wires the components. All collaborators are explicit; there
// are no package globals.
type Service struct {
	cfg      Config
	provider MarketData
	scorer   Scorer
	news     Sentiment
	history  History
	notifier notification.Notifier
	log      *slog.Logger

	// Optional observability and fan-out hooks. Nil disables them.
	metrics   *metrics.Metrics
	health    *metrics.HealthStatus
	broadcast func(model.Signal)

	mu          sync.Mutex
	sentiment   float64
	sentimentAt time.Time
	lastSignal  *model.Signal
	now         func() time.Time
}

// New creates the scan service.
func New(cfg Config, provider MarketData, sc Scorer, news Sentiment, hist History, notifier notification.Notifier, log *slog.Logger) *Service {
	if cfg.ScanInterval <= 0 {
		cfg.ScanInterval = 30 * time.Second
	}
	if cfg.Interval == "" {
		cfg.Interval = "1m"
	}
	if cfg.Params == (indicator.Params{}) {
		cfg.Params = indicator.DefaultParams()
	}
	if notifier == nil {
		notifier = notification.NewLogNotifier()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		cfg:      cfg,
		provider: provider,
		scorer:   sc,
		news:     news,
		history:  hist,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// SetMetrics attaches the Prometheus registry and health status.
func (s *Service) SetMetrics(m *metrics.Metrics, h *metrics.HealthStatus) {
	s.metrics = m
	s.health = h
}

// SetBroadcast attaches the gateway fan-out for accepted signals.
func (s *Service) SetBroadcast(fn func(model.Signal)) {
	s.broadcast = fn
}

// LastSignal returns the most recently accepted signal, or nil.
func (s *Service) LastSignal() *model.Signal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSignal
}

// marketSentiment returns the cached news score, refreshing it when
// older than sentimentTTL.
func (s *Service) marketSentiment(ctx context.Context) float64 {
	s.mu.Lock()
	fresh := !s.sentimentAt.IsZero() && s.now().Sub(s.sentimentAt) < sentimentTTL
	cached := s.sentiment
	s.mu.Unlock()
	if fresh || s.news == nil {
		return cached
	}

	score := s.news.MarketSentiment(ctx)
	s.mu.Lock()
	s.sentiment = score
	s.sentimentAt = s.now()
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.SentimentScore.Set(score)
	}
	return score
}

// Evaluate runs the full scoring pipeline for one symbol. A nil signal
// with nil error means the pair simply does not qualify right now.
func (s *Service) Evaluate(ctx context.Context, symbol string) (*model.Signal, error) {
	ctx = logger.WithTraceID(ctx, logger.GenerateTraceID(symbol, s.now()))

	candles, err := s.provider.Fetch(ctx, symbol, s.cfg.Interval)
	if err != nil {
		return nil, err
	}

	snap := indicator.Compute(candles, s.cfg.Params)
	sess := session.Classify(s.now())
	sentiment := s.marketSentiment(ctx)

	sig := s.scorer.Score(symbol, candles, snap, sess, sentiment)
	if sig == nil {
		s.log.Debug("no qualifying signal", append([]any{slog.String("symbol", symbol)}, logger.LogWithTrace(ctx)...)...)
	}
	return sig, nil
}

// Record attempts to store a signal under rate limiting, and on accept
// fans it out to the gateway and notification channels.
func (s *Service) Record(sig model.Signal) bool {
	if !s.history.Add(sig) {
		if s.metrics != nil {
			s.metrics.SignalsLimited.Inc()
		}
		return false
	}

	s.mu.Lock()
	s.lastSignal = &sig
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.SignalsTotal.WithLabelValues(sig.Pair, string(sig.Direction)).Inc()
		s.metrics.HistorySize.Set(float64(s.history.Len()))
	}
	if s.broadcast != nil {
		s.broadcast(sig)
	}

	notifyCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := s.notifier.Notify(notifyCtx, sig); err != nil {
		s.log.Warn("signal notification failed", slog.String("pair", sig.Pair), slog.Any("error", err))
	}
	return true
}

// Scan runs one pass over the configured pairs and records the first
// qualifying signal. Evaluation errors are absorbed and logged; a bad
// pair never stops the pass.
func (s *Service) Scan(ctx context.Context) {
	start := s.now()
	sess := session.Classify(start)
	if s.metrics != nil {
		s.metrics.SessionVolatility.Set(volatilityGauge(sess.Volatility))
	}

	if !session.IsMarketOpen(start) {
		s.log.Debug("market closed, skipping scan")
		return
	}

	for _, symbol := range s.cfg.Pairs {
		if ctx.Err() != nil {
			return
		}
		sig, err := s.Evaluate(ctx, symbol)
		if err != nil {
			s.log.Warn("evaluation failed", slog.String("symbol", symbol), slog.Any("error", err))
			if s.metrics != nil {
				s.metrics.EvaluationsTotal.WithLabelValues("error").Inc()
			}
			continue
		}
		if sig == nil {
			if s.metrics != nil {
				s.metrics.EvaluationsTotal.WithLabelValues("no_signal").Inc()
			}
			continue
		}
		if s.metrics != nil {
			s.metrics.EvaluationsTotal.WithLabelValues("signal").Inc()
		}

		if s.Record(*sig) {
			s.log.Info("signal recorded",
				slog.String("pair", sig.Pair),
				slog.String("direction", string(sig.Direction)),
				slog.Float64("confidence", sig.Confidence))
		} else {
			s.log.Info("signal rate limited", slog.String("pair", sig.Pair))
		}
		// the hourly limit is global, one attempt per pass is enough
		break
	}

	if s.metrics != nil {
		s.metrics.ScansTotal.Inc()
		s.metrics.ScanDuration.Observe(time.Since(start).Seconds())
	}
	if s.health != nil {
		s.health.SetLastScanTime(s.now())
	}
}

// Run scans on the configured cadence until ctx is cancelled. The first
// pass starts immediately.
func (s *Service) Run(ctx context.Context) {
	s.log.Info("scan loop started",
		slog.Int("pairs", len(s.cfg.Pairs)),
		slog.String("interval", s.cfg.Interval),
		slog.Duration("cadence", s.cfg.ScanInterval))

	s.Scan(ctx)

	ticker := time.NewTicker(s.cfg.ScanInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Info("scan loop stopped")
			return
		case <-ticker.C:
			s.Scan(ctx)
		}
	}
}

func volatilityGauge(v session.Volatility) float64 {
	switch v {
	case session.VolatilityHigh:
		return 2
	case session.VolatilityMedium:
		return 1
	default:
		return 0
	}
}
