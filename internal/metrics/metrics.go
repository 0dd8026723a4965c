package metrics

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the signal scanner.
type Metrics struct {
	ScansTotal   prometheus.Counter
	ScanDuration prometheus.Histogram

	EvaluationsTotal *prometheus.CounterVec // labels: outcome=signal|no_signal|error
	SignalsTotal     *prometheus.CounterVec // labels: pair, direction
	SignalsLimited   prometheus.Counter
	HistorySize      prometheus.Gauge

	// Market data layering
	FetchDuration    prometheus.Histogram
	FetchesTotal     *prometheus.CounterVec // labels: source=cache|remote|sqlite|sample
	FeedBreakerState prometheus.Gauge       // 0=closed, 1=open, 2=half-open
	FeedBreakerTrips prometheus.Counter

	// Ambient state
	SentimentScore    prometheus.Gauge
	SessionVolatility prometheus.Gauge // 0=low, 1=medium, 2=high
	WSClients         prometheus.Gauge
}

// NewMetrics registers and returns all Prometheus metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		ScansTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fxsignals_scans_total",
			Help: "Total completed scan cycles over the configured pairs",
		}),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fxsignals_scan_duration_seconds",
			Help:    "Wall time per scan cycle",
			Buckets: prometheus.DefBuckets,
		}),
		EvaluationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fxsignals_evaluations_total",
			Help: "Pair evaluations by outcome",
		}, []string{"outcome"}),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fxsignals_signals_total",
			Help: "Recorded signals by pair and direction",
		}, []string{"pair", "direction"}),
		SignalsLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fxsignals_signals_rate_limited_total",
			Help: "Signals rejected by the hourly rate limit",
		}),
		HistorySize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fxsignals_history_size",
			Help: "Signals currently held in the history store",
		}),

		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fxsignals_fetch_duration_seconds",
			Help:    "Market data fetch latency including fallbacks",
			Buckets: prometheus.DefBuckets,
		}),
		FetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fxsignals_fetches_total",
			Help: "Candle fetches by serving source",
		}, []string{"source"}),
		FeedBreakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fxsignals_feed_circuit_breaker_state",
			Help: "Feed circuit breaker state (0=closed, 1=open, 2=half-open)",
		}),
		FeedBreakerTrips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fxsignals_feed_circuit_breaker_trips_total",
			Help: "Times the feed circuit breaker tripped open",
		}),

		SentimentScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fxsignals_sentiment_score",
			Help: "Latest aggregated news sentiment in [-1, 1]",
		}),
		SessionVolatility: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fxsignals_session_volatility",
			Help: "Current session volatility tier (0=low, 1=medium, 2=high)",
		}),
		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fxsignals_ws_clients",
			Help: "Connected WebSocket clients",
		}),
	}

	prometheus.MustRegister(
		m.ScansTotal,
		m.ScanDuration,
		m.EvaluationsTotal,
		m.SignalsTotal,
		m.SignalsLimited,
		m.HistorySize,
		m.FetchDuration,
		m.FetchesTotal,
		m.FeedBreakerState,
		m.FeedBreakerTrips,
		m.SentimentScore,
		m.SessionVolatility,
		m.WSClients,
	)

	return m
}

// HealthStatus represents the scanner health.
type HealthStatus struct {
	mu sync.RWMutex

	FeedOK         bool      `json:"feed_ok"`
	LastScanTime   time.Time `json:"last_scan_time"`
	RedisConnected bool      `json:"redis_connected"`
	SQLiteOK       bool      `json:"sqlite_ok"`

	// Liveness probe results
	RedisLatencyMs  float64   `json:"redis_latency_ms"`
	SQLiteLatencyMs float64   `json:"sqlite_latency_ms"`
	LastCheckAt     time.Time `json:"last_check_at"`
	StartedAt       time.Time `json:"started_at"`
}

// NewHealthStatus returns a default health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{
		StartedAt: time.Now(),
	}
}

func (h *HealthStatus) SetFeedOK(v bool) {
	h.mu.Lock()
	h.FeedOK = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetLastScanTime(t time.Time) {
	h.mu.Lock()
	h.LastScanTime = t
	h.mu.Unlock()
}

// CheckRedis pings Redis and records latency + connectivity.
func (h *HealthStatus) CheckRedis(ctx context.Context, rdb *goredis.Client) {
	start := time.Now()
	err := rdb.Ping(ctx).Err()
	latency := time.Since(start)

	h.mu.Lock()
	h.RedisConnected = err == nil
	h.RedisLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// CheckSQLite runs a trivial query and records latency + health.
func (h *HealthStatus) CheckSQLite(ctx context.Context, db *sql.DB) {
	start := time.Now()
	err := db.PingContext(ctx)
	latency := time.Since(start)

	h.mu.Lock()
	h.SQLiteOK = err == nil
	h.SQLiteLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// StartLivenessChecker runs periodic dependency checks. Either client
// may be nil when the scanner runs without that backend.
func (h *HealthStatus) StartLivenessChecker(ctx context.Context, rdb *goredis.Client, sqlDB *sql.DB, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
				if rdb != nil {
					h.CheckRedis(probeCtx, rdb)
				}
				if sqlDB != nil {
					h.CheckSQLite(probeCtx, sqlDB)
				}
				cancel()
			}
		}
	}()
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	// A stale scan means the loop is wedged even if dependencies are up.
	overallStatus := "healthy"
	httpCode := http.StatusOK
	if !h.FeedOK {
		overallStatus = "degraded"
	}
	if !h.LastScanTime.IsZero() && time.Since(h.LastScanTime) > 5*time.Minute {
		overallStatus = "unhealthy"
		httpCode = http.StatusServiceUnavailable
	}

	scanAge := ""
	if !h.LastScanTime.IsZero() {
		scanAge = time.Since(h.LastScanTime).Round(time.Millisecond).String()
	}

	status := struct {
		Status          string  `json:"status"`
		Uptime          string  `json:"uptime"`
		FeedOK          bool    `json:"feed_ok"`
		LastScanTime    string  `json:"last_scan_time"`
		ScanAge         string  `json:"scan_age"`
		RedisConnected  bool    `json:"redis_connected"`
		RedisLatencyMs  float64 `json:"redis_latency_ms"`
		SQLiteOK        bool    `json:"sqlite_ok"`
		SQLiteLatencyMs float64 `json:"sqlite_latency_ms"`
		LastCheckAt     string  `json:"last_check_at"`
	}{
		Status:          overallStatus,
		Uptime:          time.Since(h.StartedAt).Round(time.Second).String(),
		FeedOK:          h.FeedOK,
		LastScanTime:    h.LastScanTime.Format(time.RFC3339),
		ScanAge:         scanAge,
		RedisConnected:  h.RedisConnected,
		RedisLatencyMs:  h.RedisLatencyMs,
		SQLiteOK:        h.SQLiteOK,
		SQLiteLatencyMs: h.SQLiteLatencyMs,
		LastCheckAt:     h.LastCheckAt.Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if httpCode != http.StatusOK {
		w.WriteHeader(httpCode)
	}
	json.NewEncoder(w).Encode(status)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	health *HealthStatus
	addr   string
	srv    *http.Server
}

// NewServer creates a metrics and health server.
func NewServer(addr string, health *HealthStatus) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", health.ServeHTTP)

	return &Server{
		health: health,
		addr:   addr,
		srv: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[metrics] server listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("[metrics] server error: %v", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
