package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fxsignals/config"
	"fxsignals/internal/engine"
	"fxsignals/internal/gateway"
	"fxsignals/internal/indicator"
	"fxsignals/internal/logger"
	"fxsignals/internal/marketdata"
	"fxsignals/internal/metrics"
	"fxsignals/internal/model"
	"fxsignals/internal/news"
	"fxsignals/internal/notification"
	"fxsignals/internal/scorer"
	"fxsignals/internal/store/history"
	redisstore "fxsignals/internal/store/redis"
	sqlitestore "fxsignals/internal/store/sqlite"
)

var processStart = time.Now()

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	pairs := cfg.ParsePairs()

	level := slog.LevelInfo
	if strings.EqualFold(os.Getenv("LOG_LEVEL"), "debug") {
		level = slog.LevelDebug
	}
	slogger := logger.Init("sigserver", level)
	slogger.Info("starting",
		slog.String("pairs", cfg.Pairs),
		slog.String("timeframe", cfg.Timeframe),
		slog.String("http", cfg.HTTPAddr))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// ---- Metrics & health ----
	prom := metrics.NewMetrics()
	health := metrics.NewHealthStatus()
	metricsSrv := metrics.NewServer(cfg.MetricsAddr, health)
	metricsSrv.Start()

	// ---- Signal history ----
	hist := history.Open(history.Config{Path: cfg.HistoryPath, MaxPerHour: cfg.MaxPerHour})
	prom.HistorySize.Set(float64(hist.Len()))

	// ---- Durable candle fallback (optional) ----
	var candleStore marketdata.CandleStore
	var sqlStore *sqlitestore.Store
	if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
		slogger.Warn("sqlite dir create failed", slog.Any("error", err))
	}
	sqlStore, err := sqlitestore.New(sqlitestore.Config{DBPath: cfg.SQLitePath})
	if err != nil {
		slogger.Warn("sqlite unavailable, continuing without fallback store", slog.Any("error", err))
		sqlStore = nil
	} else {
		defer sqlStore.Close()
		candleStore = sqlStore
		health.CheckSQLite(ctx, sqlStore.DB())

		var newest time.Time
		for _, p := range pairs {
			if last, err := sqlStore.LastTimestamp(p, cfg.Timeframe); err == nil && last.After(newest) {
				newest = last
			}
		}
		if newest.IsZero() {
			slogger.Info("fallback store empty, will prime from the feed")
		} else {
			slogger.Info("fallback store primed", slog.Time("last_bar", newest))
		}
	}

	// ---- Candle cache: Redis when configured, in-process otherwise ----
	var cache marketdata.Cache = marketdata.NewMemoryCache(cfg.CacheTTL())
	var redisCache *redisstore.Cache
	if cfg.RedisAddr != "" {
		redisCache, err = redisstore.New(redisstore.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			TTL:      cfg.CacheTTL(),
		})
		if err != nil {
			slogger.Warn("redis unavailable, using in-process cache", slog.Any("error", err))
			redisCache = nil
		} else {
			defer redisCache.Close()
			cache = redisCache
		}
	}

	if redisCache != nil && sqlStore != nil {
		health.StartLivenessChecker(ctx, redisCache.Client(), sqlStore.DB(), 10*time.Second)
	} else if redisCache != nil {
		health.StartLivenessChecker(ctx, redisCache.Client(), nil, 10*time.Second)
	} else if sqlStore != nil {
		health.StartLivenessChecker(ctx, nil, sqlStore.DB(), 10*time.Second)
	}

	// ---- Market data provider ----
	provider := marketdata.New(marketdata.Config{
		BaseURL: cfg.ChartBaseURL,
		Cache:   cache,
		Store:   candleStore,
	})
	provider.OnFetch = func(source string, elapsed time.Duration) {
		prom.FetchesTotal.WithLabelValues(source).Inc()
		prom.FetchDuration.Observe(elapsed.Seconds())
	}
	health.SetFeedOK(true)
	provider.Breaker().OnStateChange = func(from, to marketdata.BreakerState) {
		prom.FeedBreakerState.Set(breakerGauge(to))
		if to == marketdata.BreakerOpen {
			prom.FeedBreakerTrips.Inc()
		}
		health.SetFeedOK(to != marketdata.BreakerOpen)
		slogger.Warn("feed circuit breaker state change",
			slog.String("from", from.String()),
			slog.String("to", to.String()))
	}

	// ---- Scoring & sentiment ----
	analyzer := news.New(news.Config{APIKey: cfg.NewsAPIKey})
	sc := scorer.New(scorer.Config{
		ConfidenceThreshold: cfg.ConfidenceThreshold,
		Timeframe:           cfg.Timeframe,
	}, nil)

	params := indicator.DefaultParams()
	if cfg.MAShortPeriod > 0 {
		params.MAShort = cfg.MAShortPeriod
	}
	if cfg.MALongPeriod > 0 {
		params.MALong = cfg.MALongPeriod
	}

	// ---- Delivery ----
	notifier := notification.Multi{notification.NewLogNotifier()}
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		notifier = append(notifier, notification.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID))
		slogger.Info("telegram delivery enabled")
	}
	if cfg.WebhookURL != "" {
		notifier = append(notifier, notification.NewWebhookNotifier(cfg.WebhookURL))
		slogger.Info("webhook delivery enabled", slog.String("url", cfg.WebhookURL))
	}

	// ---- Gateway hub ----
	hub := gateway.NewHub()
	hub.OnClientCount = func(n int) {
		prom.WSClients.Set(float64(n))
	}

	// ---- Scan service ----
	svc := engine.New(engine.Config{
		Pairs:        pairs,
		Interval:     cfg.Timeframe,
		ScanInterval: cfg.ScanInterval(),
		Params:       params,
	}, provider, sc, analyzer, hist, notifier, slogger)
	svc.SetMetrics(prom, health)

	// With redis, pub:signals is the fan-out bus: every instance's hub
	// receives every instance's signals, own ones included, via the
	// subscription. Without it, accepted signals feed the hub directly.
	if redisCache != nil {
		svc.SetBroadcast(func(sig model.Signal) {
			redisCache.PublishSignal(ctx, sig)
		})
		go redisCache.SubscribeSignals(ctx, hub.Broadcast)
	} else {
		svc.SetBroadcast(hub.Broadcast)
	}

	go svc.Run(ctx)

	// ---- Periodic history purge ----
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := hist.Purge(cfg.RetentionDays); removed > 0 {
					slogger.Info("purged expired signals", slog.Int("removed", removed))
					prom.HistorySize.Set(float64(hist.Len()))
				}
			}
		}
	}()

	// ---- HTTP gateway ----
	mux := http.NewServeMux()
	gateway.RegisterRoutes(mux, hub, hist, svc, processStart)
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: mux}

	go func() {
		slogger.Info("gateway listening", slog.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[sigserver] server error: %v", err)
		}
	}()

	<-sigCh
	slogger.Info("shutdown signal received")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)
	metricsSrv.Stop(shutdownCtx)

	slogger.Info("shutdown complete")
}

func breakerGauge(s marketdata.BreakerState) float64 {
	switch s {
	case marketdata.BreakerOpen:
		return 1
	case marketdata.BreakerHalfOpen:
		return 2
	default:
		return 0
	}
}
