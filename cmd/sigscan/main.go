// sigscan evaluates one pair once and prints the result. Useful for
// spot checks without standing up the full server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"fxsignals/config"
	"fxsignals/internal/engine"
	"fxsignals/internal/indicator"
	"fxsignals/internal/logger"
	"fxsignals/internal/marketdata"
	"fxsignals/internal/news"
	"fxsignals/internal/scorer"
	"fxsignals/internal/session"
)

func main() {
	pair := flag.String("pair", "EURUSD=X", "provider symbol to evaluate")
	interval := flag.String("interval", "", "bar interval (default from TIMEFRAME)")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	if *interval == "" {
		*interval = cfg.Timeframe
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	slogger := logger.Init("sigscan", level)

	provider := marketdata.New(marketdata.Config{
		BaseURL: cfg.ChartBaseURL,
		Cache:   marketdata.NewMemoryCache(cfg.CacheTTL()),
	})
	analyzer := news.New(news.Config{APIKey: cfg.NewsAPIKey})
	sc := scorer.New(scorer.Config{
		ConfidenceThreshold: cfg.ConfidenceThreshold,
		Timeframe:           *interval,
	}, nil)

	params := indicator.DefaultParams()
	if cfg.MAShortPeriod > 0 {
		params.MAShort = cfg.MAShortPeriod
	}
	if cfg.MALongPeriod > 0 {
		params.MALong = cfg.MALongPeriod
	}

	svc := engine.New(engine.Config{
		Pairs:    []string{*pair},
		Interval: *interval,
		Params:   params,
	}, provider, sc, analyzer, nil, nil, slogger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now()
	sess := session.Classify(now)
	fmt.Printf("Session:    %s (%s volatility)\n", strings.Join(sess.Sessions, "+"), sess.Volatility)
	fmt.Printf("Market:     open=%v\n", session.IsMarketOpen(now))

	sig, err := svc.Evaluate(ctx, *pair)
	if err != nil {
		fmt.Fprintf(os.Stderr, "evaluate %s: %v\n", *pair, err)
		os.Exit(1)
	}
	if sig == nil {
		fmt.Printf("\n%s %s: no qualifying signal\n", scorer.FormatPair(*pair), *interval)
		return
	}

	fmt.Printf("\n%s\n", sig.Formatted())
	fmt.Printf("Confidence: %.0f%%\n", sig.Confidence)
	fmt.Printf("Price:      %.5f\n", sig.Price)
	fmt.Printf("Expiry:     %d min\n", sig.ExpiryMinutes)
	fmt.Printf("Entry:      %s (in %ds)\n", sig.EntryTiming, sig.EntryDelaySeconds)
	for _, r := range sig.Reasons {
		fmt.Printf("  - %s\n", r)
	}
}
