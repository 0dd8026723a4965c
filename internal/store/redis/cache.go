// Package redis provides a shared candle cache and signal fan-out. When
// several scanner instances run against the same feed, the cache keeps
// them from hammering the remote provider with identical requests.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"fxsignals/internal/model"

	goredis "github.com/go-redis/redis/v8"
)

const signalChannel = "pub:signals"

// Config configures the Redis cache.
type Config struct {
	Addr     string // Redis address, e.g. "localhost:6379"
	Password string
	DB       int
	TTL      time.Duration // candle entry lifetime (default 60s)
}

// Cache is a TTL candle cache backed by Redis.
type Cache struct {
	client *goredis.Client
	ttl    time.Duration
}

// Client returns the underlying Redis client for health checks.
func (c *Cache) Client() *goredis.Client { return c.client }

// New creates a Redis cache and pings the server.
func New(cfg Config) (*Cache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 60 * time.Second
	}

	log.Printf("[redis] connected to %s (ttl=%v)", cfg.Addr, ttl)
	return &Cache{client: client, ttl: ttl}, nil
}

func candleKey(symbol, interval, period string) string {
	return "candles:" + symbol + ":" + interval + ":" + period
}

// Get returns the cached candles for one (symbol, interval, period)
// request, or ok=false on a miss. Read errors count as misses: the
// caller falls through to the remote fetch.
func (c *Cache) Get(ctx context.Context, symbol, interval, period string) ([]model.Candle, bool) {
	data, err := c.client.Get(ctx, candleKey(symbol, interval, period)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			log.Printf("[redis] GET %s: %v", candleKey(symbol, interval, period), err)
		}
		return nil, false
	}
	var candles []model.Candle
	if err := json.Unmarshal(data, &candles); err != nil {
		log.Printf("[redis] corrupt cache entry for %s: %v", candleKey(symbol, interval, period), err)
		return nil, false
	}
	return candles, true
}

// Set stores a fetched candle batch under the request key with the
// configured TTL. Write errors are logged, not propagated: a dead cache
// must not break the scan loop.
func (c *Cache) Set(ctx context.Context, symbol, interval, period string, candles []model.Candle) {
	data, err := json.Marshal(candles)
	if err != nil {
		log.Printf("[redis] marshal candles for %s: %v", symbol, err)
		return
	}
	if err := c.client.Set(ctx, candleKey(symbol, interval, period), data, c.ttl).Err(); err != nil {
		log.Printf("[redis] SET %s: %v", candleKey(symbol, interval, period), err)
	}
}

// PublishSignal fans a recorded signal out to subscribed gateway
// instances over pubsub.
func (c *Cache) PublishSignal(ctx context.Context, sig model.Signal) {
	data, err := json.Marshal(sig)
	if err != nil {
		log.Printf("[redis] marshal signal: %v", err)
		return
	}
	if err := c.client.Publish(ctx, signalChannel, data).Err(); err != nil {
		log.Printf("[redis] PUBLISH %s: %v", signalChannel, err)
	}
}

// SubscribeSignals delivers signals published by other instances to fn
// until ctx is cancelled. Malformed payloads are dropped.
func (c *Cache) SubscribeSignals(ctx context.Context, fn func(model.Signal)) {
	sub := c.client.Subscribe(ctx, signalChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var sig model.Signal
			if err := json.Unmarshal([]byte(msg.Payload), &sig); err != nil {
				log.Printf("[redis] bad signal payload: %v", err)
				continue
			}
			fn(sig)
		}
	}
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}
