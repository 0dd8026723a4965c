package gateway

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fxsignals/internal/model"
	"fxsignals/internal/session"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin:       func(r *http.Request) bool { return true },
	EnableCompression: true,
}

// SignalStore is the read side of the signal history.
// Implemented by history.Store.
type SignalStore interface {
	Recent(n int) []model.Signal
	ByPair(pair string, n int) []model.Signal
	Today() []model.Signal
	PerformanceStats() model.PerformanceStats
	Statistics() model.SignalStatistics
}

// LatestSource reports the most recently accepted signal.
// Implemented by engine.Service.
type LatestSource interface {
	LastSignal() *model.Signal
}

// SetCORS sets CORS headers for REST endpoints.
func SetCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	SetCORS(w)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// limitParam parses ?limit= with a default and ceiling.
func limitParam(r *http.Request, def, max int) int {
	if s := r.URL.Query().Get("limit"); s != "" {
		if l, err := strconv.Atoi(s); err == nil && l > 0 && l <= max {
			return l
		}
	}
	return def
}

// RegisterRoutes registers all HTTP routes on the provided mux.
func RegisterRoutes(mux *http.ServeMux, hub *Hub, store SignalStore, latest LatestSource, processStart time.Time) {
	// WebSocket endpoint
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("[gateway] ws upgrade error: %v", err)
			return
		}
		hub.HandleWSRequest(conn)
	})

	// REST: most recently accepted signal
	mux.HandleFunc("/api/signal", func(w http.ResponseWriter, r *http.Request) {
		sig := latest.LastSignal()
		if sig == nil {
			if recent := store.Recent(1); len(recent) > 0 {
				sig = &recent[0]
			}
		}
		if sig == nil {
			writeJSON(w, map[string]interface{}{"signal": nil})
			return
		}
		writeJSON(w, map[string]interface{}{
			"signal":    sig,
			"formatted": sig.Formatted(),
		})
	})

	// REST: recent signals, newest first
	mux.HandleFunc("/api/signals/recent", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, store.Recent(limitParam(r, 10, 100)))
	})

	// REST: signals for one pair, ?pair=EUR/USD
	mux.HandleFunc("/api/signals/pair", func(w http.ResponseWriter, r *http.Request) {
		pair := strings.TrimSpace(r.URL.Query().Get("pair"))
		if pair == "" {
			SetCORS(w)
			http.Error(w, `{"error":"pair parameter required"}`, http.StatusBadRequest)
			return
		}
		writeJSON(w, store.ByPair(pair, limitParam(r, 10, 100)))
	})

	// REST: today's signals
	mux.HandleFunc("/api/signals/today", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, store.Today())
	})

	// REST: headline performance numbers
	mux.HandleFunc("/api/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, store.PerformanceStats())
	})

	// REST: per-pair and per-hour distribution
	mux.HandleFunc("/api/statistics", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, store.Statistics())
	})

	// REST: current session classification
	mux.HandleFunc("/api/session", func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()
		info := session.Classify(now)
		writeJSON(w, map[string]interface{}{
			"sessions":    info.Sessions,
			"volatility":  info.Volatility,
			"market_open": session.IsMarketOpen(now),
			"ts":          now.UTC().Format(time.RFC3339),
		})
	})

	// Health endpoint
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"status":     "ok",
			"ws_clients": hub.ClientCount(),
			"uptime_sec": int64(time.Since(processStart).Seconds()),
			"ts":         time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
}
