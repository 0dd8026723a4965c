package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fxsignals/internal/model"

	"github.com/gorilla/websocket"
)

type fakeStore struct {
	signals []model.Signal
}

func (f *fakeStore) Recent(n int) []model.Signal {
	if n > len(f.signals) {
		n = len(f.signals)
	}
	return f.signals[:n]
}

func (f *fakeStore) ByPair(pair string, n int) []model.Signal {
	var out []model.Signal
	for _, sig := range f.signals {
		if strings.EqualFold(sig.Pair, pair) {
			out = append(out, sig)
		}
	}
	return out
}

func (f *fakeStore) Today() []model.Signal { return f.signals }

func (f *fakeStore) PerformanceStats() model.PerformanceStats {
	return model.PerformanceStats{TotalSignals: len(f.signals)}
}

func (f *fakeStore) Statistics() model.SignalStatistics {
	return model.SignalStatistics{TotalSignals: len(f.signals)}
}

type fakeLatest struct {
	sig *model.Signal
}

func (f *fakeLatest) LastSignal() *model.Signal { return f.sig }

func buySignal(pair string) model.Signal {
	return model.Signal{
		Pair:       pair,
		Direction:  model.DirectionBuy,
		Confidence: 85,
		Timeframe:  "M1",
		CreatedAt:  time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	}
}

func newTestServer(store SignalStore, latest LatestSource) (*httptest.Server, *Hub) {
	hub := NewHub()
	mux := http.NewServeMux()
	RegisterRoutes(mux, hub, store, latest, time.Now())
	return httptest.NewServer(mux), hub
}

// ────────────────────────────────────────────────────────────────────
// REST
// ────────────────────────────────────────────────────────────────────

func getJSON(t *testing.T, url string, out interface{}) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp
}

func TestAPISignal_LatestWithFormatted(t *testing.T) {
	sig := buySignal("EUR/USD")
	srv, _ := newTestServer(&fakeStore{}, &fakeLatest{sig: &sig})
	defer srv.Close()

	var body struct {
		Signal    *model.Signal `json:"signal"`
		Formatted string        `json:"formatted"`
	}
	getJSON(t, srv.URL+"/api/signal", &body)
	if body.Signal == nil || body.Signal.Pair != "EUR/USD" {
		t.Fatalf("signal = %+v", body.Signal)
	}
	if !strings.Contains(body.Formatted, "EUR/USD OTC M1") {
		t.Fatalf("formatted = %q", body.Formatted)
	}
}

func TestAPISignal_FallsBackToHistory(t *testing.T) {
	srv, _ := newTestServer(&fakeStore{signals: []model.Signal{buySignal("GBP/USD")}}, &fakeLatest{})
	defer srv.Close()

	var body struct {
		Signal *model.Signal `json:"signal"`
	}
	getJSON(t, srv.URL+"/api/signal", &body)
	if body.Signal == nil || body.Signal.Pair != "GBP/USD" {
		t.Fatalf("signal = %+v", body.Signal)
	}
}

func TestAPISignalsRecent_Limit(t *testing.T) {
	store := &fakeStore{signals: []model.Signal{buySignal("EUR/USD"), buySignal("GBP/USD"), buySignal("USD/JPY")}}
	srv, _ := newTestServer(store, &fakeLatest{})
	defer srv.Close()

	var signals []model.Signal
	getJSON(t, srv.URL+"/api/signals/recent?limit=2", &signals)
	if len(signals) != 2 {
		t.Fatalf("got %d signals, want 2", len(signals))
	}
}

func TestAPISignalsPair_RequiresParam(t *testing.T) {
	srv, _ := newTestServer(&fakeStore{}, &fakeLatest{})
	defer srv.Close()

	resp := getJSON(t, srv.URL+"/api/signals/pair", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestAPISession(t *testing.T) {
	srv, _ := newTestServer(&fakeStore{}, &fakeLatest{})
	defer srv.Close()

	var body struct {
		Sessions   []string `json:"sessions"`
		Volatility string   `json:"volatility"`
	}
	getJSON(t, srv.URL+"/api/session", &body)
	if len(body.Sessions) == 0 {
		t.Fatal("no sessions in response")
	}
	switch body.Volatility {
	case "Low", "Medium", "High":
	default:
		t.Fatalf("volatility = %q", body.Volatility)
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(&fakeStore{}, &fakeLatest{})
	defer srv.Close()

	var body struct {
		Status    string `json:"status"`
		WSClients int    `json:"ws_clients"`
	}
	getJSON(t, srv.URL+"/healthz", &body)
	if body.Status != "ok" {
		t.Fatalf("status = %q", body.Status)
	}
	if body.WSClients != 0 {
		t.Fatalf("ws_clients = %d, want 0", body.WSClients)
	}
}

// ────────────────────────────────────────────────────────────────────
// WebSocket fan-out
// ────────────────────────────────────────────────────────────────────

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("ws dial: %v", err)
	}
	return conn
}

func TestWS_BroadcastReachesClient(t *testing.T) {
	srv, hub := newTestServer(&fakeStore{}, &fakeLatest{})
	defer srv.Close()

	conn := dialWS(t, srv)
	defer conn.Close()

	// wait for registration before broadcasting
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.ClientCount() != 1 {
		t.Fatalf("ClientCount = %d, want 1", hub.ClientCount())
	}

	hub.Broadcast(buySignal("EUR/USD"))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var env struct {
		Type      string       `json:"type"`
		Signal    model.Signal `json:"signal"`
		Formatted string       `json:"formatted"`
	}
	if err := json.Unmarshal(msg, &env); err != nil {
		t.Fatalf("envelope not JSON: %v\nraw: %s", err, msg)
	}
	if env.Type != "signal" || env.Signal.Pair != "EUR/USD" {
		t.Fatalf("envelope = %+v", env)
	}
	if !strings.Contains(env.Formatted, "BUY TRADE") {
		t.Fatalf("formatted = %q", env.Formatted)
	}
}

func TestWS_NewClientGetsLatestReplay(t *testing.T) {
	srv, hub := newTestServer(&fakeStore{}, &fakeLatest{})
	defer srv.Close()

	hub.Broadcast(buySignal("USD/JPY"))

	conn := dialWS(t, srv)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read replay: %v", err)
	}
	var env struct {
		Signal model.Signal `json:"signal"`
	}
	if err := json.Unmarshal(msg, &env); err != nil {
		t.Fatalf("replay not JSON: %v", err)
	}
	if env.Signal.Pair != "USD/JPY" {
		t.Fatalf("replayed pair = %q", env.Signal.Pair)
	}
}
