package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fxsignals/internal/model"
)

func chartJSON(ts []int64, closes []float64) string {
	tsJSON, closesJSON := "[", "["
	for i := range ts {
		if i > 0 {
			tsJSON += ","
			closesJSON += ","
		}
		tsJSON += fmt.Sprintf("%d", ts[i])
		closesJSON += fmt.Sprintf("%g", closes[i])
	}
	tsJSON += "]"
	closesJSON += "]"
	return fmt.Sprintf(`{"chart":{"result":[{"timestamp":%s,"indicators":{"quote":[{"open":%s,"high":%s,"low":%s,"close":%s,"volume":%s}]}}],"error":null}}`,
		tsJSON, closesJSON, closesJSON, closesJSON, closesJSON, tsJSON)
}

type fakeStore struct {
	saved   map[string][]model.Candle
	loadErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{saved: make(map[string][]model.Candle)}
}

func (f *fakeStore) SaveCandles(symbol, interval string, candles []model.Candle) error {
	f.saved[symbol+"|"+interval] = candles
	return nil
}

func (f *fakeStore) LoadCandles(symbol, interval string, _ int) ([]model.Candle, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.saved[symbol+"|"+interval], nil
}

// ────────────────────────────────────────────────────────────────────
// Remote fetch and parsing
// ────────────────────────────────────────────────────────────────────

func TestFetch_ParsesChartResponse(t *testing.T) {
	ts := []int64{1700000000, 1700000060, 1700000120}
	closes := []float64{1.085, 1.086, 1.0855}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v8/finance/chart/EURUSD=X" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("range"); got != "1d" {
			t.Errorf("range = %q, want 1d for a 1m interval", got)
		}
		fmt.Fprint(w, chartJSON(ts, closes))
	}))
	defer srv.Close()

	p := New(Config{BaseURL: srv.URL})
	candles, err := p.Fetch(context.Background(), "EURUSD=X", "1m")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(candles) != 3 {
		t.Fatalf("got %d candles, want 3", len(candles))
	}
	if candles[0].Close != 1.085 || candles[2].Close != 1.0855 {
		t.Errorf("closes = %v, %v", candles[0].Close, candles[2].Close)
	}
	if !candles[1].TS.Equal(time.Unix(1700000060, 0).UTC()) {
		t.Errorf("TS = %v", candles[1].TS)
	}
	for i := 1; i < len(candles); i++ {
		if !candles[i].TS.After(candles[i-1].TS) {
			t.Fatalf("timestamps not strictly increasing at %d", i)
		}
	}
}

func TestFetch_SkipsNullBars(t *testing.T) {
	body := `{"chart":{"result":[{"timestamp":[1,2,3],"indicators":{"quote":[{"open":[1.0,null,1.2],"high":[1.0,null,1.2],"low":[1.0,null,1.2],"close":[1.0,null,1.2],"volume":[10,null,30]}]}}],"error":null}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	p := New(Config{BaseURL: srv.URL})
	candles, err := p.Fetch(context.Background(), "EURUSD=X", "1m")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("got %d candles, want 2 (null bar dropped)", len(candles))
	}
}

// ────────────────────────────────────────────────────────────────────
// Layering
// ────────────────────────────────────────────────────────────────────

func TestFetch_CacheHitSkipsRemote(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, chartJSON([]int64{1700000000}, []float64{1.085}))
	}))
	defer srv.Close()

	p := New(Config{BaseURL: srv.URL, Cache: NewMemoryCache(time.Minute)})
	ctx := context.Background()
	if _, err := p.Fetch(ctx, "EURUSD=X", "1m"); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Fetch(ctx, "EURUSD=X", "1m"); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Fatalf("remote called %d times, want 1", calls)
	}
}

func TestFetch_FallsBackToStoredCandles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	store := newFakeStore()
	stored := SampleCandles("GBPUSD=X", "1m", MinUsableBars, time.Now())
	store.saved["GBPUSD=X|1m"] = stored

	p := New(Config{BaseURL: srv.URL, Store: store})
	candles, err := p.Fetch(context.Background(), "GBPUSD=X", "1m")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(candles) != len(stored) {
		t.Fatalf("got %d candles, want %d stored", len(candles), len(stored))
	}
}

func TestFetch_FallsBackToSampleWhenStoreEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	p := New(Config{BaseURL: srv.URL, Store: newFakeStore()})
	candles, err := p.Fetch(context.Background(), "EURUSD=X", "1m")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(candles) != defaultBars {
		t.Fatalf("got %d sample candles, want %d", len(candles), defaultBars)
	}
}

func TestFetch_SuccessfulFetchPersistsToStore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartJSON([]int64{1700000000, 1700000060}, []float64{1.085, 1.086}))
	}))
	defer srv.Close()

	store := newFakeStore()
	p := New(Config{BaseURL: srv.URL, Store: store})
	if _, err := p.Fetch(context.Background(), "EURUSD=X", "1m"); err != nil {
		t.Fatal(err)
	}
	if len(store.saved["EURUSD=X|1m"]) != 2 {
		t.Fatalf("store holds %d candles, want 2", len(store.saved["EURUSD=X|1m"]))
	}
}

func TestFetch_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartJSON([]int64{1700000000}, []float64{1.085}))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(Config{BaseURL: srv.URL})
	if _, err := p.Fetch(ctx, "EURUSD=X", "1m"); err == nil {
		t.Fatal("Fetch with cancelled context returned nil error")
	}
}

func TestPeriodFor(t *testing.T) {
	cases := map[string]string{
		"1m":  "1d",
		"5m":  "1d",
		"30m": "1d",
		"1h":  "5d",
		"1d":  "1mo",
	}
	for interval, want := range cases {
		if got := periodFor(interval); got != want {
			t.Errorf("periodFor(%q) = %q, want %q", interval, got, want)
		}
	}
}
