package news

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

func assertClose(t *testing.T, label string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s = %v, want %v (tol %v)", label, got, want, tol)
	}
}

// ────────────────────────────────────────────────────────────────────
// Lexicon scoring
// ────────────────────────────────────────────────────────────────────

func TestSentiment(t *testing.T) {
	cases := []struct {
		name string
		text string
		want float64
	}{
		{"two_positive", "Dollar gains on strong data", 0.50},
		{"three_negative", "Euro falls amid recession fears", -0.75},
		{"nothing_scored", "Markets open for regular trading", 0},
		{"positive_cancels_negative", "Pound gains despite weak output", 0},
		{"clamped_high", "Surge surge surge surge surge surge", 1},
		{"clamped_low", "Plunge plunge plunge plunge plunge slump", -1},
		{"punctuation_stripped", "Yen rallies, dollar drops.", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assertClose(t, fmt.Sprintf("Sentiment(%q)", tc.text), Sentiment(tc.text), tc.want, 1e-9)
		})
	}
}

func TestRelevant(t *testing.T) {
	if !Relevant(Article{Title: "Federal Reserve holds rates"}) {
		t.Error("Fed headline not relevant")
	}
	if !Relevant(Article{Title: "Quiet day", Description: "The euro drifted lower"}) {
		t.Error("description keywords ignored")
	}
	if Relevant(Article{Title: "Local team wins championship"}) {
		t.Error("sports headline marked relevant")
	}
}

// ────────────────────────────────────────────────────────────────────
// Fetch and aggregate
// ────────────────────────────────────────────────────────────────────

func TestFetchArticles_NoKeyUsesSamples(t *testing.T) {
	a := New(Config{})
	articles, err := a.FetchArticles(context.Background())
	if err != nil {
		t.Fatalf("FetchArticles: %v", err)
	}
	if len(articles) == 0 {
		t.Fatal("no sample articles")
	}
	for _, art := range articles {
		if !Relevant(art) {
			t.Errorf("sample article %q not relevant", art.Title)
		}
	}
}

func TestMarketSentiment_AveragesRelevantHeadlines(t *testing.T) {
	body := `{"status":"ok","articles":[
		{"title":"Dollar gains on strong data","description":"","source":{"name":"t"},"publishedAt":"2025-03-10T09:00:00Z"},
		{"title":"Euro falls on recession fears","description":"","source":{"name":"t"},"publishedAt":"2025-03-10T08:00:00Z"},
		{"title":"Local team wins championship","description":"","source":{"name":"t"},"publishedAt":"2025-03-10T07:00:00Z"}
	]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	a := New(Config{APIKey: "test-key", BaseURL: srv.URL})
	got := a.MarketSentiment(context.Background())
	// (0.50 + -0.75) / 2 over the two relevant headlines
	assertClose(t, "MarketSentiment", got, -0.125, 1e-9)
}

func TestMarketSentiment_FailureScoresNeutral(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	a := New(Config{APIKey: "test-key", BaseURL: srv.URL})
	if got := a.MarketSentiment(context.Background()); got != 0 {
		t.Fatalf("MarketSentiment on failure = %v, want 0", got)
	}
}

func TestMarketSentiment_NoRelevantHeadlinesScoresNeutral(t *testing.T) {
	body := `{"status":"ok","articles":[
		{"title":"Local team wins championship","description":"","source":{"name":"t"},"publishedAt":"2025-03-10T07:00:00Z"}
	]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	a := New(Config{APIKey: "test-key", BaseURL: srv.URL})
	if got := a.MarketSentiment(context.Background()); got != 0 {
		t.Fatalf("MarketSentiment = %v, want 0", got)
	}
}
