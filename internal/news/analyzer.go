// Package news derives a coarse market sentiment score from financial
// headlines. The score is one weak input to the signal scorer; on any
// failure the analyzer reports neutral rather than an error so a dead
// news feed can never block a scan.
package news

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Article is one fetched headline.
type Article struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}

// Config configures the analyzer.
type Config struct {
	APIKey  string        // empty key switches to the bundled sample headlines
	BaseURL string        // news API base, e.g. "https://newsapi.org"
	Timeout time.Duration // per-request HTTP timeout (default 10s)
}

// Analyzer fetches headlines and scores them.
type Analyzer struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

// New creates an analyzer.
func New(cfg Config) *Analyzer {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://newsapi.org"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Analyzer{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
	}
}

// apiResponse mirrors the NewsAPI "everything" payload.
type apiResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
		PublishedAt time.Time `json:"publishedAt"`
	} `json:"articles"`
}

// maxArticles caps how many headlines feed the score.
const maxArticles = 10

// newsWindow is how far back headlines count toward the market score.
const newsWindow = 6 * time.Hour

// FetchArticles returns recent forex headlines. Without an API key it
// returns the bundled sample set.
func (a *Analyzer) FetchArticles(ctx context.Context) ([]Article, error) {
	if a.apiKey == "" {
		return sampleArticles(), nil
	}

	from := time.Now().Add(-newsWindow).UTC().Format(time.RFC3339)
	u := fmt.Sprintf("%s/v2/everything?q=%s&from=%s&language=en&sortBy=publishedAt&apiKey=%s",
		a.baseURL,
		url.QueryEscape(`forex OR currency OR "foreign exchange" OR "central bank"`),
		url.QueryEscape(from), url.QueryEscape(a.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news api: status %d", resp.StatusCode)
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("news api decode: %w", err)
	}
	if payload.Status != "ok" {
		return nil, fmt.Errorf("news api: status %q", payload.Status)
	}

	if len(payload.Articles) > maxArticles {
		payload.Articles = payload.Articles[:maxArticles]
	}
	articles := make([]Article, 0, len(payload.Articles))
	for _, raw := range payload.Articles {
		articles = append(articles, Article{
			Title:       raw.Title,
			Description: raw.Description,
			Source:      raw.Source.Name,
			PublishedAt: raw.PublishedAt,
		})
	}
	return articles, nil
}

// forexKeywords gates which headlines count toward the market score.
var forexKeywords = []string{
	"forex", "currency", "currencies", "exchange rate",
	"dollar", "euro", "pound", "sterling", "yen", "aussie", "loonie",
	"usd", "eur", "gbp", "jpy", "aud", "cad",
	"fed", "federal reserve", "ecb", "boe", "bank of england",
	"boj", "bank of japan", "rba", "central bank",
	"interest rate", "rate hike", "rate cut", "inflation",
}

// Relevant reports whether an article mentions any forex keyword.
func Relevant(art Article) bool {
	text := strings.ToLower(art.Title + " " + art.Description)
	for _, kw := range forexKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// MarketSentiment fetches headlines and returns the average sentiment
// of the relevant ones, in [-1, 1]. Any failure, or no relevant
// headlines, scores neutral (0.0).
func (a *Analyzer) MarketSentiment(ctx context.Context) float64 {
	articles, err := a.FetchArticles(ctx)
	if err != nil {
		log.Printf("[news] fetch failed, scoring neutral: %v", err)
		return 0.0
	}

	var sum float64
	var n int
	for _, art := range articles {
		if !Relevant(art) {
			continue
		}
		sum += Sentiment(art.Title + " " + art.Description)
		n++
	}
	if n == 0 {
		return 0.0
	}
	return sum / float64(n)
}
