package news

import "time"

// sampleArticles is the keyless fallback headline set. Deliberately
// mixed in tone so the aggregate stays near neutral.
func sampleArticles() []Article {
	now := time.Now().UTC()
	return []Article{
		{
			Title:       "Dollar gains as Federal Reserve signals steady policy path",
			Description: "The US dollar climbs against major currencies after upbeat economic data.",
			Source:      "Sample Wire",
			PublishedAt: now.Add(-1 * time.Hour),
		},
		{
			Title:       "Euro falls on ECB rate cut speculation",
			Description: "The euro weakens as traders price in earlier easing from the European Central Bank.",
			Source:      "Sample Wire",
			PublishedAt: now.Add(-2 * time.Hour),
		},
		{
			Title:       "Pound steady ahead of Bank of England decision",
			Description: "Sterling holds its range while markets wait for the BoE rate announcement.",
			Source:      "Sample Wire",
			PublishedAt: now.Add(-3 * time.Hour),
		},
		{
			Title:       "Yen strengthens as Bank of Japan hints at policy shift",
			Description: "The Japanese yen rises on growing expectations of tighter policy.",
			Source:      "Sample Wire",
			PublishedAt: now.Add(-4 * time.Hour),
		},
		{
			Title:       "Forex markets calm as inflation data meets forecasts",
			Description: "Currency pairs trade in tight ranges after in-line inflation figures.",
			Source:      "Sample Wire",
			PublishedAt: now.Add(-5 * time.Hour),
		},
	}
}
