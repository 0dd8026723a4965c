// Package session classifies wall-clock time into active forex trading
// sessions and a coarse volatility tier derived from session overlap.
package session

import "time"

// Volatility is the coarse tier derived from session overlap.
type Volatility string

const (
	VolatilityLow    Volatility = "Low"
	VolatilityMedium Volatility = "Medium"
	VolatilityHigh   Volatility = "High"
)

// Session names, fixed enumeration.
const (
	Tokyo    = "Tokyo"
	London   = "London"
	NewYork  = "New_York"
	OffHours = "Off-Hours"
)

// window is a half-open UTC hour interval [Start, End).
type window struct {
	Name  string
	Start int
	End   int
}

// Major forex session hours in UTC. London and New York overlap 13-17,
// Tokyo and London overlap 8-9.
var sessions = []window{
	{Tokyo, 0, 9},
	{London, 8, 17},
	{NewYork, 13, 22},
}

// Info describes the active sessions and the derived volatility tier
// at a point in time.
type Info struct {
	Sessions   []string   `json:"sessions"`
	Volatility Volatility `json:"volatility"`
}

// Classify maps t (converted to UTC) to the set of active sessions and a
// volatility tier: High when two or more sessions overlap, Medium for
// exactly one, Low when none are open.
func Classify(t time.Time) Info {
	hour := t.UTC().Hour()

	var active []string
	for _, s := range sessions {
		if hour >= s.Start && hour < s.End {
			active = append(active, s.Name)
		}
	}

	switch {
	case len(active) >= 2:
		return Info{Sessions: active, Volatility: VolatilityHigh}
	case len(active) == 1:
		return Info{Sessions: active, Volatility: VolatilityMedium}
	default:
		return Info{Sessions: []string{OffHours}, Volatility: VolatilityLow}
	}
}

// IsMarketOpen reports whether the forex market trades at t:
// around the clock Monday through Friday, closed on weekends.
func IsMarketOpen(t time.Time) bool {
	wd := t.UTC().Weekday()
	return wd != time.Saturday && wd != time.Sunday
}
