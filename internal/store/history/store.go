// Package history provides the rate-limited, append-only signal store.
//
// The store keeps the most recent signals newest-first, enforces a
// per-hour emission cap on insert, and persists the whole history as a
// single JSON file. Load failures (missing or corrupt file) recover to
// an empty history — the store never refuses to start.
package history

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"fxsignals/internal/model"
)

const (
	DefaultMaxPerHour    = 3
	DefaultMaxEntries    = 100
	DefaultRetentionDays = 7
)

// Config configures the signal store.
type Config struct {
	Path       string // JSON file holding the serialized history
	MaxPerHour int    // rate limit over the trailing hour (default 3)
	MaxEntries int    // history cap (default 100)
}

// Store is the rate-limited signal history. All operations are
// mutex-guarded: the rate-limit check and the append are one atomic
// step even with concurrent producers.
type Store struct {
	mu         sync.Mutex
	path       string
	maxPerHour int
	maxEntries int
	signals    []model.Signal // newest first

	now func() time.Time // injectable clock for tests
}

// Open loads the signal history from cfg.Path. A missing or corrupt
// file starts an empty history rather than failing.
func Open(cfg Config) *Store {
	if cfg.MaxPerHour <= 0 {
		cfg.MaxPerHour = DefaultMaxPerHour
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultMaxEntries
	}
	s := &Store{
		path:       cfg.Path,
		maxPerHour: cfg.MaxPerHour,
		maxEntries: cfg.MaxEntries,
		now:        time.Now,
	}
	s.load()
	return s
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[history] read %s: %v (starting empty)", s.path, err)
		}
		return
	}
	var signals []model.Signal
	if err := json.Unmarshal(data, &signals); err != nil {
		log.Printf("[history] corrupt history at %s: %v (starting empty)", s.path, err)
		return
	}
	s.signals = signals
	log.Printf("[history] loaded %d signals from %s", len(signals), s.path)
}

// save persists the history. Callers hold s.mu. Write errors are logged,
// not propagated: a failed save must not break the signal flow.
func (s *Store) save() {
	data, err := json.MarshalIndent(s.signals, "", "  ")
	if err != nil {
		log.Printf("[history] marshal: %v", err)
		return
	}
	if dir := filepath.Dir(s.path); dir != "." {
		os.MkdirAll(dir, 0o755)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		log.Printf("[history] write %s: %v", tmp, err)
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		log.Printf("[history] rename %s: %v", tmp, err)
	}
}

// Add attempts to record a signal. Returns false when the trailing
// one-hour window already holds MaxPerHour signals; on accept the signal
// is prepended, the history truncated to MaxEntries and persisted.
func (s *Store) Add(sig model.Signal) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-time.Hour)
	recent := 0
	for _, existing := range s.signals {
		if existing.CreatedAt.After(cutoff) {
			recent++
		}
	}
	if recent >= s.maxPerHour {
		log.Printf("[history] rate limited: %d signals in the trailing hour (max %d)", recent, s.maxPerHour)
		return false
	}

	s.signals = append([]model.Signal{sig}, s.signals...)
	if len(s.signals) > s.maxEntries {
		s.signals = s.signals[:s.maxEntries]
	}
	s.save()
	log.Printf("[history] recorded %s %s at %.1f%% confidence", sig.Direction, sig.Pair, sig.Confidence)
	return true
}

// Recent returns up to n signals, newest first.
func (s *Store) Recent(n int) []model.Signal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > len(s.signals) {
		n = len(s.signals)
	}
	out := make([]model.Signal, n)
	copy(out, s.signals[:n])
	return out
}

// ByPair returns up to n signals for one currency pair, newest first.
// Pair matching is case-insensitive.
func (s *Store) ByPair(pair string, n int) []model.Signal {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Signal
	for _, sig := range s.signals {
		if strings.EqualFold(sig.Pair, pair) {
			out = append(out, sig)
			if len(out) == n {
				break
			}
		}
	}
	return out
}

// Today returns the signals created on the current local calendar date.
func (s *Store) Today() []model.Signal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.todayLocked()
}

func (s *Store) todayLocked() []model.Signal {
	y, m, d := s.now().Local().Date()
	var out []model.Signal
	for _, sig := range s.signals {
		sy, sm, sd := sig.CreatedAt.Local().Date()
		if sy == y && sm == m && sd == d {
			out = append(out, sig)
		}
	}
	return out
}

// Purge drops signals older than the given number of days (default 7)
// and persists the result. Returns the number of removed entries.
func (s *Store) Purge(days int) int {
	if days <= 0 {
		days = DefaultRetentionDays
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().AddDate(0, 0, -days)
	kept := s.signals[:0]
	for _, sig := range s.signals {
		if sig.CreatedAt.After(cutoff) {
			kept = append(kept, sig)
		}
	}
	removed := len(s.signals) - len(kept)
	s.signals = kept
	if removed > 0 {
		s.save()
		log.Printf("[history] purged %d signals older than %d days", removed, days)
	}
	return removed
}

// Len returns the number of stored signals.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.signals)
}
