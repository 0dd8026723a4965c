// Package notification delivers recorded trading signals to external
// channels (Telegram, webhooks). Delivery is best-effort: a dead
// channel never blocks or fails the scan loop.
package notification

import (
	"context"
	"log"
	"strings"

	"fxsignals/internal/model"
)

// Notifier is the interface for all delivery backends.
type Notifier interface {
	// Notify delivers a recorded signal. Returns error if delivery fails.
	Notify(ctx context.Context, sig model.Signal) error
}

// LogNotifier logs signals instead of delivering them (useful for
// development and as the default when no channel is configured).
type LogNotifier struct{}

// NewLogNotifier creates a log-based notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Notify(ctx context.Context, sig model.Signal) error {
	log.Printf("[notify] %s | confidence %.0f%% | expiry %dm | %s",
		sig.Formatted(), sig.Confidence, sig.ExpiryMinutes, sig.Reason)
	return nil
}

// Multi fans a signal out to several backends. Each backend gets its
// own attempt; failures are logged and the first error is returned.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, sig model.Signal) error {
	var first error
	for _, n := range m {
		if err := n.Notify(ctx, sig); err != nil {
			log.Printf("[notify] delivery failed: %v", err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// summarize joins the top reasons into one display line.
func summarize(reasons []string) string {
	if len(reasons) > 3 {
		reasons = reasons[:3]
	}
	return strings.Join(reasons, " | ")
}
