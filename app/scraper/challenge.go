package scraper

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// challengeGate waits out the target's anti-bot interstitial. The stealth
// profile normally lets the challenge resolve itself within a few seconds;
// the gate just polls page content until the markers disappear or the
// timeout expires.
type challengeGate struct {
	timeout      time.Duration
	pollInterval time.Duration
}

func newChallengeGate(timeout time.Duration) *challengeGate {
	if timeout <= 0 {
		timeout = 25 * time.Second
	}
	return &challengeGate{timeout: timeout, pollInterval: 2 * time.Second}
}

// Wait blocks until the interstitial has cleared. It returns false on
// timeout or context cancellation; callers proceed either way and let the
// parse stage decide what the page is worth.
func (g *challengeGate) Wait(ctx context.Context, sess Session) bool {
	deadline := time.Now().Add(g.timeout)
	for {
		html, err := sess.Content()
		if err == nil && !hasChallengeMarkers(html) {
			return true
		}
		if time.Now().After(deadline) {
			slog.Warn("Challenge page did not clear before timeout")
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(g.pollInterval):
		}
	}
}

// hasChallengeMarkers detects the interstitial by its vendor name together
// with one of its prompt phrases. Either signal alone false-positives on
// pages that merely mention the vendor.
func hasChallengeMarkers(html string) bool {
	s := strings.ToLower(html)
	if !strings.Contains(s, "cloudflare") {
		return false
	}
	return strings.Contains(s, "just a moment") ||
		strings.Contains(s, "verify you are human") ||
		strings.Contains(s, "um momento") ||
		strings.Contains(s, "confirme que voc")
}
