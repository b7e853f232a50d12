package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/richard-senior/h2h/internal/config"
	"github.com/richard-senior/h2h/internal/logger"
	"github.com/richard-senior/h2h/pkg/h2h"
)

var (
	// ErrNoHeadToHead means the page was read but had no head-to-head section
	ErrNoHeadToHead = errors.New("no head-to-head section found")
	// ErrNoResults means the search page had no usable result link
	ErrNoResults = errors.New("no search results")
)

const (
	// half way is where the head-to-head widget lazily loads
	scrollScript    = `window.scrollTo(0, document.body.scrollHeight / 2)`
	innerTextScript = `document.body.innerText`
)

// Browser searches for query, opens the first result and returns the rendered page text
type Browser interface {
	PageText(ctx context.Context, query string) (string, error)
	Close() error
}

// New returns the Browser named by cfg.Browser
func New(cfg config.ScraperConfig) (Browser, error) {
	logger.Info("Starting browser driver", cfg.Browser)
	switch cfg.Browser {
	case config.BrowserPlaywright:
		return newPlaywright(cfg)
	case config.BrowserChromedp:
		return newChromedp(cfg), nil
	case config.BrowserStatic:
		return newStatic(cfg), nil
	default:
		return nil, fmt.Errorf("unknown browser driver %q", cfg.Browser)
	}
}

// Query is the search used to find the match page for two teams
func Query(team1, team2 string) string {
	return fmt.Sprintf("%s vs %s", strings.TrimSpace(team1), strings.TrimSpace(team2))
}

// FetchHeadToHead finds the match page for the two teams and returns its head-to-head section
func FetchHeadToHead(ctx context.Context, b Browser, team1, team2 string) (string, error) {
	query := Query(team1, team2)
	logger.Info("Fetching head-to-head for", query)

	text, err := b.PageText(ctx, query)
	if err != nil {
		return "", fmt.Errorf("failed to read page for %s: %w", query, err)
	}
	section, ok := h2h.ExtractSection(text)
	if !ok {
		return "", fmt.Errorf("%s: %w", query, ErrNoHeadToHead)
	}
	return section, nil
}

func searchURL(cfg config.ScraperConfig, query string) string {
	q := strings.TrimSpace(query + " " + cfg.SearchSuffix)
	sep := "?"
	if strings.Contains(cfg.SearchURL, "?") {
		sep = "&"
	}
	return cfg.SearchURL + sep + "q=" + url.QueryEscape(q)
}

// sleep waits for d unless ctx finishes first
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
