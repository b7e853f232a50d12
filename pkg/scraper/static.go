package scraper

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/richard-senior/h2h/internal/config"
	"github.com/richard-senior/h2h/internal/logger"
	"github.com/richard-senior/h2h/pkg/transport"
)

// staticBrowser fetches plain HTML with no javascript. Pages that render their fixtures
// client side won't have a head-to-head section this way, server rendered ones will.
type staticBrowser struct {
	cfg   config.ScraperConfig
	fetch func(ctx context.Context, url string) ([]byte, error)
}

func newStatic(cfg config.ScraperConfig) *staticBrowser {
	return &staticBrowser{cfg: cfg, fetch: transport.GetHtml}
}

func (b *staticBrowser) PageText(ctx context.Context, query string) (string, error) {
	serp, err := b.fetch(ctx, searchURL(b.cfg, query))
	if err != nil {
		return "", fmt.Errorf("could not fetch search page: %w", err)
	}
	link, err := FirstResultLink(string(serp))
	if err != nil {
		return "", err
	}

	logger.Info("Fetching", link)
	page, err := b.fetch(ctx, link)
	if err != nil {
		return "", fmt.Errorf("could not fetch %s: %w", link, err)
	}
	return HTMLToText(string(page), link)
}

func (b *staticBrowser) Close() error {
	return nil
}

var (
	mdImage   = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	mdLink    = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	mdEscape  = regexp.MustCompile(`\\([\\` + "`" + `*_{}\[\]()#+\-.!|>~])`)
	mdHeading = regexp.MustCompile(`^#{1,6}\s+`)
	mdBullet  = regexp.MustCompile(`^(?:[-+]|\d+\.)\s+`)
	mdEmph    = regexp.MustCompile(`\*\*|__`)
)

// HTMLToText renders html roughly the way innerText would: one block per line, blank lines dropped.
// pageURL resolves relative links and may be empty.
func HTMLToText(html, pageURL string) (string, error) {
	var opts []converter.ConvertOptionFunc
	if domain := extractDomain(pageURL); domain != "" {
		opts = append(opts, converter.WithDomain(domain))
	}
	markdown, err := htmltomarkdown.ConvertString(html, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML: %w", err)
	}

	var lines []string
	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSpace(line)
		line = mdImage.ReplaceAllString(line, "")
		line = mdLink.ReplaceAllString(line, "$1")
		line = mdHeading.ReplaceAllString(line, "")
		line = mdBullet.ReplaceAllString(line, "")
		line = mdEmph.ReplaceAllString(line, "")
		line = strings.TrimSpace(mdEscape.ReplaceAllString(line, "$1"))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// extractDomain returns scheme://host for a URL or "" if there isn't one
func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
