package scraper

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
	"github.com/richard-senior/h2h/internal/config"
	"github.com/richard-senior/h2h/internal/logger"
)

// chromedpBrowser starts a fresh chrome for every query
type chromedpBrowser struct {
	cfg config.ScraperConfig
}

func newChromedp(cfg config.ScraperConfig) *chromedpBrowser {
	return &chromedpBrowser{cfg: cfg}
}

func (b *chromedpBrowser) PageText(ctx context.Context, query string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.UserAgent(b.cfg.UserAgent),
	)

	ctx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	ctx, cancel = chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, v ...any) {
		logger.Debug("chromedp", fmt.Sprintf(format, v...))
	}))
	defer cancel()

	var html string
	err := chromedp.Run(ctx,
		chromedp.Navigate(searchURL(b.cfg, query)),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("chromedp search: %w", err)
	}

	link, err := FirstResultLink(html)
	if err != nil {
		return "", err
	}

	logger.Info("Opening", link)
	var text string
	err = chromedp.Run(ctx,
		chromedp.Navigate(link),
		chromedp.Evaluate(scrollScript, nil),
		chromedp.Sleep(b.cfg.SettleDelay),
		chromedp.Evaluate(innerTextScript, &text),
	)
	if err != nil {
		return "", fmt.Errorf("chromedp page: %w", err)
	}
	return text, nil
}

func (b *chromedpBrowser) Close() error {
	return nil
}
