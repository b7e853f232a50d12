package scraper

import (
	"context"
	"fmt"

	"github.com/playwright-community/playwright-go"
	"github.com/richard-senior/h2h/internal/config"
	"github.com/richard-senior/h2h/internal/logger"
)

// playwrightBrowser drives a single long lived chromium, one page per query
type playwrightBrowser struct {
	cfg     config.ScraperConfig
	pw      *playwright.Playwright
	browser playwright.Browser
}

func newPlaywright(cfg config.ScraperConfig) (*playwrightBrowser, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright (is the driver installed?): %w", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
		Args:     []string{"--disable-gpu", "--no-sandbox", "--disable-dev-shm-usage"},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("could not launch chromium: %w", err)
	}
	return &playwrightBrowser{cfg: cfg, pw: pw, browser: browser}, nil
}

func (b *playwrightBrowser) PageText(ctx context.Context, query string) (string, error) {
	page, err := b.browser.NewPage(playwright.BrowserNewPageOptions{
		UserAgent: playwright.String(b.cfg.UserAgent),
	})
	if err != nil {
		return "", fmt.Errorf("could not create page: %w", err)
	}
	defer page.Close()

	gotoOpts := playwright.PageGotoOptions{
		Timeout:   playwright.Float(float64(b.cfg.Timeout.Milliseconds())),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}

	if _, err := page.Goto(searchURL(b.cfg, query), gotoOpts); err != nil {
		return "", fmt.Errorf("could not open search page: %w", err)
	}
	html, err := page.Content()
	if err != nil {
		return "", fmt.Errorf("could not read search page: %w", err)
	}
	link, err := FirstResultLink(html)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	logger.Info("Opening", link)
	if _, err := page.Goto(link, gotoOpts); err != nil {
		return "", fmt.Errorf("could not open %s: %w", link, err)
	}
	if _, err := page.Evaluate(scrollScript); err != nil {
		logger.Warn("Scroll failed", err)
	}
	if err := sleep(ctx, b.cfg.SettleDelay); err != nil {
		return "", err
	}

	v, err := page.Evaluate(innerTextScript)
	if err != nil {
		return "", fmt.Errorf("could not read page text: %w", err)
	}
	text, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("page text was %T, not a string", v)
	}
	return text, nil
}

func (b *playwrightBrowser) Close() error {
	if err := b.browser.Close(); err != nil {
		logger.Warn("Failed to close chromium", err)
	}
	return b.pw.Stop()
}
