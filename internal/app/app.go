package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/richard-senior/h2h/internal/config"
	"github.com/richard-senior/h2h/internal/logger"
	"github.com/richard-senior/h2h/pkg/analysis"
	"github.com/richard-senior/h2h/pkg/footballdata"
	"github.com/richard-senior/h2h/pkg/predict"
	"github.com/richard-senior/h2h/pkg/scraper"
	"github.com/richard-senior/h2h/pkg/store"
	"github.com/richard-senior/h2h/pkg/tools"
	"github.com/richard-senior/h2h/pkg/transport"
)

// App owns the long lived services shared by the MCP server and the command line
type App struct {
	Config    *config.Config
	Store     *store.Store
	Client    *footballdata.Client
	Analyzer  *analysis.Analyzer
	Predictor *predict.Predictor // nil without an OpenAI key

	newBrowser func(config.ScraperConfig) (scraper.Browser, error)
	browser    scraper.Browser
	mu         sync.Mutex
}

// New opens the store and builds the api client, analyzer and predictor.
// The browser is only started when a page is first fetched.
func New(cfg *config.Config) (*App, error) {
	db, err := store.Open(cfg.DbPath)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:     cfg,
		Store:      db,
		newBrowser: scraper.New,
	}
	a.Client = footballdata.NewClient(cfg.FootballData,
		footballdata.WithCache(db),
		footballdata.WithHTTPClient(transport.NewHTTPClient(cfg.FootballData.Timeout)),
	)
	a.Analyzer = analysis.NewAnalyzer(a.Client, cfg.FootballData)

	if cfg.OpenAI.APIKey != "" {
		a.Predictor = predict.NewPredictor(a.Analyzer, a.Client, predict.NewOpenAIClient(cfg.OpenAI), cfg)
	} else {
		logger.Warn("No OpenAI api key, predictions are disabled")
	}
	if cfg.FootballData.APIKey == "" {
		logger.Warn("No football-data.org api key, team comparison will fail")
	}
	return a, nil
}

// FetchHeadToHead returns the head-to-head section of the match page for two teams
func (a *App) FetchHeadToHead(ctx context.Context, team1, team2 string) (string, error) {
	b, err := a.Browser()
	if err != nil {
		return "", err
	}
	return scraper.FetchHeadToHead(ctx, b, team1, team2)
}

// Browser starts the configured browser on first use
func (a *App) Browser() (scraper.Browser, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.browser != nil {
		return a.browser, nil
	}
	b, err := a.newBrowser(a.Config.Scraper)
	if err != nil {
		return nil, fmt.Errorf("failed to start %s browser: %w", a.Config.Scraper.Browser, err)
	}
	a.browser = b
	return b, nil
}

// Deps returns the services in the form the tool handlers want
func (a *App) Deps() *tools.Deps {
	d := &tools.Deps{
		Config:   a.Config,
		Fetch:    a.FetchHeadToHead,
		Store:    a.Store,
		Comparer: a.Analyzer,
	}
	// a nil *Predictor must not become a non-nil interface
	if a.Predictor != nil {
		d.Predictor = a.Predictor
	}
	return d
}

// Close stops the browser and closes the store
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.browser != nil {
		if err := a.browser.Close(); err != nil {
			logger.Warn("Failed to close browser", err)
		}
		a.browser = nil
	}
	return a.Store.Close()
}
