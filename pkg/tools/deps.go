package tools

import (
	"context"
	"fmt"
	"sync"

	"github.com/richard-senior/h2h/internal/config"
	"github.com/richard-senior/h2h/pkg/analysis"
	"github.com/richard-senior/h2h/pkg/h2h"
	"github.com/richard-senior/h2h/pkg/predict"
)

// FetchFunc returns the head-to-head section of the match page for two teams
type FetchFunc func(ctx context.Context, team1, team2 string) (string, error)

// FixtureStore keeps parsed fixtures between calls, *store.Store satisfies it
type FixtureStore interface {
	SaveHeadToHead(team1, team2 string, records []h2h.MatchRecord) error
	LoadHeadToHead(team1, team2 string) ([]h2h.MatchRecord, error)
}

type Predictor interface {
	Predict(ctx context.Context, team1, team2 string) (*predict.Prediction, error)
}

// Deps are the services behind the tools. Nil members make the matching tools return an error.
type Deps struct {
	Config    *config.Config
	Fetch     FetchFunc
	Store     FixtureStore
	Comparer  predict.Comparer
	Predictor Predictor
}

var (
	deps   = &Deps{Config: config.Default()}
	depsMu sync.RWMutex
)

// Configure sets the services used by every tool handler
func Configure(d *Deps) {
	depsMu.Lock()
	defer depsMu.Unlock()
	if d.Config == nil {
		d.Config = config.Default()
	}
	deps = d
}

func current() *Deps {
	depsMu.RLock()
	defer depsMu.RUnlock()
	return deps
}

// parser builds a parser that also knows the configured extra competitions
func (d *Deps) parser(extra []string) *h2h.Parser {
	return h2h.NewParser(append(append([]string{}, d.Config.Parser.ExtraCompetitions...), extra...)...).
		WithCutoff(d.Config.Parser.Cutoff)
}

var _ predict.Comparer = (*analysis.Analyzer)(nil)

func argsMap(params any) (map[string]any, error) {
	if params == nil {
		return map[string]any{}, nil
	}
	m, ok := params.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("invalid parameters format")
	}
	return m, nil
}

func stringArg(args map[string]any, name string, required bool) (string, error) {
	v, ok := args[name]
	if !ok || v == nil {
		if required {
			return "", fmt.Errorf("%s parameter is required", name)
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s parameter must be a string", name)
	}
	if required && s == "" {
		return "", fmt.Errorf("%s parameter must not be empty", name)
	}
	return s, nil
}

func boolArg(args map[string]any, name string) bool {
	b, _ := args[name].(bool)
	return b
}

func stringsArg(args map[string]any, name string) ([]string, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%s parameter must be an array of strings", name)
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%s parameter must be an array of strings", name)
		}
		out = append(out, s)
	}
	return out, nil
}

func teamsArgs(params any) (string, string, error) {
	args, err := argsMap(params)
	if err != nil {
		return "", "", err
	}
	team1, err := stringArg(args, "team1", true)
	if err != nil {
		return "", "", err
	}
	team2, err := stringArg(args, "team2", true)
	if err != nil {
		return "", "", err
	}
	return team1, team2, nil
}
