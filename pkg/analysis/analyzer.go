package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/richard-senior/h2h/internal/config"
	"github.com/richard-senior/h2h/internal/logger"
	"github.com/richard-senior/h2h/pkg/footballdata"
)

// Source is the part of the football-data client the analyser needs
type Source interface {
	ResolveTeamID(ctx context.Context, name string) (int, error)
	TeamMatches(ctx context.Context, teamID, daysBack int) ([]footballdata.Match, error)
	HeadToHead(ctx context.Context, team1ID, team2ID, limit int) (*footballdata.HeadToHead, error)
}

type Summary struct {
	MatchesPlayed int     `json:"matches_played"`
	Wins          int     `json:"wins"`
	Draws         int     `json:"draws"`
	Losses        int     `json:"losses"`
	WinRate       float64 `json:"win_rate"` // percent, two decimal places
}

// Record renders the summary as 3W-1D-2L
func (s Summary) Record() string {
	return fmt.Sprintf("%dW-%dD-%dL", s.Wins, s.Draws, s.Losses)
}

type TeamAnalysis struct {
	ID           int                  `json:"id"`
	Name         string               `json:"name"`
	MatchHistory []footballdata.Match `json:"match_history"`
	Summary      Summary              `json:"summary"`
}

type Comparison struct {
	Team1      *TeamAnalysis            `json:"team1"`
	Team2      *TeamAnalysis            `json:"team2"`
	HeadToHead *footballdata.HeadToHead `json:"head_to_head"`
	Forecast   *Forecast                `json:"forecast,omitempty"` // nil when either team has no recent matches
}

type Analyzer struct {
	src      Source
	daysBack int
	h2hLimit int
}

func NewAnalyzer(src Source, cfg config.FootballDataConfig) *Analyzer {
	return &Analyzer{src: src, daysBack: cfg.DaysBack, h2hLimit: cfg.HeadToHeadLimit}
}

// Summarise counts results, matches without a result are ignored
func Summarise(matches []footballdata.Match) Summary {
	var s Summary
	for _, m := range matches {
		switch m.Result {
		case footballdata.Win:
			s.Wins++
		case footballdata.Draw:
			s.Draws++
		case footballdata.Loss:
			s.Losses++
		default:
			continue
		}
		s.MatchesPlayed++
	}
	if s.MatchesPlayed > 0 {
		s.WinRate = math.Round(float64(s.Wins)/float64(s.MatchesPlayed)*100*100) / 100
	}
	return s
}

// AnalyzeTeam summarises a team's recent form. A team with no recent matches gets an empty history.
func (a *Analyzer) AnalyzeTeam(ctx context.Context, teamID int, name string) (*TeamAnalysis, error) {
	matches, err := a.src.TeamMatches(ctx, teamID, a.daysBack)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		logger.Warn("No matches found for", name)
	}
	return &TeamAnalysis{
		ID:           teamID,
		Name:         name,
		MatchHistory: matches,
		Summary:      Summarise(matches),
	}, nil
}

// Compare analyses both teams, their head-to-head record and a Poisson forecast of team1 at home.
// HeadToHead is nil if they haven't met.
func (a *Analyzer) Compare(ctx context.Context, team1, team2 string) (*Comparison, error) {
	id1, err := a.src.ResolveTeamID(ctx, team1)
	if err != nil {
		return nil, err
	}
	id2, err := a.src.ResolveTeamID(ctx, team2)
	if err != nil {
		return nil, err
	}
	logger.Info("Comparing", team1, id1, "with", team2, id2)

	c := &Comparison{}
	if c.Team1, err = a.AnalyzeTeam(ctx, id1, team1); err != nil {
		return nil, err
	}
	if c.Team2, err = a.AnalyzeTeam(ctx, id2, team2); err != nil {
		return nil, err
	}
	if c.HeadToHead, err = a.src.HeadToHead(ctx, id1, id2, a.h2hLimit); err != nil {
		return nil, err
	}
	if c.Forecast, err = NewForecast(c); err != nil {
		logger.Debug("No forecast for", team1, team2, err)
	}
	return c, nil
}
