package tools

import (
	"bytes"
	"context"
	"fmt"

	"github.com/richard-senior/h2h/internal/logger"
	"github.com/richard-senior/h2h/pkg/analysis"
	"github.com/richard-senior/h2h/pkg/protocol"
)

func TeamCompareTool() protocol.Tool {
	return protocol.Tool{
		Name: "team_compare",
		Description: `
		Compares two football teams using football-data.org: recent results with a W-D-L record and
		win rate for each team, plus their head-to-head totals and most recent meetings.
		Common names and nicknames are understood, for example 'man utd' or 'spurs'.
		`,
		InputSchema: protocol.InputSchema{
			Type:       "object",
			Properties: teamProperties,
			Required:   []string{"team1", "team2"},
		},
	}
}

// HandleTeamCompare returns the comparison and a plain text report of it
func HandleTeamCompare(params any) (any, error) {
	logger.Info("Handling team_compare tool invocation")

	team1, team2, err := teamsArgs(params)
	if err != nil {
		return nil, err
	}
	d := current()
	if d.Comparer == nil {
		return nil, fmt.Errorf("team comparison is not configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.Config.FootballData.Timeout*4)
	defer cancel()

	c, err := d.Comparer.Compare(ctx, team1, team2)
	if err != nil {
		return nil, err
	}
	var report bytes.Buffer
	if err := analysis.WriteComparison(&report, c); err != nil {
		return nil, err
	}
	return map[string]any{
		"comparison": c,
		"report":     report.String(),
	}, nil
}
