package tools

import (
	"context"
	"fmt"

	"github.com/richard-senior/h2h/internal/logger"
	"github.com/richard-senior/h2h/pkg/h2h"
	"github.com/richard-senior/h2h/pkg/protocol"
)

var teamProperties = map[string]protocol.ToolProperty{
	"team1": {
		Type:        "string",
		Description: "The first (usually home) team, for example 'Manchester United'",
	},
	"team2": {
		Type:        "string",
		Description: "The second team, for example 'Liverpool'",
	},
}

func H2HParseTool() protocol.Tool {
	return protocol.Tool{
		Name: "h2h_parse",
		Description: `
		Parses the flattened text of a head-to-head page section into match records.
		Each record has date (dd/mm/yy), competition, home_team, away_team, home_goals and away_goals.
		Goals may include a shootout score such as "1 (4)" or be "Postponed".
		Fixtures before 2020 are not returned.
		Use this tool when the user pastes head-to-head text copied from a results site.
		`,
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: map[string]protocol.ToolProperty{
				"text": {
					Type:        "string",
					Description: "The raw text, one item per line",
				},
				"extra_competitions": {
					Type:        "array",
					Description: "Competition header lines to recognise on top of the defaults",
					Items:       &protocol.ToolProperty{Type: "string"},
				},
				"team": {
					Type:        "string",
					Description: "If given, a win/draw/loss summary is returned for this team",
				},
			},
			Required: []string{"text"},
		},
	}
}

// HandleH2HParse parses pasted head-to-head text
func HandleH2HParse(params any) (any, error) {
	logger.Info("Handling h2h_parse tool invocation")

	args, err := argsMap(params)
	if err != nil {
		return nil, err
	}
	text, err := stringArg(args, "text", true)
	if err != nil {
		return nil, err
	}
	extra, err := stringsArg(args, "extra_competitions")
	if err != nil {
		return nil, err
	}
	team, err := stringArg(args, "team", false)
	if err != nil {
		return nil, err
	}

	records := current().parser(extra).Parse(text)
	result := map[string]any{
		"records": records,
		"count":   len(records),
	}
	if team != "" {
		result["summary"] = h2h.Summarise(records, team)
	}
	return result, nil
}

func H2HFetchTool() protocol.Tool {
	props := map[string]protocol.ToolProperty{
		"save_csv": {
			Type:        "boolean",
			Description: "Also write <team1>_<team2>_h2h.csv to the configured directory",
		},
		"refresh": {
			Type:        "boolean",
			Description: "Ignore fixtures already stored for this pair and fetch again",
		},
	}
	for k, v := range teamProperties {
		props[k] = v
	}
	return protocol.Tool{
		Name: "h2h_fetch",
		Description: `
		Finds the match page for two football teams, reads its head-to-head section and returns the
		fixtures played since 2020 as match records. Results are stored so later calls are instant.
		Use this tool when the user asks about the history between two teams.
		`,
		InputSchema: protocol.InputSchema{
			Type:       "object",
			Properties: props,
			Required:   []string{"team1", "team2"},
		},
	}
}

// HandleH2HFetch scrapes, parses and stores head-to-head fixtures for two teams
func HandleH2HFetch(params any) (any, error) {
	logger.Info("Handling h2h_fetch tool invocation")

	team1, team2, err := teamsArgs(params)
	if err != nil {
		return nil, err
	}
	args, _ := argsMap(params)
	d := current()

	if d.Store != nil && !boolArg(args, "refresh") {
		records, err := d.Store.LoadHeadToHead(team1, team2)
		if err != nil {
			logger.Warn("Failed to load stored fixtures", err)
		} else if len(records) > 0 {
			return fetchResult(team1, team2, records, "store", ""), nil
		}
	}

	if d.Fetch == nil {
		return nil, fmt.Errorf("no page fetcher configured")
	}
	ctx, cancel := context.WithTimeout(context.Background(), d.Config.Scraper.Timeout)
	defer cancel()

	section, err := d.Fetch(ctx, team1, team2)
	if err != nil {
		return nil, err
	}
	records := d.parser(nil).Parse(section)

	if d.Store != nil {
		if err := d.Store.SaveHeadToHead(team1, team2, records); err != nil {
			logger.Warn("Failed to store fixtures", err)
		}
	}

	csvPath := ""
	if boolArg(args, "save_csv") {
		if csvPath, err = h2h.SaveCSV(d.Config.CSVDir, team1, team2, records); err != nil {
			return nil, err
		}
	}
	return fetchResult(team1, team2, records, "web", csvPath), nil
}

func fetchResult(team1, team2 string, records []h2h.MatchRecord, source, csvPath string) map[string]any {
	result := map[string]any{
		"team1":   team1,
		"team2":   team2,
		"source":  source,
		"count":   len(records),
		"records": records,
		"summary": h2h.Summarise(records, team1),
	}
	if csvPath != "" {
		result["csv"] = csvPath
	}
	return result
}
