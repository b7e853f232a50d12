package footballdata

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/richard-senior/h2h/internal/logger"
)

// StatusFinished is the api status for completed matches
const StatusFinished = "FINISHED"

// sharedFixtureSearchLimit is how far back a team's fixtures are scanned for one against the opponent
const sharedFixtureSearchLimit = 200

// TeamMatches returns the team's finished matches from the last daysBack days, each with a result
func (c *Client) TeamMatches(ctx context.Context, teamID, daysBack int) ([]Match, error) {
	now := c.now().UTC()
	params := url.Values{}
	params.Set("dateFrom", now.AddDate(0, 0, -daysBack).Format(time.DateOnly))
	params.Set("dateTo", now.Format(time.DateOnly))
	params.Set("status", StatusFinished)

	var resp matchesResponse
	if err := c.get(ctx, fmt.Sprintf("/teams/%d/matches", teamID), params, &resp); err != nil {
		return nil, fmt.Errorf("matches for team %d: %w", teamID, err)
	}

	matches := make([]Match, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		if !m.played() {
			continue
		}
		out := m.toMatch()
		out.Result = m.resultFor(teamID)
		matches = append(matches, out)
	}
	return matches, nil
}

// HeadToHead returns previous meetings of the two teams. The api only serves head-to-head
// data relative to a fixture, so one involving both is found first. nil, nil means they haven't met.
func (c *Client) HeadToHead(ctx context.Context, team1ID, team2ID, limit int) (*HeadToHead, error) {
	params := url.Values{}
	params.Set("status", StatusFinished)
	params.Set("limit", strconv.Itoa(sharedFixtureSearchLimit))

	var resp matchesResponse
	if err := c.get(ctx, fmt.Sprintf("/teams/%d/matches", team1ID), params, &resp); err != nil {
		return nil, fmt.Errorf("matches for team %d: %w", team1ID, err)
	}

	matchID := 0
	for _, m := range resp.Matches {
		if m.HomeTeam.ID == team2ID || m.AwayTeam.ID == team2ID {
			matchID = m.ID
			break
		}
	}
	if matchID == 0 {
		logger.Info("No matches found between teams", team1ID, team2ID)
		return nil, nil
	}

	params = url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	var h2hResp headToHeadResponse
	if err := c.get(ctx, fmt.Sprintf("/matches/%d/head2head", matchID), params, &h2hResp); err != nil {
		return nil, fmt.Errorf("head to head for match %d: %w", matchID, err)
	}

	out := &HeadToHead{Matches: make([]Match, 0, len(h2hResp.Matches))}
	for _, m := range h2hResp.Matches {
		out.Matches = append(out.Matches, m.toMatch())
	}

	agg := h2hResp.Aggregates
	out.Stats = HeadToHeadStats{
		TotalMatches: agg.NumberOfMatches,
		TotalGoals:   agg.TotalGoals,
		Team1Wins:    winsFor(team1ID, agg.HomeTeam, agg.AwayTeam),
		Team2Wins:    winsFor(team2ID, agg.HomeTeam, agg.AwayTeam),
		Draws:        agg.HomeTeam.Draws,
	}
	return out, nil
}

func winsFor(teamID int, home, away aggregateTeam) int {
	if home.ID == teamID {
		return home.Wins
	}
	return away.Wins
}

// UpcomingMatches lists a competition's fixtures from today until a year from now
func (c *Client) UpcomingMatches(ctx context.Context, competitionID string) ([]Fixture, error) {
	today := c.now().UTC()
	params := url.Values{}
	params.Set("dateFrom", today.Format(time.DateOnly))
	params.Set("dateTo", today.AddDate(1, 0, 0).Format(time.DateOnly))

	var resp matchesResponse
	if err := c.get(ctx, "/competitions/"+competitionID+"/matches", params, &resp); err != nil {
		return nil, fmt.Errorf("upcoming matches for competition %s: %w", competitionID, err)
	}

	fixtures := make([]Fixture, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		fixtures = append(fixtures, Fixture{
			ID:       m.ID,
			Date:     m.UTCDate.UTC(),
			HomeTeam: m.HomeTeam.Name,
			AwayTeam: m.AwayTeam.Name,
			Status:   m.Status,
		})
	}
	return fixtures, nil
}
