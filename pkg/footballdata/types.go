package footballdata

import (
	"fmt"
	"time"
)

// Results from the perspective of the team a match list was requested for
const (
	Win  = "W"
	Draw = "D"
	Loss = "L"
)

type Team struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName,omitempty"`
	TLA       string `json:"tla,omitempty"`
}

// Match is a finished fixture
type Match struct {
	ID          int       `json:"id"`
	Date        time.Time `json:"date"`
	Competition string    `json:"competition"`
	HomeTeam    string    `json:"home_team"`
	AwayTeam    string    `json:"away_team"`
	HomeGoals   int       `json:"home_goals"`
	AwayGoals   int       `json:"away_goals"`
	Venue       string    `json:"venue,omitempty"`
	Result      string    `json:"result,omitempty"`
}

// Score renders the full time score as "2 - 1"
func (m Match) Score() string {
	return fmt.Sprintf("%d - %d", m.HomeGoals, m.AwayGoals)
}

// Day is the match date as yyyy-mm-dd
func (m Match) Day() string {
	return m.Date.Format(time.DateOnly)
}

// Fixture is a scheduled match
type Fixture struct {
	ID       int       `json:"id"`
	Date     time.Time `json:"date"`
	HomeTeam string    `json:"home_team"`
	AwayTeam string    `json:"away_team"`
	Status   string    `json:"status"`
}

// HeadToHeadStats are the api aggregates turned round to match the order the teams were asked for
type HeadToHeadStats struct {
	TotalMatches int `json:"total_matches"`
	TotalGoals   int `json:"total_goals"`
	Team1Wins    int `json:"team1_wins"`
	Team2Wins    int `json:"team2_wins"`
	Draws        int `json:"draws"`
}

type HeadToHead struct {
	Matches []Match         `json:"matches"`
	Stats   HeadToHeadStats `json:"stats"`
}

// wire formats

type apiGoals struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

type apiMatch struct {
	ID          int       `json:"id"`
	UTCDate     time.Time `json:"utcDate"`
	Status      string    `json:"status"`
	Venue       string    `json:"venue"`
	Competition struct {
		Name string `json:"name"`
	} `json:"competition"`
	HomeTeam Team `json:"homeTeam"`
	AwayTeam Team `json:"awayTeam"`
	Score    struct {
		FullTime apiGoals `json:"fullTime"`
	} `json:"score"`
}

type matchesResponse struct {
	Matches []apiMatch `json:"matches"`
}

type teamsResponse struct {
	Teams []Team `json:"teams"`
}

type aggregateTeam struct {
	ID     int `json:"id"`
	Wins   int `json:"wins"`
	Draws  int `json:"draws"`
	Losses int `json:"losses"`
}

type headToHeadResponse struct {
	Aggregates struct {
		NumberOfMatches int           `json:"numberOfMatches"`
		TotalGoals      int           `json:"totalGoals"`
		HomeTeam        aggregateTeam `json:"homeTeam"`
		AwayTeam        aggregateTeam `json:"awayTeam"`
	} `json:"aggregates"`
	Matches []apiMatch `json:"matches"`
}

// played is false when the api has no full time score yet
func (m apiMatch) played() bool {
	return m.Score.FullTime.Home != nil && m.Score.FullTime.Away != nil
}

func (m apiMatch) toMatch() Match {
	out := Match{
		ID:          m.ID,
		Date:        m.UTCDate.UTC(),
		Competition: m.Competition.Name,
		HomeTeam:    m.HomeTeam.Name,
		AwayTeam:    m.AwayTeam.Name,
		Venue:       m.Venue,
	}
	if m.played() {
		out.HomeGoals = *m.Score.FullTime.Home
		out.AwayGoals = *m.Score.FullTime.Away
	}
	return out
}

// resultFor gives W, D or L for teamID
func (m apiMatch) resultFor(teamID int) string {
	scored, conceded := *m.Score.FullTime.Home, *m.Score.FullTime.Away
	if m.HomeTeam.ID != teamID {
		scored, conceded = conceded, scored
	}
	switch {
	case scored > conceded:
		return Win
	case scored < conceded:
		return Loss
	default:
		return Draw
	}
}
