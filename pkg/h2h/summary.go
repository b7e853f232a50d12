package h2h

import (
	"strconv"
	"strings"
)

// Record is a team's results across a set of head-to-head fixtures
type Record struct {
	Team    string `json:"team"`
	Played  int    `json:"played"`
	Wins    int    `json:"wins"`
	Draws   int    `json:"draws"`
	Losses  int    `json:"losses"`
	Skipped int    `json:"skipped"`
}

// Summarise counts wins, draws and losses for team. The team is matched case insensitively
// on either name containing the other. Shootout scores are ignored so a cup tie settled on
// penalties is a draw, postponed or unreadable fixtures are counted as Skipped.
func Summarise(records []MatchRecord, team string) Record {
	ret := Record{Team: team}
	for _, r := range records {
		home := sameTeam(r.HomeTeam, team)
		away := sameTeam(r.AwayTeam, team)
		if !home && !away {
			continue
		}
		if r.IsPostponed() {
			ret.Skipped++
			continue
		}
		hg, okh := Goals(r.HomeGoals)
		ag, oka := Goals(r.AwayGoals)
		if !okh || !oka {
			ret.Skipped++
			continue
		}
		ret.Played++
		scored, conceded := hg, ag
		if !home {
			scored, conceded = ag, hg
		}
		switch {
		case scored > conceded:
			ret.Wins++
		case scored < conceded:
			ret.Losses++
		default:
			ret.Draws++
		}
	}
	return ret
}

// Goals reads the goal count out of a score such as "2" or "1 (4)"
func Goals(score string) (int, bool) {
	s := strings.TrimSpace(score)
	if i := strings.IndexAny(s, " ("); i >= 0 {
		s = s[:i]
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func sameTeam(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
