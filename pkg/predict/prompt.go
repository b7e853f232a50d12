package predict

import (
	"fmt"
	"strings"

	"github.com/richard-senior/h2h/pkg/analysis"
	"github.com/richard-senior/h2h/pkg/footballdata"
)

// recentLimit is how many recent and head-to-head matches go into the prompt
const recentLimit = 5

// SystemMessage sets the model's role for every prediction
const SystemMessage = "You are a football analysis expert focused on data-driven predictions."

const upcomingDateLayout = "January 02, 2006 at 15:04 UTC"

// FormatMatchData renders a comparison as the plain text block the model is given
func FormatMatchData(c *analysis.Comparison) string {
	var out []string

	for _, team := range []*analysis.TeamAnalysis{c.Team1, c.Team2} {
		s := team.Summary
		out = append(out,
			fmt.Sprintf("\n%s Recent Form:", team.Name),
			fmt.Sprintf("Last %d matches: %s", s.MatchesPlayed, s.Record()),
			fmt.Sprintf("Win Rate: %s%%", analysis.FormatRate(s.WinRate)),
			"\nRecent matches:",
		)
		out = append(out, matchLines(team.MatchHistory)...)
	}

	if h := c.HeadToHead; h != nil {
		out = append(out,
			"\nHead-to-Head History:",
			fmt.Sprintf("Total Matches: %d", h.Stats.TotalMatches),
			fmt.Sprintf("Goals Scored: %d", h.Stats.TotalGoals),
			"\nLast 5 head-to-head matches:",
		)
		out = append(out, matchLines(h.Matches)...)
	}

	if f := c.Forecast; f != nil {
		out = append(out,
			fmt.Sprintf("\nPoisson Model (%s at home):", c.Team1.Name),
			fmt.Sprintf("Expected Goals: %s - %s", analysis.FormatRate(f.HomeExpectedGoals), analysis.FormatRate(f.AwayExpectedGoals)),
			fmt.Sprintf("Win/Draw/Loss: %s%% / %s%% / %s%%", analysis.FormatRate(f.HomeWin), analysis.FormatRate(f.Draw), analysis.FormatRate(f.AwayWin)),
			fmt.Sprintf("Over 2.5 Goals: %s%%", analysis.FormatRate(f.Over2p5Goals)),
		)
	}
	return strings.Join(out, "\n")
}

func matchLines(matches []footballdata.Match) []string {
	if len(matches) > recentLimit {
		matches = matches[:recentLimit]
	}
	lines := make([]string, 0, len(matches))
	for _, m := range matches {
		lines = append(lines, fmt.Sprintf("%s: %s %s %s", m.Day(), m.HomeTeam, m.Score(), m.AwayTeam))
	}
	return lines
}

// UpcomingBetween picks out fixtures between the two teams, either way round, as readable lines.
// Names match if the typed name appears anywhere in the api name, ignoring case.
func UpcomingBetween(fixtures []footballdata.Fixture, team1, team2 string) []string {
	t1, t2 := strings.ToLower(team1), strings.ToLower(team2)
	var out []string
	for _, f := range fixtures {
		home, away := strings.ToLower(f.HomeTeam), strings.ToLower(f.AwayTeam)
		if (strings.Contains(home, t1) && strings.Contains(away, t2)) ||
			(strings.Contains(home, t2) && strings.Contains(away, t1)) {
			out = append(out, fmt.Sprintf("%s vs %s on %s", f.HomeTeam, f.AwayTeam, f.Date.UTC().Format(upcomingDateLayout)))
		}
	}
	return out
}

// BuildPrompt is the user message sent with SystemMessage
func BuildPrompt(team1, team2, matchData string, upcoming []string) string {
	fixtures := "No upcoming matches found"
	if len(upcoming) > 0 {
		fixtures = strings.Join(upcoming, "\n")
	}

	return fmt.Sprintf(`Here is the recent match data and head-to-head history for %s vs %s:

%s

Upcoming matches involving these teams:
%s

Given only the statistical and factual data provided, generate predictions for each upcoming match listed above. For each match:
1. Analyze the specific matchup based on recent form and head-to-head history
2. Provide 3-5 highly probable (>90%% likelihood) predictions
3. Clearly indicate the data source and confidence level for each prediction
4. Avoid speculative claims - use only the data provided

Important:
- Each prediction must be directly supported by the data shown
- If insufficient data exists for high-confidence predictions, state that explicitly
`, team1, team2, matchData, fixtures)
}
