package analysis

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/richard-senior/h2h/pkg/footballdata"
)

var rule = strings.Repeat("=", 50)

// WriteComparison renders a comparison as plain text tables
func WriteComparison(w io.Writer, c *Comparison) error {
	for _, team := range []*TeamAnalysis{c.Team1, c.Team2} {
		if err := writeTeam(w, team); err != nil {
			return err
		}
	}

	if err := writeHeadToHead(w, c); err != nil {
		return err
	}
	if c.Forecast != nil {
		writeForecast(w, c.Team1.Name, c.Team2.Name, c.Forecast)
	}
	return nil
}

func writeHeadToHead(w io.Writer, c *Comparison) error {
	if c.HeadToHead == nil {
		_, err := fmt.Fprintln(w, "\nNo head-to-head data available for these teams")
		return err
	}

	stats := c.HeadToHead.Stats
	fmt.Fprintf(w, "\nHead-to-Head Analysis\n%s\n", rule)
	fmt.Fprintf(w, "Total Matches: %d\n", stats.TotalMatches)
	fmt.Fprintf(w, "Total Goals: %d\n", stats.TotalGoals)
	fmt.Fprintf(w, "%s wins: %d\n", c.Team1.Name, stats.Team1Wins)
	fmt.Fprintf(w, "%s wins: %d\n", c.Team2.Name, stats.Team2Wins)
	fmt.Fprintf(w, "Draws: %d\n", stats.Draws)
	fmt.Fprintln(w, "\nRecent Head-to-Head Matches:")
	return writeMatches(w, c.HeadToHead.Matches, false)
}

func writeTeam(w io.Writer, t *TeamAnalysis) error {
	fmt.Fprintf(w, "\nMatch History for %s\n%s\n", t.Name, rule)
	if len(t.MatchHistory) == 0 {
		_, err := fmt.Fprintf(w, "No matches found for %s\n", t.Name)
		return err
	}
	s := t.Summary
	fmt.Fprintf(w, "Last %d matches:\n", s.MatchesPlayed)
	fmt.Fprintf(w, "Record: %s\n", s.Record())
	fmt.Fprintf(w, "Win Rate: %s%%\n", FormatRate(s.WinRate))
	fmt.Fprintln(w, "\nDetailed Match History:")
	return writeMatches(w, t.MatchHistory, true)
}

func writeMatches(w io.Writer, matches []footballdata.Match, withResult bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := "Date\tCompetition\tHome\tAway\tScore"
	if withResult {
		header += "\tResult"
	} else {
		header += "\tVenue"
	}
	fmt.Fprintln(tw, header)
	for _, m := range matches {
		last := m.Result
		if !withResult {
			last = m.Venue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", m.Day(), m.Competition, m.HomeTeam, m.AwayTeam, m.Score(), last)
	}
	return tw.Flush()
}

func writeForecast(w io.Writer, home, away string, f *Forecast) {
	fmt.Fprintf(w, "\nPoisson Forecast (%s at home)\n%s\n", home, rule)
	fmt.Fprintf(w, "Expected Goals: %s %s - %s %s\n", home, FormatRate(f.HomeExpectedGoals), FormatRate(f.AwayExpectedGoals), away)
	fmt.Fprintf(w, "Most Likely Score: %d - %d\n", f.PredictedHomeGoals, f.PredictedAwayGoals)
	fmt.Fprintf(w, "%s win: %s%%\n", home, FormatRate(f.HomeWin))
	fmt.Fprintf(w, "Draw: %s%%\n", FormatRate(f.Draw))
	fmt.Fprintf(w, "%s win: %s%%\n", away, FormatRate(f.AwayWin))
	fmt.Fprintf(w, "Over 2.5 Goals: %s%%\n", FormatRate(f.Over2p5Goals))
}

// FormatRate prints a win rate without trailing zeros, 50 rather than 50.00
func FormatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', -1, 64)
}
