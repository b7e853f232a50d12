package h2h

import (
	"encoding/json"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(l ...string) string {
	return strings.Join(l, "\n")
}

func TestParseFullFixtureWithRatings(t *testing.T) {
	got := Parse(lines("Premier League", "01/08/24", "FT", "Team A", "Team B", "2", "8.1", "1", "7.4"))
	require.Len(t, got, 1)

	r := got[0]
	assert.Equal(t, "01/08/24", r.DateString())
	assert.Equal(t, time.Date(2024, time.August, 1, 0, 0, 0, 0, time.UTC), r.Date)
	assert.Equal(t, "Premier League", r.Competition)
	assert.Equal(t, "Team A", r.HomeTeam)
	assert.Equal(t, "Team B", r.AwayTeam)
	assert.Equal(t, "2", r.HomeGoals)
	assert.Equal(t, "1", r.AwayGoals)
}

func TestParseJSONShape(t *testing.T) {
	got := Parse(lines("Premier League", "01/08/24", "FT", "Team A", "Team B", "2", "8.1", "1", "7.4"))
	b, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"date":"01/08/24","competition":"Premier League","home_team":"Team A","away_team":"Team B","home_goals":"2","away_goals":"1"}]`, string(b))
}

func TestParsePre2020StopsImmediately(t *testing.T) {
	got := Parse(lines("15/03/19", "Team C", "Team D"))
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestParsePre2020DiscardsEverythingAfter(t *testing.T) {
	got := Parse(lines(
		"Premier League", "01/08/24", "FT", "A", "B", "2", "1",
		"15/03/19", "FT", "C", "D", "1", "0",
		"02/08/23", "FT", "E", "F", "3", "3",
	))
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].HomeTeam)
}

func TestParseRatingsNeverBecomeGoals(t *testing.T) {
	tests := []struct {
		name       string
		scores     []string
		home, away string
	}{
		{"away rating missing", []string{"2", "8.1", "1"}, "2", "1"},
		{"home rating missing", []string{"2", "1", "7.4"}, "2", "1"},
		{"only home goals and rating", []string{"3", "6.9"}, Postponed, Postponed},
		{"shootout with ratings", []string{"1 (4)", "7.0", "1 (3)", "6.8"}, "1 (4)", "1 (3)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := append([]string{"Premier League", "01/08/24", "FT", "Team A", "Team B"}, tt.scores...)
			l = append(l, "01/05/24", "Team B", "Team A", "0", "0")
			got := Parse(lines(l...))
			require.Len(t, got, 2)
			assert.Equal(t, tt.home, got[0].HomeGoals)
			assert.Equal(t, tt.away, got[0].AwayGoals)
			assert.Equal(t, "0", got[1].HomeGoals)
			assert.Equal(t, "0", got[1].AwayGoals)
		})
	}
}

func TestParseRatingInGoalPositionEndsBlock(t *testing.T) {
	got := Parse(lines("01/08/24", "Team A", "Team B", "3", "6.9"))
	require.Len(t, got, 1)
	assert.Equal(t, Postponed, got[0].HomeGoals)
	assert.Equal(t, Postponed, got[0].AwayGoals)

	got = Parse(lines("01/08/24", "Team A", "Team B", "6.9", "3", "1"))
	require.Len(t, got, 1)
	assert.True(t, got[0].IsPostponed(), "a leading rating is not a score block")
}

func TestParsePostponedWithoutScores(t *testing.T) {
	got := Parse(lines("Premier League", "01/08/24", "Postponed", "Team A", "Team B"))
	require.Len(t, got, 1)
	assert.Equal(t, Postponed, got[0].HomeGoals)
	assert.Equal(t, Postponed, got[0].AwayGoals)
	assert.True(t, got[0].IsPostponed())
}

func TestParseSingleScoreLineIsPostponed(t *testing.T) {
	got := Parse(lines("01/08/24", "15:00", "Team A", "Team B", "2", "next thing"))
	require.Len(t, got, 1)
	assert.Equal(t, Postponed, got[0].HomeGoals)
	assert.Equal(t, "", got[0].Competition)
}

func TestParseTruncatedTeams(t *testing.T) {
	got := Parse(lines("Premier League", "01/08/24", "FT", "A", "B", "1", "0", "02/08/23", "Team A"))
	require.Len(t, got, 1, "records before the truncation are kept")

	assert.Empty(t, Parse(lines("01/08/24", "Team A")))
	assert.Empty(t, Parse("01/08/24"))
}

func TestParseStatusIsNotStored(t *testing.T) {
	for _, status := range DefaultStatuses {
		got := Parse(lines("01/08/24", status, "Team A", "Team B", "0", "0"))
		require.Len(t, got, 1, status)
		assert.Equal(t, "Team A", got[0].HomeTeam)
		assert.Equal(t, "Team B", got[0].AwayTeam)
	}
}

func TestParseNoStatusLine(t *testing.T) {
	got := Parse(lines("01/08/24", "Team A", "Team B", "3", "2"))
	require.Len(t, got, 1)
	assert.Equal(t, "Team A", got[0].HomeTeam)
	assert.Equal(t, "3", got[0].HomeGoals)
	assert.Equal(t, "2", got[0].AwayGoals)
}

func TestParsePenaltyShootout(t *testing.T) {
	got := Parse(lines("FA Cup", "05/01/22", "AP", "Team A", "Team B", "1 (4)", "1 (3)"))
	require.Len(t, got, 1)
	assert.Equal(t, "FA Cup", got[0].Competition)
	assert.Equal(t, "1 (4)", got[0].HomeGoals)
	assert.Equal(t, "1 (3)", got[0].AwayGoals)
}

func TestParseInvalidCalendarDateIsSkipped(t *testing.T) {
	got := Parse(lines("31/02/24", "Premier League", "01/08/24", "A", "B", "1", "0"))
	require.Len(t, got, 1)
	assert.Equal(t, "Premier League", got[0].Competition)

	got = Parse(lines("01/08/24 extra", "A", "B", "1", "0"))
	assert.Empty(t, got)
}

func TestParseCompetitionIsSticky(t *testing.T) {
	got := Parse(lines(
		"Head-to-Head",
		"Premier League",
		"01/08/24", "FT", "A", "B", "1", "0",
		"Sofascore Ratings",
		"This Tournament",
		"01/05/24", "FT", "B", "A", "2", "2",
		"EFL Cup",
		"01/01/24", "FT", "A", "B", "0", "1",
	))
	require.Len(t, got, 3)
	assert.Equal(t, "Premier League", got[0].Competition)
	assert.Equal(t, "Premier League", got[1].Competition)
	assert.Equal(t, "EFL Cup", got[2].Competition)
}

func TestParseNoiseNeverLeaksIntoRecords(t *testing.T) {
	got := Parse(lines("Premier League", "Sofascore Ratings", "01/08/24", "FT", "A", "B", "1", "0", "Sofascore Ratings"))
	require.Len(t, got, 1)
	for _, f := range got[0].Row() {
		assert.NotEqual(t, "Sofascore Ratings", f)
	}
	assert.Equal(t, "Premier League", got[0].Competition)
}

func TestParseKeepsInputOrder(t *testing.T) {
	got := Parse(lines(
		"01/01/21", "A", "B", "1", "0",
		"01/01/23", "C", "D", "1", "0",
		"01/01/22", "E", "F", "1", "0",
	))
	require.Len(t, got, 3)
	assert.Equal(t, []string{"A", "C", "E"}, []string{got[0].HomeTeam, got[1].HomeTeam, got[2].HomeTeam})
}

func TestParseEmptyAndWhitespace(t *testing.T) {
	assert.Empty(t, Parse(""))
	got := Parse(lines("", "  Premier League  ", "", "01/08/24", "  Team A ", " Team B", "1", "1"))
	require.Len(t, got, 1)
	assert.Equal(t, "Premier League", got[0].Competition)
	assert.Equal(t, "Team A", got[0].HomeTeam)
	assert.Equal(t, "Team B", got[0].AwayTeam)
}

func TestParseIsPure(t *testing.T) {
	raw := lines("Premier League", "01/08/24", "FT", "A", "B", "2", "8.1", "1", "7.4", "01/04/24", "B", "A", "0", "0")
	assert.Equal(t, Parse(raw), Parse(raw))
}

func TestParseReplayOfOwnOutput(t *testing.T) {
	raw := lines("Premier League", "01/08/24", "FT", "A", "B", "2", "1", "FA Cup", "01/03/24", "FT", "B", "A", "0", "3")
	first := Parse(raw)

	var replay []string
	last := ""
	for _, r := range first {
		if r.Competition != last {
			replay = append(replay, r.Competition)
			last = r.Competition
		}
		replay = append(replay, r.DateString(), "FT", r.HomeTeam, r.AwayTeam, r.HomeGoals, r.AwayGoals)
	}
	assert.Equal(t, first, Parse(lines(replay...)))
}

func TestParseExtraCompetition(t *testing.T) {
	raw := lines("Europa League", "01/08/24", "A", "B", "1", "0")
	assert.Equal(t, "", Parse(raw)[0].Competition)
	assert.Equal(t, "Europa League", NewParser("Europa League").Parse(raw)[0].Competition)
}

func TestParseWithCutoff(t *testing.T) {
	raw := lines("01/08/24", "A", "B", "1", "0", "01/08/22", "B", "A", "1", "0")
	p := NewParser().WithCutoff(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Len(t, p.Parse(raw), 1)
	assert.Len(t, Parse(raw), 2)
	assert.Len(t, p.WithCutoff(time.Time{}).Parse(raw), 1, "zero cutoff keeps the current one")
}

// random walks over the vocabulary must never produce a record before the cutoff
func TestParseNeverEmitsPre2020(t *testing.T) {
	vocab := []string{
		"01/08/24", "15/03/19", "31/12/19", "01/01/20", "29/02/21", "12/12/99", "05/05/68",
		"Team A", "Team B", "1", "2 (5)", "7.3", "", "FT", "Postponed",
	}
	vocab = append(vocab, DefaultNoise...)
	vocab = append(vocab, DefaultCompetitions...)
	rng := rand.New(rand.NewSource(42))
	for n := 0; n < 500; n++ {
		var l []string
		for j := 0; j < rng.Intn(40); j++ {
			l = append(l, vocab[rng.Intn(len(vocab))])
		}
		for _, r := range Parse(lines(l...)) {
			assert.False(t, r.Date.Before(DefaultCutoff), r.String())
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("29/02/24")
	require.NoError(t, err)
	assert.Equal(t, 2024, d.Year())

	_, err = ParseDate("29/02/23")
	assert.Error(t, err)
	_, err = ParseDate("00/01/24")
	assert.Error(t, err)
	_, err = ParseDate("01/13/24")
	assert.Error(t, err)
	_, err = ParseDate("1/1/24")
	assert.Error(t, err)
}

func TestExpandYear(t *testing.T) {
	assert.Equal(t, 2000, ExpandYear(0))
	assert.Equal(t, 2068, ExpandYear(68))
	assert.Equal(t, 1969, ExpandYear(69))
	assert.Equal(t, 1999, ExpandYear(99))
}

func TestRecordJSONRoundTrip(t *testing.T) {
	in := Parse(lines("FA Cup", "05/01/22", "Team A", "Team B", "1 (4)", "1 (3)"))
	b, err := json.Marshal(in)
	require.NoError(t, err)
	var out []MatchRecord
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, in, out)
}
