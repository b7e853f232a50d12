package h2h

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `Match facts
Lineups
Head-to-Head
At Manchester United
Premier League
01/08/24
FT
Manchester United
Liverpool
2
7.9
1
6.8
FA Cup
17/03/24
AP
Manchester United
Liverpool
1 (5)
1 (4)
Premier League
15/03/19
FT
Liverpool
Manchester United
1
0
*IMPORTANT NOTICE
Odds are for information only`

func TestExtractSection(t *testing.T) {
	section, ok := ExtractSection(samplePage)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(section, "Head-to-Head\n"))
	assert.NotContains(t, section, "IMPORTANT")
	assert.NotContains(t, section, "Lineups")

	_, ok = ExtractSection("no fixtures here")
	assert.False(t, ok)
}

func TestExtractThenParse(t *testing.T) {
	section, ok := ExtractSection(samplePage)
	require.True(t, ok)

	got := Parse(section)
	require.Len(t, got, 2)
	assert.Equal(t, "Premier League", got[0].Competition)
	assert.Equal(t, "2", got[0].HomeGoals)
	assert.Equal(t, "1", got[0].AwayGoals)
	assert.Equal(t, "FA Cup", got[1].Competition)
	assert.Equal(t, "1 (5)", got[1].HomeGoals)
	assert.Equal(t, "1 (4)", got[1].AwayGoals)
}

func TestWriteTable(t *testing.T) {
	section, _ := ExtractSection(samplePage)
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, Parse(section)))

	out := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, out, 4)
	assert.True(t, strings.HasPrefix(out[0], "Date"))
	assert.Contains(t, out[0], "Away Goals")
	assert.True(t, strings.HasPrefix(out[1], "----"))
	assert.Contains(t, out[2], "01/08/24")
	assert.Contains(t, out[3], "1 (5)")
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, Parse("FA Cup\n05/01/22\nA FC\nB, United\n1\n0")))
	assert.Equal(t, "date,competition,home_team,away_team,home_goals,away_goals\n05/01/22,FA Cup,A FC,\"B, United\",1,0\n", buf.String())
}

func TestCSVFilename(t *testing.T) {
	assert.Equal(t, "manchester_united_liverpool_h2h.csv", CSVFilename("Manchester United", "Liverpool"))
}

func TestSaveCSV(t *testing.T) {
	dir := t.TempDir()
	section, _ := ExtractSection(samplePage)

	path, err := SaveCSV(dir, "Man Utd", "Liverpool", Parse(section))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "man_utd_liverpool_h2h.csv"), path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(b)), "\n"), 3)

	path, err = SaveCSV(dir, "A", "B", nil)
	require.NoError(t, err)
	assert.Empty(t, path)
	_, err = os.Stat(filepath.Join(dir, "a_b_h2h.csv"))
	assert.True(t, os.IsNotExist(err))
}

type failingCloser struct{ bytes.Buffer }

func (f *failingCloser) Close() error { return errors.New("disk full") }

func TestSaveCSVReportsCloseError(t *testing.T) {
	var f failingCloser
	prev := createFile
	createFile = func(string) (io.WriteCloser, error) { return &f, nil }
	t.Cleanup(func() { createFile = prev })

	path, err := SaveCSV(t.TempDir(), "A", "B", Parse("01/08/24\nA\nB\n1\n0"))
	assert.ErrorContains(t, err, "disk full")
	assert.Empty(t, path)
	assert.Contains(t, f.String(), "01/08/24,,A,B,1,0")
}

func TestSummarise(t *testing.T) {
	section, _ := ExtractSection(samplePage)
	records := append(Parse(section), Parse("01/02/24\nLiverpool\nManchester United\nPostponed")...)

	s := Summarise(records, "manchester united")
	assert.Equal(t, 2, s.Played)
	assert.Equal(t, 1, s.Wins)
	assert.Equal(t, 1, s.Draws, "shootouts count as draws")
	assert.Equal(t, 0, s.Losses)
	assert.Equal(t, 1, s.Skipped)

	s = Summarise(records, "Liverpool")
	assert.Equal(t, 1, s.Losses)
}

func TestGoals(t *testing.T) {
	n, ok := Goals("3 (4)")
	assert.True(t, ok)
	assert.Equal(t, 3, n)
	n, ok = Goals("3(4)")
	assert.True(t, ok)
	assert.Equal(t, 3, n)
	_, ok = Goals(Postponed)
	assert.False(t, ok)
}
