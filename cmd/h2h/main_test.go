package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/richard-senior/h2h/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const blob = `Head-to-Head
Premier League
06/04/24
FT
Everton
Liverpool
2
7.9
0
6.2
FA Cup
26/01/23
Liverpool
Everton
1 (4)
1 (3)
`

func testEnv(t *testing.T) string {
	t.Helper()
	t.Setenv(config.EnvConfigPath, "")
	t.Setenv(config.EnvDbPath, ":memory:")
	dir := t.TempDir()
	cfg := filepath.Join(dir, "h2h.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("csv_dir: "+dir+"\n"), 0644))
	return cfg
}

func TestParseInputFile(t *testing.T) {
	cfg := testEnv(t)
	input := filepath.Join(t.TempDir(), "h2h.txt")
	require.NoError(t, os.WriteFile(input, []byte(blob), 0644))

	var out, errs bytes.Buffer
	code := run([]string{"-config", cfg, "-input", input, "-team1", "Everton", "-team2", "Liverpool", "-csv"}, strings.NewReader(""), &out, &errs)
	require.Equal(t, 0, code, errs.String())

	text := out.String()
	assert.Contains(t, text, "Home Team")
	assert.Contains(t, text, "06/04/24")
	assert.Contains(t, text, "1 (4)")
	assert.Contains(t, text, "Everton: played 2, won 1, drawn 1, lost 0")

	csvPath := filepath.Join(filepath.Dir(cfg), "everton_liverpool_h2h.csv")
	assert.Contains(t, text, "Data saved to "+csvPath)
	assert.FileExists(t, csvPath)
}

func TestParseStdin(t *testing.T) {
	cfg := testEnv(t)

	var out, errs bytes.Buffer
	code := run([]string{"-config", cfg, "-input", "-"}, strings.NewReader(blob), &out, &errs)
	require.Equal(t, 0, code, errs.String())
	assert.Contains(t, out.String(), "26/01/23")
	assert.NotContains(t, out.String(), "played")
}

func TestCSVFromStdinNeedsTeams(t *testing.T) {
	cfg := testEnv(t)

	var out, errs bytes.Buffer
	code := run([]string{"-config", cfg, "-input", "-", "-csv", "-team1", "Everton"}, strings.NewReader(blob), &out, &errs)
	assert.Equal(t, 1, code)
	assert.Contains(t, errs.String(), "-csv needs -team1 and -team2")
	assert.NotContains(t, out.String(), "Home Team", "nothing printed before the check")

	out.Reset()
	errs.Reset()
	code = run([]string{"-config", cfg, "-input", "-", "-csv", "-team1", "Everton", "-team2", "Liverpool"}, strings.NewReader(blob), &out, &errs)
	require.Equal(t, 0, code, errs.String())
	assert.FileExists(t, filepath.Join(filepath.Dir(cfg), "everton_liverpool_h2h.csv"))
}

func TestMissingTeamName(t *testing.T) {
	cfg := testEnv(t)

	var out, errs bytes.Buffer
	code := run([]string{"compare", "-config", cfg, "-team1", "Arsenal"}, strings.NewReader("\n"), &out, &errs)
	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "Enter second team: ")
	assert.Contains(t, errs.String(), "a team name is required")
}

func TestRawRequest(t *testing.T) {
	cfg := testEnv(t)
	req, err := json.Marshal(map[string]any{
		"tool":      "h2h_parse",
		"requestId": "cli-1",
		"arguments": map[string]any{"text": blob},
	})
	require.NoError(t, err)

	var out, errs bytes.Buffer
	code := run([]string{"-config", cfg, "-raw"}, bytes.NewReader(req), &out, &errs)
	require.Equal(t, 0, code, errs.String())

	var resp struct {
		RequestID string `json:"requestId"`
		Result    struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "cli-1", resp.RequestID)
	assert.Equal(t, 2, resp.Result.Count)
}

func TestBadFlagsAndConfig(t *testing.T) {
	var out, errs bytes.Buffer
	assert.Equal(t, 2, run([]string{"-nope"}, strings.NewReader(""), &out, &errs))
	assert.Equal(t, 0, run([]string{"-h"}, strings.NewReader(""), &out, &errs))
	assert.Contains(t, errs.String(), "usage: h2h")

	errs.Reset()
	assert.Equal(t, 1, run([]string{"-config", filepath.Join(t.TempDir(), "missing.yaml")}, strings.NewReader(""), &out, &errs))
	assert.Contains(t, errs.String(), "read config file")
}
