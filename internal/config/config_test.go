package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h2h.yaml")
	yml := `
football_data:
  api_key: from-file
  days_back: 30
scraper:
  browser: chromedp
  settle_delay: 500ms
parser:
  extra_competitions: ["Europa League"]
  cutoff: 2022-07-01
csv_dir: /tmp/out
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))
	t.Setenv(EnvFootballDataKey, "from-env")
	t.Setenv(EnvOpenAIKey, "sk-test")
	t.Setenv(EnvBrowser, "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.FootballData.APIKey)
	assert.Equal(t, 30, cfg.FootballData.DaysBack)
	assert.Equal(t, 60, cfg.FootballData.HeadToHeadLimit, "unset keys keep defaults")
	assert.Equal(t, BrowserChromedp, cfg.Scraper.Browser)
	assert.Equal(t, 500*time.Millisecond, cfg.Scraper.SettleDelay)
	assert.Equal(t, []string{"Europa League"}, cfg.Parser.ExtraCompetitions)
	assert.Equal(t, time.Date(2022, time.July, 1, 0, 0, 0, 0, time.UTC), cfg.Parser.Cutoff)
	assert.Equal(t, "/tmp/out", cfg.CSVDir)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Scraper.Browser = "lynx"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.FootballData.RequestsPerMinute = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.OpenAI.Temperature = 3
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Parser.Cutoff = time.Time{}
	assert.Error(t, cfg.Validate())
}
