package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/richard-senior/h2h/internal/app"
	"github.com/richard-senior/h2h/internal/config"
	"github.com/richard-senior/h2h/internal/logger"
	"github.com/richard-senior/h2h/internal/processor"
	"github.com/richard-senior/h2h/pkg/analysis"
	"github.com/richard-senior/h2h/pkg/h2h"
	"github.com/richard-senior/h2h/pkg/predict"
	"github.com/richard-senior/h2h/pkg/tools"
)

const usage = `usage: h2h [command] [flags]

commands:
  (none)    fetch (or -input) head-to-head fixtures for -team1 and -team2 and print them
  compare   recent form and head-to-head totals from football-data.org
  predict   language model predictions for upcoming fixtures between the teams
  teams     list the teams in -competition
  upcoming  list scheduled fixtures in -competition, only those between the teams if both are given

flags:
`

var commands = map[string]bool{"compare": true, "predict": true, "teams": true, "upcoming": true}

type options struct {
	team1, team2 string
	input        string
	csv          bool
	raw          bool
	configPath   string
	debug        bool
	competition  string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := ""
	if len(args) > 0 && commands[args[0]] {
		cmd, args = args[0], args[1:]
	}

	var opts options
	fs := flag.NewFlagSet("h2h", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	fs.StringVar(&opts.team1, "team1", "", "First (home) team, prompted for when missing")
	fs.StringVar(&opts.team2, "team2", "", "Second (away) team, prompted for when missing")
	fs.StringVar(&opts.input, "input", "", "Parse head-to-head text from this file ('-' for stdin) instead of fetching it")
	fs.BoolVar(&opts.csv, "csv", false, "Also save the fixtures as <team1>_<team2>_h2h.csv")
	fs.BoolVar(&opts.raw, "raw", false, "Read a JSON tool request from -input or stdin and print the JSON response")
	fs.StringVar(&opts.configPath, "config", "", "YAML config file (default $"+config.EnvConfigPath+")")
	fs.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	fs.StringVar(&opts.competition, "competition", "", "football-data.org competition id or code (default from config)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	configureLogging(cfg, opts.debug)
	if opts.competition == "" {
		opts.competition = cfg.FootballData.CompetitionID
	}

	c := &cli{cfg: cfg, opts: opts, in: bufio.NewReader(stdin), out: stdout}
	defer c.close()

	switch {
	case opts.raw:
		err = c.raw()
	case cmd == "compare":
		err = c.compare()
	case cmd == "predict":
		err = c.predict()
	case cmd == "teams":
		err = c.listTeams()
	case cmd == "upcoming":
		err = c.upcoming()
	default:
		err = c.headToHead()
	}
	if err != nil {
		logger.Error("h2h failed", err)
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

func configureLogging(cfg *config.Config, debug bool) {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warn("Ignoring log level", err)
	}
	if debug {
		level = logger.DEBUG
	}
	logger.SetLevel(level)
}

type cli struct {
	cfg  *config.Config
	opts options
	in   *bufio.Reader
	out  io.Writer
	app  *app.App
}

// services opens the store and api clients on first use so parsing a file needs neither
func (c *cli) services() (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	a, err := app.New(c.cfg)
	if err != nil {
		return nil, err
	}
	c.app = a
	tools.Configure(a.Deps())
	return a, nil
}

func (c *cli) close() {
	if c.app != nil {
		if err := c.app.Close(); err != nil {
			logger.Warn("Failed to close", err)
		}
	}
}

func (c *cli) timeout(d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), d)
}

// teamNames fills in whichever team names weren't given on the command line
func (c *cli) teamNames() (string, string, error) {
	var err error
	if c.opts.team1 == "" {
		if c.opts.team1, err = c.ask("Enter first team: "); err != nil {
			return "", "", err
		}
	}
	if c.opts.team2 == "" {
		if c.opts.team2, err = c.ask("Enter second team: "); err != nil {
			return "", "", err
		}
	}
	return c.opts.team1, c.opts.team2, nil
}

func (c *cli) ask(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	line, err := c.in.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return "", errors.New("a team name is required")
	}
	return line, nil
}

func (c *cli) readInput() ([]byte, error) {
	if c.opts.input == "" || c.opts.input == "-" {
		return io.ReadAll(c.in)
	}
	data, err := os.ReadFile(c.opts.input)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	return data, nil
}

func (c *cli) raw() error {
	input, err := c.readInput()
	if err != nil {
		return err
	}
	if _, err := c.services(); err != nil {
		return err
	}
	result, err := processor.ProcessRequest(input)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, string(result))
	return nil
}

func (c *cli) headToHead() error {
	// the csv name needs both teams and stdin can't be prompted once the fixtures have been read from it
	if c.opts.csv {
		if c.opts.input == "-" && (c.opts.team1 == "" || c.opts.team2 == "") {
			return errors.New("-csv needs -team1 and -team2 when fixtures are read from stdin")
		}
		if _, _, err := c.teamNames(); err != nil {
			return err
		}
	}

	parser := h2h.NewParser(c.cfg.Parser.ExtraCompetitions...).WithCutoff(c.cfg.Parser.Cutoff)

	var records []h2h.MatchRecord
	if c.opts.input != "" {
		text, err := c.readInput()
		if err != nil {
			return err
		}
		records = parser.Parse(string(text))
	} else {
		team1, team2, err := c.teamNames()
		if err != nil {
			return err
		}
		a, err := c.services()
		if err != nil {
			return err
		}
		ctx, cancel := c.timeout(c.cfg.Scraper.Timeout)
		defer cancel()
		section, err := a.FetchHeadToHead(ctx, team1, team2)
		if err != nil {
			return err
		}
		records = parser.Parse(section)
		if err := a.Store.SaveHeadToHead(team1, team2, records); err != nil {
			logger.Warn("Failed to store fixtures", err)
		}
	}

	if len(records) == 0 {
		fmt.Fprintln(c.out, "No head-to-head fixtures found")
		return nil
	}
	if err := h2h.WriteTable(c.out, records); err != nil {
		return err
	}

	if c.opts.team1 != "" {
		s := h2h.Summarise(records, c.opts.team1)
		fmt.Fprintf(c.out, "\n%s: played %d, won %d, drawn %d, lost %d\n", s.Team, s.Played, s.Wins, s.Draws, s.Losses)
	}

	if c.opts.csv {
		path, err := h2h.SaveCSV(c.cfg.CSVDir, c.opts.team1, c.opts.team2, records)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "\nData saved to %s\n", path)
	}
	return nil
}

func (c *cli) compare() error {
	team1, team2, err := c.teamNames()
	if err != nil {
		return err
	}
	a, err := c.services()
	if err != nil {
		return err
	}
	ctx, cancel := c.timeout(c.cfg.FootballData.Timeout * 4)
	defer cancel()

	cmp, err := a.Analyzer.Compare(ctx, team1, team2)
	if err != nil {
		return err
	}
	return analysis.WriteComparison(c.out, cmp)
}

func (c *cli) predict() error {
	team1, team2, err := c.teamNames()
	if err != nil {
		return err
	}
	a, err := c.services()
	if err != nil {
		return err
	}
	if a.Predictor == nil {
		return fmt.Errorf("predictions need an OpenAI api key, set %s", config.EnvOpenAIKey)
	}
	ctx, cancel := c.timeout(c.cfg.FootballData.Timeout * 6)
	defer cancel()

	p, err := a.Predictor.Predict(ctx, team1, team2)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Predictions for %s vs %s\n%s\n", p.Team1, p.Team2, strings.Repeat("=", 50))
	if len(p.Upcoming) > 0 {
		fmt.Fprintln(c.out, "Upcoming:")
		for _, u := range p.Upcoming {
			fmt.Fprintln(c.out, " ", u)
		}
		fmt.Fprintln(c.out)
	}
	fmt.Fprintln(c.out, p.Text)
	return nil
}

func (c *cli) listTeams() error {
	a, err := c.services()
	if err != nil {
		return err
	}
	ctx, cancel := c.timeout(c.cfg.FootballData.Timeout)
	defer cancel()

	teams, err := a.Client.CompetitionTeams(ctx, c.opts.competition)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tName\tShort Name\tTLA")
	for _, t := range teams {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", t.ID, t.Name, t.ShortName, t.TLA)
	}
	return tw.Flush()
}

func (c *cli) upcoming() error {
	a, err := c.services()
	if err != nil {
		return err
	}
	ctx, cancel := c.timeout(c.cfg.FootballData.Timeout)
	defer cancel()

	fixtures, err := a.Client.UpcomingMatches(ctx, c.opts.competition)
	if err != nil {
		return err
	}
	if c.opts.team1 != "" && c.opts.team2 != "" {
		lines := predict.UpcomingBetween(fixtures, c.opts.team1, c.opts.team2)
		if len(lines) == 0 {
			fmt.Fprintln(c.out, "No upcoming matches found")
		}
		for _, l := range lines {
			fmt.Fprintln(c.out, l)
		}
		return nil
	}

	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Date\tHome\tAway\tStatus")
	for _, f := range fixtures {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.Date.UTC().Format("2006-01-02 15:04"), f.HomeTeam, f.AwayTeam, f.Status)
	}
	return tw.Flush()
}
