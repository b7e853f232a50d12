package h2h

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/richard-senior/h2h/internal/logger"
)

var tableHeaders = []string{"Date", "Competition", "Home Team", "Away Team", "Home Goals", "Away Goals"}

// WriteTable writes the records as an aligned console table
func WriteTable(w io.Writer, records []MatchRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(tableHeaders, "\t"))
	dashes := make([]string, len(tableHeaders))
	for i, h := range tableHeaders {
		dashes[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(dashes, "\t"))
	for _, r := range records {
		fmt.Fprintln(tw, strings.Join(r.Row(), "\t"))
	}
	return tw.Flush()
}

// WriteCSV writes a header row followed by one row per record
func WriteCSV(w io.Writer, records []MatchRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(r.Row()); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSVFilename is lower(team1)_lower(team2)_h2h.csv with spaces replaced by underscores
func CSVFilename(team1, team2 string) string {
	name := fmt.Sprintf("%s_%s_h2h.csv", strings.ToLower(team1), strings.ToLower(team2))
	return strings.ReplaceAll(name, " ", "_")
}

var createFile = func(path string) (io.WriteCloser, error) { return os.Create(path) }

// SaveCSV writes the records to CSVFilename inside dir and returns the path.
// Nothing is written for an empty slice and the returned path is empty.
func SaveCSV(dir, team1, team2 string, records []MatchRecord) (string, error) {
	if len(records) == 0 {
		logger.Warn("No head-to-head records to save for", team1, team2)
		return "", nil
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create csv directory: %w", err)
	}
	path := filepath.Join(dir, CSVFilename(team1, team2))
	f, err := createFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to create csv file %s: %w", path, err)
	}
	if err := WriteCSV(f, records); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write csv file %s: %w", path, err)
	}
	logger.Info("Data saved to", path)
	return path, nil
}
