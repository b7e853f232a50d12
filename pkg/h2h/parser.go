package h2h

/**
* Turns the flattened text of a head-to-head page section into match records.
* The text has no delimiters, fixtures look like this:
*
*   Premier League        <- competition header, applies until the next header
*   01/08/24              <- date, newest first
*   FT                    <- optional status
*   Team A
*   Team B
*   2                     <- home goals
*   8.1                   <- home rating (sometimes absent)
*   1                     <- away goals
*   7.4                   <- away rating
*
* Anything that can't be classified is skipped.
* The scan stops at the first fixture before the cutoff, so the input is assumed to be newest first.
* Ascending or shuffled input would lose every fixture after the first old one.
 */

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// maxScoreLines is home goals, home rating, away goals, away rating
const maxScoreLines = 4

var (
	datePattern = regexp.MustCompile(`^\d{2}/\d{2}/\d{2}`)
	// goals with an optional shootout score, ie. "1 (4)"
	goalsPattern = regexp.MustCompile(`^\d+(\s*\(\d+\))?$`)
	// team rating, ie. "7.4"
	ratingPattern = regexp.MustCompile(`^\d+\.\d+$`)
)

// DefaultNoise are banner lines that appear between fixtures
var DefaultNoise = []string{"Head-to-Head", "At Manchester United", "This Tournament", "Sofascore Ratings"}

// DefaultCompetitions are the header lines recognised as competition names
var DefaultCompetitions = []string{"Premier League", "FA Cup", "EFL Cup", "UEFA Champions League", "Community Shield"}

// DefaultStatuses are the optional marker lines directly after a date
var DefaultStatuses = []string{"FT", "AP", "Postponed", "15:00"}

// DefaultCutoff is the earliest fixture date kept
var DefaultCutoff = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// Parser holds the line vocabularies, all matches are exact and case sensitive
type Parser struct {
	noise        map[string]struct{}
	competitions map[string]struct{}
	statuses     map[string]struct{}
	cutoff       time.Time
}

// NewParser creates a parser using the default vocabularies plus any extra competition names
func NewParser(extraCompetitions ...string) *Parser {
	return &Parser{
		noise:        toSet(DefaultNoise),
		competitions: toSet(append(append([]string{}, DefaultCompetitions...), extraCompetitions...)),
		statuses:     toSet(DefaultStatuses),
		cutoff:       DefaultCutoff,
	}
}

// WithCutoff returns a copy of the parser with a different cutoff date, a zero time keeps the current one
func (p *Parser) WithCutoff(cutoff time.Time) *Parser {
	cp := *p
	if !cutoff.IsZero() {
		cp.cutoff = cutoff
	}
	return &cp
}

var defaultParser = NewParser()

// Parse parses raw head-to-head text with the default parser
func Parse(raw string) []MatchRecord {
	return defaultParser.Parse(raw)
}

// Parse never fails, missing or truncated data just means fewer records
func (p *Parser) Parse(raw string) []MatchRecord {
	lines := strings.Split(raw, "\n")
	matches := make([]MatchRecord, 0)
	competition := ""

	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])

		if _, ok := p.noise[line]; ok {
			i++
			continue
		}
		if _, ok := p.competitions[line]; ok {
			competition = line
			i++
			continue
		}
		if !datePattern.MatchString(line) {
			i++
			continue
		}

		date, err := ParseDate(line)
		if err != nil {
			i++
			continue
		}
		if date.Before(p.cutoff) {
			break
		}
		i++

		if i < len(lines) {
			if _, ok := p.statuses[strings.TrimSpace(lines[i])]; ok {
				i++
			}
		}

		if i+1 >= len(lines) {
			break
		}
		home := strings.TrimSpace(lines[i])
		away := strings.TrimSpace(lines[i+1])
		i += 2

		var scores []string
		for i < len(lines) && len(scores) < maxScoreLines {
			s := strings.TrimSpace(lines[i])
			if !isScoreLine(s, len(scores)) {
				break
			}
			scores = append(scores, s)
			i++
		}

		rec := MatchRecord{
			Date:        date,
			Competition: competition,
			HomeTeam:    home,
			AwayTeam:    away,
		}
		rec.HomeGoals, rec.AwayGoals = goals(scores)
		matches = append(matches, rec)
	}
	return matches
}

// isScoreLine accepts goals anywhere in the block but a rating only at 1 and 3
func isScoreLine(s string, pos int) bool {
	if goalsPattern.MatchString(s) {
		return true
	}
	return pos%2 == 1 && ratingPattern.MatchString(s)
}

// goals picks the home and away goals out of a score block.
// A full block has ratings at 1 and 3, a short one takes the first two goal lines
// so a missing rating never ends up as a score.
func goals(scores []string) (string, string) {
	if len(scores) == maxScoreLines {
		return scores[0], scores[2]
	}
	var found []string
	for _, s := range scores {
		if goalsPattern.MatchString(s) {
			found = append(found, s)
		}
	}
	if len(found) < 2 {
		return Postponed, Postponed
	}
	return found[0], found[1]
}

// ParseDate parses a dd/mm/yy date.
// Two digit years pivot at 69: 00-68 are 2000-2068 and 69-99 are 1969-1999.
// The whole string must be the date, trailing text is an error.
func ParseDate(s string) (time.Time, error) {
	if len(s) != len(DateLayout) || s[2] != '/' || s[5] != '/' {
		return time.Time{}, fmt.Errorf("date %q is not dd/mm/yy", s)
	}
	day, err1 := strconv.Atoi(s[0:2])
	month, err2 := strconv.Atoi(s[3:5])
	yy, err3 := strconv.Atoi(s[6:8])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, fmt.Errorf("date %q is not numeric", s)
	}
	year := ExpandYear(yy)
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalises 31/02 into March so check nothing moved
	if t.Day() != day || int(t.Month()) != month || t.Year() != year {
		return time.Time{}, fmt.Errorf("date %q is not a calendar date", s)
	}
	return t, nil
}

// ExpandYear maps a two digit year onto a four digit one
func ExpandYear(yy int) int {
	if yy < 69 {
		return 2000 + yy
	}
	return 1900 + yy
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
