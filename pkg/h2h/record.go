package h2h

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the dd/mm/yy layout used both on the page and in exported records
const DateLayout = "02/01/06"

// Postponed stands in for both scores when a fixture has no result lines
const Postponed = "Postponed"

// Columns are the export columns, in order, shared by the table and CSV writers
var Columns = []string{"date", "competition", "home_team", "away_team", "home_goals", "away_goals"}

// MatchRecord is a single fixture lifted out of a head-to-head text blob
type MatchRecord struct {
	Date        time.Time
	Competition string
	HomeTeam    string
	AwayTeam    string
	// Goals are kept as text since they may carry a penalty score, ie. "1 (4)", or be Postponed
	HomeGoals string
	AwayGoals string
}

// DateString renders the fixture date as dd/mm/yy
func (m MatchRecord) DateString() string {
	return m.Date.Format(DateLayout)
}

// IsPostponed is true when no score was found for the fixture
func (m MatchRecord) IsPostponed() bool {
	return m.HomeGoals == Postponed || m.AwayGoals == Postponed
}

// Row returns the record as strings in Columns order
func (m MatchRecord) Row() []string {
	return []string{m.DateString(), m.Competition, m.HomeTeam, m.AwayTeam, m.HomeGoals, m.AwayGoals}
}

func (m MatchRecord) String() string {
	return fmt.Sprintf("%s [%s] %s %s - %s %s", m.DateString(), m.Competition, m.HomeTeam, m.HomeGoals, m.AwayGoals, m.AwayTeam)
}

type recordJSON struct {
	Date        string `json:"date"`
	Competition string `json:"competition"`
	HomeTeam    string `json:"home_team"`
	AwayTeam    string `json:"away_team"`
	HomeGoals   string `json:"home_goals"`
	AwayGoals   string `json:"away_goals"`
}

func (m MatchRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		Date:        m.DateString(),
		Competition: m.Competition,
		HomeTeam:    m.HomeTeam,
		AwayTeam:    m.AwayTeam,
		HomeGoals:   m.HomeGoals,
		AwayGoals:   m.AwayGoals,
	})
}

func (m *MatchRecord) UnmarshalJSON(b []byte) error {
	var r recordJSON
	if err := json.Unmarshal(b, &r); err != nil {
		return err
	}
	d, err := ParseDate(r.Date)
	if err != nil {
		return err
	}
	*m = MatchRecord{
		Date:        d,
		Competition: r.Competition,
		HomeTeam:    r.HomeTeam,
		AwayTeam:    r.AwayTeam,
		HomeGoals:   r.HomeGoals,
		AwayGoals:   r.AwayGoals,
	}
	return nil
}
