package footballdata

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrTeamNotFound is returned when no alias or api team matches a name
var ErrTeamNotFound = errors.New("team not found")

// Premier League ids, with the names people actually type
var premierLeagueAliases = map[string]int{
	"arsenal": 57, "arsenal fc": 57,
	"aston villa": 58, "aston villa fc": 58,
	"chelsea": 61, "chelsea fc": 61,
	"everton": 62, "everton fc": 62,
	"fulham": 63, "fulham fc": 63,
	"liverpool": 64, "liverpool fc": 64,
	"manchester city": 65, "man city": 65, "city": 65,
	"manchester united": 66, "man united": 66, "man utd": 66,
	"newcastle": 67, "newcastle united": 67,
	"tottenham": 73, "spurs": 73, "tottenham hotspur": 73,
	"wolves": 76, "wolverhampton": 76, "wolverhampton wanderers": 76,
	"leicester": 338, "leicester city": 338,
	"southampton": 340, "saints": 340,
	"ipswich": 349, "ipswich town": 349,
	"nottingham": 351, "forest": 351, "nottingham forest": 351,
	"crystal palace": 354, "palace": 354,
	"brighton": 397, "brighton hove": 397, "brighton & hove": 397,
	"brentford": 402,
	"west ham": 563, "west ham united": 563,
	"bournemouth": 1044, "afc bournemouth": 1044,
}

func defaultAliases() map[string]int {
	m := make(map[string]int, len(premierLeagueAliases))
	for k, v := range premierLeagueAliases {
		m[k] = v
	}
	return m
}

func normaliseName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// AddTeams makes the full and short names of teams resolvable without an api call
func (c *Client) AddTeams(teams []Team) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range teams {
		if n := normaliseName(t.Name); n != "" {
			c.aliases[n] = t.ID
		}
		if n := normaliseName(t.ShortName); n != "" {
			c.aliases[n] = t.ID
		}
	}
}

// lookupAlias tries an exact alias then any alias contained in, or containing, the name.
// Longer aliases win so "manchester united fc" doesn't land on "city" style short forms.
func (c *Client) lookupAlias(name string) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if id, ok := c.aliases[name]; ok {
		return id, true
	}

	keys := make([]string, 0, len(c.aliases))
	for k := range c.aliases {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	for _, k := range keys {
		if strings.Contains(k, name) || strings.Contains(name, k) {
			return c.aliases[k], true
		}
	}
	return 0, false
}

// ResolveTeamID turns a free text team name into an api id
func (c *Client) ResolveTeamID(ctx context.Context, name string) (int, error) {
	n := normaliseName(name)
	if n == "" {
		return 0, fmt.Errorf("empty team name: %w", ErrTeamNotFound)
	}
	if id, ok := c.lookupAlias(n); ok {
		return id, nil
	}

	var resp teamsResponse
	if err := c.get(ctx, "/teams", nil, &resp); err != nil {
		return 0, fmt.Errorf("team search for %q: %w", name, err)
	}
	for _, t := range resp.Teams {
		if strings.Contains(strings.ToLower(t.Name), n) {
			return t.ID, nil
		}
	}
	return 0, fmt.Errorf("%q: %w", name, ErrTeamNotFound)
}

// CompetitionTeams lists the teams in a competition, by id ("2021") or code ("PL").
// Their names become aliases so later lookups skip the /teams search.
func (c *Client) CompetitionTeams(ctx context.Context, competition string) ([]Team, error) {
	var resp teamsResponse
	if err := c.get(ctx, "/competitions/"+competition+"/teams", nil, &resp); err != nil {
		return nil, fmt.Errorf("teams for competition %s: %w", competition, err)
	}
	c.AddTeams(resp.Teams)
	return resp.Teams, nil
}
