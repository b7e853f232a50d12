package analysis

import (
	"errors"
	"math"

	"github.com/richard-senior/h2h/pkg/footballdata"
)

const (
	// poissonRange is the number of goal counts considered per side, 0-8
	poissonRange = 9
	// dixonColesRho corrects the independent Poisson model for low scores
	dixonColesRho = -0.03
	// homeAdvantage scales the home side's expected goals
	homeAdvantage = 1.1
	minExpected   = 0.1
	maxExpected   = 10
)

// ErrNoHistory means a team has no finished matches to model from
var ErrNoHistory = errors.New("no match history to model")

// Forecast is a Poisson estimate for team1 at home to team2. Probabilities are percentages.
type Forecast struct {
	HomeExpectedGoals  float64 `json:"home_expected_goals"`
	AwayExpectedGoals  float64 `json:"away_expected_goals"`
	PredictedHomeGoals int     `json:"predicted_home_goals"`
	PredictedAwayGoals int     `json:"predicted_away_goals"`
	HomeWin            float64 `json:"home_win"`
	Draw               float64 `json:"draw"`
	AwayWin            float64 `json:"away_win"`
	Over1p5Goals       float64 `json:"over_1p5_goals"`
	Over2p5Goals       float64 `json:"over_2p5_goals"`
}

// strength is goals scored and conceded per game from one team's point of view
type strength struct {
	scored, conceded float64
	games            int
}

// goalsFor returns the score from the perspective of the team whose history m came from
func goalsFor(m footballdata.Match) (scored, conceded int) {
	scored, conceded = m.HomeGoals, m.AwayGoals
	if (m.Result == footballdata.Win && scored < conceded) || (m.Result == footballdata.Loss && scored > conceded) {
		scored, conceded = conceded, scored
	}
	return scored, conceded
}

func teamStrength(matches []footballdata.Match) strength {
	var s strength
	for _, m := range matches {
		if m.Result == "" {
			continue
		}
		scored, conceded := goalsFor(m)
		s.scored += float64(scored)
		s.conceded += float64(conceded)
		s.games++
	}
	if s.games > 0 {
		s.scored /= float64(s.games)
		s.conceded /= float64(s.games)
	}
	return s
}

// NewForecast models team1 at home to team2 from their recent form.
// Attack and defence are relative to the average goals per team per game across both histories.
func NewForecast(c *Comparison) (*Forecast, error) {
	home := teamStrength(c.Team1.MatchHistory)
	away := teamStrength(c.Team2.MatchHistory)
	if home.games == 0 || away.games == 0 {
		return nil, ErrNoHistory
	}

	base := (home.scored + home.conceded + away.scored + away.conceded) / 4
	if base == 0 {
		base = minExpected
	}
	homeXG := clamp(home.scored*away.conceded/base*homeAdvantage, minExpected, maxExpected)
	awayXG := clamp(away.scored*home.conceded/base, minExpected, maxExpected)

	matrix := dixonColes(outer(poissonPMF(homeXG, poissonRange), poissonPMF(awayXG, poissonRange)), homeXG, awayXG, dixonColesRho)
	homeWin, draw, awayWin := outcomes(matrix)

	return &Forecast{
		HomeExpectedGoals:  round2(homeXG),
		AwayExpectedGoals:  round2(awayXG),
		PredictedHomeGoals: mostLikely(matrix, true),
		PredictedAwayGoals: mostLikely(matrix, false),
		HomeWin:            round2(homeWin * 100),
		Draw:               round2(draw * 100),
		AwayWin:            round2(awayWin * 100),
		Over1p5Goals:       round2(overGoals(matrix, 1.5) * 100),
		Over2p5Goals:       round2(overGoals(matrix, 2.5) * 100),
	}, nil
}

// poissonPMF is P(k) for k in 0..n-1
func poissonPMF(lambda float64, n int) []float64 {
	p := make([]float64, n)
	p[0] = math.Exp(-lambda)
	for k := 1; k < n; k++ {
		p[k] = p[k-1] * lambda / float64(k)
	}
	return p
}

// outer builds the scoreline matrix, rows are home goals and columns away goals
func outer(home, away []float64) [][]float64 {
	m := make([][]float64, len(home))
	for i := range home {
		m[i] = make([]float64, len(away))
		for j := range away {
			m[i][j] = home[i] * away[j]
		}
	}
	return m
}

// dixonColes adjusts 0-0, 1-0, 0-1 and 1-1 then renormalises
func dixonColes(m [][]float64, homeXG, awayXG, rho float64) [][]float64 {
	if len(m) > 1 && len(m[0]) > 1 {
		m[0][0] *= 1 - homeXG*awayXG*rho
		m[0][1] *= 1 + homeXG*rho
		m[1][0] *= 1 + awayXG*rho
		m[1][1] *= 1 - rho
	}
	total := 0.0
	for i := range m {
		for j := range m[i] {
			total += m[i][j]
		}
	}
	if total > 0 {
		for i := range m {
			for j := range m[i] {
				m[i][j] /= total
			}
		}
	}
	return m
}

func outcomes(m [][]float64) (homeWin, draw, awayWin float64) {
	for i := range m {
		for j := range m[i] {
			switch {
			case i > j:
				homeWin += m[i][j]
			case i == j:
				draw += m[i][j]
			default:
				awayWin += m[i][j]
			}
		}
	}
	return homeWin, draw, awayWin
}

// mostLikely is the goal count with the highest marginal probability for one side
func mostLikely(m [][]float64, home bool) int {
	best, goals := -1.0, 0
	for k := 0; k < len(m); k++ {
		p := 0.0
		for other := 0; other < len(m); other++ {
			if home {
				p += m[k][other]
			} else {
				p += m[other][k]
			}
		}
		if p > best {
			best, goals = p, k
		}
	}
	return goals
}

func overGoals(m [][]float64, threshold float64) float64 {
	p := 0.0
	for i := range m {
		for j := range m[i] {
			if float64(i+j) > threshold {
				p += m[i][j]
			}
		}
	}
	return p
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
