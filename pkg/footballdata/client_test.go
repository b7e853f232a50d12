package footballdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/richard-senior/h2h/internal/config"
	"github.com/richard-senior/h2h/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const teamMatchesJSON = `{"matches":[
 {"id":1,"utcDate":"2024-08-01T19:00:00Z","status":"FINISHED","competition":{"name":"Premier League"},
  "homeTeam":{"id":66,"name":"Manchester United FC"},"awayTeam":{"id":63,"name":"Fulham FC"},
  "score":{"fullTime":{"home":1,"away":0}}},
 {"id":2,"utcDate":"2024-08-10T14:00:00Z","status":"FINISHED","competition":{"name":"Premier League"},
  "homeTeam":{"id":58,"name":"Aston Villa FC"},"awayTeam":{"id":66,"name":"Manchester United FC"},
  "score":{"fullTime":{"home":0,"away":0}}},
 {"id":3,"utcDate":"2024-08-17T14:00:00Z","status":"FINISHED","competition":{"name":"Premier League"},
  "homeTeam":{"id":64,"name":"Liverpool FC"},"awayTeam":{"id":66,"name":"Manchester United FC"},
  "score":{"fullTime":{"home":3,"away":0}}},
 {"id":4,"utcDate":"2024-08-24T14:00:00Z","status":"FINISHED","competition":{"name":"Premier League"},
  "homeTeam":{"id":66,"name":"Manchester United FC"},"awayTeam":{"id":57,"name":"Arsenal FC"},
  "score":{"fullTime":{"home":null,"away":null}}}
]}`

const head2headJSON = `{
 "aggregates":{"numberOfMatches":2,"totalGoals":5,
  "homeTeam":{"id":64,"wins":1,"draws":1,"losses":0},
  "awayTeam":{"id":66,"wins":0,"draws":1,"losses":1}},
 "matches":[
  {"id":3,"utcDate":"2024-08-17T14:00:00Z","venue":"Anfield","competition":{"name":"Premier League"},
   "homeTeam":{"id":64,"name":"Liverpool FC"},"awayTeam":{"id":66,"name":"Manchester United FC"},
   "score":{"fullTime":{"home":3,"away":0}}},
  {"id":9,"utcDate":"2024-03-17T14:00:00Z","venue":"Old Trafford","competition":{"name":"FA Cup"},
   "homeTeam":{"id":66,"name":"Manchester United FC"},"awayTeam":{"id":64,"name":"Liverpool FC"},
   "score":{"fullTime":{"home":1,"away":1}}}
 ]}`

type fakeAPI struct {
	t     *testing.T
	mu    sync.Mutex
	calls map[string]int
	srv   *httptest.Server
}

func newFakeAPI(t *testing.T) *fakeAPI {
	f := &fakeAPI{t: t, calls: map[string]int{}}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls[r.URL.Path]++
		f.mu.Unlock()

		if r.Header.Get(AuthHeader) != "secret" {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"message":"The resource you are looking for is restricted."}`))
			return
		}
		q := r.URL.Query()
		switch r.URL.Path {
		case "/teams/66/matches":
			w.Write([]byte(teamMatchesJSON))
		case "/teams/64/matches":
			assert.Equal(t, StatusFinished, q.Get("status"))
			assert.Equal(t, "200", q.Get("limit"))
			w.Write([]byte(teamMatchesJSON))
		case "/teams/57/matches":
			w.Write([]byte(`{"matches":[]}`))
		case "/matches/3/head2head", "/matches/1/head2head":
			assert.Equal(t, "60", q.Get("limit"))
			w.Write([]byte(head2headJSON))
		case "/teams":
			w.Write([]byte(`{"teams":[{"id":328,"name":"Burnley FC","shortName":"Burnley"},{"id":1076,"name":"Norwich City FC"}]}`))
		case "/competitions/2021/matches":
			assert.Equal(t, "2024-09-01", q.Get("dateFrom"))
			assert.Equal(t, "2025-09-01", q.Get("dateTo"))
			w.Write([]byte(`{"matches":[{"id":77,"utcDate":"2024-09-01T15:30:00Z","status":"TIMED",
				"homeTeam":{"id":66,"name":"Manchester United FC"},"awayTeam":{"id":64,"name":"Liverpool FC"},
				"score":{"fullTime":{"home":null,"away":null}}}]}`))
		case "/competitions/PL/teams":
			w.Write([]byte(`{"teams":[{"id":402,"name":"Brentford FC","shortName":"Brentford","tla":"BRE"},{"id":341,"name":"Leeds United FC","shortName":"Leeds United"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

func (f *fakeAPI) client(opts ...Option) *Client {
	cfg := config.Default().FootballData
	cfg.BaseURL = f.srv.URL + "/"
	cfg.APIKey = "secret"
	cfg.RequestsPerMinute = 6000
	c := NewClient(cfg, append([]Option{WithHTTPClient(f.srv.Client())}, opts...)...)
	c.now = func() time.Time { return time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC) }
	return c
}

func TestResolveTeamIDAliases(t *testing.T) {
	api := newFakeAPI(t)
	c := api.client()
	ctx := context.Background()

	for name, want := range map[string]int{
		"Man Utd":              66,
		"  LIVERPOOL ":         64,
		"Manchester United FC": 66,
		"Spurs":                73,
		"brighton":             397,
	} {
		id, err := c.ResolveTeamID(ctx, name)
		require.NoError(t, err, name)
		assert.Equal(t, want, id, name)
	}
	assert.Zero(t, api.count("/teams"), "aliases never hit the api")
}

func TestResolveTeamIDFallsBackToAPI(t *testing.T) {
	api := newFakeAPI(t)
	c := api.client()

	id, err := c.ResolveTeamID(context.Background(), "Burnley")
	require.NoError(t, err)
	assert.Equal(t, 328, id)

	_, err = c.ResolveTeamID(context.Background(), "Real Madrid")
	assert.ErrorIs(t, err, ErrTeamNotFound)

	_, err = c.ResolveTeamID(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestCompetitionTeamsBecomeAliases(t *testing.T) {
	api := newFakeAPI(t)
	c := api.client()

	teams, err := c.CompetitionTeams(context.Background(), "PL")
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, "BRE", teams[0].TLA)

	id, err := c.ResolveTeamID(context.Background(), "Leeds United")
	require.NoError(t, err)
	assert.Equal(t, 341, id)
	assert.Zero(t, api.count("/teams"))
}

func TestTeamMatches(t *testing.T) {
	api := newFakeAPI(t)
	matches, err := api.client().TeamMatches(context.Background(), 66, 90)
	require.NoError(t, err)

	require.Len(t, matches, 3, "unplayed match dropped, goalless draw kept")
	assert.Equal(t, Win, matches[0].Result)
	assert.Equal(t, Draw, matches[1].Result)
	assert.Equal(t, Loss, matches[2].Result)
	assert.Equal(t, "3 - 0", matches[2].Score())
	assert.Equal(t, "2024-08-17", matches[2].Day())
}

func TestHeadToHead(t *testing.T) {
	api := newFakeAPI(t)
	h, err := api.client().HeadToHead(context.Background(), 66, 64, 60)
	require.NoError(t, err)
	require.NotNil(t, h)

	assert.Equal(t, HeadToHeadStats{TotalMatches: 2, TotalGoals: 5, Team1Wins: 0, Team2Wins: 1, Draws: 1}, h.Stats)
	require.Len(t, h.Matches, 2)
	assert.Equal(t, "Anfield", h.Matches[0].Venue)
	assert.Equal(t, "1 - 1", h.Matches[1].Score())

	// the other way round
	h, err = api.client().HeadToHead(context.Background(), 64, 66, 60)
	require.NoError(t, err)
	assert.Equal(t, 1, h.Stats.Team1Wins)
	assert.Equal(t, 0, h.Stats.Team2Wins)
}

func TestHeadToHeadNeverMet(t *testing.T) {
	api := newFakeAPI(t)
	h, err := api.client().HeadToHead(context.Background(), 57, 66, 60)
	require.NoError(t, err)
	assert.Nil(t, h)
}

func TestUpcomingMatches(t *testing.T) {
	api := newFakeAPI(t)
	fixtures, err := api.client().UpcomingMatches(context.Background(), "2021")
	require.NoError(t, err)
	require.Len(t, fixtures, 1)
	assert.Equal(t, "Manchester United FC", fixtures[0].HomeTeam)
	assert.Equal(t, "TIMED", fixtures[0].Status)
}

func TestAPIErrors(t *testing.T) {
	api := newFakeAPI(t)
	c := api.client()
	c.apiKey = "wrong"

	_, err := c.TeamMatches(context.Background(), 66, 90)
	var apiErr *transport.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}

type memCache struct {
	entries map[string][]byte
	ttls    map[string]time.Duration
}

func (m *memCache) CacheGet(key string) ([]byte, bool, error) {
	b, ok := m.entries[key]
	return b, ok, nil
}

func (m *memCache) CachePut(key string, body []byte, ttl time.Duration) error {
	m.entries[key] = body
	m.ttls[key] = ttl
	return nil
}

func TestCachedResponses(t *testing.T) {
	api := newFakeAPI(t)
	cache := &memCache{entries: map[string][]byte{}, ttls: map[string]time.Duration{}}
	c := api.client(WithCache(cache))

	for i := 0; i < 3; i++ {
		_, err := c.TeamMatches(context.Background(), 66, 90)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, api.count("/teams/66/matches"))
	require.Len(t, cache.entries, 1)
	for key, ttl := range cache.ttls {
		assert.NotContains(t, key, "secret", "tokens stay out of cache keys")
		assert.Equal(t, 6*time.Hour, ttl)
	}
}

func TestRateLimiterHonoursContext(t *testing.T) {
	api := newFakeAPI(t)
	cfg := config.Default().FootballData
	cfg.BaseURL = api.srv.URL
	cfg.APIKey = "secret"
	cfg.RequestsPerMinute = 1
	c := NewClient(cfg, WithHTTPClient(api.srv.Client()))

	ctx := context.Background()
	_, err := c.CompetitionTeams(ctx, "PL")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = c.CompetitionTeams(ctx, "PL")
	assert.Error(t, err, "second request has to wait a minute")
}
