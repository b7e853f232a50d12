package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/richard-senior/h2h/internal/logger"
	"github.com/richard-senior/h2h/pkg/h2h"
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in memory database, mostly for tests
const MemoryPath = ":memory:"

var _ Persistable = (*Fixture)(nil)
var _ Persistable = (*CacheEntry)(nil)

// Fixture is one parsed head-to-head record stored against the pair of teams it was fetched for
type Fixture struct {
	PairKey     string    `column:"pair_key" dbtype:"TEXT NOT NULL" primary:"true" index:"true"`
	Seq         int       `column:"seq" dbtype:"INTEGER NOT NULL" primary:"true"`
	Team1       string    `column:"team1" dbtype:"TEXT NOT NULL"`
	Team2       string    `column:"team2" dbtype:"TEXT NOT NULL"`
	MatchDate   time.Time `column:"match_date" dbtype:"DATETIME" index:"true"`
	Competition string    `column:"competition" dbtype:"TEXT"`
	HomeTeam    string    `column:"home_team" dbtype:"TEXT"`
	AwayTeam    string    `column:"away_team" dbtype:"TEXT"`
	HomeGoals   string    `column:"home_goals" dbtype:"TEXT"`
	AwayGoals   string    `column:"away_goals" dbtype:"TEXT"`
	SavedAt     time.Time `column:"saved_at" dbtype:"DATETIME"`
}

func (f *Fixture) GetTableName() string { return "h2h_fixture" }

func (f *Fixture) GetPrimaryKey() map[string]any {
	return map[string]any{"pair_key": f.PairKey, "seq": f.Seq}
}

func (f *Fixture) BeforeSave() error {
	if f.PairKey == "" {
		return fmt.Errorf("fixture has no pair key")
	}
	if f.SavedAt.IsZero() {
		f.SavedAt = time.Now().UTC()
	}
	return nil
}

// Record converts the stored row back into a parser record
func (f *Fixture) Record() h2h.MatchRecord {
	return h2h.MatchRecord{
		Date:        f.MatchDate.UTC(),
		Competition: f.Competition,
		HomeTeam:    f.HomeTeam,
		AwayTeam:    f.AwayTeam,
		HomeGoals:   f.HomeGoals,
		AwayGoals:   f.AwayGoals,
	}
}

// CacheEntry is a raw api response body kept until ExpiresAt
type CacheEntry struct {
	Key       string    `column:"cache_key" dbtype:"TEXT NOT NULL" primary:"true"`
	Body      []byte    `column:"body" dbtype:"BLOB"`
	FetchedAt time.Time `column:"fetched_at" dbtype:"DATETIME"`
	ExpiresAt time.Time `column:"expires_at" dbtype:"DATETIME" index:"true"`
}

func (c *CacheEntry) GetTableName() string { return "api_cache" }

func (c *CacheEntry) GetPrimaryKey() map[string]any {
	return map[string]any{"cache_key": c.Key}
}

func (c *CacheEntry) BeforeSave() error {
	if c.Key == "" {
		return fmt.Errorf("cache entry has no key")
	}
	return nil
}

// Store is the sqlite database holding parsed fixtures and cached api responses
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if necessary) the database at path and makes sure the tables exist
func Open(path string) (*Store, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite serialises writers anyway, and each connection to :memory: is a different database
	db.SetMaxOpenConns(1)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	for _, obj := range []Persistable{&Fixture{}, &CacheEntry{}} {
		if err := createTable(db, obj); err != nil {
			db.Close()
			return nil, err
		}
	}

	logger.Info("Database initialized successfully", path)
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// PairKey identifies a fixture list regardless of which team was named first
func PairKey(team1, team2 string) string {
	names := []string{normalise(team1), normalise(team2)}
	sort.Strings(names)
	return names[0] + "|" + names[1]
}

func normalise(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// SaveHeadToHead replaces the stored fixtures for the pair with records, keeping their order
func (s *Store) SaveHeadToHead(team1, team2 string, records []h2h.MatchRecord) error {
	key := PairKey(team1, team2)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM h2h_fixture WHERE pair_key = ?", key); err != nil {
		return fmt.Errorf("failed to clear fixtures for %s: %w", key, err)
	}

	now := s.now().UTC()
	for i, r := range records {
		f := &Fixture{
			PairKey:     key,
			Seq:         i,
			Team1:       team1,
			Team2:       team2,
			MatchDate:   r.Date,
			Competition: r.Competition,
			HomeTeam:    r.HomeTeam,
			AwayTeam:    r.AwayTeam,
			HomeGoals:   r.HomeGoals,
			AwayGoals:   r.AwayGoals,
			SavedAt:     now,
		}
		if err := save(tx, f); err != nil {
			return fmt.Errorf("failed to save fixture %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	logger.Info("Saved head-to-head fixtures", key, len(records))
	return nil
}

// LoadHeadToHead returns the stored fixtures for the pair in the order they were saved.
// An unknown pair gives an empty slice.
func (s *Store) LoadHeadToHead(team1, team2 string) ([]h2h.MatchRecord, error) {
	rows, err := findWhere(s.db, &Fixture{}, "pair_key = ? ORDER BY seq", PairKey(team1, team2))
	if err != nil {
		return nil, err
	}
	records := make([]h2h.MatchRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.(*Fixture).Record())
	}
	return records, nil
}

// CacheGet returns the cached body for key if it exists and hasn't expired
func (s *Store) CacheGet(key string) ([]byte, bool, error) {
	rows, err := findWhere(s.db, &CacheEntry{}, "cache_key = ?", key)
	if err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	entry := rows[0].(*CacheEntry)
	if !s.now().Before(entry.ExpiresAt) {
		logger.Debug("Cache entry expired", key)
		return nil, false, nil
	}
	return entry.Body, true, nil
}

// CachePut stores body under key for ttl
func (s *Store) CachePut(key string, body []byte, ttl time.Duration) error {
	now := s.now().UTC()
	return save(s.db, &CacheEntry{
		Key:       key,
		Body:      body,
		FetchedAt: now,
		ExpiresAt: now.Add(ttl),
	})
}
