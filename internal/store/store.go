// Package store persists generated recommendations in SQLite so the API can
// serve the latest call per stock and its history.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/seenimoa/indiquant/pkg/models"
	"github.com/seenimoa/indiquant/pkg/utils"
)

// ErrNotFound is returned when no recommendation matches.
var ErrNotFound = errors.New("store: recommendation not found")

const schema = `
CREATE TABLE IF NOT EXISTS recommendations (
	id           TEXT PRIMARY KEY,
	ticker       TEXT NOT NULL,
	signal       TEXT NOT NULL,
	composite    REAL NOT NULL,
	confidence   REAL NOT NULL,
	payload      TEXT NOT NULL,
	generated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_recommendations_ticker
	ON recommendations (ticker, generated_at DESC);
`

// Record is a stored recommendation.
type Record struct {
	ID string `json:"id"`
	*models.Recommendation
}

// Store is a SQLite-backed recommendation history.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open opens (creating if needed) the database at path and applies the
// schema. ":memory:" gives a private in-memory database.
func Open(path string, log zerolog.Logger) (*Store, error) {
	memory := path == ":memory:"
	dsn := path
	if !memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if memory {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(4)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db, log: log.With().Str("component", "store").Logger()}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores rec under a new ID and returns it.
func (s *Store) Save(ctx context.Context, rec *models.Recommendation) (string, error) {
	if rec == nil || rec.Ticker == "" {
		return "", errors.New("store: recommendation without ticker")
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode recommendation: %w", err)
	}

	id := uuid.NewString()
	generated := rec.GeneratedAt
	if generated.IsZero() {
		generated = utils.NowIST()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO recommendations (id, ticker, signal, composite, confidence, payload, generated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, rec.Ticker, string(rec.Signal), rec.CompositeScore, rec.Confidence,
		string(payload), generated.UnixNano())
	if err != nil {
		return "", fmt.Errorf("insert recommendation %s: %w", rec.Ticker, err)
	}

	s.log.Debug().Str("id", id).Str("ticker", rec.Ticker).Str("signal", string(rec.Signal)).Msg("recommendation saved")
	return id, nil
}

// Get returns the recommendation with the given ID.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, `SELECT id, payload FROM recommendations WHERE id = ?`, id)
	return scanRecord(row)
}

// Latest returns the newest recommendation for ticker.
func (s *Store) Latest(ctx context.Context, ticker string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, payload FROM recommendations
		 WHERE ticker = ? ORDER BY generated_at DESC, rowid DESC LIMIT 1`,
		utils.NormalizeTicker(ticker))
	return scanRecord(row)
}

// History returns up to limit recommendations for ticker, newest first.
func (s *Store) History(ctx context.Context, ticker string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, payload FROM recommendations
		 WHERE ticker = ? ORDER BY generated_at DESC, rowid DESC LIMIT ?`,
		utils.NormalizeTicker(ticker), limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	return scanRecords(rows)
}

// LatestAll returns the newest recommendation of every stored ticker,
// ordered by ticker.
func (s *Store) LatestAll(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.payload FROM recommendations r
		 WHERE r.rowid = (
			SELECT rowid FROM recommendations
			WHERE ticker = r.ticker ORDER BY generated_at DESC, rowid DESC LIMIT 1)
		 ORDER BY r.ticker`)
	if err != nil {
		return nil, fmt.Errorf("query latest: %w", err)
	}
	return scanRecords(rows)
}

// DeleteOlderThan removes recommendations generated before t and reports
// how many were deleted.
func (s *Store) DeleteOlderThan(ctx context.Context, t time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM recommendations WHERE generated_at < ?`, t.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("prune recommendations: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info().Int64("deleted", n).Time("before", t).Msg("old recommendations pruned")
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var (
		id      string
		payload string
	)
	if err := row.Scan(&id, &payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan recommendation: %w", err)
	}
	var rec models.Recommendation
	if err := json.NewDecoder(strings.NewReader(payload)).Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode recommendation %s: %w", id, err)
	}
	return &Record{ID: id, Recommendation: &rec}, nil
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	defer rows.Close()
	var out []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}
