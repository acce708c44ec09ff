// Package history keeps completed session summaries in a local SQLite file.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"xsim/internal/model"

	"github.com/adrg/xdg"
)

// Store is the session history database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// DefaultDir returns $XDG_DATA_HOME/xsim.
func DefaultDir() string {
	return filepath.Join(xdg.DataHome, "xsim")
}

// Open opens or creates the history database in dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	dbPath := filepath.Join(dir, "history.db")

	db, err := sql.Open("sqlite", dbPath+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, dbPath: dbPath}
	if err := s.createTables(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.dbPath }

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		finished_at DATETIME NOT NULL,
		operator TEXT,
		area INTEGER,
		corrective INTEGER DEFAULT 0,
		score INTEGER NOT NULL,
		hits INTEGER NOT NULL,
		fars INTEGER NOT NULL,
		efficiency REAL NOT NULL,
		credit INTEGER NOT NULL,
		reason TEXT,
		summary_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_finished ON sessions(finished_at);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Entry is one stored session.
type Entry struct {
	ID      int64
	Summary model.Summary
}

// Record stores a finished session and returns its row id.
func (s *Store) Record(ctx context.Context, sum model.Summary) (int64, error) {
	data, err := json.Marshal(sum)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize summary: %w", err)
	}
	finished := sum.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}

	res, err := s.db.ExecContext(ctx, `
	INSERT INTO sessions (finished_at, operator, area, corrective, score, hits, fars, efficiency, credit, reason, summary_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		finished.UTC(), sum.Operator, sum.Area, sum.Corrective, sum.Score, sum.Hits,
		sum.FalseAlarms, sum.Efficiency, sum.Credit, sum.Reason, string(data))
	if err != nil {
		return 0, fmt.Errorf("failed to insert session: %w", err)
	}
	return res.LastInsertId()
}

// Recent returns up to limit sessions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, summary_json FROM sessions ORDER BY finished_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e   Entry
			raw string
		)
		if err := rows.Scan(&e.ID, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &e.Summary); err != nil {
			return nil, fmt.Errorf("failed to decode session %d: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Stats aggregates every stored session.
type Stats struct {
	Sessions       int
	MeanEfficiency float64
	TotalCredit    int
}

// Totals returns aggregate statistics across all sessions.
func (s *Store) Totals(ctx context.Context) (Stats, error) {
	var (
		st   Stats
		mean sql.NullFloat64
		sum  sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), AVG(efficiency), SUM(credit) FROM sessions`).Scan(&st.Sessions, &mean, &sum)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to aggregate sessions: %w", err)
	}
	st.MeanEfficiency = mean.Float64
	st.TotalCredit = int(sum.Int64)
	return st, nil
}
