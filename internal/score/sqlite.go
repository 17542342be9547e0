package score

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `CREATE TABLE IF NOT EXISTS best_moves (
	level      INTEGER PRIMARY KEY,
	moves      INTEGER NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// SQLite is a Store backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("failed to open score database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create score schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Best(ctx context.Context, level int) (int, bool, error) {
	var moves int
	err := s.db.QueryRowContext(ctx, `SELECT moves FROM best_moves WHERE level = ?`, level).Scan(&moves)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query best moves: %w", err)
	}
	return moves, true, nil
}

func (s *SQLite) SetBest(ctx context.Context, level int, moves int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO best_moves(level, moves, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(level) DO UPDATE SET moves = excluded.moves, updated_at = excluded.updated_at`,
		level, moves)
	if err != nil {
		return fmt.Errorf("upsert best moves: %w", err)
	}
	return nil
}

// SetBestIfLower reads and writes inside one immediate transaction, so two
// writers for the same level are serialised by the database lock.
func (s *SQLite) SetBestIfLower(ctx context.Context, level int, moves int) (Result, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Result{}, fmt.Errorf("begin best moves: %w", err)
	}
	defer tx.Rollback()

	var prev int
	had := true
	err = tx.QueryRowContext(ctx, `SELECT moves FROM best_moves WHERE level = ?`, level).Scan(&prev)
	if errors.Is(err, sql.ErrNoRows) {
		had = false
	} else if err != nil {
		return Result{}, fmt.Errorf("query best moves: %w", err)
	}

	res := compare(prev, had, moves)
	if !res.NewRecord {
		return res, nil
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO best_moves(level, moves, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(level) DO UPDATE SET moves = excluded.moves, updated_at = excluded.updated_at
		WHERE excluded.moves < best_moves.moves`,
		level, moves); err != nil {
		return Result{}, fmt.Errorf("upsert best moves: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Result{}, fmt.Errorf("commit best moves: %w", err)
	}
	return res, nil
}

func (s *SQLite) All(ctx context.Context) (map[int]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT level, moves FROM best_moves ORDER BY level`)
	if err != nil {
		return nil, fmt.Errorf("query best moves: %w", err)
	}
	defer rows.Close()

	best := make(map[int]int)
	for rows.Next() {
		var level, moves int
		if err := rows.Scan(&level, &moves); err != nil {
			return nil, fmt.Errorf("scan best moves: %w", err)
		}
		best[level] = moves
	}
	return best, rows.Err()
}

func (s *SQLite) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM best_moves`); err != nil {
		return fmt.Errorf("reset best moves: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
