package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	retry "github.com/sethvargo/go-retry"
	_ "modernc.org/sqlite"

	"github.com/rcliao/callguard/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	return Open(context.Background(), dbPath)
}

// Open is NewSQLiteStore with a context bounding the schema migration retries.
func Open(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)&_pragma=synchronous(full)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{db: db}

	// Another process may hold the write lock while it migrates the same file.
	b := retry.WithMaxRetries(5, retry.NewExponential(50*time.Millisecond))
	err = retry.Do(ctx, b, func(ctx context.Context) error {
		if err := s.migrate(ctx); err != nil {
			if isBusy(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func isBusy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS blocked_calls (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		phone_number TEXT NOT NULL,
		caller_name  TEXT,
		timestamp    INTEGER NOT NULL,
		reason       TEXT NOT NULL,
		keyword      TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_blocked_calls_timestamp ON blocked_calls(timestamp DESC);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *SQLiteStore) Insert(ctx context.Context, p InsertParams) (int64, error) {
	var name, keyword *string
	if p.CallerName != "" {
		name = &p.CallerName
	}
	if p.Keyword != "" {
		keyword = &p.Keyword
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO blocked_calls (phone_number, caller_name, timestamp, reason, keyword)
		 VALUES (?, ?, ?, ?, ?)`,
		p.PhoneNumber, name, p.Timestamp, p.Reason, keyword)
	if err != nil {
		return 0, fmt.Errorf("insert blocked call: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert blocked call: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id int64) (*model.BlockedCall, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, phone_number, caller_name, timestamp, reason, keyword
		 FROM blocked_calls WHERE id = ?`, id)
	c, err := scanBlockedCall(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *SQLiteStore) List(ctx context.Context, p ListParams) ([]model.BlockedCall, error) {
	query := `SELECT id, phone_number, caller_name, timestamp, reason, keyword
	          FROM blocked_calls`
	var args []interface{}
	if p.Since > 0 {
		query += ` WHERE timestamp >= ?`
		args = append(args, p.Since)
	}
	query += ` ORDER BY timestamp DESC, id DESC`
	if p.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, p.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var calls []model.BlockedCall
	for rows.Next() {
		c, err := scanBlockedCall(rows)
		if err != nil {
			return nil, err
		}
		calls = append(calls, c)
	}
	return calls, rows.Err()
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blocked_calls`).Scan(&n)
	return n, err
}

func (s *SQLiteStore) DeleteOlderThan(ctx context.Context, cutoff int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM blocked_calls WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete older than %d: %w", cutoff, err)
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) Purge(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM blocked_calls`)
	if err != nil {
		return 0, fmt.Errorf("purge: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanBlockedCall(row scanner) (model.BlockedCall, error) {
	var c model.BlockedCall
	var name, keyword sql.NullString

	err := row.Scan(&c.ID, &c.PhoneNumber, &name, &c.Timestamp, &c.Reason, &keyword)
	if err != nil {
		return c, err
	}
	if name.Valid {
		c.CallerName = name.String
	}
	if keyword.Valid {
		c.Keyword = keyword.String
	}
	c.Source = model.SourcePrimary
	return c, nil
}
