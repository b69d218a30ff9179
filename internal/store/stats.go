package store

import (
	"context"
	"database/sql"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath      string         `json:"db_path"`
	DBSizeBytes int64          `json:"db_size_bytes"`
	Total       int            `json:"total_blocked_calls"`
	Oldest      int64          `json:"oldest_timestamp,omitempty"`
	Newest      int64          `json:"newest_timestamp,omitempty"`
	Keywords    []KeywordStats `json:"keywords"`
}

// KeywordStats holds per-keyword counts.
type KeywordStats struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	var oldest, newest sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), MIN(timestamp), MAX(timestamp) FROM blocked_calls`).
		Scan(&st.Total, &oldest, &newest)
	if err != nil {
		return st, err
	}
	st.Oldest = oldest.Int64
	st.Newest = newest.Int64

	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(keyword, ''), COUNT(*) AS cnt
		FROM blocked_calls
		GROUP BY keyword ORDER BY cnt DESC`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var ks KeywordStats
		if err := rows.Scan(&ks.Keyword, &ks.Count); err != nil {
			return st, err
		}
		st.Keywords = append(st.Keywords, ks)
	}

	return st, rows.Err()
}
