package store

import (
	"context"

	"github.com/rcliao/callguard/internal/model"
)

// ExportAll returns every stored blocked call in insertion order.
func (s *SQLiteStore) ExportAll(ctx context.Context) ([]model.BlockedCall, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, phone_number, caller_name, timestamp, reason, keyword
		 FROM blocked_calls ORDER BY id`)
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

// Import re-inserts exported calls. Identifiers are reassigned by the store.
func (s *SQLiteStore) Import(ctx context.Context, calls []model.BlockedCall) (int, error) {
	imported := 0
	for _, c := range calls {
		_, err := s.Insert(ctx, InsertParams{
			PhoneNumber: c.PhoneNumber,
			CallerName:  c.CallerName,
			Timestamp:   c.Timestamp,
			Reason:      c.Reason,
			Keyword:     c.Keyword,
		})
		if err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}
