package store

import (
	"context"
	"strings"

	"github.com/rcliao/callguard/internal/model"
)

// SearchParams holds parameters for searching blocked calls.
type SearchParams struct {
	Query   string // substring of number or caller name
	Keyword string // exact matched phrase
	Limit   int
}

// Search finds blocked calls whose number or caller name contains the query,
// most recent first.
func (s *SQLiteStore) Search(ctx context.Context, p SearchParams) ([]model.BlockedCall, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	var where []string
	var args []interface{}
	if p.Query != "" {
		q := "%" + escapeLike(p.Query) + "%"
		where = append(where, `(phone_number LIKE ? ESCAPE '\' OR caller_name LIKE ? ESCAPE '\')`)
		args = append(args, q, q)
	}
	if p.Keyword != "" {
		where = append(where, "keyword = ?")
		args = append(args, strings.ToLower(p.Keyword))
	}

	query := `SELECT id, phone_number, caller_name, timestamp, reason, keyword FROM blocked_calls`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY timestamp DESC, id DESC LIMIT ?"
	args = append(args, limit)

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

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
