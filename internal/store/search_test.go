package store

import (
	"context"
	"testing"
)

func TestSearch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Insert(ctx, InsertParams{PhoneNumber: "+15551234567", CallerName: "Scam Likely", Timestamp: 1, Reason: "r", Keyword: "scam likely"})
	s.Insert(ctx, InsertParams{PhoneNumber: "+15559990000", CallerName: "Spam Risk", Timestamp: 2, Reason: "r", Keyword: "spam risk"})
	s.Insert(ctx, InsertParams{PhoneNumber: "+442071234567", Timestamp: 3, Reason: "r", Keyword: "spam risk"})

	tests := []struct {
		name string
		p    SearchParams
		want int
	}{
		{"by number", SearchParams{Query: "555"}, 2},
		{"by name", SearchParams{Query: "scam"}, 1},
		{"by keyword", SearchParams{Keyword: "Spam Risk"}, 2},
		{"query and keyword", SearchParams{Query: "+1555", Keyword: "spam risk"}, 1},
		{"all", SearchParams{}, 3},
		{"limit", SearchParams{Limit: 1}, 1},
		{"like wildcard is literal", SearchParams{Query: "%"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Search(ctx, tt.p)
			if err != nil {
				t.Fatalf("search: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("expected %d results, got %d", tt.want, len(got))
			}
		})
	}
}
