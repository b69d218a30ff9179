package fallback

import (
	"testing"
	"time"
)

func TestFormatEntry(t *testing.T) {
	tests := []struct {
		ts           int64
		number, name string
		want         string
	}{
		{1700000000000, "+15551234567", "Scam Likely", "1700000000000|+15551234567|Scam Likely"},
		{1, "", "", "1|Unknown|Unknown"},
	}
	for _, tt := range tests {
		if got := FormatEntry(tt.ts, tt.number, tt.name); got != tt.want {
			t.Errorf("FormatEntry(%d, %q, %q) = %q, want %q", tt.ts, tt.number, tt.name, got, tt.want)
		}
	}
}

func TestParseEntry(t *testing.T) {
	c, ok := ParseEntry("1700000000000|+15551234567|Scam Likely")
	if !ok {
		t.Fatal("expected entry to parse")
	}
	if c.Timestamp != 1700000000000 || c.PhoneNumber != "+15551234567" || c.CallerName != "Scam Likely" {
		t.Errorf("unexpected record: %+v", c)
	}
	if c.Source != "fallback" {
		t.Errorf("expected fallback source, got %q", c.Source)
	}

	c, _ = ParseEntry("5|555|Unknown")
	if c.CallerName != "" {
		t.Errorf("expected Unknown name to map to empty, got %q", c.CallerName)
	}

	for _, bad := range []string{"", "1|2", "1|2|3|4", "abc|555|name"} {
		if _, ok := ParseEntry(bad); ok {
			t.Errorf("expected %q to be rejected", bad)
		}
	}
}

func TestFormatEntriesPassesThroughMalformed(t *testing.T) {
	ts := time.Date(2026, 3, 7, 9, 5, 0, 0, time.UTC).UnixMilli()
	entries := []string{
		FormatEntry(ts, "+15551234567", "Spam Risk"),
		"legacy entry",
		"1|a|b|c",
		"notanumber|555|x",
	}

	got := FormatEntries(entries, time.UTC)
	want := []string{
		"03/07 09:05 - Spam Risk (+15551234567)",
		"legacy entry",
		"1|a|b|c",
		"notanumber|555|x",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, got[i], want[i])
		}
	}
}
