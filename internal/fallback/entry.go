package fallback

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rcliao/callguard/internal/model"
)

const sep = "|"

// FormatEntry encodes a blocked call as "timestamp|number|name".
// Empty number or name is written as model.UnknownCaller.
func FormatEntry(timestamp int64, number, name string) string {
	if number == "" {
		number = model.UnknownCaller
	}
	if name == "" {
		name = model.UnknownCaller
	}
	return fmt.Sprintf("%d%s%s%s%s", timestamp, sep, number, sep, name)
}

// ParseEntry decodes an entry written by FormatEntry. ok is false when the
// entry does not have exactly three fields or the timestamp is not an integer.
func ParseEntry(entry string) (c model.BlockedCall, ok bool) {
	parts := strings.Split(entry, sep)
	if len(parts) != 3 {
		return c, false
	}
	ts, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return c, false
	}
	c = model.BlockedCall{
		PhoneNumber: parts[1],
		Timestamp:   ts,
		Source:      model.SourceFallback,
	}
	if parts[2] != model.UnknownCaller {
		c.CallerName = parts[2]
	}
	return c, true
}

// FormatEntries renders entries as "MM/dd HH:mm - name (number)" lines in loc.
// Entries that do not parse are passed through unchanged.
func FormatEntries(entries []string, loc *time.Location) []string {
	if loc == nil {
		loc = time.Local
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		parts := strings.Split(e, sep)
		if len(parts) != 3 {
			out = append(out, e)
			continue
		}
		ts, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			out = append(out, e)
			continue
		}
		when := time.UnixMilli(ts).In(loc).Format("01/02 15:04")
		out = append(out, fmt.Sprintf("%s - %s (%s)", when, parts[2], parts[1]))
	}
	return out
}
