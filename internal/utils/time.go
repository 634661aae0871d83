package utils

import (
	"fmt"
	"strings"
	"time"
)

const (
	layoutDate     = "2006-01-02"
	layoutDateTime = "2006-01-02 15:04:05"
)

// timestamp layouts accepted from clients, most specific first. The web UI
// sends RFC 3339; the admin forms send MySQL-style datetimes.
var timestampLayouts = []string{
	time.RFC3339,
	layoutDateTime,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// ParseTimestamp parses a client-supplied timestamp. Layouts without an
// offset are interpreted in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("fecha no válida: %q", s)
}

// FormatDate formats t to YYYY-MM-DD in loc.
func FormatDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(layoutDate)
}

// FormatDateTime formats t to "YYYY-MM-DD HH:MM:SS" in loc.
func FormatDateTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(layoutDateTime)
}
