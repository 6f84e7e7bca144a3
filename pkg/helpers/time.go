package helpers

import (
	"strings"
	"time"
)

// LoadLocationOrUTC resolves an IANA timezone name, falling back to UTC for
// empty or unknown names.
func LoadLocationOrUTC(tz string) *time.Location {
	tz = strings.TrimSpace(tz)
	if tz == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}

// FormatInZone formats t for humans in the given timezone.
func FormatInZone(t time.Time, tz string) string {
	return t.In(LoadLocationOrUTC(tz)).Format("02 January 2006, 15:04 MST")
}
