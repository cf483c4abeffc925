package dbx

import "time"

// TimeLayout matches SQLite's CURRENT_TIMESTAMP text so values written by the
// application compare correctly with column defaults.
const TimeLayout = "2006-01-02 15:04:05"

// FormatTime renders t in UTC using TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}
