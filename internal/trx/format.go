package trx

import (
	"fmt"
	"time"
)

// TimestampLayout is ISO-8601 with milliseconds and an explicit zone
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatDuration renders elapsed milliseconds as HH:MM:SS.mmm. Hours count
// the whole elapsed time and do not wrap after a day. Hours are padded to two
// digits only, so strings sort in duration order below 100 hours.
func FormatDuration(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	hours := ms / int64(time.Hour/time.Millisecond)
	minutes := ms / int64(time.Minute/time.Millisecond) % 60
	seconds := ms / int64(time.Second/time.Millisecond) % 60
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, ms%1000)
}

// FormatTimestamp renders t in UTC, or "" when t is unset
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimestampLayout)
}
