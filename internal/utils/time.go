package utils

import (
	"time"
)

// TimeLayout is the timestamp format stored in text columns.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// Now returns the current UTC time in TimeLayout.
func Now() string {
	return FormatTime(time.Now())
}

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// Today returns the current UTC date as YYYY-MM-DD.
func Today() string {
	return time.Now().UTC().Format("2006-01-02")
}

// UnixTimeToTime converts a Unix timestamp to a time.Time object
func UnixTimeToTime(unixTime int64) time.Time {
	return time.Unix(unixTime, 0)
}
