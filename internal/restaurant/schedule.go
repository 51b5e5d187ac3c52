package restaurant

import (
	"strconv"
	"strings"
	"time"
)

const (
	StatusOpen   = "Открыто"
	StatusClosed = "Закрыто"
)

// parseClock reads "HH:MM" (seconds ignored) as minutes after midnight.
func parseClock(value string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) < 2 {
		return 0, false
	}
	hours, errH := strconv.Atoi(strings.TrimSpace(parts[0]))
	minutes, errM := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errH != nil || errM != nil || hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, false
	}
	return hours*60 + minutes, true
}

// ScheduledOpen reports whether a restaurant working start..end is open at now.
// Equal bounds mean open all day; end before start wraps past midnight.
// ok is false when either bound is unparsable.
func ScheduledOpen(start, end string, now time.Time) (open, ok bool) {
	startMinutes, okStart := parseClock(start)
	endMinutes, okEnd := parseClock(end)
	if !okStart || !okEnd {
		return false, false
	}
	if startMinutes == endMinutes {
		return true, true
	}
	current := now.Hour()*60 + now.Minute()
	if startMinutes < endMinutes {
		return current >= startMinutes && current < endMinutes, true
	}
	return current >= startMinutes || current < endMinutes, true
}

func statusFor(open bool) string {
	if open {
		return StatusOpen
	}
	return StatusClosed
}
