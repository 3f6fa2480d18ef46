package caldate

import "fmt"

// Time is a clock time. Hour 24 with minute 0 is the end-of-day sentinel,
// distinct from 00:00 of the following day.
type Time struct {
	Hour   int
	Minute int
}

// NewTime validates a clock time, admitting 24:00.
func NewTime(hour, minute int) (Time, bool) {
	if (hour >= 0 && hour < 24 && minute >= 0 && minute < 60) || (hour == 24 && minute == 0) {
		return Time{Hour: hour, Minute: minute}, true
	}
	return Time{}, false
}

// Minutes returns the minute of day, 0..1440.
func (t Time) Minutes() int { return t.Hour*60 + t.Minute }

// Compare orders two times: -1, 0 or +1.
func (t Time) Compare(o Time) int { return sign(t.Minutes() - o.Minutes()) }

// Before reports t < o.
func (t Time) Before(o Time) bool { return t.Minutes() < o.Minutes() }

// After reports t > o.
func (t Time) After(o Time) bool { return t.Minutes() > o.Minutes() }

func (t Time) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// AddMinutes shifts the time by amount minutes and returns the whole days
// carried plus the new time. A positive shift landing exactly on midnight
// reads as 24:00 of the day before, so end times keep their day.
func (t Time) AddMinutes(amount int) (days int, shifted Time) {
	if amount == 0 {
		return 0, t
	}
	mins := t.Minutes() + amount
	days = floorDiv(mins, 24*60)
	mins = floorMod(mins, 24*60)
	if amount > 0 && mins == 0 {
		days--
		mins = 24 * 60
	}
	return days, Time{Hour: mins / 60, Minute: mins % 60}
}

// AddHours shifts the time by whole hours, carrying days like AddMinutes.
func (t Time) AddHours(amount int) (days int, shifted Time) {
	return t.AddMinutes(amount * 60)
}
