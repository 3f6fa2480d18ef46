package caldate

// Weekday is a day of the week, Monday first.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [7]string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

var weekdayFullNames = [7]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// Number returns the ISO weekday number, Monday=1 through Sunday=7.
func (w Weekday) Number() int { return int(w) + 1 }

// IsWeekend reports whether w is Saturday or Sunday.
func (w Weekday) IsWeekend() bool { return w == Saturday || w == Sunday }

// Until returns the number of days to move forward from w to reach o,
// in 0..6 (0 when they are the same day).
func (w Weekday) Until(o Weekday) int {
	return floorMod(int(o)-int(w), 7)
}

// Name returns the short lowercase name used by the file format.
func (w Weekday) Name() string { return weekdayNames[w] }

// FullName returns the English weekday name.
func (w Weekday) FullName() string { return weekdayFullNames[w] }

func (w Weekday) String() string { return w.Name() }

// ParseWeekday resolves a short weekday name.
func ParseWeekday(s string) (Weekday, bool) {
	for i, name := range weekdayNames {
		if s == name {
			return Weekday(i), true
		}
	}
	return 0, false
}
