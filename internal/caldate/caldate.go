// Package caldate implements the proleptic Gregorian calendar the planner
// works in: dates with arbitrary signed years, clock times with a 24:00
// end-of-day sentinel, weekdays, ISO weeks, and Easter.
//
// The standard library's time.Time cannot carry a 24:00 time or a
// year-unknown birthday, so dates here are plain value structs with their own
// arithmetic. Day arithmetic goes through rata die numbers (day 1 is
// 0001-01-01) so date differences and weekdays are O(1).
package caldate

import "fmt"

// Date is a proleptic Gregorian calendar date. The zero value is invalid;
// construct via NewDate or FromRataDie, or with a literal when the fields are
// known to be valid.
type Date struct {
	Year  int
	Month int
	Day   int
}

// NewDate validates year/month/day and returns the date.
func NewDate(year, month, day int) (Date, bool) {
	if month < 1 || month > 12 {
		return Date{}, false
	}
	if day < 1 || day > MonthLength(year, month) {
		return Date{}, false
	}
	return Date{Year: year, Month: month, Day: day}, true
}

// IsLeapYear reports whether year is a Gregorian leap year.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// YearLength returns the number of days in year.
func YearLength(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

// MonthLength returns the number of days in the month, computed as the first
// day of the following month minus one day so December rolls the year.
func MonthLength(year, month int) int {
	ny, nm := AddMonths(year, month, 1)
	return Date{ny, nm, 1}.RataDie() - Date{year, month, 1}.RataDie()
}

// AddMonths adds delta months to a year/month pair, normalizing the month
// back into 1..12 with Euclidean division so negative deltas roll correctly.
func AddMonths(year, month, delta int) (int, int) {
	months := year*12 + (month - 1) + delta
	return floorDiv(months, 12), floorMod(months, 12) + 1
}

// RataDie returns the date's day number, with 0001-01-01 as day 1.
func (d Date) RataDie() int {
	y := d.Year
	if d.Month <= 2 {
		y--
	}
	era := floorDiv(y, 400)
	yoe := y - era*400
	doy := (153*((d.Month+9)%12)+2)/5 + d.Day - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 305
}

// FromRataDie is the inverse of RataDie.
func FromRataDie(n int) Date {
	z := n + 305
	era := floorDiv(z, 146097)
	doe := z - era*146097
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	y := yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / 153
	day := doy - (153*mp+2)/5 + 1
	month := mp + 3
	if mp >= 10 {
		month = mp - 9
	}
	if month <= 2 {
		y++
	}
	return Date{Year: y, Month: month, Day: day}
}

// AddDays returns the date n days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	return FromRataDie(d.RataDie() + n)
}

// Succ returns the following day.
func (d Date) Succ() Date { return d.AddDays(1) }

// Pred returns the preceding day.
func (d Date) Pred() Date { return d.AddDays(-1) }

// Weekday returns the day of the week; 0001-01-01 was a Monday.
func (d Date) Weekday() Weekday {
	return Weekday(floorMod(d.RataDie()-1, 7))
}

// Ordinal returns the 1-based day of the year.
func (d Date) Ordinal() int {
	return d.RataDie() - Date{d.Year, 1, 1}.RataDie() + 1
}

// Compare orders two dates: -1, 0 or +1.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return sign(d.Year - o.Year)
	case d.Month != o.Month:
		return sign(d.Month - o.Month)
	default:
		return sign(d.Day - o.Day)
	}
}

// Before reports d < o.
func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }

// After reports d > o.
func (d Date) After(o Date) bool { return d.Compare(o) > 0 }

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// ISOWeek returns the ISO 8601 week-numbering year and week of the date.
func (d Date) ISOWeek() (isoYear, week int) {
	week = (d.Ordinal() - d.Weekday().Number() + 10) / 7
	if week < 1 {
		return d.Year - 1, isoWeeksInYear(d.Year - 1)
	}
	if week > isoWeeksInYear(d.Year) {
		return d.Year + 1, 1
	}
	return d.Year, week
}

// IsISOLeapYear reports whether the ISO week-numbering year has a week 53.
func IsISOLeapYear(isoYear int) bool {
	return isoWeeksInYear(isoYear) == 53
}

// ISOYearLength returns the length of the ISO week-numbering year in days.
func ISOYearLength(isoYear int) int {
	return isoWeeksInYear(isoYear) * 7
}

// A year has 53 ISO weeks iff it starts or ends on a Thursday.
func isoWeeksInYear(year int) int {
	if jan1Anchor(year) == 4 || jan1Anchor(year-1) == 3 {
		return 53
	}
	return 52
}

func jan1Anchor(year int) int {
	return floorMod(year+floorDiv(year, 4)-floorDiv(year, 100)+floorDiv(year, 400), 7)
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
