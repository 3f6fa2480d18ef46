package caldate

import "errors"

// Easter calculation bounds. The Gregorian computus is undefined before the
// calendar's adoption and the tabular method is only validated for a finite
// window.
var (
	ErrEasterTooEarly = errors.New("easter is only defined from 1583 onwards")
	ErrEasterTooLate  = errors.New("easter is only computed up to the year 4099")
)

// EasterOrdinal returns Easter Sunday of the given year as a 1-based day of
// year, using the Meeus/Jones/Butcher Gregorian computus.
func EasterOrdinal(year int) (int, error) {
	if year < 1583 {
		return 0, ErrEasterTooEarly
	}
	if year > 4099 {
		return 0, ErrEasterTooLate
	}

	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1

	return Date{Year: year, Month: month, Day: day}.Ordinal(), nil
}
