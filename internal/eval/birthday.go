package eval

import (
	"github.com/planfile/planfile/internal/caldate"
	"github.com/planfile/planfile/internal/planfile"
)

// evalBirthday emits one occurrence per year of the range. A February 29
// birthday in a non-leap year spans February 28 to March 1 instead of
// skipping the year.
func (s *commandState) evalBirthday(spec *planfile.BirthdaySpec) *Error {
	r, ok := s.limitFromUntil(s.rangeWithRemind())
	if !ok {
		return nil
	}

	for year := r.From().Year; year <= r.Until().Year; year++ {
		var age *int
		if spec.YearKnown {
			a := year - spec.Date.Year
			if a < 0 {
				continue
			}
			age = &a
		}

		var dates Dates
		if date, ok := caldate.NewDate(year, spec.Date.Month, spec.Date.Day); ok {
			dates = NewDates(date, date)
		} else {
			first, _ := caldate.NewDate(year, 2, 28)
			second, _ := caldate.NewDate(year, 3, 1)
			dates = NewDates(first, second)
		}

		entry, err := s.entryWithRemind(EntryBirthday, &dates)
		if err != nil {
			return err
		}
		entry.Age = age
		s.add(entry)
	}
	return nil
}
