package eval

import (
	"testing"

	"github.com/planfile/planfile/internal/planfile"
)

func TestDatesPoint(t *testing.T) {
	tests := []struct {
		name string
		d    Dates
		want bool
	}{
		{"same day", NewDates(ymd(2024, 3, 10), ymd(2024, 3, 10)), true},
		{"same moment", NewDatesWithTime(ymd(2024, 3, 10), hm(9, 0), ymd(2024, 3, 10), hm(9, 0)), true},
		{"same day different times", NewDatesWithTime(ymd(2024, 3, 10), hm(9, 0), ymd(2024, 3, 10), hm(17, 0)), false},
		{"different days", NewDates(ymd(2024, 3, 10), ymd(2024, 3, 12)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.Point(); got != tt.want {
				t.Errorf("Point() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDatesSorted(t *testing.T) {
	tests := []struct {
		name string
		d    Dates
		want Dates
	}{
		{
			"ordered stays",
			NewDates(ymd(2024, 3, 10), ymd(2024, 3, 12)),
			NewDates(ymd(2024, 3, 10), ymd(2024, 3, 12)),
		},
		{
			"reversed swaps",
			NewDates(ymd(2024, 3, 12), ymd(2024, 3, 10)),
			NewDates(ymd(2024, 3, 10), ymd(2024, 3, 12)),
		},
		{
			"times travel with their dates",
			NewDatesWithTime(ymd(2024, 3, 12), hm(9, 0), ymd(2024, 3, 10), hm(17, 0)),
			NewDatesWithTime(ymd(2024, 3, 10), hm(17, 0), ymd(2024, 3, 12), hm(9, 0)),
		},
		{
			"equal days order by time",
			NewDatesWithTime(ymd(2024, 3, 10), hm(17, 0), ymd(2024, 3, 10), hm(9, 0)),
			NewDatesWithTime(ymd(2024, 3, 10), hm(9, 0), ymd(2024, 3, 10), hm(17, 0)),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.d.Sorted()
			if got != tt.want {
				t.Errorf("Sorted() = %v, want %v", got, tt.want)
			}
			if again := got.Sorted(); again != got {
				t.Errorf("Sorted() not idempotent: %v then %v", got, again)
			}
		})
	}
}

func TestDatesStartEnd(t *testing.T) {
	d := NewDates(ymd(2024, 3, 12), ymd(2024, 3, 10))
	if got := d.Start(); got != ymd(2024, 3, 10) {
		t.Errorf("Start() = %v", got)
	}
	if got := d.End(); got != ymd(2024, 3, 12) {
		t.Errorf("End() = %v", got)
	}
	// Start and End leave the declared root untouched.
	if got := d.Root(); got != ymd(2024, 3, 12) {
		t.Errorf("Root() = %v", got)
	}
}

func TestDatesMoveBy(t *testing.T) {
	tests := []struct {
		name    string
		d       Dates
		days    int
		minutes int
		want    Dates
	}{
		{
			"days only",
			NewDates(ymd(2024, 3, 10), ymd(2024, 3, 12)),
			5, 0,
			NewDates(ymd(2024, 3, 15), ymd(2024, 3, 17)),
		},
		{
			"days backward",
			NewDates(ymd(2024, 3, 10), ymd(2024, 3, 12)),
			-10, 0,
			NewDates(ymd(2024, 2, 29), ymd(2024, 3, 2)),
		},
		{
			"days keep times",
			NewDatesWithTime(ymd(2024, 3, 10), hm(9, 0), ymd(2024, 3, 10), hm(17, 0)),
			1, 0,
			NewDatesWithTime(ymd(2024, 3, 11), hm(9, 0), ymd(2024, 3, 11), hm(17, 0)),
		},
		{
			"minutes carry per side",
			NewDatesWithTime(ymd(2024, 3, 10), hm(23, 30), ymd(2024, 3, 10), hm(10, 0)),
			0, 45,
			NewDatesWithTime(ymd(2024, 3, 11), hm(0, 15), ymd(2024, 3, 10), hm(10, 45)),
		},
		{
			"days and minutes together",
			NewDatesWithTime(ymd(2024, 3, 10), hm(9, 0), ymd(2024, 3, 12), hm(9, 0)),
			2, -60,
			NewDatesWithTime(ymd(2024, 3, 12), hm(8, 0), ymd(2024, 3, 14), hm(8, 0)),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.MoveBy(tt.days, tt.minutes); got != tt.want {
				t.Errorf("MoveBy(%d, %d) = %v, want %v", tt.days, tt.minutes, got, tt.want)
			}
		})
	}
}

func TestDatesMoveByRoundTrip(t *testing.T) {
	d := NewDatesWithTime(ymd(2024, 3, 10), hm(23, 30), ymd(2024, 3, 12), hm(1, 0))
	if got := d.MoveBy(3, 90).MoveBy(-3, -90); got != d {
		t.Errorf("round trip changed %v to %v", d, got)
	}
}

func TestDatesString(t *testing.T) {
	tests := []struct {
		name string
		d    Dates
		want string
	}{
		{"point", NewDates(ymd(2024, 3, 10), ymd(2024, 3, 10)), "2024-03-10"},
		{"timed point", NewDatesWithTime(ymd(2024, 3, 10), hm(9, 0), ymd(2024, 3, 10), hm(9, 0)), "2024-03-10 09:00"},
		{"span", NewDates(ymd(2024, 3, 10), ymd(2024, 3, 12)), "2024-03-10 -- 2024-03-12"},
		{
			"timed same day span",
			NewDatesWithTime(ymd(2024, 3, 10), hm(9, 0), ymd(2024, 3, 10), hm(17, 0)),
			"2024-03-10 09:00 -- 2024-03-10 17:00",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDatesFromDoneDate(t *testing.T) {
	root := ymd(2024, 3, 10)
	other := ymd(2024, 3, 12)
	rootTime := hm(9, 0)
	otherTime := hm(17, 0)
	tests := []struct {
		name string
		dd   *planfile.DoneDate
		want Dates
	}{
		{"root only", &planfile.DoneDate{Root: root}, NewDates(root, root)},
		{"root and other", &planfile.DoneDate{Root: root, Other: &other}, NewDates(root, other)},
		{
			"root time copies to other",
			&planfile.DoneDate{Root: root, RootTime: &rootTime},
			NewDatesWithTime(root, rootTime, root, rootTime),
		},
		{
			"full form",
			&planfile.DoneDate{Root: root, RootTime: &rootTime, Other: &other, OtherTime: &otherTime},
			NewDatesWithTime(root, rootTime, other, otherTime),
		},
		{
			"span without times",
			&planfile.DoneDate{Root: root, Other: &other},
			NewDates(root, other),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := datesFromDoneDate(tt.dd); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
