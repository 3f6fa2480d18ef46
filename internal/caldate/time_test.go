package caldate

import "testing"

func TestNewTime(t *testing.T) {
	tests := []struct {
		hour, minute int
		ok           bool
	}{
		{0, 0, true},
		{23, 59, true},
		{24, 0, true},
		{24, 1, false},
		{25, 0, false},
		{12, 60, false},
		{-1, 0, false},
	}
	for _, tt := range tests {
		if _, ok := NewTime(tt.hour, tt.minute); ok != tt.ok {
			t.Errorf("NewTime(%d, %d) ok = %v, want %v", tt.hour, tt.minute, ok, tt.ok)
		}
	}
}

func TestTimeAddMinutes(t *testing.T) {
	tests := []struct {
		name     string
		time     Time
		amount   int
		wantDays int
		want     Time
	}{
		{"zero", Time{12, 30}, 0, 0, Time{12, 30}},
		{"forward", Time{12, 30}, 45, 0, Time{13, 15}},
		{"forward into next day", Time{23, 30}, 45, 1, Time{0, 15}},
		{"forward onto midnight stays 24:00", Time{23, 0}, 60, 0, Time{24, 0}},
		{"forward two days", Time{12, 0}, 2 * 24 * 60, 2, Time{12, 0}},
		{"forward from 24:00", Time{24, 0}, 60, 1, Time{1, 0}},
		{"backward", Time{12, 30}, -45, 0, Time{11, 45}},
		{"backward across midnight", Time{0, 30}, -60, -1, Time{23, 30}},
		{"backward onto midnight is 00:00", Time{1, 0}, -60, 0, Time{0, 0}},
		{"backward from 24:00", Time{24, 0}, -60, 0, Time{23, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, got := tt.time.AddMinutes(tt.amount)
			if days != tt.wantDays || got != tt.want {
				t.Errorf("%v.AddMinutes(%d) = (%d, %v), want (%d, %v)",
					tt.time, tt.amount, days, got, tt.wantDays, tt.want)
			}
		})
	}
}

func TestTimeAddHours(t *testing.T) {
	days, got := Time{22, 15}.AddHours(3)
	if days != 1 || (got != Time{1, 15}) {
		t.Errorf("AddHours(3) = (%d, %v), want (1, 01:15)", days, got)
	}
}

func TestTimeCompare(t *testing.T) {
	if (Time{24, 0}).Compare(Time{23, 59}) != 1 {
		t.Errorf("24:00 should order after 23:59")
	}
	if (Time{9, 0}).Compare(Time{9, 0}) != 0 {
		t.Errorf("equal times should compare 0")
	}
	if !(Time{8, 30}).Before(Time{9, 0}) {
		t.Errorf("08:30 should be before 09:00")
	}
}

func TestParseWeekday(t *testing.T) {
	for i, name := range []string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"} {
		wd, ok := ParseWeekday(name)
		if !ok || wd != Weekday(i) {
			t.Errorf("ParseWeekday(%q) = (%v, %v), want (%v, true)", name, wd, ok, Weekday(i))
		}
	}
	if _, ok := ParseWeekday("monday"); ok {
		t.Errorf("ParseWeekday(\"monday\") accepted")
	}
}
