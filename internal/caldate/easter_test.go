package caldate

import "testing"

func TestEasterOrdinal(t *testing.T) {
	tests := []struct {
		year int
		want Date
	}{
		{1583, Date{1583, 4, 10}},
		{1818, Date{1818, 3, 22}}, // earliest possible Easter
		{1943, Date{1943, 4, 25}}, // latest possible Easter
		{2000, Date{2000, 4, 23}},
		{2016, Date{2016, 3, 27}},
		{2019, Date{2019, 4, 21}},
		{2020, Date{2020, 4, 12}},
		{2021, Date{2021, 4, 4}},
		{2022, Date{2022, 4, 17}},
		{2023, Date{2023, 4, 9}},
		{2024, Date{2024, 3, 31}},
		{2025, Date{2025, 4, 20}},
		{2038, Date{2038, 4, 25}},
	}
	for _, tt := range tests {
		got, err := EasterOrdinal(tt.year)
		if err != nil {
			t.Errorf("EasterOrdinal(%d) error: %v", tt.year, err)
			continue
		}
		if want := tt.want.Ordinal(); got != want {
			t.Errorf("EasterOrdinal(%d) = %d, want %d (%v)", tt.year, got, want, tt.want)
		}
	}
}

func TestEasterOrdinalBounds(t *testing.T) {
	if _, err := EasterOrdinal(1582); err != ErrEasterTooEarly {
		t.Errorf("EasterOrdinal(1582) error = %v, want %v", err, ErrEasterTooEarly)
	}
	if _, err := EasterOrdinal(4100); err != ErrEasterTooLate {
		t.Errorf("EasterOrdinal(4100) error = %v, want %v", err, ErrEasterTooLate)
	}
	if _, err := EasterOrdinal(4099); err != nil {
		t.Errorf("EasterOrdinal(4099) error = %v, want nil", err)
	}
}
