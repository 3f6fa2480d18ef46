package storage

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/planfile/planfile/internal/caldate"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(Config{Path: filepath.Join(t.TempDir(), "archive.db")})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return db
}

func date(t *testing.T, year, month, day int) caldate.Date {
	t.Helper()
	d, ok := caldate.NewDate(year, month, day)
	if !ok {
		t.Fatalf("invalid date %d-%d-%d", year, month, day)
	}
	return d
}

func TestMigrateIdempotent(t *testing.T) {
	db := openTestDB(t)
	if err := db.Migrate(); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
}

func TestRecordAndRecent(t *testing.T) {
	db := openTestDB(t)
	store := NewArchiveStore(db)

	root := date(t, 2024, 3, 10)
	if err := store.Record(&Completion{
		File:     "main.plan",
		Title:    "water the plants",
		Kind:     "done",
		RootDate: &root,
		DoneAt:   date(t, 2024, 3, 12),
	}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := store.Record(&Completion{
		File:   "main.plan",
		Title:  "file taxes",
		Kind:   "canceled",
		DoneAt: date(t, 2024, 3, 13),
	}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	got, err := store.Recent(10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Recent() returned %d completions, want 2", len(got))
	}

	// Newest first
	if got[0].Title != "file taxes" {
		t.Errorf("first completion = %q, want %q", got[0].Title, "file taxes")
	}
	if got[0].RootDate != nil {
		t.Error("undated completion should have nil RootDate")
	}
	if got[1].RootDate == nil || *got[1].RootDate != root {
		t.Errorf("RootDate = %v, want %s", got[1].RootDate, root)
	}
	if got[1].DoneAt != date(t, 2024, 3, 12) {
		t.Errorf("DoneAt = %s, want 2024-03-12", got[1].DoneAt)
	}
}

func TestRecordRejectsUnknownKind(t *testing.T) {
	db := openTestDB(t)
	store := NewArchiveStore(db)

	err := store.Record(&Completion{File: "f", Title: "t", Kind: "maybe", DoneAt: date(t, 2024, 1, 1)})
	if err == nil {
		t.Error("Record() should reject kind outside done/canceled")
	}
}

func TestStats(t *testing.T) {
	db := openTestDB(t)
	store := NewArchiveStore(db)

	completions := []struct {
		kind string
		at   caldate.Date
	}{
		{"done", date(t, 2024, 1, 5)},
		{"done", date(t, 2024, 1, 6)},
		{"done", date(t, 2024, 1, 7)},
		{"canceled", date(t, 2024, 3, 1)},
		{"done", date(t, 2024, 3, 10)},
		{"done", date(t, 2023, 12, 31)},
	}
	for _, c := range completions {
		if err := store.Record(&Completion{File: "f", Title: "t", Kind: c.kind, DoneAt: c.at}); err != nil {
			t.Fatal(err)
		}
	}

	st, err := store.Stats(2024, date(t, 2024, 3, 10))
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}

	if st.Total != 6 {
		t.Errorf("Total = %d, want 6", st.Total)
	}
	if st.Done != 5 {
		t.Errorf("Done = %d, want 5", st.Done)
	}
	if st.Canceled != 1 {
		t.Errorf("Canceled = %d, want 1", st.Canceled)
	}
	if st.ByMonth[0] != 3 {
		t.Errorf("January count = %d, want 3", st.ByMonth[0])
	}
	if st.ByMonth[2] != 2 {
		t.Errorf("March count = %d, want 2", st.ByMonth[2])
	}
	if st.ByMonth[11] != 0 {
		t.Errorf("December 2024 count = %d, want 0 (2023 excluded)", st.ByMonth[11])
	}

	// Dec 31 + Jan 5..7 give the longest run of 3; today's single
	// completion is the current streak.
	if st.LongestStreak != 3 {
		t.Errorf("LongestStreak = %d, want 3", st.LongestStreak)
	}
	if st.CurrentStreak != 1 {
		t.Errorf("CurrentStreak = %d, want 1", st.CurrentStreak)
	}
}

func TestStreaks(t *testing.T) {
	today := caldate.Date{Year: 2024, Month: 3, Day: 10}
	tests := []struct {
		name        string
		days        []caldate.Date
		wantCurrent int
		wantLongest int
	}{
		{"empty", nil, 0, 0},
		{
			"single today",
			[]caldate.Date{today},
			1, 1,
		},
		{
			"ends yesterday",
			[]caldate.Date{{Year: 2024, Month: 3, Day: 8}, {Year: 2024, Month: 3, Day: 9}},
			2, 2,
		},
		{
			"broken before today",
			[]caldate.Date{{Year: 2024, Month: 3, Day: 1}, {Year: 2024, Month: 3, Day: 2}, {Year: 2024, Month: 3, Day: 5}},
			0, 2,
		},
		{
			"crosses month boundary",
			[]caldate.Date{{Year: 2024, Month: 2, Day: 28}, {Year: 2024, Month: 2, Day: 29}, {Year: 2024, Month: 3, Day: 1}},
			0, 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current, longest := streaks(tt.days, today)
			if current != tt.wantCurrent {
				t.Errorf("current = %d, want %d", current, tt.wantCurrent)
			}
			if longest != tt.wantLongest {
				t.Errorf("longest = %d, want %d", longest, tt.wantLongest)
			}
		})
	}
}

func TestTransactionRollback(t *testing.T) {
	db := openTestDB(t)

	boom := errors.New("boom")
	err := db.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO completions (id, file, title, kind, done_at, recorded_at)
			VALUES ('x', 'f', 't', 'done', '2024-01-01', CURRENT_TIMESTAMP)`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Transaction() error = %v, want boom", err)
	}

	var count int
	if err := db.Conn().QueryRow("SELECT COUNT(*) FROM completions").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("rolled back insert left %d rows", count)
	}
}
