package storage

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/planfile/planfile/internal/caldate"
)

// Completion is one archived DONE/CANCELED record. RootDate is nil for
// undated completions.
type Completion struct {
	ID         string
	File       string
	Title      string
	Kind       string // "done" or "canceled"
	RootDate   *caldate.Date
	DoneAt     caldate.Date
	RecordedAt time.Time
}

// ArchiveStore handles completion persistence
type ArchiveStore struct {
	db *DB
}

// NewArchiveStore creates a new archive store
func NewArchiveStore(db *DB) *ArchiveStore {
	return &ArchiveStore{db: db}
}

// Record archives one completion
func (s *ArchiveStore) Record(c *Completion) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.RecordedAt = time.Now().UTC()

	var root sql.NullString
	if c.RootDate != nil {
		root = sql.NullString{String: c.RootDate.String(), Valid: true}
	}

	_, err := s.db.conn.Exec(`
		INSERT INTO completions (id, file, title, kind, root_date, done_at, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.File, c.Title, c.Kind, root, c.DoneAt.String(), c.RecordedAt)

	return err
}

// Recent returns the latest completions, newest first
func (s *ArchiveStore) Recent(limit int) ([]*Completion, error) {
	rows, err := s.db.conn.Query(`
		SELECT id, file, title, kind, root_date, done_at, recorded_at
		FROM completions
		ORDER BY recorded_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Completion
	for rows.Next() {
		c := &Completion{}
		var root sql.NullString
		var doneAt string
		if err := rows.Scan(&c.ID, &c.File, &c.Title, &c.Kind, &root, &doneAt, &c.RecordedAt); err != nil {
			return nil, err
		}
		if root.Valid {
			if d, ok := parseDate(root.String); ok {
				c.RootDate = &d
			}
		}
		if d, ok := parseDate(doneAt); ok {
			c.DoneAt = d
		}
		out = append(out, c)
	}

	return out, rows.Err()
}

// Stats summarizes the archive for `pf stats`
type Stats struct {
	Total         int
	Done          int
	Canceled      int
	ByMonth       [12]int // Completions per month of the requested year
	CurrentStreak int     // Consecutive days with a completion, ending today
	LongestStreak int
}

// Stats computes archive statistics. ByMonth covers the given year; the
// streaks run over the whole archive with today as the anchor.
func (s *ArchiveStore) Stats(year int, today caldate.Date) (*Stats, error) {
	st := &Stats{}

	err := s.db.conn.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(kind = 'done'), 0),
		       COALESCE(SUM(kind = 'canceled'), 0)
		FROM completions
	`).Scan(&st.Total, &st.Done, &st.Canceled)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.conn.Query(`
		SELECT CAST(substr(done_at, 6, 2) AS INTEGER), COUNT(*)
		FROM completions
		WHERE substr(done_at, 1, 4) = ?
		GROUP BY 1
	`, yearKey(year))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var month, count int
		if err := rows.Scan(&month, &count); err != nil {
			return nil, err
		}
		if month >= 1 && month <= 12 {
			st.ByMonth[month-1] = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	days, err := s.completionDays()
	if err != nil {
		return nil, err
	}
	st.CurrentStreak, st.LongestStreak = streaks(days, today)

	return st, nil
}

// completionDays returns the distinct days with a completion, ascending.
func (s *ArchiveStore) completionDays() ([]caldate.Date, error) {
	rows, err := s.db.conn.Query(`
		SELECT DISTINCT done_at FROM completions ORDER BY done_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []caldate.Date
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		if d, ok := parseDate(raw); ok {
			days = append(days, d)
		}
	}
	return days, rows.Err()
}

// streaks finds the longest run of consecutive days and the run ending at
// today (or yesterday, so an unfinished day does not break the streak).
func streaks(days []caldate.Date, today caldate.Date) (current, longest int) {
	run := 0
	for i, d := range days {
		if i > 0 && days[i-1].Succ() == d {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
		if d == today || d.Succ() == today {
			current = run
		}
	}
	return current, longest
}

func parseDate(s string) (caldate.Date, bool) {
	// Dates are stored in the caldate string form yyyy-mm-dd.
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return caldate.Date{}, false
	}
	year, ok1 := atoi(s[:4])
	month, ok2 := atoi(s[5:7])
	day, ok3 := atoi(s[8:])
	if !ok1 || !ok2 || !ok3 {
		return caldate.Date{}, false
	}
	return caldate.NewDate(year, month, day)
}

func yearKey(year int) string {
	d := caldate.Date{Year: year, Month: 1, Day: 1}
	return d.String()[:4]
}

func atoi(s string) (int, bool) {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		n = n*10 + int(s[i]-'0')
	}
	return n, true
}
