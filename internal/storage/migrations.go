package storage

import "fmt"

// migrations are applied in order; each name is recorded so re-opening an
// archive skips what already ran.
var migrations = []migration{
	{
		name: "001_completions",
		content: `
			CREATE TABLE completions (
			    id TEXT PRIMARY KEY,
			    file TEXT NOT NULL,
			    title TEXT NOT NULL,
			    kind TEXT NOT NULL CHECK (kind IN ('done', 'canceled')),
			    root_date TEXT,
			    done_at TEXT NOT NULL,
			    recorded_at DATETIME NOT NULL
			);
			CREATE INDEX idx_completions_done_at ON completions(done_at);
			CREATE INDEX idx_completions_title ON completions(title);
		`,
	},
}

type migration struct {
	name    string
	content string
}

// Migrate runs all pending migrations
func (db *DB) Migrate() error {
	// Create migrations table if not exists
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS _migrations (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := db.getAppliedMigrations()
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.name] {
			continue // Already applied
		}
		if err := db.applyMigration(m); err != nil {
			return fmt.Errorf("migration %s failed: %w", m.name, err)
		}
	}

	return nil
}

func (db *DB) getAppliedMigrations() (map[string]bool, error) {
	rows, err := db.conn.Query("SELECT name FROM _migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		applied[name] = true
	}

	return applied, rows.Err()
}

func (db *DB) applyMigration(m migration) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(m.content); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec("INSERT INTO _migrations (name) VALUES (?)", m.name); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
