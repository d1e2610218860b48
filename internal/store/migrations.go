package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "users: anonymous or email-linked players",
		SQL: `
CREATE TABLE users (
    id            TEXT PRIMARY KEY,
    email         TEXT UNIQUE,
    is_anonymous  INTEGER NOT NULL DEFAULT 1,
    created_at    INTEGER NOT NULL,
    last_active   INTEGER NOT NULL
);
`,
	},
	{
		Version:     2,
		Description: "companions: one bananimon per user",
		SQL: `
CREATE TABLE companions (
    id                   TEXT PRIMARY KEY,
    user_id              TEXT NOT NULL UNIQUE,
    name                 TEXT NOT NULL,
    animal_type          TEXT NOT NULL,
    temperament          TEXT NOT NULL DEFAULT 'Calm',
    evolution_stage      INTEGER NOT NULL DEFAULT 0 CHECK (evolution_stage BETWEEN 0 AND 3),

    -- Needs (0-100)
    hunger               INTEGER NOT NULL DEFAULT 85 CHECK (hunger BETWEEN 0 AND 100),
    rest                 INTEGER NOT NULL DEFAULT 85 CHECK (rest BETWEEN 0 AND 100),
    cleanliness          INTEGER NOT NULL DEFAULT 85 CHECK (cleanliness BETWEEN 0 AND 100),
    mood                 INTEGER NOT NULL DEFAULT 85 CHECK (mood BETWEEN 0 AND 100),

    -- Progression
    bond                 REAL NOT NULL DEFAULT 3 CHECK (bond BETWEEN 0 AND 100),
    focus                INTEGER NOT NULL DEFAULT 0,
    care_streak          INTEGER NOT NULL DEFAULT 0 CHECK (care_streak >= 0),
    last_care_at         INTEGER NOT NULL,

    -- Rest scheduling
    rest_window_utc      INTEGER NOT NULL DEFAULT 22 CHECK (rest_window_utc BETWEEN 0 AND 23),
    consistency_tokens   INTEGER NOT NULL DEFAULT 0,

    -- Appearance
    image_urls           TEXT NOT NULL DEFAULT '[]',
    selected_image_index INTEGER NOT NULL DEFAULT 0,

    version              INTEGER NOT NULL DEFAULT 1,
    created_at           INTEGER NOT NULL,
    updated_at           INTEGER NOT NULL,

    FOREIGN KEY (user_id) REFERENCES users(id)
);
`,
	},
	{
		Version:     3,
		Description: "care_activities: append-only care log",
		SQL: `
CREATE TABLE care_activities (
    id                INTEGER PRIMARY KEY,
    companion_id      TEXT NOT NULL,
    activity_type     TEXT NOT NULL CHECK (activity_type IN ('feed', 'groom', 'train')),
    performance_score REAL NOT NULL CHECK (performance_score BETWEEN 0 AND 1),
    bond_gained       REAL NOT NULL DEFAULT 0,
    created_at        INTEGER NOT NULL,

    FOREIGN KEY (companion_id) REFERENCES companions(id)
);

CREATE INDEX idx_care_companion ON care_activities(companion_id, created_at DESC);
`,
	},
	{
		Version:     4,
		Description: "companions: streak_broken_at for once-a-day compassionate halving",
		SQL: `
ALTER TABLE companions ADD COLUMN streak_broken_at INTEGER;
`,
	},
}

func (db *DB) migrate() error {
	// Create schema_versions table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
