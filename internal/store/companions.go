package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrStale is returned by UpdateCompanion when the row's version moved
// since it was read.
var ErrStale = errors.New("companion version is stale")

// Companion is one Bananimon row.
type Companion struct {
	ID          string
	UserID      string
	Name        string
	AnimalType  string
	Temperament string

	EvolutionStage int

	Hunger      int
	Rest        int
	Cleanliness int
	Mood        int

	Bond       float64
	Focus      int
	CareStreak int
	LastCareAt time.Time

	RestWindowUTC     int
	ConsistencyTokens int

	ImageURLs          []string
	SelectedImageIndex int

	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
	StreakBrokenAt *time.Time
}

const companionColumns = `
	id, user_id, name, animal_type, temperament, evolution_stage,
	hunger, rest, cleanliness, mood,
	bond, focus, care_streak, last_care_at,
	rest_window_utc, consistency_tokens,
	image_urls, selected_image_index,
	version, created_at, updated_at, streak_broken_at`

// CreateCompanion inserts c as given. Callers fill in defaults.
func (o rowOps) CreateCompanion(ctx context.Context, c *Companion) error {
	images, err := json.Marshal(nonNil(c.ImageURLs))
	if err != nil {
		return fmt.Errorf("marshal image urls: %w", err)
	}
	if c.Version == 0 {
		c.Version = 1
	}

	_, err = o.q.ExecContext(ctx, `INSERT INTO companions (`+companionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Name, c.AnimalType, c.Temperament, c.EvolutionStage,
		c.Hunger, c.Rest, c.Cleanliness, c.Mood,
		c.Bond, c.Focus, c.CareStreak, toMillis(c.LastCareAt),
		c.RestWindowUTC, c.ConsistencyTokens,
		string(images), c.SelectedImageIndex,
		c.Version, toMillis(c.CreatedAt), toMillis(c.UpdatedAt), nullMillis(c.StreakBrokenAt),
	)
	if err != nil {
		return fmt.Errorf("insert companion: %w", err)
	}
	return nil
}

// GetCompanion returns a companion by id, or nil if it does not exist.
func (o rowOps) GetCompanion(ctx context.Context, id string) (*Companion, error) {
	row := o.q.QueryRowContext(ctx, `SELECT `+companionColumns+` FROM companions WHERE id = ?`, id)
	c, err := scanCompanion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get companion: %w", err)
	}
	return c, nil
}

// GetCompanionByUser returns the companion owned by userID, or nil.
func (o rowOps) GetCompanionByUser(ctx context.Context, userID string) (*Companion, error) {
	row := o.q.QueryRowContext(ctx, `SELECT `+companionColumns+` FROM companions WHERE user_id = ?`, userID)
	c, err := scanCompanion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get companion by user: %w", err)
	}
	return c, nil
}

// UpdateCompanion writes every mutable column of c, conditional on
// c.Version matching the stored row. On success c.Version is advanced.
func (o rowOps) UpdateCompanion(ctx context.Context, c *Companion) error {
	images, err := json.Marshal(nonNil(c.ImageURLs))
	if err != nil {
		return fmt.Errorf("marshal image urls: %w", err)
	}

	result, err := o.q.ExecContext(ctx, `
		UPDATE companions SET
			name = ?, temperament = ?, evolution_stage = ?,
			hunger = ?, rest = ?, cleanliness = ?, mood = ?,
			bond = ?, focus = ?, care_streak = ?, last_care_at = ?,
			rest_window_utc = ?, consistency_tokens = ?,
			image_urls = ?, selected_image_index = ?,
			updated_at = ?, streak_broken_at = ?,
			version = version + 1
		WHERE id = ? AND version = ?
	`,
		c.Name, c.Temperament, c.EvolutionStage,
		c.Hunger, c.Rest, c.Cleanliness, c.Mood,
		c.Bond, c.Focus, c.CareStreak, toMillis(c.LastCareAt),
		c.RestWindowUTC, c.ConsistencyTokens,
		string(images), c.SelectedImageIndex,
		toMillis(c.UpdatedAt), nullMillis(c.StreakBrokenAt),
		c.ID, c.Version,
	)
	if err != nil {
		return fmt.Errorf("update companion: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update companion %s: rows affected: %w", c.ID, err)
	}
	if rows == 0 {
		return fmt.Errorf("update companion %s: %w", c.ID, ErrStale)
	}
	c.Version++
	return nil
}

// ListCompanionIDs returns every companion id, oldest first.
func (o rowOps) ListCompanionIDs(ctx context.Context) ([]string, error) {
	rows, err := o.q.QueryContext(ctx, `SELECT id FROM companions ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list companions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan companion id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCompanion(row rowScanner) (*Companion, error) {
	var (
		c                          Companion
		lastCare, created, updated int64
		brokenAt                   sql.NullInt64
		images                     string
	)
	err := row.Scan(
		&c.ID, &c.UserID, &c.Name, &c.AnimalType, &c.Temperament, &c.EvolutionStage,
		&c.Hunger, &c.Rest, &c.Cleanliness, &c.Mood,
		&c.Bond, &c.Focus, &c.CareStreak, &lastCare,
		&c.RestWindowUTC, &c.ConsistencyTokens,
		&images, &c.SelectedImageIndex,
		&c.Version, &created, &updated, &brokenAt,
	)
	if err != nil {
		return nil, err
	}

	c.LastCareAt = fromMillis(lastCare)
	c.CreatedAt = fromMillis(created)
	c.UpdatedAt = fromMillis(updated)
	if brokenAt.Valid {
		t := fromMillis(brokenAt.Int64)
		c.StreakBrokenAt = &t
	}
	if err := json.Unmarshal([]byte(images), &c.ImageURLs); err != nil {
		// Older rows stored a bare URL rather than a JSON array.
		c.ImageURLs = []string{images}
	}
	return &c, nil
}

func nullMillis(t *time.Time) any {
	if t == nil {
		return nil
	}
	return toMillis(*t)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
