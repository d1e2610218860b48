package store

import (
	"context"
	"fmt"
	"time"
)

// CareActivity is one completed care mini-game. Write-once.
type CareActivity struct {
	ID               int64
	CompanionID      string
	ActivityType     string
	PerformanceScore float64
	BondGained       float64
	CreatedAt        time.Time
}

// AppendActivity stores a care activity and sets its ID.
func (o rowOps) AppendActivity(ctx context.Context, a *CareActivity) error {
	result, err := o.q.ExecContext(ctx, `
		INSERT INTO care_activities (companion_id, activity_type, performance_score, bond_gained, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, a.CompanionID, a.ActivityType, a.PerformanceScore, a.BondGained, toMillis(a.CreatedAt))
	if err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	a.ID, _ = result.LastInsertId()
	return nil
}

// ListActivities returns the most recent activities for a companion, newest first.
func (o rowOps) ListActivities(ctx context.Context, companionID string, limit int) ([]CareActivity, error) {
	rows, err := o.q.QueryContext(ctx, `
		SELECT id, companion_id, activity_type, performance_score, bond_gained, created_at
		FROM care_activities WHERE companion_id = ?
		ORDER BY created_at DESC, id DESC LIMIT ?
	`, companionID, limit)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var out []CareActivity
	for rows.Next() {
		var (
			a       CareActivity
			created int64
		)
		if err := rows.Scan(&a.ID, &a.CompanionID, &a.ActivityType, &a.PerformanceScore, &a.BondGained, &created); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		a.CreatedAt = fromMillis(created)
		out = append(out, a)
	}
	return out, rows.Err()
}

// CountActivitiesSince returns activity counts per type at or after since.
func (o rowOps) CountActivitiesSince(ctx context.Context, companionID string, since time.Time) (map[string]int, error) {
	rows, err := o.q.QueryContext(ctx, `
		SELECT activity_type, COUNT(*) FROM care_activities
		WHERE companion_id = ? AND created_at >= ?
		GROUP BY activity_type
	`, companionID, toMillis(since))
	if err != nil {
		return nil, fmt.Errorf("count activities: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			kind string
			n    int
		)
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scan activity count: %w", err)
		}
		counts[kind] = n
	}
	return counts, rows.Err()
}
