package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// User is a player. Anonymous until an email is linked.
type User struct {
	ID          string
	Email       *string
	IsAnonymous bool
	CreatedAt   time.Time
	LastActive  time.Time
}

// CreateUser inserts a new user. An empty email creates an anonymous user.
func (o rowOps) CreateUser(ctx context.Context, email string) (*User, error) {
	now := time.Now().UTC()
	u := &User{
		ID:          uuid.NewString(),
		IsAnonymous: email == "",
		CreatedAt:   now,
		LastActive:  now,
	}
	if email != "" {
		u.Email = &email
	}

	_, err := o.q.ExecContext(ctx, `
		INSERT INTO users (id, email, is_anonymous, created_at, last_active)
		VALUES (?, ?, ?, ?, ?)
	`, u.ID, u.Email, u.IsAnonymous, toMillis(now), toMillis(now))
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// GetUser returns a user by id, or nil if it does not exist.
func (o rowOps) GetUser(ctx context.Context, id string) (*User, error) {
	return o.getUser(ctx, "id", id)
}

// GetUserByEmail returns the user linked to email, or nil.
func (o rowOps) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return o.getUser(ctx, "email", email)
}

func (o rowOps) getUser(ctx context.Context, column, value string) (*User, error) {
	var (
		u                   User
		email               sql.NullString
		created, lastActive int64
	)
	err := o.q.QueryRowContext(ctx, `
		SELECT id, email, is_anonymous, created_at, last_active
		FROM users WHERE `+column+` = ?
	`, value).Scan(&u.ID, &email, &u.IsAnonymous, &created, &lastActive)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if email.Valid {
		u.Email = &email.String
	}
	u.CreatedAt = fromMillis(created)
	u.LastActive = fromMillis(lastActive)
	return &u, nil
}

// LinkEmail attaches email to an existing user and clears the anonymous
// flag. It returns sql.ErrNoRows when id is unknown.
func (o rowOps) LinkEmail(ctx context.Context, id, email string) error {
	result, err := o.q.ExecContext(ctx,
		`UPDATE users SET email = ?, is_anonymous = 0 WHERE id = ?`, email, id)
	if err != nil {
		return fmt.Errorf("link email: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("link email: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("link email %s: %w", id, sql.ErrNoRows)
	}
	return nil
}

// TouchUser refreshes last_active.
func (o rowOps) TouchUser(ctx context.Context, id string) error {
	_, err := o.q.ExecContext(ctx, `UPDATE users SET last_active = ? WHERE id = ?`, toMillis(time.Now()), id)
	if err != nil {
		return fmt.Errorf("touch user: %w", err)
	}
	return nil
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
