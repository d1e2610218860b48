package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenMemory()
	require.NoError(t, err, "OpenMemory")
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenMemory(t *testing.T) {
	db := testDB(t)
	assert.Equal(t, ":memory:", db.Path)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "bananimon.db")
	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	v, err := db.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, len(migrations), v)
}

func TestSchemaVersion(t *testing.T) {
	db := testDB(t)

	v, err := db.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, 4, v)
}

func TestTablesExist(t *testing.T) {
	db := testDB(t)

	tables := []string{"schema_versions", "users", "companions", "care_activities"}
	for _, table := range tables {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		assert.NoError(t, err, "table %q not found", table)
	}
}

func TestCompanionConstraints(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	u, err := db.CreateUser(ctx, "")
	require.NoError(t, err)

	_, err = db.Exec(`
		INSERT INTO companions (id, user_id, name, animal_type, last_care_at, created_at, updated_at, hunger)
		VALUES ('c1', ?, 'Nana', 'Cat', 1000, 1000, 1000, 101)
	`, u.ID)
	assert.Error(t, err, "hunger above 100 should be rejected")

	_, err = db.Exec(`
		INSERT INTO companions (id, user_id, name, animal_type, last_care_at, created_at, updated_at, evolution_stage)
		VALUES ('c2', ?, 'Nana', 'Cat', 1000, 1000, 1000, 4)
	`, u.ID)
	assert.Error(t, err, "stage 4 should be rejected")

	_, err = db.Exec(`
		INSERT INTO care_activities (companion_id, activity_type, performance_score, created_at)
		VALUES ('missing', 'feed', 0.5, 1000)
	`)
	assert.Error(t, err, "activity for unknown companion should violate the foreign key")
}

func TestMigrationsIdempotent(t *testing.T) {
	db := testDB(t)

	// Running migrate again should be a no-op
	require.NoError(t, db.migrate())

	v, err := db.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, 4, v)
}

func TestForeignKeysEnabled(t *testing.T) {
	db := testDB(t)

	var fk int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestWithTxRollsBack(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	var userID string
	err := db.WithTx(ctx, func(tx *Tx) error {
		u, err := tx.CreateUser(ctx, "")
		if err != nil {
			return err
		}
		userID = u.ID
		return boom
	})
	require.ErrorIs(t, err, boom)

	u, err := db.GetUser(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, u, "user insert should have been rolled back")
}

func TestWithTxCommits(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	var userID string
	require.NoError(t, db.WithTx(ctx, func(tx *Tx) error {
		u, err := tx.CreateUser(ctx, "a@b.c")
		if err != nil {
			return err
		}
		userID = u.ID
		return nil
	}))

	u, err := db.GetUser(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, u)
	require.NotNil(t, u.Email)
	assert.Equal(t, "a@b.c", *u.Email)
	assert.False(t, u.IsAnonymous)
}
