package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepDecay(t *testing.T) {
	e, clk := testEngine(t)
	ctx := context.Background()
	_, a := onboard(t, e)
	_, b := onboard(t, e)

	n, err := e.SweepDecay(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "nothing to do inside the first hour")

	clk.Advance(2 * time.Hour)
	n, err = e.SweepDecay(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for _, id := range []string{a.ID, b.ID} {
		c, err := e.DB.GetCompanion(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 81, c.Hunger)
		assert.Equal(t, 83, c.Rest)
		assert.Equal(t, 82, c.Cleanliness)
	}

	n, err = e.SweepDecay(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "re-running the sweep in the same hour is a no-op")
}

func TestSweepStreaks(t *testing.T) {
	e, clk := testEngine(t)
	ctx := context.Background()
	_, lapsed := onboard(t, e)
	_, loyal := onboard(t, e)

	_, err := e.DB.Exec(`UPDATE companions SET care_streak = 5, evolution_stage = 1`)
	require.NoError(t, err)

	clk.AdvanceDays(2)
	// loyal was cared for yesterday.
	_, err = e.DB.Exec(`UPDATE companions SET last_care_at = ? WHERE id = ?`,
		clk.now.AddDate(0, 0, -1).UnixMilli(), loyal.ID)
	require.NoError(t, err)

	n, err := e.SweepStreaks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = e.SweepStreaks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "one halving per day")

	got, err := e.DB.GetCompanion(ctx, lapsed.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CareStreak)
	assert.Equal(t, 1, got.EvolutionStage)

	got, err = e.DB.GetCompanion(ctx, loyal.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.CareStreak)
}

func TestSweepHonorsCancel(t *testing.T) {
	e, _ := testEngine(t)
	onboard(t, e)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.SweepDecay(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStartStopSweeps(t *testing.T) {
	e, clk := testEngine(t)
	ctx := context.Background()
	_, c := onboard(t, e)
	clk.Advance(4 * time.Hour)

	e.DecayInterval = time.Hour
	e.StreakInterval = time.Hour
	e.StartSweeps()
	e.Stop()

	got, err := e.DB.GetCompanion(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 77, got.Hunger, "startup sweep ran synchronously")
}
