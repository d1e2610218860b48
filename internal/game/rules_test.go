package game

import (
	"math"
	"testing"
	"time"

	"github.com/lazypower/bananimon/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

func fresh() *store.Companion {
	return NewCompanion("user-1", "Nana", "Fox", "", nil, 0, t0)
}

func TestNewCompanionDefaults(t *testing.T) {
	c := fresh()
	assert.Equal(t, 85, c.Hunger)
	assert.Equal(t, 85, c.Rest)
	assert.Equal(t, 85, c.Cleanliness)
	assert.Equal(t, 85, c.Mood)
	assert.Equal(t, 3.0, c.Bond)
	assert.Equal(t, 0, c.EvolutionStage)
	assert.Equal(t, 0, c.CareStreak)
	assert.Equal(t, 22, c.RestWindowUTC)
	assert.Equal(t, "Calm", c.Temperament)
	assert.True(t, c.LastCareAt.Equal(t0))
	assert.Len(t, c.ID, 36)
}

func TestDecayUnderOneHourIsNoop(t *testing.T) {
	c := fresh()
	before := *c

	changed := ApplyDecay(c, t0.Add(59*time.Minute))
	assert.False(t, changed)
	assert.Equal(t, before, *c)
}

func TestDecayThreeHours(t *testing.T) {
	c := fresh()

	require.True(t, ApplyDecay(c, t0.Add(3*time.Hour+20*time.Minute)))
	assert.Equal(t, 79, c.Hunger, "85 - 2*3")
	assert.Equal(t, 82, c.Rest, "85 - 3")
	assert.Equal(t, 81, c.Cleanliness, "85 - 4.5 rounds away from zero")
	assert.Equal(t, 81, c.Mood, "round((79+82+81)/3)")
	assert.True(t, c.UpdatedAt.Equal(t0.Add(3*time.Hour+20*time.Minute)))
}

func TestDecayIdempotentWithinWindow(t *testing.T) {
	c := fresh()
	now := t0.Add(5 * time.Hour)

	require.True(t, ApplyDecay(c, now))
	snapshot := *c
	assert.False(t, ApplyDecay(c, now.Add(30*time.Minute)), "same window must not decay twice")
	assert.Equal(t, snapshot, *c)
}

func TestDecayFloorsAtTen(t *testing.T) {
	c := fresh()
	require.True(t, ApplyDecay(c, t0.Add(500*time.Hour)))
	assert.Equal(t, 10, c.Hunger)
	assert.Equal(t, 10, c.Rest)
	assert.Equal(t, 10, c.Cleanliness)
	assert.Equal(t, 10, c.Mood)
}

func TestDecayBoundsProperty(t *testing.T) {
	for hunger := 0; hunger <= 100; hunger += 7 {
		for rest := 0; rest <= 100; rest += 11 {
			for clean := 0; clean <= 100; clean += 13 {
				for _, h := range []int{1, 2, 3, 7, 24, 100} {
					n := DecayNeeds(Needs{Hunger: hunger, Rest: rest, Cleanliness: clean, Mood: 50}, h)
					for _, v := range []int{n.Hunger, n.Rest, n.Cleanliness, n.Mood} {
						require.GreaterOrEqual(t, v, 10)
						require.LessOrEqual(t, v, 100)
					}
					mean := int(math.Round(float64(n.Hunger+n.Rest+n.Cleanliness) / 3))
					if mean < 10 {
						mean = 10
					}
					require.Equal(t, mean, n.Mood)
				}
			}
		}
	}
}

func TestHoursSince(t *testing.T) {
	assert.Equal(t, 0, HoursSince(t0, t0.Add(-time.Hour)), "clock skew never yields negative hours")
	assert.Equal(t, 0, HoursSince(t0, t0.Add(59*time.Minute)))
	assert.Equal(t, 2, HoursSince(t0, t0.Add(150*time.Minute)))
}

func TestParseAction(t *testing.T) {
	for _, k := range Actions() {
		got, err := ParseAction(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	_, err := ParseAction("rest")
	assert.ErrorIs(t, err, ErrInvalidActionKind)
	_, err = ParseAction("")
	assert.ErrorIs(t, err, ErrInvalidActionKind)
}

func TestBondGainTiers(t *testing.T) {
	cases := []struct {
		perf float64
		want float64
	}{
		{1.0, 0.3},
		{0.81, 0.3},
		{0.8, 0.1},
		{0.51, 0.1},
		{0.5, 0.05},
		{0, 0.05},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, BondGain(tc.perf), "performance %v", tc.perf)
	}
}

func TestApplyCareFeed(t *testing.T) {
	c := fresh()
	c.Hunger = 50

	out, err := ApplyCare(c, Feed, 0.9, t0.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 65, c.Hunger)
	assert.InDelta(t, 0.3, out.BondGained, 1e-9)
	assert.InDelta(t, 3.3, c.Bond, 1e-9)
	assert.Equal(t, 85, c.Cleanliness, "feed touches hunger only")
}

func TestApplyCareClamps(t *testing.T) {
	c := fresh()
	c.Hunger = 95
	c.Cleanliness = 90
	c.Mood = 99
	c.Bond = 99.9

	_, err := ApplyCare(c, Feed, 1, t0)
	require.NoError(t, err)
	_, err = ApplyCare(c, Groom, 1, t0)
	require.NoError(t, err)
	out, err := ApplyCare(c, Train, 1, t0)
	require.NoError(t, err)

	assert.Equal(t, 100, c.Hunger)
	assert.Equal(t, 100, c.Cleanliness)
	assert.Equal(t, 100, c.Mood)
	assert.Equal(t, 1, c.Focus)
	assert.Equal(t, 100.0, c.Bond)
	assert.Equal(t, 0.0, out.BondGained, "no gain left once bond is capped")
}

func TestApplyCareRejectsBadInput(t *testing.T) {
	c := fresh()
	before := *c

	_, err := ApplyCare(c, ActionKind(0), 0.5, t0)
	assert.ErrorIs(t, err, ErrInvalidActionKind)
	_, err = ApplyCare(c, ActionKind(9), 0.5, t0)
	assert.ErrorIs(t, err, ErrInvalidActionKind)

	for _, p := range []float64{-0.1, 1.01, math.NaN(), math.Inf(1)} {
		_, err = ApplyCare(c, Feed, p, t0)
		assert.ErrorIs(t, err, ErrInvalidPerformance, "performance %v", p)
	}
	assert.Equal(t, before, *c, "rejected actions leave no partial effects")
}

func TestBondDoesNotDrift(t *testing.T) {
	c := fresh()
	for i := 0; i < 90; i++ {
		_, err := ApplyCare(c, Train, 0.6, t0)
		require.NoError(t, err)
	}
	assert.Equal(t, 12.0, c.Bond, "3 + 90*0.1 lands exactly on the threshold")
}

func TestReinforceStreakOncePerDay(t *testing.T) {
	c := fresh()
	c.LastCareAt = t0.AddDate(0, 0, -1)

	assert.True(t, ReinforceStreak(c, t0, time.UTC))
	assert.False(t, ReinforceStreak(c, t0.Add(time.Hour), time.UTC))
	assert.False(t, ReinforceStreak(c, t0.Add(10*time.Hour), time.UTC))
	assert.Equal(t, 1, c.CareStreak)

	assert.True(t, ReinforceStreak(c, t0.AddDate(0, 0, 1), time.UTC))
	assert.Equal(t, 2, c.CareStreak)
}

func TestReinforceStreakSameDayAsCreation(t *testing.T) {
	c := fresh()
	assert.False(t, ReinforceStreak(c, t0.Add(2*time.Hour), time.UTC))
	assert.Equal(t, 0, c.CareStreak)
}

func TestStreakDayUsesZone(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 14:00 UTC and 16:00 UTC are the same UTC day but straddle Tokyo midnight.
	a := time.Date(2026, 5, 10, 14, 0, 0, 0, time.UTC)
	b := time.Date(2026, 5, 10, 16, 0, 0, 0, time.UTC)
	assert.True(t, SameDay(a, b, time.UTC))
	assert.False(t, SameDay(a, b, tokyo))
}

func TestHalveStreak(t *testing.T) {
	cases := map[int]int{0: 0, 1: 0, 2: 1, 7: 3, 12: 6}
	for in, want := range cases {
		c := fresh()
		c.CareStreak = in
		HalveStreak(c)
		assert.Equal(t, want, c.CareStreak, "halve(%d)", in)
	}
}

func TestBreakStreak(t *testing.T) {
	now := time.Date(2026, 5, 10, 3, 0, 0, 0, time.UTC)

	t.Run("cared yesterday", func(t *testing.T) {
		c := fresh()
		c.CareStreak = 6
		c.LastCareAt = now.AddDate(0, 0, -1).Add(20 * time.Hour) // yesterday 23:00
		assert.False(t, BreakStreak(c, now, time.UTC))
		assert.Equal(t, 6, c.CareStreak)
	})

	t.Run("missed yesterday", func(t *testing.T) {
		c := fresh()
		c.CareStreak = 6
		c.EvolutionStage = 2
		c.LastCareAt = now.AddDate(0, 0, -2)
		require.True(t, BreakStreak(c, now, time.UTC))
		assert.Equal(t, 3, c.CareStreak)
		assert.Equal(t, 2, c.EvolutionStage, "breaking a streak never reduces stage")

		assert.False(t, BreakStreak(c, now.Add(5*time.Hour), time.UTC), "at most once per day")
		assert.Equal(t, 3, c.CareStreak)

		require.True(t, BreakStreak(c, now.AddDate(0, 0, 1), time.UTC))
		assert.Equal(t, 1, c.CareStreak)
	})

	t.Run("zero streak", func(t *testing.T) {
		c := fresh()
		c.LastCareAt = now.AddDate(0, 0, -5)
		assert.False(t, BreakStreak(c, now, time.UTC))
		assert.Nil(t, c.StreakBrokenAt)
	})
}

func TestNextStage(t *testing.T) {
	cases := []struct {
		name    string
		stage   Stage
		bond    float64
		streak  int
		want    Stage
		evolved bool
	}{
		{"hatchling meets thresholds", Hatchling, 12, 3, Juvenile, true},
		{"hatchling short on streak", Hatchling, 12, 2, Hatchling, false},
		{"hatchling short on bond", Hatchling, 11.99, 30, Hatchling, false},
		{"no stage skipping", Hatchling, 70, 12, Juvenile, true},
		{"juvenile to adept", Juvenile, 35, 7, Adept, true},
		{"juvenile short", Juvenile, 34.9, 7, Juvenile, false},
		{"adept to kindred", Adept, 70, 12, Kindred, true},
		{"kindred is terminal", Kindred, 100, 100, Kindred, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := NextStage(tc.stage, tc.bond, tc.streak)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.evolved, ok)
		})
	}
}

func TestEvolveOneStageAtATime(t *testing.T) {
	c := fresh()
	c.Bond = 70
	c.CareStreak = 12

	var stagesSeen []Stage
	for {
		evolved, stage := Evolve(c)
		if !evolved {
			break
		}
		stagesSeen = append(stagesSeen, stage)
	}
	assert.Equal(t, []Stage{Juvenile, Adept, Kindred}, stagesSeen)
	assert.Equal(t, int(Kindred), c.EvolutionStage)
}

func TestStageInfo(t *testing.T) {
	info := Juvenile.Info()
	assert.Equal(t, "Juvenile", info.Name)
	assert.Equal(t, "Growing stronger through care", info.Description)
	assert.Equal(t, 35.0, info.NextBond)
	assert.Equal(t, 7, info.NextStreak)

	assert.True(t, Kindred.Info().Terminal)
	assert.Equal(t, "Hatchling", Stage(42).Info().Name)
	assert.Len(t, Stages(), 4)
}

func TestDailyQuests(t *testing.T) {
	qs := DailyQuests(map[string]int{"feed": 3, "train": 1})
	require.Len(t, qs, 3)

	assert.Equal(t, "feed", qs[0].Type)
	assert.Equal(t, 1, qs[0].Progress, "progress caps at target")
	assert.True(t, qs[0].Completed)

	assert.Equal(t, 0, qs[1].Progress)
	assert.False(t, qs[1].Completed)

	assert.Equal(t, 1, qs[2].Progress)
	assert.Equal(t, 2, qs[2].Target)
	assert.False(t, qs[2].Completed)
}
