package game

import (
	"math"
	"time"

	"github.com/lazypower/bananimon/internal/store"
)

// Per-hour decay rates.
const (
	HungerDecayPerHour      = 2.0
	RestDecayPerHour        = 1.0
	CleanlinessDecayPerHour = 1.5
)

// Needs is the four-need snapshot decay works on.
type Needs struct {
	Hunger      int
	Rest        int
	Cleanliness int
	Mood        int
}

// DecayNeeds returns the needs after h whole hours of decay. Each need is
// floored at DecayFloor and capped at MaxNeed; mood is recomputed as the
// rounded mean of the other three.
func DecayNeeds(n Needs, h int) Needs {
	if h < 1 {
		return n
	}
	hours := float64(h)
	out := Needs{
		Hunger:      decayed(n.Hunger, HungerDecayPerHour*hours),
		Rest:        decayed(n.Rest, RestDecayPerHour*hours),
		Cleanliness: decayed(n.Cleanliness, CleanlinessDecayPerHour*hours),
	}
	out.Mood = MoodOf(out.Hunger, out.Rest, out.Cleanliness)
	return out
}

// MoodOf is round(mean(hunger, rest, cleanliness)), floored at DecayFloor.
func MoodOf(hunger, rest, cleanliness int) int {
	mean := float64(hunger+rest+cleanliness) / 3
	return clampInt(int(math.Round(mean)), DecayFloor, MaxNeed)
}

func decayed(v int, loss float64) int {
	// Half-point losses (cleanliness on odd hours) round away from zero.
	return clampInt(int(math.Round(float64(v)-loss)), DecayFloor, MaxNeed)
}

// HoursSince returns whole hours elapsed from since to now, never negative.
func HoursSince(since, now time.Time) int {
	d := now.Sub(since)
	if d <= 0 {
		return 0
	}
	return int(d / time.Hour)
}

// ApplyDecay catches c up on decay since c.UpdatedAt. It reports whether
// anything changed; under one hour it leaves c untouched. On change
// UpdatedAt moves to now, so the same window is never applied twice once
// the caller persists c.
func ApplyDecay(c *store.Companion, now time.Time) bool {
	h := HoursSince(c.UpdatedAt, now)
	if h < 1 {
		return false
	}
	n := DecayNeeds(Needs{
		Hunger:      c.Hunger,
		Rest:        c.Rest,
		Cleanliness: c.Cleanliness,
		Mood:        c.Mood,
	}, h)
	c.Hunger = n.Hunger
	c.Rest = n.Rest
	c.Cleanliness = n.Cleanliness
	c.Mood = n.Mood
	c.UpdatedAt = now.UTC()
	return true
}
