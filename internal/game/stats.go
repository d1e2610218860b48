// Package game holds the Bananimon rules: need decay, care actions, the
// daily care streak and stage evolution, plus the Engine that runs them
// against the store.
package game

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/lazypower/bananimon/internal/store"
)

const (
	MinNeed            = 0
	MaxNeed            = 100
	DecayFloor         = 10 // decay never pushes a need below this
	MinBond            = 0.0
	MaxBond            = 100.0
	DefaultNeed        = 85
	DefaultBond        = 3.0
	DefaultRest        = 22 // rest_window_utc
	DefaultTemperament = "Calm"
	MaxImageURLs       = 4
)

// NewCompanion builds a companion with the creation defaults.
func NewCompanion(userID, name, animalType, temperament string, images []string, selected int, now time.Time) *store.Companion {
	if temperament == "" {
		temperament = DefaultTemperament
	}
	if selected < 0 || selected >= len(images) {
		selected = 0
	}
	now = now.UTC()
	return &store.Companion{
		ID:                 uuid.NewString(),
		UserID:             userID,
		Name:               name,
		AnimalType:         animalType,
		Temperament:        temperament,
		EvolutionStage:     int(Hatchling),
		Hunger:             DefaultNeed,
		Rest:               DefaultNeed,
		Cleanliness:        DefaultNeed,
		Mood:               DefaultNeed,
		Bond:               DefaultBond,
		LastCareAt:         now,
		RestWindowUTC:      DefaultRest,
		ImageURLs:          images,
		SelectedImageIndex: selected,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func clampNeed(v int) int {
	return clampInt(v, MinNeed, MaxNeed)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampBond keeps bond in range and on a 0.01 grid so repeated small
// gains compare exactly against the evolution thresholds.
func clampBond(b float64) float64 {
	b = math.Round(b*100) / 100
	return math.Max(MinBond, math.Min(MaxBond, b))
}
