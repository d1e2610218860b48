package game

import (
	"fmt"
	"math"
	"time"

	"github.com/lazypower/bananimon/internal/store"
)

// ActionKind is one of the care mini-games. The set is closed: Feed,
// Groom and Train are the only valid values.
type ActionKind uint8

const (
	Feed ActionKind = iota + 1
	Groom
	Train

	lastAction = Train
)

// Effect is the fixed stat delta an action applies.
type Effect struct {
	Hunger      int
	Cleanliness int
	Mood        int
	Focus       int
}

var actions = [...]struct {
	name   string
	effect Effect
}{
	Feed:  {"feed", Effect{Hunger: 15}},
	Groom: {"groom", Effect{Cleanliness: 15}},
	Train: {"train", Effect{Mood: 3, Focus: 1}},
}

// Fails to compile when a kind is added without an entry in actions.
var _ = [1]struct{}{}[len(actions)-int(lastAction)-1]

// Actions lists every kind in declaration order.
func Actions() []ActionKind {
	return []ActionKind{Feed, Groom, Train}
}

// ParseAction maps a wire name to its kind.
func ParseAction(s string) (ActionKind, error) {
	for _, k := range Actions() {
		if actions[k].name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidActionKind, s)
}

func (k ActionKind) Valid() bool {
	return k >= Feed && k <= lastAction
}

func (k ActionKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("ActionKind(%d)", uint8(k))
	}
	return actions[k].name
}

// Effect returns the stat delta for k. Invalid kinds have none.
func (k ActionKind) Effect() Effect {
	if !k.Valid() {
		return Effect{}
	}
	return actions[k].effect
}

// BondGain tiers bond by mini-game performance.
func BondGain(performance float64) float64 {
	switch {
	case performance > 0.8:
		return 0.3
	case performance > 0.5:
		return 0.1
	default:
		return 0.05
	}
}

// ValidatePerformance rejects NaN and anything outside [0,1].
func ValidatePerformance(p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidPerformance, p)
	}
	return nil
}

// CareOutcome describes what a resolved care action did.
type CareOutcome struct {
	Kind        ActionKind
	Performance float64
	BondGained  float64
}

// ApplyCare applies kind's effect and the performance-tiered bond gain
// to c. Nothing is modified when kind or performance is invalid.
// BondGained is the clamped delta actually applied.
func ApplyCare(c *store.Companion, kind ActionKind, performance float64, now time.Time) (CareOutcome, error) {
	if !kind.Valid() {
		return CareOutcome{}, fmt.Errorf("%w: %s", ErrInvalidActionKind, kind)
	}
	if err := ValidatePerformance(performance); err != nil {
		return CareOutcome{}, err
	}

	e := kind.Effect()
	c.Hunger = clampNeed(c.Hunger + e.Hunger)
	c.Cleanliness = clampNeed(c.Cleanliness + e.Cleanliness)
	c.Mood = clampNeed(c.Mood + e.Mood)
	c.Focus += e.Focus

	before := c.Bond
	c.Bond = clampBond(c.Bond + BondGain(performance))
	c.UpdatedAt = now.UTC()

	return CareOutcome{
		Kind:        kind,
		Performance: performance,
		BondGained:  math.Round((c.Bond-before)*100) / 100,
	}, nil
}

// Activity builds the log record for an outcome.
func (o CareOutcome) Activity(companionID string, now time.Time) *store.CareActivity {
	return &store.CareActivity{
		CompanionID:      companionID,
		ActivityType:     o.Kind.String(),
		PerformanceScore: o.Performance,
		BondGained:       o.BondGained,
		CreatedAt:        now.UTC(),
	}
}
