package game

import (
	"fmt"

	"github.com/lazypower/bananimon/internal/store"
)

// Stage is an evolution tier. Kindred is terminal.
type Stage int

const (
	Hatchling Stage = iota
	Juvenile
	Adept
	Kindred
)

type stageDef struct {
	name        string
	description string
	// Thresholds to leave this stage for the next one.
	nextBond   float64
	nextStreak int
}

var stages = [...]stageDef{
	Hatchling: {"Hatchling", "Small and discovering the world", 12, 3},
	Juvenile:  {"Juvenile", "Growing stronger through care", 35, 7},
	Adept:     {"Adept", "Confident and capable", 70, 12},
	Kindred:   {"Kindred", "Your lifelong companion", 0, 0},
}

func (s Stage) Valid() bool {
	return s >= Hatchling && s <= Kindred
}

func (s Stage) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stages[s].name
}

// StageInfo is the display view of a stage.
type StageInfo struct {
	Stage       Stage   `json:"stage"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Terminal    bool    `json:"terminal"`
	NextBond    float64 `json:"nextBond,omitempty"`
	NextStreak  int     `json:"nextStreak,omitempty"`
}

// Info returns display data for s. Out-of-range stages report as Hatchling.
func (s Stage) Info() StageInfo {
	if !s.Valid() {
		s = Hatchling
	}
	d := stages[s]
	return StageInfo{
		Stage:       s,
		Name:        d.name,
		Description: d.description,
		Terminal:    s == Kindred,
		NextBond:    d.nextBond,
		NextStreak:  d.nextStreak,
	}
}

// Stages lists every stage in order.
func Stages() []StageInfo {
	out := make([]StageInfo, 0, len(stages))
	for s := Hatchling; s <= Kindred; s++ {
		out = append(out, s.Info())
	}
	return out
}

// NextStage checks only the immediately following stage's thresholds, so
// a single evaluation never skips a stage.
func NextStage(current Stage, bond float64, streak int) (Stage, bool) {
	if !current.Valid() || current == Kindred {
		return current, false
	}
	d := stages[current]
	if bond >= d.nextBond && streak >= d.nextStreak {
		return current + 1, true
	}
	return current, false
}

// Evolve promotes c by at most one stage. It returns whether c evolved and
// the resulting stage.
func Evolve(c *store.Companion) (bool, Stage) {
	next, ok := NextStage(Stage(c.EvolutionStage), c.Bond, c.CareStreak)
	if ok {
		c.EvolutionStage = int(next)
	}
	return ok, next
}
