package game

import (
	"time"

	"github.com/lazypower/bananimon/internal/store"
)

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// StartOfDay returns midnight of t's day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// ReinforceStreak counts today's care toward the streak. The first care
// action of a day increments the streak and stamps LastCareAt; later ones
// the same day are no-ops.
func ReinforceStreak(c *store.Companion, now time.Time, loc *time.Location) bool {
	if SameDay(c.LastCareAt, now, loc) {
		return false
	}
	c.CareStreak++
	c.LastCareAt = now.UTC()
	return true
}

// HalveStreak is the compassionate streak break: floor(streak / 2).
// Stage is left alone.
func HalveStreak(c *store.Companion) {
	if c.CareStreak < 0 {
		c.CareStreak = 0
	}
	c.CareStreak /= 2
}

// MissedYesterday reports whether c went without care for at least the
// whole of yesterday in loc.
func MissedYesterday(c *store.Companion, now time.Time, loc *time.Location) bool {
	yesterday := StartOfDay(now, loc).AddDate(0, 0, -1)
	return c.LastCareAt.Before(yesterday)
}

// BreakStreak halves the streak of a companion that missed a day, at most
// once per calendar day in loc. It reports whether c changed.
func BreakStreak(c *store.Companion, now time.Time, loc *time.Location) bool {
	if c.CareStreak == 0 || !MissedYesterday(c, now, loc) {
		return false
	}
	if c.StreakBrokenAt != nil && SameDay(*c.StreakBrokenAt, now, loc) {
		return false
	}
	HalveStreak(c)
	t := now.UTC()
	c.StreakBrokenAt = &t
	return true
}
