package game

import (
	"context"
	"time"

	"github.com/lazypower/bananimon/internal/metrics"
	"github.com/lazypower/bananimon/internal/store"
)

// Sweep schedule:
//   - decay: hourly, catches every companion up on decay, then evolution
//   - streak: daily, halves the streak of companions that missed yesterday
//
// Both run once when StartSweeps is called. Companions are visited one
// at a time, each in its own transaction; a failure on one is logged and
// the sweep moves on.

// SweepDecay applies decay catch-up to every companion. It returns the
// number of companions written.
func (e *Engine) SweepDecay(ctx context.Context) (int, error) {
	return e.sweep(ctx, "decay", func(tx *store.Tx, c *store.Companion, now time.Time) (bool, error) {
		decayed := ApplyDecay(c, now)
		evolved, stage := Evolve(c)
		if !decayed && !evolved {
			return false, nil
		}
		if evolved {
			metrics.Evolutions.WithLabelValues(stage.String()).Inc()
		}
		return true, tx.UpdateCompanion(ctx, c)
	})
}

// SweepStreaks applies the compassionate streak break. It returns the
// number of companions whose streak was halved.
func (e *Engine) SweepStreaks(ctx context.Context) (int, error) {
	return e.sweep(ctx, "streak", func(tx *store.Tx, c *store.Companion, now time.Time) (bool, error) {
		if !BreakStreak(c, now, e.Loc) {
			return false, nil
		}
		return true, tx.UpdateCompanion(ctx, c)
	})
}

func (e *Engine) sweep(ctx context.Context, name string, step func(*store.Tx, *store.Companion, time.Time) (bool, error)) (int, error) {
	ids, err := e.DB.ListCompanionIDs(ctx)
	if err != nil {
		return 0, storageErr("list companions", err)
	}

	updated := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		var changed bool
		err := e.DB.WithTx(ctx, func(tx *store.Tx) error {
			c, err := tx.GetCompanion(ctx, id)
			if err != nil || c == nil {
				return err
			}
			changed, err = step(tx, c, e.Now())
			return err
		})
		if err != nil {
			metrics.SweepErrors.WithLabelValues(name).Inc()
			e.Log.Warn("sweep step failed", "sweep", name, "companion_id", id, "error", err)
			continue
		}
		if changed {
			updated++
		}
	}

	metrics.SweepUpdates.WithLabelValues(name).Add(float64(updated))
	return updated, nil
}

// StartSweeps runs both sweeps on startup and then on their intervals.
func (e *Engine) StartSweeps() {
	e.runSweep("decay", e.SweepDecay)
	e.runSweep("streak", e.SweepStreaks)

	go func() {
		decay := time.NewTicker(e.DecayInterval)
		defer decay.Stop()
		streak := time.NewTicker(e.StreakInterval)
		defer streak.Stop()

		for {
			select {
			case <-decay.C:
				e.runSweep("decay", e.SweepDecay)
			case <-streak.C:
				e.runSweep("streak", e.SweepStreaks)
			case <-e.stopCh:
				return
			}
		}
	}()
}

// Stop shuts down the engine's background goroutines.
func (e *Engine) Stop() {
	close(e.stopCh)
}

func (e *Engine) runSweep(name string, fn func(context.Context) (int, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if updated, err := fn(ctx); err != nil {
		e.Log.Error("sweep error", "sweep", name, "error", err)
	} else if updated > 0 {
		e.Log.Info("sweep complete", "sweep", name, "updated", updated)
	}
}
