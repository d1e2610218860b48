package game

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lazypower/bananimon/internal/logger"
	"github.com/lazypower/bananimon/internal/metrics"
	"github.com/lazypower/bananimon/internal/store"
)

// Engine runs the game rules against the store. Every read-modify-write
// of a companion happens inside one transaction and is guarded by the
// row's version.
type Engine struct {
	DB  *store.DB
	Loc *time.Location
	Log *logger.Logger
	Now func() time.Time

	DecayInterval  time.Duration
	StreakInterval time.Duration

	stopCh chan struct{}
}

// New creates an Engine that compares calendar days in loc.
func New(db *store.DB, loc *time.Location, log *logger.Logger) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{
		DB:             db,
		Loc:            loc,
		Log:            log,
		Now:            time.Now,
		DecayInterval:  time.Hour,
		StreakInterval: 24 * time.Hour,
		stopCh:         make(chan struct{}),
	}
}

// HomeView is everything the home screen needs.
type HomeView struct {
	Companion       *store.Companion
	Stage           StageInfo
	Evolved         bool
	DailyQuests     []Quest
	CareNeededToday bool
}

// CareResult is the outcome of a completed care action.
type CareResult struct {
	Companion  *store.Companion
	Evolved    bool
	NewStage   Stage
	Stage      StageInfo
	BondGained float64
	Message    string
}

// CreateParams are the onboarding choices for a new companion.
type CreateParams struct {
	Name               string
	AnimalType         string
	Temperament        string
	ImageURLs          []string
	SelectedImageIndex int
}

// CreateUser registers a player; an empty email makes it anonymous. An
// email can belong to one player only.
func (e *Engine) CreateUser(ctx context.Context, email string) (*store.User, error) {
	email = strings.TrimSpace(email)
	var u *store.User
	err := e.DB.WithTx(ctx, func(tx *store.Tx) error {
		if email != "" {
			existing, err := tx.GetUserByEmail(ctx, email)
			if err != nil {
				return err
			}
			if existing != nil {
				return fmt.Errorf("%w: email is taken", ErrAlreadyExists)
			}
		}
		var err error
		u, err = tx.CreateUser(ctx, email)
		return err
	})
	if err != nil {
		return nil, storageErr("create user", err)
	}
	e.Log.Info("user created", "user_id", u.ID, "anonymous", u.IsAnonymous)
	return u, nil
}

// LinkEmail upgrades an anonymous player to an email account. Relinking
// the email a player already holds is a no-op.
func (e *Engine) LinkEmail(ctx context.Context, userID, email string) (*store.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	var u *store.User
	err := e.DB.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		u, err = tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		if u == nil {
			return ErrNotFound
		}
		existing, err := tx.GetUserByEmail(ctx, email)
		if err != nil {
			return err
		}
		if existing != nil && existing.ID != userID {
			return fmt.Errorf("%w: email is taken", ErrAlreadyExists)
		}
		if err := tx.LinkEmail(ctx, userID, email); err != nil {
			return err
		}
		u.Email = &email
		u.IsAnonymous = false
		return nil
	})
	if err != nil {
		return nil, storageErr("link email", err)
	}
	e.Log.Info("email linked", "user_id", userID)
	return u, nil
}

// CreateCompanion gives userID their one companion.
func (e *Engine) CreateCompanion(ctx context.Context, userID string, p CreateParams) (*store.Companion, error) {
	var c *store.Companion
	err := e.DB.WithTx(ctx, func(tx *store.Tx) error {
		u, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		if u == nil {
			return ErrNotFound
		}
		existing, err := tx.GetCompanionByUser(ctx, userID)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: user already has a companion", ErrAlreadyExists)
		}
		c = NewCompanion(userID, p.Name, p.AnimalType, p.Temperament, p.ImageURLs, p.SelectedImageIndex, e.Now())
		return tx.CreateCompanion(ctx, c)
	})
	if err != nil {
		return nil, storageErr("create companion", err)
	}
	e.Log.Info("companion created", "companion_id", c.ID, "user_id", userID, "animal", c.AnimalType)
	return c, nil
}

// Home loads userID's companion, catches it up on decay and evolution,
// and returns the home-screen view.
func (e *Engine) Home(ctx context.Context, userID string) (*HomeView, error) {
	now := e.Now()
	var view HomeView
	err := e.DB.WithTx(ctx, func(tx *store.Tx) error {
		c, err := tx.GetCompanionByUser(ctx, userID)
		if err != nil {
			return err
		}
		if c == nil {
			return ErrNotFound
		}

		evolved, err := e.catchUp(ctx, tx, c, now)
		if err != nil {
			return err
		}

		counts, err := tx.CountActivitiesSince(ctx, c.ID, StartOfDay(now, e.Loc))
		if err != nil {
			return err
		}

		view = HomeView{
			Companion:       c,
			Stage:           Stage(c.EvolutionStage).Info(),
			Evolved:         evolved,
			DailyQuests:     DailyQuests(counts),
			CareNeededToday: !SameDay(c.LastCareAt, now, e.Loc),
		}
		return nil
	})
	if err != nil {
		return nil, e.fail("home", err)
	}
	if err := e.DB.TouchUser(ctx, userID); err != nil {
		e.Log.Warn("touch user failed", "user_id", userID, "error", err)
	}
	return &view, nil
}

// Care resolves a finished mini-game: decay catch-up, the action's effect,
// streak reinforcement and evolution, then one activity record. Either all
// of it commits or none of it does.
func (e *Engine) Care(ctx context.Context, userID, companionID string, kind ActionKind, performance float64) (*CareResult, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidActionKind, kind)
	}
	if err := ValidatePerformance(performance); err != nil {
		return nil, err
	}

	now := e.Now()
	var res CareResult
	err := e.DB.WithTx(ctx, func(tx *store.Tx) error {
		c, err := owned(ctx, tx, userID, companionID)
		if err != nil {
			return err
		}

		ApplyDecay(c, now)
		outcome, err := ApplyCare(c, kind, performance, now)
		if err != nil {
			return err
		}
		ReinforceStreak(c, now, e.Loc)
		evolved, stage := Evolve(c)

		if err := tx.UpdateCompanion(ctx, c); err != nil {
			return err
		}
		if err := tx.AppendActivity(ctx, outcome.Activity(c.ID, now)); err != nil {
			return err
		}

		res = CareResult{
			Companion:  c,
			Evolved:    evolved,
			NewStage:   stage,
			Stage:      stage.Info(),
			BondGained: outcome.BondGained,
			Message:    careMessage(c.Name, kind, evolved, stage),
		}
		return nil
	})
	if err != nil {
		return nil, e.fail("care", err)
	}

	metrics.CareActions.WithLabelValues(kind.String()).Inc()
	if res.Evolved {
		metrics.Evolutions.WithLabelValues(res.NewStage.String()).Inc()
		e.Log.Info("companion evolved", "companion_id", companionID, "stage", res.NewStage.String())
	}
	return &res, nil
}

// SetRestWindow changes the companion's preferred rest hour.
func (e *Engine) SetRestWindow(ctx context.Context, userID, companionID string, hour int) (*store.Companion, error) {
	if hour < 0 || hour > 23 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidRestHour, hour)
	}
	var c *store.Companion
	err := e.DB.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		c, err = owned(ctx, tx, userID, companionID)
		if err != nil {
			return err
		}
		c.RestWindowUTC = hour
		return tx.UpdateCompanion(ctx, c)
	})
	if err != nil {
		return nil, e.fail("set rest window", err)
	}
	return c, nil
}

// Activities returns recent care history for an owned companion.
func (e *Engine) Activities(ctx context.Context, userID, companionID string, limit int) ([]store.CareActivity, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var out []store.CareActivity
	err := e.DB.WithTx(ctx, func(tx *store.Tx) error {
		if _, err := owned(ctx, tx, userID, companionID); err != nil {
			return err
		}
		var err error
		out, err = tx.ListActivities(ctx, companionID, limit)
		return err
	})
	if err != nil {
		return nil, e.fail("activities", err)
	}
	return out, nil
}

// Companion loads a companion by id without ownership checks. CLI only.
func (e *Engine) Companion(ctx context.Context, id string) (*store.Companion, error) {
	c, err := e.DB.GetCompanion(ctx, id)
	if err != nil {
		return nil, storageErr("get companion", err)
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return c, nil
}

// catchUp applies decay then evolution and persists c when either changed.
func (e *Engine) catchUp(ctx context.Context, tx *store.Tx, c *store.Companion, now time.Time) (bool, error) {
	decayed := ApplyDecay(c, now)
	evolved, stage := Evolve(c)
	if !decayed && !evolved {
		return false, nil
	}
	if err := tx.UpdateCompanion(ctx, c); err != nil {
		return false, err
	}
	if evolved {
		metrics.Evolutions.WithLabelValues(stage.String()).Inc()
	}
	return evolved, nil
}

// owned loads companionID, hiding companions that belong to someone else.
func owned(ctx context.Context, tx *store.Tx, userID, companionID string) (*store.Companion, error) {
	c, err := tx.GetCompanion(ctx, companionID)
	if err != nil {
		return nil, err
	}
	if c == nil || c.UserID != userID {
		return nil, ErrNotFound
	}
	return c, nil
}

func (e *Engine) fail(op string, err error) error {
	err = storageErr(op, err)
	if errors.Is(err, ErrConflict) {
		metrics.Conflicts.Inc()
	}
	var se *StorageError
	if errors.As(err, &se) {
		e.Log.Error("storage failure", "op", op, "error", se.Err)
	}
	return err
}

func careMessage(name string, kind ActionKind, evolved bool, stage Stage) string {
	if evolved {
		return fmt.Sprintf("%s evolved into a %s!", name, stage)
	}
	switch kind {
	case Feed:
		return fmt.Sprintf("%s enjoyed the meal.", name)
	case Groom:
		return fmt.Sprintf("%s is clean and happy.", name)
	case Train:
		return fmt.Sprintf("%s feels a little sharper.", name)
	}
	return ""
}
