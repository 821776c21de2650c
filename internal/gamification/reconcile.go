package gamification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ReconcileResult reports what a reconciliation pass changed for one user.
type ReconcileResult struct {
	UserID        uint
	PreviousXP    int
	XP            int
	Level         int
	LevelAdvanced bool
	AwardedBadges []string
}

// Reconcile rebuilds the cached XP from the occurrence log, awards badges the
// log satisfies but that are missing, and moves the stored level forward when
// it trails the XP. It never lowers a level and sends no notifications.
func (e *Engine) Reconcile(ctx context.Context, userID uint) (*ReconcileResult, error) {
	before, err := e.store.Profile(ctx, userID)
	if err != nil {
		return nil, e.readError("profile", userID, err)
	}

	xp, err := e.store.RecomputeXP(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		e.metrics.PersistenceError("recompute_xp")
		return nil, fmt.Errorf("%w: recompute xp for user %d: %w", ErrPersistence, userID, err)
	}

	log := e.logger.With(slog.Uint64("user_id", uint64(userID)))
	if xp != before.XP {
		log.WarnContext(ctx, "cached xp drifted from the occurrence log",
			slog.Int("cached", before.XP), slog.Int("log", xp))
	}

	result := &ReconcileResult{
		UserID:        userID,
		PreviousXP:    before.XP,
		XP:            xp,
		Level:         before.Level,
		AwardedBadges: e.awardNewBadges(ctx, log, userID, e.now().UTC()),
	}

	level := e.catalog.CurrentLevel(xp)
	if level.Order > before.Level {
		advanced, err := e.store.AdvanceLevel(ctx, userID, level.Order)
		if err != nil {
			e.metrics.PersistenceError("advance_level")
			return nil, fmt.Errorf("%w: advance level for user %d: %w", ErrPersistence, userID, err)
		}
		result.LevelAdvanced = advanced
		result.Level = level.Order
	}

	e.metrics.UserReconciled()
	log.InfoContext(ctx, "user reconciled",
		slog.Int("xp", result.XP),
		slog.Int("level", result.Level),
		slog.Int("badges_awarded", len(result.AwardedBadges)))
	return result, nil
}

// ReconcileAll runs Reconcile for every user. A failure for one user does not
// stop the pass; all failures are joined into the returned error.
func (e *Engine) ReconcileAll(ctx context.Context) ([]*ReconcileResult, error) {
	ids, err := e.store.UserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list users: %w", ErrPersistence, err)
	}

	var (
		results []*ReconcileResult
		errs    []error
	)
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		res, err := e.Reconcile(ctx, id)
		if err != nil {
			errs = append(errs, fmt.Errorf("user %d: %w", id, err))
			continue
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}
