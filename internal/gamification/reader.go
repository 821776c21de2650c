package gamification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gdg-garage/jobquest-api/internal/catalog"
	"github.com/gdg-garage/jobquest-api/internal/progress"
)

// Snapshot is the computed progress view of one user. It is rebuilt on every
// read and never stored.
type Snapshot struct {
	XP               int
	Level            catalog.Level
	NextLevel        *catalog.Level
	Progress         float64
	EarnedBadges     []string
	EarnedBadgesData map[string]time.Time
	BadgeProgress    map[string]float64
	EventCounts      map[string]int
}

// GetUserProgress composes the stored XP, the occurrence histogram and the
// earned badges into a Snapshot. It performs no writes.
func (e *Engine) GetUserProgress(ctx context.Context, userID uint) (*Snapshot, error) {
	profile, err := e.store.Profile(ctx, userID)
	if err != nil {
		return nil, e.readError("profile", userID, err)
	}
	counts, err := e.store.EventCounts(ctx, userID)
	if err != nil {
		return nil, e.readError("event_counts", userID, err)
	}
	earned, err := e.store.EarnedBadges(ctx, userID)
	if err != nil {
		return nil, e.readError("earned_badges", userID, err)
	}

	level := progress.CalculateUserLevel(e.catalog, profile.XP)
	badges := progress.CheckUserBadges(e.catalog, toCounts(counts))

	snap := &Snapshot{
		XP:               profile.XP,
		Level:            level.CurrentLevel,
		NextLevel:        level.NextLevel,
		Progress:         level.ProgressPercent,
		EarnedBadges:     make([]string, 0, len(earned)),
		EarnedBadgesData: make(map[string]time.Time, len(earned)),
		BadgeProgress:    badges.BadgeProgress,
		EventCounts:      counts,
	}
	for _, b := range earned {
		snap.EarnedBadges = append(snap.EarnedBadges, b.BadgeID)
		snap.EarnedBadgesData[b.BadgeID] = b.EarnedAt
	}
	return snap, nil
}

func (e *Engine) readError(step string, userID uint, err error) error {
	if errors.Is(err, ErrUserNotFound) {
		return err
	}
	e.metrics.PersistenceError(step)
	return fmt.Errorf("%w: read %s for user %d: %w", ErrPersistence, step, userID, err)
}
