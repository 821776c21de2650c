package gamification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/gdg-garage/jobquest-api/internal/catalog"
	"github.com/gdg-garage/jobquest-api/internal/events"
	"github.com/gdg-garage/jobquest-api/internal/models"
	"github.com/gdg-garage/jobquest-api/internal/progress"
)

// RecordResult summarises one RecordEvent call for the caller to render.
// NewLevel is zero unless LevelUp is set.
type RecordResult struct {
	XPEarned  int
	LevelUp   bool
	NewLevel  int
	NewBadges []string
}

// RecordEvent appends one occurrence of eventID for userID, awards any badges
// the user now qualifies for and detects a level transition.
//
// Only the occurrence insert can fail the call. Badge, level and notification
// failures are logged and skipped; Reconcile repairs badges and level from
// the log afterwards.
func (e *Engine) RecordEvent(ctx context.Context, userID uint, eventID catalog.EventID) (*RecordResult, error) {
	ev, ok := e.catalog.Event(eventID)
	if !ok {
		e.metrics.EventRejected()
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, eventID)
	}

	occ := &models.EventOccurrence{
		ID:        e.newID(),
		UserID:    userID,
		EventID:   string(ev.ID),
		XPEarned:  ev.XPReward,
		CreatedAt: e.now().UTC(),
	}
	if err := e.store.AppendOccurrence(ctx, occ); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		e.metrics.PersistenceError("append_occurrence")
		return nil, fmt.Errorf("%w: record %s for user %d: %w", ErrPersistence, ev.ID, userID, err)
	}
	e.metrics.EventRecorded(string(ev.ID), ev.XPReward)

	log := e.logger.With(slog.Uint64("user_id", uint64(userID)), slog.String("event_id", string(ev.ID)))
	log.DebugContext(ctx, "event recorded", slog.Int("xp", ev.XPReward))

	result := &RecordResult{
		XPEarned:  ev.XPReward,
		NewBadges: e.awardNewBadges(ctx, log, userID, occ.CreatedAt),
	}
	var xp int
	result.LevelUp, result.NewLevel, xp = e.detectLevelUp(ctx, log, userID)

	e.announce(ctx, log, userID, occ, result, xp)
	return result, nil
}

// awardNewBadges evaluates every badge against the user's full histogram and
// inserts the ones not yet earned. It returns the ids this call awarded.
func (e *Engine) awardNewBadges(ctx context.Context, log *slog.Logger, userID uint, at time.Time) []string {
	awarded := []string{}

	raw, err := e.store.EventCounts(ctx, userID)
	if err != nil {
		e.metrics.PersistenceError("event_counts")
		log.ErrorContext(ctx, "failed to load event counts, skipping badge check", slog.Any("error", err))
		return awarded
	}
	result := progress.CheckUserBadges(e.catalog, toCounts(raw))
	if len(result.EarnedBadgeIDs) == 0 {
		return awarded
	}

	owned := map[string]bool{}
	existing, err := e.store.EarnedBadges(ctx, userID)
	if err != nil {
		// The insert below is still safe: the unique index rejects duplicates.
		e.metrics.PersistenceError("earned_badges")
		log.WarnContext(ctx, "failed to load earned badges", slog.Any("error", err))
	}
	for _, b := range existing {
		owned[b.BadgeID] = true
	}

	for _, badgeID := range result.EarnedBadgeIDs {
		if owned[badgeID] {
			continue
		}
		inserted, err := e.store.AwardBadge(ctx, userID, badgeID, at)
		if err != nil {
			e.metrics.PersistenceError("award_badge")
			log.ErrorContext(ctx, "failed to award badge", slog.String("badge_id", badgeID), slog.Any("error", err))
			continue
		}
		if !inserted {
			e.metrics.BadgeConflict()
			log.DebugContext(ctx, "badge already awarded by a concurrent request", slog.String("badge_id", badgeID))
			continue
		}
		e.metrics.BadgeAwarded(badgeID)
		awarded = append(awarded, badgeID)
	}
	return awarded
}

// detectLevelUp compares the level derived from the cached XP with the stored
// level and moves the stored level forward. Only the request whose update
// changes the row reports the transition. The cached XP is returned alongside.
func (e *Engine) detectLevelUp(ctx context.Context, log *slog.Logger, userID uint) (bool, int, int) {
	profile, err := e.store.Profile(ctx, userID)
	if err != nil {
		e.metrics.PersistenceError("profile")
		log.ErrorContext(ctx, "failed to load profile, skipping level check", slog.Any("error", err))
		return false, 0, 0
	}

	level := e.catalog.CurrentLevel(profile.XP)
	if level.Order <= profile.Level {
		return false, 0, profile.XP
	}

	advanced, err := e.store.AdvanceLevel(ctx, userID, level.Order)
	if err != nil {
		e.metrics.PersistenceError("advance_level")
		log.ErrorContext(ctx, "failed to store new level", slog.Int("level", level.Order), slog.Any("error", err))
		return true, level.Order, profile.XP
	}
	if !advanced {
		log.DebugContext(ctx, "level already advanced by a concurrent request", slog.Int("level", level.Order))
		return false, 0, profile.XP
	}
	e.metrics.LevelUp(strconv.Itoa(level.Order))
	return true, level.Order, profile.XP
}

// announce runs the best-effort side effects of a recorded event.
func (e *Engine) announce(ctx context.Context, log *slog.Logger, userID uint, occ *models.EventOccurrence, result *RecordResult, xp int) {
	e.publish(ctx, log, events.TopicXPRecorded, events.XPRecorded{
		UserID:     userID,
		EventID:    occ.EventID,
		XPEarned:   occ.XPEarned,
		RecordedAt: occ.CreatedAt,
	})

	for _, badgeID := range result.NewBadges {
		badge, ok := e.catalog.Badge(badgeID)
		if !ok {
			continue
		}
		if err := e.notifier.NotifyBadge(ctx, userID, badge); err != nil {
			e.metrics.NotificationFailed("badge")
			log.WarnContext(ctx, "badge notification failed", slog.String("badge_id", badgeID), slog.Any("error", err))
		}
		e.publish(ctx, log, events.TopicBadgeAwarded, events.BadgeAwarded{
			UserID:   userID,
			BadgeID:  badgeID,
			EarnedAt: occ.CreatedAt,
		})
	}

	if !result.LevelUp {
		return
	}
	level, _ := e.catalog.LevelByOrder(result.NewLevel)
	if err := e.notifier.NotifyLevelUp(ctx, userID, level); err != nil {
		e.metrics.NotificationFailed("level_up")
		log.WarnContext(ctx, "level up notification failed", slog.Int("level", level.Order), slog.Any("error", err))
	}
	e.publish(ctx, log, events.TopicLevelUp, events.LevelUp{UserID: userID, NewLevel: result.NewLevel, XP: xp})
}

func (e *Engine) publish(ctx context.Context, log *slog.Logger, topic string, event any) {
	if err := e.publisher.Publish(ctx, topic, event); err != nil {
		e.metrics.NotificationFailed("publish")
		log.WarnContext(ctx, "failed to publish event", slog.String("topic", topic), slog.Any("error", err))
	}
}
