// Package store persists the gamification state: the append-only event
// occurrence log, earned badges and the per-user XP/level cache.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/gdg-garage/jobquest-api/internal/models"
)

// ErrUserNotFound is returned when the profile row for a user does not exist.
var ErrUserNotFound = errors.New("user not found")

// Profile is the cached per-user scalar state.
type Profile struct {
	UserID uint
	XP     int
	Level  int
}

type Store interface {
	// AppendOccurrence inserts occ and adds occ.XPEarned to the user's cached
	// XP in the same transaction.
	AppendOccurrence(ctx context.Context, occ *models.EventOccurrence) error
	// EventCounts returns the all-time number of occurrences per event id.
	EventCounts(ctx context.Context, userID uint) (map[string]int, error)
	EarnedBadges(ctx context.Context, userID uint) ([]models.EarnedBadge, error)
	// AwardBadge inserts the badge unless the user already has it. It returns
	// false, nil for a duplicate.
	AwardBadge(ctx context.Context, userID uint, badgeID string, at time.Time) (bool, error)
	Profile(ctx context.Context, userID uint) (Profile, error)
	// AdvanceLevel sets the stored level to level only if it is currently
	// lower. It reports whether the row changed.
	AdvanceLevel(ctx context.Context, userID uint, level int) (bool, error)
	// SumXP totals XPEarned over the user's occurrence log.
	SumXP(ctx context.Context, userID uint) (int, error)
	// RecomputeXP overwrites the cached XP with the sum of the log in a
	// single statement and returns the new value.
	RecomputeXP(ctx context.Context, userID uint) (int, error)
	UserIDs(ctx context.Context) ([]uint, error)
}
