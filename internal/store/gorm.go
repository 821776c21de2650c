package store

import (
	"context"
	"errors"
	"time"

	"github.com/gdg-garage/jobquest-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements Store on top of gorm. It works with both the sqlite and
// postgres dialectors.
type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) AppendOccurrence(ctx context.Context, occ *models.EventOccurrence) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(occ).Error; err != nil {
			return err
		}

		res := tx.Model(&models.User{}).
			Where("id = ?", occ.UserID).
			Update("xp", gorm.Expr("xp + ?", occ.XPEarned))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

func (s *GormStore) EventCounts(ctx context.Context, userID uint) (map[string]int, error) {
	var rows []struct {
		EventID string
		Count   int
	}
	err := s.db.WithContext(ctx).
		Model(&models.EventOccurrence{}).
		Select("event_id, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("event_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.EventID] = r.Count
	}
	return counts, nil
}

func (s *GormStore) EarnedBadges(ctx context.Context, userID uint) ([]models.EarnedBadge, error) {
	var badges []models.EarnedBadge
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("earned_at asc, id asc").
		Find(&badges).Error
	return badges, err
}

func (s *GormStore) AwardBadge(ctx context.Context, userID uint, badgeID string, at time.Time) (bool, error) {
	badge := models.EarnedBadge{UserID: userID, BadgeID: badgeID, EarnedAt: at}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_id"}},
			DoNothing: true,
		}).
		Create(&badge)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStore) Profile(ctx context.Context, userID uint) (Profile, error) {
	var user models.User
	err := s.db.WithContext(ctx).Select("id", "xp", "level").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Profile{}, ErrUserNotFound
	}
	if err != nil {
		return Profile{}, err
	}
	return Profile{UserID: user.ID, XP: user.XP, Level: user.Level}, nil
}

func (s *GormStore) AdvanceLevel(ctx context.Context, userID uint, level int) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND level < ?", userID, level).
		Update("level", level)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStore) SumXP(ctx context.Context, userID uint) (int, error) {
	var total int64
	err := s.db.WithContext(ctx).
		Model(&models.EventOccurrence{}).
		Select("COALESCE(SUM(xp_earned), 0)").
		Where("user_id = ?", userID).
		Scan(&total).Error
	return int(total), err
}

func (s *GormStore) RecomputeXP(ctx context.Context, userID uint) (int, error) {
	var xp int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sum := tx.Model(&models.EventOccurrence{}).
			Select("COALESCE(SUM(xp_earned), 0)").
			Where("user_id = ?", userID)
		res := tx.Model(&models.User{}).
			Where("id = ?", userID).
			Update("xp", sum)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}

		var user models.User
		if err := tx.Select("id", "xp").First(&user, userID).Error; err != nil {
			return err
		}
		xp = user.XP
		return nil
	})
	return xp, err
}

func (s *GormStore) UserIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Model(&models.User{}).Order("id asc").Pluck("id", &ids).Error
	return ids, err
}
