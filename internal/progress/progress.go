// Package progress turns raw XP and event counts into levels, badge
// eligibility and progress percentages. Nothing here performs I/O.
package progress

import (
	"github.com/gdg-garage/jobquest-api/internal/catalog"
)

// Counts maps an event id to how many times the user has recorded it.
type Counts map[catalog.EventID]int

type RequirementDetail struct {
	EventID  catalog.EventID `json:"eventId"`
	Required int             `json:"required"`
	Current  int             `json:"current"`
	Percent  float64         `json:"percent"`
}

type BadgeResult struct {
	EarnedBadgeIDs []string           `json:"earnedBadgeIds"`
	BadgeProgress  map[string]float64 `json:"badgeProgress"`
}

type LevelInfo struct {
	CurrentLevel    catalog.Level  `json:"currentLevel"`
	NextLevel       *catalog.Level `json:"nextLevel"`
	ProgressPercent float64        `json:"progressPercent"`
	// XPForNextLevel is the XP still missing to reach NextLevel.
	XPForNextLevel int `json:"xpForNextLevel"`
	// TotalXPForNextLevel is the width of the current level band.
	TotalXPForNextLevel int `json:"totalXpForNextLevel"`
}

func requirementPercent(r catalog.Requirement, counts Counts) float64 {
	p := float64(counts[r.EventID]) / float64(r.Count) * 100
	if p > 100 {
		return 100
	}
	return p
}

// BadgeProgress averages the clamped percentage of every requirement. A badge
// with one requirement met and another untouched therefore shows partial
// progress even though it is not earned.
func BadgeProgress(badge catalog.Badge, counts Counts) float64 {
	if len(badge.Requirements) == 0 {
		return 0
	}
	var sum float64
	for _, r := range badge.Requirements {
		sum += requirementPercent(r, counts)
	}
	return sum / float64(len(badge.Requirements))
}

// IsBadgeEarned reports whether every requirement of badge is satisfied.
func IsBadgeEarned(badge catalog.Badge, counts Counts) bool {
	if len(badge.Requirements) == 0 {
		return false
	}
	for _, r := range badge.Requirements {
		if counts[r.EventID] < r.Count {
			return false
		}
	}
	return true
}

func RequirementDetails(badge catalog.Badge, counts Counts) []RequirementDetail {
	details := make([]RequirementDetail, 0, len(badge.Requirements))
	for _, r := range badge.Requirements {
		details = append(details, RequirementDetail{
			EventID:  r.EventID,
			Required: r.Count,
			Current:  counts[r.EventID],
			Percent:  requirementPercent(r, counts),
		})
	}
	return details
}

// CheckUserBadges evaluates every badge in the catalog against counts.
// Earned ids are returned in catalog order.
func CheckUserBadges(cat *catalog.Catalog, counts Counts) BadgeResult {
	badges := cat.Badges()
	res := BadgeResult{
		EarnedBadgeIDs: []string{},
		BadgeProgress:  make(map[string]float64, len(badges)),
	}
	for _, b := range badges {
		if IsBadgeEarned(b, counts) {
			res.EarnedBadgeIDs = append(res.EarnedBadgeIDs, b.ID)
		}
		res.BadgeProgress[b.ID] = BadgeProgress(b, counts)
	}
	return res
}

func CalculateUserLevel(cat *catalog.Catalog, xp int) LevelInfo {
	info := LevelInfo{
		CurrentLevel:    cat.CurrentLevel(xp),
		NextLevel:       cat.NextLevel(xp),
		ProgressPercent: cat.LevelProgressPercent(xp),
	}
	if info.NextLevel != nil {
		info.XPForNextLevel = info.NextLevel.RequiredXP - xp
		info.TotalXPForNextLevel = info.NextLevel.RequiredXP - info.CurrentLevel.RequiredXP
	}
	return info
}
