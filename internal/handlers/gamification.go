package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/jobquest-api/internal/auth"
	"github.com/gdg-garage/jobquest-api/internal/catalog"
	"github.com/gdg-garage/jobquest-api/internal/gamification"
	"github.com/gdg-garage/jobquest-api/internal/progress"
)

type GamificationHandler struct {
	engine      *gamification.Engine
	authHandler *auth.AuthHandler
}

func NewGamificationHandler(engine *gamification.Engine, authHandler *auth.AuthHandler) *GamificationHandler {
	return &GamificationHandler{engine: engine, authHandler: authHandler}
}

// engineError maps engine failures to HTTP errors.
func engineError(op string, err error) error {
	switch {
	case errors.Is(err, gamification.ErrUnknownEvent):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, gamification.ErrUserNotFound):
		return huma.Error401Unauthorized("User not found")
	default:
		log.Printf("%s failed: %v", op, err)
		return huma.Error500InternalServerError("Failed to " + op)
	}
}

type RecordEventRequest struct {
	auth.AuthInput
	Body struct {
		EventID string `json:"eventId" doc:"Catalog id of the action the user performed" example:"application.created" required:"true"`
	}
}

type RecordEventResponse struct {
	Body struct {
		Success   bool     `json:"success"`
		XPEarned  int      `json:"xpEarned"`
		LevelUp   bool     `json:"levelUp"`
		NewLevel  *int     `json:"newLevel,omitempty" doc:"Present only when levelUp is true"`
		NewBadges []string `json:"newBadges"`
	}
}

func (h *GamificationHandler) HandleRecordEvent(ctx context.Context, input *RecordEventRequest) (*RecordEventResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	eventID, err := h.engine.Catalog().ParseEventID(input.Body.EventID)
	if err != nil {
		return nil, huma.Error404NotFound("Unknown event: " + input.Body.EventID)
	}

	result, err := h.engine.RecordEvent(ctx, userID, eventID)
	if err != nil {
		return nil, engineError("record event", err)
	}

	res := &RecordEventResponse{}
	res.Body.Success = true
	res.Body.XPEarned = result.XPEarned
	res.Body.LevelUp = result.LevelUp
	if result.LevelUp {
		level := result.NewLevel
		res.Body.NewLevel = &level
	}
	res.Body.NewBadges = result.NewBadges
	if res.Body.NewBadges == nil {
		res.Body.NewBadges = []string{}
	}
	return res, nil
}

type ProgressRequest struct {
	auth.AuthInput
}

type ProgressBody struct {
	XP               int                  `json:"xp"`
	Level            catalog.Level        `json:"level"`
	NextLevel        *catalog.Level       `json:"nextLevel" doc:"Null at the level cap"`
	Progress         float64              `json:"progress" minimum:"0" maximum:"100"`
	EarnedBadges     []string             `json:"earnedBadges"`
	EarnedBadgesData map[string]time.Time `json:"earnedBadgesData"`
	BadgeProgress    map[string]float64   `json:"badgeProgress"`
	EventCounts      map[string]int       `json:"eventCounts"`
}

type ProgressResponse struct {
	Body ProgressBody
}

func (h *GamificationHandler) HandleProgress(ctx context.Context, input *ProgressRequest) (*ProgressResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	snap, err := h.engine.GetUserProgress(ctx, userID)
	if err != nil {
		return nil, engineError("load progress", err)
	}

	return &ProgressResponse{
		Body: ProgressBody{
			XP:               snap.XP,
			Level:            snap.Level,
			NextLevel:        snap.NextLevel,
			Progress:         snap.Progress,
			EarnedBadges:     snap.EarnedBadges,
			EarnedBadgesData: snap.EarnedBadgesData,
			BadgeProgress:    snap.BadgeProgress,
			EventCounts:      snap.EventCounts,
		},
	}, nil
}

type BadgeDetailRequest struct {
	auth.AuthInput
	BadgeID string `path:"badgeId" doc:"Badge id from the catalog"`
}

type BadgeDetailResponse struct {
	Body struct {
		Badge        catalog.Badge                `json:"badge"`
		Earned       bool                         `json:"earned"`
		EarnedAt     *time.Time                   `json:"earnedAt,omitempty"`
		Progress     float64                      `json:"progress"`
		Requirements []progress.RequirementDetail `json:"requirements"`
	}
}

func (h *GamificationHandler) HandleBadgeDetail(ctx context.Context, input *BadgeDetailRequest) (*BadgeDetailResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	badge, ok := h.engine.Catalog().Badge(input.BadgeID)
	if !ok {
		return nil, huma.Error404NotFound("Badge not found")
	}

	snap, err := h.engine.GetUserProgress(ctx, userID)
	if err != nil {
		return nil, engineError("load progress", err)
	}

	counts := make(progress.Counts, len(snap.EventCounts))
	for id, n := range snap.EventCounts {
		counts[catalog.EventID(id)] = n
	}

	res := &BadgeDetailResponse{}
	res.Body.Badge = badge
	res.Body.Progress = snap.BadgeProgress[badge.ID]
	res.Body.Requirements = progress.RequirementDetails(badge, counts)
	if at, ok := snap.EarnedBadgesData[badge.ID]; ok {
		res.Body.Earned = true
		res.Body.EarnedAt = &at
	}
	return res, nil
}

type CatalogResponse struct {
	Body struct {
		Events []catalog.Event `json:"events"`
		Levels []catalog.Level `json:"levels"`
		Badges []catalog.Badge `json:"badges"`
	}
}

func (h *GamificationHandler) HandleCatalog(ctx context.Context, input *struct{}) (*CatalogResponse, error) {
	cat := h.engine.Catalog()
	res := &CatalogResponse{}
	res.Body.Events = cat.Events()
	res.Body.Levels = cat.Levels()
	res.Body.Badges = cat.Badges()
	return res, nil
}

type ReconcileRequest struct {
	auth.AuthInput
}

type ReconcileResponse struct {
	Body struct {
		PreviousXP    int      `json:"previousXp"`
		XP            int      `json:"xp"`
		Level         int      `json:"level"`
		LevelAdvanced bool     `json:"levelAdvanced"`
		AwardedBadges []string `json:"awardedBadges"`
	}
}

func (h *GamificationHandler) HandleReconcile(ctx context.Context, input *ReconcileRequest) (*ReconcileResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	result, err := h.engine.Reconcile(ctx, userID)
	if err != nil {
		return nil, engineError("reconcile progress", err)
	}

	res := &ReconcileResponse{}
	res.Body.PreviousXP = result.PreviousXP
	res.Body.XP = result.XP
	res.Body.Level = result.Level
	res.Body.LevelAdvanced = result.LevelAdvanced
	res.Body.AwardedBadges = result.AwardedBadges
	return res, nil
}
