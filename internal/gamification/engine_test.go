package gamification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gdg-garage/jobquest-api/internal/catalog"
	"github.com/gdg-garage/jobquest-api/internal/database"
	"github.com/gdg-garage/jobquest-api/internal/metrics"
	"github.com/gdg-garage/jobquest-api/internal/models"
	"github.com/gdg-garage/jobquest-api/internal/store"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type recordingNotifier struct {
	mu     sync.Mutex
	err    error
	levels []int
	badges []string
}

func (n *recordingNotifier) NotifyLevelUp(_ context.Context, _ uint, level catalog.Level) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.levels = append(n.levels, level.Order)
	return n.err
}

func (n *recordingNotifier) NotifyBadge(_ context.Context, _ uint, badge catalog.Badge) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.badges = append(n.badges, badge.ID)
	return n.err
}

func (n *recordingNotifier) calls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.levels) + len(n.badges)
}

type recordingPublisher struct {
	mu     sync.Mutex
	err    error
	topics []string
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

// faultyStore wraps a real store and fails the configured steps.
type faultyStore struct {
	*store.GormStore
	appendErr error
	awardErr  error
	countsErr error
}

func (s *faultyStore) AppendOccurrence(ctx context.Context, occ *models.EventOccurrence) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	return s.GormStore.AppendOccurrence(ctx, occ)
}

func (s *faultyStore) AwardBadge(ctx context.Context, userID uint, badgeID string, at time.Time) (bool, error) {
	if s.awardErr != nil {
		return false, s.awardErr
	}
	return s.GormStore.AwardBadge(ctx, userID, badgeID, at)
}

func (s *faultyStore) EventCounts(ctx context.Context, userID uint) (map[string]int, error) {
	if s.countsErr != nil {
		return nil, s.countsErr
	}
	return s.GormStore.EventCounts(ctx, userID)
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, discordID string, xp int) models.User {
	t.Helper()
	user := models.User{DiscordID: discordID, Username: discordID, XP: xp}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// twoLevelCatalog has one 60 XP event and a level 2 threshold at 200 XP.
func twoLevelCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(
		[]catalog.Event{{ID: catalog.EventApplicationCreated, XPReward: 60, Category: catalog.CategoryApplication}},
		[]catalog.Level{{Order: 1, RequiredXP: 0, Name: "newcomer"}, {Order: 2, RequiredXP: 200, Name: "explorer"}},
		nil,
	)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	return c
}

func newTestEngine(cat *catalog.Catalog, st store.Store, opts ...Option) *Engine {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow }), WithMetrics(metrics.NewManager())}, opts...)
	return New(cat, st, opts...)
}

func TestRecordEvent_LevelUp(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "u1", 150)
	n := &recordingNotifier{}
	p := &recordingPublisher{}
	e := newTestEngine(twoLevelCatalog(t), store.NewGormStore(db), WithNotifier(n), WithPublisher(p))

	res, err := e.RecordEvent(context.Background(), user.ID, catalog.EventApplicationCreated)
	if err != nil {
		t.Fatalf("RecordEvent: %v", err)
	}
	if res.XPEarned != 60 {
		t.Errorf("expected 60 xp earned, got %d", res.XPEarned)
	}
	if !res.LevelUp || res.NewLevel != 2 {
		t.Errorf("expected level up to 2, got levelUp=%v newLevel=%d", res.LevelUp, res.NewLevel)
	}

	var stored models.User
	db.First(&stored, user.ID)
	if stored.XP != 210 || stored.Level != 2 {
		t.Errorf("expected xp=210 level=2, got xp=%d level=%d", stored.XP, stored.Level)
	}
	if len(n.levels) != 1 || n.levels[0] != 2 {
		t.Errorf("expected one level 2 notification, got %v", n.levels)
	}

	res, err = e.RecordEvent(context.Background(), user.ID, catalog.EventApplicationCreated)
	if err != nil {
		t.Fatalf("second RecordEvent: %v", err)
	}
	if res.LevelUp {
		t.Error("level up reported twice for the same level")
	}
	if len(n.levels) != 1 {
		t.Errorf("expected no further level notifications, got %v", n.levels)
	}
}

func TestRecordEvent_FirstBadge(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "u1", 0)
	n := &recordingNotifier{}
	p := &recordingPublisher{}
	e := newTestEngine(catalog.Default(), store.NewGormStore(db), WithNotifier(n), WithPublisher(p))

	res, err := e.RecordEvent(context.Background(), user.ID, catalog.EventCVEducationAdded)
	if err != nil {
		t.Fatalf("RecordEvent: %v", err)
	}
	if len(res.NewBadges) != 1 || res.NewBadges[0] != "first_step" {
		t.Errorf("expected [first_step], got %v", res.NewBadges)
	}
	if res.LevelUp {
		t.Error("unexpected level up")
	}
	if len(n.badges) != 1 || n.badges[0] != "first_step" {
		t.Errorf("expected first_step notification, got %v", n.badges)
	}

	wantTopics := map[string]bool{
		"jobquest.gamification.xp.recorded":   true,
		"jobquest.gamification.badge.awarded": true,
	}
	if len(p.topics) != len(wantTopics) {
		t.Fatalf("expected %d publishes, got %v", len(wantTopics), p.topics)
	}
	for _, topic := range p.topics {
		if !wantTopics[topic] {
			t.Errorf("unexpected topic %q", topic)
		}
	}

	res, err = e.RecordEvent(context.Background(), user.ID, catalog.EventCVEducationAdded)
	if err != nil {
		t.Fatalf("second RecordEvent: %v", err)
	}
	if len(res.NewBadges) != 0 {
		t.Errorf("badge awarded twice: %v", res.NewBadges)
	}
	if res.NewBadges == nil {
		t.Error("expected an empty, non-nil badge list")
	}
}

func TestRecordEvent_CompoundBadgeNotEarnedEarly(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "u1", 0)
	e := newTestEngine(catalog.Default(), store.NewGormStore(db))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		res, err := e.RecordEvent(ctx, user.ID, catalog.EventApplicationCreated)
		if err != nil {
			t.Fatalf("RecordEvent: %v", err)
		}
		for _, id := range res.NewBadges {
			if id == "veteran" {
				t.Fatal("veteran awarded without an interview")
			}
		}
	}

	snap, err := e.GetUserProgress(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserProgress: %v", err)
	}
	if got := snap.BadgeProgress["veteran"]; got != 50 {
		t.Errorf("expected veteran progress 50, got %v", got)
	}

	res, err := e.RecordEvent(ctx, user.ID, catalog.EventInterviewCompleted)
	if err != nil {
		t.Fatalf("RecordEvent: %v", err)
	}
	found := false
	for _, id := range res.NewBadges {
		if id == "veteran" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected veteran after the interview, got %v", res.NewBadges)
	}
}

func TestRecordEvent_UnknownEvent(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "u1", 0)
	n := &recordingNotifier{}
	p := &recordingPublisher{}
	e := newTestEngine(catalog.Default(), store.NewGormStore(db), WithNotifier(n), WithPublisher(p))

	_, err := e.RecordEvent(context.Background(), user.ID, "bogus.event")
	if !errors.Is(err, ErrUnknownEvent) {
		t.Fatalf("expected ErrUnknownEvent, got %v", err)
	}

	var count int64
	db.Model(&models.EventOccurrence{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no occurrences, got %d", count)
	}
	if n.calls() != 0 || len(p.topics) != 0 {
		t.Errorf("expected no side effects, got notifications=%d publishes=%v", n.calls(), p.topics)
	}
}

func TestRecordEvent_UnknownUser(t *testing.T) {
	db := setupTestDB(t)
	e := newTestEngine(catalog.Default(), store.NewGormStore(db))

	_, err := e.RecordEvent(context.Background(), 999, catalog.EventDailyLogin)
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestRecordEvent_AppendFailure(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "u1", 0)
	n := &recordingNotifier{}
	p := &recordingPublisher{}
	st := &faultyStore{GormStore: store.NewGormStore(db), appendErr: errors.New("disk full")}
	e := newTestEngine(catalog.Default(), st, WithNotifier(n), WithPublisher(p))

	_, err := e.RecordEvent(context.Background(), user.ID, catalog.EventCVEducationAdded)
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if n.calls() != 0 || len(p.topics) != 0 {
		t.Errorf("expected no side effects, got notifications=%d publishes=%v", n.calls(), p.topics)
	}
	var badges int64
	db.Model(&models.EarnedBadge{}).Count(&badges)
	if badges != 0 {
		t.Errorf("expected no badges, got %d", badges)
	}
}

func TestRecordEvent_SideEffectFailuresAreSwallowed(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "u1", 190)
	n := &recordingNotifier{err: errors.New("discord down")}
	p := &recordingPublisher{err: errors.New("nats down")}
	e := newTestEngine(twoLevelCatalog(t), store.NewGormStore(db), WithNotifier(n), WithPublisher(p))

	res, err := e.RecordEvent(context.Background(), user.ID, catalog.EventApplicationCreated)
	if err != nil {
		t.Fatalf("RecordEvent: %v", err)
	}
	if !res.LevelUp {
		t.Error("expected the level up to be reported despite the notifier failing")
	}
	if len(n.levels) != 1 {
		t.Errorf("expected the notifier to be attempted once, got %v", n.levels)
	}
}

func TestRecordEvent_BadgeStepFailureKeepsOccurrence(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "u1", 0)
	st := &faultyStore{GormStore: store.NewGormStore(db), awardErr: errors.New("locked")}
	e := newTestEngine(catalog.Default(), st)
	ctx := context.Background()

	res, err := e.RecordEvent(ctx, user.ID, catalog.EventCVEducationAdded)
	if err != nil {
		t.Fatalf("RecordEvent: %v", err)
	}
	if len(res.NewBadges) != 0 {
		t.Errorf("expected no badges while awarding fails, got %v", res.NewBadges)
	}

	st.awardErr = nil
	rec, err := e.Reconcile(ctx, user.ID)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(rec.AwardedBadges) != 1 || rec.AwardedBadges[0] != "first_step" {
		t.Errorf("expected reconcile to award first_step, got %v", rec.AwardedBadges)
	}
}

func TestRecordEvent_CountsFailureSkipsBadges(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "u1", 0)
	st := &faultyStore{GormStore: store.NewGormStore(db), countsErr: errors.New("timeout")}
	e := newTestEngine(catalog.Default(), st)

	res, err := e.RecordEvent(context.Background(), user.ID, catalog.EventCVEducationAdded)
	if err != nil {
		t.Fatalf("RecordEvent: %v", err)
	}
	if res.XPEarned != 15 || len(res.NewBadges) != 0 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestRecordEvent_ConcurrentBadgeAwardedOnce(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "u1", 0)
	n := &recordingNotifier{}
	e := newTestEngine(catalog.Default(), store.NewGormStore(db), WithNotifier(n))

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		awarded int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := e.RecordEvent(context.Background(), user.ID, catalog.EventCVEducationAdded)
			if err != nil {
				t.Errorf("RecordEvent: %v", err)
				return
			}
			mu.Lock()
			awarded += len(res.NewBadges)
			mu.Unlock()
		}()
	}
	wg.Wait()

	if awarded != 1 {
		t.Errorf("expected first_step to be reported once, got %d", awarded)
	}
	var count int64
	db.Model(&models.EarnedBadge{}).Where("user_id = ? AND badge_id = ?", user.ID, "first_step").Count(&count)
	if count != 1 {
		t.Errorf("expected one badge row, got %d", count)
	}
	if len(n.badges) != 1 {
		t.Errorf("expected one badge notification, got %v", n.badges)
	}

	var stored models.User
	db.First(&stored, user.ID)
	if stored.XP != workers*15 {
		t.Errorf("expected xp %d, got %d", workers*15, stored.XP)
	}
}

func TestRecordEvent_ConcurrentLevelUpReportedOnce(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "u1", 150)
	n := &recordingNotifier{}
	e := newTestEngine(twoLevelCatalog(t), store.NewGormStore(db), WithNotifier(n))

	const workers = 4
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		levelUps int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := e.RecordEvent(context.Background(), user.ID, catalog.EventApplicationCreated)
			if err != nil {
				t.Errorf("RecordEvent: %v", err)
				return
			}
			if res.LevelUp {
				mu.Lock()
				levelUps++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if levelUps != 1 {
		t.Errorf("expected exactly one level up, got %d", levelUps)
	}
	if len(n.levels) != 1 {
		t.Errorf("expected one level notification, got %v", n.levels)
	}
}

func TestGetUserProgress_NewUser(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "u1", 0)
	e := newTestEngine(catalog.Default(), store.NewGormStore(db))

	snap, err := e.GetUserProgress(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetUserProgress: %v", err)
	}
	if snap.Level.Order != 1 {
		t.Errorf("expected level 1, got %d", snap.Level.Order)
	}
	if snap.XP != 0 || snap.Progress != 0 {
		t.Errorf("expected zero xp and progress, got xp=%d progress=%v", snap.XP, snap.Progress)
	}
	if snap.EarnedBadges == nil || len(snap.EarnedBadges) != 0 {
		t.Errorf("expected an empty badge list, got %v", snap.EarnedBadges)
	}
	if snap.NextLevel == nil || snap.NextLevel.Order != 2 {
		t.Errorf("expected next level 2, got %v", snap.NextLevel)
	}
	if len(snap.BadgeProgress) != len(catalog.Default().Badges()) {
		t.Errorf("expected progress for every badge, got %d entries", len(snap.BadgeProgress))
	}
}

func TestGetUserProgress_AfterEvents(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "u1", 0)
	e := newTestEngine(catalog.Default(), store.NewGormStore(db))
	ctx := context.Background()

	for _, id := range []catalog.EventID{
		catalog.EventCVEducationAdded,
		catalog.EventApplicationCreated,
		catalog.EventApplicationCreated,
	} {
		if _, err := e.RecordEvent(ctx, user.ID, id); err != nil {
			t.Fatalf("RecordEvent %s: %v", id, err)
		}
	}

	snap, err := e.GetUserProgress(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserProgress: %v", err)
	}
	if snap.XP != 55 {
		t.Errorf("expected xp 55, got %d", snap.XP)
	}
	if snap.EventCounts[string(catalog.EventApplicationCreated)] != 2 {
		t.Errorf("unexpected counts %v", snap.EventCounts)
	}
	if len(snap.EarnedBadges) != 2 {
		t.Errorf("expected first_step and first_application, got %v", snap.EarnedBadges)
	}
	if at, ok := snap.EarnedBadgesData["first_step"]; !ok || !at.Equal(fixedNow) {
		t.Errorf("expected first_step earned at %v, got %v (present=%v)", fixedNow, at, ok)
	}
	if got := snap.BadgeProgress["go_getter"]; got != 20 {
		t.Errorf("expected go_getter progress 20, got %v", got)
	}
}

func TestGetUserProgress_UnknownUser(t *testing.T) {
	db := setupTestDB(t)
	e := newTestEngine(catalog.Default(), store.NewGormStore(db))

	if _, err := e.GetUserProgress(context.Background(), 42); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestReconcile(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	st := store.NewGormStore(db)
	n := &recordingNotifier{}
	e := newTestEngine(catalog.Default(), st, WithNotifier(n))

	t.Run("repairs drift and awards missing badges", func(t *testing.T) {
		user := createUser(t, db, "drift", 0)
		// Written straight to the log, as an older deployment would have.
		for i := 0; i < 10; i++ {
			occ := &models.EventOccurrence{
				ID:       uuid.NewString(),
				UserID:   user.ID,
				EventID:  string(catalog.EventApplicationCreated),
				XPEarned: 20,
			}
			if err := st.AppendOccurrence(ctx, occ); err != nil {
				t.Fatalf("AppendOccurrence: %v", err)
			}
		}
		db.Model(&models.User{}).Where("id = ?", user.ID).Update("xp", 5)

		res, err := e.Reconcile(ctx, user.ID)
		if err != nil {
			t.Fatalf("Reconcile: %v", err)
		}
		if res.PreviousXP != 5 || res.XP != 200 {
			t.Errorf("expected xp 5 -> 200, got %d -> %d", res.PreviousXP, res.XP)
		}
		if !res.LevelAdvanced || res.Level != 2 {
			t.Errorf("expected level advanced to 2, got advanced=%v level=%d", res.LevelAdvanced, res.Level)
		}
		if len(res.AwardedBadges) != 2 {
			t.Errorf("expected first_application and go_getter, got %v", res.AwardedBadges)
		}
		if n.calls() != 0 {
			t.Errorf("reconcile must not notify, got %d notifications", n.calls())
		}

		again, err := e.Reconcile(ctx, user.ID)
		if err != nil {
			t.Fatalf("second Reconcile: %v", err)
		}
		if again.LevelAdvanced || len(again.AwardedBadges) != 0 || again.XP != 200 {
			t.Errorf("second pass changed state: %+v", again)
		}
	})

	t.Run("never lowers the level", func(t *testing.T) {
		user := createUser(t, db, "veteran", 0)
		db.Model(&models.User{}).Where("id = ?", user.ID).Update("level", 5)

		res, err := e.Reconcile(ctx, user.ID)
		if err != nil {
			t.Fatalf("Reconcile: %v", err)
		}
		if res.Level != 5 || res.LevelAdvanced {
			t.Errorf("expected level to stay 5, got %+v", res)
		}
		var stored models.User
		db.First(&stored, user.ID)
		if stored.Level != 5 {
			t.Errorf("stored level changed to %d", stored.Level)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		if _, err := e.Reconcile(ctx, 999); !errors.Is(err, ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("all users", func(t *testing.T) {
		results, err := e.ReconcileAll(ctx)
		if err != nil {
			t.Fatalf("ReconcileAll: %v", err)
		}
		if len(results) != 2 {
			t.Errorf("expected 2 results, got %d", len(results))
		}
	})
}
