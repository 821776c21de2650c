// Package gamification records user events, awards XP and badges, tracks
// level transitions and reports progress.
//
// The occurrence log is the source of truth. The per-user XP and level values
// are a cache kept in step with it: XP is incremented in the same transaction
// as the occurrence insert and the level only ever moves forward. Badges are
// protected by a unique (user, badge) index and inserted with "ignore on
// conflict", so concurrent requests for the same user award each badge at
// most once.
package gamification

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/gdg-garage/jobquest-api/internal/catalog"
	"github.com/gdg-garage/jobquest-api/internal/events"
	"github.com/gdg-garage/jobquest-api/internal/metrics"
	"github.com/gdg-garage/jobquest-api/internal/notifier"
	"github.com/gdg-garage/jobquest-api/internal/progress"
	"github.com/gdg-garage/jobquest-api/internal/store"
	"github.com/google/uuid"
)

var (
	// ErrUnknownEvent means the event id is not in the catalog. Nothing was written.
	ErrUnknownEvent = catalog.ErrUnknownEvent
	// ErrUserNotFound means there is no profile for the user id.
	ErrUserNotFound = store.ErrUserNotFound
	// ErrPersistence wraps a store failure on a step that must succeed.
	ErrPersistence = errors.New("persistence failure")
)

type Engine struct {
	catalog   *catalog.Catalog
	store     store.Store
	notifier  notifier.Notifier
	publisher events.Publisher
	metrics   *metrics.Manager
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

type Option func(*Engine)

func WithNotifier(n notifier.Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

func WithPublisher(p events.Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

func WithMetrics(m *metrics.Manager) Option {
	return func(e *Engine) { e.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(cat *catalog.Catalog, st store.Store, opts ...Option) *Engine {
	e := &Engine{
		catalog:   cat,
		store:     st,
		notifier:  notifier.NoopNotifier{},
		publisher: &events.NoopPublisher{},
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = metrics.NewManager()
	}
	return e
}

func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

func toCounts(raw map[string]int) progress.Counts {
	counts := make(progress.Counts, len(raw))
	for id, n := range raw {
		counts[catalog.EventID(id)] = n
	}
	return counts
}
