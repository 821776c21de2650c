// Package metrics provides Prometheus metrics for the gamification engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns the engine's collectors and the registry they live in.
type Manager struct {
	namespace string
	subsystem string
	registry  *prometheus.Registry

	eventsRecorded      *prometheus.CounterVec
	eventsRejected      prometheus.Counter
	xpAwarded           prometheus.Counter
	badgesAwarded       *prometheus.CounterVec
	badgeConflicts      prometheus.Counter
	levelUps            *prometheus.CounterVec
	notificationsFailed *prometheus.CounterVec
	persistenceErrors   *prometheus.CounterVec
	reconciledUsers     prometheus.Counter
}

type Option func(*Manager)

func WithNamespace(namespace string) Option {
	return func(m *Manager) { m.namespace = namespace }
}

func WithSubsystem(subsystem string) Option {
	return func(m *Manager) { m.subsystem = subsystem }
}

// WithRegistry registers the collectors on registry instead of a fresh one.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(m *Manager) { m.registry = registry }
}

// WithRuntimeCollectors adds the Go runtime and process collectors.
func WithRuntimeCollectors() Option {
	return func(m *Manager) {
		m.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "jobquest",
		subsystem: "gamification",
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.eventsRecorded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_recorded_total",
		Help:      "Event occurrences persisted, by event id",
	}, []string{"event_id"})

	m.eventsRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_rejected_total",
		Help:      "Record requests rejected for an unknown event id",
	})

	m.xpAwarded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "xp_awarded_total",
		Help:      "Total XP granted across all users",
	})

	m.badgesAwarded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "badges_awarded_total",
		Help:      "Badges newly awarded, by badge id",
	}, []string{"badge_id"})

	m.badgeConflicts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "badge_award_conflicts_total",
		Help:      "Badge inserts skipped because a concurrent request already awarded the badge",
	})

	m.levelUps = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "level_ups_total",
		Help:      "Level transitions, by the level reached",
	}, []string{"level"})

	m.notificationsFailed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "notifications_failed_total",
		Help:      "Best effort side effects that failed, by kind",
	}, []string{"kind"})

	m.persistenceErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "persistence_errors_total",
		Help:      "Store errors, by the step that failed",
	}, []string{"step"})

	m.reconciledUsers = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reconciled_users_total",
		Help:      "Users processed by the reconciliation pass",
	})
}

func (m *Manager) EventRecorded(eventID string, xp int) {
	m.eventsRecorded.WithLabelValues(eventID).Inc()
	m.xpAwarded.Add(float64(xp))
}

func (m *Manager) EventRejected() { m.eventsRejected.Inc() }

func (m *Manager) BadgeAwarded(badgeID string) { m.badgesAwarded.WithLabelValues(badgeID).Inc() }

func (m *Manager) BadgeConflict() { m.badgeConflicts.Inc() }

func (m *Manager) LevelUp(level string) { m.levelUps.WithLabelValues(level).Inc() }

func (m *Manager) NotificationFailed(kind string) { m.notificationsFailed.WithLabelValues(kind).Inc() }

func (m *Manager) PersistenceError(step string) { m.persistenceErrors.WithLabelValues(step).Inc() }

func (m *Manager) UserReconciled() { m.reconciledUsers.Inc() }

func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
