package main

import (
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/gdg-garage/jobquest-api/internal/catalog"
	"github.com/gdg-garage/jobquest-api/internal/config"
	"github.com/gdg-garage/jobquest-api/internal/database"
	"github.com/gdg-garage/jobquest-api/internal/events"
	"github.com/gdg-garage/jobquest-api/internal/gamification"
	"github.com/gdg-garage/jobquest-api/internal/metrics"
	"github.com/gdg-garage/jobquest-api/internal/notifier"
	"github.com/gdg-garage/jobquest-api/internal/store"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:           "server",
	Short:         "JobQuest gamification API",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          serveCmd.RunE,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(catalogCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn", "warning":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

// app holds the dependencies shared by the commands.
type app struct {
	cfg       *config.Config
	db        *gorm.DB
	catalog   *catalog.Catalog
	metrics   *metrics.Manager
	publisher events.Publisher
	engine    *gamification.Engine
}

// newApp wires the engine. withSideEffects controls whether Discord DMs and
// NATS publishing are enabled; the reconcile command runs without them.
func newApp(withSideEffects bool) (*app, error) {
	// Load Configuration
	cfg := config.LoadConfig()
	logger := newLogger(cfg.LogLevel)

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}

	// Connect to Database
	db := database.Connect(cfg)

	m := metrics.NewManager(metrics.WithRuntimeCollectors())
	opts := []gamification.Option{
		gamification.WithLogger(logger),
		gamification.WithMetrics(m),
	}

	var publisher events.Publisher = &events.NoopPublisher{}
	if withSideEffects {
		if cfg.NotifyEnabled {
			session, err := notifier.NewDiscordSession(cfg.DiscordBotToken)
			if err != nil {
				log.Printf("Discord notifier not initialized: %v", err)
			} else {
				opts = append(opts, gamification.WithNotifier(notifier.NewDiscordNotifier(session, db)))
			}
		}

		if cfg.NATSURL != "" {
			p, err := events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				log.Printf("NATS publisher not initialized: %v", err)
			} else {
				publisher = p
			}
		}
	}
	opts = append(opts, gamification.WithPublisher(publisher))

	return &app{
		cfg:       cfg,
		db:        db,
		catalog:   cat,
		metrics:   m,
		publisher: publisher,
		engine:    gamification.New(cat, store.NewGormStore(db), opts...),
	}, nil
}

func (a *app) Close() {
	if err := a.publisher.Close(); err != nil {
		log.Printf("Failed to close publisher: %v", err)
	}
	if sqlDB, err := a.db.DB(); err == nil {
		sqlDB.Close()
	}
}
