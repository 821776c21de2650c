package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdg-garage/jobquest-api/internal/auth"
	"github.com/gdg-garage/jobquest-api/internal/handlers"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		authHandler := auth.NewAuthHandler(a.cfg, a.db)
		gamificationHandler := handlers.NewGamificationHandler(a.engine, authHandler)
		apiKeyHandler := handlers.NewAPIKeyHandler(a.db, authHandler)

		// Initialize Router
		r := chi.NewRouter()

		// Register Routes
		handlers.RegisterRoutes(r, authHandler, gamificationHandler, apiKeyHandler, a.metrics.Handler())

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%s", a.cfg.Port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			// Start Server
			log.Printf("Starting server on port %s", a.cfg.Port)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("failed to start server: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		log.Printf("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}
