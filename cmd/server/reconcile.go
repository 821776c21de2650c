package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/gdg-garage/jobquest-api/internal/gamification"
	"github.com/spf13/cobra"
)

var (
	reconcileUserID uint
	reconcileAll    bool
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Rebuild cached XP, badges and level from the event log",
	Long: `Recomputes each user's XP from the event occurrence log, awards badges
the log satisfies but that are missing, and advances levels that trail the XP.
Levels are never lowered and no notifications are sent.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if reconcileAll == (reconcileUserID != 0) {
			return errors.New("specify exactly one of --user or --all")
		}

		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		var results []*gamification.ReconcileResult
		if reconcileAll {
			results, err = a.engine.ReconcileAll(cmd.Context())
		} else {
			var res *gamification.ReconcileResult
			res, err = a.engine.Reconcile(cmd.Context(), reconcileUserID)
			if res != nil {
				results = append(results, res)
			}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(results); encErr != nil {
			return fmt.Errorf("encoding results: %w", encErr)
		}
		return err
	},
}

func init() {
	reconcileCmd.Flags().UintVar(&reconcileUserID, "user", 0, "reconcile a single user id")
	reconcileCmd.Flags().BoolVar(&reconcileAll, "all", false, "reconcile every user")
}
