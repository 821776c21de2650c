package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/gdg-garage/jobquest-api/internal/catalog"
	"github.com/gdg-garage/jobquest-api/internal/config"
	"github.com/spf13/cobra"
)

var catalogJSON bool

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Validate and print the event, level and badge catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		cat, err := catalog.Load(cfg.CatalogPath)
		if err != nil {
			return err
		}

		if catalogJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(catalog.File{
				Events: cat.Events(),
				Levels: cat.Levels(),
				Badges: cat.Badges(),
			})
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "EVENT\tXP\tCATEGORY")
		for _, ev := range cat.Events() {
			fmt.Fprintf(w, "%s\t%d\t%s\n", ev.ID, ev.XPReward, ev.Category)
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, "LEVEL\tXP\tTITLE")
		for _, l := range cat.Levels() {
			fmt.Fprintf(w, "%d\t%d\t%s\n", l.Order, l.RequiredXP, l.Title)
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, "BADGE\tREQUIREMENTS\tNAME")
		for _, b := range cat.Badges() {
			fmt.Fprintf(w, "%s\t%d\t%s\n", b.ID, len(b.Requirements), b.Name)
		}
		return w.Flush()
	},
}

func init() {
	catalogCmd.Flags().BoolVar(&catalogJSON, "json", false, "print the catalog as JSON")
}
