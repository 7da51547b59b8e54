package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/erazemk/taller/internal/db"
	"github.com/erazemk/taller/internal/store"
)

var revisionsCmd = &cobra.Command{
	Use:   "revisions <emp-code>",
	Short: "List the inspections submitted for a company",
	Args:  cobra.ExactArgs(1),
	RunE:  runRevisions,
}

var revisionsDB string

func init() {
	rootCmd.AddCommand(revisionsCmd)
	revisionsCmd.Flags().StringVarP(&revisionsDB, "db", "d", "", "SQLite database path (overrides config)")
}

func runRevisions(cmd *cobra.Command, args []string) error {
	setupQuietLogger()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if revisionsDB != "" {
		cfg.Server.DB = revisionsDB
	}

	database, err := db.Open(cfg.Server.DB)
	if err != nil {
		return err
	}
	defer database.Close()
	if err := db.EnsureSchema(database); err != nil {
		return err
	}

	revisions, err := store.ListRevisions(cmd.Context(), database, args[0])
	if err != nil {
		return err
	}
	if len(revisions) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No revisions.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCITA\tITEMS\tFAILED\tPHOTOS\tSUBMITTED")
	for _, r := range revisions {
		cita := "-"
		if r.CitaCode != 0 {
			cita = fmt.Sprint(r.CitaCode)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n",
			r.ID, cita, r.ItemsTotal, r.ItemsFailed, r.Photos, humanize.Time(r.SubmittedAt))
	}
	return w.Flush()
}
