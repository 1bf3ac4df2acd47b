package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"slidemovie/internal/history"
	"slidemovie/internal/services"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var runID string
	var limit int

	cmd := &cobra.Command{
		Use:   "history [PROJECT_ID]",
		Short: "List recent runs, or the units of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := strings.TrimSpace(cfg.Paths.HistoryDB)
			if path == "" {
				return services.Wrap(services.ErrConfiguration, "history", "open", "run history is disabled; set paths.history_db", nil)
			}
			store, err := history.Open(cmd.Context(), path)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if strings.TrimSpace(runID) != "" {
				id, err := store.ResolveRunID(cmd.Context(), runID)
				if err != nil {
					return err
				}
				units, err := store.ListUnits(cmd.Context(), id)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, renderSectionHeader("Run "+id, shouldColorize(out)))
				fmt.Fprintln(out, renderUnits(units))
				return nil
			}

			project := ""
			if len(args) == 1 {
				project = args[0]
			}
			runs, err := store.ListRuns(cmd.Context(), project, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded.")
				return nil
			}
			fmt.Fprintln(out, renderRuns(runs))
			return nil
		},
	}
	cmd.Flags().StringVar(&runID, "run", "", "Show the units of the run with this identifier or prefix")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to list (0 for all)")
	return cmd
}

func renderRuns(runs []history.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		elapsed := "-"
		if !run.FinishedAt.IsZero() {
			elapsed = run.FinishedAt.Sub(run.StartedAt).Round(time.Second).String()
		}
		rows = append(rows, []string{
			shortID(run.ID),
			run.ProjectID,
			run.Action,
			string(run.Status),
			strconv.Itoa(run.Generated),
			strconv.Itoa(run.Skipped),
			strconv.Itoa(run.Warnings),
			strconv.Itoa(run.Failed),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			elapsed,
		})
	}
	headers := []string{"Run", "Project", "Action", "Status", "Gen", "Skip", "Warn", "Fail", "Started", "Took"}
	return renderTable(headers, rows, 4, 5, 6, 7)
}

func renderUnits(units []history.Unit) string {
	rows := make([][]string, 0, len(units))
	for _, unit := range units {
		rows = append(rows, []string{
			unit.Stage,
			unit.UnitID,
			string(unit.Outcome),
			unit.Duration.Round(time.Millisecond).String(),
			unit.Detail,
		})
	}
	return renderTable([]string{"Stage", "Unit", "Outcome", "Took", "Detail"}, rows, 3)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
