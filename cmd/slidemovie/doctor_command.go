package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"slidemovie/internal/config"
	"slidemovie/internal/preflight"
	"slidemovie/internal/services"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var sourceDir string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools, credentials, and directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			source, err := config.ExpandPath(sourceDir)
			if err != nil {
				return err
			}
			results := preflight.RunAll(cfg, preflight.Targets{SourceDir: source, OutputRoot: cfg.Paths.OutputRoot})

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, renderSectionHeader("Environment", colorize))
			for _, result := range results {
				kind := statusOK
				if !result.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}
			if failed := preflight.Failed(results); len(failed) > 0 {
				return services.Wrap(services.ErrConfiguration, "doctor", "", fmt.Sprintf("%d check(s) failed", len(failed)), nil)
			}
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}
	cmd.Flags().StringVarP(&sourceDir, "source-dir", "s", ".", "Source directory to check")
	return cmd
}
