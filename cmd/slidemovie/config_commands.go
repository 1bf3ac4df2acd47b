package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"slidemovie/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Create or check the configuration file",
	}
	configCmd.AddCommand(newConfigInitCommand(), newConfigValidateCommand(ctx))
	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the sample configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := initTarget(targetPath)
			if err != nil {
				return err
			}
			if err := writeSample(target, overwrite); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set tts.api_key (or export GEMINI_API_KEY) before building a video.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination (default ~/.config/slidemovie/config.toml)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

func initTarget(flagValue string) (string, error) {
	var (
		target string
		err    error
	)
	if v := strings.TrimSpace(flagValue); v != "" {
		target, err = config.ExpandPath(v)
	} else {
		target, err = config.DefaultConfigPath()
	}
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return target, nil
}

func writeSample(target string, overwrite bool) error {
	if !overwrite {
		_, err := os.Stat(target)
		switch {
		case err == nil:
			return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
		case !errors.Is(err, fs.ErrNotExist):
			return fmt.Errorf("check config path: %w", err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := config.CreateSample(target); err != nil {
		return fmt.Errorf("create sample config: %w", err)
	}
	return nil
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load the configuration and print the effective settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(ctx.sources.Files) == 0 {
				fmt.Fprintln(out, "No config file found; defaults were used")
			}
			for _, file := range ctx.sources.Files {
				fmt.Fprintf(out, "Config file: %s\n", file)
			}
			for _, warning := range ctx.sources.Warnings {
				fmt.Fprintf(out, "Warning: %s\n", warning)
			}
			printEffective(out, cfg)
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func printEffective(w io.Writer, cfg *config.Config) {
	orNone := func(v string) string {
		if v == "" {
			return "(none)"
		}
		return v
	}
	rows := [][]string{
		{"TTS", fmt.Sprintf("%s %s voice=%s", cfg.TTS.Provider, cfg.TTS.Model, cfg.TTS.Voice)},
		{"Video", fmt.Sprintf("%dx%d @ %d fps, %s", cfg.Video.Width, cfg.Video.Height, cfg.Video.FPS, cfg.Video.Codec)},
		{"Output root", orNone(cfg.Paths.OutputRoot)},
		{"History", orNone(cfg.Paths.HistoryDB)},
		{"Notifications", orNone(cfg.Notifications.NtfyTopic)},
	}
	fmt.Fprint(w, renderTable([]string{"Setting", "Value"}, rows)+"\n")
}
