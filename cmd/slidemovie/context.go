package main

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"strings"
	"sync"

	"github.com/joho/godotenv"

	"slidemovie/internal/config"
	"slidemovie/internal/history"
	"slidemovie/internal/logging"
)

type commandContext struct {
	configFlag *string
	stdin      io.Reader

	configOnce sync.Once
	config     *config.Config
	sources    config.Sources
	configErr  error

	// runActions executes a parsed invocation. Tests replace it.
	runActions func(ctx context.Context, cc *commandContext, inv invocation, stdout, stderr io.Writer) error
}

func newCommandContext(stdin io.Reader) *commandContext {
	return &commandContext{
		configFlag: new(string),
		stdin:      stdin,
		runActions: executeActions,
	}
}

// ensureConfig loads .env from the working directory, then the layered
// configuration. The result is cached for the process.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			c.configErr = err
			return
		}
		cfg, sources, err := config.Load(strings.TrimSpace(*c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.sources = sources
	})
	return c.config, c.configErr
}

// reportConfigWarnings logs problems that did not stop configuration loading.
func (c *commandContext) reportConfigWarnings(logger *slog.Logger) {
	if c.sources.Created != "" {
		logger.Info("created configuration from sample",
			logging.String(logging.FieldEventType, "config_created"),
			logging.String("path", c.sources.Created),
		)
	}
	for _, warning := range c.sources.Warnings {
		logging.WarnWithContext(logger, "configuration warning", "config_warning",
			logging.String("detail", warning),
			logging.String(logging.FieldImpact, "built-in defaults remain in effect"),
		)
	}
}

// openHistory opens the run history database. History is optional: a failure
// is logged and the build records nothing.
func openHistory(ctx context.Context, cfg *config.Config, logger *slog.Logger) (history.Recorder, func()) {
	path := strings.TrimSpace(cfg.Paths.HistoryDB)
	if path == "" {
		return history.Nop{}, func() {}
	}
	store, err := history.Open(ctx, path)
	if err != nil {
		logging.WarnWithContext(logger, "run history unavailable", "history_unavailable",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check paths.history_db"),
			logging.String(logging.FieldImpact, "this run is not recorded"),
		)
		return history.Nop{}, func() {}
	}
	return store, func() { _ = store.Close() }
}
