package pandoc

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"slidemovie/internal/fileutil"
	"slidemovie/internal/services"
)

// Converter renders source into out. resourcePath is where images referenced
// by the source are looked up.
type Converter interface {
	Convert(ctx context.Context, source, resourcePath, out string) error
}

type commandRunner func(ctx context.Context, name string, args ...string) error

// CLI runs the pandoc binary.
type CLI struct {
	binary string
	run    commandRunner
}

// Option customizes a CLI converter.
type Option func(*CLI)

// WithCommandRunner injects a custom command runner (primarily for tests).
func WithCommandRunner(r func(ctx context.Context, name string, args ...string) error) Option {
	return func(c *CLI) {
		if r != nil {
			c.run = r
		}
	}
}

// New constructs a converter for binary.
func New(binary string, opts ...Option) *CLI {
	c := &CLI{binary: binary, run: defaultCommandRunner}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert implements Converter. Each level one heading becomes a slide. The
// deck is written beside out and renamed into place on success, so a failed
// conversion keeps the previous deck.
func (c *CLI) Convert(ctx context.Context, source, resourcePath, out string) error {
	tmp := fileutil.TempSibling(out)
	_ = fileutil.RemoveIfExists(tmp)
	args := []string{source, "--slide-level=1", "--resource-path=" + resourcePath, "-o", tmp}
	if err := c.run(ctx, c.binary, args...); err != nil {
		_ = fileutil.RemoveIfExists(tmp)
		return services.Wrap(services.ErrExternalTool, "deck", "pandoc", "convert narration to deck", err)
	}
	if err := os.Rename(tmp, out); err != nil {
		_ = fileutil.RemoveIfExists(tmp)
		return fmt.Errorf("replace deck: %w", err)
	}
	return nil
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
