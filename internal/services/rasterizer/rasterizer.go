package rasterizer

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"slidemovie/internal/config"
	"slidemovie/internal/services"
)

const pagePrefix = "slide"

// Rasterizer renders deck into images in workDir, returned in slide order.
// workDir is owned by the caller and may hold other intermediates.
type Rasterizer interface {
	Rasterize(ctx context.Context, deck, workDir string) ([]string, error)
}

type commandRunner func(ctx context.Context, name string, args ...string) error

// CLI shells out to soffice and pdftoppm.
type CLI struct {
	soffice  string
	pdftoppm string
	width    int
	height   int
	run      commandRunner
}

// Option customizes a CLI rasterizer.
type Option func(*CLI)

// WithCommandRunner injects a custom command runner (primarily for tests).
func WithCommandRunner(r func(ctx context.Context, name string, args ...string) error) Option {
	return func(c *CLI) {
		if r != nil {
			c.run = r
		}
	}
}

// New constructs the CLI rasterizer from cfg.
func New(cfg *config.Config, opts ...Option) *CLI {
	c := &CLI{
		soffice:  cfg.Tools.Soffice,
		pdftoppm: cfg.Tools.Pdftoppm,
		width:    cfg.Video.Width,
		height:   cfg.Video.Height,
		run:      defaultCommandRunner,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Rasterize implements Rasterizer. The intermediate PDF and the positional
// slide-N.png pages are both written to workDir.
func (c *CLI) Rasterize(ctx context.Context, deck, workDir string) ([]string, error) {
	if err := c.run(ctx, c.soffice, "--headless", "--convert-to", "pdf", "--outdir", workDir, deck); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "images", "soffice", "convert deck to pdf", err)
	}
	pdf := filepath.Join(workDir, strings.TrimSuffix(filepath.Base(deck), filepath.Ext(deck))+".pdf")
	if _, err := os.Stat(pdf); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "images", "soffice", "no pdf produced", err)
	}

	args := []string{"-png"}
	if c.width > 0 && c.height > 0 {
		args = append(args, "-scale-to-x", strconv.Itoa(c.width), "-scale-to-y", strconv.Itoa(c.height))
	}
	args = append(args, pdf, filepath.Join(workDir, pagePrefix))
	if err := c.run(ctx, c.pdftoppm, args...); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "images", "pdftoppm", "rasterize pdf", err)
	}

	pages, err := Pages(workDir, pagePrefix+"-*.png")
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, services.Wrap(services.ErrExternalTool, "images", "pdftoppm", "no pages rendered", nil)
	}
	return pages, nil
}

// Pages lists files in dir matching pattern ordered by the trailing page
// number, so "slide-10.png" follows "slide-9.png" whatever the zero padding.
func Pages(dir, pattern string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("list rendered pages: %w", err)
	}
	slices.SortFunc(matches, func(a, b string) int {
		if d := pageNumber(a) - pageNumber(b); d != 0 {
			return d
		}
		return strings.Compare(a, b)
	})
	return matches, nil
}

func pageNumber(path string) int {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	idx := strings.LastIndexAny(stem, "-_")
	if idx < 0 {
		return 0
	}
	n, err := strconv.Atoi(stem[idx+1:])
	if err != nil {
		return 0
	}
	return n
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
