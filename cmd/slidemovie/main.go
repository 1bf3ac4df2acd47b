package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"slidemovie/internal/buildstate"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command tree and maps the outcome to an exit code. An
// operator abort exits 0.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	return execute(ctx, newCommandContext(stdin), args, stdin, stdout, stderr)
}

func execute(ctx context.Context, cc *commandContext, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCommand(cc)
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, buildstate.ErrAborted):
		fmt.Fprintln(stderr, "Aborted; nothing was changed.")
		return 0
	case errors.Is(err, errNoAction):
		return 1
	default:
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(stderr, "Error:", err)
		}
		return 1
	}
}
