package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"slidemovie/internal/buildstate"
)

// newConflictResolver asks the operator whether a changed speech synthesis
// configuration should replace the recorded one. Without a terminal the
// build aborts.
func newConflictResolver(in io.Reader, out io.Writer, interactive bool) buildstate.ConflictResolver {
	return func(ctx context.Context, conflict buildstate.TTSConflict) (buildstate.Decision, error) {
		fmt.Fprintln(out, "Speech synthesis settings changed since the recorded audio was generated:")
		for _, change := range conflict.Changes {
			fmt.Fprintf(out, "  %s\n", change)
		}
		fmt.Fprintln(out, "Mixing settings can make narration sound inconsistent across slides.")
		if !interactive {
			fmt.Fprintln(out, "Input is not a terminal; aborting. Rerun interactively or restore the previous settings.")
			return buildstate.Abort, nil
		}

		reader := bufio.NewReader(in)
		for {
			fmt.Fprint(out, "Select action: 1) Continue and record the new settings  2) Abort [1/2]: ")
			line, err := reader.ReadString('\n')
			switch strings.TrimSpace(line) {
			case "1":
				return buildstate.Overwrite, nil
			case "2":
				return buildstate.Abort, nil
			}
			if err != nil {
				fmt.Fprintln(out)
				if errors.Is(err, io.EOF) {
					return buildstate.Abort, nil
				}
				return buildstate.Abort, err
			}
			if err := ctx.Err(); err != nil {
				return buildstate.Abort, err
			}
			fmt.Fprintln(out, "Please enter 1 or 2.")
		}
	}
}

func isInteractive(in io.Reader) bool {
	file, ok := in.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
