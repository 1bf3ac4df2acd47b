package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"slidemovie/internal/buildstate"
	"slidemovie/internal/project"
	"slidemovie/internal/services"
	"slidemovie/internal/textutil"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var sourceDir, sub, outputRoot string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status PROJECT",
		Short: "Show the recorded build state of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			layout, err := project.Resolve(project.Request{
				Name:       args[0],
				SourceDir:  sourceDir,
				Sub:        sub,
				OutputRoot: outputRoot,
				ConfigRoot: cfg.Paths.OutputRoot,
				ReadOnly:   true,
			})
			if err != nil {
				return err
			}
			st, err := buildstate.Read(layout.StateFile)
			if errors.Is(err, os.ErrNotExist) {
				return services.Wrap(services.ErrNotFound, "status", "read state", "no build recorded yet at "+layout.StateFile, nil)
			}
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, st)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderProjectStatus(layout, st, shouldColorize(cmd.OutOrStdout())))
			return nil
		},
	}
	cmd.Flags().StringVarP(&sourceDir, "source-dir", "s", ".", "Directory containing the Markdown source")
	cmd.Flags().StringVar(&sub, "sub", "", "Subproject folder inside the source directory")
	cmd.Flags().StringVarP(&outputRoot, "output-root", "o", "", "Root directory for build artifacts")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw state as JSON")
	return cmd
}

func renderProjectStatus(layout project.Layout, st *buildstate.State, colorize bool) string {
	var b strings.Builder
	b.WriteString(renderSectionHeader("Project "+layout.ProjectID, colorize) + "\n")
	b.WriteString(renderStatusLine("Deck draft", taskKind(st.PPTXTask.Status), st.PPTXTask.SourceFile, colorize) + "\n")
	images := fmt.Sprintf("%s (%d images)", st.ImagesTask.SourceFile, len(st.ImagesTask.Outputs))
	b.WriteString(renderStatusLine("Slide images", taskKind(st.ImagesTask.Status), images, colorize) + "\n")
	final := "not built"
	if st.FinalMovie.Status == buildstate.StatusGenerated {
		final = fmt.Sprintf("%s (%d slides, %.1f min)", st.FinalMovie.FileName, st.FinalMovie.Slides, st.FinalMovie.DurationMin)
	}
	b.WriteString(renderStatusLine("Final video", taskKind(st.FinalMovie.Status), final, colorize) + "\n")

	rows := make([][]string, 0, len(st.Slides))
	for _, id := range st.Slides.OrderedIDs() {
		rec := st.Slides[id]
		audio, video, duration := "-", "-", "-"
		if rec.Audio != nil {
			audio = string(rec.Audio.Status)
		}
		if rec.VideoOverride != "" {
			audio = "pre-rendered"
		}
		if rec.Video != nil {
			video = string(rec.Video.Status)
			if rec.Video.DurationSec > 0 {
				duration = strconv.FormatFloat(rec.Video.DurationSec, 'f', 2, 64)
			}
		}
		index := "-"
		if rec.SlideIndex > 0 {
			index = strconv.Itoa(rec.SlideIndex)
		}
		rows = append(rows, []string{index, id, textutil.PlainText(rec.Title), strconv.Itoa(rec.NotesLength), audio, video, duration})
	}
	if len(rows) > 0 {
		b.WriteString(renderTable([]string{"#", "Slide", "Title", "Notes", "Audio", "Video", "Seconds"}, rows, 0, 3, 6))
		b.WriteString("\n")
	}
	return b.String()
}

func taskKind(status buildstate.Status) statusKind {
	if status == buildstate.StatusGenerated {
		return statusOK
	}
	return statusWarn
}
