package main

import (
	"errors"

	"github.com/spf13/cobra"

	"slidemovie/internal/config"
	"slidemovie/internal/project"
)

// errNoAction is returned after printing help when neither --pptx nor
// --video was given.
var errNoAction = errors.New("no action requested")

type rootFlags struct {
	pptx       bool
	video      bool
	sourceDir  string
	sub        string
	outputRoot string
	filename   string

	ttsProvider string
	ttsModel    string
	ttsVoice    string
	prompt      string
	noPrompt    bool
	debug       bool
}

func newRootCommand(ctx *commandContext) *cobra.Command {
	var flags rootFlags

	rootCmd := &cobra.Command{
		Use:   "slidemovie PROJECT [--pptx] [--video]",
		Short: "Build narrated slide videos from Markdown and a slide deck",
		Long: "slidemovie turns a Markdown narration source and its slide deck into a\n" +
			"narrated video. Only steps whose inputs changed are rebuilt.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || (!flags.pptx && !flags.video) {
				_ = cmd.Help()
				return errNoAction
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			inv, err := flags.invocation(args[0], cfg, cmd.Flags().Changed("prompt"))
			if err != nil {
				return err
			}
			return ctx.runActions(cmd.Context(), ctx, inv, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVarP(ctx.configFlag, "config", "c", "", "Configuration file path")

	f := rootCmd.Flags()
	f.BoolVarP(&flags.pptx, "pptx", "p", false, "Draft the slide deck from the Markdown source")
	f.BoolVarP(&flags.video, "video", "v", false, "Build the narrated video")
	f.StringVarP(&flags.sourceDir, "source-dir", "s", ".", "Directory containing the Markdown source and deck")
	f.StringVar(&flags.sub, "sub", "", "Subproject folder inside the source directory")
	f.StringVarP(&flags.outputRoot, "output-root", "o", "", "Root directory for build artifacts")
	f.StringVarP(&flags.filename, "filename", "f", "", "Final video file name without extension")
	f.StringVar(&flags.ttsProvider, "tts-provider", "", "Speech synthesis provider (google, openai)")
	f.StringVar(&flags.ttsModel, "tts-model", "", "Speech synthesis model")
	f.StringVar(&flags.ttsVoice, "tts-voice", "", "Speech synthesis voice")
	f.StringVar(&flags.prompt, "prompt", "", "Speaking style prompt (enables prompt use)")
	f.BoolVar(&flags.noPrompt, "no-prompt", false, "Disable the speaking style prompt")
	f.BoolVar(&flags.debug, "debug", false, "Verbose logging, per-slide skip lines, and ffmpeg output")

	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newDoctorCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newTestNotifyCommand(ctx))

	return rootCmd
}

// invocation applies the command line overrides to cfg and describes the
// requested actions.
func (f rootFlags) invocation(name string, cfg *config.Config, promptSet bool) (invocation, error) {
	overrides := config.Overrides{
		OutputRoot:  f.outputRoot,
		TTSProvider: f.ttsProvider,
		TTSModel:    f.ttsModel,
		TTSVoice:    f.ttsVoice,
		NoPrompt:    f.noPrompt,
		Debug:       f.debug,
	}
	if promptSet {
		prompt := f.prompt
		overrides.Prompt = &prompt
	}
	effective, err := cfg.WithOverrides(overrides)
	if err != nil {
		return invocation{}, err
	}
	return invocation{
		Config: effective,
		Request: project.Request{
			Name:       name,
			SourceDir:  f.sourceDir,
			Sub:        f.sub,
			OutputRoot: f.outputRoot,
			ConfigRoot: effective.Paths.OutputRoot,
			Filename:   f.filename,
		},
		Draft: f.pptx,
		Build: f.video,
	}, nil
}
