package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"slidemovie/internal/config"
	"slidemovie/internal/fileutil"
)

type commandRunner func(ctx context.Context, name string, args ...string) error

// Transcoder runs ffmpeg with the project's encoding settings.
type Transcoder struct {
	binary   string
	logLevel string
	video    config.Video
	audio    config.Audio
	run      commandRunner
}

// Option customizes a Transcoder.
type Option func(*Transcoder)

// WithCommandRunner injects a custom command runner (primarily for tests).
func WithCommandRunner(r func(ctx context.Context, name string, args ...string) error) Option {
	return func(t *Transcoder) {
		if r != nil {
			t.run = r
		}
	}
}

// New constructs a Transcoder from cfg.
func New(cfg *config.Config, opts ...Option) *Transcoder {
	t := &Transcoder{
		binary:   cfg.Tools.FFmpeg,
		logLevel: cfg.Tools.FFmpegLogLevel,
		video:    cfg.Video,
		audio:    cfg.Audio,
		run:      defaultCommandRunner,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// PrependSilence rewrites the WAV at path with seconds of silence in front of
// it. Non-positive durations leave the file untouched.
func (t *Transcoder) PrependSilence(ctx context.Context, path string, seconds float64) error {
	if seconds <= 0 {
		return nil
	}
	return t.produce(ctx, path, func(tmp string) []string {
		return t.base(
			"-f", "lavfi",
			"-t", formatSeconds(seconds),
			"-i", fmt.Sprintf("anullsrc=r=%d:cl=mono", t.audio.SampleRate),
			"-i", path,
			"-filter_complex", "[0:a][1:a]concat=n=2:v=0:a=1",
			tmp,
		)
	})
}

// NormalizeVideo scales src into the project frame while preserving aspect
// ratio, pads the remainder, and re-encodes it to the project codecs. Clips
// without an audio track get a silent one so concatenation stays stream
// compatible.
func (t *Transcoder) NormalizeVideo(ctx context.Context, src, dst string, hasAudio bool) error {
	return t.produce(ctx, dst, func(tmp string) []string {
		args := t.base("-i", src)
		if !hasAudio {
			args = append(args,
				"-f", "lavfi",
				"-i", fmt.Sprintf("anullsrc=r=%d:cl=%s", t.audio.SampleRate, channelLayout(t.audio.Channels)),
				"-map", "0:v:0", "-map", "1:a:0", "-shortest",
			)
		}
		args = append(args, "-vf", t.fitFilter())
		args = append(args, t.videoArgs()...)
		args = append(args, t.audioArgs()...)
		return append(args, tmp)
	})
}

// ComposeStill renders image for the duration of the narration track.
func (t *Transcoder) ComposeStill(ctx context.Context, image, narration, dst string) error {
	return t.produce(ctx, dst, func(tmp string) []string {
		args := t.base("-loop", "1", "-i", image, "-i", narration, "-vf", t.fitFilter())
		args = append(args, t.videoArgs()...)
		if supportsStillTune(t.video.Codec) {
			args = append(args, "-tune", "stillimage")
		}
		args = append(args, t.audioArgs()...)
		return append(args, "-shortest", tmp)
	})
}

// Concat joins inputs, in order, into dst without re-encoding. The concat
// manifest is written to manifestPath and kept for inspection.
func (t *Transcoder) Concat(ctx context.Context, inputs []string, manifestPath, dst string) error {
	if len(inputs) == 0 {
		return errors.New("ffmpeg concat: no inputs")
	}
	manifest, err := Manifest(inputs)
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(manifestPath, []byte(manifest), 0o644); err != nil {
		return fmt.Errorf("write concat manifest: %w", err)
	}
	return t.produce(ctx, dst, func(tmp string) []string {
		return t.base("-f", "concat", "-safe", "0", "-i", manifestPath, "-c", "copy", tmp)
	})
}

// Manifest renders the concat demuxer list for inputs. Paths are made
// absolute and single quotes escaped.
func Manifest(inputs []string) (string, error) {
	var b strings.Builder
	for _, input := range inputs {
		abs, err := filepath.Abs(input)
		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", input, err)
		}
		b.WriteString("file '")
		b.WriteString(strings.ReplaceAll(abs, "'", `'\''`))
		b.WriteString("'\n")
	}
	return b.String(), nil
}

func (t *Transcoder) produce(ctx context.Context, dst string, build func(tmp string) []string) error {
	tmp := fileutil.TempSibling(dst)
	_ = fileutil.RemoveIfExists(tmp)
	if err := t.run(ctx, t.binary, build(tmp)...); err != nil {
		_ = fileutil.RemoveIfExists(tmp)
		return fmt.Errorf("ffmpeg %s: %w", filepath.Base(dst), err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = fileutil.RemoveIfExists(tmp)
		return fmt.Errorf("ffmpeg %s: replace output: %w", filepath.Base(dst), err)
	}
	return nil
}

func (t *Transcoder) base(args ...string) []string {
	return append([]string{"-y", "-hide_banner", "-v", t.logLevel}, args...)
}

func (t *Transcoder) fitFilter() string {
	w, h := t.video.Width, t.video.Height
	return fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1", w, h, w, h)
}

func (t *Transcoder) videoArgs() []string {
	return []string{
		"-c:v", t.video.Codec,
		"-pix_fmt", t.video.PixelFormat,
		"-r", strconv.Itoa(t.video.FPS),
		"-video_track_timescale", strconv.Itoa(t.video.Timescale),
	}
}

func (t *Transcoder) audioArgs() []string {
	return []string{
		"-c:a", t.audio.Codec,
		"-ar", strconv.Itoa(t.audio.SampleRate),
		"-ac", strconv.Itoa(t.audio.Channels),
		"-b:a", t.audio.Bitrate,
	}
}

func supportsStillTune(codec string) bool {
	switch strings.ToLower(codec) {
	case "libx264", "libx265":
		return true
	default:
		return false
	}
}

func channelLayout(channels int) string {
	switch channels {
	case 1:
		return "mono"
	case 2:
		return "stereo"
	default:
		return strconv.Itoa(channels) + "c"
	}
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', -1, 64)
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
