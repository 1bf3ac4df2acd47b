// Package ffmpeg drives the ffmpeg CLI for the four media transforms a build
// needs: prepending silence to narration, normalizing pre-rendered clips to
// the project frame, composing a still slide with its narration, and losslessly
// concatenating the per-slide clips.
//
// Every transform writes to a scratch file next to its destination and renames
// it into place only after ffmpeg exits cleanly, so a failed or interrupted run
// never leaves a truncated artifact under the final name.
package ffmpeg
