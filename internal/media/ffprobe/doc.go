// Package ffprobe wraps the ffprobe CLI.
//
// Prober.Inspect decodes ffprobe's JSON into a Result; Duration is the helper
// used to record narration and clip lengths in the build state.
package ffprobe
