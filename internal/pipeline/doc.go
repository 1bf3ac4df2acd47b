// Package pipeline runs the build stages of a slide project.
//
// Build walks audio, images, per-slide video, and final concatenation in that
// order, then writes the duration report. Every unit passes the same gate: it
// is skipped only when its recorded status is generated, the recorded input
// fingerprints equal the current ones, and the expected output exists. Units
// that regenerate update the state file immediately, so an interrupted build
// resumes where it stopped. DraftDeck is the separate action that drafts the
// slide deck from the narration source.
package pipeline
