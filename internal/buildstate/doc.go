// Package buildstate persists what a project has already built.
//
// The state file (status.json) records configuration fingerprints, the deck
// and raster tasks, per-slide audio and video records, and the final movie.
// Stages consult it to decide whether a unit can be skipped and update it
// immediately after each successful unit. A Store holds an advisory lock on
// the project so two runs never interleave their writes.
package buildstate
