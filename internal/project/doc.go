// Package project resolves where a slide project's sources live and where its
// artifacts are written.
//
// A flat project keeps its narration and deck directly in the source
// directory. A nested project lives in a child folder of the source directory
// and gets a "parent-child" identifier plus a two level artifact directory.
package project
