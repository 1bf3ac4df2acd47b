// Package fileutil holds small filesystem helpers shared by the build state
// store, the slide source rewriter, and the media stages.
package fileutil
