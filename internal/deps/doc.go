// Package deps checks that the external binaries slidemovie shells out to are
// installed. Missing required tools are fatal before any stage runs.
package deps
