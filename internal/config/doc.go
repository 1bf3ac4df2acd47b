// Package config loads, normalizes, and validates slidemovie configuration.
//
// Settings live in TOML. Without an explicit --config path the global file at
// ~/.config/slidemovie/config.toml is read first (created from the embedded
// sample when absent) and a slidemovie.toml in the working directory is
// overlaid on top. Command line overrides are applied once through
// WithOverrides, which returns a fresh value so the configuration handed to
// the pipeline never changes underneath it.
package config
