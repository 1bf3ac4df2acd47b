// Package main hosts the slidemovie CLI entrypoint and command graph.
//
// The root command takes a project name and the --pptx/--video actions. The
// status, history, doctor, test-notify, and config subcommands inspect a
// project or the environment without building anything. Configuration
// loading, logger setup, and collaborator wiring live here.
package main
