// Package preflight runs the startup checks shared by the build command and
// the doctor command: directory access for the source and output root,
// external tool availability, and speech synthesis credentials.
package preflight
