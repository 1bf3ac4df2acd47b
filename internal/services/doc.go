// Package services defines shared utilities consumed by the pipeline stages
// and the external tool integrations beneath it.
//
// Key responsibilities:
//   - Context helpers that stamp project ids, stage names, slide ids, and run
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures (configuration, validation, tool) without string matching.
//
// Collaborators live in subpackages: tts for speech synthesis, rasterizer for
// deck-to-image conversion, and pandoc for drafting decks from Markdown.
package services
