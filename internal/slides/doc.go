// Package slides models the narration source: a Markdown file where each
// slide opens with a slide-id marker, optionally names a pre-rendered video,
// carries a level-one title heading, and holds its narration inside a
// "::: notes" block.
//
// Parse is a pure function over the source text. AssignIdentifiers and
// EnsureIdentifiers add missing slide-id markers in front of untagged title
// headings so every slide keeps a stable identity across rebuilds.
package slides
