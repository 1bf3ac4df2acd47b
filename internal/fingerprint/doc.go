// Package fingerprint computes the content digests used for change detection.
//
// Every digest is rendered as "sha256:<hex>" so stored values are
// self-describing. Sequence digests fold an ordered list of files into one
// value and encode missing members as explicit tokens, which keeps the digest
// of a partially built project stable across runs.
package fingerprint
