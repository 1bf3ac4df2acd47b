// Package textutil provides text helpers for slide titles and output names.
//
// PlainText strips inline Markdown from slide titles for tables and the
// duration report. VideoBaseName and SanitizeFileName keep user supplied
// output names filesystem-safe.
package textutil
