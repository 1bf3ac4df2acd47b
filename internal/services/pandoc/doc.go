// Package pandoc drafts a slide deck from the narration Markdown.
package pandoc
