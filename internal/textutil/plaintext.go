package textutil

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var markdown = goldmark.New()

// blockLead matches prefixes that would turn a title into a list item or
// quote when parsed as a document. They are kept verbatim.
var blockLead = regexp.MustCompile(`^(\d+[.)]|[-+*>])\s+`)

// PlainText renders inline Markdown as plain text, dropping emphasis, code
// and link markup but keeping their text. Titles like "**Intro** to `go`"
// become "Intro to go".
func PlainText(src string) string {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	lead := blockLead.FindString(src)
	source := []byte(src[len(lead):])
	doc := markdown.Parser().Parse(text.NewReader(source))

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Kind() == ast.KindParagraph && n.NextSibling() != nil {
				b.WriteByte(' ')
			}
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(node.Value)
		case *ast.AutoLink:
			b.Write(node.Label(source))
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(lead+b.String()), " ")
}
