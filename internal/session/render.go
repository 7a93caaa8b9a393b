package session

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/ppiankov/dxcite/internal/citation"
	"github.com/ppiankov/dxcite/internal/model"
)

// Markdown lays out one interaction: the highlighted case, the annotated
// message and the numbered citations.
func Markdown(title string, entry *model.AIHelp) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	if entry.AnnotatedCase != "" {
		b.WriteString("## Case\n\n")
		b.WriteString(entry.AnnotatedCase)
		b.WriteString("\n\n")
	}
	b.WriteString("## AI assistance\n\n")
	b.WriteString(entry.ParsedMessage)
	if !strings.HasSuffix(entry.ParsedMessage, "\n\n") {
		b.WriteString("\n\n")
	}
	b.WriteString(citation.FormatCitations(entry.Citations))
	return b.String()
}

// markTag matches the bare highlight tags citation markers are made of
var markTag = regexp.MustCompile(`(?i)</?mark>`)

// RenderHTML converts annotated Markdown to a standalone HTML page. Bare
// <mark> highlight tags are kept; every other tag is escaped and unsafe
// link targets are not linked.
func RenderHTML(title, md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	r := html.NewRenderer(html.RendererOptions{
		Title: title,
		Flags: html.CommonFlags | html.CompletePage | html.Safelink,
	})
	return markdown.ToHTML([]byte(escapeTags(md)), p, r)
}

// escapeTags escapes every "<" outside the highlight tags, so no raw HTML
// from case text or collaborator output reaches the page
func escapeTags(md string) string {
	var b strings.Builder
	last := 0
	for _, m := range markTag.FindAllStringIndex(md, -1) {
		b.WriteString(strings.ReplaceAll(md[last:m[0]], "<", "&lt;"))
		b.WriteString(strings.ToLower(md[m[0]:m[1]]))
		last = m[1]
	}
	b.WriteString(strings.ReplaceAll(md[last:], "<", "&lt;"))
	return b.String()
}
