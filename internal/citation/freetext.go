package citation

import (
	"regexp"
	"strings"

	"github.com/ppiankov/dxcite/internal/model"
)

// citeTag matches one inline <cite>…</cite> quote. Unterminated tags do not
// match and pass through unchanged.
var citeTag = regexp.MustCompile(`(?is)<cite>(.*?)</cite>`)

// parseFreeText replaces every inline quote with a marker in a single
// left-to-right pass.
func parseFreeText(response string, style Style) *model.Parsed {
	idx := newIndex()

	var b strings.Builder
	last := 0
	for _, m := range citeTag.FindAllStringSubmatchIndex(response, -1) {
		quote := strings.TrimSpace(response[m[2]:m[3]])
		if quote == "" {
			continue
		}
		b.WriteString(response[last:m[0]])
		b.WriteString(style.Marker(idx.add(quote)))
		last = m[1]
	}
	b.WriteString(response[last:])

	return &model.Parsed{
		Citations: idx.list,
		Message:   b.String(),
	}
}
