package citation

import (
	"regexp"
	"strings"
)

// asciiPunctuation is trimmed from both ends of a citation before matching
const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// segment is a run of case text that is either untouched or already highlighted
type segment struct {
	text  string
	index int // 0 for plain text, otherwise the 1-based citation index
}

// AnnotateCase highlights every case-insensitive occurrence of each citation
// in the case description. Citations are applied in list order and never
// re-annotate text an earlier citation already wrapped. Citations that do not
// occur in the text are skipped.
func AnnotateCase(caseDescription string, citations []string, style Style) string {
	if len(citations) == 0 {
		return caseDescription
	}

	segments := []segment{{text: caseDescription}}
	for i, c := range citations {
		needle := normalizeCitation(c)
		if needle == "" {
			continue
		}
		pattern, err := regexp.Compile("(?i)" + regexp.QuoteMeta(needle))
		if err != nil {
			// invalid UTF-8 cannot occur in the case text anyway
			continue
		}
		segments = annotateSegments(segments, pattern, i+1)
	}

	var b strings.Builder
	for _, s := range segments {
		if s.index == 0 {
			b.WriteString(s.text)
			continue
		}
		b.WriteString(style.Wrap(s.text, s.index))
	}
	return b.String()
}

func annotateSegments(segments []segment, pattern *regexp.Regexp, citationIndex int) []segment {
	out := make([]segment, 0, len(segments))
	for _, s := range segments {
		if s.index != 0 {
			out = append(out, s)
			continue
		}
		matches := pattern.FindAllStringIndex(s.text, -1)
		if len(matches) == 0 {
			out = append(out, s)
			continue
		}
		last := 0
		for _, m := range matches {
			if m[0] > last {
				out = append(out, segment{text: s.text[last:m[0]]})
			}
			out = append(out, segment{text: s.text[m[0]:m[1]], index: citationIndex})
			last = m[1]
		}
		if last < len(s.text) {
			out = append(out, segment{text: s.text[last:]})
		}
	}
	return out
}

func normalizeCitation(c string) string {
	c = strings.TrimSpace(c)
	c = strings.Trim(c, asciiPunctuation)
	return strings.TrimSpace(c)
}
