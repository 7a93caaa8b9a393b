package citation

import (
	"fmt"
	"strconv"
	"strings"
)

// Style controls how citation markers are highlighted in rendered text
type Style struct {
	Name  string
	Open  string
	Close string
}

var (
	// StyleHTML highlights markers with <mark>, which Markdown renderers pass through
	StyleHTML = Style{Name: "html", Open: "<mark>", Close: "</mark>"}

	// StyleStreamlit uses Streamlit's colored background directive
	StyleStreamlit = Style{Name: "streamlit", Open: ":red-background[", Close: "]"}

	// StylePlain emits bare bracket markers
	StylePlain = Style{Name: "plain"}
)

// ParseStyle resolves a marker style by name
func ParseStyle(name string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "html":
		return StyleHTML, nil
	case "streamlit":
		return StyleStreamlit, nil
	case "plain":
		return StylePlain, nil
	default:
		return Style{}, fmt.Errorf("unknown marker style: %s (supported: html, streamlit, plain)", name)
	}
}

// Marker renders the highlighted bracket marker for a 1-based citation index
func (s Style) Marker(index int) string {
	return s.Open + "[" + strconv.Itoa(index) + "]" + s.Close
}

// Wrap highlights a quoted passage and appends its marker
func (s Style) Wrap(text string, index int) string {
	return s.Open + text + " [" + strconv.Itoa(index) + "]" + s.Close
}

// FormatCitations renders the numbered citation list shown under a response
func FormatCitations(citations []string) string {
	if len(citations) == 0 {
		return "No citations found."
	}
	var b strings.Builder
	b.WriteString("**Citations:**\n\n")
	for i, c := range citations {
		fmt.Fprintf(&b, "%d. %s\n\n", i+1, c)
	}
	return b.String()
}
