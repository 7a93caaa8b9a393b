package citation

import (
	"fmt"
	"strings"

	"github.com/ppiankov/dxcite/internal/model"
	"github.com/tidwall/gjson"
)

// evidenceSections are rendered in this order for every hypothesis
var evidenceSections = []struct {
	field   string
	heading string
}{
	{"evidence_for", "Evidence for"},
	{"evidence_against", "Evidence against"},
}

// parseEvidence walks a hypothesis-evidence document: hypothesis keys in
// document order, and within each hypothesis evidence_for then
// evidence_against, so marker numbers rise through the rendered text.
func parseEvidence(doc gjson.Result, considered []string, style Style) (*model.Parsed, error) {
	idx := newIndex()
	var warnings []string
	var b strings.Builder
	var walkErr error

	doc.ForEach(func(key, value gjson.Result) bool {
		hypothesis := key.String()
		path := keyPath("$", hypothesis)

		if !value.IsObject() {
			walkErr = fieldErr(path, "expected object, got "+typeName(value))
			return false
		}
		if len(considered) > 0 && !contains(considered, hypothesis) {
			warnings = append(warnings, fmt.Sprintf("response evaluates %q, which was not among the hypotheses sent", hypothesis))
		}

		for _, section := range evidenceSections {
			if err := writeSection(&b, idx, value, path, hypothesis, section.field, section.heading, style); err != nil {
				walkErr = err
				return false
			}
		}
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}

	if b.Len() == 0 {
		warnings = append(warnings, "response contains no hypotheses")
	}

	return &model.Parsed{
		Citations: idx.list,
		Message:   b.String(),
		Warnings:  warnings,
	}, nil
}

func writeSection(b *strings.Builder, idx *index, hyp gjson.Result, hypPath, hypothesis, field, heading string, style Style) error {
	path := fieldPath(hypPath, field)
	items := hyp.Get(field)
	if !items.Exists() {
		return fieldErr(path, "missing field")
	}
	if !items.IsArray() {
		return fieldErr(path, "expected array, got "+typeName(items))
	}

	fmt.Fprintf(b, "**%s %s**\n\n", heading, hypothesis)

	var itemErr error
	i := 0
	items.ForEach(func(_, item gjson.Result) bool {
		itemErr = writeClaim(b, idx, item, itemPath(path, i), style)
		i++
		return itemErr == nil
	})
	return itemErr
}

func writeClaim(b *strings.Builder, idx *index, item gjson.Result, path string, style Style) error {
	if !item.IsObject() {
		return fieldErr(path, "expected object, got "+typeName(item))
	}

	claim := item.Get("claim")
	if !claim.Exists() {
		return fieldErr(fieldPath(path, "claim"), "missing field")
	}
	if claim.Type != gjson.String {
		return fieldErr(fieldPath(path, "claim"), "expected string, got "+typeName(claim))
	}

	citations := item.Get("citations")
	citationsPath := fieldPath(path, "citations")
	if !citations.Exists() {
		return fieldErr(citationsPath, "missing field")
	}
	if !citations.IsArray() {
		return fieldErr(citationsPath, "expected array, got "+typeName(citations))
	}

	// Validate the whole array before touching the index so a failure cannot
	// leave citations registered without their markers.
	cited := citations.Array()
	for j, c := range cited {
		if c.Type != gjson.String {
			return fieldErr(itemPath(citationsPath, j), "expected string, got "+typeName(c))
		}
	}

	b.WriteString("- ")
	b.WriteString(claim.String())
	for _, c := range cited {
		b.WriteString(" ")
		b.WriteString(style.Marker(idx.add(c.String())))
	}
	b.WriteString("\n\n")
	return nil
}
