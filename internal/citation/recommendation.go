package citation

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/ppiankov/dxcite/internal/model"
	"github.com/tidwall/gjson"
)

// referencePattern matches bracketed citation references such as [2]
var referencePattern = regexp.MustCompile(`\[(\d+)\]`)

// parseRecommendation renders the lead diagnosis and rationale. Bracket
// references in the rationale point at positions in the citations array and
// are re-rendered against the deduplicated list; references past the end
// become [?n].
func parseRecommendation(doc gjson.Result, hypotheses []string, style Style) (*model.Parsed, error) {
	lead, err := requireString(doc, "lead_diagnosis")
	if err != nil {
		return nil, err
	}
	rationale, err := requireString(doc, "rationale")
	if err != nil {
		return nil, err
	}

	citations := doc.Get("citations")
	if !citations.Exists() {
		return nil, fieldErr("$.citations", "missing field")
	}
	if !citations.IsArray() {
		return nil, fieldErr("$.citations", "expected array, got "+typeName(citations))
	}

	idx := newIndex()
	cited := citations.Array()
	positions := make([]int, len(cited))
	for i, c := range cited {
		if c.Type != gjson.String {
			return nil, fieldErr(itemPath("$.citations", i), "expected string, got "+typeName(c))
		}
		positions[i] = idx.add(c.String())
	}

	var warnings []string
	if len(hypotheses) > 0 && !contains(hypotheses, lead) {
		warnings = append(warnings, fmt.Sprintf("lead diagnosis %q is not one of the hypotheses sent", lead))
	}

	annotated := referencePattern.ReplaceAllStringFunc(rationale, func(ref string) string {
		n, err := strconv.Atoi(ref[1 : len(ref)-1])
		if err != nil || n < 1 || n > len(positions) {
			warnings = append(warnings, fmt.Sprintf("rationale references %s but only %d citations were returned", ref, len(positions)))
			return danglingReference(ref)
		}
		return style.Marker(positions[n-1])
	})

	message := fmt.Sprintf("Recommended lead diagnosis: **%s**\n\n**Rationale:** %s\n\n", lead, annotated)

	return &model.Parsed{
		Citations: idx.list,
		Message:   message,
		Warnings:  warnings,
	}, nil
}

// danglingReference rewrites an unresolvable [n] as [?n] so it can never be
// read as a marker
func danglingReference(ref string) string {
	return "[?" + ref[1:]
}

func requireString(doc gjson.Result, field string) (string, error) {
	path := fieldPath("$", field)
	v := doc.Get(field)
	if !v.Exists() {
		return "", fieldErr(path, "missing field")
	}
	if v.Type != gjson.String {
		return "", fieldErr(path, "expected string, got "+typeName(v))
	}
	return v.String(), nil
}
