package model

import (
	"fmt"
	"strings"
)

// Hypothesis is a candidate diagnosis entered by the clinician
type Hypothesis struct {
	Text     string `json:"hypothesis" yaml:"hypothesis"` // Exact, case-sensitive text
	Selected bool   `json:"selected" yaml:"selected"`     // Only meaningful for evaluation conditions
}

// Hypotheses is the ordered hypothesis table for one case
type Hypotheses []Hypothesis

// Texts returns the text of every hypothesis in input order
func (h Hypotheses) Texts() []string {
	texts := make([]string, 0, len(h))
	for _, hyp := range h {
		texts = append(texts, hyp.Text)
	}
	return texts
}

// Selected returns the text of the selected hypotheses in input order
func (h Hypotheses) Selected() []string {
	texts := make([]string, 0, len(h))
	for _, hyp := range h {
		if hyp.Selected {
			texts = append(texts, hyp.Text)
		}
	}
	return texts
}

// ParseHypothesis parses a CLI hypothesis argument.
// A leading "*" marks the hypothesis as selected (e.g. "*Pneumonia").
func ParseHypothesis(arg string) Hypothesis {
	arg = strings.TrimSpace(arg)
	if strings.HasPrefix(arg, "*") {
		return Hypothesis{Text: strings.TrimSpace(arg[1:]), Selected: true}
	}
	return Hypothesis{Text: arg}
}

// Condition is the experimental arm a participant is assigned to
type Condition string

const (
	ConditionControl               Condition = "control"                // No AI help
	ConditionHypothesisDriven      Condition = "hypothesis_driven"      // Evidence for/against one selected hypothesis
	ConditionMultiHypothesis       Condition = "multi_hypothesis"       // Evidence for/against several selected hypotheses
	ConditionRecommendationsDriven Condition = "recommendations_driven" // One recommended lead diagnosis
	ConditionDifferential          Condition = "differential"           // Neutral free-text comparison
)

// Conditions lists every known condition
var Conditions = []Condition{
	ConditionControl,
	ConditionHypothesisDriven,
	ConditionMultiHypothesis,
	ConditionRecommendationsDriven,
	ConditionDifferential,
}

// ParseCondition resolves a condition name (case-insensitive)
func ParseCondition(name string) (Condition, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	for _, c := range Conditions {
		if string(c) == normalized {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown condition: %s (supported: %s)", name, joinConditions())
}

func joinConditions() string {
	names := make([]string, len(Conditions))
	for i, c := range Conditions {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// Format returns the response envelope the collaborator produces for this condition
func (c Condition) Format() Format {
	switch c {
	case ConditionControl:
		return FormatNone
	case ConditionHypothesisDriven, ConditionMultiHypothesis:
		return FormatHypothesisEvidence
	case ConditionRecommendationsDriven:
		return FormatRecommendation
	case ConditionDifferential:
		return FormatFreeText
	default:
		return FormatUnknown
	}
}

// Label returns the display name of the condition
func (c Condition) Label() string {
	switch c {
	case ConditionControl:
		return "Control"
	case ConditionHypothesisDriven:
		return "Hypothesis-driven AI"
	case ConditionMultiHypothesis:
		return "Multi-hypothesis AI"
	case ConditionRecommendationsDriven:
		return "Recommendations-driven AI"
	case ConditionDifferential:
		return "Differential AI"
	default:
		return string(c)
	}
}

// Format is the shape of a collaborator response
type Format int

const (
	FormatUnknown            Format = iota
	FormatNone                      // No response expected
	FormatFreeText                  // Text with inline <cite> markers
	FormatHypothesisEvidence        // JSON: evidence_for / evidence_against per hypothesis
	FormatRecommendation            // JSON: lead_diagnosis, rationale, citations
)

func (f Format) String() string {
	switch f {
	case FormatNone:
		return "none"
	case FormatFreeText:
		return "free_text"
	case FormatHypothesisEvidence:
		return "hypothesis_evidence"
	case FormatRecommendation:
		return "recommendation"
	default:
		return "unknown"
	}
}

// Structured reports whether the format is a schema-constrained JSON document
func (f Format) Structured() bool {
	return f == FormatHypothesisEvidence || f == FormatRecommendation
}

// Considered returns the hypotheses sent to the collaborator for a condition:
// the selected ones for evaluation conditions, all of them otherwise.
func Considered(c Condition, h Hypotheses) []string {
	if c.Format() == FormatHypothesisEvidence {
		return h.Selected()
	}
	return h.Texts()
}
