// Package prompt builds the collaborator prompt and response schema for each
// experimental condition.
package prompt

import (
	"fmt"
	"strings"

	"github.com/ppiankov/dxcite/internal/model"
)

const citationRules = `CITATION RULES:
1. Every citation MUST be copied verbatim from the case description. Do not paraphrase.
2. Keep citations short: a phrase or a single finding, never a whole paragraph.
3. Do not cite anything that is not in the case description.`

// Instructions returns the system instructions for a condition
func Instructions(c model.Condition) string {
	switch c {
	case model.ConditionHypothesisDriven, model.ConditionMultiHypothesis:
		return `You are a clinical reasoning assistant supporting a medical practitioner.
For each diagnostic hypothesis you are given, list the findings in the case description that
support it (evidence_for) and the findings that argue against it (evidence_against).
Each item is a short claim and the citations that back it.
Do not rank the hypotheses and do not suggest new ones.

` + citationRules + `

Respond with JSON only, following the provided schema.`

	case model.ConditionRecommendationsDriven:
		return `You are a clinical reasoning assistant supporting a medical practitioner.
From the diagnostic hypotheses you are given, pick exactly one lead diagnosis and justify it.
In the rationale, reference citations by their 1-based position in the citations array
using square brackets, e.g. "fever [1] and productive cough [2]".
The lead diagnosis must be one of the given hypotheses, spelled exactly as given.

` + citationRules + `

Respond with JSON only, following the provided schema.`

	case model.ConditionDifferential:
		return `You are a clinical reasoning assistant supporting a medical practitioner.
Compare the diagnostic hypotheses you are given. Do not favor one hypothesis over another
and do not recommend a diagnosis: describe what in the case speaks for and against each.
Whenever you rely on the case description, quote it inside <cite></cite> tags,
e.g. "the patient is febrile <cite>temperature of 39.2 °C</cite>".

` + citationRules

	default:
		return ""
	}
}

// BuildPrompt constructs the user prompt embedding the case description and hypotheses.
// Hypotheses are validated first; an invalid table never produces a prompt.
func BuildPrompt(c model.Condition, caseDescription string, hypotheses model.Hypotheses) (string, error) {
	switch c.Format() {
	case model.FormatNone:
		return "", ErrUnassisted
	case model.FormatUnknown:
		return "", fmt.Errorf("%w: %s", ErrUnknownCondition, c)
	}

	if err := Validate(c, hypotheses); err != nil {
		return "", err
	}

	if strings.TrimSpace(caseDescription) == "" {
		return "", ErrEmptyCaseDescription
	}

	considered := model.Considered(c, hypotheses)

	var b strings.Builder
	fmt.Fprintf(&b, "<CASE_DESCRIPTION>%s</CASE_DESCRIPTION>\n\n\n", caseDescription)

	tag := "DIAGNOSTIC_HYPOTHESES"
	if c == model.ConditionHypothesisDriven {
		tag = "DIAGNOSTIC_HYPOTHESIS"
	}
	fmt.Fprintf(&b, "<%s>\n%s\n</%s>\n", tag, strings.Join(considered, "\n"), tag)

	b.WriteString("\n")
	b.WriteString(directive(c, len(considered)))

	return b.String(), nil
}

func directive(c model.Condition, n int) string {
	switch c {
	case model.ConditionHypothesisDriven:
		return "Evaluate the evidence for and against this hypothesis."
	case model.ConditionMultiHypothesis:
		return fmt.Sprintf("Evaluate the evidence for and against each of these %d hypotheses independently.", n)
	case model.ConditionRecommendationsDriven:
		return fmt.Sprintf("Pick exactly one of these %d hypotheses as the lead diagnosis and justify it with bracket-indexed citations.", n)
	case model.ConditionDifferential:
		return fmt.Sprintf("Compare these %d hypotheses without favoring one over another.", n)
	default:
		return ""
	}
}
