// Demo program showing citation parsing for every condition
// on canned collaborator responses (no network access needed)
package main

import (
	"fmt"
	"strings"

	"github.com/ppiankov/dxcite/internal/citation"
	"github.com/ppiankov/dxcite/internal/model"
)

const caseText = `A 67-year-old woman presents with shortness of breath for two days.
She has a temperature of 38.9 °C, a productive cough with rusty sputum and
crackles over the right lower lobe. She had knee surgery three weeks ago.`

var samples = []struct {
	condition  model.Condition
	hypotheses model.Hypotheses
	response   string
}{
	{
		condition:  model.ConditionControl,
		hypotheses: model.Hypotheses{{Text: "Pneumonia"}},
	},
	{
		condition:  model.ConditionHypothesisDriven,
		hypotheses: model.Hypotheses{{Text: "Pneumonia", Selected: true}, {Text: "Pulmonary embolism"}},
		response: `{"Pneumonia": {
  "evidence_for": [
    {"claim": "Fever", "citations": ["temperature of 38.9 °C"]},
    {"claim": "Focal findings", "citations": ["crackles over the right lower lobe", "rusty sputum"]}
  ],
  "evidence_against": []
}}`,
	},
	{
		condition:  model.ConditionRecommendationsDriven,
		hypotheses: model.Hypotheses{{Text: "Pneumonia"}, {Text: "Pulmonary embolism"}},
		response: `{"lead_diagnosis": "Pneumonia",
 "rationale": "Fever [1] with rusty sputum [2] points to lobar pneumonia; recent surgery [3] keeps embolism on the list.",
 "citations": ["temperature of 38.9 °C", "rusty sputum", "knee surgery three weeks ago"]}`,
	},
	{
		condition:  model.ConditionDifferential,
		hypotheses: model.Hypotheses{{Text: "Pneumonia"}, {Text: "Pulmonary embolism"}},
		response: `Pneumonia is supported by <cite>rusty sputum</cite> and <cite>crackles over the right lower lobe</cite>.
Pulmonary embolism is plausible after <cite>knee surgery three weeks ago</cite>, and both can cause <cite>shortness of breath</cite>.`,
	},
}

func main() {
	fmt.Println("=== Citation Parsing Demo ===")
	fmt.Println()

	for _, s := range samples {
		fmt.Printf("Condition: %s (%s)\n", s.condition.Label(), s.condition.Format())
		fmt.Println(strings.Repeat("-", 60))

		parsed, err := citation.Parse(s.response, s.hypotheses.Texts(), s.hypotheses.Selected(), s.condition, citation.StylePlain)
		if err != nil {
			fmt.Printf("  ✗ %v\n\n", err)
			continue
		}

		fmt.Println(parsed.Message)
		fmt.Println(citation.FormatCitations(parsed.Citations))
		for _, w := range parsed.Warnings {
			fmt.Printf("  ⚠ %s\n", w)
		}
		if len(parsed.Citations) > 0 {
			fmt.Println(citation.AnnotateCase(caseText, parsed.Citations, citation.StylePlain))
		}
		fmt.Println()
	}
}
