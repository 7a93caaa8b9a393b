package prompt

import (
	"encoding/json"
	"fmt"

	"github.com/ppiankov/dxcite/internal/model"
	"github.com/sashabaranov/go-openai/jsonschema"
)

// Schema is a strict JSON schema constraining a collaborator response
type Schema struct {
	Name       string
	Definition jsonschema.Definition
	Strict     bool
}

// MarshalJSON returns the schema definition itself
func (s *Schema) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Definition)
}

// BuildSchema returns the response schema for a condition, or nil when the
// condition expects free text or no response at all.
func BuildSchema(c model.Condition, hypotheses model.Hypotheses) (*Schema, error) {
	switch c.Format() {
	case model.FormatRecommendation:
		if err := Validate(c, hypotheses); err != nil {
			return nil, err
		}
		return &Schema{
			Name:       "lead_diagnosis_recommendation",
			Definition: recommendationDefinition(),
			Strict:     true,
		}, nil

	case model.FormatHypothesisEvidence:
		if err := Validate(c, hypotheses); err != nil {
			return nil, err
		}
		return &Schema{
			Name:       "hypothesis_evidence",
			Definition: evidenceDefinition(model.Considered(c, hypotheses)),
			Strict:     true,
		}, nil

	case model.FormatFreeText, model.FormatNone:
		return nil, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCondition, c)
	}
}

func recommendationDefinition() jsonschema.Definition {
	return jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"lead_diagnosis": {
				Type:        jsonschema.String,
				Description: "The single recommended lead diagnosis, spelled exactly as one of the given hypotheses",
			},
			"rationale": {
				Type:        jsonschema.String,
				Description: "Justification referencing citations by 1-based position in square brackets, e.g. [1]",
			},
			"citations": {
				Type:        jsonschema.Array,
				Description: "Verbatim excerpts of the case description, in the order referenced",
				Items:       &jsonschema.Definition{Type: jsonschema.String},
			},
		},
		Required:             []string{"lead_diagnosis", "rationale", "citations"},
		AdditionalProperties: false,
	}
}

func evidenceDefinition(hypotheses []string) jsonschema.Definition {
	claims := jsonschema.Definition{
		Type: jsonschema.Array,
		Items: &jsonschema.Definition{
			Type: jsonschema.Object,
			Properties: map[string]jsonschema.Definition{
				"claim": {
					Type:        jsonschema.String,
					Description: "A short statement about the hypothesis",
				},
				"citations": {
					Type:        jsonschema.Array,
					Description: "Verbatim excerpts of the case description backing the claim",
					Items:       &jsonschema.Definition{Type: jsonschema.String},
				},
			},
			Required:             []string{"claim", "citations"},
			AdditionalProperties: false,
		},
	}

	perHypothesis := jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"evidence_for":     claims,
			"evidence_against": claims,
		},
		Required:             []string{"evidence_for", "evidence_against"},
		AdditionalProperties: false,
	}

	properties := make(map[string]jsonschema.Definition, len(hypotheses))
	required := make([]string, 0, len(hypotheses))
	for _, h := range hypotheses {
		if _, dup := properties[h]; dup {
			continue
		}
		def := perHypothesis
		def.Description = "Evidence regarding: " + h
		properties[h] = def
		required = append(required, h)
	}

	return jsonschema.Definition{
		Type:                 jsonschema.Object,
		Properties:           properties,
		Required:             required,
		AdditionalProperties: false,
	}
}
