package prompt

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/dxcite/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const caseText = "A 64-year-old presents with productive cough and a temperature of 39.2 °C."

func hyps(args ...string) model.Hypotheses {
	out := make(model.Hypotheses, 0, len(args))
	for _, a := range args {
		out = append(out, model.ParseHypothesis(a))
	}
	return out
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		condition model.Condition
		table     model.Hypotheses
		message   string
	}{
		{"hypothesis driven none selected", model.ConditionHypothesisDriven, hyps("Pneumonia", "Bronchitis"), "Please select one hypothesis."},
		{"hypothesis driven two selected", model.ConditionHypothesisDriven, hyps("*Pneumonia", "*Bronchitis"), "Please select only one hypothesis."},
		{"multi one selected", model.ConditionMultiHypothesis, hyps("*Pneumonia", "Bronchitis"), "Please select at least two hypotheses."},
		{"recommendations one", model.ConditionRecommendationsDriven, hyps("Pneumonia"), "Please add at least two hypotheses."},
		{"differential empty", model.ConditionDifferential, nil, "Please add at least two hypotheses."},
		{"blank hypothesis", model.ConditionDifferential, hyps("Pneumonia", "  "), "Please fill in or remove empty hypotheses."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.condition, tt.table)
			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.message, vErr.Message())
			assert.Equal(t, tt.condition, vErr.Condition)
		})
	}
}

func TestValidate_Accepts(t *testing.T) {
	assert.NoError(t, Validate(model.ConditionControl, nil))
	assert.NoError(t, Validate(model.ConditionHypothesisDriven, hyps("*Pneumonia", "Bronchitis")))
	assert.NoError(t, Validate(model.ConditionMultiHypothesis, hyps("*Pneumonia", "*Bronchitis", "Asthma")))
	assert.NoError(t, Validate(model.ConditionRecommendationsDriven, hyps("Pneumonia", "Bronchitis")))
	assert.NoError(t, Validate(model.ConditionDifferential, hyps("*Pneumonia", "Bronchitis")))
}

func TestValidate_UnknownCondition(t *testing.T) {
	err := Validate(model.Condition("placebo"), hyps("a", "b"))
	assert.ErrorIs(t, err, ErrUnknownCondition)
}

func TestBuildPrompt_ValidationComesFirst(t *testing.T) {
	// An empty case would also be an error; the hypothesis table is reported first.
	prompt, err := BuildPrompt(model.ConditionHypothesisDriven, "", hyps("Pneumonia", "Bronchitis"))
	assert.Empty(t, prompt)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "Please select one hypothesis.", vErr.Message())
}

func TestBuildPrompt_Errors(t *testing.T) {
	_, err := BuildPrompt(model.ConditionControl, caseText, nil)
	assert.ErrorIs(t, err, ErrUnassisted)

	_, err = BuildPrompt(model.Condition("placebo"), caseText, hyps("a", "b"))
	assert.ErrorIs(t, err, ErrUnknownCondition)

	_, err = BuildPrompt(model.ConditionDifferential, " \n", hyps("a", "b"))
	assert.ErrorIs(t, err, ErrEmptyCaseDescription)
}

func TestBuildPrompt_HypothesisDriven(t *testing.T) {
	prompt, err := BuildPrompt(model.ConditionHypothesisDriven, caseText, hyps("*Pneumonia", "Bronchitis"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(prompt, "<CASE_DESCRIPTION>"+caseText+"</CASE_DESCRIPTION>"))
	assert.Contains(t, prompt, "<DIAGNOSTIC_HYPOTHESIS>\nPneumonia\n</DIAGNOSTIC_HYPOTHESIS>")
	assert.NotContains(t, prompt, "Bronchitis")
	assert.True(t, strings.HasSuffix(prompt, "Evaluate the evidence for and against this hypothesis."))
}

func TestBuildPrompt_AllHypothesesForComparisons(t *testing.T) {
	for _, c := range []model.Condition{model.ConditionRecommendationsDriven, model.ConditionDifferential} {
		prompt, err := BuildPrompt(c, caseText, hyps("*Pneumonia", "Bronchitis", "Asthma"))
		require.NoError(t, err, c)
		assert.Contains(t, prompt, "<DIAGNOSTIC_HYPOTHESES>\nPneumonia\nBronchitis\nAsthma\n</DIAGNOSTIC_HYPOTHESES>", c)
		assert.Contains(t, prompt, "these 3 hypotheses", c)
	}
}

func TestBuildPrompt_MultiUsesSelected(t *testing.T) {
	prompt, err := BuildPrompt(model.ConditionMultiHypothesis, caseText, hyps("*Pneumonia", "Asthma", "*Bronchitis"))
	require.NoError(t, err)
	assert.Contains(t, prompt, "<DIAGNOSTIC_HYPOTHESES>\nPneumonia\nBronchitis\n</DIAGNOSTIC_HYPOTHESES>")
	assert.Contains(t, prompt, "each of these 2 hypotheses")
}

func TestInstructions(t *testing.T) {
	assert.Empty(t, Instructions(model.ConditionControl))
	assert.Contains(t, Instructions(model.ConditionDifferential), "<cite></cite>")
	assert.Contains(t, Instructions(model.ConditionRecommendationsDriven), "square brackets")
	assert.Contains(t, Instructions(model.ConditionMultiHypothesis), "evidence_against")
}

func TestBuildSchema_Recommendation(t *testing.T) {
	schema, err := BuildSchema(model.ConditionRecommendationsDriven, hyps("Pneumonia", "Bronchitis"))
	require.NoError(t, err)
	require.NotNil(t, schema)

	assert.Equal(t, "lead_diagnosis_recommendation", schema.Name)
	assert.True(t, schema.Strict)
	assert.ElementsMatch(t, []string{"lead_diagnosis", "rationale", "citations"}, schema.Definition.Required)

	raw, err := json.Marshal(schema)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"additionalProperties":false`)
}

func TestBuildSchema_EvidenceKeysPerHypothesis(t *testing.T) {
	schema, err := BuildSchema(model.ConditionMultiHypothesis, hyps("*Pneumonia", "Asthma", "*Bronchitis", "*Pneumonia"))
	require.NoError(t, err)
	require.NotNil(t, schema)

	assert.Equal(t, "hypothesis_evidence", schema.Name)
	assert.Equal(t, []string{"Pneumonia", "Bronchitis"}, schema.Definition.Required)
	assert.Len(t, schema.Definition.Properties, 2)
	assert.NotContains(t, schema.Definition.Properties, "Asthma")

	pneumonia := schema.Definition.Properties["Pneumonia"]
	assert.Equal(t, []string{"evidence_for", "evidence_against"}, pneumonia.Required)
	assert.Equal(t, "Evidence regarding: Pneumonia", pneumonia.Description)
}

func TestBuildSchema_Unstructured(t *testing.T) {
	for _, c := range []model.Condition{model.ConditionControl, model.ConditionDifferential} {
		schema, err := BuildSchema(c, hyps("a", "b"))
		assert.NoError(t, err, c)
		assert.Nil(t, schema, c)
	}

	_, err := BuildSchema(model.Condition("placebo"), nil)
	assert.ErrorIs(t, err, ErrUnknownCondition)
}

func TestBuildSchema_Validates(t *testing.T) {
	schema, err := BuildSchema(model.ConditionHypothesisDriven, hyps("Pneumonia"))
	assert.Nil(t, schema)
	var vErr *ValidationError
	assert.True(t, errors.As(err, &vErr))
}
