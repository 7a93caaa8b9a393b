package citation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnnotateCase_Basic(t *testing.T) {
	got := AnnotateCase("The patient has a fever.", []string{"fever"}, StyleHTML)
	assert.Equal(t, "The patient has a <mark>fever [1]</mark>.", got)
}

func TestAnnotateCase_CaseInsensitive(t *testing.T) {
	got := AnnotateCase("Fever since Monday. No fever today?", []string{"fever"}, StylePlain)
	assert.Equal(t, "Fever [1] since Monday. No fever [1] today?", got)
}

func TestAnnotateCase_PreservesCasing(t *testing.T) {
	got := AnnotateCase("Productive Cough.", []string{"productive cough"}, StyleHTML)
	assert.Equal(t, "<mark>Productive Cough [1]</mark>.", got)
}

func TestAnnotateCase_NoCitations(t *testing.T) {
	text := "Nothing cited."
	assert.Equal(t, text, AnnotateCase(text, nil, StyleHTML))
	assert.Equal(t, text, AnnotateCase(text, []string{"absent"}, StyleHTML))
}

func TestAnnotateCase_OverlapKeepsFirst(t *testing.T) {
	text := "Temperature of 39.2 °C measured."
	got := AnnotateCase(text, []string{"temperature of 39.2 °C", "39.2"}, StylePlain)
	assert.Equal(t, "Temperature of 39.2 °C [1] measured.", got)
}

func TestAnnotateCase_TrimsPunctuation(t *testing.T) {
	got := AnnotateCase("Cough, fever and chills.", []string{" fever and chills. ", `"cough"`}, StylePlain)
	assert.Equal(t, "Cough [2], fever and chills [1].", got)
}

func TestAnnotateCase_RegexCharactersAreLiteral(t *testing.T) {
	got := AnnotateCase("CRP (mg/L) 120+ today", []string{"(mg/L) 120+"}, StylePlain)
	assert.Equal(t, "CRP (mg/L) 120 [1]+ today", got)
}

func TestAnnotateCase_StreamlitStyle(t *testing.T) {
	got := AnnotateCase("has fever", []string{"fever"}, StyleStreamlit)
	assert.Equal(t, "has :red-background[fever [1]]", got)
}

func TestAnnotateCase_InvalidUTF8CitationIsSkipped(t *testing.T) {
	text := "Fever and cough."
	got := AnnotateCase(text, []string{"\xff\xfe", "cough"}, StylePlain)
	assert.Equal(t, "Fever and cough [2].", got)
}
