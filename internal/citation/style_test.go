package citation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStyle(t *testing.T) {
	for name, want := range map[string]Style{"": StyleHTML, "HTML": StyleHTML, "streamlit": StyleStreamlit, " plain ": StylePlain} {
		got, err := ParseStyle(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseStyle("latex")
	assert.Error(t, err)
}

func TestStyle_Marker(t *testing.T) {
	assert.Equal(t, "<mark>[3]</mark>", StyleHTML.Marker(3))
	assert.Equal(t, ":red-background[[1]]", StyleStreamlit.Marker(1))
	assert.Equal(t, "[12]", StylePlain.Marker(12))
}

func TestFormatCitations(t *testing.T) {
	assert.Equal(t, "No citations found.", FormatCitations(nil))
	assert.Equal(t, "**Citations:**\n\n1. fever\n\n2. cough\n\n", FormatCitations([]string{"fever", "cough"}))
}
