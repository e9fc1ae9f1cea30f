package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateBlanks(t *testing.T) {
	tests := []struct {
		prompt   string
		blanks   int
		required int
	}{
		{"What's that smell?", 0, 1},
		{"I can't stop thinking about %s.", 1, 1},
		{"Why did %s %s?", 2, 2},
		{"%s. %s. %s. The rule of three.", 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.prompt, func(t *testing.T) {
			tmpl := ParseTemplate(Card(tt.prompt))
			assert.Equal(t, tt.blanks, tmpl.Blanks())
			assert.Equal(t, tt.required, tmpl.Required())
		})
	}
}

func TestTemplateFillPositional(t *testing.T) {
	tmpl := ParseTemplate("Why did %s %s?")

	text, err := tmpl.Fill([]Card{"the dog", "bark all night"})
	require.NoError(t, err)
	assert.Equal(t, "Why did the dog bark all night?", text)
}

func TestTemplateFillZeroBlanksIsVerbatim(t *testing.T) {
	tmpl := ParseTemplate("What's that smell?")

	text, err := tmpl.Fill([]Card{"wet cardboard"})
	require.NoError(t, err)
	assert.Equal(t, "wet cardboard", text)
}

func TestTemplateFillCountMismatch(t *testing.T) {
	tmpl := ParseTemplate("Why did %s %s?")

	_, err := tmpl.Fill([]Card{"just one"})
	assert.Error(t, err)
}

func TestTemplateDisplay(t *testing.T) {
	tmpl := ParseTemplate("Why did %s %s?")

	assert.Equal(t, "Why did ____ ____?", tmpl.Display(""))
	assert.Equal(t, "Why did ___ ___?", tmpl.Display("___"))

	noBlanks := ParseTemplate("What's that smell?")
	assert.Equal(t, "What's that smell?", noBlanks.Display(""))
}

func TestTemplateTrailingBlank(t *testing.T) {
	tmpl := ParseTemplate("And the award goes to %s")
	require.Equal(t, 1, tmpl.Blanks())

	text, err := tmpl.Fill([]Card{"nobody"})
	require.NoError(t, err)
	assert.Equal(t, "And the award goes to nobody", text)
}
