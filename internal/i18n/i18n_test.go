package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want language.Tag
	}{
		{"en", language.English},
		{"en-US", language.English},
		{"pt", language.BrazilianPortuguese},
		{"pt-BR", language.BrazilianPortuguese},
		{"pt-PT", language.BrazilianPortuguese},
		{"fr", language.English},  // unsupported falls back
		{"", language.English},
		{"garbage!!", language.English},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Match(tt.in))
		})
	}
}

func TestT(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Company", T(language.English, "export.columns.company"))
	assert.Equal(t, "Empresa", T(language.BrazilianPortuguese, "export.columns.company"))
	assert.Equal(t, "Email inválido", T(language.BrazilianPortuguese, "validate.invalid_email"))

	// Unsupported languages fall back to English.
	assert.Equal(t, "Company", T(language.French, "export.columns.company"))

	// Missing keys stay visible.
	assert.Equal(t, "no.such.key", T(language.English, "no.such.key"))
}
