package exporter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		searchTerm   string
		statusFilter string
		want         string
	}{
		{"no filters", "", "all", "leads"},
		{"empty status", "", "", "leads"},
		{"search sanitized", "a b!", "all", "leads_busca-a-b-"},
		{"status lowercased", "", "New", "leads_status-new"},
		{"both filters", "tech corp", "Qualified", "leads_busca-tech-corp_status-qualified"},
		{"accents replaced", "ação", "all", "leads_busca-a--o"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Filename(tt.searchTerm, tt.statusFilter))
		})
	}
}

func TestFormatCurrency(t *testing.T) {
	t.Parallel()

	en := FormatCurrency(25000, language.English)
	assert.Contains(t, en, "$")
	assert.NotContains(t, en, "R$")

	pt := FormatCurrency(25000, language.BrazilianPortuguese)
	assert.Contains(t, pt, "R$")
}
