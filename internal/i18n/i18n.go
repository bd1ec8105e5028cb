// Package i18n holds the small English/Portuguese message catalog used for
// export column headers and user-facing validation text.
package i18n

import "golang.org/x/text/language"

var supported = []language.Tag{
	language.English,             // fallback
	language.BrazilianPortuguese, // pt
}

var matcher = language.NewMatcher(supported)

// Match resolves a BCP 47 tag (or loose value like "pt") to one of the
// supported languages, defaulting to English.
func Match(lang string) language.Tag {
	tag, _ := language.MatchStrings(matcher, lang)
	base, _ := tag.Base()
	if base.String() == "pt" {
		return language.BrazilianPortuguese
	}
	return language.English
}

var catalog = map[language.Tag]map[string]string{
	language.English: {
		"export.columns.id":      "ID",
		"export.columns.name":    "Name",
		"export.columns.company": "Company",
		"export.columns.email":   "Email",
		"export.columns.source":  "Source",
		"export.columns.score":   "Score",
		"export.columns.status":  "Status",

		"validate.name_required":    "Name is required",
		"validate.email_required":   "Email is required",
		"validate.invalid_email":    "Invalid email",
		"validate.company_required": "Company is required",

		"import.error_invalid_object":       "invalid record, expected an object",
		"import.error_invalid_name":         "name is required and must be text",
		"import.error_invalid_company":      "company is required and must be text",
		"import.error_invalid_email":        "email is required and must be text",
		"import.error_invalid_email_format": "email format is invalid",
		"import.error_invalid_source":       "source is required and must be text",
		"import.error_invalid_score":        "score must be a number between 0 and 100",
		"import.error_invalid_status":       "status must be New, Contacted or Qualified",
		"import.error_required_fields":      "Name, company, email and source are required",
		"import.error_invalid_json":         "Invalid JSON: expected an array of leads",
		"import.error_empty_json":           "The JSON array is empty",
		"import.error_validation_failed":    "Validation failed for all leads",
	},
	language.BrazilianPortuguese: {
		"export.columns.id":      "ID",
		"export.columns.name":    "Nome",
		"export.columns.company": "Empresa",
		"export.columns.email":   "Email",
		"export.columns.source":  "Origem",
		"export.columns.score":   "Score",
		"export.columns.status":  "Status",

		"validate.name_required":    "Nome é obrigatório",
		"validate.email_required":   "Email é obrigatório",
		"validate.invalid_email":    "Email inválido",
		"validate.company_required": "Empresa é obrigatória",

		"import.error_invalid_object":       "registro inválido, esperado um objeto",
		"import.error_invalid_name":         "nome é obrigatório e deve ser texto",
		"import.error_invalid_company":      "empresa é obrigatória e deve ser texto",
		"import.error_invalid_email":        "email é obrigatório e deve ser texto",
		"import.error_invalid_email_format": "formato de email inválido",
		"import.error_invalid_source":       "origem é obrigatória e deve ser texto",
		"import.error_invalid_score":        "score deve ser um número entre 0 e 100",
		"import.error_invalid_status":       "status deve ser New, Contacted ou Qualified",
		"import.error_required_fields":      "Nome, empresa, email e origem são obrigatórios",
		"import.error_invalid_json":         "JSON inválido: esperado um array de leads",
		"import.error_empty_json":           "O array JSON está vazio",
		"import.error_validation_failed":    "Validação falhou para todos os leads",
	},
}

// T looks up key for the given language, falling back to English, then to
// the key itself so missing entries stay visible instead of vanishing.
func T(lang language.Tag, key string) string {
	if msgs, ok := catalog[lang]; ok {
		if msg, ok := msgs[key]; ok {
			return msg
		}
	}
	if msg, ok := catalog[language.English][key]; ok {
		return msg
	}
	return key
}
