package validate

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/sells-group/lead-console/internal/i18n"
	"github.com/sells-group/lead-console/internal/model"
)

// RecordResult is the outcome of an aggregate validation: every failing
// field is reported, not just the first.
type RecordResult struct {
	OK     bool
	Errors []string
}

// Record validates one raw import record. raw is a decoded JSON value of
// unknown shape; index is the record's zero-based position in the batch and
// appears 1-based in messages. All field errors are collected.
func Record(raw any, index int, lang language.Tag) (model.Lead, RecordResult) {
	tag := func(key string) string {
		return fmt.Sprintf("Lead %d: %s", index+1, i18n.T(lang, key))
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return model.Lead{}, RecordResult{Errors: []string{tag("import.error_invalid_object")}}
	}

	var lead model.Lead
	var errs []string

	if name, ok := stringField(obj, "name"); ok {
		lead.Name = name
	} else {
		errs = append(errs, tag("import.error_invalid_name"))
	}

	if company, ok := stringField(obj, "company"); ok {
		lead.Company = company
	} else {
		errs = append(errs, tag("import.error_invalid_company"))
	}

	if email, ok := stringField(obj, "email"); !ok {
		errs = append(errs, tag("import.error_invalid_email"))
	} else if !emailRe.MatchString(email) {
		errs = append(errs, tag("import.error_invalid_email_format"))
	} else {
		lead.Email = email
	}

	if source, ok := stringField(obj, "source"); ok {
		lead.Source = source
	} else {
		errs = append(errs, tag("import.error_invalid_source"))
	}

	if score, ok := obj["score"].(float64); !ok || score < 0 || score > 100 {
		errs = append(errs, tag("import.error_invalid_score"))
	} else {
		lead.Score = score
	}

	status, _ := obj["status"].(string)
	if parsed, ok := model.ParseStatus(status); !ok || !parsed.Importable() {
		errs = append(errs, tag("import.error_invalid_status"))
	} else {
		lead.Status = parsed
	}

	if id, ok := obj["id"].(float64); ok {
		lead.ID = int64(id)
	}

	return lead, RecordResult{OK: len(errs) == 0, Errors: errs}
}

// ManualLead validates the manual-entry form. Unlike Record it reports at
// most two messages: one covering all missing required fields, plus an
// email-format message when an email was supplied but malformed.
func ManualLead(name, company, email, source string, lang language.Tag) RecordResult {
	var errs []string
	if name == "" || company == "" || email == "" || source == "" {
		errs = append(errs, i18n.T(lang, "import.error_required_fields"))
	}
	if email != "" && !emailRe.MatchString(email) {
		errs = append(errs, i18n.T(lang, "validate.invalid_email"))
	}
	return RecordResult{OK: len(errs) == 0, Errors: errs}
}

func stringField(obj map[string]any, key string) (string, bool) {
	s, ok := obj[key].(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}
