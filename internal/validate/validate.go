// Package validate holds the lead validation rules. Two deliberately
// different strategies coexist: the manual-entry path short-circuits on the
// first failure so the user sees a single message, while the import path
// aggregates every failure per record for batch reporting.
package validate

import (
	"regexp"
	"strings"

	"golang.org/x/text/language"

	"github.com/sells-group/lead-console/internal/i18n"
	"github.com/sells-group/lead-console/internal/model"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Result is the outcome of a single-message validation.
type Result struct {
	OK      bool
	Message string
}

// Email checks the local@domain.tld shape. Anything not matching is
// rejected; there is no partial credit.
func Email(email string) Result {
	if emailRe.MatchString(email) {
		return Result{OK: true}
	}
	return Result{OK: false, Message: "Invalid email"}
}

// EmailIn is Email with a localized failure message.
func EmailIn(email string, lang language.Tag) Result {
	if emailRe.MatchString(email) {
		return Result{OK: true}
	}
	return Result{OK: false, Message: i18n.T(lang, "validate.invalid_email")}
}

// LeadData validates a manually entered lead, returning the first failing
// reason. Callers surface exactly this message, so the check order (name,
// email presence, email format, company) is a contract.
func LeadData(lead model.Lead, lang language.Tag) Result {
	if strings.TrimSpace(lead.Name) == "" {
		return Result{OK: false, Message: i18n.T(lang, "validate.name_required")}
	}
	if strings.TrimSpace(lead.Email) == "" {
		return Result{OK: false, Message: i18n.T(lang, "validate.email_required")}
	}
	if r := EmailIn(lead.Email, lang); !r.OK {
		return r
	}
	if strings.TrimSpace(lead.Company) == "" {
		return Result{OK: false, Message: i18n.T(lang, "validate.company_required")}
	}
	return Result{OK: true}
}
