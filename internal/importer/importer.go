// Package importer ingests lead batches from JSON with per-record
// validation and partial-success reporting.
package importer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/sells-group/lead-console/internal/i18n"
	"github.com/sells-group/lead-console/internal/model"
	"github.com/sells-group/lead-console/internal/scoring"
	"github.com/sells-group/lead-console/internal/validate"
)

// Sentinel errors for programmatic handling. Callers match with eris.Is;
// the user-visible text travels in the wrapping Error.
var (
	ErrInvalidJSON = eris.New("import: invalid json")
	ErrEmptyInput  = eris.New("import: empty input")
	ErrAllInvalid  = eris.New("import: all records invalid")
)

// Error pairs a sentinel kind with the user-facing message.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Kind }

// maxReportedErrors caps the error list embedded in an all-invalid failure.
const maxReportedErrors = 5

// Report is the outcome of a batch import.
type Report struct {
	BatchID    string       `json:"batchId"`
	ValidLeads []model.Lead `json:"validLeads"`
	Errors     []string     `json:"errors"`
}

// Imported returns the number of accepted records.
func (r Report) Imported() int { return len(r.ValidLeads) }

// Rejected returns the number of dropped records' error messages.
func (r Report) Rejected() int { return len(r.Errors) }

// SuccessMessage renders the user-facing summary line.
func (r Report) SuccessMessage() string {
	msg := fmt.Sprintf("Successfully imported %d leads", r.Imported())
	if r.Rejected() > 0 {
		msg += fmt.Sprintf(", %d invalid ignored", r.Rejected())
	}
	return msg + "."
}

// ProcessJSON parses and validates a JSON lead batch. Invalid records are
// dropped, not corrected: a batch with at least one valid record succeeds
// with the full error list attached, while a batch where every record fails
// returns ErrAllInvalid carrying the first five messages plus an overflow
// count. Accepted records get fresh predictive-quality values; scores are
// clamped on the way in.
func ProcessJSON(data []byte, lang language.Tag) (Report, error) {
	var records []any
	if err := json.Unmarshal(data, &records); err != nil {
		return Report{}, &Error{Kind: ErrInvalidJSON, Message: i18n.T(lang, "import.error_invalid_json")}
	}
	// A literal null decodes into a nil slice without error; only a real
	// array is acceptable input.
	if records == nil {
		return Report{}, &Error{Kind: ErrInvalidJSON, Message: i18n.T(lang, "import.error_invalid_json")}
	}
	if len(records) == 0 {
		return Report{}, &Error{Kind: ErrEmptyInput, Message: i18n.T(lang, "import.error_empty_json")}
	}

	report := Report{BatchID: uuid.New().String()}
	for i, raw := range records {
		lead, result := validate.Record(raw, i, lang)
		if !result.OK {
			report.Errors = append(report.Errors, result.Errors...)
			continue
		}
		lead.Score = model.ClampScore(lead.Score)
		lead.PredictiveQuality = scoring.PredictiveQuality(lead.Score, lead.Source)
		report.ValidLeads = append(report.ValidLeads, lead)
	}

	if len(report.ValidLeads) == 0 {
		return Report{}, &Error{Kind: ErrAllInvalid, Message: allInvalidMessage(report.Errors, lang)}
	}

	if len(report.Errors) > 0 {
		zap.L().Warn("import: records dropped",
			zap.String("batch_id", report.BatchID),
			zap.Int("imported", report.Imported()),
			zap.Int("rejected", report.Rejected()),
		)
	}

	return report, nil
}

func allInvalidMessage(errs []string, lang language.Tag) string {
	shown := errs
	if len(shown) > maxReportedErrors {
		shown = shown[:maxReportedErrors]
	}
	msg := i18n.T(lang, "import.error_validation_failed") + ":\n" + strings.Join(shown, "\n")
	if rest := len(errs) - maxReportedErrors; rest > 0 {
		msg += fmt.Sprintf("\n... and %d more errors", rest)
	}
	return msg
}
