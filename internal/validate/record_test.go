package validate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/sells-group/lead-console/internal/model"
)

func decodeRecord(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestRecordValid(t *testing.T) {
	t.Parallel()

	raw := decodeRecord(t, `{
		"id": 7, "name": "Ana Silva", "company": "TechCorp",
		"email": "ana@techcorp.com", "source": "Referral",
		"score": 88, "status": "Qualified"
	}`)

	lead, result := Record(raw, 0, language.English)
	assert.True(t, result.OK)
	assert.Empty(t, result.Errors)
	assert.Equal(t, int64(7), lead.ID)
	assert.Equal(t, "Ana Silva", lead.Name)
	assert.Equal(t, model.StatusQualified, lead.Status)
	assert.Equal(t, 88.0, lead.Score)
}

func TestRecordAggregatesErrors(t *testing.T) {
	t.Parallel()

	// Missing name, malformed email, score out of range, bad status: every
	// failure is reported, each prefixed with the 1-based record number.
	raw := decodeRecord(t, `{
		"company": "TechCorp", "email": "not-an-email",
		"source": "Website", "score": 150, "status": "Closed"
	}`)

	_, result := Record(raw, 2, language.English)
	assert.False(t, result.OK)
	require.Len(t, result.Errors, 4)
	for _, msg := range result.Errors {
		assert.Contains(t, msg, "Lead 3: ")
	}
	assert.Contains(t, result.Errors[0], "name is required")
	assert.Contains(t, result.Errors[1], "email format is invalid")
	assert.Contains(t, result.Errors[2], "score must be a number between 0 and 100")
	assert.Contains(t, result.Errors[3], "status must be New, Contacted or Qualified")
}

func TestRecordNotAnObject(t *testing.T) {
	t.Parallel()

	_, result := Record("just a string", 0, language.English)
	assert.False(t, result.OK)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Lead 1: invalid record, expected an object", result.Errors[0])
}

func TestRecordConvertedNotImportable(t *testing.T) {
	t.Parallel()

	raw := decodeRecord(t, `{
		"name": "Ana", "company": "TechCorp", "email": "ana@techcorp.com",
		"source": "Website", "score": 50, "status": "Converted"
	}`)

	_, result := Record(raw, 0, language.English)
	assert.False(t, result.OK)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "status must be")
}

func TestManualLead(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		fields   [4]string // name, company, email, source
		wantOK   bool
		wantErrs int
	}{
		{"all valid", [4]string{"Ana", "TechCorp", "ana@techcorp.com", "Website"}, true, 0},
		{"missing company", [4]string{"Ana", "", "ana@techcorp.com", "Website"}, false, 1},
		{"missing fields and bad email", [4]string{"", "TechCorp", "bad", "Website"}, false, 2},
		{"bad email only", [4]string{"Ana", "TechCorp", "bad", "Website"}, false, 1},
		{"all empty collapses to one message", [4]string{"", "", "", ""}, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ManualLead(tt.fields[0], tt.fields[1], tt.fields[2], tt.fields[3], language.English)
			assert.Equal(t, tt.wantOK, got.OK)
			assert.Len(t, got.Errors, tt.wantErrs)
		})
	}
}
