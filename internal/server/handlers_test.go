package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/sells-group/lead-console/internal/config"
	"github.com/sells-group/lead-console/internal/model"
	"github.com/sells-group/lead-console/internal/store"
)

// newTestRouter serves the seeded starter dataset: five leads and two
// opportunities.
func newTestRouter(t *testing.T) (*chi.Mux, store.Store) {
	t.Helper()
	st, err := store.NewFile(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck

	h := NewHandler(st, language.English)
	return NewRouter(h, config.ServerConfig{}), st
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decodeLeads(t *testing.T, rr *httptest.ResponseRecorder) []model.Lead {
	t.Helper()
	var leads []model.Lead
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &leads))
	return leads
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t)

	rr := doJSON(t, r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "OK", resp["status"])
	assert.NotEmpty(t, resp["timestamp"])
}

func TestListLeads(t *testing.T) {
	r, _ := newTestRouter(t)

	rr := doJSON(t, r, http.MethodGet, "/api/leads", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Collection-Version"))
	assert.Len(t, decodeLeads(t, rr), 5)
}

func TestListLeadsFiltered(t *testing.T) {
	r, _ := newTestRouter(t)

	rr := doJSON(t, r, http.MethodGet, "/api/leads?search=sarah", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	leads := decodeLeads(t, rr)
	require.Len(t, leads, 1)
	assert.Equal(t, "Sarah Johnson", leads[0].Name)

	rr = doJSON(t, r, http.MethodGet, "/api/leads?status=Qualified", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	leads = decodeLeads(t, rr)
	require.Len(t, leads, 1)
	assert.Equal(t, "Emily Rodriguez", leads[0].Name)

	rr = doJSON(t, r, http.MethodGet, "/api/leads?sortBy=score&sortOrder=desc", nil)
	leads = decodeLeads(t, rr)
	require.Len(t, leads, 5)
	assert.Equal(t, 91.0, leads[0].Score)
}

func TestCreateLead(t *testing.T) {
	r, _ := newTestRouter(t)

	rr := doJSON(t, r, http.MethodPost, "/api/leads", map[string]any{
		"name": "Ana Silva", "company": "NovaTech",
		"email": "ana@novatech.com", "source": "Referral", "score": 88,
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	var lead model.Lead
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &lead))
	assert.NotZero(t, lead.ID)
	assert.Equal(t, model.StatusNew, lead.Status) // defaulted
	assert.Equal(t, 92, lead.PredictiveQuality)
	assert.False(t, lead.CreatedAt.IsZero())
}

func TestCreateLeadValidation(t *testing.T) {
	r, _ := newTestRouter(t)

	tests := []struct {
		name    string
		body    map[string]any
		wantMsg string
	}{
		{
			name:    "missing name",
			body:    map[string]any{"company": "X", "email": "a@b.co", "source": "Website"},
			wantMsg: "Name is required",
		},
		{
			name:    "bad email",
			body:    map[string]any{"name": "Ana", "company": "X", "email": "nope", "source": "Website"},
			wantMsg: "Invalid email",
		},
		{
			name:    "bad status",
			body:    map[string]any{"name": "Ana", "company": "X", "email": "a@b.co", "source": "Website", "status": "Lost"},
			wantMsg: "unrecognized status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doJSON(t, r, http.MethodPost, "/api/leads", tt.body)
			require.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.wantMsg)
		})
	}
}

func TestUpdateLead(t *testing.T) {
	r, st := newTestRouter(t)
	leads, err := st.ListLeads(context.Background(), store.Filter{})
	require.NoError(t, err)
	id := leads[0].ID

	rr := doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/leads/%d", id), map[string]any{
		"status": "Contacted", "score": 95,
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var updated model.Lead
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	assert.Equal(t, model.StatusContacted, updated.Status)
	assert.Equal(t, 95.0, updated.Score)
	assert.Equal(t, leads[0].Name, updated.Name)
}

func TestUpdateLeadNotFound(t *testing.T) {
	r, _ := newTestRouter(t)

	rr := doJSON(t, r, http.MethodPut, "/api/leads/999", map[string]any{"score": 10})
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Lead not found")
}

func TestDeleteLead(t *testing.T) {
	r, st := newTestRouter(t)
	leads, err := st.ListLeads(context.Background(), store.Filter{})
	require.NoError(t, err)

	rr := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/leads/%d", leads[0].ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"success":true`)

	after, err := st.ListLeads(context.Background(), store.Filter{})
	require.NoError(t, err)
	assert.Len(t, after, 4)
}

func TestConvertLead(t *testing.T) {
	r, st := newTestRouter(t)
	ctx := context.Background()
	leads, err := st.ListLeads(ctx, store.Filter{Status: "Qualified"})
	require.NoError(t, err)
	require.Len(t, leads, 1)

	rr := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/leads/%d/convert", leads[0].ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Opportunity model.Opportunity `json:"opportunity"`
		Message     string            `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Lead converted successfully", resp.Message)
	assert.Equal(t, "Emily Rodriguez - CloudVision", resp.Opportunity.Name)
	assert.Equal(t, model.StageDiscovery, resp.Opportunity.Stage)

	remaining, err := st.ListLeads(ctx, store.Filter{})
	require.NoError(t, err)
	assert.Len(t, remaining, 4)
	opps, err := st.ListOpportunities(ctx)
	require.NoError(t, err)
	assert.Len(t, opps, 3)
}

func TestConvertLeadNotFoundNoSideEffect(t *testing.T) {
	r, st := newTestRouter(t)
	ctx := context.Background()

	rr := doJSON(t, r, http.MethodPost, "/api/leads/999/convert", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)

	leads, err := st.ListLeads(ctx, store.Filter{})
	require.NoError(t, err)
	assert.Len(t, leads, 5)
	opps, err := st.ListOpportunities(ctx)
	require.NoError(t, err)
	assert.Len(t, opps, 2)
}

func TestImportLeads(t *testing.T) {
	r, st := newTestRouter(t)

	payload := `[
		{"name": "Good Lead", "company": "X Corp", "email": "good@xcorp.com", "source": "Website", "score": 60, "status": "New"},
		{"name": "Bad Lead", "company": "Y Corp", "email": "broken", "source": "Website", "score": 60, "status": "New"}
	]`
	req := httptest.NewRequest(http.MethodPost, "/api/leads/import", strings.NewReader(payload))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		BatchID  string   `json:"batchId"`
		Imported int      `json:"imported"`
		Rejected int      `json:"rejected"`
		Errors   []string `json:"errors"`
		Message  string   `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.BatchID)
	assert.Equal(t, 1, resp.Imported)
	assert.Equal(t, 1, resp.Rejected)
	assert.Equal(t, "Successfully imported 1 leads, 1 invalid ignored.", resp.Message)

	leads, err := st.ListLeads(context.Background(), store.Filter{})
	require.NoError(t, err)
	assert.Len(t, leads, 6)
}

func TestImportLeadsInvalidJSON(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/leads/import", strings.NewReader(`{"not": "an array"}`))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid JSON: expected an array of leads")
}

func TestExportLeads(t *testing.T) {
	r, _ := newTestRouter(t)

	rr := doJSON(t, r, http.MethodGet, "/api/leads/export?format=csv&status=New", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rr.Header().Get("Content-Type"))

	disposition := rr.Header().Get("Content-Disposition")
	assert.Contains(t, disposition, "attachment")
	assert.Contains(t, disposition, "leads_status-new_")
	assert.Contains(t, disposition, ".csv")

	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	assert.Len(t, lines, 3) // header + the two New seeds
	assert.Equal(t, "ID,Name,Company,Email,Source,Score,Status", lines[0])
}

func TestExportLeadsXLSX(t *testing.T) {
	r, _ := newTestRouter(t)

	rr := doJSON(t, r, http.MethodGet, "/api/leads/export?format=excel", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rr.Header().Get("Content-Type"))
	assert.NotEmpty(t, rr.Body.Bytes())
}

func TestExportLeadsBadFormat(t *testing.T) {
	r, _ := newTestRouter(t)

	rr := doJSON(t, r, http.MethodGet, "/api/leads/export?format=pdf", nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Unsupported export format")
}

func TestOpportunities(t *testing.T) {
	r, st := newTestRouter(t)

	rr := doJSON(t, r, http.MethodGet, "/api/opportunities", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var opps []model.Opportunity
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &opps))
	require.Len(t, opps, 2)

	rr = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/opportunities/%d", opps[0].ID), map[string]any{
		"stage": "Closed Won", "amount": 60000,
	})
	require.Equal(t, http.StatusOK, rr.Code)
	var updated model.Opportunity
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	assert.Equal(t, "Closed Won", updated.Stage)
	assert.Equal(t, 60000.0, updated.Amount)

	rr = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/opportunities/%d", opps[1].ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	remaining, err := st.ListOpportunities(context.Background())
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestOpportunityNotFound(t *testing.T) {
	r, _ := newTestRouter(t)

	rr := doJSON(t, r, http.MethodPut, "/api/opportunities/999", map[string]any{"amount": 1})
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Opportunity not found")
}

func TestKPIs(t *testing.T) {
	r, _ := newTestRouter(t)

	rr := doJSON(t, r, http.MethodGet, "/api/kpis", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var kpi struct {
		OpportunitiesCount int     `json:"opportunitiesCount"`
		LeadsCount         int     `json:"leadsCount"`
		AverageScore       int     `json:"averageScore"`
		ConversionRate     float64 `json:"conversionRate"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &kpi))
	assert.Equal(t, 5, kpi.LeadsCount)
	assert.Equal(t, 2, kpi.OpportunitiesCount)
	assert.Equal(t, 79, kpi.AverageScore)     // (85+72+91+68+79)/5
	assert.Equal(t, 20.0, kpi.ConversionRate) // 1 of 5 qualified
}

func TestRateLimit(t *testing.T) {
	st, err := store.NewFile(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck

	h := NewHandler(st, language.English)
	r := NewRouter(h, config.ServerConfig{RateLimit: 1, RateBurst: 2})

	codes := make(map[int]int)
	for i := 0; i < 5; i++ {
		rr := doJSON(t, r, http.MethodGet, "/health", nil)
		codes[rr.Code]++
	}
	assert.Equal(t, 2, codes[http.StatusOK])
	assert.Equal(t, 3, codes[http.StatusTooManyRequests])
}
