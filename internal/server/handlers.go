package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-console/internal/exporter"
	"github.com/sells-group/lead-console/internal/importer"
	"github.com/sells-group/lead-console/internal/model"
	"github.com/sells-group/lead-console/internal/scoring"
	"github.com/sells-group/lead-console/internal/store"
	"github.com/sells-group/lead-console/internal/validate"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeStoreError maps store errors onto the wire: missing ids are 404s
// with no side effect, everything else is a generic 500.
func writeStoreError(w http.ResponseWriter, err error, entity string) {
	if eris.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, entity+" not found")
		return
	}
	zap.L().Error("server: store operation failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

// stampVersion exposes the collection version so clients can discard
// responses that raced a later write.
func (h *Handler) stampVersion(w http.ResponseWriter) {
	w.Header().Set("X-Collection-Version", strconv.FormatUint(h.store.Version(), 10))
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// Health reports liveness only.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.Filter{
		Search:    q.Get("search"),
		Status:    q.Get("status"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}

	leads, err := h.store.ListLeads(r.Context(), filter)
	if err != nil {
		writeStoreError(w, err, "Lead")
		return
	}
	if leads == nil {
		leads = []model.Lead{}
	}
	h.stampVersion(w)
	writeJSON(w, http.StatusOK, leads)
}

type leadRequest struct {
	Name    string  `json:"name"`
	Company string  `json:"company"`
	Email   string  `json:"email"`
	Source  string  `json:"source"`
	Score   float64 `json:"score"`
	Status  string  `json:"status"`
}

func (h *Handler) CreateLead(w http.ResponseWriter, r *http.Request) {
	var req leadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status := model.StatusNew
	if req.Status != "" {
		parsed, ok := model.ParseStatus(req.Status)
		if !ok {
			writeError(w, http.StatusBadRequest, "unrecognized status")
			return
		}
		status = parsed
	}

	lead := model.Lead{
		Name:      req.Name,
		Company:   req.Company,
		Email:     req.Email,
		Source:    req.Source,
		Score:     model.ClampScore(req.Score),
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
	if result := validate.LeadData(lead, h.lang); !result.OK {
		writeError(w, http.StatusBadRequest, result.Message)
		return
	}
	lead.PredictiveQuality = scoring.PredictiveQuality(lead.Score, lead.Source)

	created, err := h.store.CreateLead(r.Context(), lead)
	if err != nil {
		writeStoreError(w, err, "Lead")
		return
	}
	h.stampVersion(w)
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lead id")
		return
	}

	var patch store.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if patch.Status != nil && !patch.Status.Valid() {
		writeError(w, http.StatusBadRequest, "unrecognized status")
		return
	}

	updated, err := h.store.UpdateLead(r.Context(), id, patch)
	if err != nil {
		writeStoreError(w, err, "Lead")
		return
	}
	h.stampVersion(w)
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteLead(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lead id")
		return
	}

	if err := h.store.DeleteLead(r.Context(), id); err != nil {
		writeStoreError(w, err, "Lead")
		return
	}
	h.stampVersion(w)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) ConvertLead(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lead id")
		return
	}

	opp, err := h.store.ConvertLead(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "Lead")
		return
	}
	h.stampVersion(w)
	writeJSON(w, http.StatusOK, map[string]any{
		"opportunity": opp,
		"message":     "Lead converted successfully",
	})
}

func (h *Handler) ImportLeads(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := importer.ProcessJSON(body, h.lang)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.ImportLeads(r.Context(), report.ValidLeads); err != nil {
		writeStoreError(w, err, "Lead")
		return
	}
	h.stampVersion(w)
	writeJSON(w, http.StatusOK, map[string]any{
		"batchId":  report.BatchID,
		"imported": report.Imported(),
		"rejected": report.Rejected(),
		"errors":   report.Errors,
		"message":  report.SuccessMessage(),
	})
}

func (h *Handler) ExportLeads(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format, ok := exporter.ParseFormat(q.Get("format"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Unsupported export format")
		return
	}

	filter := store.Filter{Search: q.Get("search"), Status: q.Get("status")}
	leads, err := h.store.ListLeads(r.Context(), filter)
	if err != nil {
		writeStoreError(w, err, "Lead")
		return
	}

	var data []byte
	contentType := "text/csv; charset=utf-8"
	if format == exporter.FormatXLSX {
		data, err = exporter.ToXLSX(leads, h.lang)
		if err != nil {
			zap.L().Error("server: export failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Export error")
			return
		}
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	} else {
		data = exporter.ToCSV(leads, h.lang)
	}

	base := exporter.Filename(filter.Search, filter.Status)
	name := exporter.TimestampedName(base, string(format), time.Now())
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		zap.L().Error("server: write export", zap.Error(err))
	}
}

func (h *Handler) ListOpportunities(w http.ResponseWriter, r *http.Request) {
	opps, err := h.store.ListOpportunities(r.Context())
	if err != nil {
		writeStoreError(w, err, "Opportunity")
		return
	}
	if opps == nil {
		opps = []model.Opportunity{}
	}
	h.stampVersion(w)
	writeJSON(w, http.StatusOK, opps)
}

func (h *Handler) UpdateOpportunity(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid opportunity id")
		return
	}

	var patch store.OpportunityPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.store.UpdateOpportunity(r.Context(), id, patch)
	if err != nil {
		writeStoreError(w, err, "Opportunity")
		return
	}
	h.stampVersion(w)
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteOpportunity(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid opportunity id")
		return
	}

	if err := h.store.DeleteOpportunity(r.Context(), id); err != nil {
		writeStoreError(w, err, "Opportunity")
		return
	}
	h.stampVersion(w)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) KPIs(w http.ResponseWriter, r *http.Request) {
	leads, err := h.store.ListLeads(r.Context(), store.Filter{})
	if err != nil {
		writeStoreError(w, err, "Lead")
		return
	}
	opps, err := h.store.ListOpportunities(r.Context())
	if err != nil {
		writeStoreError(w, err, "Opportunity")
		return
	}
	writeJSON(w, http.StatusOK, scoring.KPI(opps, leads))
}
