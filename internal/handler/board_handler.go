// Package handler provides HTTP handlers for the intraop board API.
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/Spor195/tablerointraoperatorio/internal/export"
	"github.com/Spor195/tablerointraoperatorio/internal/model"
	"github.com/Spor195/tablerointraoperatorio/internal/service"
)

// BoardHandler handles HTTP requests for case tracking and reporting.
type BoardHandler struct {
	service *service.BoardService
}

// NewBoardHandler creates a new board handler.
func NewBoardHandler(service *service.BoardService) *BoardHandler {
	return &BoardHandler{service: service}
}

// RegisterRoutes registers the API routes.
func (h *BoardHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/cases", h.CreateCase).Methods("POST")
	r.HandleFunc("/cases", h.ListCases).Methods("GET")
	r.HandleFunc("/cases/{id:[0-9]+}", h.GetCase).Methods("GET")
	r.HandleFunc("/cases/{id:[0-9]+}", h.UpdateCase).Methods("PUT", "PATCH")
	r.HandleFunc("/cases/{id:[0-9]+}", h.DeleteCase).Methods("DELETE")
	r.HandleFunc("/cases/{id:[0-9]+}/milestones/{milestone}", h.MarkMilestone).Methods("POST")

	r.HandleFunc("/report", h.Report).Methods("GET")
	r.HandleFunc("/report/summary", h.Summary).Methods("GET")
	r.HandleFunc("/report/charts", h.Charts).Methods("GET")
	r.HandleFunc("/report/export.csv", h.ExportCSV).Methods("GET")
	r.HandleFunc("/report/export.xlsx", h.ExportXLSX).Methods("GET")

	r.HandleFunc("/admin/seed", h.SeedDemo).Methods("POST")
}

// CreateCase registers a new case.
func (h *BoardHandler) CreateCase(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.service.CreateCase(r.Context(), &req)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondJSON(w, http.StatusCreated, c)
}

// GetCase retrieves a case by ID.
func (h *BoardHandler) GetCase(w http.ResponseWriter, r *http.Request) {
	id, ok := h.caseID(w, r)
	if !ok {
		return
	}

	c, err := h.service.GetCase(r.Context(), id)
	if err != nil {
		h.respondError(w, http.StatusNotFound, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, c)
}

// UpdateCase applies a partial update.
func (h *BoardHandler) UpdateCase(w http.ResponseWriter, r *http.Request) {
	id, ok := h.caseID(w, r)
	if !ok {
		return
	}

	var req model.UpdateCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.service.UpdateCase(r.Context(), id, &req)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, c)
}

// DeleteCase removes a case.
func (h *BoardHandler) DeleteCase(w http.ResponseWriter, r *http.Request) {
	id, ok := h.caseID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteCase(r.Context(), id); err != nil {
		h.respondError(w, http.StatusNotFound, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListCases returns the raw case snapshot.
func (h *BoardHandler) ListCases(w http.ResponseWriter, r *http.Request) {
	cases, err := h.service.ListCases(r.Context())
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, cases)
}

// MarkMilestone records a milestone timestamp. The request body may carry an
// explicit time; an empty body marks the milestone as of now.
func (h *BoardHandler) MarkMilestone(w http.ResponseWriter, r *http.Request) {
	id, ok := h.caseID(w, r)
	if !ok {
		return
	}

	req := model.MarkMilestoneRequest{}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	c, err := h.service.MarkMilestone(r.Context(), id, mux.Vars(r)["milestone"], &req)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, c)
}

// Report returns the filtered, metrics-annotated case view.
func (h *BoardHandler) Report(w http.ResponseWriter, r *http.Request) {
	q, ok := h.reportQuery(w, r)
	if !ok {
		return
	}

	reports, err := h.service.Report(r.Context(), q)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, reports)
}

// Summary returns the KPI reduction of the filtered view.
func (h *BoardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	q, ok := h.reportQuery(w, r)
	if !ok {
		return
	}

	summary, err := h.service.Summary(r.Context(), q)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, summary)
}

// Charts returns the bar and histogram series for the filtered view.
func (h *BoardHandler) Charts(w http.ResponseWriter, r *http.Request) {
	q, ok := h.reportQuery(w, r)
	if !ok {
		return
	}

	charts, err := h.service.Charts(r.Context(), q)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, charts)
}

// ExportCSV streams the filtered view as CSV.
func (h *BoardHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	q, ok := h.reportQuery(w, r)
	if !ok {
		return
	}

	reports, err := h.service.Report(r.Context(), q)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="intraop_report.csv"`)
	if err := export.WriteCSV(w, reports); err != nil {
		// Headers are out; nothing sensible left to send.
		return
	}
}

// ExportXLSX streams the filtered view as an XLSX workbook.
func (h *BoardHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	q, ok := h.reportQuery(w, r)
	if !ok {
		return
	}

	reports, err := h.service.Report(r.Context(), q)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	payload, err := export.WriteXLSX(reports)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="intraop_report.xlsx"`)
	w.Write(payload)
}

// SeedDemo inserts example cases.
func (h *BoardHandler) SeedDemo(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.SeedDemo(r.Context())
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]int{"seeded": n})
}

// Helper methods

func (h *BoardHandler) caseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid case id")
		return 0, false
	}
	return id, true
}

// reportQuery parses the shared report parameters: sla (minutes, bounded)
// and the inclusive from/to reception-date range.
func (h *BoardHandler) reportQuery(w http.ResponseWriter, r *http.Request) (service.ReportQuery, bool) {
	query := r.URL.Query()

	var q service.ReportQuery

	sla, err := h.service.ResolveSLA(query.Get("sla"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return q, false
	}
	q.SLAMinutes = sla

	if raw := query.Get("from"); raw != "" {
		t, err := h.service.ParseDate(raw)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "invalid from date, want YYYY-MM-DD")
			return q, false
		}
		q.From = &t
	}
	if raw := query.Get("to"); raw != "" {
		t, err := h.service.ParseDate(raw)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "invalid to date, want YYYY-MM-DD")
			return q, false
		}
		q.To = &t
	}

	return q, true
}

func (h *BoardHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *BoardHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{
		"error": message,
	})
}
