package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spor195/tablerointraoperatorio/internal/model"
	"github.com/Spor195/tablerointraoperatorio/internal/repository"
	"github.com/Spor195/tablerointraoperatorio/internal/service"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := repository.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := service.NewBoardService(repository.NewCaseRepository(db), time.UTC, 30)
	h := NewBoardHandler(svc)

	router := mux.NewRouter()
	h.RegisterRoutes(router.PathPrefix("/api/v1").Subrouter())

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method, url string, body any, out any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestCaseLifecycle(t *testing.T) {
	server := newTestServer(t)
	base := server.URL + "/api/v1"

	// Create.
	var created model.Case
	resp := doJSON(t, "POST", base+"/cases", model.CreateCaseRequest{
		CaseCode: "IO-1",
		Patient:  "P1",
		IntakeAt: "2024-03-05T08:55Z",
	}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, model.StatusPending, created.Status)

	// Mark milestones with explicit times.
	for milestone, at := range map[string]string{
		"reception": "2024-03-05T09:00Z",
		"diagnosis": "2024-03-05T09:10Z",
	} {
		resp := doJSON(t, "POST", fmt.Sprintf("%s/cases/%d/milestones/%s", base, created.ID, milestone),
			model.MarkMilestoneRequest{At: at}, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	var afterComm model.Case
	resp = doJSON(t, "POST", fmt.Sprintf("%s/cases/%d/milestones/communication", base, created.ID),
		model.MarkMilestoneRequest{At: "2024-03-05T09:15Z"}, &afterComm)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, model.StatusReported, afterComm.Status)

	// Annotated report.
	var reports []model.CaseReport
	resp = doJSON(t, "GET", base+"/report?sla=30", nil, &reports)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, reports, 1)
	require.NotNil(t, reports[0].TotalMin)
	assert.Equal(t, 15.0, *reports[0].TotalMin)
	assert.True(t, reports[0].SLACompliant)
	assert.Equal(t, model.StatusReported, reports[0].DerivedStatus)

	// Summary.
	var summary model.Summary
	resp = doJSON(t, "GET", base+"/report/summary?sla=30", nil, &summary)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, summary.TotalCases)
	assert.Equal(t, 1, summary.CasesWithTAT)
	assert.InDelta(t, 100.0, summary.ComplianceRatePct, 1e-9)

	// Delete.
	resp = doJSON(t, "DELETE", fmt.Sprintf("%s/cases/%d", base, created.ID), nil, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, "GET", fmt.Sprintf("%s/cases/%d", base, created.ID), nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMarkMilestoneWithoutBodyUsesNow(t *testing.T) {
	server := newTestServer(t)
	base := server.URL + "/api/v1"

	var created model.Case
	doJSON(t, "POST", base+"/cases", model.CreateCaseRequest{}, &created)

	var marked model.Case
	resp := doJSON(t, "POST", fmt.Sprintf("%s/cases/%d/milestones/reception", base, created.ID), nil, &marked)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, marked.ReceivedAt)
}

func TestReportQueryValidation(t *testing.T) {
	server := newTestServer(t)
	base := server.URL + "/api/v1"

	tests := []struct {
		name string
		url  string
	}{
		{"sla below range", "/report?sla=4"},
		{"sla above range", "/report?sla=121"},
		{"sla not a number", "/report?sla=fast"},
		{"bad from date", "/report?from=03-05-2024"},
		{"bad to date", "/report/summary?to=tomorrow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, "GET", base+tt.url, nil, nil)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestSummaryEmptyStore(t *testing.T) {
	server := newTestServer(t)
	base := server.URL + "/api/v1"

	resp, err := http.Get(base + "/report/summary")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var raw map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	assert.Equal(t, 0.0, raw["total_cases"])
	assert.Equal(t, 0.0, raw["compliance_rate_pct"])
	assert.Nil(t, raw["median_tat_min"], "undefined statistics serialize as null")
	assert.Nil(t, raw["p90_tat_min"])
}

func TestUnknownMilestoneRejected(t *testing.T) {
	server := newTestServer(t)
	base := server.URL + "/api/v1"

	var created model.Case
	doJSON(t, "POST", base+"/cases", model.CreateCaseRequest{}, &created)

	resp := doJSON(t, "POST", fmt.Sprintf("%s/cases/%d/milestones/embedding", base, created.ID), nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExportCSVEndpoint(t *testing.T) {
	server := newTestServer(t)
	base := server.URL + "/api/v1"

	resp := doJSON(t, "POST", base+"/admin/seed", nil, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	res, err := http.Get(base + "/report/export.csv")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Header.Get("Content-Type"), "text/csv")

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	assert.Len(t, lines, 9, "header plus eight seeded rows")
}

func TestExportXLSXEndpoint(t *testing.T) {
	server := newTestServer(t)
	base := server.URL + "/api/v1"

	res, err := http.Get(base + "/report/export.xlsx")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Header.Get("Content-Type"), "spreadsheetml")
}

func TestChartsEndpoint(t *testing.T) {
	server := newTestServer(t)
	base := server.URL + "/api/v1"

	resp := doJSON(t, "POST", base+"/admin/seed", nil, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var charts model.ChartData
	resp = doJSON(t, "GET", base+"/report/charts?sla=45", nil, &charts)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 45, charts.SLAThresholdMin)
	assert.Len(t, charts.Bars, 8)
	assert.NotEmpty(t, charts.Histogram)
}
