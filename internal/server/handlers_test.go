package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking-facility/internal/parking"
)

type staticSummarizer struct{}

func (staticSummarizer) Summarize(ctx context.Context, snapshot parking.Snapshot) string {
	return "summary text"
}

func newTestRouter(t *testing.T, slots int) (*chi.Mux, *parking.InstrumentedFacility) {
	t.Helper()

	facility := parking.NewFacility(parking.Tariff{HourlyRate: 500, MinimumFee: 300}, nil)
	for i := 0; i < slots; i++ {
		facility.AddSlot(string(rune('A'+i)) + "1")
	}

	telemetry, err := parking.NewTelemetryProvider()
	require.NoError(t, err)

	instrumented, err := parking.NewInstrumentedFacility(facility, telemetry)
	require.NoError(t, err)

	handler := NewHandler(instrumented, staticSummarizer{}, "RWF")

	r := chi.NewRouter()
	r.Post("/check-in", handler.CheckIn)
	r.Post("/check-out", handler.CheckOut)
	r.Get("/status", handler.GetStatus)
	r.Post("/slots", handler.AddSlot)
	r.Post("/slots/{id}/force-release", handler.ForceRelease)
	r.Get("/reports/revenue", handler.RevenueReport)
	r.Get("/reports/durations", handler.DurationsReport)
	r.Get("/transactions", handler.ListTransactions)
	r.Delete("/transactions/{id}", handler.DeleteTransaction)
	r.Get("/export.csv", handler.ExportCSV)
	r.Get("/insights", handler.Insights)
	return r, instrumented
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestCheckInHandler(t *testing.T) {
	r, _ := newTestRouter(t, 2)

	rec := doJSON(t, r, http.MethodPost, "/check-in", CheckInRequest{
		Plate:      "rab123x",
		DriverName: "Alice",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]any)
	assert.Equal(t, "RAB123X", data["plate"])
	assert.NotEmpty(t, data["slot_id"])
}

func TestCheckInHandlerValidatesBody(t *testing.T) {
	r, _ := newTestRouter(t, 1)

	rec := doJSON(t, r, http.MethodPost, "/check-in", CheckInRequest{Plate: "RAB123X"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckInHandlerNoCapacity(t *testing.T) {
	r, _ := newTestRouter(t, 1)

	rec := doJSON(t, r, http.MethodPost, "/check-in", CheckInRequest{Plate: "RAB001A", DriverName: "A"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/check-in", CheckInRequest{Plate: "RAB002B", DriverName: "B"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, decodeResponse(t, rec).Success)
}

func TestCheckOutHandlerByLabel(t *testing.T) {
	r, _ := newTestRouter(t, 1)

	rec := doJSON(t, r, http.MethodPost, "/check-in", CheckInRequest{Plate: "RAB001A", DriverName: "A"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/check-out", CheckOutRequest{Slot: "A1"})
	assert.Equal(t, http.StatusOK, rec.Code)

	data := decodeResponse(t, rec).Data.(map[string]any)
	assert.Equal(t, "RAB001A", data["plate"])
	assert.Equal(t, float64(500), data["fee"])
}

func TestCheckOutHandlerEmptySlot(t *testing.T) {
	r, _ := newTestRouter(t, 1)

	rec := doJSON(t, r, http.MethodPost, "/check-out", CheckOutRequest{Slot: "A1"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/check-out", CheckOutRequest{Slot: "Z9"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusHandler(t *testing.T) {
	r, _ := newTestRouter(t, 2)

	rec := doJSON(t, r, http.MethodPost, "/check-in", CheckInRequest{Plate: "RAB001A", DriverName: "A"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/status", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	data := decodeResponse(t, rec).Data.(map[string]any)
	assert.Equal(t, float64(2), data["total_slots"])
	assert.Equal(t, float64(1), data["occupied"])
	assert.Equal(t, "RWF", data["currency"])
}

func TestForceReleaseHandlerRequiresConfirmation(t *testing.T) {
	r, _ := newTestRouter(t, 1)

	rec := doJSON(t, r, http.MethodPost, "/check-in", CheckInRequest{Plate: "RAB001A", DriverName: "A"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/slots/A1/force-release", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/slots/A1/force-release?confirm=true", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// No transaction was billed.
	rec = doJSON(t, r, http.MethodGet, "/transactions", nil)
	data := decodeResponse(t, rec).Data.([]any)
	assert.Empty(t, data)
}

func TestRevenueReportHandlerValidation(t *testing.T) {
	r, _ := newTestRouter(t, 1)

	rec := doJSON(t, r, http.MethodGet, "/reports/revenue", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/reports/revenue?from=2025-03-10&to=March+12", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/reports/revenue?from=2025-03-10&to=2025-03-12", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	data := decodeResponse(t, rec).Data.(map[string]any)
	days := data["days"].([]any)
	assert.Len(t, days, 3)
}

func TestDeleteTransactionHandlerNotFound(t *testing.T) {
	r, _ := newTestRouter(t, 1)

	rec := doJSON(t, r, http.MethodDelete, "/transactions/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportCSVHandler(t *testing.T) {
	r, _ := newTestRouter(t, 1)

	rec := doJSON(t, r, http.MethodPost, "/check-in", CheckInRequest{Plate: "RAB001A", DriverName: "A"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, r, http.MethodPost, "/check-out", CheckOutRequest{Slot: "A1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/export.csv", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "RAB001A")
}

func TestInsightsHandler(t *testing.T) {
	r, _ := newTestRouter(t, 1)

	rec := doJSON(t, r, http.MethodGet, "/insights", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	data := decodeResponse(t, rec).Data.(map[string]any)
	assert.Equal(t, "summary text", data["summary"])
}
