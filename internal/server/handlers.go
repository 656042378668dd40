package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"parking-facility/internal/export"
	"parking-facility/internal/logging"
	"parking-facility/internal/parking"

	"github.com/go-chi/chi/v5"
)

func getServiceName() string {
	if name := os.Getenv("OTEL_SERVICE_NAME"); name != "" {
		return name
	}
	return "parking-facility"
}

// Summarizer produces a text summary of a facility snapshot.
type Summarizer interface {
	Summarize(ctx context.Context, snapshot parking.Snapshot) string
}

type Handler struct {
	facility   *parking.InstrumentedFacility
	summarizer Summarizer
	currency   string
}

func NewHandler(facility *parking.InstrumentedFacility, summarizer Summarizer, currency string) *Handler {
	return &Handler{
		facility:   facility,
		summarizer: summarizer,
		currency:   currency,
	}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": getServiceName(),
		"meta":    extractMeta(r.Context()),
	})
}

func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Plate == "" || req.DriverName == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Plate and driver name are required")
		return
	}

	requested := ""
	if req.Slot != "" {
		slot, err := h.facility.SlotByRef(req.Slot)
		if err != nil {
			WriteEngineError(ctx, w, err)
			return
		}
		requested = slot.ID
	}

	occupant, err := h.facility.CheckIn(ctx, req.Plate, req.DriverName, req.DriverPhone, requested)
	if err != nil {
		WriteEngineError(ctx, w, err)
		return
	}

	slot, _ := h.facility.SlotByRef(occupant.SlotID)
	WriteSuccess(ctx, w, "Vehicle checked in", map[string]any{
		"occupant_id": occupant.ID,
		"plate":       occupant.Plate,
		"slot_id":     occupant.SlotID,
		"slot_label":  slot.Label,
		"entry_time":  occupant.EntryTime.Format(time.RFC3339),
	})
}

func (h *Handler) CheckOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CheckOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Slot == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Slot is required")
		return
	}

	slot, err := h.facility.SlotByRef(req.Slot)
	if err != nil {
		WriteEngineError(ctx, w, err)
		return
	}

	tx, err := h.facility.CheckOut(ctx, slot.ID)
	if err != nil {
		WriteEngineError(ctx, w, err)
		return
	}

	WriteSuccess(ctx, w, "Vehicle checked out", toTransactionResponse(tx))
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats := h.facility.Stats()
	views := h.facility.LiveStatus()

	slots := make([]SlotResponse, 0, len(views))
	for _, v := range views {
		slot := SlotResponse{
			SlotID: v.SlotID,
			Label:  v.Label,
			Status: string(v.Status),
		}
		if v.Status == parking.StatusOccupied {
			slot.Plate = v.Plate
			slot.DriverName = v.DriverName
			slot.EntryTime = v.EntryTime
			slot.LiveFee = v.LiveFee
			slot.ElapsedHours = v.ElapsedHours
			slot.ElapsedMinutes = v.ElapsedMinutes
			slot.ElapsedSeconds = v.ElapsedSeconds
		}
		slots = append(slots, slot)
	}

	WriteSuccess(ctx, w, "Status retrieved", StatusResponse{
		TotalSlots:   stats.TotalSlots,
		Occupied:     stats.OccupiedSlots,
		Available:    stats.AvailableSlots,
		TotalRevenue: stats.TotalRevenue,
		TotalEntries: stats.TotalEntries,
		Currency:     h.currency,
		Slots:        slots,
	})
}

func (h *Handler) AddSlot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AddSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Label == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Label is required")
		return
	}

	slot, duplicate := h.facility.AddSlot(ctx, req.Label)
	if duplicate {
		logging.Warn(ctx).Str("label", req.Label).Msg("slot label already exists")
	}

	WriteSuccess(ctx, w, "Slot added", map[string]any{
		"slot_id":         slot.ID,
		"label":           slot.Label,
		"duplicate_label": duplicate,
	})
}

func (h *Handler) ForceRelease(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.URL.Query().Get("confirm") != "true" {
		WriteError(ctx, w, http.StatusBadRequest,
			"Force release discards the active visit without billing; pass confirm=true")
		return
	}

	ref := chi.URLParam(r, "id")
	slot, err := h.facility.SlotByRef(ref)
	if err != nil {
		WriteEngineError(ctx, w, err)
		return
	}

	occupant, err := h.facility.ForceRelease(ctx, slot.ID)
	if err != nil {
		WriteEngineError(ctx, w, err)
		return
	}

	logging.Warn(ctx).
		Str("plate", occupant.Plate).
		Str("slot", slot.Label).
		Msg("visit discarded without billing")

	WriteSuccess(ctx, w, "Slot force released", map[string]any{
		"slot_label":      slot.Label,
		"discarded_plate": occupant.Plate,
	})
}

func (h *Handler) RevenueReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		WriteError(ctx, w, http.StatusBadRequest, "from and to dates are required (YYYY-MM-DD)")
		return
	}

	days, err := h.facility.RevenueByDay(from, to)
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid date: "+err.Error())
		return
	}

	WriteSuccess(ctx, w, "Revenue report", map[string]any{
		"currency": h.currency,
		"days":     days,
	})
}

func (h *Handler) TrafficReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	hours := h.facility.EntriesByHourOfDay()
	WriteSuccess(ctx, w, "Traffic report", map[string]any{
		"entries_by_hour": hours,
	})
}

func (h *Handler) DurationsReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	includeActive := r.URL.Query().Get("include_active") != "false"
	counts := h.facility.DurationHistogram(parking.DefaultDurationBuckets(), includeActive)

	WriteSuccess(ctx, w, "Duration report", map[string]any{
		"buckets": counts,
	})
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	transactions := h.facility.Transactions()
	out := make([]TransactionResponse, 0, len(transactions))
	for _, tx := range transactions {
		out = append(out, toTransactionResponse(tx))
	}

	WriteSuccess(ctx, w, "Transactions retrieved", out)
}

func (h *Handler) EditTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req TransactionPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	patch := parking.TransactionPatch{
		Plate:           req.Plate,
		DriverName:      req.DriverName,
		DurationMinutes: req.DurationMinutes,
		Fee:             req.Fee,
		SlotLabel:       req.SlotLabel,
	}
	if req.EntryTime != nil {
		entry, err := time.Parse(time.RFC3339, *req.EntryTime)
		if err != nil {
			WriteError(ctx, w, http.StatusBadRequest, "Invalid entry_time")
			return
		}
		patch.EntryTime = &entry
	}
	if req.ExitTime != nil {
		exit, err := time.Parse(time.RFC3339, *req.ExitTime)
		if err != nil {
			WriteError(ctx, w, http.StatusBadRequest, "Invalid exit_time")
			return
		}
		patch.ExitTime = &exit
	}

	tx, err := h.facility.EditTransaction(chi.URLParam(r, "id"), patch)
	if err != nil {
		WriteEngineError(ctx, w, err)
		return
	}

	WriteSuccess(ctx, w, "Transaction updated", toTransactionResponse(tx))
}

func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.facility.DeleteTransaction(chi.URLParam(r, "id")); err != nil {
		WriteEngineError(ctx, w, err)
		return
	}

	WriteSuccess(ctx, w, "Transaction deleted", nil)
}

func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)

	if err := export.WriteCSV(w, h.facility.Transactions()); err != nil {
		logging.Error(r.Context()).Err(err).Msg("csv export failed")
	}
}

func (h *Handler) Insights(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summary := h.summarizer.Summarize(ctx, h.facility.Snapshot(10))
	WriteSuccess(ctx, w, "Insights generated", map[string]any{
		"summary": summary,
	})
}

func toTransactionResponse(tx parking.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:              tx.ID,
		Plate:           tx.Plate,
		DriverName:      tx.DriverName,
		EntryTime:       tx.EntryTime.Format(time.RFC3339),
		ExitTime:        tx.ExitTime.Format(time.RFC3339),
		DurationMinutes: tx.DurationMinutes,
		Fee:             tx.Fee,
		SlotLabel:       tx.SlotLabel,
	}
}
