package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"parking-facility/internal/parking"

	"go.opentelemetry.io/otel/trace"
)

type Meta struct {
	TraceID   string `json:"trace_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type CheckInRequest struct {
	Plate       string `json:"plate"`
	DriverName  string `json:"driver_name"`
	DriverPhone string `json:"driver_phone"`
	Slot        string `json:"slot,omitempty"`
}

type CheckOutRequest struct {
	Slot string `json:"slot"`
}

type AddSlotRequest struct {
	Label string `json:"label"`
}

type TransactionPatchRequest struct {
	Plate           *string `json:"plate,omitempty"`
	DriverName      *string `json:"driver_name,omitempty"`
	EntryTime       *string `json:"entry_time,omitempty"`
	ExitTime        *string `json:"exit_time,omitempty"`
	DurationMinutes *int64  `json:"duration_minutes,omitempty"`
	Fee             *int64  `json:"fee,omitempty"`
	SlotLabel       *string `json:"slot_label,omitempty"`
}

type TransactionResponse struct {
	ID              string `json:"id"`
	Plate           string `json:"plate"`
	DriverName      string `json:"driver_name"`
	EntryTime       string `json:"entry_time"`
	ExitTime        string `json:"exit_time"`
	DurationMinutes int64  `json:"duration_minutes"`
	Fee             int64  `json:"fee"`
	SlotLabel       string `json:"slot_label"`
}

type SlotResponse struct {
	SlotID         string `json:"slot_id"`
	Label          string `json:"label"`
	Status         string `json:"status"`
	Plate          string `json:"plate,omitempty"`
	DriverName     string `json:"driver_name,omitempty"`
	EntryTime      string `json:"entry_time,omitempty"`
	Elapsed        string `json:"elapsed,omitempty"`
	LiveFee        int64  `json:"live_fee,omitempty"`
	ElapsedHours   int    `json:"elapsed_hours,omitempty"`
	ElapsedMinutes int    `json:"elapsed_minutes,omitempty"`
	ElapsedSeconds int    `json:"elapsed_seconds,omitempty"`
}

type StatusResponse struct {
	TotalSlots    int            `json:"total_slots"`
	Occupied      int            `json:"occupied"`
	Available     int            `json:"available"`
	TotalRevenue  int64          `json:"total_revenue"`
	TotalEntries  int            `json:"total_entries"`
	Currency      string         `json:"currency"`
	Slots         []SlotResponse `json:"slots"`
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func extractMeta(ctx context.Context) *Meta {
	meta := &Meta{}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		meta.TraceID = span.SpanContext().TraceID().String()
	}

	if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
		meta.RequestID = reqID
	}

	return meta
}

func WriteSuccess(ctx context.Context, w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    extractMeta(ctx),
	})
}

func WriteError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Response{
		Success: false,
		Error:   message,
		Meta:    extractMeta(ctx),
	})
}

// WriteEngineError maps the engine's error kinds onto HTTP statuses. They
// are all recoverable caller errors, never 500s.
func WriteEngineError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, parking.ErrNoCapacity),
		errors.Is(err, parking.ErrSlotUnavailable),
		errors.Is(err, parking.ErrSlotNotOccupied):
		WriteError(ctx, w, http.StatusConflict, err.Error())
	case errors.Is(err, parking.ErrInvalidTransaction),
		errors.Is(err, parking.ErrNegativeDuration):
		WriteError(ctx, w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, parking.ErrNotFound),
		errors.Is(err, parking.ErrSlotNotFound):
		WriteError(ctx, w, http.StatusNotFound, err.Error())
	default:
		WriteError(ctx, w, http.StatusInternalServerError, err.Error())
	}
}
