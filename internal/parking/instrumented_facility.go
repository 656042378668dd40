package parking

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentedFacility wraps a Facility with spans and metrics around the
// allocation operations. Reporting reads go through the embedded Facility
// directly.
type InstrumentedFacility struct {
	*Facility
	telemetry *TelemetryProvider

	checkInOperations  metric.Int64Counter
	checkOutOperations metric.Int64Counter
	occupancyGauge     metric.Int64UpDownCounter
	revenueTotal       metric.Int64Counter
	operationDuration  metric.Float64Histogram
	totalSlotsGauge    metric.Int64UpDownCounter
}

func NewInstrumentedFacility(facility *Facility, telemetry *TelemetryProvider) (*InstrumentedFacility, error) {
	meter := telemetry.Meter()

	checkInOperations, err := meter.Int64Counter("checkin_operations_total",
		metric.WithDescription("Total number of vehicle check-in operations"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	checkOutOperations, err := meter.Int64Counter("checkout_operations_total",
		metric.WithDescription("Total number of vehicle check-out operations"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	occupancyGauge, err := meter.Int64UpDownCounter("facility_occupancy",
		metric.WithDescription("Current number of occupied slots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	revenueTotal, err := meter.Int64Counter("facility_revenue_total",
		metric.WithDescription("Total settled parking fees"),
		metric.WithUnit("{RWF}"))
	if err != nil {
		return nil, err
	}

	operationDuration, err := meter.Float64Histogram("operation_duration_seconds",
		metric.WithDescription("Duration of facility operations"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	totalSlotsGauge, err := meter.Int64UpDownCounter("facility_total_slots",
		metric.WithDescription("Total number of provisioned slots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	return &InstrumentedFacility{
		Facility:           facility,
		telemetry:          telemetry,
		checkInOperations:  checkInOperations,
		checkOutOperations: checkOutOperations,
		occupancyGauge:     occupancyGauge,
		revenueTotal:       revenueTotal,
		operationDuration:  operationDuration,
		totalSlotsGauge:    totalSlotsGauge,
	}, nil
}

func (ifc *InstrumentedFacility) AddSlot(ctx context.Context, label string) (*Slot, bool) {
	_, span := ifc.telemetry.Tracer().Start(ctx, "facility.add_slot",
		trace.WithAttributes(attribute.String("slot.label", label)))
	defer span.End()

	slot, duplicate := ifc.Facility.AddSlot(label)
	if duplicate {
		span.AddEvent("duplicate_label")
	}
	ifc.totalSlotsGauge.Add(ctx, 1)
	return slot, duplicate
}

func (ifc *InstrumentedFacility) CheckIn(ctx context.Context, plate, driverName, driverPhone, requestedSlotID string) (*Occupant, error) {
	ctx, span := ifc.telemetry.Tracer().Start(ctx, "facility.check_in",
		trace.WithAttributes(
			attribute.String("vehicle.plate", plate),
		))
	defer span.End()

	start := time.Now()

	span.AddEvent("finding_available_slot")

	occupant, err := ifc.Facility.CheckIn(plate, driverName, driverPhone, requestedSlotID)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "check_in"),
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", "failed"))
		ifc.checkInOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	} else {
		labels = append(labels, attribute.String("status", "success"))
		span.SetAttributes(attribute.String("allocated_slot_id", occupant.SlotID))
		span.AddEvent("slot_allocated", trace.WithAttributes(
			attribute.String("slot_id", occupant.SlotID),
		))

		ifc.checkInOperations.Add(ctx, 1, metric.WithAttributes(labels...))
		ifc.occupancyGauge.Add(ctx, 1)
	}

	ifc.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return occupant, err
}

func (ifc *InstrumentedFacility) CheckOut(ctx context.Context, slotID string) (Transaction, error) {
	ctx, span := ifc.telemetry.Tracer().Start(ctx, "facility.check_out",
		trace.WithAttributes(attribute.String("slot.id", slotID)))
	defer span.End()

	start := time.Now()

	span.AddEvent("settling_visit")

	tx, err := ifc.Facility.CheckOut(slotID)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "check_out"),
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", "failed"))
		ifc.checkOutOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	} else {
		labels = append(labels, attribute.String("status", "success"))
		span.SetAttributes(
			attribute.String("transaction.id", tx.ID),
			attribute.Int64("transaction.fee", tx.Fee),
			attribute.Int64("transaction.duration_minutes", tx.DurationMinutes),
		)
		span.AddEvent("visit_settled", trace.WithAttributes(
			attribute.String("slot_label", tx.SlotLabel),
		))

		ifc.checkOutOperations.Add(ctx, 1, metric.WithAttributes(labels...))
		ifc.occupancyGauge.Add(ctx, -1)
		ifc.revenueTotal.Add(ctx, tx.Fee)
	}

	ifc.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return tx, err
}

func (ifc *InstrumentedFacility) ForceRelease(ctx context.Context, slotID string) (*Occupant, error) {
	ctx, span := ifc.telemetry.Tracer().Start(ctx, "facility.force_release",
		trace.WithAttributes(attribute.String("slot.id", slotID)))
	defer span.End()

	occupant, err := ifc.Facility.ForceRelease(slotID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// Billing history is discarded here, which is why this is never part
	// of the normal visit flow.
	span.AddEvent("occupant_discarded", trace.WithAttributes(
		attribute.String("vehicle.plate", occupant.Plate),
	))
	ifc.occupancyGauge.Add(ctx, -1)
	return occupant, nil
}
