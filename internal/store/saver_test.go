package store

import (
	"context"
	"testing"
	"time"

	"parking-facility/internal/parking"
)

func TestSaverFlushPersistsFacilityState(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	facility := parking.NewFacility(parking.Tariff{HourlyRate: 500, MinimumFee: 300}, nil)
	facility.AddSlot("A1")
	facility.AddSlot("A2")
	facility.CheckIn("RAB123X", "Alice", "", "")

	saver := NewSaver(s, facility, time.Second)
	if err := saver.Flush(ctx); err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}

	restored := parking.NewFacility(parking.Tariff{HourlyRate: 500, MinimumFee: 300}, nil)
	if err := Restore(ctx, s, restored); err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}

	stats := restored.Stats()
	if stats.TotalSlots != 2 {
		t.Errorf("Expected 2 slots after restore, got %d", stats.TotalSlots)
	}
	if stats.OccupiedSlots != 1 {
		t.Errorf("Expected 1 occupied slot after restore, got %d", stats.OccupiedSlots)
	}
}

func TestSaverMarksDirtyOnFacilityChange(t *testing.T) {
	s := openTestStore(t)

	facility := parking.NewFacility(parking.Tariff{HourlyRate: 500, MinimumFee: 300}, nil)
	saver := NewSaver(s, facility, time.Second)

	if saver.dirty.Load() {
		t.Fatal("Expected a fresh saver to start clean")
	}
	facility.AddSlot("A1")
	if !saver.dirty.Load() {
		t.Error("Expected a mutation to mark the saver dirty")
	}

	if err := saver.Flush(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if saver.dirty.Load() {
		t.Error("Expected flush to clear the dirty flag")
	}
}

func TestRestoreFromEmptyStoreLeavesFacilityEmpty(t *testing.T) {
	s := openTestStore(t)

	facility := parking.NewFacility(parking.Tariff{HourlyRate: 500, MinimumFee: 300}, nil)
	if err := Restore(context.Background(), s, facility); err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if stats := facility.Stats(); stats.TotalSlots != 0 {
		t.Errorf("Expected an empty facility, got %d slots", stats.TotalSlots)
	}
}
