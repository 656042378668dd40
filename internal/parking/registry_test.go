package parking

import (
	"errors"
	"testing"
	"time"
)

func TestSlotAssignAndRelease(t *testing.T) {
	slot := NewSlot("A1")
	occupant := NewOccupant("rab123x", "Alice", "0788000001", time.Now())

	if err := slot.Assign(occupant); err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if slot.Status != StatusOccupied {
		t.Errorf("Expected slot to be occupied, got %s", slot.Status)
	}
	if slot.CurrentOccupant != occupant {
		t.Error("Expected slot to hold the assigned occupant")
	}
	if occupant.Plate != "RAB123X" {
		t.Errorf("Expected plate to be uppercased, got %s", occupant.Plate)
	}

	if err := slot.Assign(occupant); !errors.Is(err, ErrSlotUnavailable) {
		t.Errorf("Expected ErrSlotUnavailable on double assign, got %v", err)
	}

	released, err := slot.Release()
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if released != occupant {
		t.Error("Expected released occupant to match the assigned one")
	}
	if slot.Status != StatusAvailable || slot.CurrentOccupant != nil {
		t.Error("Expected slot to be available with no occupant after release")
	}

	if _, err := slot.Release(); !errors.Is(err, ErrSlotNotOccupied) {
		t.Errorf("Expected ErrSlotNotOccupied on empty release, got %v", err)
	}
}

func TestRegistryFindFirstAvailable(t *testing.T) {
	registry := NewSlotRegistry()
	registry.AddSlot("A1")
	registry.AddSlot("A2")
	registry.AddSlot("A3")

	first, err := registry.FindFirstAvailable()
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if first.Label != "A1" {
		t.Errorf("Expected first available slot A1, got %s", first.Label)
	}

	first.Assign(NewOccupant("RAB001A", "Bob", "", time.Now()))

	next, err := registry.FindFirstAvailable()
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if next.Label != "A2" {
		t.Errorf("Expected next available slot A2, got %s", next.Label)
	}
}

func TestRegistryNoCapacity(t *testing.T) {
	registry := NewSlotRegistry()
	slot, _ := registry.AddSlot("A1")
	slot.Assign(NewOccupant("RAB001A", "Bob", "", time.Now()))

	if _, err := registry.FindFirstAvailable(); !errors.Is(err, ErrNoCapacity) {
		t.Errorf("Expected ErrNoCapacity, got %v", err)
	}
}

func TestRegistryDuplicateLabelAllowed(t *testing.T) {
	registry := NewSlotRegistry()

	_, duplicate := registry.AddSlot("A1")
	if duplicate {
		t.Error("Expected first label not to be reported as duplicate")
	}

	second, duplicate := registry.AddSlot("A1")
	if !duplicate {
		t.Error("Expected duplicate label to be reported")
	}
	if second == nil {
		t.Fatal("Expected duplicate label to be allowed")
	}
	if len(registry.Slots()) != 2 {
		t.Errorf("Expected 2 slots, got %d", len(registry.Slots()))
	}
}

func TestRegistryMaintenanceExcludedFromAllocation(t *testing.T) {
	registry := NewSlotRegistry()
	slot, _ := registry.AddSlot("A1")
	slot.Status = StatusMaintenance
	registry.AddSlot("A2")

	first, err := registry.FindFirstAvailable()
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if first.Label != "A2" {
		t.Errorf("Expected maintenance slot to be skipped, got %s", first.Label)
	}

	if err := slot.Assign(NewOccupant("RAB001A", "Bob", "", time.Now())); !errors.Is(err, ErrSlotUnavailable) {
		t.Errorf("Expected ErrSlotUnavailable assigning to maintenance slot, got %v", err)
	}
}

func TestRegistryForceRelease(t *testing.T) {
	registry := NewSlotRegistry()
	slot, _ := registry.AddSlot("A1")
	occupant := NewOccupant("RAB001A", "Bob", "", time.Now())
	slot.Assign(occupant)

	discarded, err := registry.ForceRelease(slot.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if discarded.ID != occupant.ID {
		t.Error("Expected the active occupant to be returned")
	}
	if slot.Status != StatusAvailable {
		t.Errorf("Expected slot to be available, got %s", slot.Status)
	}

	if _, err := registry.ForceRelease(slot.ID); !errors.Is(err, ErrSlotNotOccupied) {
		t.Errorf("Expected ErrSlotNotOccupied, got %v", err)
	}

	if _, err := registry.ForceRelease("missing"); !errors.Is(err, ErrSlotNotFound) {
		t.Errorf("Expected ErrSlotNotFound, got %v", err)
	}
}
