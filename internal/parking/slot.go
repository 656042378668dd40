package parking

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type SlotStatus string

const (
	StatusAvailable   SlotStatus = "available"
	StatusOccupied    SlotStatus = "occupied"
	StatusMaintenance SlotStatus = "maintenance"
)

// Occupant is an open visit: a vehicle currently parked in a slot. It is
// owned by exactly one slot and is converted into a Transaction on checkout.
type Occupant struct {
	ID          string
	Plate       string
	DriverName  string
	DriverPhone string
	EntryTime   time.Time
	SlotID      string
}

func NewOccupant(plate, driverName, driverPhone string, entry time.Time) *Occupant {
	return &Occupant{
		ID:          uuid.New().String(),
		Plate:       strings.ToUpper(strings.TrimSpace(plate)),
		DriverName:  driverName,
		DriverPhone: driverPhone,
		EntryTime:   entry,
	}
}

// Slot is a single parking space. CurrentOccupant is non-nil exactly when
// Status is occupied; both fields change together in Assign and Release.
type Slot struct {
	ID              string
	Label           string
	Status          SlotStatus
	CurrentOccupant *Occupant
}

func NewSlot(label string) *Slot {
	return &Slot{
		ID:     uuid.New().String(),
		Label:  label,
		Status: StatusAvailable,
	}
}

// Assign parks an occupant in the slot. Legal only from available.
func (s *Slot) Assign(occupant *Occupant) error {
	if s.Status != StatusAvailable {
		return ErrSlotUnavailable
	}
	occupant.SlotID = s.ID
	s.CurrentOccupant = occupant
	s.Status = StatusOccupied
	return nil
}

// Release clears the occupant and returns it. Legal only from occupied.
func (s *Slot) Release() (*Occupant, error) {
	if s.Status != StatusOccupied {
		return nil, ErrSlotNotOccupied
	}
	occupant := s.CurrentOccupant
	s.CurrentOccupant = nil
	s.Status = StatusAvailable
	return occupant, nil
}
