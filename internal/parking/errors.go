package parking

import "errors"

var (
	// ErrNoCapacity is returned when a check-in finds no available slot.
	ErrNoCapacity = errors.New("no available slot")

	// ErrSlotUnavailable is returned when assigning to a slot that is not available.
	ErrSlotUnavailable = errors.New("slot is not available")

	// ErrSlotNotOccupied is returned when releasing or checking out a slot
	// that has no occupant.
	ErrSlotNotOccupied = errors.New("slot is not occupied")

	// ErrInvalidTransaction is returned by the ledger when a transaction's
	// exit time is not after its entry time or its fee is below the minimum.
	ErrInvalidTransaction = errors.New("invalid transaction")

	// ErrNotFound is returned when editing or deleting an unknown transaction.
	ErrNotFound = errors.New("transaction not found")

	// ErrNegativeDuration is returned when the clock reports an instant
	// earlier than the entry time. It is surfaced, never clamped.
	ErrNegativeDuration = errors.New("negative duration")

	// ErrSlotNotFound is returned when an operation references an unknown slot.
	ErrSlotNotFound = errors.New("slot not found")
)
