package parking

// SlotRegistry holds the facility's slots in insertion order and enforces
// the one-vehicle-per-slot rule through the Slot state machine.
type SlotRegistry struct {
	slots []*Slot
}

func NewSlotRegistry() *SlotRegistry {
	return &SlotRegistry{}
}

// AddSlot appends a new available slot. Labels are not required to be unique;
// the second return value reports whether the label already exists so callers
// can warn instead of rejecting.
func (r *SlotRegistry) AddSlot(label string) (*Slot, bool) {
	duplicate := false
	for _, s := range r.slots {
		if s.Label == label {
			duplicate = true
			break
		}
	}
	slot := NewSlot(label)
	r.slots = append(r.slots, slot)
	return slot, duplicate
}

// FindFirstAvailable returns the first available slot in insertion order.
func (r *SlotRegistry) FindFirstAvailable() (*Slot, error) {
	for _, s := range r.slots {
		if s.Status == StatusAvailable {
			return s, nil
		}
	}
	return nil, ErrNoCapacity
}

func (r *SlotRegistry) Get(id string) (*Slot, error) {
	for _, s := range r.slots {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, ErrSlotNotFound
}

// FindByLabel returns the first slot carrying the label. Labels may be
// duplicated, in which case earlier slots win.
func (r *SlotRegistry) FindByLabel(label string) (*Slot, error) {
	for _, s := range r.slots {
		if s.Label == label {
			return s, nil
		}
	}
	return nil, ErrSlotNotFound
}

// ForceRelease discards the occupant without billing and returns it.
// This loses the visit: no transaction is created. Callers must confirm
// intent before invoking it.
func (r *SlotRegistry) ForceRelease(id string) (*Occupant, error) {
	slot, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	return slot.Release()
}

// Slots returns the registry's slots in insertion order.
func (r *SlotRegistry) Slots() []*Slot {
	return r.slots
}

func (r *SlotRegistry) CountByStatus(status SlotStatus) int {
	count := 0
	for _, s := range r.slots {
		if s.Status == status {
			count++
		}
	}
	return count
}

// ActiveOccupants returns the occupants of all occupied slots in slot order.
func (r *SlotRegistry) ActiveOccupants() []*Occupant {
	var occupants []*Occupant
	for _, s := range r.slots {
		if s.Status == StatusOccupied {
			occupants = append(occupants, s.CurrentOccupant)
		}
	}
	return occupants
}
