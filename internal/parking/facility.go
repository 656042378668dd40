package parking

import (
	"sync"

	"github.com/google/uuid"
)

// Facility is the allocation service: it owns the slot registry and the
// visit ledger and orchestrates arrivals and settlements. A single mutex
// serializes mutations; read projections only recompute from immutable
// entry timestamps, so a periodic refresh tick is safe alongside reads.
type Facility struct {
	mu       sync.Mutex
	registry *SlotRegistry
	ledger   *Ledger
	tariff   Tariff
	clock    Clock

	onChange func()
}

func NewFacility(tariff Tariff, clock Clock) *Facility {
	if clock == nil {
		clock = SystemClock()
	}
	return &Facility{
		registry: NewSlotRegistry(),
		ledger:   NewLedger(tariff.MinimumFee),
		tariff:   tariff,
		clock:    clock,
	}
}

// OnChange registers a hook invoked after every successful mutation.
// The persistence layer uses it to mark the facility state dirty.
func (f *Facility) OnChange(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onChange = fn
}

func (f *Facility) notify() {
	if f.onChange != nil {
		f.onChange()
	}
}

// AddSlot provisions a new available slot. Duplicate labels are allowed;
// the second return value reports one was found so the caller can warn.
func (f *Facility) AddSlot(label string) (*Slot, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	slot, duplicate := f.registry.AddSlot(label)
	f.notify()
	return slot, duplicate
}

// CheckIn assigns a vehicle to a slot and opens a visit. The requested slot
// is used when it exists and is available; otherwise the first available
// slot is taken. When no slot is available nothing is mutated and
// ErrNoCapacity is returned.
func (f *Facility) CheckIn(plate, driverName, driverPhone, requestedSlotID string) (*Occupant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var slot *Slot
	if requestedSlotID != "" {
		if requested, err := f.registry.Get(requestedSlotID); err == nil && requested.Status == StatusAvailable {
			slot = requested
		}
	}
	if slot == nil {
		first, err := f.registry.FindFirstAvailable()
		if err != nil {
			return nil, err
		}
		slot = first
	}

	occupant := NewOccupant(plate, driverName, driverPhone, f.clock.Now())
	if err := slot.Assign(occupant); err != nil {
		return nil, err
	}
	f.notify()
	return occupant, nil
}

// CheckOut settles the visit occupying the slot: it computes the fee from
// the occupant's entry time, appends the transaction to the ledger and only
// then releases the slot. The ordering is deliberate: billing history must
// be recorded before the slot is reusable, so a failure between the two
// steps can at worst leave the slot occupied, never lose a transaction.
func (f *Facility) CheckOut(slotID string) (Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	slot, err := f.registry.Get(slotID)
	if err != nil {
		return Transaction{}, err
	}
	if slot.Status != StatusOccupied {
		return Transaction{}, ErrSlotNotOccupied
	}
	occupant := slot.CurrentOccupant

	exit := f.clock.Now()
	fee, err := f.tariff.ComputeFee(occupant.EntryTime, exit)
	if err != nil {
		return Transaction{}, err
	}

	tx := Transaction{
		ID:              uuid.New().String(),
		Plate:           occupant.Plate,
		DriverName:      occupant.DriverName,
		EntryTime:       occupant.EntryTime,
		ExitTime:        exit,
		DurationMinutes: DurationMinutes(occupant.EntryTime, exit),
		Fee:             fee,
		SlotLabel:       slot.Label,
	}
	if err := f.ledger.Append(tx); err != nil {
		return Transaction{}, err
	}
	if _, err := slot.Release(); err != nil {
		return Transaction{}, err
	}
	f.notify()
	return tx, nil
}

// ForceRelease discards the slot's occupant without billing. No transaction
// is created; the open visit is lost. Callers must confirm intent first.
func (f *Facility) ForceRelease(slotID string) (*Occupant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	occupant, err := f.registry.ForceRelease(slotID)
	if err != nil {
		return nil, err
	}
	f.notify()
	return occupant, nil
}

// EditTransaction and DeleteTransaction are administrative overrides on the
// otherwise append-only ledger.
func (f *Facility) EditTransaction(id string, patch TransactionPatch) (Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, err := f.ledger.Edit(id, patch)
	if err != nil {
		return Transaction{}, err
	}
	f.notify()
	return tx, nil
}

func (f *Facility) DeleteTransaction(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ledger.Delete(id); err != nil {
		return err
	}
	f.notify()
	return nil
}

// SlotView is the live, read-only projection of one slot. Fee and elapsed
// parts are recomputed from the entry timestamp on every call.
type SlotView struct {
	SlotID         string
	Label          string
	Status         SlotStatus
	Plate          string
	DriverName     string
	EntryTime      string
	ElapsedHours   int
	ElapsedMinutes int
	ElapsedSeconds int
	LiveFee        int64
}

// LiveStatus projects every slot with its live fee and elapsed time. It
// mutates nothing and may be polled by an external scheduler.
func (f *Facility) LiveStatus() []SlotView {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.clock.Now()
	views := make([]SlotView, 0, len(f.registry.Slots()))
	for _, slot := range f.registry.Slots() {
		view := SlotView{SlotID: slot.ID, Label: slot.Label, Status: slot.Status}
		if slot.Status == StatusOccupied {
			occupant := slot.CurrentOccupant
			view.Plate = occupant.Plate
			view.DriverName = occupant.DriverName
			view.EntryTime = occupant.EntryTime.Format("2006-01-02 15:04:05")
			view.ElapsedHours, view.ElapsedMinutes, view.ElapsedSeconds = ElapsedParts(occupant.EntryTime, now)
			if fee, err := f.tariff.ComputeFee(occupant.EntryTime, now); err == nil {
				view.LiveFee = fee
			}
		}
		views = append(views, view)
	}
	return views
}

// Stats are derived on every call from the ledger and the registry, never
// stored, so they cannot drift from the underlying collections.
type Stats struct {
	TotalRevenue     int64
	TotalEntries     int
	AvailableSlots   int
	OccupiedSlots    int
	MaintenanceSlots int
	TotalSlots       int
}

func (f *Facility) Stats() Stats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statsLocked()
}

func (f *Facility) statsLocked() Stats {
	occupied := f.registry.CountByStatus(StatusOccupied)
	return Stats{
		TotalRevenue:     f.ledger.RevenueTotal(),
		TotalEntries:     f.ledger.CountAll() + occupied,
		AvailableSlots:   f.registry.CountByStatus(StatusAvailable),
		OccupiedSlots:    occupied,
		MaintenanceSlots: f.registry.CountByStatus(StatusMaintenance),
		TotalSlots:       len(f.registry.Slots()),
	}
}

// Snapshot is the read-only view handed to the summarization collaborator.
type Snapshot struct {
	Stats              Stats
	RecentTransactions []Transaction
}

func (f *Facility) Snapshot(recent int) Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Snapshot{
		Stats:              f.statsLocked(),
		RecentTransactions: f.ledger.Recent(recent),
	}
}

// Reporting pass-throughs, serialized with mutations.

func (f *Facility) RevenueByDay(from, to string) ([]DayRevenue, error) {
	fromTime, err := parseDate(from)
	if err != nil {
		return nil, err
	}
	toTime, err := parseDate(to)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ledger.RevenueByDay(fromTime, toTime), nil
}

func (f *Facility) EntriesByHourOfDay() [24]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ledger.EntriesByHourOfDay()
}

// DurationHistogram classifies settled visits and, when includeActive is
// set, visits still in progress (by elapsed time against the clock).
func (f *Facility) DurationHistogram(buckets []DurationBucket, includeActive bool) []BucketCount {
	f.mu.Lock()
	defer f.mu.Unlock()

	counts := f.ledger.DurationHistogram(buckets)
	if includeActive {
		now := f.clock.Now()
		for _, occupant := range f.registry.ActiveOccupants() {
			if i := bucketIndex(DurationMinutes(occupant.EntryTime, now), buckets); i >= 0 {
				counts[i].Count++
			}
		}
	}
	return counts
}

func (f *Facility) Transactions() []Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ledger.All()
}

func (f *Facility) Tariff() Tariff {
	return f.tariff
}

// Slots returns copies of the registry's slots for persistence and display.
func (f *Facility) Slots() []*Slot {
	f.mu.Lock()
	defer f.mu.Unlock()
	slots := f.registry.Slots()
	out := make([]*Slot, len(slots))
	for i, s := range slots {
		copied := *s
		if s.CurrentOccupant != nil {
			occupant := *s.CurrentOccupant
			copied.CurrentOccupant = &occupant
		}
		out[i] = &copied
	}
	return out
}

// SlotByRef resolves a slot by id first, then by label, for UI layers that
// accept either.
func (f *Facility) SlotByRef(ref string) (*Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if slot, err := f.registry.Get(ref); err == nil {
		return slot, nil
	}
	return f.registry.FindByLabel(ref)
}

// RestoreState replaces the registry and ledger contents, used by the
// persistence adapter at startup. Restored transactions bypass append
// validation: they were validated when first recorded.
func (f *Facility) RestoreState(slots []*Slot, transactions []Transaction) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registry = &SlotRegistry{slots: slots}
	f.ledger = &Ledger{transactions: transactions, minimumFee: f.tariff.MinimumFee}
}
