// Package store persists facility state as serialized snapshots in a
// SQLite-backed key-value table. The engine stays unaware of the storage
// technology: it only hands over slots and transactions and gets them back.
package store

import (
	"time"

	"parking-facility/internal/parking"
)

// Timestamps round-trip as RFC 3339 with second precision.
const timeLayout = time.RFC3339

type OccupantRecord struct {
	ID          string `json:"id"`
	Plate       string `json:"plate"`
	DriverName  string `json:"driver_name"`
	DriverPhone string `json:"driver_phone"`
	EntryTime   string `json:"entry_time"`
	SlotID      string `json:"slot_id"`
}

type SlotRecord struct {
	ID       string          `json:"id"`
	Label    string          `json:"label"`
	Status   string          `json:"status"`
	Occupant *OccupantRecord `json:"occupant,omitempty"`
}

type TransactionRecord struct {
	ID              string `json:"id"`
	Plate           string `json:"plate"`
	DriverName      string `json:"driver_name"`
	EntryTime       string `json:"entry_time"`
	ExitTime        string `json:"exit_time"`
	DurationMinutes int64  `json:"duration_minutes"`
	Fee             int64  `json:"fee"`
	SlotLabel       string `json:"slot_label"`
}

type State struct {
	Slots        []SlotRecord        `json:"slots"`
	Transactions []TransactionRecord `json:"transactions"`
}

func EncodeState(slots []*parking.Slot, transactions []parking.Transaction) State {
	state := State{
		Slots:        make([]SlotRecord, 0, len(slots)),
		Transactions: make([]TransactionRecord, 0, len(transactions)),
	}

	for _, slot := range slots {
		record := SlotRecord{
			ID:     slot.ID,
			Label:  slot.Label,
			Status: string(slot.Status),
		}
		if slot.CurrentOccupant != nil {
			occupant := slot.CurrentOccupant
			record.Occupant = &OccupantRecord{
				ID:          occupant.ID,
				Plate:       occupant.Plate,
				DriverName:  occupant.DriverName,
				DriverPhone: occupant.DriverPhone,
				EntryTime:   encodeTime(occupant.EntryTime),
				SlotID:      occupant.SlotID,
			}
		}
		state.Slots = append(state.Slots, record)
	}

	for _, tx := range transactions {
		state.Transactions = append(state.Transactions, TransactionRecord{
			ID:              tx.ID,
			Plate:           tx.Plate,
			DriverName:      tx.DriverName,
			EntryTime:       encodeTime(tx.EntryTime),
			ExitTime:        encodeTime(tx.ExitTime),
			DurationMinutes: tx.DurationMinutes,
			Fee:             tx.Fee,
			SlotLabel:       tx.SlotLabel,
		})
	}

	return state
}

func DecodeState(state State) ([]*parking.Slot, []parking.Transaction, error) {
	slots := make([]*parking.Slot, 0, len(state.Slots))
	for _, record := range state.Slots {
		slot := &parking.Slot{
			ID:     record.ID,
			Label:  record.Label,
			Status: parking.SlotStatus(record.Status),
		}
		if record.Occupant != nil {
			entry, err := time.Parse(timeLayout, record.Occupant.EntryTime)
			if err != nil {
				return nil, nil, err
			}
			slot.CurrentOccupant = &parking.Occupant{
				ID:          record.Occupant.ID,
				Plate:       record.Occupant.Plate,
				DriverName:  record.Occupant.DriverName,
				DriverPhone: record.Occupant.DriverPhone,
				EntryTime:   entry,
				SlotID:      record.Occupant.SlotID,
			}
		}
		slots = append(slots, slot)
	}

	transactions := make([]parking.Transaction, 0, len(state.Transactions))
	for _, record := range state.Transactions {
		entry, err := time.Parse(timeLayout, record.EntryTime)
		if err != nil {
			return nil, nil, err
		}
		exit, err := time.Parse(timeLayout, record.ExitTime)
		if err != nil {
			return nil, nil, err
		}
		transactions = append(transactions, parking.Transaction{
			ID:              record.ID,
			Plate:           record.Plate,
			DriverName:      record.DriverName,
			EntryTime:       entry,
			ExitTime:        exit,
			DurationMinutes: record.DurationMinutes,
			Fee:             record.Fee,
			SlotLabel:       record.SlotLabel,
		})
	}

	return slots, transactions, nil
}

func encodeTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(timeLayout)
}
