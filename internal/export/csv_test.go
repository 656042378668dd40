package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"parking-facility/internal/parking"
)

func TestWriteCSVHeaderOnlyForEmptyLedger(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}

	if buf.String() != "plate,driver_name,entry_time,exit_time,duration_minutes,fee,slot_label\n" {
		t.Errorf("Unexpected header row: %q", buf.String())
	}
}

func TestWriteCSVRowsInInsertionOrder(t *testing.T) {
	entry := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	transactions := []parking.Transaction{
		{
			ID: "tx-1", Plate: "RAB123X", DriverName: "Alice",
			EntryTime: entry, ExitTime: entry.Add(45 * time.Minute),
			DurationMinutes: 45, Fee: 500, SlotLabel: "A1",
		},
		{
			ID: "tx-2", Plate: "RAC456Y", DriverName: "Bob",
			EntryTime: entry.Add(time.Hour), ExitTime: entry.Add(3 * time.Hour),
			DurationMinutes: 120, Fee: 1000, SlotLabel: "A2",
		},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, transactions); err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if len(rows) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d", len(rows))
	}

	first := rows[1]
	if first[0] != "RAB123X" || first[1] != "Alice" || first[6] != "A1" {
		t.Errorf("Unexpected first row: %v", first)
	}
	if first[2] != "2025-03-10T08:00:00Z" || first[3] != "2025-03-10T08:45:00Z" {
		t.Errorf("Unexpected timestamps: %v", first)
	}
	if first[4] != "45" || first[5] != "500" {
		t.Errorf("Unexpected duration or fee: %v", first)
	}

	second := rows[2]
	if second[0] != "RAC456Y" || second[5] != "1000" {
		t.Errorf("Expected rows in ledger order, got %v", second)
	}
}
