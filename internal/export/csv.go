// Package export renders the visit ledger as a tabular CSV report.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"parking-facility/internal/parking"
)

var header = []string{"plate", "driver_name", "entry_time", "exit_time", "duration_minutes", "fee", "slot_label"}

// WriteCSV writes one row per transaction in ledger insertion order.
// Timestamps are RFC 3339 with second precision.
func WriteCSV(w io.Writer, transactions []parking.Transaction) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return err
	}

	for _, tx := range transactions {
		row := []string{
			tx.Plate,
			tx.DriverName,
			tx.EntryTime.Truncate(time.Second).Format(time.RFC3339),
			tx.ExitTime.Truncate(time.Second).Format(time.RFC3339),
			strconv.FormatInt(tx.DurationMinutes, 10),
			strconv.FormatInt(tx.Fee, 10),
			tx.SlotLabel,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
