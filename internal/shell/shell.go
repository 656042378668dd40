// Package shell is the interactive command loop over the facility engine.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"parking-facility/internal/export"
	"parking-facility/internal/parking"
)

// Summarizer produces a text summary of a facility snapshot.
type Summarizer interface {
	Summarize(ctx context.Context, snapshot parking.Snapshot) string
}

type Shell struct {
	facility   *parking.Facility
	summarizer Summarizer
	currency   string
	scanner    *bufio.Scanner
}

func New(facility *parking.Facility, summarizer Summarizer, currency string) *Shell {
	return &Shell{
		facility:   facility,
		summarizer: summarizer,
		currency:   currency,
		scanner:    bufio.NewScanner(os.Stdin),
	}
}

func (s *Shell) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if !s.scanner.Scan() {
			break
		}

		input := strings.TrimSpace(s.scanner.Text())
		if input == "" {
			continue
		}

		s.processCommand(ctx, input)
	}
}

func (s *Shell) processCommand(ctx context.Context, input string) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}

	command := parts[0]

	switch command {
	case "add_slot":
		s.handleAddSlot(parts)
	case "check_in":
		s.handleCheckIn(parts)
	case "check_out":
		s.handleCheckOut(parts)
	case "status":
		s.handleStatus()
	case "stats":
		s.handleStats()
	case "force_release":
		s.handleForceRelease(parts)
	case "revenue":
		s.handleRevenue(parts)
	case "traffic":
		s.handleTraffic()
	case "durations":
		s.handleDurations()
	case "export":
		s.handleExport(parts)
	case "insights":
		s.handleInsights(ctx)
	default:
		fmt.Printf("Unknown command: %s\n", command)
	}
}

func (s *Shell) handleAddSlot(parts []string) {
	if len(parts) != 2 {
		fmt.Println("Usage: add_slot <label>")
		return
	}

	slot, duplicate := s.facility.AddSlot(parts[1])
	if duplicate {
		fmt.Printf("Warning: label %s already exists\n", slot.Label)
	}
	fmt.Printf("Added slot %s\n", slot.Label)
}

func (s *Shell) handleCheckIn(parts []string) {
	if len(parts) < 4 || len(parts) > 5 {
		fmt.Println("Usage: check_in <plate> <driver_name> <driver_phone> [slot]")
		return
	}

	requested := ""
	if len(parts) == 5 {
		slot, err := s.facility.SlotByRef(parts[4])
		if err != nil {
			fmt.Printf("Error: %s\n", err.Error())
			return
		}
		requested = slot.ID
	}

	occupant, err := s.facility.CheckIn(parts[1], parts[2], parts[3], requested)
	if err != nil {
		fmt.Printf("Error: %s\n", err.Error())
		return
	}

	slot, _ := s.facility.SlotByRef(occupant.SlotID)
	fmt.Printf("Checked in %s at slot %s\n", occupant.Plate, slot.Label)
}

func (s *Shell) handleCheckOut(parts []string) {
	if len(parts) != 2 {
		fmt.Println("Usage: check_out <slot>")
		return
	}

	slot, err := s.facility.SlotByRef(parts[1])
	if err != nil {
		fmt.Printf("Error: %s\n", err.Error())
		return
	}

	tx, err := s.facility.CheckOut(slot.ID)
	if err != nil {
		fmt.Printf("Error: %s\n", err.Error())
		return
	}

	fmt.Printf("Checked out %s from slot %s: %d min, %d %s\n",
		tx.Plate, tx.SlotLabel, tx.DurationMinutes, tx.Fee, s.currency)
}

func (s *Shell) handleStatus() {
	views := s.facility.LiveStatus()
	if len(views) == 0 {
		fmt.Println("No slots provisioned")
		return
	}

	fmt.Println("Slot\tStatus\t\tPlate\t\tElapsed\t\tLive Fee")
	for _, v := range views {
		if v.Status != parking.StatusOccupied {
			fmt.Printf("%s\t%s\n", v.Label, v.Status)
			continue
		}
		fmt.Printf("%s\t%s\t%s\t%02d:%02d:%02d\t%d %s\n",
			v.Label, v.Status, v.Plate,
			v.ElapsedHours, v.ElapsedMinutes, v.ElapsedSeconds,
			v.LiveFee, s.currency)
	}
}

func (s *Shell) handleStats() {
	stats := s.facility.Stats()
	fmt.Printf("Revenue: %d %s\n", stats.TotalRevenue, s.currency)
	fmt.Printf("Entries: %d\n", stats.TotalEntries)
	fmt.Printf("Slots: %d total, %d available, %d occupied\n",
		stats.TotalSlots, stats.AvailableSlots, stats.OccupiedSlots)
}

func (s *Shell) handleForceRelease(parts []string) {
	if len(parts) != 3 || parts[2] != "confirm" {
		fmt.Println("Usage: force_release <slot> confirm")
		fmt.Println("The active visit is discarded without billing.")
		return
	}

	slot, err := s.facility.SlotByRef(parts[1])
	if err != nil {
		fmt.Printf("Error: %s\n", err.Error())
		return
	}

	occupant, err := s.facility.ForceRelease(slot.ID)
	if err != nil {
		fmt.Printf("Error: %s\n", err.Error())
		return
	}

	fmt.Printf("Discarded visit of %s from slot %s (no transaction recorded)\n",
		occupant.Plate, slot.Label)
}

func (s *Shell) handleRevenue(parts []string) {
	if len(parts) != 3 {
		fmt.Println("Usage: revenue <from YYYY-MM-DD> <to YYYY-MM-DD>")
		return
	}

	days, err := s.facility.RevenueByDay(parts[1], parts[2])
	if err != nil {
		fmt.Printf("Error: %s\n", err.Error())
		return
	}

	for _, day := range days {
		fmt.Printf("%s\t%d %s\n", day.Date, day.Revenue, s.currency)
	}
}

func (s *Shell) handleTraffic() {
	hours := s.facility.EntriesByHourOfDay()
	for hour, count := range hours {
		if count == 0 {
			continue
		}
		fmt.Printf("%02d:00\t%d\n", hour, count)
	}
}

func (s *Shell) handleDurations() {
	counts := s.facility.DurationHistogram(parking.DefaultDurationBuckets(), true)
	for _, bucket := range counts {
		fmt.Printf("%s\t%d\n", bucket.Label, bucket.Count)
	}
}

func (s *Shell) handleExport(parts []string) {
	if len(parts) != 2 {
		fmt.Println("Usage: export <path>")
		return
	}

	file, err := os.Create(parts[1])
	if err != nil {
		fmt.Printf("Error: %s\n", err.Error())
		return
	}
	defer file.Close()

	transactions := s.facility.Transactions()
	if err := export.WriteCSV(file, transactions); err != nil {
		fmt.Printf("Error: %s\n", err.Error())
		return
	}

	fmt.Printf("Exported %d transactions to %s\n", len(transactions), parts[1])
}

func (s *Shell) handleInsights(ctx context.Context) {
	if s.summarizer == nil {
		fmt.Println("Insights are not configured")
		return
	}
	fmt.Println(s.summarizer.Summarize(ctx, s.facility.Snapshot(10)))
}
