package parking

import "time"

const dateLayout = "2006-01-02"

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// Transaction is the immutable record of a settled visit.
type Transaction struct {
	ID              string
	Plate           string
	DriverName      string
	EntryTime       time.Time
	ExitTime        time.Time
	DurationMinutes int64
	Fee             int64
	SlotLabel       string
}

// TransactionPatch carries administrative corrections. Nil fields are left
// untouched. Fee and duration are never recomputed on edit; the caller is
// responsible for supplying consistent values.
type TransactionPatch struct {
	Plate           *string
	DriverName      *string
	EntryTime       *time.Time
	ExitTime        *time.Time
	DurationMinutes *int64
	Fee             *int64
	SlotLabel       *string
}

// Ledger is the ordered, append-only collection of completed visits.
// Edit and Delete exist as explicit administrative overrides only.
type Ledger struct {
	transactions []Transaction
	minimumFee   int64
}

func NewLedger(minimumFee int64) *Ledger {
	return &Ledger{minimumFee: minimumFee}
}

// Append records a settled visit. Transactions whose exit time is not
// strictly after their entry time, or whose fee is below the minimum,
// are rejected.
func (l *Ledger) Append(tx Transaction) error {
	if !tx.ExitTime.After(tx.EntryTime) {
		return ErrInvalidTransaction
	}
	if tx.Fee < l.minimumFee {
		return ErrInvalidTransaction
	}
	l.transactions = append(l.transactions, tx)
	return nil
}

func (l *Ledger) RevenueTotal() int64 {
	var total int64
	for _, tx := range l.transactions {
		total += tx.Fee
	}
	return total
}

func (l *Ledger) CountAll() int {
	return len(l.transactions)
}

// All returns the transactions in insertion order.
func (l *Ledger) All() []Transaction {
	out := make([]Transaction, len(l.transactions))
	copy(out, l.transactions)
	return out
}

// Recent returns the most recent n transactions, oldest first.
func (l *Ledger) Recent(n int) []Transaction {
	if n >= len(l.transactions) {
		return l.All()
	}
	out := make([]Transaction, n)
	copy(out, l.transactions[len(l.transactions)-n:])
	return out
}

func (l *Ledger) Find(id string) (Transaction, error) {
	for _, tx := range l.transactions {
		if tx.ID == id {
			return tx, nil
		}
	}
	return Transaction{}, ErrNotFound
}

// Edit applies an administrative correction to an existing transaction.
func (l *Ledger) Edit(id string, patch TransactionPatch) (Transaction, error) {
	for i := range l.transactions {
		if l.transactions[i].ID != id {
			continue
		}
		tx := &l.transactions[i]
		if patch.Plate != nil {
			tx.Plate = *patch.Plate
		}
		if patch.DriverName != nil {
			tx.DriverName = *patch.DriverName
		}
		if patch.EntryTime != nil {
			tx.EntryTime = *patch.EntryTime
		}
		if patch.ExitTime != nil {
			tx.ExitTime = *patch.ExitTime
		}
		if patch.DurationMinutes != nil {
			tx.DurationMinutes = *patch.DurationMinutes
		}
		if patch.Fee != nil {
			tx.Fee = *patch.Fee
		}
		if patch.SlotLabel != nil {
			tx.SlotLabel = *patch.SlotLabel
		}
		return *tx, nil
	}
	return Transaction{}, ErrNotFound
}

// Delete removes a transaction. Administrative override, not visit flow.
func (l *Ledger) Delete(id string) error {
	for i := range l.transactions {
		if l.transactions[i].ID == id {
			l.transactions = append(l.transactions[:i], l.transactions[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// DayRevenue is the summed fee for one calendar day.
type DayRevenue struct {
	Date    string
	Revenue int64
}

// RevenueByDay buckets fees by the calendar date of the exit timestamp,
// evaluated in from's location. Every day in [from, to] is reported, zero
// for days without transactions.
func (l *Ledger) RevenueByDay(from, to time.Time) []DayRevenue {
	loc := from.Location()
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, loc)

	byDate := make(map[string]int64)
	for _, tx := range l.transactions {
		byDate[tx.ExitTime.In(loc).Format(dateLayout)] += tx.Fee
	}

	var days []DayRevenue
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		key := day.Format(dateLayout)
		days = append(days, DayRevenue{Date: key, Revenue: byDate[key]})
	}
	return days
}

// EntriesByHourOfDay counts transactions by the hour of their entry
// timestamp, 0 through 23.
func (l *Ledger) EntriesByHourOfDay() [24]int {
	var hours [24]int
	for _, tx := range l.transactions {
		hours[tx.EntryTime.Hour()]++
	}
	return hours
}

// DurationBucket is a named half-open range [LoMinutes, HiMinutes) of visit
// durations. HiMinutes <= 0 marks the final, unbounded bucket.
type DurationBucket struct {
	Label     string
	LoMinutes int64
	HiMinutes int64
}

// DefaultDurationBuckets are the standard reporting ranges.
func DefaultDurationBuckets() []DurationBucket {
	return []DurationBucket{
		{Label: "<1h", LoMinutes: 0, HiMinutes: 60},
		{Label: "1-3h", LoMinutes: 60, HiMinutes: 180},
		{Label: ">3h", LoMinutes: 180},
	}
}

// BucketCount pairs a bucket label with the number of visits that fell in it.
type BucketCount struct {
	Label string
	Count int
}

// DurationHistogram classifies settled visits into the given buckets.
// A duration equal to a bucket's upper bound belongs to the next bucket.
func (l *Ledger) DurationHistogram(buckets []DurationBucket) []BucketCount {
	counts := make([]BucketCount, len(buckets))
	for i, b := range buckets {
		counts[i].Label = b.Label
	}
	for _, tx := range l.transactions {
		if i := bucketIndex(tx.DurationMinutes, buckets); i >= 0 {
			counts[i].Count++
		}
	}
	return counts
}

func bucketIndex(minutes int64, buckets []DurationBucket) int {
	for i, b := range buckets {
		if minutes < b.LoMinutes {
			continue
		}
		if b.HiMinutes <= 0 || minutes < b.HiMinutes {
			return i
		}
	}
	return -1
}
