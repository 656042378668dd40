package parking

import "time"

// Tariff is the pricing policy: an hourly rate and a minimum fee, both in
// whole currency units (RWF).
type Tariff struct {
	HourlyRate int64
	MinimumFee int64
}

// ComputeFee bills the elapsed interval between entry and now. Every started
// hour is billed in full (a one minute stay bills a whole hour), and the
// result is floored at the minimum fee. A negative interval is an error.
//
// The function is pure: it is called repeatedly for live fee display and once
// more at settlement, and both must agree.
func (t Tariff) ComputeFee(entry, now time.Time) (int64, error) {
	elapsed := now.Sub(entry)
	if elapsed < 0 {
		return 0, ErrNegativeDuration
	}

	// Integer duration math so exact hour boundaries never suffer float drift.
	hours := int64(elapsed / time.Hour)
	if elapsed%time.Hour > 0 {
		hours++
	}

	fee := hours * t.HourlyRate
	if fee < t.MinimumFee {
		fee = t.MinimumFee
	}
	return fee, nil
}

// DurationMinutes is the settled visit duration: whole minutes, truncated.
func DurationMinutes(entry, exit time.Time) int64 {
	return int64(exit.Sub(entry) / time.Minute)
}

// ElapsedParts splits the interval between entry and now into whole hours,
// minutes and seconds, truncated, for display.
func ElapsedParts(entry, now time.Time) (hours, minutes, seconds int) {
	elapsed := now.Sub(entry)
	if elapsed < 0 {
		elapsed = 0
	}
	hours = int(elapsed / time.Hour)
	elapsed -= time.Duration(hours) * time.Hour
	minutes = int(elapsed / time.Minute)
	elapsed -= time.Duration(minutes) * time.Minute
	seconds = int(elapsed / time.Second)
	return hours, minutes, seconds
}
