package store

import (
	"context"
	"sync/atomic"
	"time"

	"parking-facility/internal/logging"
	"parking-facility/internal/parking"
)

// Saver debounces persistence: mutations mark the state dirty and a
// background loop flushes at most once per interval. Flush must be called
// before shutdown so the last transactions are never lost.
type Saver struct {
	store    *Store
	facility *parking.Facility
	interval time.Duration
	dirty    atomic.Bool
}

func NewSaver(store *Store, facility *parking.Facility, interval time.Duration) *Saver {
	saver := &Saver{
		store:    store,
		facility: facility,
		interval: interval,
	}
	facility.OnChange(saver.MarkDirty)
	return saver
}

func (s *Saver) MarkDirty() {
	s.dirty.Store(true)
}

// Run flushes dirty state every interval until the context is cancelled.
func (s *Saver) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.dirty.Swap(false) {
				continue
			}
			if err := s.flush(ctx); err != nil {
				logging.Error(ctx).Err(err).Msg("failed to persist facility state")
				s.dirty.Store(true)
			}
		}
	}
}

// Flush persists the current state unconditionally.
func (s *Saver) Flush(ctx context.Context) error {
	s.dirty.Store(false)
	return s.flush(ctx)
}

func (s *Saver) flush(ctx context.Context) error {
	state := EncodeState(s.facility.Slots(), s.facility.Transactions())
	return s.store.SaveState(ctx, state)
}

// Restore loads the last snapshot into the facility.
func Restore(ctx context.Context, st *Store, facility *parking.Facility) error {
	state, err := st.LoadState(ctx)
	if err != nil {
		return err
	}
	slots, transactions, err := DecodeState(state)
	if err != nil {
		return err
	}
	facility.RestoreState(slots, transactions)
	return nil
}
