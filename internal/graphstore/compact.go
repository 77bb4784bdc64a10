package graphstore

import (
	"time"

	"codegraph/internal/logging"
	"codegraph/internal/types"
)

// DefaultCompactionInterval is the tombstone GC cadence decided in
// DESIGN.md's Open Question 3 (time-triggered, not size-triggered).
const DefaultCompactionInterval = 10 * time.Minute

// StartCompaction launches a background goroutine that, every interval,
// permanently drops node rows that have carried tombstoned=1 for longer than
// DefaultCompactionInterval (giving concurrent readers a grace window before
// the row actually disappears), whatever interval the loop ticks at.
// Calling it twice without StopCompaction first replaces the running loop.
func (s *Store) StartCompaction(interval time.Duration) {
	s.compactMu.Lock()
	defer s.compactMu.Unlock()

	if interval <= 0 {
		interval = DefaultCompactionInterval
	}
	s.StopCompaction()

	stop := make(chan struct{})
	s.stopCompact = stop

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if err := s.compactOnce(); err != nil {
					logging.Get(logging.CategoryGraphStore).Warn("compaction pass failed: %v", err)
				}
			}
		}
	}()
}

// StopCompaction stops a running compaction loop, if any. Safe to call when
// none is running.
func (s *Store) StopCompaction() {
	if s.stopCompact != nil {
		close(s.stopCompact)
		s.stopCompact = nil
	}
}

func (s *Store) compactOnce() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := nowNanos() - DefaultCompactionInterval.Nanoseconds()
	res, err := s.db.Exec(`DELETE FROM nodes WHERE tombstoned = 1 AND last_seen_at < ?`, cutoff)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		logging.Get(logging.CategoryGraphStore).Debug("compaction purged %d tombstoned nodes", n)
	}
	return nil
}

// Tombstone marks a node as tombstoned without deleting its row, leaving it
// in place for the grace window StartCompaction observes. Used when a
// re-parse determines a node no longer exists in source but callers may
// still be reading it.
func (s *Store) Tombstone(id types.NodeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`UPDATE nodes SET tombstoned = 1, last_seen_at = ? WHERE id = ?`, nowNanos(), id.String())
	return err
}
