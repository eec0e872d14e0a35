package models

import "time"

// SyncMeta holds per-entity refresh bookkeeping for the smart-sync scheduler.
// Never user-visible and never consulted for correctness outside the scheduler.
type SyncMeta struct {
	ItemID      string `boltholdKey:"ItemID"`
	LastSuccess time.Time
	LastAttempt time.Time
	Failures    int // consecutive failures, reset on success
	LastStatus  SyncStatus
}

// NeverSynced reports whether the entity has ever been refreshed successfully
func (m *SyncMeta) NeverSynced() bool {
	return m == nil || m.LastSuccess.IsZero()
}

// SyncRun summarizes one full scheduler run. A single record is kept,
// overwritten on every run; diagnostics only.
type SyncRun struct {
	FinishedAt time.Time
	Synced     int
	Skipped    int
	Errored    int
}
