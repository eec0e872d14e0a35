package models

import (
	"fmt"
	"time"

	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"
)

const syncRunKey = "last"

// Database wraps the bolthold store holding scheduler bookkeeping
type Database struct {
	store *bolthold.Store
}

// NewDatabase creates a new database connection
func NewDatabase(path string) (*Database, error) {
	store, err := bolthold.Open(path, 0600, &bolthold.Options{
		Options: &bbolt.Options{
			Timeout: 1 * time.Second,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Database{store: store}, nil
}

// Close closes the database connection
func (db *Database) Close() error {
	return db.store.Close()
}

// Bolt exposes the underlying bbolt handle so the local cache can share the
// same file under its own bucket.
func (db *Database) Bolt() *bbolt.DB {
	return db.store.Bolt()
}

// SyncMeta operations

// GetSyncMeta retrieves the bookkeeping record for an item, or nil when the
// item has never been attempted.
func (db *Database) GetSyncMeta(itemID string) (*SyncMeta, error) {
	var meta SyncMeta
	err := db.store.Get(itemID, &meta)
	if err == bolthold.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

// UpsertSyncMeta inserts or replaces the bookkeeping record for an item
func (db *Database) UpsertSyncMeta(meta *SyncMeta) error {
	return db.store.Upsert(meta.ItemID, meta)
}

// RecordAttempt stamps a refresh attempt for an item. On success the failure
// counter resets; on failure it increments.
func (db *Database) RecordAttempt(itemID string, at time.Time, succeeded bool) error {
	meta, err := db.GetSyncMeta(itemID)
	if err != nil {
		return err
	}
	if meta == nil {
		meta = &SyncMeta{ItemID: itemID, LastStatus: SyncStatusNever}
	}

	meta.LastAttempt = at
	if succeeded {
		meta.LastSuccess = at
		meta.Failures = 0
		meta.LastStatus = SyncStatusSucceeded
	} else {
		meta.Failures++
		meta.LastStatus = SyncStatusFailed
	}

	return db.UpsertSyncMeta(meta)
}

// GetAllSyncMeta retrieves every bookkeeping record
func (db *Database) GetAllSyncMeta() ([]*SyncMeta, error) {
	var metas []*SyncMeta
	err := db.store.Find(&metas, nil)
	return metas, err
}

// GetFailingSyncMeta retrieves records with at least min consecutive failures
func (db *Database) GetFailingSyncMeta(min int) ([]*SyncMeta, error) {
	var metas []*SyncMeta
	err := db.store.Find(&metas, bolthold.Where("Failures").Ge(min))
	return metas, err
}

// DeleteSyncMeta removes the bookkeeping record for an item
func (db *Database) DeleteSyncMeta(itemID string) error {
	err := db.store.Delete(itemID, &SyncMeta{})
	if err == bolthold.ErrNotFound {
		return nil
	}
	return err
}

// SyncRun operations

// SaveSyncRun overwrites the single last-run summary record
func (db *Database) SaveSyncRun(run *SyncRun) error {
	return db.store.Upsert(syncRunKey, run)
}

// GetSyncRun retrieves the last-run summary, or nil when no run has finished
func (db *Database) GetSyncRun() (*SyncRun, error) {
	var run SyncRun
	err := db.store.Get(syncRunKey, &run)
	if err == bolthold.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}
