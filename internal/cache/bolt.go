package cache

import (
	"github.com/sirupsen/logrus"
	"go.etcd.io/bbolt"
)

var cacheBucket = []byte("cache")

// BoltBackend is the durable backend, a single bbolt bucket shared with the
// scheduler's bookkeeping database file.
type BoltBackend struct {
	db     *bbolt.DB
	logger *logrus.Logger
}

// NewBoltBackend creates the bucket if needed
func NewBoltBackend(db *bbolt.DB, logger *logrus.Logger) (*BoltBackend, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(cacheBucket)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &BoltBackend{db: db, logger: logger}, nil
}

func (b *BoltBackend) Get(key string) ([]byte, bool) {
	var raw []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(cacheBucket).Get([]byte(key))
		if v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		b.logger.WithError(err).WithField("key", key).Warn("Cache read failed")
		return nil, false
	}
	return raw, raw != nil
}

func (b *BoltBackend) Set(key string, value []byte) bool {
	err := b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(cacheBucket).Put([]byte(key), value)
	})
	if err != nil {
		b.logger.WithError(err).WithField("key", key).Error("Cache write failed")
		return false
	}
	return true
}

func (b *BoltBackend) Remove(key string) {
	err := b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(cacheBucket).Delete([]byte(key))
	})
	if err != nil {
		b.logger.WithError(err).WithField("key", key).Warn("Cache delete failed")
	}
}

func (b *BoltBackend) Clear() {
	err := b.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(cacheBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucket(cacheBucket)
		return err
	})
	if err != nil {
		b.logger.WithError(err).Warn("Cache clear failed")
	}
}
