// Package cache implements the local key/value store the sync coordinators
// treat as the source of truth for immediate reads. Values are serialized
// records; a record that fails to decode is a miss, never an error.
package cache

import (
	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

// Backend stores raw serialized records under string keys
type Backend interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) bool
	Remove(key string)
	Clear()
}

// Store routes every call to the ephemeral or the durable backend depending
// on the session mode flag. The flag is evaluated per call, not cached, so a
// guest login taking over an existing session switches media immediately.
type Store struct {
	durable   Backend
	ephemeral Backend
	guest     func() bool
	logger    *logrus.Logger
}

// NewStore creates a store over the two backends. guest reports whether the
// current session is a guest session.
func NewStore(durable, ephemeral Backend, guest func() bool, logger *logrus.Logger) *Store {
	return &Store{
		durable:   durable,
		ephemeral: ephemeral,
		guest:     guest,
		logger:    logger,
	}
}

func (s *Store) backend() Backend {
	if s.guest() {
		return s.ephemeral
	}
	return s.durable
}

// Remove deletes the record under key from the active backend
func (s *Store) Remove(key string) {
	s.backend().Remove(key)
}

// Clear drops every record from the active backend
func (s *Store) Clear() {
	s.backend().Clear()
}

// Get reads and decodes the record under key. Missing keys, backend failures
// and undecodable records all return fallback.
func Get[T any](s *Store, key string, fallback T) T {
	raw, ok := s.backend().Get(key)
	if !ok {
		return fallback
	}

	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Discarding undecodable cache record")
		return fallback
	}
	return value
}

// Set encodes value and writes it under key. Returns false on any failure;
// never returns an error to the caller.
func Set[T any](s *Store, key string, value T) bool {
	raw, err := json.Marshal(value)
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Error("Failed to encode cache record")
		return false
	}
	return s.backend().Set(key, raw)
}
