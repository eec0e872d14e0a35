// Package remote defines the per-(user, collection) contract against the
// authoritative document store, and an HTTP client implementing it. No
// multi-document transactional guarantee is assumed or offered.
package remote

import "context"

// Store is the CRUD contract for one sub-collection under one user. All
// operations may fail with a transport error; callers treat failures as
// best-effort and keep serving from the local cache.
type Store[T any] interface {
	ListAll(ctx context.Context) ([]T, error)
	GetOne(ctx context.Context, id string) (T, error)
	Upsert(ctx context.Context, id string, value T) error
	Delete(ctx context.Context, id string) error
}
