package controllers

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rafag508/mycollection/internal/cache"
	"github.com/rafag508/mycollection/internal/remote"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testStore() *cache.Store {
	return cache.NewStore(cache.NewMemoryBackend(), cache.NewMemoryBackend(), func() bool { return false }, testLogger())
}

// fakeRemote is an in-memory remote.Store double with failure injection and
// call counting.
type fakeRemote[T any] struct {
	mu        sync.Mutex
	docs      map[string]T
	keyOf     func(T) string
	listCalls int
	upserts   int
	deletes   int
	failAll   bool
	listHold  chan struct{} // when set, ListAll blocks until closed
}

func newFakeRemote[T any](keyOf func(T) string) *fakeRemote[T] {
	return &fakeRemote[T]{docs: make(map[string]T), keyOf: keyOf}
}

func (f *fakeRemote[T]) seed(values ...T) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range values {
		f.docs[f.keyOf(v)] = v
	}
}

func (f *fakeRemote[T]) ListAll(ctx context.Context) ([]T, error) {
	f.mu.Lock()
	f.listCalls++
	hold := f.listHold
	fail := f.failAll
	out := make([]T, 0, len(f.docs))
	for _, v := range f.docs {
		out = append(out, v)
	}
	f.mu.Unlock()

	if hold != nil {
		<-hold
	}
	if fail {
		return nil, errors.New("remote down")
	}
	return out, nil
}

func (f *fakeRemote[T]) GetOne(ctx context.Context, id string) (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.docs[id]
	if f.failAll {
		return v, errors.New("remote down")
	}
	if !ok {
		return v, remote.ErrNotFound
	}
	return v, nil
}

func (f *fakeRemote[T]) Upsert(ctx context.Context, id string, value T) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	if f.failAll {
		return errors.New("remote down")
	}
	f.docs[id] = value
	return nil
}

func (f *fakeRemote[T]) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if f.failAll {
		return errors.New("remote down")
	}
	delete(f.docs, id)
	return nil
}

func (f *fakeRemote[T]) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func (f *fakeRemote[T]) upsertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.upserts
}

func (f *fakeRemote[T]) deleteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deletes
}

// waitUntil polls for an asynchronous condition, failing the test on timeout
func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("Condition not met before timeout")
}
