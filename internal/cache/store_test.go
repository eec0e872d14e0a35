package cache

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestGetSetRoundTrip(t *testing.T) {
	store := NewStore(NewMemoryBackend(), NewMemoryBackend(), func() bool { return false }, testLogger())

	if !Set(store, "k", record{Name: "a", Count: 3}) {
		t.Fatal("Set failed")
	}

	got := Get(store, "k", record{})
	if got.Name != "a" || got.Count != 3 {
		t.Errorf("Got %+v", got)
	}
}

func TestMissReturnsFallback(t *testing.T) {
	store := NewStore(NewMemoryBackend(), NewMemoryBackend(), func() bool { return false }, testLogger())

	got := Get(store, "absent", record{Name: "fallback"})
	if got.Name != "fallback" {
		t.Errorf("Expected fallback on miss, got %+v", got)
	}
}

func TestUndecodableRecordIsMiss(t *testing.T) {
	durable := NewMemoryBackend()
	store := NewStore(durable, NewMemoryBackend(), func() bool { return false }, testLogger())

	durable.Set("k", []byte("{not json"))

	got := Get(store, "k", record{Name: "fallback"})
	if got.Name != "fallback" {
		t.Errorf("Undecodable record must read as a miss, got %+v", got)
	}
}

func TestBackendSwitchesAtCallTime(t *testing.T) {
	guest := false
	store := NewStore(NewMemoryBackend(), NewMemoryBackend(), func() bool { return guest }, testLogger())

	Set(store, "k", record{Name: "durable"})

	// Flip to guest mode without re-initializing anything: the durable value
	// must be invisible and writes must land in the ephemeral backend.
	guest = true
	if got := Get(store, "k", record{}); got.Name != "" {
		t.Fatalf("Guest session must not see the durable record, got %+v", got)
	}
	Set(store, "k", record{Name: "ephemeral"})
	if got := Get(store, "k", record{}); got.Name != "ephemeral" {
		t.Errorf("Got %+v", got)
	}

	// Flipping back restores the durable record untouched.
	guest = false
	if got := Get(store, "k", record{}); got.Name != "durable" {
		t.Errorf("Durable record lost across mode switch, got %+v", got)
	}
}

func TestRemoveAndClear(t *testing.T) {
	store := NewStore(NewMemoryBackend(), NewMemoryBackend(), func() bool { return false }, testLogger())

	Set(store, "a", record{Name: "a"})
	Set(store, "b", record{Name: "b"})

	store.Remove("a")
	if got := Get(store, "a", record{}); got.Name != "" {
		t.Errorf("Removed key still readable: %+v", got)
	}

	store.Clear()
	if got := Get(store, "b", record{}); got.Name != "" {
		t.Errorf("Cleared key still readable: %+v", got)
	}
}
