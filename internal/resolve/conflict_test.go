package resolve

import (
	"reflect"
	"testing"

	"github.com/rafag508/mycollection/internal/models"
)

func TestProgressLastWriteWins(t *testing.T) {
	local := &models.ProgressRecord{ItemID: "a", Episodes: map[string]bool{"1-1": true}, LastUpdated: 100}
	remote := &models.ProgressRecord{ItemID: "a", Episodes: map[string]bool{}, LastUpdated: 200}

	winner, src := Progress(local, remote)
	if src != SourceRemote {
		t.Fatalf("Expected remote to win, got source %v", src)
	}
	if len(winner.Episodes) != 0 {
		t.Errorf("Expected the remote empty watched map to win, got %v", winner.Episodes)
	}

	// Newer local wins
	local.LastUpdated = 300
	winner, src = Progress(local, remote)
	if src != SourceLocal {
		t.Fatalf("Expected local to win, got source %v", src)
	}
	if !winner.Episodes["1-1"] {
		t.Errorf("Expected local watched map to survive")
	}
}

func TestProgressTieFavorsLocal(t *testing.T) {
	local := &models.ProgressRecord{ItemID: "a", Watched: true, LastUpdated: 100}
	remote := &models.ProgressRecord{ItemID: "a", Watched: false, LastUpdated: 100}

	winner, src := Progress(local, remote)
	if src != SourceLocal {
		t.Fatalf("Tie must favor local, got source %v", src)
	}
	if !winner.Watched {
		t.Errorf("Expected local record on tie")
	}

	// Both zero timestamps is still a tie
	local.LastUpdated = 0
	remote.LastUpdated = 0
	if _, src := Progress(local, remote); src != SourceLocal {
		t.Errorf("Zero-timestamp tie must favor local")
	}
}

func TestProgressSingleSidePresence(t *testing.T) {
	rec := &models.ProgressRecord{ItemID: "a", Watched: true, LastUpdated: 50}

	if winner, src := Progress(rec, nil); src != SourceLocal || winner != rec {
		t.Errorf("Local-only record must win")
	}
	if winner, src := Progress(nil, rec); src != SourceRemote || winner != rec {
		t.Errorf("Remote-only record must win")
	}
	if winner, _ := Progress(nil, nil); winner != nil {
		t.Errorf("Expected nil winner when both sides are absent")
	}
}

func TestMergeOrder(t *testing.T) {
	tests := []struct {
		name   string
		remote []string
		local  []string
		want   []string
	}{
		{"remote base, local appended", []string{"b", "a"}, []string{"a", "c"}, []string{"b", "a", "c"}},
		{"empty remote keeps local", nil, []string{"x", "y"}, []string{"x", "y"}},
		{"duplicates collapse", []string{"a", "a", "b"}, []string{"b", "c", "c"}, []string{"a", "b", "c"}},
		{"both empty", nil, nil, []string{}},
	}

	for _, tt := range tests {
		got := MergeOrder(tt.remote, tt.local)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCompleteOrder(t *testing.T) {
	// Catalog has [A,B,C], stored order is [C,A] -> [C,A,B]
	got := CompleteOrder([]string{"C", "A"}, []string{"A", "B", "C"})
	want := []string{"C", "A", "B"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Got %v, want %v", got, want)
	}

	// Every catalog id exactly once, even from an empty order
	got = CompleteOrder(nil, []string{"A", "B"})
	if !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("Empty order must become the catalog order, got %v", got)
	}
}
