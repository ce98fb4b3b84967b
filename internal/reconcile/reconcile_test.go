package reconcile

import (
	"reflect"
	"testing"
)

func TestDiff_Partition(t *testing.T) {
	remote := []string{"a", "b", "c", "d"}
	persisted := []string{"b", "d", "zz"}

	existing, missing := Diff(remote, persisted)

	if !reflect.DeepEqual(existing, []string{"b", "d"}) {
		t.Errorf("existing = %v", existing)
	}
	if !reflect.DeepEqual(missing, []string{"a", "c"}) {
		t.Errorf("missing = %v", missing)
	}
}

// Every remote ID lands in exactly one of the two output sets.
func TestDiff_NoOverlapNoOmission(t *testing.T) {
	remote := []string{"r1", "r2", "r3", "r4", "r5"}
	persisted := []string{"r2", "r4"}

	existing, missing := Diff(remote, persisted)

	if len(existing)+len(missing) != len(remote) {
		t.Fatalf("partition sizes %d+%d != %d", len(existing), len(missing), len(remote))
	}

	inExisting := make(map[string]bool)
	for _, id := range existing {
		inExisting[id] = true
	}
	for _, id := range missing {
		if inExisting[id] {
			t.Errorf("id %q appears in both existing and missing", id)
		}
	}
}

func TestDiff_EmptyInputs(t *testing.T) {
	existing, missing := Diff(nil, nil)
	if len(existing) != 0 || len(missing) != 0 {
		t.Errorf("Diff(nil, nil) = %v, %v", existing, missing)
	}

	existing, missing = Diff([]string{"a"}, nil)
	if len(existing) != 0 || !reflect.DeepEqual(missing, []string{"a"}) {
		t.Errorf("Diff with empty store = %v, %v", existing, missing)
	}

	existing, missing = Diff(nil, []string{"a"})
	if len(existing) != 0 || len(missing) != 0 {
		t.Errorf("Diff with empty remote = %v, %v", existing, missing)
	}
}

func TestDiff_DeduplicatesRemote(t *testing.T) {
	existing, missing := Diff([]string{"a", "a", "b", "b", "b"}, []string{"b"})

	if !reflect.DeepEqual(missing, []string{"a"}) {
		t.Errorf("missing = %v", missing)
	}
	if !reflect.DeepEqual(existing, []string{"b"}) {
		t.Errorf("existing = %v", existing)
	}
}

func TestDiff_PreservesRemoteOrder(t *testing.T) {
	remote := []string{"z", "m", "a", "q"}

	_, missing := Diff(remote, nil)

	if !reflect.DeepEqual(missing, remote) {
		t.Errorf("missing = %v, want remote order %v", missing, remote)
	}
}
