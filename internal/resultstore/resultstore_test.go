package resultstore

import (
	"testing"
	"time"

	"github.com/doppelscan/doppel/pkg/models"
)

func TestPutGet(t *testing.T) {
	store, err := New(0, 0)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer store.Close()

	result := &models.DetectionResult{
		TotalFound: 3,
		Summary:    models.DetectionSummary{ExactGroups: 2, RenamedGroups: 1},
	}

	handle := store.Put(result)
	if handle == "" {
		t.Fatal("Put() returned empty handle")
	}

	got, ok := store.Get(handle)
	if !ok {
		t.Fatal("Get() did not find stored result")
	}
	if got.TotalFound != 3 || got.Summary.ExactGroups != 2 {
		t.Errorf("stored result = %+v, want TotalFound 3 and 2 exact groups", got)
	}
}

func TestGetUnknownHandle(t *testing.T) {
	store, err := New(8, time.Minute)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer store.Close()

	if _, ok := store.Get("no-such-handle"); ok {
		t.Error("Get() found a result for an unknown handle")
	}
}

func TestHandlesAreUnique(t *testing.T) {
	store, err := New(8, time.Minute)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer store.Close()

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		h := store.Put(&models.DetectionResult{})
		if seen[h] {
			t.Fatalf("duplicate handle %s", h)
		}
		seen[h] = true
	}
}
