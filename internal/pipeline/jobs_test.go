package pipeline

import (
	"testing"
	"time"

	"github.com/tilbrook/vendex/internal/vendor"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestNewJob_Identity(t *testing.T) {
	req := Request{Data: []byte("some document"), Filename: "vendors.txt"}
	j1 := NewJob(req)
	j2 := NewJob(req)

	if j1.ID == j2.ID {
		t.Error("job IDs must be unique per submission")
	}
	if j1.DocID != j2.DocID {
		t.Errorf("same content must hash to the same doc ID: %q vs %q", j1.DocID, j2.DocID)
	}
	if len(j1.DocID) != 16 {
		t.Errorf("doc ID length = %d", len(j1.DocID))
	}
	if j1.Status != StatusQueued || j1.Phase != "queued" {
		t.Errorf("new job status = %s/%s", j1.Status, j1.Phase)
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := NewJob(Request{Data: []byte("doc"), Filename: "v.txt"})

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusExtracting, "extracting"},
		{StatusStoring, "storing"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)
		if job.Status != tr.status || job.Phase != tr.phase {
			t.Errorf("got %s/%s, want %s/%s", job.Status, job.Phase, tr.status, tr.phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Error("UpdatedAt not advanced")
		}
	}
}

func TestJob_SnapshotCarriesReport(t *testing.T) {
	job := NewJob(Request{Data: []byte("doc"), Filename: "v.txt"})

	snap := job.Snapshot()
	if snap.Report != nil {
		t.Error("unfinished job should carry no report")
	}
	if snap.Errors == nil {
		t.Error("errors must serialize as an empty array, not null")
	}

	job.AddError("chunk failed")
	job.SetReport(&vendor.Report{
		Vendors:    []vendor.Record{{Name: "Acme Corp", Phone: "555-867-5309"}},
		Confidence: 0.9,
	})
	job.SetStatus(StatusCompleted, "done")

	snap = job.Snapshot()
	if snap.Report == nil || len(snap.Report.Vendors) != 1 {
		t.Fatalf("report missing from snapshot: %+v", snap)
	}
	if len(snap.Errors) != 1 || snap.Errors[0] != "chunk failed" {
		t.Errorf("errors = %v", snap.Errors)
	}
	if snap.Status != StatusCompleted {
		t.Errorf("status = %s", snap.Status)
	}
}

func TestJobStore_Cleanup(t *testing.T) {
	store := NewJobStore(10 * time.Millisecond)

	stale := NewJob(Request{Data: []byte("old"), Filename: "old.txt"})
	store.Put(stale)
	time.Sleep(25 * time.Millisecond)

	fresh := NewJob(Request{Data: []byte("new"), Filename: "new.txt"})
	store.Put(fresh)

	store.Cleanup()

	if store.Get(stale.ID) != nil {
		t.Error("stale job not evicted")
	}
	if store.Get(fresh.ID) == nil {
		t.Error("fresh job evicted")
	}
}

func TestJobStore_GetUnknown(t *testing.T) {
	store := NewJobStore(time.Hour)
	if store.Get("missing") != nil {
		t.Error("expected nil for unknown job ID")
	}
}
