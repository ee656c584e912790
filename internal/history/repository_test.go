package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func tempRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clawhouse.db")
	r, err := OpenAt(path)
	if err != nil {
		t.Fatalf("OpenAt failed: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestSave_AssignsIDAndTimestamp(t *testing.T) {
	r := tempRepo(t)

	entry := &Entry{
		Command:    "clawhouse script",
		Mode:       "tunnel",
		Artifact:   "script",
		Digest:     Digest("set -euo pipefail"),
		Outcome:    OutcomeSuccess,
		DurationMs: 12,
	}

	if err := r.Save(entry); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if entry.ID == 0 {
		t.Error("expected ID to be assigned")
	}
	if entry.Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}

	got, err := r.List(1)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if diff := cmp.Diff([]Entry{*entry}, got, cmpopts.EquateApproxTime(time.Millisecond)); diff != "" {
		t.Errorf("stored entry mismatch (-want +got):\n%s", diff)
	}
}

func TestList(t *testing.T) {
	r := tempRepo(t)

	for i := range 3 {
		entry := &Entry{
			Command:   "clawhouse manifest",
			Outcome:   OutcomeSuccess,
			Timestamp: time.Now().UTC().Add(time.Duration(i) * time.Second),
		}
		if err := r.Save(entry); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	entries, err := r.List(2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Timestamp.Before(entries[1].Timestamp) {
		t.Error("expected entries sorted by timestamp descending")
	}
}

func TestListByCommand(t *testing.T) {
	r := tempRepo(t)

	entries := []*Entry{
		{Command: "clawhouse script", Outcome: OutcomeSuccess},
		{Command: "clawhouse manifest", Outcome: OutcomeSuccess},
		{Command: "clawhouse script", Outcome: OutcomeError},
	}
	for _, entry := range entries {
		if err := r.Save(entry); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	listEntries, err := r.ListByCommand("clawhouse script", 10)
	if err != nil {
		t.Fatalf("ListByCommand failed: %v", err)
	}
	if len(listEntries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(listEntries))
	}
	for _, entry := range listEntries {
		if entry.Command != "clawhouse script" {
			t.Errorf("expected command 'clawhouse script', got %q", entry.Command)
		}
	}
}

func TestPrune(t *testing.T) {
	r := tempRepo(t)

	oldEntry := &Entry{
		Command:   "clawhouse script",
		Outcome:   OutcomeSuccess,
		Timestamp: time.Now().UTC().Add(-48 * time.Hour),
	}
	recentEntry := &Entry{
		Command:   "clawhouse script",
		Outcome:   OutcomeSuccess,
		Timestamp: time.Now().UTC().Add(-1 * time.Hour),
	}

	if err := r.Save(oldEntry); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := r.Save(recentEntry); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	removed, err := r.Prune(24 * time.Hour)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}

	remaining, err := r.List(10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("expected 1 remaining entry, got %d", len(remaining))
	}
}

func TestPruneWith(t *testing.T) {
	old := time.Now().UTC().Add(-48 * time.Hour)
	seed := func(t *testing.T, r *SQLiteRepository) {
		t.Helper()
		entries := []*Entry{
			{Command: "clawhouse script", Digest: "aaa", Outcome: OutcomeSuccess, Timestamp: old.Add(-time.Hour)},
			{Command: "clawhouse script", Digest: "aaa", Outcome: OutcomeSuccess, Timestamp: old},
			{Command: "clawhouse script", Digest: "bbb", Outcome: OutcomeSuccess, Timestamp: old},
			{Command: "clawhouse manifest", Outcome: OutcomeError, Timestamp: old},
			{Command: "clawhouse script", Digest: "ccc", Outcome: OutcomeSuccess, Timestamp: time.Now().UTC()},
		}
		for _, e := range entries {
			if err := r.Save(e); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
		}
	}

	tests := []struct {
		name        string
		opts        PruneOptions
		wantRemoved int64
		wantDigests []string
	}{
		{"age only", PruneOptions{OlderThan: 24 * time.Hour}, 4, []string{"ccc"}},
		{"failed only", PruneOptions{OlderThan: 24 * time.Hour, FailedOnly: true}, 1, []string{"aaa", "aaa", "bbb", "ccc"}},
		{"keep digests", PruneOptions{OlderThan: 24 * time.Hour, KeepDigests: true}, 2, []string{"aaa", "bbb", "ccc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tempRepo(t)
			seed(t, r)

			removed, err := r.PruneWith(tt.opts)
			if err != nil {
				t.Fatalf("PruneWith failed: %v", err)
			}
			if removed != tt.wantRemoved {
				t.Errorf("removed = %d, want %d", removed, tt.wantRemoved)
			}

			remaining, err := r.List(10)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			var digests []string
			for _, e := range remaining {
				if e.Digest != "" {
					digests = append(digests, e.Digest)
				}
			}
			if diff := cmp.Diff(tt.wantDigests, digests, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
				t.Errorf("remaining digests mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDigest(t *testing.T) {
	// sha256("")
	const empty = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Digest(""); got != empty {
		t.Errorf("Digest(\"\") = %q, want %q", got, empty)
	}
	if Digest("a") == Digest("b") {
		t.Error("distinct content produced equal digests")
	}
}

func TestDisabled(t *testing.T) {
	t.Setenv(DisableEnv, "1")
	if !Disabled() {
		t.Error("expected Disabled() with env set to 1")
	}
	t.Setenv(DisableEnv, "0")
	if Disabled() {
		t.Error("expected recording enabled with env set to 0")
	}
}

type flakyRepo struct {
	Repository
	failures int
	saves    int
}

func (f *flakyRepo) Save(entry *Entry) error {
	f.saves++
	if f.saves <= f.failures {
		return errors.New("history: insert failed: database is locked (5) (SQLITE_BUSY)")
	}
	entry.ID = 42
	return nil
}

func TestSaveWithRetry_RetriesBusy(t *testing.T) {
	repo := &flakyRepo{failures: 2}
	entry := &Entry{Command: "clawhouse deploy script"}

	if err := SaveWithRetry(context.Background(), repo, entry); err != nil {
		t.Fatalf("SaveWithRetry: %v", err)
	}
	if repo.saves != 3 {
		t.Errorf("saves = %d, want 3", repo.saves)
	}
	if entry.ID != 42 {
		t.Errorf("ID = %d, want 42", entry.ID)
	}
}

func TestSaveWithRetry_GivesUp(t *testing.T) {
	repo := &flakyRepo{failures: 100}
	if err := SaveWithRetry(context.Background(), repo, &Entry{}); err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
}
