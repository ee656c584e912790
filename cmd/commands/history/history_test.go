package history

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ben-haas/clawhouse/internal/database"
	"github.com/ben-haas/clawhouse/internal/history"
)

func setupTestDB(t *testing.T) *history.SQLiteRepository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clawhouse.db")
	database.SetPath(path)
	t.Cleanup(database.ResetPath)

	repo, err := history.OpenAt(path)
	if err != nil {
		t.Fatalf("OpenAt failed: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

// execHistory runs the history command with args and returns stdout and the error.
func execHistory(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	cmd := NewCommand()
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return outBuf.String(), err
}

func TestList_Empty(t *testing.T) {
	setupTestDB(t)

	stdout, err := execHistory(t, "list")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "No renders recorded.") {
		t.Errorf("unexpected output: %s", stdout)
	}
}

func TestList_Table(t *testing.T) {
	repo := setupTestDB(t)
	digest := history.Digest("set -euo pipefail")
	if err := repo.Save(&history.Entry{
		Command:  "clawhouse script",
		Mode:     "tunnel",
		Artifact: "script",
		Digest:   digest,
		Outcome:  history.OutcomeSuccess,
	}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	stdout, err := execHistory(t, "list")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"clawhouse script", "tunnel", digest[:12]} {
		if !strings.Contains(stdout, want) {
			t.Errorf("table missing %q:\n%s", want, stdout)
		}
	}
	if strings.Contains(stdout, digest) {
		t.Error("table shows the full digest")
	}
}

func TestList_JSONFilter(t *testing.T) {
	repo := setupTestDB(t)
	for _, c := range []string{"clawhouse script", "clawhouse manifest", "clawhouse script"} {
		if err := repo.Save(&history.Entry{Command: c, Outcome: history.OutcomeSuccess}); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	stdout, err := execHistory(t, "list", "--command", "clawhouse script", "-o", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var entries []history.Entry
	if err := json.Unmarshal([]byte(stdout), &entries); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(entries))
	}
}

func TestList_InvalidFlags(t *testing.T) {
	setupTestDB(t)

	if _, err := execHistory(t, "list", "--limit", "0"); err == nil {
		t.Error("expected error for zero limit")
	}
	if _, err := execHistory(t, "list", "-o", "yaml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestPrune(t *testing.T) {
	repo := setupTestDB(t)
	old := &history.Entry{Command: "clawhouse script", Outcome: history.OutcomeSuccess, Timestamp: time.Now().UTC().Add(-72 * time.Hour)}
	if err := repo.Save(old); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	stdout, err := execHistory(t, "prune", "--older-than", "2d")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "Removed 1") {
		t.Errorf("unexpected output: %s", stdout)
	}
}

func TestPrune_DefaultRetentionKeepsRecent(t *testing.T) {
	repo := setupTestDB(t)
	entries := []*history.Entry{
		{Command: "clawhouse script", Digest: "aaa", Outcome: history.OutcomeSuccess, Timestamp: time.Now().UTC().Add(-100 * 24 * time.Hour)},
		{Command: "clawhouse script", Digest: "bbb", Outcome: history.OutcomeSuccess, Timestamp: time.Now().UTC().Add(-10 * 24 * time.Hour)},
	}
	for _, e := range entries {
		if err := repo.Save(e); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	stdout, err := execHistory(t, "prune")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "Removed 1") {
		t.Errorf("unexpected output: %s", stdout)
	}
}

func TestPrune_KeepDigests(t *testing.T) {
	repo := setupTestDB(t)
	old := time.Now().UTC().Add(-72 * time.Hour)
	for _, ts := range []time.Time{old.Add(-time.Hour), old} {
		if err := repo.Save(&history.Entry{Command: "clawhouse script", Digest: "aaa", Outcome: history.OutcomeSuccess, Timestamp: ts}); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	stdout, err := execHistory(t, "prune", "--older-than", "1d", "--keep-digests")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "Removed 1") {
		t.Errorf("unexpected output: %s", stdout)
	}
	remaining, err := repo.List(10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Digest != "aaa" {
		t.Errorf("expected the latest aaa entry to remain, got %+v", remaining)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"30d", 30 * 24 * time.Hour, false},
		{"72h", 72 * time.Hour, false},
		{"xd", 0, true},
		{"-1h", 0, true},
		{"soon", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDuration(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseDuration(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseDuration(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}
