package history

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestHistory(t *testing.T) *History {
	t.Helper()
	h, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h
}

func TestOpen_Empty(t *testing.T) {
	h := newTestHistory(t)
	runs, err := h.Recent(10)
	if err != nil {
		t.Fatalf("Recent() on new DB error = %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("Recent() on new DB = %d runs, want 0", len(runs))
	}
}

func TestAddAndRecent(t *testing.T) {
	h := newTestHistory(t)

	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	for i := range 5 {
		id, err := h.Add(Run{
			Database:    "shop",
			Schema:      "public",
			Adapter:     "postgres",
			Dbms:        "PostgreSQL - 16.2",
			StartedAt:   base.Add(time.Duration(i) * time.Minute),
			DurationMS:  int64(100 * (i + 1)),
			Tables:      10 + i,
			Views:       2,
			Constraints: 7,
			Anomalies:   i,
		})
		if err != nil {
			t.Fatalf("Add() run %d error = %v", i, err)
		}
		if id != int64(i+1) {
			t.Errorf("Add() id = %d, want %d", id, i+1)
		}
	}

	runs, err := h.Recent(3)
	if err != nil {
		t.Fatalf("Recent(3) error = %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("Recent(3) = %d runs, want 3", len(runs))
	}
	if runs[0].Tables != 14 {
		t.Errorf("runs[0].Tables = %d, want 14 (newest first)", runs[0].Tables)
	}
	if runs[2].Tables != 12 {
		t.Errorf("runs[2].Tables = %d, want 12", runs[2].Tables)
	}
	if runs[0].Dbms != "PostgreSQL - 16.2" {
		t.Errorf("runs[0].Dbms = %q", runs[0].Dbms)
	}
	if !runs[0].StartedAt.Equal(base.Add(4 * time.Minute)) {
		t.Errorf("runs[0].StartedAt = %v, want %v", runs[0].StartedAt, base.Add(4*time.Minute))
	}
	if runs[0].Failed() {
		t.Error("runs[0].Failed() = true, want false")
	}
}

func TestForDatabase(t *testing.T) {
	h := newTestHistory(t)

	for _, name := range []string{"shop", "hr", "shop", "crm"} {
		if _, err := h.Add(Run{Database: name, Adapter: "mysql"}); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := h.ForDatabase("shop", 10)
	if err != nil {
		t.Fatalf("ForDatabase() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("ForDatabase(shop) = %d runs, want 2", len(runs))
	}
	for _, r := range runs {
		if r.Database != "shop" {
			t.Errorf("run database = %q, want shop", r.Database)
		}
	}
}

func TestFailedRun(t *testing.T) {
	h := newTestHistory(t)

	if _, err := h.Add(Run{Database: "shop", Error: "discovery failed"}); err != nil {
		t.Fatal(err)
	}
	runs, err := h.Recent(1)
	if err != nil {
		t.Fatal(err)
	}
	if !runs[0].Failed() {
		t.Error("Failed() = false, want true")
	}
	if runs[0].Error != "discovery failed" {
		t.Errorf("Error = %q", runs[0].Error)
	}
	if runs[0].StartedAt.IsZero() {
		t.Error("StartedAt not defaulted")
	}
}

func TestClear(t *testing.T) {
	h := newTestHistory(t)

	for range 3 {
		if _, err := h.Add(Run{Database: "shop"}); err != nil {
			t.Fatal(err)
		}
	}
	if err := h.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	runs, err := h.Recent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("Recent() after Clear = %d runs, want 0", len(runs))
	}
}
