package recent

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestRecordAndList(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	base := time.UnixMilli(1_700_000_000_000)
	for i, p := range []string{"/a/one.txt", "/a/two.txt", "/b/three.md"} {
		if err := s.Record(ctx, p, base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}
	if err := s.Record(ctx, "/a/one.txt", base.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}

	items, err := s.List(ctx, 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].Path != "/a/one.txt" || items[0].Count != 2 || items[0].Name != "one.txt" {
		t.Errorf("unexpected first item %+v", items[0])
	}
	if !items[0].OpenedAt.Equal(base.Add(time.Hour)) {
		t.Errorf("unexpected opened time %v", items[0].OpenedAt)
	}
	if items[1].Path != "/b/three.md" {
		t.Errorf("expected three.md second, got %s", items[1].Path)
	}

	limited, err := s.List(ctx, 1)
	if err != nil || len(limited) != 1 {
		t.Errorf("expected 1 item with limit, got %d (%v)", len(limited), err)
	}
}

func TestPruneAndForget(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "state", "recent.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	now := time.Now()
	for i, p := range []string{"/1", "/2", "/3", "/4"} {
		if err := s.Record(ctx, p, now.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := s.Prune(ctx, 2)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}

	if err := s.Forget(ctx, "/4"); err != nil {
		t.Fatal(err)
	}
	items, err := s.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Path != "/3" {
		t.Errorf("unexpected items after prune/forget: %+v", items)
	}
}
