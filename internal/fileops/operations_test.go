package fileops

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/CageChen/filehub/internal/filekind"
)

func TestLocalBatchRequiresSelection(t *testing.T) {
	ops := Local{}
	ctx := context.Background()
	if _, err := ops.Copy(ctx, nil, t.TempDir()); !errors.Is(err, ErrNoSelection) {
		t.Errorf("Copy: expected ErrNoSelection, got %v", err)
	}
	if _, err := ops.Delete(ctx, []string{}); !errors.Is(err, ErrNoSelection) {
		t.Errorf("Delete: expected ErrNoSelection, got %v", err)
	}
	if _, err := ops.Properties(ctx, nil); !errors.Is(err, ErrNoSelection) {
		t.Errorf("Properties: expected ErrNoSelection, got %v", err)
	}
}

func TestLocalCopyAndMove(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a.txt")
	tree := filepath.Join(root, "tree")
	writeFile(t, a, "a")
	writeFile(t, filepath.Join(tree, "inner.txt"), "inner")
	dest := filepath.Join(root, "dest")

	ops := Local{}
	res, err := ops.Copy(context.Background(), []string{a, tree, filepath.Join(root, "missing")}, dest)
	if err != nil {
		t.Fatalf("Copy failed: %v", err)
	}
	if len(res.Items) != 3 || res.Failed() != 1 {
		t.Fatalf("expected 3 items with 1 failure, got %+v", res)
	}
	if !exists(filepath.Join(dest, "a.txt")) || !exists(filepath.Join(dest, "tree", "inner.txt")) {
		t.Error("expected copies in destination")
	}
	if !exists(a) {
		t.Error("copy must keep the source")
	}

	moved := filepath.Join(root, "moved")
	if err := os.Mkdir(moved, 0o755); err != nil {
		t.Fatal(err)
	}
	res, err = ops.Move(context.Background(), []string{a}, moved)
	if err != nil || res.Failed() != 0 {
		t.Fatalf("Move failed: %v %+v", err, res)
	}
	if exists(a) || !exists(filepath.Join(moved, "a.txt")) {
		t.Error("expected file to be moved")
	}
}

func TestLocalCopyAndMoveIntoOwnDirectory(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a.txt")
	writeFile(t, a, "precious data")
	tree := filepath.Join(root, "tree")
	writeFile(t, filepath.Join(tree, "inner.txt"), "inner")

	ops := Local{}
	for _, op := range []struct {
		name string
		run  func(context.Context, []string, string) (BatchResult, error)
	}{
		{"copy", ops.Copy},
		{"move", ops.Move},
	} {
		res, err := op.run(context.Background(), []string{a, tree}, root)
		if err != nil {
			t.Fatalf("%s failed: %v", op.name, err)
		}
		if res.Failed() != 2 {
			t.Errorf("%s: expected both items to fail, got %+v", op.name, res)
		}
		data, err := os.ReadFile(a)
		if err != nil || string(data) != "precious data" {
			t.Errorf("%s: source must be unchanged, got %q, %v", op.name, data, err)
		}
		if !exists(filepath.Join(tree, "inner.txt")) {
			t.Errorf("%s: directory contents must survive", op.name)
		}
	}
}

func TestLocalCopyRefusesExistingTarget(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a.txt")
	writeFile(t, a, "new")
	dest := filepath.Join(root, "dest")
	taken := filepath.Join(dest, "a.txt")
	writeFile(t, taken, "old")

	ops := Local{}
	for name, run := range map[string]func(context.Context, []string, string) (BatchResult, error){
		"copy": ops.Copy,
		"move": ops.Move,
	} {
		res, err := run(context.Background(), []string{a}, dest)
		if err != nil {
			t.Fatalf("%s failed: %v", name, err)
		}
		if res.Failed() != 1 || res.Items[0].Target != taken {
			t.Errorf("%s: expected a per-item failure for %s, got %+v", name, taken, res)
		}
		if data, _ := os.ReadFile(taken); string(data) != "old" {
			t.Errorf("%s: existing target overwritten with %q", name, data)
		}
		if !exists(a) {
			t.Errorf("%s: source must remain", name)
		}
	}
}

func TestLocalDeleteHonorsContext(t *testing.T) {
	root := t.TempDir()
	p := filepath.Join(root, "x")
	writeFile(t, p, "x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (Local{}).Delete(ctx, []string{p}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if !exists(p) {
		t.Error("cancelled delete must not remove anything")
	}
}

func TestLocalProperties(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "dir", "one.bin"), "1234")
	writeFile(t, filepath.Join(root, "dir", "two.bin"), "12")
	pdf := filepath.Join(root, "doc.pdf")
	writeFile(t, pdf, "%PDF-1.4")

	props, err := (Local{}).Properties(context.Background(), []string{filepath.Join(root, "dir"), pdf})
	if err != nil {
		t.Fatalf("Properties failed: %v", err)
	}
	if props[0].Category != filekind.Folder || props[0].TotalSize != 6 || props[0].Items != 2 {
		t.Errorf("unexpected directory properties %+v", props[0])
	}
	if props[0].FormattedSize != "6 B" {
		t.Errorf("unexpected formatted size %q", props[0].FormattedSize)
	}
	if props[1].MIMEType != "application/pdf" || props[1].Extension != "pdf" {
		t.Errorf("unexpected file properties %+v", props[1])
	}
}
