package roots

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/CageChen/filehub/internal/config"
	mfs "github.com/CageChen/filehub/internal/fs"
)

func newSet(t *testing.T) (*Set, string) {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "a", "b"), 0o755); err != nil {
		t.Fatal(err)
	}
	s, err := New([]config.Root{
		{Path: dir, Alias: "internal"},
		{Path: dir, Alias: "repo", GitRef: "main"},
	}, "internal")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s, dir
}

func TestNew_Errors(t *testing.T) {
	if _, err := New(nil, ""); err == nil {
		t.Error("expected error for empty roots")
	}
	dir := t.TempDir()
	if _, err := New([]config.Root{{Path: dir, Alias: "x"}, {Path: dir, Alias: "x"}}, ""); err == nil {
		t.Error("expected error for duplicate alias")
	}
	if _, err := New([]config.Root{{Path: filepath.Join(dir, "missing"), Alias: "x"}}, ""); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist for missing root, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	s, dir := newSet(t)

	tests := []struct {
		virtual string
		alias   string
		rel     string
		clean   string
	}{
		{"", "internal", "", "internal"},
		{"internal", "internal", "", "internal"},
		{"/internal/a/b/", "internal", "a/b", "internal/a/b"},
		{"internal/./a", "internal", "a", "internal/a"},
		{"repo/docs", "repo", "docs", "repo/docs"},
	}
	for _, tt := range tests {
		target, err := s.Resolve(tt.virtual)
		if err != nil {
			t.Errorf("Resolve(%q) failed: %v", tt.virtual, err)
			continue
		}
		if target.Root.Alias != tt.alias || target.Rel != tt.rel || target.Virtual != tt.clean {
			t.Errorf("Resolve(%q) = {%s %q %q}, want {%s %q %q}",
				tt.virtual, target.Root.Alias, target.Rel, target.Virtual, tt.alias, tt.rel, tt.clean)
		}
	}

	target, _ := s.Resolve("internal/a")
	if p, err := target.OSPath(); err != nil || p != filepath.Join(dir, "a") {
		t.Errorf("OSPath = %q, %v", p, err)
	}
	if target.Child("b") != "internal/a/b" {
		t.Errorf("Child = %q", target.Child("b"))
	}
}

func TestResolve_Rejects(t *testing.T) {
	s, _ := newSet(t)

	if _, err := s.Resolve("internal/../etc"); !errors.Is(err, os.ErrPermission) {
		t.Errorf("expected ErrPermission for traversal, got %v", err)
	}
	if _, err := s.Resolve("sdcard/x"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist for unknown alias, got %v", err)
	}
}

func TestLocalPath_ReadOnly(t *testing.T) {
	s, _ := newSet(t)
	if _, err := s.LocalPath("repo/README.md"); !errors.Is(err, mfs.ErrReadOnly) {
		t.Errorf("expected ErrReadOnly for git root, got %v", err)
	}
	target, _ := s.Resolve("repo")
	if target.Writable() {
		t.Error("git root should not be writable")
	}
}

func TestParentAndHome(t *testing.T) {
	s, _ := newSet(t)

	parent, err := s.Parent("internal/a/b")
	if err != nil || parent != "internal/a" {
		t.Errorf("Parent = %q, %v", parent, err)
	}
	parent, err = s.Parent("internal/a")
	if err != nil || parent != "internal" {
		t.Errorf("Parent = %q, %v", parent, err)
	}
	if _, err := s.Parent("internal"); !errors.Is(err, ErrAtRoot) {
		t.Errorf("expected ErrAtRoot, got %v", err)
	}

	if s.Home() != "internal" || !s.IsHome("internal/") || s.IsHome("internal/a") || s.IsHome("repo") {
		t.Error("home detection mismatch")
	}
}

func TestRootStorage(t *testing.T) {
	s, _ := newSet(t)
	for _, r := range s.Roots() {
		if r.Storage() == "" {
			t.Errorf("root %s: empty storage summary", r.Alias)
		}
	}
	if got := s.Roots()[1].Storage(); got != "Storage info unavailable" {
		t.Errorf("git root should report unavailable storage, got %q", got)
	}
}
