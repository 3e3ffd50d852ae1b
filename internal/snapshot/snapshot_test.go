package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	mfs "github.com/CageChen/filehub/internal/fs"
)

func TestLoad(t *testing.T) {
	root := t.TempDir()
	old := filepath.Join(root, "old.log")
	recent := filepath.Join(root, "recent.log")
	for _, p := range []string{old, recent} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(root, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	base := time.Now().Add(-time.Hour)
	if err := os.Chtimes(old, base, base); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(recent, base.Add(time.Minute), base.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}

	q := Query{Path: "", Sort: SortByDate}
	snap := Load(mfs.NewLocalFS(root), q)

	if snap.Query != q {
		t.Errorf("snapshot should carry its query, got %+v", snap.Query)
	}
	got := names(snap.Entries())
	if !equal(got, []string{"sub", "recent.log", "old.log"}) {
		t.Errorf("Load entries = %v", got)
	}
	if snap.Storage == "" {
		t.Error("expected storage text")
	}
	if snap.VolumeErr == nil && snap.Volume.Total != snap.Volume.Used+snap.Volume.Free {
		t.Errorf("inconsistent volume %+v", snap.Volume)
	}
}

func TestLoadMissingDirectory(t *testing.T) {
	snap := Load(mfs.NewLocalFS(t.TempDir()), Query{Path: "gone"})
	if snap.Listing.Status != StatusNotFound || len(snap.Entries()) != 0 {
		t.Errorf("expected empty not_found snapshot, got %s with %d entries", snap.Listing.Status, len(snap.Entries()))
	}
	if snap.Storage != StorageUnavailable {
		t.Errorf("expected unavailable storage for missing path, got %q", snap.Storage)
	}
}

func TestUnavailableSnapshot(t *testing.T) {
	q := Query{Path: "sdcard/x", Sort: SortBySize}
	snap := UnavailableSnapshot(q, fmt.Errorf("storage: %w", os.ErrNotExist))

	if snap.Listing.Status != StatusNotFound {
		t.Errorf("expected NotFound, got %s", snap.Listing.Status)
	}
	if snap.Entries() == nil || len(snap.Entries()) != 0 {
		t.Errorf("expected empty non-nil entries, got %v", snap.Entries())
	}
	if snap.Storage != StorageUnavailable || snap.Query != q {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}
