package snapshot

import (
	mfs "github.com/CageChen/filehub/internal/fs"
)

// Query is the complete input of a directory load.
type Query struct {
	Path       string  `json:"path" yaml:"path"`
	Sort       SortKey `json:"sort" yaml:"sort"`
	ShowHidden bool    `json:"showHidden" yaml:"show_hidden"`
}

// Snapshot is an ordered listing plus the capacity of its volume.
type Snapshot struct {
	Query     Query       `json:"query"`
	Listing   Listing     `json:"listing"`
	Volume    VolumeStats `json:"volume"`
	VolumeErr error       `json:"-"`
	Storage   string      `json:"storage"`
}

// Entries returns the ordered entries of the snapshot.
func (s Snapshot) Entries() []Entry {
	return s.Listing.Entries
}

// Load lists, sorts and summarizes the directory named by q. It depends on
// nothing but its arguments and the filesystem contents.
func Load(fsys mfs.FileSystem, q Query) Snapshot {
	listing := List(fsys, q.Path, q.ShowHidden)
	listing.Entries = Sort(listing.Entries, q.Sort)

	snap := Snapshot{Query: q, Listing: listing}
	snap.Volume, snap.VolumeErr = Volume(fsys, q.Path)
	if snap.VolumeErr != nil {
		snap.Storage = StorageUnavailable
	} else {
		snap.Storage = snap.Volume.Summary()
	}
	return snap
}
