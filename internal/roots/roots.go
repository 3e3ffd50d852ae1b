// Package roots maps virtual paths of the form "{alias}/{relative}" onto the
// configured storage locations.
package roots

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/CageChen/filehub/internal/config"
	mfs "github.com/CageChen/filehub/internal/fs"
	"github.com/CageChen/filehub/internal/snapshot"
)

// ErrAtRoot is returned when asking for the parent of a root directory.
var ErrAtRoot = errors.New("already at storage root")

// Root is a configured location together with its filesystem.
type Root struct {
	config.Root
	FS    mfs.FileSystem
	local *mfs.LocalFS
}

// Writable reports whether the root supports mutating operations.
func (r *Root) Writable() bool {
	return r.local != nil
}

// Storage summarizes the volume holding the root.
func (r *Root) Storage() string {
	return snapshot.StorageSummary(r.FS, "")
}

// Target is a resolved virtual path.
type Target struct {
	Root    *Root
	Rel     string // slash separated, relative to the root, "" for the root itself
	Virtual string // cleaned virtual path
}

// FS returns the filesystem of the target's root.
func (t Target) FS() mfs.FileSystem {
	return t.Root.FS
}

// Writable reports whether the target lives on a writable root.
func (t Target) Writable() bool {
	return t.Root.Writable()
}

// IsRoot reports whether the target is the top of its root.
func (t Target) IsRoot() bool {
	return t.Rel == ""
}

// OSPath returns the local path of the target. Git roots have none.
func (t Target) OSPath() (string, error) {
	if t.Root.local == nil {
		return "", fmt.Errorf("%s: %w", t.Virtual, mfs.ErrReadOnly)
	}
	return t.Root.local.Abs(t.Rel), nil
}

// Child returns the virtual path of an entry inside the target directory.
func (t Target) Child(name string) string {
	return t.Virtual + "/" + name
}

// Set is the collection of configured roots.
type Set struct {
	roots   []*Root
	byAlias map[string]*Root
	home    string
}

// New builds the root set. Local roots must exist and be directories; git
// roots are checked lazily by their first listing.
func New(cfgRoots []config.Root, home string) (*Set, error) {
	if len(cfgRoots) == 0 {
		return nil, errors.New("no storage roots configured")
	}

	s := &Set{byAlias: make(map[string]*Root)}
	for _, cr := range cfgRoots {
		if cr.Alias == "" || strings.ContainsRune(cr.Alias, '/') {
			return nil, fmt.Errorf("root %s: invalid alias %q", cr.Path, cr.Alias)
		}
		if _, dup := s.byAlias[cr.Alias]; dup {
			return nil, fmt.Errorf("duplicate root alias %q", cr.Alias)
		}

		r := &Root{Root: cr}
		if cr.GitRef != "" {
			r.FS = mfs.NewGitFS(cr.Path, cr.GitRef)
		} else {
			info, err := os.Stat(cr.Path)
			if err != nil {
				return nil, fmt.Errorf("root %s: %w", cr.Alias, err)
			}
			if !info.IsDir() {
				return nil, fmt.Errorf("root %s: %s is not a directory", cr.Alias, cr.Path)
			}
			r.local = mfs.NewLocalFS(cr.Path)
			r.FS = r.local
		}
		s.roots = append(s.roots, r)
		s.byAlias[cr.Alias] = r
	}

	s.home = s.roots[0].Alias
	if _, ok := s.byAlias[home]; ok {
		s.home = home
	}
	return s, nil
}

// Roots returns the configured roots in order.
func (s *Set) Roots() []*Root {
	return s.roots
}

// Home returns the virtual path of the home root.
func (s *Set) Home() string {
	return s.home
}

// Resolve maps a virtual path onto its root. An empty path resolves to home.
// Paths containing ".." are rejected with os.ErrPermission and unknown
// aliases with os.ErrNotExist.
func (s *Set) Resolve(virtual string) (Target, error) {
	virtual = strings.Trim(virtual, "/")
	if virtual == "" {
		virtual = s.home
	}
	for _, seg := range strings.Split(virtual, "/") {
		if seg == ".." {
			return Target{}, fmt.Errorf("%s: %w", virtual, os.ErrPermission)
		}
	}

	clean := path.Clean(virtual)
	alias, rel, _ := strings.Cut(clean, "/")
	root, ok := s.byAlias[alias]
	if !ok {
		return Target{}, fmt.Errorf("storage %q: %w", alias, os.ErrNotExist)
	}
	return Target{Root: root, Rel: rel, Virtual: clean}, nil
}

// LocalPath resolves a virtual path to a path on disk for mutating
// operations. Git roots return mfs.ErrReadOnly.
func (s *Set) LocalPath(virtual string) (string, error) {
	t, err := s.Resolve(virtual)
	if err != nil {
		return "", err
	}
	return t.OSPath()
}

// Parent returns the virtual path of the parent directory, or ErrAtRoot
// when virtual names a root.
func (s *Set) Parent(virtual string) (string, error) {
	t, err := s.Resolve(virtual)
	if err != nil {
		return "", err
	}
	if t.IsRoot() {
		return "", ErrAtRoot
	}
	return path.Dir(t.Virtual), nil
}

// IsHome reports whether virtual names the home root itself.
func (s *Set) IsHome(virtual string) bool {
	t, err := s.Resolve(virtual)
	return err == nil && t.IsRoot() && t.Root.Alias == s.home
}
