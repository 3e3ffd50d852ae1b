package fs

import (
	"fmt"
	iofs "io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// GitFS implements FileSystem by reading from a git ref (branch, tag, or commit).
// It is read-only and has no volume statistics.
type GitFS struct {
	repoPath string
	ref      string
}

// NewGitFS creates a GitFS that reads files from the given ref in the repository at repoPath.
func NewGitFS(repoPath, ref string) *GitFS {
	return &GitFS{repoPath: repoPath, ref: ref}
}

func (g *GitFS) git(args ...string) (string, error) {
	cmd := exec.Command("git", append([]string{"-C", g.repoPath}, args...)...)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", err
	}
	return string(out), nil
}

// ReadFile reads the contents of the file at the given path from the git ref.
func (g *GitFS) ReadFile(path string) ([]byte, error) {
	if path == "" || path == "." {
		return nil, fmt.Errorf("cannot read directory as file")
	}
	out, err := g.git("show", g.ref+":"+path)
	if err != nil {
		if strings.Contains(err.Error(), "not exist") {
			return nil, os.ErrNotExist
		}
		return nil, err
	}
	return []byte(out), nil
}

// Stat returns metadata for the file or directory at the given path in the git ref.
func (g *GitFS) Stat(path string) (FileInfo, error) {
	if path == "" || path == "." {
		if _, err := g.git("rev-parse", "--verify", g.ref); err != nil {
			return FileInfo{}, os.ErrNotExist
		}
		return g.info(g.ref, "", "040000", 0), nil
	}

	// ls-tree on the path itself yields "<mode> <type> <hash>\t<name>"
	out, err := g.git("ls-tree", g.ref, path)
	if err != nil {
		return FileInfo{}, os.ErrNotExist
	}
	fields := strings.Fields(strings.TrimSpace(out))
	if len(fields) < 4 {
		return FileInfo{}, os.ErrNotExist
	}
	mode, objType := fields[0], fields[1]

	var size int64
	if objType == "blob" {
		if sizeOut, err := g.git("cat-file", "-s", g.ref+":"+path); err == nil {
			size, _ = strconv.ParseInt(strings.TrimSpace(sizeOut), 10, 64)
		}
	}
	return g.info(baseName(path), path, mode, size), nil
}

// ReadDir lists the immediate children of the directory at the given path in the git ref.
func (g *GitFS) ReadDir(path string) ([]DirEntry, error) {
	var out string
	var err error
	if path == "" || path == "." {
		out, err = g.git("ls-tree", g.ref)
	} else {
		out, err = g.git("ls-tree", g.ref, strings.TrimSuffix(path, "/")+"/")
	}
	if err != nil {
		return nil, os.ErrNotExist
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return []DirEntry{}, nil
	}

	var entries []DirEntry
	for _, line := range strings.Split(out, "\n") {
		tabIdx := strings.IndexByte(line, '\t')
		if tabIdx < 0 {
			continue
		}
		fields := strings.Fields(line[:tabIdx])
		if len(fields) < 3 {
			continue
		}
		entries = append(entries, DirEntry{
			Name:  baseName(line[tabIdx+1:]),
			IsDir: fields[1] == "tree",
		})
	}
	return entries, nil
}

func (g *GitFS) info(name, path, gitMode string, size int64) FileInfo {
	mode := modeFromGit(gitMode)
	return FileInfo{
		Name:       name,
		Path:       filepath.Join(g.repoPath, filepath.FromSlash(path)),
		IsDir:      mode.IsDir(),
		Hidden:     path != "" && IsHidden(name),
		Size:       size,
		ModTime:    g.modTime(path),
		Mode:       mode,
		CanRead:    true,
		CanWrite:   false,
		CanExecute: mode&0o100 != 0,
	}
}

// modeFromGit maps a git tree mode onto a file mode.
func modeFromGit(gitMode string) iofs.FileMode {
	switch gitMode {
	case "040000":
		return iofs.ModeDir | 0o555
	case "100755":
		return 0o555
	case "120000":
		return iofs.ModeSymlink | 0o444
	case "160000": // submodule
		return iofs.ModeDir | 0o555
	default:
		return 0o444
	}
}

func (g *GitFS) modTime(path string) time.Time {
	args := []string{"log", "-1", "--format=%ct", g.ref}
	if path != "" {
		args = append(args, "--", path)
	}
	out, err := g.git(args...)
	if err != nil {
		return time.Time{}
	}
	sec, err := strconv.ParseInt(strings.TrimSpace(out), 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(sec, 0)
}

func baseName(path string) string {
	path = strings.TrimSuffix(path, "/")
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}
