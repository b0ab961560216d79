package archive

import (
	"fmt"
	"strings"

	"github.com/ossyrian/dxarc/internal/dx"
)

// Entry describes one file header.
type Entry struct {
	Index      int
	Name       string
	Size       uint32 // decompressed size
	StoredSize uint32 // bytes occupied in the data region
	Compressed bool
	IsDir      bool
}

// NormalizePath uppercases path and splits it into segments. Both '/' and
// '\' separate segments; empty segments are dropped.
//
// Folding is bytewise over ASCII letters, matching how the uppercase copy
// of each name is stored. Names are Shift-JIS bytes, not UTF-8, so trail
// bytes in the a-z range are folded too.
func NormalizePath(path string) []string {
	b := []byte(path)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return strings.FieldsFunc(string(b), func(r rune) bool {
		return r == '/' || r == '\\'
	})
}

// root returns the table slot of the root directory.
func (a *Archive) root() (int, error) {
	for i := 0; i < a.numDirs(); i++ {
		dh := a.dirHeader(i)
		if dh.IsRoot() {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: archive has no root directory", dx.ErrFormat)
}

// dirName returns the uppercase name of a directory's own entry.
func (a *Archive) dirName(dh *dx.DirHeader) string {
	fh, err := a.fileHeader(dh.Index())
	if err != nil {
		return ""
	}
	return a.name(fh, true)
}

// IndexOf resolves a path to a file index. Matching is case-insensitive.
//
// Each directory segment is a linear scan of the directory table for a
// child of the current directory with that name; the final segment is a
// linear scan of the resolved directory's children. Callers doing many
// lookups should put a PathCache in front.
func (a *Archive) IndexOf(path string) (int, error) {
	if err := a.checkOpen(); err != nil {
		return -1, err
	}
	return a.indexOf(NormalizePath(path), path)
}

func (a *Archive) indexOf(segments []string, path string) (int, error) {
	if len(segments) == 0 {
		return -1, fmt.Errorf("%w: empty path", dx.ErrNotFound)
	}

	cur, err := a.root()
	if err != nil {
		return -1, err
	}

	for _, seg := range segments[:len(segments)-1] {
		parent := uint32(cur * dx.DirHeaderSize)
		found := false
		for i := 0; i < a.numDirs(); i++ {
			dh := a.dirHeader(i)
			if dh.ParentOffset != parent || dh.IsRoot() {
				continue
			}
			if a.dirName(&dh) == seg {
				cur = i
				found = true
				break
			}
		}
		if !found {
			return -1, fmt.Errorf("%w: directory %q in %q", dx.ErrNotFound, seg, path)
		}
	}

	dh := a.dirHeader(cur)
	last := segments[len(segments)-1]
	end := min(dh.End(), a.numFiles())
	for i := dh.Begin(); i < end; i++ {
		fh, err := a.fileHeader(i)
		if err != nil {
			return -1, err
		}
		if a.name(fh, true) == last {
			return i, nil
		}
	}

	return -1, fmt.Errorf("%w: %q", dx.ErrNotFound, path)
}

// Filename returns the display name of the entry at index.
func (a *Archive) Filename(index int) (string, error) {
	if err := a.checkOpen(); err != nil {
		return "", err
	}
	fh, err := a.fileHeader(index)
	if err != nil {
		return "", err
	}
	return a.name(fh, false), nil
}

// containingDir returns the slot of the directory whose children include
// index.
func (a *Archive) containingDir(index int) (int, bool) {
	for i := 0; i < a.numDirs(); i++ {
		dh := a.dirHeader(i)
		if dh.Begin() <= index && index < dh.End() {
			return i, true
		}
	}
	return 0, false
}

// FullPath returns the '/'-separated path of the entry at index, built
// from display names by walking parent links up to the root.
func (a *Archive) FullPath(index int) (string, error) {
	if err := a.checkOpen(); err != nil {
		return "", err
	}
	name, err := a.Filename(index)
	if err != nil {
		return "", err
	}

	slot, ok := a.containingDir(index)
	if !ok {
		return "", fmt.Errorf("%w: index %d is in no directory", dx.ErrNotFound, index)
	}

	parts := []string{name}
	// Bounded by the number of directories so a malformed parent chain ends.
	for hops := 0; hops <= a.numDirs(); hops++ {
		dh := a.dirHeader(slot)
		if dh.IsRoot() {
			for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
				parts[i], parts[j] = parts[j], parts[i]
			}
			return strings.Join(parts, "/"), nil
		}

		dirName, err := a.Filename(dh.Index())
		if err != nil {
			return "", err
		}
		parts = append(parts, dirName)

		parent := int(dh.ParentOffset / dx.DirHeaderSize)
		if parent >= a.numDirs() {
			return "", fmt.Errorf("%w: parent offset %d out of range", dx.ErrCorruptData, dh.ParentOffset)
		}
		slot = parent
	}

	return "", fmt.Errorf("%w: directory chain of index %d does not reach the root", dx.ErrCorruptData, index)
}

// dirSlot returns the table slot of the directory whose own entry is index.
func (a *Archive) dirSlot(index int) (int, bool) {
	own := uint32(index * dx.FileHeaderSize)
	for i := 0; i < a.numDirs(); i++ {
		if a.dirHeader(i).DirOffset == own {
			return i, true
		}
	}
	return 0, false
}

// IsDirectory reports whether the entry at index is a directory.
func (a *Archive) IsDirectory(index int) bool {
	if a.checkOpen() != nil || index < 0 {
		return false
	}
	_, ok := a.dirSlot(index)
	return ok
}

// DirectoryChildren returns the half-open index range [begin, end) of the
// children of the directory at index.
func (a *Archive) DirectoryChildren(index int) (begin, end int, err error) {
	if err := a.checkOpen(); err != nil {
		return -1, -1, err
	}
	if _, err := a.fileHeaderOffset(index); err != nil {
		return -1, -1, err
	}
	slot, ok := a.dirSlot(index)
	if !ok {
		return -1, -1, fmt.Errorf("%w: index %d is not a directory", dx.ErrNotFound, index)
	}
	dh := a.dirHeader(slot)
	return dh.Begin(), dh.End(), nil
}

// RootIndex returns the file index of the root directory's own entry.
func (a *Archive) RootIndex() (int, error) {
	if err := a.checkOpen(); err != nil {
		return -1, err
	}
	slot, err := a.root()
	if err != nil {
		return -1, err
	}
	dh := a.dirHeader(slot)
	return dh.Index(), nil
}

// Stat describes the entry at index.
func (a *Archive) Stat(index int) (Entry, error) {
	if err := a.checkOpen(); err != nil {
		return Entry{}, err
	}
	fh, err := a.fileHeader(index)
	if err != nil {
		return Entry{}, err
	}
	_, isDir := a.dirSlot(index)
	return Entry{
		Index:      index,
		Name:       a.name(fh, false),
		Size:       fh.DataSize,
		StoredSize: fh.StoredSize(),
		Compressed: fh.Compressed(),
		IsDir:      isDir,
	}, nil
}

// WalkFunc is called for every entry visited by Walk with its full path.
type WalkFunc func(path string, e Entry) error

// Walk visits the children of the directory at index depth-first, in table
// order, descending into subdirectories after reporting them.
func (a *Archive) Walk(index int, fn WalkFunc) error {
	if err := a.checkOpen(); err != nil {
		return err
	}
	prefix := ""
	if root, err := a.RootIndex(); err == nil && root != index {
		p, err := a.FullPath(index)
		if err != nil {
			return err
		}
		prefix = p
	}
	return a.walk(index, prefix, fn, 0)
}

func (a *Archive) walk(index int, prefix string, fn WalkFunc, depth int) error {
	if depth > a.numDirs() {
		return fmt.Errorf("%w: directory nesting loops at index %d", dx.ErrCorruptData, index)
	}

	begin, end, err := a.DirectoryChildren(index)
	if err != nil {
		return err
	}
	end = min(end, a.numFiles())

	for i := begin; i < end; i++ {
		e, err := a.Stat(i)
		if err != nil {
			return err
		}
		path := e.Name
		if prefix != "" {
			path = prefix + "/" + e.Name
		}
		if err := fn(path, e); err != nil {
			return err
		}
		if e.IsDir {
			if err := a.walk(i, path, fn, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}
