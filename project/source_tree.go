package project

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/teranos/witcherscript-ls/abspath"
	"github.com/teranos/witcherscript-ls/errors"
)

// ScriptExtension of the language's source files, without the dot.
const ScriptExtension = "ws"

// SourceTreeFile is one tracked script file of a content.
type SourceTreeFile struct {
	// LocalPath is relative to the scripts root, with the host OS's path
	// separators as produced by the walk.
	LocalPath string
	AbsPath   abspath.Path
	Modified  time.Time
}

// SourceTree is the sorted set of script files beneath a content's scripts
// root, with modification timestamps.
type SourceTree struct {
	scriptsRoot abspath.Path
	files       []SourceTreeFile

	// Errors encountered during the last scan
	Errors []error
}

// SourceTreeDifference is the structural diff produced by a rescan.
// Modified means: same path, strictly newer timestamp.
type SourceTreeDifference struct {
	Added    []SourceTreeFile
	Removed  []SourceTreeFile
	Modified []SourceTreeFile
}

func (d *SourceTreeDifference) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Modified) == 0
}

// NewSourceTree creates a tree for the given scripts root and performs the
// initial scan.
func NewSourceTree(scriptsRoot abspath.Path) *SourceTree {
	tree := &SourceTree{scriptsRoot: scriptsRoot}
	tree.Scan()
	return tree
}

func (t *SourceTree) ScriptsRoot() abspath.Path {
	return t.scriptsRoot
}

func (t *SourceTree) Len() int {
	return len(t.files)
}

// Files returns the tracked files sorted by local path.
func (t *SourceTree) Files() []SourceTreeFile {
	return t.files
}

// LocalPaths returns the sorted local paths of all tracked files.
func (t *SourceTree) LocalPaths() []string {
	out := make([]string, len(t.files))
	for i, f := range t.files {
		out[i] = f.LocalPath
	}
	return out
}

// Find looks up a file by absolute path.
func (t *SourceTree) Find(path abspath.Path) (SourceTreeFile, bool) {
	for _, f := range t.files {
		if f.AbsPath == path {
			return f, true
		}
	}
	return SourceTreeFile{}, false
}

// FindLocal looks up a file by scripts-root-relative path.
func (t *SourceTree) FindLocal(localPath string) (SourceTreeFile, bool) {
	i := sort.Search(len(t.files), func(i int) bool { return t.files[i].LocalPath >= localPath })
	if i < len(t.files) && t.files[i].LocalPath == localPath {
		return t.files[i], true
	}
	return SourceTreeFile{}, false
}

func (t *SourceTree) ContainsLocal(localPath string) bool {
	_, ok := t.FindLocal(localPath)
	return ok
}

// Scan rescans the scripts root and returns the difference against the
// previous state. Walk errors are collected, not fatal; unreadable files
// are skipped.
func (t *SourceTree) Scan() SourceTreeDifference {
	oldFiles := t.files
	t.files = nil
	t.Errors = nil

	root := t.scriptsRoot.String()
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// a missing scripts root is an empty tree, not an error
			if path == root && errors.Is(walkErr, os.ErrNotExist) {
				return filepath.SkipAll
			}
			t.Errors = append(t.Errors, errors.Wrapf(walkErr, "walking %s", path))
			return nil
		}
		if d.IsDir() {
			return nil
		}

		abs, err := abspath.Resolve(path, abspath.Path{})
		if err != nil {
			t.Errors = append(t.Errors, err)
			return nil
		}
		if abs.Ext() != ScriptExtension {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			t.Errors = append(t.Errors, errors.Wrapf(err, "reading metadata of %s", path))
			return nil
		}

		local, ok := abs.LocalTo(t.scriptsRoot)
		if !ok {
			return nil
		}

		t.files = append(t.files, SourceTreeFile{
			LocalPath: local,
			AbsPath:   abs,
			Modified:  info.ModTime(),
		})
		return nil
	})
	if err != nil {
		t.Errors = append(t.Errors, err)
	}

	sort.Slice(t.files, func(i, j int) bool { return t.files[i].LocalPath < t.files[j].LocalPath })

	return diffSourceTrees(oldFiles, t.files)
}

// diffSourceTrees merges two sorted file lists into a structural diff.
func diffSourceTrees(oldFiles, newFiles []SourceTreeFile) SourceTreeDifference {
	var diff SourceTreeDifference

	i, j := 0, 0
	for i < len(oldFiles) && j < len(newFiles) {
		switch {
		case oldFiles[i].LocalPath < newFiles[j].LocalPath:
			diff.Removed = append(diff.Removed, oldFiles[i])
			i++
		case oldFiles[i].LocalPath == newFiles[j].LocalPath:
			if newFiles[j].Modified.After(oldFiles[i].Modified) {
				diff.Modified = append(diff.Modified, newFiles[j])
			}
			i++
			j++
		default:
			diff.Added = append(diff.Added, newFiles[j])
			j++
		}
	}
	for ; i < len(oldFiles); i++ {
		diff.Removed = append(diff.Removed, oldFiles[i])
	}
	for ; j < len(newFiles); j++ {
		diff.Added = append(diff.Added, newFiles[j])
	}

	return diff
}
