// Package abspath provides a type-safe absolute file path value.
//
// A Path is guaranteed to be absolute and normalized: relative inputs are
// resolved against an explicit or process working directory, `.` and `..`
// components are collapsed lexically, and separators are corrected for the
// host OS. The file system is never accessed during construction.
package abspath

import (
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/teranos/witcherscript-ls/errors"
)

// Appears for paths like "/../.." which can never be possible, because they
// escape the root directory.
var ErrEscapesRoot = errors.New("path points to a resource outside of the root directory")

// Windows only. Verbatim and UNC prefixes are not supported, only local disk paths.
var ErrUnsupportedPrefix = errors.New("non-disk path prefixes are not supported")

// Path is an OS-normalized absolute file path.
// The zero value is not a valid path; use Resolve to construct one.
// Equality and ordering are byte-for-byte on the normalized form.
type Path struct {
	inner string
}

var (
	cwdOnce sync.Once
	cwd     Path
)

// Cwd returns the absolute path of the process working directory.
// The result is captured once; changing the process cwd later will not change it.
func Cwd() Path {
	cwdOnce.Do(func() {
		dir, err := os.Getwd()
		if err != nil {
			// Getwd fails only when the cwd was deleted from under the
			// process. Nothing sensible can run in that situation.
			panic(err)
		}
		cwd = Path{inner: dir}
	})
	return cwd
}

// Resolve constructs a Path from any path string.
// If the input is relative it is resolved against cwd, or against the process
// working directory when cwd is the zero Path.
func Resolve(path string, cwd Path) (Path, error) {
	if strings.HasPrefix(path, `\\`) {
		return Path{}, errors.Wrapf(ErrUnsupportedPrefix, "resolving %q", path)
	}

	var unnormalized string
	if filepath.IsAbs(path) {
		unnormalized = path
	} else {
		base := cwd
		if base.IsZero() {
			base = Cwd()
		}
		unnormalized = base.inner + string(filepath.Separator) + path
	}

	root, stem, err := splitRoot(unnormalized)
	if err != nil {
		return Path{}, errors.Wrapf(err, "resolving %q", path)
	}

	normalized, err := normalizeStem(stem)
	if err != nil {
		return Path{}, errors.Wrapf(err, "resolving %q", path)
	}

	if normalized == "" {
		return Path{inner: root}, nil
	}
	return Path{inner: root + normalized}, nil
}

// MustResolve is Resolve that panics on error. For statically known inputs.
func MustResolve(path string) Path {
	p, err := Resolve(path, Path{})
	if err != nil {
		panic(err)
	}
	return p
}

// Join returns a new Path with rel appended.
// If rel is absolute it is resolved on its own instead of appended.
func (p Path) Join(rel string) (Path, error) {
	if rel == "" {
		return p, nil
	}
	if filepath.IsAbs(rel) || strings.HasPrefix(rel, `\\`) {
		return Resolve(rel, Path{})
	}

	root, stem, err := splitRoot(p.inner)
	if err != nil {
		return Path{}, err
	}
	normalized, err := normalizeStem(stem + string(filepath.Separator) + rel)
	if err != nil {
		return Path{}, err
	}
	return Path{inner: root + normalized}, nil
}

// Parent returns the path without its last component.
// Returns false if the path is a filesystem root.
func (p Path) Parent() (Path, bool) {
	parent := filepath.Dir(p.inner)
	if parent == p.inner {
		return Path{}, false
	}
	return Path{inner: parent}, true
}

// LocalTo strips the given root prefix, returning the remainder as a
// root-relative path. Returns false if p does not descend from root.
func (p Path) LocalTo(root Path) (string, bool) {
	if p.inner == root.inner {
		return "", true
	}
	prefix := root.inner
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	if !strings.HasPrefix(p.inner, prefix) {
		return "", false
	}
	return p.inner[len(prefix):], true
}

// Ext returns the file extension without the leading dot, or "".
func (p Path) Ext() string {
	ext := filepath.Ext(p.inner)
	return strings.TrimPrefix(ext, ".")
}

// Base returns the last component of the path.
func (p Path) Base() string {
	return filepath.Base(p.inner)
}

func (p Path) IsZero() bool {
	return p.inner == ""
}

func (p Path) String() string {
	return p.inner
}

// Less provides the total order used by sorted collections keyed by path.
func (p Path) Less(other Path) bool {
	return p.inner < other.inner
}

// URI renders the path as a file:// URI for the LSP protocol.
func (p Path) URI() string {
	slashed := filepath.ToSlash(p.inner)
	if !strings.HasPrefix(slashed, "/") {
		slashed = "/" + slashed
	}
	u := url.URL{Scheme: "file", Path: slashed}
	return u.String()
}

// FromURI parses a file:// URI back into a Path.
func FromURI(uri string) (Path, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return Path{}, errors.Wrapf(err, "parsing URI %q", uri)
	}
	if u.Scheme != "file" {
		return Path{}, errors.Newf("URI %q is not a file URI", uri)
	}
	path := u.Path
	if runtime.GOOS == "windows" {
		// "/C:/foo" -> "C:/foo"
		if len(path) >= 3 && path[0] == '/' && path[2] == ':' {
			path = path[1:]
		}
		path = filepath.FromSlash(path)
	}
	return Resolve(path, Path{})
}

// splitRoot divides an absolute, possibly unnormalized path into its root
// (separator, plus the uppercased drive prefix on Windows) and the relative
// stem after it.
func splitRoot(unnormalized string) (string, string, error) {
	vol := filepath.VolumeName(unnormalized)
	if strings.HasPrefix(vol, `\\`) {
		return "", "", ErrUnsupportedPrefix
	}
	if len(vol) == 2 && vol[1] == ':' {
		vol = strings.ToUpper(vol)
	}

	rest := unnormalized[len(filepath.VolumeName(unnormalized)):]
	rest = strings.TrimLeft(rest, `/\`)

	return vol + string(filepath.Separator), rest, nil
}

// normalizeStem collapses `.` and `..` components lexically.
// Popping past the root is an error, not a silent clamp.
func normalizeStem(stem string) (string, error) {
	var parts []string
	for _, comp := range splitComponents(stem) {
		switch comp {
		case "", ".":
			// skip
		case "..":
			if len(parts) == 0 {
				return "", ErrEscapesRoot
			}
			parts = parts[:len(parts)-1]
		default:
			parts = append(parts, comp)
		}
	}
	return strings.Join(parts, string(filepath.Separator)), nil
}

func splitComponents(stem string) []string {
	return strings.FieldsFunc(stem, func(r rune) bool {
		if r == filepath.Separator {
			return true
		}
		// Windows additionally accepts forward slashes
		return runtime.GOOS == "windows" && r == '/'
	})
}
