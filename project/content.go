package project

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/teranos/witcherscript-ls/abspath"
	"github.com/teranos/witcherscript-ls/errors"
)

// RedkitManifestExt marks a REDkit project directory; the project name is the
// marker file's stem unless the marker's JSON sets a non-empty name.
const RedkitManifestExt = ".w3edit"

// ErrNotContent is returned by TryMakeContent for directories that are not
// recognizable as any content variant.
var ErrNotContent = errors.New("directory is not a recognizable content")

// Content is an opaque descriptor of one unit of scripts on disk.
type Content interface {
	// Path is the root directory of the content.
	Path() abspath.Path
	// ContentName is the canonical name used for by-name dependency
	// resolution.
	ContentName() string
	// ScriptsRootPath is the directory whose subtree holds the source files.
	ScriptsRootPath() abspath.Path
	// Dependencies declared by the content; nil for contents that cannot
	// declare any.
	Dependencies() []DependencyEntry
}

// ProjectDirectory is a directory carrying a manifest.
type ProjectDirectory struct {
	path         abspath.Path
	manifestPath abspath.Path
	manifest     *Manifest
	scriptsRoot  abspath.Path
}

func (p *ProjectDirectory) Path() abspath.Path            { return p.path }
func (p *ProjectDirectory) ContentName() string           { return p.manifest.Content.Name }
func (p *ProjectDirectory) ScriptsRootPath() abspath.Path { return p.scriptsRoot }
func (p *ProjectDirectory) Dependencies() []DependencyEntry {
	return p.manifest.Dependencies
}

// ManifestPath is the absolute path of the project's manifest file.
func (p *ProjectDirectory) ManifestPath() abspath.Path { return p.manifestPath }

// Manifest gives access to the parsed manifest.
func (p *ProjectDirectory) Manifest() *Manifest { return p.manifest }

// RawContentDirectory is a directory of scripts without a manifest; its
// metadata is inferred from the directory itself.
type RawContentDirectory struct {
	path        abspath.Path
	scriptsRoot abspath.Path
}

func (r *RawContentDirectory) Path() abspath.Path              { return r.path }
func (r *RawContentDirectory) ContentName() string             { return r.path.Base() }
func (r *RawContentDirectory) ScriptsRootPath() abspath.Path   { return r.scriptsRoot }
func (r *RawContentDirectory) Dependencies() []DependencyEntry { return nil }

// RedkitProjectDirectory is a third-party project format: a directory with a
// .w3edit marker file. Scripts live under workspace/scripts.
type RedkitProjectDirectory struct {
	path        abspath.Path
	name        string
	scriptsRoot abspath.Path
}

func (r *RedkitProjectDirectory) Path() abspath.Path              { return r.path }
func (r *RedkitProjectDirectory) ContentName() string             { return r.name }
func (r *RedkitProjectDirectory) ScriptsRootPath() abspath.Path   { return r.scriptsRoot }
func (r *RedkitProjectDirectory) Dependencies() []DependencyEntry { return nil }

// TryMakeContent inspects a directory and constructs the matching content
// variant: a project (manifest present), a REDkit project (.w3edit marker)
// or a raw content directory (a scripts subtree). Returns ErrNotContent when
// none match.
func TryMakeContent(path abspath.Path) (Content, error) {
	info, err := os.Stat(path.String())
	if err != nil {
		return nil, errors.Wrapf(err, "inspecting %s", path)
	}
	if !info.IsDir() {
		return nil, errors.Wrapf(ErrNotContent, "%s is not a directory", path)
	}

	manifestPath, err := path.Join(ManifestFileName)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(manifestPath.String()); err == nil {
		return makeProjectDirectory(path, manifestPath)
	}

	if redkit, ok, err := tryMakeRedkitProject(path); err != nil {
		return nil, err
	} else if ok {
		return redkit, nil
	}

	if raw, ok := tryMakeRawContent(path); ok {
		return raw, nil
	}

	return nil, errors.Wrapf(ErrNotContent, "at %s", path)
}

func makeProjectDirectory(path, manifestPath abspath.Path) (*ProjectDirectory, error) {
	manifest, err := ParseManifestFile(manifestPath)
	if err != nil {
		return nil, err
	}

	scriptsRoot, err := projectScriptsRoot(path, manifest)
	if err != nil {
		return nil, err
	}

	return &ProjectDirectory{
		path:         path,
		manifestPath: manifestPath,
		manifest:     manifest,
		scriptsRoot:  scriptsRoot,
	}, nil
}

func projectScriptsRoot(path abspath.Path, manifest *Manifest) (abspath.Path, error) {
	if manifest.Content.ScriptsRoot != "" {
		return path.Join(manifest.Content.ScriptsRoot)
	}
	// fall back through legacy candidates; the default applies even when
	// the directory does not exist yet
	for _, candidate := range ScriptsRootCandidates {
		joined, err := path.Join(candidate)
		if err != nil {
			continue
		}
		if info, err := os.Stat(joined.String()); err == nil && info.IsDir() {
			return joined, nil
		}
	}
	return path.Join(ScriptsRootCandidates[0])
}

// redkitManifest is the subset of the .w3edit JSON document the core needs.
type redkitManifest struct {
	Name string `json:"name"`
}

func tryMakeRedkitProject(path abspath.Path) (*RedkitProjectDirectory, bool, error) {
	entries, err := os.ReadDir(path.String())
	if err != nil {
		return nil, false, errors.Wrapf(err, "reading directory %s", path)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), RedkitManifestExt) {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), RedkitManifestExt)
		markerPath, err := path.Join(entry.Name())
		if err != nil {
			return nil, false, err
		}

		// the marker is a JSON document; a name field overrides the stem
		if data, err := os.ReadFile(markerPath.String()); err == nil {
			var marker redkitManifest
			if err := json.Unmarshal(data, &marker); err != nil {
				return nil, false, &ManifestError{Msg: "invalid REDkit project file: " + err.Error()}
			}
			if marker.Name != "" {
				name = marker.Name
			}
		}

		scriptsRoot, err := path.Join(filepath.Join("workspace", "scripts"))
		if err != nil {
			return nil, false, err
		}

		return &RedkitProjectDirectory{path: path, name: name, scriptsRoot: scriptsRoot}, true, nil
	}

	return nil, false, nil
}

func tryMakeRawContent(path abspath.Path) (*RawContentDirectory, bool) {
	// a raw content keeps its scripts in a "scripts" subtree, mirroring how
	// the game ships its own content directories
	scriptsRoot, err := path.Join("scripts")
	if err != nil {
		return nil, false
	}
	if info, err := os.Stat(scriptsRoot.String()); err == nil && info.IsDir() {
		return &RawContentDirectory{path: path, scriptsRoot: scriptsRoot}, true
	}

	// a bare directory of scripts is accepted too
	entries, err := os.ReadDir(path.String())
	if err != nil {
		return nil, false
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), "."+ScriptExtension) {
			return &RawContentDirectory{path: path, scriptsRoot: path}, true
		}
	}

	return nil, false
}
