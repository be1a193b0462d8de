// Package project implements the content layer: manifests, contents on
// disk, source trees and the content dependency graph.
package project

import (
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/teranos/witcherscript-ls/abspath"
	"github.com/teranos/witcherscript-ls/errors"
)

// ManifestFileName is the project manifest carried by every project
// directory.
const ManifestFileName = "witcherscript.toml"

// Default and legacy scripts-root candidates, relative to the project
// directory. The first existing candidate wins when the manifest does not
// override it.
var ScriptsRootCandidates = []string{
	"scripts",
	"content/scripts",
	"workspace/scripts",
}

// Manifest is the parsed project manifest.
type Manifest struct {
	Content      ManifestContent
	Dependencies []DependencyEntry
}

// ManifestContent is the [content] table of the manifest.
type ManifestContent struct {
	// Name of this project, for example SharedUtils
	Name      string
	NameRange protocol.Range
	// Short description of the project
	Description string
	// Version of this project, has to abide to semantic versioning
	Version *semver.Version
	// Version(s) of the game this project is compatible with. The game's
	// versioning scheme does not comply with semver, so this stays a string.
	GameVersion string
	// List of this project's authors
	Authors []string
	// Relative path to the scripts directory. "./scripts" by default.
	ScriptsRoot string
}

// DependencyEntry is one key-value pair of the [dependencies] table.
type DependencyEntry struct {
	Name       string
	NameRange  protocol.Range
	Value      DependencyValue
	ValueRange protocol.Range
}

// DependencyValue is either a boolean (resolve from repositories by name)
// or a table pointing at an explicit path.
type DependencyValue struct {
	// FromRepo is set when the value was a boolean.
	FromRepo bool
	// Active carries the boolean's value; an inactive dependency is ignored.
	Active bool
	// Path is set when the value was { path = "..." }, absolute or relative
	// to the manifest's directory.
	Path string
}

// ManifestError is a manifest problem with a location inside the file.
type ManifestError struct {
	Range protocol.Range
	Msg   string
}

func (e *ManifestError) Error() string {
	return e.Msg
}

// ErrInvalidName marks an invalid content.name field; the range is carried
// by the wrapping ManifestError.
var ErrInvalidName = errors.New("the name field in the [content] table is invalid")

// ValidateContentName reports whether the given name is a valid project
// content name: a letter or underscore followed by alphanumerics and
// underscores.
func ValidateContentName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '_':
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// rawManifest is the direct TOML shape; the value of a dependency is decoded
// per-entry because it can be a boolean or a table.
type rawManifest struct {
	Content struct {
		Name        string   `toml:"name"`
		Description string   `toml:"description"`
		Version     string   `toml:"version"`
		GameVersion string   `toml:"game_version"`
		Authors     []string `toml:"authors"`
		ScriptsRoot string   `toml:"scripts_root"`
	} `toml:"content"`
	Dependencies map[string]toml.Primitive `toml:"dependencies"`
}

// ParseManifest parses manifest text. Key ranges are recovered by scanning
// the text, since the TOML decoder does not expose spans.
func ParseManifest(text string) (*Manifest, error) {
	var raw rawManifest
	meta, err := toml.Decode(text, &raw)
	if err != nil {
		rng := protocol.Range{}
		var parseErr toml.ParseError
		if errors.As(err, &parseErr) {
			line := uint32(0)
			if parseErr.Position.Line > 0 {
				line = uint32(parseErr.Position.Line - 1)
			}
			rng = lineRange(text, int(line))
		}
		return nil, &ManifestError{Range: rng, Msg: err.Error()}
	}

	locator := newKeyLocator(text)

	manifest := &Manifest{}
	manifest.Content.Name = raw.Content.Name
	manifest.Content.NameRange = locator.keyValueRange("content", "name")
	manifest.Content.Description = raw.Content.Description
	manifest.Content.GameVersion = raw.Content.GameVersion
	manifest.Content.Authors = raw.Content.Authors
	manifest.Content.ScriptsRoot = raw.Content.ScriptsRoot

	if raw.Content.Version != "" {
		version, err := semver.NewVersion(raw.Content.Version)
		if err != nil {
			return nil, &ManifestError{
				Range: locator.keyValueRange("content", "version"),
				Msg:   "the version field does not follow semantic versioning: " + err.Error(),
			}
		}
		manifest.Content.Version = version
	}

	if !ValidateContentName(manifest.Content.Name) {
		return nil, &ManifestError{
			Range: locator.keyRange("content", "name"),
			Msg:   ErrInvalidName.Error(),
		}
	}

	for name, prim := range raw.Dependencies {
		entry := DependencyEntry{
			Name:       name,
			NameRange:  locator.keyRange("dependencies", name),
			ValueRange: locator.keyValueRange("dependencies", name),
		}

		var fromRepo bool
		if err := meta.PrimitiveDecode(prim, &fromRepo); err == nil {
			entry.Value = DependencyValue{FromRepo: true, Active: fromRepo}
		} else {
			var fromPath struct {
				Path string `toml:"path"`
			}
			if err := meta.PrimitiveDecode(prim, &fromPath); err != nil || fromPath.Path == "" {
				return nil, &ManifestError{
					Range: entry.ValueRange,
					Msg:   "a dependency value must be a boolean or a { path = ... } table",
				}
			}
			entry.Value = DependencyValue{Path: fromPath.Path}
		}

		manifest.Dependencies = append(manifest.Dependencies, entry)
	}

	// deterministic order regardless of map iteration
	sortDependencies(manifest.Dependencies)

	return manifest, nil
}

// ParseManifestFile reads and parses a manifest from disk.
func ParseManifestFile(path abspath.Path) (*Manifest, error) {
	data, err := os.ReadFile(path.String())
	if err != nil {
		return nil, errors.Wrapf(err, "reading manifest %s", path)
	}
	return ParseManifest(string(data))
}

func sortDependencies(deps []DependencyEntry) {
	sort.Slice(deps, func(i, j int) bool { return deps[i].Name < deps[j].Name })
}

// keyLocator recovers key and value ranges from manifest text by tracking
// table headers line by line.
type keyLocator struct {
	lines []string
}

func newKeyLocator(text string) *keyLocator {
	return &keyLocator{lines: strings.Split(text, "\n")}
}

// keyRange returns the range of a key inside the given table.
func (l *keyLocator) keyRange(table, key string) protocol.Range {
	line, col, ok := l.find(table, key)
	if !ok {
		return protocol.Range{}
	}
	return protocol.Range{
		Start: protocol.Position{Line: uint32(line), Character: uint32(col)},
		End:   protocol.Position{Line: uint32(line), Character: uint32(col + len(key))},
	}
}

// keyValueRange returns the range of a key's whole line from the key to the
// end of the trimmed value.
func (l *keyLocator) keyValueRange(table, key string) protocol.Range {
	line, col, ok := l.find(table, key)
	if !ok {
		return protocol.Range{}
	}
	end := len(strings.TrimRight(l.lines[line], " \t\r"))
	return protocol.Range{
		Start: protocol.Position{Line: uint32(line), Character: uint32(col)},
		End:   protocol.Position{Line: uint32(line), Character: uint32(end)},
	}
}

func (l *keyLocator) find(table, key string) (line, col int, ok bool) {
	currentTable := ""
	for i, raw := range l.lines {
		trimmed := strings.TrimSpace(raw)
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			currentTable = strings.Trim(trimmed, "[]")
			continue
		}
		if currentTable != table {
			continue
		}
		eq := strings.Index(raw, "=")
		if eq < 0 {
			continue
		}
		candidate := strings.TrimSpace(raw[:eq])
		if candidate == key || candidate == `"`+key+`"` {
			return i, strings.Index(raw, candidate), true
		}
	}
	return 0, 0, false
}

func lineRange(text string, line int) protocol.Range {
	lines := strings.Split(text, "\n")
	if line >= len(lines) {
		line = len(lines) - 1
	}
	if line < 0 {
		line = 0
	}
	return protocol.Range{
		Start: protocol.Position{Line: uint32(line), Character: 0},
		End:   protocol.Position{Line: uint32(line), Character: uint32(len(strings.TrimRight(lines[line], "\r")))},
	}
}
