package project

import (
	"os"

	"go.uber.org/zap"

	"github.com/teranos/witcherscript-ls/abspath"
	"github.com/teranos/witcherscript-ls/errors"
)

// ContentScanError attributes a scanning failure to the content directory
// that caused it.
type ContentScanError struct {
	Path abspath.Path
	Err  error
}

func (e *ContentScanError) Error() string {
	return e.Err.Error()
}

func (e *ContentScanError) Unwrap() error {
	return e.Err
}

// ContentRepositories finds contents in repository directories. Repository
// roots are scanned non-recursively: every immediate subdirectory that looks
// like a content becomes available for by-name dependency resolution.
type ContentRepositories struct {
	repositoryRoots []abspath.Path
	found           []Content

	// Errors from the last scan, e.g. malformed manifests. The offending
	// content is excluded; other contents proceed.
	Errors []*ContentScanError
}

func NewContentRepositories(roots ...abspath.Path) *ContentRepositories {
	return &ContentRepositories{repositoryRoots: roots}
}

func (r *ContentRepositories) AddRepository(root abspath.Path) {
	for _, existing := range r.repositoryRoots {
		if existing == root {
			return
		}
	}
	r.repositoryRoots = append(r.repositoryRoots, root)
}

// FoundContents returns the contents discovered by the last Scan.
func (r *ContentRepositories) FoundContents() []Content {
	return r.found
}

// Scan rediscovers contents beneath the repository roots.
func (r *ContentRepositories) Scan(log *zap.SugaredLogger) {
	r.found = nil
	r.Errors = nil

	for _, root := range r.repositoryRoots {
		entries, err := os.ReadDir(root.String())
		if err != nil {
			r.Errors = append(r.Errors, &ContentScanError{Path: root, Err: err})
			continue
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			dir, err := root.Join(entry.Name())
			if err != nil {
				continue
			}

			content, err := TryMakeContent(dir)
			if err != nil {
				if !errors.Is(err, ErrNotContent) {
					r.Errors = append(r.Errors, &ContentScanError{Path: dir, Err: err})
				}
				continue
			}

			log.Debugw("Found repository content",
				"content", content.ContentName(),
				"content_path", content.Path().String(),
			)
			r.found = append(r.found, content)
		}
	}
}

// ScanWorkspaceProjects walks workspace roots recursively looking for
// project directories (manifest or REDkit marker). Found projects are not
// descended into.
func ScanWorkspaceProjects(roots []abspath.Path, log *zap.SugaredLogger) ([]Content, []*ContentScanError) {
	var found []Content
	var scanErrors []*ContentScanError

	var visit func(dir abspath.Path, depth int)
	visit = func(dir abspath.Path, depth int) {
		content, err := TryMakeContent(dir)
		if err == nil {
			switch content.(type) {
			case *ProjectDirectory, *RedkitProjectDirectory:
				log.Debugw("Found workspace project",
					"content", content.ContentName(),
					"content_path", content.Path().String(),
				)
				found = append(found, content)
				return
			}
			// raw directories inside the workspace are not projects; keep
			// descending, they may contain project subdirectories
		} else if !errors.Is(err, ErrNotContent) {
			scanErrors = append(scanErrors, &ContentScanError{Path: dir, Err: err})
			return
		}

		entries, err := os.ReadDir(dir.String())
		if err != nil {
			scanErrors = append(scanErrors, &ContentScanError{Path: dir, Err: err})
			return
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			sub, err := dir.Join(entry.Name())
			if err != nil {
				continue
			}
			visit(sub, depth+1)
		}
	}

	for _, root := range roots {
		visit(root, 0)
	}

	return found, scanErrors
}
