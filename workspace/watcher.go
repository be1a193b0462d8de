package workspace

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/teranos/witcherscript-ls/abspath"
	"github.com/teranos/witcherscript-ls/errors"
	"github.com/teranos/witcherscript-ls/project"
)

const (
	// watchDebounce batches bursts of file events (saves, checkouts) into
	// one analysis pass.
	watchDebounce = 250 * time.Millisecond
	// rebuildMinInterval keeps manifest-triggered graph rebuilds from
	// starving script analysis during branch switches.
	rebuildMinInterval = 2 * time.Second
)

// Watcher feeds file system changes into the workspace: script edits cause
// per-file reanalysis, manifest changes a full content-graph rebuild.
type Watcher struct {
	ws  *Workspace
	log *zap.SugaredLogger

	fsw            *fsnotify.Watcher
	rebuildLimiter *rate.Limiter

	mu             sync.Mutex
	pendingScripts map[abspath.Path]struct{}
	rebuildPending bool
	flushTimer     *time.Timer

	cancel context.CancelFunc
	done   chan struct{}
}

func NewWatcher(ws *Workspace, log *zap.SugaredLogger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating file watcher")
	}

	return &Watcher{
		ws:             ws,
		log:            log,
		fsw:            fsw,
		rebuildLimiter: rate.NewLimiter(rate.Every(rebuildMinInterval), 1),
		pendingScripts: make(map[abspath.Path]struct{}),
		done:           make(chan struct{}),
	}, nil
}

// Start begins watching every known content and runs the event loop until
// the context is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	ctx, w.cancel = context.WithCancel(ctx)

	if err := w.watchContents(); err != nil {
		return err
	}

	go w.run(ctx)
	return nil
}

// Stop terminates the event loop and releases the OS watches.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
		<-w.done
	}
	_ = w.fsw.Close()
}

// watchContents registers the scripts roots (recursively) and the content
// roots (for manifests) of every graph node.
func (w *Watcher) watchContents() error {
	w.ws.mu.RLock()
	defer w.ws.mu.RUnlock()

	for _, node := range w.ws.graph.Nodes() {
		if err := w.watchRecursive(node.Content.ScriptsRootPath()); err != nil {
			w.log.Warnw("Failed to watch scripts root",
				"path", node.Content.ScriptsRootPath().String(),
				"error", err,
			)
		}
		if err := w.fsw.Add(node.Content.Path().String()); err != nil {
			w.log.Debugw("Failed to watch content root",
				"path", node.Content.Path().String(),
				"error", err,
			)
		}
	}
	return nil
}

func (w *Watcher) watchRecursive(root abspath.Path) error {
	return filepath.WalkDir(root.String(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// a missing directory is just not watched
			return nil
		}
		if d.IsDir() {
			if addErr := w.fsw.Add(path); addErr != nil {
				w.log.Debugw("Failed to add watch", "path", path, "error", addErr)
			}
		}
		return nil
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warnw("File watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	path, err := abspath.Resolve(event.Name, abspath.Path{})
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case path.Ext() == project.ScriptExtension:
		w.pendingScripts[path] = struct{}{}
	case strings.HasSuffix(path.String(), project.ManifestFileName),
		strings.HasSuffix(path.String(), project.RedkitManifestExt):
		w.rebuildPending = true
	case event.Op.Has(fsnotify.Create):
		// a new directory inside a scripts root needs its own watch
		_ = w.fsw.Add(path.String())
		return
	default:
		return
	}

	if w.flushTimer != nil {
		w.flushTimer.Stop()
	}
	w.flushTimer = time.AfterFunc(watchDebounce, func() { w.flush(ctx) })
}

// flush applies the batched changes: a graph rebuild first when manifests
// changed, then per-script reanalysis.
func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	rebuild := w.rebuildPending
	scripts := w.pendingScripts
	w.rebuildPending = false
	w.pendingScripts = make(map[abspath.Path]struct{})
	w.mu.Unlock()

	if ctx.Err() != nil {
		return
	}

	if rebuild {
		if !w.rebuildLimiter.Allow() {
			// re-arm; the limiter window passes before the next flush
			w.mu.Lock()
			w.rebuildPending = true
			if w.flushTimer != nil {
				w.flushTimer.Stop()
			}
			w.flushTimer = time.AfterFunc(rebuildMinInterval, func() { w.flush(ctx) })
			w.mu.Unlock()
		} else {
			if _, err := w.ws.Rebuild(ctx); err != nil && !errors.Is(err, context.Canceled) {
				w.log.Warnw("Content graph rebuild failed", "error", err)
			}
			_ = w.watchContents()
		}
	}

	for path := range scripts {
		w.ws.OnFileChanged(path)
	}
}
