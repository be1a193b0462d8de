// Package parser is the seam between the analysis core and the script
// parser, which is built and linked separately (it carries the grammar and
// its native bindings). A concrete parser registers itself at init time;
// the core never depends on a particular parsing technology.
package parser

import (
	"sync"

	"github.com/teranos/witcherscript-ls/abspath"
	"github.com/teranos/witcherscript-ls/syntax"
)

// Func parses one script's text into a typed syntax tree with positional
// ranges, plus the document used to read identifier lexemes back out.
type Func func(path abspath.Path, text string) (*syntax.Script, *syntax.Document, error)

var (
	mu         sync.RWMutex
	registered Func
)

// Register installs the script parser. Called from the parser
// implementation's init function; the last registration wins.
func Register(f Func) {
	mu.Lock()
	defer mu.Unlock()
	registered = f
}

// Registered returns the installed parser, if any.
func Registered() (Func, bool) {
	mu.RLock()
	defer mu.RUnlock()
	return registered, registered != nil
}
