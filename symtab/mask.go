package symtab

// SourceMask is a set of local source paths declared by earlier layers of a
// marcher. A script file present in an upper layer shadows the file at the
// same local path in every lower layer entirely, not merely its top-level
// symbols.
type SourceMask map[string]struct{}

func NewSourceMask(localPaths ...string) SourceMask {
	m := make(SourceMask, len(localPaths))
	for _, p := range localPaths {
		m[p] = struct{}{}
	}
	return m
}

// Allows reports whether a symbol located in the given local source path is
// visible under this mask.
func (m SourceMask) Allows(localPath string) bool {
	_, masked := m[localPath]
	return !masked
}

// Union returns a new mask covering both masks.
func (m SourceMask) Union(other SourceMask) SourceMask {
	out := make(SourceMask, len(m)+len(other))
	for p := range m {
		out[p] = struct{}{}
	}
	for p := range other {
		out[p] = struct{}{}
	}
	return out
}
