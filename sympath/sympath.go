// Package sympath implements the structured, namespaced identifier that
// unambiguously names a declaration in the global namespace.
//
// A path is divided into components separated by a slash '/'. Each component
// looks like {name}:{tag}, where name is the proper name of the symbol and
// the tag character denotes its category, disambiguating a type named Foo
// from data or a callable named Foo.
package sympath

import "strings"

// Category of the declaration a path component names.
type Category int

const (
	CategoryType Category = iota
	CategoryData
	CategoryCallable
)

const (
	componentSep    = '/'
	componentTagSep = ':'
	tagType         = 'T'
	tagData         = 'D'
	tagCallable     = 'C'
)

// UnknownName marks a component whose resolution failed. The angle brackets
// cannot appear in identifiers, so a sentinel never equals a real component.
const UnknownName = "<unknown>"

func (c Category) tag() byte {
	switch c {
	case CategoryType:
		return tagType
	case CategoryData:
		return tagData
	default:
		return tagCallable
	}
}

func categoryFromTag(tag byte) Category {
	switch tag {
	case tagType:
		return CategoryType
	case tagData:
		return CategoryData
	default:
		return CategoryCallable
	}
}

// Path is an immutable sequence of components. The zero value is the empty
// path, which can be used to indicate an error or default state.
// Paths are comparable and usable as map keys; equality and ordering are on
// the serialized form.
type Path struct {
	buf string
}

// Component is one part of a path.
type Component struct {
	Name     string
	Category Category
}

// IsUnknown reports whether this component is the resolution-failure sentinel.
func (c Component) IsUnknown() bool {
	return c.Name == UnknownName
}

// AsPath returns the component as a standalone single-component path.
func (c Component) AsPath() Path {
	return New(c.Name, c.Category)
}

func (c Component) String() string {
	if c.Category == CategoryCallable {
		return c.Name + "()"
	}
	return c.Name
}

// Empty returns the empty path.
func Empty() Path {
	return Path{}
}

// New returns a single-component path.
func New(name string, category Category) Path {
	return Path{}.Push(name, category)
}

// Unknown returns a single-component sentinel path of the given category.
func Unknown(category Category) Path {
	return New(UnknownName, category)
}

// FromSerialized reconstructs a path from its String() form.
// No validation is performed; feed it only previously serialized paths.
func FromSerialized(s string) Path {
	return Path{buf: s}
}

func (p Path) IsEmpty() bool {
	return p.buf == ""
}

// Push returns a new path with a component appended at the end.
func (p Path) Push(name string, category Category) Path {
	var b strings.Builder
	b.Grow(len(p.buf) + len(name) + 3)
	b.WriteString(p.buf)
	if p.buf != "" {
		b.WriteByte(componentSep)
	}
	b.WriteString(name)
	b.WriteByte(componentTagSep)
	b.WriteByte(category.tag())
	return Path{buf: b.String()}
}

// PushPath returns a new path with all of other's components appended.
func (p Path) PushPath(other Path) Path {
	if p.buf == "" {
		return other
	}
	if other.buf == "" {
		return p
	}
	return Path{buf: p.buf + string(componentSep) + other.buf}
}

// Pop returns the path without its rightmost component.
// A single-component path pops to the empty path.
func (p Path) Pop() Path {
	if i := strings.LastIndexByte(p.buf, componentSep); i >= 0 {
		return Path{buf: p.buf[:i]}
	}
	return Path{}
}

// PopRoot returns the path without its leftmost component.
func (p Path) PopRoot() Path {
	if i := strings.IndexByte(p.buf, componentSep); i >= 0 {
		return Path{buf: p.buf[i+1:]}
	}
	return Path{}
}

// Root returns the first component of the path as a path.
func (p Path) Root() (Path, bool) {
	if p.buf == "" {
		return Path{}, false
	}
	if i := strings.IndexByte(p.buf, componentSep); i >= 0 {
		return Path{buf: p.buf[:i]}, true
	}
	return p, true
}

// Parent returns the path without the last component, if there is more than one.
func (p Path) Parent() (Path, bool) {
	if i := strings.LastIndexByte(p.buf, componentSep); i >= 0 {
		return Path{buf: p.buf[:i]}, true
	}
	return Path{}, false
}

// Stem returns everything after the first component, if anything follows it.
func (p Path) Stem() (Path, bool) {
	if i := strings.IndexByte(p.buf, componentSep); i >= 0 {
		return Path{buf: p.buf[i+1:]}, true
	}
	return Path{}, false
}

// HasPrefix reports whether other is a component-wise prefix of p.
// Every path has the empty path as a prefix.
func (p Path) HasPrefix(other Path) bool {
	if other.buf == "" {
		return true
	}
	if !strings.HasPrefix(p.buf, other.buf) {
		return false
	}
	return len(p.buf) == len(other.buf) || p.buf[len(other.buf)] == componentSep
}

// Components returns the path's components in order.
func (p Path) Components() []Component {
	if p.buf == "" {
		return nil
	}
	parts := strings.Split(p.buf, string(componentSep))
	comps := make([]Component, len(parts))
	for i, part := range parts {
		comps[i] = parseComponent(part)
	}
	return comps
}

// ComponentsReverse returns the path's components in reverse order.
func (p Path) ComponentsReverse() []Component {
	comps := p.Components()
	for i, j := 0, len(comps)-1; i < j; i, j = i+1, j-1 {
		comps[i], comps[j] = comps[j], comps[i]
	}
	return comps
}

// Len returns the number of components.
func (p Path) Len() int {
	if p.buf == "" {
		return 0
	}
	return strings.Count(p.buf, string(componentSep)) + 1
}

// First returns the leftmost component.
func (p Path) First() (Component, bool) {
	root, ok := p.Root()
	if !ok {
		return Component{}, false
	}
	return parseComponent(root.buf), true
}

// Last returns the rightmost component.
func (p Path) Last() (Component, bool) {
	if p.buf == "" {
		return Component{}, false
	}
	if i := strings.LastIndexByte(p.buf, componentSep); i >= 0 {
		return parseComponent(p.buf[i+1:]), true
	}
	return parseComponent(p.buf), true
}

// HasUnknown reports whether any component is the resolution-failure sentinel.
func (p Path) HasUnknown() bool {
	return strings.Contains(p.buf, UnknownName)
}

// String returns the serialized form, e.g. "Foo:T/bar:C/x:D".
func (p Path) String() string {
	return p.buf
}

// Display returns the human-readable form, e.g. "Foo::bar()::x".
func (p Path) Display() string {
	if p.buf == "" {
		return ""
	}
	comps := p.Components()
	parts := make([]string, len(comps))
	for i, c := range comps {
		parts[i] = c.String()
	}
	return strings.Join(parts, "::")
}

// Less provides the total order over serialized forms.
func (p Path) Less(other Path) bool {
	return p.buf < other.buf
}

// Compare returns -1, 0 or 1 ordering p against other.
func (p Path) Compare(other Path) int {
	return strings.Compare(p.buf, other.buf)
}

func parseComponent(part string) Component {
	if len(part) < 2 {
		return Component{Name: part, Category: CategoryType}
	}
	return Component{
		Name:     part[:len(part)-2],
		Category: categoryFromTag(part[len(part)-1]),
	}
}
