// Package symbols models every named declaration the analysis recognizes:
// types, callables and data. A symbol is identified solely by its path; two
// symbols with equal paths are the same symbol.
package symbols

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/teranos/witcherscript-ls/abspath"
	"github.com/teranos/witcherscript-ls/sympath"
)

// Kind discriminates the closed set of symbol varieties.
type Kind int

const (
	// types
	KindClass Kind = iota
	KindState
	KindStruct
	KindEnum
	KindArray
	KindPrimitive

	// callables
	KindGlobalFunction
	KindMemberFunction
	KindEvent
	KindConstructor
	KindArrayFunction
	KindMemberFunctionInjector
	KindMemberFunctionReplacer
	KindGlobalFunctionReplacer
	KindMemberFunctionWrapper
	KindWrappedMethod

	// data
	KindEnumVariant
	KindFunctionParameter
	KindArrayFunctionParameter
	KindGlobalVar
	KindMemberVar
	KindAutobind
	KindLocalVar
	KindThisVar
	KindSuperVar
	KindStateSuperVar
	KindParentVar
	KindVirtualParentVar
	KindMemberVarInjector
)

var kindNames = map[Kind]string{
	KindClass:                  "class",
	KindState:                  "state",
	KindStruct:                 "struct",
	KindEnum:                   "enum",
	KindArray:                  "array",
	KindPrimitive:              "primitive",
	KindGlobalFunction:         "function",
	KindMemberFunction:         "method",
	KindEvent:                  "event",
	KindConstructor:            "constructor",
	KindArrayFunction:          "method",
	KindMemberFunctionInjector: "added method",
	KindMemberFunctionReplacer: "replaced method",
	KindGlobalFunctionReplacer: "replaced function",
	KindMemberFunctionWrapper:  "wrapped method",
	KindWrappedMethod:          "wrapped method",
	KindEnumVariant:            "enum variant",
	KindFunctionParameter:      "parameter",
	KindArrayFunctionParameter: "parameter",
	KindGlobalVar:              "global variable",
	KindMemberVar:              "field",
	KindAutobind:               "autobind",
	KindLocalVar:               "local variable",
	KindThisVar:                "variable",
	KindSuperVar:               "variable",
	KindStateSuperVar:          "variable",
	KindParentVar:              "variable",
	KindVirtualParentVar:       "variable",
	KindMemberVarInjector:      "added field",
}

func (k Kind) String() string {
	return kindNames[k]
}

// Location of a symbol originating in user source. Synthesized symbols
// (primitives, the array family, reserved self-reference vars) have none.
type Location struct {
	AbsSourcePath   abspath.Path
	LocalSourcePath string
	Range           protocol.Range
	LabelRange      protocol.Range
}

// Symbol is the uniform view over all declaration kinds.
// The set of implementations is closed; downcast with a type assertion.
type Symbol interface {
	Path() sympath.Path
	Kind() Kind
	// Name is the display name, i.e. the last path component's name.
	Name() string
	// Location returns nil for synthesized symbols.
	Location() *Location
}

// PrimarySymbol is a top-level declaration of a source file; primary symbols
// anchor the symbol table's source index.
type PrimarySymbol interface {
	Symbol
	primary()
}

type base struct {
	path sympath.Path
}

func (b *base) Path() sympath.Path { return b.path }

func (b *base) Name() string {
	last, ok := b.path.Last()
	if !ok {
		return ""
	}
	return last.Name
}

func (b *base) Location() *Location { return nil }

type located struct {
	base
	loc Location
}

func (l *located) Location() *Location { return &l.loc }

// ---- types ----

// ClassSymbol is a class type declaration.
type ClassSymbol struct {
	located
	Specifiers SpecifierSet
	// BasePath is empty when the class has no base.
	BasePath sympath.Path
}

func NewClassSymbol(path sympath.Path, loc Location) *ClassSymbol {
	return &ClassSymbol{located: located{base: base{path: path}, loc: loc}, Specifiers: NewSpecifierSet()}
}

func (*ClassSymbol) Kind() Kind { return KindClass }
func (*ClassSymbol) primary()   {}

// StateSymbol is a state type declaration.
type StateSymbol struct {
	located
	Specifiers SpecifierSet
	// StateName is the bare declared name; the path name is mangled.
	StateName       string
	ParentClassPath sympath.Path
	// BaseStateName is the bare name of the base state, empty if none.
	// Resolution to a path happens at query time through the marcher.
	BaseStateName string
}

func NewStateSymbol(path sympath.Path, loc Location) *StateSymbol {
	return &StateSymbol{located: located{base: base{path: path}, loc: loc}, Specifiers: NewSpecifierSet()}
}

func (*StateSymbol) Kind() Kind { return KindState }
func (*StateSymbol) primary()   {}

// StructSymbol is a struct type declaration.
type StructSymbol struct {
	located
	Specifiers SpecifierSet
}

func NewStructSymbol(path sympath.Path, loc Location) *StructSymbol {
	return &StructSymbol{located: located{base: base{path: path}, loc: loc}, Specifiers: NewSpecifierSet()}
}

func (*StructSymbol) Kind() Kind { return KindStruct }
func (*StructSymbol) primary()   {}

// EnumSymbol is an enum type declaration.
type EnumSymbol struct {
	located
}

func NewEnumSymbol(path sympath.Path, loc Location) *EnumSymbol {
	return &EnumSymbol{located: located{base: base{path: path}, loc: loc}}
}

func (*EnumSymbol) Kind() Kind { return KindEnum }
func (*EnumSymbol) primary()   {}

// ArrayTypeSymbol is a synthesized instantiation of the parametric array type.
type ArrayTypeSymbol struct {
	base
	ElementTypePath sympath.Path
}

func NewArrayTypeSymbol(elementType sympath.Path) *ArrayTypeSymbol {
	return &ArrayTypeSymbol{base: base{path: sympath.Array(elementType)}, ElementTypePath: elementType}
}

func (*ArrayTypeSymbol) Kind() Kind { return KindArray }

// PrimitiveTypeSymbol is a built-in value type.
type PrimitiveTypeSymbol struct {
	base
	// AliasPath is an alternative spelling of the primitive, e.g. Int32 for
	// int. Empty when the primitive has no alias.
	AliasPath sympath.Path
}

func NewPrimitiveTypeSymbol(name, alias string) *PrimitiveTypeSymbol {
	sym := &PrimitiveTypeSymbol{base: base{path: sympath.BasicType(name)}}
	if alias != "" {
		sym.AliasPath = sympath.BasicType(alias)
	}
	return sym
}

func (*PrimitiveTypeSymbol) Kind() Kind { return KindPrimitive }

// ---- callables ----

// GlobalFunctionSymbol is a free function declaration.
type GlobalFunctionSymbol struct {
	located
	Specifiers SpecifierSet
	// Flavour is the optional function flavour keyword (exec, quest, ...).
	Flavour        string
	ReturnTypePath sympath.Path
}

// DefaultReturnTypeName is assumed when a callable has no return annotation.
const DefaultReturnTypeName = "void"

func NewGlobalFunctionSymbol(path sympath.Path, loc Location) *GlobalFunctionSymbol {
	return &GlobalFunctionSymbol{located: located{base: base{path: path}, loc: loc}, Specifiers: NewSpecifierSet()}
}

func (*GlobalFunctionSymbol) Kind() Kind { return KindGlobalFunction }
func (*GlobalFunctionSymbol) primary()   {}

// MemberFunctionSymbol is a method declaration.
type MemberFunctionSymbol struct {
	located
	Specifiers     SpecifierSet
	Flavour        string
	ReturnTypePath sympath.Path
}

func NewMemberFunctionSymbol(path sympath.Path, loc Location) *MemberFunctionSymbol {
	return &MemberFunctionSymbol{located: located{base: base{path: path}, loc: loc}, Specifiers: NewSpecifierSet()}
}

func (*MemberFunctionSymbol) Kind() Kind { return KindMemberFunction }

// EventSymbol is an event callable declaration.
type EventSymbol struct {
	located
}

func NewEventSymbol(path sympath.Path, loc Location) *EventSymbol {
	return &EventSymbol{located: located{base: base{path: path}, loc: loc}}
}

func (*EventSymbol) Kind() Kind { return KindEvent }

// ConstructorSymbol is the implicit global constructor of a struct. It lives
// at the global callable path matching the struct's name; its parameters
// mirror the struct's member vars.
type ConstructorSymbol struct {
	located
	ParentTypePath sympath.Path
}

func NewConstructorSymbol(path sympath.Path, loc Location) *ConstructorSymbol {
	return &ConstructorSymbol{located: located{base: base{path: path}, loc: loc}}
}

func (*ConstructorSymbol) Kind() Kind { return KindConstructor }
func (*ConstructorSymbol) primary()   {}

// ArrayFunctionSymbol is a synthesized member function of an array type.
type ArrayFunctionSymbol struct {
	base
	ReturnTypePath sympath.Path
	// WasReturnTypeGeneric records whether the return type was the array's
	// T position before instantiation; used when rendering tooltips.
	WasReturnTypeGeneric bool
}

func (*ArrayFunctionSymbol) Kind() Kind { return KindArrayFunction }

// MemberFunctionInjectorSymbol is a global function declaration annotated
// with @addMethod(Class).
type MemberFunctionInjectorSymbol struct {
	located
	Specifiers     SpecifierSet
	Flavour        string
	ReturnTypePath sympath.Path
}

func NewMemberFunctionInjectorSymbol(path sympath.Path, loc Location) *MemberFunctionInjectorSymbol {
	return &MemberFunctionInjectorSymbol{located: located{base: base{path: path}, loc: loc}, Specifiers: NewSpecifierSet()}
}

func (*MemberFunctionInjectorSymbol) Kind() Kind { return KindMemberFunctionInjector }
func (*MemberFunctionInjectorSymbol) primary()   {}

// MemberFunctionReplacerSymbol is annotated with @replaceMethod(Class).
type MemberFunctionReplacerSymbol struct {
	located
	Specifiers     SpecifierSet
	Flavour        string
	ReturnTypePath sympath.Path
}

func NewMemberFunctionReplacerSymbol(path sympath.Path, loc Location) *MemberFunctionReplacerSymbol {
	return &MemberFunctionReplacerSymbol{located: located{base: base{path: path}, loc: loc}, Specifiers: NewSpecifierSet()}
}

func (*MemberFunctionReplacerSymbol) Kind() Kind { return KindMemberFunctionReplacer }
func (*MemberFunctionReplacerSymbol) primary()   {}

// GlobalFunctionReplacerSymbol is annotated with @replaceMethod without a
// class argument, replacing a global function.
type GlobalFunctionReplacerSymbol struct {
	located
	Specifiers     SpecifierSet
	Flavour        string
	ReturnTypePath sympath.Path
}

func NewGlobalFunctionReplacerSymbol(path sympath.Path, loc Location) *GlobalFunctionReplacerSymbol {
	return &GlobalFunctionReplacerSymbol{located: located{base: base{path: path}, loc: loc}, Specifiers: NewSpecifierSet()}
}

func (*GlobalFunctionReplacerSymbol) Kind() Kind { return KindGlobalFunctionReplacer }
func (*GlobalFunctionReplacerSymbol) primary()   {}

// MemberFunctionWrapperSymbol is annotated with @wrapMethod(Class).
type MemberFunctionWrapperSymbol struct {
	located
	Specifiers     SpecifierSet
	Flavour        string
	ReturnTypePath sympath.Path
}

func NewMemberFunctionWrapperSymbol(path sympath.Path, loc Location) *MemberFunctionWrapperSymbol {
	return &MemberFunctionWrapperSymbol{located: located{base: base{path: path}, loc: loc}, Specifiers: NewSpecifierSet()}
}

func (*MemberFunctionWrapperSymbol) Kind() Kind { return KindMemberFunctionWrapper }
func (*MemberFunctionWrapperSymbol) primary()   {}

// WrappedMethodName is the reserved callable through which a wrapper invokes
// the method it wraps.
const WrappedMethodName = "wrappedMethod"

// WrappedMethodSymbol is the synthesized callable available inside a
// @wrapMethod body to call the original method.
type WrappedMethodSymbol struct {
	located
	ReturnTypePath sympath.Path
}

func NewWrappedMethodSymbol(wrapperPath sympath.Path, loc Location) *WrappedMethodSymbol {
	return &WrappedMethodSymbol{located: located{base: base{path: sympath.MemberCallable(wrapperPath, WrappedMethodName)}, loc: loc}}
}

func (*WrappedMethodSymbol) Kind() Kind { return KindWrappedMethod }

// ---- data ----

// EnumVariantSymbol is one enum variant. Variants are global data, siblings
// of the enum in the namespace.
type EnumVariantSymbol struct {
	located
	ParentEnumPath sympath.Path
	Value          int32
}

func NewEnumVariantSymbol(path sympath.Path, loc Location) *EnumVariantSymbol {
	return &EnumVariantSymbol{located: located{base: base{path: path}, loc: loc}}
}

func (*EnumVariantSymbol) Kind() Kind { return KindEnumVariant }
func (*EnumVariantSymbol) primary()   {}

// FunctionParameterSymbol is one declared parameter of a callable.
type FunctionParameterSymbol struct {
	located
	Specifiers SpecifierSet
	TypePath   sympath.Path
	Ordinal    int
}

func NewFunctionParameterSymbol(path sympath.Path, loc Location) *FunctionParameterSymbol {
	return &FunctionParameterSymbol{located: located{base: base{path: path}, loc: loc}, Specifiers: NewSpecifierSet()}
}

func (*FunctionParameterSymbol) Kind() Kind { return KindFunctionParameter }

// ArrayFunctionParameterSymbol is a synthesized parameter of an array
// member function.
type ArrayFunctionParameterSymbol struct {
	base
	TypePath sympath.Path
	// WasTypeGeneric records whether this position was the array's T.
	WasTypeGeneric bool
	Ordinal        int
}

func (*ArrayFunctionParameterSymbol) Kind() Kind { return KindArrayFunctionParameter }

// GlobalVarSymbol is a synthesized global variable exposed by the engine,
// e.g. theGame. It has no source location.
type GlobalVarSymbol struct {
	base
	TypePath sympath.Path
}

func NewGlobalVarSymbol(name string, typePath sympath.Path) *GlobalVarSymbol {
	return &GlobalVarSymbol{base: base{path: sympath.GlobalData(name)}, TypePath: typePath}
}

func (*GlobalVarSymbol) Kind() Kind { return KindGlobalVar }

// MemberVarSymbol is a declared field of a class, state or struct.
type MemberVarSymbol struct {
	located
	Specifiers SpecifierSet
	TypePath   sympath.Path
	Ordinal    int
}

func NewMemberVarSymbol(path sympath.Path, loc Location) *MemberVarSymbol {
	return &MemberVarSymbol{located: located{base: base{path: path}, loc: loc}, Specifiers: NewSpecifierSet()}
}

func (*MemberVarSymbol) Kind() Kind { return KindMemberVar }

// AutobindSymbol is an autobind member of a class.
type AutobindSymbol struct {
	located
	Specifiers SpecifierSet
	TypePath   sympath.Path
}

func NewAutobindSymbol(path sympath.Path, loc Location) *AutobindSymbol {
	return &AutobindSymbol{located: located{base: base{path: path}, loc: loc}, Specifiers: NewSpecifierSet()}
}

func (*AutobindSymbol) Kind() Kind { return KindAutobind }

// LocalVarSymbol is a local variable of a callable body.
type LocalVarSymbol struct {
	located
	TypePath sympath.Path
	Ordinal  int
}

func NewLocalVarSymbol(path sympath.Path, loc Location) *LocalVarSymbol {
	return &LocalVarSymbol{located: located{base: base{path: path}, loc: loc}}
}

func (*LocalVarSymbol) Kind() Kind { return KindLocalVar }

// ThisVarSymbol is the reserved `this` of a class or state.
type ThisVarSymbol struct {
	base
	TypePath sympath.Path
}

func NewThisVarSymbol(ownerTypePath sympath.Path) *ThisVarSymbol {
	return &ThisVarSymbol{base: base{path: sympath.ThisVar(ownerTypePath)}, TypePath: ownerTypePath}
}

func (*ThisVarSymbol) Kind() Kind { return KindThisVar }

// SuperVarSymbol is the reserved `super` of a class with a base class.
type SuperVarSymbol struct {
	base
	TypePath sympath.Path
}

func NewSuperVarSymbol(ownerClassPath, basePath sympath.Path) *SuperVarSymbol {
	return &SuperVarSymbol{base: base{path: sympath.SuperVar(ownerClassPath)}, TypePath: basePath}
}

func (*SuperVarSymbol) Kind() Kind { return KindSuperVar }

// StateSuperVarSymbol is the reserved `super` of a state. The base state is
// stored by name; resolution happens at query time through the marcher.
type StateSuperVarSymbol struct {
	base
	BaseStateName string
}

func NewStateSuperVarSymbol(ownerStatePath sympath.Path, baseStateName string) *StateSuperVarSymbol {
	return &StateSuperVarSymbol{base: base{path: sympath.SuperVar(ownerStatePath)}, BaseStateName: baseStateName}
}

func (*StateSuperVarSymbol) Kind() Kind { return KindStateSuperVar }

// ParentVarSymbol is the reserved `parent` of a state, pointing at the
// declared parent class.
type ParentVarSymbol struct {
	base
	TypePath sympath.Path
}

func NewParentVarSymbol(ownerStatePath, parentClassPath sympath.Path) *ParentVarSymbol {
	return &ParentVarSymbol{base: base{path: sympath.ParentVar(ownerStatePath)}, TypePath: parentClassPath}
}

func (*ParentVarSymbol) Kind() Kind { return KindParentVar }

// VirtualParentVarSymbol is the reserved `virtual_parent` of a state.
type VirtualParentVarSymbol struct {
	base
	TypePath sympath.Path
}

func NewVirtualParentVarSymbol(ownerStatePath, parentClassPath sympath.Path) *VirtualParentVarSymbol {
	return &VirtualParentVarSymbol{base: base{path: sympath.VirtualParentVar(ownerStatePath)}, TypePath: parentClassPath}
}

func (*VirtualParentVarSymbol) Kind() Kind { return KindVirtualParentVar }

// MemberVarInjectorSymbol is a member var declaration annotated with
// @addField(Class) in the global scope.
type MemberVarInjectorSymbol struct {
	located
	Specifiers SpecifierSet
	TypePath   sympath.Path
}

func NewMemberVarInjectorSymbol(path sympath.Path, loc Location) *MemberVarInjectorSymbol {
	return &MemberVarInjectorSymbol{located: located{base: base{path: path}, loc: loc}, Specifiers: NewSpecifierSet()}
}

func (*MemberVarInjectorSymbol) Kind() Kind { return KindMemberVarInjector }

// IsArrayFamily reports whether the symbol belongs to a synthesized array
// instantiation. Conflicts on array-family paths are accepted silently.
func IsArrayFamily(sym Symbol) bool {
	switch sym.Kind() {
	case KindArray, KindArrayFunction, KindArrayFunctionParameter:
		return true
	}
	return false
}

// IsAnnotationChainLink reports whether the symbol participates in
// replace/wrap annotation chains.
func IsAnnotationChainLink(sym Symbol) bool {
	switch sym.Kind() {
	case KindMemberFunctionReplacer, KindGlobalFunctionReplacer, KindMemberFunctionWrapper:
		return true
	}
	return false
}
