package syntax

// Script is the root node of one parsed script file.
type Script struct {
	NodeBase
	Statements []RootStatement
}

// RootStatement is any statement that may appear in the global scope.
type RootStatement interface {
	Node
	rootStatement()
}

// ClassStatement is any statement that may appear inside a class, state or
// struct definition.
type ClassStatement interface {
	Node
	classStatement()
}

// FunctionStatement is any statement that may appear inside a callable body.
type FunctionStatement interface {
	Node
	functionStatement()
}

// ClassDecl declares a class: `class Name extends Base { ... }`.
type ClassDecl struct {
	NodeBase
	Specifiers []Specifier
	Name       Identifier
	Base       *Identifier
	Definition []ClassStatement
}

func (*ClassDecl) rootStatement() {}

// StateDecl declares a state: `state Name in Parent extends Base { ... }`.
type StateDecl struct {
	NodeBase
	Specifiers []Specifier
	Name       Identifier
	Parent     Identifier
	Base       *Identifier
	Definition []ClassStatement
}

func (*StateDecl) rootStatement() {}

// StructDecl declares a struct: `struct Name { ... }`.
type StructDecl struct {
	NodeBase
	Specifiers []Specifier
	Name       Identifier
	Definition []ClassStatement
}

func (*StructDecl) rootStatement() {}

// EnumDecl declares an enum: `enum Name { ... }`.
type EnumDecl struct {
	NodeBase
	Name     Identifier
	Variants []*EnumVariantDecl
}

func (*EnumDecl) rootStatement() {}

// EnumVariantDecl declares one enum variant with an optional explicit value.
// The value literal is either an int or a hex literal.
type EnumVariantDecl struct {
	NodeBase
	Name  Identifier
	Value *Literal
}

// FunctionDecl declares a function. In the global scope it may carry an
// annotation; inside a type definition it is a member function.
type FunctionDecl struct {
	NodeBase
	Annotation *Annotation
	Specifiers []Specifier
	Flavour    *Specifier
	Name       Identifier
	Params     []*ParamGroup
	ReturnType *TypeAnnotation
	Definition *FunctionBlock
}

func (*FunctionDecl) rootStatement()  {}
func (*FunctionDecl) classStatement() {}

// EventDecl declares an event callable inside a class or state.
type EventDecl struct {
	NodeBase
	Name       Identifier
	Params     []*ParamGroup
	Definition *FunctionBlock
}

func (*EventDecl) classStatement() {}

// ParamGroup declares one or more parameters sharing specifiers and a type:
// `out optional a, b : int`.
type ParamGroup struct {
	NodeBase
	Specifiers []Specifier
	Names      []Identifier
	Type       TypeAnnotation
}

// MemberVarDecl declares one or more member vars sharing a type. In the
// global scope it must carry an @addField annotation.
type MemberVarDecl struct {
	NodeBase
	Annotation *Annotation
	Specifiers []Specifier
	Names      []Identifier
	Type       TypeAnnotation
}

func (*MemberVarDecl) rootStatement()  {}
func (*MemberVarDecl) classStatement() {}

// AutobindDecl declares an autobind member:
// `autobind name : Type = single;`.
type AutobindDecl struct {
	NodeBase
	Specifiers []Specifier
	Name       Identifier
	Type       TypeAnnotation
}

func (*AutobindDecl) classStatement() {}

// VarDecl declares one or more local vars. It is also the node the parser
// yields for a stray `var` in the global scope, which is a diagnostic.
type VarDecl struct {
	NodeBase
	Names     []Identifier
	Type      TypeAnnotation
	InitValue Expression
}

func (*VarDecl) rootStatement()     {}
func (*VarDecl) functionStatement() {}

// FunctionBlock is a braced list of function statements.
type FunctionBlock struct {
	NodeBase
	Statements []FunctionStatement
}

// ---- statements ----

// ExprStatement wraps an expression used as a statement.
type ExprStatement struct {
	NodeBase
	Expr Expression
}

func (*ExprStatement) functionStatement() {}

// ReturnStatement returns an optional value from a callable.
type ReturnStatement struct {
	NodeBase
	Value Expression
}

func (*ReturnStatement) functionStatement() {}

// DeleteStatement frees an object.
type DeleteStatement struct {
	NodeBase
	Value Expression
}

func (*DeleteStatement) functionStatement() {}

// CompoundStatement is a nested braced block.
type CompoundStatement struct {
	NodeBase
	Statements []FunctionStatement
}

func (*CompoundStatement) functionStatement() {}

// IfStatement with optional else body.
type IfStatement struct {
	NodeBase
	Cond     Expression
	Body     FunctionStatement
	ElseBody FunctionStatement
}

func (*IfStatement) functionStatement() {}

// WhileStatement loop.
type WhileStatement struct {
	NodeBase
	Cond Expression
	Body FunctionStatement
}

func (*WhileStatement) functionStatement() {}

// DoWhileStatement loop.
type DoWhileStatement struct {
	NodeBase
	Cond Expression
	Body FunctionStatement
}

func (*DoWhileStatement) functionStatement() {}

// ForStatement loop.
type ForStatement struct {
	NodeBase
	Init Expression
	Cond Expression
	Iter Expression
	Body FunctionStatement
}

func (*ForStatement) functionStatement() {}

// SwitchStatement with its braced case body.
type SwitchStatement struct {
	NodeBase
	Cond Expression
	Body []FunctionStatement
}

func (*SwitchStatement) functionStatement() {}

// BreakStatement.
type BreakStatement struct{ NodeBase }

func (*BreakStatement) functionStatement() {}

// ContinueStatement.
type ContinueStatement struct{ NodeBase }

func (*ContinueStatement) functionStatement() {}
