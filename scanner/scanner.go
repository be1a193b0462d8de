// Package scanner populates a content's symbol table from parsed scripts
// and computes the symbols expressions refer to.
package scanner

import (
	"strconv"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/teranos/witcherscript-ls/abspath"
	"github.com/teranos/witcherscript-ls/diagnostics"
	"github.com/teranos/witcherscript-ls/symbols"
	"github.com/teranos/witcherscript-ls/symtab"
	"github.com/teranos/witcherscript-ls/sympath"
	"github.com/teranos/witcherscript-ls/syntax"
)

// Annotation names recognized in the global scope.
const (
	AnnotationAddMethod     = "addMethod"
	AnnotationReplaceMethod = "replaceMethod"
	AnnotationWrapMethod    = "wrapMethod"
	AnnotationAddField      = "addField"
)

// ScanSymbols walks one parsed script and mutates exactly one symbol table:
// the table of the content owning the script. Diagnostics for redeclarations
// and malformed type arguments are appended to the returned buffer.
//
// Referenced type names are recorded as paths without validating that the
// types exist; dependency tables may not be merged yet, so resolution is
// deferred to query time through the marcher.
func ScanSymbols(
	script *syntax.Script,
	doc *syntax.Document,
	localSourcePath string,
	table *symtab.Table,
) []diagnostics.Located {
	v := &scannerVisitor{
		table:     table,
		doc:       doc,
		localPath: localSourcePath,
	}
	v.scriptPath, _ = table.ScriptsRoot().Join(localSourcePath)

	for _, stmt := range script.Statements {
		switch n := stmt.(type) {
		case *syntax.ClassDecl:
			v.visitClassDecl(n)
		case *syntax.StateDecl:
			v.visitStateDecl(n)
		case *syntax.StructDecl:
			v.visitStructDecl(n)
		case *syntax.EnumDecl:
			v.visitEnumDecl(n)
		case *syntax.FunctionDecl:
			v.visitGlobalFunctionDecl(n)
		case *syntax.MemberVarDecl:
			v.visitGlobalMemberVarDecl(n)
		case *syntax.VarDecl:
			// a stray global var is a contextual-analysis diagnostic
		}
	}

	return v.diags
}

type scannerVisitor struct {
	table      *symtab.Table
	doc        *syntax.Document
	localPath  string
	scriptPath abspath.Path
	diags      []diagnostics.Located

	currentPath     sympath.Path
	constructorPath sympath.Path
	paramOrdinal    int
	varOrdinal      int
	enumVariantNext int32
}

func (v *scannerVisitor) push(rng protocol.Range, kind diagnostics.Kind) {
	v.diags = append(v.diags, diagnostics.Located{
		Path:       v.scriptPath,
		Diagnostic: diagnostics.Diagnostic{Range: rng, Kind: kind},
	})
}

func (v *scannerVisitor) location(n syntax.Node, label syntax.Node) symbols.Location {
	return symbols.Location{
		AbsSourcePath:   v.scriptPath,
		LocalSourcePath: v.localPath,
		Range:           n.NodeRange(),
		LabelRange:      label.NodeRange(),
	}
}

// checkContains reports whether the path is free. An occupied path pushes a
// SymbolNameTaken diagnostic with the precursor's location, except for
// unknown-sentinel paths, which syntax analysis already reported.
func (v *scannerVisitor) checkContains(path sympath.Path, rng protocol.Range) bool {
	err := v.table.Contains(path)
	if err == nil {
		return true
	}

	if !path.HasUnknown() {
		kind := diagnostics.SymbolNameTaken{}
		if last, ok := err.OccupiedPath.Last(); ok {
			kind.Name = last.Name
		}
		if err.OccupiedLocation != nil {
			precursorPath := err.OccupiedLocation.AbsSourcePath
			precursorRange := err.OccupiedLocation.LabelRange
			kind.PrecursorFilePath = &precursorPath
			kind.PrecursorRange = &precursorRange
		}
		v.push(rng, kind)
	}

	return false
}

// collectSpecifiers deduplicates specifier tokens into the set, reporting
// repetitions and, when checkAccess is set, surplus access modifiers.
func (v *scannerVisitor) collectSpecifiers(set symbols.SpecifierSet, specs []syntax.Specifier, checkAccess bool) {
	foundAccessModifier := false
	for i := range specs {
		spec := specs[i].Value(v.doc)

		if checkAccess && syntax.IsAccessModifier(spec) {
			if foundAccessModifier {
				v.push(specs[i].Range, diagnostics.MultipleAccessModifiers{})
			}
			foundAccessModifier = true
		}

		if !set.Insert(spec) {
			v.push(specs[i].Range, diagnostics.RepeatedSpecifier{})
		}
	}
}

// checkTypeFromIdentifier resolves a bare type name. A bare `array` is
// missing its type argument.
func (v *scannerVisitor) checkTypeFromIdentifier(n *syntax.Identifier) sympath.Path {
	typeName := n.Value(v.doc)
	if typeName == sympath.ArrayTypeName {
		v.push(n.Range, diagnostics.MissingTypeArg{})
		return sympath.Unknown(sympath.CategoryType)
	}
	return sympath.BasicType(typeName)
}

// checkTypeFromTypeAnnot resolves a type annotation, injecting array
// instantiations on first sight.
func (v *scannerVisitor) checkTypeFromTypeAnnot(n *syntax.TypeAnnotation) sympath.Path {
	if n.TypeArg == nil {
		return v.checkTypeFromIdentifier(&n.TypeName)
	}

	typeName := n.TypeName.Value(v.doc)
	if typeName != sympath.ArrayTypeName {
		// only the array type takes a type argument
		v.push(n.TypeName.Range, diagnostics.UnnecessaryTypeArg{})
		return v.checkTypeFromIdentifier(&n.TypeName)
	}

	argPath := v.checkTypeFromTypeAnnot(n.TypeArg)
	if argPath.IsEmpty() {
		return sympath.Unknown(sympath.CategoryType)
	}

	arrayPath := sympath.Array(argPath)
	if v.table.Contains(arrayPath) == nil {
		v.injectArrayType(argPath)
	}
	return arrayPath
}

// injectArrayType synthesizes the array type and its whole member family.
func (v *scannerVisitor) injectArrayType(elementType sympath.Path) {
	arr := symbols.NewArrayTypeSymbol(elementType)
	funcs, params := symbols.MakeArrayFamily(arr)

	v.table.InsertArrayType(arr, v.localPath)
	for _, f := range funcs {
		v.table.Insert(f)
	}
	for _, p := range params {
		v.table.Insert(p)
	}
}

// ---- type declarations ----

func (v *scannerVisitor) visitClassDecl(n *syntax.ClassDecl) {
	name := n.Name.Value(v.doc)
	path := sympath.BasicType(name)
	if !v.checkContains(path, n.Name.Range) {
		// skip the whole definition to avoid cascading noise
		return
	}

	sym := symbols.NewClassSymbol(path, v.location(n, &n.Name))
	v.collectSpecifiers(sym.Specifiers, n.Specifiers, false)

	if n.Base != nil {
		sym.BasePath = v.checkTypeFromIdentifier(n.Base)
	}

	v.table.Insert(symbols.NewThisVarSymbol(path))
	if !sym.BasePath.IsEmpty() {
		v.table.Insert(symbols.NewSuperVarSymbol(path, sym.BasePath))
	}

	v.currentPath = path
	v.table.InsertPrimary(sym)

	v.visitClassBody(n.Definition)

	v.currentPath = sympath.Empty()
	v.varOrdinal = 0
}

func (v *scannerVisitor) visitStateDecl(n *syntax.StateDecl) {
	stateName := n.Name.Value(v.doc)
	parentName := n.Parent.Value(v.doc)
	path := sympath.State(stateName, parentName)
	if !v.checkContains(path, n.Name.Range) {
		return
	}

	sym := symbols.NewStateSymbol(path, v.location(n, &n.Name))
	sym.StateName = stateName
	sym.ParentClassPath = sympath.BasicType(parentName)
	v.collectSpecifiers(sym.Specifiers, n.Specifiers, false)

	if n.Base != nil {
		sym.BaseStateName = n.Base.Value(v.doc)
	}

	v.table.Insert(symbols.NewThisVarSymbol(path))
	v.table.Insert(symbols.NewStateSuperVarSymbol(path, sym.BaseStateName))
	v.table.Insert(symbols.NewParentVarSymbol(path, sym.ParentClassPath))
	v.table.Insert(symbols.NewVirtualParentVarSymbol(path, sym.ParentClassPath))

	v.currentPath = path
	v.table.InsertPrimary(sym)

	v.visitClassBody(n.Definition)

	v.currentPath = sympath.Empty()
	v.varOrdinal = 0
}

func (v *scannerVisitor) visitStructDecl(n *syntax.StructDecl) {
	name := n.Name.Value(v.doc)
	path := sympath.BasicType(name)
	if !v.checkContains(path, n.Name.Range) {
		return
	}

	sym := symbols.NewStructSymbol(path, v.location(n, &n.Name))
	v.collectSpecifiers(sym.Specifiers, n.Specifiers, false)

	v.currentPath = path
	v.table.InsertPrimary(sym)

	// every struct gets an implicit global constructor; its parameters
	// mirror the member vars as they are visited
	constrPath := sympath.GlobalCallable(name)
	constr := symbols.NewConstructorSymbol(constrPath, v.location(n, &n.Name))
	constr.ParentTypePath = path
	v.constructorPath = constrPath
	v.table.InsertPrimary(constr)

	v.visitClassBody(n.Definition)

	v.constructorPath = sympath.Empty()
	v.currentPath = sympath.Empty()
	v.varOrdinal = 0
}

func (v *scannerVisitor) visitEnumDecl(n *syntax.EnumDecl) {
	name := n.Name.Value(v.doc)
	path := sympath.BasicType(name)
	if !v.checkContains(path, n.Name.Range) {
		return
	}

	sym := symbols.NewEnumSymbol(path, v.location(n, &n.Name))
	v.currentPath = path
	v.table.InsertPrimary(sym)

	v.enumVariantNext = 0
	for _, variant := range n.Variants {
		v.visitEnumVariantDecl(variant)
	}

	v.currentPath = sympath.Empty()
	v.enumVariantNext = 0
}

func (v *scannerVisitor) visitEnumVariantDecl(n *syntax.EnumVariantDecl) {
	name := n.Name.Value(v.doc)
	// enum variants are global data, siblings of the enum itself
	path := sympath.GlobalData(name)

	value := v.enumVariantValue(n.Value)
	v.enumVariantNext = value + 1

	if !v.checkContains(path, n.Name.Range) {
		return
	}

	sym := symbols.NewEnumVariantSymbol(path, v.location(n, &n.Name))
	sym.Value = value
	if root, ok := v.currentPath.Root(); ok {
		sym.ParentEnumPath = root
	}

	v.table.InsertPrimary(sym)
}

// enumVariantValue reads the explicit value literal, falling back to the
// running counter. A hex literal is reinterpreted as a signed integer via
// two's complement.
func (v *scannerVisitor) enumVariantValue(lit *syntax.Literal) int32 {
	if lit == nil {
		return v.enumVariantNext
	}
	text := lit.Value(v.doc)

	switch lit.Kind {
	case syntax.LiteralInt:
		parsed, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return v.enumVariantNext
		}
		return int32(parsed)
	case syntax.LiteralHex:
		parsed, err := strconv.ParseUint(text, 0, 32)
		if err != nil {
			return v.enumVariantNext
		}
		return int32(uint32(parsed))
	}

	return v.enumVariantNext
}

// ---- callables ----

func (v *scannerVisitor) visitGlobalFunctionDecl(n *syntax.FunctionDecl) {
	if n.Annotation != nil {
		v.visitAnnotatedFunctionDecl(n)
		return
	}

	name := n.Name.Value(v.doc)
	path := sympath.GlobalCallable(name)
	if !v.checkContains(path, n.Name.Range) {
		return
	}

	sym := symbols.NewGlobalFunctionSymbol(path, v.location(n, &n.Name))
	v.collectSpecifiers(sym.Specifiers, n.Specifiers, false)
	if n.Flavour != nil {
		sym.Flavour = n.Flavour.Value(v.doc)
	}
	sym.ReturnTypePath = v.returnTypePath(n.ReturnType)

	v.currentPath = path
	v.table.InsertPrimary(sym)

	v.visitCallableInner(n.Params, n.Definition)

	v.currentPath = sympath.Empty()
	v.paramOrdinal = 0
	v.varOrdinal = 0
}

// visitAnnotatedFunctionDecl emits the injector, replacer or wrapper symbol
// corresponding to the function's annotation. Annotation validity itself
// (unknown names, wrong targets, missing arguments) is the contextual
// analysis pass's concern; here an unusable annotation just means no symbol.
func (v *scannerVisitor) visitAnnotatedFunctionDecl(n *syntax.FunctionDecl) {
	annotationName := n.Annotation.Name.Value(v.doc)
	name := n.Name.Value(v.doc)

	var classPath sympath.Path
	if n.Annotation.Arg != nil {
		classPath = sympath.BasicType(n.Annotation.Arg.Value(v.doc))
	}

	var path sympath.Path
	switch annotationName {
	case AnnotationAddMethod, AnnotationWrapMethod:
		if classPath.IsEmpty() {
			return
		}
		path = sympath.MemberCallable(classPath, name)
	case AnnotationReplaceMethod:
		if classPath.IsEmpty() {
			// without a class argument the annotation replaces a global
			path = sympath.GlobalCallable(name)
		} else {
			path = sympath.MemberCallable(classPath, name)
		}
	default:
		return
	}

	// replacers and wrappers intentionally share the path of the method
	// they modify in another content; only same-table duplicates conflict
	if !v.checkContains(path, n.Name.Range) {
		return
	}

	loc := v.location(n, &n.Name)
	var flavour string
	if n.Flavour != nil {
		flavour = n.Flavour.Value(v.doc)
	}
	returnType := v.returnTypePath(n.ReturnType)

	var (
		sym        symbols.PrimarySymbol
		specifiers symbols.SpecifierSet
	)
	switch {
	case annotationName == AnnotationAddMethod:
		s := symbols.NewMemberFunctionInjectorSymbol(path, loc)
		s.Flavour, s.ReturnTypePath = flavour, returnType
		sym, specifiers = s, s.Specifiers
	case annotationName == AnnotationReplaceMethod && classPath.IsEmpty():
		s := symbols.NewGlobalFunctionReplacerSymbol(path, loc)
		s.Flavour, s.ReturnTypePath = flavour, returnType
		sym, specifiers = s, s.Specifiers
	case annotationName == AnnotationReplaceMethod:
		s := symbols.NewMemberFunctionReplacerSymbol(path, loc)
		s.Flavour, s.ReturnTypePath = flavour, returnType
		sym, specifiers = s, s.Specifiers
	default:
		s := symbols.NewMemberFunctionWrapperSymbol(path, loc)
		s.Flavour, s.ReturnTypePath = flavour, returnType
		sym, specifiers = s, s.Specifiers
	}

	v.collectSpecifiers(specifiers, n.Specifiers, true)

	v.currentPath = path
	v.table.InsertPrimary(sym)

	if annotationName == AnnotationWrapMethod {
		wrapped := symbols.NewWrappedMethodSymbol(path, v.location(n, &n.Name))
		v.table.Insert(wrapped)
	}

	v.visitCallableInner(n.Params, n.Definition)

	v.currentPath = sympath.Empty()
	v.paramOrdinal = 0
	v.varOrdinal = 0
}

func (v *scannerVisitor) visitGlobalMemberVarDecl(n *syntax.MemberVarDecl) {
	if n.Annotation == nil || n.Annotation.Name.Value(v.doc) != AnnotationAddField || n.Annotation.Arg == nil {
		// invalid placement is a contextual-analysis diagnostic
		return
	}

	classPath := sympath.BasicType(n.Annotation.Arg.Value(v.doc))
	typePath := v.checkTypeFromTypeAnnot(&n.Type)

	for i := range n.Names {
		nameNode := &n.Names[i]
		varName := nameNode.Value(v.doc)
		path := sympath.MemberData(classPath, varName)
		if !v.checkContains(path, nameNode.Range) {
			continue
		}

		sym := symbols.NewMemberVarInjectorSymbol(path, v.location(n, nameNode))
		v.collectSpecifiers(sym.Specifiers, n.Specifiers, true)
		sym.TypePath = typePath

		v.table.InsertPrimary(sym)
	}
}

func (v *scannerVisitor) visitMemberFunctionDecl(n *syntax.FunctionDecl) {
	name := n.Name.Value(v.doc)
	path := sympath.MemberCallable(v.currentPath, name)
	if !v.checkContains(path, n.Name.Range) {
		return
	}

	sym := symbols.NewMemberFunctionSymbol(path, v.location(n, &n.Name))
	v.collectSpecifiers(sym.Specifiers, n.Specifiers, true)
	if n.Flavour != nil {
		sym.Flavour = n.Flavour.Value(v.doc)
	}
	sym.ReturnTypePath = v.returnTypePath(n.ReturnType)

	outerPath := v.currentPath
	v.currentPath = path
	v.table.Insert(sym)

	v.visitCallableInner(n.Params, n.Definition)

	v.currentPath = outerPath
	v.paramOrdinal = 0
}

func (v *scannerVisitor) visitEventDecl(n *syntax.EventDecl) {
	name := n.Name.Value(v.doc)
	path := sympath.MemberCallable(v.currentPath, name)
	if !v.checkContains(path, n.Name.Range) {
		return
	}

	sym := symbols.NewEventSymbol(path, v.location(n, &n.Name))

	outerPath := v.currentPath
	v.currentPath = path
	v.table.Insert(sym)

	v.visitCallableInner(n.Params, n.Definition)

	v.currentPath = outerPath
	v.paramOrdinal = 0
}

func (v *scannerVisitor) returnTypePath(n *syntax.TypeAnnotation) sympath.Path {
	if n == nil {
		return sympath.BasicType(symbols.DefaultReturnTypeName)
	}
	return v.checkTypeFromTypeAnnot(n)
}

func (v *scannerVisitor) visitCallableInner(params []*syntax.ParamGroup, body *syntax.FunctionBlock) {
	v.paramOrdinal = 0
	for _, group := range params {
		v.visitParamGroup(group)
	}
	if body != nil {
		v.varOrdinal = 0
		v.visitFunctionStatements(body.Statements)
	}
}

func (v *scannerVisitor) visitParamGroup(n *syntax.ParamGroup) {
	specifiers := symbols.NewSpecifierSet()
	v.collectSpecifiers(specifiers, n.Specifiers, false)

	typePath := v.checkTypeFromTypeAnnot(&n.Type)

	for i := range n.Names {
		nameNode := &n.Names[i]
		paramName := nameNode.Value(v.doc)
		path := sympath.MemberData(v.currentPath, paramName)
		if v.checkContains(path, nameNode.Range) {
			sym := symbols.NewFunctionParameterSymbol(path, v.location(n, nameNode))
			sym.Specifiers = specifiers.Clone()
			sym.TypePath = typePath
			sym.Ordinal = v.paramOrdinal

			v.table.Insert(sym)
		}
		v.paramOrdinal++
	}
}

// ---- type bodies ----

func (v *scannerVisitor) visitClassBody(stmts []syntax.ClassStatement) {
	for _, stmt := range stmts {
		switch n := stmt.(type) {
		case *syntax.FunctionDecl:
			v.visitMemberFunctionDecl(n)
		case *syntax.EventDecl:
			v.visitEventDecl(n)
		case *syntax.MemberVarDecl:
			v.visitMemberVarDecl(n)
		case *syntax.AutobindDecl:
			v.visitAutobindDecl(n)
		}
	}
}

func (v *scannerVisitor) visitMemberVarDecl(n *syntax.MemberVarDecl) {
	specifiers := symbols.NewSpecifierSet()
	v.collectSpecifiers(specifiers, n.Specifiers, true)

	typePath := v.checkTypeFromTypeAnnot(&n.Type)

	for i := range n.Names {
		nameNode := &n.Names[i]
		varName := nameNode.Value(v.doc)
		path := sympath.MemberData(v.currentPath, varName)

		if v.checkContains(path, nameNode.Range) {
			sym := symbols.NewMemberVarSymbol(path, v.location(n, nameNode))
			sym.Specifiers = specifiers.Clone()
			sym.TypePath = typePath
			sym.Ordinal = v.varOrdinal

			v.table.Insert(sym)

			// mirror struct fields into the implicit constructor
			if !v.constructorPath.IsEmpty() {
				paramPath := sympath.MemberData(v.constructorPath, varName)
				param := symbols.NewFunctionParameterSymbol(paramPath, v.location(n, nameNode))
				param.TypePath = typePath
				param.Ordinal = v.varOrdinal

				v.table.Insert(param)
			}
		}

		v.varOrdinal++
	}
}

func (v *scannerVisitor) visitAutobindDecl(n *syntax.AutobindDecl) {
	name := n.Name.Value(v.doc)
	path := sympath.MemberData(v.currentPath, name)
	if !v.checkContains(path, n.Name.Range) {
		return
	}

	sym := symbols.NewAutobindSymbol(path, v.location(n, &n.Name))
	v.collectSpecifiers(sym.Specifiers, n.Specifiers, true)
	sym.TypePath = v.checkTypeFromTypeAnnot(&n.Type)

	v.table.Insert(sym)
}

// ---- function bodies ----

// visitFunctionStatements recurses into statement bodies looking for local
// var declarations; expressions are not traversed.
func (v *scannerVisitor) visitFunctionStatements(stmts []syntax.FunctionStatement) {
	for _, stmt := range stmts {
		switch n := stmt.(type) {
		case *syntax.VarDecl:
			v.visitLocalVarDecl(n)
		case *syntax.CompoundStatement:
			v.visitFunctionStatements(n.Statements)
		case *syntax.IfStatement:
			v.visitFunctionStatement(n.Body)
			v.visitFunctionStatement(n.ElseBody)
		case *syntax.WhileStatement:
			v.visitFunctionStatement(n.Body)
		case *syntax.DoWhileStatement:
			v.visitFunctionStatement(n.Body)
		case *syntax.ForStatement:
			v.visitFunctionStatement(n.Body)
		case *syntax.SwitchStatement:
			v.visitFunctionStatements(n.Body)
		}
	}
}

func (v *scannerVisitor) visitFunctionStatement(stmt syntax.FunctionStatement) {
	if stmt == nil {
		return
	}
	v.visitFunctionStatements([]syntax.FunctionStatement{stmt})
}

func (v *scannerVisitor) visitLocalVarDecl(n *syntax.VarDecl) {
	typePath := v.checkTypeFromTypeAnnot(&n.Type)

	for i := range n.Names {
		nameNode := &n.Names[i]
		varName := nameNode.Value(v.doc)
		path := sympath.MemberData(v.currentPath, varName)
		if v.checkContains(path, nameNode.Range) {
			sym := symbols.NewLocalVarSymbol(path, v.location(n, nameNode))
			sym.TypePath = typePath
			sym.Ordinal = v.varOrdinal

			v.table.Insert(sym)
		}
		v.varOrdinal++
	}
}
