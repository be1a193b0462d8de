package scanner

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/teranos/witcherscript-ls/abspath"
	"github.com/teranos/witcherscript-ls/diagnostics"
	"github.com/teranos/witcherscript-ls/syntax"
)

// Specifier and flavour compatibility per declaration kind. The language's
// attribute sets are closed; anything outside them is a contextual error.
var (
	classSpecifiers          = tokenSet("import", "abstract", "statemachine")
	stateSpecifiers          = tokenSet("import", "abstract")
	structSpecifiers         = tokenSet("import")
	globalFunctionSpecifiers = tokenSet("import", "latent")
	memberFunctionSpecifiers = tokenSet("import", "final", "latent", "private", "protected", "public")
	memberVarSpecifiers      = tokenSet("import", "editable", "inlined", "saved", "private", "protected", "public")
	autobindSpecifiers       = tokenSet("optional", "private", "protected", "public")
	paramSpecifiers          = tokenSet("optional", "out")

	globalFunctionFlavours = tokenSet("exec", "quest", "storyscene")
	memberFunctionFlavours = tokenSet("entry", "timer", "cleanup")
)

func tokenSet(tokens ...string) map[string]bool {
	out := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		out[tok] = true
	}
	return out
}

// AnalyzeContext runs the contextual syntax analysis pass over one script:
// annotation validity and placement, specifier and flavour compatibility,
// and global-scope var declarations. It is independent of symbol tables and
// runs before the symbol scanner.
func AnalyzeContext(
	script *syntax.Script,
	doc *syntax.Document,
	localSourcePath string,
	scriptsRoot abspath.Path,
) []diagnostics.Located {
	scriptPath, _ := scriptsRoot.Join(localSourcePath)
	v := &contextualVisitor{doc: doc, scriptPath: scriptPath}

	for _, stmt := range script.Statements {
		switch n := stmt.(type) {
		case *syntax.ClassDecl:
			v.checkSpecifiers(n.Specifiers, classSpecifiers, "a class")
			v.visitTypeBody(n.Definition)
		case *syntax.StateDecl:
			v.checkSpecifiers(n.Specifiers, stateSpecifiers, "a state")
			v.visitTypeBody(n.Definition)
		case *syntax.StructDecl:
			v.checkSpecifiers(n.Specifiers, structSpecifiers, "a struct")
			v.visitTypeBody(n.Definition)
		case *syntax.EnumDecl:
			// enums take no specifiers in the grammar
		case *syntax.FunctionDecl:
			v.visitGlobalFunction(n)
		case *syntax.MemberVarDecl:
			v.visitGlobalVar(n)
		case *syntax.VarDecl:
			// the language forbids variables in the global scope
			v.push(n.NodeRange(), diagnostics.GlobalScopeVarDecl{})
		}
	}

	return v.diags
}

type contextualVisitor struct {
	doc        *syntax.Document
	scriptPath abspath.Path
	diags      []diagnostics.Located
}

func (v *contextualVisitor) push(rng protocol.Range, kind diagnostics.Kind) {
	v.diags = append(v.diags, diagnostics.Located{
		Path:       v.scriptPath,
		Diagnostic: diagnostics.Diagnostic{Range: rng, Kind: kind},
	})
}

func (v *contextualVisitor) checkSpecifiers(specs []syntax.Specifier, allowed map[string]bool, symName string) {
	for i := range specs {
		spec := specs[i].Value(v.doc)
		if !allowed[spec] {
			v.push(specs[i].Range, diagnostics.IncompatibleSpecifier{SpecName: spec, SymName: symName})
		}
	}
}

func (v *contextualVisitor) checkFlavour(flavour *syntax.Specifier, allowed map[string]bool, symName string) {
	if flavour == nil {
		return
	}
	name := flavour.Value(v.doc)
	if !allowed[name] {
		v.push(flavour.Range, diagnostics.IncompatibleFunctionFlavour{FlavourName: name, SymName: symName})
	}
}

func (v *contextualVisitor) visitGlobalFunction(n *syntax.FunctionDecl) {
	if n.Annotation != nil {
		v.visitAnnotation(n.Annotation, annotationTargetFunction)
		// an annotated function is judged by member-function rules
		v.checkSpecifiers(n.Specifiers, memberFunctionSpecifiers, "an annotated function")
		v.checkFlavour(n.Flavour, memberFunctionFlavours, "an annotated function")
		v.checkParams(n.Params)
		return
	}
	v.checkSpecifiers(n.Specifiers, globalFunctionSpecifiers, "a global function")
	v.checkFlavour(n.Flavour, globalFunctionFlavours, "a global function")
	v.checkParams(n.Params)
}

func (v *contextualVisitor) checkParams(params []*syntax.ParamGroup) {
	for _, group := range params {
		v.checkSpecifiers(group.Specifiers, paramSpecifiers, "a parameter")
	}
}

func (v *contextualVisitor) visitGlobalVar(n *syntax.MemberVarDecl) {
	if n.Annotation == nil {
		// a member var outside any type must be annotated with @addField
		v.push(n.NodeRange(), diagnostics.GlobalScopeVarDecl{})
		return
	}
	v.visitAnnotation(n.Annotation, annotationTargetVar)
	v.checkSpecifiers(n.Specifiers, memberVarSpecifiers, "an added field")
}

func (v *contextualVisitor) visitTypeBody(stmts []syntax.ClassStatement) {
	for _, stmt := range stmts {
		switch n := stmt.(type) {
		case *syntax.FunctionDecl:
			// annotations are only meaningful in the global scope
			if n.Annotation != nil {
				v.push(n.Annotation.NodeRange(), diagnostics.InvalidAnnotationPlacement{})
			}
			v.checkSpecifiers(n.Specifiers, memberFunctionSpecifiers, "a member function")
			v.checkFlavour(n.Flavour, memberFunctionFlavours, "a member function")
			v.checkParams(n.Params)
		case *syntax.EventDecl:
			// events take neither specifiers nor flavours
			v.checkParams(n.Params)
		case *syntax.MemberVarDecl:
			if n.Annotation != nil {
				v.push(n.Annotation.NodeRange(), diagnostics.InvalidAnnotationPlacement{})
			}
			v.checkSpecifiers(n.Specifiers, memberVarSpecifiers, "a member var")
		case *syntax.AutobindDecl:
			v.checkSpecifiers(n.Specifiers, autobindSpecifiers, "an autobind")
		}
	}
}

type annotationTarget int

const (
	annotationTargetFunction annotationTarget = iota
	annotationTargetVar
)

// visitAnnotation checks the annotation name, its argument requirements and
// its compatibility with the annotated declaration kind.
func (v *contextualVisitor) visitAnnotation(n *syntax.Annotation, target annotationTarget) {
	name := n.Name.Value(v.doc)

	switch name {
	case AnnotationAddMethod:
		if n.Arg == nil {
			v.push(n.NodeRange(), diagnostics.MissingAnnotationArgument{Missing: "class name"})
		}
		if target != annotationTargetFunction {
			v.push(n.NodeRange(), diagnostics.IncompatibleAnnotation{AnnotationName: name, ExpectedSym: "a function declaration"})
		}
	case AnnotationReplaceMethod:
		// the class argument is optional: without it a global is replaced
		if target != annotationTargetFunction {
			v.push(n.NodeRange(), diagnostics.IncompatibleAnnotation{AnnotationName: name, ExpectedSym: "a function declaration"})
		}
	case AnnotationWrapMethod:
		if n.Arg == nil {
			v.push(n.NodeRange(), diagnostics.MissingAnnotationArgument{Missing: "class name"})
		}
		if target != annotationTargetFunction {
			v.push(n.NodeRange(), diagnostics.IncompatibleAnnotation{AnnotationName: name, ExpectedSym: "a function declaration"})
		}
	case AnnotationAddField:
		if n.Arg == nil {
			v.push(n.NodeRange(), diagnostics.MissingAnnotationArgument{Missing: "class name"})
		}
		if target != annotationTargetVar {
			v.push(n.NodeRange(), diagnostics.IncompatibleAnnotation{AnnotationName: name, ExpectedSym: "a var declaration"})
		}
	default:
		v.push(n.Name.NodeRange(), diagnostics.InvalidAnnotation{})
	}
}
