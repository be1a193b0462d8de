package workspace

import (
	"fmt"
	"sort"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/teranos/witcherscript-ls/abspath"
	"github.com/teranos/witcherscript-ls/symbols"
	"github.com/teranos/witcherscript-ls/symtab"
	"github.com/teranos/witcherscript-ls/sympath"
)

// Hover renders the symbol at a position as a code snippet for tooltips.
func (w *Workspace) Hover(scriptPath abspath.Path, pos protocol.Position) (string, bool) {
	path, ok := w.ResolveSymbolAtPosition(scriptPath, pos)
	if !ok {
		return "", false
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	state := w.stateContainingScript(scriptPath)
	if state == nil {
		return "", false
	}
	marcher := w.marcherFor(state.content.Path())
	sym, ok := marcher.Get(path)
	if !ok {
		return "", false
	}

	return renderSymbol(sym, marcher), true
}

// renderSymbol produces the declaration-like rendering of a symbol. Member
// symbols are prefixed with a partial rendering of the containing type.
func renderSymbol(sym symbols.Symbol, marcher *symtab.Marcher) string {
	var b strings.Builder

	if prefix := containingTypePrefix(sym, marcher); prefix != "" {
		b.WriteString(prefix)
		b.WriteString("\n")
	}

	switch s := sym.(type) {
	case *symbols.ClassSymbol:
		writeSpecifiers(&b, s.Specifiers)
		b.WriteString("class ")
		b.WriteString(s.Name())
		if !s.BasePath.IsEmpty() {
			b.WriteString(" extends ")
			b.WriteString(typeName(s.BasePath))
		}
	case *symbols.StateSymbol:
		writeSpecifiers(&b, s.Specifiers)
		b.WriteString("state ")
		b.WriteString(s.StateName)
		b.WriteString(" in ")
		b.WriteString(typeName(s.ParentClassPath))
		if s.BaseStateName != "" {
			b.WriteString(" extends ")
			b.WriteString(s.BaseStateName)
		}
	case *symbols.StructSymbol:
		writeSpecifiers(&b, s.Specifiers)
		b.WriteString("struct ")
		b.WriteString(s.Name())
	case *symbols.EnumSymbol:
		b.WriteString("enum ")
		b.WriteString(s.Name())
	case *symbols.ArrayTypeSymbol:
		b.WriteString("array<")
		b.WriteString(typeName(s.ElementTypePath))
		b.WriteString(">")
	case *symbols.PrimitiveTypeSymbol:
		b.WriteString(s.Name())
	case *symbols.EnumVariantSymbol:
		fmt.Fprintf(&b, "%s = %d", s.Name(), s.Value)
	case *symbols.GlobalFunctionSymbol:
		writeSpecifiers(&b, s.Specifiers)
		writeFlavour(&b, s.Flavour)
		writeCallable(&b, sym, s.ReturnTypePath, marcher)
	case *symbols.MemberFunctionSymbol:
		writeSpecifiers(&b, s.Specifiers)
		writeFlavour(&b, s.Flavour)
		writeCallable(&b, sym, s.ReturnTypePath, marcher)
	case *symbols.MemberFunctionInjectorSymbol:
		writeSpecifiers(&b, s.Specifiers)
		writeCallable(&b, sym, s.ReturnTypePath, marcher)
	case *symbols.MemberFunctionReplacerSymbol:
		writeSpecifiers(&b, s.Specifiers)
		writeCallable(&b, sym, s.ReturnTypePath, marcher)
	case *symbols.GlobalFunctionReplacerSymbol:
		writeSpecifiers(&b, s.Specifiers)
		writeCallable(&b, sym, s.ReturnTypePath, marcher)
	case *symbols.MemberFunctionWrapperSymbol:
		writeSpecifiers(&b, s.Specifiers)
		writeCallable(&b, sym, s.ReturnTypePath, marcher)
	case *symbols.WrappedMethodSymbol:
		writeCallable(&b, sym, s.ReturnTypePath, marcher)
	case *symbols.EventSymbol:
		b.WriteString("event ")
		b.WriteString(s.Name())
		writeParams(&b, sym, marcher)
	case *symbols.ConstructorSymbol:
		b.WriteString("struct constructor ")
		b.WriteString(s.Name())
		writeParams(&b, sym, marcher)
	case *symbols.ArrayFunctionSymbol:
		b.WriteString("function ")
		b.WriteString(s.Name())
		writeParams(&b, sym, marcher)
		b.WriteString(" : ")
		b.WriteString(typeName(s.ReturnTypePath))
	case *symbols.FunctionParameterSymbol:
		writeSpecifiers(&b, s.Specifiers)
		fmt.Fprintf(&b, "param %s : %s", s.Name(), typeName(s.TypePath))
	case *symbols.ArrayFunctionParameterSymbol:
		fmt.Fprintf(&b, "param %s : %s", s.Name(), typeName(s.TypePath))
	case *symbols.GlobalVarSymbol:
		fmt.Fprintf(&b, "var %s : %s", s.Name(), typeName(s.TypePath))
	case *symbols.MemberVarSymbol:
		writeSpecifiers(&b, s.Specifiers)
		fmt.Fprintf(&b, "var %s : %s", s.Name(), typeName(s.TypePath))
	case *symbols.MemberVarInjectorSymbol:
		writeSpecifiers(&b, s.Specifiers)
		fmt.Fprintf(&b, "var %s : %s", s.Name(), typeName(s.TypePath))
	case *symbols.AutobindSymbol:
		writeSpecifiers(&b, s.Specifiers)
		fmt.Fprintf(&b, "autobind %s : %s", s.Name(), typeName(s.TypePath))
	case *symbols.LocalVarSymbol:
		fmt.Fprintf(&b, "var %s : %s", s.Name(), typeName(s.TypePath))
	case *symbols.ThisVarSymbol:
		fmt.Fprintf(&b, "this : %s", typeName(s.TypePath))
	case *symbols.SuperVarSymbol:
		fmt.Fprintf(&b, "super : %s", typeName(s.TypePath))
	case *symbols.StateSuperVarSymbol:
		b.WriteString("super")
	case *symbols.ParentVarSymbol:
		fmt.Fprintf(&b, "parent : %s", typeName(s.TypePath))
	case *symbols.VirtualParentVarSymbol:
		fmt.Fprintf(&b, "virtual_parent : %s", typeName(s.TypePath))
	default:
		b.WriteString(sym.Path().Display())
	}

	return b.String()
}

// containingTypePrefix renders the owner of a member symbol, e.g.
// "class CActor" above a member function's signature.
func containingTypePrefix(sym symbols.Symbol, marcher *symtab.Marcher) string {
	parent, ok := sym.Path().Parent()
	if !ok {
		return ""
	}
	root, ok := parent.Root()
	if !ok {
		return ""
	}
	ownerSym, ok := marcher.Get(root)
	if !ok {
		return ""
	}

	switch owner := ownerSym.(type) {
	case *symbols.ClassSymbol:
		return "class " + owner.Name()
	case *symbols.StateSymbol:
		return "state " + owner.StateName + " in " + typeName(owner.ParentClassPath)
	case *symbols.StructSymbol:
		return "struct " + owner.Name()
	case *symbols.ArrayTypeSymbol:
		return "array<" + typeName(owner.ElementTypePath) + ">"
	}
	return ""
}

func writeSpecifiers(b *strings.Builder, specs symbols.SpecifierSet) {
	for _, spec := range specs.Values() {
		b.WriteString(spec)
		b.WriteString(" ")
	}
}

func writeFlavour(b *strings.Builder, flavour string) {
	if flavour != "" {
		b.WriteString(flavour)
		b.WriteString(" ")
	}
}

func writeCallable(b *strings.Builder, sym symbols.Symbol, returnType sympath.Path, marcher *symtab.Marcher) {
	b.WriteString("function ")
	b.WriteString(sym.Name())
	writeParams(b, sym, marcher)
	if !returnType.IsEmpty() && typeName(returnType) != symbols.DefaultReturnTypeName {
		b.WriteString(" : ")
		b.WriteString(typeName(returnType))
	}
}

// writeParams renders the parameter list of a callable by collecting its
// parameter children in ordinal order.
func writeParams(b *strings.Builder, sym symbols.Symbol, marcher *symtab.Marcher) {
	table, _, ok := marcher.GetWithTable(sym.Path())
	if !ok {
		b.WriteString("()")
		return
	}

	type param struct {
		ordinal int
		text    string
	}
	var params []param
	for _, child := range table.GetChildren(sym.Path()) {
		switch p := child.(type) {
		case *symbols.FunctionParameterSymbol:
			params = append(params, param{p.Ordinal, p.Name() + " : " + typeName(p.TypePath)})
		case *symbols.ArrayFunctionParameterSymbol:
			params = append(params, param{p.Ordinal, p.Name() + " : " + typeName(p.TypePath)})
		}
	}
	sort.Slice(params, func(i, j int) bool { return params[i].ordinal < params[j].ordinal })

	b.WriteString("(")
	for i, p := range params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.text)
	}
	b.WriteString(")")
}

// typeName renders a type path for tooltips: the bare name for basic types,
// the sugared form for arrays.
func typeName(path sympath.Path) string {
	first, ok := path.First()
	if !ok {
		return ""
	}
	if strings.HasPrefix(first.Name, sympath.ArrayTypeName+"<") {
		// the element path is embedded in serialized form; drop its tags
		return strings.ReplaceAll(first.Name, ":T", "")
	}
	return first.Name
}
