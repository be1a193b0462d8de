package symbols

import "github.com/teranos/witcherscript-ls/sympath"

// IndexOperatorName is the synthetic callable formed by array-index
// expressions.
const IndexOperatorName = "operator[]"

// MakeArrayFamily synthesizes the full set of member functions and
// parameters of one array instantiation. The T positions of the generic
// blueprint are instantiated to the element type path; WasTypeGeneric and
// WasReturnTypeGeneric record which positions were T.
func MakeArrayFamily(arr *ArrayTypeSymbol) ([]*ArrayFunctionSymbol, []*ArrayFunctionParameterSymbol) {
	voidPath := sympath.BasicType("void")
	intPath := sympath.BasicType("int")
	boolPath := sympath.BasicType("bool")
	elemPath := arr.ElementTypePath

	var funcs []*ArrayFunctionSymbol
	var params []*ArrayFunctionParameterSymbol

	addFunc := func(name string, returnType sympath.Path, returnGeneric bool) *ArrayFunctionSymbol {
		f := &ArrayFunctionSymbol{
			base:                 base{path: sympath.MemberCallable(arr.Path(), name)},
			ReturnTypePath:       returnType,
			WasReturnTypeGeneric: returnGeneric,
		}
		funcs = append(funcs, f)
		return f
	}
	addParam := func(f *ArrayFunctionSymbol, name string, typePath sympath.Path, generic bool, ordinal int) {
		params = append(params, &ArrayFunctionParameterSymbol{
			base:           base{path: sympath.MemberData(f.Path(), name)},
			TypePath:       typePath,
			WasTypeGeneric: generic,
			Ordinal:        ordinal,
		})
	}

	f := addFunc(IndexOperatorName, elemPath, true)
	addParam(f, "index", intPath, false, 0)

	addFunc("Clear", voidPath, false)
	addFunc("Size", intPath, false)

	f = addFunc("PushBack", elemPath, true)
	addParam(f, "element", elemPath, true, 0)

	f = addFunc("Resize", voidPath, false)
	addParam(f, "newSize", intPath, false, 0)

	f = addFunc("Remove", boolPath, false)
	addParam(f, "element", elemPath, true, 0)

	f = addFunc("Contains", boolPath, false)
	addParam(f, "element", elemPath, true, 0)

	f = addFunc("FindFirst", intPath, false)
	addParam(f, "element", elemPath, true, 0)

	f = addFunc("FindLast", intPath, false)
	addParam(f, "element", elemPath, true, 0)

	f = addFunc("Grow", intPath, false)
	addParam(f, "numElements", intPath, false, 0)

	f = addFunc("Erase", voidPath, false)
	addParam(f, "index", intPath, false, 0)

	f = addFunc("EraseFast", voidPath, false)
	addParam(f, "index", intPath, false, 0)

	f = addFunc("Insert", voidPath, false)
	addParam(f, "index", intPath, false, 0)
	addParam(f, "element", elemPath, true, 1)

	addFunc("Last", elemPath, true)

	return funcs, params
}
