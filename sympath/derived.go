package sympath

// Derived path forms carrying semantic meaning. These are the only places
// where the path layout of particular declaration kinds is decided.

// ArrayTypeName is the parametric array type keyword of the language.
const ArrayTypeName = "array"

// Reserved data names injected next to type declarations.
const (
	ThisVarName          = "this"
	SuperVarName         = "super"
	ParentVarName        = "parent"
	VirtualParentVarName = "virtual_parent"
)

// BasicType returns the path of a named type in the global type namespace.
func BasicType(name string) Path {
	return New(name, CategoryType)
}

// GlobalCallable returns the path of a global function or constructor.
func GlobalCallable(name string) Path {
	return New(name, CategoryCallable)
}

// GlobalData returns the path of a global datum, e.g. an enum variant.
func GlobalData(name string) Path {
	return New(name, CategoryData)
}

// Array returns the path of an array instantiation. The component name
// encodes the element type path, so distinct element types yield distinct
// array paths, e.g. "array<int:T>:T".
func Array(elementType Path) Path {
	return New(ArrayTypeName+"<"+elementType.String()+">", CategoryType)
}

// State returns the path of a state type. The name deterministically
// combines the owning class and the state name, matching the engine's
// mangling of state classes.
func State(stateName, parentClassName string) Path {
	return New(parentClassName+"State"+stateName, CategoryType)
}

// MemberCallable returns the path of a member function or event.
func MemberCallable(parent Path, name string) Path {
	return parent.Push(name, CategoryCallable)
}

// MemberData returns the path of a member var, parameter or local var.
func MemberData(parent Path, name string) Path {
	return parent.Push(name, CategoryData)
}

// ThisVar returns the reserved `this` data path of a type.
func ThisVar(typePath Path) Path {
	return typePath.Push(ThisVarName, CategoryData)
}

// SuperVar returns the reserved `super` data path of a type.
func SuperVar(typePath Path) Path {
	return typePath.Push(SuperVarName, CategoryData)
}

// ParentVar returns the reserved `parent` data path of a state.
func ParentVar(statePath Path) Path {
	return statePath.Push(ParentVarName, CategoryData)
}

// VirtualParentVar returns the reserved `virtual_parent` data path of a state.
func VirtualParentVar(statePath Path) Path {
	return statePath.Push(VirtualParentVarName, CategoryData)
}
