package symbols

// MakePrimitives returns the built-in value types of the language together
// with their engine-native alias spellings.
func MakePrimitives() []*PrimitiveTypeSymbol {
	return []*PrimitiveTypeSymbol{
		NewPrimitiveTypeSymbol("void", ""),
		NewPrimitiveTypeSymbol("byte", "Uint8"),
		NewPrimitiveTypeSymbol("int", "Int32"),
		NewPrimitiveTypeSymbol("float", "Float"),
		NewPrimitiveTypeSymbol("bool", "Bool"),
		NewPrimitiveTypeSymbol("string", "String"),
		NewPrimitiveTypeSymbol("name", "CName"),
		NewPrimitiveTypeSymbol("NULL", ""),
	}
}

// DefaultStateBaseTypeName is the class all state types implicitly derive
// from. State member lookup falls back to it when the state hierarchy is
// exhausted.
const DefaultStateBaseTypeName = "CScriptableState"
