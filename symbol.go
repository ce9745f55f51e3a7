package main

type SymbolType string

const (
	InvalidSymbol  SymbolType = ""
	StaticSymbol   SymbolType = "static"
	FieldSymbol    SymbolType = "field"
	ArgumentSymbol SymbolType = "argument"
	LocalSymbol    SymbolType = "local"
)

// Segment maps the storage kind to the VM segment it is addressed through.
// Fields live in the object pointed to by this.
func (s SymbolType) Segment() VMSegmentType {
	switch s {
	case StaticSymbol:
		return StaticVMSegment
	case FieldSymbol:
		return ThisVMSegment
	case ArgumentSymbol:
		return ArgumentVMSegment
	case LocalSymbol:
		return LocalVMSegment
	}
	return InvalidVMSegmentType
}

type Symbol struct {
	name         string
	symbolType   SymbolType
	variableType string
	index        int
}

func (s Symbol) Name() string {
	return s.name
}

func (s Symbol) Kind() SymbolType {
	return s.symbolType
}

func (s Symbol) Type() string {
	return s.variableType
}

func (s Symbol) Index() int {
	return s.index
}
