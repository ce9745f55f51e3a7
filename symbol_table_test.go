package main

import (
	"errors"
	"testing"
)

func mustDefine(t *testing.T, s *SymbolTable, name, variableType string, symbolType SymbolType) Symbol {
	t.Helper()
	symbol, err := s.Define(name, variableType, symbolType)
	if err != nil {
		t.Fatalf("define %q: %v", name, err)
	}
	return symbol
}

func TestSymbolTable(t *testing.T) {
	t.Run("DenseIndicesPerKind", func(t *testing.T) {
		class := NewSymbolTable()
		definitions := []struct {
			name       string
			symbolType SymbolType
			index      int
		}{
			{"a", FieldSymbol, 0},
			{"b", StaticSymbol, 0},
			{"c", FieldSymbol, 1},
			{"d", FieldSymbol, 2},
			{"e", StaticSymbol, 1},
		}
		for _, d := range definitions {
			symbol := mustDefine(t, class, d.name, "int", d.symbolType)
			if symbol.Index() != d.index {
				t.Errorf("%s: expected index %d, got %d", d.name, d.index, symbol.Index())
			}
		}
		if n := class.Count(FieldSymbol); n != 3 {
			t.Errorf("field count: expected 3, got %d", n)
		}
		if n := class.Count(StaticSymbol); n != 2 {
			t.Errorf("static count: expected 2, got %d", n)
		}

		sub := class.NewScope()
		mustDefine(t, sub, "this", "Point", ArgumentSymbol)
		mustDefine(t, sub, "i", "int", LocalSymbol)
		if arg := mustDefine(t, sub, "dx", "int", ArgumentSymbol); arg.Index() != 1 {
			t.Errorf("dx: expected index 1, got %d", arg.Index())
		}
		if n := sub.Count(FieldSymbol); n != 0 {
			t.Errorf("subroutine scope counts class kinds: %d", n)
		}
	})

	t.Run("Redefinition", func(t *testing.T) {
		class := NewSymbolTable()
		mustDefine(t, class, "x", "int", FieldSymbol)
		if _, err := class.Define("x", "char", StaticSymbol); !errors.Is(err, ErrSymbolRedefined) {
			t.Errorf("expected ErrSymbolRedefined, got %v", err)
		}
		if n := class.Count(StaticSymbol); n != 0 {
			t.Errorf("failed define changed count to %d", n)
		}

		sub := class.NewScope()
		// Shadowing a class symbol is not a redefinition
		mustDefine(t, sub, "x", "boolean", LocalSymbol)
		if _, err := sub.Define("x", "int", ArgumentSymbol); !errors.Is(err, ErrSymbolRedefined) {
			t.Errorf("expected ErrSymbolRedefined, got %v", err)
		}
	})

	t.Run("KindRestrictedByLevel", func(t *testing.T) {
		class := NewSymbolTable()
		if _, err := class.Define("a", "int", LocalSymbol); !errors.Is(err, ErrSymbolKindScope) {
			t.Errorf("local in class scope: expected ErrSymbolKindScope, got %v", err)
		}
		if _, err := class.NewScope().Define("b", "int", FieldSymbol); !errors.Is(err, ErrSymbolKindScope) {
			t.Errorf("field in subroutine scope: expected ErrSymbolKindScope, got %v", err)
		}
	})

	t.Run("ScopeChaining", func(t *testing.T) {
		class := NewSymbolTable()
		mustDefine(t, class, "count", "int", StaticSymbol)
		mustDefine(t, class, "x", "int", FieldSymbol)

		first := class.NewScope()
		mustDefine(t, first, "x", "Array", LocalSymbol)
		mustDefine(t, first, "tmp", "int", LocalSymbol)

		if symbol, ok := first.Lookup("count"); !ok || symbol.Kind() != StaticSymbol {
			t.Errorf("class symbol not visible from subroutine: %v %v", symbol, ok)
		}
		if symbol, ok := first.Lookup("x"); !ok || symbol.Kind() != LocalSymbol || symbol.Type() != "Array" {
			t.Errorf("local x does not shadow field x: %v", symbol)
		}

		second := class.NewScope()
		if second.Contains("tmp") {
			t.Errorf("local of discarded scope still visible")
		}
		if symbol, ok := second.Lookup("x"); !ok || symbol.Kind() != FieldSymbol {
			t.Errorf("expected field x in fresh scope, got %v", symbol)
		}
		if class.Contains("tmp") {
			t.Errorf("subroutine symbol leaked into class scope")
		}
		if _, ok := class.Lookup("missing"); ok {
			t.Errorf("lookup of undefined name succeeded")
		}
	})
}

func TestSymbolTypeSegment(t *testing.T) {
	for symbolType, segment := range map[SymbolType]VMSegmentType{
		StaticSymbol:   StaticVMSegment,
		FieldSymbol:    ThisVMSegment,
		ArgumentSymbol: ArgumentVMSegment,
		LocalSymbol:    LocalVMSegment,
		InvalidSymbol:  InvalidVMSegmentType,
	} {
		if got := symbolType.Segment(); got != segment {
			t.Errorf("%q: expected segment %q, got %q", symbolType, segment, got)
		}
	}
}
