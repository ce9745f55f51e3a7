package main

import (
	"fmt"
)

var (
	classSymbols      = []SymbolType{StaticSymbol, FieldSymbol}
	subroutineSymbols = []SymbolType{ArgumentSymbol, LocalSymbol}
)

// SymbolTable holds the symbols of one lexical level. The class level has no
// parent; subroutine levels are created with NewScope and fall back to it.
type SymbolTable struct {
	parent  *SymbolTable
	symbols map[string]Symbol
	counts  map[SymbolType]int
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		symbols: make(map[string]Symbol),
		counts:  make(map[SymbolType]int),
	}
}

// NewScope returns an empty subroutine scope chained to s.
func (s *SymbolTable) NewScope() *SymbolTable {
	scope := NewSymbolTable()
	scope.parent = s
	return scope
}

func (s *SymbolTable) allows(symbolType SymbolType) bool {
	allowed := classSymbols
	if s.parent != nil {
		allowed = subroutineSymbols
	}
	for _, t := range allowed {
		if t == symbolType {
			return true
		}
	}
	return false
}

func (s *SymbolTable) Define(name, variableType string, symbolType SymbolType) (Symbol, error) {
	if !s.allows(symbolType) {
		return Symbol{}, fmt.Errorf("%w: %s %q", ErrSymbolKindScope, symbolType, name)
	}
	if _, ok := s.symbols[name]; ok {
		return Symbol{}, fmt.Errorf("%w: %q", ErrSymbolRedefined, name)
	}

	symbol := Symbol{
		name:         name,
		symbolType:   symbolType,
		variableType: variableType,
		index:        s.counts[symbolType],
	}
	s.symbols[name] = symbol
	s.counts[symbolType]++
	return symbol, nil
}

func (s *SymbolTable) Lookup(name string) (Symbol, bool) {
	for scope := s; scope != nil; scope = scope.parent {
		if symbol, ok := scope.symbols[name]; ok {
			return symbol, true
		}
	}
	return Symbol{}, false
}

func (s *SymbolTable) Contains(name string) bool {
	_, ok := s.Lookup(name)
	return ok
}

// Count returns the number of symbols of the given kind defined in this scope only.
func (s *SymbolTable) Count(symbolType SymbolType) int {
	return s.counts[symbolType]
}
