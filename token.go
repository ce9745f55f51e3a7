package main

import (
	"fmt"
	"strconv"
)

type MachineWord int16

// MaxIntegerConstant is the largest literal representable in a positive machine word.
const MaxIntegerConstant = 32767

type TokenType string

const (
	InvalidToken    TokenType = ""
	Keyword         TokenType = "keyword"
	SymbolTokenType TokenType = "symbol"
	IntegerConstant TokenType = "integerConstant"
	StringConstant  TokenType = "stringConstant"
	Identifier      TokenType = "identifier"
)

type Token struct {
	tokenType TokenType
	terminal  string
	line      int
}

func NewToken(tokenType TokenType, terminal string, line int) Token {
	return Token{tokenType: tokenType, terminal: terminal, line: line}
}

func (t Token) Type() TokenType {
	return t.tokenType
}

func (t Token) Terminal() string {
	return t.terminal
}

func (t Token) Line() int {
	return t.line
}

// IsEOF reports whether t marks the end of the token sequence.
func (t Token) IsEOF() bool {
	return t.tokenType == InvalidToken
}

func (t Token) Is(tokenType TokenType, terminal string) bool {
	return t.tokenType == tokenType && t.terminal == terminal
}

func (t Token) String() string {
	if t.IsEOF() {
		return "end of input"
	}
	return fmt.Sprintf("%s %q", t.tokenType, t.terminal)
}

func (t Token) asInt() (MachineWord, error) {
	word, err := strconv.Atoi(t.terminal)
	// < 0 as - is an operator
	if err != nil || word > MaxIntegerConstant || word < 0 {
		return 0, fmt.Errorf("cannot parse %q as 16 bit int", t.terminal)
	}
	return MachineWord(word), nil
}
