package main

import (
	"reflect"
	"strings"
	"testing"
)

func scanAll(src string) ([]Token, error) {
	tokenizer := NewTokenizer(strings.NewReader(src))
	var tokens []Token
	for tokenizer.Scan() {
		tokens = append(tokens, tokenizer.Token())
	}
	return tokens, tokenizer.Err()
}

func TestTokenizer(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
	}{
		{
			name:     "Empty",
			input:    "",
			expected: nil,
		},
		{
			name:  "Symbols",
			input: "{ } ( ) [ ] . , ; + - * / & | < > = ~",
			expected: []Token{
				{SymbolTokenType, "{", 1}, {SymbolTokenType, "}", 1}, {SymbolTokenType, "(", 1},
				{SymbolTokenType, ")", 1}, {SymbolTokenType, "[", 1}, {SymbolTokenType, "]", 1},
				{SymbolTokenType, ".", 1}, {SymbolTokenType, ",", 1}, {SymbolTokenType, ";", 1},
				{SymbolTokenType, "+", 1}, {SymbolTokenType, "-", 1}, {SymbolTokenType, "*", 1},
				{SymbolTokenType, "/", 1}, {SymbolTokenType, "&", 1}, {SymbolTokenType, "|", 1},
				{SymbolTokenType, "<", 1}, {SymbolTokenType, ">", 1}, {SymbolTokenType, "=", 1},
				{SymbolTokenType, "~", 1},
			},
		},
		{
			name:  "Keywords And Identifiers",
			input: "class classy _x do1 while",
			expected: []Token{
				{Keyword, "class", 1},
				{Identifier, "classy", 1},
				{Identifier, "_x", 1},
				{Identifier, "do1", 1},
				{Keyword, "while", 1},
			},
		},
		{
			name:  "No Whitespace Between Symbols",
			input: "let a[i]=x.y(-1);",
			expected: []Token{
				{Keyword, "let", 1}, {Identifier, "a", 1}, {SymbolTokenType, "[", 1},
				{Identifier, "i", 1}, {SymbolTokenType, "]", 1}, {SymbolTokenType, "=", 1},
				{Identifier, "x", 1}, {SymbolTokenType, ".", 1}, {Identifier, "y", 1},
				{SymbolTokenType, "(", 1}, {SymbolTokenType, "-", 1}, {IntegerConstant, "1", 1},
				{SymbolTokenType, ")", 1}, {SymbolTokenType, ";", 1},
			},
		},
		{
			name:  "String Constants",
			input: `"hello world" "" "a // b" "c /* d */"`,
			expected: []Token{
				{StringConstant, "hello world", 1},
				{StringConstant, "", 1},
				{StringConstant, "a // b", 1},
				{StringConstant, "c /* d */", 1},
			},
		},
		{
			name:  "Comments",
			input: "// header\nlet /* inline */ x = 10; // trailing\n/** doc\n * more\n */\nreturn;",
			expected: []Token{
				{Keyword, "let", 2},
				{Identifier, "x", 2},
				{SymbolTokenType, "=", 2},
				{IntegerConstant, "10", 2},
				{SymbolTokenType, ";", 2},
				{Keyword, "return", 6},
				{SymbolTokenType, ";", 6},
			},
		},
		{
			name:  "Block Comment Separates Tokens",
			input: "a/*x*/b",
			expected: []Token{
				{Identifier, "a", 1},
				{Identifier, "b", 1},
			},
		},
		{
			name:  "Division Is Not A Comment",
			input: "x/2",
			expected: []Token{
				{Identifier, "x", 1},
				{SymbolTokenType, "/", 1},
				{IntegerConstant, "2", 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := scanAll(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(tokens, tt.expected) {
				t.Errorf("tokens mismatch.\nExpected: %v\nGot:      %v", tt.expected, tokens)
			}
		})
	}
}

func TestTokenizerErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{"Unrecognized Character", "let x = 1 # 2;", 1},
		{"Identifier Starting With Digit", "var int 1x;", 1},
		{"Unterminated String", "let s = \"abc\nx;", 1},
		{"Unterminated String At EOF", "\n\"abc", 2},
		{"Unclosed Comment", "let x /* never closed", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := scanAll(tt.input)
			if !IsKind(err, LexicalError) {
				t.Fatalf("expected lexical error, got %v", err)
			}
			if line := err.(*CompileError).Token.line; line != tt.line {
				t.Errorf("expected error on line %d, got %d", tt.line, line)
			}
		})
	}
}

func TestTokenizerStopsAfterError(t *testing.T) {
	tokenizer := NewTokenizer(strings.NewReader("a $ b"))
	if !tokenizer.Scan() {
		t.Fatalf("expected first token, got error %v", tokenizer.Err())
	}
	if tokenizer.Scan() {
		t.Fatalf("expected scan to fail on %q", tokenizer.Token().terminal)
	}
	if tokenizer.Scan() {
		t.Errorf("scan succeeded after error")
	}
	if tokenizer.Err() == nil {
		t.Errorf("error was lost")
	}
}

func TestTokenAsInt(t *testing.T) {
	for _, tt := range []struct {
		terminal string
		want     MachineWord
		wantErr  bool
	}{
		{"0", 0, false},
		{"32767", 32767, false},
		{"32768", 0, true},
		{"99999999999999999999", 0, true},
	} {
		got, err := NewToken(IntegerConstant, tt.terminal, 1).asInt()
		if (err != nil) != tt.wantErr {
			t.Errorf("asInt(%q) error = %v, wantErr %v", tt.terminal, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("asInt(%q) = %d, want %d", tt.terminal, got, tt.want)
		}
	}
}
