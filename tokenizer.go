package main

import (
	"bufio"
	"bytes"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	symbols     = "{}()[].,;+-*/&|<>=~"
	whitespaces = " \t\r\n\f\v"
)

var (
	keywords = map[string]bool{
		"class": true, "constructor": true, "function": true, "method": true,
		"field": true, "static": true, "var": true, "int": true, "char": true,
		"boolean": true, "void": true, "true": true, "false": true, "null": true,
		"this": true, "let": true, "do": true, "if": true, "else": true,
		"while": true, "return": true,
	}
	integerConstantRegex = regexp.MustCompile(`^\d+$`)
	identifierRegex      = regexp.MustCompile(`^[a-zA-Z_]\w*$`)

	newline = []byte{'\n'}
)

// FilteredReader strips line and block comments from the underlying source.
// Newlines inside block comments are kept so token line numbers stay correct.
type FilteredReader struct {
	reader   *bufio.Reader
	pending  []byte
	inString bool
}

func NewFilteredReader(r io.Reader) *FilteredReader {
	return &FilteredReader{reader: bufio.NewReader(r)}
}

func (r *FilteredReader) Read(b []byte) (int, error) {
	n := 0
	for n < len(b) {
		if len(r.pending) > 0 {
			b[n] = r.pending[0]
			r.pending = r.pending[1:]
			n++
			continue
		}

		char, err := r.reader.ReadByte()
		if err != nil {
			return n, err
		}

		if r.inString {
			if char == '"' || char == '\n' {
				r.inString = false
			}
			b[n] = char
			n++
			continue
		}

		switch char {
		case '"':
			r.inString = true
		case '/':
			next, peekErr := r.reader.Peek(1)
			if peekErr != nil {
				break
			}
			if next[0] == '/' {
				r.skipLine()
				continue
			}
			if next[0] == '*' {
				_, _ = r.reader.Discard(1)
				if err := r.skipBlock(); err != nil {
					return n, err
				}
				continue
			}
		}

		b[n] = char
		n++
	}

	return n, nil
}

// skipLine discards up to, but not including, the next newline.
func (r *FilteredReader) skipLine() {
	for {
		char, err := r.reader.ReadByte()
		if err != nil {
			return
		}
		if char == '\n' {
			_ = r.reader.UnreadByte()
			return
		}
	}
}

// skipBlock discards a block comment whose opening "/*" was already consumed.
func (r *FilteredReader) skipBlock() error {
	// The comment still separates the tokens around it
	r.pending = append(r.pending, ' ')
	var prev byte
	for {
		char, err := r.reader.ReadByte()
		if err != nil {
			return newCompileError(LexicalError, Token{}, "unclosed comment")
		}
		if char == '\n' {
			r.pending = append(r.pending, '\n')
		}
		if prev == '*' && char == '/' {
			return nil
		}
		prev = char
	}
}

// Tokenizer lazily splits filtered source into classified tokens. It is
// forward-only: once Scan returns false the sequence is exhausted.
type Tokenizer struct {
	scanner   *bufio.Scanner
	nextToken Token
	line      int
	tokenLine int
	err       error
}

func NewTokenizer(r io.Reader) *Tokenizer {
	t := &Tokenizer{line: 1}
	t.scanner = bufio.NewScanner(NewFilteredReader(r))
	t.scanner.Split(t.splitToken)
	return t
}

func isSymbol(char byte) bool {
	return strings.IndexByte(symbols, char) >= 0
}

func isWhitespace(char byte) bool {
	return strings.IndexByte(whitespaces, char) >= 0
}

func isWordChar(char byte) bool {
	return char == '_' || ('0' <= char && char <= '9') || ('a' <= char && char <= 'z') || ('A' <= char && char <= 'Z')
}

// lexemeLength returns the length of the lexeme at the start of data, or -1 if
// more input is needed to decide.
func lexemeLength(data []byte, atEOF bool) (int, error) {
	char := data[0]
	switch {
	case isSymbol(char):
		return 1, nil
	case char == '"':
		end := bytes.IndexAny(data[1:], "\"\n")
		if end < 0 {
			if atEOF {
				return 0, newCompileError(LexicalError, NewToken(InvalidToken, string(data), 0), "unterminated string constant")
			}
			return -1, nil
		}
		if data[1+end] == '\n' {
			return 0, newCompileError(LexicalError, NewToken(InvalidToken, string(data[:1+end]), 0), "unterminated string constant")
		}
		return end + 2, nil
	case isWordChar(char):
		i := 1
		for i < len(data) && isWordChar(data[i]) {
			i++
		}
		if i == len(data) && !atEOF {
			return -1, nil
		}
		return i, nil
	default:
		if !utf8.FullRune(data) && !atEOF {
			return -1, nil
		}
		_, size := utf8.DecodeRune(data)
		return size, nil
	}
}

func (t *Tokenizer) splitToken(data []byte, atEOF bool) (advance int, token []byte, err error) {
	start := 0
	for start < len(data) && isWhitespace(data[start]) {
		start++
	}
	t.line += bytes.Count(data[:start], newline)

	if start == len(data) {
		return start, nil, nil
	}

	length, err := lexemeLength(data[start:], atEOF)
	if err != nil {
		if compileErr, ok := err.(*CompileError); ok {
			compileErr.Token.line = t.line
		}
		return 0, nil, err
	}
	if length < 0 {
		return start, nil, nil
	}

	t.tokenLine = t.line
	return start + length, data[start : start+length], nil
}

func parseToken(tokenString string, line int) (token Token, err error) {
	token.terminal = tokenString
	token.line = line

	switch {
	case len(tokenString) == 1 && isSymbol(tokenString[0]):
		token.tokenType = SymbolTokenType
	case keywords[tokenString]:
		token.tokenType = Keyword
	case len(tokenString) >= 2 && tokenString[0] == '"' && tokenString[len(tokenString)-1] == '"':
		token.tokenType = StringConstant
		token.terminal = tokenString[1 : len(tokenString)-1]
	case integerConstantRegex.MatchString(tokenString):
		token.tokenType = IntegerConstant
	case identifierRegex.MatchString(tokenString):
		token.tokenType = Identifier
	default:
		err = newCompileError(LexicalError, token, "unrecognized token")
	}

	return
}

func (t *Tokenizer) Err() error {
	return t.err
}

func (t *Tokenizer) Scan() bool {
	if t.err != nil {
		return false
	}
	if !t.scanner.Scan() {
		t.err = t.scanner.Err()
		t.nextToken = Token{line: t.line}
		return false
	}

	token, err := parseToken(t.scanner.Text(), t.tokenLine)
	if err != nil {
		t.err = err
		return false
	}
	t.nextToken = token
	return true
}

func (t *Tokenizer) Token() Token {
	return t.nextToken
}
