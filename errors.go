package main

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	LexicalError  ErrorKind = "lexical error"
	SyntaxError   ErrorKind = "syntax error"
	NameError     ErrorKind = "name error"
	SemanticError ErrorKind = "semantic error"
)

var (
	ErrSymbolRedefined = errors.New("symbol already defined in scope")
	ErrSymbolKindScope = errors.New("symbol kind not allowed in scope")
)

// CompileError aborts the compilation of a unit. Token is the offending token,
// or the zero Token when the failure is not tied to one.
type CompileError struct {
	Kind  ErrorKind
	Token Token
	Msg   string
	Err   error
}

func newCompileError(kind ErrorKind, token Token, format string, args ...interface{}) *CompileError {
	return &CompileError{Kind: kind, Token: token, Msg: fmt.Sprintf(format, args...)}
}

func (e *CompileError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	if e.Token.line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Token.line, msg)
	}
	if e.Token.IsEOF() {
		return msg + " (at end of input)"
	}
	return fmt.Sprintf("%s (at %q)", msg, e.Token.terminal)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a CompileError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var compileErr *CompileError
	return errors.As(err, &compileErr) && compileErr.Kind == kind
}
