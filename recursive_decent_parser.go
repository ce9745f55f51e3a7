package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// binaryOperators maps each binary operator to its precedence; higher binds tighter.
var binaryOperators = map[string]int{
	"|": 1,
	"&": 2,
	"<": 3, ">": 3, "=": 3,
	"+": 4, "-": 4,
	"*": 5, "/": 5,
}

var statementKeywords = []string{"let", "if", "while", "do", "return"}

type CompilationFunction func() error

func chain(funcs ...CompilationFunction) CompilationFunction {
	return func() error {
		for _, f := range funcs {
			if err := f(); err != nil {
				return err
			}
		}
		return nil
	}
}

type subroutine struct {
	kind       string
	returnType string
	name       string
	returned   bool
}

// JackCompiler compiles a single class, emitting VM commands while it parses.
type JackCompiler struct {
	tokens      *TokenStream
	writer      Emitter
	log         logrus.FieldLogger
	className   string
	classScope  *SymbolTable
	scope       *SymbolTable
	subroutine  subroutine
	branchCount int
}

func NewJackCompiler(t TokenScanner, w Emitter, logger logrus.FieldLogger) *JackCompiler {
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	classScope := NewSymbolTable()
	return &JackCompiler{
		tokens:     NewTokenStream(t),
		writer:     w,
		log:        logger,
		classScope: classScope,
		scope:      classScope,
	}
}

// ClassName returns the name of the compiled class once its header was parsed.
func (c *JackCompiler) ClassName() string {
	return c.className
}

func (c *JackCompiler) Compile() error {
	if err := c.compileClass(); err != nil {
		return err
	}
	token, err := c.tokens.Peek()
	if err != nil {
		return err
	}
	if !token.IsEOF() {
		return c.syntaxError(token, "unexpected token after end of class %q", c.className)
	}
	return nil
}

func (c *JackCompiler) trace(production string) {
	c.log.WithField("class", c.className).Debugf("Compiling %s", production)
}

func (c *JackCompiler) syntaxError(token Token, format string, args ...interface{}) error {
	return newCompileError(SyntaxError, token, format, args...)
}

func (c *JackCompiler) nextBranch() int {
	n := c.branchCount
	c.branchCount++
	return n
}

func isTerminal(token Token, terminal string) bool {
	return (token.tokenType == Keyword || token.tokenType == SymbolTokenType) && token.terminal == terminal
}

func (c *JackCompiler) peekIs(terminals ...string) (bool, error) {
	token, err := c.tokens.Peek()
	if err != nil {
		return false, err
	}
	for _, terminal := range terminals {
		if isTerminal(token, terminal) {
			return true, nil
		}
	}
	return false, nil
}

// maybe runs f once if the next token is one of terminals.
func (c *JackCompiler) maybe(f CompilationFunction, terminals ...string) CompilationFunction {
	return func() error {
		ok, err := c.peekIs(terminals...)
		if err != nil || !ok {
			return err
		}
		return f()
	}
}

// greedy runs f for as long as the next token is one of terminals.
func (c *JackCompiler) greedy(f CompilationFunction, terminals ...string) CompilationFunction {
	return func() error {
		for {
			ok, err := c.peekIs(terminals...)
			if err != nil || !ok {
				return err
			}
			if err := f(); err != nil {
				return err
			}
		}
	}
}

func (c *JackCompiler) expectTerminal(terminal string) (Token, error) {
	token, err := c.tokens.Advance()
	if err != nil {
		return Token{}, err
	}
	if !isTerminal(token, terminal) {
		return Token{}, c.syntaxError(token, "expected %q, got %s", terminal, token)
	}
	return token, nil
}

func (c *JackCompiler) terminal(terminal string) CompilationFunction {
	return func() error {
		_, err := c.expectTerminal(terminal)
		return err
	}
}

func (c *JackCompiler) emit(f func()) CompilationFunction {
	return func() error {
		f()
		return nil
	}
}

func (c *JackCompiler) identifier() (Token, error) {
	token, err := c.tokens.Advance()
	if err != nil {
		return Token{}, err
	}
	if token.tokenType != Identifier {
		return Token{}, c.syntaxError(token, "expected identifier, got %s", token)
	}
	return token, nil
}

func (c *JackCompiler) compileType() (string, error) {
	token, err := c.tokens.Advance()
	if err != nil {
		return "", err
	}
	if token.tokenType == Identifier || isTerminal(token, "int") || isTerminal(token, "char") || isTerminal(token, "boolean") {
		return token.terminal, nil
	}
	return "", c.syntaxError(token, "expected type, got %s", token)
}

func (c *JackCompiler) define(token Token, variableType string, symbolType SymbolType) error {
	symbol, err := c.scope.Define(token.terminal, variableType, symbolType)
	if err != nil {
		kind := SemanticError
		if errors.Is(err, ErrSymbolRedefined) {
			kind = NameError
		}
		return &CompileError{Kind: kind, Token: token, Msg: err.Error(), Err: err}
	}
	c.log.Debugf("Registered symbol %q: %s %s %d", symbol.name, symbol.symbolType, symbol.variableType, symbol.index)
	return nil
}

func (c *JackCompiler) defineVar(variableType string, symbolType SymbolType) CompilationFunction {
	return func() error {
		token, err := c.identifier()
		if err != nil {
			return err
		}
		return c.define(token, variableType, symbolType)
	}
}

// lookup resolves a variable reference in the active scope chain.
func (c *JackCompiler) lookup(token Token) (Symbol, error) {
	symbol, ok := c.scope.Lookup(token.terminal)
	if !ok {
		return Symbol{}, newCompileError(NameError, token, "undefined identifier %q", token.terminal)
	}
	if symbol.symbolType == FieldSymbol && c.subroutine.kind == "function" {
		return Symbol{}, newCompileError(SemanticError, token, "field %q referenced inside function %q", token.terminal, c.subroutine.name)
	}
	return symbol, nil
}

func (c *JackCompiler) pushSymbol(symbol Symbol) {
	c.writer.WritePush(symbol.symbolType.Segment(), symbol.index)
}

func (c *JackCompiler) compileClass() error {
	c.trace("class")
	return chain(
		c.terminal("class"),
		func() error {
			token, err := c.identifier()
			c.className = token.terminal
			return err
		},
		c.terminal("{"),
		c.greedy(c.compileClassVarDec, "static", "field"),
		c.greedy(c.compileSubroutineDec, "constructor", "function", "method"),
		c.terminal("}"),
	)()
}

func (c *JackCompiler) compileClassVarDec() error {
	c.trace("class var declaration")
	token, err := c.tokens.Advance()
	if err != nil {
		return err
	}
	symbolType := SymbolType(token.terminal)
	variableType, err := c.compileType()
	if err != nil {
		return err
	}
	return chain(
		c.defineVar(variableType, symbolType),
		c.greedy(chain(c.terminal(","), c.defineVar(variableType, symbolType)), ","),
		c.terminal(";"),
	)()
}

func (c *JackCompiler) compileSubroutineDec() error {
	c.trace("subroutine declaration")
	kind, err := c.tokens.Advance()
	if err != nil {
		return err
	}

	returnType := "void"
	isVoid, err := c.peekIs("void")
	if err != nil {
		return err
	}
	if isVoid {
		_, _ = c.tokens.Advance()
	} else if returnType, err = c.compileType(); err != nil {
		return err
	}

	name, err := c.identifier()
	if err != nil {
		return err
	}

	c.subroutine = subroutine{kind: kind.terminal, returnType: returnType, name: name.terminal}
	c.scope = c.classScope.NewScope()
	defer func() { c.scope = c.classScope }()

	if c.subroutine.kind == "method" {
		if _, err := c.scope.Define("this", c.className, ArgumentSymbol); err != nil {
			return err
		}
	}

	return chain(
		c.terminal("("),
		c.compileParameterList,
		c.terminal(")"),
		c.compileSubroutineBody,
	)()
}

func (c *JackCompiler) compileParameter() error {
	variableType, err := c.compileType()
	if err != nil {
		return err
	}
	return c.defineVar(variableType, ArgumentSymbol)()
}

func (c *JackCompiler) compileParameterList() error {
	c.trace("parameter list")
	if empty, err := c.peekIs(")"); err != nil || empty {
		return err
	}
	return chain(
		c.compileParameter,
		c.greedy(chain(c.terminal(","), c.compileParameter), ","),
	)()
}

func (c *JackCompiler) compileSubroutineBody() error {
	c.trace("subroutine body")
	return chain(
		c.terminal("{"),
		c.greedy(c.compileVarDec, "var"),
		c.emit(c.writeSubroutineEntry),
		c.compileStatements,
		c.compileSubroutineExit,
	)()
}

func (c *JackCompiler) writeSubroutineEntry() {
	c.writer.WriteFunction(c.className+"."+c.subroutine.name, c.scope.Count(LocalSymbol))
	switch c.subroutine.kind {
	case "constructor":
		c.writer.WritePush(ConstVMSegment, c.classScope.Count(FieldSymbol))
		c.writer.WriteCall("Memory.alloc", 1)
		c.writer.WritePop(PointerVMSegment, 0)
	case "method":
		c.writer.WritePush(ArgumentVMSegment, 0)
		c.writer.WritePop(PointerVMSegment, 0)
	}
}

func (c *JackCompiler) compileSubroutineExit() error {
	end, err := c.expectTerminal("}")
	if err != nil {
		return err
	}
	if c.subroutine.returned {
		return nil
	}
	if c.subroutine.returnType != "void" {
		return newCompileError(SemanticError, end, "subroutine %q of type %s has no return statement", c.subroutine.name, c.subroutine.returnType)
	}
	c.writer.WritePush(ConstVMSegment, 0)
	c.writer.WriteReturn()
	return nil
}

func (c *JackCompiler) compileVarDec() error {
	c.trace("var declaration")
	variableType := ""
	return chain(
		c.terminal("var"),
		func() (err error) {
			variableType, err = c.compileType()
			return
		},
		func() error { return c.defineVar(variableType, LocalSymbol)() },
		c.greedy(chain(c.terminal(","), func() error { return c.defineVar(variableType, LocalSymbol)() }), ","),
		c.terminal(";"),
	)()
}

func (c *JackCompiler) compileStatements() error {
	c.trace("statements")
	return c.greedy(c.compileStatement, statementKeywords...)()
}

func (c *JackCompiler) compileStatement() error {
	token, err := c.tokens.Peek()
	if err != nil {
		return err
	}
	switch token.terminal {
	case "let":
		return c.compileLetStatement()
	case "if":
		return c.compileIfStatement()
	case "while":
		return c.compileWhileStatement()
	case "do":
		return c.compileDoStatement()
	case "return":
		return c.compileReturnStatement()
	}
	return c.syntaxError(token, "expected statement, got %s", token)
}

func (c *JackCompiler) compileLetStatement() error {
	c.trace("let statement")
	if err := c.terminal("let")(); err != nil {
		return err
	}
	name, err := c.identifier()
	if err != nil {
		return err
	}
	symbol, err := c.lookup(name)
	if err != nil {
		return err
	}

	isArray, err := c.peekIs("[")
	if err != nil {
		return err
	}
	if !isArray {
		return chain(
			c.terminal("="),
			c.compileExpression,
			c.terminal(";"),
			c.emit(func() { c.writer.WritePop(symbol.symbolType.Segment(), symbol.index) }),
		)()
	}

	// The target address stays on the stack until the value is computed, as
	// the value expression may itself move the that pointer.
	return chain(
		c.terminal("["),
		c.emit(func() { c.pushSymbol(symbol) }),
		c.compileExpression,
		c.terminal("]"),
		c.emit(func() { c.writer.WriteArithmetic(AddVMOperation) }),
		c.terminal("="),
		c.compileExpression,
		c.terminal(";"),
		c.emit(func() {
			c.writer.WritePop(TempVMSegment, 0)
			c.writer.WritePop(PointerVMSegment, 1)
			c.writer.WritePush(TempVMSegment, 0)
			c.writer.WritePop(ThatVMSegment, 0)
		}),
	)()
}

func (c *JackCompiler) compileIfStatement() error {
	c.trace("if statement")
	n := c.nextBranch()
	falseLabel := fmt.Sprintf("IF_FALSE%d", n)
	endLabel := fmt.Sprintf("IF_END%d", n)

	hasElse := false
	return chain(
		c.terminal("if"),
		c.terminal("("),
		c.compileExpression,
		c.terminal(")"),
		c.emit(func() {
			c.writer.WriteArithmetic(NotVMOperation)
			c.writer.WriteIf(falseLabel)
		}),
		c.terminal("{"),
		c.compileStatements,
		c.terminal("}"),
		c.maybe(chain(
			c.emit(func() {
				hasElse = true
				c.writer.WriteGoto(endLabel)
				c.writer.WriteLabel(falseLabel)
			}),
			c.terminal("else"),
			c.terminal("{"),
			c.compileStatements,
			c.terminal("}"),
			c.emit(func() { c.writer.WriteLabel(endLabel) }),
		), "else"),
		c.emit(func() {
			if !hasElse {
				c.writer.WriteLabel(falseLabel)
			}
		}),
	)()
}

func (c *JackCompiler) compileWhileStatement() error {
	c.trace("while statement")
	n := c.nextBranch()
	expLabel := fmt.Sprintf("WHILE_EXP%d", n)
	endLabel := fmt.Sprintf("WHILE_END%d", n)

	return chain(
		c.terminal("while"),
		c.emit(func() { c.writer.WriteLabel(expLabel) }),
		c.terminal("("),
		c.compileExpression,
		c.terminal(")"),
		c.emit(func() {
			c.writer.WriteArithmetic(NotVMOperation)
			c.writer.WriteIf(endLabel)
		}),
		c.terminal("{"),
		c.compileStatements,
		c.terminal("}"),
		c.emit(func() {
			c.writer.WriteGoto(expLabel)
			c.writer.WriteLabel(endLabel)
		}),
	)()
}

func (c *JackCompiler) compileDoStatement() error {
	c.trace("do statement")
	return chain(
		c.terminal("do"),
		c.compileSubroutineCall,
		c.terminal(";"),
		// Discard the return value
		c.emit(func() { c.writer.WritePop(TempVMSegment, 0) }),
	)()
}

func (c *JackCompiler) compileReturnStatement() error {
	c.trace("return statement")
	token, err := c.expectTerminal("return")
	if err != nil {
		return err
	}
	c.subroutine.returned = true

	isEmpty, err := c.peekIs(";")
	if err != nil {
		return err
	}
	if isEmpty {
		if c.subroutine.returnType != "void" {
			return newCompileError(SemanticError, token, "subroutine %q of type %s must return a value", c.subroutine.name, c.subroutine.returnType)
		}
		c.writer.WritePush(ConstVMSegment, 0)
	} else if err := c.compileExpression(); err != nil {
		return err
	}

	if err := c.terminal(";")(); err != nil {
		return err
	}
	c.writer.WriteReturn()
	return nil
}

func (c *JackCompiler) compileExpression() error {
	c.trace("expression")
	return c.compileBinaryExpression(1)
}

// compileBinaryExpression compiles a term followed by every operator of at
// least minPrecedence, emitting each operator after both of its operands.
func (c *JackCompiler) compileBinaryExpression(minPrecedence int) error {
	if err := c.compileTerm(); err != nil {
		return err
	}
	for {
		token, err := c.tokens.Peek()
		if err != nil {
			return err
		}
		precedence, ok := binaryOperators[token.terminal]
		if token.tokenType != SymbolTokenType || !ok || precedence < minPrecedence {
			return nil
		}
		_, _ = c.tokens.Advance()
		if err := c.compileBinaryExpression(precedence + 1); err != nil {
			return err
		}
		c.writeOperator(token.terminal)
	}
}

func (c *JackCompiler) writeOperator(operator string) {
	switch operator {
	case "+":
		c.writer.WriteArithmetic(AddVMOperation)
	case "-":
		c.writer.WriteArithmetic(SubVMOperation)
	case "&":
		c.writer.WriteArithmetic(AndVMOperation)
	case "|":
		c.writer.WriteArithmetic(OrVMOperation)
	case "<":
		c.writer.WriteArithmetic(LtVMOperation)
	case ">":
		c.writer.WriteArithmetic(GtVMOperation)
	case "=":
		c.writer.WriteArithmetic(EqVMOperation)
	case "*":
		c.writer.WriteCall("Math.multiply", 2)
	case "/":
		c.writer.WriteCall("Math.divide", 2)
	}
}

func (c *JackCompiler) compileTerm() error {
	c.trace("term")
	token, err := c.tokens.Advance()
	if err != nil {
		return err
	}

	switch token.tokenType {
	case IntegerConstant:
		value, err := token.asInt()
		if err != nil {
			return &CompileError{Kind: LexicalError, Token: token, Msg: err.Error(), Err: err}
		}
		c.writer.WritePush(ConstVMSegment, int(value))
		return nil
	case StringConstant:
		c.writeStringConstant(token.terminal)
		return nil
	case Keyword:
		return c.compileKeywordConstant(token)
	case Identifier:
		return c.compileVarNameSubterm(token)
	case SymbolTokenType:
		switch token.terminal {
		case "(":
			return chain(c.compileExpression, c.terminal(")"))()
		case "-":
			return chain(c.compileTerm, c.emit(func() { c.writer.WriteArithmetic(NegVMOperation) }))()
		case "~":
			return chain(c.compileTerm, c.emit(func() { c.writer.WriteArithmetic(NotVMOperation) }))()
		}
	}
	return c.syntaxError(token, "expected term, got %s", token)
}

func (c *JackCompiler) writeStringConstant(constant string) {
	c.writer.WritePush(ConstVMSegment, len(constant))
	c.writer.WriteCall("String.new", 1)
	for _, char := range constant {
		c.writer.WritePush(ConstVMSegment, int(char))
		c.writer.WriteCall("String.appendChar", 2)
	}
}

func (c *JackCompiler) compileKeywordConstant(token Token) error {
	switch token.terminal {
	case "true":
		c.writer.WritePush(ConstVMSegment, 0)
		c.writer.WriteArithmetic(NotVMOperation)
	case "false", "null":
		c.writer.WritePush(ConstVMSegment, 0)
	case "this":
		if c.subroutine.kind == "function" {
			return newCompileError(SemanticError, token, "this referenced inside function %q", c.subroutine.name)
		}
		c.writer.WritePush(PointerVMSegment, 0)
	default:
		return c.syntaxError(token, "expected term, got %s", token)
	}
	return nil
}

// compileVarNameSubterm disambiguates an identifier by the token following it.
func (c *JackCompiler) compileVarNameSubterm(name Token) error {
	next, err := c.tokens.Peek()
	if err != nil {
		return err
	}

	switch {
	case isTerminal(next, "("), isTerminal(next, "."):
		return c.compileCall(name)
	case isTerminal(next, "["):
		symbol, err := c.lookup(name)
		if err != nil {
			return err
		}
		return chain(
			c.terminal("["),
			c.emit(func() { c.pushSymbol(symbol) }),
			c.compileExpression,
			c.terminal("]"),
			c.emit(func() {
				c.writer.WriteArithmetic(AddVMOperation)
				c.writer.WritePop(PointerVMSegment, 1)
				c.writer.WritePush(ThatVMSegment, 0)
			}),
		)()
	}

	symbol, err := c.lookup(name)
	if err != nil {
		return err
	}
	c.pushSymbol(symbol)
	return nil
}

func (c *JackCompiler) compileSubroutineCall() error {
	c.trace("subroutine call")
	name, err := c.identifier()
	if err != nil {
		return err
	}
	return c.compileCall(name)
}

// compileCall compiles a call whose leading identifier was already consumed.
// The receiver, if any, is pushed as the first argument.
func (c *JackCompiler) compileCall(first Token) error {
	isQualified, err := c.peekIs(".")
	if err != nil {
		return err
	}

	var (
		function string
		nArgs    int
	)
	if isQualified {
		_, _ = c.tokens.Advance()
		method, err := c.identifier()
		if err != nil {
			return err
		}
		if c.scope.Contains(first.terminal) {
			symbol, err := c.lookup(first)
			if err != nil {
				return err
			}
			c.pushSymbol(symbol)
			function = symbol.variableType + "." + method.terminal
			nArgs = 1
		} else {
			function = first.terminal + "." + method.terminal
		}
	} else {
		if c.subroutine.kind == "function" {
			return newCompileError(SemanticError, first, "method %q called without an object inside function %q", first.terminal, c.subroutine.name)
		}
		c.writer.WritePush(PointerVMSegment, 0)
		function = c.className + "." + first.terminal
		nArgs = 1
	}

	return chain(
		c.terminal("("),
		func() error {
			n, err := c.compileExpressionList()
			nArgs += n
			return err
		},
		c.terminal(")"),
		c.emit(func() { c.writer.WriteCall(function, nArgs) }),
	)()
}

func (c *JackCompiler) compileExpressionList() (int, error) {
	c.trace("expression list")
	if empty, err := c.peekIs(")"); err != nil || empty {
		return 0, err
	}
	n := 1
	if err := c.compileExpression(); err != nil {
		return 0, err
	}
	err := c.greedy(chain(
		c.terminal(","),
		func() error {
			n++
			return c.compileExpression()
		},
	), ",")()
	return n, err
}
