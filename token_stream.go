package main

type TokenScanner interface {
	Token() Token
	Err() error
	Scan() bool
}

// TokenStream adds a single token of lookahead to a TokenScanner. A peeked
// token is replayed by the next Advance.
type TokenStream struct {
	scanner TokenScanner
	peeked  *Token
	last    Token
}

func NewTokenStream(t TokenScanner) *TokenStream {
	return &TokenStream{scanner: t}
}

func (s *TokenStream) next() (Token, error) {
	if s.scanner.Scan() {
		return s.scanner.Token(), nil
	}
	if err := s.scanner.Err(); err != nil {
		return Token{}, err
	}
	// Exhausted, report the end of input on the last line seen
	return Token{line: s.last.line}, nil
}

// Peek returns the next token without consuming it. At the end of input it
// returns a token for which IsEOF is true.
func (s *TokenStream) Peek() (Token, error) {
	if s.peeked == nil {
		token, err := s.next()
		if err != nil {
			return Token{}, err
		}
		s.peeked = &token
	}
	return *s.peeked, nil
}

// Advance consumes and returns the next token.
func (s *TokenStream) Advance() (Token, error) {
	token, err := s.Peek()
	if err != nil {
		return Token{}, err
	}
	s.peeked = nil
	if !token.IsEOF() {
		s.last = token
	}
	return token, nil
}

// Last returns the most recently consumed token.
func (s *TokenStream) Last() Token {
	return s.last
}
