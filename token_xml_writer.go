package main

import (
	"bufio"
	"io"
	"strings"
)

var xmlEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;", "\"", "&quot;", "&", "&amp;")

// TokenXMLWriter dumps a token sequence in the analyzer's <tokens> format.
type TokenXMLWriter struct {
	output *bufio.Writer
}

func NewTokenXMLWriter(w io.Writer) *TokenXMLWriter {
	return &TokenXMLWriter{output: bufio.NewWriter(w)}
}

func (w *TokenXMLWriter) WriteTokens(t TokenScanner) error {
	w.output.WriteString("<tokens>\n")
	for t.Scan() {
		token := t.Token()
		w.output.WriteString("<" + string(token.tokenType) + "> ")
		w.output.WriteString(xmlEscaper.Replace(token.terminal))
		w.output.WriteString(" </" + string(token.tokenType) + ">\n")
	}
	if err := t.Err(); err != nil {
		return err
	}
	w.output.WriteString("</tokens>\n")
	return w.output.Flush()
}
