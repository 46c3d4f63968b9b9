// Package diag reports unrecognized input found by the scanner. Lexical
// errors never stop a scan; they surface here as diagnostics built from
// the ERR tokens of a finished token list.
package diag

import (
	"fmt"
	"io"
	"strings"

	"lexscan/pkg/token"
)

const (
	// CodeUnrecognized marks a lexeme that matches no token class.
	CodeUnrecognized = "L0001"
	// CodeUnknownDirective marks a #-word that is not a known directive;
	// only scanners built with lexer.WithDirectives produce one.
	CodeUnknownDirective = "L0002"
)

// Diagnostic is one lexical error with its source position.
type Diagnostic struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Lexeme  string `json:"lexeme"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: error[%s]: %s", d.Line, d.Column, d.Code, d.Message)
}

// Bag collects diagnostics for one file.
type Bag struct {
	FilePath    string
	diagnostics []Diagnostic
}

func NewBag(filePath string) *Bag {
	return &Bag{FilePath: filePath, diagnostics: make([]Diagnostic, 0)}
}

// Collect builds a bag from the ERR tokens of toks, in scan order.
func Collect(filePath string, toks []token.Token) *Bag {
	b := NewBag(filePath)
	for _, tok := range toks {
		if tok.Type == token.ERR {
			b.Add(FromToken(tok))
		}
	}
	return b
}

func FromToken(tok token.Token) Diagnostic {
	d := Diagnostic{
		Code:    CodeUnrecognized,
		Message: fmt.Sprintf("unrecognized token %q", tok.Lexeme),
		Lexeme:  tok.Lexeme,
		Line:    tok.Line,
		Column:  tok.Column,
	}
	if len(tok.Lexeme) > 1 && strings.HasPrefix(tok.Lexeme, "#") {
		d.Code = CodeUnknownDirective
		d.Message = fmt.Sprintf("unknown preprocessor directive %q", tok.Lexeme)
	}
	return d
}

func (b *Bag) Add(d Diagnostic) {
	b.diagnostics = append(b.diagnostics, d)
}

func (b *Bag) HasErrors() bool {
	return len(b.diagnostics) > 0
}

func (b *Bag) Len() int {
	return len(b.diagnostics)
}

func (b *Bag) Diagnostics() []Diagnostic {
	return b.diagnostics
}

// Emit writes every diagnostic followed by the offending source line and a
// caret marker under the lexeme. lines may be nil, in which case the
// excerpt is omitted.
func (b *Bag) Emit(w io.Writer, lines []string) error {
	for _, d := range b.diagnostics {
		if _, err := fmt.Fprintf(w, "%s:%s\n", b.FilePath, d); err != nil {
			return err
		}
		if d.Line < 1 || d.Line > len(lines) {
			continue
		}
		gutter := len(fmt.Sprint(d.Line))
		marker := indent(lines[d.Line-1], d.Column-1) + strings.Repeat("^", len([]rune(d.Lexeme)))
		if _, err := fmt.Fprintf(w, "%*d | %s\n%*s | %s\n", gutter, d.Line, lines[d.Line-1], gutter, "", marker); err != nil {
			return err
		}
	}
	if b.HasErrors() {
		_, err := fmt.Fprintf(w, "%d error(s) in %s\n", b.Len(), b.FilePath)
		return err
	}
	return nil
}

// indent returns blanks covering the first n runes of line, keeping tabs so
// the marker lines up under tab-indented source.
func indent(line string, n int) string {
	var sb strings.Builder
	for i, r := range []rune(line) {
		if i >= n {
			break
		}
		if r == '\t' {
			sb.WriteRune('\t')
		} else {
			sb.WriteRune(' ')
		}
	}
	return sb.String()
}
