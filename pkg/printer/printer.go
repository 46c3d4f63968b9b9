package printer

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/blake2b"

	"lexscan/pkg/diag"
	"lexscan/pkg/token"
)

type Format string

const (
	Text  Format = "text"
	Table Format = "table"
	JSON  Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case Text, Table, JSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, table or json)", s)
}

// Result is the JSON document produced for one scanned source.
type Result struct {
	Source      string            `json:"source,omitempty"`
	Digest      string            `json:"digest"`
	Tokens      []JSONToken       `json:"tokens"`
	Diagnostics []diag.Diagnostic `json:"diagnostics"`
}

type JSONToken struct {
	Type   token.TokenType `json:"type"`
	Lexeme string          `json:"lexeme"`
	Line   int             `json:"line"`
	Column int             `json:"column"`
}

// Digest is the hex BLAKE2b-256 sum of the source bytes.
func Digest(src []byte) string {
	sum := blake2b.Sum256(src)
	return hex.EncodeToString(sum[:])
}

func NewResult(name string, src []byte, toks []token.Token) Result {
	res := Result{
		Source:      name,
		Digest:      Digest(src),
		Tokens:      make([]JSONToken, 0, len(toks)),
		Diagnostics: diag.Collect(name, toks).Diagnostics(),
	}
	for _, tok := range toks {
		res.Tokens = append(res.Tokens, JSONToken{Type: tok.Type, Lexeme: tok.Lexeme, Line: tok.Line, Column: tok.Column})
	}
	return res
}

// Print writes toks in the given format. src and name are only used by
// the JSON format.
func Print(w io.Writer, format Format, name string, src []byte, toks []token.Token) error {
	switch format {
	case Text:
		return PrintText(w, toks)
	case Table:
		return PrintTable(w, toks)
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(NewResult(name, src, toks))
	}
	return fmt.Errorf("unknown output format %q", format)
}

// PrintText writes one `Token: KIND "lexeme" line L column C` line per token.
func PrintText(w io.Writer, toks []token.Token) error {
	for _, tok := range toks {
		if _, err := fmt.Fprintf(w, "Token: %s \"%s\" line %d column %d\n", tok.Type, tok.Lexeme, tok.Line, tok.Column); err != nil {
			return err
		}
	}
	return nil
}

// PrintTable writes the aligned KIND 'lexeme' (line L, col C) layout of
// debug_tokens.
func PrintTable(w io.Writer, toks []token.Token) error {
	for _, tok := range toks {
		if _, err := fmt.Fprintf(w, "%-15s %-20s (line %d, col %d)\n", tok.Type, fmt.Sprintf("'%s'", tok.Lexeme), tok.Line, tok.Column); err != nil {
			return err
		}
	}
	return nil
}
