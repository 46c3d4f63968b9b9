package token

import (
	"fmt"
	"strings"
	"unicode"
)

// TokenType is the kind name of a token, e.g. "IF" or "INT_NUM".
type TokenType string

const (
	// Keywords
	INT    = "INT"
	MAIN   = "MAIN"
	VOID   = "VOID"
	BREAK  = "BREAK"
	DO     = "DO"
	ELSE   = "ELSE"
	IF     = "IF"
	WHILE  = "WHILE"
	RETURN = "RETURN"
	READ   = "READ"
	WRITE  = "WRITE"

	// Preprocessor directives
	PP_DEFINE  = "PP_DEFINE"
	PP_ELIF    = "PP_ELIF"
	PP_ELSE    = "PP_ELSE"
	PP_ENDIF   = "PP_ENDIF"
	PP_IFDEF   = "PP_IFDEF"
	PP_IFNDEF  = "PP_IFNDEF"
	PP_INCLUDE = "PP_INCLUDE"
	PP_UNDEF   = "PP_UNDEF"
	PP_MESSAGE = "PP_MESSAGE"
	PP_IF      = "PP_IF"

	// Delimiters
	LBRACE  = "LBRACE"  // {
	RBRACE  = "RBRACE"  // }
	LSQUARE = "LSQUARE" // [
	RSQUARE = "RSQUARE" // ]
	LPAR    = "LPAR"    // (
	RPAR    = "RPAR"    // )
	SEMI    = "SEMI"    // ;
	COMMA   = "COMMA"   // ,

	// Operators
	PLUS   = "PLUS"   // +
	MINUS  = "MINUS"  // -
	MUL_OP = "MUL_OP" // *
	DIV_OP = "DIV_OP" // /
	AND_OP = "AND_OP" // &&
	OR_OP  = "OR_OP"  // ||
	NOT_OP = "NOT_OP" // !
	ASSIGN = "ASSIGN" // =
	LT     = "LT"     // <
	GT     = "GT"     // >
	SHL_OP = "SHL_OP" // <<
	SHR_OP = "SHR_OP" // >>
	EQ     = "EQ"     // ==
	NOTEQ  = "NOTEQ"  // !=
	LTEQ   = "LTEQ"   // <=
	GTEQ   = "GTEQ"   // >=

	// Literals
	INT_NUM = "INT_NUM"
	ID      = "ID"

	ERR = "ERR"
)

// Token is a classified lexeme and the 1-based position of its first character.
type Token struct {
	Type   TokenType
	Lexeme string
	Line   int
	Column int
}

// New builds a Token; tokens are not changed after construction.
func New(typ TokenType, lexeme string, line, column int) Token {
	return Token{Type: typ, Lexeme: lexeme, Line: line, Column: column}
}

// String renders the token for debugging as Token(KIND, "lexeme", line:col).
func (t Token) String() string {
	return fmt.Sprintf("Token(%s, %q, %d:%d)", t.Type, t.Lexeme, t.Line, t.Column)
}

// Keys are lower case; lookups fold the candidate first.
var keywords = map[string]TokenType{
	"int":    INT,
	"main":   MAIN,
	"void":   VOID,
	"break":  BREAK,
	"do":     DO,
	"else":   ELSE,
	"if":     IF,
	"while":  WHILE,
	"return": RETURN,
	"read":   READ,
	"write":  WRITE,
}

var directives = map[string]TokenType{
	"#define":  PP_DEFINE,
	"#elif":    PP_ELIF,
	"#else":    PP_ELSE,
	"#endif":   PP_ENDIF,
	"#ifdef":   PP_IFDEF,
	"#ifndef":  PP_IFNDEF,
	"#include": PP_INCLUDE,
	"#undef":   PP_UNDEF,
	"#message": PP_MESSAGE,
	"#if":      PP_IF,
}

var symbols = map[string]TokenType{
	"{":  LBRACE,
	"}":  RBRACE,
	"[":  LSQUARE,
	"]":  RSQUARE,
	"(":  LPAR,
	")":  RPAR,
	";":  SEMI,
	",":  COMMA,
	"+":  PLUS,
	"-":  MINUS,
	"*":  MUL_OP,
	"/":  DIV_OP,
	"&&": AND_OP,
	"||": OR_OP,
	"!":  NOT_OP,
	"=":  ASSIGN,
	"<":  LT,
	">":  GT,
	"<<": SHL_OP,
	">>": SHR_OP,
	"==": EQ,
	"!=": NOTEQ,
	"<=": LTEQ,
	">=": GTEQ,
}

// Lookup classifies a lexeme whose boundaries are already known. Keywords
// and directives match case-insensitively, symbols exactly; otherwise the
// shape decides between INT_NUM, ID and ERR.
func Lookup(lexeme string) TokenType {
	folded := strings.ToLower(lexeme)
	if typ, ok := keywords[folded]; ok {
		return typ
	}
	if typ, ok := directives[folded]; ok {
		return typ
	}
	if typ, ok := symbols[lexeme]; ok {
		return typ
	}
	if lexeme == "" {
		return ERR
	}
	if allRunes(lexeme, IsDigit) {
		return INT_NUM
	}
	if allRunes(lexeme, IsIdentPart) {
		return ID
	}
	return ERR
}

// IsPair reports whether two runes form one of the two-character operators.
func IsPair(first, second rune) bool {
	switch string([]rune{first, second}) {
	case "&&", "||", "==", "!=", "<=", ">=", "<<", ">>":
		return true
	}
	return false
}

// IsKeyword reports whether t is one of the reserved words.
func (t TokenType) IsKeyword() bool {
	_, ok := keywords[strings.ToLower(string(t))]
	return ok
}

// IsDirective reports whether t is a preprocessor directive kind.
func (t TokenType) IsDirective() bool {
	return strings.HasPrefix(string(t), "PP_")
}

// IsSymbol reports whether t is a punctuation or operator kind.
func (t TokenType) IsSymbol() bool {
	for _, typ := range symbols {
		if typ == t {
			return true
		}
	}
	return false
}

// IsIdentStart reports whether r opens an identifier or keyword run.
func IsIdentStart(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || r == '_'
}

// IsIdentPart accepts any Unicode letter or digit, plus underscore.
func IsIdentPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// IsDigit accepts ASCII decimal digits only.
func IsDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func allRunes(s string, pred func(rune) bool) bool {
	for _, r := range s {
		if !pred(r) {
			return false
		}
	}
	return true
}
