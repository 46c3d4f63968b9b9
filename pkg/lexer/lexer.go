package lexer

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"lexscan/pkg/token"
)

// maxLineSize bounds a single source line read by Scan.
const maxLineSize = 1 << 20

// Scanner turns source lines into tokens. It keeps the token list and the
// current line/column only for the lifetime of one Scan call.
type Scanner struct {
	tokens []token.Token
	line   int
	column int

	directives bool

	input        string
	position     int // byte offset of the current char
	readPosition int // byte offset after the current char
	ch           rune
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithDirectives scans `#` followed by a letter as one lexeme, so
// `#include` yields PP_INCLUDE. Without it `#` is a one-character ERR.
func WithDirectives() Option {
	return func(s *Scanner) { s.directives = true }
}

func New(opts ...Option) *Scanner {
	s := &Scanner{}
	for _, opt := range opts {
		opt(s)
	}
	s.reset()
	return s
}

func (s *Scanner) reset() {
	s.tokens = nil
	s.line = 1
	s.column = 1
}

// Scan reads r line by line and returns every token in source order. A read
// failure aborts the scan; the tokens gathered so far are returned with it.
func (s *Scanner) Scan(r io.Reader) ([]token.Token, error) {
	s.reset()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		s.scanLine(sc.Text())
		s.nextLine()
	}
	if err := sc.Err(); err != nil {
		return s.release(), fmt.Errorf("read line %d: %w", s.line, err)
	}
	return s.release(), nil
}

// ScanLines scans lines that were already split by the caller.
func (s *Scanner) ScanLines(lines []string) []token.Token {
	s.reset()
	for _, line := range lines {
		s.scanLine(line)
		s.nextLine()
	}
	return s.release()
}

// ScanString scans src with a fresh Scanner.
func ScanString(src string) []token.Token {
	toks, _ := New().Scan(strings.NewReader(src))
	return toks
}

// release hands the token list over to the caller.
func (s *Scanner) release() []token.Token {
	toks := s.tokens
	s.tokens = nil
	if toks == nil {
		toks = []token.Token{}
	}
	return toks
}

func (s *Scanner) nextLine() {
	s.line++
	s.column = 1
}

func (s *Scanner) scanLine(line string) {
	s.input = line
	s.position = 0
	s.readPosition = 0
	s.readChar()

	for s.position < len(s.input) {
		switch {
		case s.ch == ' ' || s.ch == '\t':
			s.readChar()
		case token.IsIdentStart(s.ch):
			s.scanRun(token.IsIdentPart, token.Lookup)
		case token.IsDigit(s.ch):
			s.scanRun(token.IsDigit, func(string) token.TokenType { return token.INT_NUM })
		case s.directives && s.ch == '#' && token.IsIdentStart(s.peekChar()):
			s.scanDirective()
		case s.ch == '/':
			if s.peekChar() == '/' {
				// Line comment: nothing after the marker is scanned.
				return
			}
			s.emitChar()
		case strings.ContainsRune("&|=!<>", s.ch):
			s.scanOperator()
		default:
			s.emitChar()
		}
	}
}

// readChar consumes the current character; column tracks it 1:1. An
// invalid UTF-8 byte counts as one character.
func (s *Scanner) readChar() {
	if s.position < s.readPosition {
		s.column++
	}
	s.position = s.readPosition
	if s.readPosition >= len(s.input) {
		s.ch = 0
		return
	}
	r, size := utf8.DecodeRuneInString(s.input[s.readPosition:])
	s.ch = r
	s.readPosition += size
}

func (s *Scanner) peekChar() rune {
	if s.readPosition >= len(s.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(s.input[s.readPosition:])
	return r
}

func (s *Scanner) emit(typ token.TokenType, lexeme string, column int) {
	s.tokens = append(s.tokens, token.New(typ, lexeme, s.line, column))
}

// emitChar emits the current character on its own, with its source bytes.
func (s *Scanner) emitChar() {
	lexeme := s.input[s.position:s.readPosition]
	s.emit(token.Lookup(lexeme), lexeme, s.column)
	s.readChar()
}

// scanRun consumes the longest run of characters accepted by part.
func (s *Scanner) scanRun(part func(rune) bool, classify func(string) token.TokenType) {
	start, column := s.position, s.column
	for s.position < len(s.input) && part(s.ch) {
		s.readChar()
	}
	lexeme := s.input[start:s.position]
	s.emit(classify(lexeme), lexeme, column)
}

func (s *Scanner) scanDirective() {
	start, column := s.position, s.column
	s.readChar() // '#'
	for s.position < len(s.input) && token.IsIdentPart(s.ch) {
		s.readChar()
	}
	lexeme := s.input[start:s.position]
	s.emit(token.Lookup(lexeme), lexeme, column)
}

func (s *Scanner) scanOperator() {
	start, column := s.position, s.column
	first := s.ch
	s.readChar()
	if s.position < len(s.input) && token.IsPair(first, s.ch) {
		s.readChar()
	}
	lexeme := s.input[start:s.position]
	s.emit(token.Lookup(lexeme), lexeme, column)
}
