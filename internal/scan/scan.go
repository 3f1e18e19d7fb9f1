// Copyright 2026 The gohdl Authors
// Licensed under the MIT license. See license text in the LICENSE file.

// Package scan provides the small hand-rolled tokenizer shared by the IO
// spec / connection string parsers and the structural Verilog importer.
package scan

import (
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Type is a token type.
type Type int

// Token types.
const (
	EOF Type = iota
	Ident
	Int
	Punct
	Bad
)

// A Token is one lexeme with its byte position in the input.
type Token struct {
	Type Type
	Text string
	Int  int
	Pos  int
}

// A Scanner tokenizes a string. Identifiers are [A-Za-z_][A-Za-z0-9_.]*,
// integers are decimal, and punctuation is single-rune except for the
// two-rune token "<=". Line comments ("//") are skipped.
type Scanner struct {
	src    string
	pos    int
	peeked *Token
}

// New returns a Scanner over src.
func New(src string) *Scanner { return &Scanner{src: src} }

// Peek returns the next token without consuming it.
func (s *Scanner) Peek() Token {
	if s.peeked == nil {
		t := s.scan()
		s.peeked = &t
	}
	return *s.peeked
}

// Next consumes and returns the next token.
func (s *Scanner) Next() Token {
	if s.peeked != nil {
		t := *s.peeked
		s.peeked = nil
		return t
	}
	return s.scan()
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (s *Scanner) scan() Token {
	for s.pos < len(s.src) {
		r, sz := utf8.DecodeRuneInString(s.src[s.pos:])
		switch {
		case unicode.IsSpace(r):
			s.pos += sz
			continue
		case r == '/' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '/':
			for s.pos < len(s.src) && s.src[s.pos] != '\n' {
				s.pos++
			}
			continue
		case isIdentStart(r):
			start := s.pos
			for s.pos < len(s.src) {
				r, sz := utf8.DecodeRuneInString(s.src[s.pos:])
				if !isIdentPart(r) {
					break
				}
				s.pos += sz
			}
			return Token{Type: Ident, Text: s.src[start:s.pos], Pos: start}
		case r >= '0' && r <= '9':
			start := s.pos
			for s.pos < len(s.src) && s.src[s.pos] >= '0' && s.src[s.pos] <= '9' {
				s.pos++
			}
			n, err := strconv.Atoi(s.src[start:s.pos])
			if err != nil {
				return Token{Type: Bad, Text: s.src[start:s.pos], Pos: start}
			}
			return Token{Type: Int, Text: s.src[start:s.pos], Int: n, Pos: start}
		default:
			start := s.pos
			s.pos += sz
			// the lone two-rune token
			if s.pos < len(s.src) {
				two := s.src[start : s.pos+1]
				if two == "<=" {
					s.pos++
					return Token{Type: Punct, Text: two, Pos: start}
				}
			}
			return Token{Type: Punct, Text: s.src[start:s.pos], Pos: start}
		}
	}
	return Token{Type: EOF, Pos: s.pos}
}
