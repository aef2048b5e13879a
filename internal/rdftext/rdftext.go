// Copyright 2024-2025 The Jelly Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package rdftext reads and writes the line-based N-Triples and
// N-Quads syntaxes, enough to feed the Jelly CLI. It is not a full
// validator: well-formed input round-trips, malformed input is
// rejected with a position, and exotica like non-canonical escapes
// are normalized.
package rdftext

import (
	"fmt"
	"strings"
	"unicode/utf8"

	jelly "github.com/jelly-rdf/jelly-go"
)

// Statement is one parsed line: a triple, or a quad when Graph is set.
type Statement struct {
	Subject   jelly.Term
	Predicate jelly.Term
	Object    jelly.Term
	Graph     jelly.Term // zero for triples
}

// IsQuad reports whether the statement carries a graph label.
func (s Statement) IsQuad() bool { return !s.Graph.IsZero() }

type parser struct {
	line string
	pos  int
	no   int
}

func (p *parser) errf(format string, args ...any) error {
	return fmt.Errorf("line %d, col %d: %s", p.no, p.pos+1, fmt.Sprintf(format, args...))
}

func (p *parser) skipSpace() {
	for p.pos < len(p.line) && (p.line[p.pos] == ' ' || p.line[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) eof() bool { return p.pos >= len(p.line) }

// ParseLine parses one N-Triples or N-Quads line. Blank lines and
// comment lines yield ok = false.
func ParseLine(line string, lineNo int) (st Statement, ok bool, err error) {
	p := &parser{line: line, no: lineNo}
	p.skipSpace()
	if p.eof() || p.line[p.pos] == '#' {
		return st, false, nil
	}
	if st.Subject, err = p.term(); err != nil {
		return st, false, err
	}
	p.skipSpace()
	if st.Predicate, err = p.term(); err != nil {
		return st, false, err
	}
	p.skipSpace()
	if st.Object, err = p.term(); err != nil {
		return st, false, err
	}
	p.skipSpace()
	if !p.eof() && p.line[p.pos] != '.' {
		if st.Graph, err = p.term(); err != nil {
			return st, false, err
		}
		p.skipSpace()
	}
	if p.eof() || p.line[p.pos] != '.' {
		return st, false, p.errf("expected terminating '.'")
	}
	p.pos++
	p.skipSpace()
	if !p.eof() && p.line[p.pos] != '#' {
		return st, false, p.errf("trailing characters after '.'")
	}
	return st, true, nil
}

func (p *parser) term() (jelly.Term, error) {
	if p.eof() {
		return jelly.Term{}, p.errf("unexpected end of line")
	}
	switch p.line[p.pos] {
	case '<':
		iri, err := p.iriRef()
		if err != nil {
			return jelly.Term{}, err
		}
		return jelly.NewIRI(iri), nil
	case '_':
		return p.blankNode()
	case '"':
		return p.literal()
	default:
		return jelly.Term{}, p.errf("unexpected character %q", p.line[p.pos])
	}
}

func (p *parser) iriRef() (string, error) {
	start := p.pos
	p.pos++ // consume '<'
	var sb strings.Builder
	for !p.eof() {
		c := p.line[p.pos]
		switch c {
		case '>':
			p.pos++
			return sb.String(), nil
		case '\\':
			r, err := p.unescape(true)
			if err != nil {
				return "", err
			}
			sb.WriteRune(r)
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
	p.pos = start
	return "", p.errf("unterminated IRI")
}

func (p *parser) blankNode() (jelly.Term, error) {
	if !strings.HasPrefix(p.line[p.pos:], "_:") {
		return jelly.Term{}, p.errf("malformed blank node")
	}
	p.pos += 2
	start := p.pos
	for !p.eof() {
		c := p.line[p.pos]
		if c == ' ' || c == '\t' {
			break
		}
		p.pos++
	}
	if p.pos == start {
		return jelly.Term{}, p.errf("empty blank node label")
	}
	return jelly.NewBlankNode(p.line[start:p.pos]), nil
}

func (p *parser) literal() (jelly.Term, error) {
	p.pos++ // consume '"'
	var sb strings.Builder
	for {
		if p.eof() {
			return jelly.Term{}, p.errf("unterminated literal")
		}
		c := p.line[p.pos]
		if c == '"' {
			p.pos++
			break
		}
		if c == '\\' {
			r, err := p.unescape(false)
			if err != nil {
				return jelly.Term{}, err
			}
			sb.WriteRune(r)
			continue
		}
		sb.WriteByte(c)
		p.pos++
	}
	lex := sb.String()
	if !p.eof() && p.line[p.pos] == '@' {
		p.pos++
		start := p.pos
		for !p.eof() && p.line[p.pos] != ' ' && p.line[p.pos] != '\t' {
			p.pos++
		}
		if p.pos == start {
			return jelly.Term{}, p.errf("empty language tag")
		}
		return jelly.NewLangLiteral(lex, p.line[start:p.pos]), nil
	}
	if strings.HasPrefix(p.line[p.pos:], "^^") {
		p.pos += 2
		if p.eof() || p.line[p.pos] != '<' {
			return jelly.Term{}, p.errf("expected datatype IRI after '^^'")
		}
		datatype, err := p.iriRef()
		if err != nil {
			return jelly.Term{}, err
		}
		return jelly.NewTypedLiteral(lex, datatype), nil
	}
	return jelly.NewLiteral(lex), nil
}

// unescape consumes a backslash escape. IRIs allow only \u and \U.
func (p *parser) unescape(inIRI bool) (rune, error) {
	p.pos++ // consume '\\'
	if p.eof() {
		return 0, p.errf("dangling escape")
	}
	c := p.line[p.pos]
	p.pos++
	switch c {
	case 'u', 'U':
		n := 4
		if c == 'U' {
			n = 8
		}
		if p.pos+n > len(p.line) {
			return 0, p.errf("truncated \\%c escape", c)
		}
		var r rune
		for _, h := range p.line[p.pos : p.pos+n] {
			d, ok := hexVal(byte(h))
			if !ok {
				return 0, p.errf("bad hex digit %q in \\%c escape", h, c)
			}
			r = r<<4 | rune(d)
		}
		p.pos += n
		if !utf8.ValidRune(r) {
			return 0, p.errf("escape denotes an invalid code point")
		}
		return r, nil
	}
	if inIRI {
		return 0, p.errf("invalid escape \\%c in IRI", c)
	}
	switch c {
	case 't':
		return '\t', nil
	case 'b':
		return '\b', nil
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 'f':
		return '\f', nil
	case '"':
		return '"', nil
	case '\'':
		return '\'', nil
	case '\\':
		return '\\', nil
	default:
		return 0, p.errf("invalid escape \\%c", c)
	}
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

// FormatTerm renders a term in N-Triples syntax.
func FormatTerm(t jelly.Term) string {
	switch t.Kind {
	case jelly.TermIRI:
		return "<" + t.Value + ">"
	case jelly.TermBlankNode:
		return "_:" + t.Value
	case jelly.TermLiteral:
		s := `"` + escapeLiteral(t.Value) + `"`
		switch {
		case t.Language != "":
			return s + "@" + t.Language
		case t.Datatype != "":
			return s + "^^<" + t.Datatype + ">"
		default:
			return s
		}
	case jelly.TermTriple:
		return "<< " + FormatTerm(t.Quoted[0]) + " " + FormatTerm(t.Quoted[1]) + " " +
			FormatTerm(t.Quoted[2]) + " >>"
	default:
		return ""
	}
}

func escapeLiteral(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// FormatStatement renders a statement as one N-Triples or N-Quads
// line, including the terminating dot and newline.
func FormatStatement(st Statement) string {
	line := FormatTerm(st.Subject) + " " + FormatTerm(st.Predicate) + " " + FormatTerm(st.Object)
	if st.IsQuad() && st.Graph.Kind != jelly.TermDefaultGraph {
		line += " " + FormatTerm(st.Graph)
	}
	return line + " .\n"
}
