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

package jelly

import (
	"strings"

	"github.com/jelly-rdf/jelly-go/rdfpb"
)

// SplitIRI splits an IRI into a prefix (including the separator) and a
// local name, at the last '#' if present, otherwise the last '/'. An
// IRI with neither separator is all name.
func SplitIRI(iri string) (prefix, name string) {
	if i := strings.LastIndexByte(iri, '#'); i >= 0 {
		return iri[:i+1], iri[i+1:]
	}
	if i := strings.LastIndexByte(iri, '/'); i >= 0 {
		return iri[:i+1], iri[i+1:]
	}
	return "", iri
}

// TermEncoder turns RDF terms into wire terms, maintaining the three
// lookup tables. Each encode call appends any required entry rows to
// rows and returns the extended slice together with the wire term to
// embed in the statement.
//
// A TermEncoder is stateful and bound to one stream; it is not safe
// for concurrent use.
type TermEncoder struct {
	names     lookupEncoder
	prefixes  lookupEncoder
	datatypes lookupEncoder
	rdfStar   bool
}

// NewTermEncoder returns an encoder with tables sized by preset.
func NewTermEncoder(preset LookupPreset, params StreamParameters) *TermEncoder {
	return &TermEncoder{
		names:     newLookupEncoder(preset.MaxNames),
		prefixes:  newLookupEncoder(preset.MaxPrefixes),
		datatypes: newLookupEncoder(preset.MaxDatatypes),
		rdfStar:   params.RdfStar,
	}
}

// EncodeIRI encodes an IRI: entry rows for a newly seen prefix or name
// first, then the two reference indices embedded in the term.
func (e *TermEncoder) EncodeIRI(iri string, rows []rdfpb.StreamRow) ([]rdfpb.StreamRow, *rdfpb.IRI, error) {
	prefix, name := SplitIRI(iri)
	if e.prefixes.disabled() {
		// Without a prefix table the whole IRI travels as the name.
		prefix, name = "", iri
	} else if prefix != "" {
		if id, emit := e.prefixes.entryIndex(prefix); emit {
			rows = append(rows, rdfpb.PrefixRow(&rdfpb.PrefixEntry{ID: id, Value: prefix}))
		}
	}
	if id, emit := e.names.entryIndex(name); emit {
		rows = append(rows, rdfpb.NameRow(&rdfpb.NameEntry{ID: id, Value: name}))
	}
	term := &rdfpb.IRI{
		PrefixID: e.prefixes.prefixTermIndex(prefix),
		NameID:   e.names.nameTermIndex(name),
	}
	return rows, term, nil
}

// EncodeLiteral encodes a literal, entering a non-default datatype
// into the datatype table. Encoding a typed literal with the table
// disabled is a conformance error.
func (e *TermEncoder) EncodeLiteral(t Term, rows []rdfpb.StreamRow) ([]rdfpb.StreamRow, *rdfpb.Literal, error) {
	if t.Language != "" && t.Datatype != "" {
		return rows, nil, assertf("literal carries both a language tag and a datatype")
	}
	lit := &rdfpb.Literal{Lex: t.Value, Langtag: t.Language}
	if t.Datatype != "" && t.Datatype != StringDatatypeIRI {
		if e.datatypes.disabled() {
			return rows, nil, conformancef(
				"cannot encode literal with datatype %s: the datatype table is disabled (size 0)", t.Datatype)
		}
		if id, emit := e.datatypes.entryIndex(t.Datatype); emit {
			rows = append(rows, rdfpb.DatatypeRow(&rdfpb.DatatypeEntry{ID: id, Value: t.Datatype}))
		}
		lit.Datatype = e.datatypes.datatypeTermIndex(t.Datatype)
	}
	return rows, lit, nil
}

// EncodeTerm encodes any term for a statement slot. graphSlot permits
// the default-graph term and rejects term kinds illegal in that slot.
func (e *TermEncoder) EncodeTerm(t Term, graphSlot bool, rows []rdfpb.StreamRow) ([]rdfpb.StreamRow, rdfpb.Term, error) {
	switch t.Kind {
	case TermIRI:
		rows, iri, err := e.EncodeIRI(t.Value, rows)
		return rows, rdfpb.Term{Kind: rdfpb.TermIRI, IRI: iri}, err
	case TermBlankNode:
		return rows, rdfpb.Term{Kind: rdfpb.TermBnode, Bnode: t.Value}, nil
	case TermLiteral:
		rows, lit, err := e.EncodeLiteral(t, rows)
		if err != nil {
			return rows, rdfpb.Term{}, err
		}
		return rows, rdfpb.Term{Kind: rdfpb.TermLiteral, Literal: lit}, nil
	case TermDefaultGraph:
		if !graphSlot {
			return rows, rdfpb.Term{}, conformancef("default graph term outside the graph slot")
		}
		return rows, rdfpb.Term{Kind: rdfpb.TermDefaultGraph}, nil
	case TermTriple:
		if !e.rdfStar {
			return rows, rdfpb.Term{}, conformancef("quoted triple on a stream without rdf_star")
		}
		if graphSlot {
			return rows, rdfpb.Term{}, conformancef("quoted triple in the graph slot")
		}
		return e.encodeQuoted(t, rows)
	default:
		return rows, rdfpb.Term{}, assertf("cannot encode term of kind %d", t.Kind)
	}
}

// encodeQuoted encodes a quoted triple term. Quoted triples always
// carry all three slots: repetition tracking does not apply inside
// them.
func (e *TermEncoder) encodeQuoted(t Term, rows []rdfpb.StreamRow) ([]rdfpb.StreamRow, rdfpb.Term, error) {
	if len(t.Quoted) != 3 {
		return rows, rdfpb.Term{}, assertf("quoted triple with %d terms", len(t.Quoted))
	}
	quoted := new(rdfpb.Triple)
	for i, slot := range []*rdfpb.Term{&quoted.Subject, &quoted.Predicate, &quoted.Object} {
		var (
			term rdfpb.Term
			err  error
		)
		rows, term, err = e.EncodeTerm(t.Quoted[i], false, rows)
		if err != nil {
			return rows, rdfpb.Term{}, err
		}
		*slot = term
	}
	return rows, rdfpb.Term{Kind: rdfpb.TermTripleTerm, TripleTerm: quoted}, nil
}

// Slot indices of the per-statement repetition cache.
const (
	slotS = iota
	slotP
	slotO
	slotG
	slotCount
)

// statementEncoder tracks per-slot repetition over a stream and
// assembles statement rows (component S). The cache lives for the
// whole stream: it is not reset at frame or graph boundaries.
type statementEncoder struct {
	terms    *TermEncoder
	repeated [slotCount]Term
	seen     [slotCount]bool
}

func newStatementEncoder(terms *TermEncoder) statementEncoder {
	return statementEncoder{terms: terms}
}

// encodeSlot encodes one slot, eliding it when the term repeats the
// previous statement's slot. Repetition takes priority over table
// bookkeeping: a repeated term leaves the lookup LRUs untouched.
func (s *statementEncoder) encodeSlot(slot int, t Term, rows []rdfpb.StreamRow) ([]rdfpb.StreamRow, rdfpb.Term, error) {
	if s.seen[slot] && s.repeated[slot].Equal(t) {
		return rows, rdfpb.Term{}, nil
	}
	rows, wire, err := s.terms.EncodeTerm(t, slot == slotG, rows)
	if err != nil {
		return rows, rdfpb.Term{}, err
	}
	s.repeated[slot] = t
	s.seen[slot] = true
	return rows, wire, err
}

// encodeTriple produces the entry rows followed by the triple row.
func (s *statementEncoder) encodeTriple(sub, pred, obj Term, rows []rdfpb.StreamRow) ([]rdfpb.StreamRow, error) {
	triple := new(rdfpb.Triple)
	var err error
	if rows, triple.Subject, err = s.encodeSlot(slotS, sub, rows); err != nil {
		return rows, err
	}
	if rows, triple.Predicate, err = s.encodeSlot(slotP, pred, rows); err != nil {
		return rows, err
	}
	if rows, triple.Object, err = s.encodeSlot(slotO, obj, rows); err != nil {
		return rows, err
	}
	return append(rows, rdfpb.TripleRow(triple)), nil
}

// encodeQuad produces the entry rows followed by the quad row.
func (s *statementEncoder) encodeQuad(sub, pred, obj, graph Term, rows []rdfpb.StreamRow) ([]rdfpb.StreamRow, error) {
	quad := new(rdfpb.Quad)
	var err error
	if rows, quad.Subject, err = s.encodeSlot(slotS, sub, rows); err != nil {
		return rows, err
	}
	if rows, quad.Predicate, err = s.encodeSlot(slotP, pred, rows); err != nil {
		return rows, err
	}
	if rows, quad.Object, err = s.encodeSlot(slotO, obj, rows); err != nil {
		return rows, err
	}
	if rows, quad.Graph, err = s.encodeSlot(slotG, graph, rows); err != nil {
		return rows, err
	}
	return append(rows, rdfpb.QuadRow(quad)), nil
}

// encodeGraphStart produces entry rows and a graph-start row. The
// graph name is encoded like a graph-slot term but does not
// participate in slot repetition.
func (s *statementEncoder) encodeGraphStart(graph Term, rows []rdfpb.StreamRow) ([]rdfpb.StreamRow, error) {
	rows, wire, err := s.terms.EncodeTerm(graph, true, rows)
	if err != nil {
		return rows, err
	}
	return append(rows, rdfpb.GraphStartRow(&rdfpb.GraphStart{Graph: wire})), nil
}

// encodeNamespace produces entry rows and a namespace-declaration row.
// Namespace declarations do not alter per-slot repetition state.
func (s *statementEncoder) encodeNamespace(name, iri string, rows []rdfpb.StreamRow) ([]rdfpb.StreamRow, error) {
	rows, wire, err := s.terms.EncodeIRI(iri, rows)
	if err != nil {
		return rows, err
	}
	return append(rows, rdfpb.NamespaceRow(&rdfpb.NamespaceDecl{Name: name, Value: wire})), nil
}
