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
	"github.com/jelly-rdf/jelly-go/rdfpb"
)

// Decoder is the inverse of the stream writers: it maintains the
// mirror lookup tables and per-slot term cache, and replays decoded
// events into an adapter.
//
// Like the encoder, a decoder is bound to one stream and is not safe
// for concurrent use.
type Decoder[T any] struct {
	adapter   Adapter[T]
	options   *rdfpb.StreamOptions
	names     lookupDecoder
	prefixes  lookupDecoder
	datatypes lookupDecoder
	repeated  [slotCount]T
	seen      [slotCount]bool
}

// NewDecoder builds a decoder for a stream with the given validated
// options row.
func NewDecoder[T any](options *rdfpb.StreamOptions, adapter Adapter[T]) (*Decoder[T], error) {
	if err := validateStreamOptions(options); err != nil {
		return nil, err
	}
	return &Decoder[T]{
		adapter:   adapter,
		options:   options,
		names:     newLookupDecoder(options.MaxNameTableSize),
		prefixes:  newLookupDecoder(options.MaxPrefixTableSize),
		datatypes: newLookupDecoder(options.MaxDatatypeTableSize),
	}, nil
}

// Options returns the stream options the decoder was built with.
func (d *Decoder[T]) Options() *rdfpb.StreamOptions { return d.options }

// DecodeFrame decodes every row of a frame in order and then fires
// the adapter's Frame callback with the frame metadata.
func (d *Decoder[T]) DecodeFrame(f *rdfpb.StreamFrame) error {
	if len(f.Rows) == 0 {
		return conformancef("frame has no rows")
	}
	for i := range f.Rows {
		if err := d.DecodeRow(&f.Rows[i]); err != nil {
			return err
		}
	}
	return d.adapter.Frame(f.Metadata)
}

// DecodeRow dispatches one row on its kind.
func (d *Decoder[T]) DecodeRow(row *rdfpb.StreamRow) error {
	switch row.Kind {
	case rdfpb.RowOptions:
		return d.checkOptions(row.Options)
	case rdfpb.RowName:
		return d.names.assign(row.Name.ID, row.Name.Value)
	case rdfpb.RowPrefix:
		return d.prefixes.assign(row.Prefix.ID, row.Prefix.Value)
	case rdfpb.RowDatatype:
		return d.datatypes.assign(row.Datatype.ID, row.Datatype.Value)
	case rdfpb.RowTriple:
		return d.decodeTriple(row.Triple)
	case rdfpb.RowQuad:
		return d.decodeQuad(row.Quad)
	case rdfpb.RowGraphStart:
		return d.decodeGraphStart(row.GraphStart)
	case rdfpb.RowGraphEnd:
		return d.adapter.GraphEnd()
	case rdfpb.RowNamespace:
		return d.decodeNamespace(row.Namespace)
	default:
		return conformancef("frame contains an empty stream row")
	}
}

// checkOptions revalidates a repeated options row against the stream's
// established options. Table sizes must match exactly: the mirror
// tables were sized once at stream start.
func (d *Decoder[T]) checkOptions(o *rdfpb.StreamOptions) error {
	if o.MaxNameTableSize != d.options.MaxNameTableSize ||
		o.MaxPrefixTableSize != d.options.MaxPrefixTableSize ||
		o.MaxDatatypeTableSize != d.options.MaxDatatypeTableSize {
		return conformancef("options row changes lookup table sizes mid-stream")
	}
	return validateStreamOptions(o)
}

// decodeIRI resolves an IRI term via the mirror tables.
func (d *Decoder[T]) decodeIRI(iri *rdfpb.IRI) (string, error) {
	name, err := d.names.nameTerm(iri.NameID)
	if err != nil {
		return "", err
	}
	prefix, err := d.prefixes.prefixTerm(iri.PrefixID)
	if err != nil {
		return "", err
	}
	return prefix + name, nil
}

// decodeTerm resolves one wire term into the adapter's representation.
func (d *Decoder[T]) decodeTerm(t *rdfpb.Term) (T, error) {
	var zero T
	switch t.Kind {
	case rdfpb.TermIRI:
		iri, err := d.decodeIRI(t.IRI)
		if err != nil {
			return zero, err
		}
		return d.adapter.IRI(iri)
	case rdfpb.TermBnode:
		return d.adapter.BlankNode(t.Bnode)
	case rdfpb.TermLiteral:
		lit := t.Literal
		if lit.Langtag != "" {
			return d.adapter.Literal(lit.Lex, lit.Langtag, "")
		}
		if lit.Datatype != 0 {
			datatype, err := d.datatypes.datatypeTerm(lit.Datatype)
			if err != nil {
				return zero, err
			}
			return d.adapter.Literal(lit.Lex, "", datatype)
		}
		return d.adapter.Literal(lit.Lex, "", "")
	case rdfpb.TermDefaultGraph:
		return d.adapter.DefaultGraph()
	case rdfpb.TermTripleTerm:
		if !d.options.RdfStar {
			return zero, conformancef("quoted triple on a stream without rdf_star")
		}
		return d.decodeQuoted(t.TripleTerm)
	default:
		return zero, conformancef("statement slot carries no term")
	}
}

// decodeQuoted resolves a quoted triple term. All three slots must be
// present: quoted triples are exempt from slot repetition.
func (d *Decoder[T]) decodeQuoted(t *rdfpb.Triple) (T, error) {
	var zero T
	terms := make([]T, 3)
	for i, slot := range []*rdfpb.Term{&t.Subject, &t.Predicate, &t.Object} {
		if !slot.IsSet() {
			return zero, conformancef("quoted triple with an elided slot")
		}
		term, err := d.decodeTerm(slot)
		if err != nil {
			return zero, err
		}
		terms[i] = term
	}
	return d.adapter.QuotedTriple(terms[0], terms[1], terms[2])
}

// decodeSlot resolves a statement slot, falling back to the remembered
// term when the slot is elided.
func (d *Decoder[T]) decodeSlot(slot int, t *rdfpb.Term) (T, error) {
	if !t.IsSet() {
		var zero T
		if !d.seen[slot] {
			return zero, conformancef("statement repeats a slot before any term was set")
		}
		return d.repeated[slot], nil
	}
	term, err := d.decodeTerm(t)
	if err != nil {
		var zero T
		return zero, err
	}
	d.repeated[slot] = term
	d.seen[slot] = true
	return term, nil
}

func (d *Decoder[T]) decodeTriple(t *rdfpb.Triple) error {
	s, err := d.decodeSlot(slotS, &t.Subject)
	if err != nil {
		return err
	}
	p, err := d.decodeSlot(slotP, &t.Predicate)
	if err != nil {
		return err
	}
	o, err := d.decodeSlot(slotO, &t.Object)
	if err != nil {
		return err
	}
	return d.adapter.Triple(s, p, o)
}

func (d *Decoder[T]) decodeQuad(q *rdfpb.Quad) error {
	s, err := d.decodeSlot(slotS, &q.Subject)
	if err != nil {
		return err
	}
	p, err := d.decodeSlot(slotP, &q.Predicate)
	if err != nil {
		return err
	}
	o, err := d.decodeSlot(slotO, &q.Object)
	if err != nil {
		return err
	}
	g, err := d.decodeSlot(slotG, &q.Graph)
	if err != nil {
		return err
	}
	return d.adapter.Quad(s, p, o, g)
}

// decodeGraphStart resolves the graph name. Like the encoder, it does
// not touch the per-slot cache.
func (d *Decoder[T]) decodeGraphStart(g *rdfpb.GraphStart) error {
	if !g.Graph.IsSet() {
		return conformancef("graph start without a graph name")
	}
	term, err := d.decodeTerm(&g.Graph)
	if err != nil {
		return err
	}
	return d.adapter.GraphStart(term)
}

func (d *Decoder[T]) decodeNamespace(n *rdfpb.NamespaceDecl) error {
	if n.Value == nil {
		return conformancef("namespace declaration without an IRI")
	}
	iri, err := d.decodeIRI(n.Value)
	if err != nil {
		return err
	}
	return d.adapter.NamespaceDeclaration(n.Name, iri)
}
