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

// Package rdfpb contains hand-maintained message types for the Jelly
// protocol, wire-compatible with the published rdf.proto schema.
//
// The types here are not generated. The codec needs precise control over
// which fields are present on the wire (index 0 is a semantic sentinel,
// not merely a proto3 default), so the messages are plain structs with
// explicit tagged unions for every oneof, marshalled directly with
// [google.golang.org/protobuf/encoding/protowire].
package rdfpb

// PhysicalStreamType describes the kind of statement rows a stream
// carries. Numeric values match rdf.proto.
type PhysicalStreamType int32

const (
	PhysicalUnspecified PhysicalStreamType = 0
	PhysicalTriples     PhysicalStreamType = 1
	PhysicalQuads       PhysicalStreamType = 2
	PhysicalGraphs      PhysicalStreamType = 3
)

// String implements [fmt.Stringer].
func (t PhysicalStreamType) String() string {
	switch t {
	case PhysicalTriples:
		return "TRIPLES"
	case PhysicalQuads:
		return "QUADS"
	case PhysicalGraphs:
		return "GRAPHS"
	default:
		return "UNSPECIFIED"
	}
}

// LogicalStreamType describes how statements are grouped into frames.
// Numeric values match rdf.proto: subtypes extend their base type by
// decimal nesting (e.g. NAMED_GRAPHS = 14 is a subtype of DATASETS = 4).
type LogicalStreamType int32

const (
	LogicalUnspecified            LogicalStreamType = 0
	LogicalFlatTriples            LogicalStreamType = 1
	LogicalFlatQuads              LogicalStreamType = 2
	LogicalGraphs                 LogicalStreamType = 3
	LogicalDatasets               LogicalStreamType = 4
	LogicalSubjectGraphs          LogicalStreamType = 13
	LogicalNamedGraphs            LogicalStreamType = 14
	LogicalTimestampedNamedGraphs LogicalStreamType = 114
)

// String implements [fmt.Stringer].
func (t LogicalStreamType) String() string {
	switch t {
	case LogicalFlatTriples:
		return "FLAT_TRIPLES"
	case LogicalFlatQuads:
		return "FLAT_QUADS"
	case LogicalGraphs:
		return "GRAPHS"
	case LogicalDatasets:
		return "DATASETS"
	case LogicalSubjectGraphs:
		return "SUBJECT_GRAPHS"
	case LogicalNamedGraphs:
		return "NAMED_GRAPHS"
	case LogicalTimestampedNamedGraphs:
		return "TIMESTAMPED_NAMED_GRAPHS"
	default:
		return "UNSPECIFIED"
	}
}

// StreamOptions is the options row that must open every stream.
type StreamOptions struct {
	StreamName            string
	PhysicalType          PhysicalStreamType
	GeneralizedStatements bool
	RdfStar               bool
	MaxNameTableSize      uint32
	MaxPrefixTableSize    uint32
	MaxDatatypeTableSize  uint32
	LogicalType           LogicalStreamType
	Version               uint32
}

// IRI is a term referencing the prefix and name lookup tables.
//
// Index 0 is the delta sentinel: for PrefixID it means "same prefix as
// the previous IRI" (or the empty prefix if there is none), for NameID
// it means "previous name index + 1".
type IRI struct {
	PrefixID uint32
	NameID   uint32
}

// Literal is an RDF literal. At most one of Langtag and Datatype is
// set; Datatype 0 means the default string datatype.
type Literal struct {
	Lex      string
	Langtag  string
	Datatype uint32
}

// TermKind discriminates the term union in statement slots.
type TermKind uint8

const (
	// TermUnset marks an elided slot: the decoder reuses the term from
	// the same slot of the previous statement.
	TermUnset TermKind = iota
	TermIRI
	TermBnode
	TermLiteral
	TermTripleTerm
	TermDefaultGraph
)

// Term is one slot of a statement row.
//
// Exactly one of the payload fields corresponding to Kind is
// meaningful. TripleTerm is only legal on RDF-star streams, and
// DefaultGraph only in the graph slot.
type Term struct {
	Kind       TermKind
	IRI        *IRI
	Bnode      string
	Literal    *Literal
	TripleTerm *Triple
}

// IsSet reports whether the slot carries a term at all.
func (t *Term) IsSet() bool { return t.Kind != TermUnset }

// Triple is a statement row with up to three term slots. Unset slots
// repeat the previous statement's slot.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// Quad is a statement row with up to four term slots.
type Quad struct {
	Subject   Term
	Predicate Term
	Object    Term
	Graph     Term
}

// GraphStart marks the beginning of a graph; the rows up to the next
// GraphEnd belong to it.
type GraphStart struct {
	Graph Term
}

// GraphEnd marks the end of the current graph.
type GraphEnd struct{}

// NamespaceDecl associates a prefix label with a namespace IRI.
type NamespaceDecl struct {
	Name  string
	Value *IRI
}

// NameEntry, PrefixEntry and DatatypeEntry populate the lookup tables.
// ID 0 means "previous assigned index + 1".
type NameEntry struct {
	ID    uint32
	Value string
}

// PrefixEntry populates the prefix lookup table.
type PrefixEntry struct {
	ID    uint32
	Value string
}

// DatatypeEntry populates the datatype lookup table.
type DatatypeEntry struct {
	ID    uint32
	Value string
}

// RowKind discriminates the row union of a stream frame.
type RowKind uint8

const (
	RowUnset RowKind = iota
	RowOptions
	RowTriple
	RowQuad
	RowGraphStart
	RowGraphEnd
	RowNamespace
	RowName
	RowPrefix
	RowDatatype
)

// String implements [fmt.Stringer].
func (k RowKind) String() string {
	switch k {
	case RowOptions:
		return "options"
	case RowTriple:
		return "triple"
	case RowQuad:
		return "quad"
	case RowGraphStart:
		return "graph_start"
	case RowGraphEnd:
		return "graph_end"
	case RowNamespace:
		return "namespace"
	case RowName:
		return "name"
	case RowPrefix:
		return "prefix"
	case RowDatatype:
		return "datatype"
	default:
		return "unset"
	}
}

// StreamRow is one element of a frame: a tagged union over the closed
// set of row kinds. The field matching Kind is set; all others are nil.
type StreamRow struct {
	Kind       RowKind
	Options    *StreamOptions
	Triple     *Triple
	Quad       *Quad
	GraphStart *GraphStart
	GraphEnd   *GraphEnd
	Namespace  *NamespaceDecl
	Name       *NameEntry
	Prefix     *PrefixEntry
	Datatype   *DatatypeEntry
}

// StreamFrame is the unit of I/O: an ordered list of rows plus an
// optional metadata map handed to the consumer as-is.
type StreamFrame struct {
	Rows     []StreamRow
	Metadata map[string][]byte
}

// Rows wrap themselves for appending convenience.

// OptionsRow wraps o into a stream row.
func OptionsRow(o *StreamOptions) StreamRow { return StreamRow{Kind: RowOptions, Options: o} }

// TripleRow wraps t into a stream row.
func TripleRow(t *Triple) StreamRow { return StreamRow{Kind: RowTriple, Triple: t} }

// QuadRow wraps q into a stream row.
func QuadRow(q *Quad) StreamRow { return StreamRow{Kind: RowQuad, Quad: q} }

// GraphStartRow wraps g into a stream row.
func GraphStartRow(g *GraphStart) StreamRow { return StreamRow{Kind: RowGraphStart, GraphStart: g} }

// GraphEndRow returns a graph-end stream row.
func GraphEndRow() StreamRow { return StreamRow{Kind: RowGraphEnd, GraphEnd: &GraphEnd{}} }

// NamespaceRow wraps n into a stream row.
func NamespaceRow(n *NamespaceDecl) StreamRow { return StreamRow{Kind: RowNamespace, Namespace: n} }

// NameRow wraps e into a stream row.
func NameRow(e *NameEntry) StreamRow { return StreamRow{Kind: RowName, Name: e} }

// PrefixRow wraps e into a stream row.
func PrefixRow(e *PrefixEntry) StreamRow { return StreamRow{Kind: RowPrefix, Prefix: e} }

// DatatypeRow wraps e into a stream row.
func DatatypeRow(e *DatatypeEntry) StreamRow { return StreamRow{Kind: RowDatatype, Datatype: e} }
