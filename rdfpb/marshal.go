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

package rdfpb

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers, as published in rdf.proto. The row numbers 7, 8 and
// 12-14 are reserved by the schema and must stay unused.
const (
	frameRows     protowire.Number = 1
	frameMetadata protowire.Number = 15

	rowOptions    protowire.Number = 1
	rowTriple     protowire.Number = 2
	rowQuad       protowire.Number = 3
	rowGraphStart protowire.Number = 4
	rowGraphEnd   protowire.Number = 5
	rowNamespace  protowire.Number = 6
	rowName       protowire.Number = 9
	rowPrefix     protowire.Number = 10
	rowDatatype   protowire.Number = 11

	optStreamName       protowire.Number = 1
	optPhysicalType     protowire.Number = 2
	optGeneralized      protowire.Number = 3
	optRdfStar          protowire.Number = 4
	optMaxNameTable     protowire.Number = 9
	optMaxPrefixTable   protowire.Number = 10
	optMaxDatatypeTable protowire.Number = 11
	optLogicalType      protowire.Number = 14
	optVersion          protowire.Number = 15

	// Statement slots: each slot is a run of four consecutive numbers,
	// one per term kind.
	slotSubject   protowire.Number = 1
	slotPredicate protowire.Number = 5
	slotObject    protowire.Number = 9
	slotGraph     protowire.Number = 13

	iriPrefixID protowire.Number = 1
	iriNameID   protowire.Number = 2

	litLex      protowire.Number = 1
	litLangtag  protowire.Number = 2
	litDatatype protowire.Number = 3

	entryID    protowire.Number = 1
	entryValue protowire.Number = 2

	nsName  protowire.Number = 1
	nsValue protowire.Number = 2

	mapKey   protowire.Number = 1
	mapValue protowire.Number = 2
)

// Offsets of the term kinds within a statement slot.
const (
	termOffIRI        = 0
	termOffBnode      = 1
	termOffLiteral    = 2
	termOffTripleTerm = 3
	// The graph slot orders its union differently: the default graph
	// takes the literal's place and pushes it one number up.
	termOffDefaultGraph = 2
	termOffGraphLiteral = 3
)

func sizeVarintField(num protowire.Number, v uint64) int {
	if v == 0 {
		return 0
	}
	return protowire.SizeTag(num) + protowire.SizeVarint(v)
}

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func sizeStringField(num protowire.Number, s string) int {
	if s == "" {
		return 0
	}
	return protowire.SizeTag(num) + protowire.SizeBytes(len(s))
}

func appendStringField(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func sizeMessageField(num protowire.Number, size int) int {
	return protowire.SizeTag(num) + protowire.SizeBytes(size)
}

func appendMessageTag(b []byte, num protowire.Number, size int) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendVarint(b, uint64(size))
}

func (o *StreamOptions) size() int {
	return sizeStringField(optStreamName, o.StreamName) +
		sizeVarintField(optPhysicalType, uint64(o.PhysicalType)) +
		sizeVarintField(optGeneralized, boolVarint(o.GeneralizedStatements)) +
		sizeVarintField(optRdfStar, boolVarint(o.RdfStar)) +
		sizeVarintField(optMaxNameTable, uint64(o.MaxNameTableSize)) +
		sizeVarintField(optMaxPrefixTable, uint64(o.MaxPrefixTableSize)) +
		sizeVarintField(optMaxDatatypeTable, uint64(o.MaxDatatypeTableSize)) +
		sizeVarintField(optLogicalType, uint64(o.LogicalType)) +
		sizeVarintField(optVersion, uint64(o.Version))
}

func (o *StreamOptions) appendTo(b []byte) []byte {
	b = appendStringField(b, optStreamName, o.StreamName)
	b = appendVarintField(b, optPhysicalType, uint64(o.PhysicalType))
	b = appendVarintField(b, optGeneralized, boolVarint(o.GeneralizedStatements))
	b = appendVarintField(b, optRdfStar, boolVarint(o.RdfStar))
	b = appendVarintField(b, optMaxNameTable, uint64(o.MaxNameTableSize))
	b = appendVarintField(b, optMaxPrefixTable, uint64(o.MaxPrefixTableSize))
	b = appendVarintField(b, optMaxDatatypeTable, uint64(o.MaxDatatypeTableSize))
	b = appendVarintField(b, optLogicalType, uint64(o.LogicalType))
	b = appendVarintField(b, optVersion, uint64(o.Version))
	return b
}

func boolVarint(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}

func (i *IRI) size() int {
	return sizeVarintField(iriPrefixID, uint64(i.PrefixID)) +
		sizeVarintField(iriNameID, uint64(i.NameID))
}

func (i *IRI) appendTo(b []byte) []byte {
	b = appendVarintField(b, iriPrefixID, uint64(i.PrefixID))
	b = appendVarintField(b, iriNameID, uint64(i.NameID))
	return b
}

func (l *Literal) size() int {
	return sizeStringField(litLex, l.Lex) +
		sizeStringField(litLangtag, l.Langtag) +
		sizeVarintField(litDatatype, uint64(l.Datatype))
}

func (l *Literal) appendTo(b []byte) []byte {
	b = appendStringField(b, litLex, l.Lex)
	b = appendStringField(b, litLangtag, l.Langtag)
	b = appendVarintField(b, litDatatype, uint64(l.Datatype))
	return b
}

// sizeIn reports the encoded size of the term in a slot starting at
// base, including its own tag. Unset terms take no bytes: slot elision
// is literally field absence on the wire.
func (t *Term) sizeIn(base protowire.Number, graphSlot bool) int {
	switch t.Kind {
	case TermIRI:
		return sizeMessageField(base+termOffIRI, t.IRI.size())
	case TermBnode:
		// Unlike scalar string fields, an empty blank-node label keeps
		// its tag: it is a oneof member and must stay present.
		return protowire.SizeTag(base+termOffBnode) + protowire.SizeBytes(len(t.Bnode))
	case TermLiteral:
		off := protowire.Number(termOffLiteral)
		if graphSlot {
			off = termOffGraphLiteral
		}
		return sizeMessageField(base+off, t.Literal.size())
	case TermTripleTerm:
		return sizeMessageField(base+termOffTripleTerm, t.TripleTerm.size())
	case TermDefaultGraph:
		return sizeMessageField(base+termOffDefaultGraph, 0)
	default:
		return 0
	}
}

func (t *Term) appendIn(b []byte, base protowire.Number, graphSlot bool) []byte {
	switch t.Kind {
	case TermIRI:
		b = appendMessageTag(b, base+termOffIRI, t.IRI.size())
		b = t.IRI.appendTo(b)
	case TermBnode:
		b = protowire.AppendTag(b, base+termOffBnode, protowire.BytesType)
		b = protowire.AppendString(b, t.Bnode)
	case TermLiteral:
		off := protowire.Number(termOffLiteral)
		if graphSlot {
			off = termOffGraphLiteral
		}
		b = appendMessageTag(b, base+off, t.Literal.size())
		b = t.Literal.appendTo(b)
	case TermTripleTerm:
		b = appendMessageTag(b, base+termOffTripleTerm, t.TripleTerm.size())
		b = t.TripleTerm.appendTo(b)
	case TermDefaultGraph:
		b = appendMessageTag(b, base+termOffDefaultGraph, 0)
	}
	return b
}

func (t *Triple) size() int {
	return t.Subject.sizeIn(slotSubject, false) +
		t.Predicate.sizeIn(slotPredicate, false) +
		t.Object.sizeIn(slotObject, false)
}

func (t *Triple) appendTo(b []byte) []byte {
	b = t.Subject.appendIn(b, slotSubject, false)
	b = t.Predicate.appendIn(b, slotPredicate, false)
	b = t.Object.appendIn(b, slotObject, false)
	return b
}

func (q *Quad) size() int {
	return q.Subject.sizeIn(slotSubject, false) +
		q.Predicate.sizeIn(slotPredicate, false) +
		q.Object.sizeIn(slotObject, false) +
		q.Graph.sizeIn(slotGraph, true)
}

func (q *Quad) appendTo(b []byte) []byte {
	b = q.Subject.appendIn(b, slotSubject, false)
	b = q.Predicate.appendIn(b, slotPredicate, false)
	b = q.Object.appendIn(b, slotObject, false)
	b = q.Graph.appendIn(b, slotGraph, true)
	return b
}

func (g *GraphStart) size() int {
	return g.Graph.sizeIn(slotSubject, true)
}

func (g *GraphStart) appendTo(b []byte) []byte {
	return g.Graph.appendIn(b, slotSubject, true)
}

func (n *NamespaceDecl) size() int {
	size := sizeStringField(nsName, n.Name)
	if n.Value != nil {
		size += sizeMessageField(nsValue, n.Value.size())
	}
	return size
}

func (n *NamespaceDecl) appendTo(b []byte) []byte {
	b = appendStringField(b, nsName, n.Name)
	if n.Value != nil {
		b = appendMessageTag(b, nsValue, n.Value.size())
		b = n.Value.appendTo(b)
	}
	return b
}

func entrySize(id uint32, value string) int {
	return sizeVarintField(entryID, uint64(id)) + sizeStringField(entryValue, value)
}

func entryAppend(b []byte, id uint32, value string) []byte {
	b = appendVarintField(b, entryID, uint64(id))
	b = appendStringField(b, entryValue, value)
	return b
}

func (r *StreamRow) size() int {
	switch r.Kind {
	case RowOptions:
		return sizeMessageField(rowOptions, r.Options.size())
	case RowTriple:
		return sizeMessageField(rowTriple, r.Triple.size())
	case RowQuad:
		return sizeMessageField(rowQuad, r.Quad.size())
	case RowGraphStart:
		return sizeMessageField(rowGraphStart, r.GraphStart.size())
	case RowGraphEnd:
		return sizeMessageField(rowGraphEnd, 0)
	case RowNamespace:
		return sizeMessageField(rowNamespace, r.Namespace.size())
	case RowName:
		return sizeMessageField(rowName, entrySize(r.Name.ID, r.Name.Value))
	case RowPrefix:
		return sizeMessageField(rowPrefix, entrySize(r.Prefix.ID, r.Prefix.Value))
	case RowDatatype:
		return sizeMessageField(rowDatatype, entrySize(r.Datatype.ID, r.Datatype.Value))
	default:
		return 0
	}
}

func (r *StreamRow) appendTo(b []byte) []byte {
	switch r.Kind {
	case RowOptions:
		b = appendMessageTag(b, rowOptions, r.Options.size())
		b = r.Options.appendTo(b)
	case RowTriple:
		b = appendMessageTag(b, rowTriple, r.Triple.size())
		b = r.Triple.appendTo(b)
	case RowQuad:
		b = appendMessageTag(b, rowQuad, r.Quad.size())
		b = r.Quad.appendTo(b)
	case RowGraphStart:
		b = appendMessageTag(b, rowGraphStart, r.GraphStart.size())
		b = r.GraphStart.appendTo(b)
	case RowGraphEnd:
		b = appendMessageTag(b, rowGraphEnd, 0)
	case RowNamespace:
		b = appendMessageTag(b, rowNamespace, r.Namespace.size())
		b = r.Namespace.appendTo(b)
	case RowName:
		b = appendMessageTag(b, rowName, entrySize(r.Name.ID, r.Name.Value))
		b = entryAppend(b, r.Name.ID, r.Name.Value)
	case RowPrefix:
		b = appendMessageTag(b, rowPrefix, entrySize(r.Prefix.ID, r.Prefix.Value))
		b = entryAppend(b, r.Prefix.ID, r.Prefix.Value)
	case RowDatatype:
		b = appendMessageTag(b, rowDatatype, entrySize(r.Datatype.ID, r.Datatype.Value))
		b = entryAppend(b, r.Datatype.ID, r.Datatype.Value)
	}
	return b
}

func metadataEntrySize(k string, v []byte) int {
	return protowire.SizeTag(mapKey) + protowire.SizeBytes(len(k)) +
		protowire.SizeTag(mapValue) + protowire.SizeBytes(len(v))
}

// Size reports the encoded size of the frame in bytes.
func (f *StreamFrame) Size() int {
	var size int
	for i := range f.Rows {
		size += sizeMessageField(frameRows, f.Rows[i].size())
	}
	for k, v := range f.Metadata {
		size += sizeMessageField(frameMetadata, metadataEntrySize(k, v))
	}
	return size
}

// MarshalAppend appends the wire encoding of the frame to b.
func (f *StreamFrame) MarshalAppend(b []byte) []byte {
	for i := range f.Rows {
		row := &f.Rows[i]
		b = appendMessageTag(b, frameRows, row.size())
		b = row.appendTo(b)
	}
	for k, v := range f.Metadata {
		b = appendMessageTag(b, frameMetadata, metadataEntrySize(k, v))
		b = protowire.AppendTag(b, mapKey, protowire.BytesType)
		b = protowire.AppendString(b, k)
		b = protowire.AppendTag(b, mapValue, protowire.BytesType)
		b = protowire.AppendBytes(b, v)
	}
	return b
}

// Marshal returns the wire encoding of the frame.
func (f *StreamFrame) Marshal() []byte {
	return f.MarshalAppend(make([]byte, 0, f.Size()))
}
