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

// fieldLoop walks the fields of a message body, handing each field to
// visit. Unknown fields are skipped, matching proto semantics.
func fieldLoop(b []byte, visit func(num protowire.Number, typ protowire.Type, body []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		n, err := visit(num, typ, b)
		if err != nil {
			return err
		}
		if n == 0 {
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
	}
	return nil
}

func consumeVarint(b []byte) (uint64, int, error) {
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, protowire.ParseError(n)
	}
	return v, n, nil
}

func consumeBytes(b []byte) ([]byte, int, error) {
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, protowire.ParseError(n)
	}
	return v, n, nil
}

// Unmarshal parses a stream options message body.
func (o *StreamOptions) Unmarshal(b []byte) error {
	return fieldLoop(b, func(num protowire.Number, typ protowire.Type, body []byte) (int, error) {
		switch {
		case num == optStreamName && typ == protowire.BytesType:
			v, n, err := consumeBytes(body)
			o.StreamName = string(v)
			return n, err
		case num == optPhysicalType && typ == protowire.VarintType:
			v, n, err := consumeVarint(body)
			o.PhysicalType = PhysicalStreamType(v)
			return n, err
		case num == optGeneralized && typ == protowire.VarintType:
			v, n, err := consumeVarint(body)
			o.GeneralizedStatements = v != 0
			return n, err
		case num == optRdfStar && typ == protowire.VarintType:
			v, n, err := consumeVarint(body)
			o.RdfStar = v != 0
			return n, err
		case num == optMaxNameTable && typ == protowire.VarintType:
			v, n, err := consumeVarint(body)
			o.MaxNameTableSize = uint32(v)
			return n, err
		case num == optMaxPrefixTable && typ == protowire.VarintType:
			v, n, err := consumeVarint(body)
			o.MaxPrefixTableSize = uint32(v)
			return n, err
		case num == optMaxDatatypeTable && typ == protowire.VarintType:
			v, n, err := consumeVarint(body)
			o.MaxDatatypeTableSize = uint32(v)
			return n, err
		case num == optLogicalType && typ == protowire.VarintType:
			v, n, err := consumeVarint(body)
			o.LogicalType = LogicalStreamType(v)
			return n, err
		case num == optVersion && typ == protowire.VarintType:
			v, n, err := consumeVarint(body)
			o.Version = uint32(v)
			return n, err
		}
		return 0, nil
	})
}

func (i *IRI) Unmarshal(b []byte) error {
	return fieldLoop(b, func(num protowire.Number, typ protowire.Type, body []byte) (int, error) {
		switch {
		case num == iriPrefixID && typ == protowire.VarintType:
			v, n, err := consumeVarint(body)
			i.PrefixID = uint32(v)
			return n, err
		case num == iriNameID && typ == protowire.VarintType:
			v, n, err := consumeVarint(body)
			i.NameID = uint32(v)
			return n, err
		}
		return 0, nil
	})
}

func (l *Literal) Unmarshal(b []byte) error {
	return fieldLoop(b, func(num protowire.Number, typ protowire.Type, body []byte) (int, error) {
		switch {
		case num == litLex && typ == protowire.BytesType:
			v, n, err := consumeBytes(body)
			l.Lex = string(v)
			return n, err
		case num == litLangtag && typ == protowire.BytesType:
			v, n, err := consumeBytes(body)
			l.Langtag = string(v)
			return n, err
		case num == litDatatype && typ == protowire.VarintType:
			v, n, err := consumeVarint(body)
			l.Datatype = uint32(v)
			return n, err
		}
		return 0, nil
	})
}

// unmarshalTermField decodes one statement-slot field into t, if num
// falls inside the slot starting at base. Reports whether it matched.
func (t *Term) unmarshalTermField(num protowire.Number, typ protowire.Type, body []byte, base protowire.Number, graphSlot bool) (bool, int, error) {
	if num < base || num > base+3 || typ != protowire.BytesType {
		return false, 0, nil
	}
	v, n, err := consumeBytes(body)
	if err != nil {
		return true, 0, err
	}
	switch num - base {
	case termOffIRI:
		iri := new(IRI)
		if err := iri.Unmarshal(v); err != nil {
			return true, 0, err
		}
		*t = Term{Kind: TermIRI, IRI: iri}
	case termOffBnode:
		*t = Term{Kind: TermBnode, Bnode: string(v)}
	case 2:
		if graphSlot {
			*t = Term{Kind: TermDefaultGraph}
			break
		}
		lit := new(Literal)
		if err := lit.Unmarshal(v); err != nil {
			return true, 0, err
		}
		*t = Term{Kind: TermLiteral, Literal: lit}
	case 3:
		if graphSlot {
			lit := new(Literal)
			if err := lit.Unmarshal(v); err != nil {
				return true, 0, err
			}
			*t = Term{Kind: TermLiteral, Literal: lit}
			break
		}
		tt := new(Triple)
		if err := tt.Unmarshal(v); err != nil {
			return true, 0, err
		}
		*t = Term{Kind: TermTripleTerm, TripleTerm: tt}
	}
	return true, n, nil
}

func (t *Triple) Unmarshal(b []byte) error {
	return fieldLoop(b, func(num protowire.Number, typ protowire.Type, body []byte) (int, error) {
		for _, slot := range [...]struct {
			term *Term
			base protowire.Number
		}{
			{&t.Subject, slotSubject},
			{&t.Predicate, slotPredicate},
			{&t.Object, slotObject},
		} {
			if ok, n, err := slot.term.unmarshalTermField(num, typ, body, slot.base, false); ok {
				return n, err
			}
		}
		return 0, nil
	})
}

func (q *Quad) Unmarshal(b []byte) error {
	return fieldLoop(b, func(num protowire.Number, typ protowire.Type, body []byte) (int, error) {
		for _, slot := range [...]struct {
			term  *Term
			base  protowire.Number
			graph bool
		}{
			{&q.Subject, slotSubject, false},
			{&q.Predicate, slotPredicate, false},
			{&q.Object, slotObject, false},
			{&q.Graph, slotGraph, true},
		} {
			if ok, n, err := slot.term.unmarshalTermField(num, typ, body, slot.base, slot.graph); ok {
				return n, err
			}
		}
		return 0, nil
	})
}

func (g *GraphStart) Unmarshal(b []byte) error {
	return fieldLoop(b, func(num protowire.Number, typ protowire.Type, body []byte) (int, error) {
		if ok, n, err := g.Graph.unmarshalTermField(num, typ, body, slotSubject, true); ok {
			return n, err
		}
		return 0, nil
	})
}

func (n *NamespaceDecl) Unmarshal(b []byte) error {
	return fieldLoop(b, func(num protowire.Number, typ protowire.Type, body []byte) (int, error) {
		switch {
		case num == nsName && typ == protowire.BytesType:
			v, sz, err := consumeBytes(body)
			n.Name = string(v)
			return sz, err
		case num == nsValue && typ == protowire.BytesType:
			v, sz, err := consumeBytes(body)
			if err != nil {
				return 0, err
			}
			n.Value = new(IRI)
			return sz, n.Value.Unmarshal(v)
		}
		return 0, nil
	})
}

func unmarshalEntry(b []byte) (id uint32, value string, err error) {
	err = fieldLoop(b, func(num protowire.Number, typ protowire.Type, body []byte) (int, error) {
		switch {
		case num == entryID && typ == protowire.VarintType:
			v, n, err := consumeVarint(body)
			id = uint32(v)
			return n, err
		case num == entryValue && typ == protowire.BytesType:
			v, n, err := consumeBytes(body)
			value = string(v)
			return n, err
		}
		return 0, nil
	})
	return id, value, err
}

// Unmarshal parses one stream row body.
func (r *StreamRow) Unmarshal(b []byte) error {
	return fieldLoop(b, func(num protowire.Number, typ protowire.Type, body []byte) (int, error) {
		if typ != protowire.BytesType {
			return 0, nil
		}
		v, n, err := consumeBytes(body)
		if err != nil {
			return 0, err
		}
		switch num {
		case rowOptions:
			r.Kind, r.Options = RowOptions, new(StreamOptions)
			return n, r.Options.Unmarshal(v)
		case rowTriple:
			r.Kind, r.Triple = RowTriple, new(Triple)
			return n, r.Triple.Unmarshal(v)
		case rowQuad:
			r.Kind, r.Quad = RowQuad, new(Quad)
			return n, r.Quad.Unmarshal(v)
		case rowGraphStart:
			r.Kind, r.GraphStart = RowGraphStart, new(GraphStart)
			return n, r.GraphStart.Unmarshal(v)
		case rowGraphEnd:
			r.Kind, r.GraphEnd = RowGraphEnd, new(GraphEnd)
			return n, nil
		case rowNamespace:
			r.Kind, r.Namespace = RowNamespace, new(NamespaceDecl)
			return n, r.Namespace.Unmarshal(v)
		case rowName:
			id, value, err := unmarshalEntry(v)
			r.Kind, r.Name = RowName, &NameEntry{ID: id, Value: value}
			return n, err
		case rowPrefix:
			id, value, err := unmarshalEntry(v)
			r.Kind, r.Prefix = RowPrefix, &PrefixEntry{ID: id, Value: value}
			return n, err
		case rowDatatype:
			id, value, err := unmarshalEntry(v)
			r.Kind, r.Datatype = RowDatatype, &DatatypeEntry{ID: id, Value: value}
			return n, err
		}
		return 0, nil
	})
}

// Unmarshal parses a stream frame. The frame is reset first; a frame
// value may be reused across calls.
func (f *StreamFrame) Unmarshal(b []byte) error {
	f.Rows = f.Rows[:0]
	f.Metadata = nil
	return fieldLoop(b, func(num protowire.Number, typ protowire.Type, body []byte) (int, error) {
		if typ != protowire.BytesType {
			return 0, nil
		}
		switch num {
		case frameRows:
			v, n, err := consumeBytes(body)
			if err != nil {
				return 0, err
			}
			var row StreamRow
			if err := row.Unmarshal(v); err != nil {
				return 0, err
			}
			f.Rows = append(f.Rows, row)
			return n, nil
		case frameMetadata:
			v, n, err := consumeBytes(body)
			if err != nil {
				return 0, err
			}
			key, value, err := unmarshalMetadataEntry(v)
			if err != nil {
				return 0, err
			}
			if f.Metadata == nil {
				f.Metadata = make(map[string][]byte)
			}
			f.Metadata[key] = value
			return n, nil
		}
		return 0, nil
	})
}

func unmarshalMetadataEntry(b []byte) (key string, value []byte, err error) {
	err = fieldLoop(b, func(num protowire.Number, typ protowire.Type, body []byte) (int, error) {
		if typ != protowire.BytesType {
			return 0, nil
		}
		v, n, err := consumeBytes(body)
		if err != nil {
			return 0, err
		}
		switch num {
		case mapKey:
			key = string(v)
		case mapValue:
			value = append([]byte(nil), v...)
		}
		return n, nil
	})
	return key, value, err
}
