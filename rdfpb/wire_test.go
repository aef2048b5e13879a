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

package rdfpb_test

import (
	"bytes"
	"testing"

	"github.com/protocolbuffers/protoscope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jelly-rdf/jelly-go/rdfpb"
)

func scan(t *testing.T, src string) []byte {
	t.Helper()
	b, err := protoscope.NewScanner(src).Exec()
	require.NoError(t, err)
	return b
}

// The frame's rows field is field 1, so every non-delimited stream
// opens with the 0x0A tag the auto-detection relies on.
func TestFrameFirstByte(t *testing.T) {
	t.Parallel()
	f := &rdfpb.StreamFrame{Rows: []rdfpb.StreamRow{
		rdfpb.OptionsRow(&rdfpb.StreamOptions{Version: 1}),
	}}
	b := f.Marshal()
	require.NotEmpty(t, b)
	assert.Equal(t, byte(0x0A), b[0])
}

func TestMarshalEntryRows(t *testing.T) {
	t.Parallel()
	f := &rdfpb.StreamFrame{Rows: []rdfpb.StreamRow{
		rdfpb.PrefixRow(&rdfpb.PrefixEntry{ID: 0, Value: "http://example.org/"}),
		rdfpb.NameRow(&rdfpb.NameEntry{ID: 0, Value: "foo"}),
		rdfpb.TripleRow(&rdfpb.Triple{
			Subject:   rdfpb.Term{Kind: rdfpb.TermIRI, IRI: &rdfpb.IRI{PrefixID: 1, NameID: 0}},
			Predicate: rdfpb.Term{Kind: rdfpb.TermBnode, Bnode: "b"},
			Object:    rdfpb.Term{Kind: rdfpb.TermLiteral, Literal: &rdfpb.Literal{Lex: "x"}},
		}),
	}}

	want := scan(t, `
		1: { 10: { 2: {"http://example.org/"} } }
		1: { 9: { 2: {"foo"} } }
		1: { 2: {
			1: { 1: 1 }
			6: {"b"}
			11: { 1: {"x"} }
		} }
	`)
	assert.Equal(t, want, f.Marshal(),
		"sentinel zeros must vanish from the wire entirely")
}

func TestMarshalOptionsRow(t *testing.T) {
	t.Parallel()
	f := &rdfpb.StreamFrame{Rows: []rdfpb.StreamRow{
		rdfpb.OptionsRow(&rdfpb.StreamOptions{
			StreamName:           "s",
			PhysicalType:         rdfpb.PhysicalTriples,
			RdfStar:              true,
			MaxNameTableSize:     128,
			MaxPrefixTableSize:   32,
			MaxDatatypeTableSize: 32,
			LogicalType:          rdfpb.LogicalFlatTriples,
			Version:              2,
		}),
	}}
	want := scan(t, `
		1: { 1: {
			1: {"s"}
			2: 1
			4: 1
			9: 128
			10: 32
			11: 32
			14: 1
			15: 2
		} }
	`)
	assert.Equal(t, want, f.Marshal())
}

func TestMarshalQuadGraphSlot(t *testing.T) {
	t.Parallel()
	quad := func(g rdfpb.Term) []byte {
		f := &rdfpb.StreamFrame{Rows: []rdfpb.StreamRow{
			rdfpb.QuadRow(&rdfpb.Quad{Graph: g}),
		}}
		return f.Marshal()
	}

	assert.Equal(t,
		scan(t, `1: { 3: { 15: {} } }`),
		quad(rdfpb.Term{Kind: rdfpb.TermDefaultGraph}),
		"default graph sits at field 15 in the quad graph slot")
	assert.Equal(t,
		scan(t, `1: { 3: { 16: { 1: {"g"} } } }`),
		quad(rdfpb.Term{Kind: rdfpb.TermLiteral, Literal: &rdfpb.Literal{Lex: "g"}}),
		"graph literals sit at field 16, after the default graph")
	assert.Equal(t,
		scan(t, `1: { 3: { 13: { 2: 7 } } }`),
		quad(rdfpb.Term{Kind: rdfpb.TermIRI, IRI: &rdfpb.IRI{NameID: 7}}))
}

func TestMarshalGraphBoundaries(t *testing.T) {
	t.Parallel()
	f := &rdfpb.StreamFrame{Rows: []rdfpb.StreamRow{
		rdfpb.GraphStartRow(&rdfpb.GraphStart{
			Graph: rdfpb.Term{Kind: rdfpb.TermIRI, IRI: &rdfpb.IRI{PrefixID: 1, NameID: 2}},
		}),
		rdfpb.GraphEndRow(),
	}}
	want := scan(t, `
		1: { 4: { 1: { 1: 1 2: 2 } } }
		1: { 5: {} }
	`)
	assert.Equal(t, want, f.Marshal())
}

func TestUnmarshalRoundTrip(t *testing.T) {
	t.Parallel()
	f := &rdfpb.StreamFrame{Rows: []rdfpb.StreamRow{
		rdfpb.OptionsRow(&rdfpb.StreamOptions{
			PhysicalType:     rdfpb.PhysicalQuads,
			LogicalType:      rdfpb.LogicalFlatQuads,
			MaxNameTableSize: 16,
			Version:          1,
		}),
		rdfpb.DatatypeRow(&rdfpb.DatatypeEntry{ID: 3, Value: "http://www.w3.org/2001/XMLSchema#int"}),
		rdfpb.NamespaceRow(&rdfpb.NamespaceDecl{Name: "ex", Value: &rdfpb.IRI{PrefixID: 1}}),
		rdfpb.QuadRow(&rdfpb.Quad{
			Subject:   rdfpb.Term{Kind: rdfpb.TermBnode, Bnode: ""},
			Predicate: rdfpb.Term{Kind: rdfpb.TermIRI, IRI: &rdfpb.IRI{}},
			Object:    rdfpb.Term{Kind: rdfpb.TermLiteral, Literal: &rdfpb.Literal{Lex: "42", Datatype: 3}},
			Graph:     rdfpb.Term{Kind: rdfpb.TermDefaultGraph},
		}),
		rdfpb.TripleRow(&rdfpb.Triple{
			Object: rdfpb.Term{Kind: rdfpb.TermTripleTerm, TripleTerm: &rdfpb.Triple{
				Subject:   rdfpb.Term{Kind: rdfpb.TermBnode, Bnode: "q"},
				Predicate: rdfpb.Term{Kind: rdfpb.TermIRI, IRI: &rdfpb.IRI{NameID: 1}},
				Object:    rdfpb.Term{Kind: rdfpb.TermLiteral, Literal: &rdfpb.Literal{Lex: "o", Langtag: "en"}},
			}},
		}),
	}}

	var got rdfpb.StreamFrame
	require.NoError(t, got.Unmarshal(f.Marshal()))
	assert.Equal(t, f.Rows, got.Rows)
	assert.Equal(t, f.Marshal(), got.Marshal(), "re-marshal is byte-identical")
}

func TestUnmarshalMetadata(t *testing.T) {
	t.Parallel()
	f := &rdfpb.StreamFrame{
		Rows:     []rdfpb.StreamRow{rdfpb.GraphEndRow()},
		Metadata: map[string][]byte{"key": []byte("value")},
	}
	var got rdfpb.StreamFrame
	require.NoError(t, got.Unmarshal(f.Marshal()))
	assert.Equal(t, f.Metadata, got.Metadata)
}

func TestUnmarshalSkipsUnknownFields(t *testing.T) {
	t.Parallel()
	// An unknown field at the frame level (a stray varint in field 8)
	// must be skipped, not rejected.
	b := scan(t, `
		1: { 5: {} }
		8: 999
	`)
	var f rdfpb.StreamFrame
	require.NoError(t, f.Unmarshal(b))
	require.Len(t, f.Rows, 1)
	assert.Equal(t, rdfpb.RowGraphEnd, f.Rows[0].Kind)
}

func TestUnmarshalMalformed(t *testing.T) {
	t.Parallel()
	var f rdfpb.StreamFrame
	assert.Error(t, f.Unmarshal([]byte{0x0A}), "truncated length prefix")
	assert.Error(t, f.Unmarshal([]byte{0x00}), "field number zero")
}

func TestDelimitedReadWrite(t *testing.T) {
	t.Parallel()
	a := &rdfpb.StreamFrame{Rows: []rdfpb.StreamRow{rdfpb.GraphEndRow()}}
	b := &rdfpb.StreamFrame{Rows: []rdfpb.StreamRow{
		rdfpb.NameRow(&rdfpb.NameEntry{Value: "n"}),
	}}

	var buf bytes.Buffer
	require.NoError(t, rdfpb.WriteDelimited(&buf, a))
	require.NoError(t, rdfpb.WriteDelimited(&buf, b))

	r := bytes.NewReader(buf.Bytes())
	var got rdfpb.StreamFrame
	require.NoError(t, rdfpb.ReadDelimited(r, &got))
	assert.Equal(t, a.Rows, got.Rows)
	require.NoError(t, rdfpb.ReadDelimited(r, &got))
	assert.Equal(t, b.Rows, got.Rows)
	err := rdfpb.ReadDelimited(r, &got)
	assert.Error(t, err)
}
