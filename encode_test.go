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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jelly-rdf/jelly-go/rdfpb"
)

func TestSplitIRI(t *testing.T) {
	t.Parallel()
	tests := []struct {
		iri, prefix, name string
	}{
		{"http://example.org/foo", "http://example.org/", "foo"},
		{"http://example.org/ns#bar", "http://example.org/ns#", "bar"},
		{"http://example.org/a/b#c/d", "http://example.org/a/b#", "c/d"},
		{"http://example.org/", "http://example.org/", ""},
		{"urn:uuid:1234", "", "urn:uuid:1234"},
	}
	for _, tt := range tests {
		prefix, name := SplitIRI(tt.iri)
		assert.Equal(t, tt.prefix, prefix, tt.iri)
		assert.Equal(t, tt.name, name, tt.iri)
	}
}

func testEncoder(preset LookupPreset) *TermEncoder {
	return NewTermEncoder(preset, StreamParameters{})
}

// Fresh encoder, first IRI: a prefix entry and a name entry, both with
// the sequential sentinel 0, then prefix_id 1 and name_id 0 in the
// term.
func TestEncodeFirstIRI(t *testing.T) {
	t.Parallel()
	e := testEncoder(LookupPreset{MaxNames: 16, MaxPrefixes: 16, MaxDatatypes: 16})

	rows, term, err := e.EncodeIRI("http://example.org/foo", nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.Equal(t, rdfpb.RowPrefix, rows[0].Kind)
	assert.Equal(t, uint32(0), rows[0].Prefix.ID)
	assert.Equal(t, "http://example.org/", rows[0].Prefix.Value)

	require.Equal(t, rdfpb.RowName, rows[1].Kind)
	assert.Equal(t, uint32(0), rows[1].Name.ID)
	assert.Equal(t, "foo", rows[1].Name.Value)

	assert.Equal(t, uint32(1), term.PrefixID)
	assert.Equal(t, uint32(0), term.NameID)
}

// Two IRIs sharing a prefix: the second emits only a name entry, and
// its term has prefix_id 0 (same prefix) and name_id 0 (prev+1).
func TestEncodeSharedPrefix(t *testing.T) {
	t.Parallel()
	e := testEncoder(LookupPreset{MaxNames: 16, MaxPrefixes: 16, MaxDatatypes: 16})

	rows, first, err := e.EncodeIRI("http://x/a", nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, uint32(1), first.PrefixID)
	assert.Equal(t, uint32(0), first.NameID)

	rows, second, err := e.EncodeIRI("http://x/b", nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, rdfpb.RowName, rows[0].Kind)
	assert.Equal(t, uint32(0), rows[0].Name.ID)
	assert.Equal(t, "b", rows[0].Name.Value)
	assert.Equal(t, uint32(0), second.PrefixID)
	assert.Equal(t, uint32(0), second.NameID)
}

// With the prefix table disabled, the whole IRI travels as the name.
func TestEncodeIRINoPrefixTable(t *testing.T) {
	t.Parallel()
	e := testEncoder(LookupPreset{MaxNames: 16})

	rows, term, err := e.EncodeIRI("http://example.org/foo", nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, rdfpb.RowName, rows[0].Kind)
	assert.Equal(t, "http://example.org/foo", rows[0].Name.Value)
	assert.Equal(t, uint32(0), term.PrefixID)
}

// The default string datatype produces no datatype entry and index 0.
func TestEncodeStringLiteral(t *testing.T) {
	t.Parallel()
	e := testEncoder(LookupPreset{MaxNames: 16, MaxDatatypes: 16})

	rows, lit, err := e.EncodeLiteral(NewTypedLiteral("hello", StringDatatypeIRI), nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, uint32(0), lit.Datatype)
	assert.Equal(t, "hello", lit.Lex)
}

func TestEncodeTypedLiteral(t *testing.T) {
	t.Parallel()
	e := testEncoder(LookupPreset{MaxNames: 16, MaxDatatypes: 16})
	intIRI := "http://www.w3.org/2001/XMLSchema#int"

	rows, lit, err := e.EncodeLiteral(NewTypedLiteral("42", intIRI), nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, rdfpb.RowDatatype, rows[0].Kind)
	assert.Equal(t, uint32(0), rows[0].Datatype.ID)
	assert.Equal(t, intIRI, rows[0].Datatype.Value)
	assert.Equal(t, uint32(1), lit.Datatype)

	// Reuse emits no further entry rows.
	rows, lit, err = e.EncodeLiteral(NewTypedLiteral("7", intIRI), nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, uint32(1), lit.Datatype)
}

func TestEncodeTypedLiteralDisabledTable(t *testing.T) {
	t.Parallel()
	e := testEncoder(LookupPreset{MaxNames: 16})

	_, _, err := e.EncodeLiteral(NewTypedLiteral("42", "http://www.w3.org/2001/XMLSchema#int"), nil)
	assert.ErrorIs(t, err, ErrConformance)
}

func TestEncodeDefaultGraphOutsideGraphSlot(t *testing.T) {
	t.Parallel()
	e := testEncoder(LookupPreset{MaxNames: 16})

	_, _, err := e.EncodeTerm(NewDefaultGraph(), false, nil)
	assert.ErrorIs(t, err, ErrConformance)
}

func TestEncodeQuotedTripleRequiresRdfStar(t *testing.T) {
	t.Parallel()
	quoted := NewQuotedTriple(
		NewIRI("http://x/s"), NewIRI("http://x/p"), NewIRI("http://x/o"))

	e := testEncoder(LookupPreset{MaxNames: 16, MaxPrefixes: 16})
	_, _, err := e.EncodeTerm(quoted, false, nil)
	assert.ErrorIs(t, err, ErrConformance)

	star := NewTermEncoder(LookupPreset{MaxNames: 16, MaxPrefixes: 16}, StreamParameters{RdfStar: true})
	rows, term, err := star.EncodeTerm(quoted, false, nil)
	require.NoError(t, err)
	assert.Equal(t, rdfpb.TermTripleTerm, term.Kind)
	require.NotNil(t, term.TripleTerm)
	assert.True(t, term.TripleTerm.Subject.IsSet(), "quoted slots are never elided")
	assert.NotEmpty(t, rows)
}

// Slot repetition: the second identical statement contributes an
// empty statement row, and a partial repeat elides only the repeated
// slots.
func TestStatementSlotElision(t *testing.T) {
	t.Parallel()
	enc := newStatementEncoder(testEncoder(LookupPreset{MaxNames: 16, MaxPrefixes: 16}))
	s := NewIRI("http://x/s")
	p := NewIRI("http://x/p")
	o1 := NewIRI("http://x/o1")
	o2 := NewIRI("http://x/o2")

	rows, err := enc.encodeTriple(s, p, o1, nil)
	require.NoError(t, err)
	statement := rows[len(rows)-1]
	require.Equal(t, rdfpb.RowTriple, statement.Kind)
	assert.True(t, statement.Triple.Subject.IsSet())

	rows, err = enc.encodeTriple(s, p, o1, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1, "full repeat produces only the statement row")
	statement = rows[0]
	assert.False(t, statement.Triple.Subject.IsSet())
	assert.False(t, statement.Triple.Predicate.IsSet())
	assert.False(t, statement.Triple.Object.IsSet())

	rows, err = enc.encodeTriple(s, p, o2, nil)
	require.NoError(t, err)
	statement = rows[len(rows)-1]
	assert.False(t, statement.Triple.Subject.IsSet())
	assert.False(t, statement.Triple.Predicate.IsSet())
	assert.True(t, statement.Triple.Object.IsSet())
}

// A repeated term must leave the lookup LRU state untouched, so the
// delta arithmetic of later terms is unaffected.
func TestRepetitionSkipsTableBookkeeping(t *testing.T) {
	t.Parallel()
	enc := newStatementEncoder(testEncoder(LookupPreset{MaxNames: 16, MaxPrefixes: 16}))
	s := NewIRI("http://x/s")
	p := NewIRI("http://x/p")

	_, err := enc.encodeTriple(s, p, NewIRI("http://x/o"), nil)
	require.NoError(t, err)
	namesReused := enc.terms.names.lastReused

	_, err = enc.encodeTriple(s, p, NewIRI("http://x/o"), nil)
	require.NoError(t, err)
	assert.Equal(t, namesReused, enc.terms.names.lastReused)
}

func TestNamespaceDeclarationKeepsSlotCache(t *testing.T) {
	t.Parallel()
	enc := newStatementEncoder(testEncoder(LookupPreset{MaxNames: 16, MaxPrefixes: 16}))
	s := NewIRI("http://x/s")
	p := NewIRI("http://x/p")
	o := NewIRI("http://x/o")

	_, err := enc.encodeTriple(s, p, o, nil)
	require.NoError(t, err)

	rows, err := enc.encodeNamespace("ex", "http://elsewhere/ns#", nil)
	require.NoError(t, err)
	require.Equal(t, rdfpb.RowNamespace, rows[len(rows)-1].Kind)

	rows, err = enc.encodeTriple(s, p, o, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].Triple.Subject.IsSet(),
		"namespace declarations do not disturb slot repetition")
}
