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

package jelly_test

import (
	"bytes"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	jelly "github.com/jelly-rdf/jelly-go"
	"github.com/jelly-rdf/jelly-go/rdfpb"
)

// The eight-row auto-detection truth table over {0x0A, NN}.
func TestDelimitedHintTruthTable(t *testing.T) {
	t.Parallel()
	tests := []struct {
		header    []byte
		delimited bool
	}{
		{[]byte{0x00, 0x00, 0x00}, true},
		{[]byte{0x00, 0x00, 0x0A}, true},
		{[]byte{0x00, 0x0A, 0x00}, true},
		{[]byte{0x00, 0x0A, 0x0A}, true},
		{[]byte{0x0A, 0x00, 0x00}, false},
		{[]byte{0x0A, 0x00, 0x0A}, false},
		{[]byte{0x0A, 0x0A, 0x00}, true},
		{[]byte{0x0A, 0x0A, 0x0A}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.delimited, jelly.DelimitedHint(tt.header), "% x", tt.header)
	}
	assert.False(t, jelly.DelimitedHint([]byte{0x0A}), "short input is non-delimited")
	assert.False(t, jelly.DelimitedHint(nil))
}

func writeFlatTriples(t *testing.T, n int, opts ...jelly.StreamOption) []byte {
	t.Helper()
	var buf bytes.Buffer
	s, err := jelly.NewTripleStream(&buf, opts...)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		require.NoError(t, s.Triple(
			jelly.NewIRI(fmt.Sprintf("http://x/s%d", i)),
			jelly.NewIRI("http://x/p"),
			jelly.NewLiteral(fmt.Sprintf("o%d", i))))
	}
	require.NoError(t, s.Close())
	return buf.Bytes()
}

func TestReaderDetectsDelimited(t *testing.T) {
	t.Parallel()
	data := writeFlatTriples(t, 3)
	fr, err := jelly.NewFrameReader(bytes.NewReader(data))
	require.NoError(t, err)
	assert.True(t, fr.Delimited())
}

// Delimited streams concatenate: A || B reads back as A's frames
// followed by B's.
func TestDelimitedConcatenation(t *testing.T) {
	t.Parallel()
	a := writeFlatTriples(t, 2, jelly.WithFrameSize(4))
	b := writeFlatTriples(t, 2, jelly.WithFrameSize(4))

	fr, err := jelly.NewFrameReader(bytes.NewReader(append(append([]byte{}, a...), b...)))
	require.NoError(t, err)
	var frames []*rdfpb.StreamFrame
	for {
		f, err := fr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		frames = append(frames, f)
	}

	frA, err := jelly.NewFrameReader(bytes.NewReader(a))
	require.NoError(t, err)
	countA := 0
	for _, err := range frA.Frames() {
		require.NoError(t, err)
		countA++
	}
	require.Greater(t, len(frames), countA, "frames of B follow frames of A")
	// B's first frame re-opens with an options row.
	assert.Equal(t, rdfpb.RowOptions, frames[countA].Rows[0].Kind)
}

func TestEmptyInput(t *testing.T) {
	t.Parallel()
	_, err := jelly.NewFrameReader(bytes.NewReader(nil))
	assert.ErrorIs(t, err, jelly.ErrConformance)
}

func TestEmptyFirstFrame(t *testing.T) {
	t.Parallel()
	// A delimited stream of empty frames: zero length prefixes only.
	_, err := jelly.NewFrameReader(bytes.NewReader([]byte{0x00, 0x00, 0x00}))
	assert.ErrorIs(t, err, jelly.ErrConformance)
}

func TestMissingOptionsRow(t *testing.T) {
	t.Parallel()
	frame := &rdfpb.StreamFrame{Rows: []rdfpb.StreamRow{
		rdfpb.TripleRow(&rdfpb.Triple{
			Subject:   rdfpb.Term{Kind: rdfpb.TermBnode, Bnode: "b0"},
			Predicate: rdfpb.Term{Kind: rdfpb.TermBnode, Bnode: "b1"},
			Object:    rdfpb.Term{Kind: rdfpb.TermBnode, Bnode: "b2"},
		}),
	}}
	var buf bytes.Buffer
	require.NoError(t, rdfpb.WriteDelimited(&buf, frame))

	_, err := jelly.NewFrameReader(bytes.NewReader(buf.Bytes()))
	assert.ErrorIs(t, err, jelly.ErrConformance)
}

func TestUnsupportedVersion(t *testing.T) {
	t.Parallel()
	frame := &rdfpb.StreamFrame{Rows: []rdfpb.StreamRow{
		rdfpb.OptionsRow(&rdfpb.StreamOptions{
			PhysicalType:     rdfpb.PhysicalTriples,
			LogicalType:      rdfpb.LogicalFlatTriples,
			MaxNameTableSize: 16,
			Version:          99,
		}),
	}}
	var buf bytes.Buffer
	require.NoError(t, rdfpb.WriteDelimited(&buf, frame))

	_, err := jelly.NewFrameReader(bytes.NewReader(buf.Bytes()))
	assert.ErrorIs(t, err, jelly.ErrConformance)
}

func TestLookupBoundsEnforced(t *testing.T) {
	t.Parallel()
	data := writeFlatTriples(t, 1, jelly.WithLookupPreset(jelly.PresetBig()))
	_, err := jelly.NewFrameReader(bytes.NewReader(data),
		jelly.WithMaxLookupPreset(jelly.PresetSmall()))
	assert.ErrorIs(t, err, jelly.ErrConformance)
}

// A frame longer than the hard limit must be refused, not allocated.
func TestOverlongFramePrefix(t *testing.T) {
	t.Parallel()
	var buf []byte
	buf = protowire.AppendVarint(buf, uint64(rdfpb.MaxFrameSize)+1)
	_, err := jelly.NewFrameReader(bytes.NewReader(buf))
	require.Error(t, err)
	assert.NotErrorIs(t, err, jelly.ErrConformance)
}

func TestStrictModeMismatch(t *testing.T) {
	t.Parallel()
	data := writeFlatTriples(t, 2)

	// Grouped reading of a flat stream fails before any row.
	fr, err := jelly.NewFrameReader(bytes.NewReader(data))
	require.NoError(t, err)
	delivered := 0
	for _, err := range jelly.ReadGrouped(fr, func() jelly.FrameSink[jelly.Term, *jelly.StatementBatch] {
		return jelly.NewBatchSink(false)
	}) {
		assert.ErrorIs(t, err, jelly.ErrConformance)
		delivered++
	}
	assert.Equal(t, 1, delivered, "exactly one error, no batches")

	// Flat reading of a grouped stream fails likewise.
	var buf bytes.Buffer
	gs, err := jelly.NewGraphStream(&buf)
	require.NoError(t, err)
	require.NoError(t, gs.BeginGraph(jelly.NewIRI("http://x/g")))
	require.NoError(t, gs.Triple(
		jelly.NewIRI("http://x/s"), jelly.NewIRI("http://x/p"), jelly.NewLiteral("o")))
	require.NoError(t, gs.EndGraph())
	require.NoError(t, gs.Close())

	fr2, err := jelly.NewFrameReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	seen := false
	err = jelly.ReadFlat(fr2, &jelly.TermAdapter{
		OnTriple: func(s, p, o jelly.Term) error { seen = true; return nil },
	})
	assert.ErrorIs(t, err, jelly.ErrConformance)
	assert.False(t, seen, "no statement delivered before the mode check")
}
