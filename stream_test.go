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

	jelly "github.com/jelly-rdf/jelly-go"
	"github.com/jelly-rdf/jelly-go/rdfpb"
)

// readAllFrames drains a written stream for inspection.
func readAllFrames(t *testing.T, data []byte, opts ...jelly.ReaderOption) (*rdfpb.StreamOptions, []*rdfpb.StreamFrame) {
	t.Helper()
	fr, err := jelly.NewFrameReader(bytes.NewReader(data), opts...)
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
	return fr.Options(), frames
}

func TestStreamOptionsRowFirst(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	s, err := jelly.NewTripleStream(&buf)
	require.NoError(t, err)
	require.NoError(t, s.Triple(
		jelly.NewIRI("http://x/s"), jelly.NewIRI("http://x/p"), jelly.NewLiteral("o")))
	require.NoError(t, s.Close())

	opts, frames := readAllFrames(t, buf.Bytes())
	require.Len(t, frames, 1)
	assert.Equal(t, rdfpb.RowOptions, frames[0].Rows[0].Kind)
	assert.Equal(t, rdfpb.PhysicalTriples, opts.PhysicalType)
	assert.Equal(t, rdfpb.LogicalFlatTriples, opts.LogicalType)
	assert.Equal(t, uint32(1), opts.Version)
}

func TestBoundedFlowCutsFrames(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	s, err := jelly.NewTripleStream(&buf, jelly.WithFrameSize(10))
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		require.NoError(t, s.Triple(
			jelly.NewIRI(fmt.Sprintf("http://x/s%d", i)),
			jelly.NewIRI("http://x/p"),
			jelly.NewLiteral("o")))
	}
	require.NoError(t, s.Close())

	_, frames := readAllFrames(t, buf.Bytes())
	require.Greater(t, len(frames), 1)
	for _, f := range frames[:len(frames)-1] {
		assert.GreaterOrEqual(t, len(f.Rows), 10)
	}
}

// A GRAPHS stream with two graphs produces exactly two frames, each
// ending at its graph-end row.
func TestGraphStreamFramesPerGraph(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	s, err := jelly.NewGraphStream(&buf)
	require.NoError(t, err)

	require.NoError(t, s.BeginGraph(jelly.NewIRI("http://x/g1")))
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Triple(
			jelly.NewIRI(fmt.Sprintf("http://x/s%d", i)),
			jelly.NewIRI("http://x/p"),
			jelly.NewLiteral("o")))
	}
	require.NoError(t, s.EndGraph())

	require.NoError(t, s.BeginGraph(jelly.NewIRI("http://x/g2")))
	for i := 0; i < 2; i++ {
		require.NoError(t, s.Triple(
			jelly.NewIRI(fmt.Sprintf("http://x/t%d", i)),
			jelly.NewIRI("http://x/p"),
			jelly.NewLiteral("o")))
	}
	require.NoError(t, s.EndGraph())
	require.NoError(t, s.Close())

	_, frames := readAllFrames(t, buf.Bytes())
	require.Len(t, frames, 2)
	for i, f := range frames {
		last := f.Rows[len(f.Rows)-1]
		assert.Equal(t, rdfpb.RowGraphEnd, last.Kind, "frame %d", i)
	}
}

func TestQuadStreamDatasets(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	s, err := jelly.NewQuadStream(&buf, jelly.WithLogicalType(rdfpb.LogicalDatasets))
	require.NoError(t, err)

	quad := func(n int) error {
		return s.Quad(
			jelly.NewIRI(fmt.Sprintf("http://x/s%d", n)),
			jelly.NewIRI("http://x/p"),
			jelly.NewLiteral("o"),
			jelly.NewIRI("http://x/g"))
	}
	require.NoError(t, quad(1))
	require.NoError(t, quad(2))
	require.NoError(t, s.EndDataset())
	require.NoError(t, quad(3))
	require.NoError(t, s.EndDataset())
	require.NoError(t, s.Close())

	_, frames := readAllFrames(t, buf.Bytes())
	assert.Len(t, frames, 2)
}

func TestNonDelimitedSingleFrame(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	s, err := jelly.NewTripleStream(&buf, jelly.WithDelimited(false), jelly.WithFrameSize(2))
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		require.NoError(t, s.Triple(
			jelly.NewIRI(fmt.Sprintf("http://x/s%d", i)),
			jelly.NewIRI("http://x/p"),
			jelly.NewLiteral("o")))
	}
	require.NoError(t, s.Close())

	fr, err := jelly.NewFrameReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.False(t, fr.Delimited())
	opts := fr.Options()
	assert.Equal(t, rdfpb.LogicalUnspecified, opts.LogicalType,
		"non-delimited output forces the manual flow")

	f, err := fr.Next()
	require.NoError(t, err)
	_, err = fr.Next()
	assert.Equal(t, io.EOF, err)

	// The single frame round-trips byte-for-byte.
	assert.Equal(t, buf.Bytes(), f.Marshal())
}

func TestFrameMetadata(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	s, err := jelly.NewTripleStream(&buf)
	require.NoError(t, err)
	s.SetFrameMetadata(map[string][]byte{"source": []byte("sensor-7")})
	require.NoError(t, s.Triple(
		jelly.NewIRI("http://x/s"), jelly.NewIRI("http://x/p"), jelly.NewLiteral("o")))
	require.NoError(t, s.Close())

	_, frames := readAllFrames(t, buf.Bytes())
	require.Len(t, frames, 1)
	assert.Equal(t, []byte("sensor-7"), frames[0].Metadata["source"])
}

func TestNamespaceDeclarationRoundTrip(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	s, err := jelly.NewTripleStream(&buf)
	require.NoError(t, err)
	require.NoError(t, s.Namespace("ex", "http://example.org/ns#"))
	require.NoError(t, s.Triple(
		jelly.NewIRI("http://example.org/ns#s"),
		jelly.NewIRI("http://example.org/ns#p"),
		jelly.NewLiteral("o")))
	require.NoError(t, s.Close())

	fr, err := jelly.NewFrameReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	var bindings []jelly.NamespaceBinding
	adapter := &jelly.TermAdapter{
		OnTriple: func(s, p, o jelly.Term) error { return nil },
		OnNamespace: func(name, iri string) error {
			bindings = append(bindings, jelly.NamespaceBinding{Name: name, IRI: iri})
			return nil
		},
	}
	require.NoError(t, jelly.ReadFlat(fr, adapter))
	require.Len(t, bindings, 1)
	assert.Equal(t, "ex", bindings[0].Name)
	assert.Equal(t, "http://example.org/ns#", bindings[0].IRI)
}

func TestIncompatibleTypesRejected(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	_, err := jelly.NewTripleStream(&buf, jelly.WithLogicalType(rdfpb.LogicalFlatQuads))
	assert.ErrorIs(t, err, jelly.ErrAssertion)

	_, err = jelly.NewQuadStream(&buf, jelly.WithLogicalType(rdfpb.LogicalFlatTriples))
	assert.ErrorIs(t, err, jelly.ErrAssertion)
}

func TestTooSmallNameTableRejected(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	_, err := jelly.NewTripleStream(&buf, jelly.WithLookupPreset(jelly.LookupPreset{MaxNames: 4}))
	assert.ErrorIs(t, err, jelly.ErrConformance)
}
