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
	"io"

	"github.com/jelly-rdf/jelly-go/rdfpb"
)

// stream is the core shared by the three writer-side stream types: it
// owns the term and statement encoders, the frame flow and the frame
// writer, and guarantees the options row opens the stream.
type stream struct {
	enc      statementEncoder
	flow     FrameFlow
	fw       *FrameWriter
	types    StreamTypes
	preset   LookupPreset
	params   StreamParameters
	enrolled bool
	metadata map[string][]byte
	closed   bool
}

func newStream(w io.Writer, physical rdfpb.PhysicalStreamType, defaultLogical rdfpb.LogicalStreamType, opts []StreamOption) (*stream, error) {
	cfg := newStreamConfig(defaultLogical)
	for _, o := range opts {
		o.apply(&cfg)
	}
	if !cfg.delimited {
		// A bare message cannot carry frame boundaries; buffer all
		// rows and write them as one frame on Close.
		cfg.logical = rdfpb.LogicalUnspecified
	}
	if err := cfg.preset.Validate(); err != nil {
		return nil, err
	}
	types := StreamTypes{Physical: physical, Logical: cfg.logical}
	if err := types.Validate(); err != nil {
		return nil, err
	}
	flow, err := FlowForType(cfg.logical, cfg.frameSize)
	if err != nil {
		return nil, err
	}
	return &stream{
		enc:    newStatementEncoder(NewTermEncoder(cfg.preset, cfg.params)),
		flow:   flow,
		fw:     NewFrameWriter(w, cfg.delimited),
		types:  types,
		preset: cfg.preset,
		params: cfg.params,
	}, nil
}

// enroll appends the options row once, before any data row.
func (s *stream) enroll() {
	if !s.enrolled {
		s.flow.Append(optionsRow(s.preset, s.types, s.params))
		s.enrolled = true
	}
}

// emit hands a completed frame to the writer, stamping any pending
// metadata onto it.
func (s *stream) emit(f *rdfpb.StreamFrame) error {
	if f == nil {
		return nil
	}
	if len(s.metadata) > 0 {
		f.Metadata = s.metadata
		s.metadata = nil
	}
	return s.fw.WriteFrame(f)
}

// appendRows pushes the produced rows through the flow, emitting every
// frame the policy closes.
func (s *stream) appendRows(rows []rdfpb.StreamRow) error {
	s.enroll()
	for _, row := range rows {
		if err := s.emit(s.flow.Append(row)); err != nil {
			return err
		}
	}
	return nil
}

// SetFrameMetadata attaches a metadata map to the next emitted frame.
func (s *stream) SetFrameMetadata(m map[string][]byte) {
	s.metadata = m
}

// Namespace declares a prefix binding on the stream.
func (s *stream) Namespace(name, iri string) error {
	rows, err := s.enc.encodeNamespace(name, iri, nil)
	if err != nil {
		return err
	}
	return s.appendRows(rows)
}

// Flush writes any buffered rows as a frame.
func (s *stream) Flush() error {
	s.enroll()
	return s.emit(s.flow.Flush())
}

// Close flushes the trailing frame. The stream must not be used after
// Close.
func (s *stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.Flush()
}

// TripleStream writes a physical TRIPLES stream.
type TripleStream struct {
	stream
}

// NewTripleStream starts a triples stream over w. The default logical
// type is FLAT_TRIPLES.
func NewTripleStream(w io.Writer, opts ...StreamOption) (*TripleStream, error) {
	s, err := newStream(w, rdfpb.PhysicalTriples, rdfpb.LogicalFlatTriples, opts)
	if err != nil {
		return nil, err
	}
	return &TripleStream{stream: *s}, nil
}

// Triple encodes and writes one triple.
func (s *TripleStream) Triple(sub, pred, obj Term) error {
	rows, err := s.enc.encodeTriple(sub, pred, obj, nil)
	if err != nil {
		return err
	}
	return s.appendRows(rows)
}

// QuadStream writes a physical QUADS stream.
type QuadStream struct {
	stream
}

// NewQuadStream starts a quads stream over w. The default logical type
// is FLAT_QUADS.
func NewQuadStream(w io.Writer, opts ...StreamOption) (*QuadStream, error) {
	s, err := newStream(w, rdfpb.PhysicalQuads, rdfpb.LogicalFlatQuads, opts)
	if err != nil {
		return nil, err
	}
	return &QuadStream{stream: *s}, nil
}

// Quad encodes and writes one quad.
func (s *QuadStream) Quad(sub, pred, obj, graph Term) error {
	rows, err := s.enc.encodeQuad(sub, pred, obj, graph, nil)
	if err != nil {
		return err
	}
	return s.appendRows(rows)
}

// EndDataset marks a dataset boundary. Under the DATASETS logical type
// this closes the current frame.
func (s *QuadStream) EndDataset() error {
	return s.emit(s.flow.FrameFromDataset())
}

// GraphStream writes a stream of graphs: triple rows delimited by
// graph-start and graph-end rows. Physically it is a TRIPLES stream;
// the GRAPHS logical type makes each frame one complete graph.
type GraphStream struct {
	stream
	inGraph bool
}

// NewGraphStream starts a graphs stream over w. The default logical
// type is GRAPHS (one frame per graph).
func NewGraphStream(w io.Writer, opts ...StreamOption) (*GraphStream, error) {
	s, err := newStream(w, rdfpb.PhysicalTriples, rdfpb.LogicalGraphs, opts)
	if err != nil {
		return nil, err
	}
	return &GraphStream{stream: *s}, nil
}

// BeginGraph opens a graph. The name may be an IRI, a blank node, or
// the default-graph term.
func (s *GraphStream) BeginGraph(name Term) error {
	if s.inGraph {
		return assertf("graph already open")
	}
	rows, err := s.enc.encodeGraphStart(name, nil)
	if err != nil {
		return err
	}
	if err := s.appendRows(rows); err != nil {
		return err
	}
	s.inGraph = true
	return nil
}

// Triple writes one triple into the open graph. The per-slot
// repetition cache carries across graph boundaries.
func (s *GraphStream) Triple(sub, pred, obj Term) error {
	if !s.inGraph {
		return assertf("no open graph")
	}
	rows, err := s.enc.encodeTriple(sub, pred, obj, nil)
	if err != nil {
		return err
	}
	return s.appendRows(rows)
}

// EndGraph closes the open graph. Under the GRAPHS logical type this
// closes the current frame.
func (s *GraphStream) EndGraph() error {
	if !s.inGraph {
		return assertf("no open graph")
	}
	s.inGraph = false
	if err := s.appendRows([]rdfpb.StreamRow{rdfpb.GraphEndRow()}); err != nil {
		return err
	}
	return s.emit(s.flow.FrameFromGraph())
}
