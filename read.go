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
	"iter"
)

// ReadFlat decodes a stream event-by-event into the adapter. In strict
// mode the stream's logical type must be a flat one; pass
// [WithStrictTypes](false) to accept any.
func ReadFlat[T any](fr *FrameReader, adapter Adapter[T], opts ...ReaderOption) error {
	cfg := newReaderConfig()
	for _, o := range opts {
		o.apply(&cfg)
	}
	types := StreamTypes{Physical: fr.Options().PhysicalType, Logical: fr.Options().LogicalType}
	if cfg.strict && !types.Flat() {
		return conformancef("flat reading of a %v stream requires non-strict mode", types.Logical)
	}
	dec, err := NewDecoder(fr.Options(), adapter)
	if err != nil {
		return err
	}
	for f, err := range fr.Frames() {
		if err != nil {
			return err
		}
		if err := dec.DecodeFrame(f); err != nil {
			return err
		}
	}
	return nil
}

// FrameSink is a per-frame adapter for grouped reading: after a
// frame's rows are decoded into it, Finish extracts the collected
// value (a graph, a dataset).
type FrameSink[T, S any] interface {
	Adapter[T]
	Finish() (S, error)
}

// ReadGrouped decodes a stream frame-by-frame: each frame's rows are
// decoded into a fresh sink from factory, and the sink's value is
// yielded at the frame boundary. In strict mode the stream's logical
// type must be a grouped one.
//
// Lookup tables and the repeated-slot cache span frames; only the
// sinks are per-frame.
func ReadGrouped[T, S any](fr *FrameReader, factory func() FrameSink[T, S], opts ...ReaderOption) iter.Seq2[S, error] {
	cfg := newReaderConfig()
	for _, o := range opts {
		o.apply(&cfg)
	}
	return func(yield func(S, error) bool) {
		var zero S
		types := StreamTypes{Physical: fr.Options().PhysicalType, Logical: fr.Options().LogicalType}
		if cfg.strict && !types.Grouped() {
			yield(zero, conformancef("grouped reading of a %v stream requires non-strict mode", types.Logical))
			return
		}
		hub := &resinkable[T, S]{sink: factory()}
		dec, err := NewDecoder(fr.Options(), hub)
		if err != nil {
			yield(zero, err)
			return
		}
		for f, err := range fr.Frames() {
			if err != nil {
				yield(zero, err)
				return
			}
			if err := dec.DecodeFrame(f); err != nil {
				yield(zero, err)
				return
			}
			value, err := hub.sink.Finish()
			if !yield(value, err) || err != nil {
				return
			}
			hub.sink = factory()
		}
	}
}

// resinkable routes adapter calls to the current per-frame sink while
// the decoder keeps its cross-frame lookup state.
type resinkable[T, S any] struct {
	sink FrameSink[T, S]
}

func (r *resinkable[T, S]) IRI(iri string) (T, error)          { return r.sink.IRI(iri) }
func (r *resinkable[T, S]) BlankNode(label string) (T, error)  { return r.sink.BlankNode(label) }
func (r *resinkable[T, S]) DefaultGraph() (T, error)           { return r.sink.DefaultGraph() }
func (r *resinkable[T, S]) QuotedTriple(s, p, o T) (T, error)  { return r.sink.QuotedTriple(s, p, o) }
func (r *resinkable[T, S]) Triple(s, p, o T) error             { return r.sink.Triple(s, p, o) }
func (r *resinkable[T, S]) Quad(s, p, o, g T) error            { return r.sink.Quad(s, p, o, g) }
func (r *resinkable[T, S]) GraphStart(graph T) error           { return r.sink.GraphStart(graph) }
func (r *resinkable[T, S]) GraphEnd() error                    { return r.sink.GraphEnd() }
func (r *resinkable[T, S]) Frame(md map[string][]byte) error   { return r.sink.Frame(md) }
func (r *resinkable[T, S]) Literal(l, g, d string) (T, error)  { return r.sink.Literal(l, g, d) }
func (r *resinkable[T, S]) NamespaceDeclaration(n, i string) error {
	return r.sink.NamespaceDeclaration(n, i)
}

// NamespaceBinding is a declared prefix binding.
type NamespaceBinding struct {
	Name string
	IRI  string
}

// StatementBatch collects the contents of one frame.
type StatementBatch struct {
	Triples    [][3]Term
	Quads      [][4]Term
	Namespaces []NamespaceBinding
	Metadata   map[string][]byte
}

// BatchSink is a FrameSink collecting statements into a
// [StatementBatch]. When built with foldGraphs, graph boundaries are
// folded into quads with the graph name filled in, mirroring how
// grouped graph streams are usually consumed; otherwise triples inside
// a graph are recorded as plain triples and the graph name is dropped.
type BatchSink struct {
	TermAdapter
	batch   StatementBatch
	graph   *Term
	asQuads bool
}

// NewBatchSink returns a sink for one frame. When foldGraphs is set,
// triples inside graph-start/graph-end are recorded as quads.
func NewBatchSink(foldGraphs bool) *BatchSink {
	s := &BatchSink{asQuads: foldGraphs}
	s.TermAdapter = TermAdapter{
		OnTriple: func(sub, pred, obj Term) error {
			if s.graph != nil && s.asQuads {
				s.batch.Quads = append(s.batch.Quads, [4]Term{sub, pred, obj, *s.graph})
				return nil
			}
			s.batch.Triples = append(s.batch.Triples, [3]Term{sub, pred, obj})
			return nil
		},
		OnQuad: func(sub, pred, obj, graph Term) error {
			s.batch.Quads = append(s.batch.Quads, [4]Term{sub, pred, obj, graph})
			return nil
		},
		OnGraphStart: func(graph Term) error {
			s.graph = &graph
			return nil
		},
		OnGraphEnd: func() error {
			s.graph = nil
			return nil
		},
		OnNamespace: func(name, iri string) error {
			s.batch.Namespaces = append(s.batch.Namespaces, NamespaceBinding{Name: name, IRI: iri})
			return nil
		},
		OnFrame: func(md map[string][]byte) error {
			s.batch.Metadata = md
			return nil
		},
	}
	return s
}

// Finish implements [FrameSink].
func (s *BatchSink) Finish() (*StatementBatch, error) {
	batch := s.batch
	s.batch = StatementBatch{}
	return &batch, nil
}
