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

// Package jelly implements the Jelly binary RDF stream format: a
// sequence of framed protocol-buffer messages carrying triples or
// quads, compressed through three bounded LRU lookup tables (IRI
// prefixes, local names, datatypes) and per-slot repetition of
// subject, predicate, object and graph terms.
//
// # Writing
//
// The stream writers pair a physical stream type with a framing
// policy derived from the logical type:
//
//	s, err := jelly.NewTripleStream(w)
//	if err != nil { ... }
//	err = s.Triple(
//		jelly.NewIRI("http://example.org/s"),
//		jelly.NewIRI("http://example.org/p"),
//		jelly.NewLiteral("o"),
//	)
//	err = s.Close()
//
// [NewQuadStream] writes quads, and [NewGraphStream] writes graphs
// delimited by graph-start and graph-end rows. Stream options —
// lookup table sizes, frame size, delimited or single-frame output —
// are set with the With* options.
//
// # Reading
//
// [NewFrameReader] detects whether the input is length-delimited,
// extracts and validates the options row, and yields frames.
// [ReadFlat] replays each statement into an [Adapter]; [ReadGrouped]
// collects one sink per frame. [TermAdapter] and [BatchSink] are
// ready-made adapters producing [Term] values.
//
// Encoders and decoders are single-stream, single-goroutine objects:
// the lookup tables and the repeated-slot caches are mutable state
// spanning every row of the stream. Independent streams can run in
// parallel on separate instances.
package jelly
