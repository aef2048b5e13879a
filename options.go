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
	"github.com/jelly-rdf/jelly-go/rdfpb"
)

const (
	// MinNameTableSize is the smallest legal name lookup size. The
	// name table is the only mandatory table, and the format requires
	// at least this many slots for it.
	MinNameTableSize = 8

	// StringDatatypeIRI is the implicit datatype of plain literals. It
	// is never entered into the datatype lookup; datatype index 0
	// stands for it.
	StringDatatypeIRI = "http://www.w3.org/2001/XMLSchema#string"

	// ProtoVersion is the newest protocol version this module accepts.
	// Version 1 streams are read as-is; version 2 adds RDF-star terms
	// and namespace declarations.
	ProtoVersion = 2

	// ProtoVersionBase is emitted for streams without RDF-star.
	// Namespace declarations do not raise the emitted version.
	ProtoVersionBase = 1

	// DefaultFrameSize is the row count at which bounded flows cut a
	// frame.
	DefaultFrameSize = 250

	// Extension is the conventional file extension for Jelly data.
	Extension = ".jelly"

	// MIMEType is the media type registered for Jelly data.
	MIMEType = "application/x-jelly-rdf"
)

// LookupPreset fixes the sizes of the three compression tables for the
// life of a stream.
type LookupPreset struct {
	MaxNames     uint32 `yaml:"max_names"`
	MaxPrefixes  uint32 `yaml:"max_prefixes"`
	MaxDatatypes uint32 `yaml:"max_datatypes"`
}

// PresetSmall is the default preset, balancing compression against
// table memory for typical streams.
func PresetSmall() LookupPreset {
	return LookupPreset{MaxNames: 128, MaxPrefixes: 32, MaxDatatypes: 32}
}

// PresetBig suits large dumps with wide vocabularies.
func PresetBig() LookupPreset {
	return LookupPreset{MaxNames: 4000, MaxPrefixes: 150, MaxDatatypes: 32}
}

// Validate checks the table sizes against the format's limits.
func (p LookupPreset) Validate() error {
	if p.MaxNames < MinNameTableSize {
		return conformancef("name table size %d is below the minimum of %d", p.MaxNames, MinNameTableSize)
	}
	return nil
}

// StreamTypes pairs the physical and logical stream types.
type StreamTypes struct {
	Physical rdfpb.PhysicalStreamType
	Logical  rdfpb.LogicalStreamType
}

// compatible logical types per physical type. UNSPECIFIED physical
// accepts anything.
var logicalForPhysical = map[rdfpb.PhysicalStreamType][]rdfpb.LogicalStreamType{
	rdfpb.PhysicalTriples: {
		rdfpb.LogicalFlatTriples,
		rdfpb.LogicalGraphs,
		rdfpb.LogicalSubjectGraphs,
		rdfpb.LogicalUnspecified,
	},
	rdfpb.PhysicalQuads: {
		rdfpb.LogicalFlatQuads,
		rdfpb.LogicalDatasets,
		rdfpb.LogicalNamedGraphs,
		rdfpb.LogicalTimestampedNamedGraphs,
		rdfpb.LogicalUnspecified,
	},
	rdfpb.PhysicalGraphs: {
		rdfpb.LogicalFlatQuads,
		rdfpb.LogicalDatasets,
		rdfpb.LogicalNamedGraphs,
		rdfpb.LogicalTimestampedNamedGraphs,
		rdfpb.LogicalUnspecified,
	},
}

// Validate checks the pair against the compatibility matrix.
func (t StreamTypes) Validate() error {
	if t.Physical == rdfpb.PhysicalUnspecified {
		return nil
	}
	allowed, ok := logicalForPhysical[t.Physical]
	if !ok {
		return assertf("unknown physical stream type %d", t.Physical)
	}
	for _, l := range allowed {
		if t.Logical == l {
			return nil
		}
	}
	return assertf("logical type %v is not valid for physical type %v", t.Logical, t.Physical)
}

// Flat reports whether the logical type is a flat (event-per-statement)
// stream.
func (t StreamTypes) Flat() bool {
	return t.Logical == rdfpb.LogicalFlatTriples || t.Logical == rdfpb.LogicalFlatQuads
}

// Grouped reports whether the logical type groups statements into
// per-frame graphs or datasets.
func (t StreamTypes) Grouped() bool {
	switch t.Logical {
	case rdfpb.LogicalGraphs, rdfpb.LogicalDatasets, rdfpb.LogicalSubjectGraphs,
		rdfpb.LogicalNamedGraphs, rdfpb.LogicalTimestampedNamedGraphs:
		return true
	default:
		return false
	}
}

// StreamParameters are the remaining stream options, immutable for the
// life of the stream.
type StreamParameters struct {
	StreamName            string `yaml:"stream_name"`
	GeneralizedStatements bool   `yaml:"generalized_statements"`
	RdfStar               bool   `yaml:"rdf_star"`
	Version               uint32 `yaml:"version"`
}

// version resolves the emitted protocol version: explicit if set,
// otherwise the lowest version covering the enabled features.
func (p StreamParameters) version() uint32 {
	if p.Version != 0 {
		return p.Version
	}
	if p.RdfStar {
		return ProtoVersion
	}
	return ProtoVersionBase
}

// optionsRow assembles the options row for a stream.
func optionsRow(preset LookupPreset, types StreamTypes, params StreamParameters) rdfpb.StreamRow {
	return rdfpb.OptionsRow(&rdfpb.StreamOptions{
		StreamName:            params.StreamName,
		PhysicalType:          types.Physical,
		GeneralizedStatements: params.GeneralizedStatements,
		RdfStar:               params.RdfStar,
		MaxNameTableSize:      preset.MaxNames,
		MaxPrefixTableSize:    preset.MaxPrefixes,
		MaxDatatypeTableSize:  preset.MaxDatatypes,
		LogicalType:           types.Logical,
		Version:               params.version(),
	})
}

// validateStreamOptions applies the checks both ends agree on: version
// range, table minimums and the type compatibility matrix.
func validateStreamOptions(o *rdfpb.StreamOptions) error {
	if o.Version == 0 || o.Version > ProtoVersion {
		return conformancef("unsupported protocol version %d (supported: 1..%d)", o.Version, ProtoVersion)
	}
	if err := (LookupPreset{
		MaxNames:     o.MaxNameTableSize,
		MaxPrefixes:  o.MaxPrefixTableSize,
		MaxDatatypes: o.MaxDatatypeTableSize,
	}).Validate(); err != nil {
		return err
	}
	return StreamTypes{Physical: o.PhysicalType, Logical: o.LogicalType}.Validate()
}

// StreamOption configures a stream writer.
type StreamOption struct{ apply func(*streamConfig) }

type streamConfig struct {
	preset    LookupPreset
	params    StreamParameters
	logical   rdfpb.LogicalStreamType
	frameSize int
	delimited bool
}

func newStreamConfig(defaultLogical rdfpb.LogicalStreamType) streamConfig {
	return streamConfig{
		preset:    PresetSmall(),
		logical:   defaultLogical,
		frameSize: DefaultFrameSize,
		delimited: true,
	}
}

// WithLookupPreset sets the lookup table sizes.
func WithLookupPreset(p LookupPreset) StreamOption {
	return StreamOption{func(c *streamConfig) { c.preset = p }}
}

// WithStreamParameters sets the stream name, feature flags and version.
func WithStreamParameters(p StreamParameters) StreamOption {
	return StreamOption{func(c *streamConfig) { c.params = p }}
}

// WithLogicalType overrides the logical stream type, and with it the
// framing policy.
func WithLogicalType(t rdfpb.LogicalStreamType) StreamOption {
	return StreamOption{func(c *streamConfig) { c.logical = t }}
}

// WithFrameSize sets the row count per frame for bounded flows.
func WithFrameSize(n int) StreamOption {
	return StreamOption{func(c *streamConfig) { c.frameSize = n }}
}

// WithDelimited toggles length-prefixed framing. Non-delimited streams
// hold every row in memory and write a single frame on Close, so the
// logical type is forced to UNSPECIFIED (manual flow).
func WithDelimited(delimited bool) StreamOption {
	return StreamOption{func(c *streamConfig) { c.delimited = delimited }}
}

// ReaderOption configures reading and decoding.
type ReaderOption struct{ apply func(*readerConfig) }

type readerConfig struct {
	strict    bool
	maxPreset *LookupPreset
}

func newReaderConfig() readerConfig {
	return readerConfig{strict: true}
}

// WithStrictTypes controls whether the reading mode (flat or grouped)
// must match the stream's logical type family. Strict is the default;
// non-strict accepts any logical type in either mode.
func WithStrictTypes(strict bool) ReaderOption {
	return ReaderOption{func(c *readerConfig) { c.strict = strict }}
}

// WithMaxLookupPreset bounds the table sizes this reader will allocate.
// A stream demanding larger tables fails with a conformance error.
func WithMaxLookupPreset(p LookupPreset) ReaderOption {
	return ReaderOption{func(c *readerConfig) { c.maxPreset = &p }}
}
