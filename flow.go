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

// FrameFlow accumulates stream rows and decides where frames end. The
// policy is a function of the logical stream type: bounded for flat
// streams, boundary-driven for grouped ones, manual otherwise.
type FrameFlow interface {
	// LogicalType identifies the policy on the options row.
	LogicalType() rdfpb.LogicalStreamType

	// Append buffers a row, returning a completed frame when the
	// policy closes one, else nil.
	Append(row rdfpb.StreamRow) *rdfpb.StreamFrame

	// FrameFromGraph cuts a frame at a graph boundary. Only the
	// GRAPHS flow honors it; others return nil.
	FrameFromGraph() *rdfpb.StreamFrame

	// FrameFromDataset cuts a frame at a dataset boundary. Only the
	// DATASETS flow honors it; others return nil.
	FrameFromDataset() *rdfpb.StreamFrame

	// Flush returns the buffered rows as a final frame, or nil when
	// nothing is buffered. The stream must flush at end of stream.
	Flush() *rdfpb.StreamFrame
}

// flowBase implements the row buffer shared by all flows.
type flowBase struct {
	rows []rdfpb.StreamRow
}

func (f *flowBase) Append(row rdfpb.StreamRow) *rdfpb.StreamFrame {
	f.rows = append(f.rows, row)
	return nil
}

func (f *flowBase) take() *rdfpb.StreamFrame {
	if len(f.rows) == 0 {
		return nil
	}
	frame := &rdfpb.StreamFrame{Rows: f.rows}
	f.rows = nil
	return frame
}

func (f *flowBase) FrameFromGraph() *rdfpb.StreamFrame   { return nil }
func (f *flowBase) FrameFromDataset() *rdfpb.StreamFrame { return nil }
func (f *flowBase) Flush() *rdfpb.StreamFrame            { return f.take() }

// boundedFlow cuts a frame whenever the buffered row count reaches
// frameSize. Used by the two flat logical types.
type boundedFlow struct {
	flowBase
	logical   rdfpb.LogicalStreamType
	frameSize int
}

func (f *boundedFlow) LogicalType() rdfpb.LogicalStreamType { return f.logical }

func (f *boundedFlow) Append(row rdfpb.StreamRow) *rdfpb.StreamFrame {
	f.rows = append(f.rows, row)
	if len(f.rows) >= f.frameSize {
		return f.take()
	}
	return nil
}

// graphsFlow cuts one frame per complete graph. Shared by GRAPHS and
// its SUBJECT_GRAPHS subtype.
type graphsFlow struct {
	flowBase
	logical rdfpb.LogicalStreamType
}

func (f *graphsFlow) LogicalType() rdfpb.LogicalStreamType { return f.logical }
func (f *graphsFlow) FrameFromGraph() *rdfpb.StreamFrame   { return f.take() }

// datasetsFlow cuts one frame per dataset boundary, as signalled by
// the caller. Shared by DATASETS and its named-graph subtypes.
type datasetsFlow struct {
	flowBase
	logical rdfpb.LogicalStreamType
}

func (f *datasetsFlow) LogicalType() rdfpb.LogicalStreamType { return f.logical }
func (f *datasetsFlow) FrameFromDataset() *rdfpb.StreamFrame { return f.take() }

// manualFlow never cuts frames on its own; the caller flushes. All
// rows stay buffered, which is what non-delimited single-frame output
// needs.
type manualFlow struct {
	flowBase
	logical rdfpb.LogicalStreamType
}

func (f *manualFlow) LogicalType() rdfpb.LogicalStreamType { return f.logical }

// FlowForType returns the frame flow implementing the policy of the
// given logical type.
func FlowForType(logical rdfpb.LogicalStreamType, frameSize int) (FrameFlow, error) {
	if frameSize <= 0 {
		frameSize = DefaultFrameSize
	}
	switch logical {
	case rdfpb.LogicalFlatTriples, rdfpb.LogicalFlatQuads:
		return &boundedFlow{logical: logical, frameSize: frameSize}, nil
	case rdfpb.LogicalGraphs, rdfpb.LogicalSubjectGraphs:
		return &graphsFlow{logical: logical}, nil
	case rdfpb.LogicalDatasets, rdfpb.LogicalNamedGraphs, rdfpb.LogicalTimestampedNamedGraphs:
		return &datasetsFlow{logical: logical}, nil
	case rdfpb.LogicalUnspecified:
		return &manualFlow{}, nil
	default:
		return nil, notImplementedf("no frame flow for logical stream type %d", logical)
	}
}
