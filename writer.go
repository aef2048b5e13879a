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

// FrameWriter serializes frames to a byte stream, either as varint
// length-prefixed messages (safe for concatenation and streaming) or
// as exactly one bare message.
type FrameWriter struct {
	w         io.Writer
	delimited bool
	frames    int
}

// NewFrameWriter returns a frame writer over w.
func NewFrameWriter(w io.Writer, delimited bool) *FrameWriter {
	return &FrameWriter{w: w, delimited: delimited}
}

// Delimited reports the framing mode.
func (fw *FrameWriter) Delimited() bool { return fw.delimited }

// WriteFrame writes one frame. In non-delimited mode only a single
// frame may ever be written.
func (fw *FrameWriter) WriteFrame(f *rdfpb.StreamFrame) error {
	if !fw.delimited && fw.frames > 0 {
		return assertf("non-delimited output holds exactly one frame")
	}
	fw.frames++
	if fw.delimited {
		return wrapIO(rdfpb.WriteDelimited(fw.w, f))
	}
	_, err := fw.w.Write(f.Marshal())
	return wrapIO(err)
}
