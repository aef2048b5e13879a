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
	"bufio"
	"errors"
	"io"
	"iter"

	"github.com/jelly-rdf/jelly-go/rdfpb"
)

// frameTag is the wire tag of the first row in a frame: field 1,
// length-delimited. A non-delimited stream therefore opens with this
// byte, while a delimited stream opens with a varint length that only
// collides when it happens to equal 10.
const frameTag = 0x0A

// DelimitedHint classifies a stream from its first three bytes.
//
// Truth table (0A = frameTag, NN = anything else, ?? = don't care):
//
//	b1  b2  b3  result
//	NN  ??  ??  delimited
//	0A  NN  ??  non-delimited
//	0A  0A  NN  delimited (frame 1 is 10 bytes long)
//	0A  0A  0A  non-delimited (options row is 10 bytes long)
//
// Inputs shorter than three bytes classify as non-delimited.
func DelimitedHint(header []byte) bool {
	return len(header) == 3 &&
		(header[0] != frameTag || (header[1] == frameTag && header[2] != frameTag))
}

// FrameReader detects the framing of a Jelly byte stream and yields
// its frames in order. The first frame's options row is extracted and
// validated up front.
type FrameReader struct {
	br        *bufio.Reader
	delimited bool
	options   *rdfpb.StreamOptions
	pending   *rdfpb.StreamFrame
	err       error
	done      bool
}

// NewFrameReader sniffs r, reads the first frame and validates its
// options row.
func NewFrameReader(r io.Reader, opts ...ReaderOption) (*FrameReader, error) {
	cfg := newReaderConfig()
	for _, o := range opts {
		o.apply(&cfg)
	}
	br := bufio.NewReader(r)
	header, err := br.Peek(3)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, wrapIO(err)
	}
	fr := &FrameReader{br: br, delimited: DelimitedHint(header)}

	first := new(rdfpb.StreamFrame)
	if fr.delimited {
		err = rdfpb.ReadDelimited(br, first)
	} else {
		var raw []byte
		raw, err = io.ReadAll(br)
		if err == nil {
			err = first.Unmarshal(raw)
		}
	}
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, conformancef("no frames in input")
		}
		return nil, wrapIO(err)
	}
	if len(first.Rows) == 0 {
		return nil, conformancef("first frame has no rows")
	}
	if first.Rows[0].Kind != rdfpb.RowOptions {
		return nil, conformancef("first row of the stream is %v, not options", first.Rows[0].Kind)
	}
	fr.options = first.Rows[0].Options
	if err := validateStreamOptions(fr.options); err != nil {
		return nil, err
	}
	if cfg.maxPreset != nil {
		if fr.options.MaxNameTableSize > cfg.maxPreset.MaxNames ||
			fr.options.MaxPrefixTableSize > cfg.maxPreset.MaxPrefixes ||
			fr.options.MaxDatatypeTableSize > cfg.maxPreset.MaxDatatypes {
			return nil, conformancef("stream lookup tables (%d/%d/%d) exceed the configured bounds",
				fr.options.MaxNameTableSize, fr.options.MaxPrefixTableSize, fr.options.MaxDatatypeTableSize)
		}
	}
	fr.pending = first
	return fr, nil
}

// Options returns the validated options row of the stream.
func (fr *FrameReader) Options() *rdfpb.StreamOptions { return fr.options }

// Delimited reports the detected framing mode.
func (fr *FrameReader) Delimited() bool { return fr.delimited }

// Next returns the next frame, or io.EOF after the last one. Frames
// with zero rows fail with a conformance error.
func (fr *FrameReader) Next() (*rdfpb.StreamFrame, error) {
	if fr.err != nil {
		return nil, fr.err
	}
	if fr.pending != nil {
		f := fr.pending
		fr.pending = nil
		return f, nil
	}
	if fr.done || !fr.delimited {
		return nil, io.EOF
	}
	f := new(rdfpb.StreamFrame)
	if err := rdfpb.ReadDelimited(fr.br, f); err != nil {
		if errors.Is(err, io.EOF) {
			fr.done = true
			return nil, io.EOF
		}
		fr.err = wrapIO(err)
		return nil, fr.err
	}
	if len(f.Rows) == 0 {
		fr.err = conformancef("frame has no rows")
		return nil, fr.err
	}
	return f, nil
}

// Frames iterates the remaining frames. Iteration stops at the first
// error; io.EOF is not surfaced.
func (fr *FrameReader) Frames() iter.Seq2[*rdfpb.StreamFrame, error] {
	return func(yield func(*rdfpb.StreamFrame, error) bool) {
		for {
			f, err := fr.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(f, err) || err != nil {
				return
			}
		}
	}
}
