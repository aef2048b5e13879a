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

package rdfpb

import (
	"errors"
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protowire"
)

// MaxFrameSize bounds the length prefix accepted when reading
// delimited frames, guarding against hostile or corrupt input
// demanding absurd allocations.
const MaxFrameSize = 1 << 30

// WriteDelimited writes the frame to w as a varint length prefix
// followed by the frame bytes.
func WriteDelimited(w io.Writer, f *StreamFrame) error {
	size := f.Size()
	b := make([]byte, 0, protowire.SizeVarint(uint64(size))+size)
	b = protowire.AppendVarint(b, uint64(size))
	b = f.MarshalAppend(b)
	_, err := w.Write(b)
	return err
}

// ReadDelimited reads one length-prefixed frame from r. It returns
// io.EOF when the stream ends cleanly before a length prefix, and
// io.ErrUnexpectedEOF when it ends mid-frame.
func ReadDelimited(r io.ByteReader, f *StreamFrame) error {
	size, err := readUvarint(r)
	if err != nil {
		return err
	}
	if size > MaxFrameSize {
		return fmt.Errorf("rdfpb: frame of %d bytes exceeds the %d byte limit", size, MaxFrameSize)
	}
	buf := make([]byte, size)
	if err := readFull(r, buf); err != nil {
		return err
	}
	return f.Unmarshal(buf)
}

// readUvarint is binary.ReadUvarint with protowire's overflow limits,
// so delimited streams and embedded varints reject the same inputs.
func readUvarint(r io.ByteReader) (uint64, error) {
	var v uint64
	for shift := uint(0); shift < 64; shift += 7 {
		c, err := r.ReadByte()
		if err != nil {
			if shift > 0 && errors.Is(err, io.EOF) {
				return 0, io.ErrUnexpectedEOF
			}
			return 0, err
		}
		v |= uint64(c&0x7f) << shift
		if c < 0x80 {
			return v, nil
		}
	}
	return 0, errors.New("rdfpb: length prefix overflows a 64-bit varint")
}

func readFull(r io.ByteReader, buf []byte) error {
	if rr, ok := r.(io.Reader); ok {
		_, err := io.ReadFull(rr, buf)
		if errors.Is(err, io.EOF) {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	for i := range buf {
		c, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return io.ErrUnexpectedEOF
			}
			return err
		}
		buf[i] = c
	}
	return nil
}
