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
	"errors"
	"fmt"
	"io"
)

// Root errors of the taxonomy. Every error returned by this package
// matches exactly one of them under [errors.Is].
var (
	// ErrConformance marks input that violates the Jelly format: a
	// missing options row, an empty frame, an out-of-range lookup
	// index, a disabled table being referenced, and the like.
	ErrConformance = errors.New("jelly: conformance error")

	// ErrAssertion marks a broken internal invariant, such as a
	// physical/logical type pair outside the compatibility matrix.
	ErrAssertion = errors.New("jelly: assertion failed")

	// ErrNotImplemented marks an adapter callback or stream feature
	// the implementation does not support.
	ErrNotImplemented = errors.New("jelly: not implemented")

	// ErrIO wraps failures of the underlying byte stream.
	ErrIO = errors.New("jelly: i/o error")
)

func conformancef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConformance, fmt.Sprintf(format, args...))
}

func assertf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrAssertion, fmt.Sprintf(format, args...))
}

func notImplementedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotImplemented, fmt.Sprintf(format, args...))
}

// wrapIO tags an error from the byte-stream layer. io.EOF is passed
// through untouched so iteration can use it as the end-of-stream
// signal.
func wrapIO(err error) error {
	if err == nil || errors.Is(err, io.EOF) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrIO, err)
}
