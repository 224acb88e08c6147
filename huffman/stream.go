// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package huffman

import (
	"bytes"
	"io"
)

// Encoder is a stateful transformer that consumes input bytes and
// produces the compressed stream on Finish. The persisted frequency
// table requires the whole input before the header can be emitted,
// so written bytes are staged in memory until then.
type Encoder struct {
	w    io.Writer
	buf  bytes.Buffer
	done bool
}

// NewEncoder creates an encoder writing the compressed stream to w.
func NewEncoder(w io.Writer) *Encoder {

	return &Encoder{w: w}
}

// Write stages more input bytes. It implements io.Writer.
func (e *Encoder) Write(p []byte) (int, error) {

	if e.done {
		return 0, io.ErrClosedPipe
	}
	return e.buf.Write(p)
}

// Finish encodes the staged input and flushes the compressed stream.
// The encoder cannot be written to afterwards.
func (e *Encoder) Finish() error {

	if e.done {
		return io.ErrClosedPipe
	}
	e.done = true
	_, err := e.w.Write(Encode(e.buf.Bytes()))
	return err
}
