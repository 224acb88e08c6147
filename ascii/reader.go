// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ascii implements a chunked reader for line-oriented text
// formats. Logical lines are terminated by a caller-supplied multi-byte
// terminator string which is located with the Knuth-Morris-Pratt
// failure function, so scope-structured formats can use terminators
// such as "ENDSCOPE\n" while plain text formats use "\n".
package ascii

import (
	"io"
	"strings"

	"github.com/g3n/das/daserror"
)

// DefaultChunkSize is the chunk size used by NewReader
// when the caller passes a non-positive size.
const DefaultChunkSize = 4096

// Reader reads text input in chunks and exposes line bounds,
// word/string/blob extraction and skip primitives.
type Reader struct {
	r          io.Reader
	file       string
	buf        []byte
	chunkSize  int
	terminator []byte
	failure    []int
	lineBeg    int
	lineEnd    int
	next       int   // position where the next line search begins
	ptr        int   // read pointer inside the current line
	base       int64 // input offset of buf[0]
	line       int   // 1-based number of the current line
	terminated bool  // the current line ended with the terminator
	eof        bool
	lastLine   bool // the final unterminated line was already produced
}

// NewReader creates a chunked reader over r with the specified chunk
// size and line terminator.
func NewReader(r io.Reader, chunkSize int, terminator string) *Reader {

	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	ar := &Reader{
		r:          r,
		chunkSize:  chunkSize,
		terminator: []byte(terminator),
	}
	ar.failure = buildFailure(ar.terminator)
	return ar
}

// buildFailure computes the KMP failure function for the pattern.
func buildFailure(pattern []byte) []int {

	failure := make([]int, len(pattern))
	k := 0
	for i := 1; i < len(pattern); i++ {
		for k > 0 && pattern[k] != pattern[i] {
			k = failure[k-1]
		}
		if pattern[k] == pattern[i] {
			k++
		}
		failure[i] = k
	}
	return failure
}

// findTerminator locates the terminator in data starting at from,
// returning the index of its first byte or -1.
func (ar *Reader) findTerminator(from int) int {

	k := 0
	for i := from; i < len(ar.buf); i++ {
		for k > 0 && ar.terminator[k] != ar.buf[i] {
			k = ar.failure[k-1]
		}
		if ar.terminator[k] == ar.buf[i] {
			k++
		}
		if k == len(ar.terminator) {
			return i - k + 1
		}
	}
	return -1
}

// SetFileName sets the input name used in error context.
func (ar *Reader) SetFileName(name string) {

	ar.file = name
}

// FileName returns the input name used in error context.
func (ar *Reader) FileName() string {

	return ar.file
}

// Line returns the 1-based number of the current line.
func (ar *Reader) Line() int {

	return ar.line
}

// Offset returns the input offset of the read pointer.
func (ar *Reader) Offset() int64 {

	return ar.base + int64(ar.ptr)
}

// ReadNewChunk discards the consumed part of the internal window and
// reads up to one chunk of new data. It returns false when the input
// is exhausted and no new data was read.
func (ar *Reader) ReadNewChunk() (bool, error) {

	if ar.next > 0 {
		n := copy(ar.buf, ar.buf[ar.next:])
		ar.buf = ar.buf[:n]
		ar.base += int64(ar.next)
		ar.lineBeg -= ar.next
		ar.lineEnd -= ar.next
		ar.ptr -= ar.next
		if ar.lineBeg < 0 {
			ar.lineBeg = 0
		}
		if ar.lineEnd < 0 {
			ar.lineEnd = 0
		}
		if ar.ptr < 0 {
			ar.ptr = 0
		}
		ar.next = 0
	}
	if ar.eof {
		return false, nil
	}

	chunk := make([]byte, ar.chunkSize)
	n, err := io.ReadFull(ar.r, chunk)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		ar.eof = true
		err = nil
	}
	if err != nil {
		return false, daserror.Wrap(daserror.InvalidFile, err).AtOffset(ar.file, ar.base+int64(len(ar.buf)))
	}
	ar.buf = append(ar.buf, chunk[:n]...)
	return n > 0, nil
}

// ReadAll reads the whole input into the internal window and sets the
// line bounds to span it. Used by binary consumers which address the
// input with the read pointer primitives only.
func (ar *Reader) ReadAll() error {

	for !ar.eof {
		if _, err := ar.ReadNewChunk(); err != nil {
			return err
		}
	}
	ar.lineBeg = 0
	ar.lineEnd = len(ar.buf)
	ar.next = len(ar.buf)
	ar.ptr = 0
	ar.terminated = true
	ar.lastLine = true
	return nil
}

// NextLine advances the line window to the next terminated line and
// returns true. It returns false when the current chunk holds no
// complete line; the caller then requests ReadNewChunk and retries.
// At end of input a final unterminated line is produced once.
func (ar *Reader) NextLine() bool {

	i := ar.findTerminator(ar.next)
	if i < 0 {
		if ar.eof && !ar.lastLine && ar.next < len(ar.buf) {
			ar.lineBeg = ar.next
			ar.lineEnd = len(ar.buf)
			ar.next = len(ar.buf)
			ar.ptr = ar.lineBeg
			ar.line++
			ar.terminated = false
			ar.lastLine = true
			return true
		}
		return false
	}
	ar.lineBeg = ar.next
	ar.lineEnd = i
	ar.next = i + len(ar.terminator)
	ar.ptr = ar.lineBeg
	ar.line++
	ar.terminated = true
	return true
}

// LineTerminated reports whether the current line ended with the
// terminator. Only the final line of the input can lack one.
func (ar *Reader) LineTerminated() bool {

	return ar.terminated
}

// NextLineChunked advances to the next line, transparently reading new
// chunks as needed. It returns false at end of input.
func (ar *Reader) NextLineChunked() (bool, error) {

	for {
		if ar.NextLine() {
			return true, nil
		}
		more, err := ar.ReadNewChunk()
		if err != nil {
			return false, err
		}
		if !more && ar.eof {
			if ar.NextLine() {
				return true, nil
			}
			return false, nil
		}
	}
}

// GetLineBounds returns the bounds [beg, end) of the current line.
func (ar *Reader) GetLineBounds() (int, int) {

	return ar.lineBeg, ar.lineEnd
}

// GetReadPtr returns the read pointer inside the internal window.
func (ar *Reader) GetReadPtr() int {

	return ar.ptr
}

// SetReadPtr sets the read pointer inside the internal window.
func (ar *Reader) SetReadPtr(p int) {

	ar.ptr = p
}

// Buffer exposes the internal window. The returned slice is only valid
// until the next ReadNewChunk call.
func (ar *Reader) Buffer() []byte {

	return ar.buf
}

func isBlank(c byte) bool {

	return c == ' ' || c == '\t' || c == '\r' || c == 0x00
}

// SkipSkippable advances the read pointer over spaces, tabs, zero
// bytes, carriage returns and, when requested, newlines.
func (ar *Reader) SkipSkippable(skipNewlines bool) {

	for ar.ptr < ar.lineEnd {
		c := ar.buf[ar.ptr]
		if isBlank(c) || (skipNewlines && c == '\n') {
			ar.ptr++
			continue
		}
		break
	}
}

// ExtractWord returns the next blank-delimited word from the current
// line, advancing the read pointer past it. An empty string is
// returned when the line is exhausted.
func (ar *Reader) ExtractWord() string {

	ar.SkipSkippable(true)
	beg := ar.ptr
	for ar.ptr < ar.lineEnd {
		c := ar.buf[ar.ptr]
		if isBlank(c) || c == '\n' {
			break
		}
		ar.ptr++
	}
	return string(ar.buf[beg:ar.ptr])
}

// ExtractString returns the next quoted string from the current line.
// The only recognized escape is \" for an embedded quote.
func (ar *Reader) ExtractString() (string, error) {

	ar.SkipSkippable(true)
	if ar.ptr >= ar.lineEnd || ar.buf[ar.ptr] != '"' {
		return "", daserror.New(daserror.InvalidType, "expected quoted string").AtOffset(ar.file, ar.Offset())
	}
	ar.ptr++
	out := make([]byte, 0, 16)
	for ar.ptr < ar.lineEnd {
		c := ar.buf[ar.ptr]
		if c == '\\' && ar.ptr+1 < ar.lineEnd && ar.buf[ar.ptr+1] == '"' {
			out = append(out, '"')
			ar.ptr += 2
			continue
		}
		if c == '"' {
			ar.ptr++
			return string(out), nil
		}
		out = append(out, c)
		ar.ptr++
	}
	return "", daserror.New(daserror.UnexpectedEndStatement, "unterminated string").AtOffset(ar.file, ar.Offset())
}

// ExtractBlob copies n raw bytes from the read pointer, advancing it.
func (ar *Reader) ExtractBlob(n int) ([]byte, error) {

	if ar.ptr+n > len(ar.buf) {
		return nil, daserror.Newf(daserror.UnexpectedEOF, "blob of %d bytes exceeds input", n).AtOffset(ar.file, ar.Offset())
	}
	out := make([]byte, n)
	copy(out, ar.buf[ar.ptr:ar.ptr+n])
	ar.ptr += n
	return out, nil
}

// ReadStatementArgs tokenizes the remainder of the current line into
// blank-delimited strings. A terminal backslash continues the
// statement on the following line.
func (ar *Reader) ReadStatementArgs() ([]string, error) {

	var args []string
	for {
		for {
			ar.SkipSkippable(false)
			if ar.ptr >= ar.lineEnd || ar.buf[ar.ptr] == '\n' {
				break
			}
			w := ar.ExtractWord()
			if w == "" {
				break
			}
			args = append(args, w)
		}
		cont := false
		if len(args) > 0 {
			if last := args[len(args)-1]; last == "\\" {
				args = args[:len(args)-1]
				cont = true
			} else if strings.HasSuffix(last, "\\") {
				args[len(args)-1] = strings.TrimSuffix(last, "\\")
				cont = true
			}
		}
		if cont {
			ok, err := ar.NextLineChunked()
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, daserror.New(daserror.UnexpectedEOF, "statement continues past end of input").AtOffset(ar.file, ar.Offset())
			}
			continue
		}
		return args, nil
	}
}
