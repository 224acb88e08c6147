// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ascii

import (
	"strings"
	"testing"

	"github.com/g3n/das/daserror"
	"github.com/stretchr/testify/assert"
)

func TestNextLineChunked(t *testing.T) {

	// Chunk size smaller than the input exercises the refill path.
	r := NewReader(strings.NewReader("first\nsecond\nthird"), 8, "\n")
	var lines []string
	for {
		ok, err := r.NextLineChunked()
		assert.NoError(t, err)
		if !ok {
			break
		}
		beg, end := r.GetLineBounds()
		lines = append(lines, string(r.Buffer()[beg:end]))
	}
	assert.Equal(t, []string{"first", "second", "third"}, lines)
	assert.Equal(t, 3, r.Line())
}

func TestMultiByteTerminator(t *testing.T) {

	input := "SCOPEA\nvalue\nENDSCOPE\nSCOPEB\nENDSCOPE\n"
	r := NewReader(strings.NewReader(input), 16, "ENDSCOPE\n")
	ok, err := r.NextLineChunked()
	assert.NoError(t, err)
	assert.True(t, ok)
	beg, end := r.GetLineBounds()
	assert.Equal(t, "SCOPEA\nvalue\n", string(r.Buffer()[beg:end]))

	ok, err = r.NextLineChunked()
	assert.NoError(t, err)
	assert.True(t, ok)
	beg, end = r.GetLineBounds()
	assert.Equal(t, "SCOPEB\n", string(r.Buffer()[beg:end]))
}

func TestTerminatorAcrossChunkBoundary(t *testing.T) {

	// The terminator straddles the initial 10-byte chunk.
	input := "abcdefENDSCOPE\nxyzENDSCOPE\n"
	r := NewReader(strings.NewReader(input), 10, "ENDSCOPE\n")
	var lines []string
	for {
		ok, err := r.NextLineChunked()
		assert.NoError(t, err)
		if !ok {
			break
		}
		beg, end := r.GetLineBounds()
		lines = append(lines, string(r.Buffer()[beg:end]))
	}
	assert.Equal(t, []string{"abcdef", "xyz"}, lines)
}

func TestExtractWord(t *testing.T) {

	r := NewReader(strings.NewReader("  alpha\tbeta  gamma\n"), 0, "\n")
	ok, err := r.NextLineChunked()
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alpha", r.ExtractWord())
	assert.Equal(t, "beta", r.ExtractWord())
	assert.Equal(t, "gamma", r.ExtractWord())
	assert.Equal(t, "", r.ExtractWord())
}

func TestExtractString(t *testing.T) {

	r := NewReader(strings.NewReader(`NAME: "hello \"there\"" rest`+"\n"), 0, "\n")
	ok, err := r.NextLineChunked()
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "NAME:", r.ExtractWord())
	s, err := r.ExtractString()
	assert.NoError(t, err)
	assert.Equal(t, `hello "there"`, s)

	r = NewReader(strings.NewReader("\"unterminated\n"), 0, "\n")
	ok, _ = r.NextLineChunked()
	assert.True(t, ok)
	_, err = r.ExtractString()
	assert.Error(t, err)

	// A bare word where a quoted string is expected is a type error.
	r = NewReader(strings.NewReader("bare\n"), 0, "\n")
	ok, _ = r.NextLineChunked()
	assert.True(t, ok)
	_, err = r.ExtractString()
	assert.Equal(t, daserror.InvalidType, daserror.KindOf(err))
}

func TestLineTerminated(t *testing.T) {

	r := NewReader(strings.NewReader("first\nlast"), 0, "\n")
	ok, err := r.NextLineChunked()
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, r.LineTerminated())

	ok, err = r.NextLineChunked()
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, r.LineTerminated())
}

func TestExtractBlob(t *testing.T) {

	r := NewReader(strings.NewReader("abcdef"), 0, "\n")
	assert.NoError(t, r.ReadAll())
	b, err := r.ExtractBlob(3)
	assert.NoError(t, err)
	assert.Equal(t, []byte("abc"), b)
	assert.Equal(t, 3, r.GetReadPtr())

	_, err = r.ExtractBlob(10)
	assert.Error(t, err)
}

func TestReadStatementArgs(t *testing.T) {

	r := NewReader(strings.NewReader("f 1/2/3 4/5/6 7/8/9\n"), 0, "\n")
	ok, err := r.NextLineChunked()
	assert.NoError(t, err)
	assert.True(t, ok)
	args, err := r.ReadStatementArgs()
	assert.NoError(t, err)
	assert.Equal(t, []string{"f", "1/2/3", "4/5/6", "7/8/9"}, args)
}

func TestReadStatementArgsContinuation(t *testing.T) {

	r := NewReader(strings.NewReader("v 1 2 \\\n3\nvn 0 0 1\n"), 0, "\n")
	ok, err := r.NextLineChunked()
	assert.NoError(t, err)
	assert.True(t, ok)
	args, err := r.ReadStatementArgs()
	assert.NoError(t, err)
	assert.Equal(t, []string{"v", "1", "2", "3"}, args)

	ok, err = r.NextLineChunked()
	assert.NoError(t, err)
	assert.True(t, ok)
	args, err = r.ReadStatementArgs()
	assert.NoError(t, err)
	assert.Equal(t, []string{"vn", "0", "0", "1"}, args)
}

func TestSetReadPtr(t *testing.T) {

	r := NewReader(strings.NewReader("word more"), 0, "\n")
	assert.NoError(t, r.ReadAll())
	p := r.GetReadPtr()
	assert.Equal(t, "word", r.ExtractWord())
	r.SetReadPtr(p)
	assert.Equal(t, "word", r.ExtractWord())
}
