// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package huffman

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundTrip(t *testing.T) {

	tests := [][]byte{
		{},
		{0x00},
		{0xFF},
		[]byte("a"),
		[]byte("abracadabra"),
		[]byte("the quick brown fox jumps over the lazy dog"),
		bytes.Repeat([]byte{0x41}, 1000),
		bytes.Repeat([]byte("abc"), 333),
		{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 250, 251, 252, 253, 254, 255},
	}
	for _, input := range tests {
		enc := Encode(input)
		dec, err := Decode(enc)
		assert.NoError(t, err)
		assert.Equal(t, input, dec)
	}
}

func TestRepeatedByteSize(t *testing.T) {

	// 1000 bytes of one symbol: 15-byte header plus one bit per byte.
	input := bytes.Repeat([]byte{0x41}, 1000)
	enc := Encode(input)
	assert.Equal(t, 15+125, len(enc))

	dec, err := Decode(enc)
	assert.NoError(t, err)
	assert.Equal(t, input, dec)
}

func TestEmptyInput(t *testing.T) {

	enc := Encode(nil)
	// Header only: magic, size, zero table entries.
	assert.Equal(t, 10, len(enc))
	dec, err := Decode(enc)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(dec))
}

func TestDecodeTolerantOfTrailingZero(t *testing.T) {

	input := []byte("abracadabra")
	enc := append(Encode(input), 0x00)
	dec, err := Decode(enc)
	assert.NoError(t, err)
	assert.Equal(t, input, dec)
}

func TestDecodeErrors(t *testing.T) {

	// Bad magic
	_, err := Decode([]byte("NOPE....."))
	assert.Error(t, err)

	// Truncated header
	_, err = Decode([]byte{'H', 'U', 'F', 0, 1})
	assert.Error(t, err)

	// Bitstream ending before original_size bytes were produced
	enc := Encode([]byte("abracadabra"))
	_, err = Decode(enc[:len(enc)-2])
	assert.Error(t, err)
}

func TestIsEncoded(t *testing.T) {

	assert.True(t, IsEncoded(Encode([]byte("x"))))
	assert.False(t, IsEncoded([]byte("PROPERTIES\n")))
	assert.False(t, IsEncoded([]byte{'H', 'U'}))
}

func TestStreamingEncoder(t *testing.T) {

	var out bytes.Buffer
	enc := NewEncoder(&out)
	_, err := enc.Write([]byte("abra"))
	assert.NoError(t, err)
	_, err = enc.Write([]byte("cadabra"))
	assert.NoError(t, err)
	assert.NoError(t, enc.Finish())

	assert.Equal(t, Encode([]byte("abracadabra")), out.Bytes())
	_, err = enc.Write([]byte("x"))
	assert.Error(t, err)
}

func TestShiftToMSB(t *testing.T) {

	tests := []struct {
		in    []byte
		shift uint
		want  []byte
	}{
		{[]byte{0x00, 0x01}, 0, []byte{0x00, 0x01}},
		{[]byte{0x00, 0x01}, 1, []byte{0x00, 0x02}},
		{[]byte{0x00, 0x80}, 1, []byte{0x01, 0x00}},
		{[]byte{0x00, 0xFF}, 4, []byte{0x0F, 0xF0}},
		{[]byte{0x00, 0x01}, 8, []byte{0x01, 0x00}},
		{[]byte{0x00, 0x00, 0x01}, 9, []byte{0x00, 0x02, 0x00}},
		{[]byte{0x12, 0x34}, 16, []byte{0x00, 0x00}},
	}
	for _, test := range tests {
		b := append([]byte(nil), test.in...)
		ShiftToMSB(b, test.shift)
		assert.Equal(t, test.want, b, "shift %d", test.shift)
	}
}

func TestShiftToLSB(t *testing.T) {

	tests := []struct {
		in    []byte
		shift uint
		want  []byte
	}{
		{[]byte{0x80, 0x00}, 0, []byte{0x80, 0x00}},
		{[]byte{0x80, 0x00}, 1, []byte{0x40, 0x00}},
		{[]byte{0x01, 0x00}, 1, []byte{0x00, 0x80}},
		{[]byte{0xF0, 0x00}, 4, []byte{0x0F, 0x00}},
		{[]byte{0x01, 0x00}, 8, []byte{0x00, 0x01}},
		{[]byte{0x02, 0x00, 0x00}, 9, []byte{0x00, 0x01, 0x00}},
		{[]byte{0x12, 0x34}, 16, []byte{0x00, 0x00}},
	}
	for _, test := range tests {
		b := append([]byte(nil), test.in...)
		ShiftToLSB(b, test.shift)
		assert.Equal(t, test.want, b, "shift %d", test.shift)
	}
}

func TestShiftRoundTrip(t *testing.T) {

	b := []byte{0x00, 0x00, 0x6D, 0xF1}
	orig := append([]byte(nil), b...)
	ShiftToMSB(b, 13)
	ShiftToLSB(b, 13)
	assert.Equal(t, orig, b)
}
