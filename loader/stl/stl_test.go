// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stl

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/g3n/das/daserror"
	"github.com/stretchr/testify/assert"
)

const asciiSolid = `solid part
facet normal 0 0 1
outer loop
vertex 0 0 0
vertex 1 0 0
vertex 0 1 0
endloop
endfacet
endsolid part
`

func TestDecodeASCII(t *testing.T) {

	solids, err := DecodeASCII(strings.NewReader(asciiSolid), "part.stl")
	assert.NoError(t, err)
	assert.Len(t, solids, 1)
	assert.Equal(t, "part", solids[0].Name)
	assert.Len(t, solids[0].Facets, 1)

	facet := solids[0].Facets[0]
	assert.Equal(t, float32(1), facet.Normal.Z)
	assert.Equal(t, float32(1), facet.Vertices[1].X)
	assert.Equal(t, float32(1), facet.Vertices[2].Y)
}

func TestDecodeASCIIMultipleSolids(t *testing.T) {

	input := asciiSolid + strings.ReplaceAll(asciiSolid, "part", "other")
	solids, err := DecodeASCII(strings.NewReader(input), "multi.stl")
	assert.NoError(t, err)
	assert.Len(t, solids, 2)
	assert.Equal(t, "other", solids[1].Name)
}

func TestDecodeASCIIErrors(t *testing.T) {

	tests := []struct {
		input string
		kind  daserror.Kind
	}{
		{strings.Replace(asciiSolid, "endsolid part", "endsolid other", 1), daserror.InvalidArgument},
		{strings.Replace(asciiSolid, "vertex 0 1 0\n", "", 1), daserror.NotEnoughAttributes},
		{strings.Replace(asciiSolid, "endloop", "vertex 1 1 1\nvertex 2 2 2\nendloop", 1), daserror.TooManyAttributes},
		{strings.Replace(asciiSolid, "endsolid part\n", "", 1), daserror.IncompleteScope},
		{strings.Replace(asciiSolid, "outer loop", "inner loop", 1), daserror.InvalidKeyword},
		{strings.Replace(asciiSolid, "vertex 0 0 0", "vertex x y z", 1), daserror.InvalidArgument},
	}
	for _, test := range tests {
		_, err := DecodeASCII(strings.NewReader(test.input), "bad.stl")
		assert.Error(t, err)
		assert.Equal(t, test.kind, daserror.KindOf(err), test.input)
	}
}

func binarySolid(count uint32) []byte {

	data := make([]byte, 0, 84+50*int(count))
	header := make([]byte, 80)
	copy(header, "binary part")
	data = append(data, header...)
	data = binary.LittleEndian.AppendUint32(data, count)
	for i := uint32(0); i < count; i++ {
		rec := make([]byte, 50)
		binary.LittleEndian.PutUint32(rec[8:], math.Float32bits(1)) // normal z
		binary.LittleEndian.PutUint32(rec[12:], math.Float32bits(float32(i)))
		data = append(data, rec...)
	}
	return data
}

func TestDecodeBinary(t *testing.T) {

	solids, err := DecodeBinary(binarySolid(2), "part.stl")
	assert.NoError(t, err)
	assert.Len(t, solids, 1)
	assert.Equal(t, "binary part", solids[0].Name)
	assert.Len(t, solids[0].Facets, 2)
	assert.Equal(t, float32(1), solids[0].Facets[0].Normal.Z)
	assert.Equal(t, float32(1), solids[0].Facets[1].Vertices[0].X)
}

func TestDecodeBinaryLengthMismatch(t *testing.T) {

	data := binarySolid(2)
	_, err := DecodeBinary(data[:len(data)-1], "short.stl")
	assert.Equal(t, daserror.InvalidDataLength, daserror.KindOf(err))

	_, err = DecodeBinary(append(data, 0), "long.stl")
	assert.Equal(t, daserror.InvalidDataLength, daserror.KindOf(err))

	_, err = DecodeBinary(data[:50], "tiny.stl")
	assert.Equal(t, daserror.InvalidDataLength, daserror.KindOf(err))
}

func TestIsASCIISniffing(t *testing.T) {

	assert.True(t, isASCII([]byte(asciiSolid)))
	// A binary header may also start with "solid".
	bin := binarySolid(1)
	copy(bin, "solid name")
	assert.False(t, isASCII(bin))
}
