// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package obj

import (
	"strings"
	"testing"

	"github.com/g3n/das/daserror"
	"github.com/stretchr/testify/assert"
)

func decode(t *testing.T, input string) *Decoder {

	t.Helper()
	dec, err := DecodeReader(strings.NewReader(input), "test.obj")
	assert.NoError(t, err)
	return dec
}

func TestParseVertices(t *testing.T) {

	dec := decode(t, "v 1 2 3\nv 4 5 6 0.5\nvt 0.1\nvt 0.1 0.2\nvn 0 0 1\nvp 0.5 0.5\n")
	assert.Len(t, dec.Positions, 2)
	// w defaults to 1 and is always stored.
	assert.Equal(t, float32(1), dec.Positions[0].W)
	assert.Equal(t, float32(0.5), dec.Positions[1].W)
	assert.Len(t, dec.UVs, 2)
	assert.Equal(t, float32(0), dec.UVs[0].Y)
	assert.Len(t, dec.Normals, 1)
	assert.Len(t, dec.Params, 1)
}

func TestParseFaceKinds(t *testing.T) {

	input := `v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
vt 1 0
vt 0 1
vn 0 0 1
f 1 2 3
f 1/1 2/2 3/3
f 1//1 2//1 3//1
f 1/1/1 2/2/1 3/3/1
`
	dec := decode(t, input)
	assert.Len(t, dec.Groups, 1)
	faces := dec.Groups[0].Faces
	assert.Len(t, faces, 4)

	assert.Equal(t, InvalidIndex, faces[0].Indices[0].UV)
	assert.Equal(t, InvalidIndex, faces[0].Indices[0].Normal)
	assert.Equal(t, uint32(0), faces[1].Indices[0].UV)
	assert.Equal(t, InvalidIndex, faces[1].Indices[0].Normal)
	assert.Equal(t, InvalidIndex, faces[2].Indices[0].UV)
	assert.Equal(t, uint32(0), faces[2].Indices[0].Normal)
	assert.Equal(t, uint32(0), faces[3].Indices[0].UV)
	assert.Equal(t, uint32(0), faces[3].Indices[0].Normal)

	// 1-based source indices become 0-based.
	assert.Equal(t, uint32(2), faces[0].Indices[2].Position)
}

func TestParseNegativeIndices(t *testing.T) {

	dec := decode(t, "v 0 0 0\nv 1 0 0\nv 0 1 0\nf -3 -2 -1\n")
	face := dec.Groups[0].Faces[0]
	assert.Equal(t, uint32(0), face.Indices[0].Position)
	assert.Equal(t, uint32(2), face.Indices[2].Position)
}

func TestParseGroupNames(t *testing.T) {

	dec := decode(t, "o my fine object\nv 0 0 0\ng left side\n")
	assert.Equal(t, "my fine object", dec.Groups[0].Name)
	assert.Equal(t, "left side", dec.Groups[1].Name)
}

func TestMultipleObjectsWarn(t *testing.T) {

	dec := decode(t, "o one\no two\n")
	assert.NotEmpty(t, dec.Warnings)
}

func TestLineContinuation(t *testing.T) {

	dec := decode(t, "v 0 0 \\\n0\nv 1 0 0\nv 0 1 0\nf 1 2 \\\n3\n")
	assert.Len(t, dec.Positions, 3)
	assert.Len(t, dec.Groups[0].Faces[0].Indices, 3)
}

func TestErrors(t *testing.T) {

	tests := []struct {
		input string
		kind  daserror.Kind
	}{
		{"v 1 2\n", daserror.NotEnoughAttributes},
		{"v 1 2 3 4 5\n", daserror.TooManyAttributes},
		{"vn 1 2\n", daserror.NotEnoughAttributes},
		{"vn 1 2 3 4\n", daserror.TooManyAttributes},
		{"v a b c\n", daserror.InvalidArgument},
		{"f 1 2 3\n", daserror.InvalidArgument}, // indices before any vertex
		{"v 0 0 0\nf 1 2\n", daserror.NotEnoughAttributes},
		{"boom 1 2\n", daserror.InvalidKeyword},
		{"g\n", daserror.MissingIdentifier},
		{"cstype nurbs\n", daserror.InvalidCSType},
		{"v 0 0 0\nf 1;1 1 1\n", daserror.InvalidSymbol},
		{"v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3", daserror.IncompleteNewline},
	}
	for _, test := range tests {
		_, err := DecodeReader(strings.NewReader(test.input), "bad.obj")
		assert.Error(t, err, test.input)
		assert.Equal(t, test.kind, daserror.KindOf(err), test.input)
	}
}

func TestUnusedStatements(t *testing.T) {

	dec := decode(t, "mtllib scene.mtl\nusemtl red\ns 1\nv 0 0 0\ncstype bezier\n")
	assert.Len(t, dec.Positions, 1)
	assert.NotEmpty(t, dec.Warnings)
}

func TestComments(t *testing.T) {

	dec := decode(t, "# a comment\nv 0 0 0\n#another\n")
	assert.Len(t, dec.Positions, 1)
}
