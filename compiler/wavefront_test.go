// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compiler

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/g3n/das/das"
	"github.com/g3n/das/loader/obj"
	"github.com/stretchr/testify/assert"
)

const quadOBJ = `o quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vn 0 0 1
f 1//1 2//1 3//1 4//1
`

func TestCompileQuad(t *testing.T) {

	dec, err := obj.DecodeReader(strings.NewReader(quadOBJ), "quad.obj")
	assert.NoError(t, err)
	model, err := CompileOBJ(dec, das.Properties{Model: "quad"})
	assert.NoError(t, err)

	// One group, fan-triangulated into two triangles.
	assert.Len(t, model.Meshes, 1)
	assert.Len(t, model.MeshPrimitives, 1)
	prim := model.MeshPrimitives[0]
	assert.Equal(t, uint32(6), prim.IndicesCount)
	assert.Equal(t, das.InvalidID, prim.VertexTangentBufferID)
	assert.Empty(t, prim.UVBufferIDs)
	assert.NotEqual(t, das.InvalidID, prim.VertexNormalBufferID)

	// Positions: 4 unique vertices after deduplication.
	positions := model.Buffers[prim.VertexBufferID].Data
	assert.Equal(t, 4*12, len(positions))

	// Indexing the position buffer by the index stream must
	// reconstruct the fan triangulation of the face.
	indices := decodeU32(t, model.Buffers[prim.IndexBufferID].Data)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, indices)

	want := [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}
	for i, w := range want {
		assert.Equal(t, w[0], decodeF32(positions[i*12:]))
		assert.Equal(t, w[1], decodeF32(positions[i*12+4:]))
		assert.Equal(t, w[2], decodeF32(positions[i*12+8:]))
	}
	assert.NoError(t, model.Validate())
}

func TestCompileGroups(t *testing.T) {

	input := `g one
v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
g two
v 0 0 1
v 1 0 1
v 0 1 1
f 4 5 6
`
	dec, err := obj.DecodeReader(strings.NewReader(input), "two.obj")
	assert.NoError(t, err)
	model, err := CompileOBJ(dec, das.Properties{})
	assert.NoError(t, err)

	assert.Len(t, model.Meshes, 2)
	assert.Equal(t, "one", model.Meshes[0].Name)
	assert.Equal(t, "two", model.Meshes[1].Name)
	assert.Len(t, model.Nodes, 2)
	assert.Len(t, model.Scenes, 1)
	assert.Equal(t, []uint32{0, 1}, model.Scenes[0].Roots)

	// The second primitive's index values restart at zero against its
	// own vertex region.
	p1 := model.MeshPrimitives[1]
	assert.Equal(t, uint32(36), p1.VertexBufferOffset)
	indices := decodeU32(t, model.Buffers[1].Data)
	assert.Equal(t, []uint32{0, 1, 2, 0, 1, 2}, indices)
}

func TestCompileMixedKindsFails(t *testing.T) {

	// The group's last face requires normals; the first face lacks them.
	input := `v 0 0 0
v 1 0 0
v 0 1 0
vn 0 0 1
f 1 2 3
f 1//1 2//1 3//1
`
	dec, err := obj.DecodeReader(strings.NewReader(input), "mixed.obj")
	assert.NoError(t, err)
	_, err = CompileOBJ(dec, das.Properties{})
	assert.Error(t, err)
}

func decodeU32(t *testing.T, b []byte) []uint32 {

	t.Helper()
	out := make([]uint32, len(b)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(b[4*i:])
	}
	return out
}

func decodeF32(b []byte) float32 {

	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}
