// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compiler

import (
	"bytes"
	"strings"
	"testing"

	"github.com/g3n/das/das"
	"github.com/g3n/das/loader/stl"
	"github.com/g3n/das/math32"
	"github.com/stretchr/testify/assert"
)

const singleTriangleSTL = `solid tri
facet normal 0 0 1
outer loop
vertex 0 0 0
vertex 1 0 0
vertex 0 1 0
endloop
endfacet
endsolid tri
`

func TestCompileSingleTriangle(t *testing.T) {

	solids, err := stl.DecodeASCII(strings.NewReader(singleTriangleSTL), "tri.stl")
	assert.NoError(t, err)

	model, err := CompileSTL(solids, das.Properties{})
	assert.NoError(t, err)

	// Three unique vertices: 36 bytes of positions, 12 of indices,
	// 36 of normals.
	assert.Len(t, model.Buffers, 3)
	assert.Equal(t, das.BufferTypeVertex, model.Buffers[0].Type)
	assert.Equal(t, 36, len(model.Buffers[0].Data))
	assert.Equal(t, das.BufferTypeIndices, model.Buffers[1].Type)
	assert.Equal(t, 12, len(model.Buffers[1].Data))
	assert.Equal(t, das.BufferTypeVertexNormal, model.Buffers[2].Type)
	assert.Equal(t, 36, len(model.Buffers[2].Data))

	assert.Equal(t, []byte{0, 0, 0, 0, 1, 0, 0, 0, 2, 0, 0, 0}, model.Buffers[1].Data)

	assert.Len(t, model.MeshPrimitives, 1)
	assert.Equal(t, uint32(3), model.MeshPrimitives[0].IndicesCount)
	assert.Len(t, model.Meshes, 1)
	assert.Len(t, model.Nodes, 1)
	assert.True(t, model.Nodes[0].Transform.Equals(math32.NewMatrix4()))
	assert.Len(t, model.Scenes, 1)
	assert.Equal(t, []uint32{0}, model.Scenes[0].Nodes)
	assert.Equal(t, []uint32{0}, model.Scenes[0].Roots)
	assert.NoError(t, model.Validate())
}

func TestCompileDeduplicatesVertices(t *testing.T) {

	// Two facets sharing an edge and a normal: 4 unique vertices.
	input := `solid quad
facet normal 0 0 1
outer loop
vertex 0 0 0
vertex 1 0 0
vertex 0 1 0
endloop
endfacet
facet normal 0 0 1
outer loop
vertex 1 0 0
vertex 1 1 0
vertex 0 1 0
endloop
endfacet
endsolid quad
`
	solids, err := stl.DecodeASCII(strings.NewReader(input), "quad.stl")
	assert.NoError(t, err)
	model, err := CompileSTL(solids, das.Properties{Model: "quad"})
	assert.NoError(t, err)

	assert.Equal(t, 4*12, len(model.Buffers[0].Data))
	assert.Equal(t, 6*4, len(model.Buffers[1].Data))
	assert.Equal(t, uint32(6), model.MeshPrimitives[0].IndicesCount)
}

func TestCompileBinarySTL(t *testing.T) {

	var buf bytes.Buffer
	buf.Write(make([]byte, 80))
	buf.Write([]byte{1, 0, 0, 0})
	rec := make([]byte, 50)
	buf.Write(rec)

	solids, err := stl.DecodeBinary(buf.Bytes(), "bin.stl")
	assert.NoError(t, err)
	model, err := CompileSTL(solids, das.Properties{})
	assert.NoError(t, err)
	assert.Equal(t, uint32(3), model.MeshPrimitives[0].IndicesCount)
}
