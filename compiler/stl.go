// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compiler

import (
	"math"

	"github.com/g3n/das/das"
	"github.com/g3n/das/loader/stl"
	"github.com/g3n/das/math32"
)

// stlVertexKey identifies one unique (position, normal) pair by the
// raw bit patterns of its six floats.
type stlVertexKey [6]uint32

// CompileSTL lowers parsed STL solids into a DAS model: vertices are
// deduplicated into shared position and normal buffers, a single
// 32-bit index stream is generated, and every solid becomes one mesh
// primitive of a single mesh in a one-node default scene.
func CompileSTL(solids []stl.Solid, props das.Properties) (*das.Model, error) {

	model := &das.Model{Props: props}

	var positions, normals, indices []byte
	seen := make(map[stlVertexKey]uint32)
	nunique := uint32(0)

	mesh := das.Mesh{Name: props.Model}
	for _, solid := range solids {
		prim := das.NewMeshPrimitive()
		prim.VertexBufferID = 0
		prim.IndexBufferID = 1
		prim.VertexNormalBufferID = 2
		prim.IndexBufferOffset = uint32(len(indices))
		prim.IndicesCount = uint32(len(solid.Facets)) * 3

		for _, facet := range solid.Facets {
			for _, v := range facet.Vertices {
				key := stlVertexKey{
					math.Float32bits(v.X), math.Float32bits(v.Y), math.Float32bits(v.Z),
					math.Float32bits(facet.Normal.X), math.Float32bits(facet.Normal.Y), math.Float32bits(facet.Normal.Z),
				}
				idx, ok := seen[key]
				if !ok {
					idx = nunique
					nunique++
					seen[key] = idx
					positions = appendF32(positions, v.X, v.Y, v.Z)
					normals = appendF32(normals, facet.Normal.X, facet.Normal.Y, facet.Normal.Z)
				}
				indices = appendU32(indices, idx)
			}
		}
		model.MeshPrimitives = append(model.MeshPrimitives, prim)
		mesh.Primitives = append(mesh.Primitives, uint32(len(model.MeshPrimitives)-1))
		if mesh.Name == "" {
			mesh.Name = solid.Name
		}
	}

	model.Buffers = []das.Buffer{
		{Type: das.BufferTypeVertex, Data: positions},
		{Type: das.BufferTypeIndices, Data: indices},
		{Type: das.BufferTypeVertexNormal, Data: normals},
	}
	model.Meshes = append(model.Meshes, mesh)

	node := das.NewNode()
	node.Name = mesh.Name
	node.Mesh = 0
	node.Transform = *math32.NewMatrix4()
	model.Nodes = append(model.Nodes, node)

	model.Scenes = append(model.Scenes, das.Scene{
		Name:  mesh.Name,
		Nodes: []uint32{0},
	})
	model.Props.DefaultScene = 0
	model.DeriveSceneRoots()
	return model, nil
}
