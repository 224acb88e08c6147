// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compiler

import (
	"github.com/g3n/das/das"
	"github.com/g3n/das/daserror"
	"github.com/g3n/das/loader/obj"
)

// objVertexKey identifies one unique position/uv/normal combination.
type objVertexKey struct {
	position uint32
	uv       uint32
	normal   uint32
}

// CompileOBJ lowers a parsed OBJ decoder into a DAS model: every
// group becomes one mesh with one primitive, with faces triangulated
// and re-indexed into shared position, UV, normal and index buffers.
func CompileOBJ(dec *obj.Decoder, props das.Properties) (*das.Model, error) {

	model := &das.Model{Props: props}

	var positions, uvs, normals, indices []byte
	var primWantUV, primWantNormal []bool
	hasUVs := false
	hasNormals := false

	for gi := range dec.Groups {
		group := &dec.Groups[gi]
		if len(group.Faces) == 0 && len(group.Points) == 0 {
			continue
		}

		// The index kinds of the last face are authoritative for the
		// whole group; faces missing one of its attributes are
		// unrecoverable.
		wantUV, wantNormal := false, false
		if len(group.Faces) > 0 {
			last := group.Faces[len(group.Faces)-1]
			lastIdx := last.Indices[len(last.Indices)-1]
			wantUV = lastIdx.UV != obj.InvalidIndex
			wantNormal = lastIdx.Normal != obj.InvalidIndex
		}

		prim := das.NewMeshPrimitive()
		prim.VertexBufferOffset = uint32(len(positions))
		if wantUV {
			prim.UVBufferIDs = []uint32{0}
			prim.UVBufferOffsets = []uint32{uint32(len(uvs))}
			prim.TextureIDs = []uint32{das.InvalidID}
			hasUVs = true
		}
		if wantNormal {
			prim.VertexNormalBufferOffset = uint32(len(normals))
			hasNormals = true
		}
		prim.IndexBufferOffset = uint32(len(indices))

		seen := make(map[objVertexKey]uint32)
		nunique := uint32(0)
		emit := func(idx obj.Index) error {
			if wantUV && idx.UV == obj.InvalidIndex {
				return daserror.New(daserror.InvalidValue, "face lacks uv index required by group")
			}
			if wantNormal && idx.Normal == obj.InvalidIndex {
				return daserror.New(daserror.InvalidValue, "face lacks normal index required by group")
			}
			key := objVertexKey{position: idx.Position, uv: das.InvalidID, normal: das.InvalidID}
			if wantUV {
				key.uv = idx.UV
			}
			if wantNormal {
				key.normal = idx.Normal
			}
			id, ok := seen[key]
			if !ok {
				id = nunique
				nunique++
				seen[key] = id
				p := dec.Positions[idx.Position]
				positions = appendF32(positions, p.X, p.Y, p.Z)
				if wantUV {
					uv := dec.UVs[idx.UV]
					uvs = appendF32(uvs, uv.X, uv.Y)
				}
				if wantNormal {
					n := dec.Normals[idx.Normal]
					normals = appendF32(normals, n.X, n.Y, n.Z)
				}
			}
			indices = appendU32(indices, id)
			return nil
		}

		for fi := range group.Faces {
			face := &group.Faces[fi]
			// Triangulate the polygon as a fan.
			for i := 1; i < len(face.Indices)-1; i++ {
				if err := emit(face.Indices[0]); err != nil {
					return nil, err
				}
				if err := emit(face.Indices[i]); err != nil {
					return nil, err
				}
				if err := emit(face.Indices[i+1]); err != nil {
					return nil, err
				}
			}
		}
		prim.IndicesCount = (uint32(len(indices)) - prim.IndexBufferOffset) / 4

		model.MeshPrimitives = append(model.MeshPrimitives, prim)
		primWantUV = append(primWantUV, wantUV)
		primWantNormal = append(primWantNormal, wantNormal)
		primID := uint32(len(model.MeshPrimitives) - 1)
		model.Meshes = append(model.Meshes, das.Mesh{
			Name:       group.Name,
			Primitives: []uint32{primID},
		})
	}

	// Buffer ids are assigned in emission order; primitives were built
	// against that order: vertex 0, indices 1, then uv and normal.
	model.Buffers = append(model.Buffers, das.Buffer{Type: das.BufferTypeVertex, Data: positions})
	model.Buffers = append(model.Buffers, das.Buffer{Type: das.BufferTypeIndices, Data: indices})
	uvID, normalID := das.InvalidID, das.InvalidID
	if hasUVs {
		model.Buffers = append(model.Buffers, das.Buffer{Type: das.BufferTypeTextureMap, Data: uvs})
		uvID = uint32(len(model.Buffers) - 1)
	}
	if hasNormals {
		model.Buffers = append(model.Buffers, das.Buffer{Type: das.BufferTypeVertexNormal, Data: normals})
		normalID = uint32(len(model.Buffers) - 1)
	}
	for i := range model.MeshPrimitives {
		p := &model.MeshPrimitives[i]
		p.VertexBufferID = 0
		p.IndexBufferID = 1
		if primWantUV[i] {
			p.UVBufferIDs[0] = uvID
		}
		if primWantNormal[i] {
			p.VertexNormalBufferID = normalID
		}
	}

	// One node per mesh, one scene referencing them all.
	var sceneNodes []uint32
	for mi := range model.Meshes {
		node := das.NewNode()
		node.Name = model.Meshes[mi].Name
		node.Mesh = uint32(mi)
		model.Nodes = append(model.Nodes, node)
		sceneNodes = append(sceneNodes, uint32(len(model.Nodes)-1))
	}
	model.Scenes = append(model.Scenes, das.Scene{Name: props.Model, Nodes: sceneNodes})
	model.Props.DefaultScene = 0
	model.DeriveSceneRoots()
	return model, nil
}
