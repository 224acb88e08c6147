// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package das

import (
	"bytes"
	"testing"

	"github.com/g3n/das/daserror"
	"github.com/stretchr/testify/assert"
)

// roundTrip writes the model to memory and parses it back.
func roundTrip(t *testing.T, m *Model) *Model {

	var buf bytes.Buffer
	w := NewWriter(&buf)
	assert.NoError(t, w.WriteModel(m))

	out, err := Read(bytes.NewReader(buf.Bytes()), "test.das")
	assert.NoError(t, err)
	return out
}

func TestPropertiesRoundTrip(t *testing.T) {

	m := &Model{
		Props: Properties{
			Model:     "test",
			Author:    "me",
			Copyright: "",
			ModDate:   1,
		},
		Scenes: []Scene{{Name: "empty"}},
	}
	out := roundTrip(t, m)

	assert.Equal(t, "test", out.Props.Model)
	assert.Equal(t, "me", out.Props.Author)
	assert.Equal(t, "", out.Props.Copyright)
	assert.Equal(t, uint64(1), out.Props.ModDate)
	assert.Equal(t, uint32(0), out.Props.DefaultScene)
	assert.False(t, out.Props.Compression)
	assert.Len(t, out.Scenes, 1)
	assert.Equal(t, "empty", out.Scenes[0].Name)
	assert.Empty(t, out.Scenes[0].Nodes)
	assert.Empty(t, out.Scenes[0].Roots)
	assert.Empty(t, out.Buffers)
	assert.Empty(t, out.Meshes)
}

func TestDefaultProperties(t *testing.T) {

	m := &Model{}
	out := roundTrip(t, m)
	assert.Equal(t, DefaultAuthor, out.Props.Author)
	assert.NotZero(t, out.Props.ModDate)
}

func TestFullRoundTrip(t *testing.T) {

	prim := NewMeshPrimitive()
	prim.IndexBufferID = 1
	prim.IndicesCount = 3
	prim.VertexBufferID = 0
	prim.UVBufferIDs = []uint32{2}
	prim.UVBufferOffsets = []uint32{16}
	prim.TextureIDs = []uint32{InvalidID}
	prim.MorphTargets = []uint32{0}
	prim.MorphWeights = []float32{0.5}

	mt := NewMorphTarget()
	mt.VertexBufferID = 0
	mt.VertexBufferOffset = 48

	joint := NewSkeletonJoint()
	joint.Name = "root"
	joint.Translation.Set(1, 2, 3)
	joint.Scale = 2

	ch := NewAnimationChannel()
	ch.JointID = 0
	ch.Target = TargetRotation
	ch.Interpolation = InterpolationCubicSpline
	ch.KeyframeCount = 2
	ch.Keyframes = []float32{0, 1}
	ch.TargetValues = []float32{0, 0, 0, 1, 0, 0, 0, 1}
	ch.Tangents = make([]float32, 8)

	node := NewNode()
	node.Name = "n0"
	node.Mesh = 0
	node.Skeleton = 0

	m := &Model{
		Props: Properties{Model: "full", Author: "a", ModDate: 7},
		Buffers: []Buffer{
			{Type: BufferTypeVertex, Data: []byte{1, 2, 3, 4}},
			{Type: BufferTypeIndices, Data: []byte{0, 0, 0, 0}},
			{Type: BufferTypeTextureMap, Data: []byte{9, 9}},
		},
		MeshPrimitives: []MeshPrimitive{prim},
		MorphTargets:   []MorphTarget{mt},
		Meshes:         []Mesh{{Name: "mesh", Primitives: []uint32{0}}},
		Nodes:          []Node{node},
		SkeletonJoints: []SkeletonJoint{joint},
		Skeletons:      []Skeleton{{Name: "skel", Parent: InvalidID, Joints: []uint32{0}}},
		Channels:       []AnimationChannel{ch},
		Animations:     []Animation{{Name: "anim", Channels: []uint32{0}}},
		Scenes:         []Scene{{Name: "scene", Nodes: []uint32{0}}},
	}

	out := roundTrip(t, m)
	assert.Equal(t, m.Props, out.Props)
	assert.Equal(t, m.Buffers, out.Buffers)
	assert.Equal(t, m.MeshPrimitives, out.MeshPrimitives)
	assert.Equal(t, m.MorphTargets, out.MorphTargets)
	assert.Equal(t, m.Meshes, out.Meshes)
	assert.Equal(t, m.Nodes, out.Nodes)
	assert.Equal(t, m.SkeletonJoints, out.SkeletonJoints)
	assert.Equal(t, m.Skeletons, out.Skeletons)
	assert.Equal(t, m.Channels, out.Channels)
	assert.Equal(t, m.Animations, out.Animations)
	assert.Equal(t, []uint32{0}, out.Scenes[0].Roots)
	assert.NoError(t, out.Validate())
}

func TestCompressedRoundTrip(t *testing.T) {

	m := &Model{
		Props: Properties{Model: "packed", ModDate: 3, Compression: true},
		Buffers: []Buffer{
			{Type: BufferTypeVertex, Data: bytes.Repeat([]byte{0xAB}, 256)},
		},
	}
	var buf bytes.Buffer
	w := NewWriter(&buf)
	assert.NoError(t, w.WriteModel(m))

	// The payload after the signature must carry the Huffman magic.
	raw := buf.Bytes()
	assert.Equal(t, []byte{'H', 'U', 'F', 0}, raw[SignatureSize:SignatureSize+4])

	out, err := Read(bytes.NewReader(raw), "packed.das")
	assert.NoError(t, err)
	assert.True(t, out.Props.Compression)
	assert.Equal(t, m.Buffers[0].Data, out.Buffers[0].Data)
}

func TestSceneRootDerivation(t *testing.T) {

	nodes := make([]Node, 4)
	for i := range nodes {
		nodes[i] = NewNode()
	}
	nodes[0].Children = []uint32{1, 2}
	nodes[2].Children = []uint32{3}

	m := &Model{
		Nodes:  nodes,
		Scenes: []Scene{{Name: "s", Nodes: []uint32{0, 1, 2, 3}}},
	}
	m.DeriveSceneRoots()
	assert.Equal(t, []uint32{0}, m.Scenes[0].Roots)

	out := roundTrip(t, m)
	assert.Equal(t, []uint32{0}, out.Scenes[0].Roots)
}

func TestInvalidSignature(t *testing.T) {

	_, err := Read(bytes.NewReader([]byte("not a das file at all")), "bad.das")
	assert.Equal(t, daserror.InvalidSignature, daserror.KindOf(err))

	// Valid magic with mixed padding is also rejected.
	data := []byte{0x44, 0x41, 0x53, 0x00}
	data = append(data, bytes.Repeat([]byte{0x20}, 11)...)
	data = append(data, 0x00)
	_, err = Read(bytes.NewReader(data), "bad.das")
	assert.Equal(t, daserror.InvalidSignature, daserror.KindOf(err))
}

func TestSignaturePaddingVariants(t *testing.T) {

	for _, pad := range []byte{0x00, 0x0A, 0x20} {
		var buf bytes.Buffer
		buf.Write([]byte{0x44, 0x41, 0x53, 0x00})
		buf.Write(bytes.Repeat([]byte{pad}, 12))
		_, err := Read(bytes.NewReader(buf.Bytes()), "empty.das")
		assert.NoError(t, err, "padding %#x", pad)
	}
}

func TestUnknownScope(t *testing.T) {

	var buf bytes.Buffer
	buf.Write([]byte{0x44, 0x41, 0x53, 0x00})
	buf.Write(bytes.Repeat([]byte{0x00}, 12))
	buf.WriteString("MYSTERY\nENDSCOPE\n")
	_, err := Read(bytes.NewReader(buf.Bytes()), "unknown.das")
	assert.Equal(t, daserror.InvalidKeyword, daserror.KindOf(err))
}

func TestIncompleteScope(t *testing.T) {

	var buf bytes.Buffer
	w := NewWriter(&buf)
	assert.NoError(t, w.InitialiseFile(&Properties{Model: "x"}))
	assert.NoError(t, w.beginScope("BUFFER"))
	err := w.Finish()
	assert.Equal(t, daserror.IncompleteScope, daserror.KindOf(err))
}

func TestScopeAlreadyClosed(t *testing.T) {

	var buf bytes.Buffer
	w := NewWriter(&buf)
	err := w.endScope()
	assert.Equal(t, daserror.ScopeAlreadyClosed, daserror.KindOf(err))
}

func TestValidateCatchesCycles(t *testing.T) {

	a := NewNode()
	b := NewNode()
	a.Children = []uint32{1}
	b.Children = []uint32{0}
	m := &Model{Nodes: []Node{a, b}}
	err := m.Validate()
	assert.Equal(t, daserror.CyclicGraph, daserror.KindOf(err))
}

func TestNodeTransformRoundTrip(t *testing.T) {

	node := NewNode()
	node.Transform.Set(
		1, 0, 0, 5,
		0, 1, 0, 6,
		0, 0, 1, 7,
		0, 0, 0, 1,
	)
	m := &Model{Nodes: []Node{node}}
	out := roundTrip(t, m)
	assert.True(t, node.Transform.Equals(&out.Nodes[0].Transform))
	assert.Equal(t, float32(5), out.Nodes[0].Transform[3])
}
