// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package das implements the DAS binary asset container: the data
// model, the scope-structured writer and the matching reader. A DAS
// file carries everything an engine needs at load time: properties,
// opaque byte buffers, mesh primitives with morph targets, meshes, a
// node tree, scenes, skeletons with joints and sampled animation
// channels.
package das

import (
	"github.com/g3n/das/math32"
)

// Magic is the 4-byte file signature interpreted little-endian ("DAS\0").
const Magic = uint32(0x00534144)

// SignatureSize is the byte length of the file signature:
// the magic followed by 12 padding bytes.
const SignatureSize = 16

// DefaultAuthor is stored in the properties when no author is supplied.
const DefaultAuthor = "g3n das v1.0"

// InvalidID marks an optional buffer, texture or parent reference as absent.
const InvalidID = uint32(0xFFFFFFFF)

// BufferType is a bitset describing the content of a buffer.
type BufferType uint16

const (
	BufferTypeUnknown       BufferType = 0x0000
	BufferTypeVertex        BufferType = 0x0001
	BufferTypeTextureMap    BufferType = 0x0002
	BufferTypeVertexNormal  BufferType = 0x0004
	BufferTypeVertexTangent BufferType = 0x0008
	BufferTypeIndices       BufferType = 0x0010
	BufferTypeTextureJPEG   BufferType = 0x0020
	BufferTypeTexturePNG    BufferType = 0x0040
	BufferTypeTextureTGA    BufferType = 0x0080
	BufferTypeTextureBMP    BufferType = 0x0100
	BufferTypeTexturePPM    BufferType = 0x0200
	BufferTypeTextureRaw    BufferType = 0x0400
	BufferTypeKeyframe      BufferType = 0x0800
	BufferTypeColor         BufferType = 0x1000
	BufferTypeWeights       BufferType = 0x2000
	BufferTypeJoints        BufferType = 0x4000
)

// AnimationTarget selects the node or joint property a channel animates.
type AnimationTarget uint8

const (
	TargetWeights AnimationTarget = iota
	TargetTranslation
	TargetRotation
	TargetScale
)

// InterpolationType selects how keyframe values are interpolated.
type InterpolationType uint8

const (
	InterpolationLinear InterpolationType = iota
	InterpolationStep
	InterpolationCubicSpline
)

// Properties is the PROPERTIES scope of a DAS file.
type Properties struct {
	Model        string
	Author       string
	Copyright    string
	ModDate      uint64 // seconds since epoch
	Compression  bool
	DefaultScene uint32
}

// Buffer is one opaque byte payload with a content type bitset.
type Buffer struct {
	Type BufferType
	Data []byte
}

// MeshPrimitive is one drawable unit of a mesh. Optional buffer ids
// hold InvalidID when the attribute is absent. The UV, color
// multiplier and joint set fields are parallel slices mirroring the
// paired arrays of the file format.
type MeshPrimitive struct {
	IndexBufferID             uint32
	IndexBufferOffset         uint32
	IndicesCount              uint32
	VertexBufferID            uint32
	VertexBufferOffset        uint32
	VertexNormalBufferID      uint32
	VertexNormalBufferOffset  uint32
	VertexTangentBufferID     uint32
	VertexTangentBufferOffset uint32

	UVBufferIDs     []uint32
	UVBufferOffsets []uint32
	TextureIDs      []uint32

	ColorMulBufferIDs     []uint32
	ColorMulBufferOffsets []uint32

	JointIndexBufferIDs      []uint32
	JointIndexBufferOffsets  []uint32
	JointWeightBufferIDs     []uint32
	JointWeightBufferOffsets []uint32

	MorphTargets []uint32
	MorphWeights []float32
}

// NewMeshPrimitive creates a mesh primitive with all optional
// references marked absent.
func NewMeshPrimitive() MeshPrimitive {

	return MeshPrimitive{
		IndexBufferID:         InvalidID,
		VertexBufferID:        InvalidID,
		VertexNormalBufferID:  InvalidID,
		VertexTangentBufferID: InvalidID,
	}
}

// MorphTarget carries per-vertex deltas applied to a primitive with a
// weight. It has the shape of a MeshPrimitive minus the index stream
// and the joint data.
type MorphTarget struct {
	VertexBufferID            uint32
	VertexBufferOffset        uint32
	VertexNormalBufferID      uint32
	VertexNormalBufferOffset  uint32
	VertexTangentBufferID     uint32
	VertexTangentBufferOffset uint32

	UVBufferIDs     []uint32
	UVBufferOffsets []uint32

	ColorMulBufferIDs     []uint32
	ColorMulBufferOffsets []uint32
}

// NewMorphTarget creates a morph target with all optional references
// marked absent.
func NewMorphTarget() MorphTarget {

	return MorphTarget{
		VertexBufferID:        InvalidID,
		VertexNormalBufferID:  InvalidID,
		VertexTangentBufferID: InvalidID,
	}
}

// Mesh groups mesh primitives under a name.
type Mesh struct {
	Name       string
	Primitives []uint32
}

// Node is one scene graph node. Mesh and Skeleton hold InvalidID when
// the node references neither.
type Node struct {
	Name      string
	Children  []uint32
	Mesh      uint32
	Skeleton  uint32
	Transform math32.Matrix4
}

// NewNode creates a node with an identity transform and no references.
func NewNode() Node {

	return Node{
		Mesh:      InvalidID,
		Skeleton:  InvalidID,
		Transform: *math32.NewMatrix4(),
	}
}

// Scene is a named list of nodes. Roots is derived after parsing:
// the nodes of the scene that no scene node references as a child.
type Scene struct {
	Name  string
	Nodes []uint32
	Roots []uint32
}

// Skeleton is a named list of joints with an optional parent node.
type Skeleton struct {
	Name   string
	Parent uint32
	Joints []uint32
}

// SkeletonJoint is one bone of a skeleton with its inverse bind pose
// and local TRS transform.
type SkeletonJoint struct {
	InverseBindPos math32.Matrix4
	Scale          float32 // uniform scale
	Rotation       math32.Quaternion
	Translation    math32.Vector3
	Name           string
	Children       []uint32
}

// NewSkeletonJoint creates a joint with an identity bind pose and TRS.
func NewSkeletonJoint() SkeletonJoint {

	return SkeletonJoint{
		InverseBindPos: *math32.NewMatrix4(),
		Scale:          1,
		Rotation:       *math32.NewQuaternion(0, 0, 0, 1),
	}
}

// AnimationChannel is one sampled animation stream targeting a node or
// joint property. Exactly one of NodeID and JointID is meaningful for
// a given target; the other holds InvalidID.
type AnimationChannel struct {
	NodeID        uint32
	JointID       uint32
	Target        AnimationTarget
	Interpolation InterpolationType
	KeyframeCount uint32
	WeightCount   uint32 // morph target count for weight channels
	Keyframes     []float32
	Tangents      []float32 // sized like TargetValues, present iff Interpolation is CUBICSPLINE
	TargetValues  []float32
}

// NewAnimationChannel creates a channel with no target references.
func NewAnimationChannel() AnimationChannel {

	return AnimationChannel{
		NodeID:  InvalidID,
		JointID: InvalidID,
	}
}

// TargetStride returns the number of floats one keyframe of the
// channel occupies in TargetValues.
func (ch *AnimationChannel) TargetStride() int {

	switch ch.Target {
	case TargetWeights:
		return int(ch.WeightCount)
	case TargetTranslation:
		return 3
	case TargetRotation:
		return 4
	case TargetScale:
		return 1
	}
	return 0
}

// Animation groups animation channels under a name.
type Animation struct {
	Name     string
	Channels []uint32
}
