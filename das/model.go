// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package das

import (
	"github.com/g3n/das/daserror"
)

// Model is one fully materialized DAS file. All entities are owned by
// the model and indexed by their position in the respective slice.
type Model struct {
	Props          Properties
	Buffers        []Buffer
	MeshPrimitives []MeshPrimitive
	MorphTargets   []MorphTarget
	Meshes         []Mesh
	Nodes          []Node
	SkeletonJoints []SkeletonJoint
	Skeletons      []Skeleton
	Channels       []AnimationChannel
	Animations     []Animation
	Scenes         []Scene
}

// DeriveSceneRoots computes, for every scene, the set difference
// between the scene's nodes and the union of the children arrays of
// those nodes. The result replaces each scene's Roots slice.
func (m *Model) DeriveSceneRoots() {

	for si := range m.Scenes {
		s := &m.Scenes[si]
		child := make(map[uint32]bool)
		for _, ni := range s.Nodes {
			if int(ni) >= len(m.Nodes) {
				continue
			}
			for _, ci := range m.Nodes[ni].Children {
				child[ci] = true
			}
		}
		s.Roots = s.Roots[:0]
		for _, ni := range s.Nodes {
			if !child[ni] {
				s.Roots = append(s.Roots, ni)
			}
		}
	}
}

// Validate checks the structural invariants of the model: buffer ids
// in range, paired slice lengths in agreement, and the node and joint
// graphs free of cycles.
func (m *Model) Validate() error {

	nbuf := uint32(len(m.Buffers))
	checkID := func(id uint32, what string) error {
		if id != InvalidID && id >= nbuf {
			return daserror.Newf(daserror.InvalidValue, "%s buffer id %d out of range", what, id)
		}
		return nil
	}

	for i := range m.MeshPrimitives {
		p := &m.MeshPrimitives[i]
		for _, c := range []struct {
			id   uint32
			what string
		}{
			{p.IndexBufferID, "index"},
			{p.VertexBufferID, "vertex"},
			{p.VertexNormalBufferID, "vertex normal"},
			{p.VertexTangentBufferID, "vertex tangent"},
		} {
			if err := checkID(c.id, c.what); err != nil {
				return err
			}
		}
		if len(p.UVBufferIDs) != len(p.UVBufferOffsets) || len(p.UVBufferIDs) != len(p.TextureIDs) {
			return daserror.New(daserror.InvalidValue, "uv set arrays disagree in length")
		}
		if len(p.ColorMulBufferIDs) != len(p.ColorMulBufferOffsets) {
			return daserror.New(daserror.InvalidValue, "color multiplier arrays disagree in length")
		}
		if len(p.JointIndexBufferIDs) != len(p.JointIndexBufferOffsets) ||
			len(p.JointIndexBufferIDs) != len(p.JointWeightBufferIDs) ||
			len(p.JointIndexBufferIDs) != len(p.JointWeightBufferOffsets) {
			return daserror.New(daserror.InvalidValue, "joint set arrays disagree in length")
		}
		if len(p.MorphTargets) != len(p.MorphWeights) {
			return daserror.New(daserror.InvalidValue, "morph target arrays disagree in length")
		}
		for _, id := range p.UVBufferIDs {
			if err := checkID(id, "uv"); err != nil {
				return err
			}
		}
	}

	for i := range m.Channels {
		ch := &m.Channels[i]
		stride := ch.TargetStride()
		if len(ch.TargetValues) != int(ch.KeyframeCount)*stride {
			return daserror.Newf(daserror.InvalidValue,
				"channel %d target values length %d, want %d", i, len(ch.TargetValues), int(ch.KeyframeCount)*stride)
		}
		if ch.Interpolation == InterpolationCubicSpline && len(ch.Tangents) != int(ch.KeyframeCount)*stride {
			return daserror.Newf(daserror.InvalidValue, "channel %d tangents length %d", i, len(ch.Tangents))
		}
	}

	if err := checkForest(len(m.Nodes), func(i int) []uint32 { return m.Nodes[i].Children }); err != nil {
		return err
	}
	return checkForest(len(m.SkeletonJoints), func(i int) []uint32 { return m.SkeletonJoints[i].Children })
}

// checkForest verifies that the children relation over n entities
// forms a forest: every entity has at most one parent and no walk
// revisits an entity.
func checkForest(n int, children func(int) []uint32) error {

	parent := make([]int, n)
	for i := range parent {
		parent[i] = -1
	}
	for i := 0; i < n; i++ {
		for _, c := range children(i) {
			if int(c) >= n {
				return daserror.Newf(daserror.InvalidValue, "child id %d out of range", c)
			}
			if parent[c] >= 0 {
				return daserror.Newf(daserror.CyclicGraph, "entity %d has multiple parents", c)
			}
			parent[c] = i
		}
	}
	// A forest with single parents can only break by containing a cycle,
	// which a walk up the parent chain detects.
	for i := 0; i < n; i++ {
		slow, fast := i, i
		for parent[fast] >= 0 && parent[parent[fast]] >= 0 {
			slow = parent[slow]
			fast = parent[parent[fast]]
			if slow == fast {
				return daserror.Newf(daserror.CyclicGraph, "cycle through entity %d", i)
			}
		}
	}
	return nil
}
