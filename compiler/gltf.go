// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compiler

import (
	"encoding/binary"
	"fmt"

	"github.com/g3n/das/das"
	"github.com/g3n/das/daserror"
	"github.com/g3n/das/loader/gltf"
	"github.com/g3n/das/math32"
	"github.com/g3n/das/texture"
)

// GLTFOptions control the glTF lowering.
type GLTFOptions struct {
	// RawTextures embeds decoded RGBA pixel streams instead of the
	// encoded image bytes.
	RawTextures bool
}

// streamKind identifies one packed attribute stream. The values
// double as placeholder buffer ids inside primitives until the
// streams are materialized into buffers.
type streamKind uint32

const (
	kindPosition streamKind = iota
	kindIndex
	kindNormal
	kindTangent
	kindUV
	kindColor
	kindJoints
	kindWeights
	kindCount
)

var streamTypes = [kindCount]das.BufferType{
	kindPosition: das.BufferTypeVertex,
	kindIndex:    das.BufferTypeIndices,
	kindNormal:   das.BufferTypeVertexNormal,
	kindTangent:  das.BufferTypeVertexTangent,
	kindUV:       das.BufferTypeTextureMap,
	kindColor:    das.BufferTypeColor,
	kindJoints:   das.BufferTypeJoints,
	kindWeights:  das.BufferTypeWeights,
}

// gltfCompiler holds the state of one glTF lowering. The staging
// streams are released once the model owns its packed buffers.
type gltfCompiler struct {
	doc   *gltf.GLTF
	model *das.Model
	opts  GLTFOptions

	nodeParent  []int
	isJoint     []bool
	nodeToDas   []uint32
	nodeToJoint []uint32

	streams [kindCount][]byte

	// uv set texture patch-ups: per primitive, image index per uv set
	primTexImages [][]int
	imageToBuffer []uint32
}

// CompileGLTF lowers a parsed glTF document into a DAS model.
func CompileGLTF(doc *gltf.GLTF, props das.Properties, opts *GLTFOptions) (*das.Model, error) {

	c := &gltfCompiler{
		doc:   doc,
		model: &das.Model{Props: props},
	}
	if opts != nil {
		c.opts = *opts
	}

	c.supplementProperties()
	if err := c.deriveParents(); err != nil {
		return nil, err
	}
	c.flagJoints()
	c.assignNodeIDs()
	if err := c.compileMeshes(); err != nil {
		return nil, err
	}
	kindToBuffer := c.materializeBuffers()
	c.patchBufferIDs(kindToBuffer)
	if err := c.appendTextureBuffers(); err != nil {
		return nil, err
	}
	c.patchTextureIDs()
	if err := c.compileSkeletons(); err != nil {
		return nil, err
	}
	if err := c.compileAnimations(); err != nil {
		return nil, err
	}
	if err := c.compileNodes(); err != nil {
		return nil, err
	}
	c.compileScenes()
	c.model.DeriveSceneRoots()
	for _, w := range doc.Resolver().Warnings {
		log.Warn("%s", w)
	}
	return c.model, nil
}

// supplementProperties fills empty properties from the asset metadata
// and carries the default scene index.
func (c *gltfCompiler) supplementProperties() {

	p := &c.model.Props
	if p.Author == "" {
		p.Author = c.doc.Asset.Generator
	}
	if p.Copyright == "" {
		p.Copyright = c.doc.Asset.Copyright
	}
	p.DefaultScene = 0
	if c.doc.Scene != nil {
		p.DefaultScene = uint32(*c.doc.Scene)
	}
}

// deriveParents scans all node children arrays to derive each node's
// parent, rejecting nodes with multiple parents or cyclic graphs.
func (c *gltfCompiler) deriveParents() error {

	n := len(c.doc.Nodes)
	c.nodeParent = make([]int, n)
	for i := range c.nodeParent {
		c.nodeParent[i] = -1
	}
	for i := 0; i < n; i++ {
		for _, ci := range c.doc.Nodes[i].Children {
			if ci < 0 || ci >= n {
				return daserror.Newf(daserror.InvalidValue, "node %d child %d out of range", i, ci)
			}
			if c.nodeParent[ci] >= 0 {
				return daserror.Newf(daserror.CyclicGraph, "node %d has multiple parents", ci)
			}
			c.nodeParent[ci] = i
		}
	}
	for i := 0; i < n; i++ {
		slow, fast := i, i
		for c.nodeParent[fast] >= 0 && c.nodeParent[c.nodeParent[fast]] >= 0 {
			slow = c.nodeParent[slow]
			fast = c.nodeParent[c.nodeParent[fast]]
			if slow == fast {
				return daserror.Newf(daserror.CyclicGraph, "cycle through node %d", i)
			}
		}
	}
	return nil
}

// flagJoints marks every node referenced by a skin's joint list.
func (c *gltfCompiler) flagJoints() {

	c.isJoint = make([]bool, len(c.doc.Nodes))
	c.nodeToJoint = make([]uint32, len(c.doc.Nodes))
	for i := range c.nodeToJoint {
		c.nodeToJoint[i] = das.InvalidID
	}
	next := uint32(0)
	for si := range c.doc.Skins {
		for _, ji := range c.doc.Skins[si].Joints {
			if ji < 0 || ji >= len(c.doc.Nodes) {
				continue
			}
			c.isJoint[ji] = true
			if c.nodeToJoint[ji] == das.InvalidID {
				c.nodeToJoint[ji] = next
				next++
			}
		}
	}
	c.model.SkeletonJoints = make([]das.SkeletonJoint, next)
}

// findCommonRootJoint walks up the parent chain from every joint of
// the skin and returns the highest joint ancestor contained in the
// skin's joint set, or -1 when the joints have no common root.
func (c *gltfCompiler) findCommonRootJoint(skin *gltf.Skin) int {

	inSet := make(map[int]bool, len(skin.Joints))
	for _, ji := range skin.Joints {
		inSet[ji] = true
	}
	root := -1
	for _, ji := range skin.Joints {
		highest := ji
		for p := c.nodeParent[ji]; p >= 0; p = c.nodeParent[p] {
			if inSet[p] {
				highest = p
			}
		}
		if root < 0 {
			root = highest
		} else if root != highest {
			return -1
		}
	}
	return root
}

// assignNodeIDs numbers the non-joint nodes into the DAS node space.
func (c *gltfCompiler) assignNodeIDs() {

	c.nodeToDas = make([]uint32, len(c.doc.Nodes))
	next := uint32(0)
	for i := range c.doc.Nodes {
		if c.isJoint[i] {
			c.nodeToDas[i] = das.InvalidID
			continue
		}
		c.nodeToDas[i] = next
		next++
	}
}

// genericVertex is the canonical form of one input vertex after
// component-type casting: positions and normals as 3 floats, tangents
// as 4, UVs as 2, color multipliers as 4, joint indices as 4 uint16
// and joint weights as 4 floats per set.
type genericVertex struct {
	pos     [3]float32
	normal  [3]float32
	tangent [4]float32
	uvs     [][2]float32
	colors  [][4]float32
	joints  [][4]uint16
	weights [][4]float32

	hasNormal  bool
	hasTangent bool
}

// key packs the vertex into a hashable byte string.
func (v *genericVertex) key() string {

	b := make([]byte, 0, 64)
	b = appendF32(b, v.pos[:]...)
	if v.hasNormal {
		b = appendF32(b, v.normal[:]...)
	}
	if v.hasTangent {
		b = appendF32(b, v.tangent[:]...)
	}
	for _, uv := range v.uvs {
		b = appendF32(b, uv[:]...)
	}
	for _, col := range v.colors {
		b = appendF32(b, col[:]...)
	}
	for _, j := range v.joints {
		b = appendU16(b, j[:]...)
	}
	for _, w := range v.weights {
		b = appendF32(b, w[:]...)
	}
	return string(b)
}

// primAttrs holds the casted per-vertex attribute arrays of one
// primitive before re-indexing.
type primAttrs struct {
	count   int
	pos     []float32
	normal  []float32
	tangent []float32
	uvs     [][]float32
	colors  [][]float32
	joints  [][]uint32
	weights [][]float32
}

// compileMeshes lowers every mesh primitive: casting attributes to
// their canonical types, re-indexing vertices globally and packing the
// unique vertices into the staging streams.
func (c *gltfCompiler) compileMeshes() error {

	c.primTexImages = make([][]int, 0)
	for mi := range c.doc.Meshes {
		mesh := &c.doc.Meshes[mi]
		dasMesh := das.Mesh{Name: mesh.Name}
		if dasMesh.Name == "" {
			dasMesh.Name = fmt.Sprintf("mesh%d", mi)
		}
		for pi := range mesh.Primitives {
			prim, err := c.compilePrimitive(mesh, &mesh.Primitives[pi])
			if err != nil {
				return err
			}
			c.model.MeshPrimitives = append(c.model.MeshPrimitives, prim)
			dasMesh.Primitives = append(dasMesh.Primitives, uint32(len(c.model.MeshPrimitives)-1))
		}
		c.model.Meshes = append(c.model.Meshes, dasMesh)
	}
	return nil
}

// gatherAttrs reads and casts the attribute accessors of a primitive
// or morph target attribute map.
func (c *gltfCompiler) gatherAttrs(attrs map[string]int, count int) (*primAttrs, error) {

	pa := &primAttrs{count: count}
	read := func(ai int) ([]float32, int, error) {
		vals, err := c.doc.AccessorF32(ai)
		if err != nil {
			return nil, 0, err
		}
		comps := gltf.TypeSizes[c.doc.Accessors[ai].Type]
		return vals, comps, nil
	}

	if ai, ok := attrs["POSITION"]; ok {
		vals, comps, err := read(ai)
		if err != nil {
			return nil, err
		}
		pa.pos = rePack(vals, comps, 3)
	}
	if ai, ok := attrs["NORMAL"]; ok {
		vals, comps, err := read(ai)
		if err != nil {
			return nil, err
		}
		pa.normal = rePack(vals, comps, 3)
	}
	if ai, ok := attrs["TANGENT"]; ok {
		vals, comps, err := read(ai)
		if err != nil {
			return nil, err
		}
		pa.tangent = rePack(vals, comps, 4)
	}
	for set := 0; ; set++ {
		ai, ok := attrs[fmt.Sprintf("TEXCOORD_%d", set)]
		if !ok {
			break
		}
		vals, comps, err := read(ai)
		if err != nil {
			return nil, err
		}
		pa.uvs = append(pa.uvs, rePack(vals, comps, 2))
	}
	for set := 0; ; set++ {
		ai, ok := attrs[fmt.Sprintf("COLOR_%d", set)]
		if !ok {
			break
		}
		vals, comps, err := read(ai)
		if err != nil {
			return nil, err
		}
		col := rePack(vals, comps, 4)
		// VEC3 colors widen with an opaque alpha.
		if comps == 3 {
			for i := 3; i < len(col); i += 4 {
				col[i] = 1
			}
		}
		pa.colors = append(pa.colors, col)
	}
	for set := 0; ; set++ {
		ai, ok := attrs[fmt.Sprintf("JOINTS_%d", set)]
		if !ok {
			break
		}
		vals, err := c.doc.AccessorU32(ai)
		if err != nil {
			return nil, err
		}
		pa.joints = append(pa.joints, vals)
	}
	for set := 0; ; set++ {
		ai, ok := attrs[fmt.Sprintf("WEIGHTS_%d", set)]
		if !ok {
			break
		}
		vals, comps, err := read(ai)
		if err != nil {
			return nil, err
		}
		pa.weights = append(pa.weights, rePack(vals, comps, 4))
	}
	return pa, nil
}

// rePack converts an array of srcComps-component elements into
// dstComps components, truncating or zero-extending each element.
func rePack(vals []float32, srcComps, dstComps int) []float32 {

	if srcComps == dstComps {
		return vals
	}
	n := len(vals) / srcComps
	out := make([]float32, n*dstComps)
	for i := 0; i < n; i++ {
		for k := 0; k < dstComps && k < srcComps; k++ {
			out[i*dstComps+k] = vals[i*srcComps+k]
		}
	}
	return out
}

// vertexAt assembles the canonical vertex at the specified original index.
func (pa *primAttrs) vertexAt(i int) genericVertex {

	var v genericVertex
	copy(v.pos[:], pa.pos[i*3:])
	if pa.normal != nil {
		v.hasNormal = true
		copy(v.normal[:], pa.normal[i*3:])
	}
	if pa.tangent != nil {
		v.hasTangent = true
		copy(v.tangent[:], pa.tangent[i*4:])
	}
	for _, uv := range pa.uvs {
		var e [2]float32
		copy(e[:], uv[i*2:])
		v.uvs = append(v.uvs, e)
	}
	for _, col := range pa.colors {
		var e [4]float32
		copy(e[:], col[i*4:])
		v.colors = append(v.colors, e)
	}
	for _, j := range pa.joints {
		var e [4]uint16
		for k := 0; k < 4; k++ {
			e[k] = uint16(j[i*4+k])
		}
		v.joints = append(v.joints, e)
	}
	for _, w := range pa.weights {
		var e [4]float32
		copy(e[:], w[i*4:])
		v.weights = append(v.weights, e)
	}
	return v
}

// compilePrimitive lowers one glTF primitive: re-indexes its vertices
// into the staging streams and records its morph targets.
func (c *gltfCompiler) compilePrimitive(mesh *gltf.Mesh, p *gltf.Primitive) (das.MeshPrimitive, error) {

	prim := das.NewMeshPrimitive()
	if p.Indices == nil {
		return prim, daserror.New(daserror.NonIndexedPrimitive, "primitive has no index accessor")
	}
	posAI, ok := p.Attributes["POSITION"]
	if !ok {
		return prim, daserror.New(daserror.MissingField, "primitive has no POSITION attribute")
	}
	srcIndices, err := c.doc.AccessorU32(*p.Indices)
	if err != nil {
		return prim, err
	}
	count := c.doc.Accessors[posAI].Count
	pa, err := c.gatherAttrs(p.Attributes, count)
	if err != nil {
		return prim, err
	}
	if len(pa.joints) != len(pa.weights) {
		return prim, daserror.New(daserror.InvalidValue, "joint and weight set counts disagree")
	}

	// Reindex globally: every unique canonical vertex gets a new
	// 0-based index, ties broken by insertion order.
	seen := make(map[string]uint32, count)
	var firstOrig []uint32
	newIndices := make([]uint32, len(srcIndices))
	for i, orig := range srcIndices {
		if int(orig) >= count {
			return prim, daserror.Newf(daserror.InvalidAccessor, "index %d exceeds vertex count %d", orig, count)
		}
		v := pa.vertexAt(int(orig))
		key := v.key()
		id, ok := seen[key]
		if !ok {
			id = uint32(len(firstOrig))
			seen[key] = id
			firstOrig = append(firstOrig, orig)
		}
		newIndices[i] = id
	}

	// Emit the new index stream.
	prim.IndexBufferID = uint32(kindIndex)
	prim.IndexBufferOffset = uint32(len(c.streams[kindIndex]))
	prim.IndicesCount = uint32(len(newIndices))
	c.streams[kindIndex] = appendU32(c.streams[kindIndex], newIndices...)
	c.streams[kindIndex] = pad16(c.streams[kindIndex])

	// Emit the packed per-attribute regions across the unique vertices.
	prim.VertexBufferID = uint32(kindPosition)
	prim.VertexBufferOffset = uint32(len(c.streams[kindPosition]))
	for _, orig := range firstOrig {
		c.streams[kindPosition] = appendF32(c.streams[kindPosition], pa.pos[orig*3:orig*3+3]...)
	}
	c.streams[kindPosition] = pad16(c.streams[kindPosition])

	if pa.normal != nil {
		prim.VertexNormalBufferID = uint32(kindNormal)
		prim.VertexNormalBufferOffset = uint32(len(c.streams[kindNormal]))
		for _, orig := range firstOrig {
			c.streams[kindNormal] = appendF32(c.streams[kindNormal], pa.normal[orig*3:orig*3+3]...)
		}
		c.streams[kindNormal] = pad16(c.streams[kindNormal])
	}
	if pa.tangent != nil {
		prim.VertexTangentBufferID = uint32(kindTangent)
		prim.VertexTangentBufferOffset = uint32(len(c.streams[kindTangent]))
		for _, orig := range firstOrig {
			c.streams[kindTangent] = appendF32(c.streams[kindTangent], pa.tangent[orig*4:orig*4+4]...)
		}
		c.streams[kindTangent] = pad16(c.streams[kindTangent])
	}
	for _, uv := range pa.uvs {
		prim.UVBufferIDs = append(prim.UVBufferIDs, uint32(kindUV))
		prim.UVBufferOffsets = append(prim.UVBufferOffsets, uint32(len(c.streams[kindUV])))
		prim.TextureIDs = append(prim.TextureIDs, das.InvalidID)
		for _, orig := range firstOrig {
			c.streams[kindUV] = appendF32(c.streams[kindUV], uv[orig*2:orig*2+2]...)
		}
		c.streams[kindUV] = pad16(c.streams[kindUV])
	}
	for _, col := range pa.colors {
		prim.ColorMulBufferIDs = append(prim.ColorMulBufferIDs, uint32(kindColor))
		prim.ColorMulBufferOffsets = append(prim.ColorMulBufferOffsets, uint32(len(c.streams[kindColor])))
		for _, orig := range firstOrig {
			c.streams[kindColor] = appendF32(c.streams[kindColor], col[orig*4:orig*4+4]...)
		}
		c.streams[kindColor] = pad16(c.streams[kindColor])
	}
	for si := range pa.joints {
		prim.JointIndexBufferIDs = append(prim.JointIndexBufferIDs, uint32(kindJoints))
		prim.JointIndexBufferOffsets = append(prim.JointIndexBufferOffsets, uint32(len(c.streams[kindJoints])))
		for _, orig := range firstOrig {
			for k := 0; k < 4; k++ {
				c.streams[kindJoints] = appendU16(c.streams[kindJoints], uint16(pa.joints[si][orig*4+uint32(k)]))
			}
		}
		c.streams[kindJoints] = pad16(c.streams[kindJoints])

		prim.JointWeightBufferIDs = append(prim.JointWeightBufferIDs, uint32(kindWeights))
		prim.JointWeightBufferOffsets = append(prim.JointWeightBufferOffsets, uint32(len(c.streams[kindWeights])))
		for _, orig := range firstOrig {
			c.streams[kindWeights] = appendF32(c.streams[kindWeights], pa.weights[si][orig*4:orig*4+4]...)
		}
		c.streams[kindWeights] = pad16(c.streams[kindWeights])
	}

	// Morph targets contribute per-vertex deltas in the same packed form.
	for ti, target := range p.Targets {
		mt, err := c.compileMorphTarget(target, firstOrig)
		if err != nil {
			return prim, err
		}
		c.model.MorphTargets = append(c.model.MorphTargets, mt)
		weight := float32(0)
		if ti < len(mesh.Weights) {
			weight = mesh.Weights[ti]
		}
		prim.MorphTargets = append(prim.MorphTargets, uint32(len(c.model.MorphTargets)-1))
		prim.MorphWeights = append(prim.MorphWeights, weight)
	}

	// Record the base color texture image for later uv set patch-up.
	images := make([]int, len(prim.UVBufferIDs))
	for i := range images {
		images[i] = -1
	}
	if p.Material != nil && *p.Material >= 0 && *p.Material < len(c.doc.Materials) {
		mat := &c.doc.Materials[*p.Material]
		if mat.PbrMetallicRoughness != nil && mat.PbrMetallicRoughness.BaseColorTexture != nil {
			ti := mat.PbrMetallicRoughness.BaseColorTexture
			if ti.TexCoord < len(images) && ti.Index >= 0 && ti.Index < len(c.doc.Textures) {
				images[ti.TexCoord] = c.doc.Textures[ti.Index].Source
			}
		}
	}
	c.primTexImages = append(c.primTexImages, images)
	return prim, nil
}

// compileMorphTarget packs the delta attributes of one glTF morph
// target across the unique vertices of its primitive.
func (c *gltfCompiler) compileMorphTarget(attrs map[string]int, firstOrig []uint32) (das.MorphTarget, error) {

	mt := das.NewMorphTarget()
	pa, err := c.gatherAttrs(attrs, 0)
	if err != nil {
		return mt, err
	}
	if pa.pos != nil {
		mt.VertexBufferID = uint32(kindPosition)
		mt.VertexBufferOffset = uint32(len(c.streams[kindPosition]))
		for _, orig := range firstOrig {
			c.streams[kindPosition] = appendF32(c.streams[kindPosition], pa.pos[orig*3:orig*3+3]...)
		}
		c.streams[kindPosition] = pad16(c.streams[kindPosition])
	}
	if pa.normal != nil {
		mt.VertexNormalBufferID = uint32(kindNormal)
		mt.VertexNormalBufferOffset = uint32(len(c.streams[kindNormal]))
		for _, orig := range firstOrig {
			c.streams[kindNormal] = appendF32(c.streams[kindNormal], pa.normal[orig*3:orig*3+3]...)
		}
		c.streams[kindNormal] = pad16(c.streams[kindNormal])
	}
	if pa.tangent != nil {
		mt.VertexTangentBufferID = uint32(kindTangent)
		mt.VertexTangentBufferOffset = uint32(len(c.streams[kindTangent]))
		for _, orig := range firstOrig {
			c.streams[kindTangent] = appendF32(c.streams[kindTangent], pa.tangent[orig*4:orig*4+4]...)
		}
		c.streams[kindTangent] = pad16(c.streams[kindTangent])
	}
	for _, uv := range pa.uvs {
		mt.UVBufferIDs = append(mt.UVBufferIDs, uint32(kindUV))
		mt.UVBufferOffsets = append(mt.UVBufferOffsets, uint32(len(c.streams[kindUV])))
		for _, orig := range firstOrig {
			c.streams[kindUV] = appendF32(c.streams[kindUV], uv[orig*2:orig*2+2]...)
		}
		c.streams[kindUV] = pad16(c.streams[kindUV])
	}
	for _, col := range pa.colors {
		mt.ColorMulBufferIDs = append(mt.ColorMulBufferIDs, uint32(kindColor))
		mt.ColorMulBufferOffsets = append(mt.ColorMulBufferOffsets, uint32(len(c.streams[kindColor])))
		for _, orig := range firstOrig {
			c.streams[kindColor] = appendF32(c.streams[kindColor], col[orig*4:orig*4+4]...)
		}
		c.streams[kindColor] = pad16(c.streams[kindColor])
	}
	return mt, nil
}

// materializeBuffers turns the non-empty staging streams into DAS
// buffers and returns the stream-kind to buffer-id mapping. The
// staging streams are released.
func (c *gltfCompiler) materializeBuffers() [kindCount]uint32 {

	var kindToBuffer [kindCount]uint32
	for k := range kindToBuffer {
		kindToBuffer[k] = das.InvalidID
	}
	for k := streamKind(0); k < kindCount; k++ {
		if len(c.streams[k]) == 0 {
			continue
		}
		c.model.Buffers = append(c.model.Buffers, das.Buffer{
			Type: streamTypes[k],
			Data: c.streams[k],
		})
		kindToBuffer[k] = uint32(len(c.model.Buffers) - 1)
		c.streams[k] = nil
	}
	return kindToBuffer
}

// patchBufferIDs rewrites the placeholder stream kinds inside
// primitives and morph targets into real buffer ids.
func (c *gltfCompiler) patchBufferIDs(kindToBuffer [kindCount]uint32) {

	fix := func(id *uint32) {
		if *id != das.InvalidID {
			*id = kindToBuffer[*id]
		}
	}
	for i := range c.model.MeshPrimitives {
		p := &c.model.MeshPrimitives[i]
		fix(&p.IndexBufferID)
		fix(&p.VertexBufferID)
		fix(&p.VertexNormalBufferID)
		fix(&p.VertexTangentBufferID)
		for j := range p.UVBufferIDs {
			fix(&p.UVBufferIDs[j])
		}
		for j := range p.ColorMulBufferIDs {
			fix(&p.ColorMulBufferIDs[j])
		}
		for j := range p.JointIndexBufferIDs {
			fix(&p.JointIndexBufferIDs[j])
		}
		for j := range p.JointWeightBufferIDs {
			fix(&p.JointWeightBufferIDs[j])
		}
	}
	for i := range c.model.MorphTargets {
		t := &c.model.MorphTargets[i]
		fix(&t.VertexBufferID)
		fix(&t.VertexNormalBufferID)
		fix(&t.VertexTangentBufferID)
		for j := range t.UVBufferIDs {
			fix(&t.UVBufferIDs[j])
		}
		for j := range t.ColorMulBufferIDs {
			fix(&t.ColorMulBufferIDs[j])
		}
	}
}

// appendTextureBuffers fetches every referenced image and appends it
// as a texture buffer after all data buffers, classified by MIME,
// signature or extension.
func (c *gltfCompiler) appendTextureBuffers() error {

	c.imageToBuffer = make([]uint32, len(c.doc.Images))
	for i := range c.imageToBuffer {
		c.imageToBuffer[i] = das.InvalidID
	}
	for ii := range c.doc.Images {
		img := &c.doc.Images[ii]
		var data []byte
		var kind texture.Kind
		switch {
		case img.Uri != "":
			r, err := c.doc.Resolver().Resolve(img.Uri)
			if err != nil {
				return err
			}
			data = r.Data
			kind = r.Kind
			if kind == texture.Unknown {
				kind = texture.Probe(data)
			}
		case img.BufferView != nil:
			var err error
			data, err = c.doc.LoadBufferView(*img.BufferView)
			if err != nil {
				return err
			}
			kind = texture.KindFromMime(img.MimeType)
			if kind == texture.Unknown {
				kind = texture.Probe(data)
			}
		default:
			return daserror.Newf(daserror.MissingField, "image %d has neither uri nor buffer view", ii)
		}

		buf := das.Buffer{Type: das.BufferTypeFromTextureKind(kind), Data: data}
		if c.opts.RawTextures {
			decoded, err := texture.DecodeRaw(data)
			if err != nil {
				return err
			}
			raw := make([]byte, 0, 9+len(decoded.Pixels))
			raw = binary.LittleEndian.AppendUint32(raw, decoded.Width)
			raw = binary.LittleEndian.AppendUint32(raw, decoded.Height)
			raw = append(raw, decoded.BitDepth)
			buf = das.Buffer{Type: das.BufferTypeTextureRaw, Data: append(raw, decoded.Pixels...)}
		}
		c.model.Buffers = append(c.model.Buffers, buf)
		c.imageToBuffer[ii] = uint32(len(c.model.Buffers) - 1)
	}
	return nil
}

// patchTextureIDs points the uv sets of every primitive at the
// texture buffer of its material's base color image.
func (c *gltfCompiler) patchTextureIDs() {

	for pi, images := range c.primTexImages {
		prim := &c.model.MeshPrimitives[pi]
		for set, ii := range images {
			if ii >= 0 && ii < len(c.imageToBuffer) {
				prim.TextureIDs[set] = c.imageToBuffer[ii]
			}
		}
	}
}

// compileSkeletons turns every skin into a skeleton: joints are
// renumbered through the node-to-joint table, inverse bind matrices
// are split per joint and each joint's TRS comes from its node.
func (c *gltfCompiler) compileSkeletons() error {

	for si := range c.doc.Skins {
		skin := &c.doc.Skins[si]
		skel := das.Skeleton{Name: skin.Name, Parent: das.InvalidID}

		var ibms []float32
		if skin.InverseBindMatrices != nil {
			var err error
			ibms, err = c.doc.AccessorF32(*skin.InverseBindMatrices)
			if err != nil {
				return err
			}
			if len(ibms) < 16*len(skin.Joints) {
				return daserror.Newf(daserror.InvalidAccessor,
					"skin %d inverse bind matrices hold %d floats for %d joints", si, len(ibms), len(skin.Joints))
			}
		}

		for idx, ji := range skin.Joints {
			if ji < 0 || ji >= len(c.doc.Nodes) {
				return daserror.Newf(daserror.InvalidValue, "skin %d joint %d out of range", si, ji)
			}
			jointID := c.nodeToJoint[ji]
			skel.Joints = append(skel.Joints, jointID)

			joint := das.NewSkeletonJoint()
			node := &c.doc.Nodes[ji]
			joint.Name = node.Name
			if ibms != nil {
				joint.InverseBindPos.FromColumnMajor(ibms[idx*16 : idx*16+16])
			}
			c.nodeTRS(node, &joint)
			for _, ci := range node.Children {
				if c.isJoint[ci] {
					joint.Children = append(joint.Children, c.nodeToJoint[ci])
				}
			}
			c.model.SkeletonJoints[jointID] = joint
		}

		if skin.Skeleton != nil && !c.isJoint[*skin.Skeleton] {
			skel.Parent = c.nodeToDas[*skin.Skeleton]
		}
		if skel.Name == "" {
			if root := c.findCommonRootJoint(skin); root >= 0 {
				skel.Name = c.doc.Nodes[root].Name
			}
		}
		c.model.Skeletons = append(c.model.Skeletons, skel)
	}
	return nil
}

// nodeTRS fills the joint's local TRS from its node, decomposing the
// matrix form when TRS properties are absent.
func (c *gltfCompiler) nodeTRS(node *gltf.Node, joint *das.SkeletonJoint) {

	if node.Matrix != nil {
		var m math32.Matrix4
		m.FromColumnMajor(node.Matrix[:])
		var scale math32.Vector3
		m.Decompose(&joint.Translation, &joint.Rotation, &scale)
		joint.Scale = scale.X
		return
	}
	if node.Translation != nil {
		joint.Translation.Set(node.Translation[0], node.Translation[1], node.Translation[2])
	}
	if node.Rotation != nil {
		joint.Rotation.Set(node.Rotation[0], node.Rotation[1], node.Rotation[2], node.Rotation[3])
	}
	if node.Scale != nil {
		joint.Scale = node.Scale[0]
	}
}

// compileAnimations lowers every glTF animation channel, splitting
// cubic-spline sampler outputs into separate value and tangent
// streams.
func (c *gltfCompiler) compileAnimations() error {

	for ai := range c.doc.Animations {
		anim := &c.doc.Animations[ai]
		dasAnim := das.Animation{Name: anim.Name}
		for ci := range anim.Channels {
			ch, err := c.compileChannel(anim, &anim.Channels[ci])
			if err != nil {
				return err
			}
			c.model.Channels = append(c.model.Channels, ch)
			dasAnim.Channels = append(dasAnim.Channels, uint32(len(c.model.Channels)-1))
		}
		c.model.Animations = append(c.model.Animations, dasAnim)
	}
	return nil
}

func (c *gltfCompiler) compileChannel(anim *gltf.Animation, src *gltf.Channel) (das.AnimationChannel, error) {

	ch := das.NewAnimationChannel()
	if src.Sampler < 0 || src.Sampler >= len(anim.Samplers) {
		return ch, daserror.Newf(daserror.InvalidValue, "channel sampler %d out of range", src.Sampler)
	}
	sampler := &anim.Samplers[src.Sampler]

	ni := src.Target.Node
	if ni < 0 || ni >= len(c.doc.Nodes) {
		return ch, daserror.Newf(daserror.InvalidValue, "channel target node %d out of range", ni)
	}
	if c.isJoint[ni] {
		ch.JointID = c.nodeToJoint[ni]
	} else {
		ch.NodeID = c.nodeToDas[ni]
	}

	var srcElem int
	switch src.Target.Path {
	case "translation":
		ch.Target = das.TargetTranslation
		srcElem = 3
	case "rotation":
		ch.Target = das.TargetRotation
		srcElem = 4
	case "scale":
		ch.Target = das.TargetScale
		srcElem = 3
	case "weights":
		ch.Target = das.TargetWeights
		ch.WeightCount = uint32(c.morphCount(ni))
		srcElem = int(ch.WeightCount)
	default:
		return ch, daserror.Newf(daserror.InvalidValue, "channel target path %q", src.Target.Path)
	}

	switch sampler.Interpolation {
	case "", "LINEAR":
		ch.Interpolation = das.InterpolationLinear
	case "STEP":
		ch.Interpolation = das.InterpolationStep
	case "CUBICSPLINE":
		ch.Interpolation = das.InterpolationCubicSpline
	default:
		return ch, daserror.Newf(daserror.InvalidValue, "interpolation %q", sampler.Interpolation)
	}

	keyframes, err := c.doc.AccessorF32(sampler.Input)
	if err != nil {
		return ch, err
	}
	ch.Keyframes = keyframes
	ch.KeyframeCount = uint32(len(keyframes))

	raw, err := c.doc.AccessorF32(sampler.Output)
	if err != nil {
		return ch, err
	}

	// Scale channels collapse the vec3 sampler output to the uniform
	// scale component.
	conv := func(elem []float32) []float32 {
		if ch.Target == das.TargetScale {
			return elem[:1]
		}
		return elem
	}
	stride := ch.TargetStride()

	if ch.Interpolation == das.InterpolationCubicSpline {
		// Output holds (in_tangent, value, out_tangent) per keyframe.
		// The channel keeps the value and its out tangent; the next
		// keyframe's in tangent is dropped, so Tangents is sized
		// exactly like TargetValues.
		want := 3 * int(ch.KeyframeCount) * srcElem
		if len(raw) != want {
			return ch, daserror.Newf(daserror.InvalidAccessor,
				"cubic-spline output holds %d floats, want %d", len(raw), want)
		}
		ch.TargetValues = make([]float32, 0, int(ch.KeyframeCount)*stride)
		ch.Tangents = make([]float32, 0, int(ch.KeyframeCount)*stride)
		for k := 0; k < int(ch.KeyframeCount); k++ {
			base := k * 3 * srcElem
			val := raw[base+srcElem : base+2*srcElem]
			out := raw[base+2*srcElem : base+3*srcElem]
			ch.TargetValues = append(ch.TargetValues, conv(val)...)
			ch.Tangents = append(ch.Tangents, conv(out)...)
		}
		return ch, nil
	}

	want := int(ch.KeyframeCount) * srcElem
	if len(raw) != want {
		return ch, daserror.Newf(daserror.InvalidAccessor, "sampler output holds %d floats, want %d", len(raw), want)
	}
	ch.TargetValues = make([]float32, 0, int(ch.KeyframeCount)*stride)
	for k := 0; k < int(ch.KeyframeCount); k++ {
		ch.TargetValues = append(ch.TargetValues, conv(raw[k*srcElem:(k+1)*srcElem])...)
	}
	return ch, nil
}

// morphCount returns the morph target count of the mesh instantiated
// by the specified node.
func (c *gltfCompiler) morphCount(ni int) int {

	node := &c.doc.Nodes[ni]
	if node.Mesh == nil || *node.Mesh < 0 || *node.Mesh >= len(c.doc.Meshes) {
		return 0
	}
	mesh := &c.doc.Meshes[*node.Mesh]
	if len(mesh.Weights) > 0 {
		return len(mesh.Weights)
	}
	if len(mesh.Primitives) > 0 {
		return len(mesh.Primitives[0].Targets)
	}
	return 0
}

// compileNodes translates the non-joint nodes 1:1 into DAS nodes
// through the node translation table.
func (c *gltfCompiler) compileNodes() error {

	for ni := range c.doc.Nodes {
		if c.isJoint[ni] {
			continue
		}
		node := &c.doc.Nodes[ni]
		dasNode := das.NewNode()
		dasNode.Name = node.Name
		for _, ci := range node.Children {
			if !c.isJoint[ci] {
				dasNode.Children = append(dasNode.Children, c.nodeToDas[ci])
			}
		}
		if node.Mesh != nil {
			if *node.Mesh < 0 || *node.Mesh >= len(c.model.Meshes) {
				return daserror.Newf(daserror.InvalidValue, "node %d mesh %d out of range", ni, *node.Mesh)
			}
			dasNode.Mesh = uint32(*node.Mesh)
		}
		if node.Skin != nil {
			if *node.Skin < 0 || *node.Skin >= len(c.model.Skeletons) {
				return daserror.Newf(daserror.InvalidValue, "node %d skin %d out of range", ni, *node.Skin)
			}
			dasNode.Skeleton = uint32(*node.Skin)
		}
		c.nodeTransform(node, &dasNode.Transform)
		c.model.Nodes = append(c.model.Nodes, dasNode)
	}
	return nil
}

// nodeTransform computes the node's local transform from its matrix
// or TRS properties.
func (c *gltfCompiler) nodeTransform(node *gltf.Node, out *math32.Matrix4) {

	if node.Matrix != nil {
		out.FromColumnMajor(node.Matrix[:])
		return
	}
	pos := math32.NewVector3(0, 0, 0)
	rot := math32.NewQuaternion(0, 0, 0, 1)
	scale := math32.NewVector3(1, 1, 1)
	if node.Translation != nil {
		pos.Set(node.Translation[0], node.Translation[1], node.Translation[2])
	}
	if node.Rotation != nil {
		rot.Set(node.Rotation[0], node.Rotation[1], node.Rotation[2], node.Rotation[3])
	}
	if node.Scale != nil {
		scale.Set(node.Scale[0], node.Scale[1], node.Scale[2])
	}
	out.Compose(pos, rot, scale)
}

// compileScenes translates scenes through the node translation table.
// A glTF scene lists only its roots; the DAS scene owns every node
// reachable from them.
func (c *gltfCompiler) compileScenes() {

	for si := range c.doc.Scenes {
		scene := &c.doc.Scenes[si]
		dasScene := das.Scene{Name: scene.Name}
		if dasScene.Name == "" {
			dasScene.Name = fmt.Sprintf("scene%d", si)
		}
		visited := make(map[int]bool)
		var walk func(ni int)
		walk = func(ni int) {
			if ni < 0 || ni >= len(c.doc.Nodes) || visited[ni] || c.isJoint[ni] {
				return
			}
			visited[ni] = true
			dasScene.Nodes = append(dasScene.Nodes, c.nodeToDas[ni])
			for _, ci := range c.doc.Nodes[ni].Children {
				walk(ci)
			}
		}
		for _, ni := range scene.Nodes {
			walk(ni)
		}
		c.model.Scenes = append(c.model.Scenes, dasScene)
	}
}
