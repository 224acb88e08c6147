// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package das

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/g3n/das/ascii"
	"github.com/g3n/das/daserror"
	"github.com/g3n/das/huffman"
)

// scopeKind identifies one DAS scope type.
type scopeKind int

const (
	scopeProperties scopeKind = iota
	scopeBuffer
	scopeMeshPrimitive
	scopeMorphTarget
	scopeMesh
	scopeNode
	scopeScene
	scopeSkeletonJoint
	scopeSkeleton
	scopeAnimation
	scopeAnimationChannel
)

// scopeNames is the scope-name dispatch table.
var scopeNames = map[string]scopeKind{
	"PROPERTIES":       scopeProperties,
	"BUFFER":           scopeBuffer,
	"MESHPRIMITIVE":    scopeMeshPrimitive,
	"MORPHTARGET":      scopeMorphTarget,
	"MESH":             scopeMesh,
	"NODE":             scopeNode,
	"SCENE":            scopeScene,
	"SKELETONJOINT":    scopeSkeletonJoint,
	"SKELETON":         scopeSkeleton,
	"ANIMATION":        scopeAnimation,
	"ANIMATIONCHANNEL": scopeAnimationChannel,
}

// Reader parses DAS containers back into models. It dispatches on
// scope names and, within each scope, on value names, consuming the
// typed raw payload of each value from the stream.
type Reader struct {
	ar    *ascii.Reader
	model *Model
	file  string
}

// ReadFile parses the DAS file at the specified path.
func ReadFile(path string) (*Model, error) {

	f, err := os.Open(path)
	if err != nil {
		return nil, daserror.Wrap(daserror.InvalidFile, err)
	}
	defer f.Close()
	return Read(f, path)
}

// Read parses a DAS container from the specified reader. The whole
// stream is materialized in memory; when the payload carries the
// Huffman magic it is decoded before scope parsing.
func Read(r io.Reader, name string) (*Model, error) {

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, daserror.Wrap(daserror.InvalidFile, err)
	}
	if err := verifySignature(data, name); err != nil {
		return nil, err
	}
	payload := data[SignatureSize:]
	if huffman.IsEncoded(payload) {
		payload, err = huffman.Decode(payload)
		if err != nil {
			return nil, err
		}
	}

	ar := ascii.NewReader(bytes.NewReader(payload), len(payload)+1, "ENDSCOPE\n")
	ar.SetFileName(name)
	if err := ar.ReadAll(); err != nil {
		return nil, err
	}

	dr := &Reader{ar: ar, model: &Model{}, file: name}
	if err := dr.parseScopes(); err != nil {
		return nil, err
	}
	dr.model.DeriveSceneRoots()
	return dr.model, nil
}

// verifySignature checks the magic and the 12 padding bytes, which
// must be uniformly zero, newline or space filled.
func verifySignature(data []byte, name string) error {

	if len(data) < SignatureSize {
		return daserror.New(daserror.InvalidSignature, "file shorter than signature").AtOffset(name, 0)
	}
	if binary.LittleEndian.Uint32(data) != Magic {
		return daserror.New(daserror.InvalidSignature, "bad magic").AtOffset(name, 0)
	}
	pad := data[4]
	if pad != 0x00 && pad != 0x0A && pad != 0x20 {
		return daserror.New(daserror.InvalidSignature, "bad padding").AtOffset(name, 4)
	}
	for i := 5; i < SignatureSize; i++ {
		if data[i] != pad {
			return daserror.New(daserror.InvalidSignature, "bad padding").AtOffset(name, int64(i))
		}
	}
	return nil
}

// parseScopes parses top-level scopes until the input is exhausted.
func (dr *Reader) parseScopes() error {

	for {
		dr.ar.SkipSkippable(true)
		word := dr.ar.ExtractWord()
		if word == "" {
			return nil
		}
		kind, ok := scopeNames[word]
		if !ok {
			if word == "ENDSCOPE" {
				return dr.errHere(daserror.ScopeAlreadyClosed, "top level ENDSCOPE")
			}
			return dr.errHere(daserror.InvalidKeyword, word)
		}
		if _, err := dr.readScope(kind); err != nil {
			return err
		}
	}
}

// readScope parses one scope of the specified kind, appends the
// resulting entity to the model and returns its index.
func (dr *Reader) readScope(kind scopeKind) (uint32, error) {

	switch kind {
	case scopeProperties:
		return 0, dr.readProperties()
	case scopeBuffer:
		return dr.readBuffer()
	case scopeMeshPrimitive:
		return dr.readMeshPrimitive()
	case scopeMorphTarget:
		return dr.readMorphTarget()
	case scopeMesh:
		return dr.readMesh()
	case scopeNode:
		return dr.readNode()
	case scopeScene:
		return dr.readScene()
	case scopeSkeletonJoint:
		return dr.readSkeletonJoint()
	case scopeSkeleton:
		return dr.readSkeleton()
	case scopeAnimation:
		return dr.readAnimation()
	case scopeAnimationChannel:
		return dr.readAnimationChannel()
	}
	return 0, dr.errHere(daserror.InvalidKeyword, "unknown scope")
}

// nextDecl returns the next declaration inside a scope: a value name,
// a nested scope kind, or the scope terminator (done=true).
func (dr *Reader) nextDecl() (name string, nested scopeKind, isNested, done bool, err error) {

	dr.ar.SkipSkippable(true)
	word := dr.ar.ExtractWord()
	if word == "" {
		return "", 0, false, false, dr.errHere(daserror.IncompleteScope, "input ended inside scope")
	}
	if word == "ENDSCOPE" {
		return "", 0, false, true, nil
	}
	if n := len(word); word[n-1] == ':' {
		return word[:n-1], 0, false, false, nil
	}
	if kind, ok := scopeNames[word]; ok {
		return "", kind, true, false, nil
	}
	return "", 0, false, false, dr.errHere(daserror.InvalidKeyword, word)
}

func (dr *Reader) readProperties() error {

	p := &dr.model.Props
	for {
		name, _, isNested, done, err := dr.nextDecl()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if isNested {
			return dr.errHere(daserror.InvalidKeyword, "nested scope in PROPERTIES")
		}
		switch name {
		case "MODEL":
			p.Model, err = dr.readString()
		case "AUTHOR":
			p.Author, err = dr.readString()
		case "COPYRIGHT":
			p.Copyright, err = dr.readString()
		case "MODDATE":
			p.ModDate, err = dr.readU64()
		case "COMPRESSION":
			var v uint8
			v, err = dr.readU8()
			p.Compression = v != 0
		case "DEFAULTSCENE":
			p.DefaultScene, err = dr.readU32()
		default:
			return dr.errHere(daserror.InvalidKeyword, name)
		}
		if err != nil {
			return err
		}
	}
}

func (dr *Reader) readBuffer() (uint32, error) {

	var buf Buffer
	lenSeen := false
	var dataLen uint32
	for {
		name, _, isNested, done, err := dr.nextDecl()
		if err != nil {
			return 0, err
		}
		if done {
			break
		}
		if isNested {
			return 0, dr.errHere(daserror.InvalidKeyword, "nested scope in BUFFER")
		}
		switch name {
		case "BUFFERTYPE":
			var v uint16
			v, err = dr.readU16()
			buf.Type = BufferType(v)
		case "DATALEN":
			dataLen, err = dr.readU32()
			lenSeen = true
		case "DATA":
			if !lenSeen {
				return 0, dr.errHere(daserror.InvalidValue, "DATA before DATALEN")
			}
			buf.Data, err = dr.readRaw(int(dataLen))
		default:
			return 0, dr.errHere(daserror.InvalidKeyword, name)
		}
		if err != nil {
			return 0, err
		}
	}
	if lenSeen && uint32(len(buf.Data)) != dataLen {
		return 0, dr.errHere(daserror.InvalidDataLength, "DATA length disagrees with DATALEN")
	}
	dr.model.Buffers = append(dr.model.Buffers, buf)
	return uint32(len(dr.model.Buffers) - 1), nil
}

func (dr *Reader) readMeshPrimitive() (uint32, error) {

	p := NewMeshPrimitive()
	var texCount, colorCount, jointCount, morphCount uint32
	for {
		name, _, isNested, done, err := dr.nextDecl()
		if err != nil {
			return 0, err
		}
		if done {
			break
		}
		if isNested {
			return 0, dr.errHere(daserror.InvalidKeyword, "nested scope in MESHPRIMITIVE")
		}
		switch name {
		case "INDEXBUFFERID":
			p.IndexBufferID, err = dr.readU32()
		case "INDEXBUFFEROFFSET":
			p.IndexBufferOffset, err = dr.readU32()
		case "INDICESCOUNT":
			p.IndicesCount, err = dr.readU32()
		case "VERTEXBUFFERID":
			p.VertexBufferID, err = dr.readU32()
		case "VERTEXBUFFEROFFSET":
			p.VertexBufferOffset, err = dr.readU32()
		case "VERTEXNORMALBUFFERID":
			p.VertexNormalBufferID, err = dr.readU32()
		case "VERTEXNORMALBUFFEROFFSET":
			p.VertexNormalBufferOffset, err = dr.readU32()
		case "VERTEXTANGENTBUFFERID":
			p.VertexTangentBufferID, err = dr.readU32()
		case "VERTEXTANGENTBUFFEROFFSET":
			p.VertexTangentBufferOffset, err = dr.readU32()
		case "TEXTURECOUNT":
			texCount, err = dr.readU32()
		case "UVBUFFERIDS":
			p.UVBufferIDs, err = dr.readU32Array(texCount)
		case "UVBUFFEROFFSETS":
			p.UVBufferOffsets, err = dr.readU32Array(texCount)
		case "TEXTUREIDS":
			p.TextureIDs, err = dr.readU32Array(texCount)
		case "COLORMULCOUNT":
			colorCount, err = dr.readU32()
		case "COLORMULBUFFERIDS":
			p.ColorMulBufferIDs, err = dr.readU32Array(colorCount)
		case "COLORMULBUFFEROFFSETS":
			p.ColorMulBufferOffsets, err = dr.readU32Array(colorCount)
		case "JOINTSETCOUNT":
			jointCount, err = dr.readU32()
		case "JOINTINDEXBUFFERIDS":
			p.JointIndexBufferIDs, err = dr.readU32Array(jointCount)
		case "JOINTINDEXBUFFEROFFSETS":
			p.JointIndexBufferOffsets, err = dr.readU32Array(jointCount)
		case "JOINTWEIGHTBUFFERIDS":
			p.JointWeightBufferIDs, err = dr.readU32Array(jointCount)
		case "JOINTWEIGHTBUFFEROFFSETS":
			p.JointWeightBufferOffsets, err = dr.readU32Array(jointCount)
		case "MORPHTARGETCOUNT":
			morphCount, err = dr.readU32()
		case "MORPHTARGETS":
			p.MorphTargets, err = dr.readU32Array(morphCount)
		case "MORPHWEIGHTS":
			p.MorphWeights, err = dr.readF32Array(morphCount)
		default:
			return 0, dr.errHere(daserror.InvalidKeyword, name)
		}
		if err != nil {
			return 0, err
		}
	}
	dr.model.MeshPrimitives = append(dr.model.MeshPrimitives, p)
	return uint32(len(dr.model.MeshPrimitives) - 1), nil
}

func (dr *Reader) readMorphTarget() (uint32, error) {

	t := NewMorphTarget()
	var texCount, colorCount uint32
	for {
		name, _, isNested, done, err := dr.nextDecl()
		if err != nil {
			return 0, err
		}
		if done {
			break
		}
		if isNested {
			return 0, dr.errHere(daserror.InvalidKeyword, "nested scope in MORPHTARGET")
		}
		switch name {
		case "VERTEXBUFFERID":
			t.VertexBufferID, err = dr.readU32()
		case "VERTEXBUFFEROFFSET":
			t.VertexBufferOffset, err = dr.readU32()
		case "VERTEXNORMALBUFFERID":
			t.VertexNormalBufferID, err = dr.readU32()
		case "VERTEXNORMALBUFFEROFFSET":
			t.VertexNormalBufferOffset, err = dr.readU32()
		case "VERTEXTANGENTBUFFERID":
			t.VertexTangentBufferID, err = dr.readU32()
		case "VERTEXTANGENTBUFFEROFFSET":
			t.VertexTangentBufferOffset, err = dr.readU32()
		case "TEXTURECOUNT":
			texCount, err = dr.readU32()
		case "UVBUFFERIDS":
			t.UVBufferIDs, err = dr.readU32Array(texCount)
		case "UVBUFFEROFFSETS":
			t.UVBufferOffsets, err = dr.readU32Array(texCount)
		case "COLORMULCOUNT":
			colorCount, err = dr.readU32()
		case "COLORMULBUFFERIDS":
			t.ColorMulBufferIDs, err = dr.readU32Array(colorCount)
		case "COLORMULBUFFEROFFSETS":
			t.ColorMulBufferOffsets, err = dr.readU32Array(colorCount)
		default:
			return 0, dr.errHere(daserror.InvalidKeyword, name)
		}
		if err != nil {
			return 0, err
		}
	}
	dr.model.MorphTargets = append(dr.model.MorphTargets, t)
	return uint32(len(dr.model.MorphTargets) - 1), nil
}

func (dr *Reader) readMesh() (uint32, error) {

	var m Mesh
	var primCount uint32
	for {
		name, nested, isNested, done, err := dr.nextDecl()
		if err != nil {
			return 0, err
		}
		if done {
			break
		}
		if isNested {
			// A mesh may host its primitives as nested scopes.
			if nested != scopeMeshPrimitive {
				return 0, dr.errHere(daserror.InvalidKeyword, "unexpected nested scope in MESH")
			}
			var id uint32
			id, err = dr.readScope(nested)
			if err != nil {
				return 0, err
			}
			m.Primitives = append(m.Primitives, id)
			continue
		}
		switch name {
		case "NAME":
			m.Name, err = dr.readString()
		case "PRIMITIVECOUNT":
			primCount, err = dr.readU32()
		case "PRIMITIVES":
			m.Primitives, err = dr.readU32Array(primCount)
		default:
			return 0, dr.errHere(daserror.InvalidKeyword, name)
		}
		if err != nil {
			return 0, err
		}
	}
	dr.model.Meshes = append(dr.model.Meshes, m)
	return uint32(len(dr.model.Meshes) - 1), nil
}

func (dr *Reader) readNode() (uint32, error) {

	n := NewNode()
	var childCount uint32
	for {
		name, _, isNested, done, err := dr.nextDecl()
		if err != nil {
			return 0, err
		}
		if done {
			break
		}
		if isNested {
			return 0, dr.errHere(daserror.InvalidKeyword, "nested scope in NODE")
		}
		switch name {
		case "NAME":
			n.Name, err = dr.readString()
		case "CHILDRENCOUNT":
			childCount, err = dr.readU32()
		case "CHILDREN":
			n.Children, err = dr.readU32Array(childCount)
		case "MESH":
			n.Mesh, err = dr.readU32()
		case "SKELETON":
			n.Skeleton, err = dr.readU32()
		case "TRANSFORM":
			var vals []float32
			vals, err = dr.readF32Array(16)
			if err == nil {
				n.Transform.FromSlice(vals)
			}
		default:
			return 0, dr.errHere(daserror.InvalidKeyword, name)
		}
		if err != nil {
			return 0, err
		}
	}
	dr.model.Nodes = append(dr.model.Nodes, n)
	return uint32(len(dr.model.Nodes) - 1), nil
}

func (dr *Reader) readScene() (uint32, error) {

	var s Scene
	var nodeCount uint32
	for {
		name, nested, isNested, done, err := dr.nextDecl()
		if err != nil {
			return 0, err
		}
		if done {
			break
		}
		if isNested {
			// A scene may host its nodes as nested scopes.
			if nested != scopeNode {
				return 0, dr.errHere(daserror.InvalidKeyword, "unexpected nested scope in SCENE")
			}
			var id uint32
			id, err = dr.readScope(nested)
			if err != nil {
				return 0, err
			}
			s.Nodes = append(s.Nodes, id)
			continue
		}
		switch name {
		case "NAME":
			s.Name, err = dr.readString()
		case "NODECOUNT":
			nodeCount, err = dr.readU32()
		case "NODES":
			s.Nodes, err = dr.readU32Array(nodeCount)
		default:
			return 0, dr.errHere(daserror.InvalidKeyword, name)
		}
		if err != nil {
			return 0, err
		}
	}
	dr.model.Scenes = append(dr.model.Scenes, s)
	return uint32(len(dr.model.Scenes) - 1), nil
}

func (dr *Reader) readSkeleton() (uint32, error) {

	s := Skeleton{Parent: InvalidID}
	var jointCount uint32
	for {
		name, _, isNested, done, err := dr.nextDecl()
		if err != nil {
			return 0, err
		}
		if done {
			break
		}
		if isNested {
			return 0, dr.errHere(daserror.InvalidKeyword, "nested scope in SKELETON")
		}
		switch name {
		case "NAME":
			s.Name, err = dr.readString()
		case "PARENT":
			s.Parent, err = dr.readU32()
		case "JOINTCOUNT":
			jointCount, err = dr.readU32()
		case "JOINTS":
			s.Joints, err = dr.readU32Array(jointCount)
		default:
			return 0, dr.errHere(daserror.InvalidKeyword, name)
		}
		if err != nil {
			return 0, err
		}
	}
	dr.model.Skeletons = append(dr.model.Skeletons, s)
	return uint32(len(dr.model.Skeletons) - 1), nil
}

func (dr *Reader) readSkeletonJoint() (uint32, error) {

	j := NewSkeletonJoint()
	var childCount uint32
	for {
		name, _, isNested, done, err := dr.nextDecl()
		if err != nil {
			return 0, err
		}
		if done {
			break
		}
		if isNested {
			return 0, dr.errHere(daserror.InvalidKeyword, "nested scope in SKELETONJOINT")
		}
		switch name {
		case "INVERSEBINDPOS":
			var vals []float32
			vals, err = dr.readF32Array(16)
			if err == nil {
				j.InverseBindPos.FromSlice(vals)
			}
		case "SCALE":
			j.Scale, err = dr.readF32()
		case "ROTATION":
			var vals []float32
			vals, err = dr.readF32Array(4)
			if err == nil {
				j.Rotation.Set(vals[0], vals[1], vals[2], vals[3])
			}
		case "TRANSLATION":
			var vals []float32
			vals, err = dr.readF32Array(3)
			if err == nil {
				j.Translation.Set(vals[0], vals[1], vals[2])
			}
		case "NAME":
			j.Name, err = dr.readString()
		case "CHILDRENCOUNT":
			childCount, err = dr.readU32()
		case "CHILDREN":
			j.Children, err = dr.readU32Array(childCount)
		default:
			return 0, dr.errHere(daserror.InvalidKeyword, name)
		}
		if err != nil {
			return 0, err
		}
	}
	dr.model.SkeletonJoints = append(dr.model.SkeletonJoints, j)
	return uint32(len(dr.model.SkeletonJoints) - 1), nil
}

func (dr *Reader) readAnimation() (uint32, error) {

	var a Animation
	var chanCount uint32
	for {
		name, nested, isNested, done, err := dr.nextDecl()
		if err != nil {
			return 0, err
		}
		if done {
			break
		}
		if isNested {
			// An animation may host its channels as nested scopes.
			if nested != scopeAnimationChannel {
				return 0, dr.errHere(daserror.InvalidKeyword, "unexpected nested scope in ANIMATION")
			}
			var id uint32
			id, err = dr.readScope(nested)
			if err != nil {
				return 0, err
			}
			a.Channels = append(a.Channels, id)
			continue
		}
		switch name {
		case "NAME":
			a.Name, err = dr.readString()
		case "CHANNELCOUNT":
			chanCount, err = dr.readU32()
		case "CHANNELS":
			a.Channels, err = dr.readU32Array(chanCount)
		default:
			return 0, dr.errHere(daserror.InvalidKeyword, name)
		}
		if err != nil {
			return 0, err
		}
	}
	dr.model.Animations = append(dr.model.Animations, a)
	return uint32(len(dr.model.Animations) - 1), nil
}

func (dr *Reader) readAnimationChannel() (uint32, error) {

	ch := NewAnimationChannel()
	for {
		name, _, isNested, done, err := dr.nextDecl()
		if err != nil {
			return 0, err
		}
		if done {
			break
		}
		if isNested {
			return 0, dr.errHere(daserror.InvalidKeyword, "nested scope in ANIMATIONCHANNEL")
		}
		switch name {
		case "NODEID":
			ch.NodeID, err = dr.readU32()
		case "JOINTID":
			ch.JointID, err = dr.readU32()
		case "TARGET":
			var v uint8
			v, err = dr.readU8()
			ch.Target = AnimationTarget(v)
		case "INTERPOLATION":
			var v uint8
			v, err = dr.readU8()
			ch.Interpolation = InterpolationType(v)
		case "KEYFRAMECOUNT":
			ch.KeyframeCount, err = dr.readU32()
		case "WEIGHTCOUNT":
			ch.WeightCount, err = dr.readU32()
		case "KEYFRAMES":
			ch.Keyframes, err = dr.readF32Array(ch.KeyframeCount)
		case "TANGENTS":
			ch.Tangents, err = dr.readF32Array(ch.KeyframeCount * uint32(ch.TargetStride()))
		case "TARGETVALUES":
			ch.TargetValues, err = dr.readF32Array(ch.KeyframeCount * uint32(ch.TargetStride()))
		default:
			return 0, dr.errHere(daserror.InvalidKeyword, name)
		}
		if err != nil {
			return 0, err
		}
	}
	dr.model.Channels = append(dr.model.Channels, ch)
	return uint32(len(dr.model.Channels) - 1), nil
}

// expectSpace consumes the single separator byte after a value name.
func (dr *Reader) expectSpace() error {

	buf := dr.ar.Buffer()
	p := dr.ar.GetReadPtr()
	if p >= len(buf) || buf[p] != ' ' {
		return dr.errHere(daserror.InvalidValue, "missing value separator")
	}
	dr.ar.SetReadPtr(p + 1)
	return nil
}

// consumeNewline consumes the optional value terminator.
func (dr *Reader) consumeNewline() {

	buf := dr.ar.Buffer()
	p := dr.ar.GetReadPtr()
	if p < len(buf) && buf[p] == '\r' {
		p++
	}
	if p < len(buf) && buf[p] == '\n' {
		p++
	}
	dr.ar.SetReadPtr(p)
}

// readRaw consumes the separator, n raw bytes and the terminator.
func (dr *Reader) readRaw(n int) ([]byte, error) {

	if err := dr.expectSpace(); err != nil {
		return nil, err
	}
	b, err := dr.ar.ExtractBlob(n)
	if err != nil {
		return nil, err
	}
	dr.consumeNewline()
	return b, nil
}

func (dr *Reader) readString() (string, error) {

	if err := dr.expectSpace(); err != nil {
		return "", err
	}
	s, err := dr.ar.ExtractString()
	if err != nil {
		return "", err
	}
	dr.consumeNewline()
	return s, nil
}

func (dr *Reader) readU8() (uint8, error) {

	b, err := dr.readRaw(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (dr *Reader) readU16() (uint16, error) {

	b, err := dr.readRaw(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (dr *Reader) readU32() (uint32, error) {

	b, err := dr.readRaw(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (dr *Reader) readU64() (uint64, error) {

	b, err := dr.readRaw(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (dr *Reader) readF32() (float32, error) {

	v, err := dr.readU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (dr *Reader) readU32Array(n uint32) ([]uint32, error) {

	b, err := dr.readRaw(int(n) * 4)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, n)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(b[4*i:])
	}
	return out, nil
}

func (dr *Reader) readF32Array(n uint32) ([]float32, error) {

	b, err := dr.readRaw(int(n) * 4)
	if err != nil {
		return nil, err
	}
	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return out, nil
}

// errHere annotates an error with the current input offset.
func (dr *Reader) errHere(kind daserror.Kind, msg string) error {

	return daserror.New(kind, msg).AtOffset(dr.file, dr.ar.Offset())
}
