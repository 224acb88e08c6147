// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package das

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/g3n/das/daserror"
	"github.com/g3n/das/huffman"
	"github.com/g3n/das/math32"
	"github.com/g3n/das/texture"
)

// Writer emits DAS scopes, typed values and blobs to a byte sink.
// Scope write order is contractual: properties, buffers, mesh
// primitives, morph targets, meshes, nodes, skeleton joints,
// skeletons, animation channels, animations, scenes. WriteModel
// enforces that order; callers driving the writer manually must
// preserve it themselves.
type Writer struct {
	sink    io.Writer
	file    *os.File
	bw      *bufio.Writer
	staging *bytes.Buffer
	out     io.Writer // bw or staging
	depth   int
	name    string
}

// NewWriter creates a writer emitting to the specified sink.
func NewWriter(w io.Writer) *Writer {

	dw := &Writer{sink: w}
	dw.bw = bufio.NewWriter(w)
	dw.out = dw.bw
	return dw
}

// CreateFile creates the specified file and returns a writer emitting
// to it. The .das extension is appended when missing. Finish closes
// the file.
func CreateFile(path string) (*Writer, error) {

	if !strings.HasSuffix(strings.ToLower(path), ".das") {
		path += ".das"
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, daserror.Wrap(daserror.InvalidFile, err)
	}
	dw := NewWriter(f)
	dw.file = f
	dw.name = path
	return dw, nil
}

// InitialiseFile writes the 16-byte signature followed by the
// PROPERTIES scope. When the properties request compression, every
// byte after the signature is staged in memory and Huffman-encoded by
// Finish. A zero ModDate is stamped with the current time and an
// empty author with the library default.
func (dw *Writer) InitialiseFile(props *Properties) error {

	var sig [SignatureSize]byte
	binary.LittleEndian.PutUint32(sig[:4], Magic)
	if _, err := dw.bw.Write(sig[:]); err != nil {
		return daserror.Wrap(daserror.InvalidFile, err)
	}
	if props.Compression {
		dw.staging = new(bytes.Buffer)
		dw.out = dw.staging
	}

	p := *props
	if p.Author == "" {
		p.Author = DefaultAuthor
	}
	if p.ModDate == 0 {
		p.ModDate = uint64(time.Now().Unix())
	}

	if err := dw.beginScope("PROPERTIES"); err != nil {
		return err
	}
	dw.writeStringValue("MODEL", p.Model)
	dw.writeStringValue("AUTHOR", p.Author)
	dw.writeStringValue("COPYRIGHT", p.Copyright)
	dw.writeU64Value("MODDATE", p.ModDate)
	var comp byte
	if p.Compression {
		comp = 1
	}
	dw.writeU8Value("COMPRESSION", comp)
	dw.writeU32Value("DEFAULTSCENE", p.DefaultScene)
	return dw.endScope()
}

// WriteBuffer writes one BUFFER scope.
func (dw *Writer) WriteBuffer(buf *Buffer) error {

	if err := dw.beginScope("BUFFER"); err != nil {
		return err
	}
	dw.writeU16Value("BUFFERTYPE", uint16(buf.Type))
	dw.writeU32Value("DATALEN", uint32(len(buf.Data)))
	dw.writeBlob("DATA", buf.Data)
	return dw.endScope()
}

// AppendTextures probes the specified texture files and writes one
// BUFFER scope per file, tagged with the detected codec. When raw is
// set the payload is decoded into a raw RGBA pixel stream prefixed
// with a width/height/bit-depth header instead of the encoded bytes.
func (dw *Writer) AppendTextures(paths []string, raw bool) error {

	for _, path := range paths {
		kind, err := texture.ProbeFile(path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return daserror.Wrap(daserror.InvalidFile, err)
		}
		buf := Buffer{Type: BufferTypeFromTextureKind(kind), Data: data}
		if raw {
			img, err := texture.DecodeRaw(data)
			if err != nil {
				return err
			}
			hdr := make([]byte, 0, 9+len(img.Pixels))
			hdr = binary.LittleEndian.AppendUint32(hdr, img.Width)
			hdr = binary.LittleEndian.AppendUint32(hdr, img.Height)
			hdr = append(hdr, img.BitDepth)
			buf = Buffer{Type: BufferTypeTextureRaw, Data: append(hdr, img.Pixels...)}
		}
		if err := dw.WriteBuffer(&buf); err != nil {
			return err
		}
	}
	return nil
}

// BufferTypeFromTextureKind maps a probed texture kind to the
// corresponding buffer type flag.
func BufferTypeFromTextureKind(kind texture.Kind) BufferType {

	switch kind {
	case texture.JPEG:
		return BufferTypeTextureJPEG
	case texture.PNG:
		return BufferTypeTexturePNG
	case texture.BMP:
		return BufferTypeTextureBMP
	case texture.PPM:
		return BufferTypeTexturePPM
	case texture.TGA:
		return BufferTypeTextureTGA
	case texture.Raw:
		return BufferTypeTextureRaw
	}
	return BufferTypeUnknown
}

// WriteMeshPrimitive writes one MESHPRIMITIVE scope.
func (dw *Writer) WriteMeshPrimitive(p *MeshPrimitive) error {

	if err := dw.beginScope("MESHPRIMITIVE"); err != nil {
		return err
	}
	dw.writeU32Value("INDEXBUFFERID", p.IndexBufferID)
	dw.writeU32Value("INDEXBUFFEROFFSET", p.IndexBufferOffset)
	dw.writeU32Value("INDICESCOUNT", p.IndicesCount)
	dw.writeU32Value("VERTEXBUFFERID", p.VertexBufferID)
	dw.writeU32Value("VERTEXBUFFEROFFSET", p.VertexBufferOffset)
	dw.writeU32Value("VERTEXNORMALBUFFERID", p.VertexNormalBufferID)
	dw.writeU32Value("VERTEXNORMALBUFFEROFFSET", p.VertexNormalBufferOffset)
	dw.writeU32Value("VERTEXTANGENTBUFFERID", p.VertexTangentBufferID)
	dw.writeU32Value("VERTEXTANGENTBUFFEROFFSET", p.VertexTangentBufferOffset)
	dw.writeU32Value("TEXTURECOUNT", uint32(len(p.UVBufferIDs)))
	if len(p.UVBufferIDs) > 0 {
		dw.writeU32Array("UVBUFFERIDS", p.UVBufferIDs)
		dw.writeU32Array("UVBUFFEROFFSETS", p.UVBufferOffsets)
		dw.writeU32Array("TEXTUREIDS", p.TextureIDs)
	}
	dw.writeU32Value("COLORMULCOUNT", uint32(len(p.ColorMulBufferIDs)))
	if len(p.ColorMulBufferIDs) > 0 {
		dw.writeU32Array("COLORMULBUFFERIDS", p.ColorMulBufferIDs)
		dw.writeU32Array("COLORMULBUFFEROFFSETS", p.ColorMulBufferOffsets)
	}
	dw.writeU32Value("JOINTSETCOUNT", uint32(len(p.JointIndexBufferIDs)))
	if len(p.JointIndexBufferIDs) > 0 {
		dw.writeU32Array("JOINTINDEXBUFFERIDS", p.JointIndexBufferIDs)
		dw.writeU32Array("JOINTINDEXBUFFEROFFSETS", p.JointIndexBufferOffsets)
		dw.writeU32Array("JOINTWEIGHTBUFFERIDS", p.JointWeightBufferIDs)
		dw.writeU32Array("JOINTWEIGHTBUFFEROFFSETS", p.JointWeightBufferOffsets)
	}
	dw.writeU32Value("MORPHTARGETCOUNT", uint32(len(p.MorphTargets)))
	if len(p.MorphTargets) > 0 {
		dw.writeU32Array("MORPHTARGETS", p.MorphTargets)
		dw.writeF32Array("MORPHWEIGHTS", p.MorphWeights)
	}
	return dw.endScope()
}

// WriteMorphTarget writes one MORPHTARGET scope.
func (dw *Writer) WriteMorphTarget(t *MorphTarget) error {

	if err := dw.beginScope("MORPHTARGET"); err != nil {
		return err
	}
	dw.writeU32Value("VERTEXBUFFERID", t.VertexBufferID)
	dw.writeU32Value("VERTEXBUFFEROFFSET", t.VertexBufferOffset)
	dw.writeU32Value("VERTEXNORMALBUFFERID", t.VertexNormalBufferID)
	dw.writeU32Value("VERTEXNORMALBUFFEROFFSET", t.VertexNormalBufferOffset)
	dw.writeU32Value("VERTEXTANGENTBUFFERID", t.VertexTangentBufferID)
	dw.writeU32Value("VERTEXTANGENTBUFFEROFFSET", t.VertexTangentBufferOffset)
	dw.writeU32Value("TEXTURECOUNT", uint32(len(t.UVBufferIDs)))
	if len(t.UVBufferIDs) > 0 {
		dw.writeU32Array("UVBUFFERIDS", t.UVBufferIDs)
		dw.writeU32Array("UVBUFFEROFFSETS", t.UVBufferOffsets)
	}
	dw.writeU32Value("COLORMULCOUNT", uint32(len(t.ColorMulBufferIDs)))
	if len(t.ColorMulBufferIDs) > 0 {
		dw.writeU32Array("COLORMULBUFFERIDS", t.ColorMulBufferIDs)
		dw.writeU32Array("COLORMULBUFFEROFFSETS", t.ColorMulBufferOffsets)
	}
	return dw.endScope()
}

// WriteMesh writes one MESH scope.
func (dw *Writer) WriteMesh(m *Mesh) error {

	if err := dw.beginScope("MESH"); err != nil {
		return err
	}
	dw.writeStringValue("NAME", m.Name)
	dw.writeU32Value("PRIMITIVECOUNT", uint32(len(m.Primitives)))
	if len(m.Primitives) > 0 {
		dw.writeU32Array("PRIMITIVES", m.Primitives)
	}
	return dw.endScope()
}

// WriteNode writes one NODE scope.
func (dw *Writer) WriteNode(n *Node) error {

	if err := dw.beginScope("NODE"); err != nil {
		return err
	}
	dw.writeStringValue("NAME", n.Name)
	dw.writeU32Value("CHILDRENCOUNT", uint32(len(n.Children)))
	if len(n.Children) > 0 {
		dw.writeU32Array("CHILDREN", n.Children)
	}
	dw.writeU32Value("MESH", n.Mesh)
	dw.writeU32Value("SKELETON", n.Skeleton)
	dw.writeMatrixValue("TRANSFORM", &n.Transform)
	return dw.endScope()
}

// WriteScene writes one SCENE scope.
func (dw *Writer) WriteScene(s *Scene) error {

	if err := dw.beginScope("SCENE"); err != nil {
		return err
	}
	dw.writeStringValue("NAME", s.Name)
	dw.writeU32Value("NODECOUNT", uint32(len(s.Nodes)))
	if len(s.Nodes) > 0 {
		dw.writeU32Array("NODES", s.Nodes)
	}
	return dw.endScope()
}

// WriteSkeleton writes one SKELETON scope.
func (dw *Writer) WriteSkeleton(s *Skeleton) error {

	if err := dw.beginScope("SKELETON"); err != nil {
		return err
	}
	dw.writeStringValue("NAME", s.Name)
	dw.writeU32Value("PARENT", s.Parent)
	dw.writeU32Value("JOINTCOUNT", uint32(len(s.Joints)))
	if len(s.Joints) > 0 {
		dw.writeU32Array("JOINTS", s.Joints)
	}
	return dw.endScope()
}

// WriteSkeletonJoint writes one SKELETONJOINT scope.
func (dw *Writer) WriteSkeletonJoint(j *SkeletonJoint) error {

	if err := dw.beginScope("SKELETONJOINT"); err != nil {
		return err
	}
	dw.writeMatrixValue("INVERSEBINDPOS", &j.InverseBindPos)
	dw.writeF32Value("SCALE", j.Scale)
	dw.writeF32Array("ROTATION", []float32{j.Rotation.X, j.Rotation.Y, j.Rotation.Z, j.Rotation.W})
	dw.writeF32Array("TRANSLATION", []float32{j.Translation.X, j.Translation.Y, j.Translation.Z})
	dw.writeStringValue("NAME", j.Name)
	dw.writeU32Value("CHILDRENCOUNT", uint32(len(j.Children)))
	if len(j.Children) > 0 {
		dw.writeU32Array("CHILDREN", j.Children)
	}
	return dw.endScope()
}

// WriteAnimation writes one ANIMATION scope.
func (dw *Writer) WriteAnimation(a *Animation) error {

	if err := dw.beginScope("ANIMATION"); err != nil {
		return err
	}
	dw.writeStringValue("NAME", a.Name)
	dw.writeU32Value("CHANNELCOUNT", uint32(len(a.Channels)))
	if len(a.Channels) > 0 {
		dw.writeU32Array("CHANNELS", a.Channels)
	}
	return dw.endScope()
}

// WriteAnimationChannel writes one ANIMATIONCHANNEL scope.
func (dw *Writer) WriteAnimationChannel(ch *AnimationChannel) error {

	if err := dw.beginScope("ANIMATIONCHANNEL"); err != nil {
		return err
	}
	if ch.JointID != InvalidID {
		dw.writeU32Value("JOINTID", ch.JointID)
	} else {
		dw.writeU32Value("NODEID", ch.NodeID)
	}
	dw.writeU8Value("TARGET", uint8(ch.Target))
	dw.writeU8Value("INTERPOLATION", uint8(ch.Interpolation))
	dw.writeU32Value("KEYFRAMECOUNT", ch.KeyframeCount)
	dw.writeU32Value("WEIGHTCOUNT", ch.WeightCount)
	if len(ch.Keyframes) > 0 {
		dw.writeF32Array("KEYFRAMES", ch.Keyframes)
	}
	if ch.Interpolation == InterpolationCubicSpline && len(ch.Tangents) > 0 {
		dw.writeF32Array("TANGENTS", ch.Tangents)
	}
	if len(ch.TargetValues) > 0 {
		dw.writeF32Array("TARGETVALUES", ch.TargetValues)
	}
	return dw.endScope()
}

// WriteModel writes a complete model in the contractual scope order
// and finishes the stream.
func (dw *Writer) WriteModel(m *Model) error {

	if err := dw.InitialiseFile(&m.Props); err != nil {
		return err
	}
	for i := range m.Buffers {
		if err := dw.WriteBuffer(&m.Buffers[i]); err != nil {
			return err
		}
	}
	for i := range m.MeshPrimitives {
		if err := dw.WriteMeshPrimitive(&m.MeshPrimitives[i]); err != nil {
			return err
		}
	}
	for i := range m.MorphTargets {
		if err := dw.WriteMorphTarget(&m.MorphTargets[i]); err != nil {
			return err
		}
	}
	for i := range m.Meshes {
		if err := dw.WriteMesh(&m.Meshes[i]); err != nil {
			return err
		}
	}
	for i := range m.Nodes {
		if err := dw.WriteNode(&m.Nodes[i]); err != nil {
			return err
		}
	}
	for i := range m.SkeletonJoints {
		if err := dw.WriteSkeletonJoint(&m.SkeletonJoints[i]); err != nil {
			return err
		}
	}
	for i := range m.Skeletons {
		if err := dw.WriteSkeleton(&m.Skeletons[i]); err != nil {
			return err
		}
	}
	for i := range m.Channels {
		if err := dw.WriteAnimationChannel(&m.Channels[i]); err != nil {
			return err
		}
	}
	for i := range m.Animations {
		if err := dw.WriteAnimation(&m.Animations[i]); err != nil {
			return err
		}
	}
	for i := range m.Scenes {
		if err := dw.WriteScene(&m.Scenes[i]); err != nil {
			return err
		}
	}
	return dw.Finish()
}

// Finish completes the stream: it verifies that every scope was
// closed, encodes the staged payload when compression was requested,
// flushes the sink and closes the file when the writer owns one.
func (dw *Writer) Finish() error {

	if dw.depth != 0 {
		return daserror.Newf(daserror.IncompleteScope, "%d scopes left open", dw.depth)
	}
	if dw.staging != nil {
		if _, err := dw.bw.Write(huffman.Encode(dw.staging.Bytes())); err != nil {
			return daserror.Wrap(daserror.InvalidFile, err)
		}
		dw.staging = nil
	}
	if err := dw.bw.Flush(); err != nil {
		return daserror.Wrap(daserror.InvalidFile, err)
	}
	if dw.file != nil {
		if err := dw.file.Close(); err != nil {
			return daserror.Wrap(daserror.InvalidFile, err)
		}
		dw.file = nil
	}
	return nil
}

// beginScope writes the scope name line and tracks nesting depth.
func (dw *Writer) beginScope(name string) error {

	dw.depth++
	_, err := dw.out.Write([]byte(name + "\n"))
	if err != nil {
		return daserror.Wrap(daserror.InvalidFile, err)
	}
	return nil
}

// endScope writes the ENDSCOPE terminator.
func (dw *Writer) endScope() error {

	if dw.depth == 0 {
		return daserror.New(daserror.ScopeAlreadyClosed, "no scope open")
	}
	dw.depth--
	_, err := dw.out.Write([]byte("ENDSCOPE\n"))
	if err != nil {
		return daserror.Wrap(daserror.InvalidFile, err)
	}
	return nil
}

func (dw *Writer) writeValueName(name string) {

	dw.out.Write([]byte(name))
	dw.out.Write([]byte(": "))
}

func (dw *Writer) writeStringValue(name, value string) {

	dw.writeValueName(name)
	dw.out.Write([]byte{'"'})
	dw.out.Write([]byte(strings.ReplaceAll(value, `"`, `\"`)))
	dw.out.Write([]byte{'"', '\n'})
}

func (dw *Writer) writeU8Value(name string, v uint8) {

	dw.writeValueName(name)
	dw.out.Write([]byte{v, '\n'})
}

func (dw *Writer) writeU16Value(name string, v uint16) {

	dw.writeValueName(name)
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	dw.out.Write(b[:])
	dw.out.Write([]byte{'\n'})
}

func (dw *Writer) writeU32Value(name string, v uint32) {

	dw.writeValueName(name)
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	dw.out.Write(b[:])
	dw.out.Write([]byte{'\n'})
}

func (dw *Writer) writeU64Value(name string, v uint64) {

	dw.writeValueName(name)
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	dw.out.Write(b[:])
	dw.out.Write([]byte{'\n'})
}

func (dw *Writer) writeF32Value(name string, v float32) {

	dw.writeU32Value(name, math.Float32bits(v))
}

func (dw *Writer) writeU32Array(name string, values []uint32) {

	dw.writeValueName(name)
	b := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(b[4*i:], v)
	}
	dw.out.Write(b)
	dw.out.Write([]byte{'\n'})
}

func (dw *Writer) writeF32Array(name string, values []float32) {

	dw.writeValueName(name)
	b := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(v))
	}
	dw.out.Write(b)
	dw.out.Write([]byte{'\n'})
}

// writeMatrixValue writes 16 row-major floats.
func (dw *Writer) writeMatrixValue(name string, m *math32.Matrix4) {

	dw.writeF32Array(name, m[:])
}

// writeBlob writes a generic data value of raw bytes.
func (dw *Writer) writeBlob(name string, data []byte) {

	dw.writeValueName(name)
	dw.out.Write(data)
	dw.out.Write([]byte{'\n'})
}
