// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gltf

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/g3n/das/daserror"
	"github.com/g3n/das/uri"
)

// Extensions the loader understands. An asset requiring anything else
// is rejected at parse time.
var supportedExtensions = []string{
	"KHR_materials_unlit",
}

// ParseJSON parses the glTF data from the specified JSON file
// and returns a pointer to the parsed structure.
func ParseJSON(filename string) (*GLTF, error) {

	f, err := os.Open(filename)
	if err != nil {
		return nil, daserror.Wrap(daserror.InvalidFile, err)
	}
	defer f.Close()
	return ParseJSONReader(f, filepath.Dir(filename))
}

// ParseJSONReader parses the glTF JSON data from the specified reader
// and returns a pointer to the parsed structure. The path is the
// directory that relative buffer and image URIs resolve against.
func ParseJSONReader(r io.Reader, path string) (*GLTF, error) {

	g := new(GLTF)
	g.path = path
	g.resolver = uri.NewResolver(path, uri.Error)

	dec := json.NewDecoder(r)
	if err := dec.Decode(g); err != nil {
		return nil, daserror.Wrap(daserror.InvalidValue, err)
	}
	if err := g.checkRequiredExtensions(); err != nil {
		return nil, err
	}
	return g, nil
}

// ParseBin parses the glTF data from the specified binary (.glb) file
// and returns a pointer to the parsed structure.
func ParseBin(filename string) (*GLTF, error) {

	f, err := os.Open(filename)
	if err != nil {
		return nil, daserror.Wrap(daserror.InvalidFile, err)
	}
	defer f.Close()
	return ParseBinReader(f, filepath.Dir(filename))
}

// ParseBinReader parses the glTF data from the specified binary reader
// and returns a pointer to the parsed structure.
func ParseBinReader(r io.Reader, path string) (*GLTF, error) {

	var header GLBHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, daserror.Wrap(daserror.InvalidSignature, err)
	}
	if header.Magic != GLBMagic {
		return nil, daserror.New(daserror.InvalidSignature, "bad GLB magic")
	}
	if header.Version < 2 {
		return nil, daserror.Newf(daserror.InvalidSignature, "GLB version %d not supported", header.Version)
	}

	jsonChunk, err := readChunk(r, GLBJson)
	if err != nil {
		return nil, err
	}
	g, err := ParseJSONReader(bytes.NewReader(jsonChunk), path)
	if err != nil {
		return nil, err
	}

	// Second chunk (binary) is optional.
	data, err := readChunk(r, GLBBin)
	if err != nil {
		return nil, err
	}
	g.data = data
	return g, nil
}

// readChunk reads a GLB chunk with the specified type and returns its payload.
func readChunk(r io.Reader, chunkType uint32) ([]byte, error) {

	var chunk GLBChunk
	err := binary.Read(r, binary.LittleEndian, &chunk)
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, daserror.Wrap(daserror.InvalidDataLength, err)
	}
	if chunk.Type != chunkType {
		return nil, daserror.Newf(daserror.InvalidValue, "expected GLB chunk type %#x, got %#x", chunkType, chunk.Type)
	}
	data := make([]byte, chunk.Length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, daserror.Wrap(daserror.InvalidDataLength, err)
	}
	return data, nil
}

// checkRequiredExtensions rejects assets that require an extension the
// loader does not know.
func (g *GLTF) checkRequiredExtensions() error {

	for _, req := range g.ExtensionsRequired {
		ok := false
		for _, sup := range supportedExtensions {
			if req == sup {
				ok = true
				break
			}
		}
		if !ok {
			return daserror.Newf(daserror.UnsupportedExtension, "%s", req)
		}
	}
	return nil
}

// SetResolver replaces the buffer and image URI resolver. Useful for
// changing the unresolved-URI severity before lowering.
func (g *GLTF) SetResolver(r *uri.Resolver) {

	g.resolver = r
}

// Resolver returns the URI resolver in use.
func (g *GLTF) Resolver() *uri.Resolver {

	return g.resolver
}

// LoadBuffer returns the payload of the specified buffer index. An
// empty URI refers to the GLB binary chunk. Loaded payloads are cached.
func (g *GLTF) LoadBuffer(bi int) ([]byte, error) {

	if bi < 0 || bi >= len(g.Buffers) {
		return nil, daserror.Newf(daserror.InvalidValue, "buffer index %d out of range", bi)
	}
	buf := &g.Buffers[bi]
	if buf.Uri == "" {
		return g.data, nil
	}
	if len(buf.cache) > 0 {
		return buf.cache, nil
	}

	r, err := g.resolver.Resolve(buf.Uri)
	if err != nil {
		return nil, err
	}
	if len(r.Data) > 0 && len(r.Data) < buf.ByteLength {
		return nil, daserror.Newf(daserror.InvalidDataLength,
			"buffer %d read %d bytes, expected %d", bi, len(r.Data), buf.ByteLength)
	}
	buf.cache = r.Data
	return r.Data, nil
}

// LoadBufferView returns the byte window of the specified buffer view.
func (g *GLTF) LoadBufferView(bvi int) ([]byte, error) {

	if bvi < 0 || bvi >= len(g.BufferViews) {
		return nil, daserror.Newf(daserror.InvalidValue, "buffer view index %d out of range", bvi)
	}
	bv := &g.BufferViews[bvi]
	buf, err := g.LoadBuffer(bv.Buffer)
	if err != nil {
		return nil, err
	}
	offset := 0
	if bv.ByteOffset != nil {
		offset = *bv.ByteOffset
	}
	if offset+bv.ByteLength > len(buf) {
		return nil, daserror.Newf(daserror.InvalidDataLength, "buffer view %d exceeds buffer", bvi)
	}
	return buf[offset : offset+bv.ByteLength], nil
}

// AccessorBytes returns the data of the specified accessor as a
// tightly packed stream of count x unit-size bytes. Interleaved buffer
// views are flattened by copying each element individually.
func (g *GLTF) AccessorBytes(ai int) ([]byte, error) {

	ac, err := g.accessor(ai)
	if err != nil {
		return nil, err
	}
	if ac.BufferView == nil {
		// Accessor without a buffer view reads as zeros.
		return make([]byte, ac.Count*g.UnitSize(ac)), nil
	}
	view, err := g.LoadBufferView(*ac.BufferView)
	if err != nil {
		return nil, err
	}

	offset := 0
	if ac.ByteOffset != nil {
		offset = *ac.ByteOffset
	}
	unit := g.UnitSize(ac)
	stride := unit
	bv := &g.BufferViews[*ac.BufferView]
	if bv.ByteStride != nil && *bv.ByteStride != 0 {
		stride = *bv.ByteStride
	}
	if ac.Count == 0 {
		return nil, nil
	}
	if offset+(ac.Count-1)*stride+unit > len(view) {
		return nil, daserror.Newf(daserror.InvalidAccessor, "accessor %d exceeds its buffer view", ai)
	}
	if stride == unit {
		return view[offset : offset+ac.Count*unit], nil
	}

	// Interleaved: flatten into a fresh tightly packed stream.
	out := make([]byte, ac.Count*unit)
	for i := 0; i < ac.Count; i++ {
		copy(out[i*unit:], view[offset+i*stride:offset+i*stride+unit])
	}
	return out, nil
}

// UnitSize returns the byte size of one element of the accessor.
func (g *GLTF) UnitSize(ac *Accessor) int {

	return ComponentSize(ac.ComponentType) * TypeSizes[ac.Type]
}

// accessor validates an accessor index.
func (g *GLTF) accessor(ai int) (*Accessor, error) {

	if ai < 0 || ai >= len(g.Accessors) {
		return nil, daserror.Newf(daserror.InvalidAccessor, "accessor index %d out of range", ai)
	}
	ac := &g.Accessors[ai]
	if ComponentSize(ac.ComponentType) == 0 {
		return nil, daserror.Newf(daserror.InvalidAccessor, "accessor %d component type %d", ai, ac.ComponentType)
	}
	if TypeSizes[ac.Type] == 0 {
		return nil, daserror.Newf(daserror.InvalidAccessor, "accessor %d type %q", ai, ac.Type)
	}
	return ac, nil
}

// AccessorF32 reads the accessor and casts every component to float32.
func (g *GLTF) AccessorF32(ai int) ([]float32, error) {

	ac, err := g.accessor(ai)
	if err != nil {
		return nil, err
	}
	data, err := g.AccessorBytes(ai)
	if err != nil {
		return nil, err
	}
	ncomp := ac.Count * TypeSizes[ac.Type]
	out := make([]float32, ncomp)
	csize := ComponentSize(ac.ComponentType)
	for i := 0; i < ncomp; i++ {
		out[i] = castF32(data[i*csize:], ac.ComponentType)
	}
	return out, nil
}

// AccessorU32 reads an accessor of any element type and widens every
// component to uint32.
func (g *GLTF) AccessorU32(ai int) ([]uint32, error) {

	ac, err := g.accessor(ai)
	if err != nil {
		return nil, err
	}
	data, err := g.AccessorBytes(ai)
	if err != nil {
		return nil, err
	}
	ncomp := ac.Count * TypeSizes[ac.Type]
	out := make([]uint32, ncomp)
	csize := ComponentSize(ac.ComponentType)
	for i := 0; i < ncomp; i++ {
		out[i] = castU32(data[i*csize:], ac.ComponentType)
	}
	return out, nil
}

// castF32 reinterprets one component of the specified KHRONOS type as float32.
func castF32(b []byte, componentType int) float32 {

	switch componentType {
	case FLOAT:
		return float32frombytes(b)
	case BYTE:
		return float32(int8(b[0]))
	case UNSIGNED_BYTE:
		return float32(b[0])
	case SHORT:
		return float32(int16(binary.LittleEndian.Uint16(b)))
	case UNSIGNED_SHORT:
		return float32(binary.LittleEndian.Uint16(b))
	case UNSIGNED_INT:
		return float32(binary.LittleEndian.Uint32(b))
	}
	return 0
}

// castU32 widens one component of the specified KHRONOS type to uint32.
func castU32(b []byte, componentType int) uint32 {

	switch componentType {
	case UNSIGNED_BYTE:
		return uint32(b[0])
	case BYTE:
		return uint32(int8(b[0]))
	case UNSIGNED_SHORT:
		return uint32(binary.LittleEndian.Uint16(b))
	case SHORT:
		return uint32(int16(binary.LittleEndian.Uint16(b)))
	case UNSIGNED_INT:
		return binary.LittleEndian.Uint32(b)
	case FLOAT:
		return uint32(float32frombytes(b))
	}
	return 0
}

func float32frombytes(b []byte) float32 {

	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}
