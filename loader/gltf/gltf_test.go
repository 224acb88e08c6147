// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gltf

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/g3n/das/daserror"
	"github.com/stretchr/testify/assert"
)

func TestParseJSONReader(t *testing.T) {

	body := `{
	  "asset": {"version": "2.0", "generator": "unit"},
	  "scenes": [{"name": "main", "nodes": [0]}],
	  "scene": 0,
	  "nodes": [{"name": "root", "children": [1]}, {"name": "child"}],
	  "meshes": [{"primitives": [{"attributes": {"POSITION": 0}, "mode": 4}]}],
	  "materials": [{"name": "mat", "alphaMode": "MASK"}],
	  "cameras": [{"type": "perspective", "perspective": {"yfov": 1.0, "znear": 0.1}}]
	}`
	doc, err := ParseJSONReader(strings.NewReader(body), "")
	assert.NoError(t, err)
	assert.Equal(t, "2.0", doc.Asset.Version)
	assert.Equal(t, 0, *doc.Scene)
	assert.Equal(t, []int{1}, doc.Nodes[0].Children)
	assert.Equal(t, 4, *doc.Meshes[0].Primitives[0].Mode)
	assert.Equal(t, "MASK", doc.Materials[0].AlphaMode)
	assert.Equal(t, "perspective", doc.Cameras[0].Type)
}

func TestRequiredExtensionRejected(t *testing.T) {

	body := `{
	  "asset": {"version": "2.0"},
	  "extensionsRequired": ["KHR_draco_mesh_compression"]
	}`
	_, err := ParseJSONReader(strings.NewReader(body), "")
	assert.Equal(t, daserror.UnsupportedExtension, daserror.KindOf(err))
}

func TestExtensionsPreserved(t *testing.T) {

	body := `{
	  "asset": {"version": "2.0"},
	  "extensions": {"VENDOR_custom": {"answer": 42}}
	}`
	doc, err := ParseJSONReader(strings.NewReader(body), "")
	assert.NoError(t, err)
	assert.Contains(t, doc.Extensions, "VENDOR_custom")
}

// payloadDoc parses a document whose single buffer carries payload as
// a base64 data URI.
func payloadDoc(t *testing.T, body string, payload []byte) *GLTF {

	t.Helper()
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(payload)
	doc, err := ParseJSONReader(strings.NewReader(fmt.Sprintf(body, uri, len(payload))), "")
	assert.NoError(t, err)
	return doc
}

func TestAccessorBytesInterleaved(t *testing.T) {

	// Two vertices interleaved as position (12 bytes) + uv (8 bytes),
	// stride 20.
	var payload []byte
	add := func(vals ...float32) {
		for _, v := range vals {
			payload = binary.LittleEndian.AppendUint32(payload, math.Float32bits(v))
		}
	}
	add(1, 2, 3, 0.5, 0.25)
	add(4, 5, 6, 0.75, 1.0)

	body := `{
	  "asset": {"version": "2.0"},
	  "buffers": [{"uri": "%s", "byteLength": %d}],
	  "bufferViews": [{"buffer": 0, "byteOffset": 0, "byteLength": 40, "byteStride": 20}],
	  "accessors": [
	    {"bufferView": 0, "byteOffset": 0, "componentType": 5126, "count": 2, "type": "VEC3"},
	    {"bufferView": 0, "byteOffset": 12, "componentType": 5126, "count": 2, "type": "VEC2"}
	  ]
	}`
	doc := payloadDoc(t, body, payload)

	pos, err := doc.AccessorF32(0)
	assert.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, pos)

	uv, err := doc.AccessorF32(1)
	assert.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.25, 0.75, 1.0}, uv)
}

func TestAccessorComponentCasts(t *testing.T) {

	payload := []byte{1, 2, 3, 0} // u8 scalars
	body := `{
	  "asset": {"version": "2.0"},
	  "buffers": [{"uri": "%s", "byteLength": %d}],
	  "bufferViews": [{"buffer": 0, "byteOffset": 0, "byteLength": 4}],
	  "accessors": [{"bufferView": 0, "componentType": 5121, "count": 4, "type": "SCALAR"}]
	}`
	doc := payloadDoc(t, body, payload)

	u, err := doc.AccessorU32(0)
	assert.NoError(t, err)
	assert.Equal(t, []uint32{1, 2, 3, 0}, u)

	f, err := doc.AccessorF32(0)
	assert.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 0}, f)
}

func TestAccessorOutOfBounds(t *testing.T) {

	body := `{
	  "asset": {"version": "2.0"},
	  "buffers": [{"uri": "%s", "byteLength": %d}],
	  "bufferViews": [{"buffer": 0, "byteOffset": 0, "byteLength": 4}],
	  "accessors": [{"bufferView": 0, "componentType": 5126, "count": 4, "type": "VEC3"}]
	}`
	doc := payloadDoc(t, body, []byte{0, 0, 0, 0})
	_, err := doc.AccessorBytes(0)
	assert.Equal(t, daserror.InvalidAccessor, daserror.KindOf(err))
}

func TestParseBinReader(t *testing.T) {

	jsonChunk := []byte(`{"asset": {"version": "2.0"}, "buffers": [{"byteLength": 4}]}`)
	for len(jsonChunk)%4 != 0 {
		jsonChunk = append(jsonChunk, ' ')
	}
	binChunk := []byte{9, 8, 7, 6}

	var glb bytes.Buffer
	write := func(v uint32) {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], v)
		glb.Write(b[:])
	}
	write(GLBMagic)
	write(2)
	write(uint32(12 + 8 + len(jsonChunk) + 8 + len(binChunk)))
	write(uint32(len(jsonChunk)))
	write(GLBJson)
	glb.Write(jsonChunk)
	write(uint32(len(binChunk)))
	write(GLBBin)
	glb.Write(binChunk)

	doc, err := ParseBinReader(bytes.NewReader(glb.Bytes()), "")
	assert.NoError(t, err)

	// A buffer with no URI reads from the GLB binary chunk.
	data, err := doc.LoadBuffer(0)
	assert.NoError(t, err)
	assert.Equal(t, binChunk, data)
}

func TestParseBinBadMagic(t *testing.T) {

	_, err := ParseBinReader(bytes.NewReader(make([]byte, 12)), "")
	assert.Equal(t, daserror.InvalidSignature, daserror.KindOf(err))
}
