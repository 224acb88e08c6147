// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package texture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProbeSignatures(t *testing.T) {

	tests := []struct {
		data []byte
		want Kind
	}{
		{[]byte{0xFF, 0xD8, 0xFF, 0xE0}, JPEG},
		{[]byte("\x89PNG\r\n\x1a\nrest"), PNG},
		{[]byte("BM....."), BMP},
		{[]byte("P6 2 2 255"), PPM},
		{[]byte("P3 1 1 255"), PPM},
		{[]byte{0x00, 0x01, 0x02}, Unknown},
		{nil, Unknown},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, Probe(test.data))
	}
}

func TestKindFromExt(t *testing.T) {

	assert.Equal(t, JPEG, KindFromExt(".jpg"))
	assert.Equal(t, JPEG, KindFromExt(".JPEG"))
	assert.Equal(t, TGA, KindFromExt(".tga"))
	assert.Equal(t, PNG, KindFromExt("png"))
	assert.Equal(t, Unknown, KindFromExt(".exr"))
}

func TestKindFromMime(t *testing.T) {

	assert.Equal(t, JPEG, KindFromMime("image/jpeg"))
	assert.Equal(t, PNG, KindFromMime("image/png"))
	assert.Equal(t, Unknown, KindFromMime("application/octet-stream"))
}

func TestProbeFileTGAByExtension(t *testing.T) {

	dir := t.TempDir()
	path := filepath.Join(dir, "skin.tga")
	// TGA has no signature; only the extension classifies it.
	assert.NoError(t, os.WriteFile(path, make([]byte, 32), 0644))
	kind, err := ProbeFile(path)
	assert.NoError(t, err)
	assert.Equal(t, TGA, kind)
}

func TestDecodeRawPNG(t *testing.T) {

	img := image.NewRGBA(image.Rect(0, 0, 2, 3))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	assert.NoError(t, png.Encode(&buf, img))

	raw, err := DecodeRaw(buf.Bytes())
	assert.NoError(t, err)
	assert.Equal(t, uint32(2), raw.Width)
	assert.Equal(t, uint32(3), raw.Height)
	assert.Equal(t, uint8(8), raw.BitDepth)
	assert.Equal(t, 2*3*4, len(raw.Pixels))
	assert.Equal(t, uint8(0xFF), raw.Pixels[0])
}

func TestDecodeRawInvalid(t *testing.T) {

	_, err := DecodeRaw([]byte("not an image"))
	assert.Error(t, err)
}
