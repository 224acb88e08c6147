// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package texture

import (
	"bytes"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"

	"github.com/g3n/das/daserror"
	_ "golang.org/x/image/bmp"
)

// RawImage is a decoded texture as a tightly packed RGBA pixel stream.
type RawImage struct {
	Width    uint32
	Height   uint32
	BitDepth uint8 // bits per channel
	Pixels   []byte
}

// DecodeRaw decodes a PNG, JPEG or BMP payload into a raw RGBA image.
func DecodeRaw(data []byte) (*RawImage, error) {

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, daserror.Wrap(daserror.InvalidFile, err)
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	if rgba.Stride != bounds.Dx()*4 {
		return nil, daserror.New(daserror.InvalidFile, "unsupported image stride")
	}
	return &RawImage{
		Width:    uint32(bounds.Dx()),
		Height:   uint32(bounds.Dy()),
		BitDepth: 8,
		Pixels:   rgba.Pix,
	}, nil
}
