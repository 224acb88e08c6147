// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package texture classifies texture payloads by signature, file
// extension or MIME string, and optionally decodes them into raw
// RGBA pixel streams for embedding.
package texture

import (
	"os"
	"strings"

	"github.com/g3n/das/daserror"
)

// Kind identifies the codec of a texture payload.
type Kind int

const (
	Unknown Kind = iota
	JPEG
	PNG
	BMP
	PPM
	TGA
	Raw
)

// String returns the conventional name of the kind.
func (k Kind) String() string {

	switch k {
	case JPEG:
		return "jpeg"
	case PNG:
		return "png"
	case BMP:
		return "bmp"
	case PPM:
		return "ppm"
	case TGA:
		return "tga"
	case Raw:
		return "raw"
	}
	return "unknown"
}

// Probe classifies the specified payload by signature.
// TGA carries no signature and is classified by extension only.
func Probe(data []byte) Kind {

	switch {
	case len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return JPEG
	case len(data) >= 8 && string(data[:8]) == "\x89PNG\r\n\x1a\n":
		return PNG
	case len(data) >= 2 && data[0] == 'B' && data[1] == 'M':
		return BMP
	case len(data) >= 2 && data[0] == 'P' && data[1] >= '1' && data[1] <= '6':
		return PPM
	}
	return Unknown
}

// ProbeFile classifies the texture file at the specified path,
// preferring the payload signature and falling back to the extension.
func ProbeFile(path string) (Kind, error) {

	data, err := os.ReadFile(path)
	if err != nil {
		return Unknown, daserror.Wrap(daserror.InvalidFile, err)
	}
	if kind := Probe(data); kind != Unknown {
		return kind, nil
	}
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return Raw, nil
	}
	if kind := KindFromExt(path[i:]); kind != Unknown {
		return kind, nil
	}
	return Raw, nil
}

// KindFromExt classifies a texture by its file extension.
func KindFromExt(ext string) Kind {

	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "jpg", "jpeg":
		return JPEG
	case "png":
		return PNG
	case "bmp":
		return BMP
	case "ppm":
		return PPM
	case "tga":
		return TGA
	}
	return Unknown
}

// KindFromMime classifies a texture by its MIME string.
func KindFromMime(mime string) Kind {

	switch mime {
	case "image/jpeg":
		return JPEG
	case "image/png":
		return PNG
	case "image/bmp":
		return BMP
	case "image/x-targa", "image/x-tga":
		return TGA
	}
	return Unknown
}
