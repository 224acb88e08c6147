// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package compiler lowers parsed OBJ, STL and glTF intermediates into
// DAS models: it re-packs source geometry into tightly packed
// per-attribute buffer streams, generates unified 32-bit index
// streams, and translates scene, skeleton and animation structures
// into the id spaces of the container.
package compiler

import (
	"encoding/binary"
	"math"

	"github.com/g3n/das/util/logger"
)

var log = logger.New("COMPILER", logger.Default)

// bufferAlignment pads every packed buffer region so readers can rely
// on 16-byte alignment of attribute streams.
const bufferAlignment = 16

func appendU32(dst []byte, vals ...uint32) []byte {

	for _, v := range vals {
		dst = binary.LittleEndian.AppendUint32(dst, v)
	}
	return dst
}

func appendU16(dst []byte, vals ...uint16) []byte {

	for _, v := range vals {
		dst = binary.LittleEndian.AppendUint16(dst, v)
	}
	return dst
}

func appendF32(dst []byte, vals ...float32) []byte {

	for _, v := range vals {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst
}

// pad16 pads the stream to the buffer alignment boundary.
func pad16(dst []byte) []byte {

	for len(dst)%bufferAlignment != 0 {
		dst = append(dst, 0)
	}
	return dst
}
