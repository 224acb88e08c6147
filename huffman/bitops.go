// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package huffman

// ShiftToMSB shifts the bit pattern of the big-endian byte array
// toward its most significant end, spilling bits across byte
// boundaries. Shifts of 8 or more move whole bytes first.
func ShiftToMSB(b []byte, shift uint) {

	if shift == 0 || len(b) == 0 {
		return
	}
	byteShift := int(shift / 8)
	bitShift := shift % 8
	if byteShift > 0 {
		for i := 0; i < len(b); i++ {
			if i+byteShift < len(b) {
				b[i] = b[i+byteShift]
			} else {
				b[i] = 0
			}
		}
	}
	if bitShift > 0 {
		for i := 0; i < len(b); i++ {
			b[i] <<= bitShift
			if i+1 < len(b) {
				b[i] |= b[i+1] >> (8 - bitShift)
			}
		}
	}
}

// ShiftToLSB shifts the bit pattern of the big-endian byte array
// toward its least significant end, spilling bits across byte
// boundaries. Shifts of 8 or more move whole bytes first.
func ShiftToLSB(b []byte, shift uint) {

	if shift == 0 || len(b) == 0 {
		return
	}
	byteShift := int(shift / 8)
	bitShift := shift % 8
	if byteShift > 0 {
		for i := len(b) - 1; i >= 0; i-- {
			if i-byteShift >= 0 {
				b[i] = b[i-byteShift]
			} else {
				b[i] = 0
			}
		}
	}
	if bitShift > 0 {
		for i := len(b) - 1; i >= 0; i-- {
			b[i] >>= bitShift
			if i-1 >= 0 {
				b[i] |= b[i-1] << (8 - bitShift)
			}
		}
	}
}
