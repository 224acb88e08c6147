// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uri

import (
	"github.com/g3n/das/daserror"
)

const base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// Base64Decoder decodes RFC 4648 base64 text fragments into bytes
// using a 256-entry reverse lookup table built on construction.
type Base64Decoder struct {
	table [256]int8
}

// NewBase64Decoder creates and returns a new base64 decoder.
func NewBase64Decoder() *Base64Decoder {

	dec := new(Base64Decoder)
	for i := range dec.table {
		dec.table[i] = -1
	}
	for i := 0; i < len(base64Alphabet); i++ {
		dec.table[base64Alphabet[i]] = int8(i)
	}
	return dec
}

// Decode decodes the specified base64 text into bytes. Whitespace in
// the input is skipped; any other non-alphabet, non-padding character
// fails with InvalidBase64.
func (dec *Base64Decoder) Decode(data string) ([]byte, error) {

	out := make([]byte, 0, len(data)/4*3)
	var quad [4]byte
	nquad := 0
	npad := 0
	for i := 0; i < len(data); i++ {
		c := data[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			continue
		case c == '=':
			npad++
			continue
		case npad > 0:
			return nil, daserror.Newf(daserror.InvalidBase64, "data after padding at position %d", i)
		case dec.table[c] < 0:
			return nil, daserror.Newf(daserror.InvalidBase64, "invalid character %q at position %d", c, i)
		}
		quad[nquad] = byte(dec.table[c])
		nquad++
		if nquad == 4 {
			out = append(out,
				quad[0]<<2|quad[1]>>4,
				quad[1]<<4|quad[2]>>2,
				quad[2]<<6|quad[3])
			nquad = 0
		}
	}
	switch nquad {
	case 0:
	case 2:
		out = append(out, quad[0]<<2|quad[1]>>4)
	case 3:
		out = append(out, quad[0]<<2|quad[1]>>4, quad[1]<<4|quad[2]>>2)
	default:
		return nil, daserror.New(daserror.InvalidBase64, "truncated base64 quantum")
	}
	return out, nil
}
