// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uri

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/g3n/das/daserror"
	"github.com/g3n/das/texture"
	"github.com/stretchr/testify/assert"
)

func TestBase64Decode(t *testing.T) {

	dec := NewBase64Decoder()
	tests := []struct {
		in   string
		want []byte
	}{
		{"", []byte{}},
		{"SGVsbG8=", []byte("Hello")},
		{"SGVsbG8h", []byte("Hello!")},
		{"SGVsbG8gd29ybGQ=", []byte("Hello world")},
		{"QQ==", []byte("A")},
		{"SGVs\nbG8=", []byte("Hello")},
		{" S G V s b G 8 = ", []byte("Hello")},
	}
	for _, test := range tests {
		out, err := dec.Decode(test.in)
		assert.NoError(t, err, test.in)
		assert.Equal(t, test.want, out, test.in)
	}
}

func TestBase64DecodeInvalid(t *testing.T) {

	dec := NewBase64Decoder()
	for _, in := range []string{"SGV!bG8=", "S", "SGVsbG8=x"} {
		_, err := dec.Decode(in)
		assert.Error(t, err, in)
		assert.Equal(t, daserror.InvalidBase64, daserror.KindOf(err), in)
	}
}

func TestResolveDataURI(t *testing.T) {

	res := NewResolver("", Error)
	r, err := res.Resolve("data:application/octet-stream;base64,SGVsbG8=")
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x48, 0x65, 0x6C, 0x6C, 0x6F}, r.Data)
	assert.Equal(t, "application/octet-stream", r.MimeType)
	assert.Equal(t, texture.Unknown, r.Kind)
}

func TestResolveDataURIImage(t *testing.T) {

	res := NewResolver("", Error)
	r, err := res.Resolve("data:image/png;base64,SGVsbG8=")
	assert.NoError(t, err)
	assert.Equal(t, texture.PNG, r.Kind)
}

func TestResolveDataURIMalformed(t *testing.T) {

	res := NewResolver("", Error)
	_, err := res.Resolve("data:application/octet-stream;base64")
	assert.Equal(t, daserror.MalformedURI, daserror.KindOf(err))

	_, err = res.Resolve("data:text/plain;base32,XXXX")
	assert.Equal(t, daserror.MalformedURI, daserror.KindOf(err))
}

func TestResolveRelativePath(t *testing.T) {

	dir := t.TempDir()
	path := filepath.Join(dir, "buffer.bin")
	assert.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0644))

	res := NewResolver(dir, Error)
	r, err := res.Resolve("buffer.bin")
	assert.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, r.Data)
}

func TestResolveFileScheme(t *testing.T) {

	dir := t.TempDir()
	path := filepath.Join(dir, "my buffer.bin")
	assert.NoError(t, os.WriteFile(path, []byte{9}, 0644))

	res := NewResolver(dir, Error)
	r, err := res.Resolve("file://my%20buffer.bin")
	assert.NoError(t, err)
	assert.Equal(t, []byte{9}, r.Data)
}

func TestResolveImageExtension(t *testing.T) {

	dir := t.TempDir()
	path := filepath.Join(dir, "tex.png")
	assert.NoError(t, os.WriteFile(path, []byte{0x89}, 0644))

	res := NewResolver(dir, Error)
	r, err := res.Resolve("tex.png")
	assert.NoError(t, err)
	assert.Equal(t, texture.PNG, r.Kind)
}

func TestResolvePercentEscapes(t *testing.T) {

	for _, in := range []string{"file://a%2", "file://a%zzb"} {
		res := NewResolver("", Error)
		_, err := res.Resolve(in)
		assert.Equal(t, daserror.MalformedURI, daserror.KindOf(err), in)
	}
}

func TestResolveUnresolved(t *testing.T) {

	res := NewResolver(t.TempDir(), Error)
	_, err := res.Resolve("missing.bin")
	assert.Equal(t, daserror.UnresolvedURI, daserror.KindOf(err))

	// Warning severity yields an empty resource and records a warning.
	res = NewResolver(t.TempDir(), Warning)
	r, err := res.Resolve("missing.bin")
	assert.NoError(t, err)
	assert.Empty(t, r.Data)
	assert.Len(t, res.Warnings, 1)
}
