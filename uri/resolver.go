// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package uri resolves buffer and image URIs referenced by asset
// files. Supported forms are file:// URIs with percent-encoded paths,
// base64 data URIs and plain paths relative to a root directory.
package uri

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/g3n/das/daserror"
	"github.com/g3n/das/texture"
)

// Severity selects how an unresolvable URI is reported.
type Severity int

const (
	// Warning makes Resolve return an empty resource and record a warning.
	Warning Severity = iota
	// Error makes Resolve fail with UnresolvedURI.
	Error
)

const (
	filePrefix = "file://"
	dataPrefix = "data:"
)

// Resource is the result of resolving one URI.
type Resource struct {
	URI      string       // the URI as given
	Data     []byte       // fetched payload
	MimeType string       // MIME recorded from a data URI, if any
	Kind     texture.Kind // image kind inferred from MIME or extension
}

// Resolver fetches bytes for URIs relative to a root path.
type Resolver struct {
	Root     string   // directory that relative paths resolve against
	Severity Severity // severity of unresolvable URIs
	Warnings []string // warning messages accumulated at Warning severity
	dec      *Base64Decoder
}

// NewResolver creates a resolver with the specified root path and
// unresolved-URI severity.
func NewResolver(root string, severity Severity) *Resolver {

	return &Resolver{
		Root:     root,
		Severity: severity,
		dec:      NewBase64Decoder(),
	}
}

// Resolve fetches the bytes identified by the specified URI.
func (res *Resolver) Resolve(uri string) (*Resource, error) {

	switch {
	case strings.HasPrefix(uri, dataPrefix):
		return res.resolveData(uri)
	case strings.HasPrefix(uri, filePrefix):
		path, err := decodePercent(uri[len(filePrefix):])
		if err != nil {
			return nil, err
		}
		return res.resolveFile(uri, path)
	default:
		return res.resolveFile(uri, uri)
	}
}

// resolveFile reads the entire file at path, resolved against the root
// path when relative, into the resource.
func (res *Resolver) resolveFile(uri, path string) (*Resource, error) {

	if !filepath.IsAbs(path) {
		path = filepath.Join(res.Root, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if res.Severity == Warning {
			res.Warnings = append(res.Warnings, "unresolved uri: "+uri)
			return &Resource{URI: uri}, nil
		}
		return nil, daserror.Newf(daserror.UnresolvedURI, "cannot open %q", path)
	}
	return &Resource{
		URI:  uri,
		Data: data,
		Kind: texture.KindFromExt(filepath.Ext(path)),
	}, nil
}

// resolveData decodes a data:<mime>;base64,<payload> URI.
func (res *Resolver) resolveData(uri string) (*Resource, error) {

	body := uri[len(dataPrefix):]
	comma := strings.IndexByte(body, ',')
	if comma < 0 {
		return nil, daserror.New(daserror.MalformedURI, "data uri without payload separator")
	}
	header := body[:comma]
	payload := body[comma+1:]

	mime := header
	encoding := ""
	if semi := strings.IndexByte(header, ';'); semi >= 0 {
		mime = header[:semi]
		encoding = header[semi+1:]
	}
	if encoding != "base64" {
		return nil, daserror.Newf(daserror.MalformedURI, "unsupported data uri encoding %q", encoding)
	}
	data, err := res.dec.Decode(payload)
	if err != nil {
		return nil, err
	}
	return &Resource{
		URI:      uri,
		Data:     data,
		MimeType: mime,
		Kind:     texture.KindFromMime(mime),
	}, nil
}

// decodePercent decodes %XX triples in the specified string.
func decodePercent(s string) (string, error) {

	if !strings.ContainsRune(s, '%') {
		return s, nil
	}
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '%' {
			out = append(out, c)
			continue
		}
		if i+2 >= len(s) {
			return "", daserror.Newf(daserror.MalformedURI, "truncated percent escape in %q", s)
		}
		hi := hexVal(s[i+1])
		lo := hexVal(s[i+2])
		if hi < 0 || lo < 0 {
			return "", daserror.Newf(daserror.MalformedURI, "invalid percent escape %q", s[i:i+3])
		}
		out = append(out, byte(hi<<4|lo))
		i += 2
	}
	return string(out), nil
}

func hexVal(c byte) int {

	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}
