// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stl parses stereolithography files, both the ASCII keyword
// form and the 50-byte-record binary form.
package stl

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/g3n/das/ascii"
	"github.com/g3n/das/daserror"
	"github.com/g3n/das/math32"
)

// Facet is one triangle with its normal.
type Facet struct {
	Normal   math32.Vector3
	Vertices [3]math32.Vector3
}

// Solid is one named STL object.
type Solid struct {
	Name   string
	Facets []Facet
}

// binary layout constants
const (
	binHeaderSize = 80
	binFacetSize  = 50
)

// Decode parses the STL file at the specified path, sniffing the
// ASCII form by its leading "solid" keyword.
func Decode(path string) ([]Solid, error) {

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, daserror.Wrap(daserror.InvalidFile, err)
	}
	if isASCII(data) {
		return DecodeASCII(bytes.NewReader(data), path)
	}
	return DecodeBinary(data, path)
}

// isASCII reports whether the payload looks like ASCII STL: it must
// both start with the solid keyword and mention a facet, since binary
// headers are free to start with "solid" too.
func isASCII(data []byte) bool {

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	return bytes.HasPrefix(bytes.TrimLeft(head, " \t\r\n"), []byte("solid")) &&
		bytes.Contains(head, []byte("facet"))
}

// ascii parser states
const (
	stateSolid = iota
	stateFacet
	stateLoop
	stateVertex
	stateEndFacet
)

// DecodeASCII parses ASCII STL data from the specified reader.
func DecodeASCII(r io.Reader, name string) ([]Solid, error) {

	ar := ascii.NewReader(r, 0, "\n")
	ar.SetFileName(name)

	var solids []Solid
	var cur *Solid
	var facet Facet
	nvertex := 0
	state := stateSolid

	fail := func(kind daserror.Kind, msg string) error {
		return daserror.New(kind, msg).AtLine(name, ar.Line())
	}

	for {
		ok, err := ar.NextLineChunked()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		args, err := ar.ReadStatementArgs()
		if err != nil {
			return nil, err
		}
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "solid":
			if state != stateSolid {
				return nil, fail(daserror.InvalidKeyword, "nested solid")
			}
			solids = append(solids, Solid{Name: strings.Join(args[1:], " ")})
			cur = &solids[len(solids)-1]
			state = stateFacet
		case "facet":
			if state != stateFacet || len(args) < 2 || args[1] != "normal" {
				return nil, fail(daserror.InvalidKeyword, "facet")
			}
			n, err := parseVec3(args[2:], name, ar.Line())
			if err != nil {
				return nil, err
			}
			facet = Facet{Normal: n}
			nvertex = 0
			state = stateLoop
		case "outer":
			if state != stateLoop || len(args) != 2 || args[1] != "loop" {
				return nil, fail(daserror.InvalidKeyword, "outer loop")
			}
			state = stateVertex
		case "vertex":
			if state != stateVertex {
				return nil, fail(daserror.InvalidKeyword, "vertex")
			}
			if nvertex == 3 {
				return nil, fail(daserror.TooManyAttributes, "more than three vertices in facet")
			}
			v, err := parseVec3(args[1:], name, ar.Line())
			if err != nil {
				return nil, err
			}
			facet.Vertices[nvertex] = v
			nvertex++
		case "endloop":
			if state != stateVertex {
				return nil, fail(daserror.InvalidKeyword, "endloop")
			}
			if nvertex < 3 {
				return nil, fail(daserror.NotEnoughAttributes, "fewer than three vertices in facet")
			}
			state = stateEndFacet
		case "endfacet":
			if state != stateEndFacet {
				return nil, fail(daserror.InvalidKeyword, "endfacet")
			}
			cur.Facets = append(cur.Facets, facet)
			state = stateFacet
		case "endsolid":
			if state != stateFacet || cur == nil {
				return nil, fail(daserror.InvalidKeyword, "endsolid")
			}
			if endName := strings.Join(args[1:], " "); endName != cur.Name {
				return nil, fail(daserror.InvalidArgument, "endsolid name does not match solid")
			}
			cur = nil
			state = stateSolid
		default:
			return nil, fail(daserror.InvalidKeyword, args[0])
		}
	}
	if state != stateSolid {
		return nil, daserror.New(daserror.IncompleteScope, "input ended inside solid").AtLine(name, ar.Line())
	}
	return solids, nil
}

// DecodeBinary parses binary STL data. The payload length must equal
// 80 + 4 + 50 x facet_count exactly.
func DecodeBinary(data []byte, name string) ([]Solid, error) {

	if len(data) < binHeaderSize+4 {
		return nil, daserror.New(daserror.InvalidDataLength, "file shorter than binary header").AtOffset(name, 0)
	}
	count := binary.LittleEndian.Uint32(data[binHeaderSize:])
	want := binHeaderSize + 4 + binFacetSize*int(count)
	if len(data) != want {
		return nil, daserror.Newf(daserror.InvalidDataLength,
			"file length %d, want %d for %d facets", len(data), want, count).AtOffset(name, 0)
	}

	solid := Solid{
		Name:   strings.TrimRight(string(bytes.TrimRight(data[:binHeaderSize], "\x00")), " "),
		Facets: make([]Facet, count),
	}
	p := binHeaderSize + 4
	for i := uint32(0); i < count; i++ {
		rec := data[p : p+binFacetSize]
		solid.Facets[i].Normal = readVec3(rec[0:])
		solid.Facets[i].Vertices[0] = readVec3(rec[12:])
		solid.Facets[i].Vertices[1] = readVec3(rec[24:])
		solid.Facets[i].Vertices[2] = readVec3(rec[36:])
		// trailing attribute byte count is ignored
		p += binFacetSize
	}
	return []Solid{solid}, nil
}

func readVec3(b []byte) math32.Vector3 {

	return math32.Vector3{
		X: math.Float32frombits(binary.LittleEndian.Uint32(b[0:])),
		Y: math.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
		Z: math.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
	}
}

func parseVec3(args []string, name string, line int) (math32.Vector3, error) {

	var v math32.Vector3
	if len(args) < 3 {
		return v, daserror.New(daserror.NotEnoughAttributes, "expected three coordinates").AtLine(name, line)
	}
	if len(args) > 3 {
		return v, daserror.New(daserror.TooManyAttributes, "expected three coordinates").AtLine(name, line)
	}
	var out [3]float32
	for i, arg := range args {
		f, err := strconv.ParseFloat(arg, 32)
		if err != nil {
			return v, daserror.New(daserror.InvalidArgument, arg).AtLine(name, line)
		}
		out[i] = float32(f)
	}
	return math32.Vector3{X: out[0], Y: out[1], Z: out[2]}, nil
}
