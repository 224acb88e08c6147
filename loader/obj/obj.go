// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package obj parses Wavefront OBJ files into an intermediate model
// suitable for lowering into a DAS container. Curve and surface
// statements are validated but contribute no geometry.
package obj

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/g3n/das/ascii"
	"github.com/g3n/das/daserror"
	"github.com/g3n/das/math32"
)

// InvalidIndex marks an absent UV or normal reference in a face.
const InvalidIndex = uint32(0xFFFFFFFF)

// Index is one vertex reference of a face, 0-based after parsing.
type Index struct {
	Position uint32
	UV       uint32
	Normal   uint32
}

// Face is one polygonal face.
type Face struct {
	Indices []Index
}

// Group is a named g/o grouping of faces and point primitives.
type Group struct {
	Name   string
	Faces  []Face
	Points []uint32
}

// Decoder contains all data decoded from an OBJ file. Positions keep
// their w coordinate, defaulting to 1; UVs and parameter-space
// vertices keep their optional second and third coordinates,
// defaulting to 0.
type Decoder struct {
	Groups    []Group
	Positions []math32.Vector4
	UVs       []math32.Vector3
	Normals   []math32.Vector3
	Params    []math32.Vector3
	Warnings  []string

	name    string
	current *Group
}

// Decode parses the OBJ file at the specified path.
func Decode(path string) (*Decoder, error) {

	f, err := os.Open(path)
	if err != nil {
		return nil, daserror.Wrap(daserror.InvalidFile, err)
	}
	defer f.Close()
	return DecodeReader(f, path)
}

// DecodeReader parses OBJ data from the specified reader.
// The name is used in error and warning context.
func DecodeReader(r io.Reader, name string) (*Decoder, error) {

	dec := new(Decoder)
	dec.name = name

	ar := ascii.NewReader(r, 0, "\n")
	ar.SetFileName(name)
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
		if len(args) == 0 || strings.HasPrefix(args[0], "#") {
			continue
		}
		if !ar.LineTerminated() {
			return nil, dec.errLine(daserror.IncompleteNewline, args[0], ar.Line())
		}
		if err := dec.parseStatement(args[0], args[1:], ar.Line()); err != nil {
			return nil, err
		}
	}
	return dec, nil
}

// statements parsed for geometry; all remaining known statements are
// accepted and reported as unused.
func (dec *Decoder) parseStatement(keyword string, args []string, line int) error {

	switch keyword {
	case "v":
		return dec.parseVertex(args, line)
	case "vt":
		return dec.parseUV(args, line)
	case "vn":
		return dec.parseNormal(args, line)
	case "vp":
		return dec.parseParam(args, line)
	case "f":
		return dec.parseFace(args, line)
	case "p":
		return dec.parsePoints(args, line)
	case "g", "o":
		return dec.parseGroup(keyword, args, line)
	case "cstype":
		return dec.parseCSType(args, line)
	case "s", "mtllib", "usemtl", "mg", "deg", "bmat", "step", "curv", "curv2",
		"surf", "parm", "trim", "hole", "scrv", "sp", "end", "con", "l",
		"lod", "shadow_obj", "trace_obj", "ctech", "stech":
		dec.warnf(line, "unused statement %q", keyword)
		return nil
	}
	return dec.errLine(daserror.InvalidKeyword, keyword, line)
}

// parseVertex parses "v x y z [w]", always storing w with default 1.
func (dec *Decoder) parseVertex(args []string, line int) error {

	if len(args) < 3 {
		return dec.errLine(daserror.NotEnoughAttributes, "v", line)
	}
	if len(args) > 4 {
		return dec.errLine(daserror.TooManyAttributes, "v", line)
	}
	vals, err := dec.parseFloats(args, line)
	if err != nil {
		return err
	}
	w := float32(1)
	if len(vals) == 4 {
		w = vals[3]
	}
	dec.Positions = append(dec.Positions, *math32.NewVector4(vals[0], vals[1], vals[2], w))
	return nil
}

// parseUV parses "vt u [v [w]]" with v and w defaulting to 0.
func (dec *Decoder) parseUV(args []string, line int) error {

	if len(args) < 1 {
		return dec.errLine(daserror.NotEnoughAttributes, "vt", line)
	}
	if len(args) > 3 {
		return dec.errLine(daserror.TooManyAttributes, "vt", line)
	}
	vals, err := dec.parseFloats(args, line)
	if err != nil {
		return err
	}
	var uvw [3]float32
	copy(uvw[:], vals)
	dec.UVs = append(dec.UVs, *math32.NewVector3(uvw[0], uvw[1], uvw[2]))
	return nil
}

// parseNormal parses "vn x y z".
func (dec *Decoder) parseNormal(args []string, line int) error {

	if len(args) < 3 {
		return dec.errLine(daserror.NotEnoughAttributes, "vn", line)
	}
	if len(args) > 3 {
		return dec.errLine(daserror.TooManyAttributes, "vn", line)
	}
	vals, err := dec.parseFloats(args, line)
	if err != nil {
		return err
	}
	dec.Normals = append(dec.Normals, *math32.NewVector3(vals[0], vals[1], vals[2]))
	return nil
}

// parseParam parses "vp u [v [w]]".
func (dec *Decoder) parseParam(args []string, line int) error {

	if len(args) < 1 {
		return dec.errLine(daserror.NotEnoughAttributes, "vp", line)
	}
	if len(args) > 3 {
		return dec.errLine(daserror.TooManyAttributes, "vp", line)
	}
	vals, err := dec.parseFloats(args, line)
	if err != nil {
		return err
	}
	var uvw [3]float32
	copy(uvw[:], vals)
	dec.Params = append(dec.Params, *math32.NewVector3(uvw[0], uvw[1], uvw[2]))
	return nil
}

// parseFace parses "f i/j/k ..." where each block is one of
// p, p/t, p//n or p/t/n with 1-based source indices.
func (dec *Decoder) parseFace(args []string, line int) error {

	if len(args) < 3 {
		return dec.errLine(daserror.NotEnoughAttributes, "f", line)
	}
	face := Face{Indices: make([]Index, 0, len(args))}
	for _, block := range args {
		idx, err := dec.parseIndexBlock(block, line)
		if err != nil {
			return err
		}
		face.Indices = append(face.Indices, idx)
	}
	g := dec.group()
	g.Faces = append(g.Faces, face)
	return nil
}

// parseIndexBlock parses one face index block, converting the 1-based
// source indices to 0-based and validating each against the elements
// seen so far.
func (dec *Decoder) parseIndexBlock(block string, line int) (Index, error) {

	idx := Index{UV: InvalidIndex, Normal: InvalidIndex}
	for i := 0; i < len(block); i++ {
		c := block[i]
		if (c < '0' || c > '9') && c != '/' && c != '-' {
			return idx, dec.errLine(daserror.InvalidSymbol, block, line)
		}
	}
	parts := strings.Split(block, "/")
	if len(parts) > 3 {
		return idx, dec.errLine(daserror.TooManyAttributes, block, line)
	}
	pos, err := dec.parseIndex(parts[0], len(dec.Positions), line)
	if err != nil {
		return idx, err
	}
	idx.Position = pos
	if len(parts) > 1 && parts[1] != "" {
		uv, err := dec.parseIndex(parts[1], len(dec.UVs), line)
		if err != nil {
			return idx, err
		}
		idx.UV = uv
	}
	if len(parts) > 2 && parts[2] != "" {
		n, err := dec.parseIndex(parts[2], len(dec.Normals), line)
		if err != nil {
			return idx, err
		}
		idx.Normal = n
	}
	return idx, nil
}

// parsePoints parses "p i ..." point primitives.
func (dec *Decoder) parsePoints(args []string, line int) error {

	if len(args) < 1 {
		return dec.errLine(daserror.NotEnoughAttributes, "p", line)
	}
	g := dec.group()
	for _, arg := range args {
		pos, err := dec.parseIndex(arg, len(dec.Positions), line)
		if err != nil {
			return err
		}
		g.Points = append(g.Points, pos)
	}
	return nil
}

// parseGroup starts a new named group or object. Multi-word names are
// joined with a single space.
func (dec *Decoder) parseGroup(keyword string, args []string, line int) error {

	if len(args) == 0 {
		return dec.errLine(daserror.MissingIdentifier, keyword, line)
	}
	if keyword == "o" && dec.hasNamedGroup() {
		dec.warnf(line, "multiple objects in one file")
	}
	dec.Groups = append(dec.Groups, Group{Name: strings.Join(args, " ")})
	dec.current = &dec.Groups[len(dec.Groups)-1]
	return nil
}

// parseCSType validates a curve/surface type statement. The geometry
// that follows contributes nothing to the model.
func (dec *Decoder) parseCSType(args []string, line int) error {

	if len(args) == 0 {
		return dec.errLine(daserror.NotEnoughAttributes, "cstype", line)
	}
	t := args[len(args)-1]
	switch t {
	case "bmatrix", "bezier", "bspline", "cardinal", "taylor":
		dec.warnf(line, "unused statement %q", "cstype "+t)
		return nil
	}
	return dec.errLine(daserror.InvalidCSType, t, line)
}

// group returns the current group, creating the default one on first use.
func (dec *Decoder) group() *Group {

	if dec.current == nil {
		dec.Groups = append(dec.Groups, Group{})
		dec.current = &dec.Groups[len(dec.Groups)-1]
	}
	return dec.current
}

func (dec *Decoder) hasNamedGroup() bool {

	for i := range dec.Groups {
		if dec.Groups[i].Name != "" {
			return true
		}
	}
	return false
}

func (dec *Decoder) parseFloats(args []string, line int) ([]float32, error) {

	out := make([]float32, len(args))
	for i, arg := range args {
		v, err := strconv.ParseFloat(arg, 32)
		if err != nil {
			return nil, dec.errLine(daserror.InvalidArgument, arg, line)
		}
		out[i] = float32(v)
	}
	return out, nil
}

// parseIndex converts a 1-based source index to 0-based, validating it
// against the count of previously seen elements of its kind.
func (dec *Decoder) parseIndex(arg string, seen int, line int) (uint32, error) {

	v, err := strconv.ParseInt(arg, 10, 32)
	if err != nil {
		return 0, dec.errLine(daserror.InvalidArgument, arg, line)
	}
	if v < 0 {
		// Negative indices are relative to the end of the current list.
		v = int64(seen) + v + 1
	}
	if v < 1 || int(v) > seen {
		return 0, dec.errLine(daserror.InvalidArgument, arg, line)
	}
	return uint32(v - 1), nil
}

func (dec *Decoder) errLine(kind daserror.Kind, msg string, line int) error {

	return daserror.New(kind, msg).AtLine(dec.name, line)
}

func (dec *Decoder) warnf(line int, format string, args ...interface{}) {

	dec.Warnings = append(dec.Warnings,
		fmt.Sprintf("%s:%d: %s", dec.name, line, fmt.Sprintf(format, args...)))
}
