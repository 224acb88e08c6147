// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// dastool converts third-party mesh interchange formats (Wavefront
// OBJ, STL, glTF/GLB) into DAS asset containers and inspects existing
// containers.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v2"

	"github.com/g3n/das/compiler"
	"github.com/g3n/das/das"
	"github.com/g3n/das/daserror"
	"github.com/g3n/das/loader/gltf"
	"github.com/g3n/das/loader/obj"
	"github.com/g3n/das/loader/stl"
	"github.com/g3n/das/util/logger"
)

var log = logger.New("DASTOOL", logger.Default)

// manifest is the optional YAML conversion configuration supplying
// default properties and options.
type manifest struct {
	Model       string `yaml:"model"`
	Author      string `yaml:"author"`
	Copyright   string `yaml:"copyright"`
	Compress    bool   `yaml:"compress"`
	RawTextures bool   `yaml:"raw_textures"`
}

func main() {

	app := &cli.App{
		Name:  "dastool",
		Usage: "convert 3D assets to DAS containers and inspect them",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
		},
		Before: func(ctx *cli.Context) error {
			if ctx.Bool("debug") {
				logger.Default.SetLevel(logger.DEBUG)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "convert",
				Usage:     "convert OBJ, STL or glTF inputs to DAS",
				ArgsUsage: "<input>...",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output file (single input only)"},
					&cli.StringFlag{Name: "model", Usage: "model name property"},
					&cli.StringFlag{Name: "author", Usage: "author property"},
					&cli.StringFlag{Name: "copyright", Usage: "copyright property"},
					&cli.BoolFlag{Name: "compress", Aliases: []string{"c"}, Usage: "Huffman-encode the payload"},
					&cli.BoolFlag{Name: "no-curves", Usage: "silently skip OBJ curve and surface statements"},
					&cli.BoolFlag{Name: "raw-textures", Usage: "embed decoded RGBA pixels instead of encoded images"},
					&cli.StringFlag{Name: "manifest", Aliases: []string{"m"}, Usage: "YAML conversion manifest"},
				},
				Action: runConvert,
			},
			{
				Name:      "list",
				Usage:     "print the properties and contents of a DAS file",
				ArgsUsage: "<input>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "list meshes, skeletons and animations"},
				},
				Action: runList,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if kind := daserror.KindOf(err); kind != 0 {
			os.Exit(int(kind))
		}
		os.Exit(1)
	}
}

func runConvert(ctx *cli.Context) error {

	if ctx.NArg() == 0 {
		return cli.Exit("convert: no input files", 1)
	}
	inputs := ctx.Args().Slice()
	if ctx.String("output") != "" && len(inputs) > 1 {
		return cli.Exit("convert: -o is only valid with a single input", 1)
	}

	var mf manifest
	if path := ctx.String("manifest"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return daserror.Wrap(daserror.InvalidFile, err)
		}
		if err := yaml.Unmarshal(data, &mf); err != nil {
			return daserror.Wrap(daserror.InvalidFile, err)
		}
	}

	props := das.Properties{
		Model:       firstOf(ctx.String("model"), mf.Model),
		Author:      firstOf(ctx.String("author"), mf.Author),
		Copyright:   firstOf(ctx.String("copyright"), mf.Copyright),
		Compression: ctx.Bool("compress") || mf.Compress,
	}
	opts := compiler.GLTFOptions{
		RawTextures: ctx.Bool("raw-textures") || mf.RawTextures,
	}

	// Every input gets its own engine; files convert in parallel.
	var group errgroup.Group
	for _, in := range inputs {
		in := in
		out := ctx.String("output")
		if out == "" {
			out = strings.TrimSuffix(in, filepath.Ext(in)) + ".das"
		}
		group.Go(func() error {
			return convertFile(in, out, props, opts, ctx.Bool("no-curves"))
		})
	}
	return group.Wait()
}

// convertFile parses one input by extension, lowers it and writes the
// DAS container.
func convertFile(in, out string, props das.Properties, opts compiler.GLTFOptions, noCurves bool) error {

	if props.Model == "" {
		props.Model = strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
	}

	var model *das.Model
	var err error
	switch strings.ToLower(filepath.Ext(in)) {
	case ".obj":
		var dec *obj.Decoder
		dec, err = obj.Decode(in)
		if err != nil {
			break
		}
		if !noCurves {
			for _, w := range dec.Warnings {
				log.Warn("%s", w)
			}
		}
		model, err = compiler.CompileOBJ(dec, props)
	case ".stl":
		var solids []stl.Solid
		solids, err = stl.Decode(in)
		if err != nil {
			break
		}
		model, err = compiler.CompileSTL(solids, props)
	case ".gltf":
		var doc *gltf.GLTF
		doc, err = gltf.ParseJSON(in)
		if err != nil {
			break
		}
		model, err = compiler.CompileGLTF(doc, props, &opts)
	case ".glb":
		var doc *gltf.GLTF
		doc, err = gltf.ParseBin(in)
		if err != nil {
			break
		}
		model, err = compiler.CompileGLTF(doc, props, &opts)
	default:
		err = daserror.Newf(daserror.InvalidFile, "unsupported input format %q", filepath.Ext(in))
	}
	if err != nil {
		return err
	}

	w, err := das.CreateFile(out)
	if err != nil {
		return err
	}
	if err := w.WriteModel(model); err != nil {
		return err
	}
	log.Info("wrote %s", out)
	return nil
}

func runList(ctx *cli.Context) error {

	if ctx.NArg() != 1 {
		return cli.Exit("list: expected one input file", 1)
	}
	model, err := das.ReadFile(ctx.Args().First())
	if err != nil {
		return err
	}

	p := &model.Props
	fmt.Printf("model:         %s\n", p.Model)
	fmt.Printf("author:        %s\n", p.Author)
	fmt.Printf("copyright:     %s\n", p.Copyright)
	fmt.Printf("moddate:       %d\n", p.ModDate)
	fmt.Printf("compression:   %v\n", p.Compression)
	fmt.Printf("default scene: %d\n", p.DefaultScene)
	fmt.Printf("buffers:       %d\n", len(model.Buffers))
	fmt.Printf("meshes:        %d\n", len(model.Meshes))
	fmt.Printf("scenes:        %d\n", len(model.Scenes))

	if !ctx.Bool("verbose") {
		return nil
	}

	if len(model.Meshes) > 0 {
		fmt.Println("\nmeshes:")
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"id", "name", "primitives", "indices"})
		for i, m := range model.Meshes {
			indices := uint32(0)
			for _, pi := range m.Primitives {
				indices += model.MeshPrimitives[pi].IndicesCount
			}
			table.Append([]string{
				fmt.Sprint(i), m.Name, fmt.Sprint(len(m.Primitives)), fmt.Sprint(indices),
			})
		}
		table.Render()
	}

	if len(model.Skeletons) > 0 {
		fmt.Println("\nskeletons:")
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"id", "name", "joints"})
		for i, s := range model.Skeletons {
			table.Append([]string{fmt.Sprint(i), s.Name, fmt.Sprint(len(s.Joints))})
		}
		table.Render()
	}

	if len(model.Animations) > 0 {
		fmt.Println("\nanimations:")
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"id", "name", "channels", "keyframes"})
		for i, a := range model.Animations {
			keyframes := uint32(0)
			for _, ci := range a.Channels {
				keyframes += model.Channels[ci].KeyframeCount
			}
			table.Append([]string{
				fmt.Sprint(i), a.Name, fmt.Sprint(len(a.Channels)), fmt.Sprint(keyframes),
			})
		}
		table.Render()
	}
	return nil
}

func firstOf(vals ...string) string {

	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
