// objinfo is a CLI utility for inspecting OBJ models and MTL libraries
// without opening a window.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/Faultbox/objscene/internal/engine/material"
	"github.com/Faultbox/objscene/internal/engine/renderer"
	"github.com/Faultbox/objscene/internal/engine/scene"
	"github.com/Faultbox/objscene/internal/engine/texture"
	"github.com/Faultbox/objscene/internal/logger"
	"github.com/Faultbox/objscene/pkg/formats"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "census", "count":
		cmdCensus(args)
	case "parse", "load":
		cmdParse(args)
	case "mtl":
		cmdMTL(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`objinfo - OBJ/MTL inspection utility

Usage:
  objinfo <command> [options]

Commands:
  census <file.obj>                  Count vertex, normal, texcoord and face records
  parse [-mipmap] [-v] <file.obj>    Load a model with its materials and textures
  mtl <file.mtl>                     List the materials of a library

Examples:
  objinfo census house.obj
  objinfo parse -mipmap house.obj
  objinfo mtl house.mtl`)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func cmdCensus(args []string) {
	if len(args) < 1 {
		fail("Usage: objinfo census <file.obj>")
	}

	f, err := os.Open(args[0])
	if err != nil {
		fail("Error: %v", err)
	}
	defer f.Close()

	c, err := formats.CountOBJ(f)
	if err != nil {
		fail("Error: %v", err)
	}

	fmt.Printf("Model:     %s\n", args[0])
	fmt.Printf("Vertices:  %d\n", c.Vertices)
	fmt.Printf("Normals:   %d\n", c.Normals)
	fmt.Printf("TexCoords: %d\n", c.TexCoords)
	fmt.Printf("Faces:     %d\n", c.Faces)
}

func cmdParse(args []string) {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	mipmap := fs.Bool("mipmap", false, "Build mip chains for textures")
	verbose := fs.Bool("v", false, "Log loader warnings and debug output")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fail("Usage: objinfo parse [-mipmap] [-v] <file.obj>")
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	if err := logger.Init(level, ""); err != nil {
		fail("Logger error: %v", err)
	}
	defer logger.Sync()

	backend := &renderer.HeadlessBackend{}
	s := scene.New(backend, texture.FileDecoder{})
	mesh, stats, err := s.LoadObjectStats(fs.Arg(0), *mipmap)
	if err != nil {
		fail("Error: %v", err)
	}

	fmt.Printf("Model:     %s\n", fs.Arg(0))
	fmt.Printf("Records:   %s\n", stats.Census)
	fmt.Printf("Normals:   per-vertex=%t\n", mesh.HasPerVertexNormals)
	fmt.Printf("Bounds:    min %v max %v\n", stats.Bounds.Min.Array(), stats.Bounds.Max.Array())
	fmt.Printf("Center:    %v\n", stats.Bounds.Center().Array())
	fmt.Printf("Size:      %v\n", stats.Bounds.Size().Array())
	fmt.Printf("Warnings:  %d (%d faces skipped)\n", stats.Warnings, stats.SkippedFaces)

	// Polygon sizes
	sides := make(map[int]int)
	for _, face := range mesh.Faces {
		sides[len(face.Vertices)]++
	}
	keys := make([]int, 0, len(sides))
	for n := range sides {
		keys = append(keys, n)
	}
	sort.Ints(keys)
	fmt.Println()
	fmt.Println("Faces by vertex count:")
	for _, n := range keys {
		fmt.Printf("  %-3d %d\n", n, sides[n])
	}

	if mats := s.Materials(); len(mats) > 0 {
		fmt.Println()
		fmt.Printf("Materials (%d):\n", len(mats))
		for _, m := range mats {
			fmt.Printf("  %s\n", m.Name)
		}
	}
	if texs := s.Textures(); len(texs) > 0 {
		fmt.Println()
		fmt.Printf("Textures (%d):\n", len(texs))
		for _, t := range texs {
			fmt.Printf("  %-40s %dx%d %s\n", t.Name, t.Width, t.Height, t.Format())
		}
	}

	// One compiled draw, one replay
	s.CreateCache(mesh)
	s.Draw(mesh)
	s.Draw(mesh)
	c := backend.Counters
	fmt.Println()
	fmt.Printf("Draw:      %d primitives, %d vertices, %d texture binds, %d material sets\n",
		c.Primitives, c.Vertices, c.TextureBinds, c.MaterialSets)
	fmt.Printf("Lists:     %d compiled, %d replayed\n", c.ListsCompiled, c.ListsCalled)
}

func cmdMTL(args []string) {
	if len(args) < 1 {
		fail("Usage: objinfo mtl <file.mtl>")
	}

	reg := material.NewRegistry()
	if err := reg.LoadFile(args[0]); err != nil {
		fail("Error: %v", err)
	}

	fmt.Printf("Library:   %s\n", args[0])
	fmt.Printf("Materials: %d\n", reg.Len())
	for _, m := range reg.Materials() {
		fmt.Println()
		fmt.Printf("%s\n", m.Name)
		fmt.Printf("  ambient   %v\n", m.Ambient)
		fmt.Printf("  diffuse   %v\n", m.Diffuse)
		fmt.Printf("  specular  %v\n", m.Specular)
		fmt.Printf("  shininess %g\n", m.Shininess)
	}
}
