// terraintool is a CLI utility for inspecting the sand island terrain
// without opening a window.
package main

import (
	"bufio"
	"encoding/binary"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/Faultbox/sandisle/internal/config"
	"github.com/Faultbox/sandisle/internal/engine/camera"
	"github.com/Faultbox/sandisle/internal/game/world"
	"github.com/Faultbox/sandisle/internal/logger"
	"github.com/Faultbox/sandisle/internal/terrain"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "height", "h":
		cmdHeight(args)
	case "stream":
		cmdStream(args)
	case "heightmap", "png":
		cmdHeightmap(args)
	case "dump":
		cmdDump(args)
	case "mesh", "obj":
		cmdMesh(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`terraintool - sand island terrain utility

Usage:
  terraintool <command> [options]

Commands:
  height [-config f] <x> <z> [<x> <z> ...]   Print elevation and normal
  stream [-config f] [-frames n] [-turn r]   Walk the camera and report streaming
  heightmap [-config f] [-size px] [-extent u] <out.png>
                                             Render a grayscale height map
  dump [-config f] [-size n] [-extent u] <out.f32.zst>
                                             Write raw float32 heights, zstd compressed
  mesh [-config f] [-lod n] <cx> <cz> <out.obj>
                                             Export a baked chunk as OBJ

Examples:
  terraintool height 0 0 12.5 -3
  terraintool stream -frames 600
  terraintool heightmap -size 512 island.png
  terraintool dump -size 1024 island.f32.zst
  terraintool mesh -lod 0 0 0 chunk.obj`)
}

// loadConfig parses the shared flags of every command and returns the
// validated config with the logger initialised from it.
func loadConfig(fs *flag.FlagSet, args []string) *config.Config {
	path := fs.String("config", "", "Path to config file")
	seed := fs.Int64("seed", -1, "Terrain seed")
	fs.Parse(args)

	cfg, err := config.LoadFile(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *seed >= 0 {
		cfg.Terrain.Height.Seed = uint32(*seed)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func parseFloat(s string) float32 {
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid number: %s\n", s)
		os.Exit(1)
	}
	return float32(v)
}

func cmdHeight(args []string) {
	fs := flag.NewFlagSet("height", flag.ExitOnError)
	cfg := loadConfig(fs, args)
	defer logger.Sync()

	if fs.NArg() == 0 || fs.NArg()%2 != 0 {
		fmt.Fprintln(os.Stderr, "Usage: terraintool height <x> <z> [<x> <z> ...]")
		os.Exit(1)
	}

	params := cfg.Terrain.Height
	lo, hi := params.Bounds()
	fmt.Printf("Seed:   %d\n", params.Seed)
	fmt.Printf("Bounds: [%.3f, %.3f]\n\n", lo, hi)

	for i := 0; i < fs.NArg(); i += 2 {
		x, z := parseFloat(fs.Arg(i)), parseFloat(fs.Arg(i+1))
		n := params.Normal(x, z)
		fmt.Printf("(%8.2f, %8.2f)  height %8.4f  normal (%.3f, %.3f, %.3f)  chunk %s\n",
			x, z, params.Height(x, z), n.X, n.Y, n.Z,
			terrain.CoordAt(x, z, cfg.Terrain.ChunkSize))
	}
}

func cmdStream(args []string) {
	fs := flag.NewFlagSet("stream", flag.ExitOnError)
	frames := fs.Int("frames", 600, "Frames to simulate")
	fps := fs.Float64("fps", 60, "Simulated frame rate")
	turn := fs.Float64("turn", 2, "Mouse pixels turned per frame")
	run := fs.Bool("run", true, "Walk forward")
	cfg := loadConfig(fs, args)
	defer logger.Sync()

	w, err := world.New(cfg, terrain.CPUAllocator{}, logger.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer w.Close()

	controls := world.Controls{LookDX: float32(*turn)}
	if *run {
		controls.Move = camera.Movement{Forward: 1}
	}
	dt := float32(1 / *fps)
	aspect := float32(cfg.Graphics.Width) / float32(cfg.Graphics.Height)

	var streamed, lodChanges, advanced, peakVisible int
	start := time.Now()
	for range *frames {
		ts := w.Update(dt, controls, aspect)
		if ts.Streamed {
			streamed++
		}
		lodChanges += ts.LODChanges
		advanced += ts.Advanced
		peakVisible = max(peakVisible, ts.Visible)
	}
	elapsed := time.Since(start)

	pos := w.Camera().Position
	stats := w.Grid().Stats()
	fmt.Printf("Frames:        %d (%.1fs simulated, %v wall)\n", *frames, w.Clock(), elapsed.Round(time.Millisecond))
	fmt.Printf("Camera:        (%.2f, %.2f, %.2f)\n", pos.X, pos.Y, pos.Z)
	fmt.Printf("Stream passes: %d\n", streamed)
	fmt.Printf("Loaded:        %d (pending %d)\n", stats.Loaded, stats.Pending)
	fmt.Printf("Visible:       %d (peak %d)\n", stats.Visible, peakVisible)
	fmt.Printf("Created:       %d\n", stats.Created)
	fmt.Printf("Evicted:       %d\n", stats.Evicted)
	fmt.Printf("Failed:        %d\n", stats.Failed)
	fmt.Printf("Discarded:     %d\n", stats.Discarded)
	fmt.Printf("LOD changes:   %d\n", lodChanges)
	fmt.Printf("Advances:      %d\n", advanced)

	logger.Debug("stream simulation done", zap.Duration("elapsed", elapsed))
}

func cmdHeightmap(args []string) {
	fs := flag.NewFlagSet("heightmap", flag.ExitOnError)
	size := fs.Int("size", 256, "Image width and height in pixels")
	extent := fs.Float64("extent", 128, "World units covered by each image edge")
	cfg := loadConfig(fs, args)
	defer logger.Sync()

	if fs.NArg() < 1 || *size < 1 {
		fmt.Fprintln(os.Stderr, "Usage: terraintool heightmap [-size px] [-extent u] <out.png>")
		os.Exit(1)
	}

	params := cfg.Terrain.Height
	lo, hi := params.Bounds()
	span := hi - lo
	step := float32(*extent) / float32(*size)
	half := float32(*extent) / 2

	img := image.NewGray16(image.Rect(0, 0, *size, *size))
	for py := range *size {
		for px := range *size {
			x := -half + (float32(px)+0.5)*step
			z := -half + (float32(py)+0.5)*step
			v := (params.Height(x, z) - lo) / span
			img.SetGray16(px, py, color.Gray16{Y: uint16(min(max(v, 0), 1) * 0xffff)})
		}
	}

	out, err := os.Create(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := png.Encode(out, img); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding PNG: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %dx%d height map of [%.1f, %.1f]^2 to %s\n", *size, *size, -half, half, fs.Arg(0))
}

// dumpMagic starts every height dump. The header is followed by size, seed
// and extent, then size*size little-endian float32 heights in row-major
// order with +Z rows.
const dumpMagic = "SIHF"

func cmdDump(args []string) {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	size := fs.Int("size", 512, "Samples per edge")
	extent := fs.Float64("extent", 128, "World units covered by each edge")
	cfg := loadConfig(fs, args)
	defer logger.Sync()

	if fs.NArg() < 1 || *size < 1 {
		fmt.Fprintln(os.Stderr, "Usage: terraintool dump [-size n] [-extent u] <out.f32.zst>")
		os.Exit(1)
	}

	start := time.Now()
	n, err := writeDump(fs.Arg(0), cfg.Terrain.Height, *size, float32(*extent))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("height dump written",
		zap.String("path", fs.Arg(0)),
		zap.Int("samples", *size**size),
		zap.Int64("bytes", n),
		zap.Duration("elapsed", time.Since(start)),
	)
	fmt.Printf("Wrote %d samples (%d bytes compressed) to %s\n", *size**size, n, fs.Arg(0))
}

func writeDump(path string, params terrain.HeightParams, size int, extent float32) (int64, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return 0, err
	}
	if err := writeHeights(enc, params, size, extent); err != nil {
		enc.Close()
		return 0, err
	}
	if err := enc.Close(); err != nil {
		return 0, err
	}

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), f.Close()
}

// writeHeights writes the dump header and the height rows to w.
func writeHeights(w io.Writer, params terrain.HeightParams, size int, extent float32) error {
	bw := bufio.NewWriterSize(w, 256*1024)

	header := struct {
		Magic  [4]byte
		Size   uint32
		Seed   uint32
		Extent float32
	}{Size: uint32(size), Seed: params.Seed, Extent: extent}
	copy(header.Magic[:], dumpMagic)
	if err := binary.Write(bw, binary.LittleEndian, header); err != nil {
		return err
	}

	step := extent / float32(size)
	half := extent / 2
	row := make([]float32, size)
	for iz := range size {
		z := -half + (float32(iz)+0.5)*step
		for ix := range size {
			row[ix] = params.Height(-half+(float32(ix)+0.5)*step, z)
		}
		if err := binary.Write(bw, binary.LittleEndian, row); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func cmdMesh(args []string) {
	fs := flag.NewFlagSet("mesh", flag.ExitOnError)
	lod := fs.Int("lod", 0, "LOD level to export")
	cfg := loadConfig(fs, args)
	defer logger.Sync()

	if fs.NArg() < 3 {
		fmt.Fprintln(os.Stderr, "Usage: terraintool mesh [-lod n] <cx> <cz> <out.obj>")
		os.Exit(1)
	}
	cx, err1 := strconv.Atoi(fs.Arg(0))
	cz, err2 := strconv.Atoi(fs.Arg(1))
	if err1 != nil || err2 != nil {
		fmt.Fprintln(os.Stderr, "Chunk coordinates must be integers")
		os.Exit(1)
	}
	if *lod < 0 || *lod >= len(cfg.Terrain.LODs) {
		fmt.Fprintf(os.Stderr, "LOD %d out of range [0, %d)\n", *lod, len(cfg.Terrain.LODs))
		os.Exit(1)
	}

	coord := terrain.Coord{X: cx, Z: cz}
	size := cfg.Terrain.ChunkSize
	origin := coord.Origin(size)
	mesh := terrain.BakeHeights(
		terrain.BuildPlane(size, cfg.Terrain.LODs[*lod].Resolution), origin, cfg.Terrain.Height)

	if err := writeOBJ(fs.Arg(2), coord, mesh, origin.X, origin.Y); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote chunk %s: %d vertices, %d triangles to %s\n",
		coord, len(mesh.Vertices), len(mesh.Indices)/3, fs.Arg(2))
}

// writeOBJ writes mesh in world space as a Wavefront OBJ file.
func writeOBJ(path string, coord terrain.Coord, mesh *terrain.Mesh, ox, oz float32) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "# sand island chunk %s, resolution %d\n", coord, mesh.Resolution)
	fmt.Fprintf(w, "o chunk_%d_%d\n", coord.X, coord.Z)
	for _, v := range mesh.Vertices {
		fmt.Fprintf(w, "v %g %g %g\n", v.Position[0]+ox, v.Position[1], v.Position[2]+oz)
	}
	for _, v := range mesh.Vertices {
		fmt.Fprintf(w, "vt %g %g\n", v.TexCoord[0], v.TexCoord[1])
	}
	for _, v := range mesh.Vertices {
		fmt.Fprintf(w, "vn %g %g %g\n", v.Normal[0], v.Normal[1], v.Normal[2])
	}
	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		a, b, c := mesh.Indices[i]+1, mesh.Indices[i+1]+1, mesh.Indices[i+2]+1
		fmt.Fprintf(w, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", a, a, a, b, b, b, c, c, c)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}
