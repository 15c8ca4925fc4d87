// planettool is a CLI utility for inspecting procedural planets without a
// window.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/cubesphere/internal/config"
	"github.com/Faultbox/cubesphere/internal/planet"
	"github.com/Faultbox/cubesphere/internal/planet/cube"
	"github.com/Faultbox/cubesphere/internal/planet/lod"
)

var errUsage = errors.New("usage")

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(1)
	}

	if err := run(os.Args[1], os.Args[2:], os.Stdout); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(command string, args []string, out io.Writer) error {
	switch command {
	case "info":
		return cmdInfo(args, out)
	case "sample":
		return cmdSample(args, out)
	case "land":
		return cmdLand(args, out)
	case "depth":
		return cmdDepth(args, out)
	case "simulate", "sim":
		return cmdSimulate(args, out)
	case "help", "-h", "--help":
		printUsage(out)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage(out)
		return errUsage
	}
}

func printUsage(out io.Writer) {
	fmt.Fprintln(out, `planettool - procedural planet inspector

Usage:
  planettool <command> [options]

Commands:
  info     [-radius r]                       Show LOD configuration per depth
  sample   -seed s -x x -y y -z z            Elevation and classification of a direction
  land     -seed s [-attempts n]             Search for a settlement point
  depth    -area a1,a2,...                   Effective max depth per triangle area
  simulate -seed s [-from d] [-to d] [-steps n]  Fly toward +Y and print the tree

Examples:
  planettool info
  planettool sample -seed 1337 -x 0 -y 1 -z 0
  planettool land -seed 42 -attempts 16
  planettool depth -area 10,40,200
  planettool simulate -seed 1337 -from 50000 -to 3100 -steps 8`)
}

// planetFlags registers the flags shared by every command that builds a
// planet.
func planetFlags(fs *flag.FlagSet) (seed *int64, radius *float64) {
	defaults := config.Default()
	seed = fs.Int64("seed", defaults.Session.Seed, "Planet seed")
	radius = fs.Float64("radius", defaults.Planet.Radius, "Planet radius")
	return seed, radius
}

func lodConfig(radius float64) lod.Config {
	cfg := config.Default().Planet.LOD()
	cfg.Radius = radius
	return cfg
}

func cmdInfo(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	_, radius := planetFlags(fs)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	m := lod.NewManager(lodConfig(*radius))
	cfg := m.Config()
	effMax := m.EffectiveMaxDepth()

	fmt.Fprintf(out, "Radius:          %.1f\n", cfg.Radius)
	fmt.Fprintf(out, "Sea level:       %.1f\n", m.SeaLevel())
	fmt.Fprintf(out, "Target area:     %.2f\n", cfg.TargetTriangleArea)
	fmt.Fprintf(out, "Max depth:       %d (effective %d)\n", cfg.MaxDepth, effMax)
	fmt.Fprintf(out, "Update interval: %s\n", cfg.UpdateInterval)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %-5s %-5s %-12s %-12s %s\n", "depth", "res", "split", "merge", "tri area")
	for d := 0; d <= effMax; d++ {
		fmt.Fprintf(out, "  %-5d %-5d %-12.1f %-12.1f %.2f\n",
			d, cfg.Resolution(d), cfg.SplitThreshold(d), cfg.MergeThreshold(d), cfg.TriangleArea(d))
	}
	return nil
}

func cmdSample(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("sample", flag.ContinueOnError)
	seed, radius := planetFlags(fs)
	x := fs.Float64("x", 0, "Direction X")
	y := fs.Float64("y", 1, "Direction Y")
	z := fs.Float64("z", 0, "Direction Z")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	m := lod.NewManager(lodConfig(*radius))
	m.BuildPlanet(*seed, nil)

	dir := mgl64.Vec3{*x, *y, *z}
	point := m.EvaluateSurfacePoint(dir)
	sample := m.Classify(dir)
	face, uv := cube.FromDirection(dir)

	kind := "water"
	if sample.IsLand {
		kind = "land"
	}
	fmt.Fprintf(out, "Direction: %.4f %.4f %.4f\n", dir[0], dir[1], dir[2])
	fmt.Fprintf(out, "Face:      %s (%.4f, %.4f)\n", face, uv[0], uv[1])
	fmt.Fprintf(out, "Point:     %.3f %.3f %.3f\n", point[0], point[1], point[2])
	fmt.Fprintf(out, "Elevation: %.3f (%+.3f)\n", point.Len(), point.Len()-m.Radius())
	fmt.Fprintf(out, "Surface:   %s (height %.3f)\n", kind, sample.NormalizedHeight)
	return nil
}

func cmdLand(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("land", flag.ContinueOnError)
	seed, radius := planetFlags(fs)
	attempts := fs.Int("attempts", planet.SettlementAttempts, "Random directions to try")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	m := lod.NewManager(lodConfig(*radius))
	m.BuildPlanet(*seed, nil)

	pos, normal, ok := m.TryFindLandPoint(*attempts, rand.New(rand.NewSource(*seed)))
	if !ok {
		pos = m.EvaluateSurfacePoint(cube.Up)
		normal = cube.Up
		fmt.Fprintf(out, "No land in %d attempts, using pole\n", *attempts)
	} else {
		fmt.Fprintf(out, "Land found\n")
	}
	fmt.Fprintf(out, "Position: %.3f %.3f %.3f\n", pos[0], pos[1], pos[2])
	fmt.Fprintf(out, "Normal:   %.4f %.4f %.4f\n", normal[0], normal[1], normal[2])
	return nil
}

func cmdDepth(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("depth", flag.ContinueOnError)
	_, radius := planetFlags(fs)
	areas := fs.String("area", "10,40,200,1000", "Comma-separated target triangle areas")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	cfg := lodConfig(*radius)
	for _, field := range strings.Split(*areas, ",") {
		area, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return fmt.Errorf("parsing area %q: %w", field, err)
		}
		cfg.TargetTriangleArea = area
		clamped := cfg.Clamped(nil)
		fmt.Fprintf(out, "  area %-10.2f depth %d\n", area, clamped.EffectiveMaxDepth())
	}
	return nil
}

func cmdSimulate(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("simulate", flag.ContinueOnError)
	seed, radius := planetFlags(fs)
	from := fs.Float64("from", 50000, "Start distance from the centre")
	to := fs.Float64("to", 3100, "End distance from the centre")
	steps := fs.Int("steps", 8, "Number of camera positions")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *steps < 1 {
		return fmt.Errorf("steps must be positive, got %d", *steps)
	}

	m := lod.NewManager(lodConfig(*radius))
	m.BuildPlanet(*seed, nil)
	interval := m.Config().UpdateInterval.Seconds()

	for i := 0; i < *steps; i++ {
		t := 0.0
		if *steps > 1 {
			t = float64(i) / float64(*steps-1)
		}
		dist := *from + (*to-*from)*t
		cam := cube.Up.Mul(dist)

		m.Tick(cam, interval)
		stats := m.Stats()

		perDepth := make([]int, m.EffectiveMaxDepth()+1)
		for _, p := range m.VisiblePatches() {
			perDepth[p.Depth]++
		}
		fmt.Fprintf(out, "dist %-10.1f visible %-4d patches %-4d splits %-4d merges %-4d depths %v\n",
			dist, stats.Visible, stats.Patches, stats.Splits, stats.Merges, perDepth)
	}
	return nil
}
