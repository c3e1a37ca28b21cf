// Command lightshot runs a level headless for a number of ticks and writes
// the lit frame to a PNG. Useful for checking lighting and mods without a
// window.
package main

import (
	"flag"
	"image"
	"image/draw"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/milk9111/systematic/config"
	"github.com/milk9111/systematic/engine"
	"github.com/milk9111/systematic/level"
	"github.com/milk9111/systematic/levels"
	"github.com/milk9111/systematic/mod"
	"github.com/milk9111/systematic/physics"
	"github.com/milk9111/systematic/render"
)

const frame = time.Second / 60

func main() {
	levelName := flag.String("level", "intro", "embedded level name or path to a level .json file")
	ticks := flag.Int("ticks", 120, "ticks to simulate before the shot")
	out := flag.String("out", "lightshot.png", "output png")
	modsDir := flag.String("mods", "", "directory whose subdirectories are mods")
	builtinMods := flag.Bool("builtin-mods", true, "load the mods shipped with the binary")
	configPath := flag.String("config", "", "YAML file overlaid on the default config")
	hold := flag.String("hold", "", "comma separated keys held for the whole run, e.g. d,w")
	width := flag.Int("width", 1280, "image width")
	height := flag.Int("height", 720, "image height")
	flag.Parse()

	logger := log.New(os.Stderr, "lightshot: ", 0)

	cfg := config.Default()
	if *configPath != "" {
		c, err := config.Load(*configPath)
		if err != nil {
			logger.Fatal(err)
		}
		cfg = c
	}

	eng := engine.New(cfg, logger)
	eng.ScreenSize(float64(*width), float64(*height))

	g, err := loadLevel(*levelName)
	if err != nil {
		logger.Fatal(err)
	}
	eng.ReplaceLevel(0, g)

	loader := mod.NewLoader(eng)
	if *builtinMods {
		if err := loader.LoadBuiltin(); err != nil {
			logger.Printf("builtin mods: %v", err)
		}
	}
	if *modsDir != "" {
		if _, err := loader.LoadAll(*modsDir); err != nil {
			logger.Printf("mods: %v", err)
		}
	}

	eng.SetMode(physics.ModePlay)
	for _, k := range strings.Split(*hold, ",") {
		if k = strings.TrimSpace(k); k != "" {
			eng.KeyDown(k)
		}
	}
	for i := 0; i < *ticks; i++ {
		eng.Tick(time.Duration(i) * frame)
	}

	pal := render.NewPalette(cfg.Palette)
	img := image.NewRGBA(image.Rect(0, 0, *width, *height))
	draw.Draw(img, img.Bounds(), image.NewUniform(pal.Sky()), image.Point{}, draw.Src)
	render.Paint(img, render.Frame(nil, eng, pal))
	if eng.Renderer().Lightmap() != nil {
		eng.Renderer().Composite(img)
	}

	f, err := os.Create(*out)
	if err != nil {
		logger.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		logger.Fatal(err)
	}
	if err := f.Close(); err != nil {
		logger.Fatal(err)
	}

	s := eng.LightingStats()
	p := eng.Player()
	logger.Printf("wrote %s: %d ticks, player %.1f,%.1f, lights drawn %d culled %d", *out, *ticks, p.X, p.Y, s.Drawn, s.Culled)
}

func loadLevel(name string) (*level.Grid, error) {
	if filepath.Ext(name) == ".json" {
		if _, err := os.Stat(name); err == nil {
			return levels.LoadFile(name)
		}
	}
	return levels.Load(name)
}
