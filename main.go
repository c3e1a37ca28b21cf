package main

import (
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/milk9111/systematic/config"
	"github.com/milk9111/systematic/engine"
	"github.com/milk9111/systematic/level"
	"github.com/milk9111/systematic/levels"
	"github.com/milk9111/systematic/mod"
	"github.com/milk9111/systematic/physics"
)

func main() {
	levelName := flag.String("level", "intro", "embedded level name or path to a level .json file")
	modsDir := flag.String("mods", "", "directory whose subdirectories are mods; watched for changes")
	builtinMods := flag.Bool("builtin-mods", true, "load the mods shipped with the binary")
	configPath := flag.String("config", "", "YAML file overlaid on the default config")
	metricsAddr := flag.String("metrics", "", "serve prometheus metrics on this address, e.g. :9090")
	play := flag.Bool("play", false, "start in play mode")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	flag.Parse()

	logger := log.New(os.Stderr, "", log.LstdFlags)

	cfg := config.Default()
	if *configPath != "" {
		c, err := config.Load(*configPath)
		if err != nil {
			logger.Fatal(err)
		}
		cfg = c
	}

	eng := engine.New(cfg, logger)
	if *levelName != "" {
		g, err := loadLevel(*levelName)
		if err != nil {
			logger.Printf("failed to load level %s: %v", *levelName, err)
		} else {
			eng.ReplaceLevel(0, g)
		}
	}

	loader := mod.NewLoader(eng)
	if *builtinMods {
		if err := loader.LoadBuiltin(); err != nil {
			logger.Printf("builtin mods: %v", err)
		}
	}

	var watcher *mod.Watcher
	if *modsDir != "" {
		if _, err := loader.LoadAll(*modsDir); err != nil {
			logger.Printf("mods: %v", err)
		}
		w, err := mod.NewWatcher()
		if err == nil {
			err = w.AddRoot(*modsDir)
		}
		if err != nil {
			logger.Printf("mods: watch %s: %v", *modsDir, err)
		}
		if w != nil {
			watcher = w
			defer watcher.Close()
		}
	}

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(eng.Metrics(), promhttp.HandlerOpts{}))
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Printf("metrics: %v", err)
			}
		}()
	}

	if *play {
		eng.SetMode(physics.ModePlay)
	}

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("systematic")

	game := NewGame(eng, loader, watcher, *modsDir)
	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		logger.Fatal(err)
	}
}

// loadLevel treats names ending in .json that exist on disk as files and
// everything else as an embedded level.
func loadLevel(name string) (*level.Grid, error) {
	if filepath.Ext(name) == ".json" {
		if _, err := os.Stat(name); err == nil {
			return levels.LoadFile(name)
		}
	}
	return levels.Load(name)
}
