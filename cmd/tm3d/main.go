// Command tm3d opens the game window and runs the frame loop until the window closes or Quit is
// chosen from the menu.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Carmen-Shannon/tm3d-go/engine"
	"github.com/Carmen-Shannon/tm3d-go/engine/config"
	"github.com/Carmen-Shannon/tm3d-go/engine/font"
	"github.com/Carmen-Shannon/tm3d-go/engine/loader"
	"github.com/Carmen-Shannon/tm3d-go/engine/log"
	"github.com/Carmen-Shannon/tm3d-go/engine/renderer"
	"github.com/Carmen-Shannon/tm3d-go/engine/terrain"
	"github.com/Carmen-Shannon/tm3d-go/engine/window"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "settings file, created on exit when missing")
	profile := flag.Bool("profile", false, "log frame statistics and show the debug overlay")
	frameLimit := flag.Float64("fps", 0, "frame rate cap, 0 for none")
	flag.Parse()

	if err := run(*configPath, *profile, *frameLimit); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string, profile bool, frameLimit float64) error {
	cfg, cfgErr := config.Load(configPath)
	if cfgErr != nil {
		cfg = config.Default()
	}

	logger := log.New(
		log.WithDir(cfg.Log.Dir),
		log.WithLevel(cfg.Log.Level),
		log.WithRotation(cfg.Log.MaxSizeMB, cfg.Log.MaxBackups),
		log.WithStderr(cfg.Log.Stderr),
	)
	if cfgErr != nil {
		logger.Warn("using default settings", "path", configPath, "error", cfgErr)
	}
	dataDir := resolveDataDir(cfg.DataDir)
	logger.Info("starting", "config", configPath, "data", dataDir)

	win := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
		window.WithFullscreen(cfg.Window.Fullscreen),
	)
	defer win.Close()

	r, err := renderer.NewRenderer(renderer.BackendTypeWGPU, win,
		renderer.WithLogger(logger),
		renderer.WithVSync(cfg.Graphics.VSync),
		renderer.WithMultisample(cfg.Graphics.Multisample, cfg.Graphics.SampleCount),
		renderer.WithRenderScale(cfg.RenderScale),
	)
	if err != nil {
		logger.Error("failed to create renderer", "error", err)
		return err
	}
	defer r.Release()

	catalog := loader.NewCatalog(loader.BackendTypeOBJ,
		loader.WithRoot(dataDir),
		loader.WithUploader(r),
		loader.WithLogger(logger),
	)

	fonts, err := font.NewLibrary(filepath.Join(dataDir, "fonts"), font.DefaultCapacity, r, logger)
	if err != nil {
		logger.Error("failed to create font library", "error", err)
		return err
	}

	worldOptions := []terrain.WorldBuilderOption{
		terrain.WithLogger(logger),
		terrain.WithHeightmapSource(catalog),
		terrain.WithMeshMaker(r),
	}
	if cfg.Cache.Enabled {
		if dir, err := terrain.DefaultCacheDir(); err == nil {
			worldOptions = append(worldOptions, terrain.WithCacheDir(dir))
		} else {
			logger.Warn("terrain cache disabled", "error", err)
		}
	}

	options := []engine.EngineBuilderOption{
		engine.WithConfig(cfg, configPath),
		engine.WithLogger(logger),
		engine.WithWindow(win),
		engine.WithRenderer(r),
		engine.WithCatalog(catalog),
		engine.WithFonts(fonts),
		engine.WithWorld(terrain.NewWorld(worldOptions...)),
		engine.WithRenderFrameLimit(frameLimit),
	}
	if profile {
		options = append(options, engine.WithProfiling(true))
	}
	e := engine.NewEngine(options...)

	if err := e.Init(); err != nil {
		logger.Error("failed to load assets", "error", err)
		return err
	}
	return e.Run()
}

// resolveDataDir returns dir unchanged when it exists or is absolute, and otherwise looks for it
// next to the executable.
func resolveDataDir(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	if _, err := os.Stat(dir); err == nil {
		return dir
	}
	exe, err := os.Executable()
	if err != nil {
		return dir
	}
	candidate := filepath.Join(filepath.Dir(exe), dir)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return dir
}
