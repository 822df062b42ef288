package engine

import (
	"time"

	"github.com/Carmen-Shannon/tm3d-go/engine/camera"
	"github.com/Carmen-Shannon/tm3d-go/engine/config"
	"github.com/Carmen-Shannon/tm3d-go/engine/entity"
	"github.com/Carmen-Shannon/tm3d-go/engine/input"
	"github.com/Carmen-Shannon/tm3d-go/engine/loader"
	"github.com/Carmen-Shannon/tm3d-go/engine/log"
	"github.com/Carmen-Shannon/tm3d-go/engine/menu"
	"github.com/Carmen-Shannon/tm3d-go/engine/renderer"
	"github.com/Carmen-Shannon/tm3d-go/engine/terrain"
	"github.com/Carmen-Shannon/tm3d-go/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithConfig sets the settings the engine starts from and the file they are saved to on exit.
// Profiling and the frame limit follow the settings unless later options override them.
//
// Parameters:
//   - cfg: the loaded settings
//   - path: where Run saves the settings, empty to skip saving
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithConfig(cfg *config.Config, path string) EngineBuilderOption {
	return func(e *engine) {
		if cfg == nil {
			return
		}
		e.cfg = cfg
		e.configPath = path
		e.profilingEnabled = cfg.Profiler.Enabled
	}
}

// WithProfiling enables or disables the frame statistics log and the on-screen overlay.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithRenderFrameLimit sets an optional frame rate cap.
// Values <= 0 leave the loop uncapped, which is the default.
//
// Parameters:
//   - fps: maximum frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps > 0 {
			e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
		}
	}
}

// WithWindow sets the window the engine polls and presents to.
//
// Parameters:
//   - w: the Window instance to use
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer sets the draw layer.
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithLogger sets the engine logger. A nil logger discards messages.
func WithLogger(l *log.Logger) EngineBuilderOption {
	return func(e *engine) {
		e.log = l
	}
}

// WithCatalog sets the asset catalog textures and meshes are loaded from.
func WithCatalog(c loader.Catalog) EngineBuilderOption {
	return func(e *engine) {
		e.catalog = c
	}
}

// WithFonts sets the font source for the menu, the crosshair and the overlay.
func WithFonts(fonts FontSource) EngineBuilderOption {
	return func(e *engine) {
		e.fonts = fonts
	}
}

// WithWorld sets the terrain world. Without one the ground is flat at height 0 and nothing is
// drawn under the guy.
func WithWorld(w terrain.World) EngineBuilderOption {
	return func(e *engine) {
		e.world = w
	}
}

// WithInput replaces the input state fed by the window callbacks.
func WithInput(in input.Input) EngineBuilderOption {
	return func(e *engine) {
		e.input = in
	}
}

// WithCamera replaces the default camera at the origin.
func WithCamera(c camera.Camera) EngineBuilderOption {
	return func(e *engine) {
		e.camera = c
	}
}

// WithGuy replaces the default guy at (0, 0, -50).
func WithGuy(g entity.Guy) EngineBuilderOption {
	return func(e *engine) {
		e.guy = g
	}
}

// WithMenu replaces the default pause menu.
func WithMenu(m menu.Menu) EngineBuilderOption {
	return func(e *engine) {
		e.menu = m
	}
}

// WithClock replaces time.Now for the frame clock and the profiler.
func WithClock(now func() time.Time) EngineBuilderOption {
	return func(e *engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithTimeRate scales the simulation clock. 1 is real time.
//
// Parameters:
//   - rate: the dilation factor, ignored when negative
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTimeRate(rate float64) EngineBuilderOption {
	return func(e *engine) {
		if rate >= 0 {
			e.timeRate = rate
		}
	}
}
