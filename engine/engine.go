package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/Carmen-Shannon/tm3d-go/common"
	"github.com/Carmen-Shannon/tm3d-go/engine/camera"
	"github.com/Carmen-Shannon/tm3d-go/engine/config"
	"github.com/Carmen-Shannon/tm3d-go/engine/entity"
	"github.com/Carmen-Shannon/tm3d-go/engine/font"
	"github.com/Carmen-Shannon/tm3d-go/engine/input"
	"github.com/Carmen-Shannon/tm3d-go/engine/loader"
	"github.com/Carmen-Shannon/tm3d-go/engine/log"
	"github.com/Carmen-Shannon/tm3d-go/engine/menu"
	"github.com/Carmen-Shannon/tm3d-go/engine/profiler"
	"github.com/Carmen-Shannon/tm3d-go/engine/renderer"
	"github.com/Carmen-Shannon/tm3d-go/engine/terrain"
	"github.com/Carmen-Shannon/tm3d-go/engine/window"
)

const (
	// MaxDt caps the simulation step of a single frame in seconds.
	MaxDt = 0.15

	// GuyMesh and GuyTexture name the player's model and texture in the catalog.
	GuyMesh    = "dragon"
	GuyTexture = "white"

	// CrosshairFont draws the centred crosshair.
	CrosshairFont = "Inconsolata-Regular.ttf"
	crosshairSize = 0.0725 * 1.4
)

// skyColor clears the offscreen target before the world is drawn.
var skyColor = common.Vector4{X: 0.2, Y: 0.5, Z: 0.8, W: 1}

// Control selects what the movement keys drive.
type Control int

const (
	// ControlCamera walks the first-person camera over the terrain.
	ControlCamera Control = iota
	// ControlGuy runs and turns the guy; the camera only looks around.
	ControlGuy
)

// Time is the frame clock. Dt is the dilated step clamped to MaxDt; RealDt is dilated but not
// clamped; UIDt is neither. Each Now is the running sum of its step.
type Time struct {
	Dt, Now         float32
	RealDt, RealNow float32
	UIDt, UINow     float32
}

// FontSource returns fonts by file name and pixel size. *font.Library satisfies it.
type FontSource interface {
	Get(name string, size int) (*font.Font, error)
}

// engine implements the Engine interface.
// A single goroutine, the window's message loop, polls input, simulates, draws and presents.
type engine struct {
	log        *log.Logger
	cfg        *config.Config
	configPath string

	window   window.Window
	renderer renderer.Renderer
	input    input.Input
	catalog  loader.Catalog
	fonts    FontSource
	world    terrain.World
	camera   camera.Camera
	guy      entity.Guy
	menu     menu.Menu
	overlay  *profiler.Overlay

	profiler         *profiler.Profiler
	profilingEnabled bool

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped

	control        Control
	captureChanged bool

	now      func() time.Time
	timeRate float64
	lastTime time.Time
	time     Time

	quitOnce sync.Once
	quitting bool
}

// Engine is the main entry point for the game.
// It owns the frame loop, the program mode and the world, camera and guy it simulates.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the draw layer.
	Renderer() renderer.Renderer

	// Input returns the per-frame key and mouse state fed by the window callbacks.
	Input() input.Input

	// Camera returns the first-person camera.
	Camera() camera.Camera

	// Guy returns the player entity.
	Guy() entity.Guy

	// World returns the terrain world, nil when none was configured.
	World() terrain.World

	// Menu returns the pause menu, which also holds the program mode.
	Menu() menu.Menu

	// Control returns what the movement keys currently drive.
	Control() Control

	// Time returns the frame clock.
	Time() Time

	// EnableProfiler enables the frame statistics log and the on-screen overlay.
	EnableProfiler()

	// DisableProfiler disables the frame statistics log and the on-screen overlay.
	DisableProfiler()

	// SetRenderFrameLimit sets an optional frame rate cap in frames per second.
	// Pass 0 to uncap the loop (default).
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Init loads the assets the game starts with: the terrain textures and tiles from the config,
	// and the guy's mesh and texture. Missing files leave the asset empty; other failures are
	// returned.
	//
	// Returns:
	//   - error: error if an asset exists but cannot be loaded
	Init() error

	// Frame runs one loop iteration: mode and fullscreen keys, simulation, drawing, presenting and
	// the clock update.
	Frame()

	// Simulate advances the camera or the guy by the current Dt.
	Simulate()

	// DrawGameView draws the world into the offscreen target, overlays the crosshair and composites
	// the result onto the back buffer.
	DrawGameView()

	// UpdateTime advances the frame clock to now.
	//
	// Parameters:
	//   - dtMax: the largest Dt a single frame may report
	UpdateTime(dtMax float32)

	// Run wires the window callbacks and runs the loop until the window closes or Quit is called,
	// then saves the config and releases the assets.
	//
	// Returns:
	//   - error: error if the config cannot be saved
	Run() error

	// Quit asks the window to close. Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// Input, camera, guy, menu, overlay and profiler are created here; the window, renderer, asset
// catalog, fonts and world come from options.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		cfg:      config.Default(),
		input:    input.NewInput(),
		now:      time.Now,
		timeRate: 1,
	}

	for _, opt := range options {
		opt(e)
	}

	e.profiler = profiler.NewProfiler(
		profiler.WithLogger(e.log),
		profiler.WithUpdateInterval(time.Duration(e.cfg.Profiler.IntervalSeconds*float64(time.Second))),
		profiler.WithClock(e.now),
	)
	e.overlay = profiler.NewOverlay(e.fonts)
	if e.menu == nil {
		e.menu = menu.NewMenu(menu.WithFonts(e.fonts), menu.WithTitle(e.cfg.Window.Title), menu.WithLogger(e.log))
	}
	if e.camera == nil {
		e.camera = camera.NewCamera(camera.WithController(camera.NewCameraController()))
	}
	if e.guy == nil {
		e.guy = entity.NewGuy(entity.WithPosition(common.Vector3{Z: -50}))
	}
	e.lastTime = e.now()
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Input() input.Input {
	return e.input
}

func (e *engine) Camera() camera.Camera {
	return e.camera
}

func (e *engine) Guy() entity.Guy {
	return e.guy
}

func (e *engine) World() terrain.World {
	return e.world
}

func (e *engine) Menu() menu.Menu {
	return e.menu
}

func (e *engine) Control() Control {
	return e.control
}

func (e *engine) Time() Time {
	return e.time
}

// EnableProfiler enables the frame statistics log and the on-screen overlay.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables the frame statistics log and the on-screen overlay.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetRenderFrameLimit sets an optional frame rate cap.
// Pass 0 to uncap the loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) Init() error {
	if e.catalog == nil {
		return nil
	}

	names := []string{GuyTexture}
	for _, t := range e.cfg.Terrains {
		names = append(names, t.BlendMap, t.Background, t.Red, t.Green, t.Blue)
	}
	if err := e.catalog.Preload(context.Background(), nonEmpty(names)...); err != nil {
		return fmt.Errorf("failed to preload textures: %w", err)
	}

	if e.world != nil {
		for _, t := range e.cfg.Terrains {
			pack := terrain.TexturePack{
				Background: e.texture(t.Background),
				Red:        e.texture(t.Red),
				Green:      e.texture(t.Green),
				Blue:       e.texture(t.Blue),
			}
			if _, err := e.world.MakeTerrain(t.GridX, t.GridZ, pack, e.texture(t.BlendMap), t.Heightmap); err != nil {
				return err
			}
		}
	}

	mesh, err := e.catalog.LoadMesh(GuyMesh)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		e.log.Warn("guy mesh not found, the guy is invisible", "mesh", GuyMesh)
	case err != nil:
		return err
	default:
		mesh.Texture = e.texture(GuyTexture)
		e.guy.SetMesh(mesh)
	}
	return nil
}

// texture returns the catalog texture as a Sampleable, nil when it has no file.
func (e *engine) texture(name string) renderer.Sampleable {
	if name == "" {
		return nil
	}
	t, err := e.catalog.FindOrCreateTexture(name)
	if err != nil {
		e.log.Warn("failed to load texture", "texture", name, "error", err)
		return nil
	}
	if t == nil {
		return nil
	}
	return t
}

func (e *engine) Run() error {
	e.window.SetKeyDownCallback(e.input.KeyDown)
	e.window.SetKeyUpCallback(e.input.KeyUp)
	e.window.SetMouseMoveCallback(e.input.MouseMove)
	e.window.SetFocusCallback(func(focused bool) {
		if !focused {
			e.input.Reset()
		}
	})
	e.window.SetResizeCallback(func(width, height int) {
		if err := e.renderer.ResizeRenderTargets(width, height); err != nil {
			e.log.Error("failed to resize render targets", "width", width, "height", height, "error", err)
		}
	})
	e.window.SetUpdateCallback(func() {
		if e.quitting {
			return
		}
		e.Frame()
	})

	e.lastTime = e.now()
	e.log.Info("starting game loop", "width", e.window.Width(), "height", e.window.Height())
	e.window.ProcessMessages()
	return e.shutdown()
}

// Quit asks the window to close.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		e.quitting = true
		if e.window != nil {
			e.window.RequestClose()
		}
	})
}

// shutdown saves the window state into the config and releases the assets.
func (e *engine) shutdown() error {
	e.cfg.Window.Fullscreen = e.window.Fullscreen()
	if !e.cfg.Window.Fullscreen {
		e.cfg.Window.Width = e.window.Width()
		e.cfg.Window.Height = e.window.Height()
	}
	e.cfg.Profiler.Enabled = e.profilingEnabled

	var err error
	if e.configPath != "" {
		if err = e.cfg.Save(e.configPath); err != nil {
			e.log.Error("failed to save settings", "path", e.configPath, "error", err)
		}
	}

	if e.world != nil {
		e.world.Release()
	}
	if e.catalog != nil {
		e.catalog.Release()
	}
	if rel, ok := e.fonts.(interface{ Release() }); ok {
		rel.Release()
	}
	e.log.Info("game loop stopped")
	return err
}

func (e *engine) Frame() {
	frameStart := e.now()

	if e.input.WasPressed(common.KeyEsc) {
		e.menu.Toggle()
	}
	if e.input.WasPressed(common.KeyF11) {
		e.window.ToggleFullscreen()
	}
	if e.input.WasPressed(common.KeyF3) {
		e.profilingEnabled = !e.profilingEnabled
	}

	if e.time.Dt > 0 {
		switch e.menu.Mode() {
		case menu.ModeGame:
			e.captureCursor(e.window.Focused())
			e.Simulate()
		case menu.ModeMenu:
			e.captureCursor(false)
			e.menu.Update(e.input)
		}
	}
	if e.menu.ShouldQuit() {
		e.Quit()
	}

	e.draw()

	e.input.EndFrame()
	e.UpdateTime(MaxDt)
	if e.profilingEnabled {
		e.overlay.Update(e.time.Dt)
		e.profiler.Tick()
	}

	if e.renderFrameLimit > 0 {
		if remaining := e.renderFrameLimit - e.now().Sub(frameStart); remaining > 0 {
			time.Sleep(remaining)
		}
	}
}

// captureCursor hides and locks the cursor while playing with focus.
func (e *engine) captureCursor(captured bool) {
	e.captureChanged = e.window.CursorCaptured() != captured
	if e.captureChanged {
		e.window.SetCursorCaptured(captured)
	}
}

func (e *engine) Simulate() {
	dt := e.time.Dt
	if e.input.WasPressed(common.KeyTab) {
		if e.control == ControlCamera {
			e.control = ControlGuy
		} else {
			e.control = ControlCamera
		}
		e.log.Debug("control switched", "control", e.control)
	}

	// the cursor jumps when capture toggles
	var dx, dy float32
	if !e.captureChanged {
		dx, dy = e.input.MouseDelta()
	}

	var ground camera.Ground
	if e.world != nil {
		ground = e.world
	}
	var cameraKeys camera.Keys = e.input
	if e.control == ControlGuy {
		e.guy.Update(e.input, dt)
		cameraKeys = nil
	}
	if c := e.camera.Controller(); c != nil {
		c.Update(cameraKeys, dx, dy, dt, ground)
	}
	e.camera.Update()
}

// draw renders the menu or the game view and presents the frame.
func (e *engine) draw() {
	r := e.renderer
	if err := r.BeginFrame(); err != nil {
		e.log.Warn("skipping frame", "error", err)
		return
	}

	switch {
	case e.time.Dt > 0 && e.menu.Mode() == menu.ModeGame:
		e.DrawGameView()
	default:
		r.SetRenderTarget(r.Offscreen())
		r.SetDepthTarget(r.OffscreenDepth())
		if e.time.Dt > 0 {
			if err := e.menu.Draw(r); err != nil {
				e.log.Warn("failed to draw menu", "error", err)
			}
		}
		e.resolveOffscreen()
	}

	r.EndFrame()
	r.Present()
}

func (e *engine) DrawGameView() {
	r := e.renderer
	r.SetRenderTarget(r.Offscreen())
	r.SetDepthTarget(r.OffscreenDepth())
	r.ClearRenderTarget(skyColor.X, skyColor.Y, skyColor.Z, skyColor.W)

	e.drawGame3D()
	e.drawGame2D()
	e.resolveOffscreen()
}

func (e *engine) drawGame3D() {
	r := e.renderer
	aspect := float32(r.RenderTargetWidth()) / float32(r.RenderTargetHeight())
	r.SetViewToProj(e.camera.ProjectionMatrix(aspect))
	r.SetWorldToView(e.camera.ViewMatrix())
	r.RefreshTransform()

	if e.world != nil {
		e.world.DrawTerrains(r)
	}

	r.SetShader(r.Shaders().Basic3D)
	e.guy.Draw(r)
}

func (e *engine) drawGame2D() {
	r := e.renderer
	if e.fonts == nil {
		return
	}
	r.SetShader(r.Shaders().Text)
	r.Rendering2DRightHanded()

	w, h := r.RenderTargetWidth(), r.RenderTargetHeight()
	f, err := e.fonts.Get(CrosshairFont, int(crosshairSize*float32(h)))
	if err != nil {
		e.log.Warn("failed to load crosshair font", "error", err)
	} else {
		r.DrawText(f, ".", float32(w/2), float32(h/2), common.Vector4{X: 1, Y: 1, Z: 1, W: 1})
	}

	if e.profilingEnabled {
		if err := e.overlay.Draw(r, time.Now()); err != nil {
			e.log.Warn("failed to draw profiler overlay", "error", err)
		}
	}
}

// resolveOffscreen composites the offscreen target onto the back buffer with the resolve shader
// matching its sample count.
func (e *engine) resolveOffscreen() {
	r := e.renderer
	off := r.Offscreen()

	r.SetRenderTarget(r.BackBuffer())
	r.SetDepthTarget(r.BackDepth())
	r.ClearRenderTarget(0, 0, 0, 1)

	r.SetShader(r.Shaders().Resolve(off.SampleCount()))
	r.Rendering2DRightHanded()
	r.SetDiffuseTexture(off)

	w := float32(r.RenderTargetWidth())
	h := float32(r.RenderTargetHeight())
	r.ImmediateBegin()
	r.ImmediateQuad2DUV(
		common.Vector2{}, common.Vector2{X: w}, common.Vector2{X: w, Y: h}, common.Vector2{Y: h},
		common.Vector2{Y: 1}, common.Vector2{X: 1, Y: 1}, common.Vector2{X: 1}, common.Vector2{},
		common.Vector4{X: 1, Y: 1, Z: 1, W: 1},
	)
	r.ImmediateFlush()
}

func (e *engine) UpdateTime(dtMax float32) {
	now := e.now()
	delta := now.Sub(e.lastTime).Seconds()
	dilated := float32(delta * e.timeRate)

	e.time.Dt = min(dilated, dtMax)
	e.time.Now += e.time.Dt
	e.time.RealDt = dilated
	e.time.RealNow += dilated
	e.time.UIDt = float32(delta)
	e.time.UINow += float32(delta)

	e.lastTime = now
}

func nonEmpty(names []string) []string {
	out := names[:0]
	for _, n := range names {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}
