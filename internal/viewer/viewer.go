// Package viewer runs the native window: it owns the window, renderer and
// input, and redraws the scene every frame until the user quits.
package viewer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/smolview/internal/assets"
	"github.com/Faultbox/smolview/internal/config"
	"github.com/Faultbox/smolview/internal/engine/camera"
	"github.com/Faultbox/smolview/internal/engine/debug"
	"github.com/Faultbox/smolview/internal/engine/input"
	"github.com/Faultbox/smolview/internal/engine/lighting"
	"github.com/Faultbox/smolview/internal/engine/renderer"
	"github.com/Faultbox/smolview/internal/engine/texture"
	"github.com/Faultbox/smolview/internal/engine/window"
	"github.com/Faultbox/smolview/internal/logger"
	"github.com/Faultbox/smolview/internal/pipeline"
	"github.com/Faultbox/smolview/internal/scene"
)

// Viewer is the native viewer instance.
type Viewer struct {
	cfg      *config.Config
	pc       *pipeline.Context
	title    string
	opts     scene.Options
	running  bool
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	assets   *assets.Manager
	textures *texture.Library
	controls *Controls
	shots    *debug.Screenshots
}

// Title returns the window title for a loaded structure.
func Title(base string, pc *pipeline.Context) string {
	if pc.Molecule.Description == "" {
		return fmt.Sprintf("%s - %s", base, pc.Molecule.Formula())
	}
	return fmt.Sprintf("%s - %s (%s)", base, pc.Molecule.Description, pc.Molecule.Formula())
}

// New opens the window and uploads the scene in pc.
func New(cfg *config.Config, pc *pipeline.Context) (*Viewer, error) {
	logger.Info("initializing viewer",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
	)

	v := &Viewer{cfg: cfg, pc: pc, opts: pipeline.OptionsFromConfig(cfg).Scene}

	// Window first: it creates the OpenGL context
	var err error
	wcfg := cfg.Window
	v.title = Title(cfg.Window.Title, pc)
	wcfg.Title = v.title
	v.window, err = window.New(wcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	v.assets = assets.NewManager()
	if err := v.assets.AddDir(cfg.Render.TexturesDir); err != nil {
		v.Close()
		return nil, fmt.Errorf("textures: %w", err)
	}
	v.textures = texture.NewLibrary(v.assets, texture.DefaultMaxSize)

	dw, dh := v.window.DrawableSize()
	v.renderer, err = renderer.New(renderer.Config{
		Width:          dw,
		Height:         dh,
		Background:     cfg.Render.Background,
		SphereSegments: cfg.Render.SphereSegments,
		Lights:         lighting.FromConfig(cfg.Render.Light),
	}, v.textures)
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	v.renderer.SetScene(pc.Scene)

	cam := camera.NewTrackball()
	cam.SetViewport(v.window.Size())
	v.controls = NewControls(cam, pc.Scene)
	v.controls.LogLevel = cfg.Logging.Level
	v.input = input.New()
	name := pc.Molecule.Description
	if name == "" {
		name = pc.Molecule.Formula()
	}
	v.shots = debug.NewScreenshots(cfg.Render.ScreenshotDir, name)

	logger.Info("viewer initialized")
	return v, nil
}

// Run redraws until the window is closed, ESC is pressed or ctx is done.
// Vsync paces the loop.
func (v *Viewer) Run(ctx context.Context) error {
	v.running = true

	frameCount := 0
	fpsTimer := time.Now()

	logger.Info("starting render loop")
	for v.running {
		if ctx.Err() != nil {
			break
		}

		// 1. Process input
		if v.input.Update() {
			v.running = false
			break
		}
		for _, e := range v.input.Events() {
			if e.Type == input.EventWindowResize {
				v.resize()
			}
		}

		// 2. Camera and commands
		f := v.controls.Handle(v.input.Events(), v.input.Drag())
		if f.OverlayChanged {
			v.renderer.SetOverlay(v.controls.Overlay())
		}
		if f.SelectionChanged {
			v.updateTitle()
		}
		if f.ToggleBonds {
			v.toggleBonds()
		}

		// 3. Render
		if f.Screenshot {
			v.screenshot()
		}
		v.renderer.Draw(v.controls.Camera)

		// 4. Present
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			logger.Debug("fps", zap.Int("count", frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	logger.Info("render loop stopped")
	return nil
}

// toggleBonds switches between line and cylinder bonds and rebuilds the
// scene from the existing transform.
func (v *Viewer) toggleBonds() {
	if v.opts.BondStyle == scene.BondCylinders {
		v.opts.BondStyle = scene.BondLines
	} else {
		v.opts.BondStyle = scene.BondCylinders
	}
	if err := v.pc.Rebuild(v.opts); err != nil {
		logger.Error("rebuilding scene", zap.Error(err))
		return
	}
	v.renderer.SetScene(v.pc.Scene)
	v.controls.SetScene(v.pc.Scene)
	v.renderer.SetOverlay(v.controls.Overlay())
	logger.Info("bond style changed", zap.String("style", string(v.opts.BondStyle)))
}

func (v *Viewer) updateTitle() {
	if sel := v.controls.Selection(); sel != "" {
		v.window.SetTitle(v.title + " - " + sel)
		return
	}
	v.window.SetTitle(v.title)
}

func (v *Viewer) resize() {
	v.controls.Camera.SetViewport(v.window.Size())
	v.renderer.Resize(v.window.DrawableSize())
}

// screenshot renders the current view offscreen, ScreenshotScale times
// the drawable size.
func (v *Viewer) screenshot() {
	dw, dh := v.window.DrawableSize()
	w, h := dw*v.cfg.Render.ScreenshotScale, dh*v.cfg.Render.ScreenshotScale
	pixels, err := v.renderer.Capture(v.controls.Camera, w, h)
	if err != nil {
		logger.Error("screenshot failed", zap.Error(err))
		return
	}
	path, err := v.shots.SavePixels(pixels, w, h)
	if err != nil {
		logger.Error("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("path", path))
}

// Close releases GL resources and the window.
func (v *Viewer) Close() {
	logger.Info("closing viewer")

	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.textures != nil {
		v.textures.Close()
	}
	if v.assets != nil {
		hits, misses := v.assets.Stats()
		logger.Debug("asset cache", zap.Int("hits", hits), zap.Int("misses", misses))
		v.assets.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
