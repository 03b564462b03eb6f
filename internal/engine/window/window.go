// Package window opens the SDL2 window the viewer draws into and owns its
// OpenGL 4.1 core context.
package window

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/smolview/internal/config"
	"github.com/Faultbox/smolview/internal/logger"
)

func init() {
	// OpenGL calls must be made from the main thread
	runtime.LockOSThread()
}

// Samples is the multisample count tried first. Drivers that refuse it
// get a window without multisampling.
const Samples = 4

type glAttr struct {
	name  sdl.GLattr
	value int
}

// contextAttributes lists the attributes set before the window is
// created. samples below 2 disables multisampling.
func contextAttributes(samples int) []glAttr {
	buffers := 1
	if samples < 2 {
		buffers, samples = 0, 0
	}
	return []glAttr{
		{sdl.GL_CONTEXT_MAJOR_VERSION, 4},
		{sdl.GL_CONTEXT_MINOR_VERSION, 1},
		{sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE},
		{sdl.GL_DOUBLEBUFFER, 1},
		{sdl.GL_DEPTH_SIZE, 24},
		{sdl.GL_MULTISAMPLEBUFFERS, buffers},
		{sdl.GL_MULTISAMPLESAMPLES, samples},
	}
}

func windowFlags(cfg config.WindowConfig) uint32 {
	flags := uint32(sdl.WINDOW_OPENGL | sdl.WINDOW_RESIZABLE | sdl.WINDOW_ALLOW_HIGHDPI)
	if cfg.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN_DESKTOP
	}
	return flags
}

// Window is the SDL window and its GL context.
type Window struct {
	sdlWindow *sdl.Window
	glContext sdl.GLContext
	samples   int
}

// New initializes SDL and opens the window.
func New(cfg config.WindowConfig) (*Window, error) {
	logger.Info("initializing SDL2")
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("SDL_Init failed: %w", err)
	}

	w := &Window{}
	var errs []error
	for _, samples := range []int{Samples, 0} {
		err := w.open(cfg, samples)
		if err == nil {
			w.samples = samples
			break
		}
		logger.Warn("opening window failed", zap.Int("samples", samples), zap.Error(err))
		errs = append(errs, err)
	}
	if w.sdlWindow == nil {
		sdl.Quit()
		return nil, errors.Join(errs...)
	}

	w.setSwapInterval(cfg.VSync)

	logger.Info("window created",
		zap.String("title", cfg.Title),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Bool("fullscreen", cfg.Fullscreen),
		zap.Bool("vsync", cfg.VSync),
		zap.Int("samples", w.samples),
	)
	return w, nil
}

func (w *Window) open(cfg config.WindowConfig, samples int) error {
	for _, a := range contextAttributes(samples) {
		if err := sdl.GLSetAttribute(a.name, a.value); err != nil {
			return fmt.Errorf("SDL_GL_SetAttribute(%d): %w", a.name, err)
		}
	}

	win, err := sdl.CreateWindow(cfg.Title, sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(cfg.Width), int32(cfg.Height), windowFlags(cfg))
	if err != nil {
		return fmt.Errorf("SDL_CreateWindow failed: %w", err)
	}
	ctx, err := win.GLCreateContext()
	if err != nil {
		win.Destroy()
		return fmt.Errorf("SDL_GL_CreateContext failed: %w", err)
	}
	w.sdlWindow, w.glContext = win, ctx
	return nil
}

// setSwapInterval tries adaptive vsync first, then plain vsync.
func (w *Window) setSwapInterval(vsync bool) {
	if !vsync {
		sdl.GLSetSwapInterval(0)
		return
	}
	if err := sdl.GLSetSwapInterval(-1); err == nil {
		return
	}
	if err := sdl.GLSetSwapInterval(1); err != nil {
		logger.Warn("failed to enable VSync", zap.Error(err))
	}
}

// Close destroys the context and window and shuts SDL down.
func (w *Window) Close() {
	logger.Info("closing window")
	if w.glContext != nil {
		sdl.GLDeleteContext(w.glContext)
	}
	if w.sdlWindow != nil {
		w.sdlWindow.Destroy()
	}
	sdl.Quit()
}

func (w *Window) SwapBuffers() {
	w.sdlWindow.GLSwap()
}

// Size returns the window size in screen coordinates, the space mouse
// events are reported in.
func (w *Window) Size() (int, int) {
	width, height := w.sdlWindow.GetSize()
	return int(width), int(height)
}

// DrawableSize returns the framebuffer size in pixels. It differs from
// Size on high-DPI displays.
func (w *Window) DrawableSize() (int, int) {
	width, height := w.sdlWindow.GLGetDrawableSize()
	return int(width), int(height)
}

func (w *Window) SetTitle(title string) {
	w.sdlWindow.SetTitle(title)
}
