//go:build !headless
// +build !headless

package graphics

import (
	"fmt"
	"image"
	"log"
	"runtime"

	"github.com/veandco/go-sdl2/sdl"

	"vdpsim/internal/frame"
)

// SDLBackend implements the Backend interface using SDL2. SDL must be used
// from the thread that initialised it, so the session loop runs on the
// main goroutine with this backend. On macOS that must also be the main
// thread, which cmd/vdpsim locks at init.
type SDLBackend struct {
	initialized bool
	config      Config
}

// SDLWindow renders through a streaming texture. With vsync enabled the
// renderer's Present blocks until the next display refresh.
type SDLWindow struct {
	title   string
	width   int
	height  int
	running bool

	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	stage    *staging
}

// NewSDLBackend creates a new SDL2 graphics backend
func NewSDLBackend() Backend {
	return &SDLBackend{}
}

// Initialize initialises the SDL video subsystem
func (b *SDLBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("SDL backend already initialized")
	}

	runtime.LockOSThread()
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return &StartupError{Backend: "sdl", Resource: "video subsystem", Err: err}
	}

	b.config = config
	b.initialized = true
	return nil
}

// CreateWindow creates a window, a renderer and a streaming texture. Any
// failure is a StartupError and everything created so far is released.
func (b *SDLBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}

	ww, wh := b.config.windowSize(width, height)
	flags := uint32(sdl.WINDOW_SHOWN) | uint32(sdl.WINDOW_RESIZABLE)
	if b.config.Fullscreen {
		flags |= uint32(sdl.WINDOW_FULLSCREEN_DESKTOP)
	}

	w := &SDLWindow{title: title, width: width, height: height, running: true}

	var err error
	w.window, err = sdl.CreateWindow(title, sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED, int32(ww), int32(wh), flags)
	if err != nil {
		return nil, &StartupError{Backend: "sdl", Resource: "window", Err: err}
	}

	rflags := uint32(sdl.RENDERER_ACCELERATED)
	if b.config.VSync {
		rflags |= uint32(sdl.RENDERER_PRESENTVSYNC)
	}
	w.renderer, err = sdl.CreateRenderer(w.window, -1, rflags)
	if err != nil {
		w.Cleanup()
		return nil, &StartupError{Backend: "sdl", Resource: "renderer", Err: err}
	}

	quality := "nearest"
	if b.config.Filter == "linear" {
		quality = "linear"
	}
	sdl.SetHint(sdl.HINT_RENDER_SCALE_QUALITY, quality)
	if b.config.AspectRatio != "stretch" {
		if err := w.renderer.SetLogicalSize(int32(width), int32(height)); err != nil {
			log.Printf("[SDL] logical size: %v", err)
		}
	}

	w.texture, err = w.renderer.CreateTexture(uint32(sdl.PIXELFORMAT_ABGR8888), sdl.TEXTUREACCESS_STREAMING, int32(width), int32(height))
	if err != nil {
		w.Cleanup()
		return nil, &StartupError{Backend: "sdl", Resource: "texture", Err: err}
	}

	w.stage = newStaging(width, height, b.config)
	return w, nil
}

// Cleanup shuts SDL down
func (b *SDLBackend) Cleanup() error {
	if b.initialized {
		sdl.Quit()
		b.initialized = false
	}
	return nil
}

// IsHeadless returns false
func (b *SDLBackend) IsHeadless() bool {
	return false
}

// GetName returns the backend name
func (b *SDLBackend) GetName() string {
	return "SDL"
}

// SDLWindow implementation

// SetTitle sets the window title
func (w *SDLWindow) SetTitle(title string) {
	w.title = title
	if w.window != nil {
		w.window.SetTitle(title)
	}
}

// GetSize returns the frame dimensions
func (w *SDLWindow) GetSize() (width, height int) {
	return w.width, w.height
}

// ShouldClose returns true if window should close
func (w *SDLWindow) ShouldClose() bool {
	return !w.running
}

// SwapBuffers presents the renderer, waiting for vsync when enabled
func (w *SDLWindow) SwapBuffers() {
	if w.renderer != nil {
		w.renderer.Present()
	}
}

// PollEvents drains the SDL event queue
func (w *SDLWindow) PollEvents() []InputEvent {
	var events []InputEvent
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch ev := event.(type) {
		case *sdl.QuitEvent:
			w.running = false
			events = append(events, InputEvent{Type: InputEventTypeQuit, Pressed: true})
		case *sdl.KeyboardEvent:
			if ev.Type != sdl.KEYDOWN || ev.Repeat != 0 {
				continue
			}
			key := KeyUnknown
			switch ev.Keysym.Sym {
			case sdl.K_ESCAPE:
				key = KeyEscape
			case sdl.K_q:
				key = KeyQ
			case sdl.K_F11:
				key = KeyF11
				w.toggleFullscreen()
			case sdl.K_F12:
				key = KeyF12
			}
			if key != KeyUnknown {
				events = append(events, InputEvent{Type: InputEventTypeKey, Key: key, Pressed: true})
			}
		}
	}
	return events
}

func (w *SDLWindow) toggleFullscreen() {
	if w.window.GetFlags()&uint32(sdl.WINDOW_FULLSCREEN_DESKTOP) != 0 {
		w.window.SetFullscreen(0)
	} else {
		w.window.SetFullscreen(uint32(sdl.WINDOW_FULLSCREEN_DESKTOP))
	}
}

// RenderFrame uploads the frame to the texture and copies it to the
// renderer
func (w *SDLWindow) RenderFrame(v frame.View) error {
	if err := w.stage.load(v); err != nil {
		return err
	}

	var uploadErr error
	w.stage.with(func(img *image.RGBA) {
		pixels, pitch, err := w.texture.Lock(nil)
		if err != nil {
			uploadErr = err
			return
		}
		for y := 0; y < w.height; y++ {
			copy(pixels[y*pitch:y*pitch+w.width*4], img.Pix[y*img.Stride:])
		}
		w.texture.Unlock()
	})
	if uploadErr != nil {
		return fmt.Errorf("texture upload: %w", uploadErr)
	}

	if err := w.renderer.Clear(); err != nil {
		return err
	}
	return w.renderer.Copy(w.texture, nil, nil)
}

// Cleanup destroys the texture, renderer and window
func (w *SDLWindow) Cleanup() error {
	w.running = false
	if w.texture != nil {
		w.texture.Destroy()
		w.texture = nil
	}
	if w.renderer != nil {
		w.renderer.Destroy()
		w.renderer = nil
	}
	if w.window != nil {
		w.window.Destroy()
		w.window = nil
	}
	return nil
}
