//go:build !headless
// +build !headless

package graphics

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"vdpsim/internal/frame"
)

// EbitengineBackend implements the Backend interface using Ebitengine
type EbitengineBackend struct {
	initialized bool
	config      Config
	game        *EbitengineGame
}

// EbitengineWindow implements the Window interface for Ebitengine.
//
// Ebitengine owns the main goroutine: Run must be called from it, and the
// session runs on another goroutine. RenderFrame stages a copy of the frame
// and SwapBuffers blocks until Draw has put it on screen.
type EbitengineWindow struct {
	backend *EbitengineBackend
	title   string
	width   int
	height  int
	game    *EbitengineGame
	running atomic.Bool

	eventsMu sync.Mutex
	events   []InputEvent

	vsync     chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	ready     chan struct{}
	readyOnce sync.Once
}

// EbitengineGame implements ebiten.Game
type EbitengineGame struct {
	window       *EbitengineWindow
	stage        *staging
	fresh        bool // guarded by stage.mu
	frameImage   *ebiten.Image
	frameWidth   int
	frameHeight  int
	windowWidth  int
	windowHeight int
	filter       ebiten.Filter
	stretch      bool
	showFPS      bool
	fullscreen   bool
	drawCount    int
}

// NewEbitengineBackend creates a new Ebitengine graphics backend
func NewEbitengineBackend() Backend {
	return &EbitengineBackend{}
}

// Initialize initializes the Ebitengine backend
func (b *EbitengineBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("Ebitengine backend already initialized")
	}

	b.config = config
	b.initialized = true

	return nil
}

// CreateWindow creates an Ebitengine window for frames of width x height
func (b *EbitengineBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}

	if b.config.Headless {
		return nil, &StartupError{Backend: "ebitengine", Resource: "window", Err: fmt.Errorf("cannot create window in headless mode")}
	}
	if width <= 0 || height <= 0 {
		return nil, &StartupError{Backend: "ebitengine", Resource: "frame image", Err: fmt.Errorf("invalid size %dx%d", width, height)}
	}

	ww, wh := b.config.windowSize(width, height)
	game := &EbitengineGame{
		stage:        newStaging(width, height, b.config),
		frameWidth:   width,
		frameHeight:  height,
		windowWidth:  ww,
		windowHeight: wh,
		filter:       ebiten.FilterNearest,
		stretch:      b.config.AspectRatio == "stretch",
		showFPS:      b.config.ShowFPS,
		fullscreen:   b.config.Fullscreen,
	}
	if b.config.Filter == "linear" {
		game.filter = ebiten.FilterLinear
	}

	window := &EbitengineWindow{
		backend: b,
		title:   title,
		width:   width,
		height:  height,
		game:    game,
		vsync:   make(chan struct{}, 1),
		done:    make(chan struct{}),
		ready:   make(chan struct{}),
	}
	window.running.Store(true)

	game.window = window
	b.game = game

	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(ww, wh)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetVsyncEnabled(b.config.VSync)
	if b.config.Fullscreen {
		ebiten.SetFullscreen(true)
	}

	return window, nil
}

// Cleanup releases all Ebitengine resources
func (b *EbitengineBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns true if running in headless mode
func (b *EbitengineBackend) IsHeadless() bool {
	return b.config.Headless
}

// GetName returns the backend name
func (b *EbitengineBackend) GetName() string {
	return "Ebitengine"
}

// EbitengineWindow implementation

// SetTitle sets the window title
func (w *EbitengineWindow) SetTitle(title string) {
	w.title = title
	ebiten.SetWindowTitle(title)
}

// GetSize returns the frame dimensions
func (w *EbitengineWindow) GetSize() (width, height int) {
	return w.width, w.height
}

// ShouldClose returns true if window should close
func (w *EbitengineWindow) ShouldClose() bool {
	return !w.running.Load()
}

// SwapBuffers blocks until Draw has shown the staged frame or the window
// has gone away.
func (w *EbitengineWindow) SwapBuffers() {
	select {
	case <-w.vsync:
	case <-w.done:
	}
}

// PollEvents returns the events gathered by Update since the last call
func (w *EbitengineWindow) PollEvents() []InputEvent {
	w.eventsMu.Lock()
	defer w.eventsMu.Unlock()
	events := w.events
	w.events = nil
	return events
}

func (w *EbitengineWindow) pushEvents(events ...InputEvent) {
	w.eventsMu.Lock()
	w.events = append(w.events, events...)
	w.eventsMu.Unlock()
}

// RenderFrame stages a copy of the frame for the next Draw
func (w *EbitengineWindow) RenderFrame(v frame.View) error {
	if w.game == nil {
		return fmt.Errorf("game not initialized")
	}
	if err := w.game.stage.load(v); err != nil {
		return err
	}
	w.game.stage.with(func(*image.RGBA) {
		w.game.fresh = true
	})
	return nil
}

// Cleanup stops the game loop and releases a blocked SwapBuffers
func (w *EbitengineWindow) Cleanup() error {
	w.running.Store(false)
	w.closeOnce.Do(func() { close(w.done) })
	return nil
}

// Ready is closed by the first Update, once RunGame has created the window.
func (w *EbitengineWindow) Ready() <-chan struct{} {
	return w.ready
}

// Run starts the Ebitengine game loop. It returns once the window is
// closed or Cleanup is called.
func (w *EbitengineWindow) Run() error {
	if w.game == nil {
		return fmt.Errorf("game not initialized")
	}
	defer w.Cleanup()

	if err := ebiten.RunGame(w.game); err != nil {
		return fmt.Errorf("ebitengine game loop: %w", err)
	}
	return nil
}

// EbitengineGame implementation

// Update implements ebiten.Game.Update
func (g *EbitengineGame) Update() error {
	if g.window == nil {
		return nil
	}

	if ebiten.IsWindowBeingClosed() {
		g.window.pushEvents(InputEvent{Type: InputEventTypeQuit, Pressed: true})
		g.window.Cleanup()
		return ebiten.Termination
	}
	if !g.window.running.Load() {
		return ebiten.Termination
	}
	g.window.readyOnce.Do(func() { close(g.window.ready) })

	g.processInput()
	return nil
}

// Draw implements ebiten.Game.Draw
func (g *EbitengineGame) Draw(screen *ebiten.Image) {
	if g.frameImage == nil {
		g.frameImage = ebiten.NewImage(g.frameWidth, g.frameHeight)
	}

	presented := false
	g.stage.with(func(img *image.RGBA) {
		if g.fresh {
			g.frameImage.WritePixels(img.Pix)
			g.fresh = false
			presented = true
		}
	})

	screen.Fill(color.RGBA{R: 0, G: 0, B: 0, A: 255})

	op := &ebiten.DrawImageOptions{Filter: g.filter}
	scaleX := float64(g.windowWidth) / float64(g.frameWidth)
	scaleY := float64(g.windowHeight) / float64(g.frameHeight)
	if g.stretch {
		op.GeoM.Scale(scaleX, scaleY)
	} else {
		scale := scaleX
		if scaleY < scaleX {
			scale = scaleY
		}
		offsetX := (float64(g.windowWidth) - float64(g.frameWidth)*scale) / 2
		offsetY := (float64(g.windowHeight) - float64(g.frameHeight)*scale) / 2
		op.GeoM.Scale(scale, scale)
		op.GeoM.Translate(offsetX, offsetY)
	}
	screen.DrawImage(g.frameImage, op)

	if g.showFPS {
		text.Draw(screen, fmt.Sprintf("%.1f FPS", ebiten.ActualFPS()), basicfont.Face7x13, 4, 14, color.White)
	}

	g.drawCount++
	if g.drawCount%3600 == 0 {
		log.Printf("[Ebitengine] Drawing frame %d - %dx%d in %dx%d",
			g.drawCount, g.frameWidth, g.frameHeight, g.windowWidth, g.windowHeight)
	}

	if presented {
		select {
		case g.window.vsync <- struct{}{}:
		default:
		}
	}
}

// Layout implements ebiten.Game.Layout
func (g *EbitengineGame) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	g.windowWidth = outsideWidth
	g.windowHeight = outsideHeight
	return outsideWidth, outsideHeight
}

var ebitenKeys = map[ebiten.Key]Key{
	ebiten.KeyEscape: KeyEscape,
	ebiten.KeyQ:      KeyQ,
	ebiten.KeyF11:    KeyF11,
	ebiten.KeyF12:    KeyF12,
}

// processInput turns key presses into events for PollEvents
func (g *EbitengineGame) processInput() {
	var events []InputEvent
	for ek, key := range ebitenKeys {
		if inpututil.IsKeyJustPressed(ek) {
			events = append(events, InputEvent{Type: InputEventTypeKey, Key: key, Pressed: true})
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		g.fullscreen = !g.fullscreen
		ebiten.SetFullscreen(g.fullscreen)
	}

	if len(events) > 0 {
		g.window.pushEvents(events...)
	}
}
