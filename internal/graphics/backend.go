// Package graphics provides the display sinks a session publishes frames to
package graphics

import (
	"fmt"

	"vdpsim/internal/frame"
)

// Backend represents a graphics rendering backend (SDL2, Ebitengine, etc.)
type Backend interface {
	// Initialize initializes the graphics backend
	Initialize(config Config) error

	// CreateWindow creates a window showing frames of the given size
	CreateWindow(title string, width, height int) (Window, error)

	// Cleanup releases all resources
	Cleanup() error

	// IsHeadless returns true if running in headless mode
	IsHeadless() bool

	// GetName returns the backend name for identification
	GetName() string
}

// Window represents a rendering window
type Window interface {
	// SetTitle sets the window title
	SetTitle(title string)

	// GetSize returns the frame dimensions the window was created for
	GetSize() (width, height int)

	// ShouldClose returns true if window should close
	ShouldClose() bool

	// SwapBuffers presents the rendered frame. Backends with a refresh
	// rate block here until the display has shown it.
	SwapBuffers()

	// PollEvents processes input events
	PollEvents() []InputEvent

	// RenderFrame copies a frame into the window. The view is only valid
	// for the duration of the call.
	RenderFrame(v frame.View) error

	// Cleanup releases window resources
	Cleanup() error
}

// Config contains configuration for graphics backends
type Config struct {
	// Window configuration
	WindowTitle  string
	WindowWidth  int
	WindowHeight int
	Fullscreen   bool
	VSync        bool

	// Rendering configuration
	Filter      string // "nearest", "linear"
	AspectRatio string // "keep", "stretch"
	ShowFPS     bool
	RefreshRate int // frames per second for backends without vsync

	// Post-processing, 1.0 is neutral
	Brightness float32
	Contrast   float32
	Saturation float32

	// Snapshots
	SnapshotDir    string
	SnapshotFrames []uint64 // headless only

	// Backend-specific options
	Headless bool
	Debug    bool
}

// InputEvent represents an input event from the window
type InputEvent struct {
	Type    InputEventType
	Key     Key
	Pressed bool
}

// InputEventType represents the type of input event
type InputEventType int

const (
	InputEventTypeKey InputEventType = iota
	InputEventTypeQuit
)

// Key represents keyboard keys
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeyQ
	KeyF11
	KeyF12
)

func (k Key) String() string {
	switch k {
	case KeyEscape:
		return "Escape"
	case KeyQ:
		return "Q"
	case KeyF11:
		return "F11"
	case KeyF12:
		return "F12"
	}
	return "Unknown"
}

// BackendType represents different graphics backend types
type BackendType string

const (
	BackendEbitengine BackendType = "ebitengine"
	BackendSDL        BackendType = "sdl"
	BackendHeadless   BackendType = "headless"
	BackendTerminal   BackendType = "terminal"
)

// BackendTypes lists the backends CreateBackend knows about.
var BackendTypes = []BackendType{BackendEbitengine, BackendSDL, BackendTerminal, BackendHeadless}

// CreateBackend creates a graphics backend of the specified type
func CreateBackend(backendType BackendType) (Backend, error) {
	switch backendType {
	case BackendEbitengine, "":
		return NewEbitengineBackend(), nil
	case BackendSDL:
		return NewSDLBackend(), nil
	case BackendHeadless:
		return NewHeadlessBackend(), nil
	case BackendTerminal:
		return NewTerminalBackend(), nil
	default:
		return nil, &StartupError{
			Backend:  string(backendType),
			Resource: "backend",
			Err:      fmt.Errorf("unknown backend %q", backendType),
		}
	}
}

// StartupError reports a display resource that could not be created. It is
// fatal: the simulation never starts.
type StartupError struct {
	Backend  string
	Resource string
	Err      error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("%s: cannot create %s: %v", e.Backend, e.Resource, e.Err)
}

// Unwrap returns the underlying error.
func (e *StartupError) Unwrap() error {
	return e.Err
}

// Helper type assertion functions

// LoopWindow is a window whose event loop must own the main goroutine.
// Ready is closed once the loop is running and the surface exists; Run
// returns when the loop ends.
type LoopWindow interface {
	Window
	Run() error
	Ready() <-chan struct{}
}

// AsLoopWindow tries to cast a Window to a LoopWindow
func AsLoopWindow(window Window) (LoopWindow, bool) {
	lw, ok := window.(LoopWindow)
	return lw, ok
}

// windowSize returns the window size for a frame: the configured size, or
// the frame size when none is configured.
func (c Config) windowSize(frameWidth, frameHeight int) (int, int) {
	w, h := c.WindowWidth, c.WindowHeight
	if w <= 0 || h <= 0 {
		return frameWidth, frameHeight
	}
	return w, h
}
