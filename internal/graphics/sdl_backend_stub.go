//go:build headless
// +build headless

package graphics

import "fmt"

var errNoSDL = fmt.Errorf("SDL backend not available in headless build")

// SDLBackend stub for headless builds
type SDLBackend struct{}

// NewSDLBackend creates a stub backend for headless builds
func NewSDLBackend() Backend {
	return &SDLBackend{}
}

func (b *SDLBackend) Initialize(config Config) error {
	return &StartupError{Backend: "sdl", Resource: "video subsystem", Err: errNoSDL}
}

func (b *SDLBackend) CreateWindow(title string, width, height int) (Window, error) {
	return nil, &StartupError{Backend: "sdl", Resource: "window", Err: errNoSDL}
}

func (b *SDLBackend) Cleanup() error { return nil }

func (b *SDLBackend) IsHeadless() bool { return true }

func (b *SDLBackend) GetName() string { return "SDL-Stub" }
