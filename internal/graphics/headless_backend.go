package graphics

import (
	"fmt"
	"log"

	"vdpsim/internal/frame"
)

// HeadlessBackend implements the Backend interface for headless operation
type HeadlessBackend struct {
	initialized bool
	config      Config
}

// HeadlessWindow implements the Window interface for headless operation.
// It does not pace the session.
type HeadlessWindow struct {
	title      string
	width      int
	height     int
	running    bool
	frameCount uint64
	snapshots  *SnapshotWriter
	snapAt     map[uint64]bool
	saved      []string
}

// NewHeadlessBackend creates a new headless graphics backend
func NewHeadlessBackend() Backend {
	return &HeadlessBackend{}
}

// Initialize initializes the headless backend
func (b *HeadlessBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("headless backend already initialized")
	}

	b.config = config
	b.initialized = true

	return nil
}

// CreateWindow creates a headless "window" (no actual window)
func (b *HeadlessBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}

	w := &HeadlessWindow{
		title:     title,
		width:     width,
		height:    height,
		running:   true,
		snapshots: NewSnapshotWriter(b.config.SnapshotDir),
		snapAt:    make(map[uint64]bool),
	}
	for _, n := range b.config.SnapshotFrames {
		w.snapAt[n] = true
	}
	return w, nil
}

// Cleanup releases all headless resources
func (b *HeadlessBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns true (this is a headless backend)
func (b *HeadlessBackend) IsHeadless() bool {
	return true
}

// GetName returns the backend name
func (b *HeadlessBackend) GetName() string {
	return "Headless"
}

// HeadlessWindow implementation

// SetTitle sets the window title (for logging purposes)
func (w *HeadlessWindow) SetTitle(title string) {
	w.title = title
}

// GetSize returns the frame dimensions
func (w *HeadlessWindow) GetSize() (width, height int) {
	return w.width, w.height
}

// ShouldClose returns true if window should close
func (w *HeadlessWindow) ShouldClose() bool {
	return !w.running
}

// SwapBuffers does nothing in headless mode
func (w *HeadlessWindow) SwapBuffers() {}

// PollEvents returns empty events list (no input in headless mode)
func (w *HeadlessWindow) PollEvents() []InputEvent {
	return nil
}

// RenderFrame counts the frame and saves it if it was asked for
func (w *HeadlessWindow) RenderFrame(v frame.View) error {
	if v.Width() != w.width || v.Height() != w.height {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", ErrFrameSize, v.Width(), v.Height(), w.width, w.height)
	}
	w.frameCount++

	if w.snapAt[w.frameCount] {
		name, err := w.snapshots.Write(v, w.frameCount)
		if err != nil {
			return err
		}
		w.saved = append(w.saved, name)
		log.Printf("[Headless] saved frame %d to %s", w.frameCount, name)
	}

	return nil
}

// Cleanup releases window resources
func (w *HeadlessWindow) Cleanup() error {
	w.running = false
	return nil
}

// GetFrameCount returns the number of frames rendered
func (w *HeadlessWindow) GetFrameCount() uint64 {
	return w.frameCount
}

// Saved returns the snapshot files written so far
func (w *HeadlessWindow) Saved() []string {
	return w.saved
}
