package graphics

import (
	"io"
	"log"

	"github.com/pkg/errors"

	"vdpsim/internal/frame"
	"vdpsim/internal/session"
)

// Display adapts a Window to a frame sink with a quit signal. Publish
// renders and presents one frame; QuitRequested drains window events.
type Display struct {
	window    Window
	snapshots *SnapshotWriter
	log       *log.Logger

	presented    uint64
	quit         bool
	reason       string
	snapshotNext bool
}

// NewDisplay creates a display on window. F12 snapshots go to dir.
func NewDisplay(window Window, dir string, logger *log.Logger) *Display {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Display{
		window:    window,
		snapshots: NewSnapshotWriter(dir),
		log:       logger,
	}
}

// Publish renders v and blocks until the window has presented it. If the
// window closed in the meantime the frame is not counted and
// session.ErrSinkClosed is returned.
func (d *Display) Publish(v frame.View) error {
	if err := d.window.RenderFrame(v); err != nil {
		return errors.Wrap(err, "render frame")
	}
	d.window.SwapBuffers()
	if d.window.ShouldClose() {
		d.requestQuit("window closed")
		return session.ErrSinkClosed
	}
	d.presented++

	if d.snapshotNext {
		d.snapshotNext = false
		name, err := d.snapshots.Write(v, d.presented)
		if err != nil {
			d.log.Printf("snapshot failed: %v", err)
		} else {
			d.log.Printf("snapshot saved to %s", name)
		}
	}
	return nil
}

// QuitRequested handles pending window events and reports whether the user
// asked to quit. Once set it stays set.
func (d *Display) QuitRequested() bool {
	for _, ev := range d.window.PollEvents() {
		switch {
		case ev.Type == InputEventTypeQuit:
			d.requestQuit("window closed")
		case ev.Type == InputEventTypeKey && ev.Pressed:
			switch ev.Key {
			case KeyEscape, KeyQ:
				d.requestQuit(ev.Key.String() + " pressed")
			case KeyF12:
				d.snapshotNext = true
			}
		}
	}
	if d.window.ShouldClose() {
		d.requestQuit("window closed")
	}
	return d.quit
}

func (d *Display) requestQuit(reason string) {
	if !d.quit {
		d.quit = true
		d.reason = reason
		d.log.Printf("quit: %s", reason)
	}
}

// Reason returns why the display asked to quit.
func (d *Display) Reason() string {
	return d.reason
}

// Presented returns the number of frames presented.
func (d *Display) Presented() uint64 {
	return d.presented
}

// Window returns the underlying window.
func (d *Display) Window() Window {
	return d.window
}
