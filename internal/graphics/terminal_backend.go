package graphics

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"os"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/term"

	"vdpsim/internal/frame"
)

// TerminalBackend implements the Backend interface for terminal-based rendering
type TerminalBackend struct {
	initialized bool
	config      Config
}

// TerminalWindow draws frames with 24-bit ANSI colour, two pixels per
// character cell using the upper half block.
type TerminalWindow struct {
	title   string
	width   int
	height  int
	running bool

	out   *bufio.Writer
	stage *staging
	cell  *image.RGBA

	inFd     int
	rawState *term.State
	keys     chan byte

	ticker *time.Ticker
	sizeFn func() (cols, rows int)
}

// NewTerminalBackend creates a new terminal graphics backend
func NewTerminalBackend() Backend {
	return &TerminalBackend{}
}

// Initialize initializes the terminal backend
func (b *TerminalBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("terminal backend already initialized")
	}

	b.config = config
	b.initialized = true

	return nil
}

// CreateWindow puts the terminal in raw mode when stdin is a terminal and
// returns a window drawing to stdout.
func (b *TerminalBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}

	w := newTerminalWindow(title, width, height, b.config, os.Stdout)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return nil, &StartupError{Backend: "terminal", Resource: "raw terminal", Err: err}
		}
		w.inFd, w.rawState = fd, state
		go w.readKeys(os.Stdin)
	}

	outFd := int(os.Stdout.Fd())
	w.sizeFn = func() (int, int) {
		cols, rows, err := term.GetSize(outFd)
		if err != nil {
			return 80, 24
		}
		return cols, rows
	}

	fmt.Fprint(w.out, "\033[?25l\033[2J")
	w.SetTitle(title)
	return w, nil
}

func newTerminalWindow(title string, width, height int, cfg Config, out io.Writer) *TerminalWindow {
	rate := cfg.RefreshRate
	if rate <= 0 {
		rate = 30
	}
	return &TerminalWindow{
		title:   title,
		width:   width,
		height:  height,
		running: true,
		out:     bufio.NewWriter(out),
		stage:   newStaging(width, height, cfg),
		keys:    make(chan byte, 16),
		ticker:  time.NewTicker(time.Second / time.Duration(rate)),
		sizeFn:  func() (int, int) { return 80, 24 },
	}
}

func (w *TerminalWindow) readKeys(r io.Reader) {
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if err != nil {
			return
		}
		if n == 1 {
			select {
			case w.keys <- buf[0]:
			default:
			}
		}
	}
}

// Cleanup releases all terminal resources
func (b *TerminalBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns false (terminal has basic output)
func (b *TerminalBackend) IsHeadless() bool {
	return false
}

// GetName returns the backend name
func (b *TerminalBackend) GetName() string {
	return "Terminal"
}

// TerminalWindow implementation

// SetTitle sets the window title (for terminal title)
func (w *TerminalWindow) SetTitle(title string) {
	w.title = title
	fmt.Fprintf(w.out, "\033]0;%s\007", title)
	w.out.Flush()
}

// GetSize returns the frame dimensions
func (w *TerminalWindow) GetSize() (width, height int) {
	return w.width, w.height
}

// ShouldClose returns true if window should close
func (w *TerminalWindow) ShouldClose() bool {
	return !w.running
}

// SwapBuffers waits for the next tick of the refresh rate
func (w *TerminalWindow) SwapBuffers() {
	if w.running {
		<-w.ticker.C
	}
}

// PollEvents turns pending key presses into events
func (w *TerminalWindow) PollEvents() []InputEvent {
	var events []InputEvent
	for {
		select {
		case k := <-w.keys:
			switch k {
			case 'q', 'Q':
				events = append(events, InputEvent{Type: InputEventTypeKey, Key: KeyQ, Pressed: true})
			case 0x1b:
				events = append(events, InputEvent{Type: InputEventTypeKey, Key: KeyEscape, Pressed: true})
			case 0x03: // Ctrl-C is not delivered as a signal in raw mode
				events = append(events, InputEvent{Type: InputEventTypeQuit, Pressed: true})
			}
		default:
			return events
		}
	}
}

// RenderFrame scales the frame to the terminal and draws it
func (w *TerminalWindow) RenderFrame(v frame.View) error {
	if err := w.stage.load(v); err != nil {
		return err
	}

	cols, rows := w.sizeFn()
	if rows > 1 {
		rows-- // keep the last line free so the terminal does not scroll
	}
	dw, dh := fitAspect(w.width, w.height, cols, rows*2)
	if w.cell == nil || w.cell.Rect.Dx() != dw || w.cell.Rect.Dy() != dh {
		w.cell = image.NewRGBA(image.Rect(0, 0, dw, dh))
	}
	w.stage.with(func(img *image.RGBA) {
		draw.NearestNeighbor.Scale(w.cell, w.cell.Rect, img, img.Rect, draw.Src, nil)
	})

	fmt.Fprint(w.out, "\033[H")
	writeHalfBlocks(w.out, w.cell)
	return w.out.Flush()
}

// writeHalfBlocks renders two image rows per text line.
func writeHalfBlocks(out io.Writer, img *image.RGBA) {
	b := img.Rect
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			top := img.RGBAAt(x, y)
			bottom := top
			if y+1 < b.Max.Y {
				bottom = img.RGBAAt(x, y+1)
			}
			fmt.Fprintf(out, "\033[38;2;%d;%d;%dm\033[48;2;%d;%d;%dm▀",
				top.R, top.G, top.B, bottom.R, bottom.G, bottom.B)
		}
		fmt.Fprint(out, "\033[0m\r\n")
	}
}

// fitAspect returns the largest size with the aspect of w x h that fits in
// maxW x maxH, never smaller than one pixel.
func fitAspect(w, h, maxW, maxH int) (int, int) {
	if maxW*h <= maxH*w {
		h = maxW * h / w
		w = maxW
	} else {
		w = maxH * w / h
		h = maxH
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// Cleanup restores the terminal
func (w *TerminalWindow) Cleanup() error {
	if !w.running {
		return nil
	}
	w.running = false
	w.ticker.Stop()
	fmt.Fprint(w.out, "\033[0m\033[?25h\r\n")
	w.out.Flush()
	if w.rawState != nil {
		return term.Restore(w.inFd, w.rawState)
	}
	return nil
}
