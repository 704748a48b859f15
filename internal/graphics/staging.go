package graphics

import (
	"image"
	"sync"

	"github.com/pkg/errors"

	"vdpsim/internal/frame"
)

// ErrFrameSize is returned when a frame does not match the window.
var ErrFrameSize = errors.New("frame size does not match window")

// staging is a window's private copy of the last published frame. Windows
// never hold on to the session's buffer; they copy it here and post-process
// the copy.
type staging struct {
	mu  sync.Mutex
	img *image.RGBA
	vp  *VideoProcessor
}

func newStaging(width, height int, cfg Config) *staging {
	s := &staging{img: image.NewRGBA(image.Rect(0, 0, width, height))}
	if cfg.Brightness != 0 || cfg.Contrast != 0 || cfg.Saturation != 0 {
		s.vp = NewVideoProcessor(orOne(cfg.Brightness), orOne(cfg.Contrast), orOne(cfg.Saturation))
	}
	return s
}

func orOne(v float32) float32 {
	if v == 0 {
		return 1
	}
	return v
}

// load copies v into the staging image.
func (s *staging) load(v frame.View) error {
	b := s.img.Rect
	if v.Width() != b.Dx() || v.Height() != b.Dy() {
		return errors.Wrapf(ErrFrameSize, "got %dx%d, want %dx%d", v.Width(), v.Height(), b.Dx(), b.Dy())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	v.CopyTo(s.img.Pix)
	s.vp.ProcessRGBA(s.img.Pix)
	return nil
}

// with runs f with the staging image locked.
func (s *staging) with(f func(img *image.RGBA)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f(s.img)
}
