package design

import (
	"github.com/pkg/errors"
)

// Timing describes a video mode in pixel clocks and lines.
type Timing struct {
	HActive     int `json:"h_active"`
	HFrontPorch int `json:"h_front_porch"`
	HSync       int `json:"h_sync"`
	HBackPorch  int `json:"h_back_porch"`
	VActive     int `json:"v_active"`
	VFrontPorch int `json:"v_front_porch"`
	VSync       int `json:"v_sync"`
	VBackPorch  int `json:"v_back_porch"`
}

// Common modes.
var (
	Timing720p = Timing{
		HActive: 1280, HFrontPorch: 110, HSync: 40, HBackPorch: 220,
		VActive: 720, VFrontPorch: 5, VSync: 5, VBackPorch: 20,
	}
	Timing480p = Timing{
		HActive: 640, HFrontPorch: 16, HSync: 96, HBackPorch: 48,
		VActive: 480, VFrontPorch: 10, VSync: 2, VBackPorch: 33,
	}
)

// Total returns the full line length and frame height including blanking.
func (t Timing) Total() (h, v int) {
	return t.HActive + t.HFrontPorch + t.HSync + t.HBackPorch,
		t.VActive + t.VFrontPorch + t.VSync + t.VBackPorch
}

// Validate checks that the mode has a visible area and a vertical blanking
// interval. The presentation point is the first pixel of the line after the
// last visible one, so at least one blank line is required.
func (t Timing) Validate() error {
	if t.HActive <= 0 || t.VActive <= 0 {
		return errors.Errorf("active area %dx%d must be positive", t.HActive, t.VActive)
	}
	if t.HFrontPorch < 0 || t.HSync < 0 || t.HBackPorch < 0 ||
		t.VFrontPorch < 0 || t.VSync < 0 || t.VBackPorch < 0 {
		return errors.New("porch and sync widths cannot be negative")
	}
	_, v := t.Total()
	if v == t.VActive {
		return errors.New("mode needs at least one blank line")
	}
	return nil
}
