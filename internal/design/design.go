// Package design is a cycle-level model of a video output design with an
// SDRAM-backed frame counter. It exposes the pin-level interface a
// simulation session drives: clock, reset, evaluate, scan position, colour,
// data enable, and the memory bus.
package design

import (
	"github.com/pkg/errors"

	"vdpsim/internal/bus"
	"vdpsim/internal/frame"
)

// Config configures the design.
type Config struct {
	Timing          Timing
	Pattern         Pattern
	Gamma           bool
	CASLatency      int
	RefreshInterval int // pixel clocks between auto refreshes
	PowerUpCycles   int
	Waits           Waits
}

// DefaultConfig returns a 720p gradient design with CAS latency 2 and a
// refresh every 390 clocks, which is inside 7.8us at 60 MHz.
func DefaultConfig() Config {
	return Config{
		Timing:          Timing720p,
		Pattern:         PatternGradient,
		CASLatency:      2,
		RefreshInterval: 390,
		PowerUpCycles:   100,
		Waits:           DefaultWaits(),
	}
}

func (c Config) validate() error {
	if err := c.Timing.Validate(); err != nil {
		return errors.Wrap(err, "invalid timing")
	}
	if _, err := ParsePattern(string(c.Pattern)); err != nil {
		return err
	}
	if c.CASLatency < 1 || c.CASLatency > 3 {
		return errors.Errorf("CAS latency must be 1, 2 or 3, got %d", c.CASLatency)
	}
	if c.RefreshInterval <= 0 {
		return errors.Errorf("refresh interval must be positive, got %d", c.RefreshInterval)
	}
	if c.PowerUpCycles < 0 {
		return errors.Errorf("power-up cycles cannot be negative, got %d", c.PowerUpCycles)
	}
	w := c.Waits
	if w.RCD < 1 || w.RP < 1 || w.RFC < 1 || w.WR < 1 || w.MRD < 1 {
		return errors.Errorf("command waits must be at least one clock: %+v", w)
	}
	return nil
}

// VDP is the design model.
type VDP struct {
	cfg            Config
	hTotal, vTotal int

	clk, prevClk bool
	rst          bool
	readData     uint32

	sx, sy int
	ctl    *controller
}

// New creates a design. The scan counters start on the last position of
// the frame so that the first clock after reset lands on (0, 0).
func New(cfg Config) (*VDP, error) {
	if cfg.Pattern == "" {
		cfg.Pattern = PatternGradient
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	d := &VDP{cfg: cfg}
	d.hTotal, d.vTotal = cfg.Timing.Total()
	d.ctl = newController(controllerConfig{
		waits:           cfg.Waits,
		casLatency:      cfg.CASLatency,
		refreshInterval: cfg.RefreshInterval,
		powerUpCycles:   cfg.PowerUpCycles,
	})
	d.resetCounters()
	return d, nil
}

func (d *VDP) resetCounters() {
	d.sx = d.hTotal - 1
	d.sy = d.vTotal - 1
}

// SetClock drives the pixel clock.
func (d *VDP) SetClock(high bool) { d.clk = high }

// SetReset drives the synchronous reset.
func (d *VDP) SetReset(asserted bool) { d.rst = asserted }

// SetReadData drives the SDRAM data bus towards the design.
func (d *VDP) SetReadData(v uint32) { d.readData = v }

// Eval settles the design. Registers only update on a rising clock edge.
func (d *VDP) Eval() {
	rising := d.clk && !d.prevClk
	d.prevClk = d.clk
	if !rising {
		return
	}

	if d.rst {
		d.resetCounters()
		d.ctl.reset()
		return
	}

	d.sx++
	if d.sx == d.hTotal {
		d.sx = 0
		d.sy++
		if d.sy == d.vTotal {
			d.sy = 0
		}
	}

	frameStart := d.sx == 0 && d.sy == d.cfg.Timing.VActive
	d.ctl.tick(frameStart, d.readData)
}

// Scan returns the current scan position.
func (d *VDP) Scan() (x, y int) {
	return d.sx, d.sy
}

// Pixel returns the colour at the scan position and whether the position
// is inside the visible area.
func (d *VDP) Pixel() (frame.Color, bool) {
	t := d.cfg.Timing
	if d.sx >= t.HActive || d.sy >= t.VActive {
		return frame.Color{}, false
	}

	c := shade(d.cfg.Pattern, t.HActive, d.sx, d.sy, d.ctl.counter)
	if d.cfg.Gamma {
		c.R = correctGamma22(c.R)
		c.G = correctGamma22(c.G)
		c.B = correctGamma22(c.B)
	}
	return c, true
}

// Bus returns the memory bus pins. The memory clock is the inverted pixel
// clock, so the memory samples commands half a cycle after they change.
func (d *VDP) Bus() bus.Signals {
	s := d.ctl.out
	s.Clock.Clk = !d.clk
	return s
}

// Resolution returns the visible area.
func (d *VDP) Resolution() (width, height int) {
	return d.cfg.Timing.HActive, d.cfg.Timing.VActive
}

// FrameCounter returns the frame counter last read back from memory.
func (d *VDP) FrameCounter() uint16 {
	return d.ctl.counter
}

// ControllerState returns the memory controller's state.
func (d *VDP) ControllerState() ControllerState {
	return d.ctl.state
}

// Initialized reports whether the memory power-up sequence has been issued.
func (d *VDP) Initialized() bool {
	return d.ctl.initialized
}
