package session

import (
	"vdpsim/internal/bus"
	"vdpsim/internal/clock"
	"vdpsim/internal/frame"
)

// raster is a minimal design that scans width x height visible pixels with
// two blank columns and one blank line. Pixel colour is (10x, 10y, 0).
type raster struct {
	width, height  int
	hTotal, vTotal int

	clk, prevClk, rst bool
	x, y              int

	// badX, when non-zero, is reported as the x of every visible pixel.
	badX int
}

func newRaster(width, height int) *raster {
	r := &raster{width: width, height: height, hTotal: width + 2, vTotal: height + 1}
	r.home()
	return r
}

func (r *raster) home() {
	r.x, r.y = r.hTotal-1, r.vTotal-1
}

func (r *raster) SetClock(high bool)     { r.clk = high }
func (r *raster) SetReset(asserted bool) { r.rst = asserted }
func (r *raster) SetReadData(uint32)     {}
func (r *raster) Bus() bus.Signals       { return bus.Signals{} }

func (r *raster) Eval() {
	rising := r.clk && !r.prevClk
	r.prevClk = r.clk
	if !rising {
		return
	}
	if r.rst {
		r.home()
		return
	}
	r.x++
	if r.x == r.hTotal {
		r.x = 0
		r.y++
		if r.y == r.vTotal {
			r.y = 0
		}
	}
}

func (r *raster) Scan() (int, int) {
	if r.badX != 0 && r.x < r.width && r.y < r.height {
		return r.badX, r.y
	}
	return r.x, r.y
}

func (r *raster) Pixel() (frame.Color, bool) {
	if r.x >= r.width || r.y >= r.height {
		return frame.Color{}, false
	}
	return frame.Color{R: uint8(10 * r.x), G: uint8(10 * r.y)}, true
}

// clocksPerFrame is the number of full clock cycles in one raster frame.
func (r *raster) clocksPerFrame() int {
	return r.hTotal * r.vTotal
}

type memoryFunc func(ts clock.Time, sig bus.Signals) uint32

func (f memoryFunc) Eval(ts clock.Time, sig bus.Signals) uint32 { return f(ts, sig) }

var idleMemory = memoryFunc(func(clock.Time, bus.Signals) uint32 { return 0 })

type sinkFunc func(v frame.View) error

func (f sinkFunc) Publish(v frame.View) error { return f(v) }

type quitFunc func() bool

func (f quitFunc) QuitRequested() bool { return f() }

// quitAfter requests a quit once n frames have been published.
func quitAfter(s **Session, n uint64) QuitSignal {
	return quitFunc(func() bool { return (*s).Frames() >= n })
}

func testConfig(width, height int) Config {
	return Config{
		Width:       width,
		Height:      height,
		HalfPeriod:  10 * clock.Picosecond,
		ResetCycles: MinResetCycles,
	}
}
