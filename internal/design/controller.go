package design

import (
	"vdpsim/internal/bus"
)

// Waits holds the controller's command spacing in pixel clocks. A wait of n
// means the next command goes out n clocks after the previous one.
type Waits struct {
	RCD int `json:"rcd"` // ACTIVE to READ/WRITE
	RP  int `json:"rp"`  // PRECHARGE to ACTIVE/REFRESH
	RFC int `json:"rfc"` // REFRESH to anything
	WR  int `json:"wr"`  // WRITE to PRECHARGE
	MRD int `json:"mrd"` // LOAD MODE to anything
}

// DefaultWaits are safe for a -7 part up to 60 MHz.
func DefaultWaits() Waits {
	return Waits{RCD: 2, RP: 2, RFC: 5, WR: 2, MRD: 2}
}

// ControllerState is the state of the memory controller.
type ControllerState int

// Controller states.
const (
	StatePowerUp ControllerState = iota
	StateInitRefresh1
	StateInitRefresh2
	StateLoadMode
	StateIdle
	StateRead
	StateCapture
	StatePrecharge
)

func (s ControllerState) String() string {
	switch s {
	case StatePowerUp:
		return "power-up"
	case StateInitRefresh1, StateInitRefresh2:
		return "init-refresh"
	case StateLoadMode:
		return "load-mode"
	case StateIdle:
		return "idle"
	case StateRead:
		return "read"
	case StateCapture:
		return "capture"
	case StatePrecharge:
		return "precharge"
	}
	return "unknown"
}

// controller owns the SDRAM. After power-up it keeps the device refreshed
// and, once per frame, increments the frame counter word in place.
type controller struct {
	cfg controllerConfig

	state       ControllerState
	wait        int
	initialized bool
	refreshDue  int
	rmwPending  bool
	counter     uint16

	out bus.Signals
}

type controllerConfig struct {
	waits           Waits
	casLatency      int
	refreshInterval int
	powerUpCycles   int
	bank            uint8
	row             uint16
	col             uint16
}

func newController(cfg controllerConfig) *controller {
	c := &controller{cfg: cfg}
	c.reset()
	return c
}

func (c *controller) reset() {
	c.state = StatePowerUp
	c.wait = c.cfg.powerUpCycles
	c.initialized = false
	c.refreshDue = 0
	c.rmwPending = false
	c.counter = 0
	c.out = bus.Signals{Command: bus.Encode(bus.CmdNop)}
}

func (c *controller) issue(cmd bus.Command, ba uint8, a uint16, dq uint32) {
	c.out.Command = bus.Encode(cmd)
	c.out.Address = bus.AddressSignals{BA: ba, A: a}
	c.out.Data = bus.DataSignals{DQ: dq}
}

func (c *controller) then(next ControllerState, wait int) {
	c.state = next
	if wait < 1 {
		wait = 1
	}
	c.wait = wait - 1
}

// tick advances the controller by one rising edge. readData is the level
// of the data bus sampled at this edge.
func (c *controller) tick(frameStart bool, readData uint32) {
	c.issue(bus.CmdNop, 0, 0, 0)
	c.out.Clock.CKE = true

	if c.initialized {
		c.refreshDue++
		if frameStart {
			c.rmwPending = true
		}
	}

	if c.wait > 0 {
		c.wait--
		return
	}

	w := c.cfg.waits
	switch c.state {
	case StatePowerUp:
		c.issue(bus.CmdPrecharge, 0, bus.A10, 0)
		c.then(StateInitRefresh1, w.RP)
	case StateInitRefresh1:
		c.issue(bus.CmdRefresh, 0, 0, 0)
		c.then(StateInitRefresh2, w.RFC)
	case StateInitRefresh2:
		c.issue(bus.CmdRefresh, 0, 0, 0)
		c.then(StateLoadMode, w.RFC)
	case StateLoadMode:
		// Sequential bursts of one, programmed CAS latency.
		c.issue(bus.CmdLoadMode, 0, uint16(c.cfg.casLatency)<<4, 0)
		c.initialized = true
		c.then(StateIdle, w.MRD)
	case StateIdle:
		switch {
		case c.refreshDue >= c.cfg.refreshInterval:
			c.refreshDue = 0
			c.issue(bus.CmdRefresh, 0, 0, 0)
			c.then(StateIdle, w.RFC)
		case c.rmwPending:
			c.issue(bus.CmdActive, c.cfg.bank, c.cfg.row, 0)
			c.then(StateRead, w.RCD)
		}
	case StateRead:
		c.issue(bus.CmdRead, c.cfg.bank, c.cfg.col, 0)
		c.then(StateCapture, c.cfg.casLatency+1)
	case StateCapture:
		c.counter = uint16(readData) + 1
		c.issue(bus.CmdWrite, c.cfg.bank, c.cfg.col, uint32(c.counter))
		c.then(StatePrecharge, w.WR)
	case StatePrecharge:
		c.issue(bus.CmdPrecharge, c.cfg.bank, 0, 0)
		c.rmwPending = false
		c.then(StateIdle, w.RP)
	}
}
