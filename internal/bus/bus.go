// Package bus defines the external memory bus between a design and its
// SDRAM, and decodes the command pins into SDRAM commands.
package bus

import "fmt"

// Signals is the full pin set a design drives towards its memory.
type Signals struct {
	Clock   ClockSignals
	Command CommandSignals
	Address AddressSignals
	Data    DataSignals
}

// ClockSignals carries the memory clock and clock enable.
type ClockSignals struct {
	Clk bool
	CKE bool
}

// CommandSignals are the active-low command strobes.
type CommandSignals struct {
	CSn  bool
	RASn bool
	CASn bool
	WEn  bool
}

// AddressSignals carries the bank select and the multiplexed row/column
// address.
type AddressSignals struct {
	BA uint8
	A  uint16
}

// DataSignals carries the byte masks and the write data driven by the
// design. Read data flows back separately.
type DataSignals struct {
	DQM uint8
	DQ  uint32
}

// A10 is the auto-precharge bit on READ/WRITE and the all-banks bit on
// PRECHARGE.
const A10 uint16 = 1 << 10

// Command is a decoded SDRAM command.
type Command int

// SDRAM commands in truth-table order.
const (
	CmdInhibit Command = iota
	CmdNop
	CmdActive
	CmdRead
	CmdWrite
	CmdBurstTerminate
	CmdPrecharge
	CmdRefresh
	CmdLoadMode
)

var commandNames = [...]string{
	CmdInhibit:        "INHIBIT",
	CmdNop:            "NOP",
	CmdActive:         "ACTIVE",
	CmdRead:           "READ",
	CmdWrite:          "WRITE",
	CmdBurstTerminate: "BURST_TERMINATE",
	CmdPrecharge:      "PRECHARGE",
	CmdRefresh:        "REFRESH",
	CmdLoadMode:       "LOAD_MODE",
}

func (c Command) String() string {
	if c < 0 || int(c) >= len(commandNames) {
		return fmt.Sprintf("Command(%d)", int(c))
	}
	return commandNames[c]
}

// Decode maps the command pins to a command.
func (s CommandSignals) Decode() Command {
	if s.CSn {
		return CmdInhibit
	}
	switch {
	case s.RASn && s.CASn && s.WEn:
		return CmdNop
	case !s.RASn && s.CASn && s.WEn:
		return CmdActive
	case s.RASn && !s.CASn && s.WEn:
		return CmdRead
	case s.RASn && !s.CASn && !s.WEn:
		return CmdWrite
	case s.RASn && s.CASn && !s.WEn:
		return CmdBurstTerminate
	case !s.RASn && s.CASn && !s.WEn:
		return CmdPrecharge
	case !s.RASn && !s.CASn && s.WEn:
		return CmdRefresh
	default:
		return CmdLoadMode
	}
}

// Encode returns the pin levels for a command.
func Encode(c Command) CommandSignals {
	switch c {
	case CmdInhibit:
		return CommandSignals{CSn: true, RASn: true, CASn: true, WEn: true}
	case CmdActive:
		return CommandSignals{CASn: true, WEn: true}
	case CmdRead:
		return CommandSignals{RASn: true, WEn: true}
	case CmdWrite:
		return CommandSignals{RASn: true}
	case CmdBurstTerminate:
		return CommandSignals{RASn: true, CASn: true}
	case CmdPrecharge:
		return CommandSignals{CASn: true}
	case CmdRefresh:
		return CommandSignals{WEn: true}
	case CmdLoadMode:
		return CommandSignals{}
	default:
		return CommandSignals{RASn: true, CASn: true, WEn: true}
	}
}

// Idle returns a bus with the clock enabled and a NOP on the command pins.
func Idle() Signals {
	return Signals{
		Clock:   ClockSignals{CKE: true},
		Command: Encode(CmdNop),
	}
}
