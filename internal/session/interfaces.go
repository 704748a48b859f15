package session

import (
	"vdpsim/internal/bus"
	"vdpsim/internal/clock"
	"vdpsim/internal/frame"
)

//go:generate mockgen -destination "mock_session_test.go" -package $GOPACKAGE -write_package_comment=false vdpsim/internal/session Design,Memory,Sink,QuitSignal,Observer

// Design is the clocked hardware model being simulated.
type Design interface {
	SetClock(high bool)
	SetReset(asserted bool)
	// Eval settles the design for the current input levels.
	Eval()
	Scan() (x, y int)
	Pixel() (frame.Color, bool)
	Bus() bus.Signals
	SetReadData(v uint32)
}

// Memory is the external memory the design talks to. Eval is called once
// per clock phase with the same time the design was evaluated at and
// returns the level of the data bus.
type Memory interface {
	Eval(ts clock.Time, sig bus.Signals) uint32
}

// Sink receives finished frames. Publish may only read the view and must
// not retain it; it blocks until the display has taken the frame. A sink
// that went away before showing the frame returns ErrSinkClosed.
type Sink interface {
	Publish(v frame.View) error
}

// QuitSignal reports whether the user asked to stop.
type QuitSignal interface {
	QuitRequested() bool
}

// Observer is told about every published frame.
type Observer interface {
	FramePresented(info FrameInfo)
}
