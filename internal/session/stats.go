package session

import (
	"time"

	"vdpsim/internal/clock"
)

// Stats summarises a session.
type Stats struct {
	Frames      uint64
	Cycles      uint64
	VirtualTime clock.Time
	Duration    time.Duration
}

// FPS returns the average number of published frames per wall-clock
// second.
func (s Stats) FPS() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Frames) / s.Duration.Seconds()
}

// SpeedRatio returns simulated time over wall time.
func (s Stats) SpeedRatio() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return s.VirtualTime.Seconds() / s.Duration.Seconds()
}

// Stats returns the statistics so far. Duration stops counting when the
// session stops.
func (s *Session) Stats() Stats {
	st := Stats{
		Frames:      s.frames,
		Cycles:      s.clock.Cycles(),
		VirtualTime: s.clock.Now(),
	}
	switch {
	case s.state == StateStopped:
		st.Duration = s.elapsed
	case s.started:
		st.Duration = s.now().Sub(s.start)
	}
	return st
}
