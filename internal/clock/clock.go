// Package clock provides the virtual time base that drives a simulation.
//
// Time is counted in picoseconds and only ever advances by a fixed
// half-period. Every component that observes time in a session observes the
// same value, so replaying a session always produces the same timestamps.
package clock

import (
	"fmt"
	"log"
	"math"
)

// Time is a virtual timestamp in picoseconds.
type Time uint64

// Picoseconds per unit.
const (
	Picosecond  Time = 1
	Nanosecond  Time = 1000
	Microsecond Time = 1000 * Nanosecond
	Millisecond Time = 1000 * Microsecond
	Second      Time = 1000 * Millisecond
)

// Seconds returns the time as floating point seconds.
func (t Time) Seconds() float64 {
	return float64(t) / float64(Second)
}

func (t Time) String() string {
	return fmt.Sprintf("%dps", uint64(t))
}

// Freq defines the type of frequency
type Freq float64

// Defines the unit of frequency
const (
	Hz  Freq = 1
	KHz Freq = 1e3
	MHz Freq = 1e6
	GHz Freq = 1e9
)

// HalfPeriod returns the time between two consecutive clock edges, rounded
// up to the next whole picosecond. 60 MHz gives 8334 ps.
func (f Freq) HalfPeriod() Time {
	if f <= 0 || math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
		log.Panic("frequency must be positive")
	}
	return Time(math.Ceil(float64(Second) / (2 * float64(f))))
}

// Period returns the time of one full cycle.
func (f Freq) Period() Time {
	return 2 * f.HalfPeriod()
}

func (f Freq) String() string {
	switch {
	case f >= GHz:
		return fmt.Sprintf("%.3f GHz", float64(f/GHz))
	case f >= MHz:
		return fmt.Sprintf("%.3f MHz", float64(f/MHz))
	case f >= KHz:
		return fmt.Sprintf("%.3f kHz", float64(f/KHz))
	}
	return fmt.Sprintf("%.0f Hz", float64(f))
}

// Phase is the level of the clock signal.
type Phase bool

// Clock levels.
const (
	Low  Phase = false
	High Phase = true
)

func (p Phase) String() string {
	if p == High {
		return "high"
	}
	return "low"
}

// Clock is a half-period virtual clock. The zero phase is Low, so the first
// transition is a rising edge.
type Clock struct {
	now         Time
	halfPeriod  Time
	phase       Phase
	transitions uint64
}

// New creates a clock ticking at the given frequency.
func New(f Freq) *Clock {
	return NewWithHalfPeriod(f.HalfPeriod())
}

// NewWithHalfPeriod creates a clock with an explicit half-period.
func NewWithHalfPeriod(halfPeriod Time) *Clock {
	if halfPeriod == 0 {
		log.Panic("half period cannot be 0")
	}
	return &Clock{halfPeriod: halfPeriod}
}

// AdvanceHalfPeriod moves virtual time forward by one half-period and flips
// the phase. It returns the new time and the new phase.
func (c *Clock) AdvanceHalfPeriod() (Time, Phase) {
	c.now += c.halfPeriod
	c.phase = !c.phase
	c.transitions++
	return c.now, c.phase
}

// Now returns the current virtual time.
func (c *Clock) Now() Time {
	return c.now
}

// Phase returns the current clock level.
func (c *Clock) Phase() Phase {
	return c.phase
}

// HalfPeriod returns the fixed advance per transition.
func (c *Clock) HalfPeriod() Time {
	return c.halfPeriod
}

// Transitions returns the number of phase transitions so far.
func (c *Clock) Transitions() uint64 {
	return c.transitions
}

// Cycles returns the number of completed full cycles.
func (c *Clock) Cycles() uint64 {
	return c.transitions / 2
}

// Frequency returns the effective frequency derived from the half-period.
func (c *Clock) Frequency() Freq {
	return Freq(float64(Second) / float64(2*c.halfPeriod))
}
