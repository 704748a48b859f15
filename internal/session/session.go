// Package session runs a design, its memory and a frame assembler in
// lock-step on a virtual clock and publishes each finished frame.
//
// One Step is one clock phase: advance the clock, evaluate the design,
// evaluate the memory with the same timestamp, feed the read data back,
// ingest the pixel and check the presentation point. The presentation
// point is the first pixel of the line after the last visible line. There
// the user-quit signal is polled and, unless it is set, the frame is
// published to the sink, which blocks until the display refreshes.
package session

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/pkg/errors"

	"vdpsim/internal/clock"
	"vdpsim/internal/frame"
)

// MinResetCycles is the shortest reset the session accepts, in full clock
// cycles.
const MinResetCycles = 2

// Configuration errors.
var (
	ErrResetTooShort   = errors.New("reset must be held for at least two clock cycles")
	ErrInvalidGeometry = errors.New("frame size must be positive")
	ErrNoClock         = errors.New("clock frequency or half period required")
)

// ErrSinkClosed is returned by a Sink whose display closed before the frame
// was shown. The session stops without counting the frame.
var ErrSinkClosed = errors.New("sink closed")

// Config configures a session.
type Config struct {
	Width, Height int
	// Frequency of the design clock. Ignored when HalfPeriod is set.
	Frequency   clock.Freq
	HalfPeriod  clock.Time
	ResetCycles int
}

// State is the presentation state.
type State int

// Presentation states.
const (
	StateScanning State = iota
	StatePublishing
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateScanning:
		return "scanning"
	case StatePublishing:
		return "publishing"
	case StateStopped:
		return "stopped"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Event is what a Step did.
type Event int

// Step results.
const (
	EventNone Event = iota
	EventPublished
	EventStopped
)

// FrameInfo describes a published frame.
type FrameInfo struct {
	Index       uint64
	VirtualTime clock.Time
	Cycles      uint64
	Wall        time.Duration
	Digest      uint64
}

// ContractViolation is returned when the design reports a visible pixel
// outside the frame.
type ContractViolation struct {
	Sample frame.Sample
	Time   clock.Time
	Err    error
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("design contract violation at %v: %v", e.Time, e.Err)
}

// Unwrap returns the underlying error.
func (e *ContractViolation) Unwrap() error { return e.Err }

// Cause returns the underlying error.
func (e *ContractViolation) Cause() error { return e.Err }

// Session drives one simulation run.
type Session struct {
	cfg       Config
	clock     *clock.Clock
	design    Design
	memory    Memory
	sink      Sink
	quit      QuitSignal
	assembler *frame.Assembler
	observers []Observer
	log       *log.Logger
	now       func() time.Time
	ctx       context.Context

	state     State
	armed     bool
	resetDone bool
	frames    uint64
	started   bool
	start     time.Time
	elapsed   time.Duration
}

// Option configures a Session.
type Option func(*Session)

// WithObserver registers an observer for published frames.
func WithObserver(o Observer) Option {
	return func(s *Session) {
		s.observers = append(s.observers, o)
	}
}

// WithLogger sets the session logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		s.log = l
	}
}

// WithNow sets the wall clock used for statistics.
func WithNow(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

type neverQuit struct{}

func (neverQuit) QuitRequested() bool { return false }

// New creates a session. A nil quit signal never requests a quit.
func New(cfg Config, d Design, m Memory, sink Sink, quit QuitSignal, opts ...Option) (*Session, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errors.Wrapf(ErrInvalidGeometry, "%dx%d", cfg.Width, cfg.Height)
	}
	if cfg.ResetCycles < MinResetCycles {
		return nil, errors.Wrapf(ErrResetTooShort, "got %d", cfg.ResetCycles)
	}
	if d == nil || m == nil || sink == nil {
		return nil, errors.New("design, memory and sink are required")
	}

	half := cfg.HalfPeriod
	if half == 0 {
		if cfg.Frequency <= 0 {
			return nil, ErrNoClock
		}
		half = cfg.Frequency.HalfPeriod()
	}
	if quit == nil {
		quit = neverQuit{}
	}

	s := &Session{
		cfg:       cfg,
		clock:     clock.NewWithHalfPeriod(half),
		design:    d,
		memory:    m,
		sink:      sink,
		quit:      quit,
		assembler: frame.NewAssembler(cfg.Width, cfg.Height),
		log:       log.New(os.Stderr, "[SESSION] ", log.LstdFlags),
		now:       time.Now,
		ctx:       context.Background(),
		armed:     true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = log.New(io.Discard, "", 0)
	}
	return s, nil
}

// tick advances one clock phase and keeps the design and the memory in
// lock-step on the same timestamp.
func (s *Session) tick() clock.Time {
	now, phase := s.clock.AdvanceHalfPeriod()
	s.design.SetClock(bool(phase))
	s.design.Eval()
	data := s.memory.Eval(now, s.design.Bus())
	s.design.SetReadData(data)
	return now
}

// Reset holds the design in reset for the configured number of full clock
// cycles, releases it and lets it settle without a clock edge. Nothing is
// sampled or published during reset.
func (s *Session) Reset() {
	s.design.SetReset(true)
	for i := 0; i < 2*s.cfg.ResetCycles; i++ {
		s.tick()
	}
	s.design.SetReset(false)
	s.design.Eval()

	s.resetDone = true
	s.state = StateScanning
}

// Step runs one clock phase.
func (s *Session) Step() (Event, error) {
	if s.state == StateStopped {
		return EventStopped, nil
	}
	if !s.started {
		s.started = true
		s.start = s.now()
	}

	now := s.tick()

	x, y := s.design.Scan()
	c, valid := s.design.Pixel()
	sample := frame.Sample{X: x, Y: y, Color: c, Valid: valid}
	if err := s.assembler.Ingest(sample); err != nil {
		s.stop()
		return EventStopped, &ContractViolation{Sample: sample, Time: now, Err: err}
	}

	if x != 0 || y != s.cfg.Height {
		s.armed = true
		return EventNone, nil
	}
	if !s.armed {
		return EventNone, nil
	}
	s.armed = false
	return s.present(now)
}

func (s *Session) present(now clock.Time) (Event, error) {
	s.state = StatePublishing

	if s.ctx.Err() != nil || s.quit.QuitRequested() {
		s.stop()
		return EventStopped, nil
	}

	view := s.assembler.View()
	if err := s.sink.Publish(view); err != nil {
		s.stop()
		if errors.Is(err, ErrSinkClosed) {
			return EventStopped, nil
		}
		return EventStopped, errors.Wrapf(err, "publish frame %d", s.frames+1)
	}
	s.frames++

	if len(s.observers) > 0 {
		info := FrameInfo{
			Index:       s.frames,
			VirtualTime: now,
			Cycles:      s.clock.Cycles(),
			Wall:        s.now().Sub(s.start),
			Digest:      view.Digest(),
		}
		for _, o := range s.observers {
			o.FramePresented(info)
		}
	}

	s.state = StateScanning
	return EventPublished, nil
}

func (s *Session) stop() {
	s.state = StateStopped
	if s.started {
		s.elapsed = s.now().Sub(s.start)
	}
}

// Run resets the design if needed and steps until the user quits or an
// error occurs. Cancelling ctx counts as a quit request and, like the quit
// signal, only takes effect at the next presentation point.
func (s *Session) Run(ctx context.Context) (Stats, error) {
	s.ctx = ctx
	defer func() { s.ctx = context.Background() }()

	if !s.resetDone {
		s.Reset()
	}
	s.log.Printf("running %dx%d at %v", s.cfg.Width, s.cfg.Height, s.clock.Frequency())

	for {
		ev, err := s.Step()
		if err != nil {
			s.log.Printf("stopped after %d frames: %v", s.frames, err)
			return s.Stats(), err
		}
		if ev == EventStopped {
			s.log.Printf("quit after %d frames", s.frames)
			return s.Stats(), nil
		}
	}
}

// State returns the presentation state.
func (s *Session) State() State {
	return s.state
}

// Frames returns the number of published frames.
func (s *Session) Frames() uint64 {
	return s.frames
}

// Now returns the current virtual time.
func (s *Session) Now() clock.Time {
	return s.clock.Now()
}

// Transitions returns the number of clock phases simulated, reset
// included.
func (s *Session) Transitions() uint64 {
	return s.clock.Transitions()
}

// View returns a read-only view of the frame being assembled.
func (s *Session) View() frame.View {
	return s.assembler.View()
}
