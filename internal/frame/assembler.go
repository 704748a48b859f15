package frame

import (
	"github.com/pkg/errors"
)

// ErrOutOfBounds is returned when a valid sample lies outside the frame.
var ErrOutOfBounds = errors.New("pixel sample out of bounds")

// Assembler writes valid samples into a single frame buffer. Samples carry
// no frame tag: the last write to a position wins.
type Assembler struct {
	buf     *Buffer
	written uint64
}

// NewAssembler creates an assembler backed by a width x height buffer.
func NewAssembler(width, height int) *Assembler {
	return &Assembler{buf: NewBuffer(width, height)}
}

// Ingest stores a valid sample. Invalid samples are ignored. A valid sample
// outside the buffer is never clamped: it yields an error wrapping
// ErrOutOfBounds.
func (a *Assembler) Ingest(s Sample) error {
	if !s.Valid {
		return nil
	}
	if !a.buf.Contains(s.X, s.Y) {
		return errors.Wrapf(ErrOutOfBounds, "(%d,%d) outside %dx%d",
			s.X, s.Y, a.buf.Width(), a.buf.Height())
	}
	a.buf.set(s.X, s.Y, s.Color)
	a.written++
	return nil
}

// View returns a read-only view of the frame buffer.
func (a *Assembler) View() View {
	return a.buf.View()
}

// Buffer returns the underlying frame buffer.
func (a *Assembler) Buffer() *Buffer {
	return a.buf
}

// Written returns the number of valid samples stored since creation.
func (a *Assembler) Written() uint64 {
	return a.written
}
