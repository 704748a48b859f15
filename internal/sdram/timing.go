package sdram

import (
	"fmt"

	"vdpsim/internal/clock"
)

// Timing holds the device's AC parameters. Durations are checked against
// the timestamps passed to Eval; TMRD is counted in memory clock edges.
type Timing struct {
	TRCD  clock.Time // ACTIVE to READ/WRITE
	TRP   clock.Time // PRECHARGE to ACTIVE/REFRESH
	TRAS  clock.Time // ACTIVE to PRECHARGE
	TRC   clock.Time // ACTIVE to ACTIVE, same bank
	TRFC  clock.Time // REFRESH to any command
	TWR   clock.Time // last write data to PRECHARGE
	TREFI clock.Time // average refresh interval
	TMRD  int        // LOAD MODE to any command, in clocks
}

// DefaultTiming returns the parameters of a -7 speed grade, 8192-row part.
func DefaultTiming() Timing {
	return Timing{
		TRCD:  15 * clock.Nanosecond,
		TRP:   15 * clock.Nanosecond,
		TRAS:  37 * clock.Nanosecond,
		TRC:   60 * clock.Nanosecond,
		TRFC:  66 * clock.Nanosecond,
		TWR:   14 * clock.Nanosecond,
		TREFI: 64 * clock.Millisecond / 8192,
		TMRD:  2,
	}
}

// postponedRefreshes is how many refresh intervals may elapse before a
// missing refresh is reported.
const postponedRefreshes = 9

// Kind classifies a violation.
type Kind int

// Violation kinds.
const (
	KindTiming Kind = iota
	KindProtocol
	KindRefresh
	KindTimestamp
)

func (k Kind) String() string {
	switch k {
	case KindTiming:
		return "timing"
	case KindProtocol:
		return "protocol"
	case KindRefresh:
		return "refresh"
	case KindTimestamp:
		return "timestamp"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Violation describes a command the device would not have accepted.
// Bank is -1 when the violation is not tied to a bank.
type Violation struct {
	Time   clock.Time
	Bank   int
	Kind   Kind
	Detail string
}

func (v Violation) String() string {
	if v.Bank < 0 {
		return fmt.Sprintf("%v %s: %s", v.Time, v.Kind, v.Detail)
	}
	return fmt.Sprintf("%v %s bank %d: %s", v.Time, v.Kind, v.Bank, v.Detail)
}

// A ViolationReporter is notified of every violation.
type ViolationReporter interface {
	Violation(v Violation)
}

// ViolationFunc adapts a function to a ViolationReporter.
type ViolationFunc func(v Violation)

// Violation calls f(v).
func (f ViolationFunc) Violation(v Violation) { f(v) }
