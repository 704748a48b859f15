package sdram

import (
	"io"
	"log"

	"github.com/pkg/errors"
)

// DataWidth is the width of the DQ bus in bits.
type DataWidth int

// Supported data widths.
const (
	DataWidth8  DataWidth = 8
	DataWidth16 DataWidth = 16
	DataWidth32 DataWidth = 32
)

func (w DataWidth) mask() uint32 {
	if w == DataWidth32 {
		return 0xFFFFFFFF
	}
	return 1<<uint(w) - 1
}

func (w DataWidth) bytes() int {
	return int(w) / 8
}

// Builder can build new SDRAM models.
type Builder struct {
	rowBits          int
	colBits          int
	banks            int
	dataWidth        DataWidth
	bankInterleaving bool
	timing           Timing
	reporters        []ViolationReporter
	logger           *log.Logger
	commandLog       bool
}

// MakeBuilder creates a builder with default configuration: 13 row bits,
// 9 column bits, 4 banks, 16-bit data and bank interleaving.
func MakeBuilder() Builder {
	return Builder{
		rowBits:          13,
		colBits:          9,
		banks:            4,
		dataWidth:        DataWidth16,
		bankInterleaving: true,
		timing:           DefaultTiming(),
	}
}

// WithRowBits sets the number of row address bits.
func (b Builder) WithRowBits(n int) Builder {
	b.rowBits = n
	return b
}

// WithColBits sets the number of column address bits.
func (b Builder) WithColBits(n int) Builder {
	b.colBits = n
	return b
}

// WithBanks sets the number of banks.
func (b Builder) WithBanks(n int) Builder {
	b.banks = n
	return b
}

// WithDataWidth sets the DQ bus width.
func (b Builder) WithDataWidth(w DataWidth) Builder {
	b.dataWidth = w
	return b
}

// WithBankInterleaving places the bank bits between the row and column bits
// of a linear address instead of above the row bits.
func (b Builder) WithBankInterleaving(on bool) Builder {
	b.bankInterleaving = on
	return b
}

// WithTiming sets the AC timing parameters.
func (b Builder) WithTiming(t Timing) Builder {
	b.timing = t
	return b
}

// WithReporter adds a reporter that receives every violation.
func (b Builder) WithReporter(r ViolationReporter) Builder {
	b.reporters = append(append([]ViolationReporter(nil), b.reporters...), r)
	return b
}

// WithLogger sets the logger that violations, and optionally commands,
// are written to.
func (b Builder) WithLogger(l *log.Logger) Builder {
	b.logger = l
	return b
}

// WithCommandLog makes the model log every decoded command.
func (b Builder) WithCommandLog(on bool) Builder {
	b.commandLog = on
	return b
}

// Build creates a new model.
func (b Builder) Build() (*Model, error) {
	if b.rowBits < 1 || b.rowBits > 15 {
		return nil, errors.Errorf("row bits must be in [1,15], got %d", b.rowBits)
	}
	if b.colBits < 1 || b.colBits > 10 {
		return nil, errors.Errorf("column bits must be in [1,10], got %d", b.colBits)
	}
	if b.banks < 1 || b.banks > 8 || b.banks&(b.banks-1) != 0 {
		return nil, errors.Errorf("bank count must be a power of two up to 8, got %d", b.banks)
	}
	switch b.dataWidth {
	case DataWidth8, DataWidth16, DataWidth32:
	default:
		return nil, errors.Errorf("unsupported data width %d", b.dataWidth)
	}
	if b.timing.TREFI == 0 {
		return nil, errors.New("refresh interval cannot be 0")
	}

	logger := b.logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	bankBits := 0
	for 1<<bankBits < b.banks {
		bankBits++
	}

	m := &Model{
		rowBits:          b.rowBits,
		colBits:          b.colBits,
		bankBits:         bankBits,
		dataWidth:        b.dataWidth,
		bankInterleaving: b.bankInterleaving,
		timing:           b.timing,
		reporters:        b.reporters,
		log:              logger,
		commandLog:       b.commandLog,
		banks:            make([]bankState, b.banks),
		rows:             make(map[uint32][]uint32),
		casLatency:       2,
		burstLength:      1,
	}
	return m, nil
}
