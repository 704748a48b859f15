package sdram

import (
	"github.com/pkg/errors"

	"vdpsim/internal/bus"
)

// ErrAddressOutOfRange is returned for a word address beyond the device.
var ErrAddressOutOfRange = errors.New("address out of range")

// Words returns the number of addressable data words.
func (m *Model) Words() uint64 {
	return uint64(len(m.banks)) << uint(m.rowBits+m.colBits)
}

// Capacity returns the device size in bytes.
func (m *Model) Capacity() uint64 {
	return m.Words() * uint64(m.dataWidth.bytes())
}

// MapAddress splits a linear word address into bank, row and column. With
// bank interleaving the bank bits sit between the column and row bits, so
// consecutive rows of the linear space land in different banks.
func (m *Model) MapAddress(addr uint64) (bank, row, col int, err error) {
	if addr >= m.Words() {
		return 0, 0, 0, errors.Wrapf(ErrAddressOutOfRange, "word %#x of %#x", addr, m.Words())
	}

	colMask := uint64(1)<<uint(m.colBits) - 1
	rowMask := uint64(1)<<uint(m.rowBits) - 1
	bankMask := uint64(1)<<uint(m.bankBits) - 1

	col = int(addr & colMask)
	if m.bankInterleaving {
		bank = int(addr >> uint(m.colBits) & bankMask)
		row = int(addr >> uint(m.colBits+m.bankBits) & rowMask)
	} else {
		row = int(addr >> uint(m.colBits) & rowMask)
		bank = int(addr >> uint(m.colBits+m.rowBits) & bankMask)
	}
	return bank, row, col, nil
}

// Peek reads a word directly, bypassing the command interface.
func (m *Model) Peek(addr uint64) (uint32, error) {
	bank, row, col, err := m.MapAddress(addr)
	if err != nil {
		return 0, err
	}
	return m.load(bank, row, col), nil
}

// Poke writes a word directly, bypassing the command interface.
func (m *Model) Poke(addr uint64, v uint32) error {
	bank, row, col, err := m.MapAddress(addr)
	if err != nil {
		return err
	}
	m.store(bank, row, col, bus.DataSignals{DQ: v})
	return nil
}
