// Package sdram provides a timing-checking model of a single data rate
// SDRAM device.
//
// The model is driven with the bus pins a design produces and the virtual
// time of the evaluation. It samples commands on the rising edge of the
// memory clock, keeps per-bank row state, returns read data after the
// programmed CAS latency and reports every command a real device would not
// have accepted.
package sdram

import (
	"fmt"
	"log"

	"vdpsim/internal/bus"
	"vdpsim/internal/clock"
)

type bankState struct {
	active         bool
	row            int
	activatedAt    clock.Time
	everActive     bool
	prechargedAt   clock.Time
	everPrecharged bool
	lastWriteAt    clock.Time
	written        bool
}

type pendingRead struct {
	edge uint64
	data uint32
}

type writeBurst struct {
	bank, row int
	col       int
	index     int
	length    int
}

// Stats summarises what a model has seen.
type Stats struct {
	Edges      uint64
	Commands   map[bus.Command]uint64
	Reads      uint64
	Writes     uint64
	Refreshes  uint64
	Violations uint64
}

// Model is an SDRAM device.
type Model struct {
	rowBits          int
	colBits          int
	bankBits         int
	dataWidth        DataWidth
	bankInterleaving bool
	timing           Timing
	reporters        []ViolationReporter
	log              *log.Logger
	commandLog       bool

	banks []bankState
	rows  map[uint32][]uint32

	prevClk bool
	lastTS  clock.Time
	seenTS  bool
	edges   uint64

	casLatency  int
	burstLength int
	singleWrite bool
	modeSet     bool
	modeEdge    uint64

	prechargeAll   bool
	initRefreshes  int
	initialized    bool
	initializedAt  clock.Time
	refreshAt      clock.Time
	refreshed      bool
	refreshOverdue bool

	reads   []pendingRead
	burst   writeBurst
	driving bool
	out     uint32

	commands   [bus.CmdLoadMode + 1]uint64
	readCount  uint64
	writeCount uint64
	refreshes  uint64
	violations uint64
}

// Eval advances the model to ts with the given pins and returns the level
// of the data bus: read data while a read burst is being driven, otherwise
// whatever the design drives.
func (m *Model) Eval(ts clock.Time, sig bus.Signals) uint32 {
	if m.seenTS && ts < m.lastTS {
		m.report(ts, -1, KindTimestamp, "time went backwards from %v", m.lastTS)
	}
	m.lastTS, m.seenTS = ts, true

	if sig.Clock.Clk && !m.prevClk {
		m.risingEdge(ts, sig)
	}
	m.prevClk = sig.Clock.Clk

	if m.driving {
		return m.out
	}
	return sig.Data.DQ & m.dataWidth.mask()
}

func (m *Model) risingEdge(ts clock.Time, sig bus.Signals) {
	m.edges++

	m.driving = false
	for len(m.reads) > 0 && m.reads[0].edge <= m.edges {
		if m.reads[0].edge == m.edges {
			m.driving = true
			m.out = m.reads[0].data
		}
		m.reads = m.reads[1:]
	}

	m.checkRefreshDeadline(ts)

	if !sig.Clock.CKE {
		return
	}

	cmd := sig.Command.Decode()
	m.commands[cmd]++
	if cmd == bus.CmdInhibit || cmd == bus.CmdNop {
		m.continueBurst(ts, sig)
		return
	}
	if m.commandLog {
		m.log.Printf("%v %-9v ba=%d a=%04x dq=%04x dqm=%x",
			ts, cmd, sig.Address.BA, sig.Address.A, sig.Data.DQ, sig.Data.DQM)
	}

	m.burst.length = 0
	m.checkCommandSpacing(ts, cmd)

	switch cmd {
	case bus.CmdActive:
		m.activate(ts, sig)
	case bus.CmdRead, bus.CmdWrite:
		m.access(ts, cmd, sig)
	case bus.CmdPrecharge:
		m.precharge(ts, sig)
	case bus.CmdRefresh:
		m.refresh(ts)
	case bus.CmdLoadMode:
		m.loadMode(ts, sig)
	case bus.CmdBurstTerminate:
		m.reads = nil
	}
}

func (m *Model) checkCommandSpacing(ts clock.Time, cmd bus.Command) {
	if m.refreshed && ts-m.refreshAt < m.timing.TRFC {
		m.report(ts, -1, KindTiming, "tRFC: %v %v after REFRESH", cmd, ts-m.refreshAt)
	}
	if m.modeSet && m.edges-m.modeEdge < uint64(m.timing.TMRD) {
		m.report(ts, -1, KindTiming, "tMRD: %v %d clocks after LOAD_MODE", cmd, m.edges-m.modeEdge)
	}
}

func (m *Model) checkRefreshDeadline(ts clock.Time) {
	if !m.initialized || m.refreshOverdue {
		return
	}
	last := m.initializedAt
	if m.refreshed && m.refreshAt > last {
		last = m.refreshAt
	}
	if ts-last > postponedRefreshes*m.timing.TREFI {
		m.refreshOverdue = true
		m.report(ts, -1, KindRefresh, "no REFRESH for %v", ts-last)
	}
}

func (m *Model) bankOf(ts clock.Time, sig bus.Signals) (int, bool) {
	bank := int(sig.Address.BA)
	if bank >= len(m.banks) {
		m.report(ts, bank, KindProtocol, "bank out of range")
		return 0, false
	}
	return bank, true
}

func (m *Model) activate(ts clock.Time, sig bus.Signals) {
	bank, ok := m.bankOf(ts, sig)
	if !ok {
		return
	}
	b := &m.banks[bank]
	if b.active {
		m.report(ts, bank, KindProtocol, "ACTIVE while row %d is open", b.row)
	}
	if b.everPrecharged && ts-b.prechargedAt < m.timing.TRP {
		m.report(ts, bank, KindTiming, "tRP: ACTIVE %v after PRECHARGE", ts-b.prechargedAt)
	}
	if b.everActive && ts-b.activatedAt < m.timing.TRC {
		m.report(ts, bank, KindTiming, "tRC: ACTIVE %v after ACTIVE", ts-b.activatedAt)
	}

	b.active = true
	b.everActive = true
	b.row = int(sig.Address.A) & (1<<m.rowBits - 1)
	b.activatedAt = ts
	b.written = false
}

func (m *Model) access(ts clock.Time, cmd bus.Command, sig bus.Signals) {
	if !m.initialized {
		m.report(ts, -1, KindProtocol, "%v before initialization", cmd)
	}
	bank, ok := m.bankOf(ts, sig)
	if !ok {
		return
	}
	b := &m.banks[bank]
	if !b.active {
		m.report(ts, bank, KindProtocol, "%v to idle bank", cmd)
		return
	}
	if ts-b.activatedAt < m.timing.TRCD {
		m.report(ts, bank, KindTiming, "tRCD: %v %v after ACTIVE", cmd, ts-b.activatedAt)
	}

	col := int(sig.Address.A) & (1<<m.colBits - 1)

	if cmd == bus.CmdRead {
		m.readCount++
		first := m.edges + uint64(m.casLatency)
		kept := m.reads[:0]
		for _, r := range m.reads {
			if r.edge < first {
				kept = append(kept, r)
			}
		}
		m.reads = kept
		for i := 0; i < m.burstLength; i++ {
			c := burstColumn(col, i, m.burstLength)
			m.reads = append(m.reads, pendingRead{
				edge: first + uint64(i),
				data: m.load(bank, b.row, c),
			})
		}
	} else {
		m.writeCount++
		m.reads = nil
		m.store(bank, b.row, col, sig.Data)
		b.lastWriteAt = ts
		b.written = true

		length := m.burstLength
		if m.singleWrite {
			length = 1
		}
		if length > 1 {
			m.burst = writeBurst{bank: bank, row: b.row, col: col, index: 1, length: length}
		}
	}

	if sig.Address.A&bus.A10 != 0 {
		b.active = false
		b.prechargedAt = ts
		b.everPrecharged = true
	}
}

func (m *Model) continueBurst(ts clock.Time, sig bus.Signals) {
	if m.burst.length == 0 {
		return
	}
	wb := &m.burst
	m.store(wb.bank, wb.row, burstColumn(wb.col, wb.index, wb.length), sig.Data)
	b := &m.banks[wb.bank]
	b.lastWriteAt = ts
	b.written = true
	wb.index++
	if wb.index == wb.length {
		wb.length = 0
	}
}

// burstColumn returns the i-th column of a sequential burst that wraps
// within its burst-length aligned block.
func burstColumn(col, i, length int) int {
	base := col &^ (length - 1)
	return base | (col+i)&(length-1)
}

func (m *Model) precharge(ts clock.Time, sig bus.Signals) {
	all := sig.Address.A&bus.A10 != 0

	first, last := 0, len(m.banks)-1
	if !all {
		bank, ok := m.bankOf(ts, sig)
		if !ok {
			return
		}
		first, last = bank, bank
	}

	for i := first; i <= last; i++ {
		b := &m.banks[i]
		if !b.active {
			continue
		}
		if ts-b.activatedAt < m.timing.TRAS {
			m.report(ts, i, KindTiming, "tRAS: PRECHARGE %v after ACTIVE", ts-b.activatedAt)
		}
		if b.written && ts-b.lastWriteAt < m.timing.TWR {
			m.report(ts, i, KindTiming, "tWR: PRECHARGE %v after WRITE", ts-b.lastWriteAt)
		}
		b.active = false
		b.prechargedAt = ts
		b.everPrecharged = true
	}

	if all && !m.initialized {
		m.prechargeAll = true
	}
}

func (m *Model) refresh(ts clock.Time) {
	for i := range m.banks {
		b := &m.banks[i]
		if b.active {
			m.report(ts, i, KindProtocol, "REFRESH while row %d is open", b.row)
		}
		if b.everPrecharged && ts-b.prechargedAt < m.timing.TRP {
			m.report(ts, i, KindTiming, "tRP: REFRESH %v after PRECHARGE", ts-b.prechargedAt)
		}
	}

	m.refreshes++
	m.refreshAt = ts
	m.refreshed = true
	m.refreshOverdue = false

	if m.prechargeAll && !m.initialized {
		m.initRefreshes++
		m.checkInitialized(ts)
	}
}

func (m *Model) loadMode(ts clock.Time, sig bus.Signals) {
	for i := range m.banks {
		if m.banks[i].active {
			m.report(ts, i, KindProtocol, "LOAD_MODE while row %d is open", m.banks[i].row)
		}
	}

	a := sig.Address.A
	switch a & 0x7 {
	case 0:
		m.burstLength = 1
	case 1:
		m.burstLength = 2
	case 2:
		m.burstLength = 4
	case 3:
		m.burstLength = 8
	default:
		m.report(ts, -1, KindProtocol, "unsupported burst length code %d", a&0x7)
	}

	switch cl := int(a>>4) & 0x7; cl {
	case 1, 2, 3:
		m.casLatency = cl
	default:
		m.report(ts, -1, KindProtocol, "unsupported CAS latency %d", cl)
	}

	m.singleWrite = a&(1<<9) != 0
	m.modeSet = true
	m.modeEdge = m.edges
	m.checkInitialized(ts)
}

func (m *Model) checkInitialized(ts clock.Time) {
	if m.initialized || !m.prechargeAll || m.initRefreshes < 2 || !m.modeSet {
		return
	}
	m.initialized = true
	m.initializedAt = ts
	m.log.Printf("%v initialized: CL=%d BL=%d", ts, m.casLatency, m.burstLength)
}

func (m *Model) rowKey(bank, row int) uint32 {
	return uint32(bank)<<uint(m.rowBits) | uint32(row)
}

func (m *Model) load(bank, row, col int) uint32 {
	r := m.rows[m.rowKey(bank, row)]
	if r == nil {
		return 0
	}
	return r[col]
}

func (m *Model) store(bank, row, col int, d bus.DataSignals) {
	key := m.rowKey(bank, row)
	r := m.rows[key]
	if r == nil {
		r = make([]uint32, 1<<uint(m.colBits))
		m.rows[key] = r
	}

	mask := m.dataWidth.mask()
	for i := 0; i < m.dataWidth.bytes(); i++ {
		if d.DQM&(1<<uint(i)) != 0 {
			mask &^= 0xFF << uint(8*i)
		}
	}
	r[col] = r[col]&^mask | d.DQ&mask
}

func (m *Model) report(ts clock.Time, bank int, kind Kind, format string, args ...interface{}) {
	v := Violation{
		Time:   ts,
		Bank:   bank,
		Kind:   kind,
		Detail: fmt.Sprintf(format, args...),
	}
	m.violations++
	m.log.Printf("%v", v)
	for _, r := range m.reporters {
		r.Violation(v)
	}
}

// Initialized reports whether the power-up sequence has completed.
func (m *Model) Initialized() bool {
	return m.initialized
}

// CASLatency returns the programmed CAS latency in clocks.
func (m *Model) CASLatency() int {
	return m.casLatency
}

// BurstLength returns the programmed burst length.
func (m *Model) BurstLength() int {
	return m.burstLength
}

// Stats returns a snapshot of the model's counters.
func (m *Model) Stats() Stats {
	s := Stats{
		Edges:      m.edges,
		Commands:   make(map[bus.Command]uint64),
		Reads:      m.readCount,
		Writes:     m.writeCount,
		Refreshes:  m.refreshes,
		Violations: m.violations,
	}
	for c, n := range m.commands {
		if n > 0 {
			s.Commands[bus.Command(c)] = n
		}
	}
	return s
}
