package sdram

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"vdpsim/internal/bus"
	"vdpsim/internal/clock"
)

var _ = Describe("Builder", func() {
	It("should build the default geometry", func() {
		m, err := MakeBuilder().Build()

		Expect(err).NotTo(HaveOccurred())
		Expect(m.Words()).To(Equal(uint64(4 << 22)))
		Expect(m.Capacity()).To(Equal(uint64(32 << 20)))
		Expect(m.CASLatency()).To(Equal(2))
		Expect(m.BurstLength()).To(Equal(1))
		Expect(m.Initialized()).To(BeFalse())
	})

	DescribeTable("should reject bad geometry",
		func(b Builder) {
			_, err := b.Build()
			Expect(err).To(HaveOccurred())
		},
		Entry("no rows", MakeBuilder().WithRowBits(0)),
		Entry("too many columns", MakeBuilder().WithColBits(11)),
		Entry("three banks", MakeBuilder().WithBanks(3)),
		Entry("sixteen banks", MakeBuilder().WithBanks(16)),
		Entry("12-bit data", MakeBuilder().WithDataWidth(12)),
		Entry("zero refresh interval", MakeBuilder().WithTiming(Timing{})),
	)
})

var _ = Describe("Model", func() {
	var (
		m          *Model
		d          *driver
		violations []Violation
		builder    Builder
	)

	BeforeEach(func() {
		violations = nil
		builder = MakeBuilder().WithReporter(ViolationFunc(func(v Violation) {
			violations = append(violations, v)
		}))
	})

	JustBeforeEach(func() {
		var err error
		m, err = builder.Build()
		Expect(err).NotTo(HaveOccurred())
		d = newDriver(m)
	})

	Context("initialization", func() {
		It("should become ready after precharge-all, two refreshes and mode load", func() {
			d.initialize(3, 0)

			Expect(m.Initialized()).To(BeTrue())
			Expect(m.CASLatency()).To(Equal(3))
			Expect(violations).To(BeEmpty())
		})

		It("should not be ready with a single refresh", func() {
			d.cycle(bus.CmdPrecharge, 0, bus.A10, 0, 0)
			d.nop(1)
			d.cycle(bus.CmdRefresh, 0, 0, 0, 0)
			d.nop(4)
			d.cycle(bus.CmdLoadMode, 0, 2<<4, 0, 0)

			Expect(m.Initialized()).To(BeFalse())
		})

		It("should report accesses before initialization", func() {
			d.cycle(bus.CmdActive, 0, 0, 0, 0)
			d.nop(1)
			d.cycle(bus.CmdRead, 0, 0, 0, 0)

			Expect(violations).To(HaveLen(1))
			Expect(violations[0].Kind).To(Equal(KindProtocol))
			Expect(violations[0].Detail).To(ContainSubstring("before initialization"))
		})

		It("should report a command too soon after mode load", func() {
			d.cycle(bus.CmdPrecharge, 0, bus.A10, 0, 0)
			d.nop(1)
			d.cycle(bus.CmdRefresh, 0, 0, 0, 0)
			d.nop(4)
			d.cycle(bus.CmdRefresh, 0, 0, 0, 0)
			d.nop(4)
			d.cycle(bus.CmdLoadMode, 0, 2<<4, 0, 0)
			d.cycle(bus.CmdActive, 0, 0, 0, 0)

			Expect(violations).To(HaveLen(1))
			Expect(violations[0].Detail).To(HavePrefix("tMRD"))
		})
	})

	Context("reads and writes", func() {
		JustBeforeEach(func() {
			d.initialize(2, 0)
		})

		It("should return read data after the CAS latency", func() {
			d.write(1, 7, 3, 0xBEEF)

			d.cycle(bus.CmdActive, 1, 7, 0, 0)
			d.nop(1)
			Expect(d.cycle(bus.CmdRead, 1, 3, 0, 0)).To(BeZero())
			Expect(d.nop(1)).To(BeZero())
			Expect(d.nop(1)).To(Equal(uint32(0xBEEF)))
			Expect(d.nop(1)).To(BeZero())

			Expect(violations).To(BeEmpty())
			stats := m.Stats()
			Expect(stats.Reads).To(Equal(uint64(1)))
			Expect(stats.Writes).To(Equal(uint64(1)))
			Expect(stats.Commands[bus.CmdActive]).To(Equal(uint64(2)))
		})

		It("should honour byte masks", func() {
			Expect(m.Poke(0, 0x1234)).To(Succeed())

			d.cycle(bus.CmdActive, 0, 0, 0, 0)
			d.nop(1)
			d.cycle(bus.CmdWrite, 0, 0, 0xABCD, 0b10)
			d.nop(2)
			d.cycle(bus.CmdPrecharge, 0, 0, 0, 0)

			Expect(m.Peek(0)).To(Equal(uint32(0x12CD)))
		})

		It("should act as a bus keeper when not driving", func() {
			Expect(d.cycle(bus.CmdNop, 0, 0, 0x55AA, 0)).To(Equal(uint32(0x55AA)))
		})

		It("should mask data to the bus width", func() {
			Expect(d.cycle(bus.CmdNop, 0, 0, 0x1FFFF, 0)).To(Equal(uint32(0xFFFF)))
		})

		It("should ignore commands while the clock is disabled", func() {
			d.cke = false
			d.cycle(bus.CmdActive, 2, 5, 0, 0)
			d.cke = true

			d.cycle(bus.CmdRead, 2, 0, 0, 0)

			Expect(violations).To(HaveLen(1))
			Expect(violations[0].Detail).To(ContainSubstring("idle bank"))
		})

		It("should report READ to an idle bank", func() {
			d.cycle(bus.CmdRead, 0, 0, 0, 0)

			Expect(violations).To(HaveLen(1))
			Expect(violations[0].Bank).To(Equal(0))
		})

		It("should report ACTIVE to an open bank", func() {
			d.cycle(bus.CmdActive, 0, 1, 0, 0)
			d.nop(5)
			d.cycle(bus.CmdActive, 0, 2, 0, 0)

			Expect(violations).To(HaveLen(1))
			Expect(violations[0].Detail).To(ContainSubstring("row 1 is open"))
		})

		It("should report tRAS on an early precharge", func() {
			d.cycle(bus.CmdActive, 0, 1, 0, 0)
			d.cycle(bus.CmdPrecharge, 0, 0, 0, 0)

			Expect(violations).To(HaveLen(1))
			Expect(violations[0].Kind).To(Equal(KindTiming))
			Expect(violations[0].Detail).To(HavePrefix("tRAS"))
		})

		It("should report REFRESH with an open bank", func() {
			d.cycle(bus.CmdActive, 3, 1, 0, 0)
			d.nop(4)
			d.cycle(bus.CmdRefresh, 0, 0, 0, 0)

			Expect(violations).To(HaveLen(1))
			Expect(violations[0].Bank).To(Equal(3))
		})

		It("should close the bank on auto-precharge", func() {
			d.cycle(bus.CmdActive, 0, 0, 0, 0)
			d.nop(1)
			d.cycle(bus.CmdWrite, 0, bus.A10|4, 9, 0)
			d.nop(4)
			d.cycle(bus.CmdRead, 0, 4, 0, 0)

			Expect(violations).To(HaveLen(1))
			Expect(violations[0].Detail).To(ContainSubstring("idle bank"))
		})
	})

	Context("bursts", func() {
		JustBeforeEach(func() {
			d.initialize(2, 2)
		})

		It("should read a wrapping burst of four", func() {
			for i := 0; i < 4; i++ {
				Expect(m.Poke(uint64(i), uint32(0x10+i))).To(Succeed())
			}

			d.cycle(bus.CmdActive, 0, 0, 0, 0)
			d.nop(1)
			d.cycle(bus.CmdRead, 0, 2, 0, 0)
			d.nop(1)

			var got []uint32
			for i := 0; i < 4; i++ {
				got = append(got, d.nop(1))
			}
			Expect(got).To(Equal([]uint32{0x12, 0x13, 0x10, 0x11}))
		})

		It("should write a burst of four", func() {
			d.cycle(bus.CmdActive, 0, 0, 0, 0)
			d.nop(1)
			d.cycle(bus.CmdWrite, 0, 4, 1, 0)
			d.cycle(bus.CmdNop, 0, 0, 2, 0)
			d.cycle(bus.CmdNop, 0, 0, 3, 0)
			d.cycle(bus.CmdNop, 0, 0, 4, 0)
			d.nop(2)
			d.cycle(bus.CmdPrecharge, 0, 0, 0, 0)

			for i := 0; i < 4; i++ {
				Expect(m.Peek(uint64(4 + i))).To(Equal(uint32(i + 1)))
			}
			Expect(violations).To(BeEmpty())
		})
	})

	Context("with slow row access", func() {
		BeforeEach(func() {
			t := DefaultTiming()
			t.TRCD = 40 * clock.Nanosecond
			builder = builder.WithTiming(t)
		})

		It("should report tRCD", func() {
			d.initialize(2, 0)
			d.cycle(bus.CmdActive, 0, 0, 0, 0)
			d.nop(1)
			d.cycle(bus.CmdRead, 0, 0, 0, 0)

			Expect(violations).To(HaveLen(1))
			Expect(violations[0].Detail).To(HavePrefix("tRCD"))
		})
	})

	Context("with a short refresh interval", func() {
		BeforeEach(func() {
			t := DefaultTiming()
			t.TREFI = 100 * clock.Nanosecond
			builder = builder.WithTiming(t)
		})

		It("should report an overdue refresh once", func() {
			d.initialize(2, 0)
			d.nop(120)

			Expect(violations).To(HaveLen(1))
			Expect(violations[0].Kind).To(Equal(KindRefresh))
		})

		It("should be satisfied by regular refreshes", func() {
			d.initialize(2, 0)
			for i := 0; i < 20; i++ {
				d.cycle(bus.CmdRefresh, 0, 0, 0, 0)
				d.nop(10)
			}

			Expect(violations).To(BeEmpty())
			Expect(m.Stats().Refreshes).To(Equal(uint64(22)))
		})
	})

	It("should report time going backwards", func() {
		m.Eval(1000, bus.Idle())
		m.Eval(500, bus.Idle())

		Expect(violations).To(HaveLen(1))
		Expect(violations[0].Kind).To(Equal(KindTimestamp))
	})
})

var _ = Describe("Address mapping", func() {
	It("should interleave banks between column and row bits", func() {
		m, err := MakeBuilder().Build()
		Expect(err).NotTo(HaveOccurred())

		bank, row, col, err := m.MapAddress(1<<9 | 5)
		Expect(err).NotTo(HaveOccurred())
		Expect([]int{bank, row, col}).To(Equal([]int{1, 0, 5}))

		bank, row, col, err = m.MapAddress(1<<11 | 7)
		Expect(err).NotTo(HaveOccurred())
		Expect([]int{bank, row, col}).To(Equal([]int{0, 1, 7}))
	})

	It("should put banks on top without interleaving", func() {
		m, err := MakeBuilder().WithBankInterleaving(false).Build()
		Expect(err).NotTo(HaveOccurred())

		bank, row, col, err := m.MapAddress(1<<9 | 5)
		Expect(err).NotTo(HaveOccurred())
		Expect([]int{bank, row, col}).To(Equal([]int{0, 1, 5}))

		bank, _, _, err = m.MapAddress(3 << 22)
		Expect(err).NotTo(HaveOccurred())
		Expect(bank).To(Equal(3))
	})

	It("should reject addresses beyond the device", func() {
		m, err := MakeBuilder().WithRowBits(2).WithColBits(2).WithBanks(1).Build()
		Expect(err).NotTo(HaveOccurred())

		_, err = m.Peek(16)
		Expect(err).To(MatchError(ErrAddressOutOfRange))
		Expect(m.Poke(15, 1)).To(Succeed())
		Expect(m.Peek(15)).To(Equal(uint32(1)))
	})
})
