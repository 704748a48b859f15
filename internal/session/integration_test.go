package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vdpsim/internal/clock"
	"vdpsim/internal/design"
	"vdpsim/internal/frame"
	"vdpsim/internal/sdram"
)

type digestObserver []uint64

func (d *digestObserver) FramePresented(info FrameInfo) {
	*d = append(*d, info.Digest)
}

type rig struct {
	session    *Session
	design     *design.VDP
	memory     *sdram.Model
	violations []sdram.Violation
	digests    digestObserver
}

// newRig wires the real design to the real memory model on a tiny raster
// at 60 MHz and stops after the given number of frames.
func newRig(t *testing.T, frames uint64) *rig {
	t.Helper()

	cfg := design.DefaultConfig()
	cfg.Timing = design.Timing{
		HActive: 8, HFrontPorch: 1, HSync: 1, HBackPorch: 2,
		VActive: 4, VFrontPorch: 1, VSync: 1, VBackPorch: 2,
	}
	cfg.PowerUpCycles = 3
	d, err := design.New(cfg)
	require.NoError(t, err)

	r := &rig{design: d}
	m, err := sdram.MakeBuilder().
		WithReporter(sdram.ViolationFunc(func(v sdram.Violation) {
			r.violations = append(r.violations, v)
		})).
		Build()
	require.NoError(t, err)
	r.memory = m

	w, h := d.Resolution()
	s, err := New(Config{Width: w, Height: h, Frequency: 60 * clock.MHz, ResetCycles: 4},
		d, m, sinkFunc(func(frame.View) error { return nil }),
		quitAfter(&r.session, frames), quiet, WithObserver(&r.digests))
	require.NoError(t, err)
	r.session = s
	return r
}

func TestDesignAgainstMemoryModel(t *testing.T) {
	r := newRig(t, 40)
	stats, err := r.session.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, uint64(40), stats.Frames)
	assert.Empty(t, r.violations)
	assert.True(t, r.memory.Initialized())
	assert.Equal(t, 2, r.memory.CASLatency())

	counter, err := r.memory.Peek(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(40), counter)
	assert.Equal(t, uint16(40), r.design.FrameCounter())

	ms := r.memory.Stats()
	assert.Equal(t, uint64(40), ms.Reads)
	assert.Equal(t, uint64(40), ms.Writes)
	assert.Greater(t, ms.Refreshes, uint64(2))
	assert.Zero(t, ms.Violations)
}

func TestRunsAreDeterministic(t *testing.T) {
	a := newRig(t, 6)
	_, err := a.session.Run(context.Background())
	require.NoError(t, err)

	b := newRig(t, 6)
	_, err = b.session.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, a.digests, 6)
	assert.Equal(t, a.digests, b.digests)
	assert.Equal(t, a.session.Now(), b.session.Now())

	// The counter read back from memory moves the pattern every frame.
	for i := 1; i < len(a.digests); i++ {
		assert.NotEqual(t, a.digests[i-1], a.digests[i], "frame %d", i+1)
	}
}
