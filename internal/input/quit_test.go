package input

import (
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatch(t *testing.T) {
	l := NewLatch()
	assert.False(t, l.QuitRequested())
	assert.Empty(t, l.Reason())

	l.Request("escape")
	l.Request("window closed")
	assert.True(t, l.QuitRequested())
	assert.Equal(t, "escape", l.Reason(), "first reason wins")
}

func TestFrameLimit(t *testing.T) {
	f := FrameLimit(3)
	assert.Equal(t, uint64(3), f.Remaining())

	var got []bool
	for i := 0; i < 5; i++ {
		got = append(got, f.QuitRequested())
	}
	assert.Equal(t, []bool{false, false, false, true, true}, got)
	assert.Zero(t, f.Remaining())
	assert.True(t, f.Reached())
}

func TestFrameLimitZeroIsUnlimited(t *testing.T) {
	f := FrameLimit(0)
	for i := 0; i < 1000; i++ {
		require.False(t, f.QuitRequested())
	}
	assert.False(t, f.Reached())
}

type countingSource struct {
	polls int
	quit  bool
}

func (c *countingSource) QuitRequested() bool {
	c.polls++
	return c.quit
}

func TestAnyPollsEverySource(t *testing.T) {
	a := &countingSource{quit: true}
	b := &countingSource{}
	src := Any(a, nil, b)

	assert.True(t, src.QuitRequested())
	assert.Equal(t, 1, a.polls)
	assert.Equal(t, 1, b.polls, "later sources are drained even after a quit")

	a.quit = false
	assert.False(t, src.QuitRequested())
	assert.False(t, Any().QuitRequested())
}

func TestNotifySignals(t *testing.T) {
	l := NewLatch()
	stop := NotifySignals(l, syscall.SIGUSR1)
	defer stop()

	p, err := os.FindProcess(os.Getpid())
	require.NoError(t, err)
	require.NoError(t, p.Signal(syscall.SIGUSR1))

	assert.Eventually(t, l.QuitRequested, time.Second, 5*time.Millisecond)
	assert.Equal(t, syscall.SIGUSR1.String(), l.Reason())

	stop()
	stop()
}
