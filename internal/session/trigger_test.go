package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vdpsim/internal/frame"
)

func TestTriggerFiresOncePerFrame(t *testing.T) {
	for _, size := range []struct{ w, h int }{{4, 4}, {1, 1}, {16, 9}} {
		r := newRaster(size.w, size.h)
		published := 0
		s, err := New(testConfig(size.w, size.h), r, idleMemory, sinkFunc(func(frame.View) error {
			published++
			return nil
		}), nil, quiet)
		require.NoError(t, err)
		s.Reset()

		events := 0
		for i := 0; i < 2*2*r.clocksPerFrame(); i++ {
			ev, err := s.Step()
			require.NoError(t, err)
			if ev == EventPublished {
				events++
				x, y := r.Scan()
				assert.Equal(t, 0, x)
				assert.Equal(t, size.h, y)
			}
		}
		assert.Equal(t, 2, events, "%dx%d", size.w, size.h)
		assert.Equal(t, 2, published)
		assert.Equal(t, uint64(2), s.Frames())
	}
}

// stuck is a design parked on the presentation point.
type stuck struct{ raster }

func (s *stuck) Scan() (int, int)           { return 0, s.height }
func (s *stuck) Pixel() (frame.Color, bool) { return frame.Color{}, false }

func TestTriggerNeedsConditionToClear(t *testing.T) {
	d := &stuck{*newRaster(4, 4)}
	published := 0
	s, err := New(testConfig(4, 4), d, idleMemory, sinkFunc(func(frame.View) error {
		published++
		return nil
	}), nil, quiet)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		_, err := s.Step()
		require.NoError(t, err)
	}
	assert.Equal(t, 1, published)
}

func TestNoPublishDuringReset(t *testing.T) {
	d := &stuck{*newRaster(4, 4)}
	s, err := New(testConfig(4, 4), d, idleMemory, sinkFunc(func(frame.View) error {
		t.Fatal("published during reset")
		return nil
	}), nil, quiet)
	require.NoError(t, err)

	s.Reset()
	assert.Zero(t, s.Frames())
	assert.Zero(t, s.View().Pixel(0, 0))
}
