package frame

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBufferIsOpaqueBlack(t *testing.T) {
	b := NewBuffer(4, 3)
	require.Equal(t, 4, b.Width())
	require.Equal(t, 3, b.Height())

	v := b.View()
	require.Len(t, v.Pix(), 4*3*4)
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			assert.Equal(t, Color{}, v.Pixel(x, y))
			_, _, _, a := v.At(x, y).RGBA()
			assert.Equal(t, uint32(0xFFFF), a)
		}
	}
}

func TestIngestValidSampleWritesColor(t *testing.T) {
	a := NewAssembler(4, 4)
	c := Color{R: 20, G: 10, B: 0}

	require.NoError(t, a.Ingest(Sample{X: 2, Y: 1, Color: c, Valid: true}))

	assert.Equal(t, c, a.View().Pixel(2, 1))
	assert.Equal(t, uint64(1), a.Written())
}

func TestIngestInvalidSampleIsNoOp(t *testing.T) {
	a := NewAssembler(4, 4)
	before := append([]byte(nil), a.View().Pix()...)

	require.NoError(t, a.Ingest(Sample{X: 1, Y: 1, Color: Color{R: 9}, Valid: false}))
	// Invalid samples are never bounds-checked either.
	require.NoError(t, a.Ingest(Sample{X: 100, Y: -5, Color: Color{G: 9}, Valid: false}))

	assert.Equal(t, before, a.View().Pix())
	assert.Zero(t, a.Written())
}

func TestIngestLastWriteWins(t *testing.T) {
	a := NewAssembler(2, 2)
	require.NoError(t, a.Ingest(Sample{X: 1, Y: 0, Color: Color{R: 1}, Valid: true}))
	require.NoError(t, a.Ingest(Sample{X: 1, Y: 0, Color: Color{B: 7}, Valid: true}))

	assert.Equal(t, Color{B: 7}, a.View().Pixel(1, 0))
}

func TestIngestOutOfBounds(t *testing.T) {
	tests := []struct {
		name string
		x, y int
	}{
		{"x equals width", 4, 0},
		{"y equals height", 0, 4},
		{"negative x", -1, 2},
		{"negative y", 2, -1},
		{"far away", 1000, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAssembler(4, 4)
			before := append([]byte(nil), a.View().Pix()...)

			err := a.Ingest(Sample{X: tt.x, Y: tt.y, Color: Color{R: 255}, Valid: true})

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrOutOfBounds))
			assert.Equal(t, before, a.View().Pix(), "buffer must not be modified")
		})
	}
}

func TestBufferIsNeverReallocated(t *testing.T) {
	a := NewAssembler(8, 8)
	first := &a.View().Pix()[0]
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			require.NoError(t, a.Ingest(Sample{X: x, Y: y, Color: Color{R: uint8(x), G: uint8(y)}, Valid: true}))
		}
	}
	assert.Same(t, first, &a.View().Pix()[0])
	assert.Same(t, a.Buffer(), a.Buffer())
}

func TestViewDigestTracksContent(t *testing.T) {
	a := NewAssembler(4, 4)
	b := NewAssembler(4, 4)
	assert.Equal(t, a.View().Digest(), b.View().Digest())

	require.NoError(t, a.Ingest(Sample{X: 3, Y: 3, Color: Color{G: 1}, Valid: true}))
	assert.NotEqual(t, a.View().Digest(), b.View().Digest())
}

func TestViewCopyTo(t *testing.T) {
	a := NewAssembler(2, 1)
	require.NoError(t, a.Ingest(Sample{X: 1, Y: 0, Color: Color{R: 1, G: 2, B: 3}, Valid: true}))

	dst := make([]byte, 8)
	n := a.View().CopyTo(dst)

	assert.Equal(t, 8, n)
	assert.Equal(t, []byte{0, 0, 0, 255, 1, 2, 3, 255}, dst)
	assert.Equal(t, 8, a.View().Stride())
}

func TestViewEncodesAsPNG(t *testing.T) {
	a := NewAssembler(3, 2)
	require.NoError(t, a.Ingest(Sample{X: 0, Y: 1, Color: Color{R: 200, G: 100, B: 50}, Valid: true}))

	var out bytes.Buffer
	require.NoError(t, png.Encode(&out, a.View()))

	img, err := png.Decode(&out)
	require.NoError(t, err)
	r, g, b, _ := img.At(0, 1).RGBA()
	assert.Equal(t, []uint32{200, 100, 50}, []uint32{r >> 8, g >> 8, b >> 8})
}
