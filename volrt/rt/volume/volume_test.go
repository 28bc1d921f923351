package volume

import (
	"bytes"
	"encoding/binary"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Size(t *testing.T) {
	v, err := Generate(4, 3, 2)
	require.NoError(t, err)

	assert.Len(t, v.Data, 4*3*2*Channels)
	assert.Equal(t, uint32(4*16), v.RowPitch())
	assert.Equal(t, uint32(4*3*16), v.SlicePitch())
	assert.Equal(t, 4*3*2*16, v.ByteSize())
}

func TestGenerate_Pattern(t *testing.T) {
	v, err := Generate(8, 8, 3)
	require.NoError(t, err)

	for z := 0; z < v.Depth; z++ {
		for y := 0; y < v.Height; y++ {
			for x := 0; x < v.Width; x++ {
				c, ok := v.At(x, y, z)
				require.True(t, ok)
				if x < y {
					assert.Equal(t, ColorA, c, "voxel %d,%d,%d", x, y, z)
				} else {
					assert.Equal(t, ColorB, c, "voxel %d,%d,%d", x, y, z)
				}
			}
		}
	}
}

func TestGenerate_Layout(t *testing.T) {
	v, err := Generate(256, 256, 256)
	require.NoError(t, err)

	// (1, 2, 0) has x < y.
	i := ((0*256+2)*256 + 1) * 4
	assert.Equal(t, []float32{0.4, 1.0, 0.3, 0.8}, v.Data[i:i+4])
	// (2, 1, 5) has x >= y.
	i = ((5*256+1)*256 + 2) * 4
	assert.Equal(t, []float32{0.0, 0.5, 0.6, 0.8}, v.Data[i:i+4])
}

func TestGenerate_InvalidSize(t *testing.T) {
	for _, dims := range [][3]int{{0, 1, 1}, {1, -1, 1}, {1, 1, 0}} {
		_, err := Generate(dims[0], dims[1], dims[2])
		assert.Error(t, err, "dims %v", dims)
	}
}

func TestVolume_Bytes(t *testing.T) {
	v, err := Generate(2, 2, 1)
	require.NoError(t, err)

	b := v.Bytes()
	require.Len(t, b, v.ByteSize())
	// texel (0, 1, 0) is ColorA, green channel at float offset 9
	g := math.Float32frombits(binary.LittleEndian.Uint32(b[9*4:]))
	assert.Equal(t, float32(1.0), g)
}

func TestVolume_AtOutOfRange(t *testing.T) {
	v, err := Generate(2, 2, 2)
	require.NoError(t, err)

	_, ok := v.At(2, 0, 0)
	assert.False(t, ok)
	_, ok = v.At(0, 0, -1)
	assert.False(t, ok)
}

func TestVolume_SliceImage(t *testing.T) {
	v, err := Generate(4, 4, 2)
	require.NoError(t, err)

	img, err := v.SliceImage(1)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())

	a := img.NRGBAAt(0, 3)
	assert.Equal(t, uint8(102), a.R)
	assert.Equal(t, uint8(255), a.G)
	assert.Equal(t, uint8(204), a.A)

	b := img.NRGBAAt(3, 0)
	assert.Equal(t, uint8(0), b.R)
	assert.Equal(t, uint8(153), b.B)

	_, err = v.SliceImage(2)
	assert.Error(t, err)
}

func TestVolume_PreviewPNG(t *testing.T) {
	v, err := Generate(16, 16, 1)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, v.PreviewPNG(&buf, 0, 64))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 64, img.Bounds().Dy())

	assert.Error(t, v.PreviewPNG(&buf, 0, 0))
	assert.Error(t, v.PreviewPNG(&buf, 5, 32))
}
