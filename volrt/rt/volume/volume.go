package volume

import (
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

const (
	Channels      = 4
	BytesPerTexel = Channels * 4

	// FormatRGBA32Float names the texel layout: four float32 channels.
	FormatRGBA32Float = "rgba32float"
)

var (
	ColorA = [Channels]float32{0.4, 1.0, 0.3, 0.8}
	ColorB = [Channels]float32{0.0, 0.5, 0.6, 0.8}
)

// Volume is a dense RGBA32F 3D texture payload, x fastest, then y, then z.
type Volume struct {
	Width, Height, Depth int
	Data                 []float32
}

// Generate fills a width x height x depth volume. Voxels with x < y get
// ColorA, all others ColorB.
func Generate(width, height, depth int) (*Volume, error) {
	if width <= 0 || height <= 0 || depth <= 0 {
		return nil, errors.Errorf("invalid volume size %dx%dx%d", width, height, depth)
	}

	v := &Volume{
		Width:  width,
		Height: height,
		Depth:  depth,
		Data:   make([]float32, width*height*depth*Channels),
	}

	for z := 0; z < depth; z++ {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				c := ColorB
				if x < y {
					c = ColorA
				}
				copy(v.Data[v.index(x, y, z):], c[:])
			}
		}
	}
	return v, nil
}

func (v *Volume) index(x, y, z int) int {
	return ((z*v.Height+y)*v.Width + x) * Channels
}

func (v *Volume) RowPitch() uint32 {
	return uint32(v.Width * BytesPerTexel)
}

func (v *Volume) SlicePitch() uint32 {
	return uint32(v.Width * v.Height * BytesPerTexel)
}

func (v *Volume) ByteSize() int {
	return len(v.Data) * 4
}

// Bytes returns the little endian payload of the whole volume.
func (v *Volume) Bytes() []byte {
	buf := make([]byte, 0, v.ByteSize())
	for _, f := range v.Data {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	return buf
}

// At returns the texel at (x, y, z). Out of range coordinates report false.
func (v *Volume) At(x, y, z int) ([Channels]float32, bool) {
	var c [Channels]float32
	if x < 0 || y < 0 || z < 0 || x >= v.Width || y >= v.Height || z >= v.Depth {
		return c, false
	}
	copy(c[:], v.Data[v.index(x, y, z):])
	return c, true
}

// SliceImage converts depth slice z to an 8-bit image.
func (v *Volume) SliceImage(z int) (*image.NRGBA, error) {
	if z < 0 || z >= v.Depth {
		return nil, errors.Errorf("slice %d out of range [0, %d)", z, v.Depth)
	}

	img := image.NewNRGBA(image.Rect(0, 0, v.Width, v.Height))
	for y := 0; y < v.Height; y++ {
		for x := 0; x < v.Width; x++ {
			c, _ := v.At(x, y, z)
			img.SetNRGBA(x, y, color.NRGBA{
				R: toByte(c[0]),
				G: toByte(c[1]),
				B: toByte(c[2]),
				A: toByte(c[3]),
			})
		}
	}
	return img, nil
}

// PreviewPNG writes slice z scaled to size x size as PNG.
func (v *Volume) PreviewPNG(w io.Writer, z, size int) error {
	if size <= 0 {
		return errors.Errorf("invalid preview size %d", size)
	}
	src, err := v.SliceImage(z)
	if err != nil {
		return err
	}

	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	if err := png.Encode(w, dst); err != nil {
		return errors.Wrap(err, "encode slice preview")
	}
	return nil
}

func toByte(f float32) uint8 {
	if f <= 0 {
		return 0
	}
	if f >= 1 {
		return 255
	}
	return uint8(f*255 + 0.5)
}
