package gpu

import (
	"encoding/binary"
	"math"

	"github.com/gekko3d/volumeshader/volrt/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// TransformsSize is the byte size of the Transforms uniform block:
//
//	struct Transforms {
//	  world: mat4x4<f32>;      -- 0
//	  view: mat4x4<f32>;       -- 64
//	  projection: mat4x4<f32>; -- 128
//	  wvp: mat4x4<f32>;        -- 192
//	  inv_wvp: mat4x4<f32>;    -- 256
//	} -> 320 bytes
const TransformsSize = 5 * 64

// PackTransforms writes the record column major, the layout WGSL expects.
func PackTransforms(rec core.ModelViewProjection) []byte {
	buf := make([]byte, TransformsSize)

	writeMat := func(offset int, mat mgl32.Mat4) {
		for i, v := range mat {
			binary.LittleEndian.PutUint32(buf[offset+i*4:], math.Float32bits(v))
		}
	}

	writeMat(0, rec.World)
	writeMat(64, rec.View)
	writeMat(128, rec.Projection)
	writeMat(192, rec.WorldViewProjection)
	writeMat(256, rec.InverseWorldViewProjection)

	return buf
}
