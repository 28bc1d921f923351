package core

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	VerticesPerCube = 8
	IndicesPerCube  = 36
)

// Vertex is the per-vertex record of the cube mesh. Layout matches the
// shader inputs: position at location 0, texture coordinate at location 1.
type Vertex struct {
	Position mgl32.Vec3
	TexCoord mgl32.Vec3
}

var VertexStride = uint64(unsafe.Sizeof(Vertex{}))

// cubeIndices is the triangle template for one cube, two triangles per face.
var cubeIndices = [IndicesPerCube]uint32{
	0, 2, 1, // -x
	1, 2, 3,

	4, 5, 6, // +x
	5, 7, 6,

	0, 1, 5, // -y
	0, 5, 4,

	2, 6, 7, // +y
	2, 7, 3,

	0, 4, 6, // -z
	0, 6, 2,

	1, 3, 7, // +z
	1, 7, 5,
}

type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	// IndexCount is the running index cursor after generation, used for the draw call.
	IndexCount uint32
}

// GenerateNestedCubes fills a grid over the box [boundsMin, boundsMax] with
// cubes, corner positions interpolated between the bounds. The grid is a single
// cell, level does not subdivide it. Texture coordinates follow the sampling
// contract of the volume texture and are not a normalized mapping of the grid.
func GenerateNestedCubes(boundsMin, boundsMax mgl32.Vec3, level int) Mesh {
	_ = level

	const cubeCntWidth = float32(1.0)
	const cubeSize = 1.0 / cubeCntWidth
	cell := boundsMax.Sub(boundsMin).Mul(cubeSize)

	var m Mesh
	indexOffset := uint32(0)

	for z := float32(0); z < cubeCntWidth; z++ {
		for y := float32(0); y < cubeCntWidth; y++ {
			for x := float32(0); x < cubeCntWidth; x++ {
				startX := boundsMin.X() + x*cell.X()
				endX := startX + cell.X()
				startY := boundsMin.Y() + y*cell.Y()
				endY := startY + cell.Y()
				startZ := boundsMin.Z() + z*cell.Z()
				endZ := startZ + cell.Z()

				startXt := x * cubeSize
				endXt := startXt + cubeSize
				startYt := y + y*cubeSize
				endYt := startYt + cubeSize
				startZt := z + z*cubeSize
				endZt := startZt + cubeSize

				m.Vertices = append(m.Vertices,
					Vertex{mgl32.Vec3{startX, startY, startZ}, mgl32.Vec3{startXt, startYt, startZt}},
					Vertex{mgl32.Vec3{startX, startY, endZ}, mgl32.Vec3{startXt, startYt, endZt}},
					Vertex{mgl32.Vec3{startX, endY, startZ}, mgl32.Vec3{startXt, endYt, startZt}},
					Vertex{mgl32.Vec3{startX, endY, endZ}, mgl32.Vec3{startXt, endYt, endZt}},
					Vertex{mgl32.Vec3{endX, startY, startZ}, mgl32.Vec3{endXt, startYt, startZt}},
					Vertex{mgl32.Vec3{endX, startY, endZ}, mgl32.Vec3{endXt, startYt, endZt}},
					Vertex{mgl32.Vec3{endX, endY, startZ}, mgl32.Vec3{endXt, endYt, startZt}},
					Vertex{mgl32.Vec3{endX, endY, endZ}, mgl32.Vec3{endXt, endYt, endZt}},
				)

				for _, idx := range cubeIndices {
					m.Indices = append(m.Indices, idx+indexOffset)
				}

				indexOffset = uint32(len(m.Vertices))
			}
		}
	}
	m.IndexCount = uint32(len(m.Indices))
	return m
}

func (m Mesh) CubeCount() int {
	return len(m.Vertices) / VerticesPerCube
}

// VertexBytes packs the vertices little endian, 6 floats per vertex.
func (m Mesh) VertexBytes() []byte {
	buf := make([]byte, 0, len(m.Vertices)*int(VertexStride))
	for _, v := range m.Vertices {
		for _, f := range [6]float32{v.Position[0], v.Position[1], v.Position[2], v.TexCoord[0], v.TexCoord[1], v.TexCoord[2]} {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
		}
	}
	return buf
}

func (m Mesh) IndexBytes() []byte {
	buf := make([]byte, 0, len(m.Indices)*4)
	for _, idx := range m.Indices {
		buf = binary.LittleEndian.AppendUint32(buf, idx)
	}
	return buf
}
