package core

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateNestedCubes_Counts(t *testing.T) {
	tests := []struct {
		name     string
		min, max mgl32.Vec3
	}{
		{"unit cube at origin", mgl32.Vec3{-0.5, -0.5, -0.5}, mgl32.Vec3{0.5, 0.5, 0.5}},
		{"offset box", mgl32.Vec3{1, 2, 3}, mgl32.Vec3{4, 6, 8}},
		{"zero size", mgl32.Vec3{0.25, 0.25, 0.25}, mgl32.Vec3{0.25, 0.25, 0.25}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := GenerateNestedCubes(tc.min, tc.max, 0)

			assert.Len(t, m.Vertices, VerticesPerCube)
			assert.Len(t, m.Indices, IndicesPerCube)
			assert.Equal(t, uint32(IndicesPerCube), m.IndexCount)
			assert.Equal(t, 1, m.CubeCount())
			for i, idx := range m.Indices {
				assert.Less(t, idx, uint32(VerticesPerCube), "index %d out of range", i)
			}
		})
	}
}

func TestGenerateNestedCubes_LevelDoesNotSubdivide(t *testing.T) {
	a := GenerateNestedCubes(mgl32.Vec3{-0.5, -0.5, -0.5}, mgl32.Vec3{0.5, 0.5, 0.5}, 0)
	b := GenerateNestedCubes(mgl32.Vec3{-0.5, -0.5, -0.5}, mgl32.Vec3{0.5, 0.5, 0.5}, 3)
	assert.Equal(t, a, b)
}

func TestGenerateNestedCubes_TriangleTemplate(t *testing.T) {
	m := GenerateNestedCubes(mgl32.Vec3{-0.5, -0.5, -0.5}, mgl32.Vec3{0.5, 0.5, 0.5}, 0)

	expected := [][3]uint32{
		{0, 2, 1}, {1, 2, 3}, // -x
		{4, 5, 6}, {5, 7, 6}, // +x
		{0, 1, 5}, {0, 5, 4}, // -y
		{2, 6, 7}, {2, 7, 3}, // +y
		{0, 4, 6}, {0, 6, 2}, // -z
		{1, 3, 7}, {1, 7, 5}, // +z
	}
	require.Len(t, m.Indices, len(expected)*3)
	for i, tri := range expected {
		got := [3]uint32{m.Indices[i*3], m.Indices[i*3+1], m.Indices[i*3+2]}
		assert.Equal(t, tri, got, "triangle %d", i)
	}
}

// Every face must wind the same way when viewed from outside the cube:
// the geometric normal of each triangle points away from the cube center.
func TestGenerateNestedCubes_ConsistentWinding(t *testing.T) {
	m := GenerateNestedCubes(mgl32.Vec3{-0.5, -0.5, -0.5}, mgl32.Vec3{0.5, 0.5, 0.5}, 0)
	center := mgl32.Vec3{0, 0, 0}

	var sign float32
	for i := 0; i < len(m.Indices); i += 3 {
		a := m.Vertices[m.Indices[i]].Position
		b := m.Vertices[m.Indices[i+1]].Position
		c := m.Vertices[m.Indices[i+2]].Position

		n := b.Sub(a).Cross(c.Sub(a))
		centroid := a.Add(b).Add(c).Mul(1.0 / 3.0)
		d := n.Dot(centroid.Sub(center))
		require.NotZero(t, d, "degenerate triangle %d", i/3)

		s := float32(1)
		if d < 0 {
			s = -1
		}
		if i == 0 {
			sign = s
		}
		assert.Equal(t, sign, s, "triangle %d winds differently", i/3)
	}
}

func TestGenerateNestedCubes_Corners(t *testing.T) {
	m := GenerateNestedCubes(mgl32.Vec3{-0.5, -0.5, -0.5}, mgl32.Vec3{0.5, 0.5, 0.5}, 0)

	positions := []mgl32.Vec3{
		{-0.5, -0.5, -0.5},
		{-0.5, -0.5, 0.5},
		{-0.5, 0.5, -0.5},
		{-0.5, 0.5, 0.5},
		{0.5, -0.5, -0.5},
		{0.5, -0.5, 0.5},
		{0.5, 0.5, -0.5},
		{0.5, 0.5, 0.5},
	}
	texCoords := []mgl32.Vec3{
		{0, 0, 0},
		{0, 0, 1},
		{0, 1, 0},
		{0, 1, 1},
		{1, 0, 0},
		{1, 0, 1},
		{1, 1, 0},
		{1, 1, 1},
	}
	for i, v := range m.Vertices {
		assert.InDeltaSlice(t, positions[i][:], v.Position[:], 1e-6, "position %d", i)
		assert.InDeltaSlice(t, texCoords[i][:], v.TexCoord[:], 1e-6, "texcoord %d", i)
	}
}

func TestGenerateNestedCubes_ZeroSizeBox(t *testing.T) {
	p := mgl32.Vec3{1, 1, 1}
	m := GenerateNestedCubes(p, p, 0)
	for _, v := range m.Vertices {
		assert.Equal(t, p, v.Position)
	}
	// Texture coordinates do not depend on the bounds.
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, m.Vertices[7].TexCoord)
}

func TestMesh_Bytes(t *testing.T) {
	m := GenerateNestedCubes(mgl32.Vec3{-0.5, -0.5, -0.5}, mgl32.Vec3{0.5, 0.5, 0.5}, 0)

	assert.Equal(t, uint64(24), VertexStride)

	vb := m.VertexBytes()
	require.Len(t, vb, len(m.Vertices)*int(VertexStride))
	// vertex 7: position (0.5, 0.5, 0.5), texcoord (1, 1, 1)
	off := 7 * int(VertexStride)
	assert.Equal(t, float32(0.5), math.Float32frombits(binary.LittleEndian.Uint32(vb[off:])))
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(vb[off+12:])))

	ib := m.IndexBytes()
	require.Len(t, ib, len(m.Indices)*4)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(ib[4:]))
}
