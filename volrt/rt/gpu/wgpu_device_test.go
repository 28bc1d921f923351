package gpu

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBufferUsage(t *testing.T) {
	assert.Equal(t, wgpu.BufferUsageVertex, toBufferUsage(BufferUsageVertex))
	assert.Equal(t, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst, toBufferUsage(BufferUsageUniform|BufferUsageCopyDst))
	assert.Equal(t, wgpu.BufferUsage(0), toBufferUsage(0))
}

func TestAlignBufferSize(t *testing.T) {
	assert.Equal(t, uint64(320), alignBufferSize(320))
	assert.Equal(t, uint64(12), alignBufferSize(9))
}

func TestToVertexBufferLayout(t *testing.T) {
	l := toVertexBufferLayout(VertexLayout{
		Stride: 24,
		Attributes: []VertexAttribute{
			{Format: VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
		},
	})

	assert.Equal(t, uint64(24), l.ArrayStride)
	assert.Equal(t, wgpu.VertexStepModeVertex, l.StepMode)
	require.Len(t, l.Attributes, 2)
	assert.Equal(t, wgpu.VertexFormatFloat32x3, l.Attributes[1].Format)
	assert.Equal(t, uint64(12), l.Attributes[1].Offset)
	assert.Equal(t, uint32(1), l.Attributes[1].ShaderLocation)
}

func TestPrimitiveState(t *testing.T) {
	s := primitiveState(FrontFaceCW, CullBack)
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, s.Topology)
	assert.Equal(t, wgpu.FrontFaceCW, s.FrontFace)
	assert.Equal(t, wgpu.CullModeBack, s.CullMode)

	s = primitiveState(FrontFaceCCW, CullNone)
	assert.Equal(t, wgpu.FrontFaceCCW, s.FrontFace)
	assert.Equal(t, wgpu.CullModeNone, s.CullMode)
}

func TestBlendAndDepthState(t *testing.T) {
	assert.Nil(t, blendState(false))
	b := blendState(true)
	require.NotNil(t, b)
	assert.Equal(t, wgpu.BlendFactorSrcAlpha, b.Color.SrcFactor)
	assert.Equal(t, wgpu.BlendFactorOneMinusSrcAlpha, b.Color.DstFactor)

	assert.Nil(t, depthStencilState(wgpu.TextureFormatUndefined))
	d := depthStencilState(wgpu.TextureFormatDepth24Plus)
	require.NotNil(t, d)
	assert.Equal(t, wgpu.CompareFunctionLess, d.DepthCompare)
	assert.True(t, d.DepthWriteEnabled)
}

func TestTextureDescriptors(t *testing.T) {
	desc := TextureDesc{Label: "volume", Format: "rgba32float", Width: 256, Height: 256, Depth: 256, RowPitch: 256 * 16, SlicePitch: 256 * 256 * 16}

	td, err := textureDescriptor(desc)
	require.NoError(t, err)
	assert.Equal(t, wgpu.TextureDimension3D, td.Dimension)
	assert.Equal(t, wgpu.TextureFormatRGBA32Float, td.Format)
	assert.Equal(t, uint32(256), td.Size.DepthOrArrayLayers)
	assert.Equal(t, uint32(1), td.MipLevelCount)
	assert.Equal(t, wgpu.TextureUsageTextureBinding|wgpu.TextureUsageCopyDst, td.Usage)

	layout := textureDataLayout(desc)
	assert.Equal(t, uint32(4096), layout.BytesPerRow)
	assert.Equal(t, uint32(256), layout.RowsPerImage)
}

func TestTextureDescriptorUnknownFormat(t *testing.T) {
	_, err := textureDescriptor(TextureDesc{Label: "volume", Format: "r11g11b10", Width: 1, Height: 1, Depth: 1})
	assert.ErrorContains(t, err, `unsupported texture format "r11g11b10"`)

	_, err = textureDescriptor(TextureDesc{Label: "volume", Width: 1, Height: 1, Depth: 1})
	assert.Error(t, err, "format is required")
}

func TestSamplerDescriptor(t *testing.T) {
	s := samplerDescriptor(SamplerDesc{Label: "volume", LodMinClamp: 0, LodMaxClamp: 32})
	assert.Equal(t, wgpu.AddressModeClampToEdge, s.AddressModeW)
	assert.Equal(t, wgpu.FilterModeLinear, s.MinFilter)
	assert.Equal(t, wgpu.MipmapFilterModeLinear, s.MipmapFilter)
	assert.Equal(t, float32(32), s.LodMaxClamp)
	assert.Equal(t, uint16(1), s.MaxAnisotropy)
}

type foreignHandle struct{}

func (foreignHandle) Release() {}

func TestUnwrapRejectsForeignHandles(t *testing.T) {
	_, err := unwrap[*wgpu.Buffer](foreignHandle{}, "buffer")
	assert.ErrorContains(t, err, "unexpected handle type")
}
