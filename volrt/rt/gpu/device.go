package gpu

// Resource is any GPU object owned by the caller.
type Resource interface {
	Release()
}

type (
	ShaderModule   interface{ Resource }
	Buffer         interface{ Resource }
	RenderPipeline interface{ Resource }
	Texture        interface{ Resource }
	TextureView    interface{ Resource }
	Sampler        interface{ Resource }
	BindGroup      interface{ Resource }
)

type BufferUsage uint32

const (
	BufferUsageVertex BufferUsage = 1 << iota
	BufferUsageIndex
	BufferUsageUniform
	BufferUsageCopyDst
)

type VertexFormat uint8

const (
	VertexFormatFloat32x3 VertexFormat = iota
	VertexFormatFloat32x4
)

type VertexAttribute struct {
	Format         VertexFormat
	Offset         uint64
	ShaderLocation uint32
}

type VertexLayout struct {
	Stride     uint64
	Attributes []VertexAttribute
}

type FrontFace uint8

const (
	FrontFaceCW FrontFace = iota
	FrontFaceCCW
)

type CullMode uint8

const (
	CullBack CullMode = iota
	CullNone
)

type PipelineDesc struct {
	Label          string
	VertexModule   ShaderModule
	VertexEntry    string
	FragmentModule ShaderModule
	FragmentEntry  string
	VertexLayout   VertexLayout
	FrontFace      FrontFace
	CullMode       CullMode
	AlphaBlend     bool
}

// TextureDesc describes a 3D texture. Format is the WebGPU texel format name,
// such as "rgba32float".
type TextureDesc struct {
	Label      string
	Format     string
	Width      uint32
	Height     uint32
	Depth      uint32
	RowPitch   uint32
	SlicePitch uint32
}

type SamplerDesc struct {
	Label       string
	LodMinClamp float32
	LodMaxClamp float32
}

// BindGroupEntry binds exactly one of Buffer, View or Sampler.
type BindGroupEntry struct {
	Binding uint32
	Buffer  Buffer
	Size    uint64
	View    TextureView
	Sampler Sampler
}

// Device creates the scene's GPU objects. Every returned object must be
// released by the caller.
type Device interface {
	CreateShaderModule(label string, code []byte) (ShaderModule, error)
	// CreateBuffer creates a buffer of size bytes, initialized with contents when non-nil.
	CreateBuffer(label string, usage BufferUsage, size uint64, contents []byte) (Buffer, error)
	CreateRenderPipeline(desc PipelineDesc) (RenderPipeline, error)
	// CreateTexture3D creates a 3D texture in desc.Format and uploads data into it.
	CreateTexture3D(desc TextureDesc, data []byte) (Texture, error)
	CreateTextureView(tex Texture) (TextureView, error)
	CreateSampler(desc SamplerDesc) (Sampler, error)
	CreateBindGroup(label string, pipeline RenderPipeline, group uint32, entries []BindGroupEntry) (BindGroup, error)
	WriteBuffer(buf Buffer, offset uint64, data []byte) error
}

// RenderPass records draw state for one frame.
type RenderPass interface {
	SetPipeline(p RenderPipeline)
	SetVertexBuffer(slot uint32, buf Buffer)
	SetIndexBuffer(buf Buffer)
	SetBindGroup(group uint32, bg BindGroup)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)
}
