package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pkg/errors"
)

// WGPUDevice implements Device on top of a WebGPU device and its queue.
type WGPUDevice struct {
	device      *wgpu.Device
	queue       *wgpu.Queue
	colorFormat wgpu.TextureFormat
	// depthFormat is TextureFormatUndefined when the host renders without depth.
	depthFormat wgpu.TextureFormat
}

func NewWGPUDevice(device *wgpu.Device, queue *wgpu.Queue, colorFormat, depthFormat wgpu.TextureFormat) *WGPUDevice {
	return &WGPUDevice{
		device:      device,
		queue:       queue,
		colorFormat: colorFormat,
		depthFormat: depthFormat,
	}
}

func unwrap[T any](r Resource, what string) (T, error) {
	v, ok := r.(T)
	if !ok {
		var zero T
		return zero, errors.Errorf("%s: unexpected handle type %T", what, r)
	}
	return v, nil
}

func (d *WGPUDevice) CreateShaderModule(label string, code []byte) (ShaderModule, error) {
	module, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: string(code)},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create shader module %q", label)
	}
	return module, nil
}

func (d *WGPUDevice) CreateBuffer(label string, usage BufferUsage, size uint64, contents []byte) (Buffer, error) {
	if contents != nil {
		buf, err := d.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
			Label:    label,
			Contents: contents,
			Usage:    toBufferUsage(usage),
		})
		if err != nil {
			return nil, errors.Wrapf(err, "create buffer %q", label)
		}
		return buf, nil
	}

	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label,
		Size:             alignBufferSize(size),
		Usage:            toBufferUsage(usage),
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create buffer %q", label)
	}
	return buf, nil
}

func (d *WGPUDevice) CreateRenderPipeline(desc PipelineDesc) (RenderPipeline, error) {
	vs, err := unwrap[*wgpu.ShaderModule](desc.VertexModule, "vertex module")
	if err != nil {
		return nil, err
	}
	fs, err := unwrap[*wgpu.ShaderModule](desc.FragmentModule, "fragment module")
	if err != nil {
		return nil, err
	}

	pipeline, err := d.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: desc.Label,
		// Layout auto, bind group layouts are queried from the pipeline.
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: desc.VertexEntry,
			Buffers:    []wgpu.VertexBufferLayout{toVertexBufferLayout(desc.VertexLayout)},
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: desc.FragmentEntry,
			Targets: []wgpu.ColorTargetState{
				{
					Format:    d.colorFormat,
					WriteMask: wgpu.ColorWriteMaskAll,
					Blend:     blendState(desc.AlphaBlend),
				},
			},
		},
		Primitive:    primitiveState(desc.FrontFace, desc.CullMode),
		DepthStencil: depthStencilState(d.depthFormat),
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create render pipeline %q", desc.Label)
	}
	return pipeline, nil
}

func (d *WGPUDevice) CreateTexture3D(desc TextureDesc, data []byte) (Texture, error) {
	texDesc, err := textureDescriptor(desc)
	if err != nil {
		return nil, errors.Wrapf(err, "texture %q", desc.Label)
	}
	tex, err := d.device.CreateTexture(texDesc)
	if err != nil {
		return nil, errors.Wrapf(err, "create texture %q", desc.Label)
	}

	err = d.queue.WriteTexture(
		tex.AsImageCopy(),
		data,
		textureDataLayout(desc),
		&texDesc.Size,
	)
	if err != nil {
		tex.Release()
		return nil, errors.Wrapf(err, "upload texture %q", desc.Label)
	}
	return tex, nil
}

func (d *WGPUDevice) CreateTextureView(t Texture) (TextureView, error) {
	tex, err := unwrap[*wgpu.Texture](t, "texture")
	if err != nil {
		return nil, err
	}
	// the default view inherits format and dimension from the texture
	view, err := tex.CreateView(nil)
	if err != nil {
		return nil, errors.Wrap(err, "create texture view")
	}
	return view, nil
}

func (d *WGPUDevice) CreateSampler(desc SamplerDesc) (Sampler, error) {
	samp, err := d.device.CreateSampler(samplerDescriptor(desc))
	if err != nil {
		return nil, errors.Wrapf(err, "create sampler %q", desc.Label)
	}
	return samp, nil
}

func (d *WGPUDevice) CreateBindGroup(label string, p RenderPipeline, group uint32, entries []BindGroupEntry) (BindGroup, error) {
	pipeline, err := unwrap[*wgpu.RenderPipeline](p, "pipeline")
	if err != nil {
		return nil, err
	}

	wgpuEntries := make([]wgpu.BindGroupEntry, 0, len(entries))
	for _, e := range entries {
		entry := wgpu.BindGroupEntry{Binding: e.Binding}
		switch {
		case e.Buffer != nil:
			if entry.Buffer, err = unwrap[*wgpu.Buffer](e.Buffer, "bind group buffer"); err != nil {
				return nil, err
			}
			entry.Size = e.Size
		case e.View != nil:
			if entry.TextureView, err = unwrap[*wgpu.TextureView](e.View, "bind group view"); err != nil {
				return nil, err
			}
		case e.Sampler != nil:
			if entry.Sampler, err = unwrap[*wgpu.Sampler](e.Sampler, "bind group sampler"); err != nil {
				return nil, err
			}
		default:
			return nil, errors.Errorf("bind group %q: entry %d binds nothing", label, e.Binding)
		}
		wgpuEntries = append(wgpuEntries, entry)
	}

	bg, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   label,
		Layout:  pipeline.GetBindGroupLayout(group),
		Entries: wgpuEntries,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create bind group %q", label)
	}
	return bg, nil
}

func (d *WGPUDevice) WriteBuffer(b Buffer, offset uint64, data []byte) error {
	buf, err := unwrap[*wgpu.Buffer](b, "buffer")
	if err != nil {
		return err
	}
	return errors.Wrap(d.queue.WriteBuffer(buf, offset, data), "write buffer")
}

// WGPURenderPass adapts a WebGPU render pass encoder to RenderPass.
type WGPURenderPass struct {
	Pass *wgpu.RenderPassEncoder
}

func (p WGPURenderPass) SetPipeline(pipeline RenderPipeline) {
	if rp, ok := pipeline.(*wgpu.RenderPipeline); ok {
		p.Pass.SetPipeline(rp)
	}
}

func (p WGPURenderPass) SetVertexBuffer(slot uint32, buf Buffer) {
	if b, ok := buf.(*wgpu.Buffer); ok {
		p.Pass.SetVertexBuffer(slot, b, 0, wgpu.WholeSize)
	}
}

func (p WGPURenderPass) SetIndexBuffer(buf Buffer) {
	if b, ok := buf.(*wgpu.Buffer); ok {
		p.Pass.SetIndexBuffer(b, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	}
}

func (p WGPURenderPass) SetBindGroup(group uint32, bg BindGroup) {
	if g, ok := bg.(*wgpu.BindGroup); ok {
		p.Pass.SetBindGroup(group, g, nil)
	}
}

func (p WGPURenderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.Pass.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

func toBufferUsage(u BufferUsage) wgpu.BufferUsage {
	var out wgpu.BufferUsage
	if u&BufferUsageVertex != 0 {
		out |= wgpu.BufferUsageVertex
	}
	if u&BufferUsageIndex != 0 {
		out |= wgpu.BufferUsageIndex
	}
	if u&BufferUsageUniform != 0 {
		out |= wgpu.BufferUsageUniform
	}
	if u&BufferUsageCopyDst != 0 {
		out |= wgpu.BufferUsageCopyDst
	}
	return out
}

func alignBufferSize(size uint64) uint64 {
	if size%4 != 0 {
		size += 4 - (size % 4)
	}
	return size
}

func toVertexFormat(f VertexFormat) wgpu.VertexFormat {
	switch f {
	case VertexFormatFloat32x4:
		return wgpu.VertexFormatFloat32x4
	default:
		return wgpu.VertexFormatFloat32x3
	}
}

func toVertexBufferLayout(l VertexLayout) wgpu.VertexBufferLayout {
	attrs := make([]wgpu.VertexAttribute, len(l.Attributes))
	for i, a := range l.Attributes {
		attrs[i] = wgpu.VertexAttribute{
			Format:         toVertexFormat(a.Format),
			Offset:         a.Offset,
			ShaderLocation: a.ShaderLocation,
		}
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: l.Stride,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attrs,
	}
}

func primitiveState(front FrontFace, cull CullMode) wgpu.PrimitiveState {
	state := wgpu.PrimitiveState{
		Topology:  wgpu.PrimitiveTopologyTriangleList,
		FrontFace: wgpu.FrontFaceCW,
		CullMode:  wgpu.CullModeBack,
	}
	if front == FrontFaceCCW {
		state.FrontFace = wgpu.FrontFaceCCW
	}
	if cull == CullNone {
		state.CullMode = wgpu.CullModeNone
	}
	return state
}

func blendState(alpha bool) *wgpu.BlendState {
	if !alpha {
		return nil
	}
	return &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorSrcAlpha,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		},
		Alpha: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorZero,
		},
	}
}

func depthStencilState(format wgpu.TextureFormat) *wgpu.DepthStencilState {
	if format == wgpu.TextureFormatUndefined {
		return nil
	}
	return &wgpu.DepthStencilState{
		Format:            format,
		DepthWriteEnabled: true,
		DepthCompare:      wgpu.CompareFunctionLess,
		StencilFront: wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		},
		StencilBack: wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		},
		StencilReadMask:  0xFFFFFFFF,
		StencilWriteMask: 0xFFFFFFFF,
	}
}

var textureFormats = map[string]wgpu.TextureFormat{
	"rgba32float": wgpu.TextureFormatRGBA32Float,
	"rgba16float": wgpu.TextureFormatRGBA16Float,
	"rgba8unorm":  wgpu.TextureFormatRGBA8Unorm,
}

func toTextureFormat(name string) (wgpu.TextureFormat, error) {
	f, ok := textureFormats[name]
	if !ok {
		return wgpu.TextureFormatUndefined, errors.Errorf("unsupported texture format %q", name)
	}
	return f, nil
}

func textureDescriptor(desc TextureDesc) (*wgpu.TextureDescriptor, error) {
	format, err := toTextureFormat(desc.Format)
	if err != nil {
		return nil, err
	}
	return &wgpu.TextureDescriptor{
		Label: desc.Label,
		Size: wgpu.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: desc.Depth,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension3D,
		Format:        format,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	}, nil
}

func textureDataLayout(desc TextureDesc) *wgpu.TextureDataLayout {
	rowsPerImage := desc.Height
	if desc.RowPitch > 0 && desc.SlicePitch > 0 {
		rowsPerImage = desc.SlicePitch / desc.RowPitch
	}
	return &wgpu.TextureDataLayout{
		Offset:       0,
		BytesPerRow:  desc.RowPitch,
		RowsPerImage: rowsPerImage,
	}
}

func samplerDescriptor(desc SamplerDesc) *wgpu.SamplerDescriptor {
	return &wgpu.SamplerDescriptor{
		Label:         desc.Label,
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMinClamp:   desc.LodMinClamp,
		LodMaxClamp:   desc.LodMaxClamp,
		Compare:       wgpu.CompareFunctionUndefined,
		MaxAnisotropy: 1,
	}
}
