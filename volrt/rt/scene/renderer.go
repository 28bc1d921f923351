package scene

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/gekko3d/volumeshader"
	"github.com/gekko3d/volumeshader/volrt/rt/core"
	"github.com/gekko3d/volumeshader/volrt/rt/gpu"
	"github.com/gekko3d/volumeshader/volrt/rt/shaders"
	"github.com/gekko3d/volumeshader/volrt/rt/volume"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

var (
	MeshBoundsMin = mgl32.Vec3{-0.5, -0.5, -0.5}
	MeshBoundsMax = mgl32.Vec3{0.5, 0.5, 0.5}
)

// MeshFrontFace is the on-screen winding of the cube's outward faces under the
// left handed transforms. Back culling keeps the faces towards the camera,
// where the fragment ray enters the volume.
const MeshFrontFace = gpu.FrontFaceCCW

// VertexLayout matches core.Vertex: position at location 0, texcoord at location 1.
var VertexLayout = gpu.VertexLayout{
	Stride: core.VertexStride,
	Attributes: []gpu.VertexAttribute{
		{Format: gpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		{Format: gpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
	},
}

// resources is one complete set of device dependent objects. It is built by
// a single init run and published as a whole.
type resources struct {
	id uuid.UUID

	vertexShader gpu.ShaderModule
	pixelShader  gpu.ShaderModule
	uniforms     gpu.Buffer
	pipeline     gpu.RenderPipeline

	vertexBuffer gpu.Buffer
	indexBuffer  gpu.Buffer
	indexCount   uint32

	volumeTexture gpu.Texture
	volumeView    gpu.TextureView
	sampler       gpu.Sampler

	bindGroup gpu.BindGroup
}

func (r *resources) release() {
	for _, obj := range []gpu.Resource{
		r.bindGroup,
		r.sampler,
		r.volumeView,
		r.volumeTexture,
		r.indexBuffer,
		r.vertexBuffer,
		r.pipeline,
		r.uniforms,
		r.pixelShader,
		r.vertexShader,
	} {
		if obj != nil {
			obj.Release()
		}
	}
	*r = resources{id: r.id}
}

// Renderer draws the volume cube. Device dependent objects are created
// asynchronously; Render is a no-op until they are ready.
type Renderer struct {
	device gpu.Device
	loader shaders.Loader
	cfg    volumeshader.Config
	log    volumeshader.Logger

	transforms  *core.Transforms
	outputWidth float32

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
	res    atomic.Pointer[resources]
}

func NewRenderer(device gpu.Device, loader shaders.Loader, cfg volumeshader.Config, log volumeshader.Logger) *Renderer {
	if loader == nil {
		loader = shaders.EmbeddedLoader{}
	}
	return &Renderer{
		device:     device,
		loader:     loader,
		cfg:        cfg,
		log:        volumeshader.OrNop(log),
		transforms: core.NewTransforms(cfg.Rotation.DegreesPerSecond, cfg.Rotation.AutoRotate),
	}
}

// CreateDeviceDependentResources starts building every GPU object on a
// background goroutine. The returned channel receives exactly one value, nil
// on success, and is then closed. Resources left from an earlier run are
// released first.
func (r *Renderer) CreateDeviceDependentResources(ctx context.Context) <-chan error {
	r.ReleaseDeviceDependentResources()

	ctx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()

	done := make(chan error, 1)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer close(done)
		err := r.createResources(ctx)
		if err != nil && errors.Cause(err) != context.Canceled {
			r.log.Errorf("device resources: %v", err)
		}
		done <- err
	}()
	return done
}

func (r *Renderer) createResources(ctx context.Context) error {
	res := &resources{id: uuid.New()}
	r.log.Debugf("creating device resources %s", res.id)

	if err := r.build(ctx, res); err != nil {
		res.release()
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := ctx.Err(); err != nil {
		res.release()
		return errors.Wrap(err, "device resources cancelled")
	}
	r.res.Store(res)
	r.log.Infof("device resources %s ready, %d indices", res.id, res.indexCount)
	return nil
}

func (r *Renderer) build(ctx context.Context, res *resources) error {
	// 1. Shader sources, loaded concurrently.
	var vsCode, psCode []byte
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		vsCode, err = r.loader.Load(gctx, r.cfg.Shaders.Vertex)
		return err
	})
	g.Go(func() error {
		var err error
		psCode, err = r.loader.Load(gctx, r.cfg.Shaders.Pixel)
		return err
	})
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "load shaders")
	}

	// 2. Vertex stage.
	var err error
	if res.vertexShader, err = r.device.CreateShaderModule(r.cfg.Shaders.Vertex, vsCode); err != nil {
		return errors.Wrap(err, "vertex shader")
	}

	// 3. Fragment stage and the transforms uniform buffer.
	if res.pixelShader, err = r.device.CreateShaderModule(r.cfg.Shaders.Pixel, psCode); err != nil {
		return errors.Wrap(err, "pixel shader")
	}
	if res.uniforms, err = r.device.CreateBuffer("Transforms", gpu.BufferUsageUniform|gpu.BufferUsageCopyDst, gpu.TransformsSize, nil); err != nil {
		return errors.Wrap(err, "transforms buffer")
	}

	// 4. Pipeline.
	if err := ctx.Err(); err != nil {
		return err
	}
	desc := gpu.PipelineDesc{
		Label:          "Volume Pipeline",
		VertexModule:   res.vertexShader,
		VertexEntry:    shaders.VertexEntryPoint,
		FragmentModule: res.pixelShader,
		FragmentEntry:  shaders.FragmentEntryPoint,
		VertexLayout:   VertexLayout,
		FrontFace:      MeshFrontFace,
		CullMode:       gpu.CullBack,
		AlphaBlend:     r.cfg.Pipeline.AlphaBlend,
	}
	if r.cfg.Pipeline.CullNone {
		desc.CullMode = gpu.CullNone
	}
	if res.pipeline, err = r.device.CreateRenderPipeline(desc); err != nil {
		return errors.Wrap(err, "render pipeline")
	}

	// 5. Cube mesh.
	mesh := core.GenerateNestedCubes(MeshBoundsMin, MeshBoundsMax, 0)
	if res.vertexBuffer, err = r.device.CreateBuffer("Cube Vertices", gpu.BufferUsageVertex, uint64(len(mesh.Vertices))*core.VertexStride, mesh.VertexBytes()); err != nil {
		return errors.Wrap(err, "vertex buffer")
	}
	if res.indexBuffer, err = r.device.CreateBuffer("Cube Indices", gpu.BufferUsageIndex, uint64(len(mesh.Indices))*4, mesh.IndexBytes()); err != nil {
		return errors.Wrap(err, "index buffer")
	}
	res.indexCount = mesh.IndexCount

	// 6. Volume texture, view and sampler.
	if err := ctx.Err(); err != nil {
		return err
	}
	vol, err := volume.Generate(r.cfg.Volume.Width, r.cfg.Volume.Height, r.cfg.Volume.Depth)
	if err != nil {
		return errors.Wrap(err, "generate volume")
	}
	texDesc := gpu.TextureDesc{
		Label:      "Volume Texture",
		Format:     volume.FormatRGBA32Float,
		Width:      uint32(vol.Width),
		Height:     uint32(vol.Height),
		Depth:      uint32(vol.Depth),
		RowPitch:   vol.RowPitch(),
		SlicePitch: vol.SlicePitch(),
	}
	if res.volumeTexture, err = r.device.CreateTexture3D(texDesc, vol.Bytes()); err != nil {
		return errors.Wrap(err, "volume texture")
	}
	if res.volumeView, err = r.device.CreateTextureView(res.volumeTexture); err != nil {
		return errors.Wrap(err, "volume view")
	}
	if res.sampler, err = r.device.CreateSampler(gpu.SamplerDesc{Label: "Volume Sampler", LodMinClamp: 0, LodMaxClamp: 32}); err != nil {
		return errors.Wrap(err, "volume sampler")
	}

	// 7. Bind group.
	entries := []gpu.BindGroupEntry{
		{Binding: 0, Buffer: res.uniforms, Size: gpu.TransformsSize},
		{Binding: 1, View: res.volumeView},
		{Binding: 2, Sampler: res.sampler},
	}
	if res.bindGroup, err = r.device.CreateBindGroup("Volume BG", res.pipeline, 0, entries); err != nil {
		return errors.Wrap(err, "bind group")
	}
	return nil
}

// ReleaseDeviceDependentResources cancels an in-flight init, waits for it to
// unwind and releases every GPU object. No device call is made after it
// returns. CreateDeviceDependentResources may be called again after.
func (r *Renderer) ReleaseDeviceDependentResources() {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	// createResources takes mu before publishing.
	r.wg.Wait()

	if res := r.res.Swap(nil); res != nil {
		r.log.Debugf("releasing device resources %s", res.id)
		res.release()
	}
}

// Render records the cube draw into pass. Nothing is recorded until the
// device resources are ready.
func (r *Renderer) Render(pass gpu.RenderPass) error {
	res := r.res.Load()
	if res == nil {
		return nil
	}

	if err := r.device.WriteBuffer(res.uniforms, 0, gpu.PackTransforms(r.transforms.Record())); err != nil {
		return errors.Wrap(err, "update transforms")
	}

	pass.SetPipeline(res.pipeline)
	pass.SetVertexBuffer(0, res.vertexBuffer)
	pass.SetIndexBuffer(res.indexBuffer)
	pass.SetBindGroup(0, res.bindGroup)
	pass.DrawIndexed(res.indexCount, 1, 0, 0, 0)
	return nil
}

func (r *Renderer) Ready() bool {
	return r.res.Load() != nil
}

// IndexCount is the number of indices drawn per frame, 0 before ready.
func (r *Renderer) IndexCount() uint32 {
	if res := r.res.Load(); res != nil {
		return res.indexCount
	}
	return 0
}

// ResourceID identifies the current resource set, uuid.Nil before ready.
func (r *Renderer) ResourceID() uuid.UUID {
	if res := r.res.Load(); res != nil {
		return res.id
	}
	return uuid.Nil
}

// CreateWindowSizeDependentResources rebuilds the transforms for a new output size.
func (r *Renderer) CreateWindowSizeDependentResources(width, height float32, orientation mgl32.Mat4) {
	r.outputWidth = width
	r.transforms.Resize(width, height, orientation)
}

func (r *Renderer) Update(timer *volumeshader.StepTimer) {
	r.transforms.Update(timer.TotalSeconds())
}

func (r *Renderer) StartTracking() {
	r.transforms.StartTracking()
}

// TrackingUpdate rotates the cube from the pointer x position while tracking.
func (r *Renderer) TrackingUpdate(positionX float32) {
	r.transforms.TrackingUpdate(positionX, r.outputWidth)
}

func (r *Renderer) StopTracking() {
	r.transforms.StopTracking()
}

func (r *Renderer) IsTracking() bool {
	return r.transforms.IsTracking()
}

func (r *Renderer) Transforms() *core.Transforms {
	return r.transforms
}
