package app

import (
	"context"

	"github.com/gekko3d/volumeshader"
	"github.com/gekko3d/volumeshader/volrt/rt/gpu"
	"github.com/gekko3d/volumeshader/volrt/rt/scene"
	"github.com/gekko3d/volumeshader/volrt/rt/shaders"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

const DepthFormat = wgpu.TextureFormatDepth24Plus

var ClearColor = wgpu.Color{R: 0.392, G: 0.584, B: 0.929, A: 1.0}

// App owns the window surface, the WebGPU device and the scene renderer.
type App struct {
	Window   *glfw.Window
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Surface  *wgpu.Surface
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Config   *wgpu.SurfaceConfiguration

	DepthTexture *wgpu.Texture
	DepthView    *wgpu.TextureView

	Renderer *scene.Renderer
	Timer    *volumeshader.StepTimer
	Stats    *FrameStats

	MouseX, MouseY float64

	cfg      volumeshader.Config
	loader   shaders.Loader
	log      volumeshader.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	initDone <-chan error
}

func NewApp(window *glfw.Window, cfg volumeshader.Config, loader shaders.Loader, log volumeshader.Logger) *App {
	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		Window: window,
		Timer:  volumeshader.NewStepTimer(),
		Stats:  NewFrameStats(),
		cfg:    cfg,
		loader: loader,
		log:    volumeshader.OrNop(log),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Init creates the device, configures the surface and starts loading the
// scene resources. Rendering may begin right away; the scene appears once
// its resources are ready.
func (a *App) Init() error {
	a.Instance = wgpu.CreateInstance(nil)
	a.Surface = a.Instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(a.Window))

	adapter, err := a.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: a.Surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return errors.Wrap(err, "request adapter")
	}
	a.Adapter = adapter

	// Linear filtering of the rgba32float volume needs this feature.
	var features []wgpu.FeatureName
	if adapter.HasFeature(wgpu.FeatureNameFloat32Filterable) {
		features = append(features, wgpu.FeatureNameFloat32Filterable)
	} else {
		a.log.Warnf("adapter lacks float32-filterable, volume pipeline may fail to build")
	}

	a.Device, err = adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label:            "Volume Device",
		RequiredFeatures: features,
	})
	if err != nil {
		return errors.Wrap(err, "request device")
	}
	a.Queue = a.Device.GetQueue()

	width, height := a.Window.GetFramebufferSize()
	caps := a.Surface.GetCapabilities(adapter)
	a.Config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	a.Surface.Configure(adapter, a.Device, a.Config)

	if err := a.setupDepth(); err != nil {
		return err
	}

	device := gpu.NewWGPUDevice(a.Device, a.Queue, a.Config.Format, DepthFormat)
	a.Renderer = scene.NewRenderer(device, a.loader, a.cfg, a.log)
	a.Renderer.CreateWindowSizeDependentResources(float32(width), float32(height), mgl32.Ident4())
	a.startResources()
	return nil
}

func (a *App) startResources() {
	a.Stats.BeginScope("init")
	a.initDone = a.Renderer.CreateDeviceDependentResources(a.ctx)
}

func (a *App) setupDepth() error {
	if a.DepthView != nil {
		a.DepthView.Release()
		a.DepthView = nil
	}
	if a.DepthTexture != nil {
		a.DepthTexture.Release()
		a.DepthTexture = nil
	}

	var err error
	a.DepthTexture, err = a.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Depth Texture",
		Size:          wgpu.Extent3D{Width: a.Config.Width, Height: a.Config.Height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        DepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return errors.Wrap(err, "create depth texture")
	}
	a.DepthView, err = a.DepthTexture.CreateView(nil)
	if err != nil {
		return errors.Wrap(err, "create depth view")
	}
	return nil
}

func (a *App) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	a.Config.Width = uint32(w)
	a.Config.Height = uint32(h)
	a.Surface.Configure(a.Adapter, a.Device, a.Config)
	if err := a.setupDepth(); err != nil {
		a.log.Errorf("resize: %v", err)
	}
	a.Renderer.CreateWindowSizeDependentResources(float32(w), float32(h), mgl32.Ident4())
	a.log.Debugf("resized to %dx%d", w, h)
}

func (a *App) Update() {
	a.Stats.BeginScope("update")
	defer a.Stats.EndScope("update")

	a.Timer.Tick()
	a.pollInit()
	a.Renderer.Update(a.Timer)
}

func (a *App) pollInit() {
	if a.initDone == nil {
		return
	}
	select {
	case err, ok := <-a.initDone:
		if !ok {
			a.initDone = nil
			return
		}
		a.Stats.EndScope("init")
		a.initDone = nil
		if err != nil {
			// context cancellation during device restore is expected
			if errors.Cause(err) != context.Canceled {
				a.log.Errorf("scene resources failed: %v", err)
			}
			return
		}
		a.Stats.SetCount("indices", int(a.Renderer.IndexCount()))
		a.log.Debugf("scene ready in %s", a.Stats.Scope("init"))
	default:
	}
}

func (a *App) Render() {
	a.Stats.BeginScope("render")
	defer a.Stats.EndScope("render")

	nextTexture, err := a.Surface.GetCurrentTexture()
	if err != nil {
		a.log.Warnf("GetCurrentTexture failed: %v", err)
		return
	}
	defer nextTexture.Release()

	view, err := nextTexture.CreateView(nil)
	if err != nil {
		a.log.Errorf("CreateView failed: %v", err)
		return
	}
	defer view.Release()

	encoder, err := a.Device.CreateCommandEncoder(nil)
	if err != nil {
		a.log.Errorf("CreateCommandEncoder failed: %v", err)
		return
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: ClearColor,
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            a.DepthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	})
	if err := a.Renderer.Render(gpu.WGPURenderPass{Pass: pass}); err != nil {
		a.log.Errorf("scene render: %v", err)
	}
	if err := pass.End(); err != nil {
		a.log.Errorf("render pass End failed: %v", err)
	}
	pass.Release()

	cmd, err := encoder.Finish(nil)
	if err != nil {
		a.log.Errorf("encoder Finish failed: %v", err)
		return
	}
	defer cmd.Release()

	a.Queue.Submit(cmd)
	a.Surface.Present()

	if a.Stats.FrameDone() && a.log.DebugEnabled() {
		a.log.Debugf("frame stats, %.1f fps\n%s", a.Stats.FPS(), a.Stats.String())
	}
}

func (a *App) StartTracking() {
	a.Renderer.StartTracking()
}

// TrackingUpdate takes the cursor x in window coordinates, as glfw reports it.
func (a *App) TrackingUpdate(x float64) {
	if !a.Renderer.IsTracking() {
		return
	}
	windowWidth, _ := a.Window.GetSize()
	framebufferWidth, _ := a.Window.GetFramebufferSize()
	a.Renderer.TrackingUpdate(framebufferX(x, windowWidth, framebufferWidth))
}

// framebufferX maps a window x coordinate onto the framebuffer, which is
// larger on HiDPI displays.
func framebufferX(x float64, windowWidth, framebufferWidth int) float32 {
	if windowWidth <= 0 || framebufferWidth <= 0 {
		return float32(x)
	}
	return float32(x * float64(framebufferWidth) / float64(windowWidth))
}

func (a *App) StopTracking() {
	a.Renderer.StopTracking()
}

// HandleDeviceLost releases every scene resource and creates them again.
func (a *App) HandleDeviceLost() {
	a.log.Warnf("recreating device resources")
	a.Renderer.ReleaseDeviceDependentResources()
	a.Stats.Reset()
	a.startResources()
}

func (a *App) Release() {
	a.cancel()
	if a.Renderer != nil {
		a.Renderer.ReleaseDeviceDependentResources()
	}
	if a.DepthView != nil {
		a.DepthView.Release()
	}
	if a.DepthTexture != nil {
		a.DepthTexture.Release()
	}
	if a.Device != nil {
		a.Device.Release()
	}
	if a.Adapter != nil {
		a.Adapter.Release()
	}
	if a.Surface != nil {
		a.Surface.Release()
	}
	if a.Instance != nil {
		a.Instance.Release()
	}
}
