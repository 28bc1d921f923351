package main

import (
	"flag"
	"os"
	"runtime"

	"github.com/gekko3d/volumeshader"
	"github.com/gekko3d/volumeshader/volrt/rt/app"
	"github.com/gekko3d/volumeshader/volrt/rt/shaders"
	"github.com/gekko3d/volumeshader/volrt/rt/volume"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "YAML config file")
	debug := flag.Bool("debug", false, "Enable debug logging and frame stats")
	shaderDir := flag.String("shaders", "", "Load WGSL shaders from this directory instead of the embedded ones")
	dumpSlice := flag.String("dump-slice", "", "Write a PNG preview of the middle volume slice to this path and exit")
	width := flag.Int("width", 0, "Window width override")
	height := flag.Int("height", 0, "Window height override")
	flag.Parse()

	log := volumeshader.NewDefaultLogger("volume", *debug)

	cfg, err := loadConfig(*configPath, *shaderDir, *width, *height, *debug)
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
	log.SetDebug(cfg.Debug)

	if *dumpSlice != "" {
		if err := writeSlicePreview(cfg, *dumpSlice); err != nil {
			log.Errorf("%v", err)
			os.Exit(1)
		}
		log.Infof("wrote slice preview to %s", *dumpSlice)
		return
	}

	if err := glfw.Init(); err != nil {
		panic(err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	window, err := glfw.CreateWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title, nil, nil)
	if err != nil {
		panic(err)
	}
	defer window.Destroy()

	application := app.NewApp(window, cfg, shaders.NewLoader(cfg.Shaders.Dir), log.WithPrefix("app"))
	if err := application.Init(); err != nil {
		log.Errorf("init: %v", err)
		os.Exit(1)
	}
	defer application.Release()

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		application.Resize(width, height)
	})

	window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		application.MouseX = xpos
		application.MouseY = ypos
		application.TrackingUpdate(xpos)
	})

	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if button != glfw.MouseButtonLeft {
			return
		}
		switch action {
		case glfw.Press:
			application.StartTracking()
			application.TrackingUpdate(application.MouseX)
		case glfw.Release:
			application.StopTracking()
		}
	})

	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyEscape:
			w.SetShouldClose(true)
		case glfw.KeyF5:
			application.HandleDeviceLost()
		case glfw.KeyR:
			cfg.Rotation.AutoRotate = !cfg.Rotation.AutoRotate
			application.Renderer.Transforms().SetAutoRotate(cfg.Rotation.AutoRotate)
		}
	})

	for !window.ShouldClose() {
		glfw.PollEvents()
		application.Update()
		application.Render()
	}
}

func loadConfig(path, shaderDir string, width, height int, debug bool) (volumeshader.Config, error) {
	cfg := volumeshader.DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = volumeshader.LoadConfig(path); err != nil {
			return cfg, err
		}
	}
	if shaderDir != "" {
		cfg.Shaders.Dir = shaderDir
	}
	if width > 0 {
		cfg.Window.Width = width
	}
	if height > 0 {
		cfg.Window.Height = height
	}
	cfg.Debug = cfg.Debug || debug
	return cfg, cfg.Validate()
}

func writeSlicePreview(cfg volumeshader.Config, path string) error {
	vol, err := volume.Generate(cfg.Volume.Width, cfg.Volume.Height, cfg.Volume.Depth)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create slice preview")
	}
	defer f.Close()
	return vol.PreviewPNG(f, vol.Depth/2, 512)
}
