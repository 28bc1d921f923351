package volumeshader

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

// VolumeConfig is the resolution of the generated volume texture in texels.
type VolumeConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	Depth  int `yaml:"depth"`
}

type RotationConfig struct {
	// AutoRotate applies the time driven rotation computed by Update.
	// Off by default: the cube only turns while the pointer drags it.
	AutoRotate       bool    `yaml:"auto_rotate"`
	DegreesPerSecond float32 `yaml:"degrees_per_second"`
}

type PipelineConfig struct {
	AlphaBlend bool `yaml:"alpha_blend"`
	CullNone   bool `yaml:"cull_none"`
}

type ShaderConfig struct {
	// Dir is searched for shader files. Empty means the embedded sources.
	Dir    string `yaml:"dir"`
	Vertex string `yaml:"vertex"`
	Pixel  string `yaml:"pixel"`
}

type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Volume   VolumeConfig   `yaml:"volume"`
	Rotation RotationConfig `yaml:"rotation"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Shaders  ShaderConfig   `yaml:"shaders"`
	Debug    bool           `yaml:"debug"`
}

func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "Volume Shader Test",
		},
		Volume: VolumeConfig{
			Width:  256,
			Height: 256,
			Depth:  256,
		},
		Rotation: RotationConfig{
			AutoRotate:       false,
			DegreesPerSecond: 45,
		},
		Shaders: ShaderConfig{
			Vertex: "SampleVertexShader.wgsl",
			Pixel:  "SamplePixelShader.wgsl",
		},
	}
}

// LoadConfig reads a YAML file over the defaults. Keys missing from the file keep
// their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return errors.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Volume.Width <= 0 || c.Volume.Height <= 0 || c.Volume.Depth <= 0 {
		return errors.Errorf("volume size must be positive, got %dx%dx%d", c.Volume.Width, c.Volume.Height, c.Volume.Depth)
	}
	if c.Shaders.Vertex == "" || c.Shaders.Pixel == "" {
		return errors.New("vertex and pixel shader names are required")
	}
	return nil
}
