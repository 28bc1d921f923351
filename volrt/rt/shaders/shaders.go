package shaders

import (
	"context"
	"embed"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	VertexShaderFile = "SampleVertexShader.wgsl"
	PixelShaderFile  = "SamplePixelShader.wgsl"

	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)

//go:embed *.wgsl
var files embed.FS

//go:embed SampleVertexShader.wgsl
var SampleVertexWGSL string

//go:embed SamplePixelShader.wgsl
var SamplePixelWGSL string

// Loader reads shader source by file name.
type Loader interface {
	Load(ctx context.Context, name string) ([]byte, error)
}

// EmbeddedLoader serves the shaders compiled into the binary.
type EmbeddedLoader struct{}

func (EmbeddedLoader) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := files.ReadFile(name)
	if err != nil {
		return nil, errors.Wrapf(err, "load embedded shader %q", name)
	}
	return data, nil
}

// DirLoader reads shaders from a directory on disk, for iterating on WGSL
// without rebuilding.
type DirLoader struct {
	Dir string
}

func (l DirLoader) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(l.Dir, filepath.Clean("/"+name))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load shader %q", path)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return data, nil
}

// NewLoader returns a DirLoader for dir, or the embedded shaders when dir is empty.
func NewLoader(dir string) Loader {
	if dir == "" {
		return EmbeddedLoader{}
	}
	return DirLoader{Dir: dir}
}
