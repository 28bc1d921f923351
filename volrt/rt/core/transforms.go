package core

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultFovY             = 70.0 * math32.Pi / 180.0
	NearPlane               = 0.01
	FarPlane                = 100.0
	DefaultDegreesPerSecond = 45.0
)

var (
	Eye = mgl32.Vec3{0.0, 0.7, -1.3}
	At  = mgl32.Vec3{0.0, -0.1, 0.0}
	Up  = mgl32.Vec3{0.0, 1.0, 0.0}
)

// ModelViewProjection is the uniform record shared by the vertex and fragment stages.
type ModelViewProjection struct {
	World                      mgl32.Mat4
	View                       mgl32.Mat4
	Projection                 mgl32.Mat4
	WorldViewProjection        mgl32.Mat4
	InverseWorldViewProjection mgl32.Mat4
}

// Transforms holds the scene matrices. All matrices use the column vector
// convention of mgl32, so WorldViewProjection = Projection * View * World.
type Transforms struct {
	projection mgl32.Mat4
	view       mgl32.Mat4
	world      mgl32.Mat4
	wvp        mgl32.Mat4
	invWvp     mgl32.Mat4
	record     ModelViewProjection

	fovY             float32
	degreesPerSecond float32
	autoRotate       bool
	tracking         bool
	lastAngle        float32
}

func NewTransforms(degreesPerSecond float32, autoRotate bool) *Transforms {
	t := &Transforms{
		projection:       mgl32.Ident4(),
		view:             LookAtLH(Eye, At, Up),
		world:            mgl32.Ident4(),
		degreesPerSecond: degreesPerSecond,
		autoRotate:       autoRotate,
	}
	t.recompute()
	return t
}

// PerspectiveFovLH builds a left handed projection with depth mapped to [0, 1].
func PerspectiveFovLH(fovY, aspect, near, far float32) mgl32.Mat4 {
	h := 1.0 / math32.Tan(fovY*0.5)
	w := h / aspect
	fRange := far / (far - near)
	return mgl32.Mat4{
		w, 0, 0, 0,
		0, h, 0, 0,
		0, 0, fRange, 1,
		0, 0, -fRange * near, 0,
	}
}

// LookAtLH builds a left handed view matrix looking from eye towards at.
func LookAtLH(eye, at, up mgl32.Vec3) mgl32.Mat4 {
	z := at.Sub(eye).Normalize()
	x := up.Cross(z).Normalize()
	y := z.Cross(x)
	return mgl32.Mat4{
		x.X(), y.X(), z.X(), 0,
		x.Y(), y.Y(), z.Y(), 0,
		x.Z(), y.Z(), z.Z(), 0,
		-x.Dot(eye), -y.Dot(eye), -z.Dot(eye), 1,
	}
}

// Resize rebuilds projection, view and world for a new output size. The
// orientation matrix corrects for display rotation; pass identity when none.
func (t *Transforms) Resize(width, height float32, orientation mgl32.Mat4) {
	aspect := float32(1.0)
	if height > 0 && width > 0 {
		aspect = width / height
	}

	fovY := float32(DefaultFovY)
	// portrait or snapped view
	if aspect < 1.0 {
		fovY *= 2.0
	}
	t.fovY = fovY

	t.projection = orientation.Mul4(PerspectiveFovLH(fovY, aspect, NearPlane, FarPlane))
	t.view = LookAtLH(Eye, At, Up)
	t.world = mgl32.Ident4()
	t.recompute()
}

// Rotate sets the world matrix to an absolute rotation about Y.
func (t *Transforms) Rotate(radians float32) {
	t.world = mgl32.HomogRotate3DY(radians)
	t.recompute()
}

// Update computes the time driven rotation angle. It is only applied when
// auto rotation is enabled and the pointer is not tracking.
func (t *Transforms) Update(totalSeconds float64) {
	if t.tracking {
		return
	}
	// float64 until after the wrap, total seconds outgrow float32 precision.
	radiansPerSecond := float64(t.degreesPerSecond) * math.Pi / 180
	t.lastAngle = float32(math.Mod(totalSeconds*radiansPerSecond, 2*math.Pi))

	if t.autoRotate {
		t.Rotate(t.lastAngle)
	}
}

func (t *Transforms) StartTracking() {
	t.tracking = true
}

// TrackingUpdate maps the pointer x position to two full turns across the output width.
func (t *Transforms) TrackingUpdate(positionX, outputWidth float32) {
	if !t.tracking || outputWidth <= 0 {
		return
	}
	radians := 2 * math32.Pi * 2.0 * positionX / outputWidth
	t.Rotate(radians)
}

func (t *Transforms) StopTracking() {
	t.tracking = false
}

func (t *Transforms) IsTracking() bool { return t.tracking }

func (t *Transforms) SetAutoRotate(enabled bool) { t.autoRotate = enabled }

func (t *Transforms) recompute() {
	t.wvp = t.projection.Mul4(t.view).Mul4(t.world)
	t.invWvp = t.wvp.Inv()

	t.record = ModelViewProjection{
		World:                      t.world,
		View:                       t.view,
		Projection:                 t.projection,
		WorldViewProjection:        t.wvp,
		InverseWorldViewProjection: t.invWvp,
	}
}

func (t *Transforms) World() mgl32.Mat4                      { return t.world }
func (t *Transforms) View() mgl32.Mat4                       { return t.view }
func (t *Transforms) Projection() mgl32.Mat4                 { return t.projection }
func (t *Transforms) WorldViewProjection() mgl32.Mat4        { return t.wvp }
func (t *Transforms) InverseWorldViewProjection() mgl32.Mat4 { return t.invWvp }
func (t *Transforms) FovY() float32                          { return t.fovY }
func (t *Transforms) LastAngle() float32                     { return t.lastAngle }
func (t *Transforms) Record() ModelViewProjection            { return t.record }
