package warp

import (
	"image"
	"sync"
)

// RenderTarget provides pixel buffer access for renderer output.
// The Data slice is premultiplied RGBA, 4 bytes per pixel, laid out row by
// row with the given Stride.
type RenderTarget struct {
	Data          []uint8
	Width, Height int
	Stride        int // bytes per row
}

// NewRenderTarget allocates a zeroed target of the given dimensions.
func NewRenderTarget(width, height int) *RenderTarget {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return &RenderTarget{
		Data:   make([]uint8, width*height*4),
		Width:  width,
		Height: height,
		Stride: width * 4,
	}
}

// Image wraps the target pixels as an *image.RGBA sharing the same backing
// array.
func (t *RenderTarget) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    t.Data,
		Stride: t.Stride,
		Rect:   image.Rect(0, 0, t.Width, t.Height),
	}
}

// Renderer draws a source image warped onto a tessellated surface mesh.
//
// Implementations must treat the mesh and source as read-only. A renderer
// that cannot produce output (missing GPU context, shader compile failure)
// returns an error wrapping ErrRenderBackendUnavailable; the caller then
// degrades to software or unwarped rendering rather than crashing.
type Renderer interface {
	// Name returns the renderer identifier (e.g. "software", "gpu").
	Name() string

	// Render draws source warped by mesh into target. The viewport is the
	// target's dimensions, derived from the bounding frame at device-pixel
	// scale.
	Render(mesh *SurfaceMesh, source *image.RGBA, target *RenderTarget) error

	// Close releases renderer resources. The renderer must not be used
	// afterwards.
	Close()
}

// rendererFactory creates the process-wide preferred renderer.
// Registered by backend packages (e.g. github.com/gogpu/warp/gpu).
var (
	rendererMu      sync.RWMutex
	rendererFactory func() (Renderer, error)
)

// RegisterRenderer installs a factory for the preferred renderer. Backend
// packages call this from init(); users opt in via blank import:
//
//	import _ "github.com/gogpu/warp/gpu" // enable GPU rendering
//
// Registering nil removes the factory. The most recent registration wins.
func RegisterRenderer(factory func() (Renderer, error)) {
	rendererMu.Lock()
	rendererFactory = factory
	rendererMu.Unlock()
}

// newRegisteredRenderer instantiates the registered renderer, or nil when
// none is registered or creation fails. Creation failure is not fatal: the
// caller falls back to software rendering.
func newRegisteredRenderer() Renderer {
	rendererMu.RLock()
	factory := rendererFactory
	rendererMu.RUnlock()
	if factory == nil {
		return nil
	}
	r, err := factory()
	if err != nil {
		Logger().Warn("registered renderer unavailable", "err", err)
		return nil
	}
	return r
}
