package warp

import (
	"fmt"
	"image"
	"math"
)

// WarpableImage composes a perspective-warp pipeline over a host drawable:
// a Controller for the four control points, a Tessellator for the surface
// mesh, a Renderer for the warped output, and a HandleOverlay for editing
// feedback. It implements the host rendering contract by delegation rather
// than by subclassing the host object.
//
// All methods are confined to the rendering goroutine; see FrameScheduler
// for the cooperative concurrency model.
type WarpableImage struct {
	host    Host
	ctrl    *Controller
	tess    *Tessellator
	overlay *HandleOverlay
	sched   FrameScheduler

	renderer     Renderer
	ownsRenderer bool
	software     *SoftwareRenderer

	enabled bool
	source  *image.RGBA

	// Last valid mesh and output, retained across degenerate or failed
	// passes. The mesh carries the control-point generation it was built
	// from, so a stale mesh is simply never re-read.
	mesh *SurfaceMesh
	last *RenderTarget
}

// New creates a warpable image bound to host. The host must be non-nil.
// Warp mode starts enabled; the four control points are seeded by
// SetSource (or Initialize).
func New(host Host, opts ...Option) *WarpableImage {
	o := defaultImageOptions()
	for _, opt := range opts {
		opt(&o)
	}

	w := &WarpableImage{
		host:     host,
		ctrl:     NewController(host, o.dpr),
		tess:     NewTessellator(WithTessellationSteps(o.steps)),
		overlay:  NewHandleOverlay(o.style, o.dpr),
		software: NewSoftwareRenderer(),
		enabled:  true,
	}
	if o.renderer != nil {
		w.renderer = o.renderer
	} else if r := newRegisteredRenderer(); r != nil {
		w.renderer = r
		w.ownsRenderer = true
		Logger().Info("using registered renderer", "name", r.Name())
	}
	return w
}

// Controller returns the image's control-point controller.
func (w *WarpableImage) Controller() *Controller { return w.ctrl }

// Scheduler returns the image's frame scheduler. Frame drivers may inspect
// Pending to decide whether a redraw is needed.
func (w *WarpableImage) Scheduler() *FrameScheduler { return &w.sched }

// SetSource installs the decoded source image and seeds the control points
// from its natural size. Called once, when the asset loader completes.
func (w *WarpableImage) SetSource(src *image.RGBA) error {
	if src == nil {
		return fmt.Errorf("%w: nil source", ErrAssetLoadFailed)
	}
	b := src.Bounds()
	if err := w.Initialize(float64(b.Dx()), float64(b.Dy())); err != nil {
		return err
	}
	w.source = src
	return nil
}

// Initialize seeds the four corner control points for a source of the
// given natural size. Use SetSource unless the pixels arrive separately.
func (w *WarpableImage) Initialize(sourceWidth, sourceHeight float64) error {
	if err := w.ctrl.Initialize(sourceWidth, sourceHeight); err != nil {
		return err
	}
	w.sched.Invalidate()
	return nil
}

// BeginDrag puts control point index under pointer control.
func (w *WarpableImage) BeginDrag(index int) error {
	return w.ctrl.BeginDrag(index)
}

// UpdateDrag moves the dragged control point to the pointer's canvas
// position and schedules a re-render.
func (w *WarpableImage) UpdateDrag(index int, canvasPoint Point) error {
	if err := w.ctrl.UpdateDrag(index, canvasPoint); err != nil {
		return err
	}
	w.sched.Invalidate()
	return nil
}

// EndDrag releases the dragged point, resynchronizes the host's frame, and
// schedules a re-render.
func (w *WarpableImage) EndDrag() error {
	if _, err := w.ctrl.EndDrag(); err != nil {
		return err
	}
	w.sched.Invalidate()
	return nil
}

// SetWarpEnabled toggles warp mode. Disabled images render the plain
// source; re-enabling with unchanged control points reproduces the same
// mesh and the same output.
func (w *WarpableImage) SetWarpEnabled(enabled bool) {
	if w.enabled == enabled {
		return
	}
	w.enabled = enabled
	w.sched.Invalidate()
}

// WarpEnabled reports whether warp mode is on.
func (w *WarpableImage) WarpEnabled() bool { return w.enabled }

// SetColorFilter installs a color-matrix pass chained after the warp,
// when the renderer supports color filtering. Returns false otherwise
// (the software fallback renders unfiltered).
func (w *WarpableImage) SetColorFilter(m ColorMatrix) bool {
	cf, ok := w.renderer.(ColorFilterer)
	if !ok {
		return false
	}
	cf.SetColorFilter(m)
	w.sched.Invalidate()
	return true
}

// ClearColorFilter removes the color-matrix pass if one is installed.
func (w *WarpableImage) ClearColorFilter() {
	if cf, ok := w.renderer.(ColorFilterer); ok {
		cf.ClearColorFilter()
		w.sched.Invalidate()
	}
}

// DrawHandles draws the control-point markers and guide lines onto dst at
// their current canvas positions. The host's scale factors are composed
// into the transform, mirroring the inverse mapping drag updates apply.
func (w *WarpableImage) DrawHandles(dst *image.RGBA) {
	sx, sy := w.host.Scale()
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	w.overlay.DrawHandles(dst, w.ctrl.Points(), w.host.Transform().Multiply(Scale(sx, sy)))
}

// Render produces the current frame. Requests coalesced since the last
// frame trigger exactly one tessellation and draw; an unchanged image
// returns the retained output.
//
// Error recovery: a degenerate point set skips the pass and retains the
// last valid output; an unavailable render backend falls back to the
// software renderer. Render returns an error only when no output can be
// produced at all.
func (w *WarpableImage) Render() (*image.RGBA, error) {
	if w.source == nil {
		return nil, ErrNotInitialized
	}
	if !w.enabled {
		return w.source, nil
	}

	var renderErr error
	w.sched.Flush(func() {
		renderErr = w.renderFrame()
	})
	if w.last == nil {
		if renderErr != nil {
			return nil, renderErr
		}
		return nil, ErrNotInitialized
	}
	if renderErr != nil {
		// Keep showing the last valid output.
		Logger().Debug("render pass skipped", "err", renderErr)
	}
	return w.last.Image(), nil
}

// renderFrame rebuilds the mesh if the geometry changed and draws it.
func (w *WarpableImage) renderFrame() error {
	gen := w.ctrl.Generation()
	if w.mesh == nil || w.mesh.Generation != gen {
		corners, err := w.ctrl.Corners()
		if err != nil {
			return err
		}
		mesh, err := w.tess.Tessellate(corners)
		if err != nil {
			return err
		}
		mesh.Generation = gen
		w.mesh = mesh
	}

	frame := w.ctrl.Frame()
	target := NewRenderTarget(
		int(math.Ceil(frame.Width)),
		int(math.Ceil(frame.Height)),
	)

	if err := w.draw(target); err != nil {
		return err
	}
	w.last = target
	return nil
}

// draw runs the configured renderer with software fallback.
func (w *WarpableImage) draw(target *RenderTarget) error {
	if w.renderer != nil {
		err := w.renderer.Render(w.mesh, w.source, target)
		if err == nil {
			return nil
		}
		Logger().Warn("renderer failed, falling back to software",
			"name", w.renderer.Name(), "err", err)
	}
	return w.software.Render(w.mesh, w.source, target)
}

// Close releases resources owned by the image. Renderers injected via
// WithRenderer remain the caller's responsibility.
func (w *WarpableImage) Close() {
	if w.ownsRenderer && w.renderer != nil {
		w.renderer.Close()
		w.renderer = nil
	}
}
