package warp

// Option configures a WarpableImage during creation.
// Use functional options to customize behavior.
//
// Example:
//
//	// Default: software rendering, device pixel ratio 1
//	img := warp.New(host)
//
//	// High-density display with an injected GPU renderer
//	img := warp.New(host,
//	    warp.WithDevicePixelRatio(2),
//	    warp.WithRenderer(gpuRenderer),
//	)
type Option func(*imageOptions)

// imageOptions holds optional configuration for WarpableImage creation.
type imageOptions struct {
	dpr      float64
	renderer Renderer
	steps    int
	style    HandleStyle
}

// defaultImageOptions returns the default image options.
func defaultImageOptions() imageOptions {
	return imageOptions{
		dpr:   1,
		steps: defaultSurfaceSteps,
		style: DefaultHandleStyle(),
	}
}

// WithDevicePixelRatio sets the scale factor between logical and physical
// pixels. Control points are stored pre-multiplied by this ratio so they
// stay accurate on high-density displays. Ratios <= 0 are ignored.
func WithDevicePixelRatio(ratio float64) Option {
	return func(o *imageOptions) {
		if ratio > 0 {
			o.dpr = ratio
		}
	}
}

// WithRenderer injects a custom renderer for the warped output.
// Use this for dependency injection of GPU or test renderers; without it,
// the image uses the process-wide registered renderer (see
// github.com/gogpu/warp/gpu) and falls back to software rendering.
func WithRenderer(r Renderer) Option {
	return func(o *imageOptions) {
		o.renderer = r
	}
}

// WithSurfaceSteps sets the tessellation subdivision count used for this
// image's warp surface. Values < 1 are ignored.
func WithSurfaceSteps(steps int) Option {
	return func(o *imageOptions) {
		if steps >= 1 {
			o.steps = steps
		}
	}
}

// WithHandleStyle sets the marker and guide-line style used by the handle
// overlay.
func WithHandleStyle(style HandleStyle) Option {
	return func(o *imageOptions) {
		o.style = style
	}
}

// TessellatorOption configures a Tessellator.
type TessellatorOption func(*Tessellator)

// WithTessellationSteps sets the subdivision count along each parametric
// axis. Values < 1 are ignored.
func WithTessellationSteps(steps int) TessellatorOption {
	return func(t *Tessellator) {
		if steps >= 1 {
			t.steps = steps
		}
	}
}
