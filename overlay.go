package warp

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

// HandleStyle controls how the draggable control points and their guide
// lines are drawn.
type HandleStyle struct {
	// Radius is the marker radius in canvas pixels.
	Radius float64

	// LineWidth is the guide-line width in canvas pixels.
	LineWidth float64

	// Fill is the marker fill color.
	Fill color.Color

	// Line is the guide-line color.
	Line color.Color
}

// DefaultHandleStyle returns the stock editor look: small blue markers with
// thin blue guide lines.
func DefaultHandleStyle() HandleStyle {
	return HandleStyle{
		Radius:    4,
		LineWidth: 1,
		Fill:      color.RGBA{R: 0x33, G: 0x99, B: 0xff, A: 0xff},
		Line:      color.RGBA{R: 0x33, G: 0x99, B: 0xff, A: 0xff},
	}
}

// HandleOverlay draws the draggable control points and connecting guide
// lines for user feedback. It reads control-point state and writes nothing
// back.
//
// The rasterizer is reused across frames; an overlay is confined to the
// rendering goroutine like every other per-image component.
type HandleOverlay struct {
	style HandleStyle
	ras   *vector.Rasterizer
	dpr   float64
}

// NewHandleOverlay creates an overlay with the given style. The device
// pixel ratio converts stored control-point units back to local units
// before the canvas transform is applied.
func NewHandleOverlay(style HandleStyle, dpr float64) *HandleOverlay {
	if dpr <= 0 {
		dpr = 1
	}
	if style.Radius <= 0 {
		style.Radius = DefaultHandleStyle().Radius
	}
	if style.LineWidth <= 0 {
		style.LineWidth = DefaultHandleStyle().LineWidth
	}
	return &HandleOverlay{style: style, ras: &vector.Rasterizer{}, dpr: dpr}
}

// DrawHandles draws one filled marker per point and a guide line to the
// next point in sequence, wrapping last-to-first. canvasTransform maps the
// image's scaled local space to canvas coordinates and must include the
// host's scale factors, so handles track the image through rotation,
// scale, and zoom.
func (o *HandleOverlay) DrawHandles(dst *image.RGBA, points ControlPointSet, canvasTransform Matrix) {
	if dst == nil || len(points) == 0 {
		return
	}

	canvas := make([]Point, len(points))
	for i, p := range points {
		canvas[i] = canvasTransform.TransformPoint(p.Mul(1 / o.dpr))
	}

	if len(canvas) > 1 {
		for i := range canvas {
			next := canvas[(i+1)%len(canvas)]
			o.strokeSegment(dst, canvas[i], next)
		}
	}
	for _, p := range canvas {
		o.fillCircle(dst, p)
	}
}

// strokeSegment fills the segment from a to b as a LineWidth-wide quad.
func (o *HandleOverlay) strokeSegment(dst *image.RGBA, a, b Point) {
	d := b.Sub(a)
	length := d.Length()
	if length == 0 {
		return
	}
	// Perpendicular half-width offset.
	n := Pt(-d.Y/length, d.X/length).Mul(o.style.LineWidth / 2)

	bounds := dst.Bounds()
	o.ras.Reset(bounds.Dx(), bounds.Dy())
	o.ras.DrawOp = draw.Over
	o.moveTo(a.Add(n))
	o.lineTo(b.Add(n))
	o.lineTo(b.Sub(n))
	o.lineTo(a.Sub(n))
	o.ras.ClosePath()
	o.ras.Draw(dst, bounds, image.NewUniform(o.style.Line), image.Point{})
}

// fillCircle fills a marker disc centered at p, approximated by four cubic
// Bezier arcs.
func (o *HandleOverlay) fillCircle(dst *image.RGBA, p Point) {
	r := o.style.Radius
	// Cubic approximation constant for a quarter circle.
	k := r * 4 * (math.Sqrt2 - 1) / 3

	bounds := dst.Bounds()
	o.ras.Reset(bounds.Dx(), bounds.Dy())
	o.ras.DrawOp = draw.Over
	o.moveTo(Pt(p.X+r, p.Y))
	o.cubeTo(Pt(p.X+r, p.Y+k), Pt(p.X+k, p.Y+r), Pt(p.X, p.Y+r))
	o.cubeTo(Pt(p.X-k, p.Y+r), Pt(p.X-r, p.Y+k), Pt(p.X-r, p.Y))
	o.cubeTo(Pt(p.X-r, p.Y-k), Pt(p.X-k, p.Y-r), Pt(p.X, p.Y-r))
	o.cubeTo(Pt(p.X+k, p.Y-r), Pt(p.X+r, p.Y-k), Pt(p.X+r, p.Y))
	o.ras.ClosePath()
	o.ras.Draw(dst, bounds, image.NewUniform(o.style.Fill), image.Point{})
}

// The rasterizer takes scalar float32 coordinates; these adapt Point paths.

func (o *HandleOverlay) moveTo(p Point) {
	o.ras.MoveTo(float32(p.X), float32(p.Y))
}

func (o *HandleOverlay) lineTo(p Point) {
	o.ras.LineTo(float32(p.X), float32(p.Y))
}

func (o *HandleOverlay) cubeTo(b, c, d Point) {
	o.ras.CubeTo(float32(b.X), float32(b.Y), float32(c.X), float32(c.Y), float32(d.X), float32(d.Y))
}
