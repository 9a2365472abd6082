package warp

import (
	"fmt"
	"image"

	"github.com/chewxy/math32"
)

// SoftwareRenderer rasterizes the warped mesh on the CPU. It is always
// available and serves as the fallback when no GPU backend is registered or
// the GPU context is lost.
//
// Each mesh triangle is scan-converted with barycentric UV interpolation
// and the source sampled bilinearly with edge clamping, matching the GPU
// pipeline's sampler configuration so the two backends agree within pixel
// tolerance.
type SoftwareRenderer struct{}

// NewSoftwareRenderer creates a CPU renderer.
func NewSoftwareRenderer() *SoftwareRenderer { return &SoftwareRenderer{} }

// Name returns "software".
func (r *SoftwareRenderer) Name() string { return "software" }

// Close is a no-op: the software renderer holds no resources.
func (r *SoftwareRenderer) Close() {}

// Render draws source warped by mesh into target.
func (r *SoftwareRenderer) Render(mesh *SurfaceMesh, source *image.RGBA, target *RenderTarget) error {
	if mesh == nil || len(mesh.Indices) == 0 {
		return fmt.Errorf("%w: empty mesh", ErrDegenerateGeometry)
	}
	if source == nil || target == nil || len(target.Data) == 0 {
		return fmt.Errorf("software: nil source or target")
	}
	if len(mesh.UVs) != len(mesh.Vertices) {
		return fmt.Errorf("%w: %d vertices but %d UVs", ErrDegenerateGeometry,
			len(mesh.Vertices), len(mesh.UVs))
	}

	clear(target.Data)

	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		r.fillTriangle(mesh, source, target,
			mesh.Indices[i], mesh.Indices[i+1], mesh.Indices[i+2])
	}
	return nil
}

// fillTriangle scan-converts one triangle with barycentric UV interpolation.
func (r *SoftwareRenderer) fillTriangle(mesh *SurfaceMesh, source *image.RGBA, target *RenderTarget, i0, i1, i2 uint16) {
	a, b, c := mesh.Vertices[i0], mesh.Vertices[i1], mesh.Vertices[i2]
	ua, ub, uc := mesh.UVs[i0], mesh.UVs[i1], mesh.UVs[i2]

	// Signed doubled area; near-zero triangles contribute no pixels.
	area := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
	if math32.Abs(area) < 1e-6 {
		return
	}
	invArea := 1 / area

	minX := int(math32.Floor(math32.Min(a.X, math32.Min(b.X, c.X))))
	maxX := int(math32.Ceil(math32.Max(a.X, math32.Max(b.X, c.X))))
	minY := int(math32.Floor(math32.Min(a.Y, math32.Min(b.Y, c.Y))))
	maxY := int(math32.Ceil(math32.Max(a.Y, math32.Max(b.Y, c.Y))))
	minX = max(minX, 0)
	minY = max(minY, 0)
	maxX = min(maxX, target.Width-1)
	maxY = min(maxY, target.Height-1)

	for y := minY; y <= maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float32(x) + 0.5

			// Barycentric weights from edge functions, normalized by the
			// signed area so either winding is accepted.
			w0 := ((b.X-px)*(c.Y-py) - (b.Y-py)*(c.X-px)) * invArea
			w1 := ((c.X-px)*(a.Y-py) - (c.Y-py)*(a.X-px)) * invArea
			w2 := 1 - w0 - w1
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}

			u := w0*ua.U + w1*ub.U + w2*uc.U
			v := w0*ua.V + w1*ub.V + w2*uc.V
			pr, pg, pb, pa := sampleBilinear(source, u, v)

			off := y*target.Stride + x*4
			target.Data[off+0] = pr
			target.Data[off+1] = pg
			target.Data[off+2] = pb
			target.Data[off+3] = pa
		}
	}
}

// sampleBilinear samples source at normalized (u, v) with linear filtering
// and edge clamping, mirroring the GPU sampler (ClampToEdge + Linear).
func sampleBilinear(src *image.RGBA, u, v float32) (r, g, b, a uint8) {
	w := src.Rect.Dx()
	h := src.Rect.Dy()
	if w == 0 || h == 0 {
		return 0, 0, 0, 0
	}

	fx := u*float32(w) - 0.5
	fy := v*float32(h) - 0.5
	x0 := int(math32.Floor(fx))
	y0 := int(math32.Floor(fy))
	tx := fx - float32(x0)
	ty := fy - float32(y0)

	x1 := clampInt(x0+1, 0, w-1)
	y1 := clampInt(y0+1, 0, h-1)
	x0 = clampInt(x0, 0, w-1)
	y0 = clampInt(y0, 0, h-1)

	p00 := texel(src, x0, y0)
	p10 := texel(src, x1, y0)
	p01 := texel(src, x0, y1)
	p11 := texel(src, x1, y1)

	var out [4]uint8
	for i := 0; i < 4; i++ {
		top := float32(p00[i]) + tx*(float32(p10[i])-float32(p00[i]))
		bot := float32(p01[i]) + tx*(float32(p11[i])-float32(p01[i]))
		out[i] = uint8(top + ty*(bot-top) + 0.5)
	}
	return out[0], out[1], out[2], out[3]
}

// texel returns the 4 premultiplied RGBA bytes at (x, y).
func texel(src *image.RGBA, x, y int) [4]uint8 {
	off := src.PixOffset(src.Rect.Min.X+x, src.Rect.Min.Y+y)
	return [4]uint8{src.Pix[off], src.Pix[off+1], src.Pix[off+2], src.Pix[off+3]}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
