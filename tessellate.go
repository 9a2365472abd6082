package warp

import (
	"fmt"

	"github.com/chewxy/math32"
)

// defaultSurfaceSteps is the number of subdivisions along each parametric
// axis of the warp surface. 20 steps give 21x21 vertices and 800 triangles,
// enough for perspective-like distortion without visible faceting at
// typical canvas sizes.
const defaultSurfaceSteps = 20

// coincidentEpsilon is the maximum distance, in device pixels, at which two
// corners are treated as the same point.
const coincidentEpsilon = 1e-6

// degenerateAreaEpsilon is the minimum absolute enclosed area, in square
// device pixels, below which a quadrilateral is rejected as degenerate.
const degenerateAreaEpsilon = 1e-6

// surfaceCorner32 is a corner position converted to float32 once per
// tessellation pass so the inner loop runs entirely in float32.
type surfaceCorner32 struct {
	x, y float32
}

// Tessellator discretizes the smooth parametric surface spanned by four
// ordered corner points into a triangle mesh with UV coordinates.
//
// The surface is a Coons patch with linear boundaries, which reduces to
// bilinear interpolation of the corners; UVs span [0,1]x[0,1] mapped by
// tessellation parameter, not by pixel position.
//
// Tessellation is deterministic: identical corner input produces an
// identical mesh (same vertex count, same index layout, same UVs), which
// keeps frame-to-frame rendering stable while a corner is dragged.
type Tessellator struct {
	steps int
}

// NewTessellator creates a tessellator. The subdivision count can be
// adjusted with WithTessellationSteps.
func NewTessellator(opts ...TessellatorOption) *Tessellator {
	t := &Tessellator{steps: defaultSurfaceSteps}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Steps returns the subdivision count along each parametric axis.
func (t *Tessellator) Steps() int { return t.steps }

// Tessellate builds a SurfaceMesh from exactly four ordered corner points
// (the first four control points, in insertion order: top-left, top-right,
// bottom-right, bottom-left for an unwarped image).
//
// Returns ErrDegenerateGeometry if any two corners coincide or the
// quadrilateral encloses no area (for example four collinear points); a
// degenerate mesh with NaN or zero-area triangles is never emitted.
func (t *Tessellator) Tessellate(corners [4]Point) (*SurfaceMesh, error) {
	if err := validateCorners(corners); err != nil {
		return nil, err
	}

	cols := t.steps + 1
	vertexCount := cols * cols

	c := [4]surfaceCorner32{}
	for i, p := range corners {
		c[i] = surfaceCorner32{x: float32(p.X), y: float32(p.Y)}
	}

	mesh := &SurfaceMesh{
		Vertices: make([]MeshVertex, 0, vertexCount),
		UVs:      make([]MeshUV, 0, vertexCount),
		Indices:  make([]uint16, 0, t.steps*t.steps*6),
	}

	inv := 1 / float32(t.steps)
	for row := 0; row <= t.steps; row++ {
		v := float32(row) * inv
		for col := 0; col <= t.steps; col++ {
			u := float32(col) * inv
			// Surface edges: top runs c0->c1, bottom runs c3->c2.
			tx := lerp32(c[0].x, c[1].x, u)
			ty := lerp32(c[0].y, c[1].y, u)
			bx := lerp32(c[3].x, c[2].x, u)
			by := lerp32(c[3].y, c[2].y, u)
			mesh.Vertices = append(mesh.Vertices, MeshVertex{
				X: lerp32(tx, bx, v),
				Y: lerp32(ty, by, v),
			})
			mesh.UVs = append(mesh.UVs, MeshUV{U: u, V: v})
		}
	}

	for row := 0; row < t.steps; row++ {
		for col := 0; col < t.steps; col++ {
			i0 := uint16(row*cols + col)
			i1 := i0 + 1
			i2 := uint16((row+1)*cols + col + 1)
			i3 := i2 - 1
			mesh.Indices = append(mesh.Indices, i0, i1, i2, i2, i3, i0)
		}
	}

	return mesh, nil
}

// validateCorners rejects corner sets that cannot span a renderable surface.
func validateCorners(corners [4]Point) error {
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			if corners[i].NearlyEqual(corners[j], coincidentEpsilon) {
				return fmt.Errorf("%w: corners %d and %d coincide", ErrDegenerateGeometry, i, j)
			}
		}
	}
	if a := quadArea(corners); math32.Abs(a) < degenerateAreaEpsilon {
		return fmt.Errorf("%w: quadrilateral encloses no area", ErrDegenerateGeometry)
	}
	return nil
}

// lerp32 linearly interpolates between a and b by t.
func lerp32(a, b, t float32) float32 {
	return a + t*(b-a)
}

// quadArea returns the signed shoelace area of the quadrilateral.
func quadArea(corners [4]Point) float32 {
	var sum float64
	for i := range corners {
		j := (i + 1) % 4
		sum += corners[i].Cross(corners[j])
	}
	return float32(sum / 2)
}
