package warp

import (
	"errors"
	"testing"
)

func squareCorners(w, h float64) [4]Point {
	return [4]Point{Pt(0, 0), Pt(w, 0), Pt(w, h), Pt(0, h)}
}

func TestTessellateVertexAndIndexCounts(t *testing.T) {
	tests := []struct {
		name  string
		steps int
	}{
		{"default", defaultSurfaceSteps},
		{"min", 1},
		{"coarse", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tess := NewTessellator(WithTessellationSteps(tt.steps))
			mesh, err := tess.Tessellate(squareCorners(100, 50))
			if err != nil {
				t.Fatalf("Tessellate() error = %v", err)
			}

			cols := tt.steps + 1
			if got, want := len(mesh.Vertices), cols*cols; got != want {
				t.Errorf("vertex count = %d, want %d", got, want)
			}
			if len(mesh.UVs) != len(mesh.Vertices) {
				t.Errorf("uv count = %d, want %d", len(mesh.UVs), len(mesh.Vertices))
			}
			if got, want := mesh.TriangleCount(), tt.steps*tt.steps*2; got != want {
				t.Errorf("triangle count = %d, want %d", got, want)
			}
		})
	}
}

func TestTessellateUnwarpedSquare(t *testing.T) {
	tess := NewTessellator(WithTessellationSteps(2))
	mesh, err := tess.Tessellate(squareCorners(100, 100))
	if err != nil {
		t.Fatalf("Tessellate() error = %v", err)
	}

	// For an axis-aligned square, vertex positions are the UVs scaled by
	// the square's size.
	for i, v := range mesh.Vertices {
		uv := mesh.UVs[i]
		wantX := uv.U * 100
		wantY := uv.V * 100
		if v.X != wantX || v.Y != wantY {
			t.Errorf("vertex %d = (%v, %v), want (%v, %v)", i, v.X, v.Y, wantX, wantY)
		}
	}
	// UVs stay in [0, 1].
	for i, uv := range mesh.UVs {
		if uv.U < 0 || uv.U > 1 || uv.V < 0 || uv.V > 1 {
			t.Errorf("uv %d = (%v, %v), outside [0,1]", i, uv.U, uv.V)
		}
	}
}

func TestTessellateDeterministic(t *testing.T) {
	corners := [4]Point{Pt(0, 0), Pt(120, 10), Pt(110, 90), Pt(-5, 100)}
	tess := NewTessellator()

	a, err := tess.Tessellate(corners)
	if err != nil {
		t.Fatalf("Tessellate() error = %v", err)
	}
	b, err := tess.Tessellate(corners)
	if err != nil {
		t.Fatalf("Tessellate() error = %v", err)
	}

	if len(a.Vertices) != len(b.Vertices) || len(a.Indices) != len(b.Indices) {
		t.Fatalf("mesh sizes differ between runs")
	}
	for i := range a.Vertices {
		if a.Vertices[i] != b.Vertices[i] || a.UVs[i] != b.UVs[i] {
			t.Fatalf("vertex %d differs between runs", i)
		}
	}
	for i := range a.Indices {
		if a.Indices[i] != b.Indices[i] {
			t.Fatalf("index %d differs between runs", i)
		}
	}
}

func TestTessellateFirstCellIndices(t *testing.T) {
	tess := NewTessellator(WithTessellationSteps(2))
	mesh, err := tess.Tessellate(squareCorners(10, 10))
	if err != nil {
		t.Fatalf("Tessellate() error = %v", err)
	}

	// steps=2 means 3 columns; the first cell splits into (0,1,4) and (4,3,0).
	want := []uint16{0, 1, 4, 4, 3, 0}
	for i, w := range want {
		if mesh.Indices[i] != w {
			t.Errorf("index %d = %d, want %d", i, mesh.Indices[i], w)
		}
	}
}

func TestTessellateDegenerate(t *testing.T) {
	tests := []struct {
		name    string
		corners [4]Point
	}{
		{
			name:    "coincident corners",
			corners: [4]Point{Pt(0, 0), Pt(0, 0), Pt(100, 100), Pt(0, 100)},
		},
		{
			name:    "all corners equal",
			corners: [4]Point{Pt(5, 5), Pt(5, 5), Pt(5, 5), Pt(5, 5)},
		},
		{
			name:    "collinear corners",
			corners: [4]Point{Pt(0, 0), Pt(10, 10), Pt(20, 20), Pt(30, 30)},
		},
		{
			name:    "nearly coincident within epsilon",
			corners: [4]Point{Pt(0, 0), Pt(1e-9, 1e-9), Pt(100, 100), Pt(0, 100)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTessellator().Tessellate(tt.corners)
			if !errors.Is(err, ErrDegenerateGeometry) {
				t.Errorf("Tessellate() error = %v, want ErrDegenerateGeometry", err)
			}
		})
	}
}

func TestTessellateStepsOptionClamped(t *testing.T) {
	// Zero and negative step counts fall back to the default.
	for _, steps := range []int{0, -3} {
		tess := NewTessellator(WithTessellationSteps(steps))
		if got := tess.Steps(); got != defaultSurfaceSteps {
			t.Errorf("Steps() with %d = %d, want %d", steps, got, defaultSurfaceSteps)
		}
	}
}
