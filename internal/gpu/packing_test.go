//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/gogpu/warp"
)

func f32At(t *testing.T, data []byte, off int) float32 {
	t.Helper()
	if off+4 > len(data) {
		t.Fatalf("offset %d out of range (len %d)", off, len(data))
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(data[off : off+4]))
}

func TestBuildWarpVertices(t *testing.T) {
	mesh := &warp.SurfaceMesh{
		Vertices: []warp.MeshVertex{{X: 0, Y: 0}, {X: 64, Y: 0}, {X: 32, Y: 48}},
		UVs:      []warp.MeshUV{{U: 0, V: 0}, {U: 1, V: 0}, {U: 0.5, V: 0.75}},
		Indices:  []uint16{0, 1, 2},
	}

	data := buildWarpVertices(mesh)
	if len(data) != 3*warpVertexStride {
		t.Fatalf("vertex buffer size = %d, want %d", len(data), 3*warpVertexStride)
	}

	for i := range mesh.Vertices {
		off := i * warpVertexStride
		if got := f32At(t, data, off); got != mesh.Vertices[i].X {
			t.Errorf("vertex %d x = %v, want %v", i, got, mesh.Vertices[i].X)
		}
		if got := f32At(t, data, off+4); got != mesh.Vertices[i].Y {
			t.Errorf("vertex %d y = %v, want %v", i, got, mesh.Vertices[i].Y)
		}
		if got := f32At(t, data, off+8); got != mesh.UVs[i].U {
			t.Errorf("vertex %d u = %v, want %v", i, got, mesh.UVs[i].U)
		}
		if got := f32At(t, data, off+12); got != mesh.UVs[i].V {
			t.Errorf("vertex %d v = %v, want %v", i, got, mesh.UVs[i].V)
		}
	}
}

func TestBuildWarpIndices(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint16
		wantLen int
	}{
		{"even count", []uint16{0, 1, 2, 2, 3, 0}, 12},
		{"odd count padded", []uint16{0, 1, 2}, 8},
		{"single padded", []uint16{7}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mesh := &warp.SurfaceMesh{Indices: tt.indices}
			data := buildWarpIndices(mesh)
			if len(data) != tt.wantLen {
				t.Fatalf("index buffer size = %d, want %d", len(data), tt.wantLen)
			}
			for i, idx := range tt.indices {
				if got := binary.LittleEndian.Uint16(data[i*2 : i*2+2]); got != idx {
					t.Errorf("index %d = %d, want %d", i, got, idx)
				}
			}
			for i := len(tt.indices) * 2; i < len(data); i++ {
				if data[i] != 0 {
					t.Errorf("padding byte %d = %d, want 0", i, data[i])
				}
			}
		})
	}
}

func TestMakeFrameUniform(t *testing.T) {
	data := makeFrameUniform(200, 80)
	if len(data) != frameUniformSize {
		t.Fatalf("uniform size = %d, want %d", len(data), frameUniformSize)
	}
	if got := f32At(t, data, 0); got != 1.0/200 {
		t.Errorf("inv width = %v, want %v", got, 1.0/200)
	}
	if got := f32At(t, data, 4); got != 1.0/80 {
		t.Errorf("inv height = %v, want %v", got, 1.0/80)
	}
	if got := f32At(t, data, 8); got != 0 {
		t.Errorf("pad z = %v, want 0", got)
	}
	if got := f32At(t, data, 12); got != 0 {
		t.Errorf("pad w = %v, want 0", got)
	}
}

func TestMakeColorMatrixUniform(t *testing.T) {
	// Distinct values per cell to catch transposition mistakes.
	var m [20]float32
	for i := range m {
		m[i] = float32(i + 1)
	}

	data := makeColorMatrixUniform(m)
	if len(data) != colorMatrixUniformSize {
		t.Fatalf("uniform size = %d, want %d", len(data), colorMatrixUniformSize)
	}

	// mat4x4 stored column-major: element (row, col) lives at column*4+row.
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			off := (col*4 + row) * 4
			want := m[row*5+col]
			if got := f32At(t, data, off); got != want {
				t.Errorf("matrix[%d][%d] = %v, want %v", row, col, got, want)
			}
		}
	}
	// Bias column normalized to the shader's 0..1 range.
	for row := 0; row < 4; row++ {
		want := m[row*5+4] / 255
		if got := f32At(t, data, 64+row*4); got != want {
			t.Errorf("offset[%d] = %v, want %v", row, got, want)
		}
	}
}

func TestWarpVertexLayout(t *testing.T) {
	buffers := warpVertexLayout()
	if len(buffers) != 1 {
		t.Fatalf("buffer count = %d, want 1", len(buffers))
	}
	layout := buffers[0]
	if layout.ArrayStride != warpVertexStride {
		t.Errorf("ArrayStride = %d, want %d", layout.ArrayStride, warpVertexStride)
	}
	if len(layout.Attributes) != 2 {
		t.Fatalf("attribute count = %d, want 2", len(layout.Attributes))
	}
	if layout.Attributes[0].Offset != 0 || layout.Attributes[0].ShaderLocation != 0 {
		t.Errorf("position attribute at offset %d location %d, want 0/0",
			layout.Attributes[0].Offset, layout.Attributes[0].ShaderLocation)
	}
	if layout.Attributes[1].Offset != 8 || layout.Attributes[1].ShaderLocation != 1 {
		t.Errorf("uv attribute at offset %d location %d, want 8/1",
			layout.Attributes[1].Offset, layout.Attributes[1].ShaderLocation)
	}
}
