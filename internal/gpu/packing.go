//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/warp"
)

// buildWarpVertices packs the mesh into the interleaved vertex buffer
// layout (position vec2 + uv vec2, 16 bytes per vertex).
func buildWarpVertices(mesh *warp.SurfaceMesh) []byte {
	data := make([]byte, len(mesh.Vertices)*warpVertexStride)
	for i, v := range mesh.Vertices {
		off := i * warpVertexStride
		uv := mesh.UVs[i]
		binary.LittleEndian.PutUint32(data[off:off+4], math.Float32bits(v.X))
		binary.LittleEndian.PutUint32(data[off+4:off+8], math.Float32bits(v.Y))
		binary.LittleEndian.PutUint32(data[off+8:off+12], math.Float32bits(uv.U))
		binary.LittleEndian.PutUint32(data[off+12:off+16], math.Float32bits(uv.V))
	}
	return data
}

// buildWarpIndices packs the mesh indices as little-endian uint16. The
// buffer is padded to a 4-byte multiple to satisfy buffer size alignment.
func buildWarpIndices(mesh *warp.SurfaceMesh) []byte {
	n := len(mesh.Indices) * 2
	padded := (n + 3) &^ 3
	data := make([]byte, padded)
	for i, idx := range mesh.Indices {
		binary.LittleEndian.PutUint16(data[i*2:i*2+2], idx)
	}
	return data
}

// makeFrameUniform packs the warp frame uniform: inv_resolution as a
// vec4<f32> (1/w, 1/h, 0, 0).
func makeFrameUniform(w, h uint32) []byte {
	data := make([]byte, frameUniformSize)
	binary.LittleEndian.PutUint32(data[0:4], math.Float32bits(1/float32(w)))
	binary.LittleEndian.PutUint32(data[4:8], math.Float32bits(1/float32(h)))
	return data
}

// makeColorMatrixUniform packs a 4x5 row-major color matrix (bias column
// in 0..255 range, warp.ColorMatrix layout) into the shader uniform: a
// column-major mat4x4<f32> followed by a normalized offset vec4<f32>.
func makeColorMatrixUniform(m [20]float32) []byte {
	data := make([]byte, colorMatrixUniformSize)
	// mat4x4 is column-major in WGSL memory layout.
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			off := (col*4 + row) * 4
			binary.LittleEndian.PutUint32(data[off:off+4], math.Float32bits(m[row*5+col]))
		}
	}
	// Bias column, rescaled from 0..255 to the shader's 0..1 color range.
	for row := 0; row < 4; row++ {
		off := 64 + row*4
		binary.LittleEndian.PutUint32(data[off:off+4], math.Float32bits(m[row*5+4]/255))
	}
	return data
}
