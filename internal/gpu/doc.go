//go:build !nogpu

// Package gpu implements the hardware warp renderer on top of wgpu/hal.
//
// The renderer uploads the tessellated surface mesh as an interleaved
// position+UV vertex buffer with a uint16 index buffer, binds the source
// image as a sampled texture (clamp-to-edge, linear filtering), and draws
// the warped result with a vertex/fragment shader pair. The warp itself is
// entirely a function of mesh-vertex placement; the fragment stage only
// samples the source at the interpolated UV.
//
// Shader programs are compiled once per filter kind and cached
// process-wide; filter chains run over a two-texture ping-pong pair so GPU
// memory stays bounded regardless of chain length.
package gpu
