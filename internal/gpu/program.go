//go:build !nogpu

package gpu

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/warp"
)

// Embedded WGSL shader sources.

//go:embed shaders/warp.wgsl
var warpShaderSource string

//go:embed shaders/colormatrix.wgsl
var colorMatrixShaderSource string

// Filter kinds keying the program cache. Every render pass using the same
// kind shares one compiled program.
const (
	KindWarp        = "warp"
	KindColorMatrix = "colormatrix"
)

// warpVertexStride is the byte stride per vertex in the warp pipeline.
// Layout per vertex:
//
//	position (vec2<f32>) = 8 bytes (location 0)
//	uv       (vec2<f32>) = 8 bytes (location 1)
//
// Total = 16 bytes per vertex.
const warpVertexStride = 16

// frameUniformSize is the byte size of the warp frame uniform:
// inv_resolution (vec4<f32>) = 16 bytes.
const frameUniformSize = 16

// colorMatrixUniformSize is the byte size of the color-matrix uniform:
// mat4x4<f32> (64 bytes) + offset vec4<f32> (16 bytes) = 80 bytes.
const colorMatrixUniformSize = 80

// Program is a compiled shader program for one filter kind: the shader
// module, its bind group and pipeline layouts resolved once, and the
// render pipeline. Programs are read-only after compilation and shared by
// every render pass of the same kind.
type Program struct {
	kind       string
	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
}

// Kind returns the filter kind this program was compiled for.
func (p *Program) Kind() string { return p.kind }

// destroy releases the program's GPU objects in reverse creation order.
func (p *Program) destroy(device hal.Device) {
	if p.pipeline != nil {
		device.DestroyRenderPipeline(p.pipeline)
	}
	if p.pipeLayout != nil {
		device.DestroyPipelineLayout(p.pipeLayout)
	}
	if p.bindLayout != nil {
		device.DestroyBindGroupLayout(p.bindLayout)
	}
	if p.shader != nil {
		device.DestroyShaderModule(p.shader)
	}
}

// ProgramCache caches compiled programs by filter kind, process-wide.
// It is populated lazily on first use and invalidated only on device loss.
//
// A failed compile is never cached: the entry stays empty and the compile
// is retried on the next access, so one instance's failure cannot poison
// the cache for other instances.
//
// ProgramCache is safe for concurrent read access; program creation is
// synchronized internally with double-checked locking.
type ProgramCache struct {
	mu       sync.RWMutex
	programs map[string]*Program
}

// NewProgramCache creates an empty cache.
func NewProgramCache() *ProgramCache {
	return &ProgramCache{programs: make(map[string]*Program)}
}

// Get returns the compiled program for kind, compiling it on first use.
// Unknown kinds and compile failures return an error wrapping
// warp.ErrRenderBackendUnavailable.
func (c *ProgramCache) Get(device hal.Device, kind string) (*Program, error) {
	c.mu.RLock()
	p, ok := c.programs[kind]
	c.mu.RUnlock()
	if ok {
		return p, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring the write lock.
	if p, ok = c.programs[kind]; ok {
		return p, nil
	}

	p, err := compileProgram(device, kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", warp.ErrRenderBackendUnavailable, err)
	}
	c.programs[kind] = p
	return p, nil
}

// Invalidate destroys every cached program. Called on device loss or
// replacement; the next Get recompiles against the new device.
func (c *ProgramCache) Invalidate(device hal.Device) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for kind, p := range c.programs {
		p.destroy(device)
		delete(c.programs, kind)
	}
}

// Len returns the number of cached programs.
func (c *ProgramCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.programs)
}

// compileProgram builds the program for one filter kind.
func compileProgram(device hal.Device, kind string) (*Program, error) {
	switch kind {
	case KindWarp:
		return buildProgram(device, kind, warpShaderSource, warpVertexLayout())
	case KindColorMatrix:
		// Full-screen pass: vertices come from the vertex index, no buffer.
		return buildProgram(device, kind, colorMatrixShaderSource, nil)
	default:
		return nil, fmt.Errorf("unknown filter kind %q", kind)
	}
}

// buildProgram compiles source and assembles the render pipeline. The
// bind group layout is identical for all kinds: uniform, texture, sampler.
func buildProgram(device hal.Device, kind, source string, vertexBuffers []gputypes.VertexBufferLayout) (*Program, error) {
	if source == "" {
		return nil, fmt.Errorf("%s shader source is empty", kind)
	}
	// Validate WGSL before handing it to the device so compile errors
	// carry naga's diagnostics instead of a backend-specific failure.
	if _, err := naga.Compile(source); err != nil {
		return nil, fmt.Errorf("validate %s shader: %w", kind, err)
	}

	p := &Program{kind: kind}

	shader, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "warp_" + kind + "_shader",
		Source: hal.ShaderSource{WGSL: source},
	})
	if err != nil {
		return nil, fmt.Errorf("compile %s shader: %w", kind, err)
	}
	p.shader = shader

	bindLayout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "warp_" + kind + "_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		p.destroy(device)
		return nil, fmt.Errorf("create %s bind layout: %w", kind, err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "warp_" + kind + "_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		p.destroy(device)
		return nil, fmt.Errorf("create %s pipeline layout: %w", kind, err)
	}
	p.pipeLayout = pipeLayout

	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "warp_" + kind + "_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
			Buffers:    vertexBuffers,
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    gputypes.TextureFormatRGBA8Unorm,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		p.destroy(device)
		return nil, fmt.Errorf("create %s pipeline: %w", kind, err)
	}
	p.pipeline = pipeline

	return p, nil
}

// warpVertexLayout returns the vertex buffer layout for the warp pipeline.
// Matches VertexInput in warp.wgsl:
//
//	location 0: position (vec2<f32>)
//	location 1: uv (vec2<f32>)
func warpVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: warpVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // position
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1}, // uv
			},
		},
	}
}
