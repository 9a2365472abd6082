//go:build !nogpu

package gpu

import (
	"fmt"
	"image"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/warp"
)

// gpuTimeout bounds how long a render waits on the GPU fence.
const gpuTimeout = 5 * time.Second

// Renderer draws warped meshes on the shared hal device. It implements
// warp.Renderer and warp.ColorFilterer.
//
// The renderer keeps size-dependent resources (source texture, filter
// chain pair) across frames and recreates them only when dimensions
// change. Per-frame buffers and bind groups are created and destroyed
// inside Render.
//
// Renderer is not safe for concurrent use; each WarpableImage owns its
// own instance. The device and program cache behind it are shared and
// internally synchronized.
type Renderer struct {
	colorMatrix    warp.ColorMatrix
	hasColorFilter bool

	sampler hal.Sampler
	src     *sourceTexture
	pair    *TexturePair
}

// NewRenderer creates a renderer bound to the shared device, opening the
// device on first use. Returns an error wrapping
// warp.ErrRenderBackendUnavailable when no GPU is reachable.
func NewRenderer() (*Renderer, error) {
	if _, err := acquireDevice(); err != nil {
		return nil, err
	}
	return &Renderer{}, nil
}

// Name implements warp.Renderer.
func (r *Renderer) Name() string { return "wgpu" }

// SetColorFilter installs a color-matrix pass chained after the warp.
// The identity matrix disables the pass.
func (r *Renderer) SetColorFilter(m warp.ColorMatrix) {
	r.colorMatrix = m
	r.hasColorFilter = !m.IsIdentity()
}

// ClearColorFilter removes the color-matrix pass.
func (r *Renderer) ClearColorFilter() {
	r.hasColorFilter = false
}

// Render implements warp.Renderer. It uploads the mesh and source,
// encodes the warp pass (plus the color-matrix pass when a filter is
// set) over the ping-pong pair, and reads the final texture back into
// target.
func (r *Renderer) Render(mesh *warp.SurfaceMesh, source *image.RGBA, target *warp.RenderTarget) error {
	if mesh == nil || len(mesh.Vertices) == 0 || len(mesh.Indices) == 0 {
		return fmt.Errorf("%w: empty mesh", warp.ErrDegenerateGeometry)
	}
	if len(mesh.UVs) != len(mesh.Vertices) {
		return fmt.Errorf("%w: %d vertices, %d uvs", warp.ErrDegenerateGeometry,
			len(mesh.Vertices), len(mesh.UVs))
	}
	if source == nil || target == nil || target.Width < 1 || target.Height < 1 {
		return fmt.Errorf("%w: missing source or target", warp.ErrDegenerateGeometry)
	}

	state, err := acquireDevice()
	if err != nil {
		return err
	}
	device, queue := state.device, state.queue

	w, h := uint32(target.Width), uint32(target.Height) //nolint:gosec // dimensions always fit uint32
	if err := r.ensureResources(device, source, w, h); err != nil {
		return fmt.Errorf("%w: %w", warp.ErrRenderBackendUnavailable, err)
	}
	r.src.upload(queue, source)

	warpProg, err := state.programs.Get(device, KindWarp)
	if err != nil {
		return err
	}
	var cmProg *Program
	if r.hasColorFilter {
		if cmProg, err = state.programs.Get(device, KindColorMatrix); err != nil {
			return err
		}
	}

	// Per-frame buffers.
	vertBuf, err := createAndUploadBuffer(device, queue, "warp_verts",
		buildWarpVertices(mesh), gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return fmt.Errorf("%w: %w", warp.ErrRenderBackendUnavailable, err)
	}
	defer device.DestroyBuffer(vertBuf)

	idxBuf, err := createAndUploadBuffer(device, queue, "warp_indices",
		buildWarpIndices(mesh), gputypes.BufferUsageIndex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return fmt.Errorf("%w: %w", warp.ErrRenderBackendUnavailable, err)
	}
	defer device.DestroyBuffer(idxBuf)

	frameBuf, err := createAndUploadBuffer(device, queue, "warp_frame_uniform",
		makeFrameUniform(w, h), gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		return fmt.Errorf("%w: %w", warp.ErrRenderBackendUnavailable, err)
	}
	defer device.DestroyBuffer(frameBuf)

	passes := []chainPass{{
		program:   warpProg,
		uniform:   frameBuf,
		input:     r.src.view,
		indexed:   true,
		vertBuf:   vertBuf,
		idxBuf:    idxBuf,
		drawCount: uint32(len(mesh.Indices)), //nolint:gosec // index count fits uint32
	}}

	if r.hasColorFilter {
		cmBuf, err := createAndUploadBuffer(device, queue, "warp_colormatrix_uniform",
			makeColorMatrixUniform([20]float32(r.colorMatrix)),
			gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
		if err != nil {
			return fmt.Errorf("%w: %w", warp.ErrRenderBackendUnavailable, err)
		}
		defer device.DestroyBuffer(cmBuf)

		passes = append(passes, chainPass{
			program:   cmProg,
			uniform:   cmBuf,
			drawCount: 3, // fullscreen triangle from the vertex index
		})
	}

	chain := &Chain{device: device, queue: queue, sampler: r.sampler, pair: r.pair}
	if err := chain.Run(passes, target); err != nil {
		return fmt.Errorf("%w: %w", warp.ErrRenderBackendUnavailable, err)
	}
	return nil
}

// ensureResources creates or recreates the sampler, source texture, and
// chain pair when missing or mis-sized.
func (r *Renderer) ensureResources(device hal.Device, source *image.RGBA, w, h uint32) error {
	if r.sampler == nil {
		sampler, err := device.CreateSampler(&hal.SamplerDescriptor{
			Label:        "warp_sampler",
			AddressModeU: gputypes.AddressModeClampToEdge,
			AddressModeV: gputypes.AddressModeClampToEdge,
			AddressModeW: gputypes.AddressModeClampToEdge,
			MagFilter:    gputypes.FilterModeLinear,
			MinFilter:    gputypes.FilterModeLinear,
			MipmapFilter: gputypes.FilterModeLinear,
		})
		if err != nil {
			return fmt.Errorf("create sampler: %w", err)
		}
		r.sampler = sampler
	}

	b := source.Bounds()
	sw, sh := uint32(b.Dx()), uint32(b.Dy()) //nolint:gosec // image dimensions always fit uint32
	if r.src != nil && (r.src.width != sw || r.src.height != sh) {
		r.src.destroy(device)
		r.src = nil
	}
	if r.src == nil {
		src, err := newSourceTexture(device, sw, sh)
		if err != nil {
			return err
		}
		r.src = src
	}

	if r.pair != nil {
		pw, ph := r.pair.Size()
		if pw != w || ph != h {
			r.pair.Destroy(device)
			r.pair = nil
		}
	}
	if r.pair == nil {
		pair, err := NewTexturePair(device, w, h)
		if err != nil {
			return err
		}
		r.pair = pair
	}
	return nil
}

// Close implements warp.Renderer. The shared device and program cache
// stay open for other renderers; only this instance's textures and
// sampler are released.
func (r *Renderer) Close() {
	device := currentDevice()
	if device == nil {
		return
	}
	if r.pair != nil {
		r.pair.Destroy(device)
		r.pair = nil
	}
	if r.src != nil {
		r.src.destroy(device)
		r.src = nil
	}
	if r.sampler != nil {
		device.DestroySampler(r.sampler)
		r.sampler = nil
	}
}

// createAndUploadBuffer creates a GPU buffer and uploads data.
func createAndUploadBuffer(device hal.Device, queue hal.Queue, label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	queue.WriteBuffer(buf, 0, data)
	return buf, nil
}
