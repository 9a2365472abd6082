//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/warp"
)

// chainPass describes one pass of the filter chain. The first pass (the
// warp itself) samples an explicit input texture and draws the indexed
// mesh; filter passes leave input nil to sample the previous pass's
// output and draw a fullscreen triangle.
type chainPass struct {
	program   *Program
	uniform   hal.Buffer
	input     hal.TextureView // nil = previous pass output
	indexed   bool
	vertBuf   hal.Buffer
	idxBuf    hal.Buffer
	drawCount uint32 // index count when indexed, vertex count otherwise
}

// Chain executes render passes over a two-texture ping-pong pair: each
// pass renders into the back texture while sampling its input, then the
// pair swaps so the output feeds the next pass. The final front texture
// is copied to a staging buffer and read back into the target.
type Chain struct {
	device  hal.Device
	queue   hal.Queue
	sampler hal.Sampler
	pair    *TexturePair
}

// Run encodes all passes, submits, waits, and reads back. Bind groups
// are created per pass and released after submission completes.
func (c *Chain) Run(passes []chainPass, target *warp.RenderTarget) error {
	if len(passes) == 0 {
		return fmt.Errorf("filter chain is empty")
	}

	encoder, err := c.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "warp_chain_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("warp_chain"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	var bindGroups []hal.BindGroup
	defer func() {
		for _, bg := range bindGroups {
			c.device.DestroyBindGroup(bg)
		}
	}()

	for i := range passes {
		pass := &passes[i]

		input := pass.input
		if input == nil {
			// Previous pass output; transition it from render target to
			// sampleable before this pass reads it.
			prev := c.pair.Front()
			encoder.TransitionTextures([]hal.TextureBarrier{{
				Texture: prev.tex,
				Usage: hal.TextureUsageTransition{
					OldUsage: gputypes.TextureUsageRenderAttachment,
					NewUsage: gputypes.TextureUsageTextureBinding,
				},
			}})
			input = prev.view
		}

		bindGroup, err := c.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:  "warp_" + pass.program.Kind() + "_bind",
			Layout: pass.program.bindLayout,
			Entries: []gputypes.BindGroupEntry{
				{Binding: 0, Resource: gputypes.BufferBinding{
					Buffer: pass.uniform.NativeHandle(), Offset: 0, Size: 0, // 0 = entire buffer
				}},
				{Binding: 1, Resource: gputypes.TextureViewBinding{
					TextureView: input.NativeHandle(),
				}},
				{Binding: 2, Resource: gputypes.SamplerBinding{
					Sampler: c.sampler.NativeHandle(),
				}},
			},
		})
		if err != nil {
			encoder.DiscardEncoding()
			return fmt.Errorf("create %s bind group: %w", pass.program.Kind(), err)
		}
		bindGroups = append(bindGroups, bindGroup)

		rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
			Label: "warp_" + pass.program.Kind() + "_pass",
			ColorAttachments: []hal.RenderPassColorAttachment{
				{
					View:       c.pair.Back().view,
					LoadOp:     gputypes.LoadOpClear,
					StoreOp:    gputypes.StoreOpStore,
					ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 0},
				},
			},
		})
		rp.SetPipeline(pass.program.pipeline)
		rp.SetBindGroup(0, bindGroup, nil)
		if pass.indexed {
			rp.SetVertexBuffer(0, pass.vertBuf, 0)
			rp.SetIndexBuffer(pass.idxBuf, gputypes.IndexFormatUint16, 0)
			rp.DrawIndexed(pass.drawCount, 1, 0, 0, 0)
		} else {
			rp.Draw(pass.drawCount, 1, 0, 0)
		}
		rp.End()

		c.pair.Swap()
	}

	return c.readback(encoder, target)
}

// readback copies the front texture to a staging buffer, submits all
// encoded work, waits on the fence, and copies rows into the target.
func (c *Chain) readback(encoder hal.CommandEncoder, target *warp.RenderTarget) error {
	w, h := c.pair.Size()
	final := c.pair.Front()

	// The last pass left the texture in render-attachment usage; the copy
	// needs transfer-source. No-op on backends without explicit layouts.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: final.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	pixelBufSize := uint64(w) * uint64(h) * 4
	stagingBuf, err := c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "warp_chain_staging",
		Size:  pixelBufSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("create staging buffer: %w", err)
	}
	defer c.device.DestroyBuffer(stagingBuf)

	encoder.CopyTextureToBuffer(final.tex, stagingBuf, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: w * 4, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: final.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer c.device.FreeCommandBuffer(cmdBuf)

	fence, err := c.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer c.device.DestroyFence(fence)

	if err := c.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := c.device.Wait(fence, 1, gpuTimeout)
	if err != nil {
		return fmt.Errorf("wait for GPU: %w", err)
	}
	if !fenceOK {
		return fmt.Errorf("wait for GPU: fence timeout")
	}

	readback := make([]byte, pixelBufSize)
	if err := c.queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return fmt.Errorf("readback: %w", err)
	}

	rowBytes := int(w) * 4
	for y := 0; y < int(h); y++ {
		copy(target.Data[y*target.Stride:y*target.Stride+rowBytes], readback[y*rowBytes:(y+1)*rowBytes])
	}
	return nil
}
