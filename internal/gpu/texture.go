//go:build !nogpu

package gpu

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// renderTexture bundles a texture with its default view. Filter-chain
// textures are renderable, sampleable, and copyable so any of them can be
// the final readback source.
type renderTexture struct {
	tex  hal.Texture
	view hal.TextureView
}

func newRenderTexture(device hal.Device, label string, w, h uint32) (*renderTexture, error) {
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage: gputypes.TextureUsageRenderAttachment |
			gputypes.TextureUsageTextureBinding |
			gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s texture: %w", label, err)
	}

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("create %s view: %w", label, err)
	}

	return &renderTexture{tex: tex, view: view}, nil
}

func (t *renderTexture) destroy(device hal.Device) {
	if t.view != nil {
		device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		device.DestroyTexture(t.tex)
		t.tex = nil
	}
}

// TexturePair is the two-texture ping-pong set backing the filter chain.
// Each pass renders into Back while sampling Front, then Swap makes the
// new output the next pass's input. GPU memory stays bounded at two
// textures no matter how many passes run.
type TexturePair struct {
	front, back   *renderTexture
	width, height uint32
}

// NewTexturePair allocates both textures at the given dimensions.
func NewTexturePair(device hal.Device, w, h uint32) (*TexturePair, error) {
	front, err := newRenderTexture(device, "warp_chain_a", w, h)
	if err != nil {
		return nil, err
	}
	back, err := newRenderTexture(device, "warp_chain_b", w, h)
	if err != nil {
		front.destroy(device)
		return nil, err
	}
	return &TexturePair{front: front, back: back, width: w, height: h}, nil
}

// Front is the texture holding the most recent pass output.
func (p *TexturePair) Front() *renderTexture { return p.front }

// Back is the texture the next pass renders into.
func (p *TexturePair) Back() *renderTexture { return p.back }

// Swap exchanges front and back after a pass completes.
func (p *TexturePair) Swap() { p.front, p.back = p.back, p.front }

// Size returns the pair's dimensions.
func (p *TexturePair) Size() (uint32, uint32) { return p.width, p.height }

// Destroy releases both textures. Safe to call twice.
func (p *TexturePair) Destroy(device hal.Device) {
	if p.front != nil {
		p.front.destroy(device)
		p.front = nil
	}
	if p.back != nil {
		p.back.destroy(device)
		p.back = nil
	}
	p.width = 0
	p.height = 0
}

// sourceTexture holds the uploaded source image: sampleable, written via
// queue.WriteTexture.
type sourceTexture struct {
	tex           hal.Texture
	view          hal.TextureView
	width, height uint32
}

func newSourceTexture(device hal.Device, w, h uint32) (*sourceTexture, error) {
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "warp_source",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create source texture: %w", err)
	}

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "warp_source_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("create source view: %w", err)
	}

	return &sourceTexture{tex: tex, view: view, width: w, height: h}, nil
}

// upload writes the image pixels into the texture.
func (t *sourceTexture) upload(queue hal.Queue, img *image.RGBA) {
	data := sourcePixels(img, int(t.width), int(t.height))
	queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: 0,
			Origin:   hal.Origin3D{X: 0, Y: 0, Z: 0},
			Aspect:   gputypes.TextureAspectAll,
		},
		data,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: t.width * 4, RowsPerImage: t.height},
		&hal.Extent3D{Width: t.width, Height: t.height, DepthOrArrayLayers: 1},
	)
}

// sourcePixels returns w*h tightly packed RGBA rows for upload. Row
// offsets go through PixOffset so subimages with a nonzero origin upload
// their own pixels, not the parent's. The copy is skipped when the image
// is already tightly packed from its first pixel.
func sourcePixels(img *image.RGBA, w, h int) []byte {
	start := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y)
	if start == 0 && img.Stride == w*4 {
		return img.Pix[:w*h*4]
	}
	data := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		off := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
		copy(data[y*w*4:(y+1)*w*4], img.Pix[off:off+w*4])
	}
	return data
}

func (t *sourceTexture) destroy(device hal.Device) {
	if t.view != nil {
		device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		device.DestroyTexture(t.tex)
		t.tex = nil
	}
	t.width = 0
	t.height = 0
}
