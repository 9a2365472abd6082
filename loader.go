package warp

import (
	"context"
	"fmt"
	"image"
	"io"

	xdraw "golang.org/x/image/draw"

	// Decoders for the formats an editing canvas commonly loads.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// LoadResult is the one-shot completion signal of an asynchronous image
// load. Exactly one result is delivered per load; either Image or Err is
// set, never both.
type LoadResult struct {
	Image *image.RGBA
	Err   error
}

// LoadImage decodes an image asynchronously and delivers exactly one
// LoadResult on the returned channel. The channel is buffered, so the
// result is delivered even if the receiver is late, and closed after
// delivery.
//
// Decode failures and context cancellation surface as errors wrapping
// ErrAssetLoadFailed; the caller then initializes no control points and
// attempts no render.
func LoadImage(ctx context.Context, r io.Reader) <-chan LoadResult {
	out := make(chan LoadResult, 1)
	go func() {
		defer close(out)
		img, err := decodeRGBA(ctx, r)
		if err != nil {
			out <- LoadResult{Err: err}
			return
		}
		out <- LoadResult{Image: img}
	}()
	return out
}

// decodeRGBA decodes r and converts the result to premultiplied RGBA.
func decodeRGBA(ctx context.Context, r io.Reader) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAssetLoadFailed, err)
	}

	src, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrAssetLoadFailed, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAssetLoadFailed, err)
	}

	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: empty %s image", ErrAssetLoadFailed, format)
	}

	if rgba, ok := src.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba, nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), src, b.Min, xdraw.Src)
	Logger().Debug("decoded source image", "format", format, "w", b.Dx(), "h", b.Dy())
	return dst, nil
}
