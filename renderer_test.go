package warp

import (
	"errors"
	"testing"
)

func TestNewRenderTargetClampsDimensions(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"normal", 10, 8, 10, 8},
		{"zero width", 0, 8, 1, 8},
		{"negative", -5, -5, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := NewRenderTarget(tt.w, tt.h)
			if target.Width != tt.wantW || target.Height != tt.wantH {
				t.Errorf("dimensions = %dx%d, want %dx%d",
					target.Width, target.Height, tt.wantW, tt.wantH)
			}
			if len(target.Data) != tt.wantW*tt.wantH*4 {
				t.Errorf("len(Data) = %d, want %d", len(target.Data), tt.wantW*tt.wantH*4)
			}
			if target.Stride != tt.wantW*4 {
				t.Errorf("Stride = %d, want %d", target.Stride, tt.wantW*4)
			}
		})
	}
}

func TestRenderTargetImageSharesPixels(t *testing.T) {
	target := NewRenderTarget(4, 4)
	img := target.Image()

	target.Data[0] = 0xAB
	if img.Pix[0] != 0xAB {
		t.Error("Image() does not share the target's backing array")
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 4 {
		t.Errorf("Image() bounds = %v, want 4x4", img.Bounds())
	}
}

func TestRegisterRenderer(t *testing.T) {
	defer RegisterRenderer(nil)

	if r := newRegisteredRenderer(); r != nil {
		t.Fatalf("unexpected pre-registered renderer %q", r.Name())
	}

	want := &recordingRenderer{}
	RegisterRenderer(func() (Renderer, error) { return want, nil })
	if got := newRegisteredRenderer(); got != Renderer(want) {
		t.Error("factory result not returned")
	}

	// A failing factory degrades to no renderer instead of erroring out.
	RegisterRenderer(func() (Renderer, error) {
		return nil, errors.New("no device")
	})
	if r := newRegisteredRenderer(); r != nil {
		t.Errorf("failing factory produced renderer %q", r.Name())
	}

	RegisterRenderer(nil)
	if r := newRegisteredRenderer(); r != nil {
		t.Error("nil registration did not remove the factory")
	}
}
