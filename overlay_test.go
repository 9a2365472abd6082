package warp

import (
	"image"
	"image/color"
	"testing"
)

func TestDrawHandlesPaintsMarkers(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 120, 120))
	o := NewHandleOverlay(DefaultHandleStyle(), 1)

	points := ControlPointSet{Pt(20, 20), Pt(100, 20), Pt(100, 100), Pt(20, 100)}
	o.DrawHandles(dst, points, Identity())

	// Marker centers are opaque.
	for i, p := range points {
		if a := dst.RGBAAt(int(p.X), int(p.Y)).A; a == 0 {
			t.Errorf("no marker painted at point %d (%v)", i, p)
		}
	}
	// Guide line midpoints between consecutive points are painted too.
	if a := dst.RGBAAt(60, 20).A; a == 0 {
		t.Error("no guide line between points 0 and 1")
	}
	if a := dst.RGBAAt(20, 60).A; a == 0 {
		t.Error("no closing guide line between points 3 and 0")
	}
	// Well away from all geometry stays clear.
	if a := dst.RGBAAt(60, 60).A; a != 0 {
		t.Errorf("interior pixel painted, alpha = %d", a)
	}
}

func TestDrawHandlesAppliesTransform(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 120, 120))
	o := NewHandleOverlay(DefaultHandleStyle(), 1)

	// A translated host moves the handles with it.
	tr := Translate(40, 40)
	o.DrawHandles(dst, ControlPointSet{Pt(10, 10)}, tr)

	if a := dst.RGBAAt(50, 50).A; a == 0 {
		t.Error("marker not drawn at transformed position (50,50)")
	}
	if a := dst.RGBAAt(10, 10).A; a != 0 {
		t.Error("marker drawn at untransformed position (10,10)")
	}
}

func TestDrawHandlesTracksHostScale(t *testing.T) {
	host := newFakeHost(100, 100)
	host.sx, host.sy = 2, 2
	w := New(host)
	defer w.Close()
	if err := w.SetSource(solidSource(100, 100, color.RGBA{A: 255})); err != nil {
		t.Fatalf("SetSource() error = %v", err)
	}

	// Raw units divide out the scale: canvas (220,220) stores (110,110).
	if err := w.BeginDrag(2); err != nil {
		t.Fatalf("BeginDrag() error = %v", err)
	}
	if err := w.UpdateDrag(2, Pt(220, 220)); err != nil {
		t.Fatalf("UpdateDrag() error = %v", err)
	}
	got := w.Controller().Points()[2]
	if !got.NearlyEqual(Pt(110, 110), 1e-9) {
		t.Fatalf("dragged point = %v, want (110,110)", got)
	}

	dst := image.NewRGBA(image.Rect(0, 0, 260, 260))
	w.DrawHandles(dst)

	// The marker tracks the pointer's canvas position, not the raw units.
	if a := dst.RGBAAt(220, 220).A; a == 0 {
		t.Error("no marker at the dragged canvas position (220,220)")
	}
	if a := dst.RGBAAt(110, 110).A; a != 0 {
		t.Errorf("marker drawn at unscaled position (110,110), alpha = %d", a)
	}
}

func TestDrawHandlesScalesByDevicePixelRatio(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 120, 120))
	o := NewHandleOverlay(DefaultHandleStyle(), 2)

	// Stored points are raw (dpr-scaled); handles land at local positions.
	o.DrawHandles(dst, ControlPointSet{Pt(160, 80)}, Identity())

	if a := dst.RGBAAt(80, 40).A; a == 0 {
		t.Error("marker not drawn at dpr-corrected position (80,40)")
	}
}

func TestDrawHandlesCustomStyle(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 60, 60))
	style := HandleStyle{
		Radius:    10,
		LineWidth: 2,
		Fill:      color.RGBA{R: 255, A: 255},
		Line:      color.RGBA{G: 255, A: 255},
	}
	o := NewHandleOverlay(style, 1)
	o.DrawHandles(dst, ControlPointSet{Pt(30, 30)}, Identity())

	c := dst.RGBAAt(30, 30)
	if c.R != 255 || c.A != 255 {
		t.Errorf("marker center = %v, want red fill", c)
	}
	// Radius 10 covers (38,30); the default radius 4 would not.
	if a := dst.RGBAAt(38, 30).A; a == 0 {
		t.Error("enlarged marker radius not honored")
	}
}

func TestDrawHandlesNilAndEmpty(t *testing.T) {
	o := NewHandleOverlay(DefaultHandleStyle(), 1)
	// Neither call may panic.
	o.DrawHandles(nil, ControlPointSet{Pt(1, 1)}, Identity())
	dst := image.NewRGBA(image.Rect(0, 0, 8, 8))
	o.DrawHandles(dst, nil, Identity())
	for i := range dst.Pix {
		if dst.Pix[i] != 0 {
			t.Fatal("empty point set painted pixels")
		}
	}
}
