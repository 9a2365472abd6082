package warp

import "fmt"

// Host is the narrow interface a warpable image consumes from the
// surrounding object model. Implementations are typically thin adapters
// over a scene object.
//
// Transform maps the image's scaled local space (image coordinates times
// the current scale factors, relative to the bounding frame's top-left) to
// canvas coordinates; for most hosts this is rotation plus translation.
// Scale factors are reported separately because control points are stored
// in raw image units.
type Host interface {
	// Transform returns the current local-to-canvas transform. The
	// controller always reads it fresh, never caches it: the bounding
	// frame and transform change between drags.
	Transform() Matrix

	// Scale returns the current horizontal and vertical scale factors.
	Scale() (sx, sy float64)

	// Size returns the image's logical width and height.
	Size() (w, h float64)

	// SetSize updates the image's logical width and height after the
	// bounding frame changed.
	SetSize(w, h float64)

	// Position returns the canvas position of the frame's top-left.
	Position() Point

	// SetPosition moves the image on the canvas.
	SetPosition(p Point)

	// RefreshGeometry refreshes the host's cached control geometry
	// (the setCoords equivalent).
	RefreshGeometry()

	// InvalidateFilters discards the host's cached render and re-applies
	// its filter chain (the applyFilters equivalent).
	InvalidateFilters()
}

// controllerState is the per-image drag state machine.
type controllerState uint8

const (
	stateUninitialized controllerState = iota
	stateInitialized
	stateDragging
)

// Controller owns the mutable control-point list for one image. It
// translates pointer-drag events into coordinate updates and keeps the
// owning image's position, size, and point offsets synchronized as points
// move.
//
// The state machine is Uninitialized -> Initialized (four points seeded at
// the unwarped rectangle corners) -> Dragging(i) -> back to Initialized on
// release. A Controller is confined to the rendering goroutine; drag
// updates and render passes never interleave.
type Controller struct {
	host Host
	dpr  float64

	points ControlPointSet
	frame  BoundingFrame

	state     controllerState
	dragIndex int

	// generation counts geometry mutations. Renders compare it against
	// the generation of the mesh they hold to discard stale meshes.
	generation uint64
}

// NewController creates a controller for the given host. The device pixel
// ratio must be > 0; values <= 0 fall back to 1.
func NewController(host Host, dpr float64) *Controller {
	if dpr <= 0 {
		dpr = 1
	}
	return &Controller{host: host, dpr: dpr, dragIndex: -1}
}

// Initialize seeds four corner points at (0,0), (w,0), (w,h), (0,h) in
// device-pixel-ratio-scaled units. It is called exactly once, when the
// source image finishes loading; a second call returns
// ErrAlreadyInitialized.
func (c *Controller) Initialize(width, height float64) error {
	if c.state != stateUninitialized {
		return ErrAlreadyInitialized
	}
	w := width * c.dpr
	h := height * c.dpr
	c.points = ControlPointSet{
		Pt(0, 0),
		Pt(w, 0),
		Pt(w, h),
		Pt(0, h),
	}
	c.frame = BoundingFrame{MaxX: w, MaxY: h, Width: w, Height: h}
	c.state = stateInitialized
	c.generation++
	return nil
}

// Points returns the live control-point set. Callers must treat it as
// read-only; mutations go through UpdateDrag.
func (c *Controller) Points() ControlPointSet { return c.points }

// Frame returns the bounding frame computed by the last geometry update.
func (c *Controller) Frame() BoundingFrame { return c.frame }

// Generation returns the current geometry generation. It increases on
// every mutation of the control-point set.
func (c *Controller) Generation() uint64 { return c.generation }

// DevicePixelRatio returns the ratio control points are scaled by.
func (c *Controller) DevicePixelRatio() float64 { return c.dpr }

// Dragging returns the index of the point under pointer control, or -1.
func (c *Controller) Dragging() int {
	if c.state != stateDragging {
		return -1
	}
	return c.dragIndex
}

// BeginDrag transitions to Dragging(index). Returns ErrInvalidControlPoint
// if index is out of range and ErrNotInitialized before Initialize.
func (c *Controller) BeginDrag(index int) error {
	if c.state == stateUninitialized {
		return ErrNotInitialized
	}
	if index < 0 || index >= len(c.points) {
		return fmt.Errorf("%w: %d of %d", ErrInvalidControlPoint, index, len(c.points))
	}
	c.state = stateDragging
	c.dragIndex = index
	return nil
}

// UpdateDrag converts canvasPoint (canvas/device coordinates) into raw
// control-point units and writes it into points[index].
//
// The conversion applies the inverse of the host's current transform, then
// the inverse of the current scale factors, then the device pixel ratio.
// The transform is read fresh from the host on every update because frame
// and transform change between drags.
func (c *Controller) UpdateDrag(index int, canvasPoint Point) error {
	if c.state != stateDragging {
		return ErrNotDragging
	}
	if index != c.dragIndex {
		return fmt.Errorf("%w: %d is not the dragged point", ErrInvalidControlPoint, index)
	}

	local := c.host.Transform().Invert().TransformPoint(canvasPoint)
	sx, sy := c.host.Scale()
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	c.points[index] = Pt(local.X/sx*c.dpr, local.Y/sy*c.dpr)
	c.generation++
	return nil
}

// EndDrag recomputes the bounding frame from the new point values, resizes
// and repositions the host so every undragged point keeps its exact canvas
// position, re-normalizes the point offsets against the new frame, and
// transitions back to Initialized.
//
// Geometry is recomputed after the drag mutates the point, never from stale
// bounds. The anchor compensation translates the host position by the new
// frame's min offset mapped through the transform's linear part, which pins
// the opposite, undragged edges exactly (the exact-pin form of the
// half-delta policy).
//
// EndDrag is idempotent: calling it again without an intervening UpdateDrag
// changes neither the point set nor the frame.
//
// As a side effect the host's cached render is invalidated and its filter
// chain re-applied.
//
// The returned frame is the one computed from the just-mutated points,
// before offsets are re-normalized; its min coordinates tell the caller how
// far the local origin moved.
func (c *Controller) EndDrag() (BoundingFrame, error) {
	if c.state == stateUninitialized {
		return BoundingFrame{}, ErrNotInitialized
	}

	frame, err := ComputeBounds(c.points)
	if err != nil {
		return BoundingFrame{}, err
	}

	sx, sy := c.host.Scale()
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}

	c.host.SetSize(frame.Width/c.dpr, frame.Height/c.dpr)

	// The local origin moves to the new frame's top-left; shift the host
	// by the same offset in canvas space so undragged points stay put.
	minLocal := Pt(frame.MinX/c.dpr*sx, frame.MinY/c.dpr*sy)
	if minLocal != (Point{}) {
		delta := c.host.Transform().TransformVector(minLocal)
		c.host.SetPosition(c.host.Position().Add(delta))
	}

	NormalizeOffset(c.points, frame)
	c.frame = BoundingFrame{
		MaxX: frame.Width, MaxY: frame.Height,
		Width: frame.Width, Height: frame.Height,
	}

	if c.state == stateDragging {
		c.generation++
	}
	c.state = stateInitialized
	c.dragIndex = -1

	c.host.RefreshGeometry()
	c.host.InvalidateFilters()
	return frame, nil
}

// Corners returns the first four control points as surface corners.
// Returns ErrDegenerateGeometry when fewer than four points exist.
func (c *Controller) Corners() ([4]Point, error) {
	var corners [4]Point
	if len(c.points) < 4 {
		return corners, fmt.Errorf("%w: %d control points", ErrDegenerateGeometry, len(c.points))
	}
	copy(corners[:], c.points[:4])
	return corners, nil
}

// setPoints replaces the control-point set during state restore. The frame
// is recomputed and offsets normalized so restored coordinates are always
// frame-relative.
func (c *Controller) setPoints(points ControlPointSet) error {
	if len(points) < 3 {
		return fmt.Errorf("%w: %d control points", ErrDegenerateGeometry, len(points))
	}
	frame, err := ComputeBounds(points)
	if err != nil {
		return err
	}
	c.points = points.Clone()
	NormalizeOffset(c.points, frame)
	c.frame = BoundingFrame{
		MaxX: frame.Width, MaxY: frame.Height,
		Width: frame.Width, Height: frame.Height,
	}
	c.state = stateInitialized
	c.dragIndex = -1
	c.generation++
	return nil
}
