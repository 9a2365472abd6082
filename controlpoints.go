package warp

import "math"

// ControlPointSet is an ordered sequence of control-point coordinates in
// device-pixel units, expressed relative to a local origin that shifts as
// points move (see NormalizeOffset).
//
// Insertion order defines polygon winding for both guide-line rendering and
// surface corner assignment. The order is never permuted by this package.
type ControlPointSet []Point

// Clone returns an independent copy of the set.
func (s ControlPointSet) Clone() ControlPointSet {
	out := make(ControlPointSet, len(s))
	copy(out, s)
	return out
}

// BoundingFrame is the axis-aligned bounding box of a ControlPointSet at
// device-pixel-ratio-normalized scale. Width and Height are absolute
// differences and therefore always >= 0.
//
// A BoundingFrame is always recomputed from scratch by ComputeBounds, never
// incrementally patched, to avoid drift.
type BoundingFrame struct {
	MinX, MinY float64
	MaxX, MaxY float64
	Width      float64
	Height     float64
}

// ComputeBounds scans all points and returns their bounding frame.
// It has no side effects on the point set.
// Returns ErrDegenerateGeometry for an empty set.
func ComputeBounds(points ControlPointSet) (BoundingFrame, error) {
	if len(points) == 0 {
		return BoundingFrame{}, ErrDegenerateGeometry
	}

	f := BoundingFrame{
		MinX: points[0].X, MaxX: points[0].X,
		MinY: points[0].Y, MaxY: points[0].Y,
	}
	for _, p := range points[1:] {
		f.MinX = math.Min(f.MinX, p.X)
		f.MaxX = math.Max(f.MaxX, p.X)
		f.MinY = math.Min(f.MinY, p.Y)
		f.MaxY = math.Max(f.MaxY, p.Y)
	}
	f.Width = math.Abs(f.MaxX - f.MinX)
	f.Height = math.Abs(f.MaxY - f.MinY)
	return f, nil
}

// NormalizeOffset subtracts frame.MinX/MinY from every point in place,
// establishing the local coordinate origin at the frame's top-left.
//
// It must be called only after ComputeBounds on the same point set: the
// ordering matters because it makes subsequent bound computations return
// (0,0) as the new minimum.
func NormalizeOffset(points ControlPointSet, frame BoundingFrame) {
	for i := range points {
		points[i].X -= frame.MinX
		points[i].Y -= frame.MinY
	}
}
