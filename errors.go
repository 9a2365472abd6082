package warp

import "errors"

// Errors reported by the warp engine. All of them are local to one image
// instance; a failure in one instance never affects another instance or the
// shared shader program cache.
var (
	// ErrDegenerateGeometry indicates fewer than four usable corners, a
	// zero-area quadrilateral, or coincident points. Callers recover by
	// skipping the render pass and retaining the last valid output.
	ErrDegenerateGeometry = errors.New("warp: degenerate geometry")

	// ErrInvalidControlPoint indicates a control-point index out of range.
	// The drag is ignored.
	ErrInvalidControlPoint = errors.New("warp: control point index out of range")

	// ErrNotDragging indicates a drag update without a preceding BeginDrag.
	ErrNotDragging = errors.New("warp: no drag in progress")

	// ErrRenderBackendUnavailable indicates a missing GPU context or a
	// shader compile failure. Callers degrade to unwarped rendering.
	ErrRenderBackendUnavailable = errors.New("warp: render backend unavailable")

	// ErrAssetLoadFailed indicates the source image could not be decoded.
	// No control points are initialized and no render is attempted.
	ErrAssetLoadFailed = errors.New("warp: asset load failed")

	// ErrAlreadyInitialized indicates Initialize was called twice for the
	// same image.
	ErrAlreadyInitialized = errors.New("warp: control points already initialized")

	// ErrNotInitialized indicates an operation that requires initialized
	// control points.
	ErrNotInitialized = errors.New("warp: control points not initialized")
)
