// Package warp provides interactive four-point perspective warping of
// raster images for 2D editing canvases.
//
// # Overview
//
// warp maps a rectangular source image onto an arbitrary quadrilateral
// defined by four draggable control points. The quadrilateral is tessellated
// into a triangle mesh with UV coordinates and drawn through a GPU shader
// pipeline (or a software fallback), so the warped result updates in real
// time while a corner is dragged.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/warp"
//	    _ "github.com/gogpu/warp/gpu" // enable GPU rendering
//	)
//
//	img := warp.New(host, warp.WithDevicePixelRatio(2))
//	img.SetSource(source)          // seeds the four corner points
//	img.BeginDrag(1)
//	img.UpdateDrag(1, warp.Pt(220, -10))
//	img.EndDrag()
//	out, err := img.Render()
//
// # Architecture
//
// The library is organized into:
//   - Public API: WarpableImage, Controller, Tessellator, HandleOverlay
//   - Geometry: ControlPointSet, BoundingFrame, SurfaceMesh
//   - Renderers: software (always available), gpu (github.com/gogpu/warp/gpu)
//
// The host object model (selection, transform handles, serialization
// framework) is consumed through the narrow Host interface and is not part
// of this module.
package warp
