package warp

// MeshVertex is a single tessellated surface vertex in device-pixel units,
// relative to the bounding frame's top-left.
type MeshVertex struct {
	X, Y float32
}

// MeshUV is a normalized texture coordinate in [0, 1] assigned per vertex.
type MeshUV struct {
	U, V float32
}

// SurfaceMesh is the result of tessellating the warp surface: an ordered
// vertex sequence, a parallel UV sequence of the same length with the same
// index correspondence, and triangle index triples into the vertex sequence.
//
// A SurfaceMesh is rebuilt from the control points on every geometry change
// and never mutated in place; stale meshes are discarded, not patched. The
// Generation field identifies which control-point generation produced the
// mesh, so renders simply stop reading a mesh once a newer one exists.
type SurfaceMesh struct {
	Vertices []MeshVertex
	UVs      []MeshUV
	Indices  []uint16

	Generation uint64
}

// TriangleCount returns the number of triangles in the mesh.
func (m *SurfaceMesh) TriangleCount() int {
	return len(m.Indices) / 3
}
