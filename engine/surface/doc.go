// Package surface partitions triangle meshes into surfaces and labels them.
//
// A surface is a maximal set of vertices connected through shared triangles. The
// package builds an adjacency graph from a triangle index buffer (BuildGraph),
// finds its connected components with an iterative worklist (Label), and encodes
// the resulting labels as a per-vertex (label, 0, 0, 1) attribute (Encode) that
// the surface id render pass rasterizes.
//
// Label values are issued from a caller-owned LabelState. Reusing one state for
// every mesh in a scene keeps labels unique across the scene.
package surface

import "errors"

var (
	// ErrMissingIndexBuffer is returned when a mesh carries no triangle index data.
	// Callers skip labeling for the mesh and fall back to Unlabeled.
	ErrMissingIndexBuffer = errors.New("surface: mesh has no index buffer")

	// ErrMalformedIndexBuffer is returned when the index count is not a multiple of three.
	ErrMalformedIndexBuffer = errors.New("surface: index count is not a multiple of 3")

	// ErrIndexOutOfRange is returned when an index references a vertex beyond the vertex count.
	ErrIndexOutOfRange = errors.New("surface: index out of range")
)
