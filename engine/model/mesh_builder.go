package model

import (
	"github.com/Carmen-Shannon/oxy-outline/common"
)

// MeshBuilderOption is a functional option for configuring a Mesh via NewMesh.
type MeshBuilderOption func(*mesh)

// WithName is an option builder that sets the name of the Mesh.
//
// Parameters:
//   - name: the mesh identifier
//
// Returns:
//   - MeshBuilderOption: a function that applies the name option to a mesh
func WithName(name string) MeshBuilderOption {
	return func(m *mesh) {
		m.name = name
	}
}

// WithGeometry sets the positions and triangle indices of the Mesh. Pass nil indices for
// an unindexed triangle list.
//
// Parameters:
//   - positions: the vertex positions
//   - indices: the triangle indices, or nil
//
// Returns:
//   - MeshBuilderOption: a function that applies the geometry to a mesh
func WithGeometry(positions []common.Vec3, indices []uint32) MeshBuilderOption {
	return func(m *mesh) {
		m.positions = positions
		m.indices = indices
	}
}

// WithNormals sets explicit vertex normals. They are ignored unless there is one per position.
func WithNormals(normals []common.Vec3) MeshBuilderOption {
	return func(m *mesh) {
		m.normals = normals
	}
}

// WithTransform sets the model to world transform.
func WithTransform(t common.Mat4) MeshBuilderOption {
	return func(m *mesh) {
		m.transform = t
	}
}

// WithBaseColor sets the shading color.
func WithBaseColor(c [4]float32) MeshBuilderOption {
	return func(m *mesh) {
		m.baseColor = c
	}
}

// WithImportedMesh copies geometry, transform and color from an ImportedMesh.
//
// Parameters:
//   - im: the imported mesh
//
// Returns:
//   - MeshBuilderOption: a function that applies the imported data to a mesh
func WithImportedMesh(im ImportedMesh) MeshBuilderOption {
	return func(m *mesh) {
		m.name = im.Name
		m.positions = im.Positions
		m.normals = im.Normals
		m.indices = im.Indices
		if im.Transform != (common.Mat4{}) {
			m.transform = im.Transform
		}
		if im.BaseColor != ([4]float32{}) {
			m.baseColor = im.BaseColor
		}
	}
}
