package primitive

import "github.com/Carmen-Shannon/oxy-outline/engine/model"

// MesherBuilderOption is a functional option for configuring a Mesher.
type MesherBuilderOption func(*mesher)

// WithCells sets the marching cubes resolution along the solid's longest axis.
//
// Parameters:
//   - cells: the cell count, minimum 2
//
// Returns:
//   - MesherBuilderOption: option function to apply
func WithCells(cells int) MesherBuilderOption {
	return func(m *mesher) {
		m.cells = max(cells, 2)
	}
}

// WithWeldTolerance sets the distance under which vertices are merged.
func WithWeldTolerance(tolerance float32) MesherBuilderOption {
	return func(m *mesher) {
		m.tolerance = tolerance
	}
}

// WithCreaseAngle splits vertices along edges where adjacent faces meet at more than
// degrees, so the flat faces of boxes and cylinders become separate surfaces. Zero, the
// default, keeps each welded shell whole.
func WithCreaseAngle(degrees float32) MesherBuilderOption {
	return func(m *mesher) {
		m.creaseAngle = max(degrees, 0)
	}
}

// WithMeshOptions appends options applied to every mesh the Mesher builds, such as
// model.WithBaseColor or model.WithTransform.
func WithMeshOptions(options ...model.MeshBuilderOption) MesherBuilderOption {
	return func(m *mesher) {
		m.meshOptions = append(m.meshOptions, options...)
	}
}
