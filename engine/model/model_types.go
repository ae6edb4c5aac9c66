package model

import (
	"github.com/Carmen-Shannon/oxy-outline/common"
)

// ImportedModel is the format-neutral result of importing a model file or generating a
// procedural shape. It carries CPU geometry only; GPU resources are created by the scene.
type ImportedModel struct {
	// Name is the model identifier.
	Name string

	// Meshes holds one entry per triangle primitive.
	Meshes []ImportedMesh
}

// ImportedMesh is a single triangle list with world placement applied by Transform.
type ImportedMesh struct {
	// Name is the mesh identifier.
	Name string

	// Positions are the model space vertex positions.
	Positions []common.Vec3

	// Normals are per-vertex normals, same length as Positions.
	Normals []common.Vec3

	// Indices are the triangle list indices. Nil when the source primitive had no
	// index data; such meshes are drawn with sequential indices and never labeled.
	Indices []uint32

	// Transform places the mesh in the world.
	Transform common.Mat4

	// BaseColor is the linear RGBA color used by the scene shading pass.
	BaseColor [4]float32

	// BoundingMin is the minimum corner of the model space bounding box.
	BoundingMin common.Vec3

	// BoundingMax is the maximum corner of the model space bounding box.
	BoundingMax common.Vec3
}

// Bounds computes the axis-aligned bounding box of positions.
//
// Parameters:
//   - positions: the vertex positions
//
// Returns:
//   - common.Vec3: the minimum corner
//   - common.Vec3: the maximum corner
func Bounds(positions []common.Vec3) (common.Vec3, common.Vec3) {
	if len(positions) == 0 {
		return common.Vec3{}, common.Vec3{}
	}
	lo, hi := positions[0], positions[0]
	for _, p := range positions[1:] {
		for i := range 3 {
			lo[i] = min(lo[i], p[i])
			hi[i] = max(hi[i], p[i])
		}
	}
	return lo, hi
}

// TransformBounds returns the axis-aligned box enclosing the box (lo, hi) after t.
//
// Parameters:
//   - t: the transform to apply
//   - lo: the minimum corner
//   - hi: the maximum corner
//
// Returns:
//   - common.Vec3: the transformed minimum corner
//   - common.Vec3: the transformed maximum corner
func TransformBounds(t common.Mat4, lo, hi common.Vec3) (common.Vec3, common.Vec3) {
	corners := make([]common.Vec3, 8)
	for i := range corners {
		c := lo
		if i&1 != 0 {
			c[0] = hi[0]
		}
		if i&2 != 0 {
			c[1] = hi[1]
		}
		if i&4 != 0 {
			c[2] = hi[2]
		}
		corners[i] = common.TransformPoint(t, c)
	}
	return Bounds(corners)
}

// GenerateNormals computes smooth per-vertex normals by accumulating the area-weighted
// face normal of every triangle onto its vertices. Indices may be nil, in which case the
// positions are treated as an unindexed triangle list.
//
// Parameters:
//   - positions: the vertex positions
//   - indices: the triangle indices, or nil
//
// Returns:
//   - []common.Vec3: one unit normal per position
func GenerateNormals(positions []common.Vec3, indices []uint32) []common.Vec3 {
	normals := make([]common.Vec3, len(positions))
	tri := func(a, b, c uint32) {
		if int(a) >= len(positions) || int(b) >= len(positions) || int(c) >= len(positions) {
			return
		}
		n := common.Cross3(common.Sub3(positions[b], positions[a]), common.Sub3(positions[c], positions[a]))
		normals[a] = common.Add3(normals[a], n)
		normals[b] = common.Add3(normals[b], n)
		normals[c] = common.Add3(normals[c], n)
	}
	if indices == nil {
		for i := 0; i+2 < len(positions); i += 3 {
			tri(uint32(i), uint32(i+1), uint32(i+2))
		}
	} else {
		for i := 0; i+2 < len(indices); i += 3 {
			tri(indices[i], indices[i+1], indices[i+2])
		}
	}
	for i := range normals {
		normals[i] = common.Normalize3(normals[i])
	}
	return normals
}
