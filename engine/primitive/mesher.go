package primitive

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-outline/common"
	"github.com/Carmen-Shannon/oxy-outline/engine/model"
	"github.com/deadsy/sdfx/render"
)

// Mesher turns solids into indexed meshes.
type Mesher interface {
	// Mesh polygonizes a solid with marching cubes and welds the result.
	//
	// Parameters:
	//   - name: the mesh name
	//   - s: the solid to polygonize
	//
	// Returns:
	//   - model.Mesh: the indexed mesh
	//   - error: an error if the solid produced no triangles
	Mesh(name string, s Solid) (model.Mesh, error)
}

type mesher struct {
	cells       int
	tolerance   float32
	creaseAngle float32
	meshOptions []model.MeshBuilderOption
}

var _ Mesher = &mesher{}

// NewMesher creates a Mesher. Defaults are 64 marching cubes cells along the longest
// axis, a weld tolerance of 1e-4 and no crease splitting, so every connected shell is
// one surface.
//
// Parameters:
//   - options: functional options applied after the defaults
//
// Returns:
//   - Mesher: the configured mesher
func NewMesher(options ...MesherBuilderOption) Mesher {
	m := &mesher{
		cells:     64,
		tolerance: 1e-4,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *mesher) Mesh(name string, s Solid) (model.Mesh, error) {
	tris := render.ToTriangles(s, render.NewMarchingCubesUniform(m.cells))
	soup := make([][3]common.Vec3, len(tris))
	for i, tri := range tris {
		for j := range 3 {
			soup[i][j] = common.Vec3{float32(tri[j].X), float32(tri[j].Y), float32(tri[j].Z)}
		}
	}

	positions, indices := Weld(soup, m.tolerance)
	if len(indices) == 0 {
		return nil, fmt.Errorf("mesh %s: solid produced no triangles", name)
	}
	if m.creaseAngle > 0 {
		positions, indices = SplitCreases(positions, indices, m.creaseAngle)
	}

	opts := append([]model.MeshBuilderOption{
		model.WithName(name),
		model.WithGeometry(positions, indices),
	}, m.meshOptions...)
	return model.NewMesh(opts...), nil
}

// Weld merges triangle corners whose positions fall in the same tolerance cell and
// returns indexed geometry. Triangles that collapse onto fewer than three vertices are
// dropped.
//
// Parameters:
//   - soup: the triangles, three corners each
//   - tolerance: the quantization step, values <= 0 weld only identical positions
//
// Returns:
//   - []common.Vec3: the unique positions in first-seen order
//   - []uint32: three indices per kept triangle
func Weld(soup [][3]common.Vec3, tolerance float32) ([]common.Vec3, []uint32) {
	type cell [3]int64
	key := func(p common.Vec3) cell {
		if tolerance <= 0 {
			return cell{int64(math.Float32bits(p[0])), int64(math.Float32bits(p[1])), int64(math.Float32bits(p[2]))}
		}
		var c cell
		for i := range 3 {
			c[i] = int64(math.Round(float64(p[i] / tolerance)))
		}
		return c
	}

	lookup := make(map[cell]uint32, len(soup))
	var positions []common.Vec3
	indices := make([]uint32, 0, len(soup)*3)
	for _, tri := range soup {
		var idx [3]uint32
		for j, p := range tri {
			k := key(p)
			v, ok := lookup[k]
			if !ok {
				v = uint32(len(positions))
				lookup[k] = v
				positions = append(positions, p)
			}
			idx[j] = v
		}
		if idx[0] == idx[1] || idx[1] == idx[2] || idx[2] == idx[0] {
			continue
		}
		indices = append(indices, idx[:]...)
	}
	return positions, indices
}

// SplitCreases duplicates vertices where the faces around them bend by more than angle
// degrees, so the faces on either side of a sharp edge stop sharing vertices and label as
// separate surfaces. Each corner joins the first group of its vertex whose founding face
// normal lies within angle of its own face normal; the first group keeps the original
// index and later groups get appended copies of the position. Degenerate faces join the
// first group.
//
// Parameters:
//   - positions: welded vertex positions
//   - indices: triangle list indices into positions
//   - angle: the crease angle in degrees
//
// Returns:
//   - []common.Vec3: positions followed by the duplicated crease vertices
//   - []uint32: the re-pointed indices
func SplitCreases(positions []common.Vec3, indices []uint32, angle float32) ([]common.Vec3, []uint32) {
	type group struct {
		normal common.Vec3
		index  uint32
	}
	limit := float32(math.Cos(float64(angle) * math.Pi / 180))
	groups := make(map[uint32][]group, len(positions))
	outPositions := append([]common.Vec3(nil), positions...)
	out := make([]uint32, len(indices))

	for t := 0; t+2 < len(indices); t += 3 {
		a, b, c := positions[indices[t]], positions[indices[t+1]], positions[indices[t+2]]
		n := common.Cross3(common.Sub3(b, a), common.Sub3(c, a))
		degenerate := common.Dot3(n, n) == 0
		n = common.Normalize3(n)

		for j := range 3 {
			v := indices[t+j]
			gs := groups[v]
			idx, found := uint32(0), false
			for _, g := range gs {
				if degenerate || common.Dot3(g.normal, n) >= limit {
					idx, found = g.index, true
					break
				}
			}
			if !found && degenerate {
				idx, found = v, true
			}
			if !found {
				idx = v
				if len(gs) > 0 {
					idx = uint32(len(outPositions))
					outPositions = append(outPositions, positions[v])
				}
				groups[v] = append(gs, group{normal: n, index: idx})
			}
			out[t+j] = idx
		}
	}
	return outPositions, out
}
