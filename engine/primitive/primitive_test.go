package primitive

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-outline/common"
	"github.com/Carmen-Shannon/oxy-outline/engine/model"
	"github.com/Carmen-Shannon/oxy-outline/engine/surface"
	"github.com/google/go-cmp/cmp"
)

func TestWeld(t *testing.T) {
	soup := [][3]common.Vec3{
		{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		// shares an edge with the first triangle, off by less than the tolerance
		{{1, 0.00001, 0}, {1, 1, 0}, {0, 1, 0}},
		// collapses onto one edge once welded
		{{0, 0, 0}, {0.00002, 0, 0}, {1, 1, 0}},
	}
	positions, indices := Weld(soup, 1e-3)

	if d := cmp.Diff([]uint32{0, 1, 2, 1, 3, 2}, indices); d != "" {
		t.Errorf("indices mismatch (-want +got):\n%s", d)
	}
	if len(positions) != 4 {
		t.Errorf("positions = %d, want 4", len(positions))
	}
}

func TestWeldExact(t *testing.T) {
	soup := [][3]common.Vec3{
		{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		{{1, 0.00001, 0}, {1, 1, 0}, {0, 1, 0}},
	}
	positions, _ := Weld(soup, 0)
	if len(positions) != 5 {
		t.Errorf("positions = %d, want 5 with exact welding", len(positions))
	}
}

func mustSolid(t *testing.T, s Solid, err error) Solid {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestMeshedSolidsLabelPerSurface(t *testing.T) {
	box := func(offset common.Vec3) Solid {
		s, err := Box(common.Vec3{1, 1, 1}, 0)
		return Translate(mustSolid(t, s, err), offset)
	}
	sphere, err := Sphere(0.6)
	sphere = mustSolid(t, sphere, err)
	cyl, err := Cylinder(2, 0.3, 0.05)
	cyl = mustSolid(t, cyl, err)

	tests := []struct {
		name  string
		solid Solid
		want  int
	}{
		{"box", box(common.Vec3{}), 1},
		{"sphere", sphere, 1},
		{"cylinder", cyl, 1},
		{"disjoint boxes", Union(box(common.Vec3{-1.5, 0, 0}), box(common.Vec3{1.5, 0, 0})), 2},
		{"overlapping boxes", Union(box(common.Vec3{-0.3, 0, 0}), box(common.Vec3{0.3, 0, 0})), 1},
	}

	m := NewMesher(WithCells(24))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mesh, err := m.Mesh(tt.name, tt.solid)
			if err != nil {
				t.Fatalf("Mesh: %v", err)
			}
			if !mesh.Indexed() || len(mesh.Indices())%3 != 0 {
				t.Fatalf("mesh is not an indexed triangle list")
			}
			attr, err := surface.Partition(mesh.Indices(), mesh.VertexCount(), nil)
			if err != nil {
				t.Fatalf("Partition: %v", err)
			}
			if attr.Components != tt.want {
				t.Errorf("surfaces = %d, want %d", attr.Components, tt.want)
			}
		})
	}
}

func TestMesherAppliesMeshOptions(t *testing.T) {
	s, err := Box(common.Vec3{1, 2, 3}, 0.1)
	s = mustSolid(t, s, err)

	color := [4]float32{1, 0, 0, 1}
	m := NewMesher(WithCells(16), WithMeshOptions(model.WithBaseColor(color)))
	mesh, err := m.Mesh("red", s)
	if err != nil {
		t.Fatalf("Mesh: %v", err)
	}
	if mesh.Name() != "red" || mesh.BaseColor() != color {
		t.Errorf("mesh = %s %v, want red %v", mesh.Name(), mesh.BaseColor(), color)
	}
	lo, hi := mesh.Bounds()
	if hi[2]-lo[2] < 2.5 {
		t.Errorf("mesh z extent = %v, want about 3", hi[2]-lo[2])
	}
}

func TestMesherWeldTolerance(t *testing.T) {
	s, err := Box(common.Vec3{1, 1, 1}, 0)
	s = mustSolid(t, s, err)

	// every corner of a unit box lands in one 100 unit cell
	if _, err := NewMesher(WithCells(8), WithWeldTolerance(100)).Mesh("collapsed", s); err == nil {
		t.Error("Mesh succeeded although welding collapsed every triangle")
	}
	if _, err := NewMesher(WithCells(8), WithWeldTolerance(1e-5)).Mesh("box", s); err != nil {
		t.Errorf("Mesh with a fine tolerance: %v", err)
	}
}

func TestSplitCreases(t *testing.T) {
	// two triangles folded 90 degrees along the edge 0-1
	positions := []common.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	indices := []uint32{0, 1, 2, 0, 3, 1}

	tests := []struct {
		name          string
		angle         float32
		wantIndices   []uint32
		wantPositions int
		wantSurfaces  int
	}{
		{name: "sharp fold splits", angle: 30, wantIndices: []uint32{0, 1, 2, 4, 3, 5}, wantPositions: 6, wantSurfaces: 2},
		{name: "wide angle keeps fold", angle: 120, wantIndices: []uint32{0, 1, 2, 0, 3, 1}, wantPositions: 4, wantSurfaces: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotPositions, gotIndices := SplitCreases(positions, indices, tt.angle)
			if d := cmp.Diff(tt.wantIndices, gotIndices); d != "" {
				t.Errorf("indices mismatch (-want +got):\n%s", d)
			}
			if len(gotPositions) != tt.wantPositions {
				t.Errorf("positions = %d, want %d", len(gotPositions), tt.wantPositions)
			}
			for i, idx := range gotIndices {
				if gotPositions[idx] != positions[indices[i]] {
					t.Errorf("corner %d moved to %v, want %v", i, gotPositions[idx], positions[indices[i]])
				}
			}
			attr, err := surface.Partition(gotIndices, len(gotPositions), nil)
			if err != nil {
				t.Fatalf("Partition: %v", err)
			}
			if attr.Components != tt.wantSurfaces {
				t.Errorf("surfaces = %d, want %d", attr.Components, tt.wantSurfaces)
			}
		})
	}
}

func TestMesherCreaseAngleSeparatesFaces(t *testing.T) {
	s, err := Box(common.Vec3{1, 1, 1}, 0)
	s = mustSolid(t, s, err)

	mesh, err := NewMesher(WithCells(24), WithCreaseAngle(30)).Mesh("box", s)
	if err != nil {
		t.Fatalf("Mesh: %v", err)
	}
	attr, err := surface.Partition(mesh.Indices(), mesh.VertexCount(), nil)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	if attr.Components < 6 {
		t.Errorf("surfaces = %d, want at least one per box face", attr.Components)
	}
}
