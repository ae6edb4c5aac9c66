package model

import (
	"encoding/binary"
	"testing"

	"github.com/Carmen-Shannon/oxy-outline/common"
	"github.com/Carmen-Shannon/oxy-outline/engine/surface"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func quad() Mesh {
	return NewMesh(
		WithName("quad"),
		WithGeometry(
			[]common.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
			[]uint32{0, 1, 2, 0, 2, 3},
		),
	)
}

func TestNewMeshDefaults(t *testing.T) {
	m := quad()
	if !m.Indexed() {
		t.Error("quad should be indexed")
	}
	if m.Transform() != common.Identity4() {
		t.Error("default transform should be identity")
	}
	lo, hi := m.Bounds()
	if lo != (common.Vec3{0, 0, 0}) || hi != (common.Vec3{1, 1, 0}) {
		t.Errorf("Bounds() = %v, %v", lo, hi)
	}
	for i, n := range m.Normals() {
		if d := cmp.Diff(common.Vec3{0, 0, 1}, n, cmpopts.EquateApprox(0, 1e-6)); d != "" {
			t.Errorf("normal %d mismatch (-want +got):\n%s", i, d)
		}
	}
	if got := m.SurfaceIds().MaxLabel; got != 1 {
		t.Errorf("unlabeled MaxLabel = %d, want 1", got)
	}
	if m.MeshProvider().Label() != "quad_mesh" {
		t.Errorf("mesh provider label = %q", m.MeshProvider().Label())
	}
}

func TestMeshVerticesCarrySurfaceIds(t *testing.T) {
	m := NewMesh(WithGeometry(
		[]common.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {5, 0, 0}, {6, 0, 0}, {5, 1, 0}},
		[]uint32{0, 1, 2, 3, 4, 5},
	))
	attr, err := surface.Partition(m.Indices(), m.VertexCount(), &surface.LabelState{NextLabel: 3})
	if err != nil {
		t.Fatal(err)
	}
	m.SetSurfaceIds(attr)

	var got []float32
	for _, v := range m.Vertices() {
		got = append(got, v.SurfaceId[0])
	}
	if d := cmp.Diff([]float32{3, 3, 3, 4, 4, 4}, got); d != "" {
		t.Errorf("surface ids mismatch (-want +got):\n%s", d)
	}
	if len(m.VertexData()) != 6*40 {
		t.Errorf("VertexData length = %d, want %d", len(m.VertexData()), 6*40)
	}
}

func TestMeshExplicitNormals(t *testing.T) {
	positions := []common.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	up := []common.Vec3{{0, 1, 0}, {0, 1, 0}, {0, 1, 0}}

	m := NewMesh(WithGeometry(positions, []uint32{0, 1, 2}), WithNormals(up))
	if d := cmp.Diff(up, m.Normals()); d != "" {
		t.Errorf("explicit normals mismatch (-want +got):\n%s", d)
	}

	// a short normal slice is replaced by generated normals
	m = NewMesh(WithGeometry(positions, []uint32{0, 1, 2}), WithNormals(up[:1]))
	if d := cmp.Diff(common.Vec3{0, 0, 1}, m.Normals()[2], cmpopts.EquateApprox(0, 1e-6)); d != "" {
		t.Errorf("generated normal mismatch (-want +got):\n%s", d)
	}
}

func TestUnindexedMeshDrawsSequentially(t *testing.T) {
	m := NewMesh(WithGeometry([]common.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, nil))
	if m.Indexed() {
		t.Fatal("mesh without indices reports Indexed")
	}
	if d := cmp.Diff([]uint32{0, 1, 2}, m.DrawIndices()); d != "" {
		t.Errorf("DrawIndices mismatch (-want +got):\n%s", d)
	}
	data := m.IndexData()
	if got := binary.LittleEndian.Uint32(data[8:]); got != 2 {
		t.Errorf("third index = %d, want 2", got)
	}
}

func TestGPUVertexLayout(t *testing.T) {
	v := GPUVertex{Position: [3]float32{1, 2, 3}, SurfaceId: [4]float32{7, 0, 0, 1}}
	if v.Size() != 40 {
		t.Fatalf("GPUVertex size = %d, want 40", v.Size())
	}
	buf := v.Marshal()
	if d := cmp.Diff(buf, common.SliceToBytes([]GPUVertex{v})); d != "" {
		t.Errorf("Marshal disagrees with the in-memory layout (-marshal +memory):\n%s", d)
	}

	u := GPUMeshUniform{}
	if u.Size() != 80 {
		t.Errorf("GPUMeshUniform size = %d, want 80", u.Size())
	}
}
