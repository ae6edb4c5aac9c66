package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-outline/common"
	"github.com/Carmen-Shannon/oxy-outline/engine/model"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// gltfFixture assembles a single-buffer glTF document for tests.
type gltfFixture struct {
	bin       []byte
	accessors []map[string]any
	views     []map[string]any
	doc       map[string]any
}

func newFixture() *gltfFixture {
	return &gltfFixture{doc: map[string]any{"asset": map[string]any{"version": "2.0"}}}
}

func (f *gltfFixture) align() {
	for len(f.bin)%4 != 0 {
		f.bin = append(f.bin, 0)
	}
}

func (f *gltfFixture) view(data []byte) int {
	f.align()
	f.views = append(f.views, map[string]any{"buffer": 0, "byteOffset": len(f.bin), "byteLength": len(data)})
	f.bin = append(f.bin, data...)
	return len(f.views) - 1
}

func (f *gltfFixture) addVec3(ps []common.Vec3) int {
	data := make([]byte, 0, len(ps)*12)
	for _, p := range ps {
		for _, c := range p {
			data = binary.LittleEndian.AppendUint32(data, math.Float32bits(c))
		}
	}
	f.accessors = append(f.accessors, map[string]any{
		"bufferView": f.view(data), "componentType": gltfComponentTypeFloat, "count": len(ps), "type": "VEC3",
	})
	return len(f.accessors) - 1
}

func (f *gltfFixture) addIndices(idx []uint32, componentType int) int {
	var data []byte
	for _, i := range idx {
		switch componentType {
		case gltfComponentTypeUnsignedByte:
			data = append(data, byte(i))
		case gltfComponentTypeUnsignedShort:
			data = binary.LittleEndian.AppendUint16(data, uint16(i))
		default:
			data = binary.LittleEndian.AppendUint32(data, i)
		}
	}
	f.accessors = append(f.accessors, map[string]any{
		"bufferView": f.view(data), "componentType": componentType, "count": len(idx), "type": "SCALAR",
	})
	return len(f.accessors) - 1
}

// json returns the document with its buffer at uri, or the GLB chunk when uri is empty.
func (f *gltfFixture) json(t *testing.T, uri string) []byte {
	t.Helper()
	f.align()
	buf := map[string]any{"byteLength": len(f.bin)}
	if uri != "" {
		buf["uri"] = uri
	}
	f.doc["accessors"] = f.accessors
	f.doc["bufferViews"] = f.views
	f.doc["buffers"] = []any{buf}
	data, err := json.Marshal(f.doc)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func (f *gltfFixture) embedded(t *testing.T) []byte {
	return f.json(t, "data:application/octet-stream;base64,"+base64.StdEncoding.EncodeToString(f.bin))
}

func (f *gltfFixture) glb(t *testing.T) []byte {
	jsonChunk := f.json(t, "")
	for len(jsonChunk)%4 != 0 {
		jsonChunk = append(jsonChunk, ' ')
	}
	var out bytes.Buffer
	total := 12 + 8 + len(jsonChunk) + 8 + len(f.bin)
	binary.Write(&out, binary.LittleEndian, gltfGLBHeader{Magic: gltfGLBMagic, Version: gltfGLBVersion, Length: uint32(total)})
	binary.Write(&out, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(jsonChunk)), ChunkType: gltfGLBChunkJSON})
	out.Write(jsonChunk)
	binary.Write(&out, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(f.bin)), ChunkType: gltfGLBChunkBIN})
	out.Write(f.bin)
	return out.Bytes()
}

var (
	quad = []common.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}
	tri  = []common.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
)

var approx = cmpopts.EquateApprox(0, 1e-5)

func TestLoadReaderIndexedAndUnindexed(t *testing.T) {
	f := newFixture()
	quadPos := f.addVec3(quad)
	quadIdx := f.addIndices([]uint32{0, 1, 2, 0, 2, 3}, gltfComponentTypeUnsignedShort)
	triPos := f.addVec3(tri)
	f.doc["meshes"] = []any{map[string]any{
		"name": "shapes",
		"primitives": []any{
			map[string]any{"attributes": map[string]int{"POSITION": quadPos}, "indices": quadIdx},
			map[string]any{"attributes": map[string]int{"POSITION": triPos}},
		},
	}}
	f.doc["nodes"] = []any{map[string]any{"name": "n", "mesh": 0, "translation": []float32{1, 2, 3}}}
	f.doc["scenes"] = []any{map[string]any{"name": "fixture", "nodes": []int{0}}}
	f.doc["scene"] = 0

	l := NewLoader(BackendTypeGLTF, WithWorkers(2))
	meshes, err := l.LoadReader("fixture", bytes.NewReader(f.embedded(t)), false)
	if err != nil {
		t.Fatalf("LoadReader: %v", err)
	}
	if len(meshes) != 2 {
		t.Fatalf("meshes = %d, want 2", len(meshes))
	}

	indexed, soup := meshes[0], meshes[1]
	if indexed.Name() != "n/shapes.0" || soup.Name() != "n/shapes.1" {
		t.Errorf("names = %q, %q", indexed.Name(), soup.Name())
	}
	if d := cmp.Diff([]uint32{0, 1, 2, 0, 2, 3}, indexed.Indices()); d != "" {
		t.Errorf("indices mismatch (-want +got):\n%s", d)
	}
	wantPos := []common.Vec3{{1, 2, 3}, {2, 2, 3}, {2, 3, 3}, {1, 3, 3}}
	if d := cmp.Diff(wantPos, indexed.Positions(), approx); d != "" {
		t.Errorf("positions mismatch (-want +got):\n%s", d)
	}
	if d := cmp.Diff(common.Identity4(), indexed.Transform()); d != "" {
		t.Errorf("transform should stay identity once baked (-want +got):\n%s", d)
	}
	if len(indexed.Normals()) != 4 {
		t.Errorf("normals = %d, want generated normals for 4 vertices", len(indexed.Normals()))
	}

	if soup.Indexed() || soup.Indices() != nil {
		t.Errorf("unindexed primitive loaded with indices %v", soup.Indices())
	}
	if soup.VertexCount() != 3 {
		t.Errorf("unindexed vertex count = %d, want 3", soup.VertexCount())
	}
	if d := cmp.Diff([]uint32{0, 1, 2}, soup.DrawIndices()); d != "" {
		t.Errorf("draw indices mismatch (-want +got):\n%s", d)
	}

	if got := l.Get("fixture"); len(got) != 2 || got[0] != meshes[0] {
		t.Errorf("Get did not return the cached meshes")
	}
}

func TestNodeHierarchyTransforms(t *testing.T) {
	f := newFixture()
	pos := f.addVec3(tri)
	idx := f.addIndices([]uint32{0, 1, 2}, gltfComponentTypeUnsignedInt)
	nrm := f.addVec3([]common.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}})
	f.doc["meshes"] = []any{map[string]any{"primitives": []any{
		map[string]any{"attributes": map[string]int{"POSITION": pos, "NORMAL": nrm}, "indices": idx},
	}}}
	// parent scales by 2 through a matrix, the child translates by 1 on x
	f.doc["nodes"] = []any{
		map[string]any{"matrix": []float32{2, 0, 0, 0, 0, 2, 0, 0, 0, 0, 2, 0, 0, 0, 0, 1}, "children": []int{1}},
		map[string]any{"mesh": 0, "translation": []float32{1, 0, 0}},
	}

	meshes, err := NewLoader(BackendTypeGLTF).LoadReader("h", bytes.NewReader(f.embedded(t)), false)
	if err != nil {
		t.Fatalf("LoadReader: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("meshes = %d, want 1", len(meshes))
	}
	want := []common.Vec3{{2, 0, 0}, {4, 0, 0}, {2, 2, 0}}
	if d := cmp.Diff(want, meshes[0].Positions(), approx); d != "" {
		t.Errorf("positions mismatch (-want +got):\n%s", d)
	}
	if d := cmp.Diff([]common.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}}, meshes[0].Normals(), approx); d != "" {
		t.Errorf("normals mismatch (-want +got):\n%s", d)
	}
}

func TestMirroredNodeKeepsOutwardWinding(t *testing.T) {
	f := newFixture()
	pos := f.addVec3(tri)
	idx := f.addIndices([]uint32{0, 1, 2}, gltfComponentTypeUnsignedByte)
	nrm := f.addVec3([]common.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}})
	f.doc["meshes"] = []any{map[string]any{"primitives": []any{
		map[string]any{"attributes": map[string]int{"POSITION": pos, "NORMAL": nrm}, "indices": idx},
	}}}
	f.doc["nodes"] = []any{map[string]any{"mesh": 0, "scale": []float32{-1, 1, 1}}}

	meshes, err := NewLoader(BackendTypeGLTF).LoadReader("m", bytes.NewReader(f.embedded(t)), false)
	if err != nil {
		t.Fatalf("LoadReader: %v", err)
	}
	if d := cmp.Diff([]uint32{0, 2, 1}, meshes[0].Indices()); d != "" {
		t.Errorf("indices mismatch (-want +got):\n%s", d)
	}
	// a mirror in x leaves a z facing normal untouched
	if d := cmp.Diff(common.Vec3{0, 0, 1}, meshes[0].Normals()[0], approx); d != "" {
		t.Errorf("normal mismatch (-want +got):\n%s", d)
	}
}

func TestLoadGLB(t *testing.T) {
	f := newFixture()
	pos := f.addVec3(quad)
	idx := f.addIndices([]uint32{0, 1, 2, 0, 2, 3}, gltfComponentTypeUnsignedByte)
	f.doc["materials"] = []any{map[string]any{
		"pbrMetallicRoughness": map[string]any{"baseColorFactor": []float32{1, 0, 0, 1}},
	}}
	f.doc["meshes"] = []any{map[string]any{"name": "red", "primitives": []any{
		map[string]any{"attributes": map[string]int{"POSITION": pos}, "indices": idx, "material": 0},
	}}}

	meshes, err := NewLoader(BackendTypeGLTF).LoadReader("glb", bytes.NewReader(f.glb(t)), true)
	if err != nil {
		t.Fatalf("LoadReader: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("meshes = %d, want 1", len(meshes))
	}
	if meshes[0].Name() != "red" {
		t.Errorf("name = %q, want red", meshes[0].Name())
	}
	if got := meshes[0].BaseColor(); got != [4]float32{1, 0, 0, 1} {
		t.Errorf("base color = %v", got)
	}
	if d := cmp.Diff([]uint32{0, 1, 2, 0, 2, 3}, meshes[0].Indices()); d != "" {
		t.Errorf("indices mismatch (-want +got):\n%s", d)
	}
}

func TestMeshOptionsApplyBeforeImportedData(t *testing.T) {
	f := newFixture()
	pos := f.addVec3(tri)
	f.doc["meshes"] = []any{map[string]any{"primitives": []any{
		map[string]any{"attributes": map[string]int{"POSITION": pos}},
	}}}

	grey := [4]float32{0.2, 0.2, 0.2, 1}
	l := NewLoader(BackendTypeGLTF, WithMeshOptions(model.WithBaseColor(grey)))
	meshes, err := l.LoadReader("opts", bytes.NewReader(f.embedded(t)), false)
	if err != nil {
		t.Fatalf("LoadReader: %v", err)
	}
	if got := meshes[0].BaseColor(); got != grey {
		t.Errorf("base color = %v, want %v for a primitive without material", got, grey)
	}
	if meshes[0].Name() != "mesh0" {
		t.Errorf("name = %q, want mesh0", meshes[0].Name())
	}
}

func TestLoadExternalBufferAndCache(t *testing.T) {
	dir := t.TempDir()
	f := newFixture()
	pos := f.addVec3(quad)
	idx := f.addIndices([]uint32{0, 1, 2, 0, 2, 3}, gltfComponentTypeUnsignedShort)
	f.doc["meshes"] = []any{map[string]any{"primitives": []any{
		map[string]any{"attributes": map[string]int{"POSITION": pos}, "indices": idx},
	}}}
	doc := f.json(t, "quad.bin")
	if err := os.WriteFile(filepath.Join(dir, "quad.bin"), f.bin, 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "quad.gltf")
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(BackendTypeGLTF)
	first, err := l.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	second, err := l.Load(path)
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if len(first) != 1 || first[0] != second[0] {
		t.Errorf("second Load did not hit the cache")
	}
	if _, ok := l.Models()[path]; !ok {
		t.Errorf("Models() missing %s", path)
	}

	if _, err := l.Load(filepath.Join(dir, "quad.obj")); err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("Load(.obj) error = %v, want unsupported format", err)
	}
}

func TestWithModel(t *testing.T) {
	m := model.NewMesh(model.WithName("pre"), model.WithGeometry(tri, []uint32{0, 1, 2}))
	l := NewLoader(BackendTypeGLTF, WithModel("pre", []model.Mesh{m}))
	got, err := l.LoadReader("pre", strings.NewReader("not json"), false)
	if err != nil {
		t.Fatalf("cached LoadReader: %v", err)
	}
	if len(got) != 1 || got[0] != m {
		t.Errorf("LoadReader did not return the pre-populated meshes")
	}
}

func TestParserErrors(t *testing.T) {
	f := newFixture()
	pos := f.addVec3(tri)
	f.accessors[pos]["count"] = 50
	f.doc["meshes"] = []any{map[string]any{"primitives": []any{
		map[string]any{"attributes": map[string]int{"POSITION": pos}},
	}}}

	tests := []struct {
		name  string
		data  []byte
		isGLB bool
	}{
		{name: "accessor past buffer", data: f.embedded(t)},
		{name: "wrong version", data: []byte(`{"asset":{"version":"1.0"}}`)},
		{name: "bad data uri", data: []byte(`{"asset":{"version":"2.0"},"buffers":[{"uri":"data:foo","byteLength":4}]}`)},
		{name: "bad glb magic", data: make([]byte, 20), isGLB: true},
		{name: "required extension", data: []byte(`{"asset":{"version":"2.0"},"extensionsRequired":["KHR_draco_mesh_compression"]}`)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := NewLoader(BackendTypeGLTF)
			if _, err := l.LoadReader(tc.name, bytes.NewReader(tc.data), tc.isGLB); err == nil {
				t.Errorf("LoadReader succeeded, want error")
			}
			if l.Get(tc.name) != nil {
				t.Errorf("failed load was cached")
			}
		})
	}
}

func TestTriangulate(t *testing.T) {
	seq := []uint32{0, 1, 2, 3, 4}
	tests := []struct {
		name string
		mode int
		want []uint32
	}{
		{name: "strip", mode: gltfPrimitiveModeTriangleStrip, want: []uint32{0, 1, 2, 1, 3, 2, 2, 3, 4}},
		{name: "fan", mode: gltfPrimitiveModeTriangleFan, want: []uint32{1, 2, 0, 2, 3, 0, 3, 4, 0}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if d := cmp.Diff(tc.want, gltfTriangulate(tc.mode, seq)); d != "" {
				t.Errorf("triangulate mismatch (-want +got):\n%s", d)
			}
		})
	}
}

func TestUnindexedStripStaysUnindexed(t *testing.T) {
	f := newFixture()
	pos := f.addVec3(quad)
	f.doc["meshes"] = []any{map[string]any{"primitives": []any{
		map[string]any{"attributes": map[string]int{"POSITION": pos}, "mode": gltfPrimitiveModeTriangleStrip},
		map[string]any{"attributes": map[string]int{"POSITION": pos}, "mode": 1},
	}}}

	meshes, err := NewLoader(BackendTypeGLTF).LoadReader("strip", bytes.NewReader(f.embedded(t)), false)
	if err != nil {
		t.Fatalf("LoadReader: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("meshes = %d, want 1 with the line primitive skipped", len(meshes))
	}
	if meshes[0].Indexed() {
		t.Errorf("unindexed strip was given indices")
	}
	want := []common.Vec3{quad[0], quad[1], quad[2], quad[1], quad[3], quad[2]}
	if d := cmp.Diff(want, meshes[0].Positions()); d != "" {
		t.Errorf("positions mismatch (-want +got):\n%s", d)
	}
}
