package model

import (
	"encoding/binary"
	"sync"

	"github.com/Carmen-Shannon/oxy-outline/common"
	"github.com/Carmen-Shannon/oxy-outline/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-outline/engine/surface"
)

// mesh is the implementation of the Mesh interface.
type mesh struct {
	mu *sync.Mutex

	name        string
	positions   []common.Vec3
	normals     []common.Vec3
	indices     []uint32
	transform   common.Mat4
	baseColor   [4]float32
	surfaceIds  *surface.Attribute
	boundingMin common.Vec3
	boundingMax common.Vec3

	meshProvider    bind_group_provider.BindGroupProvider
	uniformProvider bind_group_provider.BindGroupProvider
}

// Mesh is a triangle mesh ready to be drawn by the scene and surface id passes. It owns
// the CPU geometry, the per-vertex surface id attribute and the GPU providers holding
// its vertex/index buffers and its per-mesh uniform.
type Mesh interface {
	// Name retrieves the mesh identifier.
	//
	// Returns:
	//   - string: the mesh name
	Name() string

	// Positions returns the model space vertex positions.
	Positions() []common.Vec3

	// Normals returns the per-vertex normals.
	Normals() []common.Vec3

	// Indices returns the triangle indices, or nil for an unindexed mesh.
	Indices() []uint32

	// Indexed reports whether the mesh carries its own index data. Unindexed meshes
	// cannot be labeled.
	//
	// Returns:
	//   - bool: true if Indices is non-nil
	Indexed() bool

	// VertexCount returns the number of vertices.
	VertexCount() int

	// Transform returns the model to world transform.
	Transform() common.Mat4

	// SetTransform replaces the model to world transform.
	SetTransform(m common.Mat4)

	// BaseColor returns the shading color.
	BaseColor() [4]float32

	// SetBaseColor replaces the shading color.
	SetBaseColor(c [4]float32)

	// Bounds returns the model space bounding box.
	//
	// Returns:
	//   - common.Vec3: the minimum corner
	//   - common.Vec3: the maximum corner
	Bounds() (common.Vec3, common.Vec3)

	// SurfaceIds returns the surface id attribute attached to the mesh. A mesh that has
	// not been labeled reports an all-zero attribute.
	//
	// Returns:
	//   - *surface.Attribute: the attached attribute
	SurfaceIds() *surface.Attribute

	// SetSurfaceIds attaches a surface id attribute. It must cover VertexCount vertices
	// and be attached before the mesh's vertex data is uploaded.
	//
	// Parameters:
	//   - a: the attribute to attach
	SetSurfaceIds(a *surface.Attribute)

	// Vertices interleaves positions, normals and surface ids into GPU vertices.
	//
	// Returns:
	//   - []GPUVertex: one vertex per position
	Vertices() []GPUVertex

	// VertexData returns the interleaved vertex buffer contents.
	VertexData() []byte

	// DrawIndices returns the indices used for drawing: Indices for an indexed mesh or
	// 0..VertexCount-1 for an unindexed one.
	DrawIndices() []uint32

	// IndexData returns DrawIndices as little-endian uint32 bytes.
	IndexData() []byte

	// Uniform returns the per-mesh uniform block.
	Uniform() GPUMeshUniform

	// MeshProvider returns the provider that holds the vertex and index buffers.
	MeshProvider() bind_group_provider.BindGroupProvider

	// UniformProvider returns the provider that holds the per-mesh uniform bind group.
	UniformProvider() bind_group_provider.BindGroupProvider

	// Release frees the GPU resources held by both providers.
	Release()
}

var _ Mesh = &mesh{}

// NewMesh creates a Mesh from the provided options. Normals are generated when none are
// provided and the bounding box is computed from the positions.
//
// Parameters:
//   - options: a variadic list of MeshBuilderOption functions to configure the Mesh
//
// Returns:
//   - Mesh: the configured mesh
func NewMesh(options ...MeshBuilderOption) Mesh {
	m := &mesh{
		mu:        &sync.Mutex{},
		transform: common.Identity4(),
		baseColor: [4]float32{0.8, 0.8, 0.8, 1},
	}
	for _, opt := range options {
		opt(m)
	}
	if len(m.normals) != len(m.positions) {
		m.normals = GenerateNormals(m.positions, m.indices)
	}
	m.boundingMin, m.boundingMax = Bounds(m.positions)
	if m.surfaceIds == nil {
		m.surfaceIds = surface.Unlabeled(len(m.positions))
	}
	m.meshProvider = bind_group_provider.NewBindGroupProvider(m.name + "_mesh")
	m.uniformProvider = bind_group_provider.NewBindGroupProvider(m.name + "_uniform")
	return m
}

func (m *mesh) Name() string {
	return m.name
}

func (m *mesh) Positions() []common.Vec3 {
	return m.positions
}

func (m *mesh) Normals() []common.Vec3 {
	return m.normals
}

func (m *mesh) Indices() []uint32 {
	return m.indices
}

func (m *mesh) Indexed() bool {
	return m.indices != nil
}

func (m *mesh) VertexCount() int {
	return len(m.positions)
}

func (m *mesh) Transform() common.Mat4 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transform
}

func (m *mesh) SetTransform(t common.Mat4) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transform = t
}

func (m *mesh) BaseColor() [4]float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.baseColor
}

func (m *mesh) SetBaseColor(c [4]float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baseColor = c
}

func (m *mesh) Bounds() (common.Vec3, common.Vec3) {
	return m.boundingMin, m.boundingMax
}

func (m *mesh) SurfaceIds() *surface.Attribute {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.surfaceIds
}

func (m *mesh) SetSurfaceIds(a *surface.Attribute) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.surfaceIds = a
}

func (m *mesh) Vertices() []GPUVertex {
	ids := m.SurfaceIds()
	out := make([]GPUVertex, len(m.positions))
	for i, p := range m.positions {
		out[i].Position = p
		out[i].Normal = m.normals[i]
		if i < ids.VertexCount() {
			copy(out[i].SurfaceId[:], ids.Data[i*surface.AttributeComponents:(i+1)*surface.AttributeComponents])
		} else {
			out[i].SurfaceId = [4]float32{surface.DefaultLabel, 0, 0, 1}
		}
	}
	return out
}

func (m *mesh) VertexData() []byte {
	return common.SliceToBytes(m.Vertices())
}

func (m *mesh) DrawIndices() []uint32 {
	if m.indices != nil {
		return m.indices
	}
	seq := make([]uint32, len(m.positions))
	for i := range seq {
		seq[i] = uint32(i)
	}
	return seq
}

func (m *mesh) IndexData() []byte {
	indices := m.DrawIndices()
	buf := make([]byte, len(indices)*4)
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}

func (m *mesh) Uniform() GPUMeshUniform {
	m.mu.Lock()
	defer m.mu.Unlock()
	return GPUMeshUniform{Model: m.transform, BaseColor: m.baseColor}
}

func (m *mesh) MeshProvider() bind_group_provider.BindGroupProvider {
	return m.meshProvider
}

func (m *mesh) UniformProvider() bind_group_provider.BindGroupProvider {
	return m.uniformProvider
}

func (m *mesh) Release() {
	m.meshProvider.Release()
	m.uniformProvider.Release()
}
