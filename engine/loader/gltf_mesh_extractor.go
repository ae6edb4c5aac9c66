package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-outline/common"
	"github.com/Carmen-Shannon/oxy-outline/engine/model"
)

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor interface.
type gltfMeshExtractorImpl struct {
	parser gltfParser

	// cache holds primitive geometry in mesh space, keyed by mesh and primitive index,
	// so instanced meshes are decoded once.
	cache map[[2]int]*gltfPrimitiveGeometry
}

// gltfPrimitiveGeometry is the decoded geometry of one primitive before node transforms.
type gltfPrimitiveGeometry struct {
	positions []common.Vec3
	normals   []common.Vec3
	indices   []uint32
	color     [4]float32
}

// gltfMeshExtractor defines the interface for extracting triangle meshes from a parsed
// glTF document.
type gltfMeshExtractor interface {
	// ExtractScene walks the default scene's node hierarchy and returns one ImportedMesh
	// per triangle primitive instance with its node's world transform baked into
	// positions and normals. Documents without scenes use every parentless node as a
	// root, and documents without nodes extract every mesh untransformed.
	//
	// Returns:
	//   - []model.ImportedMesh: the flattened meshes in traversal order
	//   - error: error if any primitive fails to decode
	ExtractScene() ([]model.ImportedMesh, error)

	// ExtractMesh extracts a single mesh by index with the given world transform.
	// Returns one ImportedMesh per triangle primitive.
	//
	// Parameters:
	//   - meshIndex: the index of the mesh to extract
	//   - world: the transform baked into the geometry
	//   - prefix: the name prefix, usually the owning node's name
	//
	// Returns:
	//   - []model.ImportedMesh: one ImportedMesh per triangle primitive
	//   - error: error if extraction fails
	ExtractMesh(meshIndex int, world common.Mat4, prefix string) ([]model.ImportedMesh, error)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

// newGLTFMeshExtractor creates a new mesh extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfMeshExtractor: the mesh extractor
func newGLTFMeshExtractor(parser gltfParser) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{
		parser: parser,
		cache:  make(map[[2]int]*gltfPrimitiveGeometry),
	}
}

func (e *gltfMeshExtractorImpl) ExtractScene() ([]model.ImportedMesh, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errNoDocument
	}

	if len(doc.Nodes) == 0 {
		var result []model.ImportedMesh
		for i := range doc.Meshes {
			meshes, err := e.ExtractMesh(i, common.Identity4(), "")
			if err != nil {
				return nil, err
			}
			result = append(result, meshes...)
		}
		return result, nil
	}

	var result []model.ImportedMesh
	visiting := make([]bool, len(doc.Nodes))
	var walk func(nodeIndex int, parent common.Mat4) error
	walk = func(nodeIndex int, parent common.Mat4) error {
		if nodeIndex < 0 || nodeIndex >= len(doc.Nodes) {
			return fmt.Errorf("node index %d out of range", nodeIndex)
		}
		if visiting[nodeIndex] {
			return fmt.Errorf("node %d: cycle in node hierarchy", nodeIndex)
		}
		visiting[nodeIndex] = true
		defer func() { visiting[nodeIndex] = false }()

		node := &doc.Nodes[nodeIndex]
		world := common.Mul4(parent, gltfNodeLocalTransform(node))

		if node.Mesh != nil {
			prefix := common.Coalesce(node.Name, fmt.Sprintf("node%d", nodeIndex))
			meshes, err := e.ExtractMesh(*node.Mesh, world, prefix)
			if err != nil {
				return fmt.Errorf("node %d: %w", nodeIndex, err)
			}
			result = append(result, meshes...)
		}

		for _, child := range node.Children {
			if err := walk(child, world); err != nil {
				return err
			}
		}
		return nil
	}

	for _, root := range gltfSceneRoots(doc) {
		if err := walk(root, common.Identity4()); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (e *gltfMeshExtractorImpl) ExtractMesh(meshIndex int, world common.Mat4, prefix string) ([]model.ImportedMesh, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errNoDocument
	}
	if meshIndex < 0 || meshIndex >= len(doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", meshIndex)
	}

	mesh := &doc.Meshes[meshIndex]
	meshName := common.Coalesce(mesh.Name, fmt.Sprintf("mesh%d", meshIndex))
	if prefix != "" {
		meshName = prefix + "/" + meshName
	}

	var result []model.ImportedMesh
	for primIdx := range mesh.Primitives {
		prim := &mesh.Primitives[primIdx]
		if !gltfIsTriangleMode(prim) {
			common.Logger().Warn("skipping non-triangle primitive",
				"mesh", meshName, "primitive", primIdx, "mode", *prim.Mode)
			continue
		}

		key := [2]int{meshIndex, primIdx}
		geom, ok := e.cache[key]
		if !ok {
			var err error
			geom, err = e.decodePrimitive(prim)
			if err != nil {
				return nil, fmt.Errorf("mesh %d primitive %d: %w", meshIndex, primIdx, err)
			}
			e.cache[key] = geom
		}

		name := meshName
		if len(mesh.Primitives) > 1 {
			name = fmt.Sprintf("%s.%d", meshName, primIdx)
		}
		result = append(result, geom.bake(name, world))
	}
	return result, nil
}

// decodePrimitive reads a primitive's accessors and converts strips and fans to a
// triangle list. Unindexed strips and fans are expanded into an unindexed list.
func (e *gltfMeshExtractorImpl) decodePrimitive(prim *gltfPrimitive) (*gltfPrimitiveGeometry, error) {
	posAcc, ok := prim.Attributes[gltfAttributePosition]
	if !ok {
		return nil, fmt.Errorf("primitive has no %s attribute", gltfAttributePosition)
	}
	positions, err := e.parser.ReadVec3Accessor(posAcc)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	var normals []common.Vec3
	if normAcc, ok := prim.Attributes[gltfAttributeNormal]; ok {
		normals, err = e.parser.ReadVec3Accessor(normAcc)
		if err != nil {
			return nil, fmt.Errorf("normals: %w", err)
		}
		if len(normals) != len(positions) {
			normals = nil
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = e.parser.ReadIndicesAccessor(*prim.Indices)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	}

	mode := gltfPrimitiveModeTriangles
	if prim.Mode != nil {
		mode = *prim.Mode
	}
	if mode != gltfPrimitiveModeTriangles {
		if indices != nil {
			indices = gltfTriangulate(mode, indices)
		} else {
			seq := make([]uint32, len(positions))
			for i := range seq {
				seq[i] = uint32(i)
			}
			order := gltfTriangulate(mode, seq)
			positions = gltfGather(positions, order)
			if normals != nil {
				normals = gltfGather(normals, order)
			}
		}
	}

	return &gltfPrimitiveGeometry{
		positions: positions,
		normals:   normals,
		indices:   indices,
		color:     e.baseColor(prim),
	}, nil
}

// baseColor returns the material base color factor, or zero so the mesh default applies.
func (e *gltfMeshExtractorImpl) baseColor(prim *gltfPrimitive) [4]float32 {
	doc := e.parser.Document()
	if prim.Material == nil || *prim.Material < 0 || *prim.Material >= len(doc.Materials) {
		return [4]float32{}
	}
	pbr := doc.Materials[*prim.Material].PbrMetallicRoughness
	if pbr == nil || pbr.BaseColorFactor == nil {
		return [4]float32{}
	}
	return *pbr.BaseColorFactor
}

// bake returns an ImportedMesh with world applied to copies of the geometry. A mirroring
// transform reverses the triangle winding so faces keep pointing outwards.
func (g *gltfPrimitiveGeometry) bake(name string, world common.Mat4) model.ImportedMesh {
	positions := make([]common.Vec3, len(g.positions))
	for i, p := range g.positions {
		positions[i] = common.TransformPoint(world, p)
	}

	nm, det := gltfNormalMatrix(world)
	var normals []common.Vec3
	if g.normals != nil {
		normals = make([]common.Vec3, len(g.normals))
		for i, n := range g.normals {
			normals[i] = common.TransformDirection(nm, n)
		}
	}

	indices := g.indices
	if det < 0 {
		if indices != nil {
			indices = gltfFlipWinding(indices)
		} else {
			order := make([]uint32, len(positions)-len(positions)%3)
			for i := range order {
				order[i] = uint32(i)
			}
			order = gltfFlipWinding(order)
			positions = gltfGather(positions, order)
			if normals != nil {
				normals = gltfGather(normals, order)
			}
		}
	} else if indices != nil {
		indices = append([]uint32(nil), indices...)
	}

	bmin, bmax := model.Bounds(positions)
	return model.ImportedMesh{
		Name:        name,
		Positions:   positions,
		Normals:     normals,
		Indices:     indices,
		Transform:   common.Identity4(),
		BaseColor:   g.color,
		BoundingMin: bmin,
		BoundingMax: bmax,
	}
}

// --- Helper Functions ---

// gltfSceneRoots returns the root nodes of the default scene, falling back to the first
// scene and then to every node that is nobody's child.
func gltfSceneRoots(doc *gltfDocument) []int {
	if len(doc.Scenes) > 0 {
		idx := 0
		if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
			idx = *doc.Scene
		}
		return doc.Scenes[idx].Nodes
	}

	isChild := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(isChild) {
				isChild[c] = true
			}
		}
	}
	var roots []int
	for i, child := range isChild {
		if !child {
			roots = append(roots, i)
		}
	}
	return roots
}

// gltfNodeLocalTransform returns the node's matrix, or its TRS composition when no matrix
// is given.
func gltfNodeLocalTransform(node *gltfNode) common.Mat4 {
	if node.Matrix != nil {
		return common.Mat4(*node.Matrix)
	}
	t := common.Vec3{}
	q := [4]float32{0, 0, 0, 1}
	s := common.Vec3{1, 1, 1}
	if node.Translation != nil {
		t = *node.Translation
	}
	if node.Rotation != nil {
		q = *node.Rotation
	}
	if node.Scale != nil {
		s = *node.Scale
	}
	return common.ComposeTRS(t, q, s)
}

// gltfNormalMatrix returns the inverse transpose of the upper 3x3 of m scaled by its
// determinant, embedded in a Mat4, together with the determinant. The scale is removed
// by the normalization in common.TransformDirection; the sign is corrected here.
func gltfNormalMatrix(m common.Mat4) (common.Mat4, float32) {
	c0 := common.Vec3{m[0], m[1], m[2]}
	c1 := common.Vec3{m[4], m[5], m[6]}
	c2 := common.Vec3{m[8], m[9], m[10]}
	det := common.Dot3(c0, common.Cross3(c1, c2))

	x := common.Cross3(c1, c2)
	y := common.Cross3(c2, c0)
	z := common.Cross3(c0, c1)
	if det < 0 {
		x, y, z = common.Scale3(x, -1), common.Scale3(y, -1), common.Scale3(z, -1)
	}
	return common.Mat4{
		x[0], x[1], x[2], 0,
		y[0], y[1], y[2], 0,
		z[0], z[1], z[2], 0,
		0, 0, 0, 1,
	}, det
}

// gltfIsTriangleMode reports whether the primitive topology produces triangles.
func gltfIsTriangleMode(prim *gltfPrimitive) bool {
	if prim.Mode == nil {
		return true
	}
	switch *prim.Mode {
	case gltfPrimitiveModeTriangles, gltfPrimitiveModeTriangleStrip, gltfPrimitiveModeTriangleFan:
		return true
	}
	return false
}

// gltfTriangulate converts a strip or fan vertex sequence into a triangle list.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#topology-types
func gltfTriangulate(mode int, seq []uint32) []uint32 {
	if len(seq) < 3 {
		return []uint32{}
	}
	out := make([]uint32, 0, (len(seq)-2)*3)
	for i := 0; i+2 < len(seq); i++ {
		switch mode {
		case gltfPrimitiveModeTriangleStrip:
			if i%2 == 0 {
				out = append(out, seq[i], seq[i+1], seq[i+2])
			} else {
				out = append(out, seq[i], seq[i+2], seq[i+1])
			}
		case gltfPrimitiveModeTriangleFan:
			out = append(out, seq[i+1], seq[i+2], seq[0])
		default:
			return seq
		}
	}
	return out
}

// gltfFlipWinding returns a copy of a triangle list with the last two corners of every
// triangle swapped. A trailing partial triangle is copied unchanged.
func gltfFlipWinding(indices []uint32) []uint32 {
	out := append([]uint32(nil), indices...)
	for i := 0; i+2 < len(out); i += 3 {
		out[i+1], out[i+2] = out[i+2], out[i+1]
	}
	return out
}

// gltfGather returns values reordered by order. Out of range entries read as zero.
func gltfGather[T any](values []T, order []uint32) []T {
	out := make([]T, len(order))
	for i, o := range order {
		if int(o) < len(values) {
			out[i] = values[o]
		}
	}
	return out
}
