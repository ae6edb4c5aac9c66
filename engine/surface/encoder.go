package surface

import (
	"fmt"
)

// AttributeComponents is the number of float32 values stored per vertex.
const AttributeComponents = 4

// DefaultLabel is written for vertices that no triangle references.
const DefaultLabel = 0

// Attribute is the per-vertex surface id attribute uploaded alongside positions.
type Attribute struct {
	// Data holds (label, 0, 0, 1) for every vertex, AttributeComponents values each.
	Data []float32

	// Components is the number of surfaces found in the mesh.
	Components int

	// MaxLabel is max(Components, 1) and is safe to divide by.
	MaxLabel uint32
}

// Encode writes each vertex's label into a (label, 0, 0, 1) attribute of length
// vertexCount. Vertices absent from the labeling receive DefaultLabel.
//
// Parameters:
//   - vertexCount: the number of vertices in the mesh
//   - l: the labeling produced by Label
//
// Returns:
//   - *Attribute: the encoded attribute
//   - error: ErrIndexOutOfRange if a labeled vertex is beyond vertexCount
func Encode(vertexCount int, l *Labeling) (*Attribute, error) {
	a := Unlabeled(vertexCount)
	if l == nil {
		return a, nil
	}
	for v, label := range l.Labels {
		if int(v) >= vertexCount {
			return nil, fmt.Errorf("%w: vertex %d of %d", ErrIndexOutOfRange, v, vertexCount)
		}
		a.Data[int(v)*AttributeComponents] = float32(label)
	}
	a.Components = l.Count()
	a.MaxLabel = uint32(max(a.Components, 1))
	return a, nil
}

// Unlabeled returns an attribute of vertexCount vertices that all carry DefaultLabel.
// It is used for meshes that cannot be labeled.
func Unlabeled(vertexCount int) *Attribute {
	data := make([]float32, vertexCount*AttributeComponents)
	for i := 0; i < vertexCount; i++ {
		data[i*AttributeComponents] = DefaultLabel
		data[i*AttributeComponents+3] = 1
	}
	return &Attribute{Data: data, MaxLabel: 1}
}

// Partition runs BuildGraph, Label and Encode over one mesh. state only advances when
// the mesh encodes successfully.
//
// Parameters:
//   - indices: triangle list indices, nil when the mesh has none
//   - vertexCount: the number of vertices in the mesh
//   - state: the label counter shared across meshes, may be nil
//
// Returns:
//   - *Attribute: the encoded surface ids
//   - error: any error from BuildGraph or Encode
func Partition(indices []uint32, vertexCount int, state *LabelState) (*Attribute, error) {
	g, err := BuildGraph(indices)
	if err != nil {
		return nil, err
	}
	var next uint32
	if state != nil {
		next = state.NextLabel
	}
	l := Label(g, &LabelState{NextLabel: next})
	attr, err := Encode(vertexCount, l)
	if err != nil {
		return nil, err
	}
	if state != nil {
		state.NextLabel += uint32(l.Count())
	}
	return attr, nil
}

// VertexCount returns the number of vertices the attribute covers.
func (a *Attribute) VertexCount() int {
	return len(a.Data) / AttributeComponents
}

// LabelOf returns the label stored for vertex v.
func (a *Attribute) LabelOf(v int) uint32 {
	return uint32(a.Data[v*AttributeComponents])
}
