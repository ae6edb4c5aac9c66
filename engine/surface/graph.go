package surface

import "fmt"

// Graph is an undirected adjacency graph over the vertex indices referenced by a
// triangle index buffer. Vertices that no triangle references are absent.
type Graph struct {
	adjacency map[uint32][]uint32
	edges     map[uint64]struct{}
	order     []uint32
}

// BuildGraph connects the three vertices of every triangle in indices to one another.
// Neighbor lists are deduplicated and keep insertion order, and Vertices reports the
// order in which vertices were first referenced.
//
// A nil slice means the mesh has no index data. An empty non-nil slice is a
// degenerate mesh and yields an empty graph.
//
// Parameters:
//   - indices: triangle list indices, three per triangle
//
// Returns:
//   - *Graph: the adjacency graph
//   - error: ErrMissingIndexBuffer or ErrMalformedIndexBuffer
func BuildGraph(indices []uint32) (*Graph, error) {
	if indices == nil {
		return nil, ErrMissingIndexBuffer
	}
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("%w: got %d indices", ErrMalformedIndexBuffer, len(indices))
	}

	g := &Graph{
		adjacency: make(map[uint32][]uint32, len(indices)/2),
		edges:     make(map[uint64]struct{}, len(indices)*2),
		order:     make([]uint32, 0, len(indices)/2),
	}
	for i := 0; i < len(indices); i += 3 {
		i1, i2, i3 := indices[i], indices[i+1], indices[i+2]
		g.addEdge(i1, i2)
		g.addEdge(i2, i3)
		g.addEdge(i3, i1)
	}
	return g, nil
}

// Len returns the number of vertices in the graph.
func (g *Graph) Len() int {
	return len(g.order)
}

// Vertices returns the graph's vertices in first-seen order.
func (g *Graph) Vertices() []uint32 {
	out := make([]uint32, len(g.order))
	copy(out, g.order)
	return out
}

// Neighbors returns the vertices adjacent to v, or nil when v is not in the graph.
func (g *Graph) Neighbors(v uint32) []uint32 {
	return g.adjacency[v]
}

// Contains reports whether v is referenced by at least one triangle.
func (g *Graph) Contains(v uint32) bool {
	_, ok := g.adjacency[v]
	return ok
}

func (g *Graph) addVertex(v uint32) {
	if _, ok := g.adjacency[v]; ok {
		return
	}
	g.adjacency[v] = nil
	g.order = append(g.order, v)
}

// addEdge links a and b both ways. A degenerate triangle that repeats an index
// registers the vertex without a self loop.
func (g *Graph) addEdge(a, b uint32) {
	g.addVertex(a)
	g.addVertex(b)
	if a == b {
		return
	}
	if _, ok := g.edges[edgeKey(a, b)]; ok {
		return
	}
	g.edges[edgeKey(a, b)] = struct{}{}
	g.adjacency[a] = append(g.adjacency[a], b)
	g.adjacency[b] = append(g.adjacency[b], a)
}

// edgeKey packs an unordered vertex pair into one map key.
func edgeKey(a, b uint32) uint64 {
	if a > b {
		a, b = b, a
	}
	return uint64(a)<<32 | uint64(b)
}
