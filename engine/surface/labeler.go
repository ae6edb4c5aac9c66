package surface

import "slices"

// LabelState carries the label counter between labeling runs. The caller owns it;
// pass the same state for every mesh of a scene to keep labels unique scene-wide.
type LabelState struct {
	// NextLabel is the label the next component found will receive.
	NextLabel uint32
}

// Component is one connected surface.
type Component struct {
	Label    uint32
	Vertices []uint32
}

// Labeling is the result of one labeling run.
type Labeling struct {
	// Labels maps every graph vertex to its component label. It doubles as the
	// visited set of the run.
	Labels map[uint32]uint32

	// Components lists the components in the order they were labeled. Vertices
	// within a component are sorted ascending.
	Components []Component
}

// Label assigns a label to every connected component of g.
//
// Seeds are taken in the graph's first-seen vertex order and each component is
// collected with an explicit stack, so label values are reproducible for a given
// index buffer and large components never grow the call stack. Each component
// receives state.NextLabel, after which the counter is incremented.
//
// Parameters:
//   - g: the adjacency graph to label
//   - state: the label counter to draw from and advance; nil starts at label 0
//
// Returns:
//   - *Labeling: the vertex labels and components found
func Label(g *Graph, state *LabelState) *Labeling {
	if state == nil {
		state = &LabelState{}
	}
	l := &Labeling{
		Labels: make(map[uint32]uint32, g.Len()),
	}

	var stack []uint32
	for _, seed := range g.order {
		if _, seen := l.Labels[seed]; seen {
			continue
		}

		label := state.NextLabel
		state.NextLabel++

		var members []uint32
		stack = append(stack[:0], seed)
		for len(stack) > 0 {
			v := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if _, seen := l.Labels[v]; seen {
				continue
			}
			l.Labels[v] = label
			members = append(members, v)

			for _, n := range g.adjacency[v] {
				if _, seen := l.Labels[n]; !seen {
					stack = append(stack, n)
				}
			}
		}

		slices.Sort(members)
		l.Components = append(l.Components, Component{Label: label, Vertices: members})
	}
	return l
}

// Count returns the number of components found.
func (l *Labeling) Count() int {
	return len(l.Components)
}

// Shift adds offset to every label of the run. Labeling meshes with local states and
// shifting each run by the labels issued before it yields the same labels as one shared
// state. Vertices outside the graph are not part of the run and keep DefaultLabel when
// encoded.
func (l *Labeling) Shift(offset uint32) {
	if offset == 0 {
		return
	}
	for v := range l.Labels {
		l.Labels[v] += offset
	}
	for i := range l.Components {
		l.Components[i].Label += offset
	}
}
